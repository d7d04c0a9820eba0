//go:build !acc8 && !acc32

package anyk

// Accumulator is the per-document score type. Width is a build-time
// choice (see width_8.go / width_16.go / width_32.go) selected with
// the acc8 / acc32 build tags; this file is the default, 16-bit, build.
type Accumulator = uint16

// MaxRSV is the largest representable accumulator value. Callers
// guarantee per-segment impacts and their cumulative sum fit; the
// core does not check for overflow.
const MaxRSV Accumulator = 1<<16 - 1
