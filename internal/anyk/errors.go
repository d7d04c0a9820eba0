package anyk

import "errors"

// ErrSizingOverflow is returned from Init when the requested document
// count, top-k, or accumulator layout exceeds the package's compile-time
// bounds (MaxDocuments, MaxTopK). It is a setup-time failure: the
// caller gets no partial processor and must not call any other method.
var ErrSizingOverflow = errors.New("anyk: requested sizing exceeds compile-time bounds")

// ErrCodecOverflow is the error a Codec's Encode implementation should
// report (by returning 0 bytes written) when the destination buffer is
// too small. The driver treats this as per-segment: the caller
// discards the offending segment without failing the whole query.
var ErrCodecOverflow = errors.New("anyk: codec encode buffer overflow")
