package anyk

import "encoding/binary"

// Codec is the integer-decompression contract spec.md §6 requires of
// the codec collaborator. Decode writes at least count integers to
// dst (dst is sized with decoderSlack trailing integers of padding by
// the driver, in case an implementation overwrites past count).
// Encode returns the number of bytes written, or 0 if src doesn't fit
// in dst (ErrCodecOverflow, handled per-segment by the caller).
//
// The core treats the codec as an external collaborator: it never
// inspects a posting segment's bytes except through this interface.
type Codec interface {
	Decode(dst []uint32, count int, src []byte)
	Encode(dst []byte, src []uint32) (n int)
}

// NoneCodec stores integers verbatim as little-endian uint32s. It is
// the reference "identity" codec (grounded on the original's
// compress_integer_none, exercised by its run-export unit test).
type NoneCodec struct{}

func (NoneCodec) Decode(dst []uint32, count int, src []byte) {
	for i := 0; i < count; i++ {
		dst[i] = binary.LittleEndian.Uint32(src[i*4:])
	}
}

func (NoneCodec) Encode(dst []byte, src []uint32) int {
	need := len(src) * 4
	if len(dst) < need {
		return 0
	}
	for i, v := range src {
		binary.LittleEndian.PutUint32(dst[i*4:], v)
	}
	return need
}

// VarByteCodec is a variable-byte codec: each integer is split into
// 7-bit groups, low-group first, with the top bit of every byte but
// the last set to signal continuation (grounded on the original's
// compress_integer_variable_byte).
type VarByteCodec struct{}

func (VarByteCodec) Decode(dst []uint32, count int, src []byte) {
	pos := 0
	for i := 0; i < count; i++ {
		var v uint32
		shift := uint(0)
		for {
			b := src[pos]
			pos++
			v |= uint32(b&0x7f) << shift
			if b&0x80 == 0 {
				break
			}
			shift += 7
		}
		dst[i] = v
	}
}

func (VarByteCodec) Encode(dst []byte, src []uint32) int {
	pos := 0
	for _, v := range src {
		for {
			b := byte(v & 0x7f)
			v >>= 7
			if v != 0 {
				if pos >= len(dst) {
					return 0
				}
				dst[pos] = b | 0x80
				pos++
			} else {
				if pos >= len(dst) {
					return 0
				}
				dst[pos] = b
				pos++
				break
			}
		}
	}
	return pos
}
