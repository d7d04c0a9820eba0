package anyk

import "testing"

func TestNoneCodecRoundTrip(t *testing.T) {
	src := []uint32{0, 1, 2_000_000_000, 42}
	buf := make([]byte, len(src)*4)
	var codec NoneCodec

	n := codec.Encode(buf, src)
	if n != len(buf) {
		t.Fatalf("Encode wrote %d bytes, want %d", n, len(buf))
	}

	dst := make([]uint32, len(src)+decoderSlack)
	codec.Decode(dst, len(src), buf)
	for i, want := range src {
		if dst[i] != want {
			t.Errorf("dst[%d] = %d, want %d", i, dst[i], want)
		}
	}
}

func TestNoneCodecEncodeOverflow(t *testing.T) {
	var codec NoneCodec
	if n := codec.Encode(make([]byte, 3), []uint32{1}); n != 0 {
		t.Fatalf("Encode into undersized buffer = %d, want 0", n)
	}
}

func TestVarByteCodecRoundTrip(t *testing.T) {
	src := []uint32{0, 1, 127, 128, 16384, 2_000_000_000, 5}
	buf := make([]byte, len(src)*5) // worst case: 5 bytes per uint32
	var codec VarByteCodec

	n := codec.Encode(buf, src)
	if n == 0 {
		t.Fatalf("Encode returned 0 (overflow) unexpectedly")
	}

	dst := make([]uint32, len(src)+decoderSlack)
	codec.Decode(dst, len(src), buf[:n])
	for i, want := range src {
		if dst[i] != want {
			t.Errorf("dst[%d] = %d, want %d", i, dst[i], want)
		}
	}
}

func TestVarByteCodecEncodeOverflow(t *testing.T) {
	var codec VarByteCodec
	if n := codec.Encode(make([]byte, 0), []uint32{128}); n != 0 {
		t.Fatalf("Encode into empty buffer = %d, want 0", n)
	}
}
