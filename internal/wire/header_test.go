package wire

import "testing"

func TestHeaderRoundTrip(t *testing.T) {
	h := Header{
		ProtocolVersion: CurrentProtocolVersion,
		Flags:           FlagReliable | FlagAckOnly,
		Sequence:        42,
		Ack:             41,
		AckBitfield:     0xDEADBEEF,
		MessageType:     MsgPing,
	}

	encoded := EncodeHeader(h)
	if len(encoded) != HeaderSize {
		t.Fatalf("encoded header length = %d, want %d", len(encoded), HeaderSize)
	}

	decoded, err := DecodeHeader(encoded)
	if err != nil {
		t.Fatalf("DecodeHeader: %v", err)
	}
	if decoded != h {
		t.Errorf("round trip mismatch: got %+v, want %+v", decoded, h)
	}
}

func TestDecodeHeaderShortDatagram(t *testing.T) {
	if _, err := DecodeHeader(make([]byte, HeaderSize-1)); err == nil {
		t.Error("expected error decoding short datagram, got nil")
	}
}

func TestSequenceGreaterThan(t *testing.T) {
	cases := []struct {
		a, b uint32
		want bool
	}{
		{1, 0, true},
		{0, 1, false},
		{0, 0, false},
		{0, 0xFFFFFFFF, true}, // wrap: 0 is "after" the max value
		{0xFFFFFFFF, 0, false},
		{100, 99, true},
	}
	for _, c := range cases {
		if got := SequenceGreaterThan(c.a, c.b); got != c.want {
			t.Errorf("SequenceGreaterThan(%d, %d) = %v, want %v", c.a, c.b, got, c.want)
		}
	}
}

func TestSequenceComparisonExactlyOneHolds(t *testing.T) {
	pairs := [][2]uint32{{5, 5}, {5, 6}, {6, 5}, {0, 0xFFFFFFFF}, {0x7FFFFFFF, 0}}
	for _, p := range pairs {
		gt := SequenceGreaterThan(p[0], p[1])
		lt := SequenceGreaterThan(p[1], p[0])
		eq := p[0] == p[1]
		count := 0
		for _, b := range []bool{gt, lt, eq} {
			if b {
				count++
			}
		}
		if count != 1 {
			t.Errorf("pair %v: exactly one of gt/lt/eq must hold, got gt=%v lt=%v eq=%v", p, gt, lt, eq)
		}
	}
}
