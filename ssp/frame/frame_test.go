package frame

import (
	"bytes"
	"testing"

	"github.com/decapod-atm/ssp-host/ssp"
)

func TestStuffUnstuffKnownAnswer(t *testing.T) {
	in := []byte{0x7F, 0xAA, 0xBB}
	want := []byte{0x7F, 0x7F, 0xAA, 0xBB}

	got := Stuff(in)
	if !bytes.Equal(got, want) {
		t.Fatalf("Stuff(%X) = %X, want %X", in, got, want)
	}

	back := Unstuff(got)
	if !bytes.Equal(back, in) {
		t.Fatalf("Unstuff(Stuff(in)) = %X, want %X", back, in)
	}
}

func TestStuffNoSTX(t *testing.T) {
	in := []byte{0x01, 0x02, 0x03}
	if got := Stuff(in); !bytes.Equal(got, in) {
		t.Fatalf("Stuff(%X) = %X, want unchanged", in, got)
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	seq := ssp.NewSequenceID(0)
	payload := []byte{0x01, 0x7F, 0x02, 0x7F, 0x7F}

	wire, err := Encode(seq, payload)
	if err != nil {
		t.Fatal(err)
	}

	f, err := Decode(wire)
	if err != nil {
		t.Fatal(err)
	}

	if f.SeqID != seq {
		t.Fatalf("SeqID = %v, want %v", f.SeqID, seq)
	}
	if !bytes.Equal(f.Payload, payload) {
		t.Fatalf("Payload = %X, want %X", f.Payload, payload)
	}
}

func TestDecodeInvalidSTX(t *testing.T) {
	_, err := Decode([]byte{0x01, 0x02, 0x03})
	if err == nil {
		t.Fatal("expected InvalidSTX error")
	}
}

func TestDecodeCRCMismatch(t *testing.T) {
	seq := ssp.NewSequenceID(1)
	wire, err := Encode(seq, []byte{0xAA})
	if err != nil {
		t.Fatal(err)
	}

	wire[len(wire)-1] ^= 0xFF

	if _, err := Decode(wire); err == nil {
		t.Fatal("expected CRC mismatch error")
	}
}

func TestDecodeInvalidLength(t *testing.T) {
	// STX, seq, len=10 but no payload/crc follows.
	raw := []byte{ssp.STX, 0x00, 0x0A}
	if _, err := Decode(raw); err == nil {
		t.Fatal("expected InvalidLength error")
	}
}
