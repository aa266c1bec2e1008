package encrypted

import (
	"bytes"
	"testing"
)

var testKey = [16]byte{
	0x67, 0x45, 0x23, 0x01, 0x67, 0x45, 0x23, 0x01,
	0x5E, 0xFA, 0xE5, 0x0D, 0x00, 0x00, 0x00, 0x00,
}

func TestWrapUnwrapRoundTrip(t *testing.T) {
	cases := [][]byte{
		{},
		{0x06, 0x06},
		bytes.Repeat([]byte{0xAB}, 37),
		bytes.Repeat([]byte{0x7F}, 20), // plaintext STX bytes, encrypted before any stuffing
	}

	for _, payload := range cases {
		wrapped, err := Wrap(payload, 0, testKey)
		if err != nil {
			t.Fatalf("Wrap(%v): %v", payload, err)
		}

		got, counter, err := Unwrap(wrapped, testKey)
		if err != nil {
			t.Fatalf("Unwrap: %v", err)
		}
		if !bytes.Equal(got, payload) && !(len(got) == 0 && len(payload) == 0) {
			t.Fatalf("round trip payload = %X, want %X", got, payload)
		}
		if counter != 0 {
			t.Fatalf("counter = %d, want 0", counter)
		}
	}
}

func TestWrapUnwrapCounterPreserved(t *testing.T) {
	wrapped, err := Wrap([]byte{0x01, 0x02, 0x03}, 42, testKey)
	if err != nil {
		t.Fatal(err)
	}

	_, counter, err := Unwrap(wrapped, testKey)
	if err != nil {
		t.Fatal(err)
	}
	if counter != 42 {
		t.Fatalf("counter = %d, want 42", counter)
	}
}

func TestWrapRejectsOversizedPayload(t *testing.T) {
	big := make([]byte, maxEncryptedData+1)
	if _, err := Wrap(big, 0, testKey); err == nil {
		t.Fatal("expected error for oversized payload")
	}
}

func TestUnwrapDetectsCorruption(t *testing.T) {
	wrapped, err := Wrap([]byte{0xAA, 0xBB}, 0, testKey)
	if err != nil {
		t.Fatal(err)
	}

	wrapped[len(wrapped)-1] ^= 0xFF

	if _, _, err := Unwrap(wrapped, testKey); err == nil {
		t.Fatal("expected CRC mismatch after corruption")
	}
}

func TestUnwrapRejectsMissingSTEX(t *testing.T) {
	if _, _, err := Unwrap([]byte{0x00, 0x01, 0x02}, testKey); err == nil {
		t.Fatal("expected error for missing STEX marker")
	}
}

func TestAesPackingLenIsBlockAligned(t *testing.T) {
	for rawLen := 0; rawLen < 64; rawLen++ {
		k := aesPackingLen(rawLen)
		if (rawLen+2+k)%16 != 0 {
			t.Fatalf("rawLen=%d k=%d not block aligned", rawLen, k)
		}
	}
}
