package message

import (
	"bytes"
	"testing"
)

// TestParseSetupRequestResponseKnownAnswer reproduces the 53-byte payload of
// the reference SetupRequest response vector: unit type 0, firmware bytes
// 00 33 33 33, country "EUR", multiplier 1, 4 channels [5,10,20,50], security levels
// [2,2,2,2], real multiplier 100, protocol version 7, per-channel country
// codes all "EUR", long channel values [5,10,20,50].
func TestParseSetupRequestResponseKnownAnswer(t *testing.T) {
	payload := []byte{
		0xf0,
		0x00,
		0x00, 0x33, 0x33, 0x33,
		0x45, 0x55, 0x52,
		0x00, 0x00, 0x01,
		0x04,
		0x05, 0x0a, 0x14, 0x32,
		0x02, 0x02, 0x02, 0x02,
		0x00, 0x00, 0x64,
		0x07,
		0x45, 0x55, 0x52,
		0x45, 0x55, 0x52,
		0x45, 0x55, 0x52,
		0x45, 0x55, 0x52,
		0x05, 0x00, 0x00, 0x00,
		0x0a, 0x00, 0x00, 0x00,
		0x14, 0x00, 0x00, 0x00,
		0x32, 0x00, 0x00, 0x00,
	}

	r, err := ParseSetupRequestResponse(payload)
	if err != nil {
		t.Fatalf("ParseSetupRequestResponse: %v", err)
	}

	if r.Status() != StatusOK {
		t.Fatalf("Status = %v, want OK", r.Status())
	}
	if r.UnitType != 0 {
		t.Fatalf("UnitType = %d, want 0", r.UnitType)
	}
	if !bytes.Equal(r.FirmwareVersion[:], []byte{0x00, 0x33, 0x33, 0x33}) {
		t.Fatalf("FirmwareVersion = %X", r.FirmwareVersion)
	}
	if string(r.CountryCode[:]) != "EUR" {
		t.Fatalf("CountryCode = %q, want EUR", r.CountryCode)
	}
	if r.ValueMultiplier != 1 {
		t.Fatalf("ValueMultiplier = %d, want 1", r.ValueMultiplier)
	}
	if r.NumChannels != 4 {
		t.Fatalf("NumChannels = %d, want 4", r.NumChannels)
	}
	if !bytes.Equal(r.ChannelValues, []byte{5, 10, 20, 50}) {
		t.Fatalf("ChannelValues = %v, want [5 10 20 50]", r.ChannelValues)
	}
	if !bytes.Equal(r.ChannelSecurity, []byte{2, 2, 2, 2}) {
		t.Fatalf("ChannelSecurity = %v, want [2 2 2 2]", r.ChannelSecurity)
	}
	if r.RealValueMultiplier != 100 {
		t.Fatalf("RealValueMultiplier = %d, want 100", r.RealValueMultiplier)
	}
	if r.ProtocolVersion != 7 {
		t.Fatalf("ProtocolVersion = %d, want 7", r.ProtocolVersion)
	}
	if len(r.ChannelCountryCodes) != 4 {
		t.Fatalf("len(ChannelCountryCodes) = %d, want 4", len(r.ChannelCountryCodes))
	}
	for _, cc := range r.ChannelCountryCodes {
		if string(cc[:]) != "EUR" {
			t.Fatalf("ChannelCountryCodes entry = %q, want EUR", cc)
		}
	}
	wantLong := []uint32{5, 10, 20, 50}
	if len(r.ChannelValuesLong) != len(wantLong) {
		t.Fatalf("len(ChannelValuesLong) = %d, want %d", len(r.ChannelValuesLong), len(wantLong))
	}
	for i, v := range wantLong {
		if r.ChannelValuesLong[i] != v {
			t.Fatalf("ChannelValuesLong[%d] = %d, want %d", i, r.ChannelValuesLong[i], v)
		}
	}
}

func TestParseChannelValueDataResponse(t *testing.T) {
	payload := []byte{0xF0, 0x03, 0x05, 0x0A, 0x14}

	r, err := ParseChannelValueDataResponse(payload)
	if err != nil {
		t.Fatal(err)
	}
	if r.NumChannels != 3 {
		t.Fatalf("NumChannels = %d, want 3", r.NumChannels)
	}
	if !bytes.Equal(r.ChannelValues, []byte{5, 10, 20}) {
		t.Fatalf("ChannelValues = %v", r.ChannelValues)
	}
}

func TestParseChannelValueDataResponseRejectsOverflow(t *testing.T) {
	payload := []byte{0xF0, 0xFF, 0x01}
	if _, err := ParseChannelValueDataResponse(payload); err == nil {
		t.Fatal("expected InvalidDataLength for channel count overflowing payload")
	}
}

func TestParseDatasetVersionResponse(t *testing.T) {
	payload := append([]byte{0xF0}, []byte("0123456")...)
	r, err := ParseDatasetVersionResponse(payload)
	if err != nil {
		t.Fatal(err)
	}
	if r.Version != "0123456" {
		t.Fatalf("Version = %q", r.Version)
	}
}

func TestParseResponseDispatchesByOpcode(t *testing.T) {
	v, err := ParseResponse(OpSerialNumber, []byte{0xF0, 0x00, 0x29, 0xE9, 0x4B})
	if err != nil {
		t.Fatal(err)
	}
	g, ok := v.(GenericResponse)
	if !ok {
		t.Fatalf("expected GenericResponse, got %T", v)
	}
	if !bytes.Equal(g.Extra, []byte{0x00, 0x29, 0xE9, 0x4B}) {
		t.Fatalf("Extra = %X", g.Extra)
	}

	v, err = ParseResponse(OpPoll, []byte{0xF0})
	if err != nil {
		t.Fatal(err)
	}
	p, ok := v.(PollResponse)
	if !ok {
		t.Fatalf("expected PollResponse, got %T", v)
	}
	if len(p.Events) != 0 {
		t.Fatalf("expected no events, got %v", p.Events)
	}
}
