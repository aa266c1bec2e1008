package message

import (
	"github.com/decapod-atm/ssp-host/ssp"
	"github.com/decapod-atm/ssp-host/ssp/poll"
)

// Variant is implemented by every typed response. GenericResponse satisfies
// it for opcodes without a dedicated layout.
type Variant interface {
	// Status returns the response-status byte common to every response.
	Status() Status
}

// GenericResponse is the catch-all variant for opcodes whose response
// carries nothing beyond the status byte and, for a handful of fixed-width
// opcodes, a short trailer (e.g. SerialNumber's 4-byte serial, or
// RequestKeyExchange's 8-byte device intermediate key).
type GenericResponse struct {
	Op    Opcode
	St    Status
	Extra []byte
}

func (r GenericResponse) Status() Status { return r.St }

// PollResponse is the variant for Poll and PollWithAck responses: a status
// byte followed by a decoded poll-event stream.
type PollResponse struct {
	St     Status
	Events []poll.Event
}

func (r PollResponse) Status() Status { return r.St }

// SetupRequestResponse is the variant for SetupRequest (0x05), grounded on
// the vendor's fixed field layout: unit type, firmware version, country
// code, value multiplier, per-channel values/security/country codes, and
// (protocol version ≥ 6) the long-form per-channel values.
type SetupRequestResponse struct {
	St                  Status
	UnitType            byte
	FirmwareVersion     [4]byte
	CountryCode         [3]byte
	ValueMultiplier     uint32 // 3-byte big-endian value, widened
	NumChannels         int
	ChannelValues       []byte
	ChannelSecurity     []byte
	RealValueMultiplier uint32
	ProtocolVersion     byte
	ChannelCountryCodes [][3]byte
	ChannelValuesLong   []uint32
}

func (r SetupRequestResponse) Status() Status { return r.St }

const (
	setupUnitType        = 0
	setupFirmwareStart   = 1
	setupFirmwareEnd     = 5
	setupCountryStart    = 5
	setupCountryEnd      = 8
	setupMultStart       = 8
	setupMultEnd         = 11
	setupNumChannels     = 11
	setupChannelValues   = 12
)

// u24be decodes a 3-byte big-endian unsigned value.
func u24be(b []byte) uint32 {
	return uint32(b[0])<<16 | uint32(b[1])<<8 | uint32(b[2])
}

// ParseSetupRequestResponse parses the payload (status byte inclusive) of a
// SetupRequest response.
func ParseSetupRequestResponse(payload []byte) (SetupRequestResponse, error) {
	// Status byte plus every body field up to and including the channel count.
	if len(payload) < 1+setupChannelValues {
		return SetupRequestResponse{}, ssp.ErrInvalidDataLength(len(payload), 1+setupChannelValues)
	}

	r := SetupRequestResponse{St: Status(payload[0])}

	body := payload[1:] // field offsets below are relative to body
	r.UnitType = body[setupUnitType]
	copy(r.FirmwareVersion[:], body[setupFirmwareStart:setupFirmwareEnd])
	copy(r.CountryCode[:], body[setupCountryStart:setupCountryEnd])
	r.ValueMultiplier = u24be(body[setupMultStart:setupMultEnd])
	r.NumChannels = int(body[setupNumChannels])

	valuesEnd := setupChannelValues + r.NumChannels
	if valuesEnd > len(body) {
		return SetupRequestResponse{}, ssp.ErrInvalidDataLength(valuesEnd, len(body))
	}
	r.ChannelValues = append([]byte(nil), body[setupChannelValues:valuesEnd]...)

	secStart := valuesEnd
	secEnd := secStart + r.NumChannels
	if secEnd > len(body) {
		return SetupRequestResponse{}, ssp.ErrInvalidDataLength(secEnd, len(body))
	}
	r.ChannelSecurity = append([]byte(nil), body[secStart:secEnd]...)

	realStart := secEnd
	realEnd := realStart + 3
	if realEnd > len(body) {
		return SetupRequestResponse{}, ssp.ErrInvalidDataLength(realEnd, len(body))
	}
	r.RealValueMultiplier = u24be(body[realStart:realEnd])

	protoIdx := realEnd
	if protoIdx >= len(body) {
		return SetupRequestResponse{}, ssp.ErrInvalidDataLength(protoIdx, len(body))
	}
	r.ProtocolVersion = body[protoIdx]

	if r.ProtocolVersion < 6 {
		return r, nil
	}

	countryStart := protoIdx + 1
	countryEnd := countryStart + 3*r.NumChannels
	if countryEnd > len(body) {
		return SetupRequestResponse{}, ssp.ErrInvalidDataLength(countryEnd, len(body))
	}
	for off := countryStart; off < countryEnd; off += 3 {
		var cc [3]byte
		copy(cc[:], body[off:off+3])
		r.ChannelCountryCodes = append(r.ChannelCountryCodes, cc)
	}

	longStart := countryEnd
	longEnd := longStart + 4*r.NumChannels
	if longEnd > len(body) {
		return SetupRequestResponse{}, ssp.ErrInvalidDataLength(longEnd, len(body))
	}
	for off := longStart; off < longEnd; off += 4 {
		r.ChannelValuesLong = append(r.ChannelValuesLong, leU32(body[off:off+4]))
	}

	return r, nil
}

func leU32(b []byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}

// ChannelValueDataResponse is the variant for ChannelValueData (0x0E):
// status, channel count, then one raw value byte per channel.
type ChannelValueDataResponse struct {
	St            Status
	NumChannels   int
	ChannelValues []byte
}

func (r ChannelValueDataResponse) Status() Status { return r.St }

// ParseChannelValueDataResponse parses the payload of a ChannelValueData
// response, enforcing that the declared channel count fits the payload.
func ParseChannelValueDataResponse(payload []byte) (ChannelValueDataResponse, error) {
	if len(payload) < 2 {
		return ChannelValueDataResponse{}, ssp.ErrInvalidDataLength(len(payload), 2)
	}

	r := ChannelValueDataResponse{
		St:          Status(payload[0]),
		NumChannels: int(payload[1]),
	}

	end := 2 + r.NumChannels
	if end > len(payload) {
		return ChannelValueDataResponse{}, ssp.ErrInvalidDataLength(end, len(payload))
	}

	r.ChannelValues = append([]byte(nil), payload[2:end]...)

	return r, nil
}

// DatasetVersionResponse is the variant for DatasetVersion (0x21): status
// followed by an ASCII dataset version string filling the rest of the
// payload.
type DatasetVersionResponse struct {
	St      Status
	Version string
}

func (r DatasetVersionResponse) Status() Status { return r.St }

// ParseDatasetVersionResponse parses the payload of a DatasetVersion
// response.
func ParseDatasetVersionResponse(payload []byte) (DatasetVersionResponse, error) {
	if len(payload) < 1 {
		return DatasetVersionResponse{}, ssp.ErrInvalidDataLength(len(payload), 1)
	}
	return DatasetVersionResponse{
		St:      Status(payload[0]),
		Version: string(payload[1:]),
	}, nil
}

// ParseResponse dispatches payload (the frame's raw payload bytes, status
// byte inclusive) to the correct typed Variant, selecting the branch from
// the opcode the host originally sent — the wire never self-identifies the
// response type, only the caller's own request context does.
func ParseResponse(expected Opcode, payload []byte) (Variant, error) {
	if len(payload) < 1 {
		return nil, ssp.ErrInvalidDataLength(len(payload), 1)
	}

	status := Status(payload[0])

	switch expected {
	case OpPoll, OpPollWithAck:
		events, err := poll.Decode(payload[1:])
		if err != nil {
			return nil, err
		}
		return PollResponse{St: status, Events: events}, nil

	case OpSetupRequest:
		return ParseSetupRequestResponse(payload)

	case OpChannelValueData:
		return ParseChannelValueDataResponse(payload)

	case OpDatasetVersion:
		return ParseDatasetVersionResponse(payload)

	default:
		if want, ok := fixedLen[expected]; ok && !expected.IsVariable() && len(payload) != want {
			return nil, ssp.ErrInvalidDataLength(len(payload), want)
		}

		extra := append([]byte(nil), payload[1:]...)
		return GenericResponse{Op: expected, St: status, Extra: extra}, nil
	}
}
