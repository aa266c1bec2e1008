// Package frame implements the outer SSP wire frame: STX, sequence byte,
// length, payload, CRC-16, and STX byte-stuffing (spec component C2).
package frame

import (
	"github.com/decapod-atm/ssp-host/ssp"
	"github.com/decapod-atm/ssp-host/ssp/crc"
)

// MaxPayload is the largest payload a single frame can carry; LEN is one
// byte wide.
const MaxPayload = 255

// Frame is a decoded outer protocol datagram.
type Frame struct {
	SeqID   ssp.SequenceID
	Payload []byte
}

// Stuff duplicates every STX (0x7F) byte in data. It is generic over the
// whole input slice: Encode calls it only on the portion of the frame after
// the leading, genuinely unescaped STX; ssp/encrypted calls it on the whole
// inner ciphertext section, where no byte is privileged.
func Stuff(data []byte) []byte {
	out := make([]byte, 0, len(data))
	for _, b := range data {
		out = append(out, b)
		if b == ssp.STX {
			out = append(out, b)
		}
	}
	return out
}

// Unstuff collapses adjacent STX/STX pairs produced by Stuff back to a
// single STX byte.
func Unstuff(data []byte) []byte {
	out := make([]byte, 0, len(data))
	for i := 0; i < len(data); i++ {
		out = append(out, data[i])
		if data[i] == ssp.STX && i+1 < len(data) && data[i+1] == ssp.STX {
			i++
		}
	}
	return out
}

// Encode builds the on-wire bytes for a frame carrying payload under
// sequence identity seq: STX, sequence byte, length, payload, CRC-16
// (little-endian), then byte-stuffed from index 1 onward.
func Encode(seq ssp.SequenceID, payload []byte) ([]byte, error) {
	if len(payload) > MaxPayload {
		return nil, ssp.ErrInvalidDataLength(len(payload), MaxPayload)
	}

	body := make([]byte, 0, 2+len(payload)+2)
	body = append(body, seq.Byte(), byte(len(payload)))
	body = append(body, payload...)

	sum := crc.CRC16(body)
	le := crc.LE(sum)
	body = append(body, le[:]...)

	out := make([]byte, 0, 1+2*len(body))
	out = append(out, ssp.STX)
	out = append(out, Stuff(body)...)

	return out, nil
}

// Decode parses raw wire bytes into a Frame, validating STX, declared
// length, and CRC-16.
func Decode(raw []byte) (Frame, error) {
	if len(raw) == 0 || raw[0] != ssp.STX {
		var have byte
		if len(raw) > 0 {
			have = raw[0]
		}
		return Frame{}, ssp.ErrInvalidSTX(have)
	}

	body := Unstuff(raw[1:])

	if len(body) < 2 {
		return Frame{}, ssp.ErrInvalidLength(len(body), 2)
	}

	seqByte := body[0]
	length := int(body[1])
	want := 2 + length + 2

	if len(body) < want {
		return Frame{}, ssp.ErrInvalidLength(len(body), want)
	}

	payload := body[2 : 2+length]
	haveCRC := crc.FromLE(body[2+length : want])
	wantCRC := crc.CRC16(body[:2+length])

	if haveCRC != wantCRC {
		return Frame{}, ssp.ErrCRC(haveCRC, wantCRC)
	}

	return Frame{
		SeqID:   ssp.SequenceID(seqByte),
		Payload: payload,
	}, nil
}
