package cmd

import (
	"encoding/binary"

	"github.com/decapod-atm/ssp-host/ssp/encrypted"
	"github.com/decapod-atm/ssp-host/ssp/frame"
	"github.com/decapod-atm/ssp-host/ssp/keyex"
	"github.com/decapod-atm/ssp-host/ssp/message"
	"github.com/decapod-atm/ssp-host/transport/mock"
)

// simulator is a minimal in-process stand-in for a real validator, driving
// the device side of the wire protocol well enough to exercise every demo
// command end-to-end without a physical unit attached. It is not a model of
// note-handling behaviour (see SPEC_FULL.md's Non-goals: device-side
// responder behaviour is explicitly out of scope) — just enough of the
// message taxonomy and key exchange to answer plausibly.
type simulator struct {
	kx    *keyex.Exchange
	key   [16]byte
	keyed bool
}

// runSimulator serves t in a background goroutine until it closes.
func runSimulator(t *mock.Transport) {
	s := &simulator{kx: keyex.New()}
	go s.loop(t)
}

func (s *simulator) loop(t *mock.Transport) {
	buf := make([]byte, 512)
	for {
		n, err := t.Read(buf)
		if err != nil {
			return
		}
		f, err := frame.Decode(buf[:n])
		if err != nil {
			continue
		}
		respPayload := s.handle(f.Payload)
		wire, err := frame.Encode(f.SeqID, respPayload)
		if err != nil {
			continue
		}
		t.Write(wire)
	}
}

func (s *simulator) handle(payload []byte) []byte {
	if len(payload) == 0 {
		return []byte{byte(message.StatusCommandCannotBeProcessed)}
	}

	if message.Opcode(payload[0]) == message.OpEncrypted {
		inner, cnt, err := encrypted.Unwrap(payload[1:], s.key)
		if err != nil {
			return []byte{byte(message.StatusCommandCannotBeProcessed)}
		}
		resp := s.dispatch(inner)
		wrapped, err := encrypted.Wrap(resp, cnt, s.key)
		if err != nil {
			return []byte{byte(message.StatusCommandCannotBeProcessed)}
		}
		return append([]byte{byte(message.OpEncrypted)}, wrapped...)
	}

	return s.dispatch(payload)
}

func (s *simulator) dispatch(payload []byte) []byte {
	op := message.Opcode(payload[0])
	ok := []byte{byte(message.StatusOK)}

	switch op {
	case message.OpSetGenerator:
		s.kx.SetGenerator(binary.LittleEndian.Uint64(payload[1:9]))
		return ok
	case message.OpSetModulus:
		s.kx.SetModulus(binary.LittleEndian.Uint64(payload[1:9]))
		return ok
	case message.OpRequestKeyExchange:
		hostInter := binary.LittleEndian.Uint64(payload[1:9])
		devInter, err := s.kx.BeginKeyExchange()
		if err != nil {
			return []byte{byte(message.StatusCommandCannotBeProcessed)}
		}
		s.key = s.kx.ObserveDeviceIntermediate(hostInter)
		s.keyed = true
		resp := make([]byte, 9)
		resp[0] = byte(message.StatusOK)
		binary.LittleEndian.PutUint64(resp[1:], devInter)
		return resp
	case message.OpEncryptionReset:
		s.kx.Reset()
		s.keyed = false
		return ok

	case message.OpSetupRequest:
		return s.setupResponse()
	case message.OpChannelValueData:
		return append([]byte{byte(message.StatusOK), 4}, 5, 10, 20, 50)
	case message.OpDatasetVersion:
		return append([]byte{byte(message.StatusOK)}, []byte("EUR0309")...)
	case message.OpSerialNumber:
		return []byte{byte(message.StatusOK), 0x00, 0x12, 0x34, 0x56}
	case message.OpPoll, message.OpPollWithAck:
		return ok // nothing pending
	case message.OpLastRejectCode:
		return []byte{byte(message.StatusOK), 0x00}

	default:
		return ok
	}
}

// setupResponse fabricates a plausible SetupRequest reply: a 4-channel EUR
// unit on protocol version 6, with both legacy and long-form channel values.
func (s *simulator) setupResponse() []byte {
	values := []byte{5, 10, 20, 50}
	security := []byte{0, 0, 0, 0}

	resp := []byte{byte(message.StatusOK)}
	resp = append(resp, 0x00)                   // unit type
	resp = append(resp, 0x03, 0x09, 0x00, 0x00) // firmware version
	resp = append(resp, 'E', 'U', 'R')          // country code
	resp = append(resp, 0x00, 0x00, 0x01)       // value multiplier = 1
	resp = append(resp, byte(len(values)))
	resp = append(resp, values...)
	resp = append(resp, security...)
	resp = append(resp, 0x00, 0x00, 0x01) // real value multiplier = 1
	resp = append(resp, 0x06)             // protocol version

	for range values {
		resp = append(resp, 'E', 'U', 'R')
	}
	for _, v := range values {
		var long [4]byte
		binary.LittleEndian.PutUint32(long[:], uint32(v))
		resp = append(resp, long[:]...)
	}

	return resp
}
