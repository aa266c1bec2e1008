package device

import (
	"testing"

	"github.com/decapod-atm/ssp-host/ssp"
	"github.com/decapod-atm/ssp-host/ssp/encrypted"
	"github.com/decapod-atm/ssp-host/ssp/frame"
	"github.com/decapod-atm/ssp-host/ssp/message"
	"github.com/decapod-atm/ssp-host/transport/mock"
)

// respond runs a single-shot fake device loop on devEnd: it decodes one
// frame, hands the payload to build, and writes back whatever build
// returns, echoing the request's sequence byte.
func respond(t *testing.T, devEnd *mock.Transport, build func(payload []byte) []byte) {
	t.Helper()
	go func() {
		buf := make([]byte, 256)
		n, err := devEnd.Read(buf)
		if err != nil {
			return
		}
		f, err := frame.Decode(buf[:n])
		if err != nil {
			return
		}
		respPayload := build(f.Payload)
		wire, _ := frame.Encode(f.SeqID, respPayload)
		devEnd.Write(wire)
	}()
}

func newTestDevice(t *testing.T) (*Device, *mock.Transport) {
	t.Helper()
	hostEnd, devEnd := mock.NewPair()
	d := New(hostEnd, ssp.DefaultConfig(), nil)
	return d, devEnd
}

func TestResetSendsCommandAndAcceptsOK(t *testing.T) {
	d, devEnd := newTestDevice(t)
	respond(t, devEnd, func(payload []byte) []byte {
		if message.Opcode(payload[0]) != message.OpReset {
			t.Errorf("opcode = %v, want Reset", message.Opcode(payload[0]))
		}
		return []byte{byte(message.StatusOK)}
	})

	if err := d.Reset(); err != nil {
		t.Fatalf("Reset: %v", err)
	}
}

func TestRejectProtocolErrorStatus(t *testing.T) {
	d, devEnd := newTestDevice(t)
	respond(t, devEnd, func(payload []byte) []byte {
		return []byte{byte(message.StatusCommandCannotBeProcessed)}
	})

	err := d.Enable()
	if err == nil {
		t.Fatal("expected a protocol error")
	}
}

func TestSerialNumberParsesTrailer(t *testing.T) {
	d, devEnd := newTestDevice(t)
	respond(t, devEnd, func(payload []byte) []byte {
		return []byte{byte(message.StatusOK), 0xDE, 0xAD, 0xBE, 0xEF}
	})

	sn, err := d.SerialNumber()
	if err != nil {
		t.Fatalf("SerialNumber: %v", err)
	}
	want := [4]byte{0xDE, 0xAD, 0xBE, 0xEF}
	if sn != want {
		t.Fatalf("SerialNumber = %x, want %x", sn, want)
	}
}

func TestResetRetriesAfterTimeout(t *testing.T) {
	d, devEnd := newTestDevice(t)

	go func() {
		buf := make([]byte, 256)
		// First read: the original Send's frame. Drop it so the device's
		// 2-second deadline elapses, forcing sendWithRetry to resend.
		if _, err := devEnd.Read(buf); err != nil {
			return
		}

		n, err := devEnd.Read(buf)
		if err != nil {
			return
		}
		f, err := frame.Decode(buf[:n])
		if err != nil {
			return
		}
		wire, _ := frame.Encode(f.SeqID, []byte{byte(message.StatusOK)})
		devEnd.Write(wire)
	}()

	if err := d.Reset(); err != nil {
		t.Fatalf("Reset: %v", err)
	}
}

func TestFullKeyExchangeEncryptsSubsequentCommands(t *testing.T) {
	hostEnd, devEnd := mock.NewPair()
	d := New(hostEnd, ssp.DefaultConfig(), nil)

	const generator = 0x7FCC9EE3
	const modulus = 0x7F1C7181
	const deviceInter = 0x634C0016

	// SetGenerator
	respond(t, devEnd, func(payload []byte) []byte { return []byte{byte(message.StatusOK)} })
	if err := d.SetGenerator(generator); err != nil {
		t.Fatalf("SetGenerator: %v", err)
	}

	// SetModulus
	respond(t, devEnd, func(payload []byte) []byte { return []byte{byte(message.StatusOK)} })
	if err := d.SetModulus(modulus); err != nil {
		t.Fatalf("SetModulus: %v", err)
	}

	// RequestKeyExchange: reply with a fixed device intermediate key.
	respond(t, devEnd, func(payload []byte) []byte {
		resp := make([]byte, 9)
		resp[0] = byte(message.StatusOK)
		v := uint64(deviceInter)
		for i := 0; i < 8; i++ {
			resp[1+i] = byte(v >> (8 * i))
		}
		return resp
	})
	if err := d.RequestKeyExchange(); err != nil {
		t.Fatalf("RequestKeyExchange: %v", err)
	}
	if !d.Encrypted() {
		t.Fatal("device should report encrypted after key exchange")
	}

	// Next command should arrive wrapped in an Encrypted/STEX frame.
	go func() {
		buf := make([]byte, 256)
		n, err := devEnd.Read(buf)
		if err != nil {
			return
		}
		f, err := frame.Decode(buf[:n])
		if err != nil {
			t.Error(err)
			return
		}
		if message.Opcode(f.Payload[0]) != message.OpEncrypted {
			t.Errorf("opcode = %v, want Encrypted", message.Opcode(f.Payload[0]))
			return
		}
		inner, cnt, err := encrypted.Unwrap(f.Payload[1:], d.key)
		if err != nil {
			t.Error(err)
			return
		}
		if message.Opcode(inner[0]) != message.OpEnable {
			t.Errorf("inner opcode = %v, want Enable", message.Opcode(inner[0]))
		}

		respSection, err := encrypted.Wrap([]byte{byte(message.StatusOK)}, cnt, d.key)
		if err != nil {
			t.Error(err)
			return
		}
		wire, _ := frame.Encode(f.SeqID, append([]byte{byte(message.OpEncrypted)}, respSection...))
		devEnd.Write(wire)
	}()

	if err := d.Enable(); err != nil {
		t.Fatalf("Enable (encrypted): %v", err)
	}
}
