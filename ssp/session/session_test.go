package session

import (
	"testing"
	"time"

	"github.com/decapod-atm/ssp-host/ssp/frame"
	"github.com/decapod-atm/ssp-host/transport/mock"
)

func TestSendReceivesMatchedResponse(t *testing.T) {
	hostT, deviceT := mock.NewPair()
	s := New(hostT, 0, time.Second)

	go func() {
		buf := make([]byte, 64)
		n, err := deviceT.Read(buf)
		if err != nil {
			return
		}
		f, err := frame.Decode(buf[:n])
		if err != nil {
			return
		}
		resp, _ := frame.Encode(f.SeqID, []byte{0xF0})
		deviceT.Write(resp)
	}()

	resp, err := s.Send([]byte{0x07})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if len(resp) != 1 || resp[0] != 0xF0 {
		t.Fatalf("resp = %v, want [0xF0]", resp)
	}
}

func TestSendTogglesSequenceFlagOnSuccess(t *testing.T) {
	hostT, deviceT := mock.NewPair()
	s := New(hostT, 0, time.Second)

	initial := s.SequenceID()

	go func() {
		buf := make([]byte, 64)
		n, _ := deviceT.Read(buf)
		f, _ := frame.Decode(buf[:n])
		resp, _ := frame.Encode(f.SeqID, []byte{0xF0})
		deviceT.Write(resp)
	}()

	if _, err := s.Send([]byte{0x07}); err != nil {
		t.Fatal(err)
	}

	if s.SequenceID() == initial {
		t.Fatal("sequence flag did not toggle after successful send")
	}
	if s.SequenceID().Flag() == initial.Flag() {
		t.Fatal("flag bit unchanged")
	}
}

// TestSendHandlesTrailingStuffedSTXAtBufferBoundary reproduces a response
// whose body happens to end right before a doubled (stuffed) STX pair: the
// CRC-16 over {seq:0x00, len:0x02, payload:0x15,0x65} is 0x7F52, so the
// unstuffed body is "00 02 15 65 52 7F" and the wire carries that trailing
// 0x7F doubled. A reader that resolves a raw STX byte before its stuffing
// partner has arrived would stop one byte short and leave an orphan 0x7F on
// the wire to desync the next frame.
func TestSendHandlesTrailingStuffedSTXAtBufferBoundary(t *testing.T) {
	hostT, deviceT := mock.NewPair()
	s := New(hostT, 0, time.Second)

	go func() {
		buf := make([]byte, 64)
		if _, err := deviceT.Read(buf); err != nil {
			return
		}
		// Hand-crafted wire bytes for seq=0x00, len=0x02, payload=[0x15,0x65],
		// CRC-16 0x7F52 (little-endian 0x52, 0x7F), with the trailing 0x7F
		// stuffed per frame.Stuff's doubling rule.
		wire := []byte{0x7F, 0x00, 0x02, 0x15, 0x65, 0x52, 0x7F, 0x7F}
		deviceT.Write(wire)
	}()

	resp, err := s.Send([]byte{0x07})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	want := []byte{0x15, 0x65}
	if len(resp) != len(want) || resp[0] != want[0] || resp[1] != want[1] {
		t.Fatalf("resp = %x, want %x", resp, want)
	}

	// A follow-up exchange must not observe a desynced leading STX from an
	// orphaned stuffing-pair byte left behind by the previous read.
	go func() {
		buf := make([]byte, 64)
		n, err := deviceT.Read(buf)
		if err != nil {
			return
		}
		f, err := frame.Decode(buf[:n])
		if err != nil {
			return
		}
		resp, _ := frame.Encode(f.SeqID, []byte{0xF0})
		deviceT.Write(resp)
	}()

	if _, err := s.Send([]byte{0x07}); err != nil {
		t.Fatalf("follow-up Send: %v", err)
	}
}

func TestSendRejectsMismatchedSequence(t *testing.T) {
	hostT, deviceT := mock.NewPair()
	s := New(hostT, 0, time.Second)

	go func() {
		buf := make([]byte, 64)
		n, _ := deviceT.Read(buf)
		f, _ := frame.Decode(buf[:n])
		// Reply with the wrong sequence flag.
		resp, _ := frame.Encode(f.SeqID.Toggled(), []byte{0xF0})
		deviceT.Write(resp)
	}()

	if _, err := s.Send([]byte{0x07}); err == nil {
		t.Fatal("expected InvalidSequence error")
	}
}
