// Package session implements the sequence/transport layer (spec component
// C4): it stamps the outgoing sequence flag, hands bytes to a transport,
// reads the reply frame, and validates the reply's sequence byte against
// what was sent. It does not retry automatically — the device façade
// (ssp/device) drives resend-with-same-flag when a caller wants that.
package session

import (
	"time"

	"github.com/decapod-atm/ssp-host/ssp"
	"github.com/decapod-atm/ssp-host/ssp/frame"
	"github.com/decapod-atm/ssp-host/transport"
)

// Session holds the sequence flag for one device connection.
type Session struct {
	t       transport.Transport
	seq     ssp.SequenceID
	timeout time.Duration
}

// New creates a Session over t for device address addr. timeout bounds
// each response read; zero disables the deadline.
func New(t transport.Transport, addr byte, timeout time.Duration) *Session {
	return &Session{
		t:       t,
		seq:     ssp.NewSequenceID(addr),
		timeout: timeout,
	}
}

// SequenceID reports the sequence identity that will be stamped on the
// next outgoing frame.
func (s *Session) SequenceID() ssp.SequenceID { return s.seq }

// Send frames payload under the session's current sequence identity,
// writes it to the transport, reads back a response frame, validates the
// response's sequence byte, and — on success — toggles the stored flag for
// the next send. It does not interpret payload; that is ssp/message's job.
func (s *Session) Send(payload []byte) ([]byte, error) {
	wire, err := frame.Encode(s.seq, payload)
	if err != nil {
		return nil, err
	}

	if s.timeout > 0 {
		if err := s.t.SetDeadline(time.Now().Add(s.timeout)); err != nil {
			return nil, ssp.ErrTimeout("session.Send")
		}
	}

	if _, err := s.t.Write(wire); err != nil {
		return nil, wrapTransportErr("session.Send", err)
	}

	resp, err := s.readFrame()
	if err != nil {
		return nil, err
	}

	if resp.SeqID != s.seq {
		return nil, ssp.ErrInvalidSequence(resp.SeqID.Byte(), s.seq.Byte())
	}

	s.seq = s.seq.Toggled()

	return resp.Payload, nil
}

// Resend re-transmits payload under the *current* (not toggled) sequence
// identity, for use when the caller suspects the device missed the
// previous reply; per spec, the device is required to replay its prior
// response verbatim for an identical sequence byte.
func (s *Session) Resend(payload []byte) ([]byte, error) {
	wire, err := frame.Encode(s.seq, payload)
	if err != nil {
		return nil, err
	}

	if s.timeout > 0 {
		if err := s.t.SetDeadline(time.Now().Add(s.timeout)); err != nil {
			return nil, ssp.ErrTimeout("session.Resend")
		}
	}

	if _, err := s.t.Write(wire); err != nil {
		return nil, wrapTransportErr("session.Resend", err)
	}

	resp, err := s.readFrame()
	if err != nil {
		return nil, err
	}

	if resp.SeqID != s.seq {
		return nil, ssp.ErrInvalidSequence(resp.SeqID.Byte(), s.seq.Byte())
	}

	s.seq = s.seq.Toggled()

	return resp.Payload, nil
}

// readFrame reads one complete outer frame from the transport: STX, then
// bytes until the declared (unstuffed) length is satisfied. The transport
// contract guarantees only byte-level delivery, so framing is read
// incrementally here rather than assumed to arrive as one Read call.
//
// Unstuffing happens byte-by-byte as raw bytes arrive, tracking whether the
// previously consumed raw byte was an as-yet-unpaired STX. Stuff always
// emits STX in doubled pairs, so a raw STX can only be resolved once the
// following raw byte is known; recomputing frame.Unstuff over the whole
// accumulated buffer on every iteration cannot make this distinction; if
// the last raw byte read so far happens to be a lone 0x7F (e.g. the CRC's
// high byte), it would be misread as a complete, disambiguated unstuffed
// byte one byte early, stopping the read loop with the STX's stuffing
// partner still unread on the wire and desyncing the next frame.
func (s *Session) readFrame() (frame.Frame, error) {
	raw := make([]byte, 0, 64)
	one := make([]byte, 1)

	// Read the leading STX.
	for {
		n, err := s.t.Read(one)
		if err != nil {
			return frame.Frame{}, wrapTransportErr("session.readFrame", err)
		}
		if n == 0 {
			continue
		}
		if one[0] == ssp.STX {
			raw = append(raw, one[0])
			break
		}
	}

	var unstuffed []byte
	pendingSTX := false
	want := -1 // total unstuffed bytes needed; unknown until LEN arrives

	for want < 0 || len(unstuffed) < want {
		n, err := s.t.Read(one)
		if err != nil {
			return frame.Frame{}, wrapTransportErr("session.readFrame", err)
		}
		if n == 0 {
			continue
		}
		raw = append(raw, one[0])

		switch {
		case pendingSTX:
			// The previous raw byte was STX; this byte resolves it.
			pendingSTX = false
			unstuffed = append(unstuffed, ssp.STX)
			if one[0] != ssp.STX {
				// Not a stuffed pair: this byte is ordinary content in its
				// own right (a lone, unstuffed STX should never occur on
				// the wire, but don't drop the byte if it does).
				unstuffed = append(unstuffed, one[0])
			}
		case one[0] == ssp.STX:
			pendingSTX = true
		default:
			unstuffed = append(unstuffed, one[0])
		}

		if want < 0 && len(unstuffed) >= 2 {
			want = 2 + int(unstuffed[1]) + 2
		}
	}

	return frame.Decode(raw)
}

func wrapTransportErr(op string, err error) error {
	return &ssp.Error{Kind: ssp.KindTransport, Op: op, Msg: "transport I/O failed", Err: err}
}
