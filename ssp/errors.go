// Package ssp implements the host side of the Smiley Secure Protocol (SSP)
// and its encrypted variant (eSSP): framing, the message taxonomy, the
// sequence/transport layer, the encrypted sub-frame codec, key negotiation,
// the poll event decoder, and the device façade.
package ssp

import "fmt"

// Kind discriminates the error taxonomy from the protocol specification:
// framing, structural, protocol-level device rejections, session, transport,
// and crypto errors.
type Kind int

const (
	KindFraming Kind = iota
	KindStructural
	KindProtocol
	KindSession
	KindTransport
	KindCrypto
)

func (k Kind) String() string {
	switch k {
	case KindFraming:
		return "framing"
	case KindStructural:
		return "structural"
	case KindProtocol:
		return "protocol"
	case KindSession:
		return "session"
	case KindTransport:
		return "transport"
	case KindCrypto:
		return "crypto"
	default:
		return "unknown"
	}
}

// Error is the error type returned throughout the ssp module. The core
// never panics on malformed input; every validation failure is returned as
// an *Error with enough context to decide whether to resync or abort.
type Error struct {
	Kind Kind
	Op   string
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("ssp: %s: %s: %s: %v", e.Kind, e.Op, e.Msg, e.Err)
	}
	return fmt.Sprintf("ssp: %s: %s: %s", e.Kind, e.Op, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

func newErr(kind Kind, op, msg string) *Error {
	return &Error{Kind: kind, Op: op, Msg: msg}
}

func wrapErr(kind Kind, op, msg string, err error) *Error {
	return &Error{Kind: kind, Op: op, Msg: msg, Err: err}
}

// ErrInvalidSTX reports that the expected STX byte (0x7F) was not found at
// the start of a frame.
func ErrInvalidSTX(have byte) error {
	return newErr(KindFraming, "frame.Decode", fmt.Sprintf("invalid STX: have 0x%02X, want 0x%02X", have, STX))
}

// ErrInvalidLength reports that a decoded frame's total length did not
// satisfy the minimum implied by its declared payload length.
func ErrInvalidLength(have, want int) error {
	return newErr(KindFraming, "frame.Decode", fmt.Sprintf("invalid length: have %d, want at least %d", have, want))
}

// ErrCRC reports a CRC-16 mismatch.
func ErrCRC(have, want uint16) error {
	return newErr(KindFraming, "frame.Decode", fmt.Sprintf("CRC mismatch: have 0x%04X, want 0x%04X", have, want))
}

// ErrInvalidDataLength reports a structural violation where a parsed
// message's declared data length conflicts with the layout invariant for
// its opcode.
func ErrInvalidDataLength(have, want int) error {
	return newErr(KindStructural, "message.Parse", fmt.Sprintf("invalid data length: have %d, want %d", have, want))
}

// ErrInvalidMessage reports an unrecognised opcode, response status, or
// poll-event tag.
func ErrInvalidMessage(tag byte) error {
	return newErr(KindStructural, "message.Parse", fmt.Sprintf("invalid message tag: 0x%02X", tag))
}

// ErrInvalidSequence reports that a response's sequence byte did not match
// the one stamped on the outstanding request.
func ErrInvalidSequence(have, want byte) error {
	return newErr(KindSession, "session.Send", fmt.Sprintf("sequence mismatch: have 0x%02X, want 0x%02X", have, want))
}

// ErrCounterMismatch reports that a decrypted packet's embedded counter did
// not match the receiver's expected value (see CounterPolicy).
func ErrCounterMismatch(have, want uint32) error {
	return newErr(KindSession, "encrypted.Unwrap", fmt.Sprintf("counter mismatch: have %d, want %d", have, want))
}

// ErrProtocol wraps a device-reported response Status that indicates a
// protocol-level rejection (CommandNotKnown, ParameterOutOfRange, ...).
func ErrProtocol(status fmt.Stringer) error {
	return newErr(KindProtocol, "device", status.String())
}

// ErrTimeout reports that the transport did not respond within its
// configured deadline.
func ErrTimeout(op string) error {
	return newErr(KindTransport, op, "timeout")
}

// ErrProtocolState reports that an operation was attempted while the
// caller's state machine (key negotiation, session) was not in the
// required state.
func ErrProtocolState(have, want string) error {
	return newErr(KindProtocol, "keyex", fmt.Sprintf("invalid state: have %s, want %s", have, want))
}

// ErrCrypto wraps a failure from a cryptographic primitive (random source,
// key derivation).
func ErrCrypto(op string, err error) error {
	return wrapErr(KindCrypto, op, "crypto operation failed", err)
}
