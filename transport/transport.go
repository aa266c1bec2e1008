// Package transport defines the narrow duplex byte-stream contract the ssp
// module talks to (spec: "the serial transport... consumed through narrow
// interfaces"). A real RS-232 or virtual serial link, and the in-memory
// transport/mock used for tests, both satisfy it the same way
// card.Reader's Connect/Transmit/Close shape satisfies PC/SC in the
// reference repository this module descends from.
package transport

import "time"

// Transport is a duplex byte stream with deadline support: write a frame,
// read a frame, with no notion of message boundaries beyond what the
// caller (ssp/frame) imposes.
type Transport interface {
	// Write sends p in full or returns an error; it does not fragment.
	Write(p []byte) (n int, err error)
	// Read fills p with up to len(p) bytes, blocking until at least one
	// byte is available, the deadline elapses, or the transport closes.
	Read(p []byte) (n int, err error)
	// SetDeadline bounds the next Read/Write call. A zero Time disables
	// the deadline.
	SetDeadline(t time.Time) error
	// Close releases the underlying connection.
	Close() error
}
