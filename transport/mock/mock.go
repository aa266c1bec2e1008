// Package mock implements an in-memory transport.Transport for tests and
// the demo CLI: writes to one side are readable from the other, with no
// real I/O involved.
package mock

import (
	"errors"
	"sync"
	"time"
)

// ErrClosed is returned by Read/Write once the transport has been closed.
var ErrClosed = errors.New("mock: transport closed")

// ErrDeadlineExceeded is returned by Read when no data arrives before the
// configured deadline.
var ErrDeadlineExceeded = errors.New("mock: deadline exceeded")

// Transport is a loopback-style in-memory transport.Transport. Writes to one
// half land in a buffer the paired half reads with Read, and vice versa;
// see NewPair.
type Transport struct {
	mu       sync.Mutex
	cond     *sync.Cond
	inbox    []byte
	outbox   *Transport // the peer's inbox lives here
	closed   bool
	deadline time.Time
}

// NewPair returns two ends of a connected loopback transport: writes to a
// are readable from b, and writes to b are readable from a.
func NewPair() (a, b *Transport) {
	a = &Transport{}
	b = &Transport{}
	a.cond = sync.NewCond(&a.mu)
	b.cond = sync.NewCond(&b.mu)
	a.outbox = b
	b.outbox = a
	return a, b
}

// Write appends p to the peer's inbox and wakes any blocked Read.
func (t *Transport) Write(p []byte) (int, error) {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return 0, ErrClosed
	}
	t.mu.Unlock()

	peer := t.outbox
	peer.mu.Lock()
	peer.inbox = append(peer.inbox, p...)
	peer.cond.Broadcast()
	peer.mu.Unlock()

	return len(p), nil
}

// Read blocks until at least one byte is available, the deadline elapses,
// or the transport is closed.
func (t *Transport) Read(p []byte) (int, error) {
	t.mu.Lock()
	deadline := t.deadline
	t.mu.Unlock()

	var timer *time.Timer
	if !deadline.IsZero() {
		timer = time.AfterFunc(time.Until(deadline), t.cond.Broadcast)
		defer timer.Stop()
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	for len(t.inbox) == 0 && !t.closed {
		if !deadline.IsZero() && !time.Now().Before(deadline) {
			return 0, ErrDeadlineExceeded
		}
		t.cond.Wait()
	}

	if t.closed && len(t.inbox) == 0 {
		return 0, ErrClosed
	}

	n := copy(p, t.inbox)
	t.inbox = t.inbox[n:]
	return n, nil
}

// SetDeadline bounds every Read call until the deadline is changed; a zero
// Time disables it. Write never blocks and ignores it.
func (t *Transport) SetDeadline(when time.Time) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.deadline = when
	return nil
}

// Close marks the transport closed and wakes any blocked Read.
func (t *Transport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.closed = true
	t.cond.Broadcast()
	return nil
}
