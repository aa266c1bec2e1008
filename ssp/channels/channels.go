// Package channels tracks the global "configured channels" table: the
// number and per-slot value of banknote/coin channels a device reported via
// its SetupRequest response. The table is process-global because a single
// physical device occupies one serial port for the process's lifetime, and
// every caller talking to it needs the same view of "what does channel N
// mean" without threading it through every function — mirroring the
// reference implementation's global, lock-guarded channel table.
package channels

import (
	"sync"
	"time"

	"github.com/decapod-atm/ssp-host/ssp"
)

// MaxChannels bounds the configured-channel table. 16 covers every
// documented non-NV200 device; Configure rejects the larger tables of
// NV200-class devices (up to 24 channels).
const MaxChannels = 16

// LockTimeout bounds how long Lock will spin-wait for the table's mutex
// before giving up, matching the reference implementation's busy-poll
// window for callers without a blocking mutex primitive available.
const LockTimeout = 2500 * time.Millisecond

// lockAttempts bounds the number of TryLock spins within LockTimeout.
const lockAttempts = 10_000

var (
	mu    sync.Mutex
	table [MaxChannels]uint32
	count int
)

// Table is a read/write view over the configured channel values, valid only
// for the caller holding the lock returned by Lock.
type Table struct {
	unlock func()
}

// Lock acquires the global channel table, busy-polling with TryLock in
// lockAttempts slices of LockTimeout until it either succeeds or the
// timeout elapses, at which point it returns ErrTimeout. The returned
// Table must be released with Unlock.
func Lock() (*Table, error) {
	deadline := time.Now().Add(LockTimeout)
	step := LockTimeout / lockAttempts

	for {
		if mu.TryLock() {
			var once sync.Once
			return &Table{unlock: func() { once.Do(mu.Unlock) }}, nil
		}
		if time.Now().After(deadline) {
			return nil, ssp.ErrTimeout("channels.Lock")
		}
		time.Sleep(step)
	}
}

// Unlock releases the table.
func (t *Table) Unlock() { t.unlock() }

// Configure replaces the table with values, the per-channel values reported
// by a device's SetupRequest or ChannelValueData response. values longer
// than MaxChannels is an error.
func (t *Table) Configure(values []uint32) error {
	if len(values) > MaxChannels {
		return ssp.ErrInvalidDataLength(len(values), MaxChannels)
	}
	table = [MaxChannels]uint32{}
	copy(table[:], values)
	count = len(values)
	return nil
}

// Count reports how many channels are currently configured.
func (t *Table) Count() int { return count }

// Value returns the configured value for channel (1-indexed, matching the
// wire protocol's channel numbering), or ok=false if channel is out of
// range of the configured count.
func (t *Table) Value(channel int) (value uint32, ok bool) {
	idx := channel - 1
	if idx < 0 || idx >= count {
		return 0, false
	}
	return table[idx], true
}

// Values returns a copy of the currently configured channel values, in
// wire order (index 0 = channel 1).
func (t *Table) Values() []uint32 {
	out := make([]uint32, count)
	copy(out, table[:count])
	return out
}
