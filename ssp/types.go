package ssp

import "fmt"

// STX is the start-of-text byte framing every outer packet. An encrypted
// sub-frame is introduced by a different marker, STEX (0x7E, see
// ssp/encrypted).
const STX byte = 0x7F

// SequenceID packs a 1-bit sequence flag (MSB) and a 7-bit device address
// (low bits) into a single wire byte.
type SequenceID byte

// NewSequenceID builds a SequenceID for addr with the flag cleared.
func NewSequenceID(addr byte) SequenceID {
	return SequenceID(addr & 0x7F)
}

// Flag reports the sequence flag bit.
func (s SequenceID) Flag() bool { return byte(s)&0x80 != 0 }

// Address reports the 7-bit device address.
func (s SequenceID) Address() byte { return byte(s) & 0x7F }

// Toggled returns a SequenceID with the flag bit inverted.
func (s SequenceID) Toggled() SequenceID { return s ^ 0x80 }

// Byte returns the wire-format byte for this SequenceID.
func (s SequenceID) Byte() byte { return byte(s) }

func (s SequenceID) String() string {
	flag := 0
	if s.Flag() {
		flag = 1
	}
	return fmt.Sprintf("addr=0x%02X flag=%d", s.Address(), flag)
}

// CounterPolicy controls how ssp/device treats a decrypted packet's embedded
// COUNT field (as returned by ssp/encrypted.Unwrap, which does not check it)
// when it disagrees with the receiver's locally tracked expectation. See SPEC_FULL.md / DESIGN.md for the
// rationale (this resolves an Open Question in the original specification).
type CounterPolicy int

const (
	// CounterPolicyEnforce discards packets whose COUNT does not match the
	// expected value, per vendor documentation. This is the default.
	CounterPolicyEnforce CounterPolicy = iota
	// CounterPolicyIgnore reproduces the historical (and arguably buggy)
	// behavior of incrementing the counter without ever validating it.
	CounterPolicyIgnore
)

// Config collects the host-tunable policy knobs for a Session. It is
// designed to be loaded from a YAML device-profile file via gopkg.in/yaml.v3.
type Config struct {
	// Address is this device's fixed 7-bit sequence address.
	Address byte `yaml:"address"`
	// FixedKeyPrefix overrides the default ITL fixed key prefix used to
	// build the 128-bit AES session key. Eight zero bytes means "use the
	// built-in default".
	FixedKeyPrefix [8]byte `yaml:"fixed_key_prefix"`
	// CounterPolicy controls encrypted-packet counter validation.
	CounterPolicy CounterPolicy `yaml:"counter_policy"`
	// RetryLimit bounds how many times the façade will resend an
	// unacknowledged command with the same sequence flag before giving up.
	RetryLimit int `yaml:"retry_limit"`
}

// DefaultConfig returns a Config with the documented defaults: strict
// counter enforcement and three retries.
func DefaultConfig() Config {
	return Config{
		CounterPolicy: CounterPolicyEnforce,
		RetryLimit:    3,
	}
}
