// Package keyex implements the 64-bit Diffie-Hellman key negotiation state
// machine (spec component C6): generator/modulus exchange, intermediate-key
// derivation, session-key agreement, and the resulting AES-128 key.
//
// The field is only 64 bits wide, which is cryptographically weak by modern
// standards. That is the protocol as specified, not a defect introduced
// here: the host picks a 64-bit generator and modulus, and interoperability
// with device firmware requires reproducing the arithmetic exactly,
// including its narrow key space.
package keyex

import (
	"crypto/rand"
	"encoding/binary"
	"math/big"

	"github.com/decapod-atm/ssp-host/ssp"
)

// DefaultFixedKeyPrefix is the constant documented by the vendor, prefixed
// onto the negotiated 8-byte session half to form the 128-bit AES key.
var DefaultFixedKeyPrefix = [8]byte{0x67, 0x45, 0x23, 0x01, 0x67, 0x45, 0x23, 0x01}

// State is a position in the key-negotiation state machine.
type State int

const (
	StateIdle State = iota
	StateGeneratorSet
	StateModulusSet
	StateKeyed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateGeneratorSet:
		return "generator_set"
	case StateModulusSet:
		return "modulus_set"
	case StateKeyed:
		return "keyed"
	default:
		return "unknown"
	}
}

// Exchange drives one side of the DH negotiation. It is not safe for
// concurrent use; callers serialize access the same way they serialize
// access to the underlying transport (see ssp/session).
type Exchange struct {
	state State

	fixedKeyPrefix [8]byte

	generator uint64
	modulus   uint64

	hostRnd   uint64
	hostInter uint64

	session uint64
}

// New creates an Exchange in StateIdle using the default fixed key prefix.
func New() *Exchange {
	return &Exchange{fixedKeyPrefix: DefaultFixedKeyPrefix}
}

// NewWithFixedKeyPrefix creates an Exchange that uses prefix instead of the
// vendor default, per ssp.Config.FixedKeyPrefix.
func NewWithFixedKeyPrefix(prefix [8]byte) *Exchange {
	return &Exchange{fixedKeyPrefix: prefix}
}

// State reports the exchange's current position in the state machine.
func (e *Exchange) State() State { return e.state }

// SetGenerator records the host-chosen generator g and advances to
// StateGeneratorSet. g should be a 64-bit prime; the device independently
// rejects non-primes with ParameterOutOfRange, but callers may check with
// IsProbablyPrime first to avoid a wasted round trip.
func (e *Exchange) SetGenerator(g uint64) {
	e.generator = g
	e.state = StateGeneratorSet
}

// SetModulus records the host-chosen modulus n and advances to
// StateModulusSet.
func (e *Exchange) SetModulus(n uint64) {
	e.modulus = n
	e.state = StateModulusSet
}

// IsProbablyPrime reports whether v is probably prime, using the same
// probabilistic test math/big uses internally (Baillie-PSW plus
// Miller-Rabin rounds).
func IsProbablyPrime(v uint64) bool {
	return new(big.Int).SetUint64(v).ProbablyPrime(20)
}

// BeginKeyExchange picks a random 64-bit host_rnd, computes
// host_inter = g^host_rnd mod n, and returns host_inter to send to the
// device. The caller pairs this with ObserveDeviceIntermediate once the
// device's reply arrives.
func (e *Exchange) BeginKeyExchange() (hostInter uint64, err error) {
	if e.state != StateModulusSet {
		return 0, ssp.ErrProtocolState(e.state.String(), StateModulusSet.String())
	}

	rnd, err := randUint64()
	if err != nil {
		return 0, err
	}

	e.hostRnd = rnd
	e.hostInter = modPow(e.generator, e.hostRnd, e.modulus)

	return e.hostInter, nil
}

// ObserveDeviceIntermediate consumes the device's intermediate key,
// completes the shared-secret derivation, advances to StateKeyed, and
// returns the resulting AES-128 session key.
func (e *Exchange) ObserveDeviceIntermediate(deviceInter uint64) [16]byte {
	e.session = modPow(deviceInter, e.hostRnd, e.modulus)
	e.state = StateKeyed

	return e.aesKey()
}

// aesKey builds the 128-bit AES key: the 8-byte fixed prefix followed by
// the 8-byte little-endian session value.
func (e *Exchange) aesKey() [16]byte {
	var key [16]byte
	copy(key[:8], e.fixedKeyPrefix[:])
	binary.LittleEndian.PutUint64(key[8:], e.session)
	return key
}

// Reset zeroes the negotiated secrets and returns the exchange to
// StateIdle, matching the "reset on encryption_reset" lifecycle rule: host
// random and session values are zeroed, generator/modulus are retained
// since the device typically expects them to be resupplied explicitly.
func (e *Exchange) Reset() {
	e.hostRnd = 0
	e.hostInter = 0
	e.session = 0
	e.state = StateIdle
}

// modPow computes base^exp mod m using arbitrary-precision arithmetic:
// base^exp overflows 64 bits well before the modulus is applied, so the
// naive uint64 loop would silently wrap.
func modPow(base, exp, m uint64) uint64 {
	b := new(big.Int).SetUint64(base)
	e := new(big.Int).SetUint64(exp)
	n := new(big.Int).SetUint64(m)

	return new(big.Int).Exp(b, e, n).Uint64()
}

func randUint64() (uint64, error) {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return 0, ssp.ErrCrypto("keyex.randUint64", err)
	}
	return binary.LittleEndian.Uint64(buf[:]), nil
}
