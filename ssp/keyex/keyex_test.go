package keyex

import (
	"encoding/binary"
	"testing"
)

func TestStateMachineHappyPath(t *testing.T) {
	e := New()
	if e.State() != StateIdle {
		t.Fatalf("initial state = %v, want idle", e.State())
	}

	e.SetGenerator(0x7FCC9EE3)
	if e.State() != StateGeneratorSet {
		t.Fatalf("state after SetGenerator = %v", e.State())
	}

	e.SetModulus(0x7F1C7181)
	if e.State() != StateModulusSet {
		t.Fatalf("state after SetModulus = %v", e.State())
	}

	if _, err := e.BeginKeyExchange(); err != nil {
		t.Fatalf("BeginKeyExchange: %v", err)
	}
	if e.State() != StateModulusSet {
		t.Fatalf("state after BeginKeyExchange should remain modulus_set until keyed")
	}

	key := e.ObserveDeviceIntermediate(0x634C0016)
	if e.State() != StateKeyed {
		t.Fatalf("state after ObserveDeviceIntermediate = %v", e.State())
	}
	if len(key) != 16 {
		t.Fatalf("key length = %d, want 16", len(key))
	}
}

func TestBeginKeyExchangeRequiresModulusSet(t *testing.T) {
	e := New()
	if _, err := e.BeginKeyExchange(); err == nil {
		t.Fatal("expected error before generator/modulus set")
	}

	e.SetGenerator(5)
	if _, err := e.BeginKeyExchange(); err == nil {
		t.Fatal("expected error before modulus set")
	}
}

// TestKnownAnswer reproduces the reference key-exchange vector: generator
// 0x7FCC9EE3, modulus 0x7F1C7181, host random 0x7F2BCEEC, device
// intermediate 0x634C0016 must yield session key 0x7BF49046.
func TestKnownAnswer(t *testing.T) {
	e := New()
	e.SetGenerator(0x7FCC9EE3)
	e.SetModulus(0x7F1C7181)
	e.hostRnd = 0x7F2BCEEC
	e.state = StateModulusSet

	hostInter := modPow(e.generator, e.hostRnd, e.modulus)
	if hostInter != 0x0C043F46 {
		t.Fatalf("host_inter = 0x%08X, want 0x0C043F46", hostInter)
	}

	key := e.ObserveDeviceIntermediate(0x634C0016)

	wantSession := uint64(0x7BF49046)
	gotSession := binary.LittleEndian.Uint64(key[8:])
	if gotSession != wantSession {
		t.Fatalf("session = 0x%08X, want 0x%08X", gotSession, wantSession)
	}

	for i, want := range DefaultFixedKeyPrefix {
		if key[i] != want {
			t.Fatalf("key prefix[%d] = 0x%02X, want 0x%02X", i, key[i], want)
		}
	}
}

func TestKnownAnswerSecond(t *testing.T) {
	e := New()
	e.SetGenerator(1) // unused by this vector form; set directly below
	e.modulus = 0x2D469703
	e.hostRnd = 0x2D61283D
	e.state = StateModulusSet

	key := e.ObserveDeviceIntermediate(0x04BA466D)
	gotSession := binary.LittleEndian.Uint64(key[8:])
	wantSession := uint64(0x1AEDA1FB)
	if gotSession != wantSession {
		t.Fatalf("session = 0x%08X, want 0x%08X", gotSession, wantSession)
	}
}

func TestResetClearsSecrets(t *testing.T) {
	e := New()
	e.SetGenerator(5)
	e.SetModulus(7)
	_, _ = e.BeginKeyExchange()
	e.ObserveDeviceIntermediate(3)

	e.Reset()
	if e.State() != StateIdle {
		t.Fatalf("state after Reset = %v, want idle", e.State())
	}
	if e.hostRnd != 0 || e.session != 0 {
		t.Fatal("Reset did not clear secrets")
	}
}

func TestIsProbablyPrime(t *testing.T) {
	if !IsProbablyPrime(0x7FCC9EE3) {
		t.Fatal("expected generator vector to be probably prime")
	}
	if IsProbablyPrime(4) {
		t.Fatal("4 is not prime")
	}
}
