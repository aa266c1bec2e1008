// Package encrypted implements the inner STEX sub-frame codec (spec
// component C5): the encrypted payload carried inside an outer Encrypted
// command/response once a session key has been negotiated (ssp/keyex).
package encrypted

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/binary"

	"golang.org/x/crypto/pbkdf2"

	"github.com/decapod-atm/ssp-host/ssp"
	"github.com/decapod-atm/ssp-host/ssp/aesx"
	"github.com/decapod-atm/ssp-host/ssp/crc"
	"github.com/decapod-atm/ssp-host/ssp/frame"
)

// STEX is the marker byte introducing an encrypted sub-frame. It differs
// from the outer frame's STX (0x7F) and appears inside an outer Encrypted
// command's payload rather than at the start of a frame.
const STEX byte = 0x7E

// maxEncryptedData is the largest inner DATA length Wrap accepts and Unwrap
// accepts in the LEN field. It does not account for the STEX/LEN/COUNT/
// packing/CRC overhead or byte stuffing: a payload near this bound can still
// be too large for one outer frame, in which case frame.Encode rejects it.
const maxEncryptedData = 246

// pbkdf2Iterations matches the vendor SDK's no-OS-entropy packing fallback.
const pbkdf2Iterations = 4096

// Wrap composes the encrypted sub-frame for payload under the given
// session key and 32-bit sequence counter, returning the bytes to place in
// an outer Encrypted command's payload (STEX followed by the ciphertext,
// byte-stuffed here once; the outer frame codec stuffs it a second time).
func Wrap(payload []byte, counter uint32, key [16]byte) ([]byte, error) {
	if len(payload) > maxEncryptedData {
		return nil, ssp.ErrInvalidDataLength(len(payload), maxEncryptedData)
	}

	inner := make([]byte, 0, 1+4+len(payload))
	inner = append(inner, byte(len(payload)))
	var countBytes [4]byte
	binary.LittleEndian.PutUint32(countBytes[:], counter)
	inner = append(inner, countBytes[:]...)
	inner = append(inner, payload...)

	packingLen := aesPackingLen(len(inner))
	packing, err := packingBytes(packingLen, inner, counter)
	if err != nil {
		return nil, err
	}
	inner = append(inner, packing...)

	sum := crc.CRC16(inner)
	le := crc.LE(sum)
	inner = append(inner, le[:]...)

	cipher, err := aesx.ECBEncrypt(key, inner)
	if err != nil {
		return nil, wrapCryptoErr(err)
	}

	section := make([]byte, 0, 1+len(cipher))
	section = append(section, STEX)
	section = append(section, cipher...)

	return frame.Stuff(section), nil
}

// Unwrap is the mirror of Wrap: it strips the STEX marker and stuffing,
// decrypts under key, validates the inner CRC, and returns the plaintext
// payload and the sender's embedded counter. Callers enforce counter
// continuity themselves (see ssp.CounterPolicy); Unwrap only decodes.
func Unwrap(section []byte, key [16]byte) (payload []byte, counter uint32, err error) {
	raw := frame.Unstuff(section)

	if len(raw) < 1 || raw[0] != STEX {
		return nil, 0, ssp.ErrInvalidMessage(firstByte(raw))
	}

	cipher := raw[1:]
	if len(cipher)%aesx.BlockLen != 0 {
		return nil, 0, ssp.ErrInvalidDataLength(len(cipher), len(cipher))
	}

	inner, err := aesx.ECBDecrypt(key, cipher)
	if err != nil {
		return nil, 0, wrapCryptoErr(err)
	}

	if len(inner) < 1+4+2 {
		return nil, 0, ssp.ErrInvalidLength(len(inner), 1+4+2)
	}

	length := int(inner[0])
	if length >= maxEncryptedData+1 {
		return nil, 0, ssp.ErrInvalidDataLength(length, maxEncryptedData)
	}

	dataEnd := 1 + 4 + length
	if dataEnd+2 > len(inner) {
		return nil, 0, ssp.ErrInvalidLength(len(inner), dataEnd+2)
	}

	haveCRC := crc.FromLE(inner[len(inner)-2:])
	wantCRC := crc.CRC16(inner[:len(inner)-2])
	if haveCRC != wantCRC {
		return nil, 0, ssp.ErrCRC(haveCRC, wantCRC)
	}

	cnt := binary.LittleEndian.Uint32(inner[1:5])
	data := append([]byte(nil), inner[5:dataEnd]...)

	return data, cnt, nil
}

// aesPackingLen computes the smallest k >= 0 making rawLen+k+2 (the 2 being
// the trailing CRC) a multiple of the AES block size.
func aesPackingLen(rawLen int) int {
	rem := (rawLen + 2) % aesx.BlockLen // +2 accounts for the trailing CRC
	if rem == 0 {
		return 0
	}
	return aesx.BlockLen - rem
}

// packingBytes returns k cryptographically pseudorandom bytes. It prefers
// the OS entropy source; when that is unavailable it falls back to a
// PBKDF2-HMAC-SHA-256-seeded stream derived from the buffer assembled so
// far and the sequence counter, mirroring the vendor SDK's no-OS-entropy
// path for embedded hosts.
func packingBytes(k int, bufSoFar []byte, counter uint32) ([]byte, error) {
	if k == 0 {
		return nil, nil
	}

	out := make([]byte, k)
	if _, err := rand.Read(out); err == nil {
		return out, nil
	}

	var countBytes [4]byte
	binary.LittleEndian.PutUint32(countBytes[:], counter)
	salt := append(append([]byte{}, bufSoFar...), countBytes[:]...)

	return pbkdf2.Key(salt, countBytes[:], pbkdf2Iterations, k, sha256.New), nil
}

func wrapCryptoErr(err error) error { return ssp.ErrCrypto("encrypted", err) }

func firstByte(b []byte) byte {
	if len(b) == 0 {
		return 0
	}
	return b[0]
}
