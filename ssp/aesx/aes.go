// Package aesx implements the AES-128 block cipher the way the vendor SSP
// SDK does: a from-scratch FIPS-197 round-key schedule and state transform,
// not a wrapper over crypto/aes. Its output is standard AES-128; the SDK's
// `% 256` S-box index (a no-op for byte inputs) is not reproduced.
package aesx

import "fmt"

const (
	KeyLen    = 16
	BlockLen  = 16
	numRounds = 10
)

// forwardSBox is the SubBytes() substitution table.
var forwardSBox = [256]byte{
	0x63, 0x7C, 0x77, 0x7B, 0xF2, 0x6B, 0x6F, 0xC5,
	0x30, 0x01, 0x67, 0x2B, 0xFE, 0xD7, 0xAB, 0x76,
	0xCA, 0x82, 0xC9, 0x7D, 0xFA, 0x59, 0x47, 0xF0,
	0xAD, 0xD4, 0xA2, 0xAF, 0x9C, 0xA4, 0x72, 0xC0,
	0xB7, 0xFD, 0x93, 0x26, 0x36, 0x3F, 0xF7, 0xCC,
	0x34, 0xA5, 0xE5, 0xF1, 0x71, 0xD8, 0x31, 0x15,
	0x04, 0xC7, 0x23, 0xC3, 0x18, 0x96, 0x05, 0x9A,
	0x07, 0x12, 0x80, 0xE2, 0xEB, 0x27, 0xB2, 0x75,
	0x09, 0x83, 0x2C, 0x1A, 0x1B, 0x6E, 0x5A, 0xA0,
	0x52, 0x3B, 0xD6, 0xB3, 0x29, 0xE3, 0x2F, 0x84,
	0x53, 0xD1, 0x00, 0xED, 0x20, 0xFC, 0xB1, 0x5B,
	0x6A, 0xCB, 0xBE, 0x39, 0x4A, 0x4C, 0x58, 0xCF,
	0xD0, 0xEF, 0xAA, 0xFB, 0x43, 0x4D, 0x33, 0x85,
	0x45, 0xF9, 0x02, 0x7F, 0x50, 0x3C, 0x9F, 0xA8,
	0x51, 0xA3, 0x40, 0x8F, 0x92, 0x9D, 0x38, 0xF5,
	0xBC, 0xB6, 0xDA, 0x21, 0x10, 0xFF, 0xF3, 0xD2,
	0xCD, 0x0C, 0x13, 0xEC, 0x5F, 0x97, 0x44, 0x17,
	0xC4, 0xA7, 0x7E, 0x3D, 0x64, 0x5D, 0x19, 0x73,
	0x60, 0x81, 0x4F, 0xDC, 0x22, 0x2A, 0x90, 0x88,
	0x46, 0xEE, 0xB8, 0x14, 0xDE, 0x5E, 0x0B, 0xDB,
	0xE0, 0x32, 0x3A, 0x0A, 0x49, 0x06, 0x24, 0x5C,
	0xC2, 0xD3, 0xAC, 0x62, 0x91, 0x95, 0xE4, 0x79,
	0xE7, 0xC8, 0x37, 0x6D, 0x8D, 0xD5, 0x4E, 0xA9,
	0x6C, 0x56, 0xF4, 0xEA, 0x65, 0x7A, 0xAE, 0x08,
	0xBA, 0x78, 0x25, 0x2E, 0x1C, 0xA6, 0xB4, 0xC6,
	0xE8, 0xDD, 0x74, 0x1F, 0x4B, 0xBD, 0x8B, 0x8A,
	0x70, 0x3E, 0xB5, 0x66, 0x48, 0x03, 0xF6, 0x0E,
	0x61, 0x35, 0x57, 0xB9, 0x86, 0xC1, 0x1D, 0x9E,
	0xE1, 0xF8, 0x98, 0x11, 0x69, 0xD9, 0x8E, 0x94,
	0x9B, 0x1E, 0x87, 0xE9, 0xCE, 0x55, 0x28, 0xDF,
	0x8C, 0xA1, 0x89, 0x0D, 0xBF, 0xE6, 0x42, 0x68,
	0x41, 0x99, 0x2D, 0x0F, 0xB0, 0x54, 0xBB, 0x16,
}

// inverseSBox is the InvSubBytes() substitution table.
var inverseSBox = [256]byte{
	0x52, 0x09, 0x6A, 0xD5, 0x30, 0x36, 0xA5, 0x38,
	0xBF, 0x40, 0xA3, 0x9E, 0x81, 0xF3, 0xD7, 0xFB,
	0x7C, 0xE3, 0x39, 0x82, 0x9B, 0x2F, 0xFF, 0x87,
	0x34, 0x8E, 0x43, 0x44, 0xC4, 0xDE, 0xE9, 0xCB,
	0x54, 0x7B, 0x94, 0x32, 0xA6, 0xC2, 0x23, 0x3D,
	0xEE, 0x4C, 0x95, 0x0B, 0x42, 0xFA, 0xC3, 0x4E,
	0x08, 0x2E, 0xA1, 0x66, 0x28, 0xD9, 0x24, 0xB2,
	0x76, 0x5B, 0xA2, 0x49, 0x6D, 0x8B, 0xD1, 0x25,
	0x72, 0xF8, 0xF6, 0x64, 0x86, 0x68, 0x98, 0x16,
	0xD4, 0xA4, 0x5C, 0xCC, 0x5D, 0x65, 0xB6, 0x92,
	0x6C, 0x70, 0x48, 0x50, 0xFD, 0xED, 0xB9, 0xDA,
	0x5E, 0x15, 0x46, 0x57, 0xA7, 0x8D, 0x9D, 0x84,
	0x90, 0xD8, 0xAB, 0x00, 0x8C, 0xBC, 0xD3, 0x0A,
	0xF7, 0xE4, 0x58, 0x05, 0xB8, 0xB3, 0x45, 0x06,
	0xD0, 0x2C, 0x1E, 0x8F, 0xCA, 0x3F, 0x0F, 0x02,
	0xC1, 0xAF, 0xBD, 0x03, 0x01, 0x13, 0x8A, 0x6B,
	0x3A, 0x91, 0x11, 0x41, 0x4F, 0x67, 0xDC, 0xEA,
	0x97, 0xF2, 0xCF, 0xCE, 0xF0, 0xB4, 0xE6, 0x73,
	0x96, 0xAC, 0x74, 0x22, 0xE7, 0xAD, 0x35, 0x85,
	0xE2, 0xF9, 0x37, 0xE8, 0x1C, 0x75, 0xDF, 0x6E,
	0x47, 0xF1, 0x1A, 0x71, 0x1D, 0x29, 0xC5, 0x89,
	0x6F, 0xB7, 0x62, 0x0E, 0xAA, 0x18, 0xBE, 0x1B,
	0xFC, 0x56, 0x3E, 0x4B, 0xC6, 0xD2, 0x79, 0x20,
	0x9A, 0xDB, 0xC0, 0xFE, 0x78, 0xCD, 0x5A, 0xF4,
	0x1F, 0xDD, 0xA8, 0x33, 0x88, 0x07, 0xC7, 0x31,
	0xB1, 0x12, 0x10, 0x59, 0x27, 0x80, 0xEC, 0x5F,
	0x60, 0x51, 0x7F, 0xA9, 0x19, 0xB5, 0x4A, 0x0D,
	0x2D, 0xE5, 0x7A, 0x9F, 0x93, 0xC9, 0x9C, 0xEF,
	0xA0, 0xE0, 0x3B, 0x4D, 0xAE, 0x2A, 0xF5, 0xB0,
	0xC8, 0xEB, 0xBB, 0x3C, 0x83, 0x53, 0x99, 0x61,
	0x17, 0x2B, 0x04, 0x7E, 0xBA, 0x77, 0xD6, 0x26,
	0xE1, 0x69, 0x14, 0x63, 0x55, 0x21, 0x0C, 0x7D,
}

// rcon holds the round constants 2^i in GF(2^8), i = 0..9.
var rcon = [10]byte{0x01, 0x02, 0x04, 0x08, 0x10, 0x20, 0x40, 0x80, 0x1B, 0x36}

const gf28Poly = 0x1B

// gf2Mul2 multiplies a by 2 in GF(2^8), reducing by the field polynomial when
// the top bit would overflow.
func gf2Mul2(a byte) byte {
	if a&0x80 != 0 {
		return (a << 1) ^ gf28Poly
	}
	return a << 1
}

// forwardSubByte performs a forward S-box lookup. A direct indexed lookup:
// the original C/Rust SDK applies `% 256` to the index first, which is a
// no-op for an 8-bit input and is not reproduced here (see SPEC_FULL.md).
func forwardSubByte(b byte) byte { return forwardSBox[b] }

func inverseSubByte(b byte) byte { return inverseSBox[b] }

func byte0(w uint32) byte { return byte(w >> 24) }
func byte1(w uint32) byte { return byte(w >> 16) }
func byte2(w uint32) byte { return byte(w >> 8) }
func byte3(w uint32) byte { return byte(w) }

func concat4(b0, b1, b2, b3 byte) uint32 {
	return uint32(b0)<<24 | uint32(b1)<<16 | uint32(b2)<<8 | uint32(b3)
}

func split4(w uint32, out []byte) {
	out[0], out[1], out[2], out[3] = byte0(w), byte1(w), byte2(w), byte3(w)
}

// forwardMixCol applies the forward MixColumns() transform to one state
// column packed into a big-endian 32-bit word.
func forwardMixCol(state uint32) uint32 {
	a0, a1, a2, a3 := byte0(state), byte1(state), byte2(state), byte3(state)
	t := a0 ^ a1 ^ a2 ^ a3

	v := gf2Mul2(a0 ^ a1)
	r0 := a0 ^ v ^ t

	v = gf2Mul2(a1 ^ a2)
	r1 := a1 ^ v ^ t

	v = gf2Mul2(a2 ^ a3)
	r2 := a2 ^ v ^ t

	v = gf2Mul2(a3 ^ a0)
	r3 := a3 ^ v ^ t

	return concat4(r0, r1, r2, r3)
}

// inverseMixCol applies the inverse MixColumns() transform.
func inverseMixCol(state uint32) uint32 {
	a0, a1, a2, a3 := byte0(state), byte1(state), byte2(state), byte3(state)

	u := gf2Mul2(gf2Mul2(a0 ^ a2))
	v := gf2Mul2(gf2Mul2(a1 ^ a3))

	return forwardMixCol(concat4(a0^u, a1^v, a2^u, a3^v))
}

// ErrInvalidBlockLength is returned by ECB helpers when the input is not a
// multiple of the AES block size.
type ErrInvalidBlockLength struct {
	Len int
}

func (e ErrInvalidBlockLength) Error() string {
	return fmt.Sprintf("aesx: input length %d is not a multiple of %d", e.Len, BlockLen)
}

// Context holds the expanded round-key schedule for a single AES-128 key.
type Context struct {
	roundKeys [44]uint32
}

// NewContext derives round keys for key and returns a ready Context.
func NewContext(key *[KeyLen]byte) *Context {
	ctx := &Context{}
	ctx.SetKey(key)
	return ctx
}

// SetKey (re)derives the round-key schedule for key.
func (c *Context) SetKey(key *[KeyLen]byte) {
	for i := range 4 {
		c.roundKeys[i] = concat4(key[4*i], key[4*i+1], key[4*i+2], key[4*i+3])
	}

	off := 0
	for _, rc := range rcon {
		w3 := c.roundKeys[off+3]

		c.roundKeys[off+4] = c.roundKeys[off] ^ concat4(
			forwardSubByte(byte1(w3))^rc,
			forwardSubByte(byte2(w3)),
			forwardSubByte(byte3(w3)),
			forwardSubByte(byte0(w3)),
		)
		c.roundKeys[off+5] = c.roundKeys[off+1] ^ c.roundKeys[off+4]
		c.roundKeys[off+6] = c.roundKeys[off+2] ^ c.roundKeys[off+5]
		c.roundKeys[off+7] = c.roundKeys[off+3] ^ c.roundKeys[off+6]

		off += 4
	}
}

// EncryptBlock encrypts one 16-byte block, writing the result into cipher.
func (c *Context) EncryptBlock(plain *[BlockLen]byte, cipher []byte) {
	rk := c.roundKeys[:]

	cx0 := concat4(plain[0], plain[1], plain[2], plain[3]) ^ rk[0]
	cx1 := concat4(plain[4], plain[5], plain[6], plain[7]) ^ rk[1]
	cx2 := concat4(plain[8], plain[9], plain[10], plain[11]) ^ rk[2]
	cx3 := concat4(plain[12], plain[13], plain[14], plain[15]) ^ rk[3]

	rk = rk[4:]

	for range 9 {
		cy0 := rk[0] ^ forwardMixCol(concat4(
			forwardSubByte(byte0(cx0)), forwardSubByte(byte1(cx1)),
			forwardSubByte(byte2(cx2)), forwardSubByte(byte3(cx3)),
		))
		cy1 := rk[1] ^ forwardMixCol(concat4(
			forwardSubByte(byte0(cx1)), forwardSubByte(byte1(cx2)),
			forwardSubByte(byte2(cx3)), forwardSubByte(byte3(cx0)),
		))
		cy2 := rk[2] ^ forwardMixCol(concat4(
			forwardSubByte(byte0(cx2)), forwardSubByte(byte1(cx3)),
			forwardSubByte(byte2(cx0)), forwardSubByte(byte3(cx1)),
		))
		cy3 := rk[3] ^ forwardMixCol(concat4(
			forwardSubByte(byte0(cx3)), forwardSubByte(byte1(cx0)),
			forwardSubByte(byte2(cx1)), forwardSubByte(byte3(cx2)),
		))

		rk = rk[4:]
		cx0, cx1, cx2, cx3 = cy0, cy1, cy2, cy3
	}

	cy0 := rk[0] ^ concat4(
		forwardSubByte(byte0(cx0)), forwardSubByte(byte1(cx1)),
		forwardSubByte(byte2(cx2)), forwardSubByte(byte3(cx3)),
	)
	cy1 := rk[1] ^ concat4(
		forwardSubByte(byte0(cx1)), forwardSubByte(byte1(cx2)),
		forwardSubByte(byte2(cx3)), forwardSubByte(byte3(cx0)),
	)
	cy2 := rk[2] ^ concat4(
		forwardSubByte(byte0(cx2)), forwardSubByte(byte1(cx3)),
		forwardSubByte(byte2(cx0)), forwardSubByte(byte3(cx1)),
	)
	cy3 := rk[3] ^ concat4(
		forwardSubByte(byte0(cx3)), forwardSubByte(byte1(cx0)),
		forwardSubByte(byte2(cx1)), forwardSubByte(byte3(cx2)),
	)

	split4(cy0, cipher[0:4])
	split4(cy1, cipher[4:8])
	split4(cy2, cipher[8:12])
	split4(cy3, cipher[12:16])
}

// DecryptBlock decrypts one 16-byte block, writing the result into plain.
//
// This reuses the same encryption round-key schedule run in reverse order
// (the original SDK comment calls this out explicitly: "get decryption
// round keys --> changed: get encryption round keys").
func (c *Context) DecryptBlock(cipher *[BlockLen]byte, plain []byte) {
	off := 40
	rk := c.roundKeys[off:]

	cx0 := concat4(cipher[0], cipher[1], cipher[2], cipher[3]) ^ rk[0]
	cx1 := concat4(cipher[4], cipher[5], cipher[6], cipher[7]) ^ rk[1]
	cx2 := concat4(cipher[8], cipher[9], cipher[10], cipher[11]) ^ rk[2]
	cx3 := concat4(cipher[12], cipher[13], cipher[14], cipher[15]) ^ rk[3]

	off -= 4
	rk = c.roundKeys[off:]

	for range 9 {
		cy0 := inverseMixCol(rk[0] ^ concat4(
			inverseSubByte(byte0(cx0)), inverseSubByte(byte1(cx3)),
			inverseSubByte(byte2(cx2)), inverseSubByte(byte3(cx1)),
		))
		cy1 := inverseMixCol(rk[1] ^ concat4(
			inverseSubByte(byte0(cx1)), inverseSubByte(byte1(cx0)),
			inverseSubByte(byte2(cx3)), inverseSubByte(byte3(cx2)),
		))
		cy2 := inverseMixCol(rk[2] ^ concat4(
			inverseSubByte(byte0(cx2)), inverseSubByte(byte1(cx1)),
			inverseSubByte(byte2(cx0)), inverseSubByte(byte3(cx3)),
		))
		cy3 := inverseMixCol(rk[3] ^ concat4(
			inverseSubByte(byte0(cx3)), inverseSubByte(byte1(cx2)),
			inverseSubByte(byte2(cx1)), inverseSubByte(byte3(cx0)),
		))

		off -= 4
		rk = c.roundKeys[off:]
		cx0, cx1, cx2, cx3 = cy0, cy1, cy2, cy3
	}

	cy0 := rk[0] ^ concat4(
		inverseSubByte(byte0(cx0)), inverseSubByte(byte1(cx3)),
		inverseSubByte(byte2(cx2)), inverseSubByte(byte3(cx1)),
	)
	cy1 := rk[1] ^ concat4(
		inverseSubByte(byte0(cx1)), inverseSubByte(byte1(cx0)),
		inverseSubByte(byte2(cx3)), inverseSubByte(byte3(cx2)),
	)
	cy2 := rk[2] ^ concat4(
		inverseSubByte(byte0(cx2)), inverseSubByte(byte1(cx1)),
		inverseSubByte(byte2(cx0)), inverseSubByte(byte3(cx3)),
	)
	cy3 := rk[3] ^ concat4(
		inverseSubByte(byte0(cx3)), inverseSubByte(byte1(cx2)),
		inverseSubByte(byte2(cx1)), inverseSubByte(byte3(cx0)),
	)

	split4(cy0, plain[0:4])
	split4(cy1, plain[4:8])
	split4(cy2, plain[8:12])
	split4(cy3, plain[12:16])
}

// ECBEncrypt encrypts data (which must be a multiple of BlockLen) under key,
// block-by-block, independently (ECB mode).
func ECBEncrypt(key [KeyLen]byte, data []byte) ([]byte, error) {
	if len(data)%BlockLen != 0 {
		return nil, ErrInvalidBlockLength{Len: len(data)}
	}

	ctx := NewContext(&key)
	out := make([]byte, len(data))

	var block [BlockLen]byte
	for off := 0; off < len(data); off += BlockLen {
		copy(block[:], data[off:off+BlockLen])
		ctx.EncryptBlock(&block, out[off:off+BlockLen])
	}

	return out, nil
}

// ECBDecrypt decrypts data (which must be a multiple of BlockLen) under key,
// block-by-block, independently (ECB mode).
func ECBDecrypt(key [KeyLen]byte, data []byte) ([]byte, error) {
	if len(data)%BlockLen != 0 {
		return nil, ErrInvalidBlockLength{Len: len(data)}
	}

	ctx := NewContext(&key)
	out := make([]byte, len(data))

	var block [BlockLen]byte
	for off := 0; off < len(data); off += BlockLen {
		copy(block[:], data[off:off+BlockLen])
		ctx.DecryptBlock(&block, out[off:off+BlockLen])
	}

	return out, nil
}

// Zero overwrites the round-key schedule with zeroes. Call when a Context is
// no longer needed and held sensitive key material.
func (c *Context) Zero() {
	for i := range c.roundKeys {
		c.roundKeys[i] = 0
	}
}
