package tripledes

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"

	"github.com/coinbase/cb-prf-go/pkg/prf"
)

const maxKeyAttempts = 8

// weakKeys lists the 4 weak and 12 semi-weak DES keys (FIPS 74).
var weakKeys = [16][SubKeySize]byte{
	{0x01, 0x01, 0x01, 0x01, 0x01, 0x01, 0x01, 0x01},
	{0xFE, 0xFE, 0xFE, 0xFE, 0xFE, 0xFE, 0xFE, 0xFE},
	{0xE0, 0xE0, 0xE0, 0xE0, 0xF1, 0xF1, 0xF1, 0xF1},
	{0x1F, 0x1F, 0x1F, 0x1F, 0x0E, 0x0E, 0x0E, 0x0E},

	{0x01, 0x1F, 0x01, 0x1F, 0x01, 0x0E, 0x01, 0x0E},
	{0x1F, 0x01, 0x1F, 0x01, 0x0E, 0x01, 0x0E, 0x01},
	{0x01, 0xE0, 0x01, 0xE0, 0x01, 0xF1, 0x01, 0xF1},
	{0xE0, 0x01, 0xE0, 0x01, 0xF1, 0x01, 0xF1, 0x01},
	{0x01, 0xFE, 0x01, 0xFE, 0x01, 0xFE, 0x01, 0xFE},
	{0xFE, 0x01, 0xFE, 0x01, 0xFE, 0x01, 0xFE, 0x01},
	{0x1F, 0xE0, 0x1F, 0xE0, 0x0E, 0xF1, 0x0E, 0xF1},
	{0xE0, 0x1F, 0xE0, 0x1F, 0xF1, 0x0E, 0xF1, 0x0E},
	{0x1F, 0xFE, 0x1F, 0xFE, 0x0E, 0xFE, 0x0E, 0xFE},
	{0xFE, 0x1F, 0xFE, 0x1F, 0xFE, 0x0E, 0xFE, 0x0E},
	{0xE0, 0xFE, 0xE0, 0xFE, 0xF1, 0xFE, 0xF1, 0xFE},
	{0xFE, 0xE0, 0xFE, 0xE0, 0xFE, 0xF1, 0xFE, 0xF1},
}

// GenerateKey returns a fresh 24-byte key read from r (crypto/rand.Reader
// when r is nil). Every byte has odd parity, no sub-key is weak or semi-weak,
// and the three sub-keys are pairwise distinct.
func GenerateKey(r io.Reader) ([]byte, error) {
	if r == nil {
		r = rand.Reader
	}
	key := make([]byte, KeySize)
	for attempt := 0; attempt < maxKeyAttempts; attempt++ {
		if _, err := io.ReadFull(r, key); err != nil {
			prf.ZeroizeBytes(key)
			return nil, fmt.Errorf("read key material: %w", err)
		}
		SetOddParity(key)
		if CheckKey(key) == nil {
			return key, nil
		}
	}
	prf.ZeroizeBytes(key)
	return nil, fmt.Errorf("%w: no acceptable key after %d attempts", prf.ErrWeakKey, maxKeyAttempts)
}

// DeriveKey expands secret into a 24-byte odd-parity key with HKDF-SHA256.
// The same (secret, salt, info) always yields the same key. It returns
// prf.ErrWeakKey in the negligible case that the output fails CheckKey; a
// different info string resolves it.
func DeriveKey(secret, salt, info []byte) ([]byte, error) {
	if len(secret) == 0 {
		return nil, errors.New("empty secret")
	}
	key := make([]byte, KeySize)
	if _, err := io.ReadFull(hkdf.New(sha256.New, secret, salt, info), key); err != nil {
		return nil, fmt.Errorf("hkdf: %w", err)
	}
	SetOddParity(key)
	if err := CheckKey(key); err != nil {
		prf.ZeroizeBytes(key)
		return nil, err
	}
	return key, nil
}

// CheckKey reports whether a 24-byte key is suitable for three-key 3DES. It
// fails with prf.ErrWeakKey when a sub-key is weak or semi-weak or two
// sub-keys are equal (ignoring parity), since equal sub-keys reduce the
// cipher to two-key 3DES or single DES. New does not call CheckKey; any
// 24-byte key can be used.
func CheckKey(key []byte) error {
	if len(key) != KeySize {
		return fmt.Errorf("%w: 3DES key must be %d bytes, got %d", prf.ErrInvalidKeyLength, KeySize, len(key))
	}
	k1, k2, k3 := key[:8], key[8:16], key[16:]
	weak := isWeak(k1) | isWeak(k2) | isWeak(k3)
	if weak == 1 {
		return fmt.Errorf("%w: weak or semi-weak sub-key", prf.ErrWeakKey)
	}
	equal := sameKey(k1, k2) | sameKey(k2, k3) | sameKey(k1, k3)
	if equal == 1 {
		return fmt.Errorf("%w: repeated sub-key", prf.ErrWeakKey)
	}
	return nil
}

// IsWeakKey reports whether an 8-byte DES key is one of the weak or
// semi-weak keys, ignoring parity bits. It returns false for any other
// length.
func IsWeakKey(key []byte) bool {
	if len(key) != SubKeySize {
		return false
	}
	return isWeak(key) == 1
}

// SetOddParity sets the low bit of every byte of key so that each byte has
// an odd number of set bits.
func SetOddParity(key []byte) {
	for i, b := range key {
		b &^= 1
		p := b ^ b>>4
		p ^= p >> 2
		p ^= p >> 1
		key[i] = b | (^p & 1)
	}
}

// isWeak scans the whole table so the running time does not depend on key.
func isWeak(key []byte) int {
	var k [SubKeySize]byte
	stripParity(&k, key)
	found := 0
	for i := range weakKeys {
		var w [SubKeySize]byte
		stripParity(&w, weakKeys[i][:])
		found |= subtle.ConstantTimeCompare(k[:], w[:])
	}
	return found
}

func sameKey(a, b []byte) int {
	var x, y [SubKeySize]byte
	stripParity(&x, a)
	stripParity(&y, b)
	return subtle.ConstantTimeCompare(x[:], y[:])
}

func stripParity(dst *[SubKeySize]byte, key []byte) {
	for i := range dst {
		dst[i] = key[i] &^ 1
	}
}
