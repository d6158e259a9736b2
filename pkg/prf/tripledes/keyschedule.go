package tripledes

import (
	"encoding/binary"
	"fmt"

	"github.com/coinbase/cb-prf-go/pkg/prf"
)

const (
	// BlockSize is the DES and 3DES block size in bytes.
	BlockSize = 8

	// KeySize is the three-key 3DES key size in bytes (K1 || K2 || K3).
	KeySize = 3 * SubKeySize

	// SubKeySize is the size of one DES key, parity bits included.
	SubKeySize = 8

	rounds       = 16
	scheduleSize = rounds * 8
	halfMask     = 1<<28 - 1
)

// KeySchedule holds the sixteen 48-bit round keys derived from one DES key.
// It is read-only after derivation and safe for concurrent use.
type KeySchedule struct {
	// rounds big-endian uint64 words, 48 significant bits each
	subkeys []byte
}

// NewKeySchedule derives the DES key schedule for an 8-byte key. Parity bits
// are ignored, never checked.
func NewKeySchedule(key []byte) (*KeySchedule, error) {
	if len(key) != SubKeySize {
		return nil, fmt.Errorf("%w: DES key must be %d bytes, got %d", prf.ErrInvalidKeyLength, SubKeySize, len(key))
	}
	ks := &KeySchedule{subkeys: make([]byte, scheduleSize)}
	expandKey(ks.subkeys, key)
	return ks, nil
}

// Destroy zeroes the round keys. The schedule must not be used afterwards.
func (ks *KeySchedule) Destroy() {
	prf.ZeroizeBytes(ks.subkeys)
}

// expandKey writes the 16 round keys for key into dst, which must hold
// scheduleSize bytes.
func expandKey(dst, key []byte) {
	cd := permute(binary.BigEndian.Uint64(key), 64, permutedChoice1[:])
	c := uint32(cd>>28) & halfMask
	d := uint32(cd) & halfMask
	for i, n := range ksRotations {
		c = rotate28(c, n)
		d = rotate28(d, n)
		k := permute(uint64(c)<<28|uint64(d), 56, permutedChoice2[:])
		binary.BigEndian.PutUint64(dst[i*8:], k)
	}
}

func (ks *KeySchedule) roundKey(i int) uint64 {
	return binary.BigEndian.Uint64(ks.subkeys[i*8:])
}

func rotate28(x uint32, n uint8) uint32 {
	return (x<<n | x>>(28-n)) & halfMask
}
