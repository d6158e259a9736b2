package tripledes

import (
	"crypto/subtle"
	"encoding/binary"
)

// Encrypt enciphers exactly one block from src into dst with single DES.
// It panics if src is not BlockSize bytes or dst is shorter than BlockSize.
func (ks *KeySchedule) Encrypt(dst, src []byte) {
	mustBlock(dst, src)
	binary.BigEndian.PutUint64(dst, ks.encrypt(binary.BigEndian.Uint64(src)))
}

// Decrypt deciphers exactly one block from src into dst with single DES.
// It panics if src is not BlockSize bytes or dst is shorter than BlockSize.
func (ks *KeySchedule) Decrypt(dst, src []byte) {
	mustBlock(dst, src)
	binary.BigEndian.PutUint64(dst, ks.decrypt(binary.BigEndian.Uint64(src)))
}

func mustBlock(dst, src []byte) {
	if len(src) != BlockSize {
		panic("tripledes: input not full block")
	}
	if len(dst) < BlockSize {
		panic("tripledes: output not full block")
	}
}

func (ks *KeySchedule) encrypt(b uint64) uint64 {
	b = permute(b, 64, initialPermutation[:])
	l, r := uint32(b>>32), uint32(b)
	for i := 0; i < rounds; i++ {
		l, r = r, l^feistel(r, ks.roundKey(i))
	}
	// The halves are swapped after the last round.
	return permute(uint64(r)<<32|uint64(l), 64, finalPermutation[:])
}

func (ks *KeySchedule) decrypt(b uint64) uint64 {
	b = permute(b, 64, initialPermutation[:])
	l, r := uint32(b>>32), uint32(b)
	for i := rounds - 1; i >= 0; i-- {
		l, r = r, l^feistel(r, ks.roundKey(i))
	}
	return permute(uint64(r)<<32|uint64(l), 64, finalPermutation[:])
}

// feistel is the DES round function F(R, K).
func feistel(r uint32, k uint64) uint32 {
	x := permute(uint64(r), 32, expansion[:]) ^ k
	var s uint32
	for box := 0; box < 8; box++ {
		s = s<<4 | sboxLookup(box, uint8(x>>(42-6*box))&0x3f)
	}
	return uint32(permute(uint64(s), 32, roundPermutation[:]))
}

// sboxLookup returns S-box box applied to the 6-bit input in. Every entry of
// the box is read and the match is selected with a mask, so neither the
// memory access pattern nor the control flow depends on in.
func sboxLookup(box int, in uint8) uint32 {
	row := (in&0x20)>>4 | in&0x01
	idx := row<<4 | (in>>1)&0x0f
	var out uint8
	for j := 0; j < 64; j++ {
		mask := -uint8(subtle.ConstantTimeByteEq(uint8(j), idx))
		out |= sBoxes[box][j>>4][j&0x0f] & mask
	}
	return uint32(out)
}

// permute builds a len(table)-bit word whose i-th bit (from the most
// significant end) is bit table[i] of the width-bit word src. Bit positions
// are 1-based from the most significant bit, as in FIPS 46-3. Shift amounts
// come from the table only.
func permute(src uint64, width uint, table []uint8) uint64 {
	var out uint64
	for _, pos := range table {
		out = out<<1 | (src>>(width-uint(pos)))&1
	}
	return out
}
