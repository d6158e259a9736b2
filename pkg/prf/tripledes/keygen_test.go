package tripledes_test

import (
	"bytes"
	"errors"
	"io"
	"math/bits"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coinbase/cb-prf-go/pkg/prf"
	"github.com/coinbase/cb-prf-go/pkg/prf/tripledes"
)

func TestGenerateKey(t *testing.T) {
	key, err := tripledes.GenerateKey(nil)
	require.NoError(t, err)
	require.Len(t, key, tripledes.KeySize)
	assertOddParity(t, key)
	assert.NoError(t, tripledes.CheckKey(key))

	other, err := tripledes.GenerateKey(nil)
	require.NoError(t, err)
	assert.NotEqual(t, key, other)
}

func TestGenerateKeySkipsWeakCandidates(t *testing.T) {
	weak := bytes.Repeat(decodeHex(t, "0101010101010101"), 3)
	good := decodeHex(t, sp80067Key)
	r := io.MultiReader(bytes.NewReader(weak), bytes.NewReader(good))

	key, err := tripledes.GenerateKey(r)
	require.NoError(t, err)
	// sp80067Key already has odd parity, so it comes back unchanged.
	assert.Equal(t, good, key)
}

func TestGenerateKeyGivesUp(t *testing.T) {
	_, err := tripledes.GenerateKey(bytes.NewReader(make([]byte, 64*tripledes.KeySize)))
	assert.ErrorIs(t, err, prf.ErrWeakKey)
}

func TestGenerateKeyReaderError(t *testing.T) {
	boom := errors.New("boom")
	_, err := tripledes.GenerateKey(iotest.ErrReader(boom))
	assert.ErrorIs(t, err, boom)

	_, err = tripledes.GenerateKey(bytes.NewReader(make([]byte, 5)))
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestIsWeakKey(t *testing.T) {
	weak := []string{
		"0101010101010101", "fefefefefefefefe", "e0e0e0e0f1f1f1f1", "1f1f1f1f0e0e0e0e",
		"011f011f010e010e", "1f011f010e010e01", "01e001e001f101f1", "e001e001f101f101",
		"01fe01fe01fe01fe", "fe01fe01fe01fe01", "1fe01fe00ef10ef1", "e01fe01ff10ef10e",
		"1ffe1ffe0efe0efe", "fe1ffe1ffe0efe0e", "e0fee0fef1fef1fe", "fee0fee0fef1fef1",
		// parity bits do not matter
		"0000000000000000", "ffffffffffffffff",
	}
	for _, k := range weak {
		assert.Truef(t, tripledes.IsWeakKey(decodeHex(t, k)), "%s should be weak", k)
	}

	assert.False(t, tripledes.IsWeakKey(decodeHex(t, textbookKey)))
	assert.False(t, tripledes.IsWeakKey(decodeHex(t, "0123456789abcdef")))
	assert.False(t, tripledes.IsWeakKey(make([]byte, 7)))
}

func TestCheckKey(t *testing.T) {
	good := decodeHex(t, sp80067Key)
	assert.NoError(t, tripledes.CheckKey(good))

	sub := decodeHex(t, textbookKey)
	assert.ErrorIs(t, tripledes.CheckKey(bytes.Repeat(sub, 3)), prf.ErrWeakKey)

	twoKey := append(bytes.Clone(good[:16]), good[:8]...)
	assert.ErrorIs(t, tripledes.CheckKey(twoKey), prf.ErrWeakKey, "K1 == K3")

	withWeak := bytes.Clone(good)
	copy(withWeak[8:], decodeHex(t, "fefefefefefefefe"))
	assert.ErrorIs(t, tripledes.CheckKey(withWeak), prf.ErrWeakKey)

	assert.ErrorIs(t, tripledes.CheckKey(good[:23]), prf.ErrInvalidKeyLength)

	// Weak keys are still accepted by the engine itself.
	e, err := tripledes.New(withWeak)
	require.NoError(t, err)
	require.NoError(t, e.Close())
}

func TestSetOddParity(t *testing.T) {
	key := []byte{0x00, 0x01, 0x02, 0x03, 0xfe, 0xff, 0x80, 0x7f}
	tripledes.SetOddParity(key)
	assert.Equal(t, []byte{0x01, 0x01, 0x02, 0x02, 0xfe, 0xfe, 0x80, 0x7f}, key)
	assertOddParity(t, key)
}

func TestDeriveKey(t *testing.T) {
	secret := []byte("shared secret from a key agreement")

	a, err := tripledes.DeriveKey(secret, []byte("salt"), []byte("cb-prf tripledes"))
	require.NoError(t, err)
	require.Len(t, a, tripledes.KeySize)
	assertOddParity(t, a)

	b, err := tripledes.DeriveKey(secret, []byte("salt"), []byte("cb-prf tripledes"))
	require.NoError(t, err)
	assert.Equal(t, a, b, "derivation must be deterministic")

	c, err := tripledes.DeriveKey(secret, []byte("salt"), []byte("other context"))
	require.NoError(t, err)
	assert.NotEqual(t, a, c, "info must separate domains")

	_, err = tripledes.DeriveKey(nil, nil, nil)
	assert.Error(t, err)
}

func assertOddParity(t *testing.T, key []byte) {
	t.Helper()
	for i, b := range key {
		assert.Equalf(t, 1, bits.OnesCount8(b)%2, "byte %d (%08b) has even parity", i, b)
	}
}
