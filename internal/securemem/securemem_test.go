package securemem

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRejectsBadSize(t *testing.T) {
	_, err := New(0, false)
	require.Error(t, err)
	_, err = New(-1, true)
	require.Error(t, err)
}

func TestHeapBuffer(t *testing.T) {
	b, err := New(24, false)
	require.NoError(t, err)
	assert.False(t, b.Locked())

	data, err := b.Bytes()
	require.NoError(t, err)
	require.Len(t, data, 24)
	for i := range data {
		data[i] = 0xAA
	}

	require.NoError(t, b.Destroy())
	for i, v := range data {
		assert.Zerof(t, v, "byte %d not cleared", i)
	}

	_, err = b.Bytes()
	assert.ErrorIs(t, err, ErrDestroyed)
	assert.NoError(t, b.Destroy(), "Destroy must be idempotent")
}

// Locking may be refused by RLIMIT_MEMLOCK; either outcome must yield a
// usable buffer of the requested size.
func TestLockedBufferFallsBack(t *testing.T) {
	b, err := New(384, true)
	require.NoError(t, err)

	data, err := b.Bytes()
	require.NoError(t, err)
	require.Len(t, data, 384)
	for _, v := range data {
		require.Zero(t, v)
	}
	data[0], data[383] = 1, 2

	if b.Locked() {
		t.Logf("buffer locked in RAM")
	} else {
		t.Logf("memory locking unavailable, using heap")
	}
	require.NoError(t, b.Destroy())
	_, err = b.Bytes()
	assert.ErrorIs(t, err, ErrDestroyed)
}
