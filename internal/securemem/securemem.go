// Package securemem allocates small buffers for key material. On platforms
// that support it the buffer can live in its own anonymous mapping locked
// into RAM, so it is never written to swap; elsewhere it falls back to the
// Go heap. Destroy always zeroes the bytes before releasing them.
package securemem

import (
	"errors"
	"runtime"
	"sync"
)

// ErrDestroyed is returned by Bytes after Destroy.
var ErrDestroyed = errors.New("securemem: buffer destroyed")

// Buffer is a fixed-size byte buffer for secrets.
type Buffer struct {
	mu      sync.Mutex
	data    []byte
	size    int
	locked  bool
	release func([]byte) error
}

// New returns a zeroed buffer of size bytes. When lock is set the buffer is
// placed in locked memory if the platform and resource limits allow it;
// otherwise the heap is used and Locked reports false. The returned error is
// non-nil only for an invalid size.
func New(size int, lock bool) (*Buffer, error) {
	if size <= 0 {
		return nil, errors.New("securemem: size must be positive")
	}
	if lock {
		if b, ok := allocLocked(size); ok {
			return b, nil
		}
	}
	return &Buffer{data: make([]byte, size), size: size}, nil
}

// Bytes returns the usable region of the buffer.
func (b *Buffer) Bytes() ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.data == nil {
		return nil, ErrDestroyed
	}
	return b.data[:b.size], nil
}

// Locked reports whether the buffer lives in locked memory.
func (b *Buffer) Locked() bool {
	return b.locked
}

// Destroy zeroes the buffer and releases any mapping. It is idempotent.
func (b *Buffer) Destroy() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.data == nil {
		return nil
	}
	clear(b.data)
	runtime.KeepAlive(b.data)
	var err error
	if b.release != nil {
		err = b.release(b.data)
	}
	b.data = nil
	return err
}
