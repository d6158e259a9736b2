package tripledes

import (
	"context"
	"crypto/cipher"
	"encoding/binary"
	"fmt"
	"runtime"
	"sync/atomic"

	"github.com/coinbase/cb-prf-go/internal/securemem"
	"github.com/coinbase/cb-prf-go/pkg/prf"
	"github.com/coinbase/cb-prf-go/pkg/prf/logging"
)

// AlgorithmName is the name reported by Engine.AlgorithmName.
const AlgorithmName = "TripleDES"

// Engine is a three-key Triple DES permutation. Compute runs EDE
// (encrypt K1, decrypt K2, encrypt K3) and Invert is its exact inverse.
//
// An Engine is immutable after construction and may be shared by any number
// of goroutines. Close must not be called while other calls are in flight.
type Engine struct {
	mem     *securemem.Buffer
	ks      [3]KeySchedule
	closed  atomic.Bool
	cleanup runtime.Cleanup
}

var _ cipher.Block = (*Engine)(nil)

// New derives an Engine from a 24-byte key K1 || K2 || K3. The key bytes are
// not retained; callers may zeroize them as soon as New returns.
func New(key []byte) (*Engine, error) {
	return NewWithConfig(key, Config{})
}

// NewWithConfig is New with explicit configuration.
func NewWithConfig(key []byte, cfg Config) (*Engine, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("%w: 3DES key must be %d bytes, got %d", prf.ErrInvalidKeyLength, KeySize, len(key))
	}
	log := logging.OrDiscard(cfg.Logger)
	ctx := context.Background()

	mem, err := securemem.New(3*scheduleSize, cfg.LockMemory)
	if err != nil {
		return nil, prf.RemapError(err)
	}
	buf, err := mem.Bytes()
	if err != nil {
		return nil, prf.RemapError(err)
	}

	e := &Engine{mem: mem}
	for i := range e.ks {
		e.ks[i] = KeySchedule{subkeys: buf[i*scheduleSize : (i+1)*scheduleSize]}
		expandKey(e.ks[i].subkeys, key[i*SubKeySize:(i+1)*SubKeySize])
	}
	e.cleanup = runtime.AddCleanup(e, func(m *securemem.Buffer) { _ = m.Destroy() }, mem)

	if cfg.LockMemory && !mem.Locked() {
		log.Warn(ctx, "memory locking unavailable, key schedules kept on the heap")
	}
	log.Debug(ctx, "engine constructed",
		"algorithm", AlgorithmName,
		logging.Redacted("key"),
		"locked", mem.Locked(),
	)
	return e, nil
}

// AlgorithmName returns "TripleDES".
func (e *Engine) AlgorithmName() string { return AlgorithmName }

// BlockSize returns the cipher's block size.
func (e *Engine) BlockSize() int { return BlockSize }

// Compute applies the forward 3DES permutation to an 8-byte block and
// returns a new 8-byte slice.
func (e *Engine) Compute(block []byte) ([]byte, error) {
	out := make([]byte, BlockSize)
	if err := e.ComputeBlock(out, block); err != nil {
		return nil, err
	}
	return out, nil
}

// Invert applies the inverse 3DES permutation to an 8-byte block and returns
// a new 8-byte slice.
func (e *Engine) Invert(block []byte) ([]byte, error) {
	out := make([]byte, BlockSize)
	if err := e.InvertBlock(out, block); err != nil {
		return nil, err
	}
	return out, nil
}

// ComputeBlock is Compute writing into dst, which must have room for one
// block. dst and src may overlap.
func (e *Engine) ComputeBlock(dst, src []byte) error {
	if err := e.check(dst, src); err != nil {
		return err
	}
	binary.BigEndian.PutUint64(dst, e.compute(binary.BigEndian.Uint64(src)))
	return nil
}

// InvertBlock is Invert writing into dst, which must have room for one
// block. dst and src may overlap.
func (e *Engine) InvertBlock(dst, src []byte) error {
	if err := e.check(dst, src); err != nil {
		return err
	}
	binary.BigEndian.PutUint64(dst, e.invert(binary.BigEndian.Uint64(src)))
	return nil
}

// Encrypt implements cipher.Block. It panics if src is not exactly one block,
// dst is shorter than a block, or the engine is closed.
func (e *Engine) Encrypt(dst, src []byte) {
	mustBlock(dst, src)
	if e.closed.Load() {
		panic("tripledes: use of closed engine")
	}
	binary.BigEndian.PutUint64(dst, e.compute(binary.BigEndian.Uint64(src)))
}

// Decrypt implements cipher.Block. It panics under the same conditions as
// Encrypt.
func (e *Engine) Decrypt(dst, src []byte) {
	mustBlock(dst, src)
	if e.closed.Load() {
		panic("tripledes: use of closed engine")
	}
	binary.BigEndian.PutUint64(dst, e.invert(binary.BigEndian.Uint64(src)))
}

// Close zeroes the key schedules and releases their memory. It is
// idempotent; later Compute and Invert calls fail with prf.ErrClosed.
func (e *Engine) Close() error {
	if e == nil || !e.closed.CompareAndSwap(false, true) {
		return nil
	}
	e.cleanup.Stop()
	return e.mem.Destroy()
}

func (e *Engine) check(dst, src []byte) error {
	if len(src) != BlockSize {
		return fmt.Errorf("%w: block must be %d bytes, got %d", prf.ErrInvalidInputLength, BlockSize, len(src))
	}
	if len(dst) < BlockSize {
		return fmt.Errorf("%w: output buffer holds %d bytes, need %d", prf.ErrInvalidInputLength, len(dst), BlockSize)
	}
	if e == nil || e.closed.Load() {
		return prf.ErrClosed
	}
	return nil
}

// compute is EDE: E(K1), D(K2), E(K3).
func (e *Engine) compute(b uint64) uint64 {
	b = e.ks[0].encrypt(b)
	b = e.ks[1].decrypt(b)
	return e.ks[2].encrypt(b)
}

// invert is DED with the schedules in reverse: D(K3), E(K2), D(K1).
func (e *Engine) invert(b uint64) uint64 {
	b = e.ks[2].decrypt(b)
	b = e.ks[1].encrypt(b)
	return e.ks[0].decrypt(b)
}
