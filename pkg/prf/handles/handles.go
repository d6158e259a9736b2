package handles

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/dolthub/swiss"

	"github.com/coinbase/cb-prf-go/pkg/prf"
	"github.com/coinbase/cb-prf-go/pkg/prf/logging"
	"github.com/coinbase/cb-prf-go/pkg/prf/tripledes"
)

// Handle is an opaque identifier for a compute or invert endpoint. The zero
// Handle is never issued.
type Handle uint64

// Role is the direction a handle may be used for.
type Role uint8

const (
	RoleCompute Role = iota + 1
	RoleInvert
)

func (r Role) String() string {
	switch r {
	case RoleCompute:
		return "compute"
	case RoleInvert:
		return "invert"
	default:
		return fmt.Sprintf("Role(%d)", uint8(r))
	}
}

// keyed is an engine shared by the handles bound in one SetKey call.
type keyed struct {
	engine *tripledes.Engine
	refs   int
}

type entry struct {
	role Role
	key  *keyed
}

// Registry maps handles to engines.
type Registry struct {
	mu      sync.RWMutex
	next    Handle
	entries *swiss.Map[Handle, *entry]
	cfg     tripledes.Config
	log     logging.Logger
}

// NewRegistry returns an empty registry. cfg is used for every engine the
// registry constructs; its Logger also receives handle lifecycle events.
func NewRegistry(cfg tripledes.Config) *Registry {
	return &Registry{
		next:    1,
		entries: swiss.NewMap[Handle, *entry](8),
		cfg:     cfg,
		log:     logging.OrDiscard(cfg.Logger).With("component", "handles"),
	}
}

// CreateCompute allocates an unkeyed handle for the forward direction.
func (r *Registry) CreateCompute() Handle {
	return r.create(RoleCompute)
}

// CreateInvert allocates an unkeyed handle for the inverse direction.
func (r *Registry) CreateInvert() Handle {
	return r.create(RoleInvert)
}

func (r *Registry) create(role Role) Handle {
	r.mu.Lock()
	h := r.next
	r.next++
	r.entries.Put(h, &entry{role: role})
	r.mu.Unlock()

	r.log.Debug(context.Background(), "handle created", "handle", uint64(h), "role", role.String())
	return h
}

// SetKey derives one engine from key and binds it to both handles, replacing
// whatever they were bound to before. On error neither handle changes.
func (r *Registry) SetKey(compute, invert Handle, key []byte) error {
	// Derive outside the lock; schedule expansion does not touch the registry.
	e, err := tripledes.NewWithConfig(key, r.cfg)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	ce, err := r.lookup(compute, RoleCompute)
	if err != nil {
		return errors.Join(err, e.Close())
	}
	ie, err := r.lookup(invert, RoleInvert)
	if err != nil {
		return errors.Join(err, e.Close())
	}

	k := &keyed{engine: e, refs: 2}
	err = errors.Join(release(ce.key), release(ie.key))
	ce.key, ie.key = k, k

	r.log.Debug(context.Background(), "key bound",
		"compute", uint64(compute),
		"invert", uint64(invert),
		logging.Redacted("key"),
	)
	return err
}

// Compute runs the forward permutation through a compute handle.
func (r *Registry) Compute(h Handle, block []byte) ([]byte, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, err := r.engine(h, RoleCompute)
	if err != nil {
		return nil, err
	}
	return e.Compute(block)
}

// Invert runs the inverse permutation through an invert handle.
func (r *Registry) Invert(h Handle, block []byte) ([]byte, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, err := r.engine(h, RoleInvert)
	if err != nil {
		return nil, err
	}
	return e.Invert(block)
}

// Free releases a handle of either role. The bound engine is zeroized once
// its last handle is freed.
func (r *Registry) Free(h Handle) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	ent, ok := r.entries.Get(h)
	if !ok {
		return fmt.Errorf("%w: %d", prf.ErrUnknownHandle, uint64(h))
	}
	r.entries.Delete(h)
	err := release(ent.key)

	r.log.Debug(context.Background(), "handle freed", "handle", uint64(h), "role", ent.role.String())
	return err
}

// Close frees every outstanding handle.
func (r *Registry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var errs []error
	r.entries.Iter(func(_ Handle, ent *entry) bool {
		errs = append(errs, release(ent.key))
		return false
	})
	r.entries.Clear()
	return errors.Join(errs...)
}

// Len returns the number of live handles.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.entries.Count()
}

// Role reports the direction of a live handle.
func (r *Registry) Role(h Handle) (Role, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ent, ok := r.entries.Get(h)
	if !ok {
		return 0, fmt.Errorf("%w: %d", prf.ErrUnknownHandle, uint64(h))
	}
	return ent.role, nil
}

// engine must be called with r.mu held.
func (r *Registry) engine(h Handle, role Role) (*tripledes.Engine, error) {
	ent, err := r.lookup(h, role)
	if err != nil {
		return nil, err
	}
	if ent.key == nil {
		return nil, fmt.Errorf("%w: handle %d", prf.ErrKeyNotSet, uint64(h))
	}
	return ent.key.engine, nil
}

// lookup must be called with r.mu held.
func (r *Registry) lookup(h Handle, role Role) (*entry, error) {
	ent, ok := r.entries.Get(h)
	if !ok {
		return nil, fmt.Errorf("%w: %d", prf.ErrUnknownHandle, uint64(h))
	}
	if ent.role != role {
		return nil, fmt.Errorf("%w: handle %d is a %s handle", prf.ErrWrongRole, uint64(h), ent.role)
	}
	return ent, nil
}

// release drops one reference and closes the engine with the last one.
func release(k *keyed) error {
	if k == nil {
		return nil
	}
	k.refs--
	if k.refs > 0 {
		return nil
	}
	return k.engine.Close()
}
