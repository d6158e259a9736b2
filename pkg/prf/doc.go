// Package prf is the root of the cb-prf-go toolkit: pseudorandom functions
// and permutations that higher-level protocols consume as raw block
// transforms.
//
// The root package carries the pieces shared by every primitive: the
// sentinel errors callers match with errors.Is, best-effort zeroization of
// sensitive buffers, and version metadata. The primitives themselves live in
// subpackages:
//
//   - tripledes: three-key Triple DES (EDE) with constant-time S-box access
//   - handles: an opaque-handle registry for embedding layers that cannot
//     hold Go pointers
//   - logging: a small slog facade with redaction helpers
//
// # Usage
//
//	key, err := tripledes.GenerateKey(rand.Reader)
//	if err != nil {
//	    return err
//	}
//	e, err := tripledes.New(key)
//	if err != nil {
//	    return err
//	}
//	defer e.Close()
//	prf.ZeroizeBytes(key)
//
//	out, err := e.Compute(block) // block must be exactly 8 bytes
package prf
