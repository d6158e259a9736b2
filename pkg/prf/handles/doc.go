// Package handles exposes tripledes engines through opaque integer handles
// for embedding layers (cgo exports, plugin hosts, RPC shims) that cannot
// hold Go pointers.
//
// The flow mirrors a classic native PRF binding: the host allocates one
// compute handle and one invert handle, binds a key to both with a single
// SetKey call, and then calls Compute or Invert by handle. Both handles share
// one Engine, so the key schedule is derived once. Calling SetKey again
// builds a fresh Engine; the previous one is zeroized as soon as no handle
// refers to it.
//
//	reg := handles.NewRegistry(tripledes.Config{})
//	c, i := reg.CreateCompute(), reg.CreateInvert()
//	if err := reg.SetKey(c, i, key); err != nil {
//	    return err
//	}
//	out, err := reg.Compute(c, block)
//	...
//	reg.Free(c)
//	reg.Free(i)
//
// A Registry is safe for concurrent use. Re-keying waits for in-flight
// Compute and Invert calls, so an engine is never zeroized under a reader.
package handles
