package prf

import "runtime"

// ZeroizeBytes overwrites the provided slice with zeros and prevents compiler
// dead store elimination using runtime.KeepAlive.
//
// This follows the pattern recommended in golang/go#33325. It cannot
// guarantee complete memory sanitization because the garbage collector may
// have moved or copied the buffer, so callers that need stronger guarantees
// should keep secrets in locked memory (see tripledes.Config.LockMemory).
func ZeroizeBytes(buf []byte) {
	for i := range buf {
		buf[i] = 0
	}
	// Prevent dead store elimination per golang/go#33325
	runtime.KeepAlive(buf)
}
