// Package tripledes implements three-key Triple DES (FIPS 46-3, NIST SP
// 800-67) as a pseudorandom permutation over 8-byte blocks.
//
// An Engine is built once from a 24-byte key K1 || K2 || K3 and then exposes
// both directions:
//
//   - Compute: encrypt with K1, decrypt with K2, encrypt with K3 (EDE)
//   - Invert: decrypt with K3, encrypt with K2, decrypt with K1
//
// Only single blocks are processed. Modes of operation, padding and MACs
// belong to callers; Engine implements cipher.Block so the standard
// crypto/cipher modes can be layered on top.
//
// # Side Channels
//
// Permutations use table-driven shifts that depend only on public table
// positions. S-box substitution reads all 64 entries of a box and selects
// the match with crypto/subtle masks, so memory access and control flow are
// independent of key and data.
//
// # Key Material
//
// New copies nothing but the derived round keys, which are zeroed by Close
// (or by a runtime cleanup if Close is never called). Config.LockMemory keeps
// those round keys in memory that is never swapped out where the platform
// allows it. GenerateKey, DeriveKey and CheckKey help callers avoid weak and
// degenerate keys; New itself accepts every 24-byte key and ignores parity.
package tripledes
