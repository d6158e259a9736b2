package prf

import (
	"errors"
)

var (
	// ErrInvalidKeyLength reports key material of the wrong size. It is a
	// contract violation: retrying with the same input cannot succeed.
	ErrInvalidKeyLength = errors.New("invalid key length")

	// ErrInvalidInputLength reports a block that is not exactly one cipher
	// block long. Inputs are never truncated or padded.
	ErrInvalidInputLength = errors.New("invalid input length")

	// ErrClosed is returned when a primitive is used after its key material
	// has been destroyed.
	ErrClosed = errors.New("primitive closed")

	// ErrUnknownHandle is returned by the handle registry for handles that
	// were never issued or have already been freed.
	ErrUnknownHandle = errors.New("unknown handle")

	// ErrWrongRole is returned when a compute handle is used for inversion or
	// the other way round.
	ErrWrongRole = errors.New("handle used for the wrong direction")

	// ErrKeyNotSet is returned when a handle is used before a key was bound
	// to it.
	ErrKeyNotSet = errors.New("key not set")

	// ErrWeakKey reports a DES weak or semi-weak sub-key, or a 3DES key whose
	// sub-keys collapse the cipher. Only the key generation helpers return
	// it; engine construction accepts every 24-byte key.
	ErrWeakKey = errors.New("weak key")
)

// RemapError converts errors raised by internal layers to public API errors.
// This is exported for use by primitive subpackages.
func RemapError(err error) error {
	if err == nil {
		return nil
	}
	for _, sentinel := range []error{
		ErrInvalidKeyLength,
		ErrInvalidInputLength,
		ErrClosed,
		ErrUnknownHandle,
		ErrWrongRole,
		ErrKeyNotSet,
		ErrWeakKey,
	} {
		if errors.Is(err, sentinel) {
			return err
		}
		// Internal layers cannot import this package and report by message.
		if err.Error() == sentinel.Error() {
			return sentinel
		}
	}
	return err
}
