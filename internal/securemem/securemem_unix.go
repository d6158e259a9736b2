//go:build linux || darwin || freebsd || netbsd || openbsd

package securemem

import (
	"errors"
	"os"

	"golang.org/x/sys/unix"
)

func allocLocked(size int) (*Buffer, bool) {
	page := os.Getpagesize()
	n := (size + page - 1) / page * page
	mem, err := unix.Mmap(-1, 0, n, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return nil, false
	}
	// RLIMIT_MEMLOCK is often tiny in containers; fall back to the heap.
	if err := unix.Mlock(mem); err != nil {
		_ = unix.Munmap(mem)
		return nil, false
	}
	return &Buffer{
		data:    mem,
		size:    size,
		locked:  true,
		release: releaseLocked,
	}, true
}

func releaseLocked(mem []byte) error {
	return errors.Join(unix.Munlock(mem), unix.Munmap(mem))
}
