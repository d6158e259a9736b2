//go:build !(linux || darwin || freebsd || netbsd || openbsd)

package securemem

func allocLocked(int) (*Buffer, bool) {
	return nil, false
}
