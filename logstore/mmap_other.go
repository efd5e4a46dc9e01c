//go:build !(linux || darwin || freebsd || netbsd || openbsd || dragonfly || solaris || aix)

package logstore

import "os"

// Mapping is disabled on this platform; reads fall back to ReadAt in store.go.

func mapFile(_ *os.File, _ int) ([]byte, error) {
	return nil, nil
}

func unmapFile(_ []byte) error {
	return nil
}
