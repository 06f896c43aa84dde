// Package mmfile maps crate files into memory for random-access decoding.
package mmfile

import (
	"fmt"
	"os"

	"github.com/edsrzf/mmap-go"
)

// Map maps the file at path read-only and returns its contents plus an
// unmap function. Empty files return an empty slice with a no-op cleanup.
func Map(path string) ([]byte, func() error, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close() // the mapping keeps pages alive

	info, err := f.Stat()
	if err != nil {
		return nil, nil, err
	}
	if info.Size() == 0 {
		return []byte{}, func() error { return nil }, nil
	}
	if info.Size() > int64(^uint(0)>>1) {
		return nil, nil, fmt.Errorf("mmfile: file too large to map (%d bytes)", info.Size())
	}

	m, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		// Mapping can fail on exotic filesystems; fall back to reading.
		data, rerr := os.ReadFile(path)
		if rerr != nil {
			return nil, nil, rerr
		}
		return data, func() error { return nil }, nil
	}

	unmapped := false
	cleanup := func() error {
		if unmapped {
			return nil
		}
		unmapped = true
		return m.Unmap()
	}
	return m, cleanup, nil
}
