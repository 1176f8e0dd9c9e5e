package scan

import (
	"fmt"
	"math"
	"os"
)

// mappedFile is a read-only view of a whole file
type mappedFile struct {
	data    []byte
	release func() error
}

func openMapped(path string) (*mappedFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}
	size := info.Size()
	if size == 0 {
		return &mappedFile{release: func() error { return nil }}, nil
	}
	if size > math.MaxInt {
		return nil, fmt.Errorf("%s is too large to map (%d bytes)", path, size)
	}

	data, release, err := mmap(f, int(size))
	if err != nil {
		return nil, fmt.Errorf("failed to map %s: %w", path, err)
	}
	return &mappedFile{data: data, release: release}, nil
}

func (m *mappedFile) Bytes() []byte { return m.data }

func (m *mappedFile) Close() error {
	if m.release == nil {
		return nil
	}
	err := m.release()
	m.release = nil
	m.data = nil
	return err
}
