package wordnet

import (
	"fmt"
	"os"

	"github.com/edsrzf/mmap-go"
)

// LoadMode selects how dictionary file bytes are held in memory.
type LoadMode uint8

const (
	// LoadMemoryMapped maps each file read-only.
	LoadMemoryMapped LoadMode = iota
	// LoadOwned copies each file onto the heap.
	LoadOwned
)

// ParseLoadMode accepts "mmap" and "owned".
func ParseLoadMode(s string) (LoadMode, error) {
	switch s {
	case "mmap", "":
		return LoadMemoryMapped, nil
	case "owned":
		return LoadOwned, nil
	default:
		return 0, fmt.Errorf("unknown load mode %q", s)
	}
}

func (m LoadMode) String() string {
	if m == LoadOwned {
		return "owned"
	}
	return "mmap"
}

// byteSource is an immutable file image. Slices returned by Bytes stay
// valid until Close.
type byteSource interface {
	Bytes() []byte
	Close() error
}

type ownedSource []byte

func (o ownedSource) Bytes() []byte { return o }
func (o ownedSource) Close() error  { return nil }

type mappedSource struct {
	m mmap.MMap
}

func (s *mappedSource) Bytes() []byte { return s.m }

func (s *mappedSource) Close() error {
	if s.m == nil {
		return nil
	}
	err := s.m.Unmap()
	s.m = nil
	return err
}

func openSource(path string, mode LoadMode) (byteSource, error) {
	if mode == LoadOwned {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		return ownedSource(data), nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, err
	}
	// Zero-length files cannot be mapped.
	if info.Size() == 0 {
		return ownedSource(nil), nil
	}
	m, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		return nil, fmt.Errorf("mapping %s: %w", path, err)
	}
	return &mappedSource{m: m}, nil
}
