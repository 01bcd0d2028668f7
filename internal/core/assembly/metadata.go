package assembly

import (
	"bytes"
	"debug/pe"
	"encoding/binary"
	"fmt"

	"github.com/hashicorp/go-version"
	"go.trai.ch/zerr"

	"github.com/nightconcept/refgen-go/internal/core/domain"
)

// ErrInvalidAssembly is returned when a file is not a managed binary.
var ErrInvalidAssembly = domain.ErrInvalidAssembly

// Info is the identity of an assembly and the assemblies it references.
type Info struct {
	Path       string
	Name       string
	Version    *version.Version
	References []Reference
}

// Reader reads assembly metadata from a path.
type Reader interface {
	Read(path string) (*Info, error)
}

// FileReader reads assemblies from disk.
type FileReader struct{}

// Read implements Reader.
func (FileReader) Read(path string) (*Info, error) {
	return Read(path)
}

// Read opens the PE file at path and decodes its CLI metadata.
func Read(path string) (*Info, error) {
	f, err := pe.Open(path)
	if err != nil {
		return nil, invalid(path, err)
	}
	defer func() { _ = f.Close() }()

	root, err := metadataRoot(f)
	if err != nil {
		return nil, invalid(path, err)
	}
	streams, err := parseMetadataRoot(root)
	if err != nil {
		return nil, invalid(path, err)
	}
	tables, ok := streams["#~"]
	if !ok {
		tables, ok = streams["#-"]
	}
	if !ok {
		return nil, invalid(path, fmt.Errorf("metadata has no tables stream"))
	}
	info, err := parseTables(tables, streams["#Strings"])
	if err != nil {
		return nil, invalid(path, err)
	}
	info.Path = path
	return info, nil
}

func invalid(path string, cause error) error {
	return zerr.With(fmt.Errorf("%w: %v", ErrInvalidAssembly, cause), "path", path)
}

// metadataRoot locates the CLI header through data directory 14 and returns
// the metadata blob it points to.
func metadataRoot(f *pe.File) ([]byte, error) {
	var dirs [16]pe.DataDirectory
	var count uint32
	switch oh := f.OptionalHeader.(type) {
	case *pe.OptionalHeader32:
		dirs, count = oh.DataDirectory, oh.NumberOfRvaAndSizes
	case *pe.OptionalHeader64:
		dirs, count = oh.DataDirectory, oh.NumberOfRvaAndSizes
	default:
		return nil, fmt.Errorf("missing optional header")
	}
	if count <= pe.IMAGE_DIRECTORY_ENTRY_COM_DESCRIPTOR {
		return nil, fmt.Errorf("no CLI header")
	}
	cli := dirs[pe.IMAGE_DIRECTORY_ENTRY_COM_DESCRIPTOR]
	if cli.VirtualAddress == 0 || cli.Size < 16 {
		return nil, fmt.Errorf("no CLI header")
	}
	header, err := readRVA(f, cli.VirtualAddress, 16)
	if err != nil {
		return nil, err
	}
	mdRVA := binary.LittleEndian.Uint32(header[8:])
	mdSize := binary.LittleEndian.Uint32(header[12:])
	return readRVA(f, mdRVA, mdSize)
}

func readRVA(f *pe.File, rva, size uint32) ([]byte, error) {
	for _, s := range f.Sections {
		start := s.VirtualAddress
		end := start + max(s.VirtualSize, s.Size)
		if rva < start || rva+size > end {
			continue
		}
		buf := make([]byte, size)
		if _, err := s.ReadAt(buf, int64(rva-start)); err != nil {
			return nil, fmt.Errorf("reading rva 0x%x: %w", rva, err)
		}
		return buf, nil
	}
	return nil, fmt.Errorf("rva 0x%x is outside every section", rva)
}

const metadataSignature = 0x424A5342 // "BSJB"

// parseMetadataRoot splits the metadata root into its named streams.
func parseMetadataRoot(root []byte) (map[string][]byte, error) {
	if len(root) < 16 || binary.LittleEndian.Uint32(root) != metadataSignature {
		return nil, fmt.Errorf("bad metadata signature")
	}
	verLen := int(binary.LittleEndian.Uint32(root[12:]))
	off := 16 + (verLen+3)&^3
	if off+4 > len(root) {
		return nil, fmt.Errorf("truncated metadata root")
	}
	count := int(binary.LittleEndian.Uint16(root[off+2:]))
	off += 4

	streams := make(map[string][]byte, count)
	for i := 0; i < count; i++ {
		if off+8 > len(root) {
			return nil, fmt.Errorf("truncated stream header")
		}
		offset := int(binary.LittleEndian.Uint32(root[off:]))
		size := int(binary.LittleEndian.Uint32(root[off+4:]))
		off += 8
		end := bytes.IndexByte(root[off:], 0)
		if end < 0 {
			return nil, fmt.Errorf("unterminated stream name")
		}
		name := string(root[off : off+end])
		off += (end + 1 + 3) &^ 3
		if offset < 0 || size < 0 || offset+size > len(root) {
			return nil, fmt.Errorf("stream %s out of bounds", name)
		}
		streams[name] = root[offset : offset+size]
	}
	return streams, nil
}
