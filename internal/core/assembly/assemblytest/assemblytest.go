// Package assemblytest builds minimal managed PE images for tests. The
// images carry only what assembly.Read looks at: a CLI header, a metadata
// root, and #~ and #Strings streams holding one Assembly row plus the given
// AssemblyRef rows.
package assemblytest

import (
	"bytes"
	"debug/pe"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"
)

// Identity is an assembly name and its four version parts.
type Identity struct {
	Name                          string
	Major, Minor, Build, Revision uint16
}

const (
	sectionRVA  = 0x2000
	fileAlign   = 0x200
	headerSize  = 0x200
	cliSize     = 72
	lfanew      = 0x80
	tAssembly   = 0x20
	tAssemblyRf = 0x23
)

func le(buf *bytes.Buffer, vals ...any) {
	for _, v := range vals {
		_ = binary.Write(buf, binary.LittleEndian, v)
	}
}

func pad(buf *bytes.Buffer, align int) {
	for buf.Len()%align != 0 {
		buf.WriteByte(0)
	}
}

// Build returns the bytes of a PE32 image defining asm and referencing refs.
func Build(asm Identity, refs ...Identity) []byte {
	var strs bytes.Buffer
	strs.WriteByte(0)
	offsets := make(map[string]uint16)
	intern := func(s string) uint16 {
		if off, ok := offsets[s]; ok {
			return off
		}
		off := uint16(strs.Len())
		strs.WriteString(s)
		strs.WriteByte(0)
		offsets[s] = off
		return off
	}

	var tables bytes.Buffer
	le(&tables, uint32(0), uint8(2), uint8(0), uint8(0), uint8(1))
	le(&tables, uint64(1)<<tAssembly|uint64(1)<<tAssemblyRf, uint64(0))
	le(&tables, uint32(1), uint32(len(refs)))
	le(&tables, uint32(0x8004), asm.Major, asm.Minor, asm.Build, asm.Revision, uint32(0), uint16(0), intern(asm.Name), uint16(0))
	for _, r := range refs {
		le(&tables, r.Major, r.Minor, r.Build, r.Revision, uint32(0), uint16(0), intern(r.Name), uint16(0), uint16(0))
	}
	pad(&tables, 4)
	pad(&strs, 4)

	var md bytes.Buffer
	le(&md, uint32(0x424A5342), uint16(1), uint16(1), uint32(0), uint32(12))
	md.WriteString("v4.0.30319\x00\x00")
	le(&md, uint16(0), uint16(2))
	const streamHeaders = 8 + 4 + 8 + 12
	tablesOff := uint32(md.Len() + streamHeaders)
	le(&md, tablesOff, uint32(tables.Len()))
	md.WriteString("#~\x00\x00")
	le(&md, tablesOff+uint32(tables.Len()), uint32(strs.Len()))
	md.WriteString("#Strings\x00\x00\x00\x00")
	md.Write(tables.Bytes())
	md.Write(strs.Bytes())

	var text bytes.Buffer
	le(&text, uint32(cliSize), uint16(2), uint16(5), uint32(sectionRVA+cliSize), uint32(md.Len()))
	text.Write(make([]byte, cliSize-text.Len()))
	text.Write(md.Bytes())
	pad(&text, fileAlign)

	var img bytes.Buffer
	img.WriteString("MZ")
	img.Write(make([]byte, 0x3c-img.Len()))
	le(&img, uint32(lfanew))
	img.Write(make([]byte, lfanew-img.Len()))
	img.WriteString("PE\x00\x00")

	oh := pe.OptionalHeader32{
		Magic:               0x10b,
		SizeOfCode:          uint32(text.Len()),
		BaseOfCode:          sectionRVA,
		ImageBase:           0x400000,
		SectionAlignment:    sectionRVA,
		FileAlignment:       fileAlign,
		SizeOfImage:         sectionRVA + uint32(text.Len()),
		SizeOfHeaders:       headerSize,
		Subsystem:           3,
		NumberOfRvaAndSizes: 16,
	}
	oh.DataDirectory[pe.IMAGE_DIRECTORY_ENTRY_COM_DESCRIPTOR] = pe.DataDirectory{VirtualAddress: sectionRVA, Size: cliSize}
	le(&img, pe.FileHeader{
		Machine:              pe.IMAGE_FILE_MACHINE_I386,
		NumberOfSections:     1,
		SizeOfOptionalHeader: uint16(binary.Size(oh)),
		Characteristics:      pe.IMAGE_FILE_EXECUTABLE_IMAGE | pe.IMAGE_FILE_DLL,
	}, oh)

	sh := pe.SectionHeader32{
		VirtualSize:      uint32(text.Len()),
		VirtualAddress:   sectionRVA,
		SizeOfRawData:    uint32(text.Len()),
		PointerToRawData: headerSize,
		Characteristics:  pe.IMAGE_SCN_CNT_CODE | pe.IMAGE_SCN_MEM_READ,
	}
	copy(sh.Name[:], ".text")
	le(&img, sh)
	img.Write(make([]byte, headerSize-img.Len()))
	img.Write(text.Bytes())
	return img.Bytes()
}

// WriteFile writes Build(asm, refs...) to path, creating its directory.
func WriteFile(tb testing.TB, path string, asm Identity, refs ...Identity) string {
	tb.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		tb.Fatal(err)
	}
	if err := os.WriteFile(path, Build(asm, refs...), 0o644); err != nil {
		tb.Fatal(err)
	}
	return path
}
