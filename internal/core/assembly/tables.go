package assembly

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math/bits"

	"github.com/hashicorp/go-version"
)

// Metadata table numbers (ECMA-335 II.22).
const (
	tModule                 = 0x00
	tTypeRef                = 0x01
	tTypeDef                = 0x02
	tFieldPtr               = 0x03
	tField                  = 0x04
	tMethodPtr              = 0x05
	tMethodDef              = 0x06
	tParamPtr               = 0x07
	tParam                  = 0x08
	tInterfaceImpl          = 0x09
	tMemberRef              = 0x0A
	tConstant               = 0x0B
	tCustomAttribute        = 0x0C
	tFieldMarshal           = 0x0D
	tDeclSecurity           = 0x0E
	tClassLayout            = 0x0F
	tFieldLayout            = 0x10
	tStandAloneSig          = 0x11
	tEventMap               = 0x12
	tEventPtr               = 0x13
	tEvent                  = 0x14
	tPropertyMap            = 0x15
	tPropertyPtr            = 0x16
	tProperty               = 0x17
	tMethodSemantics        = 0x18
	tMethodImpl             = 0x19
	tModuleRef              = 0x1A
	tTypeSpec               = 0x1B
	tImplMap                = 0x1C
	tFieldRVA               = 0x1D
	tENCLog                 = 0x1E
	tENCMap                 = 0x1F
	tAssembly               = 0x20
	tAssemblyProcessor      = 0x21
	tAssemblyOS             = 0x22
	tAssemblyRef            = 0x23
	tFile                   = 0x26
	tExportedType           = 0x27
	tManifestResource       = 0x28
	tGenericParam           = 0x2A
	tMethodSpec             = 0x2B
	tGenericParamConstraint = 0x2C
)

type colKind uint8

const (
	cU16 colKind = iota
	cU32
	cString
	cGUID
	cBlob
	cIndex
	cCoded
)

type col struct {
	kind colKind
	ref  int
}

var (
	u16    = col{kind: cU16}
	u32    = col{kind: cU32}
	str    = col{kind: cString}
	guid   = col{kind: cGUID}
	blob   = col{kind: cBlob}
	idx    = func(table int) col { return col{kind: cIndex, ref: table} }
	coded  = func(ci int) col { return col{kind: cCoded, ref: ci} }
	unused = -1
)

// Coded index kinds.
const (
	ciTypeDefOrRef = iota
	ciHasConstant
	ciHasCustomAttribute
	ciHasFieldMarshal
	ciHasDeclSecurity
	ciMemberRefParent
	ciHasSemantics
	ciMethodDefOrRef
	ciMemberForwarded
	ciImplementation
	ciCustomAttributeType
	ciResolutionScope
	ciTypeOrMethodDef
)

var codedIndexes = [...][]int{
	ciTypeDefOrRef:        {tTypeDef, tTypeRef, tTypeSpec},
	ciHasConstant:         {tField, tParam, tProperty},
	ciHasCustomAttribute:  {tMethodDef, tField, tTypeRef, tTypeDef, tParam, tInterfaceImpl, tMemberRef, tModule, tDeclSecurity, tProperty, tEvent, tStandAloneSig, tModuleRef, tTypeSpec, tAssembly, tAssemblyRef, tFile, tExportedType, tManifestResource, tGenericParam, tGenericParamConstraint, tMethodSpec},
	ciHasFieldMarshal:     {tField, tParam},
	ciHasDeclSecurity:     {tTypeDef, tMethodDef, tAssembly},
	ciMemberRefParent:     {tTypeDef, tTypeRef, tModuleRef, tMethodDef, tTypeSpec},
	ciHasSemantics:        {tEvent, tProperty},
	ciMethodDefOrRef:      {tMethodDef, tMemberRef},
	ciMemberForwarded:     {tField, tMethodDef},
	ciImplementation:      {tFile, tAssemblyRef, tExportedType},
	ciCustomAttributeType: {unused, unused, tMethodDef, tMemberRef, unused},
	ciResolutionScope:     {tModule, tModuleRef, tAssemblyRef, tTypeRef},
	ciTypeOrMethodDef:     {tTypeDef, tMethodDef},
}

// schema holds the column layout of every table that precedes AssemblyRef.
// Rows of these tables are skipped, so only their widths matter.
var schema = [tAssemblyRef][]col{
	tModule:            {u16, str, guid, guid, guid},
	tTypeRef:           {coded(ciResolutionScope), str, str},
	tTypeDef:           {u32, str, str, coded(ciTypeDefOrRef), idx(tField), idx(tMethodDef)},
	tFieldPtr:          {idx(tField)},
	tField:             {u16, str, blob},
	tMethodPtr:         {idx(tMethodDef)},
	tMethodDef:         {u32, u16, u16, str, blob, idx(tParam)},
	tParamPtr:          {idx(tParam)},
	tParam:             {u16, u16, str},
	tInterfaceImpl:     {idx(tTypeDef), coded(ciTypeDefOrRef)},
	tMemberRef:         {coded(ciMemberRefParent), str, blob},
	tConstant:          {u16, coded(ciHasConstant), blob},
	tCustomAttribute:   {coded(ciHasCustomAttribute), coded(ciCustomAttributeType), blob},
	tFieldMarshal:      {coded(ciHasFieldMarshal), blob},
	tDeclSecurity:      {u16, coded(ciHasDeclSecurity), blob},
	tClassLayout:       {u16, u32, idx(tTypeDef)},
	tFieldLayout:       {u32, idx(tField)},
	tStandAloneSig:     {blob},
	tEventMap:          {idx(tTypeDef), idx(tEvent)},
	tEventPtr:          {idx(tEvent)},
	tEvent:             {u16, str, coded(ciTypeDefOrRef)},
	tPropertyMap:       {idx(tTypeDef), idx(tProperty)},
	tPropertyPtr:       {idx(tProperty)},
	tProperty:          {u16, str, blob},
	tMethodSemantics:   {u16, idx(tMethodDef), coded(ciHasSemantics)},
	tMethodImpl:        {idx(tTypeDef), coded(ciMethodDefOrRef), coded(ciMethodDefOrRef)},
	tModuleRef:         {str},
	tTypeSpec:          {blob},
	tImplMap:           {u16, coded(ciMemberForwarded), str, idx(tModuleRef)},
	tFieldRVA:          {u32, idx(tField)},
	tENCLog:            {u32, u32},
	tENCMap:            {u32},
	tAssembly:          {u32, u16, u16, u16, u16, u32, blob, str, str},
	tAssemblyProcessor: {u32},
	tAssemblyOS:        {u32, u32, u32},
}

type tableReader struct {
	data     []byte
	pos      int
	rows     [64]uint32
	strSize  int
	guidSize int
	blobSize int
	strings  []byte
	err      error
}

func (r *tableReader) width(c col) int {
	switch c.kind {
	case cU16:
		return 2
	case cU32:
		return 4
	case cString:
		return r.strSize
	case cGUID:
		return r.guidSize
	case cBlob:
		return r.blobSize
	case cIndex:
		if r.rows[c.ref] < 1<<16 {
			return 2
		}
		return 4
	case cCoded:
		tables := codedIndexes[c.ref]
		tagBits := uint(bits.Len(uint(len(tables) - 1)))
		var most uint32
		for _, t := range tables {
			if t != unused && r.rows[t] > most {
				most = r.rows[t]
			}
		}
		if most < 1<<(16-tagBits) {
			return 2
		}
		return 4
	}
	return 0
}

func (r *tableReader) rowSize(table int) int {
	n := 0
	for _, c := range schema[table] {
		n += r.width(c)
	}
	return n
}

func (r *tableReader) read(n int) uint32 {
	if r.err != nil {
		return 0
	}
	if r.pos+n > len(r.data) {
		r.err = fmt.Errorf("metadata tables truncated at offset %d", r.pos)
		return 0
	}
	var v uint32
	switch n {
	case 1:
		v = uint32(r.data[r.pos])
	case 2:
		v = uint32(binary.LittleEndian.Uint16(r.data[r.pos:]))
	case 4:
		v = binary.LittleEndian.Uint32(r.data[r.pos:])
	}
	r.pos += n
	return v
}

func (r *tableReader) readString() string {
	i := int(r.read(r.strSize))
	if r.err != nil {
		return ""
	}
	if i >= len(r.strings) {
		r.err = fmt.Errorf("string index %d outside #Strings heap", i)
		return ""
	}
	end := bytes.IndexByte(r.strings[i:], 0)
	if end < 0 {
		end = len(r.strings) - i
	}
	return string(r.strings[i : i+end])
}

// parseTables decodes the Assembly and AssemblyRef tables of a #~ stream.
func parseTables(data, strings []byte) (*Info, error) {
	if len(data) < 24 {
		return nil, fmt.Errorf("metadata tables stream too short")
	}
	r := &tableReader{data: data, strings: strings, strSize: 2, guidSize: 2, blobSize: 2}
	heapSizes := data[6]
	if heapSizes&0x01 != 0 {
		r.strSize = 4
	}
	if heapSizes&0x02 != 0 {
		r.guidSize = 4
	}
	if heapSizes&0x04 != 0 {
		r.blobSize = 4
	}
	valid := binary.LittleEndian.Uint64(data[8:])
	r.pos = 24
	for t := 0; t < 64; t++ {
		if valid&(1<<uint(t)) != 0 {
			r.rows[t] = r.read(4)
		}
	}
	if heapSizes&0x40 != 0 {
		r.pos += 4
	}
	if r.err != nil {
		return nil, r.err
	}

	for t := 0; t < tAssembly; t++ {
		r.pos += int(r.rows[t]) * r.rowSize(t)
	}

	info := &Info{}
	if r.rows[tAssembly] == 0 {
		return nil, fmt.Errorf("metadata has no assembly definition")
	}
	r.read(4)
	maj, mnr, bld, rev := r.read(2), r.read(2), r.read(2), r.read(2)
	r.read(4)
	r.read(r.blobSize)
	info.Name = r.readString()
	r.readString()
	if r.err != nil {
		return nil, r.err
	}
	info.Version = version.Must(version.NewVersion(fmt.Sprintf("%d.%d.%d.%d", maj, mnr, bld, rev)))
	for i := uint32(1); i < r.rows[tAssembly]; i++ {
		r.pos += r.rowSize(tAssembly)
	}
	r.pos += int(r.rows[tAssemblyProcessor]) * r.rowSize(tAssemblyProcessor)
	r.pos += int(r.rows[tAssemblyOS]) * r.rowSize(tAssemblyOS)

	for i := uint32(0); i < r.rows[tAssemblyRef]; i++ {
		maj, mnr, bld, rev := r.read(2), r.read(2), r.read(2), r.read(2)
		r.read(4)
		r.read(r.blobSize)
		name := r.readString()
		r.readString()
		r.read(r.blobSize)
		if r.err != nil {
			return nil, r.err
		}
		info.References = append(info.References, NewReference(name, uint16(maj), uint16(mnr), uint16(bld), uint16(rev)))
	}
	return info, nil
}
