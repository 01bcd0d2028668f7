package project

import (
	"fmt"
	"strings"

	"github.com/beevik/etree"
)

// File is a parsed MSBuild project file (csproj, vbproj, xproj).
type File struct {
	Path string
	doc  *etree.Document
}

// HintedReference is a <Reference> item of the project file.
type HintedReference struct {
	// Assembly is the simple name from the Include attribute.
	Assembly string
	HintPath string
	// PackageDir is the "<id>.<version>" folder below packages\ in the hint
	// path, or empty when the hint does not point into a packages folder.
	PackageDir string
}

// LoadFile reads the project file at path.
func LoadFile(path string) (*File, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromFile(path); err != nil {
		return nil, fmt.Errorf("failed to read project file %s: %w", path, err)
	}
	if doc.Root() == nil {
		return nil, fmt.Errorf("project file %s has no root element", path)
	}
	return &File{Path: path, doc: doc}, nil
}

// Property returns the text of the first element named name anywhere in the
// project, trimmed.
func (f *File) Property(name string) string {
	el := f.doc.FindElement("//" + name)
	if el == nil {
		return ""
	}
	return strings.TrimSpace(el.Text())
}

// TargetFramework returns the TargetFrameworkVersion and
// TargetFrameworkProfile properties.
func (f *File) TargetFramework() (version, profile string) {
	return f.Property("TargetFrameworkVersion"), f.Property("TargetFrameworkProfile")
}

// References lists the project's <Reference> items in document order.
func (f *File) References() []HintedReference {
	var out []HintedReference
	for _, el := range f.doc.FindElements("//Reference[@Include]") {
		include := el.SelectAttrValue("Include", "")
		name, _, _ := strings.Cut(include, ",")
		r := HintedReference{Assembly: strings.TrimSpace(name)}
		if hint := el.SelectElement("HintPath"); hint != nil {
			r.HintPath = strings.TrimSpace(hint.Text())
			r.PackageDir = packageDir(r.HintPath)
		}
		out = append(out, r)
	}
	return out
}

// packageDir extracts "Foo.1.0.0" from "..\packages\Foo.1.0.0\lib\foo.dll".
func packageDir(hint string) string {
	normalized := strings.ReplaceAll(hint, "\\", "/")
	lower := strings.ToLower(normalized)
	const marker = "packages/"
	i := strings.Index(lower, marker)
	if i < 0 {
		return ""
	}
	rest := normalized[i+len(marker):]
	dir, _, ok := strings.Cut(rest, "/")
	if !ok || dir == "" {
		return ""
	}
	return dir
}

// propertyGroup returns the first PropertyGroup whose attr contains pattern.
func (f *File) propertyGroup(attr, pattern string) *etree.Element {
	for _, pg := range f.doc.FindElements("//PropertyGroup") {
		if v := pg.SelectAttr(attr); v != nil && strings.Contains(v.Value, pattern) {
			return pg
		}
	}
	return nil
}
