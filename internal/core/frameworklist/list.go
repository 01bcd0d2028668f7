// Package frameworklist knows which assemblies each concrete framework ships
// in the box, so that packages duplicating them can be left out of a
// dependency group.
package frameworklist

import (
	"fmt"
	"sort"
	"strings"

	"github.com/beevik/etree"
	"github.com/hashicorp/go-version"

	"github.com/nightconcept/refgen-go/internal/core/assembly"
)

// Entry is one in-box assembly. A nil Version matches any version.
type Entry struct {
	Name    string
	Version *version.Version
}

// FrameworkList maps assembly names, ignoring case, to the version that ships
// with a framework.
type FrameworkList struct {
	entries map[string]Entry
}

// New builds a list from FrameworkList XML documents. Later documents win
// over earlier ones for the same assembly name.
func New(docs ...[]byte) (*FrameworkList, error) {
	l := &FrameworkList{entries: make(map[string]Entry)}
	for i, data := range docs {
		doc := etree.NewDocument()
		if err := doc.ReadFromBytes(data); err != nil {
			return nil, fmt.Errorf("failed to parse framework list %d: %w", i, err)
		}
		for _, el := range doc.FindElements("//File") {
			if err := l.add(el); err != nil {
				return nil, err
			}
		}
	}
	return l, nil
}

func (l *FrameworkList) add(el *etree.Element) error {
	name := el.SelectAttrValue("AssemblyName", "")
	if name == "" {
		return fmt.Errorf("framework list entry %d has no AssemblyName", el.Index())
	}
	e := Entry{Name: name}
	if s := el.SelectAttrValue("Version", ""); s != "" {
		v, err := version.NewVersion(s)
		if err != nil {
			return fmt.Errorf("framework list entry '%s' has invalid version '%s': %w", name, s, err)
		}
		if !assembly.IsZeroVersion(v) {
			e.Version = v
		}
	}
	l.entries[strings.ToLower(name)] = e
	return nil
}

// ContainsReference reports whether ref is supplied by the framework: its
// name is listed and the listed version is a wildcard or at least ref's.
func (l *FrameworkList) ContainsReference(ref assembly.Reference) bool {
	if ref.IsZero() {
		return false
	}
	e, ok := l.entries[strings.ToLower(ref.Name)]
	if !ok {
		return false
	}
	if e.Version == nil || ref.Version == nil {
		return true
	}
	return e.Version.GreaterThanOrEqual(ref.Version)
}

// Len returns the number of entries.
func (l *FrameworkList) Len() int {
	return len(l.entries)
}

// Entries returns the entries sorted by name.
func (l *FrameworkList) Entries() []Entry {
	out := make([]Entry, 0, len(l.entries))
	for _, e := range l.entries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
	})
	return out
}
