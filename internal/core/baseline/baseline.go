// Package baseline raises resolved packages to a maintained table of minimum
// versions.
package baseline

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"
	"go.trai.ch/zerr"

	"github.com/nightconcept/refgen-go/internal/core/domain"
	"github.com/nightconcept/refgen-go/internal/core/nuget"
)

//go:embed baseline.toml
var embedded []byte

var defaultTable = sync.OnceValues(func() (*Table, error) {
	return Parse(embedded)
})

// Default returns the table compiled into refgen. It is parsed once.
func Default() (*Table, error) {
	return defaultTable()
}

type document struct {
	Packages map[string]string `toml:"packages"`
}

// Table maps package ids, compared case-insensitively, to minimum versions.
// A Table is not modified after construction.
type Table struct {
	entries map[string]nuget.Package
}

// Parse decodes a baseline document.
func Parse(data []byte) (*Table, error) {
	var doc document
	if _, err := toml.Decode(string(data), &doc); err != nil {
		return nil, fmt.Errorf("%w: invalid baseline: %v", domain.ErrConfiguration, err)
	}
	t := &Table{entries: make(map[string]nuget.Package, len(doc.Packages))}
	for id, ver := range doc.Packages {
		pkg, err := nuget.NewPackage(id, ver)
		if err != nil {
			return nil, zerr.With(fmt.Errorf("%w: baseline entry: %v", domain.ErrConfiguration, err), "package", id)
		}
		t.entries[strings.ToLower(id)] = pkg
	}
	return t, nil
}

// Load reads a baseline document from path.
func Load(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read baseline %s: %w", path, err)
	}
	t, err := Parse(data)
	if err != nil {
		return nil, zerr.With(err, "path", path)
	}
	return t, nil
}

// Merge returns a new table holding t's entries overlaid with o's.
func (t *Table) Merge(o *Table) *Table {
	out := &Table{entries: make(map[string]nuget.Package, t.Len()+o.Len())}
	for _, src := range []*Table{t, o} {
		if src == nil {
			continue
		}
		for k, v := range src.entries {
			out.entries[k] = v
		}
	}
	return out
}

// Lookup returns the entry for id.
func (t *Table) Lookup(id string) (nuget.Package, bool) {
	if t == nil {
		return nuget.Package{}, false
	}
	p, ok := t.entries[strings.ToLower(id)]
	return p, ok
}

// Len returns the number of entries.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.entries)
}

// Entries returns the entries sorted by id.
func (t *Table) Entries() []nuget.Package {
	out := make([]nuget.Package, 0, t.Len())
	if t != nil {
		for _, p := range t.entries {
			out = append(out, p)
		}
	}
	nuget.SortByID(out)
	return out
}

// Apply returns pkgs with every package that has an entry replaced by the
// entry, id spelling included, when the entry's version is at least the
// package's.
func (t *Table) Apply(pkgs []nuget.Package) []nuget.Package {
	out := make([]nuget.Package, len(pkgs))
	for i, p := range pkgs {
		out[i] = p
		if e, ok := t.Lookup(p.ID); ok && nuget.CompareVersions(e.Version, p.Version) >= 0 {
			out[i] = e
		}
	}
	return out
}
