package frameworklist

import (
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"
	"sync"

	"go.trai.ch/zerr"
	"golang.org/x/sync/singleflight"

	"github.com/nightconcept/refgen-go/internal/core/domain"
	"github.com/nightconcept/refgen-go/internal/core/framework"
)

// ErrUnknownFramework is returned by Get for frameworks without a list.
var ErrUnknownFramework = domain.ErrUnknownFramework

const (
	listSuffix       = ".FrameworkList.xml"
	supplementSuffix = ".FrameworkList_Supplement.xml"
	versionSep       = "_Version_v"
)

//go:embed all:data
var embedded embed.FS

var defaultRegistry = sync.OnceValues(func() (*Registry, error) {
	sub, err := fs.Sub(embedded, "data")
	if err != nil {
		return nil, err
	}
	return NewRegistry(sub)
})

// Default returns the registry backed by the lists compiled into refgen.
func Default() (*Registry, error) {
	return defaultRegistry()
}

// ResourceName returns the base file name a framework's list is stored under,
// e.g. ".NETFramework_Version_v4.5".
func ResourceName(fw framework.Framework) string {
	return fw.Identifier + versionSep + fw.Version.String()
}

type resource struct {
	fw         framework.Framework
	name       string
	supplement bool
}

// Registry serves framework lists read from a directory of FrameworkList
// files. Lists are built on first use and cached.
type Registry struct {
	fsys      fs.FS
	resources []resource
	cache     sync.Map
	group     singleflight.Group
}

// NewRegistry indexes the FrameworkList files at the root of fsys. Files
// without the FrameworkList suffixes are ignored; a list file whose name is
// not <Identifier>_Version_v<version> fails the whole registry.
func NewRegistry(fsys fs.FS) (*Registry, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("failed to read framework lists: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	r := &Registry{fsys: fsys}
	supplements := make(map[string]bool)
	for _, n := range names {
		if base, ok := strings.CutSuffix(n, supplementSuffix); ok {
			supplements[base] = true
		}
	}
	for _, n := range names {
		base, ok := strings.CutSuffix(n, listSuffix)
		if !ok {
			continue
		}
		fw, err := parseResourceName(base)
		if err != nil {
			return nil, err
		}
		r.resources = append(r.resources, resource{fw: fw, name: base, supplement: supplements[base]})
	}
	return r, nil
}

func parseResourceName(base string) (framework.Framework, error) {
	id, ver, ok := strings.Cut(base, versionSep)
	if !ok {
		return framework.Framework{}, fmt.Errorf("framework list '%s' does not name a version", base)
	}
	v, err := framework.ParseVersion(ver)
	if err != nil {
		return framework.Framework{}, fmt.Errorf("framework list '%s': %w", base, err)
	}
	fw, err := framework.Parse(id + ",Version=v" + v.String())
	if err != nil {
		return framework.Framework{}, fmt.Errorf("framework list '%s': %w", base, err)
	}
	return fw, nil
}

// Frameworks returns every framework that has a list, in registration order.
func (r *Registry) Frameworks() []framework.Framework {
	out := make([]framework.Framework, len(r.resources))
	for i, res := range r.resources {
		out[i] = res.fw
	}
	return out
}

// Contains reports whether fw has a list. A 0.0 version matches any list of
// the same framework family.
func (r *Registry) Contains(fw framework.Framework) bool {
	_, ok := r.lookup(fw)
	return ok
}

func (r *Registry) lookup(fw framework.Framework) (resource, bool) {
	for _, res := range r.resources {
		if fw.Version.IsWildcard() {
			if res.fw.SameFamily(fw) {
				return res, true
			}
			continue
		}
		if res.fw.SameFamily(fw) && res.fw.Version == fw.Version {
			return res, true
		}
	}
	return resource{}, false
}

// Get returns the list for fw, building it on first use. A 0.0 version
// resolves to the first registered list of the same family.
func (r *Registry) Get(fw framework.Framework) (*FrameworkList, error) {
	res, ok := r.lookup(fw)
	if !ok {
		return nil, zerr.With(fmt.Errorf("%w: %s", ErrUnknownFramework, fw), "framework", fw.String())
	}
	if l, ok := r.cache.Load(res.name); ok {
		return l.(*FrameworkList), nil
	}
	v, err, _ := r.group.Do(res.name, func() (any, error) {
		if l, ok := r.cache.Load(res.name); ok {
			return l, nil
		}
		l, err := r.build(res)
		if err != nil {
			return nil, err
		}
		r.cache.Store(res.name, l)
		return l, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*FrameworkList), nil
}

func (r *Registry) build(res resource) (*FrameworkList, error) {
	primary, err := fs.ReadFile(r.fsys, res.name+listSuffix)
	if err != nil {
		return nil, fmt.Errorf("failed to read framework list for %s: %w", res.fw, err)
	}
	docs := [][]byte{primary}
	if res.supplement {
		supp, err := fs.ReadFile(r.fsys, res.name+supplementSuffix)
		if err != nil {
			return nil, fmt.Errorf("failed to read framework list supplement for %s: %w", res.fw, err)
		}
		docs = append(docs, supp)
	}
	l, err := New(docs...)
	if err != nil {
		return nil, zerr.With(err, "framework", res.fw.String())
	}
	return l, nil
}
