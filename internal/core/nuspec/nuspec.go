// Package nuspec merges per-framework dependency groups into a .nuspec file.
package nuspec

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/beevik/etree"
	"go.trai.ch/zerr"

	"github.com/nightconcept/refgen-go/internal/core/domain"
	"github.com/nightconcept/refgen-go/internal/core/hasher"
	"github.com/nightconcept/refgen-go/internal/core/nuget"
)

const indent = 2

// Group is the dependency list written for one targetFramework value.
// Replaces lists further ids to drop from an existing group before
// Packages are added; ids of Packages are always dropped.
type Group struct {
	TargetFramework string
	Packages        []nuget.Package
	Replaces        []string
}

// Result describes what Update did.
type Result struct {
	Changed bool
	Digest  string
}

// Load parses the nuspec at path.
func Load(path string) (*etree.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, zerr.With(fmt.Errorf("%w: failed to read nuspec: %v", domain.ErrConfiguration, err), "path", path)
	}
	return parse(path, data)
}

func parse(path string, data []byte) (*etree.Document, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, zerr.With(fmt.Errorf("%w: invalid nuspec: %v", domain.ErrConfiguration, err), "path", path)
	}
	return doc, nil
}

// Update merges groups into the nuspec at path and rewrites the file when
// the merged document differs from what was read.
func Update(path string, groups []Group) (Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Result{}, zerr.With(fmt.Errorf("%w: failed to read nuspec: %v", domain.ErrConfiguration, err), "path", path)
	}
	read := hasher.CalculateSHA256(data)

	doc, err := parse(path, data)
	if err != nil {
		return Result{}, err
	}
	before, err := render(doc.Copy())
	if err != nil {
		return Result{}, err
	}
	if err := Merge(doc, groups); err != nil {
		return Result{}, zerr.With(err, "path", path)
	}
	after, err := render(doc)
	if err != nil {
		return Result{}, err
	}

	res := Result{Digest: hasher.CalculateSHA256(after)}
	if res.Digest == hasher.CalculateSHA256(before) {
		return res, nil
	}

	current, err := hasher.FileSHA256(path)
	if err != nil {
		return Result{}, err
	}
	if current != read {
		return Result{}, zerr.With(fmt.Errorf("nuspec was modified while it was being updated"), "path", path)
	}
	if err := os.WriteFile(path, after, 0o644); err != nil {
		return Result{}, fmt.Errorf("failed to write nuspec %s: %w", path, err)
	}
	res.Changed = true
	return res, nil
}

func render(doc *etree.Document) ([]byte, error) {
	doc.Indent(indent)
	var buf bytes.Buffer
	if _, err := doc.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to render nuspec: %w", err)
	}
	return buf.Bytes(), nil
}

// Merge applies groups to doc. An existing group with the same
// targetFramework loses its dependencies whose ids appear in the new group,
// and the new dependencies are appended. A missing group is created.
func Merge(doc *etree.Document, groups []Group) error {
	root := doc.Root()
	if root == nil {
		return fmt.Errorf("%w: nuspec has no root element", domain.ErrConfiguration)
	}
	metadata := root.SelectElement("metadata")
	if metadata == nil {
		return fmt.Errorf("%w: nuspec has no metadata element", domain.ErrConfiguration)
	}
	deps := metadata.SelectElement("dependencies")
	if deps == nil {
		deps = metadata.CreateElement("dependencies")
	}

	for _, g := range groups {
		el := findGroup(deps, g.TargetFramework)
		if el == nil {
			el = deps.CreateElement("group")
			el.CreateAttr("targetFramework", g.TargetFramework)
		} else {
			removeDependencies(el, g)
		}
		for _, p := range g.Packages {
			dep := el.CreateElement("dependency")
			dep.CreateAttr("id", p.ID)
			dep.CreateAttr("version", p.VersionString)
		}
	}
	return nil
}

func findGroup(deps *etree.Element, tfm string) *etree.Element {
	for _, el := range deps.SelectElements("group") {
		if strings.EqualFold(el.SelectAttrValue("targetFramework", ""), tfm) {
			return el
		}
	}
	return nil
}

func removeDependencies(group *etree.Element, g Group) {
	ids := make(map[string]bool, len(g.Packages)+len(g.Replaces))
	for _, p := range g.Packages {
		ids[strings.ToLower(p.ID)] = true
	}
	for _, id := range g.Replaces {
		ids[strings.ToLower(id)] = true
	}
	for _, dep := range group.SelectElements("dependency") {
		if ids[strings.ToLower(dep.SelectAttrValue("id", ""))] {
			group.RemoveChild(dep)
		}
	}
}

// Dependency is one dependency element of a group.
type Dependency struct {
	ID      string
	Version string
}

// Dependencies returns the dependencies of the group for tfm, in document
// order.
func Dependencies(doc *etree.Document, tfm string) []Dependency {
	root := doc.Root()
	if root == nil {
		return nil
	}
	deps := root.FindElement("metadata/dependencies")
	if deps == nil {
		return nil
	}
	g := findGroup(deps, tfm)
	if g == nil {
		return nil
	}
	var out []Dependency
	for _, dep := range g.SelectElements("dependency") {
		out = append(out, Dependency{ID: dep.SelectAttrValue("id", ""), Version: dep.SelectAttrValue("version", "")})
	}
	return out
}
