// Package squash trims a resolved package set down to what each compatible
// framework actually needs, and collapses duplicate package ids.
package squash

import (
	"fmt"
	"sort"
	"strings"

	"go.trai.ch/zerr"

	"github.com/nightconcept/refgen-go/internal/core/domain"
	"github.com/nightconcept/refgen-go/internal/core/framework"
	"github.com/nightconcept/refgen-go/internal/core/frameworklist"
	"github.com/nightconcept/refgen-go/internal/core/nuget"
)

// Group is the package set for one framework.
type Group struct {
	Framework framework.Framework
	Packages  []nuget.PackageWithReference
}

// Lists is the part of the framework list registry Squash needs.
type Lists interface {
	Contains(fw framework.Framework) bool
	Get(fw framework.Framework) (*frameworklist.FrameworkList, error)
}

// Squasher computes per-framework groups from a registry and a
// compatibility oracle.
type Squasher struct {
	Lists  Lists
	Oracle framework.Oracle
}

// New returns a Squasher. A nil oracle means framework.DefaultOracle.
func New(lists Lists, oracle framework.Oracle) *Squasher {
	if oracle == nil {
		oracle = framework.DefaultOracle
	}
	return &Squasher{Lists: lists, Oracle: oracle}
}

// Squash returns the groups for fw. A package based framework gets one group
// holding pkgs unchanged. A portable framework gets that group first, then one
// group per supporting framework that has a framework list, each filtered
// from pkgs independently and sorted by id. pkgs is never modified.
func (s *Squasher) Squash(pkgs []nuget.PackageWithReference, fw framework.Framework) ([]Group, error) {
	switch fw.Kind() {
	case framework.PackageBased:
		return []Group{{Framework: fw, Packages: clone(pkgs)}}, nil
	case framework.Portable:
	default:
		return nil, zerr.With(fmt.Errorf("%w: %s", domain.ErrUnsupportedFramework, fw), "framework", fw.String())
	}

	groups := []Group{{Framework: fw, Packages: clone(pkgs)}}
	for _, fx := range s.Oracle.FrameworksSupporting(fw) {
		if !s.Lists.Contains(fx) {
			continue
		}
		list, err := s.Lists.Get(fx)
		if err != nil {
			return nil, err
		}
		groups = append(groups, Group{Framework: fx, Packages: filter(pkgs, list)})
	}
	return groups, nil
}

func filter(pkgs []nuget.PackageWithReference, list *frameworklist.FrameworkList) []nuget.PackageWithReference {
	out := make([]nuget.PackageWithReference, 0, len(pkgs))
	for _, p := range pkgs {
		if !list.ContainsReference(p.Reference) {
			out = append(out, p)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return nuget.Less(out[i].Package, out[j].Package) })
	return out
}

func clone(pkgs []nuget.PackageWithReference) []nuget.PackageWithReference {
	out := make([]nuget.PackageWithReference, len(pkgs))
	copy(out, pkgs)
	return out
}

// SortedMostRecent keeps the highest version of each package id, compared
// case-insensitively, and sorts the result by id. Among equal versions the
// first one seen is kept.
func SortedMostRecent(pkgs []nuget.PackageWithReference) []nuget.PackageWithReference {
	best := make(map[string]int)
	var out []nuget.PackageWithReference
	for _, p := range pkgs {
		key := strings.ToLower(p.ID)
		i, seen := best[key]
		if !seen {
			best[key] = len(out)
			out = append(out, p)
			continue
		}
		if nuget.CompareVersions(p.Version, out[i].Version) > 0 {
			out[i] = p
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return nuget.Less(out[i].Package, out[j].Package) })
	return out
}
