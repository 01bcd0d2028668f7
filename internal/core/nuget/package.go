// Package nuget holds the package identities refgen emits.
package nuget

import (
	"sort"
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/nightconcept/refgen-go/internal/core/assembly"
)

// Package is a NuGet package id and version. VersionString keeps the text the
// version was parsed from and is what ends up in the nuspec.
type Package struct {
	ID            string
	Version       *semver.Version
	VersionString string
}

// NewPackage parses ver and returns the package.
func NewPackage(id, ver string) (Package, error) {
	v, err := ParseVersion(ver)
	if err != nil {
		return Package{}, err
	}
	return Package{ID: id, Version: v, VersionString: ver}, nil
}

// Equal compares ids case-insensitively and versions exactly.
func (p Package) Equal(o Package) bool {
	return strings.EqualFold(p.ID, o.ID) && CompareVersions(p.Version, o.Version) == 0
}

func (p Package) String() string {
	return p.ID + " " + p.VersionString
}

// Less orders packages by id, ignoring case.
func Less(a, b Package) bool {
	return strings.ToLower(a.ID) < strings.ToLower(b.ID)
}

// SortByID sorts pkgs in place by case-insensitive id, keeping the relative
// order of equal ids.
func SortByID(pkgs []Package) {
	sort.SliceStable(pkgs, func(i, j int) bool { return Less(pkgs[i], pkgs[j]) })
}

// PackageWithReference is a package together with the assembly reference it
// was resolved from.
type PackageWithReference struct {
	Package
	Reference assembly.Reference
}

// FromReference turns an assembly reference into a package of the same name,
// versioned with the first three parts of the assembly version.
func FromReference(r assembly.Reference) (PackageWithReference, error) {
	pkg, err := NewPackage(r.Name, r.PackageVersion())
	if err != nil {
		return PackageWithReference{}, err
	}
	return PackageWithReference{Package: pkg, Reference: r}, nil
}

// Packages drops the references.
func Packages(in []PackageWithReference) []Package {
	out := make([]Package, len(in))
	for i, p := range in {
		out[i] = p.Package
	}
	return out
}
