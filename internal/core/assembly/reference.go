// Package assembly reads managed assembly metadata: the assembly's own
// identity and the assemblies it references.
package assembly

import (
	"fmt"
	"strings"

	"github.com/hashicorp/go-version"
)

// Reference is an assembly name plus its four-part version.
type Reference struct {
	Name    string
	Version *version.Version
}

// NewReference builds a reference from the four ordinal version parts stored
// in metadata.
func NewReference(name string, major, minor, build, revision uint16) Reference {
	v := version.Must(version.NewVersion(fmt.Sprintf("%d.%d.%d.%d", major, minor, build, revision)))
	return Reference{Name: name, Version: v}
}

// ParseReference builds a reference from a dotted version string.
func ParseReference(name, ver string) (Reference, error) {
	v, err := version.NewVersion(ver)
	if err != nil {
		return Reference{}, fmt.Errorf("invalid version '%s' for assembly '%s': %w", ver, name, err)
	}
	return Reference{Name: name, Version: v}, nil
}

// Equal compares names case-insensitively and versions exactly.
func (r Reference) Equal(o Reference) bool {
	if !strings.EqualFold(r.Name, o.Name) {
		return false
	}
	if r.Version == nil || o.Version == nil {
		return r.Version == o.Version
	}
	return r.Version.Equal(o.Version)
}

// IsZero reports whether r is the empty reference.
func (r Reference) IsZero() bool {
	return r.Name == "" && r.Version == nil
}

// PackageVersion renders the first three version parts, the form packages
// are published under (4.0.10.0 becomes 4.0.10).
func (r Reference) PackageVersion() string {
	segs := r.Version.Segments()
	for len(segs) < 3 {
		segs = append(segs, 0)
	}
	return fmt.Sprintf("%d.%d.%d", segs[0], segs[1], segs[2])
}

func (r Reference) String() string {
	if r.Version == nil {
		return r.Name
	}
	return r.Name + ", " + r.Version.String()
}

// IsZeroVersion reports whether every part of v is zero.
func IsZeroVersion(v *version.Version) bool {
	if v == nil {
		return true
	}
	for _, s := range v.Segments64() {
		if s != 0 {
			return false
		}
	}
	return true
}
