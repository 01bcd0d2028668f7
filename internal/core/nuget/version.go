package nuget

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Masterminds/semver/v3"
)

const revisionPrefix = "rev"

// ParseVersion parses a package version. NuGet allows a fourth numeric part;
// a zero fourth part is dropped and any other value is carried as build
// metadata so that CompareVersions can still order on it.
func ParseVersion(s string) (*semver.Version, error) {
	core, suffix := s, ""
	if i := strings.IndexAny(s, "-+"); i >= 0 {
		core, suffix = s[:i], s[i:]
	}
	parts := strings.Split(core, ".")
	if len(parts) != 4 {
		v, err := semver.NewVersion(s)
		if err != nil {
			return nil, fmt.Errorf("invalid package version '%s': %w", s, err)
		}
		return v, nil
	}

	nums := make([]uint64, 4)
	for i, p := range parts {
		n, err := strconv.ParseUint(p, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid package version '%s': part '%s' is not numeric", s, p)
		}
		nums[i] = n
	}
	pre, meta := suffix, ""
	if i := strings.IndexByte(suffix, '+'); i >= 0 {
		pre, meta = suffix[:i], suffix[i+1:]
	}
	pre = strings.TrimPrefix(pre, "-")
	if nums[3] != 0 {
		rev := revisionPrefix + strconv.FormatUint(nums[3], 10)
		if meta != "" {
			rev += "." + meta
		}
		meta = rev
	}
	return semver.New(nums[0], nums[1], nums[2], pre, meta), nil
}

// MustParseVersion is ParseVersion that panics on error.
func MustParseVersion(s string) *semver.Version {
	v, err := ParseVersion(s)
	if err != nil {
		panic(err)
	}
	return v
}

// CompareVersions orders a and b by semantic version, then by the fourth
// version part when present.
func CompareVersions(a, b *semver.Version) int {
	if c := a.Compare(b); c != 0 {
		return c
	}
	ra, rb := revision(a), revision(b)
	switch {
	case ra < rb:
		return -1
	case ra > rb:
		return 1
	}
	return 0
}

func revision(v *semver.Version) uint64 {
	meta := v.Metadata()
	if !strings.HasPrefix(meta, revisionPrefix) {
		return 0
	}
	field, _, _ := strings.Cut(meta[len(revisionPrefix):], ".")
	n, err := strconv.ParseUint(field, 10, 64)
	if err != nil {
		return 0
	}
	return n
}
