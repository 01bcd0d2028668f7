// Package framework models target framework monikers (TFMs): parsing full
// and short names, classifying them, and answering which concrete frameworks
// can run code compiled against a given one.
package framework

import (
	"fmt"
	"strconv"
	"strings"
)

// Well-known framework identifiers.
const (
	NetFramework    = ".NETFramework"
	NetCore         = ".NETCore"
	NetPortable     = ".NETPortable"
	NetPlatform     = ".NETPlatform"
	NetStandard     = ".NETStandard"
	NetCoreApp      = ".NETCoreApp"
	UAP             = "UAP"
	WindowsPhone    = "WindowsPhone"
	WindowsPhoneApp = "WindowsPhoneApp"
	MonoAndroid     = "MonoAndroid"
	MonoTouch       = "MonoTouch"
	MonoMac         = "MonoMac"
	XamarinIOS      = "Xamarin.iOS"
	XamarinMac      = "Xamarin.Mac"
	XamarinTVOS     = "Xamarin.TVOS"
	XamarinWatchOS  = "Xamarin.WatchOS"
)

// Kind classifies how a framework's dependencies are resolved.
type Kind int

const (
	// Unsupported frameworks cannot be resolved by this tool.
	Unsupported Kind = iota
	// PackageBased frameworks resolve their dependencies directly from packages.
	PackageBased
	// Portable frameworks are classic PCL profiles.
	Portable
)

func (k Kind) String() string {
	switch k {
	case PackageBased:
		return "package-based"
	case Portable:
		return "portable"
	default:
		return "unsupported"
	}
}

// Version is a dotted framework version of up to four parts.
type Version struct {
	Major, Minor, Build, Revision int
}

// V is shorthand for a two-part version.
func V(major, minor int) Version {
	return Version{Major: major, Minor: minor}
}

// ParseVersion parses "v4.5", "4.5.1" or "10.0.10240.0".
func ParseVersion(s string) (Version, error) {
	s = strings.TrimPrefix(strings.TrimPrefix(strings.TrimSpace(s), "v"), "V")
	if s == "" {
		return Version{}, fmt.Errorf("empty framework version")
	}
	parts := strings.Split(s, ".")
	if len(parts) > 4 {
		return Version{}, fmt.Errorf("framework version '%s' has more than four parts", s)
	}
	var segs [4]int
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return Version{}, fmt.Errorf("invalid framework version '%s'", s)
		}
		segs[i] = n
	}
	return Version{Major: segs[0], Minor: segs[1], Build: segs[2], Revision: segs[3]}, nil
}

// IsWildcard reports whether the version is 0.0, meaning "any version".
func (v Version) IsWildcard() bool {
	return v.Major == 0 && v.Minor == 0
}

// Compare returns -1, 0 or 1.
func (v Version) Compare(o Version) int {
	a := [4]int{v.Major, v.Minor, v.Build, v.Revision}
	b := [4]int{o.Major, o.Minor, o.Build, o.Revision}
	for i := range a {
		switch {
		case a[i] < b[i]:
			return -1
		case a[i] > b[i]:
			return 1
		}
	}
	return 0
}

// String renders the display form: major.minor, plus build and revision
// only when they are set.
func (v Version) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d.%d", v.Major, v.Minor)
	if v.Build > 0 || v.Revision > 0 {
		fmt.Fprintf(&b, ".%d", v.Build)
		if v.Revision > 0 {
			fmt.Fprintf(&b, ".%d", v.Revision)
		}
	}
	return b.String()
}

// digits renders the version without dots, as used in short folder names
// such as net451. Trailing zero parts past the minor are dropped.
func (v Version) digits() string {
	s := strconv.Itoa(v.Major) + strconv.Itoa(v.Minor)
	if v.Build > 0 || v.Revision > 0 {
		s += strconv.Itoa(v.Build)
		if v.Revision > 0 {
			s += strconv.Itoa(v.Revision)
		}
	}
	return s
}

// Framework is a target framework moniker. It is comparable and safe to use
// as a map key; identifiers are canonicalized by Parse.
type Framework struct {
	Identifier string
	Version    Version
	Profile    string
}

// New returns a framework without a profile.
func New(identifier string, v Version) Framework {
	return Framework{Identifier: identifier, Version: v}
}

// String returns the full name, e.g. ".NETPortable,Version=v4.5,Profile=Profile259".
func (f Framework) String() string {
	s := fmt.Sprintf("%s,Version=v%s", f.Identifier, f.Version)
	if f.Profile != "" {
		s += ",Profile=" + f.Profile
	}
	return s
}

// IsPortable reports whether f is a classic portable class library target.
func (f Framework) IsPortable() bool {
	return f.Identifier == NetPortable
}

// IsPackageBased reports whether f resolves dependencies from packages only.
func (f Framework) IsPackageBased() bool {
	switch f.Identifier {
	case NetPlatform, NetStandard, NetCoreApp, UAP:
		return true
	case NetCore:
		return f.Version.Major >= 5
	}
	return false
}

// Kind classifies f.
func (f Framework) Kind() Kind {
	if f.IsPackageBased() {
		return PackageBased
	}
	if f.IsPortable() {
		if _, ok := profiles[f.Profile]; ok {
			return Portable
		}
	}
	return Unsupported
}

// SameFamily reports whether f and o share an identifier.
func (f Framework) SameFamily(o Framework) bool {
	return strings.EqualFold(f.Identifier, o.Identifier)
}

// PackageBasedEquivalent maps a portable profile to the .NETStandard version
// that exposes the same surface. Package-based frameworks map to themselves.
func (f Framework) PackageBasedEquivalent() (Framework, bool) {
	if f.IsPackageBased() {
		return f, true
	}
	if p, ok := profiles[f.Profile]; ok && f.IsPortable() {
		return New(NetStandard, p.standard), true
	}
	return Framework{}, false
}

// ShortFolderName returns the NuGet folder name, e.g. net45, win8, dotnet5.4,
// portable-net45+win8+wpa81+wp8.
func (f Framework) ShortFolderName() string {
	switch f.Identifier {
	case NetPortable:
		if p, ok := profiles[f.Profile]; ok {
			names := make([]string, 0, len(p.frameworks))
			for _, fx := range p.frameworks {
				names = append(names, fx.ShortFolderName())
			}
			return "portable-" + strings.Join(names, "+")
		}
		return "portable-" + f.Profile
	case NetCore:
		switch f.Version {
		case V(4, 5):
			return "win8"
		case Version{Major: 4, Minor: 5, Build: 1}:
			return "win81"
		}
		return "netcore" + f.Version.digits()
	case NetPlatform:
		if f.Version == V(5, 0) {
			return "dotnet"
		}
		return "dotnet" + f.Version.String()
	case NetStandard, NetCoreApp, UAP:
		return strings.ToLower(shortName(f.Identifier)) + f.Version.String()
	case WindowsPhone, WindowsPhoneApp:
		d := f.Version.digits()
		if f.Version.Minor == 0 && f.Version.Build == 0 && f.Version.Revision == 0 {
			d = fmt.Sprint(f.Version.Major)
		}
		return shortName(f.Identifier) + d
	}
	name := shortName(f.Identifier)
	if f.Version.IsWildcard() && f.Version.Build == 0 {
		return name
	}
	return name + f.Version.digits()
}
