package framework

import (
	"fmt"
	"sort"
	"strings"
	"unicode"
)

// shortNames maps short folder prefixes to canonical identifiers.
var shortNames = map[string]string{
	"net":            NetFramework,
	"netcore":        NetCore,
	"win":            NetCore,
	"portable":       NetPortable,
	"dotnet":         NetPlatform,
	"netstandard":    NetStandard,
	"netcoreapp":     NetCoreApp,
	"uap":            UAP,
	"wp":             WindowsPhone,
	"wpa":            WindowsPhoneApp,
	"monoandroid":    MonoAndroid,
	"monotouch":      MonoTouch,
	"monomac":        MonoMac,
	"xamarinios":     XamarinIOS,
	"xamarinmac":     XamarinMac,
	"xamarintvos":    XamarinTVOS,
	"xamarinwatchos": XamarinWatchOS,
}

// canonical maps lower-cased full identifiers to their canonical casing.
var canonical = func() map[string]string {
	m := make(map[string]string, len(shortNames))
	for _, id := range shortNames {
		m[strings.ToLower(id)] = id
	}
	m["windows"] = NetCore
	return m
}()

func shortName(identifier string) string {
	switch identifier {
	case NetFramework:
		return "net"
	case NetCore:
		return "netcore"
	}
	best := ""
	for short, id := range shortNames {
		if id == identifier && (best == "" || len(short) > len(best)) {
			best = short
		}
	}
	if best == "" {
		return strings.ToLower(strings.TrimPrefix(identifier, "."))
	}
	return best
}

// Parse accepts a full framework name (".NETPortable,Version=v4.5,Profile=Profile259")
// or a short folder name ("net45", "portable-net45+win8", "dotnet5.4").
func Parse(s string) (Framework, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Framework{}, fmt.Errorf("empty framework name")
	}
	if strings.Contains(s, ",") {
		return parseFullName(s)
	}
	return parseShortName(s)
}

// MustParse is Parse for tables and tests; it panics on error.
func MustParse(s string) Framework {
	f, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return f
}

func parseFullName(s string) (Framework, error) {
	parts := strings.Split(s, ",")
	f := Framework{Identifier: canonicalIdentifier(strings.TrimSpace(parts[0]))}
	if f.Identifier == "" {
		return Framework{}, fmt.Errorf("framework name '%s' has no identifier", s)
	}
	for _, part := range parts[1:] {
		key, value, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok {
			return Framework{}, fmt.Errorf("invalid framework name component '%s' in '%s'", part, s)
		}
		switch strings.ToLower(strings.TrimSpace(key)) {
		case "version":
			v, err := ParseVersion(value)
			if err != nil {
				return Framework{}, fmt.Errorf("framework name '%s': %w", s, err)
			}
			f.Version = v
		case "profile":
			f.Profile = strings.TrimSpace(value)
		default:
			return Framework{}, fmt.Errorf("unknown framework name component '%s' in '%s'", key, s)
		}
	}
	if f.Identifier == NetCore && strings.EqualFold(strings.TrimSpace(parts[0]), "windows") {
		f.Version = windowsToNetCore(f.Version)
	}
	return f, nil
}

func canonicalIdentifier(id string) string {
	if c, ok := canonical[strings.ToLower(id)]; ok {
		return c
	}
	return id
}

func parseShortName(s string) (Framework, error) {
	lower := strings.ToLower(s)

	if rest, ok := strings.CutPrefix(lower, "portable-"); ok {
		return parsePortable(s, rest)
	}

	i := strings.IndexFunc(lower, func(r rune) bool { return !unicode.IsLetter(r) })
	prefix, suffix := lower, ""
	if i >= 0 {
		prefix, suffix = lower[:i], lower[i:]
	}
	id, ok := shortNames[prefix]
	if !ok {
		return Framework{}, fmt.Errorf("unknown framework '%s'", s)
	}

	var v Version
	switch {
	case suffix == "":
		if prefix == "dotnet" {
			v = V(5, 0)
		}
		if prefix == "win" {
			v = V(8, 0)
		}
	case strings.Contains(suffix, "."):
		parsed, err := ParseVersion(suffix)
		if err != nil {
			return Framework{}, fmt.Errorf("framework '%s': %w", s, err)
		}
		v = parsed
	default:
		var segs [4]int
		if len(suffix) > 4 {
			return Framework{}, fmt.Errorf("framework '%s' has too many version digits", s)
		}
		for j, r := range suffix {
			if r < '0' || r > '9' {
				return Framework{}, fmt.Errorf("invalid version in framework '%s'", s)
			}
			segs[j] = int(r - '0')
		}
		v = Version{Major: segs[0], Minor: segs[1], Build: segs[2], Revision: segs[3]}
	}

	if prefix == "win" {
		v = windowsToNetCore(v)
	}
	return New(id, v), nil
}

// windowsToNetCore maps Windows Store versions (win8, win81) onto .NETCore.
func windowsToNetCore(v Version) Version {
	switch v {
	case V(8, 0):
		return V(4, 5)
	case V(8, 1):
		return Version{Major: 4, Minor: 5, Build: 1}
	}
	return v
}

func parsePortable(original, rest string) (Framework, error) {
	if strings.HasPrefix(rest, "profile") {
		name := "Profile" + strings.TrimPrefix(rest, "profile")
		p, ok := profiles[name]
		if !ok {
			return Framework{Identifier: NetPortable, Profile: name}, nil
		}
		return Framework{Identifier: NetPortable, Version: p.version, Profile: name}, nil
	}

	var members []Framework
	for _, part := range strings.Split(rest, "+") {
		f, err := parseShortName(part)
		if err != nil {
			return Framework{}, fmt.Errorf("portable framework '%s': %w", original, err)
		}
		if isXamarin(f.Identifier) {
			continue
		}
		members = append(members, f)
	}
	name, ok := profileFor(members)
	if !ok {
		return Framework{}, fmt.Errorf("no portable profile matches '%s'", original)
	}
	return Framework{Identifier: NetPortable, Version: profiles[name].version, Profile: name}, nil
}

func profileFor(members []Framework) (string, bool) {
	key := frameworkSetKey(members)
	names := make([]string, 0, len(profiles))
	for name := range profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if frameworkSetKey(profiles[name].frameworks) == key {
			return name, true
		}
	}
	return "", false
}

func frameworkSetKey(fws []Framework) string {
	keys := make([]string, 0, len(fws))
	for _, f := range fws {
		keys = append(keys, f.String())
	}
	sort.Strings(keys)
	return strings.Join(keys, "|")
}
