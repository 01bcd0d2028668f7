package framework

// Oracle answers which concrete frameworks can run code compiled against a
// given framework.
type Oracle interface {
	FrameworksSupporting(f Framework) []Framework
}

// DefaultOracle is the built-in compatibility table.
var DefaultOracle Oracle = compatibilityTable{}

type compatibilityTable struct{}

var (
	net46       = New(NetFramework, V(4, 6))
	net461      = New(NetFramework, Version{Major: 4, Minor: 6, Build: 1})
	uap10       = New(UAP, V(10, 0))
	netcoreapp1 = New(NetCoreApp, V(1, 0))
)

// standardSupport lists, per .NETStandard minor version, the lowest version
// of each framework family implementing it.
var standardSupport = map[int][]Framework{
	0: {net45, win8, wpa81, wp8, uap10, netcoreapp1},
	1: {net45, win8, wpa81, uap10, netcoreapp1},
	2: {net451, win81, wpa81, uap10, netcoreapp1},
	3: {net46, uap10, netcoreapp1},
	4: {net461, uap10, netcoreapp1},
	5: {net461, netcoreapp1},
	6: {net461, netcoreapp1},
}

// FrameworksSupporting returns the frameworks able to consume f, in a stable
// order. Unknown or unsupported frameworks have no supporters.
func (compatibilityTable) FrameworksSupporting(f Framework) []Framework {
	var out []Framework
	switch {
	case f.IsPortable():
		p, ok := profiles[f.Profile]
		if !ok {
			return nil
		}
		out = append(out, p.frameworks...)
	case f.Identifier == NetStandard || f.Identifier == NetPlatform:
		minor, ok := standardMinor(f)
		if !ok {
			return nil
		}
		out = append(out, standardSupport[minor]...)
	default:
		return nil
	}
	return append(out, xamarin...)
}

func standardMinor(f Framework) (int, bool) {
	if f.Identifier == NetPlatform {
		// dotnet5.1 is netstandard1.0; dotnet (5.0) is treated the same.
		if f.Version.Major != 5 {
			return 0, false
		}
		m := f.Version.Minor - 1
		if m < 0 {
			m = 0
		}
		_, ok := standardSupport[m]
		return m, ok
	}
	if f.Version.Major != 1 {
		return 0, false
	}
	_, ok := standardSupport[f.Version.Minor]
	return f.Version.Minor, ok
}
