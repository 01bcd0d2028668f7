package framework

type profile struct {
	version    Version
	frameworks []Framework
	standard   Version
}

var (
	net45  = New(NetFramework, V(4, 5))
	net451 = New(NetFramework, Version{Major: 4, Minor: 5, Build: 1})
	win8   = New(NetCore, V(4, 5))
	win81  = New(NetCore, Version{Major: 4, Minor: 5, Build: 1})
	wp8    = New(WindowsPhone, V(8, 0))
	wp81   = New(WindowsPhone, V(8, 1))
	wpa81  = New(WindowsPhoneApp, V(8, 1))
)

// profiles lists the System.Runtime based portable profiles. Older
// mscorlib based profiles are deliberately absent and classify as Unsupported.
var profiles = map[string]profile{
	"Profile7":   {V(4, 5), []Framework{net45, win8}, V(1, 1)},
	"Profile31":  {V(4, 6), []Framework{win81, wp81}, V(1, 0)},
	"Profile32":  {V(4, 6), []Framework{win81, wpa81}, V(1, 2)},
	"Profile44":  {V(4, 6), []Framework{net451, win81}, V(1, 2)},
	"Profile49":  {V(4, 5), []Framework{net45, wp8}, V(1, 0)},
	"Profile78":  {V(4, 5), []Framework{net45, win8, wp8}, V(1, 0)},
	"Profile84":  {V(4, 6), []Framework{wp81, wpa81}, V(1, 0)},
	"Profile111": {V(4, 5), []Framework{net45, win8, wpa81}, V(1, 1)},
	"Profile151": {V(4, 6), []Framework{net451, win81, wpa81}, V(1, 2)},
	"Profile157": {V(4, 6), []Framework{win81, wp81, wpa81}, V(1, 0)},
	"Profile259": {V(4, 5), []Framework{net45, win8, wpa81, wp8}, V(1, 0)},
}

// xamarin frameworks support every System.Runtime based profile. They are
// listed unversioned so framework list lookups match any embedded version.
var xamarin = []Framework{
	New(MonoAndroid, Version{}),
	New(MonoTouch, Version{}),
	New(MonoMac, Version{}),
	New(XamarinIOS, Version{}),
	New(XamarinMac, Version{}),
	New(XamarinTVOS, Version{}),
	New(XamarinWatchOS, Version{}),
}

func isXamarin(identifier string) bool {
	for _, x := range xamarin {
		if x.Identifier == identifier {
			return true
		}
	}
	return false
}
