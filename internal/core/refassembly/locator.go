// Package refassembly decides whether an assembly is one of the reference
// assemblies a classic portable profile ships with.
package refassembly

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"go.trai.ch/zerr"

	"github.com/nightconcept/refgen-go/internal/core/domain"
	"github.com/nightconcept/refgen-go/internal/core/framework"
)

// ErrUnsupportedPlatform is returned when no reference assemblies directory
// is available to search.
var ErrUnsupportedPlatform = domain.ErrUnsupportedPlatform

// Capability says whether a Locator can answer at all.
type Capability int

const (
	// Unsupported locators fail every query with ErrUnsupportedPlatform.
	Unsupported Capability = iota
	// Supported locators look files up under their root.
	Supported
)

func (c Capability) String() string {
	if c == Supported {
		return "supported"
	}
	return "unsupported"
}

// Classifier answers whether an assembly is supplied by a framework.
type Classifier interface {
	IsFrameworkReference(name string, fw framework.Framework) (bool, error)
}

// Locator checks the reference assemblies directory for portable profile
// facades.
type Locator struct {
	Root       string
	Capability Capability
}

// NewLocator returns a supported locator rooted at root, the directory holding
// the .NETPortable folder. An empty root yields an unsupported locator.
func NewLocator(root string) Locator {
	if root == "" {
		return Locator{Capability: Unsupported}
	}
	return Locator{Root: root, Capability: Supported}
}

// Detect returns the locator for this machine. An explicit root always wins;
// otherwise only Windows installs reference assemblies in a known place.
func Detect(root string) Locator {
	if root != "" {
		return NewLocator(root)
	}
	if runtime.GOOS != "windows" {
		return NewLocator("")
	}
	return NewLocator(defaultWindowsRoot())
}

func defaultWindowsRoot() string {
	programFiles := os.Getenv("ProgramFiles(x86)")
	if programFiles == "" {
		programFiles = os.Getenv("ProgramFiles")
	}
	if programFiles == "" {
		return ""
	}
	return filepath.Join(programFiles, "Reference Assemblies", "Microsoft", "Framework")
}

// Path returns where the reference assembly for name would live.
func (p Locator) Path(name string, fw framework.Framework) string {
	return filepath.Join(p.Root, framework.NetPortable, "v"+fw.Version.String(), "Profile", fw.Profile, name+".dll")
}

// IsFrameworkReference implements Classifier.
func (p Locator) IsFrameworkReference(name string, fw framework.Framework) (bool, error) {
	if p.Capability != Supported {
		return false, zerr.With(fmt.Errorf("%w: cannot classify '%s'", ErrUnsupportedPlatform, name), "framework", fw.String())
	}
	_, err := os.Stat(p.Path(name, fw))
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, fmt.Errorf("failed to look up reference assembly '%s': %w", name, err)
}
