// Package lockfile reads project.lock.json, the resolved record of which
// package versions and files a project was compiled against.
package lockfile

import (
	"fmt"
	"os"
	"path"
	"strings"

	"github.com/tidwall/gjson"
)

// Package is one "<id>/<version>" entry under a target.
type Package struct {
	ID      string
	Version string
	// Compile lists the compile-time files, e.g. "lib/dotnet/System.Runtime.dll".
	Compile []string
}

// Target is one entry of the "targets" object, keyed by framework name
// (optionally followed by "/<runtime>").
type Target struct {
	Name     string
	Packages []Package
}

// Lockfile keeps targets and packages in document order.
type Lockfile struct {
	Version int64
	Targets []Target
}

// Load reads and parses the lock file at path.
func Load(lockfilePath string) (*Lockfile, error) {
	data, err := os.ReadFile(lockfilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read lockfile %s: %w", lockfilePath, err)
	}
	lf, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode lockfile %s: %w", lockfilePath, err)
	}
	return lf, nil
}

// Parse decodes lock file JSON.
func Parse(data []byte) (*Lockfile, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("invalid JSON")
	}
	doc := gjson.ParseBytes(data)
	if !doc.IsObject() {
		return nil, fmt.Errorf("expected a JSON object")
	}
	targets := doc.Get("targets")
	if !targets.IsObject() {
		return nil, fmt.Errorf("missing \"targets\" object")
	}

	lf := &Lockfile{Version: doc.Get("version").Int()}
	var parseErr error
	targets.ForEach(func(name, body gjson.Result) bool {
		t := Target{Name: name.String()}
		body.ForEach(func(key, pkg gjson.Result) bool {
			id, ver, ok := strings.Cut(key.String(), "/")
			if !ok {
				parseErr = fmt.Errorf("target %q: package key %q is not <id>/<version>", t.Name, key.String())
				return false
			}
			p := Package{ID: id, Version: ver}
			pkg.Get("compile").ForEach(func(file, _ gjson.Result) bool {
				p.Compile = append(p.Compile, file.String())
				return true
			})
			t.Packages = append(t.Packages, p)
			return true
		})
		lf.Targets = append(lf.Targets, t)
		return parseErr == nil
	})
	if parseErr != nil {
		return nil, parseErr
	}
	return lf, nil
}

// FindTarget returns the first target whose name starts with prefix,
// ignoring case.
func (lf *Lockfile) FindTarget(prefix string) (*Target, bool) {
	lower := strings.ToLower(prefix)
	for i := range lf.Targets {
		if strings.HasPrefix(strings.ToLower(lf.Targets[i].Name), lower) {
			return &lf.Targets[i], true
		}
	}
	return nil, false
}

// AssemblyName returns the compile file's base name without its extension.
// Placeholder files ("_._") have no assembly name.
func AssemblyName(compileFile string) (string, bool) {
	base := path.Base(compileFile)
	if base == "_._" {
		return "", false
	}
	ext := path.Ext(base)
	if ext == "" || ext == base {
		return "", false
	}
	return strings.TrimSuffix(base, ext), true
}
