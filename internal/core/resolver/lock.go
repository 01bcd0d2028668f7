package resolver

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"go.trai.ch/zerr"

	"github.com/nightconcept/refgen-go/internal/core/assembly"
	"github.com/nightconcept/refgen-go/internal/core/domain"
	"github.com/nightconcept/refgen-go/internal/core/framework"
	"github.com/nightconcept/refgen-go/internal/core/lockfile"
	"github.com/nightconcept/refgen-go/internal/core/nuget"
)

// LockStrategy resolves references through project.lock.json.
type LockStrategy struct {
	LockPath string
	opts     Options
}

// Name implements Strategy.
func (*LockStrategy) Name() string { return "lock" }

// Resolve implements Strategy. The first candidate with a matching target
// wins; each compile file maps to the first package listing it.
func (s *LockStrategy) Resolve(refs []assembly.Reference, candidates []framework.Framework) ([]nuget.PackageWithReference, error) {
	logger := s.opts.logger()

	lf, err := lockfile.Load(s.LockPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, zerr.With(fmt.Errorf("%w: project.lock.json is missing", domain.ErrConfiguration), "path", s.LockPath)
		}
		return nil, zerr.With(fmt.Errorf("%w: %v", domain.ErrConfiguration, err), "path", s.LockPath)
	}

	var (
		target *lockfile.Target
		chosen framework.Framework
	)
	for _, c := range candidates {
		if t, ok := lf.FindTarget(c.String()); ok {
			target, chosen = t, c
			break
		}
	}
	if target == nil {
		names := make([]string, len(candidates))
		for i, c := range candidates {
			names[i] = c.String()
		}
		return nil, zerr.With(fmt.Errorf("%w for %s", domain.ErrMissingTarget, strings.Join(names, " or ")), "path", s.LockPath)
	}
	logger.Debug("Using lock file target", "target", target.Name)

	owners := make(map[string]lockfile.Package)
	for _, pkg := range target.Packages {
		for _, file := range pkg.Compile {
			name, ok := lockfile.AssemblyName(file)
			if !ok {
				continue
			}
			key := strings.ToLower(name)
			if prev, seen := owners[key]; seen {
				if !strings.EqualFold(prev.ID, pkg.ID) {
					logger.Debug("Assembly has more than one owning package, keeping the first", "assembly", name, "kept", prev.ID, "ignored", pkg.ID)
				}
				continue
			}
			owners[key] = pkg
		}
	}

	var results []nuget.PackageWithReference
	for _, r := range refs {
		owner, ok := owners[strings.ToLower(r.Name)]
		if !ok {
			logger.Debug("Reference not supplied by a package", "reference", r.Name)
			continue
		}
		pkg, err := nuget.NewPackage(owner.ID, owner.Version)
		if err != nil {
			return nil, zerr.With(fmt.Errorf("%w: %v", domain.ErrConfiguration, err), "path", s.LockPath)
		}
		results = append(results, nuget.PackageWithReference{Package: pkg, Reference: r})
	}

	if chosen.IsPortable() {
		extra, err := frameworkReferences(refs, chosen, s.opts, func(name string) bool {
			for _, p := range results {
				if strings.EqualFold(p.ID, name) {
					return true
				}
			}
			return false
		})
		if err != nil {
			return nil, err
		}
		results = append(results, extra...)
	}
	return results, nil
}

// frameworkReferences returns packages for the references the classifier
// says fw ships in the box, skipping names for which skip reports true.
func frameworkReferences(refs []assembly.Reference, fw framework.Framework, opts Options, skip func(string) bool) ([]nuget.PackageWithReference, error) {
	var sys []assembly.Reference
	for _, r := range refs {
		if skip != nil && skip(r.Name) {
			continue
		}
		ok, err := opts.classifier().IsFrameworkReference(r.Name, fw)
		if err != nil {
			return nil, err
		}
		if ok {
			sys = append(sys, r)
		}
	}
	return fromReferences(sys)
}
