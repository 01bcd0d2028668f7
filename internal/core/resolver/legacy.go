package resolver

import (
	"fmt"
	"strings"

	"go.trai.ch/zerr"

	"github.com/nightconcept/refgen-go/internal/core/assembly"
	"github.com/nightconcept/refgen-go/internal/core/domain"
	"github.com/nightconcept/refgen-go/internal/core/framework"
	"github.com/nightconcept/refgen-go/internal/core/nuget"
	"github.com/nightconcept/refgen-go/internal/core/packagesconfig"
	"github.com/nightconcept/refgen-go/internal/core/project"
)

var minimumPortableVersion = framework.V(4, 5)

// LegacyStrategy resolves references of a classic portable project through
// its packages.config and the hint paths in the project file.
type LegacyStrategy struct {
	ConfigPath string
	opts       Options
}

// Name implements Strategy.
func (*LegacyStrategy) Name() string { return "legacy" }

// Resolve implements Strategy. Lock file candidates do not apply.
func (s *LegacyStrategy) Resolve(refs []assembly.Reference, _ []framework.Framework) ([]nuget.PackageWithReference, error) {
	logger := s.opts.logger()

	proj, err := project.LoadFile(s.opts.ProjectPath)
	if err != nil {
		return nil, zerr.With(fmt.Errorf("%w: %v", domain.ErrConfiguration, err), "path", s.opts.ProjectPath)
	}
	fw, err := portableFramework(proj)
	if err != nil {
		return nil, zerr.With(err, "path", s.opts.ProjectPath)
	}

	var sysRefs, otherRefs []assembly.Reference
	for _, r := range refs {
		ok, err := s.opts.classifier().IsFrameworkReference(r.Name, fw)
		if err != nil {
			return nil, err
		}
		if ok {
			sysRefs = append(sysRefs, r)
		} else {
			otherRefs = append(otherRefs, r)
		}
	}

	results, err := fromReferences(sysRefs)
	if err != nil {
		return nil, err
	}
	if len(otherRefs) == 0 {
		return results, nil
	}

	lookup := map[string]packagesconfig.Entry{}
	if s.ConfigPath != "" {
		cfg, err := packagesconfig.Load(s.ConfigPath)
		if err != nil {
			return nil, zerr.With(fmt.Errorf("%w: %v", domain.ErrConfiguration, err), "path", s.ConfigPath)
		}
		lookup = cfg.ByDir()
	}

	for _, hinted := range proj.References() {
		if hinted.PackageDir == "" {
			continue
		}
		entry, ok := lookup[strings.ToLower(hinted.PackageDir)]
		if !ok {
			logger.Debug("Hint path package not listed in packages config", "assembly", hinted.Assembly, "dir", hinted.PackageDir)
			continue
		}
		ref, ok := findReference(otherRefs, hinted.Assembly)
		if !ok {
			logger.Debug("Project reference not used by the assembly", "assembly", hinted.Assembly)
			continue
		}
		pkg, err := nuget.NewPackage(entry.ID, entry.Version)
		if err != nil {
			return nil, zerr.With(fmt.Errorf("%w: %v", domain.ErrConfiguration, err), "path", s.ConfigPath)
		}
		results = append(results, nuget.PackageWithReference{Package: pkg, Reference: ref})
	}
	return results, nil
}

// portableFramework reads TargetFrameworkVersion and TargetFrameworkProfile
// and requires a System.Runtime based profile (version 4.5 or later).
func portableFramework(proj *project.File) (framework.Framework, error) {
	version, profile := proj.TargetFramework()
	if version == "" || profile == "" {
		return framework.Framework{}, fmt.Errorf("%w: only PCLs are supported by this tool, TargetFrameworkProfile or TargetFrameworkVersion is missing", domain.ErrConfiguration)
	}
	v, err := framework.ParseVersion(version)
	if err != nil || v.Compare(minimumPortableVersion) < 0 {
		return framework.Framework{}, fmt.Errorf("%w: only System.Runtime-based PCLs are supported, target at least net45, win8 and wp8 (found %s)", domain.ErrConfiguration, version)
	}
	return framework.Framework{Identifier: framework.NetPortable, Version: v, Profile: profile}, nil
}

func findReference(refs []assembly.Reference, name string) (assembly.Reference, bool) {
	for _, r := range refs {
		if strings.EqualFold(r.Name, name) {
			return r, true
		}
	}
	return assembly.Reference{}, false
}
