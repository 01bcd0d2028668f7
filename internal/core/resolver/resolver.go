// Package resolver maps a project's assembly references to the packages that
// supplied them. Which source of truth is used depends on the manifest the
// project directory holds; each kind has its own Strategy.
package resolver

import (
	"io"

	"github.com/charmbracelet/log"

	"github.com/nightconcept/refgen-go/internal/core/assembly"
	"github.com/nightconcept/refgen-go/internal/core/framework"
	"github.com/nightconcept/refgen-go/internal/core/nuget"
	"github.com/nightconcept/refgen-go/internal/core/project"
	"github.com/nightconcept/refgen-go/internal/core/refassembly"
)

// Strategy resolves references for one kind of package manifest.
type Strategy interface {
	Name() string
	Resolve(refs []assembly.Reference, candidates []framework.Framework) ([]nuget.PackageWithReference, error)
}

// Options carries what the strategies need beyond the references.
type Options struct {
	// ProjectPath is the MSBuild project file; the legacy strategy reads it.
	ProjectPath string
	Classifier  refassembly.Classifier
	Logger      *log.Logger
}

func (o Options) logger() *log.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return log.New(io.Discard)
}

func (o Options) classifier() refassembly.Classifier {
	if o.Classifier != nil {
		return o.Classifier
	}
	return refassembly.NewLocator("")
}

// ForDescriptor selects the strategy for d.
func ForDescriptor(d project.Descriptor, opts Options) Strategy {
	switch d.Kind {
	case project.LockManifest:
		return &LockStrategy{LockPath: d.ManifestPath, opts: opts}
	case project.LegacyManifest:
		return &LegacyStrategy{ConfigPath: d.ManifestPath, opts: opts}
	default:
		return &NoManifestStrategy{opts: opts}
	}
}

// Resolve selects the strategy for d and runs it. candidates are the target
// monikers to look for in a lock file, in priority order.
func Resolve(refs []assembly.Reference, d project.Descriptor, candidates []framework.Framework, opts Options) ([]nuget.PackageWithReference, error) {
	s := ForDescriptor(d, opts)
	opts.logger().Debug("Resolving references", "strategy", s.Name(), "references", len(refs), "manifest", d.ManifestPath)
	return s.Resolve(refs, candidates)
}

// fromReferences turns each reference into a package named and versioned
// after the assembly itself.
func fromReferences(refs []assembly.Reference) ([]nuget.PackageWithReference, error) {
	out := make([]nuget.PackageWithReference, 0, len(refs))
	for _, r := range refs {
		p, err := nuget.FromReference(r)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

// NoManifestStrategy handles the oldest projects, which ship no package
// manifest: every reference is taken to be a framework package.
type NoManifestStrategy struct {
	opts Options
}

// Name implements Strategy.
func (*NoManifestStrategy) Name() string { return "none" }

// Resolve implements Strategy.
func (s *NoManifestStrategy) Resolve(refs []assembly.Reference, _ []framework.Framework) ([]nuget.PackageWithReference, error) {
	return fromReferences(refs)
}
