// Package generator runs the whole pipeline: read each project's assembly,
// resolve its references to packages, keep the newest version of each, squash
// per target framework, apply the baseline and merge the result into the
// nuspec.
package generator

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"go.trai.ch/zerr"

	"github.com/nightconcept/refgen-go/internal/core/assembly"
	"github.com/nightconcept/refgen-go/internal/core/baseline"
	"github.com/nightconcept/refgen-go/internal/core/domain"
	"github.com/nightconcept/refgen-go/internal/core/framework"
	"github.com/nightconcept/refgen-go/internal/core/frameworklist"
	"github.com/nightconcept/refgen-go/internal/core/nuget"
	"github.com/nightconcept/refgen-go/internal/core/nuspec"
	"github.com/nightconcept/refgen-go/internal/core/project"
	"github.com/nightconcept/refgen-go/internal/core/refassembly"
	"github.com/nightconcept/refgen-go/internal/core/resolver"
	"github.com/nightconcept/refgen-go/internal/core/squash"
)

// Auto as the only target framework derives the nuspec group from the
// project's TargetFrameworkName.
const Auto = "auto"

// Request is one generation run.
type Request struct {
	// Projects are "path[=assemblyOrConfiguration]" specs.
	Projects []string
	// Monikers are the lock file targets to look for, in priority order.
	Monikers []framework.Framework
	// TargetFrameworks are the nuspec groups to write, or just "auto".
	TargetFrameworks    []string
	TargetFrameworkName string
	Nuspec              string
	// DryRun computes the groups without touching the nuspec.
	DryRun bool
}

// Result is what a run produced.
type Result struct {
	Packages []nuget.PackageWithReference
	Groups   []nuspec.Group
	Nuspec   nuspec.Result
}

// Generator holds the collaborators of a run. Zero-valued fields fall back
// to the process-wide defaults: the embedded framework lists and baseline,
// framework.DefaultOracle, assembly.FileReader and a discarding logger.
type Generator struct {
	Lists      squash.Lists
	Oracle     framework.Oracle
	Baseline   *baseline.Table
	Classifier refassembly.Classifier
	Reader     assembly.Reader
	Logger     *log.Logger
}

func (g *Generator) logger() *log.Logger {
	if g.Logger != nil {
		return g.Logger
	}
	return log.New(io.Discard)
}

func (g *Generator) reader() assembly.Reader {
	if g.Reader != nil {
		return g.Reader
	}
	return assembly.FileReader{}
}

func (g *Generator) lists() (squash.Lists, error) {
	if g.Lists != nil {
		return g.Lists, nil
	}
	r, err := frameworklist.Default()
	if err != nil {
		return nil, err
	}
	return r, nil
}

func (g *Generator) oracle() framework.Oracle {
	if g.Oracle != nil {
		return g.Oracle
	}
	return framework.DefaultOracle
}

func (g *Generator) table() (*baseline.Table, error) {
	if g.Baseline != nil {
		return g.Baseline, nil
	}
	return baseline.Default()
}

// Run executes req. Any project failing aborts the run before the nuspec is
// touched.
func (g *Generator) Run(req Request) (*Result, error) {
	targets, err := TargetFrameworks(req.TargetFrameworks, req.TargetFrameworkName)
	if err != nil {
		return nil, err
	}

	projects := make([]*project.Project, 0, len(req.Projects))
	for _, spec := range req.Projects {
		p, err := project.Parse(spec)
		if err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}

	pkgs, err := g.ResolveProjects(projects, Candidates(req.Monikers), targets)
	if err != nil {
		return nil, err
	}

	groups, err := g.Groups(pkgs, targets)
	if err != nil {
		return nil, err
	}

	res := &Result{Packages: pkgs, Groups: groups}
	if req.DryRun {
		return res, nil
	}
	res.Nuspec, err = nuspec.Update(req.Nuspec, groups)
	if err != nil {
		return nil, err
	}
	g.logger().Info("Updated nuspec", "path", req.Nuspec, "changed", res.Nuspec.Changed, "groups", len(groups))
	return res, nil
}

// ResolveProjects resolves every project and keeps the newest version of
// each package id. targets pick the per-framework output of multi-targeted
// builds, see AssemblyPath.
func (g *Generator) ResolveProjects(projects []*project.Project, candidates []framework.Framework, targets []string) ([]nuget.PackageWithReference, error) {
	logger := g.logger()
	var all []nuget.PackageWithReference
	for _, p := range projects {
		path := AssemblyPath(p, targets)
		if path != p.AssemblyPath {
			logger.Debug("Using per-framework output", "project", p.Name, "assembly", path)
		}
		info, err := g.reader().Read(path)
		if err != nil {
			return nil, projectError(p, err)
		}
		logger.Debug("Read assembly", "name", info.Name, "version", info.Version, "references", len(info.References))

		pkgs, err := resolver.Resolve(info.References, p.Manifest, candidates, resolver.Options{
			ProjectPath: p.Path,
			Classifier:  g.Classifier,
			Logger:      logger,
		})
		if err != nil {
			return nil, projectError(p, err)
		}
		logger.Info("Resolved project", "project", p.Name, "manifest", p.Manifest.Kind, "packages", len(pkgs))
		all = append(all, pkgs...)
	}

	sorted := squash.SortedMostRecent(all)
	for _, p := range sorted {
		if strings.EqualFold(p.ID, "mscorlib") {
			return nil, domain.ErrMscorlibNotSupported
		}
	}
	return sorted, nil
}

// AssemblyPath returns <output>/<short folder name>/<assembly> for the first
// target whose per-framework output exists, and the project's own assembly
// path otherwise.
func AssemblyPath(p *project.Project, targets []string) string {
	for _, t := range targets {
		fw, err := framework.Parse(t)
		if err != nil {
			continue
		}
		path := p.AssemblyPathFor(fw.ShortFolderName())
		if fi, err := os.Stat(path); err == nil && !fi.IsDir() {
			return path
		}
	}
	return p.AssemblyPath
}

func projectError(p *project.Project, err error) error {
	return zerr.With(fmt.Errorf("project %s: %w", p.Name, err), "project", p.Path)
}

// Groups squashes pkgs for each target and applies the baseline. The first
// group of each target carries the target's own name; the groups squash adds
// for supporting frameworks use their short folder names. Every group
// replaces all resolved ids in an existing nuspec group, so packages that
// became in-box are dropped.
func (g *Generator) Groups(pkgs []nuget.PackageWithReference, targets []string) ([]nuspec.Group, error) {
	lists, err := g.lists()
	if err != nil {
		return nil, err
	}
	table, err := g.table()
	if err != nil {
		return nil, err
	}
	resolved := make([]string, len(pkgs))
	for i, p := range pkgs {
		resolved[i] = p.ID
	}

	s := squash.New(lists, g.oracle())
	var out []nuspec.Group
	for _, target := range targets {
		fw, err := framework.Parse(target)
		if err != nil {
			return nil, zerr.With(fmt.Errorf("%w: %v", domain.ErrUnsupportedFramework, err), "framework", target)
		}
		squashed, err := s.Squash(pkgs, fw)
		if err != nil {
			return nil, err
		}
		for i, grp := range squashed {
			name := grp.Framework.ShortFolderName()
			if i == 0 {
				name = target
			}
			out = append(out, nuspec.Group{
				TargetFramework: name,
				Packages:        table.Apply(nuget.Packages(grp.Packages)),
				Replaces:        resolved,
			})
			g.logger().Debug("Squashed group", "framework", name, "packages", len(grp.Packages))
		}
	}
	return out, nil
}

// TargetFrameworks expands "auto" from the TargetFrameworkName: a portable
// profile becomes its short folder name and a package based framework is
// used as is. Anything else is ErrUnsupportedFramework.
func TargetFrameworks(targets []string, targetFrameworkName string) ([]string, error) {
	if len(targets) != 1 || !strings.EqualFold(targets[0], Auto) {
		return targets, nil
	}
	fw, err := framework.Parse(targetFrameworkName)
	if err != nil {
		return nil, zerr.With(fmt.Errorf("%w: %v", domain.ErrUnsupportedFramework, err), "framework", targetFrameworkName)
	}
	switch fw.Kind() {
	case framework.Portable, framework.PackageBased:
		return []string{fw.ShortFolderName()}, nil
	}
	return nil, zerr.With(fmt.Errorf("%w: %s", domain.ErrUnsupportedFramework, fw), "framework", targetFrameworkName)
}

// Candidates returns monikers with each portable profile followed by its
// package based equivalent, so lock files restored for either are found.
func Candidates(monikers []framework.Framework) []framework.Framework {
	out := make([]framework.Framework, 0, len(monikers))
	seen := make(map[framework.Framework]bool, len(monikers))
	add := func(fw framework.Framework) {
		if !seen[fw] {
			seen[fw] = true
			out = append(out, fw)
		}
	}
	for _, m := range monikers {
		add(m)
		if eq, ok := m.PackageBasedEquivalent(); ok {
			add(eq)
		}
	}
	return out
}
