// Package generate implements the "generate" command, which computes the
// package dependencies of the configured projects and writes them into the
// nuspec.
package generate

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/beevik/etree"
	"github.com/charmbracelet/log"
	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"github.com/nightconcept/refgen-go/internal/core/baseline"
	"github.com/nightconcept/refgen-go/internal/core/config"
	"github.com/nightconcept/refgen-go/internal/core/diagnostic"
	"github.com/nightconcept/refgen-go/internal/core/frameworklist"
	"github.com/nightconcept/refgen-go/internal/core/generator"
	"github.com/nightconcept/refgen-go/internal/core/nuspec"
	"github.com/nightconcept/refgen-go/internal/core/refassembly"
)

// NewGenerateCommand creates the cli.Command for "generate". Flags take
// precedence over refgen.toml; list flags are semicolon separated, the way
// MSBuild passes item lists.
func NewGenerateCommand() *cli.Command {
	return &cli.Command{
		Name:  "generate",
		Usage: "Writes the package dependencies of the built projects into the nuspec",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Value: ".", Usage: "Directory holding " + config.FileName},
			&cli.StringFlag{Name: "monikers", Usage: "NuGet target monikers to look for in lock files, e.g. '.NETPlatform,Version=v5.0'"},
			&cli.StringFlag{Name: "frameworks", Usage: "Target frameworks of the nuspec groups, e.g. 'dotnet;uap10.0', or 'auto'"},
			&cli.StringFlag{Name: "target-framework-name", Usage: "The project's TargetFrameworkName, used with 'auto'"},
			&cli.StringFlag{Name: "nuspec", Usage: "Path of the nuspec to update"},
			&cli.StringFlag{Name: "projects", Usage: "Projects as 'path[=assemblyOrConfiguration]'"},
			&cli.StringFlag{Name: "reference-assemblies", Usage: "Reference Assemblies\\Microsoft\\Framework directory used for classic portable profiles"},
			&cli.StringFlag{Name: "baseline", Usage: "Additional baseline table layered over the built-in one"},
			&cli.BoolFlag{Name: "dry-run", Usage: "Print the groups without writing the nuspec"},
			&cli.BoolFlag{Name: "verbose", Aliases: []string{"v"}, Usage: "Enable debug logging"},
		},
		Action: func(c *cli.Context) error {
			cfg, err := loadConfig(c)
			if err != nil {
				return fail(c, err)
			}
			applyFlags(c, cfg)
			if err := cfg.Validate(); err != nil {
				return fail(c, err)
			}

			logger := newLogger(c.App.ErrWriter, c.Bool("verbose"))
			g, err := newGenerator(cfg, logger)
			if err != nil {
				return fail(c, err)
			}
			monikers, err := cfg.Monikers()
			if err != nil {
				return fail(c, err)
			}

			req := generator.Request{
				Monikers:            monikers,
				TargetFrameworks:    cfg.TargetFrameworks,
				TargetFrameworkName: cfg.TargetFrameworkName,
				Nuspec:              cfg.Nuspec,
				DryRun:              c.Bool("dry-run"),
			}
			for _, p := range cfg.Projects {
				req.Projects = append(req.Projects, p.Spec())
			}

			res, err := g.Run(req)
			if err != nil {
				return fail(c, err)
			}
			report(c.App.Writer, cfg.Nuspec, res, req.DryRun)
			return nil
		},
	}
}

func loadConfig(c *cli.Context) (*config.Config, error) {
	dir := c.String("config")
	cfg, err := config.Load(dir)
	if errors.Is(err, os.ErrNotExist) {
		return &config.Config{}, nil
	}
	if err != nil {
		return nil, err
	}
	cfg.Resolve(dir)
	return cfg, nil
}

func applyFlags(c *cli.Context, cfg *config.Config) {
	if c.IsSet("monikers") {
		cfg.NuGetTargetMonikers = splitList(c.String("monikers"))
	}
	if c.IsSet("frameworks") {
		cfg.TargetFrameworks = splitList(c.String("frameworks"))
	}
	if c.IsSet("target-framework-name") {
		cfg.TargetFrameworkName = c.String("target-framework-name")
	}
	if c.IsSet("nuspec") {
		cfg.Nuspec = c.String("nuspec")
	}
	if c.IsSet("reference-assemblies") {
		cfg.ReferenceAssemblies = c.String("reference-assemblies")
	}
	if c.IsSet("baseline") {
		cfg.Baseline = c.String("baseline")
	}
	if c.IsSet("projects") {
		cfg.Projects = nil
		for _, spec := range splitList(c.String("projects")) {
			path, rest, _ := strings.Cut(spec, "=")
			p := config.Project{Path: strings.TrimSpace(path)}
			if rest = strings.TrimSpace(rest); rest != "" {
				if filepath.Ext(rest) != "" {
					p.Assembly = rest
				} else {
					p.Configuration = rest
				}
			}
			cfg.Projects = append(cfg.Projects, p)
		}
	}
}

func splitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ";") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func newGenerator(cfg *config.Config, logger *log.Logger) (*generator.Generator, error) {
	lists, err := frameworklist.Default()
	if err != nil {
		return nil, err
	}
	table, err := baseline.Default()
	if err != nil {
		return nil, err
	}
	if cfg.Baseline != "" {
		extra, err := baseline.Load(cfg.Baseline)
		if err != nil {
			return nil, err
		}
		table = table.Merge(extra)
	}
	locator := refassembly.Detect(cfg.ReferenceAssemblies)
	logger.Debug("Reference assemblies", "root", locator.Root, "capability", locator.Capability)

	return &generator.Generator{
		Lists:      lists,
		Baseline:   table,
		Classifier: locator,
		Logger:     logger,
	}, nil
}

// newLogger writes timestamped progress to w; verbose lowers the level to
// debug.
func newLogger(w io.Writer, verbose bool) *log.Logger {
	level := log.InfoLevel
	if verbose {
		level = log.DebugLevel
	}
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// fail prints err as a diagnostic. Warnings leave the exit status at zero.
func fail(c *cli.Context, err error) error {
	d := diagnostic.FromError(err)
	diagnostic.Print(c.App.ErrWriter, d)
	if d.IsWarning() {
		return nil
	}
	return cli.Exit("", 1)
}

// report lists the groups. A dry run also marks each package against the
// nuspec as it is on disk: "(new)" or the version currently written.
func report(w io.Writer, nuspecPath string, res *generator.Result, dryRun bool) {
	header := color.New(color.FgCyan, color.Bold).SprintFunc()
	id := color.New(color.FgWhite).SprintFunc()
	ver := color.New(color.FgYellow).SprintFunc()
	dim := color.New(color.FgHiBlack).SprintFunc()

	var current *etree.Document
	if dryRun {
		if doc, err := nuspec.Load(nuspecPath); err == nil {
			current = doc
		}
	}

	for _, g := range res.Groups {
		_, _ = fmt.Fprintln(w, header(g.TargetFramework+":"))
		if len(g.Packages) == 0 {
			_, _ = fmt.Fprintln(w, dim("  (no dependencies)"))
		}
		written := writtenVersions(current, g.TargetFramework)
		for _, p := range g.Packages {
			line := fmt.Sprintf("  %s %s", id(p.ID), ver(p.VersionString))
			if current != nil {
				switch v, ok := written[strings.ToLower(p.ID)]; {
				case !ok:
					line += " " + dim("(new)")
				case v != p.VersionString:
					line += " " + dim("(nuspec: "+v+")")
				}
			}
			_, _ = fmt.Fprintln(w, line)
		}
	}
	switch {
	case dryRun:
		_, _ = fmt.Fprintln(w, dim("Dry run, "+nuspecPath+" was not modified."))
	case res.Nuspec.Changed:
		_, _ = fmt.Fprintf(w, "Updated %s (%s)\n", nuspecPath, dim(res.Nuspec.Digest))
	default:
		_, _ = fmt.Fprintf(w, "%s is up to date.\n", nuspecPath)
	}
}

// writtenVersions maps lower-cased ids to the versions doc holds for tfm.
func writtenVersions(doc *etree.Document, tfm string) map[string]string {
	out := make(map[string]string)
	if doc == nil {
		return out
	}
	for _, d := range nuspec.Dependencies(doc, tfm) {
		out[strings.ToLower(d.ID)] = d.Version
	}
	return out
}
