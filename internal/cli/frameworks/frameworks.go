// Package frameworks implements the "frameworks" command, which shows the
// framework lists refgen squashes against.
package frameworks

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"github.com/nightconcept/refgen-go/internal/core/framework"
	"github.com/nightconcept/refgen-go/internal/core/frameworklist"
)

// FrameworksCmd lists the frameworks that have an in-box assembly list. With
// a framework argument it prints that framework's assemblies instead.
var FrameworksCmd = &cli.Command{
	Name:      "frameworks",
	Aliases:   []string{"fw"},
	Usage:     "Lists the frameworks with known in-box assemblies",
	ArgsUsage: "[framework]",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "dir",
			Usage: "Read FrameworkList files from this directory instead of the built-in set",
		},
	},
	Action: func(c *cli.Context) error {
		registry, err := loadRegistry(c.String("dir"))
		if err != nil {
			return cli.Exit(fmt.Sprintf("Error loading framework lists: %v", err), 1)
		}

		if c.NArg() > 0 {
			fw, err := framework.Parse(c.Args().First())
			if err != nil {
				return cli.Exit(fmt.Sprintf("Error: %v", err), 1)
			}
			list, err := registry.Get(fw)
			if err != nil {
				return cli.Exit(fmt.Sprintf("Error: %v", err), 1)
			}
			printEntries(c.App.Writer, fw, list)
			return nil
		}

		return printFrameworks(c.App.Writer, registry)
	},
}

func loadRegistry(dir string) (*frameworklist.Registry, error) {
	if dir == "" {
		return frameworklist.Default()
	}
	return frameworklist.NewRegistry(os.DirFS(dir))
}

func printFrameworks(w io.Writer, registry *frameworklist.Registry) error {
	nameColor := color.New(color.FgCyan, color.Bold).SprintFunc()
	shortColor := color.New(color.FgWhite).SprintFunc()
	countColor := color.New(color.FgHiBlack).SprintFunc()

	fws := registry.Frameworks()
	if len(fws) == 0 {
		_, _ = fmt.Fprintln(w, "No framework lists found.")
		return nil
	}
	for _, fw := range fws {
		list, err := registry.Get(fw)
		if err != nil {
			return cli.Exit(fmt.Sprintf("Error reading list for %s: %v", fw, err), 1)
		}
		_, _ = fmt.Fprintf(w, "%s %s %s\n", nameColor(fw.String()), shortColor(fw.ShortFolderName()), countColor(fmt.Sprintf("(%d assemblies)", list.Len())))
	}
	return nil
}

func printEntries(w io.Writer, fw framework.Framework, list *frameworklist.FrameworkList) {
	header := color.New(color.FgCyan, color.Bold).SprintFunc()
	nameColor := color.New(color.FgWhite).SprintFunc()
	versionColor := color.New(color.FgYellow).SprintFunc()

	_, _ = fmt.Fprintln(w, header(fw.String()+":"))
	for _, e := range list.Entries() {
		v := "*"
		if e.Version != nil {
			v = e.Version.String()
		}
		_, _ = fmt.Fprintf(w, "%s %s\n", nameColor(e.Name), versionColor(v))
	}
}
