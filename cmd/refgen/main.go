package main

import (
	"os"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v2"

	"github.com/nightconcept/refgen-go/internal/cli/frameworks"
	"github.com/nightconcept/refgen-go/internal/cli/generate"
	"github.com/nightconcept/refgen-go/internal/cli/self"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "v0.1.0"

func main() {
	app := &cli.App{
		Name:    "refgen",
		Usage:   "Generates nuspec package dependencies from built assemblies",
		Version: version,
		Action: func(c *cli.Context) error {
			_ = cli.ShowAppHelp(c)
			return nil
		},
		Commands: []*cli.Command{
			generate.NewGenerateCommand(),
			frameworks.FrameworksCmd,
			self.NewSelfCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
