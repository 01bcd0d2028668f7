// Package project locates a project's build output and its package manifest.
package project

import (
	"fmt"
	"path/filepath"
	"strings"

	"go.trai.ch/zerr"

	"github.com/nightconcept/refgen-go/internal/core/domain"
)

// Project is a project file together with the assembly it builds.
type Project struct {
	Path          string
	Name          string
	IsXProject    bool
	AssemblyPath  string
	Configuration string
	Platform      string
	Manifest      Descriptor
}

// Parse reads a "path[=assemblyOrConfiguration]" project argument.
func Parse(arg string) (*Project, error) {
	var items []string
	for _, s := range strings.Split(arg, "=") {
		if s = strings.TrimSpace(s); s != "" {
			items = append(items, s)
		}
	}
	if len(items) < 1 || len(items) > 2 {
		return nil, zerr.With(fmt.Errorf("%w: unable to parse project '%s'", domain.ErrConfiguration, arg), "project", arg)
	}
	var second string
	if len(items) == 2 {
		second = items[1]
	}
	return New(items[0], second)
}

// New describes the project at path. assemblyOrConfiguration is either the
// path of the built assembly or the name of the build configuration used to
// compute it from the project file; it may be empty for csproj files.
func New(path, assemblyOrConfiguration string) (*Project, error) {
	p := &Project{
		Path:       path,
		Name:       baseName(path),
		IsXProject: strings.EqualFold(filepath.Ext(path), ".xproj"),
	}
	if p.IsXProject && assemblyOrConfiguration == "" {
		return nil, zerr.With(fmt.Errorf("%w: a path to the assembly or a configuration name must be provided", domain.ErrConfiguration), "project", path)
	}
	p.Manifest = DetectManifest(path)

	if assemblyOrConfiguration != "" && exists(assemblyOrConfiguration) {
		p.AssemblyPath = assemblyOrConfiguration
		return p, nil
	}

	f, err := LoadFile(path)
	if err != nil {
		return nil, err
	}
	p.Configuration = assemblyOrConfiguration
	if p.Configuration == "" {
		p.Configuration = f.Property("Configuration")
	}
	p.Platform = f.Property("Platform")

	assemblyName := f.Property("AssemblyName")
	if assemblyName == "" {
		assemblyName = p.Name
	}
	out, err := p.outputDir(f)
	if err != nil {
		return nil, err
	}
	p.AssemblyPath = filepath.Join(out, assemblyName+".dll")
	return p, nil
}

// outputDir resolves OutputPath from the Globals property group, or from the
// group conditioned on the current Configuration|Platform.
func (p *Project) outputDir(f *File) (string, error) {
	pg := f.propertyGroup("Label", "Globals")
	if pg == nil {
		key := p.Configuration
		if p.Platform != "" {
			key += "|" + p.Platform
		}
		pg = f.propertyGroup("Condition", key)
	}
	if pg == nil {
		return "", zerr.With(fmt.Errorf("%w: no property group for configuration '%s'", domain.ErrConfiguration, p.Configuration), "project", p.Path)
	}
	el := pg.SelectElement("OutputPath")
	if el == nil {
		return "", zerr.With(fmt.Errorf("%w: no OutputPath for configuration '%s'", domain.ErrConfiguration, p.Configuration), "project", p.Path)
	}
	out := strings.ReplaceAll(strings.TrimSpace(el.Text()), "$(MSBuildProjectName)", p.Name)
	out = filepath.FromSlash(strings.ReplaceAll(out, "\\", "/"))

	dir := filepath.Join(filepath.Dir(p.Path), out)
	if p.IsXProject {
		dir = filepath.Join(dir, p.Configuration)
	}
	return dir, nil
}

// AssemblyPathFor returns where the assembly for one framework of a
// multi-targeted build lives: <output>/<short folder name>/<assembly>.
func (p *Project) AssemblyPathFor(shortFolderName string) string {
	return filepath.Join(filepath.Dir(p.AssemblyPath), shortFolderName, filepath.Base(p.AssemblyPath))
}
