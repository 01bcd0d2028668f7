// Package config loads and writes refgen.toml.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"go.trai.ch/zerr"

	"github.com/nightconcept/refgen-go/internal/core/domain"
	"github.com/nightconcept/refgen-go/internal/core/framework"
)

// FileName is the configuration file looked up in the working directory.
const FileName = "refgen.toml"

// Auto as the only target framework derives the nuspec group from
// TargetFrameworkName.
const Auto = "auto"

// Project is one [[projects]] entry. At most one of Assembly and
// Configuration is set.
type Project struct {
	Path          string `toml:"path"`
	Assembly      string `toml:"assembly,omitempty"`
	Configuration string `toml:"configuration,omitempty"`
}

// Spec renders the entry as a "path=assemblyOrConfiguration" argument.
func (p Project) Spec() string {
	switch {
	case p.Assembly != "":
		return p.Path + "=" + p.Assembly
	case p.Configuration != "":
		return p.Path + "=" + p.Configuration
	}
	return p.Path
}

// Config is the content of refgen.toml. Paths are relative to the file.
type Config struct {
	NuGetTargetMonikers []string  `toml:"nuget_target_monikers"`
	TargetFrameworks    []string  `toml:"target_frameworks"`
	TargetFrameworkName string    `toml:"target_framework_name,omitempty"`
	Nuspec              string    `toml:"nuspec"`
	ReferenceAssemblies string    `toml:"reference_assemblies,omitempty"`
	Baseline            string    `toml:"baseline,omitempty"`
	Projects            []Project `toml:"projects"`
}

// Load reads refgen.toml from dirPath. A missing file is reported with an
// error satisfying os.IsNotExist.
func Load(dirPath string) (*Config, error) {
	data, err := os.ReadFile(filepath.Join(dirPath, FileName))
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, zerr.With(fmt.Errorf("%w: %v", domain.ErrConfiguration, err), "path", filepath.Join(dirPath, FileName))
	}
	return &cfg, nil
}

// Write encodes cfg to refgen.toml in dirPath, replacing any existing file.
func Write(dirPath string, cfg *Config) error {
	buf := new(bytes.Buffer)
	if err := toml.NewEncoder(buf).Encode(cfg); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dirPath, FileName), buf.Bytes(), 0o644)
}

// IsAuto reports whether the nuspec group is derived from
// TargetFrameworkName.
func (c *Config) IsAuto() bool {
	return len(c.TargetFrameworks) == 1 && strings.EqualFold(c.TargetFrameworks[0], Auto)
}

// Monikers parses NuGetTargetMonikers in order.
func (c *Config) Monikers() ([]framework.Framework, error) {
	out := make([]framework.Framework, 0, len(c.NuGetTargetMonikers))
	for _, m := range c.NuGetTargetMonikers {
		fw, err := framework.Parse(m)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrConfiguration, err)
		}
		out = append(out, fw)
	}
	return out, nil
}

// Resolve makes relative paths absolute against dir.
func (c *Config) Resolve(dir string) {
	abs := func(p string) string {
		if p == "" || filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(dir, p)
	}
	c.Nuspec = abs(c.Nuspec)
	c.Baseline = abs(c.Baseline)
	c.ReferenceAssemblies = abs(c.ReferenceAssemblies)
	for i := range c.Projects {
		c.Projects[i].Path = abs(c.Projects[i].Path)
		c.Projects[i].Assembly = abs(c.Projects[i].Assembly)
	}
}

// Validate checks that a generation run has everything it needs.
func (c *Config) Validate() error {
	var errs []error
	if len(c.NuGetTargetMonikers) == 0 {
		errs = append(errs, errors.New("no nuget_target_monikers given"))
	}
	if len(c.TargetFrameworks) == 0 {
		errs = append(errs, errors.New("no target_frameworks given"))
	}
	if c.IsAuto() && c.TargetFrameworkName == "" {
		errs = append(errs, errors.New("target_frameworks is 'auto' but target_framework_name is empty"))
	}
	if c.Nuspec == "" {
		errs = append(errs, errors.New("no nuspec given"))
	}
	if len(c.Projects) == 0 {
		errs = append(errs, errors.New("no projects given"))
	}
	for _, p := range c.Projects {
		if p.Path == "" {
			errs = append(errs, errors.New("project entry without a path"))
		}
		if p.Assembly != "" && p.Configuration != "" {
			errs = append(errs, fmt.Errorf("project %s sets both assembly and configuration", p.Path))
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", domain.ErrConfiguration, errors.Join(errs...))
}
