package project

import (
	"os"
	"path/filepath"
)

// ManifestKind says where a project records its package dependencies.
type ManifestKind int

const (
	// NoManifest projects ship no package manifest at all.
	NoManifest ManifestKind = iota
	// LockManifest projects use project.json with a project.lock.json.
	LockManifest
	// LegacyManifest projects use packages.config.
	LegacyManifest
)

func (k ManifestKind) String() string {
	switch k {
	case LockManifest:
		return "lock"
	case LegacyManifest:
		return "legacy"
	default:
		return "none"
	}
}

// Descriptor is the result of probing a project directory for its package
// manifest.
type Descriptor struct {
	Kind ManifestKind
	// ManifestPath is the lock file or packages.config to read; empty for
	// NoManifest.
	ManifestPath string
}

// DetectManifest inspects the directory of the project file at projectPath. The
// candidates are checked in priority order and the first one present wins:
// <name>.project.json, project.json, packages.<name>.config, packages.config.
func DetectManifest(projectPath string) Descriptor {
	dir := filepath.Dir(projectPath)
	name := baseName(projectPath)

	switch {
	case exists(filepath.Join(dir, name+".project.json")):
		return Descriptor{Kind: LockManifest, ManifestPath: filepath.Join(dir, name+".project.lock.json")}
	case exists(filepath.Join(dir, "project.json")):
		return Descriptor{Kind: LockManifest, ManifestPath: filepath.Join(dir, "project.lock.json")}
	case exists(filepath.Join(dir, "packages."+name+".config")):
		return Descriptor{Kind: LegacyManifest, ManifestPath: filepath.Join(dir, "packages."+name+".config")}
	case exists(filepath.Join(dir, "packages.config")):
		return Descriptor{Kind: LegacyManifest, ManifestPath: filepath.Join(dir, "packages.config")}
	}
	return Descriptor{Kind: NoManifest}
}

func exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func baseName(path string) string {
	base := filepath.Base(path)
	return base[:len(base)-len(filepath.Ext(base))]
}
