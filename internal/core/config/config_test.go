package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nightconcept/refgen-go/internal/core/domain"
	"github.com/nightconcept/refgen-go/internal/core/framework"
)

const validToml = `
nuget_target_monikers = [".NETPlatform,Version=v5.0"]
target_frameworks = ["dotnet"]
nuspec = "MyLib.nuspec"
baseline = "extra-baseline.toml"

[[projects]]
path = "src/MyLib/MyLib.csproj"
assembly = "src/MyLib/bin/Release/MyLib.dll"

[[projects]]
path = "src/MyLib.Core/MyLib.Core.xproj"
configuration = "Release"
`

func TestLoad_Valid(t *testing.T) {
	tempDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tempDir, FileName), []byte(validToml), 0o644))

	cfg, err := Load(tempDir)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, []string{"dotnet"}, cfg.TargetFrameworks)
	assert.Equal(t, "MyLib.nuspec", cfg.Nuspec)
	require.Len(t, cfg.Projects, 2)
	assert.Equal(t, "src/MyLib/MyLib.csproj=src/MyLib/bin/Release/MyLib.dll", cfg.Projects[0].Spec())
	assert.Equal(t, "src/MyLib.Core/MyLib.Core.xproj=Release", cfg.Projects[1].Spec())
	assert.False(t, cfg.IsAuto())

	monikers, err := cfg.Monikers()
	require.NoError(t, err)
	assert.Equal(t, []framework.Framework{framework.MustParse("dotnet")}, monikers)

	cfg.Resolve(tempDir)
	assert.Equal(t, filepath.Join(tempDir, "MyLib.nuspec"), cfg.Nuspec)
	assert.Equal(t, filepath.Join(tempDir, "extra-baseline.toml"), cfg.Baseline)
	assert.Equal(t, filepath.Join(tempDir, "src/MyLib/MyLib.csproj"), cfg.Projects[0].Path)
	assert.Empty(t, cfg.Projects[1].Assembly)
	assert.Empty(t, cfg.ReferenceAssemblies)
}

func TestLoad_NotFound(t *testing.T) {
	_, err := Load(t.TempDir())
	assert.Error(t, err)
	assert.True(t, os.IsNotExist(err), "Error should be a 'file not found' type error")
}

func TestLoad_InvalidFormat(t *testing.T) {
	tempDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tempDir, FileName), []byte("nuspec = [\n"), 0o644))

	_, err := Load(tempDir)
	assert.True(t, errors.Is(err, domain.ErrConfiguration))
}

func TestValidate(t *testing.T) {
	err := (&Config{}).Validate()
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrConfiguration))
	assert.Contains(t, err.Error(), "no nuspec given")
	assert.Contains(t, err.Error(), "no projects given")

	auto := &Config{
		NuGetTargetMonikers: []string{".NETPlatform,Version=v5.0"},
		TargetFrameworks:    []string{"Auto"},
		Nuspec:              "a.nuspec",
		Projects:            []Project{{Path: "a.csproj", Assembly: "a.dll", Configuration: "Release"}},
	}
	assert.True(t, auto.IsAuto())
	err = auto.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "target_framework_name is empty")
	assert.Contains(t, err.Error(), "sets both assembly and configuration")

	_, err = (&Config{NuGetTargetMonikers: []string{"nonsense42"}}).Monikers()
	assert.True(t, errors.Is(err, domain.ErrConfiguration))
}

func TestWrite_RoundTripAndOverwrite(t *testing.T) {
	tempDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tempDir, FileName), []byte(validToml), 0o644))

	cfg := &Config{
		NuGetTargetMonikers: []string{".NETPortable,Version=v4.5,Profile=Profile259"},
		TargetFrameworks:    []string{Auto},
		TargetFrameworkName: ".NETPortable,Version=v4.5,Profile=Profile259",
		Nuspec:              "Other.nuspec",
		Projects:            []Project{{Path: "Other.csproj"}},
	}
	require.NoError(t, Write(tempDir, cfg))

	loaded, err := Load(tempDir)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
	assert.Empty(t, loaded.Baseline, "old fields are gone")
}
