// Package project_test contains tests for the project package.
package project_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nightconcept/refgen-go/internal/core/domain"
	"github.com/nightconcept/refgen-go/internal/core/project"
)

const pclProject = `<?xml version="1.0" encoding="utf-8"?>
<Project ToolsVersion="14.0" DefaultTargets="Build" xmlns="http://schemas.microsoft.com/developer/msbuild/2003">
  <PropertyGroup>
    <Configuration Condition=" '$(Configuration)' == '' ">Debug</Configuration>
    <Platform Condition=" '$(Platform)' == '' ">AnyCPU</Platform>
    <AssemblyName>Contoso.Core</AssemblyName>
    <TargetFrameworkVersion>v4.5</TargetFrameworkVersion>
    <TargetFrameworkProfile>Profile259</TargetFrameworkProfile>
  </PropertyGroup>
  <PropertyGroup Condition=" '$(Configuration)|$(Platform)' == 'Debug|AnyCPU' ">
    <OutputPath>bin\Debug\</OutputPath>
  </PropertyGroup>
  <PropertyGroup Condition=" '$(Configuration)|$(Platform)' == 'Release|AnyCPU' ">
    <OutputPath>bin\$(MSBuildProjectName)\Release\</OutputPath>
  </PropertyGroup>
  <ItemGroup>
    <Reference Include="Newtonsoft.Json, Version=7.0.0.0, Culture=neutral, PublicKeyToken=30ad4fe6b2a6aeed">
      <HintPath>..\packages\Newtonsoft.Json.7.0.1\lib\portable-net45+wp80+win8+wpa81+dnxcore50\Newtonsoft.Json.dll</HintPath>
      <Private>True</Private>
    </Reference>
    <Reference Include="Local.Helpers">
      <HintPath>..\lib\Local.Helpers.dll</HintPath>
    </Reference>
    <Reference Include="System.Runtime" />
  </ItemGroup>
</Project>`

const xproj = `<?xml version="1.0" encoding="utf-8"?>
<Project ToolsVersion="14.0" xmlns="http://schemas.microsoft.com/developer/msbuild/2003">
  <PropertyGroup Label="Globals">
    <OutputPath>..\..\artifacts\bin\$(MSBuildProjectName)\</OutputPath>
  </PropertyGroup>
</Project>`

func setupProjectTestEnvironment(t *testing.T, name, content string, extra ...string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	for _, f := range extra {
		require.NoError(t, os.WriteFile(filepath.Join(dir, f), []byte("{}"), 0o600))
	}
	return path
}

func TestDetectManifest_Priority(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		files    []string
		kind     project.ManifestKind
		manifest string
	}{
		{"project specific json", []string{"Contoso.project.json", "project.json", "packages.config"}, project.LockManifest, "Contoso.project.lock.json"},
		{"generic json", []string{"project.json", "packages.Contoso.config"}, project.LockManifest, "project.lock.json"},
		{"project specific config", []string{"packages.Contoso.config", "packages.config"}, project.LegacyManifest, "packages.Contoso.config"},
		{"generic config", []string{"packages.config"}, project.LegacyManifest, "packages.config"},
		{"nothing", nil, project.NoManifest, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			path := setupProjectTestEnvironment(t, "Contoso.csproj", pclProject, tt.files...)
			d := project.DetectManifest(path)
			assert.Equal(t, tt.kind, d.Kind)
			if tt.manifest == "" {
				assert.Empty(t, d.ManifestPath)
				return
			}
			assert.Equal(t, filepath.Join(filepath.Dir(path), tt.manifest), d.ManifestPath)
		})
	}
}

func TestFile_PropertiesAndReferences(t *testing.T) {
	t.Parallel()
	f, err := project.LoadFile(setupProjectTestEnvironment(t, "Contoso.csproj", pclProject))
	require.NoError(t, err)

	version, profile := f.TargetFramework()
	assert.Equal(t, "v4.5", version)
	assert.Equal(t, "Profile259", profile)

	refs := f.References()
	require.Len(t, refs, 3)
	assert.Equal(t, "Newtonsoft.Json", refs[0].Assembly)
	assert.Equal(t, "Newtonsoft.Json.7.0.1", refs[0].PackageDir)
	assert.Equal(t, "Local.Helpers", refs[1].Assembly)
	assert.Empty(t, refs[1].PackageDir)
	assert.Empty(t, refs[2].HintPath)

	_, err = project.LoadFile(filepath.Join(t.TempDir(), "missing.csproj"))
	assert.Error(t, err)
}

func TestParse_AssemblyPathGiven(t *testing.T) {
	t.Parallel()
	path := setupProjectTestEnvironment(t, "Contoso.csproj", pclProject, "packages.config")
	dll := filepath.Join(filepath.Dir(path), "Contoso.Core.dll")
	require.NoError(t, os.WriteFile(dll, nil, 0o600))

	p, err := project.Parse(path + "=" + dll)
	require.NoError(t, err)
	assert.Equal(t, dll, p.AssemblyPath)
	assert.Equal(t, project.LegacyManifest, p.Manifest.Kind)
	assert.Equal(t, "Contoso", p.Name)
}

func TestParse_ComputesOutputPath(t *testing.T) {
	t.Parallel()
	path := setupProjectTestEnvironment(t, "Contoso.csproj", pclProject)
	dir := filepath.Dir(path)

	p, err := project.Parse(path)
	require.NoError(t, err)
	assert.Equal(t, "Debug", p.Configuration)
	assert.Equal(t, filepath.Join(dir, "bin", "Debug", "Contoso.Core.dll"), p.AssemblyPath)

	p, err = project.Parse(path + "=Release")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "bin", "Contoso", "Release", "Contoso.Core.dll"), p.AssemblyPath)
	assert.Equal(t, filepath.Join(dir, "bin", "Contoso", "Release", "net45", "Contoso.Core.dll"), p.AssemblyPathFor("net45"))

	_, err = project.Parse(path + "=Staging")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrConfiguration))
}

func TestParse_XProject(t *testing.T) {
	t.Parallel()
	path := setupProjectTestEnvironment(t, "Contoso.Web.xproj", xproj, "project.json")

	_, err := project.Parse(path)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrConfiguration))

	p, err := project.Parse(path + "=Release")
	require.NoError(t, err)
	assert.True(t, p.IsXProject)
	assert.Equal(t, project.LockManifest, p.Manifest.Kind)
	want := filepath.Join(filepath.Dir(path), "..", "..", "artifacts", "bin", "Contoso.Web", "Release", "Contoso.Web.dll")
	assert.Equal(t, filepath.Clean(want), p.AssemblyPath)
}

func TestParse_Malformed(t *testing.T) {
	t.Parallel()
	for _, arg := range []string{"", "=", "a=b=c"} {
		_, err := project.Parse(arg)
		assert.Error(t, err, arg)
	}
}
