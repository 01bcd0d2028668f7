// Package nuget_test contains tests for the nuget package.
package nuget_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nightconcept/refgen-go/internal/core/assembly"
	"github.com/nightconcept/refgen-go/internal/core/nuget"
)

func TestParseVersion(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in   string
		want string
	}{
		{"4.0.10", "4.0.10"},
		{"4.0", "4.0.0"},
		{"1.0.0-beta-23019", "1.0.0-beta-23019"},
		{"4.0.10.0", "4.0.10"},
		{"4.0.10.2", "4.0.10+rev2"},
		{"4.0.10.2-rc1+sha.abc", "4.0.10-rc1+rev2.sha.abc"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			v, err := nuget.ParseVersion(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, v.String())
		})
	}

	_, err := nuget.ParseVersion("1.x.0.1")
	assert.Error(t, err)
	_, err = nuget.ParseVersion("banana")
	assert.Error(t, err)
}

func TestCompareVersions(t *testing.T) {
	t.Parallel()
	v := nuget.MustParseVersion
	assert.Equal(t, -1, nuget.CompareVersions(v("4.0.0"), v("4.0.10")))
	assert.Equal(t, 1, nuget.CompareVersions(v("4.0.10.3"), v("4.0.10.2")))
	assert.Equal(t, 1, nuget.CompareVersions(v("4.0.10.1"), v("4.0.10")))
	assert.Equal(t, 0, nuget.CompareVersions(v("4.0.10.0"), v("4.0.10")))
	assert.Equal(t, -1, nuget.CompareVersions(v("1.0.0-beta"), v("1.0.0")))
}

func TestPackage(t *testing.T) {
	t.Parallel()
	a, err := nuget.NewPackage("System.Runtime", "4.0.20")
	require.NoError(t, err)
	b, err := nuget.NewPackage("system.runtime", "4.0.20.0")
	require.NoError(t, err)
	assert.True(t, a.Equal(b))
	assert.Equal(t, "4.0.20.0", b.VersionString, "original text is kept")

	pkgs := []nuget.Package{
		{ID: "system.Linq", Version: nuget.MustParseVersion("1.0.0")},
		{ID: "Microsoft.CSharp", Version: nuget.MustParseVersion("1.0.0")},
		{ID: "System.IO", Version: nuget.MustParseVersion("1.0.0")},
	}
	nuget.SortByID(pkgs)
	assert.Equal(t, "Microsoft.CSharp", pkgs[0].ID)
	assert.Equal(t, "System.IO", pkgs[1].ID)
	assert.Equal(t, "system.Linq", pkgs[2].ID)

	_, err = nuget.NewPackage("Broken", "")
	assert.Error(t, err)
}

func TestFromReference(t *testing.T) {
	t.Parallel()
	p, err := nuget.FromReference(assembly.NewReference("System.Collections", 4, 0, 10, 0))
	require.NoError(t, err)
	assert.Equal(t, "System.Collections", p.ID)
	assert.Equal(t, "4.0.10", p.VersionString)
	assert.Equal(t, "System.Collections", p.Reference.Name)
	assert.Len(t, nuget.Packages([]nuget.PackageWithReference{p}), 1)
}
