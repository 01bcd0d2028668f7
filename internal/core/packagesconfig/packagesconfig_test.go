// Package packagesconfig_test contains tests for the packagesconfig package.
package packagesconfig_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nightconcept/refgen-go/internal/core/packagesconfig"
)

const sample = `<?xml version="1.0" encoding="utf-8"?>
<packages>
  <package id="Newtonsoft.Json" version="7.0.1" targetFramework="portable45-net45+win8+wp8+wpa81" />
  <package id="Splat" version="1.6.2" />
</packages>`

func TestParse(t *testing.T) {
	t.Parallel()
	c, err := packagesconfig.Parse([]byte(sample))
	require.NoError(t, err)
	require.Len(t, c.Entries, 2)
	assert.Equal(t, "Newtonsoft.Json.7.0.1", c.Entries[0].Dir())
	assert.Equal(t, "portable45-net45+win8+wp8+wpa81", c.Entries[0].TargetFramework)

	byDir := c.ByDir()
	e, ok := byDir["splat.1.6.2"]
	require.True(t, ok)
	assert.Equal(t, "Splat", e.ID)
}

func TestParse_Invalid(t *testing.T) {
	t.Parallel()
	_, err := packagesconfig.Parse([]byte(`<packages><package id="NoVersion" /></packages>`))
	assert.Error(t, err)
	_, err = packagesconfig.Parse([]byte(`<packages>`))
	assert.Error(t, err)
	_, err = packagesconfig.Parse([]byte(``))
	assert.Error(t, err)
}

func TestLoad(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "packages.config")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o600))

	c, err := packagesconfig.Load(path)
	require.NoError(t, err)
	assert.Len(t, c.Entries, 2)

	_, err = packagesconfig.Load(filepath.Join(t.TempDir(), "packages.config"))
	assert.Error(t, err)
}
