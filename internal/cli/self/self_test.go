package self

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

func TestParseCurrentVersion(t *testing.T) {
	for _, in := range []string{"v1.2.3", "1.2.3"} {
		v, err := parseCurrentVersion(in)
		require.NoError(t, err, in)
		assert.Equal(t, "1.2.3", v.String())
	}

	_, err := parseCurrentVersion("dev")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error parsing current version 'dev'")
}

func TestRepositorySlug(t *testing.T) {
	slug, err := repositorySlug("")
	require.NoError(t, err)
	assert.Equal(t, DefaultRepository, slug)

	slug, err = repositorySlug("someone/fork")
	require.NoError(t, err)
	assert.Equal(t, "someone/fork", slug)

	for _, bad := range []string{"noslash", "/repo", "owner/", "a/b/c"} {
		_, err := repositorySlug(bad)
		assert.Error(t, err, bad)
	}
}

func TestConfirm(t *testing.T) {
	var out bytes.Buffer
	assert.True(t, confirm(strings.NewReader("Y\n"), &out, "Update?"))
	assert.Equal(t, "Update? (y/N): ", out.String())
	assert.False(t, confirm(strings.NewReader("\n"), &out, "Update?"))
	assert.False(t, confirm(strings.NewReader(""), &out, "Update?"))
}

func TestUpdateAction_RejectsBadInput(t *testing.T) {
	run := func(version string, args ...string) error {
		app := &cli.App{
			Version:        version,
			Commands:       []*cli.Command{NewSelfCommand()},
			Writer:         &bytes.Buffer{},
			ExitErrHandler: func(*cli.Context, error) {},
		}
		return app.Run(append([]string{"refgen", "self", "update"}, args...))
	}

	err := run("not-a-version", "--check")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error parsing current version")

	err = run("v0.1.0", "--check", "--source", "missing-slash")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid --source format")
}
