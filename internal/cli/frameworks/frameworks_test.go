package frameworks

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

// setupFrameworksTestEnvironment writes FrameworkList files into a temporary
// directory and returns its path.
func setupFrameworksTestEnvironment(t *testing.T, files map[string]string) string {
	t.Helper()
	tempDir := t.TempDir()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(tempDir, name), []byte(content), 0o644), "Failed to write %s", name)
	}
	return tempDir
}

// runFrameworksCommand executes the frameworks command and captures its
// output.
func runFrameworksCommand(t *testing.T, appArgs ...string) (string, error) {
	t.Helper()

	noColor := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = noColor })

	var out bytes.Buffer
	app := &cli.App{
		Commands:       []*cli.Command{FrameworksCmd},
		Writer:         &out,
		ErrWriter:      &out,
		ExitErrHandler: func(*cli.Context, error) {},
	}
	err := app.Run(append([]string{"refgen"}, appArgs...))
	return out.String(), err
}

func TestFrameworksCommand_ListsDirectory(t *testing.T) {
	dir := setupFrameworksTestEnvironment(t, map[string]string{
		".NETFramework_Version_v4.5.FrameworkList.xml": `<FileList>
  <File AssemblyName="System.Runtime" Version="4.0.0.0" />
  <File AssemblyName="System.Linq" Version="4.0.0.0" />
</FileList>`,
		".NETFramework_Version_v4.5.FrameworkList_Supplement.xml": `<FileList><File AssemblyName="System.Collections" Version="4.0.0.0" /></FileList>`,
		".NETCore_Version_v4.5.FrameworkList.xml":                 `<FileList><File AssemblyName="System.Runtime" Version="4.0.10.0" /></FileList>`,
		"README.md": "ignored",
	})

	output, err := runFrameworksCommand(t, "frameworks", "--dir", dir)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(output), "\n")
	assert.Equal(t, []string{
		".NETCore,Version=v4.5 win8 (1 assemblies)",
		".NETFramework,Version=v4.5 net45 (3 assemblies)",
	}, lines)
}

func TestFrameworksCommand_ShowsEntries(t *testing.T) {
	dir := setupFrameworksTestEnvironment(t, map[string]string{
		".NETFramework_Version_v4.5.FrameworkList.xml": `<FileList>
  <File AssemblyName="System.Runtime" Version="4.0.0.0" />
  <File AssemblyName="Microsoft.CSharp" Version="0.0.0.0" />
</FileList>`,
	})

	output, err := runFrameworksCommand(t, "fw", "--dir", dir, "net45")
	require.NoError(t, err)
	assert.Equal(t, ".NETFramework,Version=v4.5:\nMicrosoft.CSharp *\nSystem.Runtime 4.0.0.0\n", output)
}

func TestFrameworksCommand_Errors(t *testing.T) {
	dir := setupFrameworksTestEnvironment(t, map[string]string{
		".NETFramework_Version_v4.5.FrameworkList.xml": `<FileList />`,
	})

	_, err := runFrameworksCommand(t, "frameworks", "--dir", dir, "win81")
	require.Error(t, err)
	assert.Contains(t, err.Error(), ".NETCore,Version=v4.5.1")

	_, err = runFrameworksCommand(t, "frameworks", "--dir", dir, "foo45")
	require.Error(t, err)

	_, err = runFrameworksCommand(t, "frameworks", "--dir", filepath.Join(dir, "missing"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Error loading framework lists")
}

func TestFrameworksCommand_BuiltInLists(t *testing.T) {
	output, err := runFrameworksCommand(t, "frameworks")
	require.NoError(t, err)
	assert.Contains(t, output, ".NETFramework,Version=v4.5 net45")
	assert.Contains(t, output, ".NETCore,Version=v4.5 win8")
}
