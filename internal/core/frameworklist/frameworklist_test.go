// Package frameworklist_test contains tests for the frameworklist package.
package frameworklist_test

import (
	"errors"
	"sync"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nightconcept/refgen-go/internal/core/assembly"
	"github.com/nightconcept/refgen-go/internal/core/framework"
	"github.com/nightconcept/refgen-go/internal/core/frameworklist"
)

const net45List = `<?xml version="1.0" encoding="utf-8"?>
<FileList Name=".NET Framework 4.5">
  <File AssemblyName="System.Runtime" Version="4.0.0.0" />
  <File AssemblyName="System.Linq" Version="4.0.0.0" />
  <File AssemblyName="System.Collections" Version="4.0.0.0" />
</FileList>`

const net45Supplement = `<FileList>
  <File AssemblyName="system.linq" Version="4.0.10.0" />
  <File AssemblyName="System.Net.Http.WebRequest" />
</FileList>`

const androidList = `<FileList><File AssemblyName="System.Runtime" /></FileList>`

func testFS() fstest.MapFS {
	return fstest.MapFS{
		".NETFramework_Version_v4.5.FrameworkList.xml":            {Data: []byte(net45List)},
		".NETFramework_Version_v4.5.FrameworkList_Supplement.xml": {Data: []byte(net45Supplement)},
		".NETFramework_Version_v4.6.FrameworkList.xml":            {Data: []byte(net45List)},
		"MonoAndroid_Version_v1.0.FrameworkList.xml":              {Data: []byte(androidList)},
		"README.md": {Data: []byte("ignored")},
	}
}

func ref(name string, major, minor, build uint16) assembly.Reference {
	return assembly.NewReference(name, major, minor, build, 0)
}

func TestFrameworkList_ContainsReference(t *testing.T) {
	t.Parallel()
	l, err := frameworklist.New([]byte(net45List), []byte(net45Supplement))
	require.NoError(t, err)

	assert.True(t, l.ContainsReference(ref("System.Runtime", 4, 0, 0)))
	assert.True(t, l.ContainsReference(ref("SYSTEM.RUNTIME", 3, 0, 0)), "older versions are in the box")
	assert.False(t, l.ContainsReference(ref("System.Runtime", 4, 0, 10)), "newer versions are not")
	assert.True(t, l.ContainsReference(ref("System.Linq", 4, 0, 10)), "supplement overrides the primary list")
	assert.True(t, l.ContainsReference(ref("System.Net.Http.WebRequest", 9, 9, 9)), "unversioned entries match anything")
	assert.False(t, l.ContainsReference(ref("Newtonsoft.Json", 6, 0, 0)))
	assert.False(t, l.ContainsReference(assembly.Reference{}))
	assert.Equal(t, 4, l.Len())
	assert.Equal(t, "System.Collections", l.Entries()[0].Name)
}

func TestFrameworkList_InvalidDocuments(t *testing.T) {
	t.Parallel()
	_, err := frameworklist.New([]byte("<FileList><File"))
	assert.Error(t, err)
	_, err = frameworklist.New([]byte(`<FileList><File Version="1.0" /></FileList>`))
	assert.Error(t, err)
	_, err = frameworklist.New([]byte(`<FileList><File AssemblyName="A" Version="x.y" /></FileList>`))
	assert.Error(t, err)
}

func TestRegistry_ContainsAndGet(t *testing.T) {
	t.Parallel()
	r, err := frameworklist.NewRegistry(testFS())
	require.NoError(t, err)

	assert.True(t, r.Contains(framework.MustParse("net45")))
	assert.False(t, r.Contains(framework.MustParse("net451")))
	assert.True(t, r.Contains(framework.New(framework.NetFramework, framework.Version{})), "0.0 matches the family")
	assert.True(t, r.Contains(framework.New(framework.MonoAndroid, framework.Version{})))
	assert.False(t, r.Contains(framework.New(framework.XamarinIOS, framework.Version{})))
	assert.Len(t, r.Frameworks(), 3)

	l, err := r.Get(framework.MustParse("net45"))
	require.NoError(t, err)
	assert.True(t, l.ContainsReference(ref("System.Net.Http.WebRequest", 4, 0, 0)))

	wild, err := r.Get(framework.New(framework.NetFramework, framework.Version{}))
	require.NoError(t, err)
	assert.Same(t, l, wild, "wildcard resolves to the first registered list of the family")

	again, err := r.Get(framework.MustParse("net45"))
	require.NoError(t, err)
	assert.Same(t, l, again)

	_, err = r.Get(framework.MustParse("wp8"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, frameworklist.ErrUnknownFramework))
	assert.Contains(t, err.Error(), "WindowsPhone,Version=v8.0")
}

func TestRegistry_ConcurrentGetBuildsOnce(t *testing.T) {
	t.Parallel()
	r, err := frameworklist.NewRegistry(testFS())
	require.NoError(t, err)

	var wg sync.WaitGroup
	lists := make([]*frameworklist.FrameworkList, 16)
	for i := range lists {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			l, err := r.Get(framework.MustParse("net46"))
			assert.NoError(t, err)
			lists[i] = l
		}(i)
	}
	wg.Wait()
	for _, l := range lists[1:] {
		assert.Same(t, lists[0], l)
	}
}

func TestRegistry_BadResourceName(t *testing.T) {
	t.Parallel()
	_, err := frameworklist.NewRegistry(fstest.MapFS{
		"Nonsense.FrameworkList.xml": {Data: []byte(androidList)},
	})
	assert.Error(t, err)

	r, err := frameworklist.NewRegistry(fstest.MapFS{
		"MonoAndroid_Version_v1.0.FrameworkList.xml": {Data: []byte(androidList)},
		"README.md":                                  {Data: []byte("notes")},
		"Nonsense.xml":                               {Data: []byte("<x />")},
	})
	require.NoError(t, err, "files without the list suffixes are skipped")
	assert.Len(t, r.Frameworks(), 1)
}

func TestDefault_EmbeddedLists(t *testing.T) {
	t.Parallel()
	r, err := frameworklist.Default()
	require.NoError(t, err)

	for _, name := range []string{"net45", "net451", "net46", "win8", "win81", "wp8", "wp81", "wpa81", "monoandroid", "xamarinios"} {
		fw := framework.MustParse(name)
		require.True(t, r.Contains(fw), name)
		l, err := r.Get(fw)
		require.NoError(t, err, name)
		assert.True(t, l.ContainsReference(ref("System.Runtime", 4, 0, 0)), name)
	}
	assert.Equal(t, ".NETFramework_Version_v4.5.1", frameworklist.ResourceName(framework.MustParse("net451")))
}
