package importer_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spy-lang/spy/internal/fqn"
	"github.com/spy-lang/spy/internal/frame"
	"github.com/spy-lang/spy/internal/importer"
	"github.com/spy-lang/spy/internal/object"
	"github.com/spy-lang/spy/internal/vm"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func newImporter(t *testing.T, dir string) *importer.Importer {
	t.Helper()
	v := vm.New()
	rt := frame.NewRuntime(v)
	return importer.New(rt, []string{dir}, "", false, false)
}

func TestImportDiscoversTransitiveDependency(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.spy", "import b\nvar x: i32 = 1\n")
	writeFile(t, dir, "b.spy", "var y: i32 = 2\n")

	im := newImporter(t, dir)
	root, err := im.Import("a")
	require.NoError(t, err)
	assert.Equal(t, "a", root.Name)
	assert.False(t, root.Failed)

	order, err := im.GetImportList("a")
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a"}, order, "dependency b must appear before the dependent a")
}

func TestImportReportsUnresolvedModuleAsFailed(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.spy", "import missing\nvar x: i32 = 1\n")

	im := newImporter(t, dir)
	_, err := im.Import("a")
	require.NoError(t, err)

	order, err := im.GetImportList("a")
	require.NoError(t, err)
	assert.Equal(t, []string{"missing", "a"}, order)
}

func TestGetImportListDetectsCycle(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.spy", "import b\nvar x: i32 = 1\n")
	writeFile(t, dir, "b.spy", "import a\nvar y: i32 = 2\n")

	im := newImporter(t, dir)
	_, err := im.Import("a")
	require.NoError(t, err)

	_, err = im.GetImportList("a")
	require.Error(t, err)
	var cycleErr *importer.CycleError
	require.ErrorAs(t, err, &cycleErr)
}

func TestImportAllExecutesModulesInDependencyOrder(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.spy", "import b\nvar x: i32 = 1\n")
	writeFile(t, dir, "b.spy", "var y: i32 = 2\n")

	v := vm.New()
	rt := frame.NewRuntime(v)
	im := importer.New(rt, []string{dir}, "", false, false)

	_, err := im.Import("a")
	require.NoError(t, err)

	loaded, err := im.ImportAll("a")
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	assert.Equal(t, "b", loaded[0].Name, "b has no dependencies and must run first")
	assert.Equal(t, "a", loaded[1].Name)

	xVal, ok := v.LookupGlobal(fqn.New("a", "x"))
	require.True(t, ok)
	assert.Equal(t, int64(1), xVal.(object.Int).Value)

	yVal, ok := v.LookupGlobal(fqn.New("b", "y"))
	require.True(t, ok)
	assert.Equal(t, int64(2), yVal.(object.Int).Value)

	cacheFile := filepath.Join(dir, "__pycache__", "b.spyc")
	assert.FileExists(t, cacheFile, "ImportAll must write a .spyc cache entry per module")
}

func TestFindFileOnPathPrefersNativeSourceOverPy(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "m.spy", "var x: i32 = 1\n")
	writeFile(t, dir, "m.py", "x = 1\n")

	im := importer.New(nil, []string{dir}, "", false, true)
	path, ok := im.FindFileOnPath("m")
	require.True(t, ok)
	assert.Equal(t, filepath.Join(dir, "m.spy"), path)
}

func TestFindFileOnPathIgnoresPyFilesUnlessAllowed(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "m.py", "x = 1\n")

	im := importer.New(nil, []string{dir}, "", false, false)
	_, ok := im.FindFileOnPath("m")
	assert.False(t, ok, "a .py file must not resolve unless AllowPyFiles is set")
}
