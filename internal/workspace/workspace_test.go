package workspace

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/btouchard/seed/internal/compiler"
	"github.com/btouchard/seed/internal/compiler/errors"
)

func tree(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
	return dir
}

func TestDiscoverDirectory(t *testing.T) {
	dir := tree(t, map[string]string{
		"app.seed":            "model A {\n}",
		"lib/models.seed":     "model B {\n}",
		"lib/deep/more.seed":  "model C {\n}",
		"lib/notes.txt":       "not seed",
		".cache/hidden.seed":  "model D {\n}",
		"lib/.git/stale.seed": "model E {\n}",
	})

	files, err := Discover(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "app.seed"),
		filepath.Join(dir, "lib/deep/more.seed"),
		filepath.Join(dir, "lib/models.seed"),
	}, files)
}

func TestDiscoverGlob(t *testing.T) {
	dir := tree(t, map[string]string{
		"a.seed":         "",
		"specs/b.seed":   "",
		"specs/x/c.seed": "",
		"specs/x/d.txt":  "",
	})

	files, err := Discover(context.Background(), filepath.Join(dir, "specs/**/*.seed"))
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "specs/b.seed"),
		filepath.Join(dir, "specs/x/c.seed"),
	}, files)
}

func TestDiscoverDeduplicates(t *testing.T) {
	dir := tree(t, map[string]string{"a.seed": "", "b.seed": ""})
	a := filepath.Join(dir, "a.seed")

	files, err := Discover(context.Background(), a, dir, filepath.Join(dir, "*.seed"))
	require.NoError(t, err)
	assert.Equal(t, []string{a, filepath.Join(dir, "b.seed")}, files)
}

func TestDiscoverMissing(t *testing.T) {
	_, err := Discover(context.Background(), filepath.Join(t.TempDir(), "missing"))
	assert.True(t, os.IsNotExist(err))
}

func TestDiscoverCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Discover(ctx, t.TempDir())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCheck(t *testing.T) {
	dir := tree(t, map[string]string{
		"good.seed":   "import \"shared\"\nscreen Items using Item",
		"shared.seed": "model Item {\n  name text\n}",
		"bad.seed":    "model Broken {\n  count num = many\n}",
		"cycle.seed":  "import \"cycle\"",
	})
	paths, err := Discover(context.Background(), dir)
	require.NoError(t, err)
	require.Len(t, paths, 4)

	results := Check(context.Background(), paths, compiler.Options{CheckReferences: true}, 2)
	require.Len(t, results, 4)
	for i, r := range results {
		assert.Equal(t, paths[i], r.Path, "results keep input order")
	}

	failed := Failed(results)
	require.Len(t, failed, 2)
	assert.Equal(t, filepath.Join(dir, "bad.seed"), failed[0].Path)
	assert.True(t, errors.IsKind(failed[0].Err, errors.InvalidDefaultValue))
	assert.True(t, errors.IsKind(failed[1].Err, errors.CircularImportDetected))
	assert.Nil(t, failed[0].Spec)

	for _, r := range results {
		if r.Path == filepath.Join(dir, "good.seed") {
			require.NotNil(t, r.Spec)
			assert.NotNil(t, r.Spec.Model("Item"))
		}
	}
}

func TestCheckNothing(t *testing.T) {
	assert.Empty(t, Check(context.Background(), nil, compiler.Options{}, 0))
}
