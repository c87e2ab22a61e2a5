package util_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stackvity/json-mirror/pkg/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileSuffix(t *testing.T) {
	testCases := []struct {
		name     string
		path     string
		expected string
	}{
		{name: "Simple extension", path: "a.png", expected: ".png"},
		{name: "Case preserved", path: "photo.JPG", expected: ".JPG"},
		{name: "Only last extension", path: "archive.tar.gz", expected: ".gz"},
		{name: "Nested path", path: filepath.Join("x", "y.z", "img.webp"), expected: ".webp"},
		{name: "Dot in directory only", path: filepath.Join("dir.png", "file"), expected: ""},
		{name: "No extension", path: "README", expected: ""},
		{name: "Leading dot only", path: ".png", expected: ""},
		{name: "Trailing dot", path: "name.", expected: ""},
		{name: "Hidden file with extension", path: ".hidden.tif", expected: ".tif"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, util.FileSuffix(tc.path))
		})
	}
}

func TestNormalizeExtension(t *testing.T) {
	assert.Equal(t, ".png", util.NormalizeExtension(".PNG"))
	assert.Equal(t, ".jpg", util.NormalizeExtension("jpg"))
	assert.Equal(t, ".tiff", util.NormalizeExtension("  TIFF "))
	assert.Equal(t, "", util.NormalizeExtension(""))
	assert.Equal(t, "", util.NormalizeExtension("   "))
}

func TestResolveDir(t *testing.T) {
	base := t.TempDir()

	t.Run("Relative sub joins parent", func(t *testing.T) {
		got, err := util.ResolveDir(base, "out")
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(base, "out"), got)
	})

	t.Run("Nested relative sub is cleaned", func(t *testing.T) {
		got, err := util.ResolveDir(base, filepath.Join("a", "..", "b"))
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(base, "b"), got)
	})

	t.Run("Absolute sub replaces parent", func(t *testing.T) {
		other := filepath.Join(os.TempDir(), "elsewhere")
		got, err := util.ResolveDir(base, other)
		require.NoError(t, err)
		assert.Equal(t, filepath.Clean(other), got)
	})

	t.Run("Relative parent becomes absolute", func(t *testing.T) {
		got, err := util.ResolveDir("rel", "json")
		require.NoError(t, err)
		assert.True(t, filepath.IsAbs(got))
		assert.Equal(t, filepath.Join("rel", "json"), got[len(got)-len(filepath.Join("rel", "json")):])
	})
}
