package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "test.json"), []byte(`{"neighbors":[2,5]}`), 0600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.json"), []byte(`{"neighbors":`), 0600))

	original := Path
	Path = dir
	defer func() {
		Path = original
	}()

	var v struct {
		Neighbors []int `json:"neighbors"`
	}
	_, err := Load("test", &v)
	assert.NoError(t, err)
	assert.Equal(t, []int{2, 5}, v.Neighbors)

	_, err = Load("missing", &v)
	assert.Error(t, err)

	_, err = Load("broken", &v)
	assert.Error(t, err)

	assert.Panics(t, func() {
		MustLoad("missing", &v)
	})
}

func TestDefaults(t *testing.T) {
	// tests run from within the package directory
	original := Path
	Path = "."
	defer func() {
		Path = original
	}()

	for _, key := range []string{"sweep", "compare", "random"} {
		t.Run(key, func(t *testing.T) {
			var v map[string]interface{}
			_, err := Load(key, &v)
			assert.NoError(t, err)
			assert.Contains(t, v, "output")
		})
	}
}
