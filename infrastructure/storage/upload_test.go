package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUploadStore_SaveInUniqueRunDirs(t *testing.T) {
	base := t.TempDir()
	store := NewUploadStore(base, "uploads", 1024)

	first, err := store.NewRun()
	require.NoError(t, err)
	second, err := store.NewRun()
	require.NoError(t, err)
	assert.NotEqual(t, first.Dir, second.Dir)
	assert.Equal(t, "uploads/"+first.ID, first.PublicDir)

	path, err := store.Save(first, "../../etc/retail.csv", strings.NewReader("a,b\n1,2\n"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(base, first.ID, "retail.csv"), path)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "a,b\n1,2\n", string(content))
}

func TestUploadStore_SizeLimit(t *testing.T) {
	store := NewUploadStore(t.TempDir(), "uploads", 4)
	run, err := store.NewRun()
	require.NoError(t, err)

	_, err = store.Save(run, "retail.csv", strings.NewReader("12345"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrFileTooLarge))

	_, statErr := os.Stat(filepath.Join(run.Dir, "retail.csv"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestUploadStore_Remove(t *testing.T) {
	base := t.TempDir()
	store := NewUploadStore(base, "uploads", 1024)
	run, err := store.NewRun()
	require.NoError(t, err)

	require.NoError(t, store.Remove(run.Dir))
	_, statErr := os.Stat(run.Dir)
	assert.True(t, os.IsNotExist(statErr))

	assert.Error(t, store.Remove(base))
	assert.Error(t, store.Remove(filepath.Join(base, "..")))
}

func TestSanitizeFileName(t *testing.T) {
	assert.Equal(t, "retail.csv", SanitizeFileName("retail.csv"))
	assert.Equal(t, "retail.csv", SanitizeFileName(`C:\Users\x\retail.csv`))
	assert.Equal(t, "", SanitizeFileName(".."))
	assert.Equal(t, "", SanitizeFileName(""))
}
