package dataset

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "hotpot.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeFile(t, `{"questions": ["Who wrote \"Dune\"?", "Which city is older, Rome or Athens?"], "source": "hotpot"}`)

	qs, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, []string{`Who wrote "Dune"?`, "Which city is older, Rome or Athens?"}, qs)
}

func TestLoad_MissingKeyIsEmpty(t *testing.T) {
	qs, err := Load(writeFile(t, `{"answers": ["x"]}`))
	require.NoError(t, err)
	require.NotNil(t, qs)
	require.Empty(t, qs)
}

func TestLoad_NotFound(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.json")

	_, err := Load(path)
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrNotFound))
	require.Contains(t, err.Error(), path)
}

func TestLoad_InvalidJSON(t *testing.T) {
	_, err := Load(writeFile(t, `{"questions": [`))
	require.Error(t, err)
	require.False(t, errors.Is(err, ErrNotFound))
}
