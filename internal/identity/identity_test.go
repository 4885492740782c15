package identity_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/statslite/go-statslite/internal/identity"
)

func tempStore(t *testing.T) (*identity.Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "statslite.properties")
	return identity.NewStore(path), path
}

func TestReloadCreatesFile(t *testing.T) {
	store, path := tempStore(t)

	settings, err := store.Reload()
	require.NoError(t, err)
	assert.False(t, settings.OptOut)

	_, err = uuid.Parse(settings.UniqueID)
	assert.NoError(t, err, "generated identifier must be a UUID")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	content := string(data)
	assert.Contains(t, content, "# ", "created file must carry a comment header")
	assert.Contains(t, content, "opt-out")
	assert.Contains(t, content, settings.UniqueID)
}

func TestReloadRoundTrip(t *testing.T) {
	store, _ := tempStore(t)

	created, err := store.Reload()
	require.NoError(t, err)

	reread, err := store.Reload()
	require.NoError(t, err)
	assert.Equal(t, created, reread)
}

func TestReloadIdempotent(t *testing.T) {
	store, _ := tempStore(t)

	_, err := store.Reload()
	require.NoError(t, err)

	first, err := store.Reload()
	require.NoError(t, err)
	second, err := store.Reload()
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestExistingFileIsNotRecreated(t *testing.T) {
	store, path := tempStore(t)
	require.NoError(t, os.WriteFile(path, []byte("opt-out=false\nguid=11111111-2222-3333-4444-555555555555\n"), 0o644))

	settings, err := store.Reload()
	require.NoError(t, err)
	assert.Equal(t, "11111111-2222-3333-4444-555555555555", settings.UniqueID)
	assert.False(t, settings.OptOut)
}

func TestOptOut(t *testing.T) {
	store, path := tempStore(t)
	require.NoError(t, os.WriteFile(path, []byte("opt-out=true\nguid=abc\n"), 0o644))

	settings, err := store.Reload()
	require.NoError(t, err)
	assert.True(t, settings.OptOut)
}

func TestMalformedOptOutDefaultsToFalse(t *testing.T) {
	store, path := tempStore(t)
	require.NoError(t, os.WriteFile(path, []byte("opt-out=banana\nguid=abc\n"), 0o644))

	settings, err := store.Reload()
	require.NoError(t, err)
	assert.False(t, settings.OptOut)
	assert.Equal(t, "abc", settings.UniqueID)
}

func TestMissingGuidPassesThrough(t *testing.T) {
	store, path := tempStore(t)
	require.NoError(t, os.WriteFile(path, []byte("opt-out=false\n"), 0o644))

	settings, err := store.Reload()
	require.NoError(t, err)
	assert.Empty(t, settings.UniqueID, "an existing file without a guid is not re-identified")
}

func TestUncreatablePathFails(t *testing.T) {
	// The parent directory does not exist, so neither stat-miss
	// creation nor reading can succeed.
	store := identity.NewStore(filepath.Join(t.TempDir(), "missing", "statslite.properties"))

	_, err := store.Reload()
	assert.Error(t, err)
}
