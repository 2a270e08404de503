package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"e2e_automation/domain/entities"
)

func TestSessionFile_LoadMissing(t *testing.T) {
	store := NewSessionFile(filepath.Join(t.TempDir(), "missing.json"))

	_, err := store.Load()
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestSessionFile_LoadCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0600))

	_, err := NewSessionFile(path).Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to decode session file")
}

func TestSessionFile_SaveOverwritesWholesale(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session.json")
	store := NewSessionFile(path)

	require.NoError(t, store.Save(entities.Session{
		{Name: "old", Value: "1"},
		{Name: "stale", Value: "2"},
	}))
	require.NoError(t, store.Save(entities.Session{{Name: "sid", Value: "fresh", Domain: "example.com", Path: "/"}}))

	loaded, err := store.Load()
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, "sid", loaded[0].Name)
	assert.Equal(t, "fresh", loaded[0].Value)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must not be left behind")
}

func TestSessionFile_Clear(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	store := NewSessionFile(path)

	require.NoError(t, store.Clear())
	require.NoError(t, store.Save(entities.Session{{Name: "sid", Value: "x"}}))
	require.NoError(t, store.Clear())

	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestSessionFile_DefaultPath(t *testing.T) {
	store := NewSessionFile("")
	assert.Equal(t, DefaultSessionFile, store.(*sessionFile).Path())
}

func TestEncodeSession_NilIsEmptyArray(t *testing.T) {
	data, err := EncodeSession(nil)
	require.NoError(t, err)
	assert.Equal(t, "[]\n", string(data))
}

func cookieGen() *rapid.Generator[entities.Cookie] {
	return rapid.Custom(func(t *rapid.T) entities.Cookie {
		return entities.Cookie{
			Name:     rapid.StringMatching(`[A-Za-z_][A-Za-z0-9_-]{0,15}`).Draw(t, "name"),
			Value:    rapid.String().Draw(t, "value"),
			Domain:   rapid.SampledFrom([]string{"", "example.com", ".example.com", "127.0.0.1"}).Draw(t, "domain"),
			Path:     rapid.SampledFrom([]string{"", "/", "/app"}).Draw(t, "path"),
			Expires:  rapid.Float64Range(0, 4e9).Draw(t, "expires"),
			HTTPOnly: rapid.Bool().Draw(t, "httpOnly"),
			Secure:   rapid.Bool().Draw(t, "secure"),
			SameSite: rapid.SampledFrom([]string{"", "Strict", "Lax", "None"}).Draw(t, "sameSite"),
		}
	})
}

func testSessionRoundTrip_Properties(t *rapid.T) {
	cookies := rapid.SliceOfN(cookieGen(), 0, 8).Draw(t, "cookies")
	dir, err := os.MkdirTemp("", "session-rt-*")
	if err != nil {
		t.Fatalf("temp dir: %v", err)
	}
	defer os.RemoveAll(dir)

	// first run writes the file
	first := NewSessionFile(filepath.Join(dir, "first.json"))
	if err := first.Save(entities.Session(cookies)); err != nil {
		t.Fatalf("save: %v", err)
	}
	written, err := os.ReadFile(filepath.Join(dir, "first.json"))
	if err != nil {
		t.Fatalf("read: %v", err)
	}

	// second run reads it back
	loaded, err := first.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(loaded) != len(cookies) {
		t.Fatalf("loaded %d cookies, want %d", len(loaded), len(cookies))
	}
	for i := range cookies {
		if loaded[i] != cookies[i] {
			t.Fatalf("cookie %d: got %+v, want %+v", i, loaded[i], cookies[i])
		}
	}

	reencoded, err := EncodeSession(loaded)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if string(reencoded) != string(written) {
		t.Fatalf("round trip changed bytes:\n%s\n---\n%s", written, reencoded)
	}
}

func TestSessionFile_RoundTrip_Properties(t *testing.T) {
	rapid.Check(t, testSessionRoundTrip_Properties)
}

func FuzzSessionFile_RoundTrip_Properties(f *testing.F) {
	f.Fuzz(rapid.MakeFuzz(testSessionRoundTrip_Properties))
}
