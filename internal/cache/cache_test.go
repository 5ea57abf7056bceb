package cache

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wikimark/wikiconf/internal/siteinfo"
)

func testQuery() *siteinfo.Query {
	return &siteinfo.Query{
		ExtensionTags: []string{"<pre>"},
		General:       siteinfo.General{LinkTrail: `/^([a-z]+)(.*)$/sD`},
		Namespaces: map[string]siteinfo.Namespace{
			"14": {ID: 14, Name: "Category", Canonical: "Category"},
		},
		Protocols: []string{"https://"},
	}
}

func TestCache(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "cache-test")
	require.NoError(t, err)
	defer os.RemoveAll(tmpDir)

	cacheDir := filepath.Join(tmpDir, "cache")
	c, err := New(cacheDir, time.Hour)
	require.NoError(t, err)

	t.Run("PutAndGet", func(t *testing.T) {
		err := c.Put("en.wikipedia.org", testQuery())
		assert.NoError(t, err)

		got, found := c.Get("en.wikipedia.org")
		assert.True(t, found)
		assert.Equal(t, testQuery(), got)
	})

	t.Run("NotFound", func(t *testing.T) {
		_, found := c.Get("missing.example.org")
		assert.False(t, found)
	})

	t.Run("PersistsAcrossInstances", func(t *testing.T) {
		reopened, err := New(cacheDir, time.Hour)
		require.NoError(t, err)

		got, found := reopened.Get("en.wikipedia.org")
		assert.True(t, found)
		assert.Equal(t, testQuery(), got)
	})

	t.Run("Expired", func(t *testing.T) {
		c.entries["stale.example.org"] = Entry{
			Query:     *testQuery(),
			FetchedAt: time.Now().Add(-2 * time.Hour),
		}

		_, found := c.Get("stale.example.org")
		assert.False(t, found)
		_, stillThere := c.entries["stale.example.org"]
		assert.False(t, stillThere, "expired entry should be dropped")
	})

	t.Run("InvalidateAll", func(t *testing.T) {
		err := c.Put("de.wikipedia.org", testQuery())
		require.NoError(t, err)

		c.InvalidateAll()

		_, found := c.Get("de.wikipedia.org")
		assert.False(t, found)
	})
}

func TestCacheNoExpiry(t *testing.T) {
	c, err := New(t.TempDir(), 0)
	require.NoError(t, err)

	c.entries["old.example.org"] = Entry{
		Query:     *testQuery(),
		FetchedAt: time.Now().Add(-24 * 365 * time.Hour),
	}

	_, found := c.Get("old.example.org")
	assert.True(t, found)
}

func TestCacheCorruptFile(t *testing.T) {
	dir := t.TempDir()
	err := os.WriteFile(filepath.Join(dir, cacheFile), []byte("not gob"), 0o644)
	require.NoError(t, err)

	c, err := New(dir, time.Hour)
	require.NoError(t, err)

	_, found := c.Get("en.wikipedia.org")
	assert.False(t, found)
}
