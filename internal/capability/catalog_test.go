package capability

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_Valid(t *testing.T) {
	cat, err := Default()
	require.NoError(t, err)

	for _, name := range []string{"basic", "browser", "cloudflare", "search", "business", "developer", "microsoft", "full", "word"} {
		caps, err := cat.Resolve(name)
		require.NoError(t, err, "set %s", name)
		assert.NotEmpty(t, caps, "set %s", name)
	}

	basic, err := cat.Resolve("basic")
	require.NoError(t, err)
	require.Len(t, basic, 1)
	assert.Equal(t, "deepwiki", basic[0].Name)
	assert.Equal(t, "https://mcp.deepwiki.com/sse", basic[0].URL)

	full, err := cat.Resolve("full")
	require.NoError(t, err)
	assert.Len(t, full, 4)
}

func TestResolve_UnknownSet(t *testing.T) {
	cat, err := Default()
	require.NoError(t, err)

	_, err = cat.Resolve("nope")
	assert.ErrorIs(t, err, ErrUnknownSet)
}

func TestLookup(t *testing.T) {
	cat, err := Default()
	require.NoError(t, err)

	cp, err := cat.Lookup("word-mcp")
	require.NoError(t, err)
	assert.Equal(t, "word-mcp", cp.Name)

	_, err = cat.Lookup("missing")
	assert.ErrorIs(t, err, ErrUnknownCapability)
}

func TestSetURL(t *testing.T) {
	cat, err := Default()
	require.NoError(t, err)

	require.NoError(t, cat.SetURL("deepwiki", "http://127.0.0.1:9000/sse"))
	cp, err := cat.Lookup("deepwiki")
	require.NoError(t, err)
	assert.Equal(t, "http://127.0.0.1:9000/sse", cp.URL)

	require.NoError(t, cat.SetURL("deepwiki", ""))
	cp, _ = cat.Lookup("deepwiki")
	assert.Equal(t, "http://127.0.0.1:9000/sse", cp.URL, "empty override must be ignored")

	assert.ErrorIs(t, cat.SetURL("missing", "http://x"), ErrUnknownCapability)

	// Overrides on one catalog never leak into another.
	fresh, err := Default()
	require.NoError(t, err)
	cp, _ = fresh.Lookup("deepwiki")
	assert.Equal(t, "https://mcp.deepwiki.com/sse", cp.URL)
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"missing url", "capabilities:\n  - name: a\n"},
		{"duplicate", "capabilities:\n  - {name: a, url: x}\n  - {name: a, url: y}\n"},
		{"unknown member", "capabilities:\n  - {name: a, url: x}\nsets:\n  - {name: s, capabilities: [b]}\n"},
		{"bad yaml", "capabilities: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	data := "capabilities:\n  - name: local\n    url: http://localhost:1/sse\n    authorization_token: secret\nsets:\n  - name: mine\n    capabilities: [local]\n"
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	cat, err := Load(path)
	require.NoError(t, err)
	caps, err := cat.Resolve("mine")
	require.NoError(t, err)
	require.Len(t, caps, 1)
	assert.Equal(t, "secret", caps[0].AuthorizationToken)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	def, err := Load("")
	require.NoError(t, err)
	assert.NotEmpty(t, def.Sets)
}
