package exemplar

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeExemplars(t *testing.T, dir, id, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, id+".json"), []byte(body), 0o644))
}

func TestLoad_ListOfNames(t *testing.T) {
	dir := t.TempDir()
	writeExemplars(t, dir, "strategist", `{"persona": "strategist", "exemplars": ["Reid Hoffman"]}`)

	names, err := Load(dir, "strategist")
	require.NoError(t, err)
	assert.Equal(t, []string{"Reid Hoffman"}, names)
}

func TestLoad_MissingFile(t *testing.T) {
	names, err := Load(t.TempDir(), "ethicist")
	assert.NoError(t, err)
	assert.Empty(t, names)
}

func TestLoad_LegacyObjects(t *testing.T) {
	dir := t.TempDir()
	writeExemplars(t, dir, "risk_officer", `{
  "persona": "risk_officer",
  "exemplars": [
    {"name": "Nassim Taleb", "actions": ["barbell portfolio"]},
    "Ray Dalio",
    {"name": "  "}
  ]
}`)
	names, err := Load(dir, "risk_officer")
	require.NoError(t, err)
	assert.Equal(t, []string{"Nassim Taleb", "Ray Dalio"}, names)
}

func TestLoad_Malformed(t *testing.T) {
	cases := map[string]string{
		"not json":       `{"exemplars": [`,
		"wrong type":     `{"exemplars": "Reid Hoffman"}`,
		"number entry":   `{"exemplars": [42]}`,
		"object no name": `{"exemplars": [{"title": "CEO"}]}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()
			writeExemplars(t, dir, "strategist", body)
			names, err := Load(dir, "strategist")
			assert.Error(t, err)
			assert.Empty(t, names)
		})
	}
}

func TestLoadAll_SkipsBrokenFiles(t *testing.T) {
	dir := t.TempDir()
	writeExemplars(t, dir, "strategist", `{"exemplars": ["Andy Grove", "Reid Hoffman"]}`)
	writeExemplars(t, dir, "ethicist", `not json`)

	set := LoadAll(dir, []string{"strategist", "ethicist", "domain_expert"})
	assert.Equal(t, []string{"Andy Grove", "Reid Hoffman"}, set.Names("strategist"))
	assert.Nil(t, set.Names("ethicist"))
	assert.Nil(t, set.Names("domain_expert"))
	assert.Len(t, set, 1)
}

func TestFormatBlock(t *testing.T) {
	assert.Equal(t, "", FormatBlock(nil))

	block := FormatBlock([]string{"Reid Hoffman", "Andy Grove"})
	assert.True(t, strings.HasPrefix(block, "=== EXEMPLARS ===\n"))
	assert.True(t, strings.HasSuffix(block, "=== END EXEMPLARS ==="))
	assert.Contains(t, block, "Exemplars: Reid Hoffman, Andy Grove\n")
}

func TestCache_InvalidatesOnWrite(t *testing.T) {
	dir := t.TempDir()
	writeExemplars(t, dir, "strategist", `{"exemplars": ["Reid Hoffman"]}`)

	c, err := NewCache(dir)
	require.NoError(t, err)
	defer c.Close()

	assert.Equal(t, []string{"Reid Hoffman"}, c.Names("strategist"))

	writeExemplars(t, dir, "strategist", `{"exemplars": ["Andy Grove"]}`)
	assert.Eventually(t, func() bool {
		names := c.Names("strategist")
		return len(names) == 1 && names[0] == "Andy Grove"
	}, 2*time.Second, 20*time.Millisecond)
}

func TestCache_InvalidateDuringLoadIsNotCached(t *testing.T) {
	dir := t.TempDir()
	writeExemplars(t, dir, "strategist", `{"exemplars": ["Old"]}`)
	c, err := NewCache(filepath.Join(dir, "unwatched"))
	require.NoError(t, err)
	c.dir = dir

	// A reader loads the old file, then the file changes and is invalidated
	// before the reader stores its result.
	c.mu.RLock()
	gen := c.gen["strategist"]
	c.mu.RUnlock()
	stale, err := Load(dir, "strategist")
	require.NoError(t, err)
	writeExemplars(t, dir, "strategist", `{"exemplars": ["New"]}`)
	c.Invalidate("strategist")
	c.store("strategist", stale, gen)

	assert.Equal(t, []string{"New"}, c.Names("strategist"))
	assert.Equal(t, []string{"New"}, c.Names("strategist"))
}

func TestCache_MissingDir(t *testing.T) {
	c, err := NewCache(filepath.Join(t.TempDir(), "nope"))
	require.NoError(t, err)
	assert.Nil(t, c.Names("strategist"))
	assert.NoError(t, c.Close())
}
