package parlex

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArtifactCacheMissReturnsNil(t *testing.T) {
	cache, err := OpenArtifactCache(t.TempDir())
	require.NoError(t, err)
	defer cache.Close()

	pl, err := cache.Get([]byte("no such fingerprint"))
	require.NoError(t, err)
	assert.Nil(t, pl)
}

func TestArtifactCacheRoundTrip(t *testing.T) {
	cache, err := OpenArtifactCache(t.TempDir())
	require.NoError(t, err)
	defer cache.Close()

	g, err := LoadGrammar(strings.NewReader(testGrammarYAML))
	require.NoError(t, err)
	fingerprint, err := g.Fingerprint()
	require.NoError(t, err)

	_, lexer := buildTestLexer(t)
	require.NoError(t, cache.Put(fingerprint, lexer))

	cached, err := cache.Get(fingerprint)
	require.NoError(t, err)
	require.NotNil(t, cached)
	assertArtifactsEqual(t, lexer, cached)
}

func TestArtifactCacheSurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	fingerprint := []byte("fp")

	cache, err := OpenArtifactCache(dir)
	require.NoError(t, err)
	_, lexer := buildTestLexer(t)
	require.NoError(t, cache.Put(fingerprint, lexer))
	require.NoError(t, cache.Close())

	cache, err = OpenArtifactCache(dir)
	require.NoError(t, err)
	defer cache.Close()

	cached, err := cache.Get(fingerprint)
	require.NoError(t, err)
	require.NotNil(t, cached)
	assert.Equal(t, lexer.NumStates(), cached.NumStates())
}

func TestArtifactCacheRejectsCorruptEntry(t *testing.T) {
	dir := t.TempDir()
	cache, err := OpenArtifactCache(dir)
	require.NoError(t, err)
	defer cache.Close()

	require.NoError(t, cache.db.Put([]byte("fp"), []byte("garbage"), nil))
	_, err = cache.Get([]byte("fp"))
	assert.Error(t, err)
}
