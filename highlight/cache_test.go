package highlight

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderCachesRepeatedCalls(t *testing.T) {
	r := NewCachedRenderer(4)
	out1, err := r.Render("go", "func f() {}", "", 0)
	require.NoError(t, err)
	assert.NotEmpty(t, out1)
	assert.Equal(t, 1, r.CacheLen())

	out2, err := r.Render("go", "func f() {}", "", 0)
	require.NoError(t, err)
	assert.Equal(t, out1, out2)
	assert.Equal(t, 1, r.CacheLen(), "identical (theme, lang, code) must hit cache, not grow it")
}

func TestRenderDistinguishesByCodeNotJustLanguage(t *testing.T) {
	r := NewCachedRenderer(4)
	_, err := r.Render("go", "func a() {}", "", 0)
	require.NoError(t, err)
	_, err = r.Render("go", "func b() {}", "", 0)
	require.NoError(t, err)
	assert.Equal(t, 2, r.CacheLen())
}

func TestSetThemeFallsBackOnUnknownName(t *testing.T) {
	r := NewCachedRenderer(4)
	r.SetTheme("monokai")
	assert.Equal(t, "monokai", r.Theme())

	r.SetTheme("definitely-not-a-real-theme")
	assert.Equal(t, DefaultTheme, r.Theme(), "unknown theme must fall back, never error or panic")
}

func TestSetThemeEmptyNameFallsBackToDefault(t *testing.T) {
	r := NewCachedRenderer(4)
	r.SetTheme("monokai")
	r.SetTheme("")
	assert.Equal(t, DefaultTheme, r.Theme())
}

func TestRenderUnknownLanguageFallsBackToPlainLexer(t *testing.T) {
	r := NewCachedRenderer(4)
	out, err := r.Render("not-a-real-language-xyz", "some text", "", 0)
	require.NoError(t, err)
	assert.NotEmpty(t, out)
}

func TestSetThemeInvalidatesCache(t *testing.T) {
	r := NewCachedRenderer(4)
	_, err := r.Render("go", "func f() {}", "", 0)
	require.NoError(t, err)
	require.Equal(t, 1, r.CacheLen())

	r.SetTheme("monokai")
	assert.Equal(t, 0, r.CacheLen(), "changing theme must invalidate all cached renders")

	_, err = r.Render("go", "func f() {}", "", 0)
	require.NoError(t, err)
	assert.Equal(t, 1, r.CacheLen())
}

func TestEvictRemovesOnlyNamedEntry(t *testing.T) {
	r := NewCachedRenderer(4)
	_, err := r.Render("go", "func a() {}", "", 0)
	require.NoError(t, err)
	_, err = r.Render("go", "func b() {}", "", 0)
	require.NoError(t, err)
	require.Equal(t, 2, r.CacheLen())

	r.Evict(r.Theme(), "go", "func a() {}", "", 0)
	assert.Equal(t, 1, r.CacheLen())
}

func TestRenderDistinguishesByFont(t *testing.T) {
	r := NewCachedRenderer(4)
	plain, err := r.Render("go", "func f() {}", "", 0)
	require.NoError(t, err)

	styled, err := r.Render("go", "func f() {}", "Menlo", 14)
	require.NoError(t, err)

	assert.Equal(t, 2, r.CacheLen(), "differing font must not collapse onto the unstyled cache entry")
	assert.NotEqual(t, plain, styled, "a font-carrying Style must produce different output than an unstyled render")
	assert.Contains(t, styled, "Menlo")
}

func TestClearEmptiesCache(t *testing.T) {
	r := NewCachedRenderer(4)
	_, err := r.Render("go", "func a() {}", "", 0)
	require.NoError(t, err)
	r.Clear()
	assert.Equal(t, 0, r.CacheLen())
}
