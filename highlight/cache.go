// Package highlight renders syntax-highlighted HTML for code blocks and
// caches the result, per spec.md §4.6/§7. It is grounded on
// cogentcore-core's texteditor Highlighting type, which drives chroma's
// lexer/style/formatter pipeline from a single owning goroutine because
// chroma's tokeniser mutates internal state while it runs; here that
// single-owner discipline is made explicit with a mutex instead of
// cogentcore's implicit one-widget-one-goroutine assumption, since this
// package has no equivalent ambient guarantee.
package highlight

import (
	"bytes"
	"fmt"
	"sync"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"

	"github.com/jcorbin/mdcore/lru"
)

// DefaultTheme is used whenever SetTheme is given a name chroma doesn't
// recognize. spec.md §7 requires ThemeUnknown never surface as an error;
// falling back silently to a documented default satisfies that without
// ever returning a zero-value or empty render.
const DefaultTheme = "github"

// cacheKey is the full HighlightKey of spec.md §4.6, extended with the two
// font fields spec.md §6.1 requires be part of Style identity ("a function
// of *all* style fields that affect output"): font choice changes the
// inline style wrapper Render produces around the chroma markup (see
// wrapFont), so two otherwise-identical renders that differ only by font
// must land in distinct cache entries, never collapse onto one.
type cacheKey struct {
	theme    string
	lang     string
	code     string
	fontName string
	fontSize float64
}

// CachedRenderer renders code through chroma and caches the resulting HTML
// in an LRU keyed by the full (theme, language, code, fontName, fontSize)
// tuple -- by content, not by a hash of it, so a hash collision could never
// return one block's rendered markup for another's code (spec.md
// §4.6/§8.1 invariant 5).
type CachedRenderer struct {
	mu    sync.Mutex
	theme string
	cache *lru.Cache[cacheKey, string]
}

// NewCachedRenderer returns a CachedRenderer using DefaultTheme with an LRU
// cache sized for capacity distinct (theme, language, code, fontName,
// fontSize) renders.
func NewCachedRenderer(capacity int) *CachedRenderer {
	return &CachedRenderer{
		theme: DefaultTheme,
		cache: lru.New[cacheKey, string](capacity),
	}
}

// SetTheme changes the chroma style used for future renders. An unrecognized
// name falls back to DefaultTheme instead of returning an error. Per
// spec.md §4.6, changing the theme invalidates every cached render, since a
// cache entry's HTML was produced under the *previous* theme.
func (r *CachedRenderer) SetTheme(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	next := DefaultTheme
	if name != "" && styles.Get(name) != styles.Fallback {
		next = name
	}
	if next == r.theme {
		return
	}
	r.theme = next
	r.cache = lru.New[cacheKey, string](r.cache.Capacity())
}

// Evict removes a single (theme, lang, code, fontName, fontSize) entry from
// the cache, if present. Used by higher-level facades that need to
// invalidate only the renders attributable to one document rather than
// clearing the whole cache.
func (r *CachedRenderer) Evict(theme, lang, code, fontName string, fontSize float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cache.Delete(cacheKey{theme: theme, lang: lang, code: code, fontName: fontName, fontSize: fontSize})
}

// Clear empties the cache entirely.
func (r *CachedRenderer) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cache = lru.New[cacheKey, string](r.cache.Capacity())
}

// Theme returns the currently active theme name.
func (r *CachedRenderer) Theme() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.theme
}

// Render returns syntax-highlighted HTML for code in language lang, under
// the active theme, wrapped in fontName/fontSize if either is set (see
// wrapFont). Repeated calls with byte-identical
// (theme, lang, code, fontName, fontSize) are served from cache; anything
// else runs the full chroma pipeline. An unrecognized lang falls back to
// chroma's plain-text lexer rather than erroring, matching the same
// graceful-degradation posture as SetTheme. fontName == "" and
// fontSize <= 0 both mean "unset": no wrapper is added. The cache key holds
// fontSize as given, so only fontSize == 0 shares the unstyled call's entry.
func (r *CachedRenderer) Render(lang, code, fontName string, fontSize float64) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := cacheKey{theme: r.theme, lang: lang, code: code, fontName: fontName, fontSize: fontSize}
	if cached, ok := r.cache.Get(key); ok {
		return cached, nil
	}

	lexer := lexers.Get(lang)
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	style := styles.Get(r.theme)
	if style == nil {
		style = styles.Fallback
	}

	iterator, err := lexer.Tokenise(nil, code)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	formatter := html.New()
	if err := formatter.Format(&buf, style, iterator); err != nil {
		return "", err
	}

	rendered := wrapFont(buf.String(), fontName, fontSize)
	r.cache.Put(key, rendered)
	return rendered, nil
}

// wrapFont wraps rendered in a div carrying an inline font-family/font-size
// style when either is set, so that Style.FontName/Style.FontSize (spec.md
// §4.6's Configuration) are not just cache-key decoration but actually
// affect Render's output, the way spec.md §6.1 requires of every Style
// field: "two renders with different style values must produce distinct
// cache entries ... unless the underlying render is equal." An unset font
// (fontName == "" and fontSize <= 0) leaves rendered untouched.
func wrapFont(rendered, fontName string, fontSize float64) string {
	var style string
	if fontName != "" {
		style += fmt.Sprintf("font-family:%s;", fontName)
	}
	if fontSize > 0 {
		style += fmt.Sprintf("font-size:%gpx;", fontSize)
	}
	if style == "" {
		return rendered
	}
	return fmt.Sprintf(`<div style="%s">%s</div>`, style, rendered)
}

// CacheLen reports how many distinct (theme, language, code, fontName,
// fontSize) renders are currently cached, for diagnostics and tests.
func (r *CachedRenderer) CacheLen() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cache.Len()
}
