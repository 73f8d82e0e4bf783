// Package mdcore is the public facade named in spec.md §6.1: Parse for the
// one-shot push-parser (C4), IncrementalParser for the streaming engine
// (C5), and CachedRenderer for the highlight surface (C7). Everything
// underneath is importable on its own (ir, mdrange, parser, boundary,
// incremental, lru, highlight); this file only wires the three entry
// points together the way cmd/poc/main.go wired scandown and blackfriday
// together for a single command, except here the wiring is a library
// surface rather than a CLI.
package mdcore

import (
	"sync"

	"github.com/google/uuid"

	"github.com/jcorbin/mdcore/highlight"
	"github.com/jcorbin/mdcore/incremental"
	"github.com/jcorbin/mdcore/ir"
	"github.com/jcorbin/mdcore/parser"
)

// Document, Block, Span and friends are re-exported so callers never need
// to import package ir directly for ordinary use.
type (
	Document = ir.Document
	Block    = ir.Block
	Span     = ir.Span
	BlockId  = ir.BlockId
)

// Options configures the one-shot parser and the incremental engine alike
// (spec.md §4.7, C8).
type Options = parser.Options

// DefaultOptions returns the gfm_subset preset (spec.md §4.7).
func DefaultOptions() Options { return parser.DefaultOptions() }

// ParseError reports a tokenizer failure (spec.md §7 ParseFailure).
type ParseError = parser.ParseError

// Parse is the one-shot C4 facade: a pure function from (bytes, options) to
// Document. It has no shared state and is safe to call concurrently, each
// call against its own inputs (spec.md §5).
func Parse(source []byte, opts Options) (Document, error) {
	return parser.Parse(source, opts)
}

// IncrementalParser is the C5 streaming engine (spec.md §4.4): accepts
// Markdown in chunks, keeps a mutex-guarded prefix of blocks proven stable,
// and can produce a full Document -- stable prefix plus freshly reparsed
// pending tail -- on demand.
type IncrementalParser = incremental.IncrementalParser

// NewIncrementalParser constructs an IncrementalParser with opts.
func NewIncrementalParser(opts Options) *IncrementalParser {
	return incremental.New(opts)
}

// Style carries every highlighter-output-affecting field. spec.md §6.1
// requires style identity be a function of all of these, never object
// identity or a partial hash, so two renders under differing Style values
// must land in distinct cache entries; Style is compared by value here for
// exactly that reason.
type Style struct {
	Theme    string
	FontName string
	FontSize float64
}

type renderKey struct {
	theme    string
	lang     string
	code     string
	fontName string
	fontSize float64
}

// CachedRenderer is the C7 facade of spec.md §6.1: render(Document, Style),
// invalidate(document_id), clear(). It wraps highlight.CachedRenderer --
// which already implements §4.6's highlight(code, language) cache exactly,
// including the "compare full code content, never a hash" rule -- and adds
// the bookkeeping needed to invalidate one document's renders without
// disturbing anyone else's: it remembers, per document_id, which
// (theme, language, code, fontName, fontSize) keys that document last
// produced.
//
// Per spec.md §5, this component is "cooperatively single-threaded":
// operations may be issued from arbitrarily many goroutines without
// external locking, but each call is atomic with respect to cache state and
// there is no ordering guarantee between concurrent calls. The mutex here
// is the serialization mechanism, the same role a single-writer actor would
// play; there is no async queue because none of the operations below ever
// block on I/O.
type CachedRenderer struct {
	mu   sync.Mutex
	hl   *highlight.CachedRenderer
	docs map[uuid.UUID][]renderKey
}

// NewCachedRenderer returns a CachedRenderer. A capacity of 0 or less uses
// spec.md §6.1's documented default of 64.
func NewCachedRenderer(capacity int) *CachedRenderer {
	if capacity <= 0 {
		capacity = 64
	}
	return &CachedRenderer{
		hl:   highlight.NewCachedRenderer(capacity),
		docs: make(map[uuid.UUID][]renderKey),
	}
}

// Render highlights every CodeBlock reachable in doc (including those
// nested under BlockQuote and List) under style, returning rendered HTML
// keyed by the block's stable BlockId. documentID associates the resulting
// cache entries with doc, so a later Invalidate(documentID) can evict
// exactly this document's renders.
func (r *CachedRenderer) Render(documentID uuid.UUID, doc Document, style Style) (map[BlockId]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.hl.SetTheme(style.Theme)
	theme := r.hl.Theme()

	out := make(map[BlockId]string)
	var keys []renderKey

	var walk func(blocks []Block) error
	walk = func(blocks []Block) error {
		for _, b := range blocks {
			switch v := b.(type) {
			case ir.CodeBlock:
				lang := ""
				if v.Language != nil {
					lang = (*v.Language).String(doc.Source)
				}
				code := v.Content.String(doc.Source)
				rendered, err := r.hl.Render(lang, code, style.FontName, style.FontSize)
				if err != nil {
					return err
				}
				out[v.Id] = rendered
				keys = append(keys, renderKey{theme: theme, lang: lang, code: code, fontName: style.FontName, fontSize: style.FontSize})
			case ir.BlockQuote:
				if err := walk(v.Children); err != nil {
					return err
				}
			case ir.List:
				for _, item := range v.Items {
					if err := walk(item.Children); err != nil {
						return err
					}
				}
			}
		}
		return nil
	}
	if err := walk(doc.Blocks); err != nil {
		return nil, err
	}

	r.docs[documentID] = keys
	return out, nil
}

// Invalidate evicts every cache entry attributable to documentID, without
// disturbing any other document's cached renders.
func (r *CachedRenderer) Invalidate(documentID uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, k := range r.docs[documentID] {
		r.hl.Evict(k.theme, k.lang, k.code, k.fontName, k.fontSize)
	}
	delete(r.docs, documentID)
}

// Clear empties the entire cache and forgets every document's association.
func (r *CachedRenderer) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hl.Clear()
	r.docs = make(map[uuid.UUID][]renderKey)
}
