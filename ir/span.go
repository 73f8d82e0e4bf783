package ir

import "github.com/jcorbin/mdcore/mdrange"

// Span is the sealed sum type for inline content (spec.md §3.3). Like Block,
// it is a tagged union expressed as a Go interface with an unexported
// marker method rather than a class hierarchy, following the "prefer sum
// types, not deep inheritance" guidance of spec.md §9.
type Span interface {
	isSpan()
}

// Text is a run of literal text, already entity-decoded where applicable.
type Text struct {
	Content mdrange.Content
}

func (Text) isSpan() {}

// Emphasis is *single*-delimiter emphasized content.
type Emphasis struct {
	Children []Span
}

func (Emphasis) isSpan() {}

// Strong is **double**-delimiter emphasized content.
type Strong struct {
	Children []Span
}

func (Strong) isSpan() {}

// Strikethrough is ~~struck~~ content (GFM extension).
type Strikethrough struct {
	Children []Span
}

func (Strikethrough) isSpan() {}

// Underline is underlined content, an adapter-level extension beyond plain
// CommonMark/GFM (spec.md §3.3 lists it alongside Strikethrough).
type Underline struct {
	Children []Span
}

func (Underline) isSpan() {}

// Code is a raw inline code span, joined from fragments if the tokenizer
// split it across multiple text events.
type Code struct {
	Content mdrange.Content
}

func (Code) isSpan() {}

// Link is an inline link, optionally carrying a destination and title.
type Link struct {
	Children    []Span
	Destination *mdrange.Content
	Title       *mdrange.Content
}

func (Link) isSpan() {}

// Image is an inline image; Alt holds the parsed alt-text spans (CommonMark
// parses image alt text as inline content, even though most renderers flatten
// it to plain text).
type Image struct {
	Alt     []Span
	Source  *mdrange.Content
	Title   *mdrange.Content
}

func (Image) isSpan() {}

// LineBreak is a hard line break (two-or-more trailing spaces, or a
// backslash, depending on parser.Options).
type LineBreak struct{}

func (LineBreak) isSpan() {}

// SoftBreak is a single newline inside a paragraph that does not force a
// hard break.
type SoftBreak struct{}

func (SoftBreak) isSpan() {}

// Html is raw inline HTML (a tag, comment, or similar) carried verbatim.
type Html struct {
	Content mdrange.Content
}

func (Html) isSpan() {}

// WikiLink is a [[target]] or [[target|label]] style span, not part of
// CommonMark/GFM proper but recognized by the adapter (see SPEC_FULL.md §3).
type WikiLink struct {
	Target   mdrange.Content
	Children []Span
}

func (WikiLink) isSpan() {}

// LatexInline is a $...$ inline math span.
type LatexInline struct {
	Content mdrange.Content
}

func (LatexInline) isSpan() {}

// LatexDisplay is a $$...$$ display math span.
type LatexDisplay struct {
	Content mdrange.Content
}

func (LatexDisplay) isSpan() {}

// SpanRange returns the (min start, max end) byte range covering every
// Bytes/Joined content reachable from spans, per spec.md §4.3.2. Owned
// (synthesized) content contributes nothing, since it has no source range.
// An empty or all-owned span list yields the zero Range; callers must not
// read from it as if it pointed at real content (spec.md §4.3.2).
func SpanRange(spans []Span) mdrange.Range {
	var (
		start    = -1
		end      = -1
	)
	visit := func(r mdrange.Range) {
		if r.IsEmpty() && r.Start == 0 && r.End == 0 {
			return
		}
		if start == -1 || r.Start < start {
			start = r.Start
		}
		if end == -1 || r.End > end {
			end = r.End
		}
	}
	var walk func(Span)
	walk = func(s Span) {
		switch v := s.(type) {
		case Text:
			addContentRange(v.Content, visit)
		case Code:
			addContentRange(v.Content, visit)
		case Html:
			addContentRange(v.Content, visit)
		case LatexInline:
			addContentRange(v.Content, visit)
		case LatexDisplay:
			addContentRange(v.Content, visit)
		case WikiLink:
			addContentRange(v.Target, visit)
			for _, c := range v.Children {
				walk(c)
			}
		case Emphasis:
			for _, c := range v.Children {
				walk(c)
			}
		case Strong:
			for _, c := range v.Children {
				walk(c)
			}
		case Strikethrough:
			for _, c := range v.Children {
				walk(c)
			}
		case Underline:
			for _, c := range v.Children {
				walk(c)
			}
		case Link:
			for _, c := range v.Children {
				walk(c)
			}
			if v.Destination != nil {
				addContentRange(*v.Destination, visit)
			}
			if v.Title != nil {
				addContentRange(*v.Title, visit)
			}
		case Image:
			for _, c := range v.Alt {
				walk(c)
			}
			if v.Source != nil {
				addContentRange(*v.Source, visit)
			}
			if v.Title != nil {
				addContentRange(*v.Title, visit)
			}
		case LineBreak, SoftBreak:
			// no range contribution
		}
	}
	for _, s := range spans {
		walk(s)
	}
	if start == -1 {
		return mdrange.Range{}
	}
	return mdrange.New(start, end)
}

func addContentRange(c mdrange.Content, visit func(mdrange.Range)) {
	switch v := c.(type) {
	case mdrange.Bytes:
		visit(mdrange.Range(v))
	case mdrange.Joined:
		for _, r := range v {
			visit(r)
		}
	case mdrange.Owned:
		// no range: synthesized content
	}
}
