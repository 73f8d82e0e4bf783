package ir

import "github.com/jcorbin/mdcore/mdrange"

// Document owns an immutable source buffer and its parsed top-level blocks
// (spec.md §3.1, §3.5). Every Block/Span reachable from Blocks borrows from
// Source by byte range; none of them may outlive a Document's Source slice,
// per spec.md §3.5 and §5 -- Go has no borrow checker to enforce this, so
// callers that need a Block past the Document's lifetime should
// materialize its spans to owned strings via Content.String at the
// boundary, exactly as spec.md §5 instructs for languages without one.
//
// A Document is a value once built: nothing below ever mutates Source or
// Blocks again, so sharing one across goroutines is always safe.
type Document struct {
	Source []byte
	Blocks []Block
}

// ShiftBlocks returns a copy of blocks with every embedded Range, and the
// Start/End of every BlockId, translated by delta; when delta is 0 or blocks
// is empty, blocks itself is returned. The incremental engine (package
// incremental) uses this to splice a freshly-parsed pending tail into the
// global buffer's coordinate space (spec.md §4.4.2).
func ShiftBlocks(blocks []Block, delta int) []Block {
	if delta == 0 || len(blocks) == 0 {
		return blocks
	}
	out := make([]Block, len(blocks))
	for i, b := range blocks {
		out[i] = shiftBlock(b, delta)
	}
	return out
}

func shiftBlock(b Block, delta int) Block {
	switch v := b.(type) {
	case Paragraph:
		v.Id = shiftID(v.Id, delta)
		v.Spans = shiftSpans(v.Spans, delta)
		v.Rng = v.Rng.Shift(delta)
		return v
	case Heading:
		v.Id = shiftID(v.Id, delta)
		v.Spans = shiftSpans(v.Spans, delta)
		v.Rng = v.Rng.Shift(delta)
		return v
	case CodeBlock:
		v.Id = shiftID(v.Id, delta)
		v.Content = shiftContent(v.Content, delta)
		v.Info = shiftContentPtr(v.Info, delta)
		v.Language = shiftContentPtr(v.Language, delta)
		v.Rng = v.Rng.Shift(delta)
		return v
	case HtmlBlock:
		v.Id = shiftID(v.Id, delta)
		v.Content = shiftContent(v.Content, delta)
		v.Rng = v.Rng.Shift(delta)
		return v
	case BlockQuote:
		v.Id = shiftID(v.Id, delta)
		v.Children = ShiftBlocks(v.Children, delta)
		v.Rng = v.Rng.Shift(delta)
		return v
	case ThematicBreak:
		v.Rng = v.Rng.Shift(delta)
		return v
	case List:
		v.Id = shiftID(v.Id, delta)
		items := make([]ListItem, len(v.Items))
		for i, it := range v.Items {
			it.Id = shiftID(it.Id, delta)
			it.Children = ShiftBlocks(it.Children, delta)
			items[i] = it
		}
		v.Items = items
		v.Rng = v.Rng.Shift(delta)
		return v
	case Table:
		v.Id = shiftID(v.Id, delta)
		v.HeaderRows = shiftRows(v.HeaderRows, delta)
		v.BodyRows = shiftRows(v.BodyRows, delta)
		v.Rng = v.Rng.Shift(delta)
		return v
	default:
		return b
	}
}

func shiftRows(rows []Row, delta int) []Row {
	out := make([]Row, len(rows))
	for i, row := range rows {
		cells := make([]Cell, len(row.Cells))
		for j, c := range row.Cells {
			c.Id = shiftID(c.Id, delta)
			c.Spans = shiftSpans(c.Spans, delta)
			cells[j] = c
		}
		row.Id = shiftID(row.Id, delta)
		row.Cells = cells
		out[i] = row
	}
	return out
}

func shiftID(id BlockId, delta int) BlockId {
	return BlockId{Kind: id.Kind, Start: clampUint32(int(id.Start) + delta), End: clampUint32(int(id.End) + delta), Ordinal: id.Ordinal}
}

func shiftSpans(spans []Span, delta int) []Span {
	if len(spans) == 0 {
		return spans
	}
	out := make([]Span, len(spans))
	for i, s := range spans {
		out[i] = shiftSpan(s, delta)
	}
	return out
}

func shiftSpan(s Span, delta int) Span {
	switch v := s.(type) {
	case Text:
		v.Content = shiftContent(v.Content, delta)
		return v
	case Code:
		v.Content = shiftContent(v.Content, delta)
		return v
	case Html:
		v.Content = shiftContent(v.Content, delta)
		return v
	case LatexInline:
		v.Content = shiftContent(v.Content, delta)
		return v
	case LatexDisplay:
		v.Content = shiftContent(v.Content, delta)
		return v
	case WikiLink:
		v.Target = shiftContent(v.Target, delta)
		v.Children = shiftSpans(v.Children, delta)
		return v
	case Emphasis:
		v.Children = shiftSpans(v.Children, delta)
		return v
	case Strong:
		v.Children = shiftSpans(v.Children, delta)
		return v
	case Strikethrough:
		v.Children = shiftSpans(v.Children, delta)
		return v
	case Underline:
		v.Children = shiftSpans(v.Children, delta)
		return v
	case Link:
		v.Children = shiftSpans(v.Children, delta)
		v.Destination = shiftContentPtr(v.Destination, delta)
		v.Title = shiftContentPtr(v.Title, delta)
		return v
	case Image:
		v.Alt = shiftSpans(v.Alt, delta)
		v.Source = shiftContentPtr(v.Source, delta)
		v.Title = shiftContentPtr(v.Title, delta)
		return v
	default:
		return s
	}
}

// shiftContent translates the range(s) embedded in c by delta. Owned
// content has no range and is returned unchanged, per spec.md §4.4.2
// ("TextContent::String is left unchanged").
func shiftContent(c mdrange.Content, delta int) mdrange.Content {
	switch v := c.(type) {
	case mdrange.Bytes:
		return mdrange.Bytes(mdrange.Range(v).Shift(delta))
	case mdrange.Joined:
		return mdrange.Joined(mdrange.Sequence(v).Shift(delta))
	default:
		return c
	}
}

func shiftContentPtr(c *mdrange.Content, delta int) *mdrange.Content {
	if c == nil {
		return nil
	}
	shifted := shiftContent(*c, delta)
	return &shifted
}
