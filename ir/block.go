package ir

import "github.com/jcorbin/mdcore/mdrange"

// Block is the sealed sum type for block-level structure (spec.md §3.2).
type Block interface {
	ID() BlockId
	isBlock()
}

// Alignment is a table column or cell alignment (spec.md §3.2).
type Alignment uint8

// Alignment values.
const (
	AlignNone Alignment = iota
	AlignLeft
	AlignCenter
	AlignRight
)

// Paragraph is a run of inline content terminated by a blank line or a
// structural interruption.
type Paragraph struct {
	Id    BlockId
	Spans []Span
	Rng   mdrange.Range
}

func (p Paragraph) ID() BlockId { return p.Id }
func (Paragraph) isBlock()      {}

// Heading is an ATX (#) or Setext (underlined) heading.
type Heading struct {
	Id    BlockId
	Level int
	Spans []Span
	Rng   mdrange.Range
}

func (h Heading) ID() BlockId { return h.Id }
func (Heading) isBlock()      {}

// CodeBlock is a fenced or indented code block. Content is ordinarily a
// mdrange.Joined sequence concatenating every emitted code-text fragment in
// order, preserving interior newlines; it falls back to mdrange.Owned for
// the cases where the tokenizer hands back a reconstructed buffer (tabs
// expanded, indentation stripped) that no longer aliases source, one of the
// "few synthesized cases" spec.md §3.1 allows for TextContent generally.
type CodeBlock struct {
	Id        BlockId
	Info      *mdrange.Content
	Language  *mdrange.Content
	Content   mdrange.Content
	FenceChar byte // 0 for an indented code block
	Rng       mdrange.Range
}

func (c CodeBlock) ID() BlockId { return c.Id }
func (CodeBlock) isBlock()      {}

// HtmlBlock is a raw block of HTML markup.
type HtmlBlock struct {
	Id      BlockId
	Content mdrange.Content
	Rng     mdrange.Range
}

func (h HtmlBlock) ID() BlockId { return h.Id }
func (HtmlBlock) isBlock()      {}

// BlockQuote is a > quoted container of child blocks.
type BlockQuote struct {
	Id       BlockId
	Children []Block
	Rng      mdrange.Range
}

func (b BlockQuote) ID() BlockId { return b.Id }
func (BlockQuote) isBlock()      {}

// ThematicBreak is a --- / *** / ___ horizontal rule.
type ThematicBreak struct {
	Id  BlockId
	Rng mdrange.Range
}

func (t ThematicBreak) ID() BlockId { return t.Id }
func (ThematicBreak) isBlock()      {}

// ListItem is one item of a List. It is not itself a top-level Block
// variant in spec.md's §3.2 sense, but it carries its own BlockId per
// spec.md §3.4 ("Each block, list item, row, and cell carries a BlockId").
type ListItem struct {
	Id        BlockId
	Children  []Block
	IsTask    bool
	IsChecked bool
}

// List is an ordered or bullet list.
type List struct {
	Id        BlockId
	Ordered   bool
	Start     int
	Delimiter byte // '.', ')', '-', '*', '+'; 0 if unknown
	Tight     bool
	Items     []ListItem
	Rng       mdrange.Range
}

func (l List) ID() BlockId { return l.Id }
func (List) isBlock()      {}

// Cell is one table cell.
type Cell struct {
	Id        BlockId
	Spans     []Span
	Alignment Alignment
}

// Row is one table row (header or body).
type Row struct {
	Id    BlockId
	Cells []Cell
}

// Table is a GFM pipe table.
type Table struct {
	Id         BlockId
	Alignments []Alignment
	HeaderRows []Row
	BodyRows   []Row
	Rng        mdrange.Range
}

func (t Table) ID() BlockId { return t.Id }
func (Table) isBlock()      {}

// Range returns the Rng field stored on a block; unknown variants yield the
// zero Range. For BlockQuote, List, and Table the adapter fills Rng once at
// construction time as the merge of their children's ranges (spec.md
// §4.3.2): MergeRanges for BlockQuote, MergeItemRanges for List, and the
// cells' span ranges for Table. ShiftBlocks translates Rng along with the
// rest of the block, and Range always reflects it verbatim.
func Range(b Block) mdrange.Range {
	switch v := b.(type) {
	case Paragraph:
		return v.Rng
	case Heading:
		return v.Rng
	case CodeBlock:
		return v.Rng
	case HtmlBlock:
		return v.Rng
	case BlockQuote:
		return v.Rng
	case ThematicBreak:
		return v.Rng
	case List:
		return v.Rng
	case Table:
		return v.Rng
	default:
		return mdrange.Range{}
	}
}

// MergeRanges returns the smallest range covering every range of bs, per
// spec.md §4.3.2's rule for BlockQuote/List/Table. An empty input yields the
// zero Range.
func MergeRanges(bs []Block) mdrange.Range {
	var (
		start = -1
		end   = -1
	)
	for _, b := range bs {
		r := Range(b)
		if r.IsEmpty() && r.Start == 0 && r.End == 0 {
			continue
		}
		if start == -1 || r.Start < start {
			start = r.Start
		}
		if end == -1 || r.End > end {
			end = r.End
		}
	}
	if start == -1 {
		return mdrange.Range{}
	}
	return mdrange.New(start, end)
}

// MergeItemRanges returns the smallest range covering every child block of
// every item, used to compute a List's own Range from its ListItems.
func MergeItemRanges(items []ListItem) mdrange.Range {
	var all []Block
	for _, it := range items {
		all = append(all, it.Children...)
	}
	return MergeRanges(all)
}
