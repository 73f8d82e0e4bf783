package parser

import (
	"bytes"
	"fmt"
	"strings"
	"unsafe"

	"github.com/russross/blackfriday/v2"

	"github.com/jcorbin/mdcore/entity"
	"github.com/jcorbin/mdcore/ir"
	"github.com/jcorbin/mdcore/mdrange"
)

// Parse runs a single, non-incremental parse of source under opts
// (spec.md §6.1). blackfriday's own parser never returns an error -- a
// CommonMark parse is total -- so the only way ParseError surfaces here is
// if the adapter itself panics on an assumption it made about the tree
// shape; that panic is recovered and reported rather than propagated, same
// as treating the tokenizer as opaque and fallible per spec.md §6.2/§7.
func Parse(source []byte, opts Options) (doc ir.Document, err error) {
	defer func() {
		if r := recover(); r != nil {
			opts.debugf("adapter: recovered panic: %v", r)
			err = &ParseError{Code: -1, Err: fmt.Errorf("adapter: %v", r)}
		}
	}()
	a := newAdapter(source, opts)
	md := blackfriday.New(blackfriday.WithExtensions(opts.blackfridayExtensions()))
	root := md.Parse(source)
	root.Walk(a.visit)
	return ir.Document{Source: source, Blocks: a.blocks[0].children}, nil
}

// adapter drives blackfriday's Node.Walk and assembles the IR, per the
// push-parser contract of spec.md §6.2. It keeps two stacks: blocks for
// container blocks (BlockQuote/List/Item/Table/.../and a synthetic root)
// and inline for the inline content currently being collected inside a
// Paragraph, Heading, or table Cell -- mirroring cmd/poc/main.go's
// markdownWriter, which drives the same Walk callback with a handful of
// mutable fields tracking "where in the tree are we right now" rather than
// recursion.
type adapter struct {
	source []byte
	opts   Options
	ids    ir.IdSequence
	blocks []*blockFrame
	inline []*inlineFrame
}

func newAdapter(source []byte, opts Options) *adapter {
	return &adapter{
		source: source,
		opts:   opts,
		blocks: []*blockFrame{{kind: frameRoot}},
	}
}

type blockFrameKind int

const (
	frameRoot blockFrameKind = iota
	frameBlockQuote
	frameList
	frameListItem
	frameTable
	frameTableSection
	frameTableRow
)

// blockFrame is a single generic struct reused across every container kind,
// the way the teacher's scandown.Block carries Type/Delim/Width/Indent as
// generic fields rather than one struct per block kind. Only the fields
// relevant to kind are ever populated.
type blockFrame struct {
	kind blockFrameKind

	children []ir.Block // root, BlockQuote, ListItem

	// List
	ordered   bool
	start     int
	delimiter byte
	tight     bool
	items     []ir.ListItem

	// Table
	alignments []ir.Alignment
	headerRows []ir.Row
	bodyRows   []ir.Row

	// TableSection
	inHead bool

	// TableRow
	cells []ir.Cell
}

type inlineFrameKind int

const (
	inlineRoot inlineFrameKind = iota
	inlineEmphasis
	inlineStrong
	inlineStrike
	inlineLink
	inlineImage
)

type inlineFrame struct {
	kind  inlineFrameKind
	spans []ir.Span
}

func (a *adapter) curBlock() *blockFrame { return a.blocks[len(a.blocks)-1] }

func (a *adapter) pushBlock(f *blockFrame) { a.blocks = append(a.blocks, f) }

func (a *adapter) popBlock() *blockFrame {
	n := len(a.blocks) - 1
	f := a.blocks[n]
	a.blocks = a.blocks[:n]
	return f
}

// appendChild attaches a completed block to whichever container is now on
// top of the block stack. Root, BlockQuote, and ListItem all collect their
// contents in the same children slice.
func (a *adapter) appendChild(b ir.Block) {
	parent := a.curBlock()
	parent.children = append(parent.children, b)
}

func (a *adapter) pushInline(k inlineFrameKind) {
	a.inline = append(a.inline, &inlineFrame{kind: k})
}

func (a *adapter) popInline() *inlineFrame {
	n := len(a.inline) - 1
	f := a.inline[n]
	a.inline = a.inline[:n]
	return f
}

func (a *adapter) appendSpan(s ir.Span) {
	f := a.inline[len(a.inline)-1]
	f.spans = append(f.spans, s)
}

// visit is the blackfriday.Node.Walk callback. Every node, leaf or not,
// fires once with entering=true and once with entering=false; leaf kinds
// (Text, Code, HTMLSpan, CodeBlock, HTMLBlock, HorizontalRule, Softbreak,
// Hardbreak) only act on the entering call and ignore the leaving one,
// following cmd/poc/main.go's visitNode convention for the same node kinds.
func (a *adapter) visit(n *blackfriday.Node, entering bool) blackfriday.WalkStatus {
	switch n.Type {
	case blackfriday.BlockQuote:
		if entering {
			a.pushBlock(&blockFrame{kind: frameBlockQuote})
		} else {
			f := a.popBlock()
			rng := ir.MergeRanges(f.children)
			id := a.ids.Next(ir.KindBlockQuote, rng.Start, rng.End)
			a.appendChild(ir.BlockQuote{Id: id, Children: f.children, Rng: rng})
		}

	case blackfriday.List:
		if entering {
			a.pushBlock(&blockFrame{
				kind:    frameList,
				ordered: n.ListFlags&blackfriday.ListTypeOrdered != 0,
				start:   1, // blackfriday's ListData carries no starting number
				tight:   n.Tight,
			})
		} else {
			f := a.popBlock()
			rng := ir.MergeItemRanges(f.items)
			id := a.ids.Next(ir.KindList, rng.Start, rng.End)
			a.appendChild(ir.List{
				Id:        id,
				Ordered:   f.ordered,
				Start:     f.start,
				Delimiter: f.delimiter,
				Tight:     f.tight,
				Items:     f.items,
				Rng:       rng,
			})
		}

	case blackfriday.Item:
		if entering {
			a.pushBlock(&blockFrame{kind: frameListItem})
		} else {
			f := a.popBlock()
			rng := ir.MergeRanges(f.children)
			id := a.ids.Next(ir.KindListItem, rng.Start, rng.End)
			item := ir.ListItem{Id: id, Children: f.children}
			a.detectTaskMarker(&item)

			list := a.curBlock() // the enclosing List frame, still open
			if list.kind == frameList {
				var delim byte
				if list.ordered {
					delim = n.Delimiter
				} else {
					delim = n.BulletChar
				}
				if list.delimiter == 0 {
					list.delimiter = delim
				}
				list.items = append(list.items, item)
			}
		}

	case blackfriday.Paragraph:
		// Tight-list item content already arrives wrapped in an explicit
		// Paragraph node under blackfriday (tightness only suppresses the
		// HTML renderer's <p> tags, not the AST shape), so no synthesized
		// paragraph compensation is needed here; see DESIGN.md.
		if entering {
			a.pushInline(inlineRoot)
		} else {
			f := a.popInline()
			rng := ir.SpanRange(f.spans)
			id := a.ids.Next(ir.KindParagraph, rng.Start, rng.End)
			a.appendChild(ir.Paragraph{Id: id, Spans: f.spans, Rng: rng})
		}

	case blackfriday.Heading:
		if entering {
			a.pushInline(inlineRoot)
		} else {
			f := a.popInline()
			rng := ir.SpanRange(f.spans)
			id := a.ids.Next(ir.KindHeading, rng.Start, rng.End)
			a.appendChild(ir.Heading{Id: id, Level: n.Level, Spans: f.spans, Rng: rng})
		}

	case blackfriday.HorizontalRule:
		if entering {
			id := a.ids.Next(ir.KindThematicBreak, 0, 0)
			a.appendChild(ir.ThematicBreak{Id: id})
		}

	case blackfriday.CodeBlock:
		if entering {
			content := a.literalContent(n.Literal)
			var info, lang *mdrange.Content
			if len(n.Info) > 0 {
				c := a.literalContent(n.Info)
				info = &c
				if tok := firstToken(n.Info); len(tok) > 0 {
					lc := a.literalContent(tok)
					lang = &lc
				}
			}
			rng := contentRange(content)
			id := a.ids.Next(ir.KindCodeBlock, rng.Start, rng.End)
			a.appendChild(ir.CodeBlock{
				Id:        id,
				Info:      info,
				Language:  lang,
				Content:   content,
				FenceChar: n.FenceChar,
				Rng:       rng,
			})
		}

	case blackfriday.HTMLBlock:
		if entering {
			if a.opts.Extensions.Has(NoHTMLBlocks) {
				a.opts.debugf("adapter: dropping html block (NoHTMLBlocks)")
				break
			}
			content := a.literalContent(n.Literal)
			rng := contentRange(content)
			id := a.ids.Next(ir.KindHtmlBlock, rng.Start, rng.End)
			a.appendChild(ir.HtmlBlock{Id: id, Content: content, Rng: rng})
		}

	case blackfriday.Table:
		if entering {
			a.pushBlock(&blockFrame{kind: frameTable})
		} else {
			f := a.popBlock()
			allRows := make([]ir.Row, 0, len(f.headerRows)+len(f.bodyRows))
			allRows = append(allRows, f.headerRows...)
			allRows = append(allRows, f.bodyRows...)
			rng := tableRange(allRows)
			id := a.ids.Next(ir.KindTable, rng.Start, rng.End)
			a.appendChild(ir.Table{
				Id:         id,
				Alignments: f.alignments,
				HeaderRows: f.headerRows,
				BodyRows:   f.bodyRows,
				Rng:        rng,
			})
		}

	case blackfriday.TableHead:
		if entering {
			a.pushBlock(&blockFrame{kind: frameTableSection, inHead: true})
		} else {
			a.popBlock()
		}

	case blackfriday.TableBody:
		if entering {
			a.pushBlock(&blockFrame{kind: frameTableSection, inHead: false})
		} else {
			a.popBlock()
		}

	case blackfriday.TableRow:
		if entering {
			a.pushBlock(&blockFrame{kind: frameTableRow})
		} else {
			f := a.popBlock()
			rng := rowRange(f.cells)
			row := ir.Row{Id: a.ids.Next(ir.KindRow, rng.Start, rng.End), Cells: f.cells}
			section := a.curBlock()
			if len(a.blocks) >= 2 {
				table := a.blocks[len(a.blocks)-2]
				if section.inHead {
					table.headerRows = append(table.headerRows, row)
					if table.alignments == nil {
						aligns := make([]ir.Alignment, len(row.Cells))
						for i, c := range row.Cells {
							aligns[i] = c.Alignment
						}
						table.alignments = aligns
					}
				} else {
					table.bodyRows = append(table.bodyRows, row)
				}
			}
		}

	case blackfriday.TableCell:
		if entering {
			a.pushInline(inlineRoot)
		} else {
			f := a.popInline()
			rng := ir.SpanRange(f.spans)
			id := a.ids.Next(ir.KindCell, rng.Start, rng.End)
			cell := ir.Cell{Id: id, Spans: f.spans, Alignment: alignmentOf(n.Align)}
			row := a.curBlock()
			row.cells = append(row.cells, cell)
		}

	case blackfriday.Text:
		if entering {
			a.emitText(n.Literal)
		}

	case blackfriday.Emph:
		if entering {
			a.pushInline(inlineEmphasis)
		} else {
			f := a.popInline()
			a.appendSpan(ir.Emphasis{Children: f.spans})
		}

	case blackfriday.Strong:
		if entering {
			a.pushInline(inlineStrong)
		} else {
			f := a.popInline()
			a.appendSpan(ir.Strong{Children: f.spans})
		}

	case blackfriday.Del:
		if entering {
			a.pushInline(inlineStrike)
		} else {
			f := a.popInline()
			a.appendSpan(ir.Strikethrough{Children: f.spans})
		}

	case blackfriday.Link:
		if entering {
			a.pushInline(inlineLink)
		} else {
			f := a.popInline()
			span := ir.Link{Children: f.spans}
			if len(n.Destination) > 0 {
				c := a.literalContent(n.Destination)
				span.Destination = &c
			}
			if len(n.Title) > 0 {
				c := a.literalContent(n.Title)
				span.Title = &c
			}
			a.appendSpan(span)
		}

	case blackfriday.Image:
		if entering {
			a.pushInline(inlineImage)
		} else {
			f := a.popInline()
			span := ir.Image{Alt: f.spans}
			if len(n.Destination) > 0 {
				c := a.literalContent(n.Destination)
				span.Source = &c
			}
			if len(n.Title) > 0 {
				c := a.literalContent(n.Title)
				span.Title = &c
			}
			a.appendSpan(span)
		}

	case blackfriday.Code:
		if entering {
			a.appendSpan(ir.Code{Content: a.literalContent(n.Literal)})
		}

	case blackfriday.HTMLSpan:
		if entering {
			if a.opts.Extensions.Has(NoHTMLSpans) {
				a.opts.debugf("adapter: dropping html span (NoHTMLSpans)")
				break
			}
			a.appendSpan(ir.Html{Content: a.literalContent(n.Literal)})
		}

	case blackfriday.Hardbreak:
		if entering {
			a.appendSpan(ir.LineBreak{})
		}

	case blackfriday.Softbreak:
		if entering {
			a.appendSpan(ir.SoftBreak{})
		}
	}
	return blackfriday.GoToNext
}

// detectTaskMarker strips a leading "[ ] "/"[x] "/"[X] " from a list item's
// first text span and records it as IsTask/IsChecked. blackfriday has no
// native GFM task-list node, so this is adapter-level post-processing,
// gated on the TaskLists extension.
func (a *adapter) detectTaskMarker(item *ir.ListItem) {
	if !a.opts.Extensions.Has(TaskLists) || len(item.Children) == 0 {
		return
	}
	p, ok := item.Children[0].(ir.Paragraph)
	if !ok || len(p.Spans) == 0 {
		return
	}
	t, ok := p.Spans[0].(ir.Text)
	if !ok {
		return
	}
	text := t.Content.String(a.source)
	if len(text) < 4 || text[0] != '[' || text[2] != ']' || text[3] != ' ' {
		return
	}
	switch text[1] {
	case ' ':
		item.IsChecked = false
	case 'x', 'X':
		item.IsChecked = true
	default:
		return
	}
	item.IsTask = true
	remainder := text[4:]
	spans := make([]ir.Span, len(p.Spans))
	copy(spans, p.Spans)
	spans[0] = ir.Text{Content: mdrange.Owned(remainder)}
	p.Spans = spans
	item.Children[0] = p
}

// emitText scans a Text node's literal for entity references and the
// adapter's extra WikiLink/LaTeX/Underline span conventions (SPEC_FULL.md
// §3), which blackfriday's tokenizer has no native node for, and appends
// the resulting Text/WikiLink/LatexInline/LatexDisplay/Underline spans in
// order. Plain runs keep a zero-copy Bytes range when the literal still
// aliases source; anything synthesized (decoded entities, reconstructed
// literals) falls back to Owned.
func (a *adapter) emitText(lit []byte) {
	base, _, aliased := offsetOf(a.source, lit)
	start, pos := 0, 0
	flush := func(end int) {
		if end > start {
			a.emitPlain(lit[start:end], base, aliased, start)
		}
	}
	for pos < len(lit) {
		idx := bytes.IndexAny(lit[pos:], "&[$+")
		if idx < 0 {
			break
		}
		pos += idx
		rest := lit[pos:]
		switch rest[0] {
		case '&':
			if width, decoded, ok := matchEntity(rest); ok {
				flush(pos)
				a.appendSpan(ir.Text{Content: mdrange.Owned(decoded)})
				pos += width
				start = pos
				continue
			}
		case '[':
			if width, target, label, ok := matchWikiLink(rest); ok {
				flush(pos)
				a.appendSpan(ir.WikiLink{
					Target:   mdrange.Owned(target),
					Children: []ir.Span{ir.Text{Content: mdrange.Owned(label)}},
				})
				pos += width
				start = pos
				continue
			}
		case '+':
			if width, inner, ok := matchUnderline(rest); ok {
				flush(pos)
				a.appendSpan(ir.Underline{
					Children: []ir.Span{ir.Text{Content: mdrange.Owned(inner)}},
				})
				pos += width
				start = pos
				continue
			}
		case '$':
			if total, innerStart, innerEnd, display, ok := matchLatex(rest); ok {
				flush(pos)
				var content mdrange.Content
				if aliased {
					content = mdrange.Bytes(mdrange.New(base+pos+innerStart, base+pos+innerEnd))
				} else {
					content = mdrange.Owned(string(rest[innerStart:innerEnd]))
				}
				if display {
					a.appendSpan(ir.LatexDisplay{Content: content})
				} else {
					a.appendSpan(ir.LatexInline{Content: content})
				}
				pos += total
				start = pos
				continue
			}
		}
		// no recognized pattern at this trigger byte; keep scanning as plain
		pos++
	}
	flush(len(lit))
}

func (a *adapter) emitPlain(b []byte, base int, aliased bool, relStart int) {
	if len(b) == 0 {
		return
	}
	var content mdrange.Content
	if aliased {
		content = mdrange.Bytes(mdrange.New(base+relStart, base+relStart+len(b)))
	} else {
		content = mdrange.Owned(string(b))
	}
	a.appendSpan(ir.Text{Content: content})
}

// matchEntity recognizes a single "&...;" token within a small lookahead
// window and decodes it via entity.Decode. ok is false when no ';' is
// found nearby or the token doesn't resolve to a known entity, in which
// case the caller leaves the '&' as ordinary text.
func matchEntity(rest []byte) (width int, decoded string, ok bool) {
	limit := len(rest)
	if limit > 32 {
		limit = 32
	}
	semi := bytes.IndexByte(rest[:limit], ';')
	if semi < 0 {
		return 0, "", false
	}
	token := string(rest[:semi+1])
	decoded = entity.Decode(token)
	if decoded == token {
		return 0, "", false
	}
	return semi + 1, decoded, true
}

// matchWikiLink recognizes [[target]] or [[target|label]].
func matchWikiLink(rest []byte) (width int, target, label string, ok bool) {
	if len(rest) < 5 || rest[1] != '[' {
		return 0, "", "", false
	}
	end := bytes.Index(rest[2:], []byte("]]"))
	if end < 0 {
		return 0, "", "", false
	}
	inner := string(rest[2 : 2+end])
	if inner == "" {
		return 0, "", "", false
	}
	target, label = inner, inner
	if i := strings.IndexByte(inner, '|'); i >= 0 {
		target, label = inner[:i], inner[i+1:]
	}
	return end + 4, target, label, true
}

// matchUnderline recognizes ++text++, the adapter-level convention for
// ir.Underline (SPEC_FULL.md §3): blackfriday has no native underline node,
// the same gap WikiLink/Latex spans fill via this secondary scan over Text
// events. No interior newline or nested "++" is permitted, mirroring the
// single-line restriction matchLatex applies to $...$.
func matchUnderline(rest []byte) (width int, inner string, ok bool) {
	if len(rest) < 5 || rest[1] != '+' {
		return 0, "", false
	}
	end := bytes.Index(rest[2:], []byte("++"))
	if end <= 0 {
		return 0, "", false
	}
	body := rest[2 : 2+end]
	if bytes.ContainsRune(body, '\n') {
		return 0, "", false
	}
	return end + 4, string(body), true
}

// matchLatex recognizes $...$ with no interior newline, or $$...$$ (whose
// body may contain newlines), a lightweight heuristic rather than full
// LaTeX math grammar
// (SPEC_FULL.md §3). innerStart/innerEnd are offsets into rest, excluding
// the delimiters.
func matchLatex(rest []byte) (total, innerStart, innerEnd int, display bool, ok bool) {
	if len(rest) >= 4 && rest[1] == '$' {
		end := bytes.Index(rest[2:], []byte("$$"))
		if end <= 0 {
			return 0, 0, 0, false, false
		}
		return end + 4, 2, 2 + end, true, true
	}
	end := bytes.IndexByte(rest[1:], '$')
	if end <= 0 {
		return 0, 0, 0, false, false
	}
	inner := rest[1 : 1+end]
	if bytes.ContainsRune(inner, '\n') {
		return 0, 0, 0, false, false
	}
	return end + 2, 1, 1 + end, false, true
}

func firstToken(b []byte) []byte {
	i := bytes.IndexAny(b, " \t")
	if i < 0 {
		return b
	}
	return b[:i]
}

func alignmentOf(al blackfriday.CellAlignFlags) ir.Alignment {
	switch al {
	case blackfriday.TableAlignmentLeft:
		return ir.AlignLeft
	case blackfriday.TableAlignmentRight:
		return ir.AlignRight
	case blackfriday.TableAlignmentCenter:
		return ir.AlignCenter
	default:
		return ir.AlignNone
	}
}

func rowRange(cells []ir.Cell) mdrange.Range {
	start, end := -1, -1
	for _, c := range cells {
		r := ir.SpanRange(c.Spans)
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

func tableRange(rows []ir.Row) mdrange.Range {
	start, end := -1, -1
	for _, row := range rows {
		r := rowRange(row.Cells)
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

// literalContent wraps a blackfriday node literal as Content: a zero-copy
// Bytes range when the literal still aliases source, otherwise an Owned
// copy. blackfriday aliases source for most single-line leaves but
// reconstructs its own buffer (tabs expanded, indentation stripped,
// multiple lines concatenated) for some multi-line content, which is the
// "few synthesized cases" spec.md §3.1 carves out room for.
func (a *adapter) literalContent(lit []byte) mdrange.Content {
	if len(lit) == 0 {
		return mdrange.Bytes{}
	}
	if start, end, ok := offsetOf(a.source, lit); ok {
		return mdrange.Bytes(mdrange.New(start, end))
	}
	return mdrange.Owned(string(lit))
}

// offsetOf recovers lit's byte offsets within source via pointer
// arithmetic, the same trick zombiezen-go-commonmark uses unsafe.Pointer
// for when packing its Node union, bounds-checked against source's extent
// and then content-verified (bytes.Equal) before being trusted -- a
// margin beyond spec.md §9's bounds-check requirement, since a bare
// pointer/length match without a content check could in principle still
// mislabel a range.
func offsetOf(source, lit []byte) (start, end int, ok bool) {
	if len(source) == 0 || len(lit) == 0 {
		return 0, 0, false
	}
	base := uintptr(unsafe.Pointer(&source[0]))
	ptr := uintptr(unsafe.Pointer(&lit[0]))
	if ptr < base {
		return 0, 0, false
	}
	offset := ptr - base
	if offset > uintptr(len(source)) {
		return 0, 0, false
	}
	start = int(offset)
	end = start + len(lit)
	if end > len(source) {
		return 0, 0, false
	}
	if !bytes.Equal(source[start:end], lit) {
		return 0, 0, false
	}
	return start, end, true
}

func contentRange(c mdrange.Content) mdrange.Range {
	switch v := c.(type) {
	case mdrange.Bytes:
		return mdrange.Range(v)
	case mdrange.Joined:
		seq := mdrange.Sequence(v)
		if len(seq) == 0 {
			return mdrange.Range{}
		}
		start, end := seq[0].Start, seq[0].End
		for _, r := range seq[1:] {
			if r.Start < start {
				start = r.Start
			}
			if r.End > end {
				end = r.End
			}
		}
		return mdrange.New(start, end)
	default:
		return mdrange.Range{}
	}
}
