package parser

import (
	"fmt"
	"testing"

	"github.com/jcorbin/mdcore/ir"
)

func ExampleParse_heading() {
	doc, err := Parse([]byte("# Hello *world*"), DefaultOptions())
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	h := doc.Blocks[0].(ir.Heading)
	fmt.Println(h.Level)
	for _, s := range h.Spans {
		switch v := s.(type) {
		case ir.Text:
			fmt.Printf("text %q\n", v.Content.String(doc.Source))
		case ir.Emphasis:
			for _, c := range v.Children {
				fmt.Printf("em %q\n", c.(ir.Text).Content.String(doc.Source))
			}
		}
	}
	// Output:
	// 1
	// text "Hello "
	// em "world"
}

func ExampleParse_codeBlock() {
	src := "```swift\nlet value = 1\n```\n"
	doc, err := Parse([]byte(src), DefaultOptions())
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	cb := doc.Blocks[0].(ir.CodeBlock)
	fmt.Printf("%q\n", cb.Language.String(doc.Source))
	fmt.Printf("%q\n", cb.Content.String(doc.Source))
	// Output:
	// "swift"
	// "let value = 1\n"
}

func ExampleParse_entity() {
	doc, err := Parse([]byte("Fish &amp; Chips"), DefaultOptions())
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	p := doc.Blocks[0].(ir.Paragraph)
	var out string
	for _, s := range p.Spans {
		out += s.(ir.Text).Content.String(doc.Source)
	}
	fmt.Println(out)
	// Output:
	// Fish & Chips
}

func TestTaskListMarker(t *testing.T) {
	src := "- [x] done\n- [ ] todo\n"
	doc, err := Parse([]byte(src), DefaultOptions())
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	list, ok := doc.Blocks[0].(ir.List)
	if !ok {
		t.Fatalf("Blocks[0] = %T, want ir.List", doc.Blocks[0])
	}
	if len(list.Items) != 2 {
		t.Fatalf("len(Items) = %d, want 2", len(list.Items))
	}
	if !list.Items[0].IsTask || !list.Items[0].IsChecked {
		t.Errorf("Items[0] = %+v, want IsTask && IsChecked", list.Items[0])
	}
	if !list.Items[1].IsTask || list.Items[1].IsChecked {
		t.Errorf("Items[1] = %+v, want IsTask && !IsChecked", list.Items[1])
	}
	p0 := list.Items[0].Children[0].(ir.Paragraph)
	got := p0.Spans[0].(ir.Text).Content.String(doc.Source)
	if got != "done" {
		t.Errorf("stripped text = %q, want %q", got, "done")
	}
}

func TestWikiLinkSpan(t *testing.T) {
	doc, err := Parse([]byte("see [[target page|label]] here"), DefaultOptions())
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	p := doc.Blocks[0].(ir.Paragraph)
	var link *ir.WikiLink
	for _, s := range p.Spans {
		if w, ok := s.(ir.WikiLink); ok {
			link = &w
		}
	}
	if link == nil {
		t.Fatalf("no WikiLink span found in %+v", p.Spans)
	}
	if got := link.Target.String(doc.Source); got != "target page" {
		t.Errorf("Target = %q, want %q", got, "target page")
	}
	if got := link.Children[0].(ir.Text).Content.String(doc.Source); got != "label" {
		t.Errorf("label text = %q, want %q", got, "label")
	}
}

func TestLatexSpans(t *testing.T) {
	doc, err := Parse([]byte("inline $x^2$ and display $$y = mx + b$$ end"), DefaultOptions())
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	p := doc.Blocks[0].(ir.Paragraph)
	var gotInline, gotDisplay string
	for _, s := range p.Spans {
		switch v := s.(type) {
		case ir.LatexInline:
			gotInline = v.Content.String(doc.Source)
		case ir.LatexDisplay:
			gotDisplay = v.Content.String(doc.Source)
		}
	}
	if gotInline != "x^2" {
		t.Errorf("inline latex = %q, want %q", gotInline, "x^2")
	}
	if gotDisplay != "y = mx + b" {
		t.Errorf("display latex = %q, want %q", gotDisplay, "y = mx + b")
	}
}

func TestUnderlineSpan(t *testing.T) {
	doc, err := Parse([]byte("see ++underlined++ here"), DefaultOptions())
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	p := doc.Blocks[0].(ir.Paragraph)
	var span *ir.Underline
	for _, s := range p.Spans {
		if u, ok := s.(ir.Underline); ok {
			span = &u
		}
	}
	if span == nil {
		t.Fatalf("no Underline span found in %+v", p.Spans)
	}
	if got := span.Children[0].(ir.Text).Content.String(doc.Source); got != "underlined" {
		t.Errorf("underlined text = %q, want %q", got, "underlined")
	}
}

func TestDebugHookFiresOnDroppedHTMLBlock(t *testing.T) {
	opts := DefaultOptions()
	var lines []string
	opts.Debug = func(s string) { lines = append(lines, s) }
	opts.Extensions |= NoHTMLBlocks

	doc, err := Parse([]byte("<div>\nraw\n</div>\n"), opts)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(doc.Blocks) != 0 {
		t.Fatalf("Blocks = %+v, want none (html block dropped)", doc.Blocks)
	}
	if len(lines) == 0 {
		t.Fatal("Debug hook was never called for the dropped html block")
	}
}

func TestTableAlignment(t *testing.T) {
	src := "| a | b |\n|:--|--:|\n| 1 | 2 |\n"
	opts := DefaultOptions()
	doc, err := Parse([]byte(src), opts)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	tbl, ok := doc.Blocks[0].(ir.Table)
	if !ok {
		t.Fatalf("Blocks[0] = %T, want ir.Table", doc.Blocks[0])
	}
	if len(tbl.Alignments) != 2 {
		t.Fatalf("len(Alignments) = %d, want 2", len(tbl.Alignments))
	}
	if tbl.Alignments[0] != ir.AlignLeft || tbl.Alignments[1] != ir.AlignRight {
		t.Errorf("Alignments = %v, want [Left Right]", tbl.Alignments)
	}
	if len(tbl.HeaderRows) != 1 || len(tbl.BodyRows) != 1 {
		t.Errorf("HeaderRows=%d BodyRows=%d, want 1 and 1", len(tbl.HeaderRows), len(tbl.BodyRows))
	}
}

func TestBlockQuoteNesting(t *testing.T) {
	src := "> outer\n> > inner\n"
	doc, err := Parse([]byte(src), DefaultOptions())
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	bq, ok := doc.Blocks[0].(ir.BlockQuote)
	if !ok {
		t.Fatalf("Blocks[0] = %T, want ir.BlockQuote", doc.Blocks[0])
	}
	if len(bq.Children) != 2 {
		t.Fatalf("len(Children) = %d, want 2 (paragraph + nested blockquote)", len(bq.Children))
	}
	if _, ok := bq.Children[1].(ir.BlockQuote); !ok {
		t.Errorf("Children[1] = %T, want ir.BlockQuote", bq.Children[1])
	}
}

func TestBlockIdsAreStableAcrossReparse(t *testing.T) {
	src := "# Title\n\nbody text\n"
	d1, err := Parse([]byte(src), DefaultOptions())
	if err != nil {
		t.Fatalf("Parse 1: %v", err)
	}
	d2, err := Parse([]byte(src), DefaultOptions())
	if err != nil {
		t.Fatalf("Parse 2: %v", err)
	}
	for i := range d1.Blocks {
		id1 := d1.Blocks[i].ID()
		id2 := d2.Blocks[i].ID()
		if id1.Kind != id2.Kind || id1.Start != id2.Start || id1.End != id2.End {
			t.Errorf("block %d: (Kind,Start,End) = %v, want match with %v", i, id1, id2)
		}
	}
}
