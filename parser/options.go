package parser

import (
	"fmt"

	"github.com/russross/blackfriday/v2"
)

// Extensions is the bit-flag capability set described by spec.md §4.7 (C8).
// Each bit turns on one Markdown extension beyond bare CommonMark.
type Extensions uint16

// Extension bits. Names match spec.md §4.7 verbatim.
const (
	PermissiveATXHeaders Extensions = 1 << iota
	PermissiveURLAutolinks
	PermissiveEmailAutolinks
	PermissiveWWWAutolinks
	Tables
	Strikethrough
	TaskLists
	HardSoftBreaks
	NoHTMLBlocks
	NoHTMLSpans
)

// GFMSubset is the preset naming the autolinks, tables, strikethrough, and
// task-lists extensions (spec.md §4.7). It is the default.
const GFMSubset = PermissiveURLAutolinks | PermissiveEmailAutolinks | PermissiveWWWAutolinks | Tables | Strikethrough | TaskLists

// CommonMarkPreset enables nothing beyond bare CommonMark.
const CommonMarkPreset Extensions = 0

// Has reports whether every bit of want is set in e.
func (e Extensions) Has(want Extensions) bool {
	return e&want == want
}

// Options configures a parse. The zero Options selects CommonMarkPreset;
// DefaultOptions selects GFMSubset.
type Options struct {
	Extensions Extensions

	// Debug, if non-nil, receives a line of text whenever the adapter drops
	// an HTML block or span (NoHTMLBlocks/NoHTMLSpans) or recovers from a
	// panic during Parse; blackfriday itself emits no debug events. Parsing
	// never depends on this being set; it exists purely as a diagnostic hook, the
	// way the teacher's socutil plumbed optional side channels instead of
	// importing a logging framework.
	Debug func(string)
}

// DefaultOptions returns Options{Extensions: GFMSubset}.
func DefaultOptions() Options {
	return Options{Extensions: GFMSubset}
}

// blackfridayExtensions translates Options into the bit set blackfriday's
// push tokenizer understands. Some of our flags (task lists, no-html-*) have
// no blackfriday equivalent and are instead enforced by the adapter itself
// after the fact -- see adapter.go.
func (o Options) blackfridayExtensions() blackfriday.Extensions {
	ext := blackfriday.NoIntraEmphasis | blackfriday.FencedCode
	if o.Extensions.Has(Tables) {
		ext |= blackfriday.Tables
	}
	if o.Extensions.Has(Strikethrough) {
		ext |= blackfriday.Strikethrough
	}
	if o.Extensions.Has(HardSoftBreaks) {
		ext |= blackfriday.HardLineBreak
	}
	if o.Extensions.Has(PermissiveURLAutolinks) || o.Extensions.Has(PermissiveEmailAutolinks) || o.Extensions.Has(PermissiveWWWAutolinks) {
		ext |= blackfriday.Autolink
	}
	if !o.Extensions.Has(PermissiveATXHeaders) {
		// blackfriday.SpaceHeadings *requires* a space after the '#', i.e.
		// strict ATX. We invert it: permissive mode omits this extension so
		// "#foo" parses as a heading, matching the open question in
		// spec.md §9 ("implementers should make the decision explicit per
		// option flag").
		ext |= blackfriday.SpaceHeadings
	}
	return ext
}

func (o Options) debugf(format string, args ...interface{}) {
	if o.Debug == nil {
		return
	}
	o.Debug(fmt.Sprintf(format, args...))
}
