// Package boundary finds safe freeze points in a streaming Markdown buffer:
// the two rules of spec.md §4.4.1 that the incremental engine (package
// incremental) uses to decide how much of its pending tail it may hand off
// to the stable side without risking a later chunk changing its meaning.
//
// It narrows scandown.BlockStack.Scan's full per-line block-matching state
// machine down to just fenced-code-close detection and blank-line
// detection -- the incremental engine only needs "where is it safe to
// freeze", not the full block grammar scandown implements for its own
// interactive-scan use case.
package boundary

import "bytes"

// Advance scans every complete (newline-terminated) line of data -- which
// the caller always passes as the *entire* still-unfrozen pending buffer,
// not a fragment of an ongoing stream, so the scan always starts outside
// any fence -- and returns the byte offset of the last safe boundary found,
// or -1 if none was found. A trailing line with no terminating '\n' is
// never considered, since more bytes may still be coming for it.
func Advance(data []byte) int {
	boundary := -1
	open := false
	var fenceChar byte
	var fenceWidth int

	pos := 0
	for {
		nl := bytes.IndexByte(data[pos:], '\n')
		if nl < 0 {
			break
		}
		lineEnd := pos + nl + 1
		tail := bytes.TrimRight(data[pos:lineEnd], "\r\n")

		switch {
		case open:
			if delim, width, rest := fenceMarker(tail, fenceChar); delim != 0 && width >= fenceWidth && len(bytes.TrimSpace(rest)) == 0 {
				open = false
				boundary = lineEnd
			}
		default:
			if delim, width, _ := fenceMarker(tail, 0); delim != 0 {
				open = true
				fenceChar = delim
				fenceWidth = width
			} else if len(bytes.TrimSpace(tail)) == 0 {
				boundary = lineEnd
			}
		}
		pos = lineEnd
	}
	return boundary
}

// fenceMarker recognizes a CommonMark code-fence line: up to 3 leading
// spaces of indent, then a run of 3 or more identical '`'/'~' bytes. If
// want is non-zero, only that exact delimiter byte matches -- used to look
// for a fence's closing line, which must reuse its opening character and be
// at least as wide (spec.md §4.4.1's "fence-char/fence-width matching").
func fenceMarker(line []byte, want byte) (delim byte, width int, tail []byte) {
	indent := 0
	for indent < 3 && indent < len(line) && line[indent] == ' ' {
		indent++
	}
	line = line[indent:]
	if len(line) == 0 {
		return 0, 0, nil
	}
	delim = line[0]
	if delim != '`' && delim != '~' {
		return 0, 0, nil
	}
	if want != 0 && delim != want {
		return 0, 0, nil
	}
	width = 1
	for width < len(line) && line[width] == delim {
		width++
	}
	if width < 3 {
		return 0, 0, nil
	}
	return delim, width, line[width:]
}
