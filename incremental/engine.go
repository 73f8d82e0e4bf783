// Package incremental implements the streaming/incremental parse engine of
// spec.md §4.4: a parser that accepts Markdown in chunks, freezing a
// growing prefix of "stable" blocks as soon as the boundary package can
// prove later chunks cannot change their meaning, while always being able
// to hand back a full Document -- stable prefix plus a freshly reparsed
// pending tail -- on demand.
//
// It plays the role scandown.BlockStack's incremental Scan loop plays for
// the teacher, generalized from a single bufio.Scanner-driven CLI reader to
// a concurrent-safe, chunk-at-a-time API suited to streaming an LLM
// response or a live-typed editor buffer.
package incremental

import (
	"errors"
	"sync"

	"github.com/google/uuid"

	"github.com/jcorbin/mdcore/boundary"
	"github.com/jcorbin/mdcore/ir"
	"github.com/jcorbin/mdcore/parser"
)

var errFinalized = errors.New("mdcore/incremental: Append called after Finalize")

// IncrementalParser accumulates Markdown chunks and maintains a prefix of
// stable blocks, per spec.md §4.4. All methods are safe for concurrent use;
// a single mutex serializes them, since parsing on every Append/Snapshot
// call is already the dominant cost and finer-grained locking would not
// help.
type IncrementalParser struct {
	mu sync.Mutex

	opts       parser.Options
	documentID uuid.UUID

	stableData   []byte
	stableBlocks []ir.Block

	pending   []byte
	finalized bool
}

// New returns a ready-to-use IncrementalParser with a fresh document id.
func New(opts parser.Options) *IncrementalParser {
	return &IncrementalParser{opts: opts, documentID: uuid.New()}
}

// DocumentID returns the identifier assigned when the parser was
// constructed (or last Reset), stable for the lifetime of one parse
// session (spec.md §4.4).
func (p *IncrementalParser) DocumentID() uuid.UUID {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.documentID
}

// Append feeds another chunk of Markdown text into the parser, advancing
// the stable prefix as far as the boundary rules allow. It returns an
// error if Finalize was already called, or if parsing the newly found
// stable prefix fails (that prefix then stays pending).
func (p *IncrementalParser) Append(chunk []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.finalized {
		return errFinalized
	}
	p.pending = append(p.pending, chunk...)
	return p.advance()
}

// advance asks boundary.Advance for a safe freeze point in the pending tail
// and, if one is found, parses only the prefix up to it and splits that
// prefix off into stableBlocks, shifting its ranges into the global
// coordinate space (spec.md §4.4.2). Must be called with mu held.
func (p *IncrementalParser) advance() error {
	cut := boundary.Advance(p.pending)
	if cut <= 0 {
		return nil
	}
	doc, err := parser.Parse(p.pending[:cut], p.opts)
	if err != nil {
		return err
	}
	delta := len(p.stableData)
	p.stableBlocks = append(p.stableBlocks, ir.ShiftBlocks(doc.Blocks, delta)...)
	p.stableData = append(p.stableData, p.pending[:cut]...)
	rest := make([]byte, len(p.pending)-cut)
	copy(rest, p.pending[cut:])
	p.pending = rest
	return nil
}

// Finalize flushes any remaining pending tail into the stable prefix and
// marks the parser closed to further Append calls. Calling it again is a
// no-op that returns the same snapshot.
func (p *IncrementalParser) Finalize() (ir.Document, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.finalized {
		return p.snapshotLocked()
	}
	if len(p.pending) > 0 {
		doc, err := parser.Parse(p.pending, p.opts)
		if err != nil {
			return ir.Document{}, err
		}
		delta := len(p.stableData)
		p.stableBlocks = append(p.stableBlocks, ir.ShiftBlocks(doc.Blocks, delta)...)
		p.stableData = append(p.stableData, p.pending...)
		p.pending = nil
	}
	p.finalized = true
	return p.snapshotLocked()
}

// Snapshot returns the parser's current state without altering it: the
// stable prefix plus a freshly re-parsed rendering of the pending tail, so
// callers always see whatever partial structure the tail currently implies
// (spec.md §4.4.4).
func (p *IncrementalParser) Snapshot() (ir.Document, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.snapshotLocked()
}

func (p *IncrementalParser) snapshotLocked() (ir.Document, error) {
	if len(p.pending) == 0 {
		data := append([]byte(nil), p.stableData...)
		blocks := append([]ir.Block(nil), p.stableBlocks...)
		return ir.Document{Source: data, Blocks: blocks}, nil
	}
	doc, err := parser.Parse(p.pending, p.opts)
	if err != nil {
		return ir.Document{}, err
	}
	delta := len(p.stableData)
	data := append(append([]byte(nil), p.stableData...), p.pending...)
	blocks := append(append([]ir.Block(nil), p.stableBlocks...), ir.ShiftBlocks(doc.Blocks, delta)...)
	return ir.Document{Source: data, Blocks: blocks}, nil
}

// Reset discards all accumulated state and assigns a fresh document id, as
// if a new IncrementalParser had been constructed with the same Options
// (spec.md §4.4.5).
func (p *IncrementalParser) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stableData = nil
	p.stableBlocks = nil
	p.pending = nil
	p.finalized = false
	p.documentID = uuid.New()
}

// PendingContent returns a copy of the bytes not yet folded into the
// stable prefix. It exists for diagnostics and tests, not normal callers.
func (p *IncrementalParser) PendingContent() []byte {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]byte(nil), p.pending...)
}

// StableBlockCount reports how many blocks are currently frozen.
func (p *IncrementalParser) StableBlockCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.stableBlocks)
}
