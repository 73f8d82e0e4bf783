package incremental

import "context"

// PumpContext drains next -- called repeatedly until it reports no more
// chunks -- Appending each chunk in turn, then Finalizes. It exists for
// callers streaming text off an LLM response or a socket who would
// otherwise hand-roll the same Append/Finalize loop; ctx is checked between
// chunks so a long-running stream can be abandoned cooperatively
// (SPEC_FULL.md §3), the same pattern cmd/poc/main.go used a plain
// for/select loop for around its own reader, generalized here into a
// reusable helper.
func (p *IncrementalParser) PumpContext(ctx context.Context, next func() ([]byte, bool)) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		chunk, ok := next()
		if !ok {
			_, err := p.Finalize()
			return err
		}
		if err := p.Append(chunk); err != nil {
			return err
		}
	}
}
