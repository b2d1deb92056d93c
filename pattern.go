package reducescatter

// runRange describes one contiguous run, in elements, of a p*m-element
// buffer: [Offset, Offset+Len).
type runRange struct{ Offset, Len int }

// twoRunPattern is the typed scatter-pattern builder's output: the
// indexed view over a p*m-element buffer describing "everything outside
// the subtree rooted at root, of width mask" - run 0 is the prefix
// before the subtree, run 1 the suffix after it. Either run may be
// empty (Len == 0); a reader ranges over Runs and skips empty ones.
type twoRunPattern struct {
	Runs [2]runRange
}

// buildScatterPattern is the doubling variant's typed scatter-pattern
// builder (spec CORE §4.2): given a p*m-element buffer split into p
// blocks of m, and a local subtree root/width (root, mask), it builds
// the two-run view of every block NOT in [root, root+mask).
//
//	run 0: offset 0,             length m*root
//	run 1: offset m*(root+mask), length m*max(0, p-root-mask)
//
// It never returns a negative length and tolerates mask values that
// push run 1 past the end of the buffer (an empty run 1, whose offset
// is then m*p, the end of the buffer).
func buildScatterPattern(p, m, root, mask int) twoRunPattern {
	run0Len := m * root
	rem := p - root - mask
	if rem < 0 {
		rem = 0
	}
	run1Len := m * rem
	run1Offset := m*p - run1Len
	return twoRunPattern{Runs: [2]runRange{
		{Offset: 0, Len: run0Len},
		{Offset: run1Offset, Len: run1Len},
	}}
}

// Run is one contiguous segment of a View, a slice into the caller's
// scratch buffer.
type Run[T any] struct{ Data []T }

// View is an ordered list of Runs that together form one logical
// message - the Go-native rendering of an indexed datatype handle
// (indexed_new/commit/destroy in the external contract, §6): a View is
// built from a committed twoRunPattern and consumed by exactly one
// Send, Receive, or IRecv before the step that built it ends.
type View[T any] []Run[T]

// Len returns the total element count across every run.
func (v View[T]) Len() int {
	n := 0
	for _, r := range v {
		n += len(r.Data)
	}
	return n
}

// singleRun builds a one-run View over buf[offset:offset+length].
func singleRun[T any](buf []T, offset, length int) View[T] {
	if length == 0 {
		return nil
	}
	return View[T]{{Data: buf[offset : offset+length]}}
}

// wholeBuffer builds a one-run View over the entire buffer.
func wholeBuffer[T any](buf []T) View[T] {
	return singleRun(buf, 0, len(buf))
}

// patternView renders a twoRunPattern as a View into buf, skipping
// empty runs.
func patternView[T any](buf []T, pat twoRunPattern) View[T] {
	v := make(View[T], 0, 2)
	for _, r := range pat.Runs {
		if r.Len == 0 {
			continue
		}
		v = append(v, Run[T]{Data: buf[r.Offset : r.Offset+r.Len]})
	}
	return v
}

// reduceOverPattern applies op element-wise over each non-empty run of
// pat, reducing in's run into inout's same-offset run: inout <- in (op)
// inout. in and inout must both cover the full p*m buffer the pattern
// was built against.
func reduceOverPattern[T any](op Op[T], in, inout []T, pat twoRunPattern) error {
	for _, r := range pat.Runs {
		if r.Len == 0 {
			continue
		}
		if err := op.Apply(in[r.Offset:r.Offset+r.Len], inout[r.Offset:r.Offset+r.Len]); err != nil {
			return err
		}
	}
	return nil
}

// copyOverPattern copies each non-empty run of pat from src into dst,
// at the same offsets.
func copyOverPattern[T any](dst, src []T, pat twoRunPattern) {
	for _, r := range pat.Runs {
		if r.Len == 0 {
			continue
		}
		copy(dst[r.Offset:r.Offset+r.Len], src[r.Offset:r.Offset+r.Len])
	}
}
