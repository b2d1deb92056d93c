package reducescatter

import (
	"fmt"
	"sync/atomic"
)

// Datatype describes the layout of a typed buffer: how many elements of
// scratch to allocate (span) for a given logical element count, and how
// far into that allocation the first logical element sits (gap). A
// contiguous Go slice never needs a gap, but the algorithms preserve the
// allocation/view distinction from the source engine's span/gap idiom
// (see DESIGN.md) so a Datatype that does need one - Padded, below -
// plugs in without touching algorithm code.
type Datatype[T any] interface {
	// Span returns (span, gap): allocate span elements, then the
	// first of count logical elements lives at raw[gap].
	Span(count int) (span, gap int)
}

// Contiguous is the default Datatype: no padding, span == count.
type Contiguous[T any] struct{}

func (Contiguous[T]) Span(count int) (span, gap int) { return count, 0 }

// Padded models a datatype whose engine reports a leading gap - e.g. a
// derived type whose extent doesn't start at its lower bound. Exercises
// the base-offset-minus-gap idiom end to end; production callers have
// no reason to use anything but Contiguous.
type Padded[T any] struct{ Gap int }

func (p Padded[T]) Span(count int) (span, gap int) { return count + p.Gap, p.Gap }

// scratchBuffer owns one allocation (raw) and exposes a typed view into
// it (view = raw[gap : gap+count]), per the "allocation and typed base
// are two distinct values with distinct lifetimes" design note.
type scratchBuffer[T any] struct {
	raw  []T
	view []T
}

func newScratchBuffer[T any](alloc Allocator[T], dt Datatype[T], count int) (*scratchBuffer[T], error) {
	span, gap := dt.Span(count)
	if span < 0 || gap < 0 || gap+count > span {
		return nil, fmt.Errorf("reducescatter: %w: invalid span/gap (span=%d gap=%d count=%d)", ErrDatatypeError, span, gap, count)
	}
	raw, err := alloc.Allocate(span)
	if err != nil {
		return nil, fmt.Errorf("reducescatter: %w: %v", ErrOutOfResource, err)
	}
	return &scratchBuffer[T]{raw: raw, view: raw[gap : gap+count]}, nil
}

// Allocator supplies and releases scratch storage. The default simply
// wraps make/drop (Go is garbage collected - Release is a no-op), but
// tests inject a counting Allocator to verify every Allocate is matched
// by a Release on every exit path, mirroring the source's malloc/free
// discipline.
type Allocator[T any] interface {
	Allocate(n int) ([]T, error)
	Release(buf []T)
}

type runtimeAllocator[T any] struct{}

func (runtimeAllocator[T]) Allocate(n int) ([]T, error) { return make([]T, n), nil }
func (runtimeAllocator[T]) Release([]T)                 {}

// NewAllocator returns the default, make-backed Allocator.
func NewAllocator[T any]() Allocator[T] { return runtimeAllocator[T]{} }

// CommitToken identifies one committed indexed pattern, returned by
// DatatypeEngine.Commit and consumed by DatatypeEngine.Destroy.
type CommitToken struct{ id int64 }

// DatatypeEngine models the indexed-datatype lifecycle the doubling
// variant drives once per algorithmic step (commit before use, destroy
// before the next step or on error): see pattern.go. The default engine
// always succeeds; FailAfter lets tests inject a DATATYPE_ERROR at a
// chosen call and then verifies, via Live, that every prior commit was
// destroyed on the error-exit path.
type DatatypeEngine struct {
	calls     atomic.Int64
	live      atomic.Int64
	next      atomic.Int64
	FailAfter int64 // 0 disables; Commit fails on every call after the FailAfter'th
}

// NewDatatypeEngine returns an engine that never fails.
func NewDatatypeEngine() *DatatypeEngine { return &DatatypeEngine{} }

// Commit allocates and commits a new indexed-datatype handle.
func (e *DatatypeEngine) Commit() (CommitToken, error) {
	n := e.calls.Add(1)
	if e.FailAfter > 0 && n > e.FailAfter {
		return CommitToken{}, fmt.Errorf("reducescatter: %w: commit rejected (call %d)", ErrDatatypeError, n)
	}
	id := e.next.Add(1)
	e.live.Add(1)
	return CommitToken{id: id}, nil
}

// Destroy releases a committed handle. Destroying the zero CommitToken
// is a no-op, so cleanup code can destroy unconditionally.
func (e *DatatypeEngine) Destroy(t CommitToken) {
	if t.id == 0 {
		return
	}
	e.live.Add(-1)
}

// Live reports the number of committed-but-not-destroyed handles.
// Tests use it to assert the cleanup path leaves no handle live.
func (e *DatatypeEngine) Live() int64 { return e.live.Load() }
