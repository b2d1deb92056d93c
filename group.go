package reducescatter

import "context"

// TagReduceScatterBlock is the reserved point-to-point tag the CORE
// uses for every message it sends, isolating its traffic from any other
// traffic sharing the same Group.
const TagReduceScatterBlock = 0x5242 // "RB"

// Request is a pending, previously-posted receive; Wait blocks until it
// completes or ctx is done.
type Request interface {
	Wait(ctx context.Context) error
}

// Group is the narrow rank-group/transport contract the algorithms
// consume (spec CORE §6). Every participant calls the same algorithm
// with the same p (Size), in rank order; Send/Receive/IRecv+Wait are
// the point-to-point primitives the doubling and halving variants
// build their exchanges from, while Reduce and Scatter are the wider
// collectives the basic variant delegates to.
//
// All methods are blocking except IRecv, which posts a receive and
// returns immediately; Wait on the returned Request blocks. There is no
// cancellation beyond ctx: a stuck Group hangs the caller, matching the
// host fabric's semantics.
type Group[T any] interface {
	Rank() int
	Size() int

	Send(ctx context.Context, view View[T], peer, tag int) error
	Receive(ctx context.Context, view View[T], peer, tag int) error
	IRecv(ctx context.Context, view View[T], peer, tag int) (Request, error)

	// Reduce reduces sbuf (length count) element-wise with op into
	// rbuf (also length count, ignored on non-root ranks), landing
	// the result on rank root only.
	Reduce(ctx context.Context, sbuf []T, rbuf []T, op Op[T], root, tag int) error

	// Scatter distributes sbuf (length rcount*Size(), significant on
	// rank root only) into each rank's rbuf (length rcount), the
	// i-th rcount-block going to rank i.
	Scatter(ctx context.Context, sbuf []T, rcount int, rbuf []T, root, tag int) error
}

// Input represents a reduce-scatter-block call's send-side argument: a
// plain slice of length p*m, or the InPlace sentinel meaning "read the
// input from the caller's output buffer", per the external IN_PLACE
// contract (spec CORE §6).
//
// Under InPlace, sbuf and rbuf alias the same memory, so rbuf must
// itself hold the full p*m-element input vector on entry - not just
// the m-element result - exactly as the source requires of an
// in-place reduce-scatter-block's recvbuf. On return, only rbuf[0:m]
// is defined; the rest of rbuf is left as whatever it held on entry.
type Input[T any] struct {
	buf     []T
	inPlace bool
}

// FromSlice wraps a plain send buffer of length p*m.
func FromSlice[T any](buf []T) Input[T] { return Input[T]{buf: buf} }

// InPlace returns the IN_PLACE sentinel: the call will read its p*m
// input from rbuf instead of a separate send buffer.
func InPlace[T any]() Input[T] { return Input[T]{inPlace: true} }

// resolve returns the full p*m-element source vector to read from, and
// the per-rank block size m. Under InPlace, rbuf carries the full
// input (m = len(rbuf)/p); otherwise rbuf carries only the m-element
// output block, and m is simply len(rbuf).
func (in Input[T]) resolve(rbuf []T, p int) (full []T, m int) {
	if in.inPlace {
		if p == 0 {
			return rbuf, 0
		}
		return rbuf, len(rbuf) / p
	}
	return in.buf, len(rbuf)
}
