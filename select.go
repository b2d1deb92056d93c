package reducescatter

import "context"

// Select chooses an algorithm the way the source's module-selection
// framework would for this operation shape (spec CORE §7, out of scope
// in full - this is the one explicit dispatch rule the CORE keeps):
// a trivial call (p < 2 or rcount == 0) gets Basic whatever the
// operator; otherwise a non-commutative operator needs Doubling, since Basic's
// correctness there depends on the Group's Reduce being order
// preserving and Halving cannot be order preserving at all; otherwise
// Halving's lower bandwidth wins once there's more than one peer.
func Select[T any](p, rcount int, op Op[T]) Algorithm {
	if p < 2 || rcount == 0 {
		return AlgorithmBasic
	}
	if !op.Commutative {
		return AlgorithmDoubling
	}
	return AlgorithmHalving
}

// ReduceScatterBlock is the external entry point (spec CORE §6): every
// rank in group calls it with the same p (group.Size()), the same
// rcount (len(rbuf), or len(rbuf)/p under InPlace), and an operator
// whose Commutative flag agrees group-wide. It dispatches to Basic,
// Doubling, or Halving per WithAlgorithm, or per Select when the
// algorithm is left at AlgorithmAuto (the default).
func ReduceScatterBlock[T any](ctx context.Context, sbuf Input[T], rbuf []T, group Group[T], op Op[T], opts ...Option[T]) error {
	cfg := resolveOptions(opts)
	algorithm := cfg.algorithm
	if algorithm == AlgorithmAuto {
		_, m := sbuf.resolve(rbuf, group.Size())
		algorithm = Select(group.Size(), m, op)
	}

	switch algorithm {
	case AlgorithmBasic:
		return Basic(ctx, sbuf, rbuf, group, op, opts...)
	case AlgorithmDoubling:
		return Doubling(ctx, sbuf, rbuf, group, op, opts...)
	case AlgorithmHalving:
		return Halving(ctx, sbuf, rbuf, group, op, opts...)
	default:
		return Doubling(ctx, sbuf, rbuf, group, op, opts...)
	}
}
