package reducescatter

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// Basic implements reduce-then-scatter (spec CORE §4.4): every rank
// calls the group's Reduce collective into a scratch buffer on rank 0,
// then the group's Scatter distributes it. Correctness for
// non-commutative operators is delegated entirely to Reduce, which the
// Group contract requires to be order-preserving.
//
// p*m == 0, or a single-rank group, returns success with no
// communication. Non-root ranks never allocate; an allocation failure
// on rank 0 is ErrOutOfResource. If Reduce fails, Scatter is skipped
// and the scratch is freed before the error returns.
func Basic[T any](ctx context.Context, sbuf Input[T], rbuf []T, group Group[T], op Op[T], opts ...Option[T]) error {
	cfg := resolveOptions(opts)
	p := group.Size()
	rank := group.Rank()
	callID := uuid.NewString()

	if p == 0 {
		return nil
	}

	input, m := sbuf.resolve(rbuf, p)
	if m == 0 {
		return nil
	}
	if p < 2 {
		copy(rbuf[:m], input[:m])
		return nil
	}

	var scratchView []T
	if rank == 0 {
		buf, err := newScratchBuffer[T](cfg.allocator, cfg.datatype, m*p)
		if err != nil {
			cfg.logger.Debug().Str("call_id", callID).Err(err).Msg("basic: scratch allocation failed")
			return err
		}
		defer cfg.allocator.Release(buf.raw)
		scratchView = buf.view
	}

	cfg.logger.Debug().Str("call_id", callID).Int("rank", rank).Int("p", p).Int("m", m).Msg("basic: reduce")
	if err := group.Reduce(ctx, input[:m*p], scratchView, op, 0, TagReduceScatterBlock); err != nil {
		return fmt.Errorf("reducescatter: %w: reduce: %v", ErrTransportError, err)
	}

	cfg.logger.Debug().Str("call_id", callID).Int("rank", rank).Msg("basic: scatter")
	if err := group.Scatter(ctx, scratchView, m, rbuf[:m], 0, TagReduceScatterBlock); err != nil {
		return fmt.Errorf("reducescatter: %w: scatter: %v", ErrTransportError, err)
	}

	return nil
}
