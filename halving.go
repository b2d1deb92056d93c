package reducescatter

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// Halving implements recursive vector halving (spec CORE §4.6):
// commutative operators only, lower bandwidth than Doubling for large
// messages. Precondition: op.Commutative. A caller that invokes Halving
// with a non-commutative operator gets a correct answer anyway -
// Halving falls back to Basic, which is order-preserving - rather than
// an error, matching the "Non-commutative rejection" property (spec
// CORE §8).
//
// Phase 1 folds the p physical ranks down to p' = NextPow2LEQ(p)
// virtual ranks: even ranks in the first 2*(p-p') physical ranks send
// their whole buffer to their odd neighbor and drop out; the neighbor
// reduces it in and is renumbered to a virtual rank.
//
// Phase 2 runs recursive halving over the p' virtual ranks: each step
// halves the window of virtual block indices a rank is responsible
// for, exchanging the other half with its virtual peer and reducing
// the received half in. RangeSum translates virtual block-index ranges
// to physical element counts, since folded-in virtual ranks carry two
// physical blocks' worth of data.
//
// Phase 3 restores the folded-out even ranks: the odd partner sends
// back the even rank's own final block.
func Halving[T any](ctx context.Context, sbuf Input[T], rbuf []T, group Group[T], op Op[T], opts ...Option[T]) error {
	if !op.Commutative {
		return Basic(ctx, sbuf, rbuf, group, op, opts...)
	}

	cfg := resolveOptions(opts)
	p := group.Size()
	rank := group.Rank()
	input, m := sbuf.resolve(rbuf, p)
	callID := uuid.NewString()
	log := cfg.logger.With().Str("call_id", callID).Str("algorithm", "halving").Int("rank", rank).Logger()

	if m == 0 {
		return nil
	}
	if p < 2 {
		copy(rbuf[:m], input[:m])
		return nil
	}

	total := m * p

	tmpbufAlloc, err := newScratchBuffer[T](cfg.allocator, cfg.datatype, total)
	if err != nil {
		return err
	}
	tmprecvAlloc, err := newScratchBuffer[T](cfg.allocator, cfg.datatype, total)
	if err != nil {
		cfg.allocator.Release(tmpbufAlloc.raw)
		return err
	}

	guard := newCleanupGuard[T](cfg.allocator, cfg.engine)
	guard.trackBuffer(tmpbufAlloc.raw)
	guard.trackBuffer(tmprecvAlloc.raw)
	defer guard.release()

	tmpbuf := tmpbufAlloc.view
	tmprecv := tmprecvAlloc.view
	copy(tmpbuf, input[:total])

	pPow2 := NextPow2LEQ(p)
	nprocsRem := p - pPow2

	vrank := -1
	if rank < 2*nprocsRem {
		if rank%2 == 0 {
			if err := group.Send(ctx, wholeBuffer(tmpbuf), rank+1, TagReduceScatterBlock); err != nil {
				return fmt.Errorf("reducescatter: %w: fold send to %d: %v", ErrTransportError, rank+1, err)
			}
		} else {
			if err := group.Receive(ctx, wholeBuffer(tmprecv), rank-1, TagReduceScatterBlock); err != nil {
				return fmt.Errorf("reducescatter: %w: fold recv from %d: %v", ErrTransportError, rank-1, err)
			}
			if err := op.Apply(tmprecv, tmpbuf); err != nil {
				return fmt.Errorf("reducescatter: %w: %v", ErrOperatorError, err)
			}
			vrank = rank / 2
		}
	} else {
		vrank = rank - nprocsRem
	}

	if vrank != -1 {
		sendIndex, recvIndex, lastIndex := 0, 0, pPow2

		for mask := pPow2 >> 1; mask > 0; mask >>= 1 {
			vpeer := vrank ^ mask
			peer := vpeer + nprocsRem
			if vpeer < nprocsRem {
				peer = vpeer*2 + 1
			}

			var sendCount, recvCount int
			if vrank < vpeer {
				sendIndex = recvIndex + mask
				sendCount = m * RangeSum(sendIndex, lastIndex-1, nprocsRem-1)
				recvCount = m * RangeSum(recvIndex, sendIndex-1, nprocsRem-1)
			} else {
				recvIndex = sendIndex + mask
				sendCount = m * RangeSum(sendIndex, recvIndex-1, nprocsRem-1)
				recvCount = m * RangeSum(recvIndex, lastIndex-1, nprocsRem-1)
			}

			rdispl := m * blockDispl(recvIndex, nprocsRem)
			sdispl := m * blockDispl(sendIndex, nprocsRem)

			log.Debug().Int("mask", mask).Int("vpeer", vpeer).Int("peer", peer).
				Int("send_count", sendCount).Int("recv_count", recvCount).Msg("halving: step")

			var req Request
			if recvCount > 0 {
				req, err = group.IRecv(ctx, singleRun(tmprecv, rdispl, recvCount), peer, TagReduceScatterBlock)
				if err != nil {
					return fmt.Errorf("reducescatter: %w: irecv from %d: %v", ErrTransportError, peer, err)
				}
			}
			if sendCount > 0 {
				if err := group.Send(ctx, singleRun(tmpbuf, sdispl, sendCount), peer, TagReduceScatterBlock); err != nil {
					return fmt.Errorf("reducescatter: %w: send to %d: %v", ErrTransportError, peer, err)
				}
			}
			if recvCount > 0 {
				if err := req.Wait(ctx); err != nil {
					return fmt.Errorf("reducescatter: %w: wait on recv from %d: %v", ErrTransportError, peer, err)
				}
				if err := op.Apply(tmprecv[rdispl:rdispl+recvCount], tmpbuf[rdispl:rdispl+recvCount]); err != nil {
					return fmt.Errorf("reducescatter: %w: %v", ErrOperatorError, err)
				}
			}

			sendIndex = recvIndex
			lastIndex = recvIndex + mask
		}

		copy(rbuf[:m], tmpbuf[rank*m:(rank+1)*m])
	}

	if rank < 2*nprocsRem {
		if rank%2 == 0 {
			if err := group.Receive(ctx, singleRun(rbuf, 0, m), rank+1, TagReduceScatterBlock); err != nil {
				return fmt.Errorf("reducescatter: %w: restore recv from %d: %v", ErrTransportError, rank+1, err)
			}
		} else {
			if err := group.Send(ctx, singleRun(tmpbuf, (rank-1)*m, m), rank-1, TagReduceScatterBlock); err != nil {
				return fmt.Errorf("reducescatter: %w: restore send to %d: %v", ErrTransportError, rank-1, err)
			}
		}
	}

	return nil
}

// blockDispl translates a virtual block index to its physical element
// displacement, in units of m: the first nprocsRem virtual blocks are
// double-wide (they absorbed a folded-out even neighbor), so their
// physical displacement is 2*idx; the rest are single-wide, displaced
// by nprocsRem+idx.
func blockDispl(idx, nprocsRem int) int {
	if idx <= nprocsRem-1 {
		return 2 * idx
	}
	return nprocsRem + idx
}
