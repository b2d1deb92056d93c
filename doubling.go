package reducescatter

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// Doubling implements recursive distance doubling (spec CORE §4.5):
// order-preserving, so valid for both commutative and non-commutative
// operators, at any group size.
//
// At step s (mask = 2^s, s = 0..ceil(log2 p)-1), rank r exchanges with
// r^mask the complement of its own mask-wide subtree (built by
// buildScatterPattern) and reduces the incoming complement into its
// local buffer. When p is not a power of two, some ranks' partners at
// some steps fall outside the group; a recursive-halving search inside
// the step forwards the partial result to those ranks instead (see the
// inner loop below). After the final step, rank r's m-element block at
// offset r*m holds the fully reduced result.
//
// Order preservation: the operand whose subtree has the lower root
// must be the left operand. If the operator is commutative, or the
// remote subtree's root is lower than the local one, the incoming data
// is already "older" and is reduced in place (tmprecv (op) tmpbuf ->
// tmpbuf); otherwise local data is older, so the reduction runs the
// other way and the result is copied back into tmpbuf.
func Doubling[T any](ctx context.Context, sbuf Input[T], rbuf []T, group Group[T], op Op[T], opts ...Option[T]) error {
	cfg := resolveOptions(opts)
	p := group.Size()
	rank := group.Rank()
	input, m := sbuf.resolve(rbuf, p)
	callID := uuid.NewString()
	log := cfg.logger.With().Str("call_id", callID).Str("algorithm", "doubling").Int("rank", rank).Logger()

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

	for mask := 1; mask < p; mask <<= 1 {
		remote := rank ^ mask
		curRoot := RoundDown(rank, mask)
		remoteRoot := RoundDown(remote, mask)

		sendPat := buildScatterPattern(p, m, curRoot, mask)
		recvPat := buildScatterPattern(p, m, remoteRoot, mask)

		sendTok, err := cfg.engine.Commit()
		if err != nil {
			return fmt.Errorf("reducescatter: %w: commit send pattern: %v", ErrDatatypeError, err)
		}
		guard.trackToken(sendTok)
		recvTok, err := cfg.engine.Commit()
		if err != nil {
			return fmt.Errorf("reducescatter: %w: commit recv pattern: %v", ErrDatatypeError, err)
		}
		guard.trackToken(recvTok)

		log.Debug().Int("mask", mask).Int("remote", remote).Int("cur_root", curRoot).Int("remote_root", remoteRoot).Msg("doubling: step")

		blockReceived := false
		if remote < p {
			if err := SendRecv(ctx, group,
				patternView(tmpbuf, sendPat), remote, TagReduceScatterBlock,
				patternView(tmprecv, recvPat), remote, TagReduceScatterBlock,
			); err != nil {
				return err
			}
			blockReceived = true
		}

		// Non-power-of-two: ranks whose partner at this step lies
		// outside the group forward/receive their partial via an
		// inner recursive-halving search confined to the subtree
		// that still needs the result.
		if remoteRoot+mask > p {
			nprocsAllData := p - curRoot - mask
			for rhalf := mask >> 1; rhalf > 0; rhalf >>= 1 {
				searchRemote := rank ^ rhalf
				treeRoot := RoundDown(rank, rhalf<<1)

				switch {
				case searchRemote > rank && rank < treeRoot+nprocsAllData && searchRemote >= treeRoot+nprocsAllData:
					if err := group.Send(ctx, patternView(tmprecv, recvPat), searchRemote, TagReduceScatterBlock); err != nil {
						return fmt.Errorf("reducescatter: %w: forward send to %d: %v", ErrTransportError, searchRemote, err)
					}
				case searchRemote < rank && searchRemote < treeRoot+nprocsAllData && rank >= treeRoot+nprocsAllData:
					if err := group.Receive(ctx, patternView(tmprecv, recvPat), searchRemote, TagReduceScatterBlock); err != nil {
						return fmt.Errorf("reducescatter: %w: forward recv from %d: %v", ErrTransportError, searchRemote, err)
					}
					blockReceived = true
				}
			}
		}

		if blockReceived {
			if op.Commutative || remoteRoot < curRoot {
				if err := reduceOverPattern(op, tmprecv, tmpbuf, recvPat); err != nil {
					return fmt.Errorf("reducescatter: %w: %v", ErrOperatorError, err)
				}
			} else {
				if err := reduceOverPattern(op, tmpbuf, tmprecv, recvPat); err != nil {
					return fmt.Errorf("reducescatter: %w: %v", ErrOperatorError, err)
				}
				copyOverPattern(tmpbuf, tmprecv, recvPat)
			}
		}

		cfg.engine.Destroy(sendTok)
		guard.untrackToken(sendTok)
		cfg.engine.Destroy(recvTok)
		guard.untrackToken(recvTok)
	}

	copy(rbuf[:m], tmpbuf[rank*m:(rank+1)*m])
	return nil
}
