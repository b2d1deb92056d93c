// Package fabric is an in-memory simulation of a reducescatter.Group: p
// simulated ranks run as goroutines, exchanging messages over per-link
// channels instead of a real network transport. It exists because the
// CORE takes the transport as an external dependency (spec CORE §6) -
// this is the one side of that boundary the module needs to actually
// run anything, in tests and in cmd/rsbdemo.
package fabric

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	reducescatter "github.com/joeycumines/go-reducescatter"
)

type linkKey struct {
	src, dst, tag int
}

type packet[T any] struct {
	data []T
}

// Network is the shared message bus a set of simulated ranks exchange
// over. One Network backs one collective call (or one sequence of
// calls sharing the same group); it's safe for concurrent use by every
// rank's goroutine.
type Network[T any] struct {
	mu    sync.Mutex
	links map[linkKey]chan packet[T]
}

// NewNetwork allocates a Network with no participants wired in yet;
// links are created lazily as ranks Send/Receive across them.
func NewNetwork[T any]() *Network[T] {
	return &Network[T]{links: make(map[linkKey]chan packet[T])}
}

func (n *Network[T]) link(key linkKey) chan packet[T] {
	n.mu.Lock()
	defer n.mu.Unlock()
	ch, ok := n.links[key]
	if !ok {
		ch = make(chan packet[T], 4)
		n.links[key] = ch
	}
	return ch
}

// request is the Network's reducescatter.Request implementation: a
// handle on a receive goroutine already running when IRecv returns.
type request struct {
	done chan error
}

func (r *request) Wait(ctx context.Context) error {
	select {
	case err := <-r.done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// group is one simulated rank's view of a Network; it implements
// reducescatter.Group[T].
type group[T any] struct {
	net        *Network[T]
	rank, size int
}

// NewGroup returns the rank-th participant's Group handle into net, out
// of size total ranks.
func NewGroup[T any](net *Network[T], rank, size int) reducescatter.Group[T] {
	return &group[T]{net: net, rank: rank, size: size}
}

func (g *group[T]) Rank() int { return g.rank }
func (g *group[T]) Size() int { return g.size }

func flatten[T any](v reducescatter.View[T]) []T {
	out := make([]T, 0, v.Len())
	for _, r := range v {
		out = append(out, r.Data...)
	}
	return out
}

func scatterInto[T any](v reducescatter.View[T], data []T) {
	off := 0
	for _, r := range v {
		n := len(r.Data)
		copy(r.Data, data[off:off+n])
		off += n
	}
}

func (g *group[T]) Send(ctx context.Context, view reducescatter.View[T], peer, tag int) error {
	ch := g.net.link(linkKey{g.rank, peer, tag})
	select {
	case ch <- packet[T]{data: flatten(view)}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (g *group[T]) Receive(ctx context.Context, view reducescatter.View[T], peer, tag int) error {
	ch := g.net.link(linkKey{peer, g.rank, tag})
	select {
	case p := <-ch:
		scatterInto(view, p.data)
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (g *group[T]) IRecv(ctx context.Context, view reducescatter.View[T], peer, tag int) (reducescatter.Request, error) {
	ch := g.net.link(linkKey{peer, g.rank, tag})
	done := make(chan error, 1)
	go func() {
		select {
		case p := <-ch:
			scatterInto(view, p.data)
			done <- nil
		case <-ctx.Done():
			done <- ctx.Err()
		}
	}()
	return &request{done: done}, nil
}

// Reduce folds every rank's sbuf into rbuf on root, in ascending rank
// order (rank 0's contribution leftmost), via the same point-to-point
// primitives Send/Receive expose - there is no separate wire path for
// the wider collectives. Op.Apply(in, inout) computes inout <- in (op)
// inout, i.e. in ends up as the left operand, so the fold walks src
// from high rank down to low: the highest rank seeds rbuf, and each
// subsequent Apply prepends the next-lower rank's data in front of it.
func (g *group[T]) Reduce(ctx context.Context, sbuf, rbuf []T, op reducescatter.Op[T], root, tag int) error {
	if g.rank != root {
		return g.Send(ctx, wholeBuffer(sbuf), root, tag)
	}
	first := true
	scratch := make([]T, len(rbuf))
	for src := g.size - 1; src >= 0; src-- {
		var data []T
		if src == root {
			data = sbuf
		} else {
			if err := g.Receive(ctx, wholeBuffer(scratch), src, tag); err != nil {
				return fmt.Errorf("fabric: reduce: recv from %d: %w", src, err)
			}
			data = scratch
		}
		if first {
			copy(rbuf, data)
			first = false
			continue
		}
		if err := op.Apply(data, rbuf); err != nil {
			return fmt.Errorf("fabric: reduce: apply: %w", err)
		}
	}
	return nil
}

// Scatter distributes root's sbuf, rcount elements per rank, to every
// rank's rbuf.
func (g *group[T]) Scatter(ctx context.Context, sbuf []T, rcount int, rbuf []T, root, tag int) error {
	if g.rank != root {
		return g.Receive(ctx, wholeBuffer(rbuf), root, tag)
	}
	for dst := 0; dst < g.size; dst++ {
		chunk := sbuf[dst*rcount : (dst+1)*rcount]
		if dst == root {
			copy(rbuf, chunk)
			continue
		}
		if err := g.Send(ctx, wholeBuffer(chunk), dst, tag); err != nil {
			return fmt.Errorf("fabric: scatter: send to %d: %w", dst, err)
		}
	}
	return nil
}

func wholeBuffer[T any](buf []T) reducescatter.View[T] {
	if len(buf) == 0 {
		return nil
	}
	return reducescatter.View[T]{{Data: buf}}
}

// RunCollective launches p simulated ranks, each running fn against its
// own Group handle into a fresh Network, and waits for all of them,
// returning the first error via errgroup.
func RunCollective[T any](ctx context.Context, p int, fn func(ctx context.Context, g reducescatter.Group[T]) error) error {
	net := NewNetwork[T]()
	eg, ctx := errgroup.WithContext(ctx)
	for rank := 0; rank < p; rank++ {
		rank := rank
		eg.Go(func() error {
			return fn(ctx, NewGroup[T](net, rank, p))
		})
	}
	return eg.Wait()
}
