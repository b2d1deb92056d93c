package reducescatter

import (
	"context"
	"fmt"
)

// SendRecv is the synchronous pairwise-exchange primitive (spec CORE
// §4.3): post a nonblocking receive, then an ordered send, then wait on
// the receive. Both endpoints name the same peer on both sides. There
// is no cancellation beyond ctx; on transport failure the first error
// is returned and wrapped in ErrTransportError.
func SendRecv[T any](ctx context.Context, group Group[T], sview View[T], speer, stag int, rview View[T], rpeer, rtag int) error {
	req, err := group.IRecv(ctx, rview, rpeer, rtag)
	if err != nil {
		return fmt.Errorf("reducescatter: %w: irecv from %d: %v", ErrTransportError, rpeer, err)
	}
	if err := group.Send(ctx, sview, speer, stag); err != nil {
		return fmt.Errorf("reducescatter: %w: send to %d: %v", ErrTransportError, speer, err)
	}
	if err := req.Wait(ctx); err != nil {
		return fmt.Errorf("reducescatter: %w: wait on recv from %d: %v", ErrTransportError, rpeer, err)
	}
	return nil
}
