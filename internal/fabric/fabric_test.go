package fabric

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	reducescatter "github.com/joeycumines/go-reducescatter"
)

func TestSendReceiveRoundTrip(t *testing.T) {
	net := NewNetwork[int]()
	g0 := NewGroup[int](net, 0, 2)
	g1 := NewGroup[int](net, 1, 2)

	sent := []int{1, 2, 3}
	recv := make([]int, 3)

	errCh := make(chan error, 1)
	go func() {
		errCh <- g0.Send(context.Background(), wholeBuffer(sent), 1, 42)
	}()

	require.NoError(t, g1.Receive(context.Background(), wholeBuffer(recv), 0, 42))
	require.NoError(t, <-errCh)
	assert.Equal(t, sent, recv)
}

func TestIRecvCompletesAfterSend(t *testing.T) {
	net := NewNetwork[int]()
	g0 := NewGroup[int](net, 0, 2)
	g1 := NewGroup[int](net, 1, 2)

	recv := make([]int, 2)
	req, err := g1.IRecv(context.Background(), wholeBuffer(recv), 0, 7)
	require.NoError(t, err)

	require.NoError(t, g0.Send(context.Background(), wholeBuffer([]int{9, 10}), 1, 7))
	require.NoError(t, req.Wait(context.Background()))
	assert.Equal(t, []int{9, 10}, recv)
}

func TestReduceScatterRoundTripViaRunCollective(t *testing.T) {
	const p, m = 4, 2
	sbufs := make([][]int, p)
	for r := 0; r < p; r++ {
		row := make([]int, p*m)
		for i := range row {
			row[i] = r + i
		}
		sbufs[r] = row
	}
	want := make([]int, p*m)
	for r := 0; r < p; r++ {
		for i := range want {
			want[i] += sbufs[r][i]
		}
	}

	results := make([][]int, p)
	err := RunCollective[int](context.Background(), p, func(ctx context.Context, g reducescatter.Group[int]) error {
		rank := g.Rank()
		rbuf := make([]int, m)
		sum := make([]int, m*p)
		if g.Rank() == 0 {
			if err := g.Reduce(ctx, sbufs[rank], sum, reducescatter.SumOp[int](), 0, 1); err != nil {
				return err
			}
		} else {
			if err := g.Reduce(ctx, sbufs[rank], nil, reducescatter.SumOp[int](), 0, 1); err != nil {
				return err
			}
		}
		if g.Rank() == 0 {
			if err := g.Scatter(ctx, sum, m, rbuf, 0, 1); err != nil {
				return err
			}
		} else {
			if err := g.Scatter(ctx, nil, m, rbuf, 0, 1); err != nil {
				return err
			}
		}
		results[rank] = rbuf
		return nil
	})
	require.NoError(t, err)
	for rank := 0; rank < p; rank++ {
		assert.Equal(t, want[rank*m:(rank+1)*m], results[rank])
	}
}
