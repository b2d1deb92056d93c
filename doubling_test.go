package reducescatter

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDoublingSingleRankCopiesWithoutTransport(t *testing.T) {
	rbuf := make([]int, 3)
	group := unreachableGroup[int]{rank: 0, size: 1}

	err := Doubling(context.Background(), FromSlice([]int{4, 5, 6}), rbuf, group, SumOp[int]())
	require.NoError(t, err)
	assert.Equal(t, []int{4, 5, 6}, rbuf)
}

func TestDoublingZeroCountIsNoop(t *testing.T) {
	group := unreachableGroup[int]{rank: 0, size: 4}
	err := Doubling(context.Background(), FromSlice(nil), nil, group, SumOp[int]())
	require.NoError(t, err)
}
