package reducescatter

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSumOp(t *testing.T) {
	in := []int{1, 2, 3}
	inout := []int{10, 20, 30}
	assert.NoError(t, SumOp[int]().Apply(in, inout))
	assert.Equal(t, []int{11, 22, 33}, inout)
	assert.True(t, SumOp[int]().Commutative)
}

func TestMaxMinOp(t *testing.T) {
	in := []int{5, 1, 9}
	inout := []int{3, 8, 2}

	maxInout := append([]int(nil), inout...)
	assert.NoError(t, MaxOp[int]().Apply(in, maxInout))
	assert.Equal(t, []int{5, 8, 9}, maxInout)

	minInout := append([]int(nil), inout...)
	assert.NoError(t, MinOp[int]().Apply(in, minInout))
	assert.Equal(t, []int{3, 1, 2}, minInout)
}

func TestXorOp(t *testing.T) {
	in := []uint8{0b1010, 0b0011}
	inout := []uint8{0b0110, 0b0101}
	assert.NoError(t, XorOp[uint8]().Apply(in, inout))
	assert.Equal(t, []uint8{0b1100, 0b0110}, inout)
}

func TestConcatOpIsNotCommutative(t *testing.T) {
	op := ConcatOp()
	assert.False(t, op.Commutative)

	inout := []string{"b"}
	assert.NoError(t, op.Apply([]string{"a"}, inout))
	assert.Equal(t, []string{"ab"}, inout)
}
