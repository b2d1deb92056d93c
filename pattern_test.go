package reducescatter

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildScatterPattern(t *testing.T) {
	tests := []struct {
		name               string
		p, m, root, mask   int
		wantRun0, wantRun1 runRange
	}{
		{
			name: "root 0, mask 1 of 4: everything but block 0",
			p:    4, m: 2, root: 0, mask: 1,
			wantRun0: runRange{Offset: 0, Len: 0},
			wantRun1: runRange{Offset: 2, Len: 6},
		},
		{
			name: "root 2, mask 2 of 4: blocks 0-1 then nothing",
			p:    4, m: 2, root: 2, mask: 2,
			wantRun0: runRange{Offset: 0, Len: 4},
			wantRun1: runRange{Offset: 8, Len: 0},
		},
		{
			name: "mask overruns p: run1 empty rather than negative",
			p:    3, m: 1, root: 0, mask: 4,
			wantRun0: runRange{Offset: 0, Len: 0},
			wantRun1: runRange{Offset: 3, Len: 0},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pat := buildScatterPattern(tt.p, tt.m, tt.root, tt.mask)
			assert.Equal(t, tt.wantRun0, pat.Runs[0])
			assert.Equal(t, tt.wantRun1, pat.Runs[1])
		})
	}
}

func TestPatternViewSkipsEmptyRuns(t *testing.T) {
	buf := []int{0, 1, 2, 3, 4, 5}
	pat := twoRunPattern{Runs: [2]runRange{{Offset: 0, Len: 0}, {Offset: 2, Len: 4}}}
	view := patternView(buf, pat)
	assert.Equal(t, 1, len(view))
	assert.Equal(t, []int{2, 3, 4, 5}, view[0].Data)
	assert.Equal(t, 4, view.Len())
}

func TestSingleRunEmptyIsNil(t *testing.T) {
	buf := []int{1, 2, 3}
	assert.Nil(t, singleRun(buf, 0, 0))
	assert.Equal(t, View[int]{{Data: buf}}, wholeBuffer(buf))
}

func TestReduceAndCopyOverPattern(t *testing.T) {
	in := []int{10, 20, 30, 40}
	inout := []int{1, 2, 3, 4}
	pat := twoRunPattern{Runs: [2]runRange{{Offset: 0, Len: 2}, {Offset: 2, Len: 2}}}

	err := reduceOverPattern(SumOp[int](), in, inout, pat)
	assert.NoError(t, err)
	assert.Equal(t, []int{11, 22, 33, 44}, inout)

	dst := make([]int, 4)
	copyOverPattern(dst, inout, twoRunPattern{Runs: [2]runRange{{Offset: 0, Len: 4}}})
	assert.Equal(t, inout, dst)
}
