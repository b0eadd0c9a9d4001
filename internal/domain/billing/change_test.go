package billing

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sangkips/posbilling/internal/domain/entity"
)

func till(counts map[int64]int) []entity.Denomination {
	out := make([]entity.Denomination, 0, len(counts))
	for value, count := range counts {
		out = append(out, entity.Denomination{Value: value, AvailableCount: count})
	}
	return SortDenominations(out)
}

func unlimited() []entity.Denomination {
	counts := make(map[int64]int, len(DefaultDenominations))
	for _, v := range DefaultDenominations {
		counts[v] = math.MaxInt32
	}
	return till(counts)
}

func TestMakeChangeCanonical(t *testing.T) {
	change := MakeChange(1288, unlimited())

	// 1000 + 250 + 20 + 10 + 5 + 2 + 1
	assert.Equal(t, map[int64]int{500: 2, 50: 5, 20: 1, 10: 1, 5: 1, 2: 1, 1: 1}, change.Allocation)
	assert.Equal(t, int64(0), change.Remaining)
	assert.Equal(t, int64(1288), change.Given())
}

func TestMakeChangeScarcity(t *testing.T) {
	change := MakeChange(40, till(map[int64]int{50: 0, 20: 1, 10: 0}))

	assert.Equal(t, map[int64]int{20: 1}, change.Allocation)
	assert.Equal(t, int64(20), change.Remaining)
	assert.Equal(t, int64(20), change.Given())
}

func TestMakeChangeGreedyMissesFeasibleCombination(t *testing.T) {
	change := MakeChange(60, till(map[int64]int{50: 1, 20: 3}))

	assert.Equal(t, map[int64]int{50: 1}, change.Allocation)
	assert.Equal(t, int64(10), change.Remaining)
}

func TestMakeChangeZeroBalance(t *testing.T) {
	change := MakeChange(0, unlimited())

	assert.Empty(t, change.Allocation)
	assert.Equal(t, int64(0), change.Remaining)
	assert.Zero(t, change.Given())
}

func TestMakeChangeConservesBalance(t *testing.T) {
	denoms := till(map[int64]int{500: 1, 50: 3, 20: 2, 10: 0, 5: 4, 2: 1, 1: 2})

	for balance := int64(0); balance <= 1200; balance++ {
		change := MakeChange(balance, denoms)
		require.GreaterOrEqual(t, change.Remaining, int64(0), "balance %d", balance)
		require.Equal(t, balance, change.Given()+change.Remaining, "balance %d", balance)
		for value, count := range change.Allocation {
			require.Positive(t, count)
			for _, d := range denoms {
				if d.Value == value {
					require.LessOrEqual(t, count, d.AvailableCount, "balance %d value %d", balance, value)
				}
			}
		}
	}
}

func TestMakeChangeDoesNotMutateTill(t *testing.T) {
	denoms := till(map[int64]int{500: 2, 50: 2, 1: 10})
	before := make([]entity.Denomination, len(denoms))
	copy(before, denoms)

	MakeChange(613, denoms)

	assert.Equal(t, before, denoms)
}

func TestSortDenominations(t *testing.T) {
	in := []entity.Denomination{{Value: 5}, {Value: 500}, {Value: 1}, {Value: 50}}

	out := SortDenominations(in)

	assert.Equal(t, []int64{500, 50, 5, 1}, []int64{out[0].Value, out[1].Value, out[2].Value, out[3].Value})
	assert.Equal(t, int64(5), in[0].Value)
}

func TestApplyChange(t *testing.T) {
	denoms := till(map[int64]int{500: 3, 50: 6, 20: 2, 10: 4})

	updated, err := ApplyChange(denoms, map[int64]int{500: 2, 20: 1})
	require.NoError(t, err)

	got := map[int64]int{}
	for _, d := range updated {
		got[d.Value] = d.AvailableCount
	}
	assert.Equal(t, map[int64]int{500: 1, 50: 6, 20: 1, 10: 4}, got)
	assert.Equal(t, 3, denoms[0].AvailableCount)
}

func TestApplyChangeRejectsOverdraw(t *testing.T) {
	denoms := till(map[int64]int{50: 1})

	_, err := ApplyChange(denoms, map[int64]int{50: 2})
	assert.Error(t, err)

	_, err = ApplyChange(denoms, map[int64]int{7: 1})
	assert.Error(t, err)
}
