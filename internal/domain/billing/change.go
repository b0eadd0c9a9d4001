package billing

import (
	"fmt"
	"sort"

	"github.com/sangkips/posbilling/internal/domain/entity"
)

// DefaultDenominations is the till layout a new shop starts with.
var DefaultDenominations = []int64{500, 50, 20, 10, 5, 2, 1}

// Change is the outcome of a change-making pass.
// Sum of value*count over Allocation plus Remaining always equals the balance asked for.
type Change struct {
	Allocation map[int64]int `json:"allocation"`
	Remaining  int64         `json:"remaining"`
}

// Given returns the amount covered by the allocation.
func (c Change) Given() int64 {
	var total int64
	for value, count := range c.Allocation {
		total += value * int64(count)
	}
	return total
}

// MakeChange walks denominations highest first and takes as many of each as
// both the balance and the available stock allow.
//
// Denominations must already be sorted by value, descending. The pass is
// greedy and can miss a combination that exists under scarce stock: 60 from
// {50:1, 20:3} takes the 50 and strands 10. Callers reject the sale when
// Remaining is non-zero.
func MakeChange(balance int64, denominations []entity.Denomination) Change {
	change := Change{Allocation: make(map[int64]int), Remaining: balance}
	if balance <= 0 {
		return change
	}

	for _, d := range denominations {
		if change.Remaining == 0 {
			break
		}
		if d.Value <= 0 || d.AvailableCount <= 0 {
			continue
		}

		usable := change.Remaining / d.Value
		if available := int64(d.AvailableCount); usable > available {
			usable = available
		}
		if usable > 0 {
			change.Allocation[d.Value] += int(usable)
			change.Remaining -= usable * d.Value
		}
	}

	return change
}

// SortDenominations returns a copy ordered by value, highest first.
func SortDenominations(denominations []entity.Denomination) []entity.Denomination {
	sorted := make([]entity.Denomination, len(denominations))
	copy(sorted, denominations)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Value > sorted[j].Value
	})
	return sorted
}

// ApplyChange projects the till after paying out allocation.
// The input slice is left untouched.
func ApplyChange(denominations []entity.Denomination, allocation map[int64]int) ([]entity.Denomination, error) {
	index := make(map[int64]int, len(denominations))
	updated := make([]entity.Denomination, len(denominations))
	copy(updated, denominations)
	for i, d := range updated {
		index[d.Value] = i
	}

	for value, count := range allocation {
		i, ok := index[value]
		if !ok {
			return nil, fmt.Errorf("denomination %d is not in the till", value)
		}
		if updated[i].AvailableCount < count {
			return nil, fmt.Errorf("denomination %d: need %d, have %d", value, count, updated[i].AvailableCount)
		}
		updated[i].AvailableCount -= count
	}

	return updated, nil
}
