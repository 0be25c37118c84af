package orders

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/campuskart/api/internal/market"
)

func TestPruneUnavailable(t *testing.T) {
	lines := []market.OrderLine{
		{ID: 1, ItemID: "a", Qty: 3},
		{ID: 2, ItemID: "b", Qty: 1},
		{ID: 3, ItemID: "c", Qty: 2},
	}

	t.Run("everything in stock", func(t *testing.T) {
		kept, pruned := PruneUnavailable(lines, map[string]int{"a": 3, "b": 5, "c": 2})
		assert.Len(t, kept, 3)
		assert.Empty(t, pruned)
	})

	t.Run("short stock prunes the line", func(t *testing.T) {
		kept, pruned := PruneUnavailable(lines, map[string]int{"a": 2, "b": 5, "c": 2})
		assert.Len(t, kept, 2)
		assert.Len(t, pruned, 1)
		assert.Equal(t, "a", pruned[0].ItemID)
	})

	t.Run("missing item counts as unavailable", func(t *testing.T) {
		kept, pruned := PruneUnavailable(lines, map[string]int{"a": 3, "c": 2})
		assert.Len(t, kept, 2)
		assert.Equal(t, "b", pruned[0].ItemID)
	})

	t.Run("all gone", func(t *testing.T) {
		kept, pruned := PruneUnavailable(lines, map[string]int{})
		assert.Empty(t, kept)
		assert.Len(t, pruned, 3)
	})

	t.Run("confirmed lines are kept at any stock", func(t *testing.T) {
		delivered := []market.OrderLine{{ID: 9, ItemID: "d", Qty: 4, Confirmed: true}}
		kept, pruned := PruneUnavailable(delivered, map[string]int{})
		assert.Len(t, kept, 1)
		assert.Empty(t, pruned)
	})
}
