package orders

import "github.com/campuskart/api/internal/market"

// PruneUnavailable splits an order's lines into those still coverable by
// current stock and those whose item is missing or short. stocks maps item
// id to available quantity; an item absent from the map counts as missing.
// Confirmed lines are always kept: their stock was decremented at handoff,
// so live stock no longer constrains them.
func PruneUnavailable(lines []market.OrderLine, stocks map[string]int) (kept, pruned []market.OrderLine) {
	for _, l := range lines {
		if l.Confirmed {
			kept = append(kept, l)
			continue
		}
		stock, ok := stocks[l.ItemID]
		if !ok || stock < l.Qty {
			pruned = append(pruned, l)
			continue
		}
		kept = append(kept, l)
	}
	return kept, pruned
}
