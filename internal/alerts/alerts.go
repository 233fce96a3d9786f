// Package alerts derives the pending-commitment notification surface:
// card installments collapse into one group per card, everything else
// stays a standalone item.
package alerts

import (
	"carteira/internal/core"
)

// CardGroup aggregates the pending installments of one card.
type CardGroup struct {
	CardName string
	Total    core.Money
	Members  []core.Commitment
}

// Grouped is the partition of pending commitments for the alert surface.
// The partition is deterministic; ordering among groups is not significant.
type Grouped struct {
	CardGroups []CardGroup
	Standalone []core.Commitment
}

// GroupPending partitions the pending commitments. Settled records never
// appear; card-type records land in their card's group, the rest stay
// standalone.
func GroupPending(commitments []core.Commitment) Grouped {
	var out Grouped
	groupIndex := map[string]int{}

	for _, c := range commitments {
		if c.Settled() {
			continue
		}
		if c.Type != core.Card {
			out.Standalone = append(out.Standalone, c)
			continue
		}
		i, ok := groupIndex[c.CardName]
		if !ok {
			i = len(out.CardGroups)
			groupIndex[c.CardName] = i
			out.CardGroups = append(out.CardGroups, CardGroup{CardName: c.CardName})
		}
		out.CardGroups[i].Members = append(out.CardGroups[i].Members, c)
		out.CardGroups[i].Total = out.CardGroups[i].Total.Add(c.Amount)
	}
	return out
}
