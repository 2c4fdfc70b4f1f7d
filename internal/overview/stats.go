package overview

import (
	"github.com/shopspring/decimal"

	"github.com/senzo-zwelihle-masango/emporium-overview/internal/store"
)

// buildStats folds the record graph into scalar aggregates. Empty
// collections yield zero counts and a zero sum; a null order total counts
// as zero; a missing membership or session history yields nil, not an error.
func (s *Service) buildStats(graph *store.AccountGraph) Stats {
	totalSpent := decimal.Zero
	for _, order := range graph.Orders {
		if order.TotalAmount.Valid {
			totalSpent = totalSpent.Add(order.TotalAmount.Decimal)
		}
	}

	stats := Stats{
		TotalOrders:    len(graph.Orders),
		TotalSpent:     totalSpent,
		TotalReviews:   len(graph.Reviews),
		TotalFavorites: len(graph.Favorites),
		MemberSince:    graph.Account.CreatedAt,
		LastSeen:       graph.LastSession,
	}
	if graph.Membership != nil {
		level := graph.Membership.Level
		stats.MembershipLevel = &level
	}
	return stats
}
