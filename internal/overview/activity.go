package overview

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/senzo-zwelihle-masango/emporium-overview/internal/store"
)

// mergeActivities builds the recent-activity feed: the newest few orders,
// reviews, and favorites projected into a uniform shape, concatenated in
// that order, stable-sorted descending by date, and truncated to the feed
// limit. The per-type caps bound formatting work before the final cut; with
// the stable sort, exact timestamp ties keep the append order, so orders
// win over reviews, which win over favorites.
func (s *Service) mergeActivities(graph *store.AccountGraph) []Activity {
	activities := make([]Activity, 0, s.policy.OrderCap+s.policy.ReviewCap+s.policy.FavoriteCap)

	for _, order := range capSlice(graph.Orders, s.policy.OrderCap) {
		amount := decimal.Zero
		if order.TotalAmount.Valid {
			amount = order.TotalAmount.Decimal
		}
		activities = append(activities, Activity{
			Type:        ActivityOrder,
			ID:          order.ID,
			Title:       fmt.Sprintf("Order #%s", order.OrderNumber),
			Description: fmt.Sprintf("%d item(s) • $%s", len(order.Items), amount.StringFixed(2)),
			Date:        order.CreatedAt,
			Status:      order.Status,
			Amount:      &amount,
		})
	}

	for _, review := range capSlice(graph.Reviews, s.policy.ReviewCap) {
		activities = append(activities, Activity{
			Type:        ActivityReview,
			ID:          review.ID,
			Title:       fmt.Sprintf("Reviewed %s", review.Product.Name),
			Description: fmt.Sprintf("%d stars", review.Rating),
			Date:        review.CreatedAt,
		})
	}

	for _, favorite := range capSlice(graph.Favorites, s.policy.FavoriteCap) {
		activities = append(activities, Activity{
			Type:        ActivityFavorite,
			ID:          favorite.ID,
			Title:       "Added to favorites",
			Description: favorite.Product.Name,
			Date:        favorite.CreatedAt,
		})
	}

	sort.SliceStable(activities, func(i, j int) bool {
		return activities[i].Date.After(activities[j].Date)
	})
	return capSlice(activities, s.policy.FeedLimit)
}

func capSlice[T any](records []T, limit int) []T {
	if limit < 0 {
		limit = 0
	}
	if len(records) <= limit {
		return records
	}
	return records[:limit]
}
