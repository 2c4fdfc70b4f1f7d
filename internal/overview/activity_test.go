package overview

import (
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/senzo-zwelihle-masango/emporium-overview/internal/store"
)

func orderAt(id string, at time.Time, items int) store.Order {
	order := store.Order{
		ID:          id,
		OrderNumber: "R" + id,
		Status:      store.StatusDelivered,
		TotalAmount: decimal.NewNullDecimal(decimal.NewFromInt(50)),
		CreatedAt:   at,
	}
	for i := 0; i < items; i++ {
		order.Items = append(order.Items, store.OrderItem{ID: fmt.Sprintf("%s-i%d", id, i)})
	}
	return order
}

func TestMergeActivitiesFormatting(t *testing.T) {
	svc := testService(nil)
	base := time.Date(2025, 5, 10, 8, 0, 0, 0, time.UTC)
	graph := &store.AccountGraph{
		Orders: []store.Order{{
			ID:          "o1",
			OrderNumber: "R1000",
			Status:      store.StatusShipped,
			TotalAmount: decimal.NewNullDecimal(mustDecimal(t, "129.50")),
			CreatedAt:   base,
			Items:       []store.OrderItem{{ID: "i1"}, {ID: "i2"}},
		}},
		Reviews: []store.Review{{
			ID:        "r1",
			Rating:    5,
			CreatedAt: base.Add(-time.Hour),
			Product:   store.Product{Name: "Widget"},
		}},
		Favorites: []store.Favorite{{
			ID:        "f1",
			CreatedAt: base.Add(-2 * time.Hour),
			Product:   store.Product{Name: "Gadget"},
		}},
	}

	feed := svc.mergeActivities(graph)
	require.Len(t, feed, 3)

	require.Equal(t, ActivityOrder, feed[0].Type)
	require.Equal(t, "Order #R1000", feed[0].Title)
	require.Equal(t, "2 item(s) • $129.50", feed[0].Description)
	require.Equal(t, store.StatusShipped, feed[0].Status)
	require.NotNil(t, feed[0].Amount)
	require.True(t, feed[0].Amount.Equal(mustDecimal(t, "129.50")))

	require.Equal(t, ActivityReview, feed[1].Type)
	require.Equal(t, "Reviewed Widget", feed[1].Title)
	require.Equal(t, "5 stars", feed[1].Description)
	require.Empty(t, feed[1].Status)
	require.Nil(t, feed[1].Amount)

	require.Equal(t, ActivityFavorite, feed[2].Type)
	require.Equal(t, "Added to favorites", feed[2].Title)
	require.Equal(t, "Gadget", feed[2].Description)
}

func TestMergeActivitiesNullOrderTotalFormatsAsZero(t *testing.T) {
	svc := testService(nil)
	graph := &store.AccountGraph{
		Orders: []store.Order{{ID: "o1", OrderNumber: "R9", CreatedAt: time.Now().UTC()}},
	}
	feed := svc.mergeActivities(graph)
	require.Len(t, feed, 1)
	require.Equal(t, "0 item(s) • $0.00", feed[0].Description)
}

func TestMergeActivitiesCapsAndTruncates(t *testing.T) {
	svc := testService(nil)
	base := time.Date(2025, 5, 10, 8, 0, 0, 0, time.UTC)

	graph := &store.AccountGraph{}
	// Records arrive pre-sorted descending from the fetcher.
	for i := 0; i < 5; i++ {
		graph.Orders = append(graph.Orders, orderAt(fmt.Sprintf("o%d", i), base.Add(-time.Duration(i)*time.Minute), 1))
	}
	for i := 0; i < 4; i++ {
		graph.Reviews = append(graph.Reviews, store.Review{
			ID:        fmt.Sprintf("r%d", i),
			Rating:    4,
			CreatedAt: base.Add(-time.Duration(i) * time.Second),
			Product:   store.Product{Name: "Widget"},
		})
	}
	for i := 0; i < 4; i++ {
		graph.Favorites = append(graph.Favorites, store.Favorite{
			ID:        fmt.Sprintf("f%d", i),
			CreatedAt: base.Add(-time.Duration(10+i) * time.Minute),
			Product:   store.Product{Name: "Gadget"},
		})
	}

	feed := svc.mergeActivities(graph)
	require.Len(t, feed, 5)
	for i := 1; i < len(feed); i++ {
		require.False(t, feed[i].Date.After(feed[i-1].Date), "feed must be descending by date")
	}
	// Only the 3 newest orders and 2 newest reviews make the merge; the
	// favorites are older than everything else and fall off entirely.
	var orders, reviews, favorites int
	for _, entry := range feed {
		switch entry.Type {
		case ActivityOrder:
			orders++
		case ActivityReview:
			reviews++
		case ActivityFavorite:
			favorites++
		}
	}
	require.Equal(t, 3, orders)
	require.Equal(t, 2, reviews)
	require.Zero(t, favorites)
}

func TestMergeActivitiesStableOnTimestampTies(t *testing.T) {
	svc := testService(nil)
	at := time.Date(2025, 5, 10, 8, 0, 0, 0, time.UTC)
	graph := &store.AccountGraph{
		Orders:    []store.Order{orderAt("o1", at, 1)},
		Reviews:   []store.Review{{ID: "r1", Rating: 3, CreatedAt: at, Product: store.Product{Name: "Widget"}}},
		Favorites: []store.Favorite{{ID: "f1", CreatedAt: at, Product: store.Product{Name: "Gadget"}}},
	}

	feed := svc.mergeActivities(graph)
	require.Len(t, feed, 3)
	// Exact ties keep append order: orders, then reviews, then favorites.
	require.Equal(t, ActivityOrder, feed[0].Type)
	require.Equal(t, ActivityReview, feed[1].Type)
	require.Equal(t, ActivityFavorite, feed[2].Type)
}

func TestMergeActivitiesEmptyGraph(t *testing.T) {
	svc := testService(nil)
	feed := svc.mergeActivities(&store.AccountGraph{})
	require.NotNil(t, feed)
	require.Empty(t, feed)
}
