package overview

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/senzo-zwelihle-masango/emporium-overview/internal/store"
)

func testService(fetcher RecordFetcher) *Service {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(fetcher, logger)
}

func mustDecimal(t *testing.T, v string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(v)
	require.NoError(t, err)
	return d
}

func TestBuildStatsSumsOrderTotals(t *testing.T) {
	svc := testService(nil)
	createdAt := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	graph := &store.AccountGraph{
		Account: store.Account{ID: "a1", CreatedAt: createdAt},
		Orders: []store.Order{
			{ID: "o1", TotalAmount: decimal.NewNullDecimal(mustDecimal(t, "19.99"))},
			{ID: "o2", TotalAmount: decimal.NewNullDecimal(mustDecimal(t, "0.01"))},
			{ID: "o3"}, // null total counts as zero
		},
		Reviews:   []store.Review{{ID: "r1"}},
		Favorites: []store.Favorite{{ID: "f1"}, {ID: "f2"}},
	}

	stats := svc.buildStats(graph)
	require.Equal(t, 3, stats.TotalOrders)
	require.True(t, stats.TotalSpent.Equal(mustDecimal(t, "20.00")), "got %s", stats.TotalSpent)
	require.Equal(t, 1, stats.TotalReviews)
	require.Equal(t, 2, stats.TotalFavorites)
	require.Equal(t, createdAt, stats.MemberSince)
	require.Nil(t, stats.MembershipLevel)
	require.Nil(t, stats.LastSeen)
}

func TestBuildStatsEmptyGraph(t *testing.T) {
	svc := testService(nil)
	lastSeen := time.Date(2025, 6, 2, 9, 30, 0, 0, time.UTC)
	graph := &store.AccountGraph{
		Account:     store.Account{ID: "a1", CreatedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
		Membership:  &store.Membership{ID: "m1", Level: "gold"},
		LastSession: &lastSeen,
	}

	stats := svc.buildStats(graph)
	require.Zero(t, stats.TotalOrders)
	require.True(t, stats.TotalSpent.IsZero())
	require.Zero(t, stats.TotalReviews)
	require.Zero(t, stats.TotalFavorites)
	require.NotNil(t, stats.MembershipLevel)
	require.Equal(t, "gold", *stats.MembershipLevel)
	require.NotNil(t, stats.LastSeen)
	require.Equal(t, lastSeen, *stats.LastSeen)
}
