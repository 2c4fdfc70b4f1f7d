// Package overview computes a single account's dashboard aggregate: summary
// stats, a merged recent-activity feed, upcoming delivery estimates, and
// category-overlap product recommendations. Every call recomputes from a
// fresh fetch; nothing is cached and nothing here mutates stored records.
package overview

import (
	"context"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/senzo-zwelihle-masango/emporium-overview/internal/store"
)

// RecordFetcher supplies one account's full record graph and the catalog
// query capability used for recommendations. *store.Store satisfies it.
type RecordFetcher interface {
	AccountGraph(ctx context.Context, accountID string) (*store.AccountGraph, error)
	QueryProducts(ctx context.Context, query store.CatalogQuery) ([]store.Product, error)
}

// Policy bundles the tunable aggregation limits. The defaults mirror the
// dashboard's historical behavior; the pre-merge caps and the default
// recommendation rating are heuristic choices, not derived constraints.
type Policy struct {
	// FeedLimit caps the merged activity feed.
	FeedLimit int
	// OrderCap, ReviewCap, and FavoriteCap bound how many records of each
	// type enter the merge. Under heavy same-timestamp skew this can differ
	// from a true global top-N; kept deliberately.
	OrderCap    int
	ReviewCap   int
	FavoriteCap int
	// DeliveryLimit caps the upcoming-deliveries list.
	DeliveryLimit int
	// DeliveryFallback estimates delivery for orders without a stored date.
	DeliveryFallback time.Duration
	// RecommendationLimit caps recommended products.
	RecommendationLimit int
	// CategorySample bounds how many distinct interaction categories seed
	// the catalog query.
	CategorySample int
	// DefaultRating stands in for per-product ratings, which the catalog
	// does not expose at this layer.
	DefaultRating float64
	// PlaceholderImage is used for products with an empty image list.
	PlaceholderImage string
}

// DefaultPolicy returns the standard dashboard limits.
func DefaultPolicy() Policy {
	return Policy{
		FeedLimit:           5,
		OrderCap:            3,
		ReviewCap:           2,
		FavoriteCap:         2,
		DeliveryLimit:       3,
		DeliveryFallback:    7 * 24 * time.Hour,
		RecommendationLimit: 4,
		CategorySample:      3,
		DefaultRating:       4.0,
		PlaceholderImage:    "/images/placeholder.svg",
	}
}

// Stats are the scalar aggregates shown at the top of the dashboard.
type Stats struct {
	TotalOrders     int             `json:"total_orders"`
	TotalSpent      decimal.Decimal `json:"total_spent"`
	TotalReviews    int             `json:"total_reviews"`
	TotalFavorites  int             `json:"total_favorites"`
	MembershipLevel *string         `json:"membership_level"`
	MemberSince     time.Time       `json:"member_since"`
	LastSeen        *time.Time      `json:"last_seen,omitempty"`
}

// ActivityType discriminates entries in the merged feed.
type ActivityType string

const (
	ActivityOrder    ActivityType = "order"
	ActivityReview   ActivityType = "review"
	ActivityFavorite ActivityType = "favorite"
)

// Activity is the uniform projection of an order, review, or favorite used
// solely for the recency feed.
type Activity struct {
	Type        ActivityType      `json:"type"`
	ID          string            `json:"id"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Date        time.Time         `json:"date"`
	Status      store.OrderStatus `json:"status,omitempty"`
	Amount      *decimal.Decimal  `json:"amount,omitempty"`
}

// Delivery is a forward-looking estimate for an in-transit order.
type Delivery struct {
	OrderID           string            `json:"order_id"`
	OrderNumber       string            `json:"order_number"`
	EstimatedDelivery time.Time         `json:"estimated_delivery"`
	Status            store.OrderStatus `json:"status"`
	ItemCount         int               `json:"item_count"`
}

// Recommendation is a catalog product reshaped for the dashboard.
type Recommendation struct {
	ID     string          `json:"id"`
	Name   string          `json:"name"`
	Image  string          `json:"image"`
	Price  decimal.Decimal `json:"price"`
	Rating float64         `json:"rating"`
}

// Overview is the composed per-account aggregate.
type Overview struct {
	Stats               Stats            `json:"stats"`
	RecentActivities    []Activity       `json:"recent_activities"`
	UpcomingDeliveries  []Delivery       `json:"upcoming_deliveries"`
	RecommendedProducts []Recommendation `json:"recommended_products"`
}

// Service computes overviews against a record fetcher. It holds no mutable
// state, so one Service is safe for concurrent use across accounts.
type Service struct {
	fetcher RecordFetcher
	logger  *slog.Logger
	policy  Policy
	now     func() time.Time
}

// NewService builds an overview service with the default policy.
func NewService(fetcher RecordFetcher, logger *slog.Logger) *Service {
	return NewServiceWithPolicy(fetcher, logger, DefaultPolicy())
}

// NewServiceWithPolicy builds an overview service with custom limits.
func NewServiceWithPolicy(fetcher RecordFetcher, logger *slog.Logger, policy Policy) *Service {
	return &Service{
		fetcher: fetcher,
		logger:  logger,
		policy:  policy,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Compose fetches the account graph and runs the four aggregations over it.
// It returns nil when the account does not exist or the fetch fails; both
// cases are logged and deliberately indistinguishable to the caller, whose
// contract is "no overview available".
func (s *Service) Compose(ctx context.Context, accountID string) *Overview {
	graph, err := s.fetcher.AccountGraph(ctx, accountID)
	if err != nil {
		s.logger.Warn("account overview unavailable", "account_id", accountID, "error", err)
		return nil
	}

	recommendations, err := s.recommend(ctx, graph)
	if err != nil {
		s.logger.Warn("recommendation query failed", "account_id", accountID, "error", err)
		return nil
	}

	return &Overview{
		Stats:               s.buildStats(graph),
		RecentActivities:    s.mergeActivities(graph),
		UpcomingDeliveries:  s.projectDeliveries(graph.Orders, s.now()),
		RecommendedProducts: recommendations,
	}
}
