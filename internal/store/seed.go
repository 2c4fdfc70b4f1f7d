package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	seedCategories = []string{"audio", "wearables", "home-office", "gaming", "kitchen"}
	seedAdjectives = []string{"Aurora", "Nimbus", "Vertex", "Pulse", "Orbit", "Drift", "Ember", "Flux"}
	seedNouns      = []string{"Headphones", "Keyboard", "Lamp", "Speaker", "Monitor", "Kettle", "Backpack", "Charger"}
	seedStatuses   = []OrderStatus{
		StatusPending, StatusConfirmed, StatusProcessing, StatusPacked,
		StatusShipped, StatusOutForDelivery, StatusDelivered, StatusCancelled, StatusReturned,
	}
)

// SeedSummary reports what a seeding pass inserted.
type SeedSummary struct {
	Products     int `json:"products"`
	Orders       int `json:"orders"`
	Reviews      int `json:"reviews"`
	Favorites    int `json:"favorites"`
	Interactions int `json:"interactions"`
	Sessions     int `json:"sessions"`
}

// CreateProduct inserts a catalog product.
func (s *Store) CreateProduct(ctx context.Context, product Product) (Product, error) {
	if product.ID == "" {
		product.ID = uuid.NewString()
	}
	if product.CreatedAt.IsZero() {
		product.CreatedAt = time.Now().UTC()
	}
	images, err := marshalImages(product.Images)
	if err != nil {
		return Product{}, err
	}
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO products(id, name, category_id, price, images, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		product.ID, product.Name, product.CategoryID, product.Price, images, product.CreatedAt,
	); err != nil {
		return Product{}, fmt.Errorf("insert product: %w", err)
	}
	return product, nil
}

// CreateOrder inserts an order with its line items.
func (s *Store) CreateOrder(ctx context.Context, order Order) (Order, error) {
	if order.ID == "" {
		order.ID = uuid.NewString()
	}
	if order.CreatedAt.IsZero() {
		order.CreatedAt = time.Now().UTC()
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Order{}, fmt.Errorf("begin order tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO orders(id, account_id, order_number, status, total_amount, expected_delivery, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		order.ID, order.AccountID, order.OrderNumber, order.Status,
		order.TotalAmount, nullableTime(order.ExpectedDelivery), order.CreatedAt,
	); err != nil {
		return Order{}, fmt.Errorf("insert order: %w", err)
	}
	for i := range order.Items {
		item := &order.Items[i]
		if item.ID == "" {
			item.ID = uuid.NewString()
		}
		item.OrderID = order.ID
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO order_items(id, order_id, product_id, quantity) VALUES (?, ?, ?, ?)`,
			item.ID, item.OrderID, item.Product.ID, item.Quantity,
		); err != nil {
			return Order{}, fmt.Errorf("insert order item: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return Order{}, fmt.Errorf("commit order: %w", err)
	}
	return order, nil
}

// CreateReview inserts a product review.
func (s *Store) CreateReview(ctx context.Context, review Review) (Review, error) {
	if review.ID == "" {
		review.ID = uuid.NewString()
	}
	if review.CreatedAt.IsZero() {
		review.CreatedAt = time.Now().UTC()
	}
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO reviews(id, account_id, product_id, rating, created_at) VALUES (?, ?, ?, ?, ?)`,
		review.ID, review.AccountID, review.Product.ID, review.Rating, review.CreatedAt,
	); err != nil {
		return Review{}, fmt.Errorf("insert review: %w", err)
	}
	return review, nil
}

// CreateFavorite marks a product as saved by the account.
func (s *Store) CreateFavorite(ctx context.Context, favorite Favorite) (Favorite, error) {
	if favorite.ID == "" {
		favorite.ID = uuid.NewString()
	}
	if favorite.CreatedAt.IsZero() {
		favorite.CreatedAt = time.Now().UTC()
	}
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO favorites(id, account_id, product_id, created_at) VALUES (?, ?, ?, ?)`,
		favorite.ID, favorite.AccountID, favorite.Product.ID, favorite.CreatedAt,
	); err != nil {
		return Favorite{}, fmt.Errorf("insert favorite: %w", err)
	}
	return favorite, nil
}

// CreateInteraction records a browsing event.
func (s *Store) CreateInteraction(ctx context.Context, interaction Interaction) (Interaction, error) {
	if interaction.ID == "" {
		interaction.ID = uuid.NewString()
	}
	if interaction.OccurredAt.IsZero() {
		interaction.OccurredAt = time.Now().UTC()
	}
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO interactions(id, account_id, product_id, occurred_at) VALUES (?, ?, ?, ?)`,
		interaction.ID, interaction.AccountID, interaction.Product.ID, interaction.OccurredAt,
	); err != nil {
		return Interaction{}, fmt.Errorf("insert interaction: %w", err)
	}
	return interaction, nil
}

// CreateSession records a login session for the account.
func (s *Store) CreateSession(ctx context.Context, accountID string, startedAt time.Time) error {
	if startedAt.IsZero() {
		startedAt = time.Now().UTC()
	}
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO sessions(id, account_id, started_at) VALUES (?, ?, ?)`,
		uuid.NewString(), accountID, startedAt,
	); err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

// SeedAccountActivity fills an account with plausible demo history: a batch
// of catalog products plus random orders, reviews, favorites, interactions,
// and sessions spread over the past weeks.
func (s *Store) SeedAccountActivity(ctx context.Context, accountID string) (SeedSummary, error) {
	if _, err := s.GetAccount(ctx, accountID); err != nil {
		return SeedSummary{}, err
	}

	var summary SeedSummary
	now := time.Now().UTC()

	products := make([]Product, 0, 8)
	for i := 0; i < 8; i++ {
		product, err := s.CreateProduct(ctx, Product{
			Name:       s.randomProductName(),
			CategoryID: seedCategories[s.rnd.Intn(len(seedCategories))],
			Price:      decimal.NewFromInt(int64(9 + s.rnd.Intn(490))).Add(decimal.NewFromFloat(0.99)),
			Images:     []string{fmt.Sprintf("/images/products/%s.jpg", uuid.NewString())},
			CreatedAt:  now.Add(-time.Duration(s.rnd.Intn(90*24)) * time.Hour),
		})
		if err != nil {
			return summary, err
		}
		products = append(products, product)
		summary.Products++
	}

	orderCount := 2 + s.rnd.Intn(4)
	for i := 0; i < orderCount; i++ {
		status := seedStatuses[s.rnd.Intn(len(seedStatuses))]
		createdAt := now.Add(-time.Duration(s.rnd.Intn(45*24)) * time.Hour)
		items := []OrderItem{}
		total := decimal.Zero
		for j := 0; j < 1+s.rnd.Intn(3); j++ {
			product := products[s.rnd.Intn(len(products))]
			qty := 1 + s.rnd.Intn(2)
			items = append(items, OrderItem{Product: product, Quantity: qty})
			total = total.Add(product.Price.Mul(decimal.NewFromInt(int64(qty))))
		}
		order := Order{
			AccountID:   accountID,
			OrderNumber: fmt.Sprintf("R%s", strings.ToUpper(uuid.NewString())[:8]),
			Status:      status,
			TotalAmount: decimal.NewNullDecimal(total),
			CreatedAt:   createdAt,
			Items:       items,
		}
		// Roughly half of in-transit orders carry a stored estimate; the
		// rest exercise the 7-day fallback downstream.
		if (status == StatusShipped || status == StatusProcessing) && s.rnd.Intn(2) == 0 {
			eta := createdAt.Add(time.Duration(3+s.rnd.Intn(7)) * 24 * time.Hour)
			order.ExpectedDelivery = &eta
		}
		if _, err := s.CreateOrder(ctx, order); err != nil {
			return summary, err
		}
		summary.Orders++
	}

	for i := 0; i < 1+s.rnd.Intn(3); i++ {
		if _, err := s.CreateReview(ctx, Review{
			AccountID: accountID,
			Rating:    1 + s.rnd.Intn(5),
			CreatedAt: now.Add(-time.Duration(s.rnd.Intn(30*24)) * time.Hour),
			Product:   products[s.rnd.Intn(len(products))],
		}); err != nil {
			return summary, err
		}
		summary.Reviews++
	}

	for i := 0; i < 1+s.rnd.Intn(3); i++ {
		if _, err := s.CreateFavorite(ctx, Favorite{
			AccountID: accountID,
			CreatedAt: now.Add(-time.Duration(s.rnd.Intn(30*24)) * time.Hour),
			Product:   products[s.rnd.Intn(len(products))],
		}); err != nil {
			return summary, err
		}
		summary.Favorites++
	}

	for i := 0; i < 3+s.rnd.Intn(6); i++ {
		if _, err := s.CreateInteraction(ctx, Interaction{
			AccountID:  accountID,
			OccurredAt: now.Add(-time.Duration(s.rnd.Intn(14*24)) * time.Hour),
			Product:    products[s.rnd.Intn(len(products))],
		}); err != nil {
			return summary, err
		}
		summary.Interactions++
	}

	for i := 0; i < 1+s.rnd.Intn(4); i++ {
		if err := s.CreateSession(ctx, accountID, now.Add(-time.Duration(s.rnd.Intn(7*24))*time.Hour)); err != nil {
			return summary, err
		}
		summary.Sessions++
	}

	return summary, nil
}

func (s *Store) randomProductName() string {
	return strings.Join([]string{
		seedAdjectives[s.rnd.Intn(len(seedAdjectives))],
		seedNouns[s.rnd.Intn(len(seedNouns))],
	}, " ")
}

func marshalImages(images []string) (string, error) {
	if images == nil {
		images = []string{}
	}
	encoded, err := json.Marshal(images)
	if err != nil {
		return "", fmt.Errorf("encode product images: %w", err)
	}
	return string(encoded), nil
}

func nullableTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC()
}
