package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Store holds all persistence logic for the overview service. It doubles
// as the record fetcher consumed by the aggregation engine.
type Store struct {
	db  *sql.DB
	rnd *rand.Rand
}

// NewStore wires a store backed by SQLite.
func NewStore(db *sql.DB) *Store {
	return &Store{
		db:  db,
		rnd: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Init applies schema migrations.
func (s *Store) Init(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS memberships (
			id TEXT PRIMARY KEY,
			level TEXT NOT NULL UNIQUE
		);`,
		`CREATE TABLE IF NOT EXISTS accounts (
			id TEXT PRIMARY KEY,
			email TEXT NOT NULL UNIQUE,
			name TEXT NOT NULL,
			membership_id TEXT,
			created_at TIMESTAMP NOT NULL,
			FOREIGN KEY(membership_id) REFERENCES memberships(id)
		);`,
		`CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			account_id TEXT NOT NULL,
			started_at TIMESTAMP NOT NULL,
			FOREIGN KEY(account_id) REFERENCES accounts(id) ON DELETE CASCADE
		);`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_account ON sessions(account_id, started_at DESC);`,
		`CREATE TABLE IF NOT EXISTS products (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			category_id TEXT NOT NULL,
			price TEXT NOT NULL,
			images TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_products_category ON products(category_id, created_at DESC);`,
		`CREATE TABLE IF NOT EXISTS orders (
			id TEXT PRIMARY KEY,
			account_id TEXT NOT NULL,
			order_number TEXT NOT NULL UNIQUE,
			status TEXT NOT NULL,
			total_amount TEXT,
			expected_delivery TIMESTAMP,
			created_at TIMESTAMP NOT NULL,
			FOREIGN KEY(account_id) REFERENCES accounts(id) ON DELETE CASCADE
		);`,
		`CREATE INDEX IF NOT EXISTS idx_orders_account ON orders(account_id, created_at DESC);`,
		`CREATE TABLE IF NOT EXISTS order_items (
			id TEXT PRIMARY KEY,
			order_id TEXT NOT NULL,
			product_id TEXT NOT NULL,
			quantity INTEGER NOT NULL,
			FOREIGN KEY(order_id) REFERENCES orders(id) ON DELETE CASCADE,
			FOREIGN KEY(product_id) REFERENCES products(id)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_order_items_order ON order_items(order_id);`,
		`CREATE TABLE IF NOT EXISTS reviews (
			id TEXT PRIMARY KEY,
			account_id TEXT NOT NULL,
			product_id TEXT NOT NULL,
			rating INTEGER NOT NULL,
			created_at TIMESTAMP NOT NULL,
			FOREIGN KEY(account_id) REFERENCES accounts(id) ON DELETE CASCADE,
			FOREIGN KEY(product_id) REFERENCES products(id)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_reviews_account ON reviews(account_id, created_at DESC);`,
		`CREATE TABLE IF NOT EXISTS favorites (
			id TEXT PRIMARY KEY,
			account_id TEXT NOT NULL,
			product_id TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL,
			FOREIGN KEY(account_id) REFERENCES accounts(id) ON DELETE CASCADE,
			FOREIGN KEY(product_id) REFERENCES products(id)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_favorites_account ON favorites(account_id, created_at DESC);`,
		`CREATE TABLE IF NOT EXISTS interactions (
			id TEXT PRIMARY KEY,
			account_id TEXT NOT NULL,
			product_id TEXT NOT NULL,
			occurred_at TIMESTAMP NOT NULL,
			FOREIGN KEY(account_id) REFERENCES accounts(id) ON DELETE CASCADE,
			FOREIGN KEY(product_id) REFERENCES products(id)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_interactions_account ON interactions(account_id, occurred_at DESC);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}

// CreateAccountParams carries the fields accepted when registering an account.
type CreateAccountParams struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	MembershipLevel string `json:"membership_level,omitempty"`
}

// CreateAccount registers a new account, creating the membership tier on
// first use when a level is supplied.
func (s *Store) CreateAccount(ctx context.Context, params CreateAccountParams) (Account, error) {
	if strings.TrimSpace(params.Name) == "" {
		return Account{}, errors.New("account name required")
	}
	if strings.TrimSpace(params.Email) == "" {
		return Account{}, errors.New("account email required")
	}

	var membershipID string
	if level := strings.TrimSpace(params.MembershipLevel); level != "" {
		id, err := s.ensureMembership(ctx, level)
		if err != nil {
			return Account{}, err
		}
		membershipID = id
	}

	account := Account{
		ID:           uuid.NewString(),
		Email:        strings.ToLower(strings.TrimSpace(params.Email)),
		Name:         strings.TrimSpace(params.Name),
		MembershipID: membershipID,
		CreatedAt:    time.Now().UTC(),
	}
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO accounts(id, email, name, membership_id, created_at) VALUES (?, ?, ?, ?, ?)`,
		account.ID, account.Email, account.Name, nullIfEmpty(account.MembershipID), account.CreatedAt,
	); err != nil {
		return Account{}, fmt.Errorf("insert account: %w", err)
	}
	return account, nil
}

func (s *Store) ensureMembership(ctx context.Context, level string) (string, error) {
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO memberships(id, level) VALUES (?, ?) ON CONFLICT(level) DO NOTHING`,
		uuid.NewString(), level,
	); err != nil {
		return "", fmt.Errorf("ensure membership: %w", err)
	}
	var id string
	if err := s.db.QueryRowContext(ctx, `SELECT id FROM memberships WHERE level = ?`, level).Scan(&id); err != nil {
		return "", fmt.Errorf("lookup membership: %w", err)
	}
	return id, nil
}

// GetAccount fetches an account by id.
func (s *Store) GetAccount(ctx context.Context, accountID string) (Account, error) {
	var (
		account      Account
		membershipID sql.NullString
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, email, name, membership_id, created_at FROM accounts WHERE id = ?`, accountID).
		Scan(&account.ID, &account.Email, &account.Name, &membershipID, &account.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Account{}, err
		}
		return Account{}, fmt.Errorf("get account: %w", err)
	}
	account.MembershipID = membershipID.String
	return account, nil
}

// ListAccounts returns all accounts, newest first.
func (s *Store) ListAccounts(ctx context.Context) ([]Account, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, email, name, membership_id, created_at FROM accounts ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()
	var accounts []Account
	for rows.Next() {
		var (
			account      Account
			membershipID sql.NullString
		)
		if err := rows.Scan(&account.ID, &account.Email, &account.Name, &membershipID, &account.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		account.MembershipID = membershipID.String
		accounts = append(accounts, account)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iter accounts: %w", err)
	}
	return accounts, nil
}

// AccountGraph loads the full record graph for one account: membership,
// most recent session, and all orders, reviews, favorites, and interactions
// sorted descending by creation time. Returns sql.ErrNoRows when the
// account does not exist.
func (s *Store) AccountGraph(ctx context.Context, accountID string) (*AccountGraph, error) {
	account, err := s.GetAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}

	graph := &AccountGraph{Account: account}

	if account.MembershipID != "" {
		var m Membership
		err := s.db.QueryRowContext(ctx,
			`SELECT id, level FROM memberships WHERE id = ?`, account.MembershipID).
			Scan(&m.ID, &m.Level)
		if err != nil {
			return nil, fmt.Errorf("get membership: %w", err)
		}
		graph.Membership = &m
	}

	var lastSession time.Time
	err = s.db.QueryRowContext(ctx,
		`SELECT started_at FROM sessions WHERE account_id = ? ORDER BY started_at DESC LIMIT 1`, accountID).
		Scan(&lastSession)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		// no sessions yet
	case err != nil:
		return nil, fmt.Errorf("last session: %w", err)
	default:
		graph.LastSession = &lastSession
	}

	if graph.Orders, err = s.accountOrders(ctx, accountID); err != nil {
		return nil, err
	}
	if graph.Reviews, err = s.accountReviews(ctx, accountID); err != nil {
		return nil, err
	}
	if graph.Favorites, err = s.accountFavorites(ctx, accountID); err != nil {
		return nil, err
	}
	if graph.Interactions, err = s.accountInteractions(ctx, accountID); err != nil {
		return nil, err
	}
	return graph, nil
}

const productColumns = `p.id, p.name, p.category_id, p.price, p.images, p.created_at`

func (s *Store) accountOrders(ctx context.Context, accountID string) ([]Order, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, account_id, order_number, status, total_amount, expected_delivery, created_at
		 FROM orders WHERE account_id = ? ORDER BY created_at DESC, id`, accountID)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	var orders []Order
	index := make(map[string]int)
	for rows.Next() {
		var (
			o        Order
			expected sql.NullTime
		)
		if err := rows.Scan(&o.ID, &o.AccountID, &o.OrderNumber, &o.Status, &o.TotalAmount, &expected, &o.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		if expected.Valid {
			t := expected.Time
			o.ExpectedDelivery = &t
		}
		index[o.ID] = len(orders)
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iter orders: %w", err)
	}
	if len(orders) == 0 {
		return nil, nil
	}

	itemRows, err := s.db.QueryContext(ctx, fmt.Sprintf(
		`SELECT oi.id, oi.order_id, oi.quantity, %s
		 FROM order_items oi
		 JOIN orders o ON o.id = oi.order_id
		 JOIN products p ON p.id = oi.product_id
		 WHERE o.account_id = ? ORDER BY oi.rowid`, productColumns), accountID)
	if err != nil {
		return nil, fmt.Errorf("list order items: %w", err)
	}
	defer itemRows.Close()
	for itemRows.Next() {
		var item OrderItem
		product, err := scanProductPrefix(itemRows, &item.ID, &item.OrderID, &item.Quantity)
		if err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		item.Product = product
		i, ok := index[item.OrderID]
		if !ok {
			continue
		}
		orders[i].Items = append(orders[i].Items, item)
	}
	if err := itemRows.Err(); err != nil {
		return nil, fmt.Errorf("iter order items: %w", err)
	}
	return orders, nil
}

// scanProductPrefix scans leading columns followed by the product column set.
func scanProductPrefix(rows *sql.Rows, prefix ...any) (Product, error) {
	var (
		p      Product
		images string
	)
	dest := append(prefix, &p.ID, &p.Name, &p.CategoryID, &p.Price, &images, &p.CreatedAt)
	if err := rows.Scan(dest...); err != nil {
		return Product{}, err
	}
	if err := json.Unmarshal([]byte(images), &p.Images); err != nil {
		return Product{}, fmt.Errorf("decode product images: %w", err)
	}
	return p, nil
}

func (s *Store) accountReviews(ctx context.Context, accountID string) ([]Review, error) {
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(
		`SELECT r.id, r.account_id, r.rating, r.created_at, %s
		 FROM reviews r JOIN products p ON p.id = r.product_id
		 WHERE r.account_id = ? ORDER BY r.created_at DESC, r.id`, productColumns), accountID)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	defer rows.Close()
	var reviews []Review
	for rows.Next() {
		var r Review
		product, err := scanProductPrefix(rows, &r.ID, &r.AccountID, &r.Rating, &r.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan review: %w", err)
		}
		r.Product = product
		reviews = append(reviews, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iter reviews: %w", err)
	}
	return reviews, nil
}

func (s *Store) accountFavorites(ctx context.Context, accountID string) ([]Favorite, error) {
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(
		`SELECT f.id, f.account_id, f.created_at, %s
		 FROM favorites f JOIN products p ON p.id = f.product_id
		 WHERE f.account_id = ? ORDER BY f.created_at DESC, f.id`, productColumns), accountID)
	if err != nil {
		return nil, fmt.Errorf("list favorites: %w", err)
	}
	defer rows.Close()
	var favorites []Favorite
	for rows.Next() {
		var f Favorite
		product, err := scanProductPrefix(rows, &f.ID, &f.AccountID, &f.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan favorite: %w", err)
		}
		f.Product = product
		favorites = append(favorites, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iter favorites: %w", err)
	}
	return favorites, nil
}

func (s *Store) accountInteractions(ctx context.Context, accountID string) ([]Interaction, error) {
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(
		`SELECT i.id, i.account_id, i.occurred_at, %s
		 FROM interactions i JOIN products p ON p.id = i.product_id
		 WHERE i.account_id = ? ORDER BY i.occurred_at DESC, i.id`, productColumns), accountID)
	if err != nil {
		return nil, fmt.Errorf("list interactions: %w", err)
	}
	defer rows.Close()
	var interactions []Interaction
	for rows.Next() {
		var i Interaction
		product, err := scanProductPrefix(rows, &i.ID, &i.AccountID, &i.OccurredAt)
		if err != nil {
			return nil, fmt.Errorf("scan interaction: %w", err)
		}
		i.Product = product
		interactions = append(interactions, i)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iter interactions: %w", err)
	}
	return interactions, nil
}

// QueryProducts looks up catalog products by category, excluding specific
// ids, ordered by catalog creation date descending.
func (s *Store) QueryProducts(ctx context.Context, query CatalogQuery) ([]Product, error) {
	if len(query.CategoryIDs) == 0 || query.Limit <= 0 {
		return nil, nil
	}
	args := make([]any, 0, len(query.CategoryIDs)+len(query.ExcludeIDs)+1)
	clause := fmt.Sprintf(`category_id IN (%s)`, placeholders(len(query.CategoryIDs)))
	for _, id := range query.CategoryIDs {
		args = append(args, id)
	}
	if len(query.ExcludeIDs) > 0 {
		clause += fmt.Sprintf(` AND id NOT IN (%s)`, placeholders(len(query.ExcludeIDs)))
		for _, id := range query.ExcludeIDs {
			args = append(args, id)
		}
	}
	args = append(args, query.Limit)

	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(
		`SELECT %s FROM products p WHERE %s ORDER BY created_at DESC, id LIMIT ?`,
		productColumns, clause), args...)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	defer rows.Close()
	var products []Product
	for rows.Next() {
		product, err := scanProductPrefix(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, product)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iter products: %w", err)
	}
	return products, nil
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

func nullIfEmpty(v string) any {
	if strings.TrimSpace(v) == "" {
		return nil
	}
	return v
}
