package store

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus is the fixed lifecycle state of an order.
type OrderStatus string

const (
	StatusPending        OrderStatus = "pending"
	StatusConfirmed      OrderStatus = "confirmed"
	StatusProcessing     OrderStatus = "processing"
	StatusPacked         OrderStatus = "packed"
	StatusShipped        OrderStatus = "shipped"
	StatusOutForDelivery OrderStatus = "out_for_delivery"
	StatusDelivered      OrderStatus = "delivered"
	StatusCancelled      OrderStatus = "cancelled"
	StatusReturned       OrderStatus = "returned"
)

// Account is the aggregate root for one shopper's history.
type Account struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	MembershipID string    `json:"membership_id,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// Membership is a paid tier an account may belong to.
type Membership struct {
	ID    string `json:"id"`
	Level string `json:"level"`
}

// Product is a read-only catalog entity referenced by account records.
type Product struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	CategoryID string          `json:"category_id"`
	Price      decimal.Decimal `json:"price"`
	Images     []string        `json:"images"`
	CreatedAt  time.Time       `json:"created_at"`
}

// OrderItem is one line of an order.
type OrderItem struct {
	ID       string  `json:"id"`
	OrderID  string  `json:"order_id"`
	Product  Product `json:"product"`
	Quantity int     `json:"quantity"`
}

// Order is a single checkout with its lines.
type Order struct {
	ID               string              `json:"id"`
	AccountID        string              `json:"account_id"`
	OrderNumber      string              `json:"order_number"`
	Status           OrderStatus         `json:"status"`
	TotalAmount      decimal.NullDecimal `json:"total_amount"`
	ExpectedDelivery *time.Time          `json:"expected_delivery,omitempty"`
	CreatedAt        time.Time           `json:"created_at"`
	Items            []OrderItem         `json:"items"`
}

// Review is a star rating an account left on a product.
type Review struct {
	ID        string    `json:"id"`
	AccountID string    `json:"account_id"`
	Rating    int       `json:"rating"`
	CreatedAt time.Time `json:"created_at"`
	Product   Product   `json:"product"`
}

// Favorite marks a product the account saved for later.
type Favorite struct {
	ID        string    `json:"id"`
	AccountID string    `json:"account_id"`
	CreatedAt time.Time `json:"created_at"`
	Product   Product   `json:"product"`
}

// Interaction records a view/engagement event linking an account to a
// product and, through it, a category.
type Interaction struct {
	ID         string    `json:"id"`
	AccountID  string    `json:"account_id"`
	OccurredAt time.Time `json:"occurred_at"`
	Product    Product   `json:"product"`
}

// AccountGraph bundles everything known about one account. Record slices
// are sorted descending by creation time.
type AccountGraph struct {
	Account      Account       `json:"account"`
	Membership   *Membership   `json:"membership,omitempty"`
	LastSession  *time.Time    `json:"last_session,omitempty"`
	Orders       []Order       `json:"orders"`
	Reviews      []Review      `json:"reviews"`
	Favorites    []Favorite    `json:"favorites"`
	Interactions []Interaction `json:"interactions"`
}

// CatalogQuery filters a product lookup. Results come back ordered by
// catalog creation date descending.
type CatalogQuery struct {
	CategoryIDs []string `json:"category_ids"`
	ExcludeIDs  []string `json:"exclude_ids"`
	Limit       int      `json:"limit"`
}
