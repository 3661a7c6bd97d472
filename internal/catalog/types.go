// Package catalog defines the records kept in the store: catalog items with their embedded
// category and seller, and the per-user secondary collections.
package catalog

import (
	"time"

	"github.com/shopspring/decimal"
)

// Category is embedded by value into every item at write time. Renaming a category does not
// touch items already stored.
type Category struct {
	ID       string `json:"id" validate:"required"`
	Name     string `json:"name"`
	Slug     string `json:"slug,omitempty"`
	ParentID string `json:"parentId,omitempty"`
}

// Seller is embedded by value, like Category.
type Seller struct {
	ID       string  `json:"id" validate:"required"`
	Name     string  `json:"name"`
	Rating   float64 `json:"rating" validate:"gte=0,lte=5"`
	Verified bool    `json:"verified"`
}

// CatalogItem is one product of the catalog.
type CatalogItem struct {
	ID                 string           `json:"id" validate:"required"`
	Name               string           `json:"name" validate:"required,max=200"`
	Description        string           `json:"description"`
	Price              decimal.Decimal  `json:"price" validate:"gte=0"`
	OriginalPrice      *decimal.Decimal `json:"originalPrice,omitempty" validate:"omitempty,gte=0"`
	DiscountPercentage *float64         `json:"discountPercentage,omitempty" validate:"omitempty,gte=0,lte=100"`
	Category           Category         `json:"category"`
	Brand              string           `json:"brand"`
	Seller             Seller           `json:"seller"`
	Rating             float64          `json:"rating" validate:"gte=0,lte=5"`
	ReviewCount        int              `json:"reviewCount" validate:"gte=0"`
	InStock            bool             `json:"inStock"`
	// StockCount is not forced to zero when InStock is false.
	StockCount int       `json:"stockCount" validate:"gte=0"`
	Sizes      []string  `json:"sizes,omitempty"`
	Tags       []string  `json:"tags"`
	IsNew      bool      `json:"isNew"`
	IsFeatured bool      `json:"isFeatured"`
	IsOnSale   bool      `json:"isOnSale"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// CartItem is one line of a user's cart.
type CartItem struct {
	ID        string          `json:"id"`
	ProductID string          `json:"productId" validate:"required"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity" validate:"gte=1"`
	Size      string          `json:"size,omitempty"`
	Color     string          `json:"color,omitempty"`
	AddedAt   time.Time       `json:"addedAt"`
}

// LineTotal is price times quantity.
func (c CartItem) LineTotal() decimal.Decimal {
	return c.Price.Mul(decimal.NewFromInt(int64(c.Quantity)))
}

// WishlistItem is a product a user saved for later.
type WishlistItem struct {
	ProductID string          `json:"productId"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	AddedAt   time.Time       `json:"addedAt"`
}

type NotificationType string

const (
	NotificationOrder     NotificationType = "order"
	NotificationPromotion NotificationType = "promotion"
	NotificationStock     NotificationType = "stock"
	NotificationSystem    NotificationType = "system"
)

// Notification is a message shown in a user's inbox.
type Notification struct {
	ID        string            `json:"id"`
	Type      NotificationType  `json:"type" validate:"required"`
	Title     string            `json:"title" validate:"required"`
	Message   string            `json:"message"`
	Read      bool              `json:"read"`
	CreatedAt time.Time         `json:"createdAt"`
	Data      map[string]string `json:"data,omitempty"`
}

type OrderStatus string

const (
	OrderPending    OrderStatus = "pending"
	OrderProcessing OrderStatus = "processing"
	OrderShipped    OrderStatus = "shipped"
	OrderDelivered  OrderStatus = "delivered"
	OrderCancelled  OrderStatus = "cancelled"
)

// Cancellable reports whether an order in this status may still be cancelled.
func (s OrderStatus) Cancellable() bool {
	return s == OrderPending || s == OrderProcessing
}

// OrderLine is a cart line frozen into an order.
type OrderLine struct {
	ProductID string          `json:"productId"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
	Size      string          `json:"size,omitempty"`
	Color     string          `json:"color,omitempty"`
}

type Address struct {
	FullName   string `json:"fullName" validate:"required"`
	Street     string `json:"street" validate:"required"`
	City       string `json:"city" validate:"required"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country" validate:"required"`
	Phone      string `json:"phone,omitempty"`
}

// Order is a placed order of one user.
type Order struct {
	ID              string          `json:"id"`
	UserID          string          `json:"userId"`
	Items           []OrderLine     `json:"items"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	Shipping        decimal.Decimal `json:"shipping"`
	Total           decimal.Decimal `json:"total"`
	Status          OrderStatus     `json:"status"`
	ShippingAddress Address         `json:"shippingAddress"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

// Review is a user's rating of a product.
type Review struct {
	ID        string    `json:"id"`
	ProductID string    `json:"productId" validate:"required"`
	UserID    string    `json:"userId" validate:"required"`
	UserName  string    `json:"userName"`
	Rating    int       `json:"rating" validate:"gte=1,lte=5"`
	Title     string    `json:"title" validate:"max=120"`
	Comment   string    `json:"comment"`
	Helpful   int       `json:"helpful"`
	CreatedAt time.Time `json:"createdAt"`
}
