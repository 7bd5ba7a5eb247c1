// Package model holds the e-commerce entities in both their document shape
// (clients, products, reviews, carts) and their relational shape (clients,
// products, orders, order_items).
package model

import "time"

// Collection and table names.
const (
	CollClients  = "clients"
	CollProducts = "products"
	CollReviews  = "reviews"
	CollCarts    = "carts"

	TableClients    = "clients"
	TableProducts   = "products"
	TableOrders     = "orders"
	TableOrderItems = "order_items"
)

// Collections lists the document collections in load order.
var Collections = []string{CollClients, CollProducts, CollReviews, CollCarts}

// Document field names.
const (
	FieldID           = "id"
	FieldName         = "name"
	FieldEmail        = "email"
	FieldRegisteredOn = "registered_on"
	FieldPrice        = "price"

	FieldProductID = "product_id"
	FieldClientID  = "client_id"
	FieldRating    = "rating"
	FieldComment   = "comment"
	FieldTimestamp = "timestamp"

	FieldOrderID     = "order_id"
	FieldItems       = "items"
	FieldQuantity    = "quantity"
	FieldUnitPrice   = "unit_price"
	FieldLastUpdated = "last_updated"
)

// Date layouts used in documents and generated artifacts.
const (
	DateLayout      = "2006-01-02"
	TimestampLayout = time.RFC3339
)

type Client struct {
	ID           int64
	Name         string
	Email        string
	RegisteredOn time.Time
}

type Product struct {
	ID    int64
	Name  string
	Price float64
}

type Review struct {
	ProductID int64
	ClientID  int64
	Rating    float64
	Comment   string
	Timestamp time.Time
}

// LineItem is one product entry of a cart. UnitPrice is frozen at cart time.
type LineItem struct {
	ProductID int64
	Quantity  int64
	UnitPrice float64
}

// Cart is the document-shaped purchase. OrderID is an opaque token and is
// not carried into the relational model.
type Cart struct {
	OrderID     string
	ClientID    int64
	Items       []LineItem
	LastUpdated time.Time
}

// Order is the relational header row derived from a cart. ID is the 1-based
// position of the cart in the extracted sequence.
type Order struct {
	ID        int64
	ClientID  int64
	OrderDate time.Time
}

// OrderItem is one relational line of an order.
type OrderItem struct {
	OrderID   int64
	ProductID int64
	Quantity  int64
	UnitPrice float64
}

// Document renders c with the collection field names.
func (c Client) Document() map[string]any {
	return map[string]any{
		FieldID:           c.ID,
		FieldName:         c.Name,
		FieldEmail:        c.Email,
		FieldRegisteredOn: c.RegisteredOn.Format(DateLayout),
	}
}

func (p Product) Document() map[string]any {
	return map[string]any{
		FieldID:    p.ID,
		FieldName:  p.Name,
		FieldPrice: p.Price,
	}
}

func (r Review) Document() map[string]any {
	return map[string]any{
		FieldProductID: r.ProductID,
		FieldClientID:  r.ClientID,
		FieldRating:    r.Rating,
		FieldComment:   r.Comment,
		FieldTimestamp: r.Timestamp.UTC().Format(TimestampLayout),
	}
}

func (c Cart) Document() map[string]any {
	items := make([]any, 0, len(c.Items))
	for _, it := range c.Items {
		items = append(items, map[string]any{
			FieldProductID: it.ProductID,
			FieldQuantity:  it.Quantity,
			FieldUnitPrice: it.UnitPrice,
		})
	}
	return map[string]any{
		FieldOrderID:     c.OrderID,
		FieldClientID:    c.ClientID,
		FieldItems:       items,
		FieldLastUpdated: c.LastUpdated.UTC().Format(TimestampLayout),
	}
}

// Relational column names, in table order.
var (
	ClientColumns    = []string{"id", "name", "email", "registered_date"}
	ProductColumns   = []string{"id", "name", "price"}
	OrderColumns     = []string{"id", "client_id", "order_timestamp"}
	OrderItemColumns = []string{"order_id", "product_id", "quantity", "unit_price"}
)

// Row renders c in ClientColumns order.
func (c Client) Row() []any {
	return []any{c.ID, c.Name, c.Email, c.RegisteredOn}
}

func (p Product) Row() []any {
	return []any{p.ID, p.Name, p.Price}
}

func (o Order) Row() []any {
	return []any{o.ID, o.ClientID, o.OrderDate}
}

func (it OrderItem) Row() []any {
	return []any{it.OrderID, it.ProductID, it.Quantity, it.UnitPrice}
}
