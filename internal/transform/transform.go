// Package transform reshapes document-shaped clients, products and carts
// into the relational model: clients, products, orders and order_items.
//
// Each cart becomes one order whose id is the cart's 1-based position in the
// input sequence; the cart's own order token is discarded. Order headers and
// their items are produced in a single traversal so an item can only ever
// reference the order built from its own cart.
//
// All functions are pure: they never touch a store and never mutate their
// input.
package transform

import (
	"fmt"

	"ecombench/internal/docstore"
	"ecombench/internal/errkind"
	"ecombench/internal/model"
	"ecombench/internal/table"
)

// ExtractClients projects client documents onto id, name, email and
// registration date.
func ExtractClients(docs []docstore.Document) ([]model.Client, error) {
	out := make([]model.Client, 0, len(docs))
	for i, d := range docs {
		id, err := intField("clients", i, d, model.FieldID)
		if err != nil {
			return nil, err
		}
		name, err := stringField("clients", i, d, model.FieldName)
		if err != nil {
			return nil, err
		}
		email, err := stringField("clients", i, d, model.FieldEmail)
		if err != nil {
			return nil, err
		}
		reg, err := timeField("clients", i, d, model.FieldRegisteredOn)
		if err != nil {
			return nil, err
		}
		out = append(out, model.Client{ID: id, Name: name, Email: email, RegisteredOn: reg})
	}
	return out, nil
}

// ExtractProducts projects product documents onto id, name and price.
func ExtractProducts(docs []docstore.Document) ([]model.Product, error) {
	out := make([]model.Product, 0, len(docs))
	for i, d := range docs {
		id, err := intField("products", i, d, model.FieldID)
		if err != nil {
			return nil, err
		}
		name, err := stringField("products", i, d, model.FieldName)
		if err != nil {
			return nil, err
		}
		price, err := floatField("products", i, d, model.FieldPrice)
		if err != nil {
			return nil, err
		}
		out = append(out, model.Product{ID: id, Name: name, Price: price})
	}
	return out, nil
}

// Relational is the output of Relationalize, in cart order and then item
// order.
type Relational struct {
	Orders []model.Order
	Items  []model.OrderItem
}

// Relationalize converts carts into orders and order items in one pass. The
// surrogate id of cart i (0-based) is i+1 and is assigned exactly once.
func Relationalize(carts []docstore.Document) (Relational, error) {
	rel := Relational{Orders: make([]model.Order, 0, len(carts))}
	for i, c := range carts {
		id := int64(i + 1)
		clientID, err := intField("carts", i, c, model.FieldClientID)
		if err != nil {
			return Relational{}, err
		}
		ts, err := timeField("carts", i, c, model.FieldLastUpdated)
		if err != nil {
			return Relational{}, err
		}
		items, err := cartItems(i, id, c)
		if err != nil {
			return Relational{}, err
		}
		o := model.Order{ID: id, ClientID: clientID, OrderDate: ts}
		rel.Orders = append(rel.Orders, o)
		rel.Items = append(rel.Items, items...)
	}
	return rel, nil
}

func cartItems(idx int, orderID int64, c docstore.Document) ([]model.OrderItem, error) {
	raw, err := field("carts", idx, c, model.FieldItems)
	if err != nil {
		return nil, err
	}
	arr, ok := docstore.AsArray(raw)
	if !ok {
		return nil, mismatch("carts", idx, model.FieldItems, raw, "array")
	}
	items := make([]model.OrderItem, 0, len(arr))
	for j, el := range arr {
		var d docstore.Document
		switch m := el.(type) {
		case map[string]any:
			d = docstore.Document(m)
		case docstore.Document:
			d = m
		default:
			return nil, errkind.Schema("extract carts", fmt.Sprintf("row %d item %d", idx, j),
				fmt.Errorf("cannot use %T as item", el))
		}
		entity := fmt.Sprintf("carts.items[%d]", j)
		pid, err := intField(entity, idx, d, model.FieldProductID)
		if err != nil {
			return nil, err
		}
		qty, err := intField(entity, idx, d, model.FieldQuantity)
		if err != nil {
			return nil, err
		}
		price, err := floatField(entity, idx, d, model.FieldUnitPrice)
		if err != nil {
			return nil, err
		}
		items = append(items, model.OrderItem{OrderID: orderID, ProductID: pid, Quantity: qty, UnitPrice: price})
	}
	return items, nil
}

// DeriveOrders returns the order headers for carts.
func DeriveOrders(carts []docstore.Document) ([]model.Order, error) {
	rel, err := Relationalize(carts)
	if err != nil {
		return nil, err
	}
	return rel.Orders, nil
}

// DeriveOrderItems returns the order items for carts.
func DeriveOrderItems(carts []docstore.Document) ([]model.OrderItem, error) {
	rel, err := Relationalize(carts)
	if err != nil {
		return nil, err
	}
	return rel.Items, nil
}

// Result bundles everything the relational loader writes.
type Result struct {
	Clients  []model.Client
	Products []model.Product
	Relational
}

// Run extracts clients and products and relationalizes carts.
func Run(clients, products, carts []docstore.Document) (Result, error) {
	cs, err := ExtractClients(clients)
	if err != nil {
		return Result{}, err
	}
	ps, err := ExtractProducts(products)
	if err != nil {
		return Result{}, err
	}
	rel, err := Relationalize(carts)
	if err != nil {
		return Result{}, err
	}
	return Result{Clients: cs, Products: ps, Relational: rel}, nil
}

// NamedTable pairs a relational table name with its rows.
type NamedTable struct {
	Name  string
	Table table.Table
}

// Tables lays the result out in foreign-key load order: clients, products,
// orders, order_items.
func (r Result) Tables() []NamedTable {
	clients := table.New(model.ClientColumns...)
	for _, c := range r.Clients {
		clients.Rows = append(clients.Rows, c.Row())
	}
	products := table.New(model.ProductColumns...)
	for _, p := range r.Products {
		products.Rows = append(products.Rows, p.Row())
	}
	orders := table.New(model.OrderColumns...)
	for _, o := range r.Orders {
		orders.Rows = append(orders.Rows, o.Row())
	}
	items := table.New(model.OrderItemColumns...)
	for _, it := range r.Items {
		items.Rows = append(items.Rows, it.Row())
	}
	return []NamedTable{
		{Name: model.TableClients, Table: clients},
		{Name: model.TableProducts, Table: products},
		{Name: model.TableOrders, Table: orders},
		{Name: model.TableOrderItems, Table: items},
	}
}
