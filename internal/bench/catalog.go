package bench

import (
	"fmt"

	"ecombench/internal/docstore"
	"ecombench/internal/model"
)

// Catalog query names.
const (
	TotalOrdersPerClient    = "total_orders_per_client"
	TotalQuantityPerProduct = "total_quantity_per_product"
	AvgSpendPerClient       = "avg_spend_per_client"
)

// TopN is the row limit of every catalog query.
const TopN = 10

// Query is one benchmark entry: the same question asked of both stores.
// Both renditions return Columns, ranked by the metric descending and then
// by id ascending.
type Query struct {
	Name       string
	SQL        string
	Collection string
	Pipeline   docstore.Pipeline
	Columns    []string
}

// Catalog returns the reference queries in execution order.
func Catalog() []Query {
	return []Query{
		totalOrdersPerClient(),
		totalQuantityPerProduct(),
		avgSpendPerClient(),
	}
}

// Lookup finds a catalog entry by name.
func Lookup(catalog []Query, name string) (Query, bool) {
	for _, q := range catalog {
		if q.Name == name {
			return q, true
		}
	}
	return Query{}, false
}

func totalOrdersPerClient() Query {
	return Query{
		Name: TotalOrdersPerClient,
		SQL: `SELECT c.id AS client_id, c.name AS name, COUNT(o.id) AS total_orders
FROM clients c
JOIN orders o ON o.client_id = c.id
GROUP BY c.id, c.name
ORDER BY total_orders DESC, c.id ASC
LIMIT 10`,
		Collection: model.CollCarts,
		Columns:    []string{"client_id", "name", "total_orders"},
		Pipeline: docstore.Pipeline{
			Stages: ranked([]docstore.Stage{
				docstore.Group{Key: model.FieldClientID, Accumulators: []docstore.Accumulator{
					{As: "total_orders", Op: docstore.Count},
				}},
			}, model.CollClients, "client_id", "total_orders"),
			Native: `SELECT client_id, type::thing('clients', client_id).name AS name, total_orders
FROM (SELECT client_id, count() AS total_orders FROM carts GROUP BY client_id)
ORDER BY total_orders DESC, client_id ASC
LIMIT 10`,
		},
	}
}

func totalQuantityPerProduct() Query {
	return Query{
		Name: TotalQuantityPerProduct,
		SQL: `SELECT p.id AS product_id, p.name AS name, SUM(oi.quantity) AS total_quantity
FROM products p
JOIN order_items oi ON oi.product_id = p.id
GROUP BY p.id, p.name
ORDER BY total_quantity DESC, p.id ASC
LIMIT 10`,
		Collection: model.CollCarts,
		Columns:    []string{"product_id", "name", "total_quantity"},
		Pipeline: docstore.Pipeline{
			Stages: ranked([]docstore.Stage{
				docstore.Unwind{Field: model.FieldItems},
				docstore.Group{Key: model.FieldItems + "." + model.FieldProductID, Accumulators: []docstore.Accumulator{
					{As: "total_quantity", Op: docstore.Sum, Field: model.FieldItems + "." + model.FieldQuantity},
				}},
			}, model.CollProducts, "product_id", "total_quantity"),
			Native: `SELECT product_id, type::thing('products', product_id).name AS name, total_quantity
FROM (
  SELECT items.product_id AS product_id, math::sum(items.quantity) AS total_quantity
  FROM (SELECT items FROM carts SPLIT items)
  GROUP BY product_id
)
ORDER BY total_quantity DESC, product_id ASC
LIMIT 10`,
		},
	}
}

// avgSpendPerClient divides a client's total spend by their order count. An
// order without items adds nothing to the spend but still counts, and
// clients without orders never reach the division.
func avgSpendPerClient() Query {
	return Query{
		Name: AvgSpendPerClient,
		SQL: `SELECT c.id AS client_id, c.name AS name,
  COALESCE(SUM(oi.quantity * oi.unit_price), 0) * 1.0 / COUNT(DISTINCT o.id) AS avg_spend
FROM clients c
JOIN orders o ON o.client_id = c.id
LEFT JOIN order_items oi ON oi.order_id = o.id
GROUP BY c.id, c.name
ORDER BY avg_spend DESC, c.id ASC
LIMIT 10`,
		Collection: model.CollCarts,
		Columns:    []string{"client_id", "name", "avg_spend"},
		Pipeline: docstore.Pipeline{
			Stages: ranked([]docstore.Stage{
				docstore.Set{Field: "order_total", Fn: cartTotal},
				docstore.Group{Key: model.FieldClientID, Accumulators: []docstore.Accumulator{
					{As: "total_spend", Op: docstore.Sum, Field: "order_total"},
					{As: "orders", Op: docstore.Count},
				}},
				docstore.Set{Field: "avg_spend", Fn: average},
			}, model.CollClients, "client_id", "avg_spend"),
			Native: `SELECT client_id, type::thing('clients', client_id).name AS name, total_spend / orders AS avg_spend
FROM (
  SELECT client_id, math::sum(order_total) AS total_spend, count() AS orders
  FROM (SELECT client_id, math::sum(items.map(|$i| $i.quantity * $i.unit_price)) AS order_total FROM carts)
  GROUP BY client_id
)
ORDER BY avg_spend DESC, client_id ASC
LIMIT 10`,
		},
	}
}

// ranked completes a grouped pipeline: it joins the referenced entity for
// its name, reshapes each group into (idField, name, metric), orders by
// metric descending then id ascending, and keeps the top rows. Groups with
// no matching entity are dropped, like an inner join.
func ranked(head []docstore.Stage, from, idField, metric string) []docstore.Stage {
	const joinedAs = "_entity"
	return append(head,
		docstore.Lookup{From: from, LocalField: docstore.GroupKeyField, ForeignField: model.FieldID, As: joinedAs},
		docstore.Unwind{Field: joinedAs},
		docstore.Project{Fields: []docstore.Projection{
			{As: idField, Path: docstore.GroupKeyField},
			{As: "name", Path: joinedAs + "." + model.FieldName},
			{As: metric, Path: metric},
		}},
		docstore.Sort{Keys: []docstore.SortKey{{Field: metric, Desc: true}, {Field: idField}}},
		docstore.Limit{N: TopN},
	)
}

func cartTotal(d docstore.Document) (any, error) {
	raw, ok := d[model.FieldItems]
	if !ok || raw == nil {
		return 0.0, nil
	}
	items, ok := docstore.AsArray(raw)
	if !ok {
		return nil, fmt.Errorf("cart items: unexpected %T", raw)
	}
	total := 0.0
	for _, it := range items {
		var m map[string]any
		switch v := it.(type) {
		case map[string]any:
			m = v
		case docstore.Document:
			m = v
		default:
			return nil, fmt.Errorf("cart item: unexpected %T", it)
		}
		q, okQ := docstore.Number(m[model.FieldQuantity])
		p, okP := docstore.Number(m[model.FieldUnitPrice])
		if !okQ || !okP {
			return nil, fmt.Errorf("cart item: non-numeric quantity or unit_price")
		}
		total += q * p
	}
	return total, nil
}

func average(d docstore.Document) (any, error) {
	n, ok := docstore.Number(d["orders"])
	if !ok || n == 0 {
		return nil, fmt.Errorf("average: group without orders")
	}
	s, _ := docstore.Number(d["total_spend"])
	return s / n, nil
}
