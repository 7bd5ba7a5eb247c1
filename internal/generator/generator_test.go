package generator

import (
	"os"
	"regexp"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ecombench/internal/model"
	"ecombench/internal/transform"
)

var anchor = time.Date(2025, 6, 15, 10, 30, 0, 0, time.UTC)

var small = Counts{Clients: 50, Products: 8, Reviews: 40, Carts: 60}

func TestGenerate_Deterministic(t *testing.T) {
	t.Parallel()

	a := NewAt(42, anchor).Generate(small)
	b := NewAt(42, anchor).Generate(small)
	assert.Equal(t, a, b)

	c := NewAt(43, anchor).Generate(small)
	assert.NotEqual(t, a.Carts, c.Carts)
}

func TestClients(t *testing.T) {
	t.Parallel()

	email := regexp.MustCompile(`^[a-z]+\.[a-z]+[0-9]+@[a-z.]+$`)
	clients := NewAt(1, anchor).Clients(200)
	require.Len(t, clients, 200)
	for i, c := range clients {
		assert.Equal(t, int64(i+1), c.ID)
		assert.NotEmpty(t, c.Name)
		assert.Regexp(t, email, c.Email)
		assert.False(t, c.RegisteredOn.After(anchor))
		assert.False(t, c.RegisteredOn.Before(anchor.AddDate(-2, 0, -1)))
		assert.Equal(t, c.RegisteredOn, c.RegisteredOn.Truncate(24*time.Hour))
	}
}

func TestProducts_PriceRange(t *testing.T) {
	t.Parallel()

	for i, p := range NewAt(7, anchor).Products(500) {
		assert.Equal(t, int64(i+1), p.ID)
		assert.GreaterOrEqual(t, p.Price, 10.0)
		assert.LessOrEqual(t, p.Price, 500.0)
		assert.InDelta(t, p.Price, cents(p.Price), 1e-9)
	}
}

func TestReviews(t *testing.T) {
	t.Parallel()

	g := NewAt(3, anchor)
	reviews := g.Reviews(300, []int64{4, 5, 6}, 10)
	require.Len(t, reviews, 300)
	for _, r := range reviews {
		assert.GreaterOrEqual(t, r.Rating, 1.0)
		assert.LessOrEqual(t, r.Rating, 5.0)
		assert.InDelta(t, r.Rating*10, float64(int(r.Rating*10+0.5)), 1e-9)
		assert.Contains(t, []int64{4, 5, 6}, r.ClientID)
		assert.True(t, r.ProductID >= 1 && r.ProductID <= 10)
		assert.NotEmpty(t, r.Comment)
	}

	assert.Nil(t, g.Reviews(5, nil, 10))
	assert.Nil(t, g.Reviews(5, []int64{1}, 0))
}

func TestCarts(t *testing.T) {
	t.Parallel()

	g := NewAt(9, anchor)
	products := g.Products(3)
	price := map[int64]float64{}
	for _, p := range products {
		price[p.ID] = p.Price
	}

	carts := g.Carts(200, []int64{1, 2}, products)
	require.Len(t, carts, 200)
	tokens := map[string]bool{}
	for _, c := range carts {
		_, err := uuid.Parse(c.OrderID)
		require.NoError(t, err)
		assert.False(t, tokens[c.OrderID], "duplicate order token")
		tokens[c.OrderID] = true

		// Bounded by the three-product catalog.
		require.GreaterOrEqual(t, len(c.Items), 1)
		require.LessOrEqual(t, len(c.Items), 3)
		seen := map[int64]bool{}
		for _, it := range c.Items {
			assert.False(t, seen[it.ProductID], "products within a cart are distinct")
			seen[it.ProductID] = true
			assert.True(t, it.Quantity >= 1 && it.Quantity <= 3)
			assert.Equal(t, price[it.ProductID], it.UnitPrice)
		}
		assert.False(t, c.LastUpdated.After(anchor))
	}

	assert.Nil(t, g.Carts(3, nil, products))
	for _, c := range g.Carts(3, []int64{1}, nil) {
		assert.Empty(t, c.Items)
	}
}

func TestFold(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"Cecília":   "cecilia",
		"Gonçalves": "goncalves",
		"João":      "joao",
		"Silva":     "silva",
	}
	for in, want := range tests {
		assert.Equal(t, want, fold(in), in)
	}
}

func TestSaveJSON_RoundTripsThroughTransform(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	ds := NewAt(11, anchor).Generate(small)

	paths, err := ds.SaveJSON(dir)
	require.NoError(t, err)
	require.Len(t, paths, 4)
	for i, coll := range model.Collections {
		assert.Equal(t, ArtifactPath(dir, coll), paths[i])
	}

	docs, err := LoadArtifacts(dir)
	require.NoError(t, err)
	require.Len(t, docs, len(model.Collections))
	clients, products, carts := docs[model.CollClients], docs[model.CollProducts], docs[model.CollCarts]
	assert.Len(t, docs[model.CollReviews], small.Reviews)

	reviews, err := LoadJSON(dir, model.CollReviews)
	require.NoError(t, err)
	assert.Equal(t, docs[model.CollReviews], reviews)

	res, err := transform.Run(clients, products, carts)
	require.NoError(t, err)
	require.Len(t, res.Clients, small.Clients)
	for i, c := range ds.Clients {
		got := res.Clients[i]
		assert.Equal(t, c.ID, got.ID)
		assert.Equal(t, c.Name, got.Name)
		assert.Equal(t, c.Email, got.Email)
		assert.True(t, c.RegisteredOn.Equal(got.RegisteredOn))
	}
	assert.Equal(t, ds.Products, res.Products)
	require.Len(t, res.Orders, small.Carts)

	items := 0
	for i, c := range ds.Carts {
		assert.Equal(t, int64(i+1), res.Orders[i].ID)
		assert.Equal(t, c.ClientID, res.Orders[i].ClientID)
		assert.True(t, c.LastUpdated.Equal(res.Orders[i].OrderDate))
		items += len(c.Items)
	}
	assert.Len(t, res.Items, items)

	_, err = LoadJSON(dir, "missing")
	assert.Error(t, err)

	require.NoError(t, os.Remove(ArtifactPath(dir, model.CollReviews)))
	_, err = LoadArtifacts(dir)
	assert.Error(t, err)
}
