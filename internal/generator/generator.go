// Package generator synthesizes the e-commerce dataset: clients, products,
// reviews and carts. Output is deterministic for a fixed seed and clock.
package generator

import (
	"fmt"
	"math"
	"math/rand"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"ecombench/internal/model"
)

// Counts sizes a dataset.
type Counts struct {
	Clients  int `json:"clients"`
	Products int `json:"products"`
	Reviews  int `json:"reviews"`
	Carts    int `json:"carts"`
}

// DefaultCounts is the reference dataset size.
var DefaultCounts = Counts{Clients: 5000, Products: 100, Reviews: 2000, Carts: 1000}

const (
	minPrice       = 10.0
	maxPrice       = 500.0
	maxCartItems   = 5
	maxQuantity    = 3
	commentWords   = 6
	clientHistory  = 2 // years
	activityWindow = 1 // years
)

// Generator is not safe for concurrent use.
type Generator struct {
	rand *rand.Rand
	now  time.Time
}

// New returns a generator seeded with seed, anchored at the current time.
func New(seed int64) *Generator {
	return NewAt(seed, time.Now())
}

// NewAt anchors the generated date ranges at now.
func NewAt(seed int64, now time.Time) *Generator {
	return &Generator{rand: rand.New(rand.NewSource(seed)), now: now.UTC().Truncate(time.Second)}
}

// Clients returns n clients with ids 1..n.
func (g *Generator) Clients(n int) []model.Client {
	out := make([]model.Client, 0, n)
	since := g.now.AddDate(-clientHistory, 0, 0)
	for i := 1; i <= n; i++ {
		first := pick(g.rand, firstNames)
		last := pick(g.rand, lastNames)
		out = append(out, model.Client{
			ID:           int64(i),
			Name:         first + " " + last,
			Email:        fmt.Sprintf("%s.%s%d@%s", fold(first), fold(last), i, pick(g.rand, emailDomains)),
			RegisteredOn: g.between(since, g.now).Truncate(24 * time.Hour),
		})
	}
	return out
}

// Products returns n products with ids 1..n and prices in [10, 500].
func (g *Generator) Products(n int) []model.Product {
	out := make([]model.Product, 0, n)
	for i := 1; i <= n; i++ {
		out = append(out, model.Product{
			ID:    int64(i),
			Name:  capitalize(pick(g.rand, words)),
			Price: cents(minPrice + g.rand.Float64()*(maxPrice-minPrice)),
		})
	}
	return out
}

// Reviews returns n reviews by clients drawn from clientIDs on products
// 1..productCount. It returns nil when either pool is empty.
func (g *Generator) Reviews(n int, clientIDs []int64, productCount int) []model.Review {
	if len(clientIDs) == 0 || productCount <= 0 {
		return nil
	}
	out := make([]model.Review, 0, n)
	since := g.now.AddDate(-activityWindow, 0, 0)
	for i := 0; i < n; i++ {
		out = append(out, model.Review{
			ProductID: int64(1 + g.rand.Intn(productCount)),
			ClientID:  pick(g.rand, clientIDs),
			Rating:    math.Round((1+g.rand.Float64()*4)*10) / 10,
			Comment:   g.sentence(commentWords),
			Timestamp: g.between(since, g.now),
		})
	}
	return out
}

// Carts returns n carts for clients drawn from clientIDs. Each cart holds
// 1..5 distinct products (fewer if the catalog is smaller), quantities 1..3,
// and unit prices copied from the product. It returns nil when clientIDs is
// empty.
func (g *Generator) Carts(n int, clientIDs []int64, products []model.Product) []model.Cart {
	if len(clientIDs) == 0 {
		return nil
	}
	out := make([]model.Cart, 0, n)
	since := g.now.AddDate(-activityWindow, 0, 0)
	for i := 0; i < n; i++ {
		var items []model.LineItem
		if len(products) > 0 {
			k := 1 + g.rand.Intn(min(maxCartItems, len(products)))
			items = make([]model.LineItem, 0, k)
			for _, idx := range g.rand.Perm(len(products))[:k] {
				p := products[idx]
				items = append(items, model.LineItem{
					ProductID: p.ID,
					Quantity:  int64(1 + g.rand.Intn(maxQuantity)),
					UnitPrice: p.Price,
				})
			}
		}
		token, err := uuid.NewRandomFromReader(g.rand)
		if err != nil {
			// math/rand readers never fail.
			panic(err)
		}
		out = append(out, model.Cart{
			OrderID:     token.String(),
			ClientID:    pick(g.rand, clientIDs),
			Items:       items,
			LastUpdated: g.between(since, g.now),
		})
	}
	return out
}

// Dataset is one generated set of documents.
type Dataset struct {
	Clients  []model.Client
	Products []model.Product
	Reviews  []model.Review
	Carts    []model.Cart
}

// Generate builds a full dataset. Reviews and carts reference the generated
// clients and products only.
func (g *Generator) Generate(c Counts) Dataset {
	clients := g.Clients(c.Clients)
	ids := make([]int64, len(clients))
	for i, cl := range clients {
		ids[i] = cl.ID
	}
	products := g.Products(c.Products)
	return Dataset{
		Clients:  clients,
		Products: products,
		Reviews:  g.Reviews(c.Reviews, ids, len(products)),
		Carts:    g.Carts(c.Carts, ids, products),
	}
}

// between returns a time in [from, to), truncated to the second.
func (g *Generator) between(from, to time.Time) time.Time {
	span := to.Sub(from)
	if span <= 0 {
		return from
	}
	return from.Add(time.Duration(g.rand.Int63n(int64(span)))).Truncate(time.Second)
}

func (g *Generator) sentence(n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = pick(g.rand, words)
	}
	return capitalize(strings.Join(parts, " ")) + "."
}

func pick[T any](r *rand.Rand, xs []T) T {
	return xs[r.Intn(len(xs))]
}

func cents(f float64) float64 {
	return math.Round(f*100) / 100
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if size == 0 {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

// fold lowercases s and strips accents (NFD, drop Mn, NFC).
func fold(s string) string {
	t := transform.Chain(
		norm.NFD,
		runes.Remove(runes.In(unicode.Mn)),
		norm.NFC,
	)
	ascii, _, _ := transform.String(t, strings.ToLower(s))
	return ascii
}
