// Package generator produces synthetic purchase records. It stands in
// for the real transaction-query backend during development; the
// surrounding cache and pagination contracts do not depend on it.
package generator

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/rockstar-cards/cashback-bfa-go/internal/domain"
	"github.com/rockstar-cards/cashback-bfa-go/internal/period"
)

// merchantNames are the establishment pools per category.
var merchantNames = map[domain.CategoryCode][]string{
	domain.CategorySupermarket:   {"WALMART", "SORIANA", "COMERCIAL MEXICANA", "CITY CLUB", "COSTCO", "LA COMER", "BODEGA AURRERA"},
	domain.CategoryRestaurant:    {"VIPS", "SANBORNS", "EL PORTÓN", "TOK'S", "ITALIANNIS", "CHILI'S", "APPLEBEE'S", "DOMINO'S"},
	domain.CategoryPharmacy:      {"FARMACIAS GUADALAJARA", "FARMACIA DEL AHORRO", "SIMILARES", "FARMACIA SAN PABLO", "BENAVÍDES"},
	domain.CategoryTelecom:       {"TELCEL", "MOVISTAR", "AT&T", "UNEFON", "VIRGIN MOBILE", "BAIT"},
	domain.CategoryGasStation:    {"PEMEX", "BP", "SHELL", "MOBIL", "GULF"},
	domain.CategoryEntertainment: {"CINEMEX", "CINEPOLIS", "TICKETMASTER", "LIVE NATION"},
}

// Generator builds randomized purchases for a filter set and date
// range. It owns its rand.Rand instance so tests can seed it and so no
// package-level global state leaks between instances.
type Generator struct {
	mu  sync.Mutex
	rng *rand.Rand
	now func() time.Time
}

// Option customizes a Generator.
type Option func(*Generator)

// WithSeed makes the generator deterministic for tests.
func WithSeed(seed int64) Option {
	return func(g *Generator) { g.rng = rand.New(rand.NewSource(seed)) }
}

// WithClock replaces the reference-time source.
func WithClock(now func() time.Time) Option {
	return func(g *Generator) { g.now = now }
}

// New creates a Generator.
func New(opts ...Option) *Generator {
	g := &Generator{
		rng: rand.New(rand.NewSource(time.Now().UnixNano())),
		now: time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate produces count purchases matching the filters, sorted by
// order date descending. It may return fewer than count only if count
// is not positive.
func (g *Generator) Generate(filters domain.TransactionFilters, count int) []domain.Purchase {
	if count <= 0 {
		return []domain.Purchase{}
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	rng := period.ResolveAt(filters.Period, g.now()).DateRange
	categories := categoriesToGenerate(filters.Category)
	perCategory := int(math.Ceil(float64(count) / float64(len(categories))))

	txns := make([]domain.Purchase, 0, perCategory*len(categories))
	for catIndex, cat := range categories {
		for i := 0; i < perCategory; i++ {
			date := g.randomDate(rng.Start, rng.End)
			txns = append(txns, g.purchase(cat, date, catIndex*perCategory+i))
		}
	}

	sort.Slice(txns, func(i, j int) bool {
		return txns[i].OrderDate.After(txns[j].OrderDate)
	})
	if len(txns) > count {
		txns = txns[:count]
	}
	return txns
}

// TotalCount emulates the backend's total transaction count for a
// paginated query: between 15 and 49.
func (g *Generator) TotalCount(_ domain.TransactionFilters) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.rng.Intn(35) + 15
}

// FullCount emulates the size of a full-period result set: between 10
// and 39.
func (g *Generator) FullCount(_ domain.TransactionFilters) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.rng.Intn(30) + 10
}

// AnnualMultiplier emulates the year-to-date factor over the month
// total: between 2 and 5. A real ledger backend replaces this with the
// actual year sum.
func (g *Generator) AnnualMultiplier() float64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.rng.Float64()*3 + 2
}

// categoriesToGenerate maps a category filter to the set to emit: the
// four filter-modal categories for "all" or anything unrecognized, the
// single category otherwise.
func categoriesToGenerate(filter domain.CategoryCode) []domain.CategoryCode {
	if filter != domain.CategoryAll && filter.Allowed() {
		return []domain.CategoryCode{filter}
	}
	return domain.AllowedCategories
}

func (g *Generator) randomDate(start, end time.Time) time.Time {
	span := end.Sub(start)
	return start.Add(time.Duration(g.rng.Int63n(int64(span))))
}

func (g *Generator) purchase(cat domain.CategoryCode, date time.Time, index int) domain.Purchase {
	merchants := merchantNames[cat]
	if len(merchants) == 0 {
		merchants = []string{"ESTABLECIMIENTO"}
	}
	percentage := domain.CashbackRate(cat)

	// Amount between 50 and 2000 pesos.
	amount := domain.Round2(g.rng.Float64()*1950 + 50)
	cashback := domain.Round2(amount * percentage / 100)

	return domain.Purchase{
		CardTransactionID:       fmt.Sprintf("TXN-%d-%d", g.now().UnixMilli(), index),
		AcquirerReferenceNumber: fmt.Sprintf("ARN%06d", g.rng.Intn(1000000)),
		OrderDate:               date,
		Amount: domain.Amount{
			Amount:   amount,
			Currency: domain.DefaultCurrency,
		},
		Clearing: domain.Clearing{
			CashBackPercentage: percentage,
			CashBackAmount: domain.Amount{
				Amount:   cashback,
				Currency: domain.DefaultCurrency,
			},
		},
		Merchant: domain.Merchant{
			Name:                merchants[g.rng.Intn(len(merchants))],
			CategoryCode:        cat,
			CategoryDescription: domain.CategoryDescription(cat),
		},
	}
}
