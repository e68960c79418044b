package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/elecmate/materials-compare/internal/domain"
)

// searchCall records one catalog query
type searchCall struct {
	term  string
	limit int
}

// fakeCatalog is a CatalogSearcher backed by a term -> products table
type fakeCatalog struct {
	mu      sync.Mutex
	results map[string][]domain.Product
	errs    map[string]error
	calls   []searchCall
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{
		results: make(map[string][]domain.Product),
		errs:    make(map[string]error),
	}
}

func (f *fakeCatalog) with(term string, products ...domain.Product) *fakeCatalog {
	f.results[term] = products
	return f
}

func (f *fakeCatalog) failing(term string, err error) *fakeCatalog {
	f.errs[term] = err
	return f
}

func (f *fakeCatalog) SearchCatalog(ctx context.Context, term string, limit int) ([]domain.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, searchCall{term: term, limit: limit})
	if err := f.errs[term]; err != nil {
		return nil, err
	}
	products := f.results[term]
	if len(products) > limit {
		products = products[:limit]
	}
	return products, nil
}

func (f *fakeCatalog) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

// fakeExpander is a TermExpander returning fixed phrasings
type fakeExpander struct {
	mu    sync.Mutex
	terms []string
	err   error
	calls int
}

func (f *fakeExpander) ExpandTerms(ctx context.Context, name string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.terms, nil
}

// fakeCache is an in-memory CacheRepository with injectable failures
type fakeCache struct {
	data      map[string][]byte
	getError  error
	setError  error
	setCalled bool
	deleted   []string
}

func newFakeCache() *fakeCache {
	return &fakeCache{data: make(map[string][]byte)}
}

func (m *fakeCache) Get(ctx context.Context, key string) ([]byte, error) {
	if m.getError != nil {
		return nil, m.getError
	}
	if value, ok := m.data[key]; ok {
		return value, nil
	}
	return nil, domain.ErrCacheMiss
}

func (m *fakeCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	m.setCalled = true
	if m.setError != nil {
		return m.setError
	}
	m.data[key] = value
	return nil
}

func (m *fakeCache) Delete(ctx context.Context, key string) error {
	m.deleted = append(m.deleted, key)
	delete(m.data, key)
	return nil
}

// product builds a catalog entry whose supplier name is derived from the slug
func product(id, slug, price string) domain.Product {
	return domain.Product{
		ProductID:    id,
		SupplierID:   "sup-" + slug,
		SupplierName: "Supplier " + slug,
		SupplierSlug: slug,
		Name:         "Product " + id,
		Price:        decimal.RequireFromString(price),
		StockStatus:  "in_stock",
		ProductURL:   "https://example.com/" + id,
	}
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func inputItem(name, qty string) domain.InputItem {
	return domain.InputItem{Name: name, Quantity: dec(qty), Unit: "each"}
}
