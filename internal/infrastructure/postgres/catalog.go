package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/elecmate/materials-compare/internal/domain"
)

// Prices are selected as text so NUMERIC values reach decimal.Decimal without float rounding.
const searchProductsSQL = `
	SELECT p.id, p.supplier_id, s.name, s.slug, p.name, p.brand, p.sku,
	       p.price::text, p.regular_price::text, p.is_on_sale, p.discount_percentage,
	       p.stock_status, p.url, p.image_url
	FROM products p
	JOIN suppliers s ON s.id = p.supplier_id
	WHERE p.search_vector @@ websearch_to_tsquery('english', $1)
	ORDER BY p.price ASC, ts_rank(p.search_vector, websearch_to_tsquery('english', $1)) DESC, p.id
	LIMIT $2
`

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// CatalogRepository searches a product catalog held in Postgres
type CatalogRepository struct {
	db querier
}

// NewCatalogRepository creates a catalog searcher over db (usually a *pgxpool.Pool)
func NewCatalogRepository(db querier) *CatalogRepository {
	return &CatalogRepository{db: db}
}

// SearchCatalog runs a full-text query and returns the cheapest matches first
func (r *CatalogRepository) SearchCatalog(ctx context.Context, term string, limit int) ([]domain.Product, error) {
	term = strings.TrimSpace(term)
	if term == "" || limit <= 0 {
		return []domain.Product{}, nil
	}

	rows, err := r.db.Query(ctx, searchProductsSQL, term, limit)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrCatalogFailure, err)
	}
	defer rows.Close()

	products := make([]domain.Product, 0, limit)
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrCatalogFailure, err)
		}
		products = append(products, product)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrCatalogFailure, err)
	}

	return products, nil
}

func scanProduct(row pgx.Row) (domain.Product, error) {
	var (
		p            domain.Product
		price        string
		regularPrice *string
	)

	if err := row.Scan(
		&p.ProductID,
		&p.SupplierID,
		&p.SupplierName,
		&p.SupplierSlug,
		&p.Name,
		&p.Brand,
		&p.SKU,
		&price,
		&regularPrice,
		&p.IsOnSale,
		&p.DiscountPercentage,
		&p.StockStatus,
		&p.ProductURL,
		&p.ImageURL,
	); err != nil {
		return domain.Product{}, err
	}

	parsed, err := decimal.NewFromString(price)
	if err != nil {
		return domain.Product{}, fmt.Errorf("product %s: price %q: %w", p.ProductID, price, err)
	}
	p.Price = parsed

	if regularPrice != nil {
		regular, err := decimal.NewFromString(*regularPrice)
		if err != nil {
			return domain.Product{}, fmt.Errorf("product %s: regular price %q: %w", p.ProductID, *regularPrice, err)
		}
		p.RegularPrice = &regular
	}

	return p, nil
}
