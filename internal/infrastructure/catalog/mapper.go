package catalog

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/elecmate/materials-compare/internal/domain"
)

// searchResponse is the catalog API search payload
type searchResponse struct {
	Products []productDTO `json:"products"`
	Total    int          `json:"total"`
}

// productDTO mirrors one catalog API entry. Prices may arrive as JSON numbers or strings.
type productDTO struct {
	ID                 string           `json:"id"`
	SupplierID         string           `json:"supplier_id"`
	SupplierName       string           `json:"supplier_name"`
	SupplierSlug       string           `json:"supplier_slug"`
	Name               string           `json:"name"`
	Brand              string           `json:"brand"`
	SKU                string           `json:"sku"`
	Price              *decimal.Decimal `json:"price"`
	RegularPrice       *decimal.Decimal `json:"regular_price"`
	IsOnSale           *bool            `json:"is_on_sale"`
	DiscountPercentage *float64         `json:"discount_percentage"`
	StockStatus        string           `json:"stock_status"`
	URL                string           `json:"url"`
	ImageURL           string           `json:"image_url"`
}

// mapProducts converts API entries to domain products, dropping entries without an id,
// a supplier or a non-negative price. It returns how many entries were dropped.
func mapProducts(items []productDTO) ([]domain.Product, int) {
	products := make([]domain.Product, 0, len(items))
	skipped := 0

	for _, item := range items {
		product, ok := mapProduct(item)
		if !ok {
			skipped++
			continue
		}
		products = append(products, product)
	}

	return products, skipped
}

func mapProduct(item productDTO) (domain.Product, bool) {
	id := strings.TrimSpace(item.ID)
	supplierSlug := strings.ToLower(strings.TrimSpace(item.SupplierSlug))
	supplierID := strings.TrimSpace(item.SupplierID)

	if id == "" || item.Price == nil || item.Price.IsNegative() {
		return domain.Product{}, false
	}
	if supplierSlug == "" && supplierID == "" {
		return domain.Product{}, false
	}

	product := domain.Product{
		ProductID:    id,
		SupplierID:   supplierID,
		SupplierName: strings.TrimSpace(item.SupplierName),
		SupplierSlug: supplierSlug,
		Name:         strings.TrimSpace(item.Name),
		Brand:        optionalString(item.Brand),
		SKU:          optionalString(item.SKU),
		Price:        *item.Price,
		StockStatus:  stockStatus(item.StockStatus),
		ProductURL:   strings.TrimSpace(item.URL),
		ImageURL:     optionalString(item.ImageURL),
	}
	if product.SupplierName == "" {
		product.SupplierName = product.SupplierKey()
	}

	if item.RegularPrice != nil && item.RegularPrice.GreaterThan(*item.Price) {
		regular := *item.RegularPrice
		product.RegularPrice = &regular
	}

	switch {
	case item.IsOnSale != nil:
		product.IsOnSale = *item.IsOnSale
	default:
		product.IsOnSale = product.RegularPrice != nil
	}

	switch {
	case item.DiscountPercentage != nil:
		pct := *item.DiscountPercentage
		product.DiscountPercentage = &pct
	case product.RegularPrice != nil:
		pct := discountPercentage(*product.RegularPrice, product.Price)
		product.DiscountPercentage = &pct
	}

	return product, true
}

// discountPercentage is the whole-number saving of price against regular
func discountPercentage(regular, price decimal.Decimal) float64 {
	if !regular.IsPositive() {
		return 0
	}
	pct, _ := regular.Sub(price).Div(regular).Mul(decimal.NewFromInt(100)).Round(0).Float64()
	return pct
}

func stockStatus(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return "unknown"
	}
	return strings.ReplaceAll(s, " ", "_")
}

func optionalString(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
