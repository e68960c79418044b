package domain

import "github.com/shopspring/decimal"

// Product is a single catalog entry as returned by a catalog search provider.
// The core never mutates it.
type Product struct {
	ProductID          string           `json:"product_id"`
	SupplierID         string           `json:"supplier_id"`
	SupplierName       string           `json:"supplier_name"`
	SupplierSlug       string           `json:"supplier_slug"`
	Name               string           `json:"name"`
	Brand              *string          `json:"brand,omitempty"`
	SKU                *string          `json:"sku,omitempty"`
	Price              decimal.Decimal  `json:"price"`
	RegularPrice       *decimal.Decimal `json:"regular_price,omitempty"`
	IsOnSale           bool             `json:"is_on_sale"`
	DiscountPercentage *float64         `json:"discount_percentage,omitempty"`
	StockStatus        string           `json:"stock_status"`
	ProductURL         string           `json:"product_url"`
	ImageURL           *string          `json:"image_url,omitempty"`
}

// SupplierKey identifies the supplier a product belongs to.
// Falls back to the supplier id for providers that do not send slugs.
func (p Product) SupplierKey() string {
	if p.SupplierSlug != "" {
		return p.SupplierSlug
	}
	return p.SupplierID
}

// DeliveryTiers holds human-readable delivery costs for a supplier
type DeliveryTiers struct {
	ClickCollect string `json:"click_collect"`
	Standard     string `json:"standard"`
	NextDay      string `json:"next_day"`
}

// SupplierMatch is the cheapest product a supplier offers for one requested item
type SupplierMatch struct {
	Product
	Delivery      DeliveryTiers `json:"delivery"`
	IsRecommended bool          `json:"is_recommended"`
}
