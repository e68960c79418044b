package domain

import "github.com/shopspring/decimal"

// InputItem is one requested material
type InputItem struct {
	Name         string          `json:"name"`
	Quantity     decimal.Decimal `json:"quantity"`
	Unit         string          `json:"unit"`
	OriginalText *string         `json:"original_text,omitempty"`
}

// ComparisonItem holds the per-supplier matches for one InputItem, cheapest first.
// BestPrice and BestSupplier are nil when nothing matched.
type ComparisonItem struct {
	Name         string           `json:"name"`
	Quantity     decimal.Decimal  `json:"quantity"`
	Unit         string           `json:"unit"`
	OriginalText *string          `json:"original_text,omitempty"`
	Matches      []SupplierMatch  `json:"matches"`
	BestPrice    *decimal.Decimal `json:"best_price"`
	BestSupplier *string          `json:"best_supplier"`
}

// NewComparisonItem creates an unmatched ComparisonItem for the given input
func NewComparisonItem(item InputItem) ComparisonItem {
	return ComparisonItem{
		Name:         item.Name,
		Quantity:     item.Quantity,
		Unit:         item.Unit,
		OriginalText: item.OriginalText,
		Matches:      []SupplierMatch{},
	}
}

// HasMatches reports whether at least one supplier matched the item
func (c ComparisonItem) HasMatches() bool {
	return len(c.Matches) > 0
}

// SupplierSummary rolls up the items and spend that fall to one supplier
type SupplierSummary struct {
	SupplierID   string          `json:"supplier_id"`
	SupplierName string          `json:"supplier_name"`
	SupplierSlug string          `json:"supplier_slug"`
	ItemCount    int             `json:"item_count"`
	Total        decimal.Decimal `json:"total"`
	Delivery     DeliveryTiers   `json:"delivery"`
}

// OptimisedBasket compares buying every item at its cheapest supplier against
// buying from the best single supplier.
type OptimisedBasket struct {
	Total               decimal.Decimal   `json:"total"`
	SingleSupplierTotal decimal.Decimal   `json:"single_supplier_total"`
	SingleSupplierName  string            `json:"single_supplier_name"`
	Savings             decimal.Decimal   `json:"savings"`
	SavingsPercentage   decimal.Decimal   `json:"savings_percentage"`
	SupplierSplit       []SupplierSummary `json:"supplier_split"`
}

// Comparison is the full result of a comparison request
type Comparison struct {
	Items           []ComparisonItem  `json:"items"`
	OptimisedBasket OptimisedBasket   `json:"optimised_basket"`
	Suppliers       []SupplierSummary `json:"suppliers"`
}
