package usecase

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/elecmate/materials-compare/internal/domain"
)

// MultipleSuppliers names the baseline when no single supplier covers enough items
const MultipleSuppliers = "Multiple suppliers"

// defaultCoverageFloor is the share of items a supplier must stock to be a single-supplier baseline
var defaultCoverageFloor = decimal.NewFromFloat(0.5)

var (
	thousand = decimal.NewFromInt(1000)
	ten      = decimal.NewFromInt(10)
)

// BasketOptimiser compares the per-item cheapest basket with the best single-supplier basket.
// It is a pure aggregation with no I/O.
type BasketOptimiser struct {
	delivery      domain.DeliveryLookup
	coverageFloor decimal.Decimal
}

// NewBasketOptimiser creates an optimiser. A coverageFloor outside (0, 1] falls back to 0.5.
func NewBasketOptimiser(delivery domain.DeliveryLookup, coverageFloor float64) *BasketOptimiser {
	floor := defaultCoverageFloor
	if coverageFloor > 0 && coverageFloor <= 1 {
		floor = decimal.NewFromFloat(coverageFloor)
	}
	if delivery == nil {
		delivery = NewDeliveryTable(nil)
	}
	return &BasketOptimiser{delivery: delivery, coverageFloor: floor}
}

// supplierTally accumulates spend for one supplier
type supplierTally struct {
	id    string
	name  string
	slug  string
	count int
	total decimal.Decimal
}

// Optimise computes the optimised basket for matched items.
// Items without matches are excluded from every total but still count towards coverage.
func (o *BasketOptimiser) Optimise(items []domain.ComparisonItem) domain.OptimisedBasket {
	split, total := o.cheapestSplit(items)
	singleTotal, singleName, found := o.bestSingleSupplier(items)
	if !found {
		singleTotal = total
		singleName = MultipleSuppliers
	}

	savings := decimal.Max(decimal.Zero, singleTotal.Sub(total))
	percentage := decimal.Zero
	if singleTotal.IsPositive() {
		percentage = savings.Div(singleTotal).Mul(thousand).Round(0).Div(ten)
	}

	return domain.OptimisedBasket{
		Total:               domain.RoundMoney(total),
		SingleSupplierTotal: domain.RoundMoney(singleTotal),
		SingleSupplierName:  singleName,
		Savings:             domain.RoundMoney(savings),
		SavingsPercentage:   percentage.Round(1),
		SupplierSplit:       split,
	}
}

// cheapestSplit assigns every matched item to its cheapest supplier and returns
// the per-supplier summaries (largest spend first) and the optimised total.
func (o *BasketOptimiser) cheapestSplit(items []domain.ComparisonItem) ([]domain.SupplierSummary, decimal.Decimal) {
	tallies := make([]*supplierTally, 0)
	index := make(map[string]*supplierTally)
	total := decimal.Zero

	for _, item := range items {
		if !item.HasMatches() {
			continue
		}
		chosen := item.Matches[0]
		line := chosen.Price.Mul(item.Quantity)

		key := chosen.SupplierKey()
		tally, ok := index[key]
		if !ok {
			tally = &supplierTally{
				id:   chosen.SupplierID,
				name: chosen.SupplierName,
				slug: chosen.SupplierSlug,
			}
			index[key] = tally
			tallies = append(tallies, tally)
		}
		tally.count++
		tally.total = tally.total.Add(line)
		total = total.Add(line)
	}

	sort.SliceStable(tallies, func(i, j int) bool {
		return tallies[i].total.GreaterThan(tallies[j].total)
	})

	split := make([]domain.SupplierSummary, len(tallies))
	for i, t := range tallies {
		split[i] = domain.SupplierSummary{
			SupplierID:   t.id,
			SupplierName: t.name,
			SupplierSlug: t.slug,
			ItemCount:    t.count,
			Total:        domain.RoundMoney(t.total),
			Delivery:     o.delivery.LookupDelivery(t.slug),
		}
	}
	return split, total
}

// bestSingleSupplier returns the cheapest hypothetical basket among suppliers stocking
// at least the coverage floor of all items. found is false when none qualifies.
func (o *BasketOptimiser) bestSingleSupplier(items []domain.ComparisonItem) (decimal.Decimal, string, bool) {
	if len(items) == 0 {
		return decimal.Zero, "", false
	}

	tallies := make([]*supplierTally, 0)
	index := make(map[string]*supplierTally)

	for _, item := range items {
		for _, match := range item.Matches {
			key := match.SupplierKey()
			tally, ok := index[key]
			if !ok {
				tally = &supplierTally{name: match.SupplierName, slug: match.SupplierSlug}
				index[key] = tally
				tallies = append(tallies, tally)
			}
			tally.count++
			tally.total = tally.total.Add(match.Price.Mul(item.Quantity))
		}
	}

	required := o.coverageFloor.Mul(decimal.NewFromInt(int64(len(items))))

	var best *supplierTally
	for _, t := range tallies {
		if decimal.NewFromInt(int64(t.count)).LessThan(required) {
			continue
		}
		if best == nil || t.total.LessThan(best.total) {
			best = t
		}
	}
	if best == nil {
		return decimal.Zero, "", false
	}
	return best.total, best.name, true
}
