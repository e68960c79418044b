package usecase

import (
	"strings"

	"github.com/elecmate/materials-compare/internal/domain"
)

// checkSupplier is shown for any tier we have no data for
const checkSupplier = "Check supplier"

// UnknownDelivery is returned for suppliers missing from the delivery table
var UnknownDelivery = domain.DeliveryTiers{
	ClickCollect: checkSupplier,
	Standard:     checkSupplier,
	NextDay:      checkSupplier,
}

// defaultDeliveryTiers are the published delivery costs of the suppliers we index
var defaultDeliveryTiers = map[string]domain.DeliveryTiers{
	"screwfix": {
		ClickCollect: "Free",
		Standard:     "Free over £50, otherwise £5.00",
		NextDay:      "£5.00",
	},
	"toolstation": {
		ClickCollect: "Free",
		Standard:     "Free over £25, otherwise £5.00",
		NextDay:      "£5.00",
	},
	"city-electrical-factors": {
		ClickCollect: "Free",
		Standard:     "Free on account",
		NextDay:      "Free on account",
	},
	"electricaldirect": {
		ClickCollect: "Not available",
		Standard:     "Free over £100, otherwise £6.95",
		NextDay:      "£9.95",
	},
	"tlc-direct": {
		ClickCollect: "Free",
		Standard:     "Free over £99, otherwise £8.95",
		NextDay:      "£8.95",
	},
	"edmundson-electrical": {
		ClickCollect: "Free",
		Standard:     "Free on account",
		NextDay:      "Check supplier",
	},
	"wickes": {
		ClickCollect: "Free",
		Standard:     "£5.00",
		NextDay:      "£9.00",
	},
}

// DeliveryTable is a static supplier slug -> delivery tiers lookup
type DeliveryTable struct {
	tiers map[string]domain.DeliveryTiers
}

// NewDeliveryTable creates a lookup seeded with the default tiers.
// Entries in overrides replace or extend the defaults.
func NewDeliveryTable(overrides map[string]domain.DeliveryTiers) *DeliveryTable {
	tiers := make(map[string]domain.DeliveryTiers, len(defaultDeliveryTiers)+len(overrides))
	for slug, t := range defaultDeliveryTiers {
		tiers[slug] = t
	}
	for slug, t := range overrides {
		tiers[normalizeSlug(slug)] = t
	}
	return &DeliveryTable{tiers: tiers}
}

// LookupDelivery returns the tiers for a supplier, or UnknownDelivery
func (t *DeliveryTable) LookupDelivery(supplierSlug string) domain.DeliveryTiers {
	if t == nil {
		return UnknownDelivery
	}
	if tiers, ok := t.tiers[normalizeSlug(supplierSlug)]; ok {
		return tiers
	}
	return UnknownDelivery
}

func normalizeSlug(slug string) string {
	return strings.ToLower(strings.TrimSpace(slug))
}
