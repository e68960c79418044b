package usecase

import (
	"context"
	"errors"
	"sort"

	"github.com/rs/zerolog"

	"github.com/elecmate/materials-compare/internal/domain"
)

// Matching defaults. They are hand-tuned and exposed through MatchConfig.
const (
	defaultPrimaryLimit   = 30
	defaultAlternateLimit = 15
	defaultMinSuppliers   = 3
	defaultMaxAlternates  = 3
)

// MatchConfig holds configuration for the matching service
type MatchConfig struct {
	PrimaryLimit   int
	AlternateLimit int
	// MinSuppliers is the distinct-supplier floor below which alternate phrasings are tried
	MinSuppliers       int
	MaxAlternates      int
	EnableDebugLogging bool
}

// MatchingService finds the cheapest product per supplier for one requested item
type MatchingService struct {
	catalog      domain.CatalogSearcher
	expander     domain.TermExpander
	delivery     domain.DeliveryLookup
	preprocessor *QueryPreprocessor
	recorder     Recorder
	logger       zerolog.Logger

	primaryLimit       int
	alternateLimit     int
	minSuppliers       int
	maxAlternates      int
	enableDebugLogging bool
}

// NewMatchingService creates a new matching service with the given configuration.
// expander may be nil when no term expansion provider is configured.
func NewMatchingService(
	catalog domain.CatalogSearcher,
	expander domain.TermExpander,
	delivery domain.DeliveryLookup,
	config MatchConfig,
	logger zerolog.Logger,
) *MatchingService {
	if delivery == nil {
		delivery = NewDeliveryTable(nil)
	}

	return &MatchingService{
		catalog:            catalog,
		expander:           expander,
		delivery:           delivery,
		preprocessor:       NewQueryPreprocessor(logger),
		recorder:           noopRecorder{},
		logger:             logger,
		primaryLimit:       positiveOr(config.PrimaryLimit, defaultPrimaryLimit),
		alternateLimit:     positiveOr(config.AlternateLimit, defaultAlternateLimit),
		minSuppliers:       positiveOr(config.MinSuppliers, defaultMinSuppliers),
		maxAlternates:      positiveOr(config.MaxAlternates, defaultMaxAlternates),
		enableDebugLogging: config.EnableDebugLogging,
	}
}

// WithRecorder attaches a telemetry recorder
func (s *MatchingService) WithRecorder(r Recorder) *MatchingService {
	if r != nil {
		s.recorder = r
	}
	return s
}

// Match searches the catalog for one item and returns its matches, cheapest first.
//
// Failed or empty searches are not errors: they contribute no candidates. The only
// errors returned are a misconfigured catalog and cancellation of ctx.
func (s *MatchingService) Match(ctx context.Context, item domain.InputItem) (domain.ComparisonItem, error) {
	result := domain.NewComparisonItem(item)
	log := loggerFrom(ctx, s.logger).With().Str("item", item.Name).Logger()

	primary, err := s.search(ctx, item.Name, s.primaryLimit, SearchPrimary)
	if err != nil {
		return result, err
	}

	pool := newCandidatePool()
	pool.add(primary)

	if pool.supplierCount() < s.minSuppliers && s.expander != nil {
		for _, term := range s.alternates(ctx, item.Name) {
			found, err := s.search(ctx, term, s.alternateLimit, SearchAlternate)
			if err != nil {
				return result, err
			}
			added := pool.add(found)
			if s.enableDebugLogging {
				log.Debug().Str("term", term).Int("found", len(found)).Int("added", added).Msg("alternate search")
			}
		}
	}

	result.Matches = s.bestPerSupplier(pool.products)
	if result.HasMatches() {
		best := result.Matches[0]
		price := best.Price
		supplier := best.SupplierName
		result.BestPrice = &price
		result.BestSupplier = &supplier
	}

	if s.enableDebugLogging {
		log.Debug().
			Int("candidates", len(pool.products)).
			Int("suppliers", len(result.Matches)).
			Msg("item matched")
	}

	return result, nil
}

// search runs one catalog query. Provider failures degrade to no results.
func (s *MatchingService) search(ctx context.Context, term string, limit int, kind string) ([]domain.Product, error) {
	products, err := s.catalog.SearchCatalog(ctx, term, limit)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		s.recorder.ObserveSearch(kind, OutcomeError)
		if errors.Is(err, domain.ErrCollaboratorMisconfigured) {
			return nil, err
		}
		loggerFrom(ctx, s.logger).Warn().Err(err).Str("term", term).Str("kind", kind).Msg("catalog search failed, continuing without results")
		return nil, nil
	}

	if len(products) == 0 {
		s.recorder.ObserveSearch(kind, OutcomeEmpty)
	} else {
		s.recorder.ObserveSearch(kind, OutcomeHit)
	}
	return products, nil
}

// alternates asks the expander for other phrasings. Failures yield none.
func (s *MatchingService) alternates(ctx context.Context, name string) []string {
	terms, err := s.expander.ExpandTerms(ctx, name)
	if err != nil {
		s.recorder.ObserveExpansion(OutcomeError)
		loggerFrom(ctx, s.logger).Warn().Err(err).Str("item", name).Msg("term expansion failed, using primary results only")
		return nil
	}

	kept := s.preprocessor.DistinctAlternates(name, terms, s.maxAlternates)
	if len(kept) == 0 {
		s.recorder.ObserveExpansion(OutcomeEmpty)
		return nil
	}
	s.recorder.ObserveExpansion(OutcomeHit)
	return kept
}

// bestPerSupplier keeps the cheapest candidate of each supplier (first seen wins ties),
// sorts them by price and flags the cheapest as recommended.
func (s *MatchingService) bestPerSupplier(candidates []domain.Product) []domain.SupplierMatch {
	index := make(map[string]int)
	best := make([]domain.Product, 0)

	for _, p := range candidates {
		key := p.SupplierKey()
		i, seen := index[key]
		if !seen {
			index[key] = len(best)
			best = append(best, p)
			continue
		}
		if p.Price.LessThan(best[i].Price) {
			best[i] = p
		}
	}

	sort.SliceStable(best, func(i, j int) bool {
		return best[i].Price.LessThan(best[j].Price)
	})

	matches := make([]domain.SupplierMatch, len(best))
	for i, p := range best {
		matches[i] = domain.SupplierMatch{
			Product:       p,
			Delivery:      s.delivery.LookupDelivery(p.SupplierSlug),
			IsRecommended: i == 0,
		}
	}
	return matches
}

// candidatePool accumulates search results, discarding products already seen by id
type candidatePool struct {
	products  []domain.Product
	seen      map[string]bool
	suppliers map[string]bool
}

func newCandidatePool() *candidatePool {
	return &candidatePool{
		seen:      make(map[string]bool),
		suppliers: make(map[string]bool),
	}
}

// add merges products into the pool and returns how many were new
func (p *candidatePool) add(products []domain.Product) int {
	added := 0
	for _, product := range products {
		if product.ProductID != "" {
			if p.seen[product.ProductID] {
				continue
			}
			p.seen[product.ProductID] = true
		}
		if product.Price.IsNegative() {
			continue
		}
		p.products = append(p.products, product)
		p.suppliers[product.SupplierKey()] = true
		added++
	}
	return added
}

func (p *candidatePool) supplierCount() int {
	return len(p.suppliers)
}

func positiveOr(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}
