package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/elecmate/materials-compare/internal/domain"
)

const (
	defaultBatchSize = 5
	defaultMaxItems  = 50
)

// ItemMatcher matches a single requested item against supplier catalogs
type ItemMatcher interface {
	Match(ctx context.Context, item domain.InputItem) (domain.ComparisonItem, error)
}

// ComparisonConfig holds configuration for the comparison service
type ComparisonConfig struct {
	// BatchSize caps how many items are matched concurrently
	BatchSize int
	MaxItems  int
}

// ComparisonService validates a materials list, matches every item and builds the
// optimised basket.
type ComparisonService struct {
	matcher   ItemMatcher
	optimiser *BasketOptimiser
	recorder  Recorder
	logger    zerolog.Logger
	batchSize int
	maxItems  int
}

// NewComparisonService creates a new comparison service with dependencies
func NewComparisonService(
	matcher ItemMatcher,
	optimiser *BasketOptimiser,
	config ComparisonConfig,
	logger zerolog.Logger,
) *ComparisonService {
	if optimiser == nil {
		optimiser = NewBasketOptimiser(nil, 0)
	}

	return &ComparisonService{
		matcher:   matcher,
		optimiser: optimiser,
		recorder:  noopRecorder{},
		logger:    logger,
		batchSize: positiveOr(config.BatchSize, defaultBatchSize),
		maxItems:  positiveOr(config.MaxItems, defaultMaxItems),
	}
}

// WithRecorder attaches a telemetry recorder
func (s *ComparisonService) WithRecorder(r Recorder) *ComparisonService {
	if r != nil {
		s.recorder = r
	}
	return s
}

// Compare runs the full comparison for a materials list.
// Flow: validate -> match items in bounded groups -> optimise basket -> assemble
func (s *ComparisonService) Compare(ctx context.Context, items []domain.InputItem) (*domain.Comparison, error) {
	if err := s.Validate(items); err != nil {
		return nil, err
	}

	start := time.Now()

	matched, err := s.MatchAll(ctx, items)
	if err != nil {
		return nil, err
	}

	basket := s.optimiser.Optimise(matched)
	s.recorder.ObserveComparison(len(items), time.Since(start))

	loggerFrom(ctx, s.logger).Info().
		Int("items", len(items)).
		Str("total", basket.Total.StringFixed(2)).
		Str("single_supplier", basket.SingleSupplierName).
		Str("savings", basket.Savings.StringFixed(2)).
		Dur("took", time.Since(start)).
		Msg("comparison complete")

	return &domain.Comparison{
		Items:           matched,
		OptimisedBasket: basket,
		Suppliers:       basket.SupplierSplit,
	}, nil
}

// Validate checks list bounds and per-item fields before any matching happens
func (s *ComparisonService) Validate(items []domain.InputItem) error {
	if len(items) == 0 {
		return domain.NewListValidationError("items must contain at least one material")
	}
	if len(items) > s.maxItems {
		return domain.NewListValidationError(fmt.Sprintf("items must contain no more than %d materials", s.maxItems))
	}
	for i, item := range items {
		if strings.TrimSpace(item.Name) == "" {
			return domain.NewItemValidationError(i, "name", "is required")
		}
		if !item.Quantity.IsPositive() {
			return domain.NewItemValidationError(i, "quantity", "must be greater than 0")
		}
	}
	return nil
}

// MatchAll matches items in groups of batchSize, preserving input order.
// A failed item degrades to an empty match list; only a misconfigured collaborator
// or cancellation aborts the batch.
func (s *ComparisonService) MatchAll(ctx context.Context, items []domain.InputItem) ([]domain.ComparisonItem, error) {
	results := make([]domain.ComparisonItem, len(items))

	for start := 0; start < len(items); start += s.batchSize {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		end := min(start+s.batchSize, len(items))
		g, gctx := errgroup.WithContext(ctx)

		for i := start; i < end; i++ {
			i := i // per-iteration copy; go directive predates Go 1.22 loop-variable semantics
			g.Go(func() error {
				item, err := s.matcher.Match(gctx, items[i])
				if err == nil {
					results[i] = item
					return nil
				}
				if isFatalMatchError(gctx, err) {
					return err
				}
				s.recorder.IncDegradedItem()
				loggerFrom(ctx, s.logger).Warn().Err(err).Int("index", i).Str("item", items[i].Name).Msg("item matching failed, returning no matches")
				results[i] = domain.NewComparisonItem(items[i])
				return nil
			})
		}

		if err := g.Wait(); err != nil {
			return nil, err
		}
	}

	return results, nil
}

func isFatalMatchError(ctx context.Context, err error) bool {
	return errors.Is(err, domain.ErrCollaboratorMisconfigured) || ctx.Err() != nil
}
