package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/elecmate/materials-compare/internal/domain"
)

const defaultRequestTimeout = 60 * time.Second

// Comparer runs a full materials comparison
type Comparer interface {
	Compare(ctx context.Context, items []domain.InputItem) (*domain.Comparison, error)
}

// HandlerConfig holds the static values the handlers report or enforce
type HandlerConfig struct {
	ServiceName     string
	Version         string
	CatalogProvider string
	RequestTimeout  time.Duration
}

// Handler holds dependencies for HTTP handlers
type Handler struct {
	comparer Comparer
	config   HandlerConfig
}

// NewHandler creates a new HTTP handler.
// comparer may be nil, in which case comparisons answer 503.
func NewHandler(comparer Comparer, config HandlerConfig) *Handler {
	if config.ServiceName == "" {
		config.ServiceName = "materials-compare"
	}
	if config.Version == "" {
		config.Version = "dev"
	}
	if config.RequestTimeout <= 0 {
		config.RequestTimeout = defaultRequestTimeout
	}
	return &Handler{comparer: comparer, config: config}
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":           "healthy",
		"service":          h.config.ServiceName,
		"version":          h.config.Version,
		"catalog_provider": h.config.CatalogProvider,
	})
}

// CompareMaterials handles POST /api/v1/comparison
func (h *Handler) CompareMaterials(c *gin.Context) {
	if h.comparer == nil {
		writeError(c, CodeDependency, "", nil)
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxRequestBodyBytes)

	var req compareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, &requestValidationError{message: bindErrorMessage(err)})
		return
	}
	if err := validateRequest(&req); err != nil {
		respondError(c, err)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.config.RequestTimeout)
	defer cancel()

	started := time.Now()
	comparison, err := h.comparer.Compare(ctx, req.toDomain())
	if err != nil {
		respondError(c, err)
		return
	}

	zerolog.Ctx(ctx).Info().
		Int("items", len(comparison.Items)).
		Int("suppliers", len(comparison.Suppliers)).
		Str("total", comparison.OptimisedBasket.Total.StringFixed(2)).
		Dur("duration", time.Since(started)).
		Msg("comparison.completed")

	c.JSON(http.StatusOK, gin.H{"comparison": comparison})
}

func bindErrorMessage(err error) string {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return "request body is too large"
	}
	return "request body must be valid JSON"
}
