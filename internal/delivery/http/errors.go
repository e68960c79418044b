package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/elecmate/materials-compare/internal/domain"
)

// ErrorCode is the machine readable code of an API error
type ErrorCode string

const (
	CodeValidation ErrorCode = "VALIDATION_ERROR"
	CodeNotFound   ErrorCode = "NOT_FOUND"
	CodeRateLimit  ErrorCode = "RATE_LIMIT_EXCEEDED"
	CodeDependency ErrorCode = "DEPENDENCY_ERROR"
	CodeTimeout    ErrorCode = "TIMEOUT"
	CodeInternal   ErrorCode = "INTERNAL_ERROR"
)

type codeMetadata struct {
	HTTPStatus     int
	PublicMessage  string
	DetailsAllowed bool
	// ShowMessage lets the caller supplied message replace PublicMessage
	ShowMessage bool
}

var metadataByCode = map[ErrorCode]codeMetadata{
	CodeValidation: {
		HTTPStatus:     http.StatusBadRequest,
		PublicMessage:  "validation failed",
		DetailsAllowed: true,
		ShowMessage:    true,
	},
	CodeNotFound: {
		HTTPStatus:    http.StatusNotFound,
		PublicMessage: "resource not found",
	},
	CodeRateLimit: {
		HTTPStatus:    http.StatusTooManyRequests,
		PublicMessage: "rate limit exceeded",
	},
	CodeDependency: {
		HTTPStatus:    http.StatusServiceUnavailable,
		PublicMessage: "a required upstream service is not available",
	},
	CodeTimeout: {
		HTTPStatus:    http.StatusGatewayTimeout,
		PublicMessage: "the comparison did not complete in time",
	},
	CodeInternal: {
		HTTPStatus:    http.StatusInternalServerError,
		PublicMessage: "internal server error",
	},
}

func metadataFor(code ErrorCode) codeMetadata {
	if meta, ok := metadataByCode[code]; ok {
		return meta
	}
	return metadataByCode[CodeInternal]
}

// APIError is the body of an error response
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// ErrorEnvelope wraps APIError as {"error": {...}}
type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

// writeError aborts the request with the envelope for code
func writeError(c *gin.Context, code ErrorCode, message string, details any) {
	meta := metadataFor(code)

	msg := meta.PublicMessage
	if meta.ShowMessage && message != "" {
		msg = message
	}

	payload := ErrorEnvelope{Error: APIError{Code: string(code), Message: msg}}
	if meta.DetailsAllowed && details != nil {
		payload.Error.Details = details
	}

	c.AbortWithStatusJSON(meta.HTTPStatus, payload)
}

// respondError maps a usecase error onto the API error taxonomy
func respondError(c *gin.Context, err error) {
	code := classifyError(err)
	logger := zerolog.Ctx(c.Request.Context())

	switch code {
	case CodeValidation:
		logger.Debug().Err(err).Msg("request.invalid")
	case CodeInternal:
		logger.Error().Err(err).Msg("request.error")
	default:
		logger.Warn().Err(err).Str("error_code", string(code)).Msg("request.failed")
	}

	writeError(c, code, err.Error(), errorDetails(err))
}

func errorDetails(err error) any {
	var rerr *requestValidationError
	if errors.As(err, &rerr) && len(rerr.fields) > 0 {
		return rerr.fields
	}

	var verr *domain.ValidationError
	if !errors.As(err, &verr) {
		return nil
	}
	return map[string]string{verr.Path(): verr.Reason}
}

func classifyError(err error) ErrorCode {
	switch {
	case errors.Is(err, domain.ErrInvalidRequest):
		return CodeValidation
	case errors.Is(err, domain.ErrCollaboratorMisconfigured):
		return CodeDependency
	case errors.Is(err, domain.ErrRateLimited):
		return CodeRateLimit
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return CodeTimeout
	default:
		return CodeInternal
	}
}
