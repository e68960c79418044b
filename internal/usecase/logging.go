package usecase

import (
	"context"

	"github.com/rs/zerolog"
)

// loggerFrom prefers the request-scoped logger carried by ctx
func loggerFrom(ctx context.Context, fallback zerolog.Logger) *zerolog.Logger {
	if l := zerolog.Ctx(ctx); l.GetLevel() != zerolog.Disabled {
		return l
	}
	return &fallback
}
