package server

import (
	"context"
	"errors"
	"log/slog"

	"github.com/danielgtaylor/huma/v2"
	"github.com/getsentry/sentry-go"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prior-it/directory/core"
)

// convertError maps core errors to the HTTP error returned to the client.
func convertError(err error) huma.StatusError {
	var statusErr huma.StatusError
	switch {
	case errors.As(err, &statusErr):
		return statusErr
	case errors.Is(err, core.ErrNotFound):
		return huma.Error404NotFound("contact not found")
	case errors.Is(err, core.ErrValidation):
		return huma.Error422UnprocessableEntity(err.Error())
	case errors.Is(err, core.ErrConflict):
		return huma.Error409Conflict("conflict")
	case errors.Is(err, core.ErrStoreUnavailable):
		return huma.Error503ServiceUnavailable("contact store unavailable")
	}
	return huma.Error500InternalServerError("internal server error")
}

// logError logs err with a level that depends on the status class, and reports server errors to Sentry.
func (server *Server) logError(ctx context.Context, err error, status int) {
	level := slog.LevelError
	switch status / 100 { //nolint:mnd
	case 4: //nolint:mnd
		level = slog.LevelWarn
	case 3: //nolint:mnd
		level = slog.LevelInfo
	}
	server.logger.LogAttrs(ctx, level, "API error",
		slog.Any("error", err),
		slog.Int("status", status),
		slog.String("request_id", middleware.GetReqID(ctx)),
	)

	if status >= 500 { //nolint:mnd
		if hub := sentry.GetHubFromContext(ctx); hub != nil {
			hub.CaptureException(err)
		}
	}
}
