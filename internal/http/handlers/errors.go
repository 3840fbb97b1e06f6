package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/yungbote/sotfinder-backend/internal/platform/apierr"
	"github.com/yungbote/sotfinder-backend/internal/services"
)

// toAPIError maps service sentinels onto HTTP status and error code.
// Anything unrecognized becomes a 500 with fallbackCode.
func toAPIError(err error, fallbackCode string) *apierr.Error {
	switch {
	case errors.Is(err, services.ErrDataNotFound):
		return apierr.NotFound("curriculum_not_found", err)
	case errors.Is(err, services.ErrSourceNotFound):
		return apierr.NotFound("source_not_found", err)
	case errors.Is(err, services.ErrLanguageUnknown):
		return apierr.NotFound("language_not_found", err)
	case errors.Is(err, services.ErrValidation):
		return apierr.BadRequest("invalid_request", err)
	case errors.Is(err, context.DeadlineExceeded):
		return apierr.New(http.StatusGatewayTimeout, "timeout", err)
	default:
		// details stay in the logs
		return apierr.Internal(fallbackCode, errors.New(http.StatusText(http.StatusInternalServerError)))
	}
}
