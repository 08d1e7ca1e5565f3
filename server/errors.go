package server

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v3"

	"github.com/oesukam/r-incident-query-webapp/core"
)

// handleError maps service errors to JSON HTTP responses.
func handleError(c fiber.Ctx, err error) error {
	return c.Status(mapErrorToStatus(err)).JSON(fiber.Map{
		"error": err.Error(),
	})
}

// mapErrorToStatus maps error types to HTTP status codes. Upstream failures
// pass their status through so the caller sees what the provider said.
func mapErrorToStatus(err error) int {
	if err == nil {
		return http.StatusOK
	}

	var upstreamErr *core.UpstreamError
	if errors.As(err, &upstreamErr) {
		if upstreamErr.StatusCode >= 400 {
			return upstreamErr.StatusCode
		}
		return http.StatusBadGateway
	}

	switch {
	case errors.Is(err, core.ErrInvalidCredentials),
		errors.Is(err, core.ErrInvalidSession):
		return http.StatusUnauthorized

	case errors.Is(err, core.ErrUsernameRequired),
		errors.Is(err, core.ErrPasswordRequired),
		errors.Is(err, core.ErrIncidentIDRequired),
		errors.Is(err, core.ErrDocumentIDRequired):
		return http.StatusBadRequest

	default:
		return http.StatusInternalServerError
	}
}
