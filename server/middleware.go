package server

import (
	"github.com/gofiber/fiber/v3"

	"github.com/oesukam/r-incident-query-webapp/core"
)

// sessionCookie is the name of the signed session cookie.
const sessionCookie = "session"

// requireSession validates the session cookie and stores the authenticated
// username in the context for downstream handlers. Any invalid, expired or
// absent token yields 401; the API never redirects.
func (s *Server) requireSession(c fiber.Ctx) error {
	token := c.Cookies(sessionCookie)
	if token == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": core.ErrInvalidSession.Error(),
		})
	}

	claims, err := s.sessions.Claims(token)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": core.ErrInvalidSession.Error(),
		})
	}

	c.Locals("username", claims.Username)

	return c.Next()
}
