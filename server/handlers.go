package server

import (
	"fmt"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v3"

	"github.com/oesukam/r-incident-query-webapp/core"
	"github.com/oesukam/r-incident-query-webapp/extract"
	"github.com/oesukam/r-incident-query-webapp/threatintel"
)

// maxPageSize caps what a client may request per search page.
const maxPageSize = 100

type loginInput struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (s *Server) login(c fiber.Ctx) error {
	var input loginInput
	if err := c.Bind().Body(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	if input.Username == "" {
		return handleError(c, core.ErrUsernameRequired)
	}
	if input.Password == "" {
		return handleError(c, core.ErrPasswordRequired)
	}

	if !s.verifier.Verify(input.Username, input.Password) {
		return handleError(c, core.ErrInvalidCredentials)
	}

	token, err := s.sessions.Create(input.Username)
	if err != nil {
		return handleError(c, err)
	}

	c.Cookie(&fiber.Cookie{
		Name:     sessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(s.cfg.Auth.SessionMaxAge.Seconds()),
		HTTPOnly: true,
		Secure:   s.cfg.IsProduction(),
		SameSite: fiber.CookieSameSiteLaxMode,
	})

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success":  true,
		"username": input.Username,
	})
}

func (s *Server) logout(c fiber.Ctx) error {
	c.Cookie(&fiber.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"success": true})
}

func (s *Server) search(c fiber.Ctx) error {
	params := threatintel.SearchParams{
		Query:           c.Query("query"),
		CreatedDateFrom: c.Query("CreatedDateFrom"),
		CreatedDateTo:   c.Query("CreatedDateTo"),
	}

	// The UI's "show everything" filter values mean no upstream filter.
	if brands := c.Query("BrandNames"); brands != "" && brands != "All Brands" {
		params.BrandNames = brands
	}
	if codes := c.Query("ThreatTypeCodes"); codes != "" && codes != "all" {
		params.ThreatTypeCodes = codes
	}

	if page, err := strconv.Atoi(c.Query("page")); err == nil && page > 0 {
		params.PageNumber = page
	}
	if size, err := strconv.Atoi(c.Query("pageSize")); err == nil && size > 0 {
		if size > maxPageSize {
			size = maxPageSize
		}
		params.PageSize = size
	}

	page, err := s.client.SearchIncidents(c.Context(), params)
	if err != nil {
		return handleError(c, err)
	}

	c.Set(fiber.HeaderCacheControl, "no-store")
	return c.Status(fiber.StatusOK).JSON(page)
}

func (s *Server) detail(c fiber.Ctx) error {
	incidentID := c.Query("incidentId")
	if incidentID == "" {
		return handleError(c, core.ErrIncidentIDRequired)
	}

	details, err := s.client.IncidentDetails(c.Context(), incidentID)
	if err != nil {
		return handleError(c, err)
	}

	// Pass the upstream body through untouched.
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.Status(fiber.StatusOK).Send(details.Raw)
}

func (s *Server) download(c fiber.Ctx) error {
	documentID := c.Query("documentId")
	if documentID == "" {
		return handleError(c, core.ErrDocumentIDRequired)
	}

	content, err := s.client.DownloadDocument(c.Context(), documentID)
	if err != nil {
		return handleError(c, err)
	}

	c.Set(fiber.HeaderContentType, fiber.MIMETextPlain)
	return c.Status(fiber.StatusOK).SendString(content)
}

func (s *Server) emails(c fiber.Ctx) error {
	incidentID := c.Query("incidentId")
	if incidentID == "" {
		return handleError(c, core.ErrIncidentIDRequired)
	}

	records, err := s.extracts.Emails(c.Context(), incidentID)
	if err != nil {
		return handleError(c, err)
	}

	c.Set(fiber.HeaderCacheControl, "no-store")
	return c.Status(fiber.StatusOK).JSON(records)
}

func (s *Server) export(c fiber.Ctx) error {
	incidentID := c.Query("incidentId")
	if incidentID == "" {
		return handleError(c, core.ErrIncidentIDRequired)
	}

	records, err := s.extracts.Emails(c.Context(), incidentID)
	if err != nil {
		return handleError(c, err)
	}

	data, err := extract.BuildCSV(incidentID, records)
	if err != nil {
		return handleError(c, err)
	}

	day := time.Now()
	if parsed, err := time.Parse("2006-01-02", c.Query("date")); err == nil {
		day = parsed
	}

	c.Set(fiber.HeaderContentType, "text/csv")
	c.Set(fiber.HeaderContentDisposition,
		fmt.Sprintf("attachment; filename=%q", extract.ExportFilename(incidentID, day)))
	return c.Status(fiber.StatusOK).Send(data)
}

func (s *Server) healthz(c fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "ok"})
}
