package threatintel

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/oesukam/r-incident-query-webapp/config"
	"github.com/oesukam/r-incident-query-webapp/core"
	"github.com/oesukam/r-incident-query-webapp/metrics"
)

// Client calls the upstream threat-intelligence API. Every method obtains a
// bearer token from the shared TokenCache first; upstream failures are
// surfaced as *core.UpstreamError and never retried.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     *TokenCache
}

func NewClient(cfg config.UpstreamConfig) *Client {
	httpClient := &http.Client{Timeout: cfg.Timeout}
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: httpClient,
		tokens:     NewTokenCache(cfg, httpClient),
	}
}

// Tokens exposes the token cache for maintenance operations (forced refresh).
func (c *Client) Tokens() *TokenCache { return c.tokens }

// SearchParams are the upstream incident search filters. Zero values are
// omitted from the query string.
type SearchParams struct {
	Query           string
	CreatedDateFrom string
	CreatedDateTo   string
	BrandNames      string
	ThreatTypeCodes string
	PageNumber      int
	PageSize        int
}

func (p SearchParams) values() url.Values {
	q := url.Values{}
	if p.Query != "" {
		q.Set("query", p.Query)
	}
	if p.CreatedDateFrom != "" {
		q.Set("CreatedDateFrom", p.CreatedDateFrom)
	}
	if p.CreatedDateTo != "" {
		q.Set("CreatedDateTo", p.CreatedDateTo)
	}
	if p.BrandNames != "" {
		q.Set("BrandNames", p.BrandNames)
	}
	if p.ThreatTypeCodes != "" {
		q.Set("ThreatTypeCodes", p.ThreatTypeCodes)
	}
	if p.PageNumber > 0 {
		q.Set("PageNumber", strconv.Itoa(p.PageNumber))
	}
	if p.PageSize > 0 {
		q.Set("PageSize", strconv.Itoa(p.PageSize))
	}
	return q
}

// SearchIncidents runs an upstream incident search and maps each raw item
// through core.MapIncident.
func (c *Client) SearchIncidents(ctx context.Context, p SearchParams) (*core.IncidentPage, error) {
	endpoint := c.baseURL + "/incident/search"
	if q := p.values().Encode(); q != "" {
		endpoint += "?" + q
	}

	body, err := c.get(ctx, "search", endpoint)
	if err != nil {
		return nil, err
	}

	var raw struct {
		Items      []map[string]json.RawMessage `json:"items"`
		TotalCount int                          `json:"totalCount"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	page := &core.IncidentPage{
		Items:      make([]core.Incident, 0, len(raw.Items)),
		TotalCount: raw.TotalCount,
	}
	for _, item := range raw.Items {
		page.Items = append(page.Items, core.MapIncident(item))
	}

	logrus.WithField("totalCount", page.TotalCount).Info("Search results retrieved")
	return page, nil
}

// IncidentDetails fetches the detail record for one incident. The full raw
// body is preserved for pass-through responses.
func (c *Client) IncidentDetails(ctx context.Context, incidentID string) (*core.IncidentDetails, error) {
	endpoint := fmt.Sprintf("%s/incident/%s/details", c.baseURL, url.PathEscape(incidentID))

	body, err := c.get(ctx, "detail", endpoint)
	if err != nil {
		return nil, err
	}

	details := &core.IncidentDetails{Raw: body}
	if err := json.Unmarshal(body, details); err != nil {
		return nil, fmt.Errorf("decode detail response: %w", err)
	}
	return details, nil
}

// DownloadDocument returns the raw text body of one evidence document.
func (c *Client) DownloadDocument(ctx context.Context, documentID string) (string, error) {
	endpoint := fmt.Sprintf("%s/file/document/%s", c.baseURL, url.PathEscape(documentID))

	body, err := c.get(ctx, "download", endpoint)
	if err != nil {
		return "", err
	}

	logrus.WithFields(logrus.Fields{
		"documentId":    documentID,
		"contentLength": len(body),
	}).Info("File downloaded successfully")
	return string(body), nil
}

func (c *Client) get(ctx context.Context, label, endpoint string) ([]byte, error) {
	token, err := c.tokens.Get(ctx)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build %s request: %w", label, err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.UpstreamRequests.WithLabelValues(label, "error").Inc()
		return nil, fmt.Errorf("%s request: %w", label, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.UpstreamRequests.WithLabelValues(label, "error").Inc()
		return nil, fmt.Errorf("read %s response: %w", label, err)
	}

	metrics.UpstreamRequests.WithLabelValues(label, statusClass(resp.StatusCode)).Inc()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		logrus.WithFields(logrus.Fields{
			"status":    resp.StatusCode,
			"errorText": string(body),
			"endpoint":  label,
		}).Error("Upstream request failed")
		return nil, &core.UpstreamError{Endpoint: label, StatusCode: resp.StatusCode, Body: string(body)}
	}

	return body, nil
}

func statusClass(code int) string {
	switch {
	case code >= 200 && code < 300:
		return "2xx"
	case code >= 400 && code < 500:
		return "4xx"
	case code >= 500:
		return "5xx"
	default:
		return "other"
	}
}
