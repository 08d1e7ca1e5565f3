package threatintel

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oesukam/r-incident-query-webapp/config"
	"github.com/oesukam/r-incident-query-webapp/core"
	"github.com/oesukam/r-incident-query-webapp/metrics"
)

// expirySafetyMargin keeps us from handing out a token that expires between
// the freshness check and the caller's use of it.
const expirySafetyMargin = 60 * time.Second

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

type cachedToken struct {
	accessToken string
	tokenType   string
	expiresIn   int64
	expiration  time.Time
}

// TokenCache owns the single process-wide upstream bearer token and refreshes
// it via the client-credentials grant when missing or near expiry.
//
// The mutex only guards the slot's memory. Two callers observing a stale
// token may both refresh; the upstream grant is idempotent and the later
// write wins, so there is deliberately no single-flight barrier here.
type TokenCache struct {
	tokenURL     string
	clientID     string
	clientSecret string
	httpClient   *http.Client

	mu    sync.RWMutex
	token *cachedToken

	// now is swappable for tests.
	now func() time.Time
}

func NewTokenCache(cfg config.UpstreamConfig, httpClient *http.Client) *TokenCache {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	return &TokenCache{
		tokenURL:     cfg.TokenURL,
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
		httpClient:   httpClient,
		now:          time.Now,
	}
}

// Get returns a valid access token, fetching a new one only when the cached
// token is absent or expires within the safety margin. Any fetch failure
// clears the cache; the next call starts from scratch. Failures are never
// retried here.
func (tc *TokenCache) Get(ctx context.Context) (string, error) {
	now := tc.now()

	tc.mu.RLock()
	token := tc.token
	tc.mu.RUnlock()

	if token != nil && token.expiration.After(now.Add(expirySafetyMargin)) {
		metrics.TokenCacheHits.Inc()
		logrus.WithField("timeUntilExpiry", token.expiration.Sub(now).Truncate(time.Second)).
			Debug("Using cached token")
		return token.accessToken, nil
	}

	reason := "no_cached_token"
	if token != nil {
		reason = "expired"
	}
	logrus.WithField("reason", reason).Info("Fetching new access token")

	if tc.clientID == "" || tc.clientSecret == "" {
		return "", core.ErrUpstreamCredentialsMissing
	}

	fresh, err := tc.fetch(ctx, now)
	if err != nil {
		tc.Clear()
		metrics.TokenRefreshes.WithLabelValues("failure").Inc()
		return "", err
	}

	tc.mu.Lock()
	tc.token = fresh
	tc.mu.Unlock()

	metrics.TokenRefreshes.WithLabelValues("success").Inc()
	logrus.WithFields(logrus.Fields{
		"expires_in":      fresh.expiresIn,
		"expiration_time": fresh.expiration.Format(time.RFC3339),
	}).Info("New token cached")

	return fresh.accessToken, nil
}

func (tc *TokenCache) fetch(ctx context.Context, now time.Time) (*cachedToken, error) {
	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	form.Set("client_id", tc.clientID)
	form.Set("client_secret", tc.clientSecret)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, tc.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("build token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := tc.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("token request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read token response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		logrus.WithFields(logrus.Fields{
			"status":    resp.StatusCode,
			"errorText": string(body),
		}).Error("Token request failed")
		return nil, &core.UpstreamError{Endpoint: "token", StatusCode: resp.StatusCode, Body: string(body)}
	}

	var data tokenResponse
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, fmt.Errorf("decode token response: %w", err)
	}

	return &cachedToken{
		accessToken: data.AccessToken,
		tokenType:   data.TokenType,
		expiresIn:   data.ExpiresIn,
		expiration:  now.Add(time.Duration(data.ExpiresIn) * time.Second),
	}, nil
}

// Clear drops the cached token. Used after failures and for forced refresh.
func (tc *TokenCache) Clear() {
	logrus.Debug("Clearing token cache")
	tc.mu.Lock()
	tc.token = nil
	tc.mu.Unlock()
}
