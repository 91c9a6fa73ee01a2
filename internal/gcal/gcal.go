// Package gcal mirrors visits to a user's Google Calendar.
//
// The whole package is best-effort by design: calendar sync is an enhancement,
// not a correctness-critical path for visit management. Token acquisition
// degrades to "not connected" on every failure mode and sync failures are
// logged and reported, never escalated — local persistence stays authoritative.
package gcal

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	calendarAPI = "https://www.googleapis.com/calendar/v3"
	tokenURL    = "https://oauth2.googleapis.com/token"
)

// TokenStore reads and writes the cached provider credentials of a user.
// Satisfied by storage.Provider.
type TokenStore interface {
	GetUserTokens(ctx context.Context, userID string) (accessToken, refreshToken *string, err error)
	SaveUserAccessToken(ctx context.Context, userID string, accessToken string) error
}

// ProviderError is returned for any non-2xx response from the calendar API.
// No per-status differentiation drives different local behavior; callers only
// log it.
type ProviderError struct {
	Status int
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("google calendar api error: %d", e.Status)
}

type Client struct {
	httpClient *http.Client

	baseURL  string
	tokenURL string

	clientID     string
	clientSecret string

	// IANA zone attached to every event timestamp. Threaded explicitly,
	// nothing here reads the process-wide zone.
	timeZone string

	tokens TokenStore
	logger *slog.Logger
}

type Options struct {
	ClientID     string
	ClientSecret string
	TimeZone     string
	Tokens       TokenStore

	HTTPClient *http.Client

	// Endpoint overrides for tests. Production uses the fixed constants.
	BaseURL  string
	TokenURL string
}

func New(opts Options) *Client {
	c := &Client{
		httpClient:   opts.HTTPClient,
		baseURL:      opts.BaseURL,
		tokenURL:     opts.TokenURL,
		clientID:     opts.ClientID,
		clientSecret: opts.ClientSecret,
		timeZone:     opts.TimeZone,
		tokens:       opts.Tokens,
		logger:       slog.With("component", "gcal"),
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	if c.baseURL == "" {
		c.baseURL = calendarAPI
	}
	if c.tokenURL == "" {
		c.tokenURL = tokenURL
	}
	return c
}

// ValidToken returns a currently valid access token for the user, refreshing
// it when needed. The second return is false when the integration is not
// connected or the token could not be validated or refreshed; callers skip
// calendar sync in that case.
//
// Validity is checked empirically with a cheap authenticated read rather than
// by tracking expiry locally, which also covers clock skew and provider-side
// revocation.
func (c *Client) ValidToken(ctx context.Context, userID string) (string, bool) {
	access, refresh, err := c.tokens.GetUserTokens(ctx, userID)
	if err != nil {
		c.logger.Warn("Failed to load cached tokens", "user_id", userID, "error", err)
		return "", false
	}

	// User never connected the calendar integration.
	if access == nil || *access == "" {
		return "", false
	}

	if c.probeToken(ctx, *access) {
		return *access, true
	}

	// Token expired or revoked, try refresh.
	if refresh == nil || *refresh == "" {
		c.logger.Warn("No refresh token for user", "user_id", userID)
		return "", false
	}

	newToken, ok := c.refreshAccessToken(ctx, *refresh)
	if !ok {
		return "", false
	}

	// Refresh token is deliberately left untouched; Google does not rotate
	// it on this grant.
	if err := c.tokens.SaveUserAccessToken(ctx, userID, newToken); err != nil {
		// The token itself is good, so still use it for this request;
		// the next call will simply refresh again.
		c.logger.Error("Failed to persist refreshed access token", "user_id", userID, "error", err)
	}

	return newToken, true
}

// probeToken performs the minimal authenticated read used to validate a
// cached access token.
func (c *Client) probeToken(ctx context.Context, accessToken string) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/calendars/primary?fields=id", nil)
	if err != nil {
		return false
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	res, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("Token probe failed", "error", err)
		return false
	}
	defer res.Body.Close()
	io.Copy(io.Discard, res.Body)

	return res.StatusCode >= 200 && res.StatusCode < 300
}

func (c *Client) refreshAccessToken(ctx context.Context, refreshToken string) (string, bool) {
	if c.clientID == "" || c.clientSecret == "" {
		c.logger.Warn("Google client credentials not set, cannot refresh token")
		return "", false
	}

	form := url.Values{
		"client_id":     {c.clientID},
		"client_secret": {c.clientSecret},
		"refresh_token": {refreshToken},
		"grant_type":    {"refresh_token"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", false
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	res, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("Token refresh request failed", "error", err)
		return "", false
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		body, _ := io.ReadAll(res.Body)
		c.logger.Error("Token refresh failed", "status", res.StatusCode, "body", string(body))
		return "", false
	}

	var payload struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(res.Body).Decode(&payload); err != nil {
		c.logger.Error("Failed to decode token response", "error", err)
		return "", false
	}
	if payload.AccessToken == "" {
		return "", false
	}

	return payload.AccessToken, true
}
