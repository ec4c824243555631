// internal/servicedesk/token.go
package servicedesk

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"hrdesk-automation/internal/common/errors"
	commonhttp "hrdesk-automation/internal/common/http"
)

// TokenResponse is the token endpoint's reply.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
	TokenType   string `json:"token_type"`
}

// TokenProvider fetches and caches a client-credentials access token for the
// service desk API. Safe for concurrent use; a token is refetched only once
// its expiry (minus a skew allowance) has passed.
type TokenProvider struct {
	tokenURL     string
	clientID     string
	clientSecret string
	httpClient   *commonhttp.Client

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time
}

const tokenExpirySkew = 30 * time.Second

func NewTokenProvider(tokenURL, clientID, clientSecret string, httpClient *commonhttp.Client) *TokenProvider {
	return &TokenProvider{
		tokenURL:     tokenURL,
		clientID:     clientID,
		clientSecret: clientSecret,
		httpClient:   httpClient,
	}
}

// Token returns a valid access token, fetching a fresh one when the cached
// token has expired.
func (p *TokenProvider) Token(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.accessToken != "" && p.tokenExpiry.After(time.Now()) {
		return p.accessToken, nil
	}

	data := url.Values{}
	data.Set("grant_type", "client_credentials")
	data.Set("client_id", p.clientID)
	data.Set("client_secret", p.clientSecret)

	req, err := http.NewRequestWithContext(ctx, "POST", p.tokenURL, strings.NewReader(data.Encode()))
	if err != nil {
		return "", &errors.StandardError{
			Code:      errors.ErrCodeTicketUpdateFailed,
			Message:   "Failed to create token request",
			Details:   err.Error(),
			Retryable: false,
			Timestamp: time.Now().UTC(),
		}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", &errors.StandardError{
			Code:      errors.ErrCodeTicketUpdateFailed,
			Message:   "Token endpoint unreachable",
			Details:   err.Error(),
			Retryable: true,
			Timestamp: time.Now().UTC(),
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", &errors.StandardError{
			Code:      errors.ErrCodeTicketUpdateFailed,
			Message:   "Token endpoint rejected credentials",
			Details:   resp.Status,
			Retryable: isTransientHTTPError(resp.StatusCode),
			Timestamp: time.Now().UTC(),
		}
	}

	var tokenResp TokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tokenResp); err != nil {
		return "", &errors.StandardError{
			Code:      errors.ErrCodeTicketUpdateFailed,
			Message:   "Failed to decode token response",
			Details:   err.Error(),
			Retryable: false,
			Timestamp: time.Now().UTC(),
		}
	}

	p.accessToken = tokenResp.AccessToken
	p.tokenExpiry = time.Now().Add(time.Duration(tokenResp.ExpiresIn)*time.Second - tokenExpirySkew)

	return p.accessToken, nil
}

// Invalidate drops the cached token so the next call refetches. Used after a
// 401 from the API.
func (p *TokenProvider) Invalidate() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.accessToken = ""
	p.tokenExpiry = time.Time{}
}

func isTransientHTTPError(statusCode int) bool {
	switch statusCode {
	case http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout,
		http.StatusTooManyRequests:
		return true
	default:
		return false
	}
}
