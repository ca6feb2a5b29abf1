package identity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"
)

const (
	requestTimeout = 10 * time.Second
	userAgent      = "Hermes-XMPP-Server"
)

// ErrUnauthorized is returned by Verify when the backend explicitly rejects
// the presented credentials (any non-success status).
var ErrUnauthorized = errors.New("identity: credentials rejected")

// AuthResponse is the backend's answer to a successful verification.
type AuthResponse struct {
	AccountID string `json:"accountId"`
	Username  string `json:"username"`
}

// Friend is one entry of an account's friends list. Only entries with
// Status == StatusAccepted participate in presence fan-out.
type Friend struct {
	ID        string `json:"id"`
	Status    string `json:"status"`
	Direction string `json:"direction"`
}

// StatusAccepted marks a mutual, accepted friendship.
const StatusAccepted = "ACCEPTED"

// Accepted reports whether the friend record participates in fan-out.
func (f Friend) Accepted() bool { return f.Status == StatusAccepted }

// Client talks to the backend identity/social REST service.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
	log     *zap.Logger
}

// NewClient creates a client for the service rooted at baseURL. The token
// is sent on every request as the X-Hermes-Token header.
func NewClient(baseURL, token string, log *zap.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		token:   token,
		http:    &http.Client{Timeout: requestTimeout},
		log:     log,
	}
}

// Verify checks an account's token against the backend.
// It returns ErrUnauthorized when the backend answers with a non-success
// status; any other error means the backend was unreachable.
func (c *Client) Verify(ctx context.Context, accountID, token string) (*AuthResponse, error) {
	q := url.Values{}
	q.Set("accountId", accountID)
	q.Set("token", token)

	var auth AuthResponse
	if err := c.getJSON(ctx, "/h/v1/auth/verify?"+q.Encode(), &auth); err != nil {
		return nil, err
	}
	return &auth, nil
}

// Friends fetches the friends list for an account. An empty list is not an
// error; it simply yields no fan-out targets.
func (c *Client) Friends(ctx context.Context, accountID string) ([]Friend, error) {
	q := url.Values{}
	q.Set("accountId", accountID)

	var friends []Friend
	if err := c.getJSON(ctx, "/h/v1/friends?"+q.Encode(), &friends); err != nil {
		return nil, err
	}
	return friends, nil
}

func (c *Client) getJSON(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+endpoint, nil)
	if err != nil {
		return fmt.Errorf("identity: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	if c.token != "" {
		req.Header.Set("X-Hermes-Token", c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("identity: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.log.Warn("identity request failed",
			zap.String("endpoint", req.URL.Path),
			zap.Int("status", resp.StatusCode))
		return fmt.Errorf("%w: status %d", ErrUnauthorized, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("identity: decode response: %w", err)
	}
	return nil
}
