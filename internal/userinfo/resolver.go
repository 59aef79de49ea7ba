// Package userinfo resolves a bearer token to a username via the identity
// provider's hosted userinfo endpoint.
//
// The engine only calls out here when endpoint gating actually needs a
// username and the token itself does not carry one. A resolver failure
// denies the request: guessing at identity is worse than refusing.
package userinfo

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"

	"github.com/omarluq/cc-gate/internal/authz"
)

// EndpointURL returns the hosted userinfo endpoint for a domain prefix.
func EndpointURL(domainPrefix, region string) string {
	return fmt.Sprintf("https://%s.auth.%s.amazoncognito.com/oauth2/userInfo", domainPrefix, region)
}

// maxBodyBytes caps the userinfo response read. The document is a small
// claims object; anything larger is not worth buffering.
const maxBodyBytes = 1 << 20

// Resolver fetches the userinfo document for a token and extracts the
// username. preferred_username wins over username when both are present.
type Resolver struct {
	client   *http.Client
	endpoint string
	log      zerolog.Logger
}

var _ authz.UserInfoResolver = (*Resolver)(nil)

// Option configures a Resolver.
type Option func(*Resolver)

// WithHTTPClient overrides the HTTP client. Used in tests.
func WithHTTPClient(client *http.Client) Option {
	return func(r *Resolver) {
		r.client = client
	}
}

// NewResolver creates a Resolver against the given endpoint.
func NewResolver(endpoint string, logger zerolog.Logger, opts ...Option) *Resolver {
	r := &Resolver{
		client:   &http.Client{Timeout: 5 * time.Second},
		endpoint: endpoint,
		log:      logger.With().Str("component", "userinfo").Logger(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns the username the identity provider reports for rawToken.
func (r *Resolver) Resolve(ctx context.Context, rawToken string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("build userinfo request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+rawToken)

	resp, err := r.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("userinfo request: %w", err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			r.log.Debug().Err(cerr).Msg("close userinfo response body")
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("userinfo endpoint returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", fmt.Errorf("read userinfo response: %w", err)
	}

	username := gjson.GetBytes(body, "preferred_username").String()
	if username == "" {
		username = gjson.GetBytes(body, "username").String()
	}
	if username == "" {
		return "", fmt.Errorf("userinfo response has no username")
	}
	return username, nil
}
