// Package auth consumes the external credential-validation service. One
// request per login attempt, three outcome classes, no retries.
package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/V-ini-t86/broker-platform/internal/domain"
)

// ErrAuthenticationRejected means the service returned a 4xx: the submitted
// credentials are wrong. Surfaced to the user, never retried.
var ErrAuthenticationRejected = errors.New("authentication rejected")

// ErrServiceUnavailable means the service returned a 5xx or was unreachable.
// Surfaced as a transient, user-retryable error; never retried automatically.
var ErrServiceUnavailable = errors.New("authentication service unavailable")

// CredentialService validates a login attempt before a session is created.
type CredentialService interface {
	Validate(ctx context.Context, creds domain.Credentials) error
}

// ---------------------------------------------------------------------------
// HTTP implementation
// ---------------------------------------------------------------------------

// Compile-time interface check.
var _ CredentialService = (*HTTPService)(nil)

// HTTPService validates credentials against a remote endpoint with a single
// POST per attempt.
type HTTPService struct {
	baseURL    string
	httpClient *http.Client
}

// NewHTTPService creates an HTTPService targeting baseURL.
func NewHTTPService(baseURL string) *HTTPService {
	return &HTTPService{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// Validate POSTs the credentials to /login and maps the response status to
// the error taxonomy: 2xx nil, 4xx ErrAuthenticationRejected, everything
// else ErrServiceUnavailable.
func (s *HTTPService) Validate(ctx context.Context, creds domain.Credentials) error {
	body, err := json.Marshal(creds)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/login", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return ErrAuthenticationRejected
	default:
		return fmt.Errorf("%w: status %d", ErrServiceUnavailable, resp.StatusCode)
	}
}

// ---------------------------------------------------------------------------
// Placeholder implementation
// ---------------------------------------------------------------------------

// Compile-time interface check.
var _ CredentialService = (*StaticService)(nil)

// StaticService accepts every credential pair. It stands in for a real
// validation backend when none is configured, matching the stubbed login
// flow the dashboard ships with.
type StaticService struct{}

// NewStaticService creates the always-accept service.
func NewStaticService() *StaticService {
	return &StaticService{}
}

// Validate accepts any non-empty email.
func (s *StaticService) Validate(_ context.Context, creds domain.Credentials) error {
	if creds.Email == "" {
		return ErrAuthenticationRejected
	}
	return nil
}
