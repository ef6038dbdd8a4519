// Package zgw reads case, catalog, role, status, and document resources
// from ZGW (Zaakgericht Werken) APIs. Each API group gets its own bound
// service; all reads are synchronous, bounded by a request timeout, and
// never retried here. Upstream failures surface as errors the policy
// engine converts to terminal ignore outcomes.
package zgw

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/goliatone/go-zaaknotify/core"
)

const maxResponseBytes = 1 << 20

// maxListPages caps pagination follow-up so a misbehaving backend cannot
// keep a webhook request alive indefinitely.
const maxListPages = 50

type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Factory builds per-group case services sharing one HTTP client.
type Factory struct {
	HTTP    HTTPDoer
	Timeout time.Duration
}

func NewFactory(client HTTPDoer, timeout time.Duration) *Factory {
	if client == nil {
		client = &http.Client{}
	}
	return &Factory{HTTP: client, Timeout: timeout}
}

func (f *Factory) ForGroup(group core.APIGroup) core.CaseService {
	httpClient := f.HTTP
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Service{
		http:    httpClient,
		timeout: f.Timeout,
		group:   group,
	}
}

var _ core.ClientFactory = (*Factory)(nil)

// Service is a core.CaseService bound to one API group.
type Service struct {
	http    HTTPDoer
	timeout time.Duration
	group   core.APIGroup
}

func (s *Service) getJSON(ctx context.Context, endpoint string, out any) error {
	requestCtx := ctx
	cancel := func() {}
	if s.timeout > 0 {
		requestCtx, cancel = context.WithTimeout(ctx, s.timeout)
	}
	defer cancel()

	req, err := http.NewRequestWithContext(requestCtx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if strings.TrimSpace(s.group.ClientID) != "" && strings.TrimSpace(s.group.Secret) != "" {
		token, tokenErr := mintClientToken(s.group.ClientID, s.group.Secret, time.Now())
		if tokenErr != nil {
			return fmt.Errorf("zgw: mint client token for %s: %w", endpoint, tokenErr)
		}
		req.Header.Set("Authorization", "Bearer "+token)
	} else if token := strings.TrimSpace(s.group.Token); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	res, err := s.http.Do(req)
	if err != nil {
		return fmt.Errorf("zgw: request %s: %w", endpoint, err)
	}
	defer res.Body.Close()

	body, readErr := io.ReadAll(io.LimitReader(res.Body, maxResponseBytes+1))
	if readErr != nil {
		return fmt.Errorf("zgw: read response from %s: %w", endpoint, readErr)
	}
	if int64(len(body)) > maxResponseBytes {
		return fmt.Errorf("zgw: response from %s exceeds %d bytes", endpoint, maxResponseBytes)
	}
	if res.StatusCode == http.StatusNotFound {
		return fmt.Errorf("zgw: %s returned 404: %w", endpoint, core.ErrNotFound)
	}
	if res.StatusCode < http.StatusOK || res.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("zgw: %s returned status %d", endpoint, res.StatusCode)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("zgw: decode response from %s: %w", endpoint, err)
	}
	return nil
}

// listPage is the ZGW paginated list envelope.
type listPage[T any] struct {
	Count    int    `json:"count"`
	Next     string `json:"next"`
	Previous string `json:"previous"`
	Results  []T    `json:"results"`
}

func listAll[T any](ctx context.Context, s *Service, endpoint string) ([]T, error) {
	var all []T
	next := endpoint
	for page := 0; next != ""; page++ {
		if page >= maxListPages {
			return nil, fmt.Errorf("zgw: pagination exceeded %d pages at %s", maxListPages, endpoint)
		}
		var envelope listPage[T]
		if err := s.getJSON(ctx, next, &envelope); err != nil {
			return nil, err
		}
		all = append(all, envelope.Results...)
		next = strings.TrimSpace(envelope.Next)
	}
	return all, nil
}

func joinBase(baseURL string, path string) string {
	return strings.TrimRight(strings.TrimSpace(baseURL), "/") + path
}
