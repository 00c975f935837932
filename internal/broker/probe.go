// Package broker probes the Dhan trading API for reachability.
//
// The probe calls the fund-limit endpoint, the cheapest authenticated call
// the API offers, with the credentials from tradestack.yaml. It answers one
// question for the check command: can this environment reach the broker
// with these credentials right now.
package broker

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mmr-tortoise/tradestack/internal/config"
)

// probeTimeout bounds the whole probe request. The fund-limit endpoint
// answers in well under a second when reachable.
const probeTimeout = 10 * time.Second

// maxBodySnippet limits how much of an error response body is carried
// into the error message.
const maxBodySnippet = 512

// Probe performs authenticated reachability checks against the broker API.
type Probe struct {
	client      *http.Client
	baseURL     string
	clientID    string
	accessToken string
}

// NewProbe creates a Probe from broker credentials.
func NewProbe(b config.Broker) *Probe {
	return &Probe{
		client:      &http.Client{Timeout: probeTimeout},
		baseURL:     strings.TrimRight(b.BaseURL, "/"),
		clientID:    b.ClientID,
		accessToken: b.AccessToken,
	}
}

// FundLimits calls GET /fundlimit with the access-token and client-id
// headers the Dhan API expects. A 2xx response means the environment can
// reach the broker with the configured credentials; anything else is
// returned as an error carrying the status and a body snippet.
func (p *Probe) FundLimits(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/fundlimit", nil)
	if err != nil {
		return fmt.Errorf("build fund limit request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("access-token", p.accessToken)
	req.Header.Set("client-id", p.clientID)

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("fund limit request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxBodySnippet))
	snippet := strings.TrimSpace(string(body))
	if snippet == "" {
		return fmt.Errorf("fund limit request returned %s", resp.Status)
	}
	return fmt.Errorf("fund limit request returned %s: %s", resp.Status, snippet)
}
