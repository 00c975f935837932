package broker

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmr-tortoise/tradestack/internal/config"
)

// TestFundLimits_Success verifies the probe hits /fundlimit with the
// Dhan auth headers and accepts a 2xx response.
func TestFundLimits_Success(t *testing.T) {
	var gotPath, gotToken, gotClient string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotToken = r.Header.Get("access-token")
		gotClient = r.Header.Get("client-id")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"success","data":{"availabelBalance":10000}}`))
	}))
	defer srv.Close()

	probe := NewProbe(config.Broker{
		ClientID:    "1000000001",
		AccessToken: "tok-123",
		BaseURL:     srv.URL,
	})

	err := probe.FundLimits(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "/fundlimit", gotPath)
	assert.Equal(t, "tok-123", gotToken)
	assert.Equal(t, "1000000001", gotClient)
}

// TestFundLimits_TrailingSlashBaseURL verifies the endpoint path is not
// doubled when the configured base URL carries a trailing slash.
func TestFundLimits_TrailingSlashBaseURL(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
	}))
	defer srv.Close()

	probe := NewProbe(config.Broker{ClientID: "c", AccessToken: "t", BaseURL: srv.URL + "/"})
	require.NoError(t, probe.FundLimits(context.Background()))
	assert.Equal(t, "/fundlimit", gotPath)
}

// TestFundLimits_AuthFailure verifies a non-2xx response becomes an error
// carrying the status and a body snippet.
func TestFundLimits_AuthFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"errorType":"Invalid_Authentication"}`))
	}))
	defer srv.Close()

	probe := NewProbe(config.Broker{ClientID: "c", AccessToken: "bad", BaseURL: srv.URL})

	err := probe.FundLimits(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
	assert.Contains(t, err.Error(), "Invalid_Authentication")
}

// TestFundLimits_Unreachable verifies transport failures surface as errors.
func TestFundLimits_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // shut down immediately so the address refuses connections

	probe := NewProbe(config.Broker{ClientID: "c", AccessToken: "t", BaseURL: srv.URL})

	err := probe.FundLimits(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fund limit request")
}
