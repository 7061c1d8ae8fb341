package quill

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/lborres/quill/pkg/metrics"
	"github.com/lborres/quill/services"
)

const testSecret = "01234567890123456789012345678901"

// dummy HTTP Adapter
type dummyHTTP struct {
	got *Quill
	err error
}

func (d *dummyHTTP) RegisterRoutes(q *Quill) error {
	d.got = q
	return d.err
}

func TestNewValidatesConfig(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr error
	}{
		{
			name:    "missing secret",
			cfg:     Config{Database: services.NewFakeStorageProvider(), HTTP: &dummyHTTP{}},
			wantErr: ErrSecretRequired,
		},
		{
			name:    "missing database",
			cfg:     Config{Secret: testSecret, HTTP: &dummyHTTP{}},
			wantErr: ErrDBAdapterRequired,
		},
		{
			name:    "missing http adapter",
			cfg:     Config{Secret: testSecret, Database: services.NewFakeStorageProvider()},
			wantErr: ErrHTTPAdapterRequired,
		},
		{
			name:    "negative credential ttl",
			cfg:     Config{Secret: testSecret, Database: services.NewFakeStorageProvider(), HTTP: &dummyHTTP{}, CredentialTTL: -time.Second},
			wantErr: ErrInvalidCredentialTTL,
		},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			_, err := New(test.cfg)
			if !errors.Is(err, test.wantErr) {
				t.Errorf("New() error = %v, want %v", err, test.wantErr)
			}
		})
	}
}

func TestNewShouldReturnErrSecretTooShort(t *testing.T) {
	cfg := Config{
		Secret:   "short-secret",
		Database: services.NewFakeStorageProvider(),
		HTTP:     &dummyHTTP{},
	}

	_, err := New(cfg)
	if !errors.Is(err, ErrSecretTooShort) {
		t.Fatalf("expected ErrSecretTooShort sentinel (errors.Is), got %v", err)
	}
	// Message should include the minimum length
	if !strings.Contains(err.Error(), "32") {
		t.Fatalf("expected error message to include minimum length, got %v", err)
	}
}

// Requirement: New fills defaults and hands the assembled service to the
// HTTP adapter.
func TestNewAppliesDefaults(t *testing.T) {
	// Arrange
	adapter := &dummyHTTP{}

	// Act
	q, err := New(Config{Secret: testSecret, Database: services.NewFakeStorageProvider(), HTTP: adapter})

	// Assert
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if adapter.got != q {
		t.Error("RegisterRoutes should receive the assembled service")
	}
	if q.BasePath != "/api" {
		t.Errorf("BasePath = %q, want /api", q.BasePath)
	}
	if q.CredentialTTL != 7*24*time.Hour {
		t.Errorf("CredentialTTL = %v, want 7 days", q.CredentialTTL)
	}
	if len(q.Endpoints) != len(services.BaseEndpoints()) {
		t.Errorf("Endpoints = %d, want %d", len(q.Endpoints), len(services.BaseEndpoints()))
	}
}

// Requirement: without a configured store New uses the bounded in-memory
// one, whose counters reach the metrics registry.
func TestNewDefaultStoreIsTracked(t *testing.T) {
	// Arrange
	reg := prometheus.NewRegistry()
	m := metrics.New(metrics.WithRegistry(reg))

	// Act
	q, err := New(Config{Secret: testSecret, Database: services.NewFakeStorageProvider(), HTTP: &dummyHTTP{}, Metrics: m})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if _, err := q.CSRF.Issue(context.Background(), "user:1"); err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	// Assert
	err = testutil.GatherAndCompare(reg, strings.NewReader(`
# HELP quill_csrf_store_entries Number of CSRF tokens currently held by the in-memory store
# TYPE quill_csrf_store_entries gauge
quill_csrf_store_entries 1
# HELP quill_csrf_store_sets_total Tokens written to the store
# TYPE quill_csrf_store_sets_total counter
quill_csrf_store_sets_total 1
`), "quill_csrf_store_entries", "quill_csrf_store_sets_total")
	if err != nil {
		t.Error(err)
	}
}

func TestNewUsesProvidedTokenStore(t *testing.T) {
	// Arrange
	store := services.NewFakeTokenStore()

	// Act
	q, err := New(Config{Secret: testSecret, Database: services.NewFakeStorageProvider(), HTTP: &dummyHTTP{}, TokenStore: store})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	_, err = q.CSRF.Issue(context.Background(), "user:1")

	// Assert
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}
	if store.Len() != 1 {
		t.Errorf("provided store holds %d tokens, want 1", store.Len())
	}
}

func TestNewPropagatesAdapterError(t *testing.T) {
	adapterErr := errors.New("route conflict")

	_, err := New(Config{Secret: testSecret, Database: services.NewFakeStorageProvider(), HTTP: &dummyHTTP{err: adapterErr}})

	if !errors.Is(err, adapterErr) {
		t.Errorf("New() error = %v, want %v", err, adapterErr)
	}
}
