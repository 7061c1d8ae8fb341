package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Rejection and failure reasons used as label values.
const (
	ReasonMissing       = "missing"
	ReasonNotFound      = "not_found"
	ReasonInvalid       = "invalid"
	ReasonStoreError    = "store_error"
	ReasonNoCredential  = "no_credential"
	ReasonInvalidToken  = "invalid_token"
	ReasonExpired       = "expired"
	ReasonForbidden     = "forbidden"
	ReasonBadCredential = "bad_credentials"
)

type Config struct {
	// Namespace is the metrics namespace (default: "quill").
	Namespace string

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

type Option func(*Config)

func WithNamespace(namespace string) Option {
	return func(c *Config) {
		c.Namespace = namespace
	}
}

func WithRegistry(registry prometheus.Registerer) Option {
	return func(c *Config) {
		c.Registry = registry
	}
}

// Metrics holds the CSRF and authentication counters. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	config         Config
	csrfIssued     prometheus.Counter
	csrfRejections *prometheus.CounterVec
	authFailures   *prometheus.CounterVec
}

func New(opts ...Option) *Metrics {
	config := Config{
		Namespace: "quill",
		Registry:  prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(&config)
	}

	factory := promauto.With(config.Registry)

	return &Metrics{
		config: config,

		csrfIssued: factory.NewCounter(prometheus.CounterOpts{
			Namespace: config.Namespace,
			Name:      "csrf_tokens_issued_total",
			Help:      "Total number of CSRF tokens issued",
		}),

		csrfRejections: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: config.Namespace,
			Name:      "csrf_rejections_total",
			Help:      "Total number of state-changing requests rejected by the CSRF guard",
		}, []string{"reason"}),

		authFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: config.Namespace,
			Name:      "auth_failures_total",
			Help:      "Total number of rejected credentials and login attempts",
		}, []string{"reason"}),
	}
}

// StoreStats are the counters a token store keeps about itself.
type StoreStats struct {
	Hits      int64         `json:"hits"`
	Misses    int64         `json:"misses"`
	Sets      int64         `json:"sets"`
	Deletes   int64         `json:"deletes"`
	Evictions int64         `json:"evictions"`
	Size      int           `json:"size"`
	TTL       time.Duration `json:"ttl"`
}

// sizer is implemented by stores that know how many tokens they hold.
type sizer interface {
	Len() int
}

type statser interface {
	Stats() StoreStats
}

// TrackStore exports what a store can report about itself: the entry count
// for stores with Len, plus hit, miss, set, delete and eviction totals for
// stores with Stats. Other stores (redis) are ignored. Values are read at
// scrape time.
func (m *Metrics) TrackStore(store any) {
	if m == nil {
		return
	}
	factory := promauto.With(m.config.Registry)

	if sized, ok := store.(sizer); ok {
		factory.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: m.config.Namespace,
			Name:      "csrf_store_entries",
			Help:      "Number of CSRF tokens currently held by the in-memory store",
		}, func() float64 {
			return float64(sized.Len())
		})
	}

	stats, ok := store.(statser)
	if !ok {
		return
	}
	counters := []struct {
		name  string
		help  string
		value func(StoreStats) int64
	}{
		{"csrf_store_hits_total", "Token lookups that found a token", func(s StoreStats) int64 { return s.Hits }},
		{"csrf_store_misses_total", "Token lookups that found nothing", func(s StoreStats) int64 { return s.Misses }},
		{"csrf_store_sets_total", "Tokens written to the store", func(s StoreStats) int64 { return s.Sets }},
		{"csrf_store_deletes_total", "Tokens removed from the store", func(s StoreStats) int64 { return s.Deletes }},
		{"csrf_store_evictions_total", "Tokens evicted because the store was full", func(s StoreStats) int64 { return s.Evictions }},
	}
	for _, c := range counters {
		value := c.value
		factory.NewCounterFunc(prometheus.CounterOpts{
			Namespace: m.config.Namespace,
			Name:      c.name,
			Help:      c.help,
		}, func() float64 {
			return float64(value(stats.Stats()))
		})
	}
}

func (m *Metrics) CSRFIssued() {
	if m == nil {
		return
	}
	m.csrfIssued.Inc()
}

func (m *Metrics) CSRFRejected(reason string) {
	if m == nil {
		return
	}
	m.csrfRejections.WithLabelValues(reason).Inc()
}

func (m *Metrics) AuthFailed(reason string) {
	if m == nil {
		return
	}
	m.authFailures.WithLabelValues(reason).Inc()
}
