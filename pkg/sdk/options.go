package reportdex

import (
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	dsn          string
	maxOpenConns int
	autoMigrate  bool
	queryTimeout time.Duration

	redisAddrs    []string
	redisPassword string

	cacheDisabled   bool
	edgeSize        int
	edgeWindow      time.Duration
	documentsWindow time.Duration
	facetsWindow    time.Duration

	defaultPageSize int
	maxPageSize     int

	industries []FacetOption
	columns    []FacetOption

	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

func defaultConfig() *clientConfig {
	return &clientConfig{
		maxOpenConns:    4,
		queryTimeout:    5 * time.Second,
		edgeSize:        1024,
		edgeWindow:      30 * time.Second,
		defaultPageSize: 20,
		maxPageSize:     100,
	}
}

// WithSQLite sets the document store DSN.
func WithSQLite(dsn string) Option {
	return optionFunc(func(c *clientConfig) {
		c.dsn = dsn
	})
}

// WithAutoMigrate applies pending schema migrations when the client opens the store.
func WithAutoMigrate() Option {
	return optionFunc(func(c *clientConfig) {
		c.autoMigrate = true
	})
}

// WithMaxOpenConns caps the store's connection pool. Default: 4.
func WithMaxOpenConns(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.maxOpenConns = n
	})
}

// WithQueryTimeout bounds each store call. Default: 5s.
func WithQueryTimeout(d time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.queryTimeout = d
	})
}

// WithRedis adds the shared cache tier. Without it results are cached in-process only.
func WithRedis(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.redisAddrs = []string{addr}
		c.redisPassword = password
	})
}

// WithoutCache computes every result from the store.
func WithoutCache() Option {
	return optionFunc(func(c *clientConfig) {
		c.cacheDisabled = true
	})
}

// WithEdgeCache sizes the in-process tier. window caps entry freshness when
// the redis tier is configured. Defaults: 1024 entries, 30s.
func WithEdgeCache(size int, window time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.edgeSize = size
		c.edgeWindow = window
	})
}

// WithWindows sets the freshness windows of search results and the facet
// vocabulary. Zero keeps the defaults (10m, 24h).
func WithWindows(documents, facets time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.documentsWindow = documents
		c.facetsWindow = facets
	})
}

// WithPageSize sets the default and maximum page sizes. Defaults: 20, 100.
func WithPageSize(defaultSize, maxSize int) Option {
	return optionFunc(func(c *clientConfig) {
		c.defaultPageSize = defaultSize
		c.maxPageSize = maxSize
	})
}

// WithIndustries sets the industry vocabulary returned by FilterOptions.
func WithIndustries(opts ...FacetOption) Option {
	return optionFunc(func(c *clientConfig) {
		c.industries = opts
	})
}

// WithColumns sets the column vocabulary returned by FilterOptions.
func WithColumns(opts ...FacetOption) Option {
	return optionFunc(func(c *clientConfig) {
		c.columns = opts
	})
}

// WithLogger enables structured logging for SDK operations.
// Pass nil to disable (default). Uses standard library slog.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers SDK metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
