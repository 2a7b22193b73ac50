package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/samalsubrat/mk-price-tracker/internal/domain"
)

// Collector holds all Prometheus metrics for the service.
// Each collector owns its registry so tests can create as many as they like.
type Collector struct {
	registry *prometheus.Registry

	// HTTP metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	// Pipeline metrics
	Refreshes         *prometheus.CounterVec
	RefreshDuration   prometheus.Histogram
	SourceProducts    *prometheus.GaugeVec
	SourceFailures    *prometheus.CounterVec
	CatalogGroups     prometheus.Gauge
	CatalogListings   prometheus.Gauge
	DuplicatesDropped prometheus.Counter
}

// NewCollector creates a metrics collector with the given namespace
func NewCollector(namespace string) *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		Refreshes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "catalog_refreshes_total",
				Help:      "Total number of catalog refresh runs by outcome",
			},
			[]string{"status"},
		),
		RefreshDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "catalog_refresh_duration_seconds",
				Help:      "Catalog refresh duration in seconds",
				Buckets:   []float64{1, 5, 10, 30, 60, 120, 300},
			},
		),
		SourceProducts: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "source_products",
				Help:      "Listings returned by each source in the last refresh",
			},
			[]string{"source"},
		),
		SourceFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "source_failures_total",
				Help:      "Total number of failed source fetches",
			},
			[]string{"source"},
		),
		CatalogGroups: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "catalog_groups",
				Help:      "Product groups in the current catalog",
			},
		),
		CatalogListings: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "catalog_listings",
				Help:      "Listings in the current catalog",
			},
		),
		DuplicatesDropped: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "duplicate_listings_dropped_total",
				Help:      "Total number of listings dropped because their link was already persisted",
			},
		),
	}

	c.registry.MustRegister(
		c.HTTPRequests,
		c.HTTPDuration,
		c.Refreshes,
		c.RefreshDuration,
		c.SourceProducts,
		c.SourceFailures,
		c.CatalogGroups,
		c.CatalogListings,
		c.DuplicatesDropped,
	)

	return c
}

// ObserveRefresh records the outcome and duration of a refresh run
func (c *Collector) ObserveRefresh(status string, duration time.Duration) {
	c.Refreshes.WithLabelValues(status).Inc()
	c.RefreshDuration.Observe(duration.Seconds())
}

// ObserveSource records how one source fared
func (c *Collector) ObserveSource(report domain.SourceReport) {
	c.SourceProducts.WithLabelValues(report.Source).Set(float64(report.Products))
	if report.Failed {
		c.SourceFailures.WithLabelValues(report.Source).Inc()
	}
}

// SetCatalogSize records the size of the persisted catalog
func (c *Collector) SetCatalogSize(groups, listings int) {
	c.CatalogGroups.Set(float64(groups))
	c.CatalogListings.Set(float64(listings))
}

// AddDuplicatesDropped counts listings removed during projection
func (c *Collector) AddDuplicatesDropped(n int) {
	if n > 0 {
		c.DuplicatesDropped.Add(float64(n))
	}
}

// ObserveHTTP records one served request
func (c *Collector) ObserveHTTP(method, route string, status int, duration time.Duration) {
	c.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.HTTPDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// Registry returns the underlying Prometheus registry
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the collector's metrics in the Prometheus text format
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
