package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samalsubrat/mk-price-tracker/internal/domain"
)

func TestCollector_PipelineMetrics(t *testing.T) {
	c := NewCollector("mkprice")

	c.ObserveRefresh("success", 2*time.Second)
	c.ObserveRefresh("failure", time.Second)
	c.ObserveRefresh("success", time.Second)

	assert.Equal(t, 2.0, testutil.ToFloat64(c.Refreshes.WithLabelValues("success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.Refreshes.WithLabelValues("failure")))

	c.ObserveSource(domain.SourceReport{Source: "meckeys", Products: 42})
	c.ObserveSource(domain.SourceReport{Source: "stacks", Failed: true, Error: "timeout"})

	assert.Equal(t, 42.0, testutil.ToFloat64(c.SourceProducts.WithLabelValues("meckeys")))
	assert.Equal(t, 0.0, testutil.ToFloat64(c.SourceProducts.WithLabelValues("stacks")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.SourceFailures.WithLabelValues("stacks")))

	c.SetCatalogSize(10, 25)
	assert.Equal(t, 10.0, testutil.ToFloat64(c.CatalogGroups))
	assert.Equal(t, 25.0, testutil.ToFloat64(c.CatalogListings))

	c.AddDuplicatesDropped(3)
	c.AddDuplicatesDropped(0)
	assert.Equal(t, 3.0, testutil.ToFloat64(c.DuplicatesDropped))
}

func TestCollector_Handler(t *testing.T) {
	c := NewCollector("mkprice")
	c.ObserveHTTP("GET", "/api/v1/groups", http.StatusOK, 10*time.Millisecond)

	w := httptest.NewRecorder()
	c.Handler().ServeHTTP(w, httptest.NewRequest("GET", "/metrics", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `mkprice_http_requests_total{method="GET",route="/api/v1/groups",status="200"} 1`)
}

func TestNewCollector_IndependentRegistries(t *testing.T) {
	assert.NotPanics(t, func() {
		NewCollector("mkprice")
		NewCollector("mkprice")
	})
}
