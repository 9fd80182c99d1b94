package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLedgerObserve(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := NewLedger(reg)
	require.NoError(t, err)

	m.Observe("points.redeemed", 40)
	m.Observe("points.redeemed", 10)
	m.Observe("coupon.applied", 0)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.events.WithLabelValues("points.redeemed")))
	assert.Equal(t, 50.0, testutil.ToFloat64(m.points.WithLabelValues("points.redeemed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.events.WithLabelValues("coupon.applied")))

	_, err = NewLedger(reg)
	assert.Error(t, err, "registering twice must fail")

	var nilLedger *Ledger
	assert.NotPanics(t, func() { nilLedger.Observe("points.awarded", 1) })
}

func TestHTTPMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	reg := prometheus.NewRegistry()
	m, err := NewHTTP(reg)
	require.NoError(t, err)

	r := gin.New()
	r.Use(m.Middleware())
	r.GET("/items/:id", func(c *gin.Context) { c.Status(http.StatusTeapot) })

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/items/1", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/missing", nil))

	assert.Equal(t, 2, testutil.CollectAndCount(m.duration))
	count, err := testutil.GatherAndCount(reg, "loyalty_http_request_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}
