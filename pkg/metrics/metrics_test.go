package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestGinMiddlewareCountsRequests(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(GinMiddleware())
	r.GET("/api/ping/:id", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	r.GET("/metrics", Handler())

	before := testutil.ToFloat64(requestTotal.WithLabelValues(http.MethodGet, "/api/ping/:id", "204"))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/ping/42", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)

	after := testutil.ToFloat64(requestTotal.WithLabelValues(http.MethodGet, "/api/ping/:id", "204"))
	assert.Equal(t, before+1, after)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "applyfollow_http_requests_total")
}

func TestReminderCounters(t *testing.T) {
	Register()
	before := testutil.ToFloat64(reminderSweeps.WithLabelValues("skipped"))
	ReminderSweep("skipped")
	assert.Equal(t, before+1, testutil.ToFloat64(reminderSweeps.WithLabelValues("skipped")))

	sent := testutil.ToFloat64(remindersSent.WithLabelValues("failed"))
	ReminderSent(false)
	assert.Equal(t, sent+1, testutil.ToFloat64(remindersSent.WithLabelValues("failed")))

	OAuth2PendingRequests(3)
	assert.Equal(t, float64(3), testutil.ToFloat64(oauth2PendingRequests))
}
