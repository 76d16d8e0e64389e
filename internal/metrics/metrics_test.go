package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMiddleware_RecordsStatusAndRoute(t *testing.T) {
	counter := httpRequestsTotal.WithLabelValues("GET", "browse", "404")
	before := testutil.ToFloat64(counter)

	h := Middleware(func(*http.Request) string { return "browse" },
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.NotFound(w, r)
		}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/tree/x", nil))

	assert.Equal(t, before+1, testutil.ToFloat64(counter))
}

func TestRecordLinkDecision(t *testing.T) {
	counter := linkDecisionsTotal.WithLabelValues("external")
	before := testutil.ToFloat64(counter)
	RecordLinkDecision("external")
	assert.Equal(t, before+1, testutil.ToFloat64(counter))
}
