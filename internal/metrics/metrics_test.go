package metrics

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"
)

type fixedCounter struct {
	n   int64
	err error
}

func (c fixedCounter) Count(context.Context) (int64, error) { return c.n, c.err }

func TestUpdateStoreMetrics(t *testing.T) {
	UpdateStoreMetrics(context.Background(), fixedCounter{n: 3}, fixedCounter{n: 42}, zap.NewNop())

	if got := testutil.ToFloat64(UsersTotal); got != 3 {
		t.Errorf("UsersTotal = %v, want 3", got)
	}
	if got := testutil.ToFloat64(HistoryRecordsTotal); got != 42 {
		t.Errorf("HistoryRecordsTotal = %v, want 42", got)
	}

	// Errors leave the previous value in place.
	UpdateStoreMetrics(context.Background(), fixedCounter{err: errors.New("boom")}, nil, zap.NewNop())
	if got := testutil.ToFloat64(UsersTotal); got != 3 {
		t.Errorf("UsersTotal = %v after error, want 3", got)
	}
}

func TestRequestMetrics(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(RequestMetrics())
	router.GET("/items/:id", func(c *gin.Context) {
		c.Status(http.StatusTeapot)
	})

	count := func(method, route, status string) float64 {
		return testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues(method, route, status))
	}

	tests := []struct {
		name    string
		method  string
		path    string
		headers map[string]string
		labels  [3]string
	}{
		{"route pattern", http.MethodGet, "/items/123", nil, [3]string{http.MethodGet, "/items/:id", "418"}},
		{"unknown path", http.MethodGet, "/random/path/42", nil, [3]string{http.MethodGet, RouteUnmatched, "404"}},
		{"cors preflight", http.MethodOptions, "/items/1", map[string]string{
			"Origin":                        "https://app.example.com",
			"Access-Control-Request-Method": http.MethodGet,
		}, [3]string{http.MethodOptions, RoutePreflight, "404"}},
		{"unusual method", "PROPFIND", "/items/1", nil, [3]string{"other", RouteUnmatched, "404"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := count(tt.labels[0], tt.labels[1], tt.labels[2])

			req := httptest.NewRequest(tt.method, tt.path, nil)
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			router.ServeHTTP(httptest.NewRecorder(), req)

			if delta := count(tt.labels[0], tt.labels[1], tt.labels[2]) - before; delta != 1 {
				t.Errorf("expected one request under %v, got delta %v", tt.labels, delta)
			}
		})
	}
}
