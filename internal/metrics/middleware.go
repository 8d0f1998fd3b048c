package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// Route labels for requests that have no route pattern.
const (
	RouteUnmatched = "unmatched"
	RoutePreflight = "preflight"
)

// RequestMetrics counts requests and observes latency per route pattern.
// Unmatched URLs and CORS preflights collapse into fixed labels, so clients
// cannot create new series by varying the path or method.
func RequestMetrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		method := methodLabel(c.Request.Method)
		route := routeLabel(c)
		HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(c.Writer.Status())).Inc()
		HTTPRequestDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
	}
}

func routeLabel(c *gin.Context) string {
	if c.Request.Method == http.MethodOptions && c.GetHeader("Access-Control-Request-Method") != "" {
		return RoutePreflight
	}
	if route := c.FullPath(); route != "" {
		return route
	}
	return RouteUnmatched
}

func methodLabel(method string) string {
	switch method {
	case http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions, http.MethodHead:
		return method
	default:
		return "other"
	}
}
