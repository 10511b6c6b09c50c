package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handler returns the Prometheus metrics HTTP handler, for mounting under
// a demo server's /metrics route.
func Handler() http.Handler {
	return promhttp.Handler()
}
