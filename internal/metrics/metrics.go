package metrics

import (
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	Uploads = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "geostore",
		Name:      "uploads_total",
		Help:      "Total objects uploaded to the bucket.",
	})
	Downloads = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "geostore",
		Name:      "downloads_total",
		Help:      "Total objects downloaded from the bucket.",
	})
	ListRequests = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "geostore",
		Name:      "list_requests_total",
		Help:      "Total listing requests issued (one per page).",
	})
	Probes = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "geostore",
		Name:      "existence_probes_total",
		Help:      "Total head-object existence probes issued.",
	})
	Errors = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "geostore",
		Name:      "operation_errors_total",
		Help:      "Total bucket operations that returned an error.",
	})
)

// Init registers collectors; call once from main.
func Init() {
	prometheus.MustRegister(Uploads, Downloads, ListRequests, Probes, Errors)
}

// Serve starts a /metrics server on the given addr (e.g., ":9090"). Non-blocking when run in goroutine.
func Serve(addr string) error {
	http.Handle("/metrics", promhttp.Handler())
	return http.ListenAndServe(addr, nil)
}

// AddrFromEnv returns listen address from METRICS_ADDR or default ":9090".
func AddrFromEnv() string {
	if v := os.Getenv("METRICS_ADDR"); v != "" {
		return v
	}
	return ":9090"
}
