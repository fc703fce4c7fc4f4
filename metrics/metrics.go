package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "mq"

// Registry holds every collector of a single invocation. Nothing is served;
// the registry is only dumped to a textfile when one is configured.
var Registry = prometheus.NewRegistry()

var (
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "client",
			Name:      "requests_total",
			Help:      "Control-plane requests by method and status code, code 0 means no response.",
		},
		[]string{"method", "code"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "client",
			Name:      "request_duration_seconds",
			Help:      "Control-plane request latency.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method"},
	)

	TokenLookupsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "token_cache",
			Name:      "lookups_total",
			Help:      "Token cache lookups by result (hit, miss, error).",
		},
		[]string{"result"},
	)

	TopologyFilesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "topology",
			Name:      "files_total",
			Help:      "Topology files exported or imported, by kind.",
		},
		[]string{"operation", "kind"},
	)
)

func init() {
	Registry.MustRegister(RequestsTotal, RequestDuration, TokenLookupsTotal, TopologyFilesTotal)
}

func ObserveRequest(method string, statusCode int, duration time.Duration) {
	RequestsTotal.WithLabelValues(method, strconv.Itoa(statusCode)).Inc()
	RequestDuration.WithLabelValues(method).Observe(duration.Seconds())
}

func IncTokenLookup(result string) {
	TokenLookupsTotal.WithLabelValues(result).Inc()
}

func IncTopologyFile(operation, kind string) {
	TopologyFilesTotal.WithLabelValues(operation, kind).Inc()
}

// WriteTextfile dumps the registry in the node exporter textfile format.
// An empty path disables the dump.
func WriteTextfile(path string) error {
	if path == "" {
		return nil
	}
	return prometheus.WriteToTextfile(path, Registry)
}
