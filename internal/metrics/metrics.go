// Package metrics defines the prometheus collectors of stringgraph.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	StoreOperationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "stringgraph_store_operations_total",
		Help: "Graph store reads and writes, by backend, operation and result.",
	}, []string{"backend", "op", "result"})

	StoreOperationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "stringgraph_store_operation_seconds",
		Help:    "Time spent reading or writing a graph store.",
		Buckets: prometheus.DefBuckets,
	}, []string{"backend", "op"})

	StoreBytesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "stringgraph_store_bytes_total",
		Help: "Encoded graph bytes read from or written to a store.",
	}, []string{"backend", "op"})

	GraphNodes = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "stringgraph_graph_nodes",
		Help: "Number of nodes in the most recently loaded graph.",
	})

	GraphEdges = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "stringgraph_graph_edges",
		Help: "Number of edges in the most recently loaded graph.",
	})

	GraphLabels = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "stringgraph_graph_labels",
		Help: "Number of distinct edge labels in the most recently loaded graph.",
	})

	WatcherEventsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "stringgraph_watcher_events_total",
		Help: "File system events delivered by the watcher after debouncing.",
	})

	WatcherReloadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "stringgraph_watcher_reloads_total",
		Help: "Graph reloads triggered by the watcher, by result.",
	}, []string{"result"})

	QueriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "stringgraph_queries_total",
		Help: "Queries answered, by kind.",
	}, []string{"kind"})
)

// Result returns the result label for err.
func Result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// ObserveStoreOp records one store operation that started at start.
func ObserveStoreOp(backend, op string, start time.Time, bytes int, err error) {
	StoreOperationsTotal.WithLabelValues(backend, op, Result(err)).Inc()
	StoreOperationDuration.WithLabelValues(backend, op).Observe(time.Since(start).Seconds())
	if err == nil && bytes > 0 {
		StoreBytesTotal.WithLabelValues(backend, op).Add(float64(bytes))
	}
}

// SetGraphSize publishes the size of the current graph.
func SetGraphSize(nodes, edges, labels int) {
	GraphNodes.Set(float64(nodes))
	GraphEdges.Set(float64(edges))
	GraphLabels.Set(float64(labels))
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
