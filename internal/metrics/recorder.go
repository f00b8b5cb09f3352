package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	versioncollector "github.com/prometheus/client_golang/prometheus/collectors/version"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/guimove/tablefit/internal/allocation"
	"github.com/guimove/tablefit/internal/model"
)

const namespace = "tablefit"

// Recorder exposes allocator outcomes as Prometheus metrics.
type Recorder struct {
	registry *prometheus.Registry

	allocations *prometheus.CounterVec
	waste       prometheus.Histogram
	tables      prometheus.Histogram
	partySize   prometheus.Histogram
	bookings    prometheus.Gauge
	loads       *prometheus.CounterVec
}

var _ allocation.Observer = (*Recorder)(nil)

// NewRecorder creates a recorder with its own registry, including the Go
// runtime, process and build-info collectors.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		allocations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "allocations_total",
			Help:      "Allocation attempts by outcome.",
		}, []string{"reason"}),
		waste: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "allocation_waste_seats",
			Help:      "Empty seats left by successful allocations.",
			Buckets:   prometheus.LinearBuckets(0, 1, 5),
		}),
		tables: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "allocation_tables",
			Help:      "Tables combined per successful allocation.",
			Buckets:   prometheus.LinearBuckets(1, 1, 5),
		}),
		partySize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "allocation_party_size",
			Help:      "Requested party sizes.",
			Buckets:   []float64{1, 2, 4, 6, 8, 12, 16, 24},
		}),
		bookings: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "snapshot_bookings",
			Help:      "Bookings in the most recently loaded snapshot.",
		}),
		loads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "snapshot_loads_total",
			Help:      "Snapshot loads by result.",
		}, []string{"result"}),
	}

	r.registry.MustRegister(
		r.allocations,
		r.waste,
		r.tables,
		r.partySize,
		r.bookings,
		r.loads,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		versioncollector.NewCollector(namespace),
	)
	return r
}

// ObserveAllocation records one allocation outcome.
func (r *Recorder) ObserveAllocation(people int, alloc *model.Allocation, reason allocation.Reason) {
	r.allocations.WithLabelValues(string(reason)).Inc()
	if people > 0 {
		r.partySize.Observe(float64(people))
	}
	if alloc == nil || !reason.OK() {
		return
	}
	r.waste.Observe(float64(alloc.Waste))
	if len(alloc.Tables) > 0 {
		r.tables.Observe(float64(len(alloc.Tables)))
	}
}

// ObserveSnapshot records the outcome of loading a snapshot.
func (r *Recorder) ObserveSnapshot(bookings int, err error) {
	if err != nil {
		r.loads.WithLabelValues("error").Inc()
		return
	}
	r.loads.WithLabelValues("ok").Inc()
	r.bookings.Set(float64(bookings))
}

// Registry returns the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry { return r.registry }

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}
