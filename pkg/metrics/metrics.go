package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mamadbah2/agrifleet/internal/domain/equipment"
)

const namespace = "agrifleet"

// FleetReader walks the registered equipment at scrape time.
type FleetReader interface {
	Each(fn func(equipment.Equipment))
}

// Metrics exposes fleet activity to Prometheus on its own registry.
type Metrics struct {
	registry   *prometheus.Registry
	operations *prometheus.CounterVec
	alerts     *prometheus.CounterVec
}

// New builds the collectors and registers the fleet gauges. fleet may be nil.
func New(fleet FleetReader) *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		operations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "operations_total",
				Help:      "Equipment operations attempted, by outcome",
			},
			[]string{"kind", "operation", "outcome"},
		),
		alerts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "manager_alerts_total",
				Help:      "Alerts raised to the fleet manager",
			},
			[]string{"outcome"},
		),
	}

	m.registry.MustRegister(m.operations, m.alerts)
	if fleet != nil {
		m.registry.MustRegister(newFleetCollector(fleet))
	}
	return m
}

// ObserveOperation counts one attempted operation.
func (m *Metrics) ObserveOperation(kind, operation, outcome string) {
	m.operations.WithLabelValues(kind, operation, outcome).Inc()
}

// ObserveAlert counts one manager alert.
func (m *Metrics) ObserveAlert(outcome string) {
	m.alerts.WithLabelValues(outcome).Inc()
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// fleetCollector reports per-kind fleet size and value when scraped.
type fleetCollector struct {
	fleet FleetReader

	records        *prometheus.Desc
	nonOperational *prometheus.Desc
	value          *prometheus.Desc
}

func newFleetCollector(fleet FleetReader) *fleetCollector {
	return &fleetCollector{
		fleet: fleet,
		records: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "fleet", "records"),
			"Registered equipment records",
			[]string{"kind"}, nil),
		nonOperational: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "fleet", "non_operational"),
			"Records currently out of service",
			[]string{"kind"}, nil),
		value: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "fleet", "value"),
			"Summed current value of the records",
			[]string{"kind"}, nil),
	}
}

func (c *fleetCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.records
	ch <- c.nonOperational
	ch <- c.value
}

type kindTotals struct {
	records, broken int
	value           float64
}

func (c *fleetCollector) Collect(ch chan<- prometheus.Metric) {
	totals := map[equipment.Kind]*kindTotals{
		equipment.KindRecord:    {},
		equipment.KindVehicle:   {},
		equipment.KindTractor:   {},
		equipment.KindImplement: {},
	}

	c.fleet.Each(func(e equipment.Equipment) {
		t, ok := totals[e.Kind()]
		if !ok {
			t = &kindTotals{}
			totals[e.Kind()] = t
		}
		r := e.Base()
		t.records++
		t.value += r.CurrentValue()
		if !r.IsOperational() {
			t.broken++
		}
	})

	for kind, t := range totals {
		ch <- prometheus.MustNewConstMetric(c.records, prometheus.GaugeValue, float64(t.records), string(kind))
		ch <- prometheus.MustNewConstMetric(c.nonOperational, prometheus.GaugeValue, float64(t.broken), string(kind))
		ch <- prometheus.MustNewConstMetric(c.value, prometheus.GaugeValue, t.value, string(kind))
	}
}
