// Package metrics exposes kitchen load gauges for Prometheus scraping.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector registers and updates the kitchen gauges.
type Collector struct {
	registry *prometheus.Registry

	capacityPercentage prometheus.Gauge
	activeOrders       prometheus.Gauge
	queuedOrders       prometheus.Gauge
	overdueOrders      prometheus.Gauge
	stationCapacity    *prometheus.GaugeVec
	alertsEmitted      *prometheus.CounterVec
}

// NewCollector creates a collector with its own registry.
func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		capacityPercentage: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "kitchen_capacity_percent",
			Help: "Kitchen-wide load as a percentage of configured capacity",
		}),
		activeOrders: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "kitchen_active_orders",
			Help: "Orders currently being worked",
		}),
		queuedOrders: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "kitchen_queued_orders",
			Help: "Orders waiting to be started",
		}),
		overdueOrders: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "kitchen_overdue_orders",
			Help: "Non-terminal orders past their estimated completion",
		}),
		stationCapacity: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "kitchen_station_capacity_percent",
				Help: "Per-workstation load as a percentage of station capacity",
			},
			[]string{"workstation"},
		),
		alertsEmitted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "kitchen_capacity_alerts_total",
				Help: "Capacity threshold alerts emitted",
			},
			[]string{"severity"},
		),
	}

	c.registry.MustRegister(
		c.capacityPercentage,
		c.activeOrders,
		c.queuedOrders,
		c.overdueOrders,
		c.stationCapacity,
		c.alertsEmitted,
	)

	return c
}

// RecordKitchenLoad updates the kitchen-wide gauges.
func (c *Collector) RecordKitchenLoad(pct float64, active, queued int) {
	c.capacityPercentage.Set(pct)
	c.activeOrders.Set(float64(active))
	c.queuedOrders.Set(float64(queued))
}

// RecordOverdueCount updates the overdue gauge.
func (c *Collector) RecordOverdueCount(n int) {
	c.overdueOrders.Set(float64(n))
}

// RecordStationLoad updates one workstation's load gauge.
func (c *Collector) RecordStationLoad(name string, pct float64) {
	c.stationCapacity.WithLabelValues(name).Set(pct)
}

// RecordAlert counts one emitted capacity alert.
func (c *Collector) RecordAlert(severity string) {
	c.alertsEmitted.WithLabelValues(severity).Inc()
}

// Handler serves the registry for scraping.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
