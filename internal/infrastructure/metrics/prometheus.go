// Package metrics expone contadores del ledger de stock y de la máquina de estados clínica en formato Prometheus.
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jhoicas/hospital-api/internal/application/clinical"
	"github.com/jhoicas/hospital-api/internal/application/pharmacy"
)

var (
	_ pharmacy.Recorder = (*Prometheus)(nil)
	_ clinical.Recorder = (*Prometheus)(nil)
)

// Prometheus registra métricas en un registry propio (no el global) para poder crear varias instancias en tests.
type Prometheus struct {
	registry *prometheus.Registry

	stockUnits     *prometheus.CounterVec
	insufficient   prometheus.Counter
	transitions    *prometheus.CounterVec
	alerts         *prometheus.CounterVec
	patientStatus  *prometheus.CounterVec
	httpRequests   *prometheus.CounterVec
	httpDurationMs *prometheus.HistogramVec
}

// New crea el registry con las métricas de la aplicación y las del runtime de Go.
func New(namespace string) *Prometheus {
	reg := prometheus.NewRegistry()
	p := &Prometheus{
		registry: reg,
		stockUnits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stock_units_total",
			Help:      "Unidades movidas por el ledger de stock, por dirección (reserve|release).",
		}, []string{"direction"}),
		insufficient: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stock_insufficient_total",
			Help:      "Operaciones rechazadas por stock insuficiente.",
		}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "drug_transaction_transitions_total",
			Help:      "Transacciones de medicamentos que entraron en cada estado.",
		}, []string{"status"}),
		alerts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "alerts_total",
			Help:      "Alertas emitidas por categoría y resultado (created|duplicate|failed).",
		}, []string{"category", "result"}),
		patientStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "patient_status_writes_total",
			Help:      "Escrituras del status derivado del paciente.",
		}, []string{"status"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Peticiones HTTP por método, ruta y código.",
		}, []string{"method", "route", "code"}),
		httpDurationMs: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_ms",
			Help:      "Duración de las peticiones HTTP en milisegundos.",
			Buckets:   []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500},
		}, []string{"method", "route"}),
	}
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		p.stockUnits, p.insufficient, p.transitions, p.alerts, p.patientStatus,
		p.httpRequests, p.httpDurationMs,
	)
	return p
}

// Handler sirve el formato de exposición de Prometheus.
func (p *Prometheus) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{Registry: p.registry})
}

// Registry para tests.
func (p *Prometheus) Registry() *prometheus.Registry { return p.registry }

func (p *Prometheus) StockReserved(units int) {
	p.stockUnits.WithLabelValues("reserve").Add(float64(units))
}

func (p *Prometheus) StockReleased(units int) {
	p.stockUnits.WithLabelValues("release").Add(float64(units))
}

func (p *Prometheus) InsufficientStock() { p.insufficient.Inc() }

func (p *Prometheus) TransactionTransition(status string) {
	p.transitions.WithLabelValues(status).Inc()
}

func (p *Prometheus) AlertEmitted(category string, created bool) {
	result := "duplicate"
	if created {
		result = "created"
	}
	p.alerts.WithLabelValues(category, result).Inc()
}

func (p *Prometheus) AlertFailed(category string) {
	p.alerts.WithLabelValues(category, "failed").Inc()
}

func (p *Prometheus) PatientStatusWritten(status string) {
	p.patientStatus.WithLabelValues(status).Inc()
}

// ObserveHTTP lo llama el middleware de request log.
func (p *Prometheus) ObserveHTTP(method, route string, code int, durationMs float64) {
	p.httpRequests.WithLabelValues(method, route, strconv.Itoa(code)).Inc()
	p.httpDurationMs.WithLabelValues(method, route).Observe(durationMs)
}
