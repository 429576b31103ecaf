package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestPrometheus_Contadores(t *testing.T) {
	p := New("hospital")

	p.StockReserved(4)
	p.StockReserved(2)
	p.StockReleased(4)
	p.InsufficientStock()
	p.TransactionTransition("COMPLETED")
	p.AlertEmitted("LAB", true)
	p.AlertEmitted("LAB", false)
	p.AlertFailed("EMERGENCY")
	p.PatientStatusWritten("RAWAT_INAP")
	p.ObserveHTTP("POST", "/api/drug-transactions", 201, 12)

	assert.Equal(t, 6.0, testutil.ToFloat64(p.stockUnits.WithLabelValues("reserve")))
	assert.Equal(t, 4.0, testutil.ToFloat64(p.stockUnits.WithLabelValues("release")))
	assert.Equal(t, 1.0, testutil.ToFloat64(p.insufficient))
	assert.Equal(t, 1.0, testutil.ToFloat64(p.transitions.WithLabelValues("COMPLETED")))
	assert.Equal(t, 1.0, testutil.ToFloat64(p.alerts.WithLabelValues("LAB", "duplicate")))
	assert.Equal(t, 1.0, testutil.ToFloat64(p.alerts.WithLabelValues("EMERGENCY", "failed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(p.httpRequests.WithLabelValues("POST", "/api/drug-transactions", "201")))

	// Instancias independientes: registries separados.
	other := New("hospital")
	assert.Equal(t, 0.0, testutil.ToFloat64(other.insufficient))
}
