package orders

import "github.com/prometheus/client_golang/prometheus"

const (
	resultOK    = "ok"
	resultError = "error"
)

// StoreMetrics is optional; a nil *StoreMetrics records nothing.
type StoreMetrics struct {
	Stored         prometheus.Gauge
	SnapshotWrites *prometheus.CounterVec
}

func NewStoreMetrics(reg prometheus.Registerer) *StoreMetrics {
	m := &StoreMetrics{
		Stored: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "orders_stored",
			Help: "Orders currently held by the store",
		}),
		SnapshotWrites: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "orders_snapshot_writes_total",
				Help: "Full snapshot writes of the order data file",
			},
			[]string{"result"},
		),
	}

	reg.MustRegister(m.Stored, m.SnapshotWrites)
	return m
}

func (m *StoreMetrics) setStored(n int) {
	if m == nil {
		return
	}
	m.Stored.Set(float64(n))
}

func (m *StoreMetrics) snapshotWritten(ok bool) {
	if m == nil {
		return
	}
	result := resultOK
	if !ok {
		result = resultError
	}
	m.SnapshotWrites.WithLabelValues(result).Inc()
}
