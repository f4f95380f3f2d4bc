package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PipelineMetrics observes document processing, classification and the
// aggregated store.
type PipelineMetrics struct {
	service string

	documentsTotal   *prometheus.CounterVec
	missesTotal      *prometheus.CounterVec
	predictionsTotal *prometheus.CounterVec
	trainingDuration *prometheus.HistogramVec
	storeSize        prometheus.Gauge
}

func NewPipelineMetrics(service string, registry prometheus.Registerer) *PipelineMetrics {
	documentsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "documents_total",
			Help:      "Total documents handled by status.",
		},
		[]string{"service", "status"},
	)
	missesTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "extraction_misses_total",
			Help:      "Fields that fell back to their default value.",
		},
		[]string{"service", "field"},
	)
	predictionsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "classifier",
			Name:      "predictions_total",
			Help:      "Predicted categories.",
		},
		[]string{"service", "category"},
	)
	trainingDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "classifier",
			Name:      "training_duration_seconds",
			Help:      "Classifier training duration in seconds by status.",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120, 300},
		},
		[]string{"service", "status"},
	)
	storeSize := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "reports",
			Help:      "Number of distinct reports in the aggregation store.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)

	registry.MustRegister(documentsTotal, missesTotal, predictionsTotal, trainingDuration, storeSize)

	return &PipelineMetrics{
		service:          service,
		documentsTotal:   documentsTotal,
		missesTotal:      missesTotal,
		predictionsTotal: predictionsTotal,
		trainingDuration: trainingDuration,
		storeSize:        storeSize,
	}
}

func (m *PipelineMetrics) RecordDocument(status string) {
	if status == "" {
		status = "unknown"
	}
	m.documentsTotal.WithLabelValues(m.service, status).Inc()
}

func (m *PipelineMetrics) RecordExtractionMiss(field string) {
	m.missesTotal.WithLabelValues(m.service, field).Inc()
}

func (m *PipelineMetrics) RecordPrediction(category string) {
	m.predictionsTotal.WithLabelValues(m.service, category).Inc()
}

func (m *PipelineMetrics) RecordTraining(duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	m.trainingDuration.WithLabelValues(m.service, status).Observe(duration.Seconds())
}

func (m *PipelineMetrics) SetStoreSize(n int) {
	m.storeSize.Set(float64(n))
}
