package httpadapter

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/kirillkom/crime-report-analyzer/internal/config"
	"github.com/kirillkom/crime-report-analyzer/internal/core/ports"
	"github.com/kirillkom/crime-report-analyzer/internal/observability/metrics"
)

const backpressureWait = 250 * time.Millisecond

// HealthFunc contributes component states to /healthz.
type HealthFunc func() map[string]string

type Router struct {
	cfg config.Config

	reports   ports.ReportIngestor
	processor ports.ReportProcessor
	predictor ports.CategoryPredictor
	exports   ports.ReportExportService

	metrics        *metrics.HTTPServerMetrics
	metricsHandler http.Handler
	health         HealthFunc
}

func NewRouter(
	cfg config.Config,
	reports ports.ReportIngestor,
	processor ports.ReportProcessor,
	predictor ports.CategoryPredictor,
	exports ports.ReportExportService,
) *Router {
	return &Router{
		cfg:       cfg,
		reports:   reports,
		processor: processor,
		predictor: predictor,
		exports:   exports,
	}
}

// WithMetrics instruments every request and serves the registry on /metrics.
func (rt *Router) WithMetrics(m *metrics.HTTPServerMetrics, handler http.Handler) *Router {
	rt.metrics = m
	rt.metricsHandler = handler
	return rt
}

func (rt *Router) WithHealth(fn HealthFunc) *Router {
	rt.health = fn
	return rt
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", rt.healthz)
	mux.HandleFunc("/v1/reports", rt.reportsCollection)
	mux.HandleFunc("/v1/reports/export.csv", rt.exportReports("csv", "crime_reports.csv"))
	mux.HandleFunc("/v1/reports/export.xlsx", rt.exportReports("xlsx", "crime_reports.xlsx"))
	mux.HandleFunc("/v1/reports/points", rt.reportPoints)
	mux.HandleFunc("/v1/extract", rt.extractText)
	mux.HandleFunc("/v1/classifier", rt.classifierStatus)
	mux.HandleFunc("/v1/classifier/predict", rt.predictCategory)
	if rt.metricsHandler != nil {
		mux.Handle("/metrics", rt.metricsHandler)
	}

	var handler http.Handler = mux
	handler = backpressureMiddleware(handler, rt.cfg.APIMaxInFlight, backpressureWait)
	handler = rateLimitMiddleware(handler, rt.cfg.APIRateLimitRPS, rt.cfg.APIRateLimitBurst)
	if rt.metrics != nil {
		handler = rt.metrics.Middleware(handler)
	}
	handler = accessLogMiddleware(handler)
	return requestIDMiddleware(handler)
}

func (rt *Router) healthz(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	resp := map[string]string{"status": "ok"}
	if rt.predictor != nil {
		resp["classifier"] = string(rt.predictor.Status().State)
	}
	if rt.health != nil {
		for k, v := range rt.health() {
			resp[k] = v
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func methodNotAllowed(w http.ResponseWriter) {
	writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
}
