package healthmonitor

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

var (
	load1Gauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "guardian_load1",
		Help: "1-minute load average from the last health check.",
	})
	memUsedPercentGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "guardian_mem_used_percent",
		Help: "Memory usage percentage from the last health check.",
	})
	issuesGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "guardian_issues",
		Help: "Number of issues the last health check diagnosed.",
	})
)

func init() {
	prometheus.MustRegister(load1Gauge)
	prometheus.MustRegister(memUsedPercentGauge)
	prometheus.MustRegister(issuesGauge)
}

// StartMetricsServer serves /metrics on addr in the background. Used only by
// watch mode, and only when an address is configured.
func StartMetricsServer(addr string, logger *zap.SugaredLogger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Infof("metrics listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Warnf("metrics server: %v", err)
		}
	}()
}

func updateGauges(snap *MetricsSnapshot, issueCount int) {
	load1Gauge.Set(snap.Load1)
	memUsedPercentGauge.Set(float64(snap.MemUsedMiB*100) / float64(snap.MemTotalMiB+1))
	issuesGauge.Set(float64(issueCount))
}
