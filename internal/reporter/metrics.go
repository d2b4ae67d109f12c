package reporter

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// newSessionGauges registers the session gauges on a private registry so
// that repeated writes never collide with the default one.
func newSessionGauges() (*prometheus.Registry, *prometheus.GaugeVec, *prometheus.GaugeVec, *prometheus.GaugeVec) {
	reg := prometheus.NewRegistry()

	duration := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "benchforge_run_duration_milliseconds",
		Help: "Wall time of the last benchmark run per target and mode",
	}, []string{"target", "mode"})

	success := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "benchforge_run_success",
		Help: "1 if the last benchmark run per target and mode exited 0",
	}, []string{"target", "mode"})

	build := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "benchforge_build_success",
		Help: "1 if the target built in the last session, 0 if its build failed",
	}, []string{"target"})

	reg.MustRegister(duration, success, build)
	return reg, duration, success, build
}

// WriteMetricsTextfile writes the session as Prometheus text exposition
// format for the node_exporter textfile collector.
func WriteMetricsTextfile(report *SessionReport, path string) error {
	reg, duration, success, build := newSessionGauges()

	for _, f := range report.BuildFailures {
		build.WithLabelValues(f.Target.ID).Set(0)
	}
	for _, id := range report.Built {
		build.WithLabelValues(id).Set(1)
	}

	for _, mr := range report.Runs {
		for _, r := range mr.Results {
			mode := string(mr.Mode)
			ok := 0.0
			if r.Success {
				ok = 1
				duration.WithLabelValues(r.TargetID, mode).Set(float64(r.ElapsedMs))
			}
			success.WithLabelValues(r.TargetID, mode).Set(ok)
		}
	}

	if err := prometheus.WriteToTextfile(path, reg); err != nil {
		return fmt.Errorf("write metrics: %w", err)
	}
	return nil
}
