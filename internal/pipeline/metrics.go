package pipeline

import "github.com/prometheus/client_golang/prometheus"

var (
	cacheHitsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "enginectl",
		Subsystem: "pipeline",
		Name:      "cache_hits_total",
		Help:      "Runs that finished without rebuilding anything",
	})

	rebuildsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "enginectl",
		Subsystem: "pipeline",
		Name:      "rebuilds_total",
		Help:      "Runs that rebuilt at least one artifact",
	}, []string{"reason"})

	remoteHitsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "enginectl",
		Subsystem: "pipeline",
		Name:      "remote_hits_total",
		Help:      "Artifacts resolved from the remote store instead of built",
	}, []string{"kind"})

	wipesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "enginectl",
		Subsystem: "pipeline",
		Name:      "full_wipes_total",
		Help:      "Forced full wipes triggered by an engine kind switch",
	})

	failuresTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "enginectl",
		Subsystem: "pipeline",
		Name:      "failures_total",
		Help:      "Fatal pipeline failures by stage",
	}, []string{"stage"})
)

func init() {
	prometheus.MustRegister(cacheHitsTotal, rebuildsTotal, remoteHitsTotal, wipesTotal, failuresTotal)
}
