package metrics

import "github.com/prometheus/client_golang/prometheus"

// Service holds all the Prometheus metrics for the application.
// By defining them all in one place, we ensure consistency in naming and labeling.
type Service struct {
	MatchesReported    prometheus.Counter
	MatchesCorrected   prometheus.Counter
	MatchesDeleted     prometheus.Counter
	DecayRuns          prometheus.Counter
	ReportDuration     prometheus.Histogram
	SlackNotifSent     prometheus.Counter
	SlackNotifFailed   prometheus.Counter
	StartupTimeSeconds prometheus.Gauge
}
