// Package monitoring provides the structured logger and the statistics sink
// used by merge sessions.
//
// Logger wraps log/slog and tags entries with a component and an event type.
// Stats has a no-op implementation and a prometheus backed one:
//
//	stats, err := monitoring.NewPrometheusStats(prometheus.DefaultRegisterer)
//	if err != nil {
//		return err
//	}
//	s, err := merger.New(parts, merger.WithStats(stats))
package monitoring
