package analytics

import (
	"context"
	"net/http"

	"github.com/carekiosk/kiosk/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// LogEmitter writes each event as a structured log record.
type LogEmitter struct{}

func (LogEmitter) Emit(_ context.Context, event Event, p Payload) {
	log.WithFields(map[string]any{
		"event":         string(event),
		"assetId":       p.AssetID,
		"sessionId":     p.SessionID,
		"platform":      p.Platform,
		"positionMs":    p.PositionMs,
		"durationMs":    p.DurationMs,
		"volumePercent": p.VolumePercent,
	}).Info("playback event")
}

// Counters. Session and asset ids stay out of the labels to keep cardinality bounded.
var (
	PlaybackEventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "kiosk_playback_events_total",
		Help: "Total number of playback events, by event and platform.",
	}, []string{"event", "platform"})

	PositionSecondsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "kiosk_playback_position_seconds_total",
		Help: "Sum of playback positions reported with completion and pause events, by platform.",
	}, []string{"platform"})
)

// MetricsEmitter counts events in the Prometheus registry.
type MetricsEmitter struct{}

func (MetricsEmitter) Emit(_ context.Context, event Event, p Payload) {
	PlaybackEventsTotal.WithLabelValues(string(event), p.Platform).Inc()
	if event == PlaybackPaused || event == PlaybackCompleted {
		PositionSecondsTotal.WithLabelValues(p.Platform).Add(float64(p.PositionMs) / 1000)
	}
}

// Handler exposes the registry for scraping.
func Handler() http.Handler {
	return promhttp.Handler()
}
