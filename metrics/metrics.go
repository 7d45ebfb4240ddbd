// Package metrics exports the wall runtime as prometheus metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/videowall/videowall/wall"
)

var states = []wall.ReadyState{
	wall.Creating, wall.Ready, wall.Playing, wall.Ended, wall.Stalled, wall.Errored, wall.Destroyed,
}

// Metrics holds the collectors fed by runtime notifications.
type Metrics struct {
	sessions      prometheus.Counter
	ended         prometheus.Counter
	failures      *prometheus.CounterVec
	actions       *prometheus.CounterVec
	recreations   *prometheus.CounterVec
	checks        *prometheus.CounterVec
	state         *prometheus.GaugeVec
	consecutive   prometheus.Gauge
	sinceRecreate prometheus.Gauge
	index         prometheus.Gauge
	position      prometheus.Gauge
}

// New registers the collectors with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		sessions: factory.NewCounter(prometheus.CounterOpts{
			Name: "videowall_sessions_created_total",
			Help: "Total number of embed sessions created",
		}),
		ended: factory.NewCounter(prometheus.CounterOpts{
			Name: "videowall_videos_ended_total",
			Help: "Total number of videos played to the end",
		}),
		failures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "videowall_failures_total",
			Help: "Total number of playback failures by kind",
		}, []string{"kind"}),
		actions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "videowall_failure_actions_total",
			Help: "Total number of policy decisions by action (retry, skip)",
		}, []string{"action"}),
		recreations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "videowall_recreations_total",
			Help: "Total number of embed backend recreations by reason",
		}, []string{"reason"}),
		checks: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "videowall_watchdog_checks_total",
			Help: "Total number of watchdog samples by verdict",
		}, []string{"verdict"}),
		state: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "videowall_session_state",
			Help: "Current session state (active state=1, others 0)",
		}, []string{"state"}),
		consecutive: factory.NewGauge(prometheus.GaugeOpts{
			Name: "videowall_consecutive_failures",
			Help: "Failures since the last successful start of playback",
		}),
		sinceRecreate: factory.NewGauge(prometheus.GaugeOpts{
			Name: "videowall_videos_since_recreate",
			Help: "Video switches since the embed backend was last recreated",
		}),
		index: factory.NewGauge(prometheus.GaugeOpts{
			Name: "videowall_current_video_index",
			Help: "Playlist index of the current video",
		}),
		position: factory.NewGauge(prometheus.GaugeOpts{
			Name: "videowall_playback_position_seconds",
			Help: "Playback position of the current video at the last sample",
		}),
	}
}

// Observe is a wall.Observer.
func (m *Metrics) Observe(n wall.Notification) {
	switch n.Kind {
	case wall.EventCreated:
		m.sessions.Inc()
	case wall.EventEnded:
		m.ended.Inc()
	case wall.EventFailure:
		if n.Failure != nil {
			m.failures.WithLabelValues(n.Failure.Kind.String()).Inc()
		}
		m.actions.WithLabelValues(n.Action.String()).Inc()
	case wall.EventRecreated:
		m.recreations.WithLabelValues(n.Reason.String()).Inc()
	case wall.EventChecked:
		m.checks.WithLabelValues(n.Verdict.String()).Inc()
	}

	m.update(n.Snapshot)
}

func (m *Metrics) update(s wall.Snapshot) {
	for _, state := range states {
		value := 0.0
		if state == s.State {
			value = 1.0
		}
		m.state.WithLabelValues(state.String()).Set(value)
	}

	m.consecutive.Set(float64(s.ConsecutiveFailures))
	m.sinceRecreate.Set(float64(s.VideoCount))
	m.index.Set(float64(s.CurrentVideoIndex))
	m.position.Set(s.Player.CurrentTime)
}
