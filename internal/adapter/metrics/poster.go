package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/notblackorwhite/vc-auto-poster/internal/domain"
)

// PosterMetrics records the outcome of every loop tick.
type PosterMetrics struct {
	Ticks             *prometheus.CounterVec
	Suppressions      *prometheus.CounterVec
	PublishAttempts   prometheus.Counter
	TickDuration      prometheus.Histogram
	Records           *prometheus.GaugeVec
	DroppedVoters     prometheus.Counter
	LastPublishedPost prometheus.Gauge
}

// NewPosterMetrics creates and registers poster metrics on the given registry.
func NewPosterMetrics(reg prometheus.Registerer) *PosterMetrics {
	m := &PosterMetrics{
		Ticks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ticks_total",
			Help:      "Total number of loop ticks, by outcome.",
		}, []string{"outcome"}),
		Suppressions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "suppressed_total",
			Help:      "Total number of suppressed ticks, by rule.",
		}, []string{"reason"}),
		PublishAttempts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "publish_attempts_total",
			Help:      "Total number of post creation attempts, retries included.",
		}),
		TickDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "tick_duration_seconds",
			Help:      "Duration of a loop tick in seconds.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}),
		Records: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "votecount_records",
			Help:      "Records in the last built votecount, by partition.",
		}, []string{"partition"}),
		DroppedVoters: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dropped_voters_total",
			Help:      "Total number of declarations dropped because the voter could not be matched.",
		}),
		LastPublishedPost: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_published_post",
			Help:      "Post number of the last published votecount.",
		}),
	}

	reg.MustRegister(m.Ticks, m.Suppressions, m.PublishAttempts, m.TickDuration, m.Records, m.DroppedVoters, m.LastPublishedPost)
	return m
}

func (m *PosterMetrics) TickCompleted(outcome domain.TickOutcome, took time.Duration) {
	m.Ticks.WithLabelValues(string(outcome)).Inc()
	m.TickDuration.Observe(took.Seconds())
}

func (m *PosterMetrics) Suppressed(reason domain.SuppressReason) {
	m.Suppressions.WithLabelValues(string(reason)).Inc()
}

func (m *PosterMetrics) PublishAttempted() {
	m.PublishAttempts.Inc()
}

func (m *PosterMetrics) SnapshotBuilt(s *domain.Snapshot) {
	voted, notVoting, unresolved := s.Counts()
	m.Records.WithLabelValues("voted").Set(float64(voted))
	m.Records.WithLabelValues("not_voting").Set(float64(notVoting))
	m.Records.WithLabelValues("unresolved").Set(float64(unresolved))
	m.DroppedVoters.Add(float64(len(s.Dropped())))
}

func (m *PosterMetrics) Published(post int) {
	m.LastPublishedPost.Set(float64(post))
}
