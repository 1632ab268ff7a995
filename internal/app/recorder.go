package app

import (
	"time"

	"github.com/notblackorwhite/vc-auto-poster/internal/domain"
)

// Recorder receives tick telemetry.
type Recorder interface {
	TickCompleted(outcome domain.TickOutcome, took time.Duration)
	Suppressed(reason domain.SuppressReason)
	PublishAttempted()
	SnapshotBuilt(s *domain.Snapshot)
	Published(post int)
}

type nopRecorder struct{}

func (nopRecorder) TickCompleted(domain.TickOutcome, time.Duration) {}
func (nopRecorder) Suppressed(domain.SuppressReason)                {}
func (nopRecorder) PublishAttempted()                               {}
func (nopRecorder) SnapshotBuilt(*domain.Snapshot)                  {}
func (nopRecorder) Published(int)                                   {}
