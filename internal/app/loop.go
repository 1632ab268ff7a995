package app

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/notblackorwhite/vc-auto-poster/internal/domain"
	"github.com/notblackorwhite/vc-auto-poster/internal/platform/correlation"
)

// staleAfterIntervals is how many intervals may pass without a completed
// tick before the loop reports itself unhealthy.
const staleAfterIntervals = 3

// Loop is the publication control loop. It owns the next fire time, reloads
// settings at the start of every tick and runs ticks strictly one at a time.
type Loop struct {
	settings domain.SettingsSource
	poster   *Poster
	clock    clockwork.Clock

	mu          sync.Mutex
	interval    time.Duration
	firstFire   time.Time
	lastTick    time.Time
	lastOutcome domain.TickOutcome
}

func NewLoop(settings domain.SettingsSource, poster *Poster, clock clockwork.Clock) *Loop {
	return &Loop{
		settings: settings,
		poster:   poster,
		clock:    clock,
	}
}

// Run blocks until ctx is cancelled. Only a failure to load the initial
// settings is returned; failures inside ticks are logged.
func (l *Loop) Run(ctx context.Context) error {
	current, err := l.settings.Load(ctx)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}
	if err := l.poster.Apply(ctx, current); err != nil {
		return fmt.Errorf("apply settings: %w", err)
	}

	interval := current.Interval
	delay := interval
	if current.AutoAlign {
		if aligned, ok := alignedDelay(l.clock.Now(), interval); ok {
			slog.InfoContext(ctx, "Auto-align enabled, changing initial delay", "interval", interval, "initial_delay", aligned)
			delay = aligned
		}
	}

	next := l.clock.Now().Add(delay)
	l.started(interval, next)
	slog.InfoContext(ctx, "Votecount poster started", "interval", interval, "topic", current.Topic, "first_tick", next)

	for tick := uint64(1); ; tick++ {
		timer := l.clock.NewTimer(next.Sub(l.clock.Now()))
		select {
		case <-ctx.Done():
			timer.Stop()
			slog.InfoContext(ctx, "Votecount poster stopped")
			return nil
		case <-timer.Chan():
		}

		tickCtx := correlation.StartTick(ctx, tick)

		settings := l.reload(tickCtx, current)
		if err := l.poster.Apply(tickCtx, settings); err != nil {
			slog.ErrorContext(tickCtx, "Could not apply settings, keeping previous", "error", err)
		} else {
			current = settings
		}
		if current.Interval != interval {
			slog.InfoContext(tickCtx, "Interval updated", "from", interval, "to", current.Interval)
			interval = current.Interval
		}
		next = l.clock.Now().Add(interval)

		outcome := l.poster.Tick(tickCtx)
		l.completed(interval, outcome)
	}
}

// reload reads the settings for this tick. On failure the previous settings
// are kept.
func (l *Loop) reload(ctx context.Context, prev domain.Settings) domain.Settings {
	s, err := l.settings.Load(ctx)
	if err != nil {
		slog.WarnContext(ctx, "Could not reload settings, keeping previous", "error", err)
		return prev
	}
	if changed := s.Changes(prev); len(changed) > 0 {
		slog.InfoContext(ctx, "Settings changed", "fields", changed)
	}
	return s
}

func (l *Loop) started(interval time.Duration, firstFire time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.interval = interval
	l.firstFire = firstFire
}

func (l *Loop) completed(interval time.Duration, outcome domain.TickOutcome) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.interval = interval
	l.lastTick = l.clock.Now()
	l.lastOutcome = outcome
}

// LastTick returns when the last tick completed and how it ended.
func (l *Loop) LastTick() (time.Time, domain.TickOutcome) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.lastTick, l.lastOutcome
}

// Check reports an error when the loop has not started or no tick has
// completed for several intervals.
func (l *Loop) Check(_ context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.firstFire.IsZero() {
		return fmt.Errorf("loop not started")
	}

	since := l.firstFire
	if l.lastTick.After(since) {
		since = l.lastTick
	}
	if stale := l.clock.Since(since); stale > staleAfterIntervals*l.interval {
		return fmt.Errorf("no tick completed for %s", stale.Round(time.Second))
	}
	return nil
}

// alignedDelay returns the delay until the next wall-clock multiple of
// interval. It applies only to whole-minute intervals above one minute that
// divide an hour.
func alignedDelay(now time.Time, interval time.Duration) (time.Duration, bool) {
	if interval%time.Minute != 0 {
		return 0, false
	}
	minutes := int(interval / time.Minute)
	if minutes <= 1 || 60%minutes != 0 {
		return 0, false
	}

	into := time.Duration(now.Minute()%minutes)*time.Minute +
		time.Duration(now.Second())*time.Second +
		time.Duration(now.Nanosecond())
	return interval - into, true
}
