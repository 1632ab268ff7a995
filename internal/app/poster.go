package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/notblackorwhite/vc-auto-poster/internal/domain"
	apperrors "github.com/notblackorwhite/vc-auto-poster/internal/errors"
	"github.com/notblackorwhite/vc-auto-poster/internal/platform/retry"
	"github.com/notblackorwhite/vc-auto-poster/internal/render"
	"github.com/notblackorwhite/vc-auto-poster/internal/votecount"
)

const (
	publishAttempts         = 3
	publishBackoff          = 2 * time.Second
	publishRateLimitBackoff = 30 * time.Second
	publishMaxBackoff       = time.Minute
)

// ForumFactory builds a forum client for an endpoint.
type ForumFactory func(domain.Endpoint) (domain.Forum, error)

// Poster runs one tick at a time: read the topic, decide on suppression,
// build and render the votecount and publish it. It is owned by a single
// loop and is not safe for concurrent use.
type Poster struct {
	newForum ForumFactory
	engine   *votecount.Engine
	recorder Recorder
	clock    clockwork.Clock

	publishPolicy retry.Policy

	settings        domain.Settings
	forum           domain.Forum
	lastPublishedAt int
}

// NewPoster creates a poster. recorder may be nil.
func NewPoster(newForum ForumFactory, recorder Recorder, clock clockwork.Clock) *Poster {
	if recorder == nil {
		recorder = nopRecorder{}
	}
	p := &Poster{
		newForum: newForum,
		engine:   votecount.NewEngine(),
		recorder: recorder,
		clock:    clock,
	}
	p.publishPolicy = retry.Policy{
		MaxAttempts:      publishAttempts,
		InitialBackoff:   publishBackoff,
		RateLimitBackoff: publishRateLimitBackoff,
		MaxBackoff:       publishMaxBackoff,
		Clock:            clock,
		OnAttempt: func(int) {
			p.recorder.PublishAttempted()
		},
	}
	return p
}

// Apply installs settings for the following ticks. The forum client is
// rebuilt when the endpoint changes and the publish marker is reset when the
// topic changes. On error the previous settings stay in effect.
func (p *Poster) Apply(ctx context.Context, s domain.Settings) error {
	if p.forum == nil || s.Endpoint != p.settings.Endpoint {
		forum, err := p.newForum(s.Endpoint)
		if err != nil {
			return fmt.Errorf("create forum client: %w", err)
		}
		if p.forum != nil {
			slog.InfoContext(ctx, "Forum endpoint changed, client rebuilt", "url", s.Endpoint.URL, "api_username", s.Endpoint.APIUsername)
		}
		p.forum = forum
	}

	if p.settings.Topic != 0 && s.Topic != p.settings.Topic {
		slog.InfoContext(ctx, "Topic changed", "from", p.settings.Topic, "to", s.Topic)
		p.lastPublishedAt = 0
	}

	p.settings = s
	return nil
}

// Settings returns the settings currently in effect.
func (p *Poster) Settings() domain.Settings {
	return p.settings
}

// LastPublishedAt is the post number of the last successful publish in the
// current topic, or 0.
func (p *Poster) LastPublishedAt() int {
	return p.lastPublishedAt
}

// Tick runs one publication attempt. Every failure ends the tick with a
// logged outcome; none of them is returned to the caller.
func (p *Poster) Tick(ctx context.Context) domain.TickOutcome {
	start := p.clock.Now()
	outcome := p.tick(ctx)
	p.recorder.TickCompleted(outcome, p.clock.Since(start))
	return outcome
}

func (p *Poster) tick(ctx context.Context) domain.TickOutcome {
	if p.forum == nil {
		slog.ErrorContext(ctx, "Poster has no settings applied")
		return domain.OutcomeTopicFailed
	}

	s := p.settings
	slog.InfoContext(ctx, "Attempting to post new votecount", "topic", s.Topic)

	topic, err := p.forum.GetTopic(ctx, s.Topic)
	if err != nil {
		slog.ErrorContext(ctx, "Could not read topic", append([]any{"topic", s.Topic, "error", err}, apperrors.AsStructuredError(err).LogAttrs()...)...)
		return domain.OutcomeTopicFailed
	}

	if reason := p.suppression(ctx, topic); reason != domain.SuppressNone {
		p.recorder.Suppressed(reason)
		return domain.OutcomeSuppressed
	}

	snap, err := p.engine.Refresh(ctx, p.forum, topic.HighestPostNumber, p.engineOptions())
	if err != nil {
		slog.ErrorContext(ctx, "Could not build votecount", "topic", s.Topic, "post", topic.HighestPostNumber, "error", err)
		return domain.OutcomeBuildFailed
	}
	p.recorder.SnapshotBuilt(snap)

	body := render.Post(snap, topic, p.postOptions())

	post, err := retry.Do(ctx, p.publishPolicy, classifyPublishError, func(ctx context.Context) (int, error) {
		return p.forum.CreatePost(ctx, s.Topic, body)
	})
	if err != nil {
		var exhausted *retry.ExhaustedError
		if errors.As(err, &exhausted) {
			slog.WarnContext(ctx, "Votecount could not be posted, skipping", "topic", s.Topic, "attempts", exhausted.Attempts, "error", exhausted.Err)
			return domain.OutcomePublishExhausted
		}
		slog.ErrorContext(ctx, "Votecount was not posted", "topic", s.Topic, "error", err)
		return domain.OutcomePublishFailed
	}

	p.lastPublishedAt = post
	p.recorder.Published(post)
	slog.InfoContext(ctx, "Votecount posted", "topic", s.Topic, "post", post)
	return domain.OutcomePublished
}

// Preview builds the post body for the current topic state without
// publishing it and without applying suppression rules.
func (p *Poster) Preview(ctx context.Context) (string, error) {
	if p.forum == nil {
		return "", apperrors.InternalError("poster has no settings applied", nil)
	}

	topic, err := p.forum.GetTopic(ctx, p.settings.Topic)
	if err != nil {
		return "", fmt.Errorf("read topic: %w", err)
	}

	snap, err := p.engine.Refresh(ctx, p.forum, topic.HighestPostNumber, p.engineOptions())
	if err != nil {
		return "", fmt.Errorf("build votecount: %w", err)
	}

	return render.Post(snap, topic, p.postOptions()), nil
}

// suppression checks the skip rules in order: closed topic, too few posts
// since the last publish, suppression tags.
func (p *Poster) suppression(ctx context.Context, topic domain.Topic) domain.SuppressReason {
	s := p.settings

	if topic.Closed {
		slog.InfoContext(ctx, "Topic is closed, skipping", "topic", topic.ID)
		return domain.SuppressClosed
	}

	if since := topic.HighestPostNumber - p.lastPublishedAt; since < s.MinPostsBetween {
		slog.InfoContext(ctx, "Not enough posts since last votecount, skipping",
			"min_posts", s.MinPostsBetween,
			"highest_post", topic.HighestPostNumber,
			"posts_since", since,
			"waiting_until", p.lastPublishedAt+s.MinPostsBetween)
		return domain.SuppressMinPosts
	}

	if tags := s.SuppressedBy(topic.Tags); len(tags) > 0 {
		slog.InfoContext(ctx, "Output suppressed by topic tags, skipping", "tags", strings.Join(tags, ", "))
		return domain.SuppressTagged
	}

	return domain.SuppressNone
}

func (p *Poster) engineOptions() votecount.Options {
	return votecount.Options{
		Topic:          p.settings.Topic,
		KeepUnresolved: p.settings.KeepUnresolved,
		Match:          p.settings.Match,
	}
}

func (p *Poster) postOptions() render.PostOptions {
	return render.PostOptions{
		Pretty:   p.settings.Pretty,
		Links:    p.settings.Links,
		BaseURL:  p.settings.Endpoint.URL,
		GameName: p.settings.GameName,
	}
}

func classifyPublishError(err error) retry.Action {
	switch apperrors.TypeOf(err) {
	case apperrors.TypeRateLimited:
		return retry.After
	case apperrors.TypeTransport, apperrors.TypeIncomplete:
		return retry.Retry
	default:
		return retry.Stop
	}
}
