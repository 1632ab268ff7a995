package votecount

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/notblackorwhite/vc-auto-poster/internal/domain"
)

const maxLoggedPayload = 2048

// Options carries the per-tick settings the engine needs.
type Options struct {
	Topic          int
	KeepUnresolved bool
	Match          domain.MatchOptions
}

// Engine builds snapshots and owns the previous one for continuity. It is
// driven by a single loop and is not safe for concurrent use.
type Engine struct {
	previous *domain.Snapshot
}

func NewEngine() *Engine {
	return &Engine{}
}

// Previous returns the last snapshot built, or nil.
func (e *Engine) Previous() *domain.Snapshot {
	return e.previous
}

// Reset forgets the previous snapshot.
func (e *Engine) Reset() {
	e.previous = nil
}

// Refresh fetches the payload as of postNumber and builds a snapshot from it.
// Transport and parse failures leave the engine's state untouched.
func (e *Engine) Refresh(ctx context.Context, source domain.VoteSource, postNumber int, opts Options) (*domain.Snapshot, error) {
	data, err := source.FetchVotecount(ctx, opts.Topic, postNumber)
	if err != nil {
		return nil, fmt.Errorf("fetch votecount: %w", err)
	}

	payload, err := DecodePayload(data)
	if err != nil {
		slog.ErrorContext(ctx, "Votecount data could not be parsed", "topic", opts.Topic, "post", postNumber, "payload", truncate(data), "error", err)
		return nil, err
	}

	return e.Build(ctx, payload, opts), nil
}

// Build normalizes every declaration, applies continuity against the
// previous snapshot and makes the result the new previous snapshot.
func (e *Engine) Build(ctx context.Context, payload Payload, opts Options) *domain.Snapshot {
	if payload.Malformed > 0 {
		slog.WarnContext(ctx, "Skipped malformed votecount entries", "count", payload.Malformed)
	}

	b := domain.NewSnapshotBuilder()
	for _, decl := range payload.Declarations {
		voter := NormalizeName(decl.Voter, payload.Roster, opts.Match)
		if !voter.Resolved() {
			slog.WarnContext(ctx, "Skipping voter: name could not be normalized", "voter", decl.Voter, "reason", voter.Outcome.String(), "candidates", voter.Candidates)
			b.Drop(decl.Voter)
			continue
		}

		target, match := NormalizeTarget(decl.Target, payload.Roster, opts.KeepUnresolved, opts.Match)
		if target.Kind != domain.TargetPlayer && decl.Target != domain.NoVote {
			slog.WarnContext(ctx, "Vote target could not be normalized", "voter", voter.Name, "target", decl.Target, "reason", match.Outcome.String(), "kept", opts.KeepUnresolved)
		}

		r := domain.Record{Voter: voter.Name, Target: target}
		if decl.Post != nil {
			r.Source = &domain.PostRef{Topic: opts.Topic, Post: *decl.Post}
		} else {
			r.Source = e.carriedSource(r)
		}

		if b.Add(r) {
			slog.WarnContext(ctx, "Duplicate vote declaration, keeping the later one", "voter", voter.Name, "raw_voter", decl.Voter)
		}
	}

	snap := b.Build()
	e.previous = snap
	return snap
}

// carriedSource returns the previous post reference for r's voter when the
// vote text is unchanged and the previous record had one. A target moving
// on or off the roster still counts as the same vote.
func (e *Engine) carriedSource(r domain.Record) *domain.PostRef {
	prev, ok := e.previous.Record(r.Voter)
	if !ok || prev.Target.Label() != r.Target.Label() || prev.Source == nil {
		return nil
	}
	ref := *prev.Source
	return &ref
}

func truncate(data []byte) string {
	if len(data) <= maxLoggedPayload {
		return string(data)
	}
	return string(data[:maxLoggedPayload]) + "..."
}
