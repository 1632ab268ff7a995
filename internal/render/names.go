package render

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/notblackorwhite/vc-auto-poster/internal/domain"
)

// Options control how voter names are written.
type Options struct {
	// Links decorates names that have a source post as bold links.
	Links bool
	// BaseURL is the forum root used to build links.
	BaseURL string
	// Topic is used for a source post that carries no topic.
	Topic int
}

// VoterName renders the voter of r, as a link when enabled and r has a post.
func VoterName(r domain.Record, opts Options) string {
	if !opts.Links || r.Source == nil {
		return r.Voter
	}

	topic := r.Source.Topic
	if topic == 0 {
		slog.Warn("Voter has a post but no topic, using the configured topic", "voter", r.Voter, "post", r.Source.Post, "topic", opts.Topic)
		topic = opts.Topic
	}

	return fmt.Sprintf("**[%s](%s/t/%d/%d)**", r.Voter, strings.TrimRight(opts.BaseURL, "/"), topic, r.Source.Post)
}

func voterNames(records []domain.Record, opts Options) []string {
	out := make([]string, 0, len(records))
	for _, r := range records {
		out = append(out, VoterName(r, opts))
	}
	return out
}
