package domain

import (
	"context"
	"slices"
	"time"
)

// MatchOptions control how free-text names are matched to the roster.
type MatchOptions struct {
	UniqueSubstringMatch bool
	MinSubstringLength   int
}

// Settings is one immutable reading of the game settings. A fresh value is
// loaded every tick; it is never mutated in place.
type Settings struct {
	Endpoint Endpoint
	Topic    int

	Interval        time.Duration
	MinPostsBetween int
	AutoAlign       bool
	SuppressTags    []string

	Pretty   bool
	Links    bool
	GameName string

	KeepUnresolved bool
	Match          MatchOptions
}

// SettingsSource loads the current settings.
type SettingsSource interface {
	Load(ctx context.Context) (Settings, error)
}

// Changes lists the names of the fields that differ from prev. It exists
// only to decide what to log on reload.
func (s Settings) Changes(prev Settings) []string {
	var changed []string
	add := func(name string, differs bool) {
		if differs {
			changed = append(changed, name)
		}
	}

	add("url", s.Endpoint.URL != prev.Endpoint.URL)
	add("api_username", s.Endpoint.APIUsername != prev.Endpoint.APIUsername)
	add("api_key", s.Endpoint.APIKey != prev.Endpoint.APIKey)
	add("topic", s.Topic != prev.Topic)
	add("min_delay", s.Interval != prev.Interval)
	add("min_posts", s.MinPostsBetween != prev.MinPostsBetween)
	add("auto_align", s.AutoAlign != prev.AutoAlign)
	add("suppress_tags", !slices.Equal(s.SuppressTags, prev.SuppressTags))
	add("pretty", s.Pretty != prev.Pretty)
	add("links", s.Links != prev.Links)
	add("game_name", s.GameName != prev.GameName)
	add("keep_unknown_votes", s.KeepUnresolved != prev.KeepUnresolved)
	add("unique_voter_substring_match", s.Match.UniqueSubstringMatch != prev.Match.UniqueSubstringMatch)
	add("min_voter_substring_length", s.Match.MinSubstringLength != prev.Match.MinSubstringLength)

	return changed
}

// SuppressedBy returns the configured suppression tags present in tags.
func (s Settings) SuppressedBy(tags []string) []string {
	var hits []string
	for _, tag := range tags {
		if slices.Contains(s.SuppressTags, tag) && !slices.Contains(hits, tag) {
			hits = append(hits, tag)
		}
	}
	return hits
}
