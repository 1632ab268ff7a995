package render

import (
	"fmt"
	"strings"

	"github.com/notblackorwhite/vc-auto-poster/internal/domain"
)

const (
	titleColor   = "#9370db"
	detailsLabel = "Raw VC for the plugin"
	footer       = "[size=2]Posted automatically by vc-auto-poster. Ping the host if something looks wrong.[/size]"
)

// PostOptions configure a full post body.
type PostOptions struct {
	Pretty   bool
	Links    bool
	BaseURL  string
	GameName string
}

// Title builds the heading for a pretty post.
func Title(topic domain.Topic, gameName string) string {
	title := "Votecount"
	if day, ok := topic.Day(); ok {
		title = fmt.Sprintf("Day %d %s", day, title)
	}
	if gameName != "" {
		title = gameName + " " + title
	}
	return title
}

// Post assembles the body published to the topic. The [votecount] block is
// always present and never link-decorated so the plugin can read it back.
func Post(s *domain.Snapshot, topic domain.Topic, opts PostOptions) string {
	var lines []string

	if opts.Pretty {
		lines = append(lines,
			"[center]",
			fmt.Sprintf("# [size=5][color=%s]%s[/color][/size]", titleColor, Title(topic, opts.GameName)),
			"[/center]",
		)
		lines = append(lines, Table(s, Options{Links: opts.Links, BaseURL: opts.BaseURL, Topic: topic.ID})...)
		lines = append(lines, "", fmt.Sprintf("[details=%q]", detailsLabel))
	}

	lines = append(lines, "[votecount]")
	lines = append(lines, List(s, Options{Topic: topic.ID})...)
	lines = append(lines, "[/votecount]")

	if opts.Pretty {
		lines = append(lines, "[/details]")
	}

	lines = append(lines, "", footer)
	return strings.Join(lines, "\n")
}
