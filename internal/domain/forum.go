package domain

import (
	"context"
	"strconv"
	"strings"
)

// Topic is the subset of forum topic metadata the poster needs.
type Topic struct {
	ID                int
	HighestPostNumber int
	Tags              []string
	Closed            bool
}

// Day extracts N from the first "day-N" tag with a numeric N.
func (t Topic) Day() (int, bool) {
	for _, tag := range t.Tags {
		rest, ok := strings.CutPrefix(tag, "day-")
		if !ok {
			continue
		}
		if day, err := strconv.Atoi(rest); err == nil && day >= 0 {
			return day, true
		}
	}
	return 0, false
}

// Endpoint identifies the forum and the account the poster acts as.
type Endpoint struct {
	URL         string
	APIUsername string
	APIKey      string
}

// TopicReader reads topic metadata.
type TopicReader interface {
	GetTopic(ctx context.Context, topicID int) (Topic, error)
}

// PostWriter creates a post and returns its post number within the topic.
type PostWriter interface {
	CreatePost(ctx context.Context, topicID int, body string) (int, error)
}

// VoteSource returns the raw votecount plugin payload as of a post.
type VoteSource interface {
	FetchVotecount(ctx context.Context, topicID, postNumber int) ([]byte, error)
}

// Forum is everything the poster needs from the forum platform.
type Forum interface {
	TopicReader
	PostWriter
	VoteSource
}
