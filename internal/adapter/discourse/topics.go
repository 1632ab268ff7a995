package discourse

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/notblackorwhite/vc-auto-poster/internal/domain"
	apperrors "github.com/notblackorwhite/vc-auto-poster/internal/errors"
)

type topicResponse struct {
	ID                int   `json:"id"`
	HighestPostNumber *int  `json:"highest_post_number"`
	Closed            *bool `json:"closed"`
	Tags              []tag `json:"tags"`
}

// tag accepts both tag encodings Discourse uses: a bare string or an object
// with a name.
type tag string

func (t *tag) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err == nil {
		*t = tag(name)
		return nil
	}

	var obj struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("tag is neither a string nor an object: %w", err)
	}
	*t = tag(obj.Name)
	return nil
}

// GetTopic reads topic metadata. A missing closed flag is treated as closed;
// a missing highest post number is an error.
func (c *Client) GetTopic(ctx context.Context, topicID int) (domain.Topic, error) {
	data, err := c.do(ctx, "topic", http.MethodGet, fmt.Sprintf("/t/%d.json", topicID), nil)
	if err != nil {
		return domain.Topic{}, err
	}

	var resp topicResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return domain.Topic{}, apperrors.ParseError("failed to decode topic", err).WithContext("topic", topicID)
	}

	if resp.HighestPostNumber == nil {
		return domain.Topic{}, apperrors.IncompleteError("topic has no highest_post_number").WithContext("topic", topicID)
	}

	closed := true
	if resp.Closed != nil {
		closed = *resp.Closed
	} else {
		slog.WarnContext(ctx, "Topic has no closed flag, assuming closed", "topic", topicID)
	}

	tags := make([]string, 0, len(resp.Tags))
	for _, t := range resp.Tags {
		if t != "" {
			tags = append(tags, string(t))
		}
	}

	return domain.Topic{
		ID:                topicID,
		HighestPostNumber: *resp.HighestPostNumber,
		Tags:              tags,
		Closed:            closed,
	}, nil
}
