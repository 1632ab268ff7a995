package discourse

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	apperrors "github.com/notblackorwhite/vc-auto-poster/internal/errors"
)

type createPostRequest struct {
	TopicID int    `json:"topic_id"`
	Raw     string `json:"raw"`
}

type createPostResponse struct {
	PostNumber *int `json:"post_number"`
}

// CreatePost replies to a topic and returns the new post number.
func (c *Client) CreatePost(ctx context.Context, topicID int, body string) (int, error) {
	payload, err := json.Marshal(createPostRequest{TopicID: topicID, Raw: body})
	if err != nil {
		return 0, apperrors.InternalError("failed to encode post", err)
	}

	data, err := c.do(ctx, "create_post", http.MethodPost, "/posts.json", payload)
	if err != nil {
		return 0, err
	}

	var resp createPostResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return 0, apperrors.ParseError("failed to decode created post", err).WithContext("topic", topicID)
	}
	if resp.PostNumber == nil {
		return 0, apperrors.IncompleteError("created post has no post_number").WithContext("topic", topicID)
	}

	return *resp.PostNumber, nil
}

// FetchVotecount returns the votecount plugin payload for the topic as of
// postNumber. The body is returned undecoded.
func (c *Client) FetchVotecount(ctx context.Context, topicID, postNumber int) ([]byte, error) {
	return c.do(ctx, "votecount", http.MethodGet, fmt.Sprintf("/votecount/%d/%d.json", topicID, postNumber), nil)
}
