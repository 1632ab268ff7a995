// Package discourse talks to a Discourse forum: topic metadata, post
// creation and the votecount plugin endpoint.
package discourse
