package domain

// TickOutcome summarizes how one loop tick ended.
type TickOutcome string

const (
	OutcomePublished        TickOutcome = "published"
	OutcomeSuppressed       TickOutcome = "suppressed"
	OutcomeTopicFailed      TickOutcome = "topic_failed"
	OutcomeBuildFailed      TickOutcome = "build_failed"
	OutcomePublishFailed    TickOutcome = "publish_failed"
	OutcomePublishExhausted TickOutcome = "publish_exhausted"
)

// Succeeded reports whether the tick ended without a failure. Suppression
// is not a failure.
func (o TickOutcome) Succeeded() bool {
	return o == OutcomePublished || o == OutcomeSuppressed
}

// SuppressReason names the rule that skipped a tick.
type SuppressReason string

const (
	SuppressNone     SuppressReason = ""
	SuppressClosed   SuppressReason = "closed"
	SuppressMinPosts SuppressReason = "min_posts"
	SuppressTagged   SuppressReason = "tagged"
)
