package domain

import "fmt"

// NoVote is the literal the votecount plugin uses for an explicit unvote.
const NoVote = "NO_VOTE"

// TargetKind tells how a declared target resolved against the roster.
type TargetKind int

const (
	TargetPlayer     TargetKind = iota // canonical roster name
	TargetNoVote                       // explicit or coerced "no vote"
	TargetUnresolved                   // raw text kept for display
)

func (k TargetKind) String() string {
	switch k {
	case TargetPlayer:
		return "player"
	case TargetNoVote:
		return "no_vote"
	case TargetUnresolved:
		return "unresolved"
	default:
		return "unknown"
	}
}

// Target is the resolved value of a vote declaration. Name holds the
// canonical roster name for TargetPlayer and the raw text for TargetUnresolved.
type Target struct {
	Kind TargetKind
	Name string
}

func PlayerTarget(name string) Target { return Target{Kind: TargetPlayer, Name: name} }

func NoVoteTarget() Target { return Target{Kind: TargetNoVote} }

func UnresolvedTarget(raw string) Target { return Target{Kind: TargetUnresolved, Name: raw} }

// Label is the text rendered for the target.
func (t Target) Label() string {
	if t.Kind == TargetNoVote {
		return NoVote
	}
	return t.Name
}

// PostRef points at the forum post where a vote was cast. A record either
// has both fields or no PostRef at all.
type PostRef struct {
	Topic int
	Post  int
}

// Record is one normalized vote observation.
type Record struct {
	Voter  string
	Target Target
	Source *PostRef
}

// WithSource returns a copy of r carrying the given post reference.
func (r Record) WithSource(ref *PostRef) Record {
	r.Source = ref
	return r
}

func (r Record) String() string {
	if r.Source == nil {
		return fmt.Sprintf("%s -> %s", r.Voter, r.Target.Label())
	}
	return fmt.Sprintf("%s -> %s (#%d/%d)", r.Voter, r.Target.Label(), r.Source.Topic, r.Source.Post)
}
