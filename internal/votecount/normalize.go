package votecount

import (
	"strings"
	"unicode/utf8"

	"github.com/notblackorwhite/vc-auto-poster/internal/domain"
)

// MatchOutcome distinguishes a resolved name from the two ways matching fails.
type MatchOutcome int

const (
	Resolved MatchOutcome = iota
	Ambiguous
	NotFound
)

func (o MatchOutcome) String() string {
	switch o {
	case Resolved:
		return "resolved"
	case Ambiguous:
		return "ambiguous"
	case NotFound:
		return "not_found"
	default:
		return "unknown"
	}
}

// Match is the result of matching a raw name against the roster.
// Candidates is set for substring matches, in roster order.
type Match struct {
	Outcome    MatchOutcome
	Name       string
	Candidates []string
}

func (m Match) Resolved() bool { return m.Outcome == Resolved }

// NormalizeName resolves raw to a canonical roster entry. The first rule
// that applies wins: exact match, case-insensitive match, then substring
// match for inputs of at least opts.MinSubstringLength characters. Several
// substring candidates resolve to the first one in roster order unless
// opts.UniqueSubstringMatch is set.
func NormalizeName(raw string, roster []string, opts domain.MatchOptions) Match {
	for _, name := range roster {
		if name == raw {
			return Match{Outcome: Resolved, Name: name}
		}
	}

	lowered := strings.ToLower(raw)
	for _, name := range roster {
		if strings.ToLower(name) == lowered {
			return Match{Outcome: Resolved, Name: name}
		}
	}

	if utf8.RuneCountInString(raw) < opts.MinSubstringLength {
		return Match{Outcome: NotFound}
	}

	var candidates []string
	for _, name := range roster {
		if strings.Contains(strings.ToLower(name), lowered) {
			candidates = append(candidates, name)
		}
	}

	switch {
	case len(candidates) == 0:
		return Match{Outcome: NotFound}
	case len(candidates) > 1 && opts.UniqueSubstringMatch:
		return Match{Outcome: Ambiguous, Candidates: candidates}
	default:
		return Match{Outcome: Resolved, Name: candidates[0], Candidates: candidates}
	}
}

// NormalizeTarget resolves a declared target. The no-vote literal passes
// through; an unmatched name is kept as an unresolved target when
// keepUnresolved is set and folded into no-vote otherwise.
func NormalizeTarget(raw string, roster []string, keepUnresolved bool, opts domain.MatchOptions) (domain.Target, Match) {
	if raw == domain.NoVote {
		return domain.NoVoteTarget(), Match{Outcome: Resolved, Name: domain.NoVote}
	}

	m := NormalizeName(raw, roster, opts)
	if m.Resolved() {
		return domain.PlayerTarget(m.Name), m
	}
	if keepUnresolved {
		return domain.UnresolvedTarget(raw), m
	}
	return domain.NoVoteTarget(), m
}
