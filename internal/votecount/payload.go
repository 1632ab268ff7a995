package votecount

import (
	"encoding/json"
	"strings"

	apperrors "github.com/notblackorwhite/vc-auto-poster/internal/errors"
)

// Declaration is one "who votes for whom" entry from the plugin, trimmed
// but not yet matched against the roster.
type Declaration struct {
	Voter  string
	Target string
	Post   *int
}

// Payload is the decoded plugin response.
type Payload struct {
	Declarations []Declaration
	Roster       []string
	// Malformed counts entries skipped because they lacked a voter or votes.
	Malformed int
}

type wirePayload struct {
	Votecount *[]json.RawMessage `json:"votecount"`
	Alive     *[]string          `json:"alive"`
}

type wireDeclaration struct {
	Voter *string           `json:"voter"`
	Votes []json.RawMessage `json:"votes"`
	Post  json.RawMessage   `json:"post"`
}

// DecodePayload parses `{"votecount": [...], "alive": [...]}`. A payload
// without both lists is a parse error; individual malformed entries are
// skipped and counted.
func DecodePayload(data []byte) (Payload, error) {
	var wire wirePayload
	if err := json.Unmarshal(data, &wire); err != nil {
		return Payload{}, apperrors.ParseError("votecount payload is not a JSON object", err)
	}
	if wire.Votecount == nil {
		return Payload{}, apperrors.ParseError("votecount payload has no votecount list", nil)
	}
	if wire.Alive == nil {
		return Payload{}, apperrors.ParseError("votecount payload has no alive list", nil)
	}

	p := Payload{Roster: *wire.Alive}
	for _, raw := range *wire.Votecount {
		decl, ok := decodeDeclaration(raw)
		if !ok {
			p.Malformed++
			continue
		}
		p.Declarations = append(p.Declarations, decl)
	}
	return p, nil
}

func decodeDeclaration(raw json.RawMessage) (Declaration, bool) {
	var wire wireDeclaration
	if err := json.Unmarshal(raw, &wire); err != nil || wire.Voter == nil || len(wire.Votes) == 0 {
		return Declaration{}, false
	}

	// only the first declared target counts
	var target string
	if err := json.Unmarshal(wire.Votes[0], &target); err != nil {
		return Declaration{}, false
	}

	decl := Declaration{
		Voter:  strings.TrimSpace(*wire.Voter),
		Target: strings.TrimSpace(target),
	}

	var post *int
	if len(wire.Post) > 0 && json.Unmarshal(wire.Post, &post) == nil {
		decl.Post = post
	}
	return decl, true
}
