package votecount

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notblackorwhite/vc-auto-poster/internal/domain"
	apperrors "github.com/notblackorwhite/vc-auto-poster/internal/errors"
)

type mockVoteSource struct {
	mu       sync.Mutex
	payloads [][]byte
	err      error
	calls    []int
}

func (m *mockVoteSource) FetchVotecount(_ context.Context, _ int, postNumber int) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, postNumber)
	if m.err != nil {
		return nil, m.err
	}
	p := m.payloads[0]
	if len(m.payloads) > 1 {
		m.payloads = m.payloads[1:]
	}
	return p, nil
}

func postPtr(n int) *int { return &n }

func testOptions() Options {
	return Options{Topic: 42, KeepUnresolved: true, Match: domain.MatchOptions{MinSubstringLength: 3}}
}

func TestBuild_PartitionsAndNormalizes(t *testing.T) {
	e := NewEngine()
	payload := Payload{
		Roster: []string{"Alice", "Bob", "Carol", "Dave"},
		Declarations: []Declaration{
			{Voter: "alice", Target: "bob", Post: postPtr(10)},
			{Voter: "Car", Target: "Bob", Post: postPtr(11)},
			{Voter: "Dave", Target: domain.NoVote},
			{Voter: "Bob", Target: "Zed"},
			{Voter: "Mallory", Target: "Alice"},
		},
	}

	s := e.Build(context.Background(), payload, testOptions())

	assert.Equal(t, 4, s.Total())
	group, ok := s.Group("Bob")
	require.True(t, ok)
	assert.Equal(t, []string{"Alice", "Carol"}, names(group))
	assert.Equal(t, &domain.PostRef{Topic: 42, Post: 10}, group[0].Source)
	assert.Equal(t, []string{"Dave"}, names(s.NotVoting()))
	assert.Equal(t, []string{"Bob"}, names(s.Unresolved()))
	assert.Equal(t, "Zed", s.Unresolved()[0].Target.Name)
	assert.Equal(t, []string{"Mallory"}, s.Dropped())

	_, ok = s.Record("Mallory")
	assert.False(t, ok, "unresolvable voters do not appear anywhere")
	assert.Same(t, s, e.Previous())
}

func TestBuild_GroupsOnlyContainRosterNames(t *testing.T) {
	e := NewEngine()
	roster := []string{"Alice", "Bob"}
	payload := Payload{
		Roster: roster,
		Declarations: []Declaration{
			{Voter: "Alice", Target: "Nobody"},
			{Voter: "Bob", Target: "alice"},
		},
	}

	s := e.Build(context.Background(), payload, testOptions())

	for _, g := range s.Groups() {
		assert.Contains(t, roster, g.Target)
	}
	_, ok := s.Group("Nobody")
	assert.False(t, ok)
}

func TestBuild_DropUnresolvedTargetsWhenNotKept(t *testing.T) {
	e := NewEngine()
	opts := testOptions()
	opts.KeepUnresolved = false

	s := e.Build(context.Background(), Payload{
		Roster:       []string{"Alice"},
		Declarations: []Declaration{{Voter: "Alice", Target: "Nobody"}},
	}, opts)

	assert.Empty(t, s.Unresolved())
	assert.Equal(t, []string{"Alice"}, names(s.NotVoting()))
}

func TestBuild_ContinuityInheritsPostForUnchangedVote(t *testing.T) {
	e := NewEngine()
	roster := []string{"Alice", "Bob", "Carol"}

	e.Build(context.Background(), Payload{Roster: roster, Declarations: []Declaration{
		{Voter: "Alice", Target: "Bob", Post: postPtr(5)},
		{Voter: "Carol", Target: "Bob", Post: postPtr(6)},
	}}, testOptions())

	opts := testOptions()
	opts.Topic = 43
	s := e.Build(context.Background(), Payload{Roster: roster, Declarations: []Declaration{
		{Voter: "Alice", Target: "bob"},
		{Voter: "Carol", Target: "Alice"},
	}}, opts)

	alice, _ := s.Record("Alice")
	require.NotNil(t, alice.Source)
	assert.Equal(t, domain.PostRef{Topic: 42, Post: 5}, *alice.Source, "topic travels with the inherited post")

	carol, _ := s.Record("Carol")
	assert.Nil(t, carol.Source, "a changed vote never inherits a post reference")
}

func TestBuild_ContinuityPrefersFreshPost(t *testing.T) {
	e := NewEngine()
	roster := []string{"Alice", "Bob"}

	e.Build(context.Background(), Payload{Roster: roster, Declarations: []Declaration{
		{Voter: "Alice", Target: "Bob", Post: postPtr(5)},
	}}, testOptions())
	s := e.Build(context.Background(), Payload{Roster: roster, Declarations: []Declaration{
		{Voter: "Alice", Target: "Bob", Post: postPtr(9)},
	}}, testOptions())

	alice, _ := s.Record("Alice")
	assert.Equal(t, 9, alice.Source.Post)
}

func TestBuild_ContinuityChainsAcrossTicks(t *testing.T) {
	e := NewEngine()
	roster := []string{"Alice", "Bob"}

	e.Build(context.Background(), Payload{Roster: roster, Declarations: []Declaration{
		{Voter: "Alice", Target: "Bob", Post: postPtr(5)},
	}}, testOptions())
	for i := 0; i < 3; i++ {
		e.Build(context.Background(), Payload{Roster: roster, Declarations: []Declaration{
			{Voter: "Alice", Target: "Bob"},
		}}, testOptions())
	}

	alice, _ := e.Previous().Record("Alice")
	require.NotNil(t, alice.Source)
	assert.Equal(t, 5, alice.Source.Post)
}

func TestBuild_ContinuitySurvivesRosterChangesOfTarget(t *testing.T) {
	tests := []struct {
		name   string
		before []string
		after  []string
		kind   domain.TargetKind
	}{
		{"target leaves the roster", []string{"Alice", "Zed"}, []string{"Alice"}, domain.TargetUnresolved},
		{"target joins the roster", []string{"Alice"}, []string{"Alice", "Zed"}, domain.TargetPlayer},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewEngine()
			e.Build(context.Background(), Payload{Roster: tt.before, Declarations: []Declaration{
				{Voter: "Alice", Target: "Zed", Post: postPtr(10)},
			}}, testOptions())

			s := e.Build(context.Background(), Payload{Roster: tt.after, Declarations: []Declaration{
				{Voter: "Alice", Target: "Zed"},
			}}, testOptions())

			alice, ok := s.Record("Alice")
			require.True(t, ok)
			assert.Equal(t, tt.kind, alice.Target.Kind)
			require.NotNil(t, alice.Source)
			assert.Equal(t, domain.PostRef{Topic: 42, Post: 10}, *alice.Source)
		})
	}
}

func TestBuild_ContinuityNeedsPreviousPost(t *testing.T) {
	e := NewEngine()
	roster := []string{"Alice", "Bob"}

	e.Build(context.Background(), Payload{Roster: roster, Declarations: []Declaration{
		{Voter: "Alice", Target: "Bob"},
	}}, testOptions())
	s := e.Build(context.Background(), Payload{Roster: roster, Declarations: []Declaration{
		{Voter: "Alice", Target: "Bob"},
	}}, testOptions())

	alice, _ := s.Record("Alice")
	assert.Nil(t, alice.Source)
}

func TestBuild_ContinuityInheritedRefIsACopy(t *testing.T) {
	e := NewEngine()
	roster := []string{"Alice", "Bob"}

	first := e.Build(context.Background(), Payload{Roster: roster, Declarations: []Declaration{
		{Voter: "Alice", Target: "Bob", Post: postPtr(5)},
	}}, testOptions())
	second := e.Build(context.Background(), Payload{Roster: roster, Declarations: []Declaration{
		{Voter: "Alice", Target: "Bob"},
	}}, testOptions())

	a1, _ := first.Record("Alice")
	a2, _ := second.Record("Alice")
	assert.NotSame(t, a1.Source, a2.Source)
}

func TestBuild_EmptyPayload(t *testing.T) {
	s := NewEngine().Build(context.Background(), Payload{}, testOptions())

	assert.Zero(t, s.Total())
	assert.Empty(t, s.Groups())
	assert.Empty(t, s.NotVoting())
	assert.Empty(t, s.Unresolved())
}

func TestRefresh_Success(t *testing.T) {
	src := &mockVoteSource{payloads: [][]byte{[]byte(`{"votecount":[{"voter":"Alice","votes":["Bob"],"post":3}],"alive":["Alice","Bob"]}`)}}
	e := NewEngine()

	s, err := e.Refresh(context.Background(), src, 140, testOptions())
	require.NoError(t, err)

	assert.Equal(t, []int{140}, src.calls)
	group, _ := s.Group("Bob")
	assert.Equal(t, []string{"Alice"}, names(group))
}

func TestRefresh_TransportErrorLeavesStateUntouched(t *testing.T) {
	e := NewEngine()
	prev := e.Build(context.Background(), Payload{Roster: []string{"A"}, Declarations: []Declaration{{Voter: "A", Target: domain.NoVote}}}, testOptions())

	src := &mockVoteSource{err: apperrors.TransportError("connection reset", errors.New("EOF"))}
	s, err := e.Refresh(context.Background(), src, 1, testOptions())

	require.Error(t, err)
	assert.Nil(t, s)
	assert.Equal(t, apperrors.TypeTransport, apperrors.TypeOf(err))
	assert.Same(t, prev, e.Previous())
}

func TestRefresh_ParseErrorLeavesStateUntouched(t *testing.T) {
	e := NewEngine()
	prev := e.Build(context.Background(), Payload{Roster: []string{"A"}, Declarations: []Declaration{{Voter: "A", Target: domain.NoVote}}}, testOptions())

	src := &mockVoteSource{payloads: [][]byte{[]byte(`{"error": "plugin disabled"}`)}}
	s, err := e.Refresh(context.Background(), src, 1, testOptions())

	require.Error(t, err)
	assert.Nil(t, s)
	assert.Equal(t, apperrors.TypeParse, apperrors.TypeOf(err))
	assert.Same(t, prev, e.Previous())
}

func TestReset(t *testing.T) {
	e := NewEngine()
	e.Build(context.Background(), Payload{}, testOptions())
	e.Reset()
	assert.Nil(t, e.Previous())
}

func names(records []domain.Record) []string {
	out := make([]string, 0, len(records))
	for _, r := range records {
		out = append(out, r.Voter)
	}
	return out
}
