package app

import (
	"context"
	"sync"
	"time"

	"github.com/notblackorwhite/vc-auto-poster/internal/domain"
)

type postResult struct {
	post int
	err  error
}

type mockForum struct {
	mu sync.Mutex

	topic    domain.Topic
	topicErr error

	payload  []byte
	fetchErr error

	results []postResult
	bodies  []string

	topicCalls int
	fetchCalls []int
}

func (m *mockForum) GetTopic(_ context.Context, topicID int) (domain.Topic, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.topicCalls++
	if m.topicErr != nil {
		return domain.Topic{}, m.topicErr
	}
	t := m.topic
	t.ID = topicID
	return t, nil
}

func (m *mockForum) FetchVotecount(_ context.Context, _ int, postNumber int) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fetchCalls = append(m.fetchCalls, postNumber)
	if m.fetchErr != nil {
		return nil, m.fetchErr
	}
	return m.payload, nil
}

func (m *mockForum) CreatePost(_ context.Context, _ int, body string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bodies = append(m.bodies, body)
	if len(m.results) == 0 {
		return m.topic.HighestPostNumber + 1, nil
	}
	r := m.results[0]
	m.results = m.results[1:]
	return r.post, r.err
}

func (m *mockForum) setTopic(t domain.Topic) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.topic = t
}

func (m *mockForum) attempts() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.bodies)
}

func (m *mockForum) getTopicCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.topicCalls
}

func (m *mockForum) getFetchCalls() []int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]int(nil), m.fetchCalls...)
}

type mockRecorder struct {
	mu         sync.Mutex
	outcomes   []domain.TickOutcome
	suppressed []domain.SuppressReason
	attempts   int
	snapshots  int
	published  []int
}

func (m *mockRecorder) TickCompleted(outcome domain.TickOutcome, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.outcomes = append(m.outcomes, outcome)
}

func (m *mockRecorder) Suppressed(reason domain.SuppressReason) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.suppressed = append(m.suppressed, reason)
}

func (m *mockRecorder) PublishAttempted() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.attempts++
}

func (m *mockRecorder) SnapshotBuilt(*domain.Snapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshots++
}

func (m *mockRecorder) Published(post int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.published = append(m.published, post)
}

func (m *mockRecorder) getOutcomes() []domain.TickOutcome {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.TickOutcome(nil), m.outcomes...)
}

type mockSettingsSource struct {
	mu       sync.Mutex
	settings domain.Settings
	err      error
	calls    int
}

func (m *mockSettingsSource) Load(_ context.Context) (domain.Settings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return domain.Settings{}, m.err
	}
	return m.settings, nil
}

func (m *mockSettingsSource) set(s domain.Settings, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.settings = s
	m.err = err
}
