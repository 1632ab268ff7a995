package domain

// Group is the ordered set of records voting for one target.
type Group struct {
	Target  string
	Records []Record
}

// Snapshot is the aggregated votecount for one tick. It is immutable once
// built; accessors return copies so callers never alias engine state.
type Snapshot struct {
	order      []string
	byVoter    map[string]Record
	groupOrder []string
	groups     map[string][]Record
	notVoting  []Record
	unresolved []Record
	dropped    []string
}

// Record returns the record for a canonical voter name.
func (s *Snapshot) Record(voter string) (Record, bool) {
	if s == nil {
		return Record{}, false
	}
	r, ok := s.byVoter[voter]
	return r, ok
}

// Voters lists every retained record in declaration order.
func (s *Snapshot) Voters() []Record {
	out := make([]Record, 0, len(s.order))
	for _, name := range s.order {
		out = append(out, s.byVoter[name])
	}
	return out
}

// Groups lists target groups in insertion order.
func (s *Snapshot) Groups() []Group {
	out := make([]Group, 0, len(s.groupOrder))
	for _, target := range s.groupOrder {
		out = append(out, Group{Target: target, Records: append([]Record(nil), s.groups[target]...)})
	}
	return out
}

// Group returns the records voting for target.
func (s *Snapshot) Group(target string) ([]Record, bool) {
	records, ok := s.groups[target]
	return append([]Record(nil), records...), ok
}

func (s *Snapshot) NotVoting() []Record { return append([]Record(nil), s.notVoting...) }

func (s *Snapshot) Unresolved() []Record { return append([]Record(nil), s.unresolved...) }

// Dropped lists raw voter names that could not be matched to the roster.
func (s *Snapshot) Dropped() []string { return append([]string(nil), s.dropped...) }

// Total is the number of retained records.
func (s *Snapshot) Total() int { return len(s.byVoter) }

// Counts returns the number of records in the voted, not-voting and
// unresolved partitions.
func (s *Snapshot) Counts() (voted, notVoting, unresolved int) {
	for _, records := range s.groups {
		voted += len(records)
	}
	return voted, len(s.notVoting), len(s.unresolved)
}

// SnapshotBuilder accumulates records and partitions them on Build.
type SnapshotBuilder struct {
	order   []string
	byVoter map[string]Record
	dropped []string
}

func NewSnapshotBuilder() *SnapshotBuilder {
	return &SnapshotBuilder{byVoter: make(map[string]Record)}
}

// Add stores r. A later record for the same voter replaces the earlier one
// but keeps its position. Reports whether a record was replaced.
func (b *SnapshotBuilder) Add(r Record) bool {
	_, replaced := b.byVoter[r.Voter]
	if !replaced {
		b.order = append(b.order, r.Voter)
	}
	b.byVoter[r.Voter] = r
	return replaced
}

// Drop records a raw voter name that was discarded.
func (b *SnapshotBuilder) Drop(raw string) {
	b.dropped = append(b.dropped, raw)
}

// Build partitions the accumulated records. Every record lands in exactly
// one of the groups, not-voting or unresolved partitions.
func (b *SnapshotBuilder) Build() *Snapshot {
	s := &Snapshot{
		order:   append([]string(nil), b.order...),
		byVoter: make(map[string]Record, len(b.byVoter)),
		groups:  make(map[string][]Record),
		dropped: append([]string(nil), b.dropped...),
	}

	for _, voter := range b.order {
		r := b.byVoter[voter]
		s.byVoter[voter] = r

		switch r.Target.Kind {
		case TargetNoVote:
			s.notVoting = append(s.notVoting, r)
		case TargetUnresolved:
			s.unresolved = append(s.unresolved, r)
		default:
			if _, ok := s.groups[r.Target.Name]; !ok {
				s.groupOrder = append(s.groupOrder, r.Target.Name)
			}
			s.groups[r.Target.Name] = append(s.groups[r.Target.Name], r)
		}
	}

	return s
}
