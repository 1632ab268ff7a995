package render

import (
	"slices"

	"github.com/notblackorwhite/vc-auto-poster/internal/domain"
)

type section struct {
	label string
	names []string
}

// wagons returns one section per target group, largest first. Ties keep
// insertion order. With foldUnresolved, unresolved records join the section
// labelled with their raw target, or open a new one at the end.
func wagons(s *domain.Snapshot, opts Options, foldUnresolved bool) []section {
	groups := s.Groups()
	out := make([]section, 0, len(groups))
	index := make(map[string]int, len(groups))
	for _, g := range groups {
		index[g.Target] = len(out)
		out = append(out, section{label: g.Target, names: voterNames(g.Records, opts)})
	}

	if foldUnresolved {
		for _, r := range s.Unresolved() {
			name := VoterName(r, opts)
			if i, ok := index[r.Target.Name]; ok {
				out[i].names = append(out[i].names, name)
				continue
			}
			index[r.Target.Name] = len(out)
			out = append(out, section{label: r.Target.Name, names: []string{name}})
		}
	}

	slices.SortStableFunc(out, func(a, b section) int {
		return len(b.names) - len(a.names)
	})
	return out
}
