package render

import (
	"fmt"
	"strings"

	"github.com/notblackorwhite/vc-auto-poster/internal/domain"
)

const (
	tableHeader  = "| Votes | Wagon | Voters |"
	tableDivider = "|---|---|---|"
)

// Table renders the markdown table format. Unresolved votes get their own
// trailing row, present only when there are any.
func Table(s *domain.Snapshot, opts Options) []string {
	sections := wagons(s, opts, false)
	lines := make([]string, 0, len(sections)+4)
	lines = append(lines, tableHeader, tableDivider)
	for _, sec := range sections {
		lines = append(lines, tableRow(sec.label, sec.names))
	}

	lines = append(lines, tableRow("Not Voting", voterNames(s.NotVoting(), opts)))

	unresolved := s.Unresolved()
	if len(unresolved) > 0 {
		names := make([]string, 0, len(unresolved))
		for _, r := range unresolved {
			names = append(names, fmt.Sprintf("%s (for %s)", VoterName(r, opts), r.Target.Name))
		}
		lines = append(lines, tableRow("Unresolved", names))
	}

	return lines
}

func tableRow(label string, names []string) string {
	return fmt.Sprintf("| %d | **%s** | %s |", len(names), label, strings.Join(names, ", "))
}
