package render

import (
	"fmt"
	"strings"

	"github.com/notblackorwhite/vc-auto-poster/internal/domain"
)

// List renders the plugin list format: one line per wagon, a blank line and
// the not-voting line. Unresolved votes are shown as wagons on their raw text.
func List(s *domain.Snapshot, opts Options) []string {
	sections := wagons(s, opts, true)
	lines := make([]string, 0, len(sections)+2)
	for _, sec := range sections {
		lines = append(lines, fmt.Sprintf("**%s (%d):** %s", sec.label, len(sec.names), strings.Join(sec.names, ", ")))
	}

	notVoting := voterNames(s.NotVoting(), opts)
	lines = append(lines, "", fmt.Sprintf("**Not Voting (%d):** %s", len(notVoting), strings.Join(notVoting, ", ")))
	return lines
}
