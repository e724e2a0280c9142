package dashboard

import (
	"strings"

	"github.com/ezppt/deckview/internal/backend"
)

// FilterProjects keeps projects whose name or topic contains keyword,
// ignoring case. An empty keyword keeps everything.
func FilterProjects(projects []backend.ProjectSummary, keyword string) []backend.ProjectSummary {
	keyword = strings.ToLower(strings.TrimSpace(keyword))
	if keyword == "" {
		return projects
	}
	var out []backend.ProjectSummary
	for _, p := range projects {
		if strings.Contains(strings.ToLower(p.ProjectName), keyword) ||
			strings.Contains(strings.ToLower(p.Topic), keyword) {
			out = append(out, p)
		}
	}
	return out
}
