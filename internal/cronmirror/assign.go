package cronmirror

import (
	"strings"

	"github.com/missionctl/missionctl/internal/store"
)

// UnassignedOwner is the label for jobs no roster member claims.
const UnassignedOwner = "unassigned"

// InferOwner matches a job name against each member's ownership keywords,
// in roster order, and returns the first member that claims it. Matching
// is case-insensitive substring on the job name. Explicit assignments
// (cron_assignments rows) override inference and are resolved by the
// caller before falling back here.
func InferOwner(jobName string, members []store.TeamMember) *store.TeamMember {
	haystack := strings.ToLower(jobName)
	for i := range members {
		for _, kw := range splitKeywords(members[i].OwnsKeywords) {
			if strings.Contains(haystack, kw) {
				return &members[i]
			}
		}
	}
	return nil
}

// OwnerName resolves a job to an owner display name: explicit assignment
// first, then keyword inference, then UnassignedOwner.
func OwnerName(jobName string, assignments map[string]string, members []store.TeamMember) string {
	if memberID, ok := assignments[jobName]; ok {
		for i := range members {
			if members[i].ID == memberID {
				return members[i].Name
			}
		}
	}
	if m := InferOwner(jobName, members); m != nil {
		return m.Name
	}
	return UnassignedOwner
}

func splitKeywords(raw string) []string {
	parts := strings.Split(raw, ",")
	out := parts[:0]
	for _, p := range parts {
		p = strings.ToLower(strings.TrimSpace(p))
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
