// Package watchdog inspects failure messages from external fetches for
// signs of a stuck approval and surfaces them in the approvals queue.
package watchdog

import (
	"fmt"
	"regexp"

	"github.com/missionctl/missionctl/internal/store"
)

// timeoutPattern matches scheduler/blog failure text of the shape
// "approval-timeout ... id: <token>". Best-effort: a false negative just
// means the failure stays in the activity log only.
var timeoutPattern = regexp.MustCompile(`(?i)approval-timeout.*?\bid:\s*([A-Za-z0-9._-]+)`)

// ScanFailure checks a failure message for an approval-timeout marker.
// On a match it files a pending approval and a warn activity, and returns
// the extracted token. Returns "" when the message is not a timeout.
func ScanFailure(st *store.Store, source, message string) (string, error) {
	m := timeoutPattern.FindStringSubmatch(message)
	if m == nil {
		return "", nil
	}
	token := m[1]

	title := fmt.Sprintf("Approval timed out (id: %s)", token)
	if _, err := st.CreateApproval(title, source, message); err != nil {
		return "", err
	}
	if _, err := st.AddActivity("approval-timeout",
		fmt.Sprintf("detected approval timeout %s from %s", token, source),
		message, store.LevelWarn); err != nil {
		return "", err
	}
	return token, nil
}
