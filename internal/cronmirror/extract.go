package cronmirror

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ParseError reports scheduler output that could not be turned into jobs.
// It maps to a 502 on the HTTP surface rather than a generic 500.
type ParseError struct {
	Reason string
}

func (e *ParseError) Error() string {
	return "cron output: " + e.Reason
}

// ExtractJSON pulls the first JSON document out of mixed CLI output.
// Scheduler invocations tend to prepend log lines and warnings before
// the actual payload, so we scan for the first '[' or '{' and decode
// from there.
func ExtractJSON(raw string) (any, error) {
	start := -1
	for i, r := range raw {
		if r == '[' || r == '{' {
			start = i
			break
		}
	}
	if start < 0 {
		snippet := strings.TrimSpace(raw)
		if len(snippet) > 120 {
			snippet = snippet[:120]
		}
		return nil, &ParseError{Reason: fmt.Sprintf("no JSON payload in output %q", snippet)}
	}

	var doc any
	if err := json.Unmarshal([]byte(strings.TrimSpace(raw[start:])), &doc); err != nil {
		return nil, &ParseError{Reason: "malformed JSON payload: " + err.Error()}
	}
	return doc, nil
}
