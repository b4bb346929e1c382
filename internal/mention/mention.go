// Package mention extracts @agent references and urgency signals from
// free-text message content.
package mention

import (
	"regexp"
	"strings"
)

// All is the reserved mention token that expands to the full roster.
const All = "all"

var mentionRe = regexp.MustCompile(`@([A-Za-z0-9_-]+)`)

// urgencyTerms is the lexicon that forces notifications to urgent priority.
var urgencyTerms = []string{"urgent", "asap", "critical", "emergency"}

// Parse returns the mentioned names in content: lower-cased, deduplicated,
// in first-appearance order. "@forge @Forge @FORGE" yields {"forge"}.
func Parse(content string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, m := range mentionRe.FindAllStringSubmatch(content, -1) {
		name := strings.ToLower(m[1])
		if seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, name)
	}
	return out
}

// ExpandAll resolves the reserved "all" token against the current roster.
// When present, the result is the whole roster (in roster order); otherwise
// the parsed names pass through unchanged.
func ExpandAll(names, roster []string) []string {
	for _, n := range names {
		if n == All {
			out := make([]string, 0, len(roster))
			seen := make(map[string]bool)
			for _, r := range roster {
				r = strings.ToLower(r)
				if seen[r] {
					continue
				}
				seen[r] = true
				out = append(out, r)
			}
			return out
		}
	}
	return names
}

// IsUrgent reports whether content contains any urgency term,
// case-insensitively.
func IsUrgent(content string) bool {
	lower := strings.ToLower(content)
	for _, term := range urgencyTerms {
		if strings.Contains(lower, term) {
			return true
		}
	}
	return false
}

// Priority maps content urgency to a notification priority string.
func Priority(content string) string {
	if IsUrgent(content) {
		return "urgent"
	}
	return "normal"
}
