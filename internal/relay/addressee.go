package relay

import "strings"

// DetectAddressee returns the agent a human utterance opens with, either by
// bare name or @name, case-insensitively. It returns "" when none match.
func DetectAddressee(text string, agents []string) string {
	lower := strings.ToLower(text)
	for _, name := range agents {
		n := strings.ToLower(name)
		if n == "" {
			continue
		}
		if strings.HasPrefix(lower, n) || strings.HasPrefix(lower, "@"+n) {
			return name
		}
	}
	return ""
}
