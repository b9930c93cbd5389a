package interpret

import "negotiation-gateway/internal/models"

// ResolveAddressee picks the recipient named in the entities. defaultAgent
// wins when it is mentioned at all; otherwise the first name mentioned is
// used. Returns nil when no avatar name appears.
func ResolveAddressee(entities []models.EntityMention, defaultAgent string) *string {
	var candidates []string
	for _, e := range entities {
		if e.Entity == models.EntityAvatar {
			candidates = append(candidates, e.Value)
		}
	}
	if len(candidates) == 0 {
		return nil
	}

	for _, c := range candidates {
		if defaultAgent != "" && c == defaultAgent {
			return &c
		}
	}
	first := candidates[0]
	return &first
}
