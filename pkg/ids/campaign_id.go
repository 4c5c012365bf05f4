package ids

import (
	"strings"

	"github.com/google/uuid"
)

// NewCampaignID creates a standardized, human-readable campaign ID.
// Format: {kind}-{sluggedName}-{8charHexUUID}
//
// Example:
//   - Input: kind="plan", name="Operation Ravenna"
//   - Output: "plan-operation-ravenna-a3f8e2b1"
//
// The UUID suffix keeps IDs globally unique even when operators reuse
// campaign names across wars.
func NewCampaignID(kind, name string) string {
	return kind + "-" + slug(name) + "-" + shortUUID()
}

// slug lowercases the name and collapses any run of non-alphanumeric
// characters into a single hyphen. An empty or fully symbolic name
// slugs to "campaign" so IDs never contain a double hyphen.
func slug(name string) string {
	var b strings.Builder
	lastHyphen := true
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	s := strings.TrimSuffix(b.String(), "-")
	if s == "" {
		return "campaign"
	}
	return s
}

// shortUUID returns the first 8 hex characters of a fresh UUID.
func shortUUID() string {
	id := uuid.New()
	return strings.ReplaceAll(id.String(), "-", "")[:8]
}
