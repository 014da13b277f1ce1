package core

import "github.com/google/uuid"

// generateName mints a unique runner name for callers that did not supply
// one, e.g. "cycle-7f3a1c2e".
func generateName(prefix string) string {
	return prefix + "-" + uuid.NewString()[:8]
}
