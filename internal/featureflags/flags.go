package featureflags

import (
	"os"
	"strings"
)

// LegacyListings restores the original behavior where any authenticated user
// sees every farm and vessel, not just their own.
const LegacyListings = "legacy_listings"

// Enabled reports whether a flag is on. Flags are read from the environment
// as FLAG_<NAME>=true/1/yes (case-insensitive).
func Enabled(name string) bool {
	v := os.Getenv("FLAG_" + strings.ToUpper(name))
	switch strings.ToLower(v) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}
