package envutil

import (
	"os"
	"strings"
)

func Bool(key string) bool {
	return ParseBool(os.Getenv(key))
}

func ParseBool(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "t", "yes", "y", "on":
		return true
	default:
		return false
	}
}

// First returns the first non-blank value among keys, trimmed, and the key it
// came from.
func First(lookup func(string) (string, bool), keys ...string) (string, string) {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	for _, key := range keys {
		if value, ok := lookup(key); ok && strings.TrimSpace(value) != "" {
			return strings.TrimSpace(value), key
		}
	}
	return "", ""
}

// CredentialKeys lists the variables consulted for a provider's API key,
// most specific first.
func CredentialKeys(providerID string) []string {
	vendor := strings.ToUpper(strings.ReplaceAll(providerID, "-", "_")) + "_API_KEY"
	return []string{"NOTECHAT_" + vendor, vendor}
}
