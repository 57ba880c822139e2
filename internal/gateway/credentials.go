package gateway

import (
	"os"

	"notechat/internal/envutil"
)

// SecretStore is the encrypted fallback for credentials not found in the
// environment.
type SecretStore interface {
	GetProviderKey(providerID string) (string, error)
}

// Credentials reads provider keys from the environment first and the secret
// store second.
type Credentials struct {
	lookup  func(string) (string, bool)
	secrets SecretStore
}

func NewCredentials(lookup func(string) (string, bool), secrets SecretStore) *Credentials {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	return &Credentials{lookup: lookup, secrets: secrets}
}

func (c *Credentials) ProviderKey(providerID string) (string, error) {
	key, _, err := c.Source(providerID)
	return key, err
}

// Source also reports where the key came from: an environment variable name,
// "secrets", or "" when no key is configured.
func (c *Credentials) Source(providerID string) (string, string, error) {
	if key, from := envutil.First(c.lookup, envutil.CredentialKeys(providerID)...); key != "" {
		return key, from, nil
	}
	if c.secrets == nil {
		return "", "", nil
	}
	key, err := c.secrets.GetProviderKey(providerID)
	if err != nil {
		return "", "", err
	}
	if key == "" {
		return "", "", nil
	}
	return key, "secrets", nil
}
