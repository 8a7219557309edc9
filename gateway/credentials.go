package gateway

import (
	"os"

	"github.com/kbukum/chatgate/errors"
	"github.com/kbukum/chatgate/llm"
	"github.com/kbukum/chatgate/util"
)

// Credentials picks the key sent to a provider.
type Credentials struct {
	envNames map[llm.ProviderKind]string
	lookup   func(string) (string, bool)
}

// NewCredentials reads defaults from the environment variables named in
// providers. A nil lookup uses os.LookupEnv.
func NewCredentials(providers ProvidersConfig, lookup func(string) (string, bool)) *Credentials {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	names := make(map[llm.ProviderKind]string, len(llm.Providers))
	for _, kind := range llm.Providers {
		names[kind] = providers.For(kind).APIKeyEnv
	}
	return &Credentials{envNames: names, lookup: lookup}
}

// Resolve returns explicit when it is non-blank, otherwise the provider's
// environment default read now. Neither yields MissingCredential.
func (c *Credentials) Resolve(kind llm.ProviderKind, explicit string) (string, error) {
	if key := util.SanitizeEnvValue(explicit); key != "" {
		return key, nil
	}
	if name := c.envNames[kind]; name != "" {
		if v, ok := c.lookup(name); ok {
			if key := util.SanitizeEnvValue(v); key != "" {
				return key, nil
			}
		}
	}
	return "", errors.MissingCredential(kind.DisplayName())
}
