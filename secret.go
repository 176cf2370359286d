// FILE: lixenwraith/zconfig/secret.go
package zconfig

import (
	"fmt"

	"go.uber.org/zap"
)

// SecretProvider fetches a secret by a provider-specific locator.
type SecretProvider interface {
	Provide(locator string) (string, error)
}

// SecretProviderFunc adapts a function to SecretProvider.
type SecretProviderFunc func(locator string) (string, error)

func (f SecretProviderFunc) Provide(locator string) (string, error) {
	return f(locator)
}

type secretRef struct {
	provider string
	locator  string
}

type secretBinding struct {
	secretRef
	key Path
}

// RegisterSecretProvider makes p available under name.
func (c *Config) RegisterSecretProvider(name string, p SecretProvider) {
	c.secMu.Lock()
	defer c.secMu.Unlock()
	c.providers[name] = p
}

// RegisterSecretReference lets ${ref} resolve through provider when no
// environment variable named ref exists.
func (c *Config) RegisterSecretReference(ref, provider, locator string) {
	c.secMu.Lock()
	defer c.secMu.Unlock()
	c.secretRefs[ref] = secretRef{provider: provider, locator: locator}
}

// RegisterSecret writes the secret at key on every load, after files and
// environment bindings.
func (c *Config) RegisterSecret(provider, locator string, key any) {
	c.regMu.Lock()
	defer c.regMu.Unlock()
	c.secrets = append(c.secrets, secretBinding{
		secretRef: secretRef{provider: provider, locator: locator},
		key:       normalizeKey(key),
	})
}

func (c *Config) provideSecret(provider, locator string) (string, error) {
	c.secMu.RLock()
	p, ok := c.providers[provider]
	c.secMu.RUnlock()
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownProvider, provider)
	}
	return p.Provide(locator)
}

// lookupSecret resolves a registered secret reference. Failures are logged
// and reported as unresolved.
func (c *Config) lookupSecret(name string) (string, bool) {
	c.secMu.RLock()
	ref, ok := c.secretRefs[name]
	c.secMu.RUnlock()
	if !ok {
		return "", false
	}

	v, err := c.provideSecret(ref.provider, ref.locator)
	if err != nil {
		c.logger.Warn("secret lookup failed",
			zap.String("reference", name),
			zap.String("provider", ref.provider),
			zap.Error(err))
		return "", false
	}
	return v, true
}
