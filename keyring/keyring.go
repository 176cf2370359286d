// FILE: lixenwraith/zconfig/keyring/keyring.go

// Package keyring provides a zconfig.SecretProvider backed by the system
// keyring (macOS Keychain, Secret Service, Windows Credential Manager).
package keyring

import (
	"errors"
	"fmt"
	"strings"

	"github.com/lixenwraith/zconfig"
	gokeyring "github.com/zalando/go-keyring"
)

// Name is the provider name used by Register.
const Name = "keyring"

// ErrLocator is returned for locators without a service or user.
var ErrLocator = errors.New("keyring locator must be service/user")

// Provider reads secrets from the system keyring. Locators are
// "service/user"; when Service is set a bare "user" is accepted too.
type Provider struct {
	Service string
}

// New creates a provider with a default service.
func New(service string) *Provider {
	return &Provider{Service: service}
}

// Provide returns the secret stored for the locator.
func (p *Provider) Provide(locator string) (string, error) {
	service, user, err := p.split(locator)
	if err != nil {
		return "", err
	}

	secret, err := gokeyring.Get(service, user)
	if err != nil {
		return "", fmt.Errorf("keyring %s/%s: %w", service, user, err)
	}
	return secret, nil
}

// Store saves a secret under the locator.
func (p *Provider) Store(locator, secret string) error {
	service, user, err := p.split(locator)
	if err != nil {
		return err
	}
	if err := gokeyring.Set(service, user, secret); err != nil {
		return fmt.Errorf("keyring %s/%s: %w", service, user, err)
	}
	return nil
}

func (p *Provider) split(locator string) (string, string, error) {
	service, user, found := strings.Cut(locator, "/")
	if !found {
		service, user = p.Service, locator
	}
	if service == "" || user == "" {
		return "", "", fmt.Errorf("%w: %q", ErrLocator, locator)
	}
	return service, user, nil
}

// Register adds a provider for service to c under Name.
func Register(c *zconfig.Config, service string) *Provider {
	p := New(service)
	c.RegisterSecretProvider(Name, p)
	return p
}
