// FILE: lixenwraith/zconfig/builder.go
package zconfig

import (
	"fmt"
	"os"

	"github.com/mitchellh/mapstructure"
	"go.uber.org/zap"
)

// ValidatorFunc defines the signature for a function that can validate a Config instance.
// It receives the fully loaded *Config object and should return an error if validation fails.
type ValidatorFunc func(c *Config) error

// Configurer registers sources on a Config before it is loaded.
type Configurer func(c *Config) error

// Builder provides a fluent interface for building configurations
type Builder struct {
	opts        []Option
	defaults    any
	args        []string
	configurers []Configurer
	validators  []ValidatorFunc
}

// NewBuilder creates a new configuration builder
func NewBuilder() *Builder {
	return &Builder{
		args: os.Args[1:],
	}
}

// WithDefaults sets the baseline values: a Mapping, a map[string]any or a
// struct read through its toml tags.
func (b *Builder) WithDefaults(defaults any) *Builder {
	b.defaults = defaults
	return b
}

// WithLogger sets the logger used for load diagnostics
func (b *Builder) WithLogger(logger *zap.Logger) *Builder {
	b.opts = append(b.opts, WithLogger(logger))
	return b
}

// WithEncoding sets the default text encoding of registered files
func (b *Builder) WithEncoding(enc string) *Builder {
	b.opts = append(b.opts, WithDefaultEncoding(enc))
	return b
}

// WithLookupEnv replaces the environment lookup
func (b *Builder) WithLookupEnv(fn func(string) (string, bool)) *Builder {
	b.opts = append(b.opts, WithLookupEnv(fn))
	return b
}

// WithArgs sets the command-line arguments searched by WithFileDiscovery
func (b *Builder) WithArgs(args []string) *Builder {
	b.args = args
	return b
}

// WithDefaultFile registers a file loaded before regular files
func (b *Builder) WithDefaultFile(path string, opts ...FileOption) *Builder {
	return b.WithConfigurer(func(c *Config) error {
		c.RegisterDefaultFile(path, opts...)
		return nil
	})
}

// WithFile registers a regular configuration file
func (b *Builder) WithFile(path string, opts ...FileOption) *Builder {
	return b.WithConfigurer(func(c *Config) error {
		c.RegisterFile(path, opts...)
		return nil
	})
}

// WithEnvFile registers a file whose path is read from envVar
func (b *Builder) WithEnvFile(envVar string, opts ...FileOption) *Builder {
	return b.WithConfigurer(func(c *Config) error {
		c.RegisterFileFromEnv(envVar, opts...)
		return nil
	})
}

// WithEnvVar binds an environment variable to a key
func (b *Builder) WithEnvVar(name string, key any) *Builder {
	return b.WithConfigurer(func(c *Config) error {
		c.RegisterEnvVar(name, key)
		return nil
	})
}

// WithParser appends a parser after the built-in ones
func (b *Builder) WithParser(p Parser) *Builder {
	return b.WithConfigurer(func(c *Config) error {
		c.RegisterParser(p)
		return nil
	})
}

// WithSecretProvider registers a secret provider under name
func (b *Builder) WithSecretProvider(name string, p SecretProvider) *Builder {
	return b.WithConfigurer(func(c *Config) error {
		c.RegisterSecretProvider(name, p)
		return nil
	})
}

// WithConfigurer adds a registration step run before the first load.
// Configurers run in the order they are added.
func (b *Builder) WithConfigurer(fn Configurer) *Builder {
	if fn != nil {
		b.configurers = append(b.configurers, fn)
	}
	return b
}

// WithValidator adds a validation function that runs at the end of the build process
// Multiple validators can be added and are executed in the order they are added
func (b *Builder) WithValidator(fn ValidatorFunc) *Builder {
	if fn != nil {
		b.validators = append(b.validators, fn)
	}
	return b
}

// Build creates the Config instance, loads it and runs the validators
func (b *Builder) Build() (*Config, error) {
	cfg := New(b.opts...)

	if b.defaults != nil {
		defaults, err := defaultsMapping(b.defaults)
		if err != nil {
			return nil, fmt.Errorf("failed to register defaults: %w", err)
		}
		cfg.SetDefaults(defaults)
	}

	for _, fn := range b.configurers {
		if err := fn(cfg); err != nil {
			return nil, fmt.Errorf("configurer failed: %w", err)
		}
	}

	if err := cfg.Init(); err != nil {
		return nil, err
	}

	for _, validator := range b.validators {
		if err := validator(cfg); err != nil {
			return nil, fmt.Errorf("configuration validation failed: %w", err)
		}
	}

	return cfg, nil
}

// MustBuild is like Build but panics on error
func (b *Builder) MustBuild() *Config {
	cfg, err := b.Build()
	if err != nil {
		panic(fmt.Sprintf("config build failed: %v", err))
	}
	return cfg
}

// BuildAndScan builds and decodes the whole configuration into target
func (b *Builder) BuildAndScan(target any) error {
	cfg, err := b.Build()
	if err != nil {
		return err
	}

	if err := cfg.Scan("", target); err != nil {
		return fmt.Errorf("failed to scan final config into target: %w", err)
	}
	return nil
}

// defaultsMapping converts WithDefaults input into a Mapping.
func defaultsMapping(defaults any) (Mapping, error) {
	if m, ok := asMapping(defaults); ok {
		return m, nil
	}

	out := make(map[string]any)
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:  &out,
		TagName: DefaultTagName,
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(defaults); err != nil {
		return nil, fmt.Errorf("defaults of type %T: %w", defaults, err)
	}
	return Map(out), nil
}
