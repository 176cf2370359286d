// FILE: lixenwraith/zconfig/config.go
package zconfig

import (
	"iter"
	"os"
	"slices"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
)

// Config is a layered configuration: registered sources are merged into a
// Store on Init and Reload, and typed accessors read from it.
type Config struct {
	store     *Store
	logger    *zap.Logger
	lookupEnv func(string) (string, bool)

	regMu       sync.Mutex // Protects source registration and the load sequence
	encoding    string
	parsers     []Parser
	files       map[category][]fileEntry
	envVars     []envBinding
	secrets     []secretBinding
	defaults    map[string]any
	onLoad      []func(*Config)
	loaded      []string
	initialized bool

	secMu      sync.RWMutex // Protects secret providers and references
	providers  map[string]SecretProvider
	secretRefs map[string]secretRef

	generation atomic.Uint64
}

// Option configures a Config at construction.
type Option func(*Config)

// WithLogger sets the logger used for load diagnostics.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Config) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithDefaultEncoding sets the text encoding of files registered without one.
func WithDefaultEncoding(enc string) Option {
	return func(c *Config) {
		c.encoding = enc
	}
}

// WithLookupEnv replaces os.LookupEnv for env-named files, direct
// environment bindings and reference resolution.
func WithLookupEnv(fn func(string) (string, bool)) Option {
	return func(c *Config) {
		if fn != nil {
			c.lookupEnv = fn
		}
	}
}

// WithParsers replaces the built-in parser list.
func WithParsers(parsers ...Parser) Option {
	return func(c *Config) {
		c.parsers = slices.Clone(parsers)
	}
}

// New creates an empty, uninitialized Config with the built-in parsers.
func New(opts ...Option) *Config {
	c := &Config{
		store:      NewStore(),
		logger:     zap.NewNop(),
		lookupEnv:  os.LookupEnv,
		encoding:   DefaultEncoding,
		parsers:    DefaultParsers(),
		files:      make(map[category][]fileEntry),
		defaults:   make(map[string]any),
		providers:  make(map[string]SecretProvider),
		secretRefs: make(map[string]secretRef),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Store returns the backing store. Its contents are replaced on every load.
func (c *Config) Store() *Store {
	return c.store
}

// Generation returns the number of completed loads.
func (c *Config) Generation() uint64 {
	return c.generation.Load()
}

// Logger returns the configured logger.
func (c *Config) Logger() *zap.Logger {
	return c.logger
}

// Resolve expands references in value against the environment and the
// registered secret references.
func (c *Config) Resolve(value string) string {
	return c.resolver().Resolve(value)
}

func (c *Config) resolver() Resolver {
	return Resolver{LookupEnv: c.lookupEnv, LookupSecret: c.lookupSecret}
}

// Set writes value at key in the current store.
func (c *Config) Set(key any, value any) error {
	return c.store.Set(key, value)
}

// Delete removes key from the current store.
func (c *Config) Delete(key any) {
	c.store.Delete(key)
}

// Has reports whether key is present.
func (c *Config) Has(key any) bool {
	return c.store.Has(key)
}

// DeepUpdate merges m into the current store. The change does not survive a reload;
// use SetDefaults for values that should.
func (c *Config) DeepUpdate(m Mapping) {
	c.store.DeepUpdate(m)
}

// Update shallow-merges m into the current store.
func (c *Config) Update(m Mapping) {
	c.store.Update(m)
}

// Len returns the number of top-level keys.
func (c *Config) Len() int {
	return c.store.Len()
}

// Keys returns the top-level keys.
func (c *Config) Keys() []string {
	return c.store.Keys()
}

// All iterates the top-level entries.
func (c *Config) All() iter.Seq2[string, any] {
	return c.store.All()
}

// LoadedFiles returns the canonical locators merged by the last load.
func (c *Config) LoadedFiles() []string {
	c.regMu.Lock()
	defer c.regMu.Unlock()
	return slices.Clone(c.loaded)
}
