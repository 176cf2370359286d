// FILE: lixenwraith/zconfig/registry.go
package zconfig

// category groups registered files; categories load in declaration order.
type category int

const (
	categoryDefault category = iota
	categoryRegular
	categoryEnvironment
)

var loadOrder = []category{categoryDefault, categoryRegular, categoryEnvironment}

func (c category) String() string {
	switch c {
	case categoryDefault:
		return "default"
	case categoryRegular:
		return "regular"
	case categoryEnvironment:
		return "environment"
	}
	return "unknown"
}

// fileEntry is one registered source. For the environment category the
// locator names an environment variable holding the path.
type fileEntry struct {
	locator   string
	weight    int
	hasWeight bool
	parser    Parser
	encoding  string
}

type envBinding struct {
	name string
	key  Path
}

// FileOption customizes a file registration.
type FileOption func(*fileEntry)

// WithWeight sets the merge position within the file's category.
// Lower weights merge first, so higher weights win.
func WithWeight(weight int) FileOption {
	return func(e *fileEntry) {
		e.weight = weight
		e.hasWeight = true
	}
}

// WithParser forces a parser instead of matching by file name.
func WithParser(p Parser) FileOption {
	return func(e *fileEntry) {
		e.parser = p
	}
}

// WithEncoding sets the text encoding for one file.
func WithEncoding(enc string) FileOption {
	return func(e *fileEntry) {
		e.encoding = enc
	}
}

// RegisterDefaultFile registers a file loaded before regular files.
func (c *Config) RegisterDefaultFile(path string, opts ...FileOption) {
	c.register(categoryDefault, path, opts)
}

// RegisterFile registers a regular configuration file.
func (c *Config) RegisterFile(path string, opts ...FileOption) {
	c.register(categoryRegular, path, opts)
}

// RegisterFileFromEnv registers a file whose path is read from the
// environment variable envVar at load time. Unset variables are skipped.
func (c *Config) RegisterFileFromEnv(envVar string, opts ...FileOption) {
	c.register(categoryEnvironment, envVar, opts)
}

func (c *Config) register(cat category, locator string, opts []FileOption) {
	e := fileEntry{locator: locator}
	for _, opt := range opts {
		opt(&e)
	}

	c.regMu.Lock()
	defer c.regMu.Unlock()

	if !e.hasWeight {
		e.weight = c.nextWeight(cat)
	}
	c.files[cat] = append(c.files[cat], e)
}

// nextWeight returns one more than the highest weight in cat, or 0.
func (c *Config) nextWeight(cat category) int {
	entries := c.files[cat]
	if len(entries) == 0 {
		return 0
	}
	highest := entries[0].weight
	for _, e := range entries[1:] {
		highest = max(highest, e.weight)
	}
	return highest + 1
}

// RegisterEnvVar binds environment variable name to key: when set at load
// time, its raw string value is written there after all files are merged.
func (c *Config) RegisterEnvVar(name string, key any) {
	c.regMu.Lock()
	defer c.regMu.Unlock()
	c.envVars = append(c.envVars, envBinding{name: name, key: normalizeKey(key)})
}

// SetDefaults shallow-merges m into the baseline merged first on every load.
func (c *Config) SetDefaults(m Mapping) {
	c.regMu.Lock()
	defer c.regMu.Unlock()
	for _, k := range m.Keys() {
		v, _ := m.Value(k)
		c.defaults[k] = copyValue(v)
	}
}

// RegisterParser appends p after the parsers already registered.
func (c *Config) RegisterParser(p Parser) {
	c.regMu.Lock()
	defer c.regMu.Unlock()
	c.parsers = append(c.parsers, p)
}

// SetDefaultEncoding changes the encoding of files registered without one.
func (c *Config) SetDefaultEncoding(enc string) {
	c.regMu.Lock()
	defer c.regMu.Unlock()
	c.encoding = enc
}

// OnLoad registers fn to run after every completed load.
func (c *Config) OnLoad(fn func(*Config)) {
	if fn == nil {
		return
	}
	c.regMu.Lock()
	defer c.regMu.Unlock()
	c.onLoad = append(c.onLoad, fn)
}
