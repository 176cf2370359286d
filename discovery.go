// FILE: lixenwraith/zconfig/discovery.go
package zconfig

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// FileDiscoveryOptions configures automatic config file discovery
type FileDiscoveryOptions struct {
	// Base name of config file (without extension)
	Name string

	// Extensions to try (in order)
	Extensions []string

	// Custom search paths (in addition to defaults), most specific first
	Paths []string

	// Environment variable to check for explicit path
	EnvVar string

	// CLI flag to check (e.g., "--config" or "-c")
	CLIFlag string

	// Whether to search in XDG config directories
	UseXDG bool

	// Whether to search in current directory
	UseCurrentDir bool
}

// DefaultDiscoveryOptions returns sensible defaults
func DefaultDiscoveryOptions(appName string) FileDiscoveryOptions {
	return FileDiscoveryOptions{
		Name:          appName,
		Extensions:    []string{".toml", ".yaml", ".yml", ".json", ".ini", ".cfg"},
		EnvVar:        strings.ToUpper(appName) + "_CONFIG",
		CLIFlag:       "--config",
		UseXDG:        true,
		UseCurrentDir: true,
	}
}

// WithFileDiscovery registers the files found by opts. An explicit path from
// the CLI flag or environment variable becomes a regular file; files found
// in the search paths become default files, the most specific merged last.
// Environment variables are read through the Config's lookup function.
func (b *Builder) WithFileDiscovery(opts FileDiscoveryOptions) *Builder {
	return b.WithConfigurer(func(c *Config) error {
		if path := explicitConfigPath(opts, b.args, c.lookupEnv); path != "" {
			c.RegisterFile(path)
			return nil
		}
		c.RegisterDiscovered(opts)
		return nil
	})
}

// RegisterDiscovered registers every file found in the search paths as a
// default file, lowest priority first.
func (c *Config) RegisterDiscovered(opts FileDiscoveryOptions) {
	found := discoverFiles(opts, c.lookupEnv)
	slices.Reverse(found)
	for _, path := range found {
		c.RegisterDefaultFile(path)
	}
}

// DiscoverFiles returns the existing config files in the search paths,
// highest priority first. No file found is not an error.
func DiscoverFiles(opts FileDiscoveryOptions) []string {
	return discoverFiles(opts, os.LookupEnv)
}

func discoverFiles(opts FileDiscoveryOptions, lookupEnv func(string) (string, bool)) []string {
	var searchPaths []string

	searchPaths = append(searchPaths, opts.Paths...)

	if opts.UseCurrentDir {
		if cwd, err := os.Getwd(); err == nil {
			searchPaths = append(searchPaths, cwd)
		}
	}

	if opts.UseXDG {
		searchPaths = append(searchPaths, getXDGConfigPaths(opts.Name, lookupEnv)...)
	}

	var found []string
	seen := make(map[string]bool)
	for _, dir := range searchPaths {
		for _, ext := range opts.Extensions {
			path := filepath.Join(dir, opts.Name+ext)
			if seen[path] {
				continue
			}
			if info, err := os.Stat(path); err == nil && !info.IsDir() {
				seen[path] = true
				found = append(found, path)
			}
		}
	}
	return found
}

// explicitConfigPath checks the CLI flag first, then the environment variable.
func explicitConfigPath(opts FileDiscoveryOptions, args []string, lookupEnv func(string) (string, bool)) string {
	if opts.CLIFlag != "" {
		for i, arg := range args {
			if arg == opts.CLIFlag && i+1 < len(args) {
				return args[i+1]
			}
			if strings.HasPrefix(arg, opts.CLIFlag+"=") {
				return strings.TrimPrefix(arg, opts.CLIFlag+"=")
			}
		}
	}

	if opts.EnvVar != "" {
		if path := getenv(lookupEnv, opts.EnvVar); path != "" {
			return path
		}
	}
	return ""
}

// getXDGConfigPaths returns XDG-compliant config search paths
func getXDGConfigPaths(appName string, lookupEnv func(string) (string, bool)) []string {
	var paths []string

	// XDG_CONFIG_HOME
	if xdgHome := getenv(lookupEnv, "XDG_CONFIG_HOME"); xdgHome != "" {
		paths = append(paths, filepath.Join(xdgHome, appName))
	} else if home := getenv(lookupEnv, "HOME"); home != "" {
		paths = append(paths, filepath.Join(home, ".config", appName))
	}

	// XDG_CONFIG_DIRS
	if xdgDirs := getenv(lookupEnv, "XDG_CONFIG_DIRS"); xdgDirs != "" {
		for _, dir := range filepath.SplitList(xdgDirs) {
			paths = append(paths, filepath.Join(dir, appName))
		}
	} else {
		// Default system paths
		paths = append(paths,
			filepath.Join("/etc/xdg", appName),
			filepath.Join("/etc", appName),
		)
	}

	return paths
}

// getenv returns the value of name, or "" when unset.
func getenv(lookupEnv func(string) (string, bool), name string) string {
	v, _ := lookupEnv(name)
	return v
}
