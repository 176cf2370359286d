// FILE: lixenwraith/zconfig/doc.go

// Package zconfig provides layered application configuration for Go programs.
// Files in several formats, environment variables and secret stores are merged
// into one thread-safe nested Store, and typed accessors read from it.
//
// Features:
//   - TOML, YAML, JSON, INI and CFG files, plus custom parsers
//   - Default, regular and environment-named files merged in weight order
//   - Direct environment variable and secret bindings applied after files
//   - ${NAME} and ${NAME=default} references resolved on read
//   - Typed accessors with byte-size and duration units
//   - Lazy references that follow reloads
//   - Builder pattern for easy initialization
//   - Thread-safe operations using sync.RWMutex
//
// Quick Start:
//
//	cfg, err := zconfig.NewBuilder().
//	    WithDefaults(zconfig.Map{"server": zconfig.Map{"port": 8080}}).
//	    WithDefaultFile("/etc/myapp/config.toml").
//	    WithFile("~/.myapp.yaml").
//	    WithEnvFile("MYAPP_CONFIG").
//	    WithEnvVar("MYAPP_PORT", "server.port").
//	    Build()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	port, _ := cfg.AsInt("server.port")
//	timeout, _ := cfg.AsDuration("server.timeout", zconfig.WithDefault("30s"))
//	dsn := cfg.StringRef("database.dsn")
//
// Precedence (highest to lowest):
//  1. Secrets registered with RegisterSecret
//  2. Environment variables registered with RegisterEnvVar
//  3. Files named by environment variables
//  4. Regular files
//  5. Default files
//  6. Values passed to SetDefaults
//
// Within one file category, files with a higher weight win.
//
// Paths:
// Keys accept a dotted string ("server.port"), a Path (used as-is), a
// Literal (one segment that may contain dots) or integers, which are stored
// as their decimal string.
//
// References:
// String values may embed ${NAME} or ${NAME=default}. NAME is looked up in
// the environment as given, then in lower case, then in upper case, and
// finally among registered secret references. "$$" is a literal "$" and a
// backslash inside a reference escapes the next character.
//
// Thread Safety:
// All operations are thread-safe. A reload builds a new tree and swaps it in
// at once, so readers see either the old or the new values.
package zconfig
