// FILE: lixenwraith/zconfig/cmd/zconfig/main.go

// Command zconfig loads configuration sources and prints the merged result.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/kingpin/v2"
	"go.uber.org/zap"

	"github.com/lixenwraith/zconfig"
	"github.com/lixenwraith/zconfig/dbsource"
	"github.com/lixenwraith/zconfig/keyring"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "zconfig:", err)
		os.Exit(1)
	}
}

type options struct {
	defaultFiles   []string
	files          []string
	envFiles       []string
	encoding       string
	keyringService string
	verbose        bool
}

func run(args []string, out io.Writer) error {
	app := kingpin.New("zconfig", "Load layered configuration files and print the result")
	app.Writer(out)

	var opts options
	app.Flag("default", "Default configuration file (repeatable)").Short('d').StringsVar(&opts.defaultFiles)
	app.Flag("env-file", "Environment variable naming a configuration file (repeatable)").StringsVar(&opts.envFiles)
	app.Flag("encoding", "Text encoding of configuration files").Default(zconfig.DefaultEncoding).StringVar(&opts.encoding)
	app.Flag("keyring-service", "Default keyring service for the keyring secret provider").StringVar(&opts.keyringService)
	app.Flag("verbose", "Log load diagnostics to stderr").Short('v').BoolVar(&opts.verbose)

	printCmd := app.Command("print", "Print loaded files and values").Default()
	obfuscate := printCmd.Flag("obfuscate", "Key path whose value is masked (repeatable)").Short('o').Strings()
	printCmd.Arg("files", "Configuration files, lowest precedence first").StringsVar(&opts.files)

	dumpCmd := app.Command("dump", "Print the merged values as TOML")
	dumpCmd.Arg("files", "Configuration files, lowest precedence first").StringsVar(&opts.files)

	getCmd := app.Command("get", "Print a single value")
	getKey := getCmd.Arg("key", "Dotted key path").Required().String()
	getType := getCmd.Flag("type", "Accessor used to read the value").Default("string").
		Enum("string", "int", "float", "decimal", "bool", "date", "datetime", "bytes", "duration", "path", "list", "dict")
	getCmd.Arg("files", "Configuration files, lowest precedence first").StringsVar(&opts.files)

	command, err := app.Parse(args)
	if err != nil {
		return err
	}

	cfg, err := load(opts)
	if err != nil {
		return err
	}

	switch command {
	case printCmd.FullCommand():
		keys := make([]any, len(*obfuscate))
		for i, k := range *obfuscate {
			keys[i] = k
		}
		return cfg.Print(out, keys...)
	case dumpCmd.FullCommand():
		return cfg.Dump(out)
	case getCmd.FullCommand():
		v, err := get(cfg, *getKey, *getType)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(out, v)
		return err
	}
	return nil
}

func load(opts options) (*zconfig.Config, error) {
	logger := zap.NewNop()
	if opts.verbose {
		var err error
		if logger, err = zap.NewDevelopment(); err != nil {
			return nil, fmt.Errorf("create logger: %w", err)
		}
		defer func() { _ = logger.Sync() }()
	}

	b := zconfig.NewBuilder().
		WithLogger(logger).
		WithEncoding(opts.encoding).
		WithParser(dbsource.New()).
		WithSecretProvider(keyring.Name, keyring.New(opts.keyringService))
	for _, f := range opts.defaultFiles {
		b.WithDefaultFile(f)
	}
	for _, f := range opts.files {
		b.WithFile(f)
	}
	for _, v := range opts.envFiles {
		b.WithEnvFile(v)
	}
	return b.Build()
}

func get(cfg *zconfig.Config, key, typ string) (any, error) {
	opt := zconfig.Required()
	switch typ {
	case "int":
		return cfg.AsInt(key, opt)
	case "float":
		return cfg.AsFloat(key, opt)
	case "decimal":
		return cfg.AsDecimal(key, opt)
	case "bool":
		return cfg.AsBool(key, opt)
	case "date":
		d, err := cfg.AsDate(key, opt)
		return d.Format("2006-01-02"), err
	case "datetime":
		return cfg.AsDateTime(key, opt)
	case "bytes":
		return cfg.AsBytes(key, opt)
	case "duration":
		return cfg.AsDuration(key, opt)
	case "path":
		return cfg.AsPath(key, opt)
	case "list":
		return cfg.AsList(key, opt)
	case "dict":
		return cfg.AsDict(key, opt)
	}
	return cfg.AsString(key, opt)
}
