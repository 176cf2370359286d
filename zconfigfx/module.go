// FILE: lixenwraith/zconfig/zconfigfx/module.go

// Package zconfigfx provides a single loaded *zconfig.Config to an Fx
// application. Other modules contribute sources through the configurers
// value group and formats through the parsers value group.
package zconfigfx

import (
	"fmt"

	"github.com/lixenwraith/zconfig"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	// ConfigurersGroup is the value group collecting zconfig.Configurer.
	ConfigurersGroup = "zconfig.configurers"
	// ParsersGroup is the value group collecting zconfig.Parser.
	ParsersGroup = "zconfig.parsers"
)

// Params are the dependencies of the provided Config.
type Params struct {
	fx.In

	Logger      *zap.Logger          `optional:"true"`
	Configurers []zconfig.Configurer `group:"zconfig.configurers"`
	Parsers     []zconfig.Parser     `group:"zconfig.parsers"`
}

// Module provides *zconfig.Config, loaded once every configurer has run.
// opts are applied when the Config is created.
//
//nolint:ireturn // fx.Option is the standard return type for Fx modules
func Module(opts ...zconfig.Option) fx.Option {
	return fx.Module("zconfig",
		fx.Provide(func(p Params) (*zconfig.Config, error) {
			return New(p, opts...)
		}),
	)
}

// New creates and loads a Config from p.
func New(p Params, opts ...zconfig.Option) (*zconfig.Config, error) {
	if p.Logger != nil {
		opts = append([]zconfig.Option{zconfig.WithLogger(p.Logger)}, opts...)
	}
	cfg := zconfig.New(opts...)

	for _, parser := range p.Parsers {
		cfg.RegisterParser(parser)
	}
	for _, fn := range p.Configurers {
		if fn == nil {
			continue
		}
		if err := fn(cfg); err != nil {
			return nil, fmt.Errorf("configurer failed: %w", err)
		}
	}

	if err := cfg.Init(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Configure adds fn to the configurers group.
//
//nolint:ireturn // fx.Option is the standard return type for Fx modules
func Configure(fn zconfig.Configurer) fx.Option {
	return fx.Provide(fx.Annotate(
		func() zconfig.Configurer { return fn },
		fx.ResultTags(fmt.Sprintf(`group:"%s"`, ConfigurersGroup)),
	))
}

// WithParser adds p to the parsers group.
//
//nolint:ireturn // fx.Option is the standard return type for Fx modules
func WithParser(p zconfig.Parser) fx.Option {
	return fx.Provide(fx.Annotate(
		func() zconfig.Parser { return p },
		fx.ResultTags(fmt.Sprintf(`group:"%s"`, ParsersGroup)),
	))
}

// Section provides *T decoded from the subtree at key.
//
//nolint:ireturn // fx.Option is the standard return type for Fx modules
func Section[T any](key string) fx.Option {
	return fx.Provide(func(cfg *zconfig.Config) (*T, error) {
		target := new(T)
		if err := cfg.Scan(key, target); err != nil {
			return nil, fmt.Errorf("config section %q: %w", key, err)
		}
		return target, nil
	})
}
