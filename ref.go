// FILE: lixenwraith/zconfig/ref.go
package zconfig

import (
	"fmt"
	"reflect"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// Ref is a lazily computed typed view of one configuration path. The value
// is recomputed on the first read after a load bumps the generation.
type Ref[T any] struct {
	cfg     *Config
	compute func() (T, error)

	mu    sync.Mutex
	valid bool
	gen   uint64
	value T
	err   error
}

// NewRef wraps an accessor call. fn runs again whenever the Config has
// completed a load since the previous read.
func NewRef[T any](c *Config, fn func(c *Config) (T, error)) *Ref[T] {
	return &Ref[T]{
		cfg:     c,
		compute: func() (T, error) { return fn(c) },
	}
}

// Get returns the current value and the error, if any, from computing it.
func (r *Ref[T]) Get() (T, error) {
	gen := r.cfg.Generation()

	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.valid || r.gen != gen {
		r.value, r.err = r.compute()
		r.gen = gen
		r.valid = true
	}
	return r.value, r.err
}

// Value returns the current value, or the zero value when it cannot be
// computed.
func (r *Ref[T]) Value() T {
	v, err := r.Get()
	if err != nil {
		var zero T
		return zero
	}
	return v
}

// Equal compares the current value with v.
func (r *Ref[T]) Equal(v T) bool {
	cur := r.Value()
	if a, ok := any(cur).(time.Time); ok {
		if b, ok := any(v).(time.Time); ok {
			return a.Equal(b)
		}
	}
	if a, ok := any(cur).(decimal.Decimal); ok {
		if b, ok := any(v).(decimal.Decimal); ok {
			return a.Equal(b)
		}
	}
	return reflect.DeepEqual(cur, v)
}

// Truthy reports the truthiness of the current value.
func (r *Ref[T]) Truthy() bool {
	return truthy(r.Value())
}

func (r *Ref[T]) String() string {
	return fmt.Sprint(r.Value())
}

func refOf[T any](c *Config, fn func(*Config, any, ...GetOption) (T, error), key any, opts []GetOption) *Ref[T] {
	return NewRef(c, func(c *Config) (T, error) { return fn(c, key, opts...) })
}

// StringRef returns a lazy AsString.
func (c *Config) StringRef(key any, opts ...GetOption) *Ref[string] {
	return refOf(c, (*Config).AsString, key, opts)
}

// IntRef returns a lazy AsInt.
func (c *Config) IntRef(key any, opts ...GetOption) *Ref[int64] {
	return refOf(c, (*Config).AsInt, key, opts)
}

// FloatRef returns a lazy AsFloat.
func (c *Config) FloatRef(key any, opts ...GetOption) *Ref[float64] {
	return refOf(c, (*Config).AsFloat, key, opts)
}

// DecimalRef returns a lazy AsDecimal.
func (c *Config) DecimalRef(key any, opts ...GetOption) *Ref[decimal.Decimal] {
	return refOf(c, (*Config).AsDecimal, key, opts)
}

// BoolRef returns a lazy AsBool.
func (c *Config) BoolRef(key any, opts ...GetOption) *Ref[bool] {
	return refOf(c, (*Config).AsBool, key, opts)
}

// DateRef returns a lazy AsDate.
func (c *Config) DateRef(key any, opts ...GetOption) *Ref[time.Time] {
	return refOf(c, (*Config).AsDate, key, opts)
}

// DateTimeRef returns a lazy AsDateTime.
func (c *Config) DateTimeRef(key any, opts ...GetOption) *Ref[time.Time] {
	return refOf(c, (*Config).AsDateTime, key, opts)
}

// BytesRef returns a lazy AsBytes.
func (c *Config) BytesRef(key any, opts ...GetOption) *Ref[float64] {
	return refOf(c, (*Config).AsBytes, key, opts)
}

// DurationRef returns a lazy AsDuration.
func (c *Config) DurationRef(key any, opts ...GetOption) *Ref[time.Duration] {
	return refOf(c, (*Config).AsDuration, key, opts)
}

// PathRef returns a lazy AsPath.
func (c *Config) PathRef(key any, opts ...GetOption) *Ref[string] {
	return refOf(c, (*Config).AsPath, key, opts)
}

// ListRef returns a lazy AsList.
func (c *Config) ListRef(key any, opts ...GetOption) *Ref[[]any] {
	return refOf(c, (*Config).AsList, key, opts)
}

// SetRef returns a lazy AsSet.
func (c *Config) SetRef(key any, opts ...GetOption) *Ref[map[string]struct{}] {
	return refOf(c, (*Config).AsSet, key, opts)
}

// DictRef returns a lazy AsDict.
func (c *Config) DictRef(key any, opts ...GetOption) *Ref[map[string]any] {
	return refOf(c, (*Config).AsDict, key, opts)
}
