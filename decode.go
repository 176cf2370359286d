// FILE: lixenwraith/zconfig/decode.go
package zconfig

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"reflect"
	"strconv"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/shopspring/decimal"
)

// DefaultTagName is the struct tag read by Scan.
const DefaultTagName = "toml"

// Scan decodes the subtree at key into target, which must be a non-nil
// pointer. An empty key decodes the whole tree. String values have their
// references resolved before conversion.
func (c *Config) Scan(key any, target any) error {
	rv := reflect.ValueOf(target)
	if rv.Kind() != reflect.Ptr || rv.IsNil() {
		return fmt.Errorf("scan target must be non-nil pointer, got %T", target)
	}

	path := normalizeKey(key)
	var section any
	if len(path) == 0 {
		section = c.store.Snapshot()
	} else {
		v, ok := c.store.Get(path)
		if !ok {
			return fmt.Errorf("%w: %s", ErrKeyNotFound, path)
		}
		section = v
	}

	sectionMap, ok := section.(map[string]any)
	if !ok {
		return fmt.Errorf("path %q refers to non-map value (type %T)", path, section)
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           target,
		TagName:          DefaultTagName,
		WeaklyTypedInput: true,
		DecodeHook:       c.decodeHook(),
		Metadata:         nil,
	})
	if err != nil {
		return fmt.Errorf("decoder creation failed: %w", err)
	}

	if err := decoder.Decode(sectionMap); err != nil {
		return fmt.Errorf("decode failed for path %q: %w", path, err)
	}
	return nil
}

// decodeHook resolves references first so every later hook sees final text.
func (c *Config) decodeHook() mapstructure.DecodeHookFunc {
	return mapstructure.ComposeDecodeHookFunc(
		c.resolveHookFunc(),

		stringToNetIPHookFunc(),
		stringToURLHookFunc(),
		durationHookFunc(),
		timeHookFunc(),
		decimalHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	)
}

func (c *Config) resolveHookFunc() mapstructure.DecodeHookFunc {
	return func(f reflect.Type, t reflect.Type, data any) (any, error) {
		if f.Kind() != reflect.String {
			return data, nil
		}
		s, ok := data.(string)
		if !ok {
			return data, nil
		}
		return c.Resolve(s), nil
	}
}

func stringToNetIPHookFunc() mapstructure.DecodeHookFunc {
	return func(f reflect.Type, t reflect.Type, data any) (any, error) {
		if f.Kind() != reflect.String || t != reflect.TypeOf(net.IP{}) {
			return data, nil
		}

		str := data.(string)
		if len(str) > 45 { // Max IPv6 length
			return nil, fmt.Errorf("invalid IP length: %d", len(str))
		}
		ip := net.ParseIP(str)
		if ip == nil {
			return nil, fmt.Errorf("invalid IP address: %s", str)
		}
		return ip, nil
	}
}

func stringToURLHookFunc() mapstructure.DecodeHookFunc {
	return func(f reflect.Type, t reflect.Type, data any) (any, error) {
		if f.Kind() != reflect.String {
			return data, nil
		}
		isPtr := t.Kind() == reflect.Ptr
		targetType := t
		if isPtr {
			targetType = t.Elem()
		}
		if targetType != reflect.TypeOf(url.URL{}) {
			return data, nil
		}

		u, err := url.Parse(data.(string))
		if err != nil {
			return nil, fmt.Errorf("invalid URL: %w", err)
		}
		if isPtr {
			return u, nil
		}
		return *u, nil
	}
}

// durationHookFunc accepts the unit suffixes of ParseDuration as well as
// time.ParseDuration syntax. Numbers are seconds.
func durationHookFunc() mapstructure.DecodeHookFunc {
	return func(f reflect.Type, t reflect.Type, data any) (any, error) {
		if t != reflect.TypeOf(time.Duration(0)) {
			return data, nil
		}
		switch v := data.(type) {
		case string:
			d, err := ParseDuration(v)
			if err == nil {
				return d, nil
			}
			if errors.Is(err, strconv.ErrRange) {
				return nil, err
			}
			return time.ParseDuration(v)
		case time.Duration:
			return v, nil
		}
		n, err := toFloat("", data)
		if err != nil {
			return data, nil
		}
		return scaleDuration(n, time.Second)
	}
}

func timeHookFunc() mapstructure.DecodeHookFunc {
	return func(f reflect.Type, t reflect.Type, data any) (any, error) {
		if t != reflect.TypeOf(time.Time{}) {
			return data, nil
		}
		return toDateTime("", data, nil)
	}
}

func decimalHookFunc() mapstructure.DecodeHookFunc {
	return func(f reflect.Type, t reflect.Type, data any) (any, error) {
		if t != reflect.TypeOf(decimal.Decimal{}) {
			return data, nil
		}
		return toDecimal("", data)
	}
}
