// FILE: lixenwraith/zconfig/accessor.go
package zconfig

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type getOptions struct {
	def         any
	hasDefault  bool
	raw         bool
	required    bool
	loc         *time.Location
	allowMetric bool
}

// GetOption adjusts a single read.
type GetOption func(*getOptions)

// WithDefault returns v when the path is absent, null or blank.
func WithDefault(v any) GetOption {
	return func(o *getOptions) {
		o.def = v
		o.hasDefault = true
	}
}

// Raw skips reference resolution.
func Raw() GetOption {
	return func(o *getOptions) { o.raw = true }
}

// Required fails with ErrKeyNotFound when the path is absent.
func Required() GetOption {
	return func(o *getOptions) { o.required = true }
}

// WithLocation attaches loc to datetimes that carry no zone of their own.
func WithLocation(loc *time.Location) GetOption {
	return func(o *getOptions) { o.loc = loc }
}

// AllowMetric makes kb..eb decimal (1000-based) in byte sizes.
func AllowMetric() GetOption {
	return func(o *getOptions) { o.allowMetric = true }
}

func newGetOptions(opts []GetOption) getOptions {
	var o getOptions
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Get returns the value at key with references in strings resolved.
func (c *Config) Get(key any, opts ...GetOption) (any, error) {
	v, _, err := c.lookup(key, newGetOptions(opts), false)
	return v, err
}

// lookup reads key, optionally turns a blank stored string into nil,
// resolves string references unless raw, and falls back to the default.
// A non-blank value that resolves to "" stays a present empty string.
func (c *Config) lookup(key any, o getOptions, blankToNull bool) (any, string, error) {
	path := normalizeKey(key)
	v, ok := c.store.Get(path)
	if !ok && o.required {
		return nil, path.String(), fmt.Errorf("%w: %s", ErrKeyNotFound, path)
	}

	v = c.prepare(v, o, blankToNull)
	if v == nil && o.hasDefault {
		v = c.prepare(o.def, o, blankToNull)
	}
	return v, path.String(), nil
}

func (c *Config) prepare(v any, o getOptions, blankToNull bool) any {
	s, ok := v.(string)
	if !ok {
		return v
	}
	if blankToNull && s == "" {
		return nil
	}
	if !o.raw {
		s = c.Resolve(s)
	}
	return s
}

// resolveDeep resolves every string inside lists and mappings.
func (c *Config) resolveDeep(v any) any {
	switch x := v.(type) {
	case string:
		return c.Resolve(x)
	case map[string]any:
		for k, e := range x {
			x[k] = c.resolveDeep(e)
		}
		return x
	case []any:
		for i, e := range x {
			x[i] = c.resolveDeep(e)
		}
		return x
	}
	return v
}

// AsString returns the value as a string. Absent values yield "".
func (c *Config) AsString(key any, opts ...GetOption) (string, error) {
	v, path, err := c.lookup(key, newGetOptions(opts), false)
	if err != nil || v == nil {
		return "", err
	}
	return stringify(path, v)
}

// AsInt returns the value as an int64. Floats are truncated.
func (c *Config) AsInt(key any, opts ...GetOption) (int64, error) {
	v, path, err := c.lookup(key, newGetOptions(opts), true)
	if err != nil || v == nil {
		return 0, err
	}
	return toInt(path, v)
}

// AsFloat returns the value as a float64.
func (c *Config) AsFloat(key any, opts ...GetOption) (float64, error) {
	v, path, err := c.lookup(key, newGetOptions(opts), true)
	if err != nil || v == nil {
		return 0, err
	}
	return toFloat(path, v)
}

// AsDecimal returns the value as an exact decimal.
func (c *Config) AsDecimal(key any, opts ...GetOption) (decimal.Decimal, error) {
	v, path, err := c.lookup(key, newGetOptions(opts), true)
	if err != nil || v == nil {
		return decimal.Zero, err
	}
	return toDecimal(path, v)
}

// AsBool returns the truthiness of the value.
func (c *Config) AsBool(key any, opts ...GetOption) (bool, error) {
	v, _, err := c.lookup(key, newGetOptions(opts), false)
	if err != nil {
		return false, err
	}
	return truthy(v), nil
}

// AsDate returns the calendar date of the value at midnight UTC.
// Accepts time values and ISO-8601 date or datetime strings.
func (c *Config) AsDate(key any, opts ...GetOption) (time.Time, error) {
	v, path, err := c.lookup(key, newGetOptions(opts), true)
	if err != nil || v == nil {
		return time.Time{}, err
	}
	return toDate(path, v)
}

// AsDateTime returns the value as a time. Values without a zone are read
// in the WithLocation zone, or UTC.
func (c *Config) AsDateTime(key any, opts ...GetOption) (time.Time, error) {
	o := newGetOptions(opts)
	v, path, err := c.lookup(key, o, true)
	if err != nil || v == nil {
		return time.Time{}, err
	}
	return toDateTime(path, v, o.loc)
}

// AsBytes returns a size in bytes. Strings take a unit suffix (bit, b,
// kib..eib, k..e, kb..eb); numbers are bytes. The result is always a
// float64 so fractional sizes such as "12bit" (1.5) survive; whole sizes
// like "2kib" are exact integral values.
func (c *Config) AsBytes(key any, opts ...GetOption) (float64, error) {
	o := newGetOptions(opts)
	v, path, err := c.lookup(key, o, true)
	if err != nil || v == nil {
		return 0, err
	}
	if s, ok := v.(string); ok {
		n, err := ParseBytes(s, o.allowMetric)
		if err != nil {
			return 0, unitOrCoercion(path, v, "byte size", err)
		}
		return n, nil
	}
	n, err := toFloat(path, v)
	if err != nil {
		return 0, err
	}
	return n, nil
}

// AsDuration returns a duration. Strings take a unit suffix (us, ms, s, m,
// h, d, w); numbers are seconds.
func (c *Config) AsDuration(key any, opts ...GetOption) (time.Duration, error) {
	v, path, err := c.lookup(key, newGetOptions(opts), true)
	if err != nil || v == nil {
		return 0, err
	}
	switch x := v.(type) {
	case time.Duration:
		return x, nil
	case string:
		d, err := ParseDuration(x)
		if err != nil {
			return 0, unitOrCoercion(path, v, "duration", err)
		}
		return d, nil
	}
	n, err := toFloat(path, v)
	if err != nil {
		return 0, err
	}
	d, err := scaleDuration(n, time.Second)
	if err != nil {
		return 0, &CoercionError{Path: path, Value: v, Type: "duration", Err: err}
	}
	return d, nil
}

// AsPath returns the value as a cleaned file system path.
func (c *Config) AsPath(key any, opts ...GetOption) (string, error) {
	v, path, err := c.lookup(key, newGetOptions(opts), true)
	if err != nil || v == nil {
		return "", err
	}
	s, ok := v.(string)
	if !ok {
		return "", &CoercionError{Path: path, Value: v, Type: "path"}
	}
	return filepath.Clean(s), nil
}

// AsList returns a list. A string is split on commas.
func (c *Config) AsList(key any, opts ...GetOption) ([]any, error) {
	o := newGetOptions(opts)
	v, path, err := c.lookup(key, o, true)
	if err != nil || v == nil {
		return nil, err
	}

	var out []any
	switch x := v.(type) {
	case string:
		for _, part := range strings.Split(x, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
		return out, nil
	case []any:
		out = copyValue(x).([]any)
	default:
		rv := reflect.ValueOf(v)
		if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
			return nil, &CoercionError{Path: path, Value: v, Type: "list"}
		}
		out = make([]any, rv.Len())
		for i := range out {
			out[i] = copyValue(rv.Index(i).Interface())
		}
	}
	if !o.raw {
		c.resolveDeep(out)
	}
	return out, nil
}

// AsSet returns the distinct string forms of the list elements.
func (c *Config) AsSet(key any, opts ...GetOption) (map[string]struct{}, error) {
	list, err := c.AsList(key, opts...)
	if err != nil || list == nil {
		return nil, err
	}
	path := normalizeKey(key).String()
	out := make(map[string]struct{}, len(list))
	for _, e := range list {
		s, err := stringify(path, e)
		if err != nil {
			return nil, err
		}
		out[s] = struct{}{}
	}
	return out, nil
}

// AsDict returns a private copy of a mapping.
func (c *Config) AsDict(key any, opts ...GetOption) (map[string]any, error) {
	o := newGetOptions(opts)
	v, path, err := c.lookup(key, o, true)
	if err != nil || v == nil {
		return nil, err
	}
	if _, ok := asMapping(v); !ok {
		return nil, &CoercionError{Path: path, Value: v, Type: "dict"}
	}
	out := copyValue(v).(map[string]any)
	if !o.raw {
		c.resolveDeep(out)
	}
	return out, nil
}

func unitOrCoercion(path string, v any, typ string, err error) error {
	if _, ok := err.(*UnitError); ok {
		return err
	}
	return &CoercionError{Path: path, Value: v, Type: typ, Err: err}
}

func stringify(path string, val any) (string, error) {
	switch v := val.(type) {
	case string:
		return v, nil
	case json.Number:
		return v.String(), nil
	case decimal.Decimal:
		return v.String(), nil
	case time.Time:
		return v.Format(time.RFC3339Nano), nil
	case fmt.Stringer:
		return v.String(), nil
	case []byte:
		return string(v), nil
	case bool:
		return strconv.FormatBool(v), nil
	case error:
		return v.Error(), nil
	}

	rv := reflect.ValueOf(val)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(rv.Uint(), 10), nil
	case reflect.Float32, reflect.Float64:
		return strconv.FormatFloat(rv.Float(), 'f', -1, 64), nil
	case reflect.Map, reflect.Slice:
		return fmt.Sprint(val), nil
	}
	return "", &CoercionError{Path: path, Value: val, Type: "string"}
}

func toInt(path string, val any) (int64, error) {
	switch v := val.(type) {
	case bool:
		if v {
			return 1, nil
		}
		return 0, nil
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return i, nil
		}
		f, err := v.Float64()
		if err != nil {
			return 0, &CoercionError{Path: path, Value: val, Type: "int", Err: err}
		}
		return int64(f), nil
	case decimal.Decimal:
		return v.IntPart(), nil
	case string:
		i, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return 0, &CoercionError{Path: path, Value: val, Type: "int", Err: err}
		}
		return i, nil
	}

	rv := reflect.ValueOf(val)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int(), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		u := rv.Uint()
		maxInt64 := uint64(^uint64(0) >> 1)
		if u > maxInt64 {
			return 0, &CoercionError{Path: path, Value: val, Type: "int", Err: strconv.ErrRange}
		}
		return int64(u), nil
	case reflect.Float32, reflect.Float64:
		return int64(rv.Float()), nil
	}
	return 0, &CoercionError{Path: path, Value: val, Type: "int"}
}

func toFloat(path string, val any) (float64, error) {
	switch v := val.(type) {
	case bool:
		if v {
			return 1, nil
		}
		return 0, nil
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return 0, &CoercionError{Path: path, Value: val, Type: "float", Err: err}
		}
		return f, nil
	case decimal.Decimal:
		f, _ := v.Float64()
		return f, nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, &CoercionError{Path: path, Value: val, Type: "float", Err: err}
		}
		return f, nil
	}

	rv := reflect.ValueOf(val)
	switch rv.Kind() {
	case reflect.Float32, reflect.Float64:
		return rv.Float(), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), nil
	}
	return 0, &CoercionError{Path: path, Value: val, Type: "float"}
}

func toDecimal(path string, val any) (decimal.Decimal, error) {
	switch v := val.(type) {
	case decimal.Decimal:
		return v, nil
	case bool:
		if v {
			return decimal.NewFromInt(1), nil
		}
		return decimal.Zero, nil
	case json.Number:
		d, err := decimal.NewFromString(v.String())
		if err != nil {
			return decimal.Zero, &CoercionError{Path: path, Value: val, Type: "decimal", Err: err}
		}
		return d, nil
	case string:
		d, err := decimal.NewFromString(strings.TrimSpace(v))
		if err != nil {
			return decimal.Zero, &CoercionError{Path: path, Value: val, Type: "decimal", Err: err}
		}
		return d, nil
	}

	rv := reflect.ValueOf(val)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return decimal.NewFromInt(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return decimal.RequireFromString(strconv.FormatUint(rv.Uint(), 10)), nil
	case reflect.Float32, reflect.Float64:
		return decimal.NewFromFloat(rv.Float()), nil
	}
	return decimal.Zero, &CoercionError{Path: path, Value: val, Type: "decimal"}
}

// falseWords are strings read as false in addition to the empty string.
var falseWords = map[string]bool{"false": true, "0": true, "no": true, "off": true}

// truthy reports whether v counts as set: zero numbers, empty strings and
// collections, nil and the words in falseWords are false.
func truthy(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case string:
		return x != "" && !falseWords[strings.ToLower(strings.TrimSpace(x))]
	case json.Number:
		f, err := x.Float64()
		return err != nil || f != 0
	case decimal.Decimal:
		return !x.IsZero()
	case time.Time, time.Duration:
		return true
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int() != 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return rv.Uint() != 0
	case reflect.Float32, reflect.Float64:
		return rv.Float() != 0
	case reflect.Slice, reflect.Map, reflect.Array, reflect.Chan:
		return rv.Len() > 0
	case reflect.Pointer, reflect.Interface:
		return !rv.IsNil()
	}
	return true
}

// Zones BurntSushi/toml assigns to values written without an offset.
var naiveZones = map[string]bool{"datetime-local": true, "date-local": true, "time-local": true}

var dateTimeLayouts = []struct {
	layout string
	zoned  bool
}{
	{time.RFC3339Nano, true},
	{"2006-01-02 15:04:05Z07:00", true},
	{"2006-01-02T15:04Z07:00", true},
	{"2006-01-02T15:04:05", false},
	{"2006-01-02 15:04:05", false},
	{"2006-01-02T15:04", false},
	{"2006-01-02 15:04", false},
	{time.DateOnly, false},
}

// parseISO parses an ISO-8601 date or datetime and reports whether it
// carried a zone.
func parseISO(s string) (time.Time, bool, error) {
	var firstErr error
	for _, l := range dateTimeLayouts {
		t, err := time.Parse(l.layout, s)
		if err == nil {
			return t, l.zoned, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return time.Time{}, false, firstErr
}

func dateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func toDate(path string, val any) (time.Time, error) {
	switch v := val.(type) {
	case time.Time:
		return dateOf(v), nil
	case string:
		s := strings.TrimSpace(v)
		if t, err := time.Parse(time.DateOnly, s); err == nil {
			return t, nil
		}
		t, _, err := parseISO(s)
		if err != nil {
			return time.Time{}, &CoercionError{Path: path, Value: val, Type: "date", Err: err}
		}
		return dateOf(t), nil
	}
	return time.Time{}, &CoercionError{Path: path, Value: val, Type: "date"}
}

// inZone re-reads the wall clock of t in loc, or UTC when loc is nil.
func inZone(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	y, mo, d := t.Date()
	h, mi, s := t.Clock()
	return time.Date(y, mo, d, h, mi, s, t.Nanosecond(), loc)
}

func toDateTime(path string, val any, loc *time.Location) (time.Time, error) {
	switch v := val.(type) {
	case time.Time:
		if naiveZones[v.Location().String()] {
			return inZone(v, loc), nil
		}
		return v, nil
	case string:
		t, zoned, err := parseISO(strings.TrimSpace(v))
		if err != nil {
			return time.Time{}, &CoercionError{Path: path, Value: val, Type: "datetime", Err: err}
		}
		if !zoned {
			return inZone(t, loc), nil
		}
		return t, nil
	}
	return time.Time{}, &CoercionError{Path: path, Value: val, Type: "datetime"}
}
