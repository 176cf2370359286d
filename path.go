// FILE: lixenwraith/zconfig/path.go
package zconfig

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// Path is a key sequence whose segments are used as-is.
type Path []string

// Literal is a single key segment that is never split on dots.
type Literal string

// String joins the segments with dots.
func (p Path) String() string {
	return strings.Join(p, ".")
}

// P builds a Path from any mix of keys accepted by the store.
func P(keys ...any) Path {
	return normalizeKey(keys)
}

// normalizeKey flattens a key argument into ordered segments.
// Strings are split on dots, Literal and Path segments are kept whole,
// integers become their decimal form and slices are flattened in order.
func normalizeKey(key any) Path {
	var out Path
	appendKey(&out, key)
	return out
}

func appendKey(out *Path, key any) {
	switch k := key.(type) {
	case nil:
		return
	case Path:
		*out = append(*out, k...)
	case Literal:
		*out = append(*out, string(k))
	case string:
		if k == "" {
			return
		}
		*out = append(*out, strings.Split(k, ".")...)
	case []string:
		for _, s := range k {
			appendKey(out, s)
		}
	case []any:
		for _, s := range k {
			appendKey(out, s)
		}
	case int:
		*out = append(*out, strconv.Itoa(k))
	case int64:
		*out = append(*out, strconv.FormatInt(k, 10))
	case uint64:
		*out = append(*out, strconv.FormatUint(k, 10))
	default:
		v := reflect.ValueOf(key)
		switch v.Kind() {
		case reflect.Int8, reflect.Int16, reflect.Int32:
			*out = append(*out, strconv.FormatInt(v.Int(), 10))
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32:
			*out = append(*out, strconv.FormatUint(v.Uint(), 10))
		case reflect.Slice, reflect.Array:
			for i := 0; i < v.Len(); i++ {
				appendKey(out, v.Index(i).Interface())
			}
		default:
			*out = append(*out, fmt.Sprint(key))
		}
	}
}

// mapKey converts a map key produced by a parser into a store key.
func mapKey(k any) string {
	switch v := k.(type) {
	case string:
		return v
	case int:
		return strconv.Itoa(v)
	default:
		return fmt.Sprint(k)
	}
}
