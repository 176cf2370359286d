// FILE: lixenwraith/zconfig/resolve.go
package zconfig

import (
	"os"
	"strings"
)

type scanState int

const (
	stateBuffering scanState = iota
	stateOpeningRef
	stateInRef
	stateEscapingInRef
)

// Resolver expands ${name} and ${name=default} references in strings.
//
// A pair of dollar signs collapses to one literal dollar sign, so $${X}
// yields ${X} and $$${X} yields a dollar sign followed by the value of X.
// Inside a reference a backslash takes the next character literally,
// which is how a closing brace can be part of a name. An unterminated
// reference is kept as literal text.
type Resolver struct {
	// LookupEnv defaults to os.LookupEnv.
	LookupEnv func(name string) (string, bool)
	// LookupSecret is consulted when no environment variable matches.
	LookupSecret func(name string) (string, bool)
}

// Resolve returns value with every reference replaced.
func (r Resolver) Resolve(value string) string {
	if !strings.ContainsRune(value, '$') {
		return value
	}

	var out, name strings.Builder
	out.Grow(len(value))
	state := stateBuffering

	for _, ch := range value {
		switch state {
		case stateBuffering:
			if ch == '$' {
				state = stateOpeningRef
			} else {
				out.WriteRune(ch)
			}
		case stateOpeningRef:
			switch ch {
			case '$':
				out.WriteByte('$')
				state = stateBuffering
			case '{':
				name.Reset()
				state = stateInRef
			default:
				out.WriteByte('$')
				out.WriteRune(ch)
				state = stateBuffering
			}
		case stateInRef:
			switch ch {
			case '\\':
				state = stateEscapingInRef
			case '}':
				out.WriteString(r.lookup(name.String()))
				state = stateBuffering
			default:
				name.WriteRune(ch)
			}
		case stateEscapingInRef:
			name.WriteRune(ch)
			state = stateInRef
		}
	}

	switch state {
	case stateOpeningRef:
		out.WriteByte('$')
	case stateInRef, stateEscapingInRef:
		out.WriteString("${")
		out.WriteString(name.String())
	}
	return out.String()
}

// lookup resolves one reference body: exact, lower and upper case
// environment names, then secrets, then the default after the first '='.
func (r Resolver) lookup(ref string) string {
	name, def, _ := strings.Cut(ref, "=")

	env := r.LookupEnv
	if env == nil {
		env = os.LookupEnv
	}
	for _, candidate := range []string{name, strings.ToLower(name), strings.ToUpper(name)} {
		if v, ok := env(candidate); ok {
			return v
		}
	}

	if r.LookupSecret != nil {
		if v, ok := r.LookupSecret(name); ok {
			return v
		}
	}
	return def
}

// ResolveEnv expands references against the process environment only.
func ResolveEnv(value string) string {
	return Resolver{}.Resolve(value)
}
