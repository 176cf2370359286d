// FILE: lixenwraith/zconfig/print.go
package zconfig

import (
	"fmt"
	"io"
	"net/url"
	"reflect"
	"strings"
)

const printIndent = "  "

// Print writes the loaded files and the value tree to w. Values at the
// obfuscate paths are replaced by asterisks, and passwords embedded in
// URLs are masked everywhere.
func (c *Config) Print(w io.Writer, obfuscate ...any) error {
	hidden := make(map[string]bool, len(obfuscate))
	for _, key := range obfuscate {
		hidden[normalizeKey(key).String()] = true
	}

	p := &printer{w: w, hidden: hidden}
	p.line("----- Loaded Files -----")
	for _, f := range c.LoadedFiles() {
		p.line("%s", f)
	}
	p.line("----- Configuration Values -----")
	p.mapping(c.store.Snapshot(), nil, 1)
	return p.err
}

type printer struct {
	w      io.Writer
	hidden map[string]bool
	err    error
}

func (p *printer) line(format string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format+"\n", args...)
}

func (p *printer) mapping(m map[string]any, parent Path, level int) {
	indent := strings.Repeat(printIndent, level)
	for _, key := range Map(m).Keys() {
		path := append(append(Path{}, parent...), key)
		val := m[key]

		if p.hidden[path.String()] {
			s, _ := stringify(path.String(), val)
			p.line("%s%s: %s", indent, key, strings.Repeat("*", len(s)))
			continue
		}

		if sub, ok := val.(map[string]any); ok {
			p.line("%s%s:", indent, key)
			p.mapping(sub, path, level+1)
			continue
		}

		rv := reflect.ValueOf(val)
		if val != nil && (rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array) {
			p.line("%s%s:", indent, key)
			for i := 0; i < rv.Len(); i++ {
				p.line("%s%s- %s", indent, printIndent, maskURL(rv.Index(i).Interface()))
			}
			continue
		}

		p.line("%s%s: %s", indent, key, maskURL(val))
	}
}

// maskURL replaces the password of a URL-shaped string with asterisks.
func maskURL(v any) string {
	s, ok := v.(string)
	if !ok {
		return fmt.Sprint(v)
	}
	if !strings.Contains(s, "://") {
		return s
	}
	u, err := url.Parse(s)
	if err != nil || u.User == nil {
		return s
	}
	pass, ok := u.User.Password()
	if !ok {
		return s
	}
	u.User = url.UserPassword(u.User.Username(), strings.Repeat("*", len(pass)))
	// String would escape the asterisks.
	return strings.Replace(u.String(), url.QueryEscape(strings.Repeat("*", len(pass))), strings.Repeat("*", len(pass)), 1)
}
