// FILE: lixenwraith/zconfig/encoding.go
package zconfig

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/encoding/unicode"
)

// DefaultEncoding is used for files registered without an explicit encoding.
const DefaultEncoding = "utf-8"

// encodingAliases maps common non-IANA spellings to IANA names.
var encodingAliases = map[string]string{
	"latin-1": "ISO-8859-1",
	"latin1":  "ISO-8859-1",
	"latin-2": "ISO-8859-2",
	"latin2":  "ISO-8859-2",
	"cp1250":  "windows-1250",
	"cp1251":  "windows-1251",
	"cp1252":  "windows-1252",
	"cp437":   "IBM437",
	"cp850":   "IBM850",
}

func normalizedEncoding(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), "_", "-")
}

// lookupEncoding maps an encoding name to a decoder. UTF-8 and ASCII return nil
// and are validated directly.
func lookupEncoding(name string) (encoding.Encoding, error) {
	switch normalizedEncoding(name) {
	case "", "utf-8", "utf8", "utf-8-sig", "ascii", "us-ascii":
		return nil, nil
	case "utf-16-be", "utf-16be":
		return unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM), nil
	case "utf-16-le", "utf-16le":
		return unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM), nil
	case "utf-16":
		return unicode.UTF16(unicode.BigEndian, unicode.ExpectBOM), nil
	}

	if alias, ok := encodingAliases[normalizedEncoding(name)]; ok {
		name = alias
	}
	enc, err := ianaindex.IANA.Encoding(name)
	if err != nil {
		return nil, fmt.Errorf("unknown encoding %q: %w", name, err)
	}
	if enc == nil {
		return nil, fmt.Errorf("unsupported encoding %q", name)
	}
	return enc, nil
}

// decodeText converts raw file bytes to a string. Bytes that are invalid for
// the encoding fail with ErrDecode instead of being replaced.
func decodeText(data []byte, name string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "ascii", "us-ascii":
		for i, b := range data {
			if b >= utf8.RuneSelf {
				return "", fmt.Errorf("%w: byte 0x%02x at offset %d is not ascii", ErrDecode, b, i)
			}
		}
		return string(data), nil
	}

	enc, err := lookupEncoding(name)
	if err != nil {
		return "", err
	}
	if enc == nil {
		if !utf8.Valid(data) {
			return "", fmt.Errorf("%w: invalid utf-8 sequence", ErrDecode)
		}
		return strings.TrimPrefix(string(data), "\ufeff"), nil
	}

	decoded, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrDecode, err)
	}
	if bytes.ContainsRune(decoded, utf8.RuneError) {
		return "", fmt.Errorf("%w: input is not valid %s", ErrDecode, name)
	}
	return strings.TrimPrefix(string(decoded), "\ufeff"), nil
}

// readText reads a whole file in the given encoding.
func readText(path, enc string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read config file '%s': %w", path, err)
	}
	text, err := decodeText(data, enc)
	if err != nil {
		return "", fmt.Errorf("failed to decode config file '%s' as %s: %w", path, enc, err)
	}
	return text, nil
}
