// FILE: lixenwraith/zconfig/resolve_test.go
package zconfig

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func mapEnv(vars map[string]string) func(string) (string, bool) {
	return func(name string) (string, bool) {
		v, ok := vars[name]
		return v, ok
	}
}

// TestResolverReferences tests the reference grammar
func TestResolverReferences(t *testing.T) {
	r := Resolver{LookupEnv: mapEnv(map[string]string{
		"VAR_NAME":  "var",
		"lower_var": "var2",
		"${INNER}":  "inner",
		"}end":      "end",
		"X":         "x",
	})}

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"NoReference", "plain value", "plain value"},
		{"SimpleReplace", "${VAR_NAME}", "var"},
		{"EscapedReference", "$${VAR_NAME}", "${VAR_NAME}"},
		{"DoubleEscapeThenReference", "$$$$${VAR_NAME}", "$$var"},
		{"DoubleEscape", "$$$${VAR_NAME}", "$${VAR_NAME}"},
		{"EscapeThenReference", "$$${X}", "$x"},
		{"DefaultUsed", "${VAR_NAME_2=test}", "test"},
		{"DefaultIgnored", "${VAR_NAME=test}", "var"},
		{"DefaultWithEquals", "${MISSING=a=b}", "a=b"},
		{"MissingNoDefault", "[${MISSING}]", "[]"},
		{"Unterminated", "${VAR_NAME_NO_END", "${VAR_NAME_NO_END"},
		{"TrailingDollar", "cost$", "cost$"},
		{"LoneDollar", "a $ b", "a $ b"},
		{"Suffix", "${VAR_NAME} VAR_NAME", "var VAR_NAME"},
		{"Prefix", "VAR_NAME  ${VAR_NAME}", "VAR_NAME  var"},
		{"Middle", "VN ${VAR_NAME} VN", "VN var VN"},
		{"LowerCaseFallback", "${LOWER_VAR}", "var2"},
		{"UpperCaseFallback", "${var_name}", "var"},
		{"EscapedBraceInName", `${\}end}`, "end"},
		{"NestedLookingName", `${${INNER\}}`, "inner"},
		{"EscapedBraceWithDefault", `${\}end2=bar}`, "bar"},
		{"BraceWithoutDollar", "{VAR_NAME}", "{VAR_NAME}"},
		{"UnterminatedEscape", `${abc\`, "${abc"},
		{"Multiple", "${X}-${X}", "x-x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, r.Resolve(tt.input))
		})
	}
}

// TestResolverSecrets tests the secret lookup fallback
func TestResolverSecrets(t *testing.T) {
	r := Resolver{
		LookupEnv: mapEnv(map[string]string{"TOKEN": "from-env"}),
		LookupSecret: func(name string) (string, bool) {
			if name == "db_pass" || name == "TOKEN" {
				return "from-secret", true
			}
			return "", false
		},
	}

	assert.Equal(t, "from-secret", r.Resolve("${db_pass}"))
	assert.Equal(t, "from-secret", r.Resolve("${db_pass=fallback}"))
	assert.Equal(t, "from-env", r.Resolve("${TOKEN}"), "environment wins over secrets")
	assert.Equal(t, "fallback", r.Resolve("${other=fallback}"))
}

// TestResolveEnv tests resolution against the process environment
func TestResolveEnv(t *testing.T) {
	t.Setenv("ZCONFIG_RESOLVE_TEST", "value")
	assert.Equal(t, "value/x", ResolveEnv("${ZCONFIG_RESOLVE_TEST}/x"))
	assert.Equal(t, "value", ResolveEnv("${zconfig_resolve_test}"))
}
