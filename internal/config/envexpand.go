package config

import (
	"os"
	"regexp"
)

// envVarPattern matches ${VAR} and ${VAR:-default}.
var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(?::-([^}]*))?\}`)

// ExpandEnv replaces ${VAR} and ${VAR:-default} in input with the value of
// the environment variable. An unset or empty variable takes the default,
// or expands to the empty string when there is none.
func ExpandEnv(input string) string {
	return envVarPattern.ReplaceAllStringFunc(input, func(match string) string {
		groups := envVarPattern.FindStringSubmatch(match)
		if len(groups) < 2 {
			return match
		}
		if v, ok := os.LookupEnv(groups[1]); ok && v != "" {
			return v
		}
		if len(groups) >= 3 {
			return groups[2]
		}
		return ""
	})
}
