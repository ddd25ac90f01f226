package config

import (
	"os"
	"regexp"
	"strings"
)

// envVarPattern matches ${NAME}, ${NAME:-default} and $NAME.
var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}|\$([a-zA-Z_][a-zA-Z0-9_]*)`)

// ExpandEnv replaces environment variable references in s:
//   - ${NAME} and $NAME with the value of NAME
//   - ${NAME:-default} with the value of NAME, or default if NAME is
//     unset or empty
//
// Unset variables without a default expand to the empty string.
func ExpandEnv(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		groups := envVarPattern.FindStringSubmatch(match)
		if groups[2] != "" {
			return os.Getenv(groups[2])
		}
		name, def, hasDefault := strings.Cut(groups[1], ":-")
		if v := os.Getenv(name); v != "" || !hasDefault {
			return v
		}
		return def
	})
}

// ExpandEnvConfig expands environment variables in the string fields of
// cfg that name files, colours and fonts.
func ExpandEnvConfig(cfg *Config) {
	if cfg == nil {
		return
	}
	for _, field := range []*string{&cfg.ID, &cfg.Script, &cfg.Output, &cfg.Background, &cfg.Font} {
		*field = ExpandEnv(*field)
	}
}
