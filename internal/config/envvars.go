// ABOUTME: Environment variable expansion in config string fields
// ABOUTME: ${VAR} resolves from the process env, then the project .env file; unset vars become empty

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"regexp"

	"github.com/joho/godotenv"
)

var envVarPattern = regexp.MustCompile(`\$\{(\w+)\}`)

// loadDotenv reads KEY=value pairs from path. A missing file yields no vars.
func loadDotenv(path string) (map[string]string, error) {
	vars, err := godotenv.Read(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return vars, nil
}

// ResolveEnvVars expands ${VAR} patterns in the string fields of s.
// The process environment wins over dotenv.
func ResolveEnvVars(s *Settings, dotenv map[string]string) {
	expand := func(v string) string { return expandEnv(v, dotenv) }

	s.LogLevel = expand(s.LogLevel)

	for i := range s.Postconditions {
		p := &s.Postconditions[i]
		p.Name = expand(p.Name)
		p.File = expand(p.File)
		p.Contains = expand(p.Contains)
	}
}

// expandEnv replaces ${VAR} with its value. Unset vars become "".
func expandEnv(s string, dotenv map[string]string) string {
	if s == "" {
		return s
	}
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		varName := envVarPattern.FindStringSubmatch(match)[1]
		if v, ok := os.LookupEnv(varName); ok {
			return v
		}
		return dotenv[varName]
	})
}
