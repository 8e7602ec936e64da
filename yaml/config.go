// Package yaml loads docseek configuration files.
package yaml

import (
	"bytes"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/fwojciec/docseek"
	"gopkg.in/yaml.v3"
)

// Load reads the configuration file at path over docseek.DefaultConfig and
// validates the result. An empty path returns the validated defaults.
func Load(path string) (docseek.Config, error) {
	if path == "" {
		cfg := docseek.DefaultConfig()
		return cfg, cfg.Validate()
	}

	data, err := os.ReadFile(filepath.Clean(path))
	if errors.Is(err, fs.ErrNotExist) {
		return docseek.Config{}, docseek.Errorf(docseek.ENOTFOUND, "config file %s not found", path)
	} else if err != nil {
		return docseek.Config{}, docseek.Errorf(docseek.EINVALID, "read config %s: %v", path, err)
	}
	return Parse(data)
}

// Parse decodes YAML data over docseek.DefaultConfig, expanding ${VAR}
// and ${VAR:-default} references first. Unknown keys are rejected.
func Parse(data []byte) (docseek.Config, error) {
	cfg := docseek.DefaultConfig()

	dec := yaml.NewDecoder(bytes.NewReader(ExpandEnv(data)))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return docseek.Config{}, docseek.Errorf(docseek.EINVALID, "parse config: %v", err)
	}

	if err := cfg.Validate(); err != nil {
		return docseek.Config{}, err
	}
	return cfg, nil
}

var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

// ExpandEnv replaces ${VAR} and ${VAR:-default} with environment values.
// Unset variables without a default expand to the empty string.
func ExpandEnv(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		name, fallback, hasDefault := strings.Cut(string(match[2:len(match)-1]), ":-")
		val := os.Getenv(name)
		if val == "" && hasDefault {
			val = fallback
		}
		return []byte(val)
	})
}
