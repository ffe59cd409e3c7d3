package config

import (
	"fmt"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// envPrefix is stripped from environment variable names before they are
// folded into the config tree, and the remaining underscores are dropped,
// e.g. RCA_AWS_REGION -> awsregion, which matches the AWSRegion field
// case-insensitively.
const envPrefix = "RCA_"

// Load builds a Config starting from Defaults, then layers in an optional
// YAML file and finally environment variables (highest precedence). path
// may be empty, in which case only defaults and the environment apply.
//
// Per-package log levels are read from any environment variable of the form
// RCA_LOG_LEVEL_<PACKAGE>, e.g. RCA_LOG_LEVEL_EVIDENCE=debug sets the
// "evidence" package's level.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %q: %w", path, err)
		}
	}

	cfg := Defaults()
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to merge config file %q: %w", path, err)
	}

	packageLevels := map[string]string{}
	envProvider := env.ProviderWithValue(envPrefix, ".", func(key, value string) (string, interface{}) {
		trimmed := strings.TrimPrefix(key, envPrefix)
		lower := strings.ToLower(trimmed)

		if strings.HasPrefix(lower, "log_level_") {
			pkg := strings.TrimPrefix(lower, "log_level_")
			packageLevels[pkg] = value
			return "", nil
		}

		return strings.ReplaceAll(lower, "_", ""), value
	})

	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment overrides: %w", err)
	}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to merge environment overrides: %w", err)
	}
	for pkg, level := range packageLevels {
		cfg.PackageLogLevels[pkg] = level
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
