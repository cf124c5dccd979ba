package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// Default configuration values.
const (
	DefaultServerPort   = 8080
	DefaultDatabaseType = "sqlite"
	DefaultDatabasePath = "askql.db"
	DefaultProvider     = "gemini"
	DefaultModel        = "gemini-2.0-flash"
	DefaultHistoryPath  = "askql-history.db"
	DefaultHistoryLimit = 200
)

var configFileUsed string

// findConfigFile finds the config file to use.
// Priority: explicit path > askql.yaml > askql.yml
func findConfigFile(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if _, err := os.Stat("askql.yaml"); err == nil {
		return "askql.yaml"
	}
	if _, err := os.Stat("askql.yml"); err == nil {
		return "askql.yml"
	}
	return ""
}

// Load loads configuration from file, environment variables, and flags.
// Precedence (highest to lowest): flags > env vars > config file > defaults
func Load(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	// 1. Defaults
	if err := k.Load(confmap.Provider(map[string]interface{}{
		"server.port":     DefaultServerPort,
		"database.type":   DefaultDatabaseType,
		"database.path":   DefaultDatabasePath,
		"llm.provider":    DefaultProvider,
		"llm.model":       DefaultModel,
		"llm.temperature": 0.0,
		"history.path":    DefaultHistoryPath,
		"history.limit":   DefaultHistoryLimit,
		"verbose":         false,
	}, "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Config file
	configFileUsed = findConfigFile(cfgFile)
	if configFileUsed != "" {
		if err := k.Load(file.Provider(configFileUsed), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", configFileUsed, err)
		}
	}

	// 3. Environment variables (ASKQL_ prefix)
	// Transform: ASKQL_LLM_API_KEY -> llm.api_key
	if err := k.Load(env.Provider("ASKQL_", ".", envToKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 4. Flags (highest priority)
	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			if !f.Changed {
				return "", nil
			}
			// Transform kebab-case to dotted config keys: --db-path -> database.path
			key := flagKey(f.Name)
			if key == "" {
				return "", nil
			}
			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// Expand ${VAR} in sensitive fields
	cfg.Database.Password = expandEnvVars(cfg.Database.Password)
	cfg.Database.Username = expandEnvVars(cfg.Database.Username)
	cfg.Database.Host = expandEnvVars(cfg.Database.Host)
	cfg.LLM.APIKey = expandEnvVars(cfg.LLM.APIKey)

	// GEMINI_API_KEY is honored as a conventional fallback
	if cfg.LLM.APIKey == "" {
		cfg.LLM.APIKey = os.Getenv("GEMINI_API_KEY")
	}

	return &cfg, nil
}

// GetConfigFileUsed returns the path to the config file being used, if any.
func GetConfigFileUsed() string {
	return configFileUsed
}

// envToKey maps ASKQL_ environment variables to config keys. The first
// underscore separates the section; later underscores stay literal so
// ASKQL_LLM_API_KEY maps to llm.api_key.
func envToKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, "ASKQL_"))
	if s == "verbose" {
		return s
	}
	parts := strings.SplitN(s, "_", 2)
	if len(parts) == 1 {
		return s
	}
	return parts[0] + "." + parts[1]
}

// flagKey maps CLI flag names to config keys. Unknown flags are skipped so
// command-local flags never leak into the config tree.
func flagKey(name string) string {
	switch name {
	case "port":
		return "server.port"
	case "db-type":
		return "database.type"
	case "db-path":
		return "database.path"
	case "db-host":
		return "database.host"
	case "db-port":
		return "database.port"
	case "db-name":
		return "database.name"
	case "db-user":
		return "database.username"
	case "db-password":
		return "database.password"
	case "model":
		return "llm.model"
	case "api-key":
		return "llm.api_key"
	case "history":
		return "history.path"
	case "verbose":
		return "verbose"
	}
	return ""
}

var envVarRe = regexp.MustCompile(`\$\{([^}]+)\}`)

// expandEnvVars expands ${VAR} patterns with environment variable values.
func expandEnvVars(s string) string {
	return envVarRe.ReplaceAllStringFunc(s, func(match string) string {
		varName := match[2 : len(match)-1]
		if val := os.Getenv(varName); val != "" {
			return val
		}
		return match
	})
}
