// Package config loads askql configuration from file, environment and
// flags.
package config

// ServerConfig holds API server settings.
type ServerConfig struct {
	Port int `koanf:"port"`
}

// DatabaseConfig holds the connection settings for the target database.
type DatabaseConfig struct {
	Type string `koanf:"type"` // postgres, sqlite, duckdb

	// File-based databases (SQLite, DuckDB). Use :memory: for in-memory.
	Path string `koanf:"path"`

	// Network databases
	Host     string `koanf:"host"`
	Port     int    `koanf:"port"`
	Name     string `koanf:"name"`
	Username string `koanf:"username"`
	Password string `koanf:"password"`

	// Additional driver-specific options
	Options map[string]string `koanf:"options"`
}

// LLMConfig holds generation model settings.
type LLMConfig struct {
	Provider        string  `koanf:"provider"`
	Model           string  `koanf:"model"`
	APIKey          string  `koanf:"api_key"`
	Temperature     float64 `koanf:"temperature"`
	TopP            float64 `koanf:"top_p"`
	TopK            int     `koanf:"top_k"`
	MaxOutputTokens int     `koanf:"max_output_tokens"`
}

// HistoryConfig holds query history settings. An empty Path disables
// recording.
type HistoryConfig struct {
	Path  string `koanf:"path"`
	Limit int    `koanf:"limit"`
}

// Config is the full application configuration.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Database DatabaseConfig `koanf:"database"`
	LLM      LLMConfig      `koanf:"llm"`
	History  HistoryConfig  `koanf:"history"`
	Verbose  bool           `koanf:"verbose"`
}
