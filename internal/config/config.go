package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ListenAddr        string
	DBPath            string
	VisionBackend     string
	OpenAIModel       string
	OpenAIBaseURL     string
	ClaudeModel       string
	ClaudeBaseURL     string
	OllamaHost        string
	OllamaModel       string
	PhotoPath         string
	CredentialBackend string
	Timezone          string
	LogLevel          string
	LogFile           string
	LogFormat         string
}

// Load reads the configuration from the environment. Variables in a .env
// file in the working directory are applied first without overriding the
// real environment.
func Load() (*Config, error) {
	if err := LoadDotEnv(".env"); err != nil {
		return nil, err
	}

	cfg := &Config{
		ListenAddr:        getEnv("LISTEN_ADDR", "127.0.0.1:8080"),
		DBPath:            getEnv("DB_PATH", "mealcam.db"),
		VisionBackend:     getEnv("VISION_BACKEND", "openai"),
		OpenAIModel:       getEnv("OPENAI_MODEL", "gpt-4o"),
		OpenAIBaseURL:     getEnv("OPENAI_BASE_URL", ""),
		ClaudeModel:       getEnv("CLAUDE_MODEL", "claude-sonnet-4-5"),
		ClaudeBaseURL:     getEnv("CLAUDE_BASE_URL", ""),
		OllamaHost:        getEnv("OLLAMA_HOST", "http://localhost:11434"),
		OllamaModel:       getEnv("OLLAMA_MODEL", "llava"),
		PhotoPath:         getEnv("PHOTO_LOCAL_PATH", "photos"),
		CredentialBackend: getEnv("CREDENTIAL_BACKEND", "slot"),
		Timezone:          getEnv("TIMEZONE", ""),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		LogFile:           getEnv("LOG_FILE", ""),
		LogFormat:         getEnv("LOG_FORMAT", "json"),
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadDotEnv applies path to the environment. A missing file is not an error.
func LoadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// Location returns the time zone that defines calendar days. An empty
// Timezone means the system's local zone.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE %q: %w", c.Timezone, err)
	}
	return loc, nil
}

func (c *Config) validate() error {
	switch c.VisionBackend {
	case "openai", "claude", "ollama":
	default:
		return fmt.Errorf("invalid VISION_BACKEND %q: must be openai, claude or ollama", c.VisionBackend)
	}
	switch c.CredentialBackend {
	case "slot", "keyring":
	default:
		return fmt.Errorf("invalid CREDENTIAL_BACKEND %q: must be slot or keyring", c.CredentialBackend)
	}
	switch c.LogFormat {
	case "json", "text":
	default:
		return fmt.Errorf("invalid LOG_FORMAT %q: must be json or text", c.LogFormat)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

func getEnv(key, defaultVal string) string {
	if val, exists := os.LookupEnv(key); exists {
		return val
	}
	return defaultVal
}
