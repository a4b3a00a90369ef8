package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds the application's configuration. It is loaded once before the
// update loop starts and never reloaded.
type Config struct {
	Telegram struct {
		Token          string `yaml:"token"`
		UpdateTimeout  int    `yaml:"update_timeout_seconds"`
		RequestTimeout int64  `yaml:"request_timeout_seconds"`
	} `yaml:"telegram"`
	Moderation struct {
		ValidChats    []int64           `yaml:"valid_chats"`
		BannedPhrases []string          `yaml:"banned_phrases"`
		Confusables   map[string]string `yaml:"confusables"`
	} `yaml:"moderation"`
	AuditLog struct {
		Path            string `yaml:"path"`
		DisplayTruncate int    `yaml:"display_truncate"`
	} `yaml:"audit_log"`
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
}

// LoadConfig reads configuration from the specified YAML file.
func LoadConfig(configPath string) (*Config, error) {
	config := &Config{}

	file, err := os.Open(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	if err := decoder.Decode(config); err != nil {
		return nil, fmt.Errorf("failed to decode config file: %w", err)
	}

	if config.Telegram.Token == "" {
		config.Telegram.Token = os.Getenv("TELEGRAM_BOT_TOKEN")
	}
	if config.Telegram.Token == "" {
		return nil, fmt.Errorf("telegram bot token is not set (config or TELEGRAM_BOT_TOKEN)")
	}
	if len(config.Moderation.ValidChats) == 0 {
		return nil, fmt.Errorf("no valid chats configured")
	}
	if config.AuditLog.Path == "" {
		config.AuditLog.Path = "log.txt"
	}
	if config.AuditLog.DisplayTruncate <= 0 {
		config.AuditLog.DisplayTruncate = 280
	}
	if config.Telegram.UpdateTimeout <= 0 {
		config.Telegram.UpdateTimeout = 60
	}

	return config, nil
}
