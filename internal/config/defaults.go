package config

import (
	"github.com/knadh/koanf/providers/confmap"
)

func DefaultConfig() map[string]interface{} {
	return map[string]interface{}{
		"telegram": map[string]interface{}{
			"bot_token":    "",
			"chat_id":      0,
			"poll_timeout": 30,
		},
		"calendar": map[string]interface{}{
			"credentials_file": "~/.calibot/credentials.json",
			"token_file":       "~/.calibot/token.json",
			"calendar_id":      "primary",
			"time_zone":        "America/Buenos_Aires",
			"max_results":      10,
		},
		"notifier": map[string]interface{}{
			"enabled":         true,
			"interval":        60,
			"lookahead":       60,
			"seen_db":         "~/.calibot/notified.db",
			"retention_hours": 24,
		},
		"log": map[string]interface{}{
			"level":  "info",
			"format": "text",
		},
	}
}

func NewDefaultProvider() *confmap.Confmap {
	return confmap.Provider(DefaultConfig(), ".")
}

func GetDefaultConfigPath() string {
	return "~/.calibot/config.yaml"
}
