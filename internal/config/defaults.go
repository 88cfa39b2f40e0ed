package config

import (
	"github.com/knadh/koanf/providers/confmap"
)

func DefaultConfig() map[string]interface{} {
	return map[string]interface{}{
		"store": map[string]interface{}{
			"path": "~/.fittrack/fittrack.db",
		},
		"reminders": map[string]interface{}{
			"location": "",
			"morning": map[string]interface{}{
				"enabled": true,
				"hour":    7,
				"minute":  0,
			},
			"afternoon": map[string]interface{}{
				"enabled": true,
				"hour":    12,
				"minute":  0,
			},
			"evening": map[string]interface{}{
				"enabled": true,
				"hour":    20,
				"minute":  0,
			},
			"daily_report": map[string]interface{}{
				"enabled": true,
				"hour":    22,
				"minute":  0,
			},
			"water": map[string]interface{}{
				"enabled":          true,
				"interval_minutes": 60,
			},
			"weekly_report": map[string]interface{}{
				"enabled": false,
				"day":     "sunday",
				"hour":    21,
				"minute":  0,
			},
		},
		"dispatch": map[string]interface{}{
			"channels": []string{"email"},
			"timeout":  30,
		},
		"email": map[string]interface{}{
			"mode":         "endpoint",
			"endpoint_url": "http://localhost:8080/api/send-email",
			"timeout":      30,
		},
		"resend": map[string]interface{}{
			"api_key":  "",
			"base_url": "https://api.resend.com",
			"from":     "FitTracker Pro <onboarding@resend.dev>",
			"timeout":  30,
		},
		"telegram": map[string]interface{}{
			"bot_token": "",
			"chat_id":   "",
		},
		"server": map[string]interface{}{
			"addr": ":8080",
		},
		"log": map[string]interface{}{
			"level": "INFO",
		},
		"ui": map[string]interface{}{
			"colored_output": true,
		},
	}
}

func NewDefaultProvider() *confmap.Confmap {
	return confmap.Provider(DefaultConfig(), ".")
}

func GetDefaultConfigPath() string {
	return "~/.fittrack/config.yaml"
}
