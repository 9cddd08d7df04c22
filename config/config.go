// Package config provides configuration for the booking server.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds the server configuration.
type Config struct {
	// Server settings
	HTTPPort           int
	CORSAllowedOrigins []string

	// Database (user accounts)
	DatabaseURL string

	// OpenAI backends
	OpenAIAPIKey    string
	OpenAIBaseURL   string
	ChatModel       string
	PhoneChatModel  string
	TranscribeModel string
	TTSModel        string
	TTSVoice        string

	// Clinic
	ClinicName     string
	ClinicLocation string
	ClinicTimezone string

	// Google Calendar OAuth
	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURI  string

	// Auth
	JWTSecret string

	// Timeouts and lifetimes
	LLMTimeout    time.Duration
	SpeechTimeout time.Duration
	SessionTTL    time.Duration
	AudioTTL      time.Duration
}

// Load loads configuration from environment variables.
func Load() *Config {
	cfg := &Config{
		HTTPPort:           getEnvInt("PORT", 3007),
		CORSAllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173,http://localhost:5000")),
		DatabaseURL:        getEnv("DATABASE_URL", "file:denty.db?cache=shared&mode=rwc"),
		OpenAIAPIKey:       getEnv("OPENAI_API_KEY", ""),
		OpenAIBaseURL:      getEnv("OPENAI_BASE_URL", "https://api.openai.com"),
		ChatModel:          getEnv("CHAT_MODEL", "gpt-4o"),
		PhoneChatModel:     getEnv("PHONE_CHAT_MODEL", "gpt-3.5-turbo"),
		TranscribeModel:    getEnv("TRANSCRIBE_MODEL", "whisper-1"),
		TTSModel:           getEnv("TTS_MODEL", "tts-1"),
		TTSVoice:           getEnv("TTS_VOICE", "alloy"),
		ClinicName:         getEnv("CLINIC_NAME", "BigSmile Dental Clinic"),
		ClinicLocation:     getEnv("CLINIC_LOCATION", "123 Smile Street, Dental City, DC 54321"),
		ClinicTimezone:     getEnv("CLINIC_TIMEZONE", "Asia/Kolkata"),
		GoogleClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),
		GoogleRedirectURI:  getEnv("GOOGLE_REDIRECT_URI", ""),
		JWTSecret:          getEnv("JWT_SECRET", ""),
		LLMTimeout:         time.Duration(getEnvInt("LLM_TIMEOUT_MS", 30000)) * time.Millisecond,
		SpeechTimeout:      time.Duration(getEnvInt("SPEECH_TIMEOUT_MS", 15000)) * time.Millisecond,
		SessionTTL:         time.Duration(getEnvInt("SESSION_TTL_MIN", 30)) * time.Minute,
		AudioTTL:           time.Duration(getEnvInt("AUDIO_TTL_MIN", 10)) * time.Minute,
	}
	return cfg
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if intVal, err := strconv.Atoi(val); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func splitList(val string) []string {
	parts := strings.Split(val, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
