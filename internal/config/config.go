package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTPAddr             string
	DatabaseURL          string
	CORSAllowedOrigins   []string
	CORSAllowCredentials bool

	JWTSecret     string
	SecureCookies bool

	// Upstream providers. The chat key is checked before any streaming
	// request is opened; the speech key only gates the /api/tts route.
	OpenRouterAPIKey string
	OpenRouterURL    string
	ChatModel        string
	ElevenLabsAPIKey string

	ExportDir string
}

func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		HTTPAddr:             getenv("HTTP_ADDR", ":8080"),
		DatabaseURL:          mustGetenv("DATABASE_URL"),
		CORSAllowCredentials: getenv("CORS_ALLOW_CREDENTIALS", "false") == "true",
		SecureCookies:        getenv("SECURE_COOKIES", "false") == "true",

		OpenRouterAPIKey: getenv("OPENROUTER_API_KEY", ""),
		OpenRouterURL:    getenv("OPENROUTER_URL", "https://openrouter.ai/api/v1/chat/completions"),
		ChatModel:        getenv("CHAT_MODEL", "anthropic/claude-sonnet-4-5"),
		ElevenLabsAPIKey: getenv("ELEVENLABS_API_KEY", ""),

		ExportDir: getenv("EXPORT_DIR", "./exports"),
	}

	origins := strings.Split(getenv("CORS_ALLOWED_ORIGINS", ""), ",")
	for _, o := range origins {
		o = strings.TrimSpace(o)
		if o != "" {
			cfg.CORSAllowedOrigins = append(cfg.CORSAllowedOrigins, o)
		}
	}

	cfg.JWTSecret = mustGetenv("JWT_SECRET")
	return cfg, nil
}

func getenv(key, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}

func mustGetenv(key string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		panic("missing env: " + key)
	}
	return v
}
