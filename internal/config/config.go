package config

import (
	"errors"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv              string
	AppName             string
	APIPrefix           string
	AppPort             string
	DatabaseURL         string
	CORSAllowOrigins    []string
	AgentCLMURL         string
	AgentModel          string
	AgentTimeoutSeconds int
	ZepAPIKey           string
	ZepBaseURL          string
	UnsplashAccessKey   string
	UnsplashBaseURL     string
	HumeAPIKey          string
	HumeSecretKey       string
	HumeTokenURL        string
	BridgeJWTSecret     string
	BridgeJWTAlgorithm  string
}

func Load() Config {
	_ = godotenv.Load(".env")

	return Config{
		AppEnv:      getEnv("APP_ENV", "local"),
		AppName:     getEnv("APP_NAME", "MemberVoice API"),
		APIPrefix:   getEnv("API_PREFIX", "/api/v1"),
		AppPort:     getEnv("APP_PORT", "8000"),
		DatabaseURL: getEnv("DATABASE_URL", ""),
		CORSAllowOrigins: getEnvCSV(
			"CORS_ALLOW_ORIGINS",
			[]string{"http://localhost:3000", "http://127.0.0.1:3000"},
		),
		AgentCLMURL:         getEnv("AGENT_CLM_URL", "https://membership-agent-production.up.railway.app/chat/completions"),
		AgentModel:          getEnv("AGENT_MODEL", "membership-marketing-agent"),
		AgentTimeoutSeconds: getEnvInt("AGENT_TIMEOUT_SECONDS", 60),
		ZepAPIKey:           getEnv("ZEP_API_KEY", ""),
		ZepBaseURL:          getEnv("ZEP_BASE_URL", "https://api.getzep.com"),
		UnsplashAccessKey:   getEnv("UNSPLASH_ACCESS_KEY", ""),
		UnsplashBaseURL:     getEnv("UNSPLASH_BASE_URL", "https://api.unsplash.com"),
		HumeAPIKey:          getEnv("HUME_API_KEY", ""),
		HumeSecretKey:       getEnv("HUME_SECRET_KEY", ""),
		HumeTokenURL:        getEnv("HUME_TOKEN_URL", "https://api.hume.ai/oauth2-cc/token"),
		BridgeJWTSecret:     getEnv("BRIDGE_JWT_SECRET", ""),
		BridgeJWTAlgorithm:  getEnv("BRIDGE_JWT_ALGORITHM", "HS256"),
	}
}

// Validate rejects configurations that cannot serve requests at all. Missing
// third-party API keys are deliberately not errors: every feature that depends
// on one degrades to an empty result instead of failing the process.
func (c Config) Validate() error {
	if strings.TrimSpace(c.AppPort) == "" {
		return errors.New("APP_PORT is required")
	}
	if strings.TrimSpace(c.APIPrefix) == "" {
		return errors.New("API_PREFIX is required")
	}
	if strings.TrimSpace(c.AgentCLMURL) == "" {
		return errors.New("AGENT_CLM_URL is required")
	}
	secret := strings.TrimSpace(c.BridgeJWTSecret)
	if secret != "" && len(secret) < 16 {
		return errors.New("BRIDGE_JWT_SECRET is too short; use at least 16 characters")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getEnvCSV(key string, fallback []string) []string {
	raw, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(raw) == "" {
		return fallback
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, item := range parts {
		trimmed := strings.TrimSpace(item)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	if len(result) == 0 {
		return fallback
	}
	return result
}

func getEnvInt(key string, fallback int) int {
	value, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(value) == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return parsed
}
