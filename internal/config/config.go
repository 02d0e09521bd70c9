package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	App     AppConfig
	Session SessionConfig
	Archive ArchiveConfig
	Llm     LLMConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	AutosaveTopic      string
	OutputDir          string
}

type SessionConfig struct {
	SaveDir  string
	Autosave bool
}

type ArchiveConfig struct {
	// Postgres DSN for the session archive. Empty disables archiving.
	DSN string
}

type LLMConfig struct {
	Provider       string // "openai", "azure", "anthropic", "ollama"
	Model          string
	APIKey         string
	BaseURL        string
	APIVersion     string // Azure only
	DeploymentName string // Azure only
	Temperature    float64
	MaxTokens      int
	ReviewTokens   int // larger window for whole-document review
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			AutosaveTopic:      getEnv("AUTOSAVE_TOPIC_NAME", "AUTOSAVE_SESSION"),
			OutputDir:          getEnv("OUTPUT_DIR", "outputs"),
		},
		Session: SessionConfig{
			SaveDir:  getEnv("SESSION_SAVE_DIR", "sessions"),
			Autosave: getEnvAsBool("SESSION_AUTOSAVE", true),
		},
		Archive: ArchiveConfig{
			DSN: getEnv("ARCHIVE_DB_DSN", ""),
		},
		Llm: LLMConfig{
			Provider:       getEnv("LLM_PROVIDER", "openai"),
			Model:          getEnv("LLM_MODEL", "gpt-4o"),
			APIKey:         getEnv("LLM_API_KEY", ""),
			BaseURL:        getEnv("LLM_BASE_URL", ""),
			APIVersion:     getEnv("LLM_API_VERSION", ""),
			DeploymentName: getEnv("LLM_DEPLOYMENT_NAME", ""),
			Temperature:    getEnvAsFloat("LLM_TEMPERATURE", 0.7),
			MaxTokens:      getEnvAsInt("LLM_MAX_TOKENS", 4000),
			ReviewTokens:   getEnvAsInt("LLM_REVIEW_MAX_TOKENS", 32000),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsFloat(key string, fallback float64) float64 {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseFloat(strValue, 64); err == nil {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseBool(strValue); err == nil {
		return value
	}
	return fallback
}
