package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Identity IdentityConfig
	Ragie    RagieConfig
	Ai       AIConfig
	Chat     ChatConfig
}

type AppConfig struct {
	Port               string
	BaseURL            string
	ClientURL          string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
}

type DatabaseConfig struct {
	Connection string
}

// IdentityConfig describes the hosted identity provider. Tokens are only
// verified here, never issued.
type IdentityConfig struct {
	JwtSecret    string
	TokenURL     string
	ClientID     string
	ClientSecret string
}

type RagieConfig struct {
	BaseURL string
	APIKey  string
	TopK    int
}

type AIConfig struct {
	LLMProvider   string // "ollama"
	LLMModel      string // default model, overridable per request
	OllamaBaseURL string
}

type ChatConfig struct {
	SyncGeneration  bool // generate inline instead of via the job queue
	GenerationTopic string
	DefaultTemp     float64
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			BaseURL:            getEnv("APP_BASE_URL", "http://localhost:3000"),
			ClientURL:          getEnv("CLIENT_URL", "http://localhost:5173"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Identity: IdentityConfig{
			JwtSecret:    getEnv("JWT_SECRET", ""),
			TokenURL:     getEnv("IDP_TOKEN_URL", ""),
			ClientID:     getEnv("IDP_CLIENT_ID", ""),
			ClientSecret: getEnv("IDP_CLIENT_SECRET", ""),
		},
		Ragie: RagieConfig{
			BaseURL: getEnv("RAGIE_BASE_URL", "https://api.ragie.ai"),
			APIKey:  getEnv("RAGIE_API_KEY", ""),
			TopK:    getEnvAsInt("RAGIE_TOP_K", 6),
		},
		Ai: AIConfig{
			LLMProvider:   getEnv("LLM_PROVIDER", "ollama"),
			LLMModel:      getEnv("LLM_MODEL", "llama3"),
			OllamaBaseURL: getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
		},
		Chat: ChatConfig{
			SyncGeneration:  getEnvAsBool("CHAT_SYNC_GENERATION", false),
			GenerationTopic: getEnv("CHAT_GENERATION_TOPIC", "CHAT_GENERATE_REPLY"),
			DefaultTemp:     getEnvAsFloat("CHAT_DEFAULT_TEMPERATURE", 0.7),
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

func getEnvAsBool(key string, fallback bool) bool {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseBool(strValue); err == nil {
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
