package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App       AppConfig
	Keys      APIKeys
	Ai        AIConfig
	Assistant AssistantConfig
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

type APIKeys struct {
	GoogleGemini string
}

type AIConfig struct {
	LLMProvider   string  // "ollama", "gemini"
	LLMModel      string  // e.g. "llama3", "qwen2.5"
	OllamaBaseURL string
	Temperature   float64 // chat generation temperature
	AnalysisModel string  // optional model override for document analysis
}

// AssistantConfig holds the tuning knobs for the conversational assistant.
type AssistantConfig struct {
	RetentionCap     int           // max turns kept per session
	HistoryWindow    int           // turns sent to the generation step
	PollInterval     time.Duration // context watcher poll interval
	GenerateTimeout  time.Duration // bounded wait on the generation call
	NarrationBaseURL string        // speech synthesis service
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
		Keys: APIKeys{
			GoogleGemini: getEnv("GOOGLE_GEMINI_API_KEY", ""),
		},
		Ai: AIConfig{
			LLMProvider:   getEnv("LLM_PROVIDER", "ollama"),
			LLMModel:      getEnv("LLM_MODEL", "llama3"),
			OllamaBaseURL: getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			Temperature:   getEnvAsFloat("LLM_TEMPERATURE", 0.7),
			AnalysisModel: getEnv("ANALYSIS_MODEL", ""),
		},
		Assistant: AssistantConfig{
			RetentionCap:     getEnvAsInt("ASSISTANT_RETENTION_CAP", 20),
			HistoryWindow:    getEnvAsInt("ASSISTANT_HISTORY_WINDOW", 10),
			PollInterval:     getEnvAsDuration("ASSISTANT_POLL_INTERVAL", 2*time.Second),
			GenerateTimeout:  getEnvAsDuration("ASSISTANT_GENERATE_TIMEOUT", 15*time.Second),
			NarrationBaseURL: getEnv("NARRATION_BASE_URL", "http://localhost:5002"),
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

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if value, err := time.ParseDuration(strValue); err == nil {
		return value
	}
	return fallback
}
