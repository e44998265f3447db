package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Ai        AIConfig
	Interview InterviewConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
}

type DatabaseConfig struct {
	Connection string
}

type AIConfig struct {
	LLMProvider   string // "ollama", etc
	LLMModel      string // e.g. "llama3", "qwen2.5"
	OllamaBaseURL string
}

// InterviewConfig carries the orchestration tunables. Defaults are the
// empirically tuned production values; they are env-overridable rather
// than re-derived.
type InterviewConfig struct {
	NoteWindow               int
	ResearchWindow           int
	OrchestratorWindow       int
	DecisionReuseSeconds     int
	ResearchFreshnessMinutes int
	ResearchFailureThreshold int
	ResearchCooldownCycles   int
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Ai: AIConfig{
			LLMProvider:   getEnv("LLM_PROVIDER", "ollama"),
			LLMModel:      getEnv("LLM_MODEL", "llama3"),
			OllamaBaseURL: getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
		},
		Interview: InterviewConfig{
			NoteWindow:               getEnvAsInt("INTERVIEW_NOTE_WINDOW", 20),
			ResearchWindow:           getEnvAsInt("INTERVIEW_RESEARCH_WINDOW", 20),
			OrchestratorWindow:       getEnvAsInt("INTERVIEW_ORCHESTRATOR_WINDOW", 30),
			DecisionReuseSeconds:     getEnvAsInt("INTERVIEW_DECISION_REUSE_SECONDS", 30),
			ResearchFreshnessMinutes: getEnvAsInt("INTERVIEW_RESEARCH_FRESHNESS_MINUTES", 5),
			ResearchFailureThreshold: getEnvAsInt("INTERVIEW_RESEARCH_FAILURE_THRESHOLD", 5),
			ResearchCooldownCycles:   getEnvAsInt("INTERVIEW_RESEARCH_COOLDOWN_CYCLES", 3),
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
