package config

import "github.com/caarlos0/env/v10"

// Config centraliza la configuración del backend de chat.
type Config struct {
	HTTPPort             string  `env:"HTTP_PORT" envDefault:"5000"`
	DatabaseURL          string  `env:"DATABASE_URL,required"`
	LLMAPIKey            string  `env:"LLM_API_KEY,required"`
	LLMBaseURL           string  `env:"LLM_BASE_URL" envDefault:"https://api.openai.com/v1"`
	LLMModel             string  `env:"LLM_MODEL" envDefault:"gpt-4o-mini"`
	LLMEmbeddingModel    string  `env:"LLM_EMBEDDING_MODEL" envDefault:"text-embedding-3-small"`
	AppSecret            string  `env:"APP_SECRET"`
	RedisAddr            string  `env:"REDIS_ADDR"`
	RedisPassword        string  `env:"REDIS_PASSWORD"`
	RedisDB              int     `env:"REDIS_DB" envDefault:"0"`
	StateTTLMinutes      int     `env:"STATE_TTL_MINUTES" envDefault:"720"`
	KnowledgeTopK        int     `env:"KNOWLEDGE_TOP_K" envDefault:"3"`
	KnowledgeMaxDistance float64 `env:"KNOWLEDGE_MAX_DISTANCE" envDefault:"0.35"`
	EnsureSchema         bool    `env:"ENSURE_SCHEMA" envDefault:"true"`
	ChatRateLimit        int     `env:"CHAT_RATE_LIMIT_PER_MINUTE" envDefault:"30"`
}

// ClientConfig agrupa la configuración del widget de terminal.
type ClientConfig struct {
	BaseURL       string `env:"CHAT_BASE_URL" envDefault:"http://localhost:5000"`
	AssistantName string `env:"CHAT_ASSISTANT_NAME" envDefault:"MediGenius"`
	PrefsPath     string `env:"CHAT_PREFS_PATH"`
	ExportDir     string `env:"CHAT_EXPORT_DIR" envDefault:"."`
	Debug         bool   `env:"CHAT_DEBUG" envDefault:"false"`
}

// LoadConfig carga la configuración desde variables de entorno.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadClientConfig carga la configuración del cliente desde variables de entorno.
func LoadClientConfig() (*ClientConfig, error) {
	var cfg ClientConfig
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
