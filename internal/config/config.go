package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	DatabaseURL string

	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration

	HTTPAddr        string
	ShutdownTimeout time.Duration
	BaseURL         string

	Auth   AuthConfig
	AI     AIConfig
	Redis  RedisConfig
	Kafka  KafkaConfig
	Editor EditorConfig

	TracingEndpoint string
}

type AuthConfig struct {
	SupabaseURL   string
	AnonKey       string
	SessionMaxAge time.Duration
	CookieSecure  bool
}

type AIConfig struct {
	Endpoint     string
	Token        string
	MaxNewTokens int
	Temperature  float64
	Timeout      time.Duration
}

type RedisConfig struct {
	Addr     string
	Password string
}

type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// EditorConfig is read by the CLI client, not by the server.
type EditorConfig struct {
	Debounce    time.Duration
	APIURL      string
	AccessToken string
}

const defaultAIEndpoint = "https://api-inference.huggingface.co/models/mistralai/Mixtral-8x7B-Instruct-v0.1"

// Load reads the configuration from the environment. A .env file in the
// working directory is applied first when present; real env vars win.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		DatabaseURL:     getenv("DATABASE_URL", ""),
		MaxOpenConns:    getenvInt("DB_MAX_OPEN", 20),
		MaxIdleConns:    getenvInt("DB_MAX_IDLE", 10),
		ConnMaxLifetime: getenvDuration("DB_CONN_MAX_LIFETIME", 30*time.Minute),
		ConnMaxIdleTime: getenvDuration("DB_CONN_MAX_IDLE_TIME", 5*time.Minute),
		HTTPAddr:        getenv("HTTP_ADDR", ":8080"),
		ShutdownTimeout: getenvDuration("HTTP_SHUTDOWN_TIMEOUT", 20*time.Second),
		BaseURL:         strings.TrimRight(getenv("BASE_URL", ""), "/"),
		Auth: AuthConfig{
			SupabaseURL:   strings.TrimRight(getenv("SUPABASE_URL", ""), "/"),
			AnonKey:       getenv("SUPABASE_ANON_KEY", ""),
			SessionMaxAge: getenvDuration("SESSION_MAX_AGE", 7*24*time.Hour),
			CookieSecure:  getenvBool("COOKIE_SECURE", true),
		},
		AI: AIConfig{
			Endpoint:     getenv("AI_ENDPOINT", defaultAIEndpoint),
			Token:        getenv("HUGGING_FACE_API_TOKEN", ""),
			MaxNewTokens: getenvInt("AI_MAX_NEW_TOKENS", 1000),
			Temperature:  getenvFloat("AI_TEMPERATURE", 0.7),
			Timeout:      getenvDuration("AI_TIMEOUT", 60*time.Second),
		},
		Redis: RedisConfig{
			Addr:     getenv("REDIS_ADDR", ""),
			Password: getenv("REDIS_PASSWORD", ""),
		},
		Kafka: KafkaConfig{
			Brokers: getenvList("KAFKA_BROKERS"),
			Topic:   getenv("KAFKA_TOPIC", "note-events"),
		},
		Editor: EditorConfig{
			Debounce:    getenvDuration("EDITOR_DEBOUNCE", time.Second),
			APIURL:      strings.TrimRight(getenv("API_URL", "http://localhost:8080"), "/"),
			AccessToken: getenv("ACCESS_TOKEN", ""),
		},
		TracingEndpoint: getenv("TRACING_ENDPOINT", ""),
	}
}

func getenv(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func getenvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

func getenvFloat(key string, def float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}

func getenvBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func getenvDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}

// getenvList splits a comma separated value, dropping blanks.
func getenvList(key string) []string {
	var out []string
	for _, s := range strings.Split(os.Getenv(key), ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
