package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Server      ServerConfig
	Database    DatabaseConfig
	Redis       RedisConfig
	Session     SessionConfig
	Credentials CredentialsConfig
	STT         STTConfig
	TTS         TTSConfig
	RateLimit   RateLimitConfig
}

type ServerConfig struct {
	Host string
	Port int
}

type DatabaseConfig struct {
	URL            string
	MaxConns       int
	MinConns       int
	MigrationsPath string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type SessionConfig struct {
	TTL time.Duration
}

type CredentialsConfig struct {
	// EnvJSON holds the full service-account document when supplied through
	// the environment; it takes precedence over any file path.
	EnvJSON     string
	DefaultFile string
}

type STTConfig struct {
	Encoding        string
	SampleRateHertz int
	LanguageCode    string
}

type TTSConfig struct {
	LanguageCode string
	VoiceName    string
}

type RateLimitConfig struct {
	RPS   int
	Burst int
}

func Load() (*Config, error) {
	port, err := getEnvInt("SERVER_PORT", 8080)
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_PORT: %w", err)
	}

	maxConns, err := getEnvInt("DB_MAX_CONNS", 10)
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MAX_CONNS: %w", err)
	}

	minConns, err := getEnvInt("DB_MIN_CONNS", 2)
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MIN_CONNS: %w", err)
	}

	redisDB, err := getEnvInt("REDIS_DB", 0)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	sessionTTLMin, err := getEnvInt("SESSION_TTL_MINUTES", 720)
	if err != nil {
		return nil, fmt.Errorf("invalid SESSION_TTL_MINUTES: %w", err)
	}

	sampleRate, err := getEnvInt("STT_SAMPLE_RATE_HERTZ", 48000)
	if err != nil {
		return nil, fmt.Errorf("invalid STT_SAMPLE_RATE_HERTZ: %w", err)
	}

	rateRPS, err := getEnvInt("RATE_LIMIT_RPS", 10)
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_RPS: %w", err)
	}

	rateBurst, err := getEnvInt("RATE_LIMIT_BURST", 20)
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_BURST: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port: port,
		},
		Database: DatabaseConfig{
			URL:            getEnv("DATABASE_URL", ""),
			MaxConns:       maxConns,
			MinConns:       minConns,
			MigrationsPath: getEnv("MIGRATIONS_PATH", "migrations"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		Session: SessionConfig{
			TTL: time.Duration(sessionTTLMin) * time.Minute,
		},
		Credentials: CredentialsConfig{
			EnvJSON:     getEnv("GOOGLE_CREDENTIALS_JSON", ""),
			DefaultFile: getEnv("GOOGLE_CREDENTIALS_FILE", "credentials.json"),
		},
		STT: STTConfig{
			Encoding:        getEnv("STT_ENCODING", "LINEAR16"),
			SampleRateHertz: sampleRate,
			LanguageCode:    getEnv("STT_LANGUAGE_CODE", "en-GB"),
		},
		TTS: TTSConfig{
			LanguageCode: getEnv("TTS_LANGUAGE_CODE", "en-GB"),
			VoiceName:    getEnv("TTS_VOICE_NAME", "en-GB-Neural2-B"),
		},
		RateLimit: RateLimitConfig{
			RPS:   rateRPS,
			Burst: rateBurst,
		},
	}

	return cfg, nil
}

func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	return strconv.Atoi(v)
}
