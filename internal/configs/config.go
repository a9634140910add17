package configs

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"listings-parser/internal/constants"
	"listings-parser/internal/core/domain"

	"github.com/joho/godotenv"
)

// HTTPConfig хранит настройки входящего HTTP API
type HTTPConfig struct {
	Addr            string
	ShutdownTimeout time.Duration
}

// DirectoryConfig хранит адрес каталога
type DirectoryConfig struct {
	BaseURL string
}

// FetchConfig хранит настройки загрузчика страниц
type FetchConfig struct {
	Timeout   time.Duration
	UserAgent string
}

// SynthesisConfig хранит настройки сборки ответа
type SynthesisConfig struct {
	MaxListings            int
	VerifiedFallbackChance float64
	RandomSeed             uint64
}

// LogConfig хранит настройки логгера
type LogConfig struct {
	Level  string
	Format string
}

// RabbitMQConfig хранит конфигурацию для RabbitMQ. Пустой URL отключает
// публикацию событий.
type RabbitMQConfig struct {
	URL      string
	Exchange string
}

// Enabled сообщает, настроен ли брокер.
func (c RabbitMQConfig) Enabled() bool {
	return strings.TrimSpace(c.URL) != ""
}

// AppConfig хранит всю конфигурацию приложения
type AppConfig struct {
	HTTP      HTTPConfig
	Directory DirectoryConfig
	Fetch     FetchConfig
	Synthesis SynthesisConfig
	Log       LogConfig
	RabbitMQ  RabbitMQConfig
}

// LoadConfig загружает конфигурацию из переменных окружения.
// Отсутствие .env файла не является ошибкой.
func LoadConfig(envPath ...string) (*AppConfig, error) {
	var err error
	if len(envPath) > 0 {
		err = godotenv.Load(envPath[0])
	} else {
		err = godotenv.Load()
	}
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("could not load .env file (path: %v): %w", envPath, err)
		}
		log.Printf("Info: .env file not found (path: %v), using process environment.\n", envPath)
	}

	cfg := &AppConfig{}

	cfg.HTTP.Addr = getEnvAsString("HTTP_ADDR", ":8080")
	cfg.HTTP.ShutdownTimeout = time.Duration(getEnvAsInt("HTTP_SHUTDOWN_TIMEOUT", 10)) * time.Second

	cfg.Directory.BaseURL = strings.TrimRight(getEnvAsString("DIRECTORY_BASE_URL", constants.DefaultDirectoryBaseURL), "/")

	cfg.Fetch.Timeout = time.Duration(getEnvAsInt("FETCH_TIMEOUT", 15)) * time.Second
	cfg.Fetch.UserAgent = getEnvAsString("FETCH_USER_AGENT", "")

	cfg.Synthesis.MaxListings = getEnvAsInt("MAX_LISTINGS", domain.MaxListings)
	cfg.Synthesis.VerifiedFallbackChance = getEnvAsFloat("VERIFIED_FALLBACK_CHANCE", 0.5)
	cfg.Synthesis.RandomSeed = uint64(getEnvAsInt("RANDOM_SEED", 0))

	cfg.Log.Level = getEnvAsString("LOG_LEVEL", "info")
	cfg.Log.Format = getEnvAsString("LOG_FORMAT", "json")

	// RabbitMQ необязателен
	cfg.RabbitMQ.URL = getEnvAsString("RABBITMQ_URL", "")
	cfg.RabbitMQ.Exchange = getEnvAsString("RABBITMQ_EXCHANGE", constants.ExchangeSearchEvents)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate проверяет значения, без которых сервис не может стартовать.
func (c *AppConfig) Validate() error {
	u, err := url.Parse(c.Directory.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("DIRECTORY_BASE_URL must be an absolute URL, got %q", c.Directory.BaseURL)
	}
	if c.Fetch.Timeout <= 0 {
		return fmt.Errorf("FETCH_TIMEOUT must be positive")
	}
	if c.Synthesis.MaxListings <= 0 || c.Synthesis.MaxListings > domain.MaxListings {
		return fmt.Errorf("MAX_LISTINGS must be in [1, %d], got %d", domain.MaxListings, c.Synthesis.MaxListings)
	}
	if c.Synthesis.VerifiedFallbackChance < 0 || c.Synthesis.VerifiedFallbackChance > 1 {
		return fmt.Errorf("VERIFIED_FALLBACK_CHANCE must be in [0, 1], got %v", c.Synthesis.VerifiedFallbackChance)
	}
	if c.RabbitMQ.Enabled() && c.RabbitMQ.Exchange == "" {
		return fmt.Errorf("RABBITMQ_EXCHANGE is required when RABBITMQ_URL is set")
	}
	return nil
}

// getEnvAsString читает переменную окружения как строку или возвращает значение по умолчанию
func getEnvAsString(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvAsInt читает переменную окружения как int или возвращает значение по умолчанию
// Логирует ошибку, если переменная есть, но не может быть преобразована в int
func getEnvAsInt(key string, defaultValue int) int {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}

	valueInt, err := strconv.Atoi(strings.TrimSpace(valueStr))
	if err != nil {
		log.Printf("Warning: Environment variable %s (value: %s) could not be parsed as int: %v. Using default value: %d\n", key, valueStr, err, defaultValue)
		return defaultValue
	}
	return valueInt
}

// getEnvAsFloat читает переменную окружения как float64 или возвращает значение по умолчанию
func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}

	valueFloat, err := strconv.ParseFloat(strings.TrimSpace(valueStr), 64)
	if err != nil {
		log.Printf("Warning: Environment variable %s (value: %s) could not be parsed as float: %v. Using default value: %v\n", key, valueStr, err, defaultValue)
		return defaultValue
	}
	return valueFloat
}
