// Package config carrega a configuração do serviço a partir do ambiente e de um
// arquivo .env opcional.
package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	RepositoryMemory   = "memory"
	RepositoryPostgres = "postgres"

	EventBusMemory   = "memory"
	EventBusChannels = "channels"
	EventBusRedis    = "redis"
	EventBusKafka    = "kafka"
)

const (
	defaultCarRatePerHour  = 1.5
	defaultBikeRatePerHour = 1.0
)

type Config struct {
	AppName  string
	LogLevel string
	HTTPAddr string

	Repository  string
	DatabaseDSN string

	EventBus           string
	RedisAddr          string
	RedisPassword      string
	RedisDB            int
	KafkaBrokers       []string
	KafkaConsumerGroup string

	CarRatePerHour  float64
	BikeRatePerHour float64
}

// Load lê o arquivo .env (se existir) sem sobrescrever variáveis já definidas e monta a
// Config. Tarifas são lidas uma única vez aqui e não mudam durante a execução.
func Load(envFiles ...string) (Config, error) {
	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load env file: %w", err)
	}

	cfg := Config{
		AppName:            getEnv("APP_NAME", "parking-fare"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		HTTPAddr:           getEnv("HTTP_ADDR", ":8080"),
		Repository:         getEnv("REPOSITORY", RepositoryMemory),
		DatabaseDSN:        os.Getenv("DATABASE_DSN"),
		EventBus:           getEnv("EVENT_BUS", EventBusMemory),
		RedisAddr:          getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:      os.Getenv("REDIS_PASSWORD"),
		KafkaBrokers:       parseCSV(getEnv("KAFKA_BROKERS", "localhost:9092")),
		KafkaConsumerGroup: getEnv("KAFKA_CONSUMER_GROUP", "parking-fare"),
	}

	var err error
	if cfg.RedisDB, err = getInt("REDIS_DB", 0); err != nil {
		return Config{}, err
	}
	if cfg.CarRatePerHour, err = getRate("CAR_RATE_PER_HOUR", defaultCarRatePerHour); err != nil {
		return Config{}, err
	}
	if cfg.BikeRatePerHour, err = getRate("BIKE_RATE_PER_HOUR", defaultBikeRatePerHour); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch c.Repository {
	case RepositoryMemory:
	case RepositoryPostgres:
		if c.DatabaseDSN == "" {
			return errors.New("DATABASE_DSN is required when REPOSITORY=postgres")
		}
	default:
		return fmt.Errorf("unsupported REPOSITORY %q", c.Repository)
	}

	switch c.EventBus {
	case EventBusMemory, EventBusChannels, EventBusRedis:
	case EventBusKafka:
		if len(c.KafkaBrokers) == 0 {
			return errors.New("KAFKA_BROKERS is required when EVENT_BUS=kafka")
		}
	default:
		return fmt.Errorf("unsupported EVENT_BUS %q", c.EventBus)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) (int, error) {
	s := strings.TrimSpace(os.Getenv(key))
	if s == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid int for %s: %q", key, s)
	}
	return n, nil
}

// Tarifas negativas produziriam preços negativos.
func getRate(key string, fallback float64) (float64, error) {
	s := strings.TrimSpace(os.Getenv(key))
	if s == "" {
		return fallback, nil
	}
	rate, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid rate for %s: %q", key, s)
	}
	if rate < 0 || math.IsNaN(rate) || math.IsInf(rate, 0) {
		return 0, fmt.Errorf("rate %s must be a finite non-negative number, got %v", key, rate)
	}
	return rate, nil
}

func parseCSV(input string) []string {
	parts := strings.Split(input, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		out = append(out, part)
	}
	return out
}
