package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad(t *testing.T) {
	t.Run("uses defaults when nothing is set", func(t *testing.T) {
		clearEnv(t)

		cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if cfg.CarRatePerHour != 1.5 {
			t.Fatalf("expected car rate 1.5, got %v", cfg.CarRatePerHour)
		}
		if cfg.BikeRatePerHour != 1.0 {
			t.Fatalf("expected bike rate 1.0, got %v", cfg.BikeRatePerHour)
		}
		if cfg.Repository != RepositoryMemory || cfg.EventBus != EventBusMemory {
			t.Fatalf("expected memory repository and bus, got %s/%s", cfg.Repository, cfg.EventBus)
		}
		if len(cfg.KafkaBrokers) != 1 || cfg.KafkaBrokers[0] != "localhost:9092" {
			t.Fatalf("unexpected kafka brokers %v", cfg.KafkaBrokers)
		}
	})

	t.Run("reads rates from env file without overriding the environment", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("BIKE_RATE_PER_HOUR", "0.8")

		path := filepath.Join(t.TempDir(), ".env")
		content := "CAR_RATE_PER_HOUR=2.25\nBIKE_RATE_PER_HOUR=9\nKAFKA_BROKERS=k1:9092, k2:9092,\n"
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			t.Fatalf("write env file: %v", err)
		}

		cfg, err := Load(path)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if cfg.CarRatePerHour != 2.25 {
			t.Fatalf("expected car rate 2.25, got %v", cfg.CarRatePerHour)
		}
		if cfg.BikeRatePerHour != 0.8 {
			t.Fatalf("expected bike rate 0.8 from environment, got %v", cfg.BikeRatePerHour)
		}
		if len(cfg.KafkaBrokers) != 2 || cfg.KafkaBrokers[1] != "k2:9092" {
			t.Fatalf("unexpected kafka brokers %v", cfg.KafkaBrokers)
		}
	})

	t.Run("rejects invalid rates", func(t *testing.T) {
		for _, value := range []string{"-1", "abc", "NaN", "+Inf"} {
			clearEnv(t)
			t.Setenv("CAR_RATE_PER_HOUR", value)
			if _, err := Load(filepath.Join(t.TempDir(), "missing.env")); err == nil {
				t.Fatalf("expected error for CAR_RATE_PER_HOUR=%q", value)
			}
		}
	})

	t.Run("requires a dsn for postgres", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("REPOSITORY", RepositoryPostgres)
		if _, err := Load(filepath.Join(t.TempDir(), "missing.env")); err == nil {
			t.Fatalf("expected error without DATABASE_DSN")
		}
	})

	t.Run("rejects unknown event bus", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("EVENT_BUS", "carrier-pigeon")
		if _, err := Load(filepath.Join(t.TempDir(), "missing.env")); err == nil {
			t.Fatalf("expected error for unknown EVENT_BUS")
		}
	})
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"APP_NAME", "LOG_LEVEL", "HTTP_ADDR", "REPOSITORY", "DATABASE_DSN", "EVENT_BUS",
		"REDIS_ADDR", "REDIS_PASSWORD", "REDIS_DB", "KAFKA_BROKERS", "KAFKA_CONSUMER_GROUP",
		"CAR_RATE_PER_HOUR", "BIKE_RATE_PER_HOUR",
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}
