package config

import (
	"os"
	"strings"
	"time"
)

// Config captures everything the server needs from the environment so main
// stays lean.
type Config struct {
	Addr          string
	JWTSigningKey string

	// PostgresURL selects the durable stores; empty means in-memory.
	PostgresURL string
	// RedisURL selects the cross-instance broadcaster; empty means in-process.
	RedisURL string
	// KafkaBrokers enables the audit trail when non-empty.
	KafkaBrokers []string
	AuditTopic   string

	BoardExpiry     time.Duration
	JanitorInterval time.Duration
	ShutdownTimeout time.Duration
}

// FromEnv builds a Config from EASEL_* environment variables, applying
// development defaults.
func FromEnv() Config {
	cfg := Config{
		Addr:            envOr("EASEL_ADDR", ":8080"),
		JWTSigningKey:   envOr("EASEL_JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
		PostgresURL:     os.Getenv("EASEL_POSTGRES_URL"),
		RedisURL:        os.Getenv("EASEL_REDIS_URL"),
		AuditTopic:      envOr("EASEL_AUDIT_TOPIC", "easel.audit"),
		BoardExpiry:     envDuration("EASEL_BOARD_EXPIRY", 72*time.Hour),
		JanitorInterval: envDuration("EASEL_JANITOR_INTERVAL", 10*time.Minute),
		ShutdownTimeout: envDuration("EASEL_SHUTDOWN_TIMEOUT", 15*time.Second),
	}

	if brokers := os.Getenv("EASEL_KAFKA_BROKERS"); brokers != "" {
		for _, broker := range strings.Split(brokers, ",") {
			if broker = strings.TrimSpace(broker); broker != "" {
				cfg.KafkaBrokers = append(cfg.KafkaBrokers, broker)
			}
		}
	}

	return cfg
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
