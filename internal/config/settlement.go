package config

import (
	"os"
	"time"
)

// SettlementConfig controls how approved transactions are exported to the
// settlement queue.
type SettlementConfig struct {
	QueueKey       string
	Currency       string
	SourceBIC      string
	EnqueueTimeout time.Duration
}

func LoadSettlementConfig() *SettlementConfig {
	return &SettlementConfig{
		QueueKey:       getEnv("SETTLEMENT_QUEUE_KEY", "settlement_queue"),
		Currency:       getEnv("SETTLEMENT_CURRENCY", "USD"),
		SourceBIC:      getEnv("SETTLEMENT_SOURCE_BIC", "CARDGURD"),
		EnqueueTimeout: getEnvAsDuration("SETTLEMENT_ENQUEUE_TIMEOUT", 5*time.Second),
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvAsDuration(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if duration, err := time.ParseDuration(val); err == nil {
			return duration
		}
	}
	return defaultVal
}
