package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
)

const (
	DeleteCascade  = "cascade"
	DeleteRestrict = "restrict"
)

// Config holds application configuration values.
type Config struct {
	Secret               string
	DatabaseDSN          string
	HTTPPort             string
	RedisAddr            string
	KafkaBrokers         []string
	KafkaTopic           string
	ServiceName          string
	LogLevel             string
	CurrencySymbol       string
	MedicineDeletePolicy string
	LowStockThreshold    int64
	SeedMedicinesPath    string
}

// Load reads configuration from environment variables with reasonable defaults.
func Load(log logrus.FieldLogger) Config {
	port := getenv("HTTP_PORT", "8080")
	// Validate that port is numeric.
	if _, err := strconv.Atoi(port); err != nil {
		log.Warnf("invalid HTTP_PORT value %q, defaulting to 8080", port)
		port = "8080"
	}

	policy := strings.ToLower(getenv("MEDICINE_DELETE_POLICY", DeleteCascade))
	if policy != DeleteCascade && policy != DeleteRestrict {
		log.Warnf("invalid MEDICINE_DELETE_POLICY value %q, defaulting to %s", policy, DeleteCascade)
		policy = DeleteCascade
	}

	threshold, err := strconv.ParseInt(getenv("LOW_STOCK_THRESHOLD", "10"), 10, 64)
	if err != nil || threshold < 0 {
		log.Warnf("invalid LOW_STOCK_THRESHOLD value, defaulting to 10")
		threshold = 10
	}

	return Config{
		Secret:               getenv("SECRET", "dev_secret"),
		DatabaseDSN:          getenv("DATABASE_DSN", "file:medbill.db"),
		HTTPPort:             port,
		RedisAddr:            os.Getenv("REDIS_ADDR"),
		KafkaBrokers:         splitCSV(os.Getenv("KAFKA_BROKERS")),
		KafkaTopic:           getenv("KAFKA_TOPIC", "invoice.events"),
		ServiceName:          getenv("SERVICE_NAME", "medbill-api"),
		LogLevel:             getenv("LOG_LEVEL", "info"),
		CurrencySymbol:       getenv("CURRENCY_SYMBOL", "Rs."),
		MedicineDeletePolicy: policy,
		LowStockThreshold:    threshold,
		SeedMedicinesPath:    os.Getenv("SEED_MEDICINES"),
	}
}

func getenv(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}
