package config

import (
	"io"
	"testing"

	"github.com/sirupsen/logrus"
)

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"SECRET", "HTTP_PORT", "DATABASE_DSN", "REDIS_ADDR", "KAFKA_BROKERS", "MEDICINE_DELETE_POLICY", "LOW_STOCK_THRESHOLD", "CURRENCY_SYMBOL"} {
		t.Setenv(k, "")
	}
	cfg := Load(quietLogger())
	if cfg.HTTPPort != "8080" {
		t.Errorf("HTTPPort = %q, want 8080", cfg.HTTPPort)
	}
	if cfg.DatabaseDSN != "file:medbill.db" {
		t.Errorf("DatabaseDSN = %q", cfg.DatabaseDSN)
	}
	if cfg.MedicineDeletePolicy != DeleteCascade {
		t.Errorf("MedicineDeletePolicy = %q, want cascade", cfg.MedicineDeletePolicy)
	}
	if cfg.LowStockThreshold != 10 {
		t.Errorf("LowStockThreshold = %d, want 10", cfg.LowStockThreshold)
	}
	if len(cfg.KafkaBrokers) != 0 || cfg.RedisAddr != "" {
		t.Errorf("optional integrations should be disabled by default: %+v", cfg)
	}
	if cfg.CurrencySymbol != "Rs." {
		t.Errorf("CurrencySymbol = %q", cfg.CurrencySymbol)
	}
}

func TestLoadOverridesAndFallbacks(t *testing.T) {
	tests := []struct {
		name  string
		env   map[string]string
		check func(t *testing.T, cfg Config)
	}{
		{
			name: "non numeric port falls back",
			env:  map[string]string{"HTTP_PORT": "eighty"},
			check: func(t *testing.T, cfg Config) {
				if cfg.HTTPPort != "8080" {
					t.Errorf("HTTPPort = %q", cfg.HTTPPort)
				}
			},
		},
		{
			name: "broker list is split and trimmed",
			env:  map[string]string{"KAFKA_BROKERS": " k1:9092, ,k2:9092 "},
			check: func(t *testing.T, cfg Config) {
				if len(cfg.KafkaBrokers) != 2 || cfg.KafkaBrokers[0] != "k1:9092" || cfg.KafkaBrokers[1] != "k2:9092" {
					t.Errorf("KafkaBrokers = %v", cfg.KafkaBrokers)
				}
			},
		},
		{
			name: "restrict policy accepted case-insensitively",
			env:  map[string]string{"MEDICINE_DELETE_POLICY": "RESTRICT"},
			check: func(t *testing.T, cfg Config) {
				if cfg.MedicineDeletePolicy != DeleteRestrict {
					t.Errorf("MedicineDeletePolicy = %q", cfg.MedicineDeletePolicy)
				}
			},
		},
		{
			name: "unknown policy falls back to cascade",
			env:  map[string]string{"MEDICINE_DELETE_POLICY": "archive"},
			check: func(t *testing.T, cfg Config) {
				if cfg.MedicineDeletePolicy != DeleteCascade {
					t.Errorf("MedicineDeletePolicy = %q", cfg.MedicineDeletePolicy)
				}
			},
		},
		{
			name: "negative threshold falls back",
			env:  map[string]string{"LOW_STOCK_THRESHOLD": "-4"},
			check: func(t *testing.T, cfg Config) {
				if cfg.LowStockThreshold != 10 {
					t.Errorf("LowStockThreshold = %d", cfg.LowStockThreshold)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			tt.check(t, Load(quietLogger()))
		})
	}
}
