package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, []string{"kafka:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "market-api", cfg.ServiceName)
	assert.Equal(t, 10, cfg.OTPBcryptCost)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", "b1:9092, b2:9092 ,,")
	t.Setenv("OTP_BCRYPT_COST", "12")
	t.Setenv("HTTP_ADDR", ":9999")

	cfg := Load()
	assert.Equal(t, []string{"b1:9092", "b2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, 12, cfg.OTPBcryptCost)
	assert.Equal(t, ":9999", cfg.HTTPAddr)
}

func TestBadIntFallsBack(t *testing.T) {
	t.Setenv("OTP_BCRYPT_COST", "lots")
	assert.Equal(t, 10, Load().OTPBcryptCost)
}
