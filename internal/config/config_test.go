package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name     string
		envVars  map[string]string
		validate func(t *testing.T, cfg *Config)
	}{
		{
			name:    "load default configuration",
			envVars: map[string]string{},
			validate: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "0.0.0.0", cfg.ServerHost)
				assert.Equal(t, 8080, cfg.ServerPort)
				assert.Equal(t, "postgres", cfg.DBDriver)
				assert.Equal(t, 25, cfg.DBMaxOpenConnections)
				assert.Equal(t, 5*time.Minute, cfg.DBConnMaxLifetime)
				assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
				assert.Equal(t, "info", cfg.LogLevel)
				assert.Equal(t, 14400*time.Second, cfg.AuthTokenExpiration)
				assert.Equal(t, TransportKafka, cfg.Transport)
				assert.Equal(t, []string{"localhost:9092"}, cfg.Brokers())
				assert.Equal(t, 200*time.Millisecond, cfg.ConsumerRetryInitialInterval)
				assert.Equal(t, 120*time.Second, cfg.ConsumerRetryMaxElapsed)
				assert.Equal(t, 10, cfg.ConsumerMaxRedeliveries)
				assert.Equal(t, 500*time.Millisecond, cfg.OutboxInterval)
				assert.Equal(t, 50, cfg.OutboxBatchSize)
				assert.Equal(t, "sandbox", cfg.PaymentGatewayDriver)
				assert.Equal(t, "log", cfg.EmailDriver)
				assert.Equal(t, 3, cfg.PaymentGatewayRetryMax)
				assert.Equal(t, 3, cfg.EmailRetryMax)
				assert.False(t, cfg.TracingEnabled)
			},
		},
		{
			name: "load custom server configuration",
			envVars: map[string]string{
				"SERVER_HOST": "localhost",
				"SERVER_PORT": "9090",
			},
			validate: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "localhost", cfg.ServerHost)
				assert.Equal(t, 9090, cfg.ServerPort)
			},
		},
		{
			name: "load custom messaging configuration",
			envVars: map[string]string{
				"TRANSPORT":                          "memory",
				"KAFKA_BROKERS":                      "kafka-1:9092, kafka-2:9092,",
				"KAFKA_GROUP_PREFIX":                 "shop",
				"CONSUMER_RETRY_MAX_ELAPSED_SECONDS": "30",
				"CONSUMER_MAX_REDELIVERIES":          "4",
			},
			validate: func(t *testing.T, cfg *Config) {
				assert.Equal(t, TransportMemory, cfg.Transport)
				assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.Brokers())
				assert.Equal(t, "shop", cfg.KafkaGroupPrefix)
				assert.Equal(t, 30*time.Second, cfg.ConsumerRetryMaxElapsed)
				assert.Equal(t, 4, cfg.ConsumerMaxRedeliveries)
			},
		},
		{
			name: "load custom providers configuration",
			envVars: map[string]string{
				"JWT_SECRET":                      "top-secret",
				"PAYMENT_GATEWAY_DRIVER":          "http",
				"PAYMENT_GATEWAY_TIMEOUT_SECONDS": "3",
				"PAYMENT_WEBHOOK_SECRET":          "hook",
				"EMAIL_DRIVER":                    "http",
				"EMAIL_API_URL":                   "https://mail.local/send",
			},
			validate: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "top-secret", cfg.JWTSecret)
				assert.Equal(t, "http", cfg.PaymentGatewayDriver)
				assert.Equal(t, 3*time.Second, cfg.PaymentGatewayTimeout)
				assert.Equal(t, "hook", cfg.PaymentWebhookSecret)
				assert.Equal(t, "http", cfg.EmailDriver)
				assert.Equal(t, "https://mail.local/send", cfg.EmailAPIURL)
			},
		},
		{
			name: "load custom logging configuration",
			envVars: map[string]string{
				"LOG_LEVEL": "debug",
			},
			validate: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "debug", cfg.LogLevel)
				assert.Equal(t, "debug", cfg.GetGinMode())
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Clear environment
			os.Clearenv()

			for key, value := range tt.envVars {
				err := os.Setenv(key, value)
				require.NoError(t, err)
			}

			cfg := Load()

			tt.validate(t, cfg)
		})
	}
}

func TestGetGinMode(t *testing.T) {
	for _, level := range []string{"info", "warn", "error", "unknown"} {
		cfg := &Config{LogLevel: level}
		assert.Equal(t, "release", cfg.GetGinMode(), level)
	}
}
