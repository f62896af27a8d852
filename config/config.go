package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

type Config struct {
	Gemini  GeminiConfig
	Webhook WebhookConfig

	PostgresURL        string
	PostgresSecretPath string

	LogLevel        log.Level
	LogFormat       LogFormat
	TestModeEnabled bool
}

type GeminiConfig struct {
	Model           string
	APIKey          string
	SecretPath      string
	ClassifyTimeout time.Duration
}

type WebhookConfig struct {
	Port int
}

type LogFormat string

const (
	LogFormatText = "text"
	LogFormatJSON = "json"
)

type EnvfileKey string

const (
	// Postgres connection string to use for database connections
	EnvfileKeyPostgresURL = "POSTGRES_URL"
	// AWS Secrets Manager path where Postgres connection string can be found
	EnvfileKeyPostgresSecretsPath = "POSTGRES_SECRETS_PATH"

	// Gemini API key, used directly if set
	EnvfileKeyGeminiAPIKey = "GEMINI_API_KEY"
	// AWS Secrets Manager path where the Gemini API key can be found
	EnvfileKeyGeminiSecretPath = "GEMINI_SECRETS_PATH"
	// Gemini model name used for comment classification
	EnvfileKeyGeminiModel = "GEMINI_MODEL"
	// Upper bound on a single classification call, in seconds
	EnvfileKeyClassifyTimeout = "CLASSIFY_TIMEOUT"

	// Port the webhook server listens on
	EnvfileKeyWebhookPort = "WEBHOOK_PORT"

	// Log level (e.g. "debug", "info", "warn", "error")
	EnvfileKeyLogLevel = "LOG_LEVEL"
	// Log output format (e.g. "text", "json")
	EnvfileKeyLogFormat = "LOG_FORMAT"
	// Enables "test mode" (server simulates platform calls, etc.)
	EnvfileKeyTestMode = "TEST_MODE"
)

const (
	defaultGeminiModel     = "gemini-1.5-flash"
	defaultClassifyTimeout = 30 * time.Second
	defaultWebhookPort     = 8080
)

func FromEnvfile() Config {
	viper.AddConfigPath(".")
	viper.SetConfigName(".env")
	viper.SetConfigType("dotenv")

	err := viper.ReadInConfig()
	if err != nil {
		log.Fatalf("error reading config: %v", err)
	}

	geminiModel := getConfigString(EnvfileKeyGeminiModel)
	if geminiModel == "" {
		geminiModel = defaultGeminiModel
	}

	geminiAPIKey := getConfigString(EnvfileKeyGeminiAPIKey)
	geminiSecretPath := getConfigString(EnvfileKeyGeminiSecretPath)
	if geminiAPIKey == "" && geminiSecretPath == "" {
		log.Fatal("gemini not configured")
	}

	classifyTimeout := defaultClassifyTimeout
	if seconds := getConfigInt(EnvfileKeyClassifyTimeout); seconds > 0 {
		classifyTimeout = time.Duration(seconds) * time.Second
	}

	webhookPort := getConfigInt(EnvfileKeyWebhookPort)
	if webhookPort == 0 {
		webhookPort = defaultWebhookPort
	}

	logLevel, err := log.ParseLevel(getConfigString(EnvfileKeyLogLevel))
	if err != nil {
		// Default to info level but log a warning
		log.Warnf("unable to parse log level: %v", err)
		logLevel = log.InfoLevel
	}

	logFormat, err := parseLogFormat(getConfigString(EnvfileKeyLogFormat))
	if err != nil {
		// Default to text formatter but log a warning
		log.Warnf("unable to parse log format: %v", err)
		logFormat = LogFormatText
	}

	postgresURL := getConfigString(EnvfileKeyPostgresURL)
	postgresSecretsPath := getConfigString(EnvfileKeyPostgresSecretsPath)
	if postgresURL == "" && postgresSecretsPath == "" {
		log.Fatal("postgres not configured")
	}

	isTestMode := viper.GetBool(EnvfileKeyTestMode)

	return Config{
		Gemini: GeminiConfig{
			Model:           geminiModel,
			APIKey:          geminiAPIKey,
			SecretPath:      geminiSecretPath,
			ClassifyTimeout: classifyTimeout,
		},
		Webhook: WebhookConfig{
			Port: webhookPort,
		},
		PostgresURL:        postgresURL,
		PostgresSecretPath: postgresSecretsPath,
		LogLevel:           logLevel,
		LogFormat:          logFormat,
		TestModeEnabled:    isTestMode,
	}
}

func parseLogFormat(raw string) (LogFormat, error) {
	switch strings.ToLower(raw) {
	case LogFormatJSON:
		return LogFormatJSON, nil
	case LogFormatText:
		return LogFormatText, nil
	default:
		return "", fmt.Errorf("unidentified log format: %s", raw)
	}
}

// Gets a config value as a string from env vars or a .env file
func getConfigString(key string) string {
	value := os.Getenv(key)
	if value == "" {
		value = viper.GetString(key)
	}
	return value
}

// Gets a config value as an int from env vars or a .env file
func getConfigInt(key string) int {
	envVarValue := os.Getenv(key)
	if envVarValue == "" {
		return viper.GetInt(key)
	}
	value, err := strconv.Atoi(envVarValue)
	if err != nil {
		return 0
	}
	return value
}
