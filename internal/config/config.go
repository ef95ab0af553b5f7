package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
// The values are read by Viper from a config file or environment variables.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	S3        S3Config        `mapstructure:"s3"`
	JWT       JWTConfig       `mapstructure:"jwt"`
	OpenAI    OpenAIConfig    `mapstructure:"openai"`
	Assistant AssistantConfig `mapstructure:"assistant"`
}

type ServerConfig struct {
	Address string `mapstructure:"address"`
}

type DatabaseConfig struct {
	URI  string `mapstructure:"uri"`
	Name string `mapstructure:"name"`
}

type S3Config struct {
	Endpoint        string `mapstructure:"endpoint"`
	Region          string `mapstructure:"region"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	BucketName      string `mapstructure:"bucket_name"`
	UseSSL          bool   `mapstructure:"use_ssl"`
}

// JWTConfig defines JWT specific configuration. Token issuance lives in the
// auth service in front of this one; we only verify.
type JWTConfig struct {
	Secret string `mapstructure:"secret"`
}

// OpenAIConfig defines the model backend connection.
type OpenAIConfig struct {
	BaseURL string `mapstructure:"base_url"`
	APIKey  string `mapstructure:"api_key"`
	// Model is the default (cheap) tier; ExpensiveModel is used when the
	// intent classifier decides a turn warrants it.
	Model          string        `mapstructure:"model"`
	ExpensiveModel string        `mapstructure:"expensive_model"`
	Temperature    float64       `mapstructure:"temperature"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

// AssistantConfig tunes the verification and retrieval behavior.
type AssistantConfig struct {
	// MaxVerifierIterations bounds the diet completeness loop.
	MaxVerifierIterations int `mapstructure:"max_verifier_iterations"`
	// SimilarityThreshold is the Jaccard score above which a supplement is
	// considered a near-duplicate and the loop stalls.
	SimilarityThreshold float64 `mapstructure:"similarity_threshold"`
	// RetrievalLimit caps how many content items ground a reply.
	RetrievalLimit int `mapstructure:"retrieval_limit"`
}

// LoadConfig reads configuration from file or environment variables.
func LoadConfig(path string) (config Config, err error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	// Environment variable handling: server.address -> SERVER_ADDRESS, etc.
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(`.`, `_`))

	viper.SetDefault("server.address", ":8080")
	viper.SetDefault("database.uri", "mongodb://localhost:27017")
	viper.SetDefault("database.name", "coach_assistant")
	viper.SetDefault("s3.use_ssl", true)
	viper.SetDefault("openai.base_url", "https://api.openai.com/v1")
	viper.SetDefault("openai.model", "gpt-4o-mini")
	viper.SetDefault("openai.expensive_model", "gpt-4o")
	viper.SetDefault("openai.temperature", 0.7)
	viper.SetDefault("openai.request_timeout", "60s")
	viper.SetDefault("assistant.max_verifier_iterations", 3)
	viper.SetDefault("assistant.similarity_threshold", 0.8)
	viper.SetDefault("assistant.retrieval_limit", 10)

	err = viper.ReadInConfig()
	// A missing config file is fine; env vars and defaults still apply.
	if _, ok := err.(viper.ConfigFileNotFoundError); ok {
		err = nil
	} else if err != nil {
		return
	}

	err = viper.Unmarshal(&config)
	if err != nil {
		return
	}

	return config, nil
}
