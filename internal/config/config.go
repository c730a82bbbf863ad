// Package config provides configuration management for the application.
package config

import (
	"errors"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Model artifact sources.
const (
	ModelSourceFile = "file"
	ModelSourceS3   = "s3"
)

var (
	ErrUnknownModelSource = errors.New("MODEL_SOURCE must be \"file\" or \"s3\"")
	ErrMissingModelBucket = errors.New("MODEL_BUCKET is required when MODEL_SOURCE=s3")
	ErrMissingModelDir    = errors.New("MODEL_DIR is required when MODEL_SOURCE=file")
)

// Config holds all configuration values for the application.
type Config struct {
	// AWS
	AWSRegion string

	// Model artifacts
	ModelSource          string
	ModelDir             string
	ModelBucket          string
	ModelPrefix          string
	ClassifierArtifact   string
	RegressorArtifact    string
	LabelEncoderArtifact string

	// Pipeline
	AlignToModelFeatures bool
	MaxBatchRows         int

	// Application
	Stage    string
	LogLevel string
	Port     string
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	// Load .env file if it exists (for local development)
	_ = godotenv.Load()

	cfg := &Config{
		// AWS
		AWSRegion: getEnv("AWS_REGION", "us-east-1"),

		// Model artifacts
		ModelSource:          strings.ToLower(getEnv("MODEL_SOURCE", ModelSourceFile)),
		ModelDir:             getEnv("MODEL_DIR", "./artifacts"),
		ModelBucket:          getEnv("MODEL_BUCKET", "emi-model-artifacts-dev"),
		ModelPrefix:          getEnv("MODEL_PREFIX", "models/"),
		ClassifierArtifact:   getEnv("CLASSIFIER_ARTIFACT", "emi_eligibility_classifier.json"),
		RegressorArtifact:    getEnv("REGRESSOR_ARTIFACT", "max_emi_regressor.json"),
		LabelEncoderArtifact: getEnv("LABEL_ENCODER_ARTIFACT", "emi_eligibility_label_encoder.json"),

		// Pipeline
		AlignToModelFeatures: getEnvBool("ALIGN_TO_MODEL_FEATURES", true),
		MaxBatchRows:         getEnvInt("MAX_BATCH_ROWS", 500),

		// Application
		Stage:    getEnv("STAGE", "dev"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		Port:     getEnv("PORT", "8080"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that the model source settings are usable.
func (c *Config) Validate() error {
	switch c.ModelSource {
	case ModelSourceFile:
		if c.ModelDir == "" {
			return ErrMissingModelDir
		}
	case ModelSourceS3:
		if c.ModelBucket == "" {
			return ErrMissingModelBucket
		}
	default:
		return ErrUnknownModelSource
	}
	return nil
}

// ArtifactNames returns the classifier, regressor and label encoder artifact names in that order.
func (c *Config) ArtifactNames() (classifier, regressor, labelEncoder string) {
	return c.ClassifierArtifact, c.RegressorArtifact, c.LabelEncoderArtifact
}

// getEnv retrieves an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt retrieves an environment variable as int or returns a default value.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvBool retrieves an environment variable as bool or returns a default value.
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
