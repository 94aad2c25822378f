package common

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/joseph-ayodele/personal-info-parser/constants"
)

const (
	ProviderGroq      = "groq"
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"

	DefaultTextModel      = "llama-3.3-70b-versatile"
	DefaultImageModel     = "meta-llama/llama-4-scout-17b-16e-instruct"
	DefaultAnthropicModel = "claude-sonnet-4-5-20250929"

	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Config holds all application configuration
type Config struct {
	Env     string        `yaml:"env"`
	Server  ServerConfig  `yaml:"server"`
	LLM     LLMConfig     `yaml:"llm"`
	Image   ImageConfig   `yaml:"image"`
	Storage StorageConfig `yaml:"storage"`
	Lookup  LookupConfig  `yaml:"lookup"`
	Logging LoggingConfig `yaml:"logging"`
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	HTTPAddr        string        `yaml:"http_addr"`
	GRPCHealthAddr  string        `yaml:"grpc_health_addr"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// LLMConfig holds LLM-related configuration
type LLMConfig struct {
	Provider    string        `yaml:"provider"`
	APIKey      string        `yaml:"api_key"`
	BaseURL     string        `yaml:"base_url"`
	TextModel   string        `yaml:"text_model"`
	ImageModel  string        `yaml:"image_model"`
	MaxTokens   int           `yaml:"max_tokens"`
	Temperature float32       `yaml:"temperature"`
	Timeout     time.Duration `yaml:"timeout"`
	JSONMode    bool          `yaml:"json_mode"`
}

// ImageConfig bounds image uploads and remote fetches.
type ImageConfig struct {
	MaxBytes     int64         `yaml:"max_bytes"`
	FetchTimeout time.Duration `yaml:"fetch_timeout"`
}

// StorageConfig configures the S3-compatible client used for s3:// image URLs.
type StorageConfig struct {
	S3Region    string `yaml:"s3_region"`
	S3Endpoint  string `yaml:"s3_endpoint"`
	S3AccessKey string `yaml:"s3_access_key"`
	S3SecretKey string `yaml:"s3_secret_key"`
}

// Enabled reports whether enough is set to build an S3 client.
func (s StorageConfig) Enabled() bool {
	return s.S3Region != "" || s.S3Endpoint != ""
}

type LookupConfig struct {
	SeedPath string `yaml:"seed_path"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// IsDevelopment reports whether verbose error detail is enabled.
func (c *Config) IsDevelopment() bool {
	return strings.EqualFold(c.Env, EnvDevelopment)
}

// defaultConfig is the baseline before the YAML file and environment are applied.
func defaultConfig() *Config {
	return &Config{
		Env: EnvProduction,
		Server: ServerConfig{
			HTTPAddr:        ":8080",
			ReadTimeout:     30 * time.Second,
			IdleTimeout:     120 * time.Second,
			ShutdownTimeout: 15 * time.Second,
		},
		LLM: LLMConfig{
			Provider:    ProviderGroq,
			MaxTokens:   2048,
			Temperature: 0,
			Timeout:     45 * time.Second,
			JSONMode:    true,
		},
		Image: ImageConfig{
			MaxBytes:     constants.MaxImageBytesDefault,
			FetchTimeout: 20 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// LoadDotEnv loads .env from the working directory, then its parent. Variables
// already present in the process environment are never overwritten.
func LoadDotEnv() {
	for _, p := range []string{".env", "../.env"} {
		if _, err := os.Stat(p); err == nil {
			_ = godotenv.Load(p)
		}
	}
}

// LoadConfig loads configuration from an optional YAML file and environment
// variables. Environment values win over the file.
func LoadConfig() (*Config, error) {
	cfg := defaultConfig()

	path := getEnv("CONFIG_PATH", "")
	required := path != ""
	if path == "" {
		path = "config.yaml"
	}
	if err := cfg.loadFile(path, required); err != nil {
		return nil, err
	}

	cfg.applyEnv()
	cfg.applyDerived()
	return cfg, nil
}

func (c *Config) loadFile(path string, required bool) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if !required && errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return WrapError(err, "read config file")
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return WrapError(err, fmt.Sprintf("parse config file %s", path))
	}
	return nil
}

func (c *Config) applyEnv() {
	c.Env = getEnv("APP_ENV", c.Env)

	c.Server.HTTPAddr = getEnv("HTTP_ADDR", c.Server.HTTPAddr)
	c.Server.GRPCHealthAddr = getEnv("GRPC_HEALTH_ADDR", c.Server.GRPCHealthAddr)
	c.Server.ReadTimeout = getEnvAsDuration("HTTP_READ_TIMEOUT", c.Server.ReadTimeout)
	c.Server.WriteTimeout = getEnvAsDuration("HTTP_WRITE_TIMEOUT", c.Server.WriteTimeout)
	c.Server.IdleTimeout = getEnvAsDuration("HTTP_IDLE_TIMEOUT", c.Server.IdleTimeout)
	c.Server.ShutdownTimeout = getEnvAsDuration("SHUTDOWN_TIMEOUT", c.Server.ShutdownTimeout)

	c.LLM.Provider = strings.ToLower(getEnv("LLM_PROVIDER", c.LLM.Provider))
	c.LLM.APIKey = getEnv("LLM_API_KEY", getEnv(providerKeyEnv(c.LLM.Provider), c.LLM.APIKey))
	c.LLM.BaseURL = getEnv("LLM_BASE_URL", c.LLM.BaseURL)
	c.LLM.TextModel = getEnv("TEXT_PARSER_MODEL", c.LLM.TextModel)
	c.LLM.ImageModel = getEnv("IMAGE_PARSER_MODEL", c.LLM.ImageModel)
	c.LLM.MaxTokens = getEnvAsInt("LLM_MAX_TOKENS", c.LLM.MaxTokens)
	c.LLM.Temperature = getEnvAsFloat32("LLM_TEMPERATURE", c.LLM.Temperature)
	c.LLM.Timeout = getEnvAsDuration("LLM_TIMEOUT", c.LLM.Timeout)
	c.LLM.JSONMode = getEnvAsBool("LLM_JSON_MODE", c.LLM.JSONMode)

	c.Image.MaxBytes = getEnvAsInt64("MAX_IMAGE_BYTES", c.Image.MaxBytes)
	c.Image.FetchTimeout = getEnvAsDuration("IMAGE_FETCH_TIMEOUT", c.Image.FetchTimeout)

	c.Storage.S3Region = getEnv("S3_REGION", c.Storage.S3Region)
	c.Storage.S3Endpoint = getEnv("S3_ENDPOINT", c.Storage.S3Endpoint)
	c.Storage.S3AccessKey = getEnv("S3_ACCESS_KEY", c.Storage.S3AccessKey)
	c.Storage.S3SecretKey = getEnv("S3_SECRET_KEY", c.Storage.S3SecretKey)

	c.Lookup.SeedPath = getEnv("LOOKUP_SEED_PATH", c.Lookup.SeedPath)

	c.Logging.Level = getEnv("LOG_LEVEL", c.Logging.Level)
	c.Logging.Format = getEnv("LOG_FORMAT", c.Logging.Format)
}

// applyDerived fills values that depend on other settings.
func (c *Config) applyDerived() {
	if c.LLM.TextModel == "" {
		c.LLM.TextModel = DefaultTextModel
		if c.LLM.Provider == ProviderAnthropic {
			c.LLM.TextModel = DefaultAnthropicModel
		}
	}
	if c.LLM.ImageModel == "" {
		c.LLM.ImageModel = DefaultImageModel
		if c.LLM.Provider == ProviderAnthropic {
			c.LLM.ImageModel = c.LLM.TextModel
		}
	}
	// worst case per request: fetch, first pass, corrective retry, focused retry
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = c.Image.FetchTimeout + 3*c.LLM.Timeout + 10*time.Second
	}
}

func providerKeyEnv(provider string) string {
	switch provider {
	case ProviderOpenAI:
		return "OPENAI_API_KEY"
	case ProviderAnthropic:
		return "ANTHROPIC_API_KEY"
	default:
		return "GROQ_API_KEY"
	}
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat32(key string, defaultValue float32) float32 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 32); err == nil {
			return float32(floatVal)
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	switch c.LLM.Provider {
	case ProviderGroq, ProviderOpenAI, ProviderAnthropic:
	default:
		return NotConfiguredError(fmt.Sprintf("unknown LLM_PROVIDER %q", c.LLM.Provider))
	}
	if c.LLM.APIKey == "" {
		return NotConfiguredError(providerKeyEnv(c.LLM.Provider) + " is required")
	}
	if c.Server.HTTPAddr == "" {
		return NotConfiguredError("HTTP_ADDR is required")
	}
	if c.LLM.MaxTokens <= 0 {
		return NotConfiguredError("LLM_MAX_TOKENS must be positive")
	}
	if c.Image.MaxBytes <= 0 {
		return NotConfiguredError("MAX_IMAGE_BYTES must be positive")
	}
	return nil
}
