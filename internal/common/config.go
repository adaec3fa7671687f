package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/joseph-ayodele/apl-diff/constants"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Fixtures FixturesConfig `yaml:"fixtures"`
	OCR      OCRConfig      `yaml:"ocr"`
	LLM      LLMConfig      `yaml:"llm"`
	Pipeline PipelineConfig `yaml:"pipeline"`
	Queue    QueueConfig    `yaml:"queue"`
	Registry RegistryConfig `yaml:"registry"`
	LogLevel string         `yaml:"log_level"`
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	HTTPAddr        string        `yaml:"http_addr"`
	GRPCAddr        string        `yaml:"grpc_addr"` // empty disables the health server
	AllowedOrigins  []string      `yaml:"allowed_origins"`
	MaxUploadMB     int           `yaml:"max_upload_mb"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// FixturesConfig locates the validated example pair and its diff.
type FixturesConfig struct {
	Dir     string `yaml:"dir"`
	OldFile string `yaml:"old_file"`
	NewFile string `yaml:"new_file"`
	Diff    string `yaml:"diff"`
}

// OCRConfig holds text extraction configuration
type OCRConfig struct {
	Pdftotext     string `yaml:"pdftotext"`
	Pdftoppm      string `yaml:"pdftoppm"`
	Tesseract     string `yaml:"tesseract"`
	OCRFallback   bool   `yaml:"ocr_fallback"`
	TempDir       string `yaml:"temp_dir"`
	TesseractLang string `yaml:"tesseract_lang"`
}

// LLMConfig holds LLM-related configuration
type LLMConfig struct {
	APIKey       string        `yaml:"api_key"`
	BaseURL      string        `yaml:"base_url"`
	DefaultModel string        `yaml:"default_model"`
	Timeout      time.Duration `yaml:"timeout"`
	Lenient      bool          `yaml:"lenient"`
}

// PipelineConfig holds stage behavior configuration
type PipelineConfig struct {
	ReferencePrefix string        `yaml:"reference_prefix"`
	StageTimeout    time.Duration `yaml:"stage_timeout"` // 0 = no per-stage deadline
}

// QueueConfig sizes the admission queue in front of the pipeline
type QueueConfig struct {
	Workers    int           `yaml:"workers"`
	Size       int           `yaml:"size"`
	JobTimeout time.Duration `yaml:"job_timeout"`
}

// RegistryConfig selects the task registry backend
type RegistryConfig struct {
	Driver string `yaml:"driver"` // memory | sqlite | postgres
	DSN    string `yaml:"dsn"`
}

// Registry drivers.
const (
	RegistryMemory   = "memory"
	RegistrySQLite   = "sqlite"
	RegistryPostgres = "postgres"
)

// DefaultConfig returns the built-in defaults, before file and environment overrides.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			HTTPAddr:        ":8000",
			GRPCAddr:        "",
			AllowedOrigins:  []string{"*"},
			MaxUploadMB:     32,
			ShutdownTimeout: 10 * time.Second,
		},
		Fixtures: FixturesConfig{
			Dir:     "./fixtures",
			OldFile: constants.DefaultFixtureOld,
			NewFile: constants.DefaultFixtureNew,
			Diff:    constants.DefaultFixtureDiff,
		},
		OCR: OCRConfig{
			Pdftotext:     "pdftotext",
			Pdftoppm:      "pdftoppm",
			Tesseract:     "tesseract",
			OCRFallback:   false,
			TesseractLang: "eng",
		},
		LLM: LLMConfig{
			BaseURL:      "https://api.openai.com/v1",
			DefaultModel: "gpt-4.1",
			Timeout:      5 * time.Minute,
			Lenient:      true,
		},
		Pipeline: PipelineConfig{
			ReferencePrefix: constants.DefaultReferencePrefix,
			StageTimeout:    5 * time.Minute,
		},
		Queue: QueueConfig{
			Workers:    4,
			Size:       64,
			JobTimeout: 20 * time.Minute,
		},
		Registry: RegistryConfig{
			Driver: RegistryMemory,
		},
		LogLevel: "info",
	}
}

// LoadConfig builds the configuration from defaults, then the YAML file named by
// APL_CONFIG_FILE (if any), then environment variables.
func LoadConfig() (*Config, error) {
	cfg := DefaultConfig()

	if path := os.Getenv("APL_CONFIG_FILE"); path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(b, cfg); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	applyEnv(cfg)
	return cfg, nil
}

func applyEnv(c *Config) {
	c.Server.HTTPAddr = getEnv("HTTP_ADDR", c.Server.HTTPAddr)
	c.Server.GRPCAddr = getEnv("GRPC_ADDR", c.Server.GRPCAddr)
	c.Server.AllowedOrigins = getEnvAsList("CORS_ALLOWED_ORIGINS", c.Server.AllowedOrigins)
	c.Server.MaxUploadMB = getEnvAsInt("MAX_UPLOAD_MB", c.Server.MaxUploadMB)
	c.Server.ShutdownTimeout = getEnvAsDuration("SHUTDOWN_TIMEOUT", c.Server.ShutdownTimeout)

	c.Fixtures.Dir = getEnv("FIXTURES_DIR", c.Fixtures.Dir)
	c.Fixtures.OldFile = getEnv("FIXTURE_OLD", c.Fixtures.OldFile)
	c.Fixtures.NewFile = getEnv("FIXTURE_NEW", c.Fixtures.NewFile)
	c.Fixtures.Diff = getEnv("FIXTURE_DIFF", c.Fixtures.Diff)

	c.OCR.Pdftotext = getEnv("PDFTOTEXT_BIN", c.OCR.Pdftotext)
	c.OCR.Pdftoppm = getEnv("PDFTOPPM_BIN", c.OCR.Pdftoppm)
	c.OCR.Tesseract = getEnv("TESSERACT_BIN", c.OCR.Tesseract)
	c.OCR.OCRFallback = getEnvAsBool("OCR_FALLBACK", c.OCR.OCRFallback)
	c.OCR.TempDir = getEnv("OCR_TEMP_DIR", c.OCR.TempDir)

	c.LLM.APIKey = getEnv("OPENAI_API_KEY", c.LLM.APIKey)
	c.LLM.BaseURL = getEnv("OPENAI_BASE_URL", c.LLM.BaseURL)
	c.LLM.DefaultModel = getEnv("DEFAULT_MODEL", c.LLM.DefaultModel)
	c.LLM.Timeout = getEnvAsDuration("OPENAI_TIMEOUT", c.LLM.Timeout)
	c.LLM.Lenient = getEnvAsBool("LLM_LENIENT", c.LLM.Lenient)

	c.Pipeline.ReferencePrefix = getEnv("REFERENCE_PREFIX", c.Pipeline.ReferencePrefix)
	c.Pipeline.StageTimeout = getEnvAsDuration("STAGE_TIMEOUT", c.Pipeline.StageTimeout)

	c.Queue.Workers = getEnvAsInt("WORKERS", c.Queue.Workers)
	c.Queue.Size = getEnvAsInt("QUEUE_SIZE", c.Queue.Size)
	c.Queue.JobTimeout = getEnvAsDuration("JOB_TIMEOUT", c.Queue.JobTimeout)

	c.Registry.Driver = getEnv("REGISTRY_DRIVER", c.Registry.Driver)
	c.Registry.DSN = getEnv("REGISTRY_DSN", c.Registry.DSN)

	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
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

func getEnvAsList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, p := range strings.Split(value, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	if c.Server.HTTPAddr == "" {
		return NewAppError(CodeInvalidInput, "HTTP_ADDR is required", ErrInvalidInput)
	}
	if c.Queue.Workers <= 0 {
		return NewAppError(CodeInvalidInput, "WORKERS must be positive", ErrInvalidInput)
	}
	if c.Queue.Size <= 0 {
		return NewAppError(CodeInvalidInput, "QUEUE_SIZE must be positive", ErrInvalidInput)
	}
	if c.Pipeline.StageTimeout < 0 {
		return NewAppError(CodeInvalidInput, "STAGE_TIMEOUT must not be negative", ErrInvalidInput)
	}
	switch c.Registry.Driver {
	case RegistryMemory:
	case RegistrySQLite, RegistryPostgres:
		if c.Registry.DSN == "" {
			return NewAppError(CodeInvalidInput, "REGISTRY_DSN is required for driver "+c.Registry.Driver, ErrInvalidInput)
		}
	default:
		return NewAppError(CodeInvalidInput, fmt.Sprintf("unknown REGISTRY_DRIVER %q", c.Registry.Driver), ErrInvalidInput)
	}
	return nil
}
