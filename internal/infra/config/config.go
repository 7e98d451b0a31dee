package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config aggregates runtime configuration used across the service.
type Config struct {
	HTTP        HTTPConfig        `yaml:"http"`
	Pipeline    PipelineConfig    `yaml:"pipeline"`
	Calculation CalculationConfig `yaml:"calculation"`
	LLM         LLMConfig         `yaml:"llm"`
	Geocoding   GeocodingConfig   `yaml:"geocoding"`
	Report      ReportConfig      `yaml:"report"`
}

// HTTPConfig controls server level behavior.
type HTTPConfig struct {
	Address      string          `yaml:"address"`
	ReadTimeout  time.Duration   `yaml:"readTimeout"`
	WriteTimeout time.Duration   `yaml:"writeTimeout"`
	CORSOrigins  []string        `yaml:"corsOrigins"`
	RateLimit    RateLimitConfig `yaml:"rateLimit"`
}

// RateLimitConfig sets the per-IP hourly quotas.
type RateLimitConfig struct {
	Enabled        bool `yaml:"enabled"`
	ReportsPerHour int  `yaml:"reportsPerHour"`
	ChartsPerHour  int  `yaml:"chartsPerHour"`
}

// PipelineConfig bounds a whole report run.
type PipelineConfig struct {
	Timeout time.Duration `yaml:"timeout"`
}

// CalculationConfig points at the chart calculation service.
type CalculationConfig struct {
	BaseURL string        `yaml:"baseUrl"`
	Timeout time.Duration `yaml:"timeout"`
}

// LLM providers.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderOffline   = "offline"
)

// LLMConfig selects and tunes the narrative provider.
type LLMConfig struct {
	Provider        string        `yaml:"provider"`
	APIKey          string        `yaml:"apiKey"`
	BaseURL         string        `yaml:"baseUrl"`
	Model           string        `yaml:"model"`
	MaxOutputTokens int           `yaml:"maxOutputTokens"`
	Temperature     float32       `yaml:"temperature"`
	Timeout         time.Duration `yaml:"timeout"`
}

// GeocodingConfig controls place lookup.
type GeocodingConfig struct {
	BaseURL     string        `yaml:"baseUrl"`
	UserAgent   string        `yaml:"userAgent"`
	Timeout     time.Duration `yaml:"timeout"`
	MinInterval time.Duration `yaml:"minInterval"`
	Cache       CacheConfig   `yaml:"cache"`
}

// CacheConfig selects the resolution cache backend.
type CacheConfig struct {
	Backend string `yaml:"backend"`
	Addr    string `yaml:"addr"`
	Prefix  string `yaml:"prefix"`
}

// ReportConfig controls rendering and artifact storage.
type ReportConfig struct {
	OutputDir        string        `yaml:"outputDir"`
	PublicPrefix     string        `yaml:"publicPrefix"`
	PDFFailurePolicy string        `yaml:"pdfFailurePolicy"`
	TemplateDir      string        `yaml:"templateDir"`
	Storage          StorageConfig `yaml:"storage"`
	Chrome           ChromeConfig  `yaml:"chrome"`
}

// StorageConfig selects where artifacts are written.
type StorageConfig struct {
	Backend   string `yaml:"backend"`
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"accessKey"`
	SecretKey string `yaml:"secretKey"`
	Bucket    string `yaml:"bucket"`
	Region    string `yaml:"region"`
	Prefix    string `yaml:"prefix"`
}

// ChromeConfig configures the headless browser used for PDF output.
type ChromeConfig struct {
	ExecPath      string        `yaml:"execPath"`
	Timeout       time.Duration `yaml:"timeout"`
	MaxConcurrent int           `yaml:"maxConcurrent"`
}

// Load reads .env, the YAML file and environment variables, in that order.
func Load() (*Config, error) {
	if path := os.Getenv("DOTENV_PATH"); path != "" {
		if err := godotenv.Load(path); err != nil {
			return nil, fmt.Errorf("load env file: %w", err)
		}
	} else if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			return nil, fmt.Errorf("load env file: %w", err)
		}
	}

	cfg := defaultConfig()

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if err := hydrateFromFile(cfg, path); err != nil {
			return nil, err
		}
	} else if _, err := os.Stat("configs/config.yaml"); err == nil {
		if err := hydrateFromFile(cfg, "configs/config.yaml"); err != nil {
			return nil, err
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func hydrateFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("HTTP_ADDRESS"); v != "" {
		cfg.HTTP.Address = v
	} else if v := os.Getenv("PORT"); v != "" {
		cfg.HTTP.Address = ":" + v
	}
	if v := os.Getenv("HTTP_CORS_ORIGINS"); v != "" {
		cfg.HTTP.CORSOrigins = splitList(v)
	}
	if v := os.Getenv("HTTP_RATE_LIMIT_ENABLED"); v != "" {
		cfg.HTTP.RateLimit.Enabled = parseBool(v)
	}
	setInt(&cfg.HTTP.RateLimit.ReportsPerHour, "HTTP_RATE_LIMIT_REPORTS_PER_HOUR")
	setInt(&cfg.HTTP.RateLimit.ChartsPerHour, "HTTP_RATE_LIMIT_CHARTS_PER_HOUR")
	setDuration(&cfg.Pipeline.Timeout, "PIPELINE_TIMEOUT")

	if v := os.Getenv("CALCULATION_BASE_URL"); v != "" {
		cfg.Calculation.BaseURL = v
	} else if v := os.Getenv("MCP_SERVER_URL"); v != "" {
		cfg.Calculation.BaseURL = v
	}
	setDuration(&cfg.Calculation.Timeout, "CALCULATION_TIMEOUT")

	if v := os.Getenv("LLM_PROVIDER"); v != "" {
		cfg.LLM.Provider = strings.ToLower(v)
	}
	if v := os.Getenv("LLM_API_KEY"); v != "" {
		cfg.LLM.APIKey = v
	} else if v := os.Getenv("ANTHROPIC_API_KEY"); v != "" && cfg.LLM.Provider == ProviderAnthropic {
		cfg.LLM.APIKey = v
	}
	if v := os.Getenv("LLM_BASE_URL"); v != "" {
		cfg.LLM.BaseURL = v
	}
	if v := os.Getenv("LLM_MODEL"); v != "" {
		cfg.LLM.Model = v
	} else if v := os.Getenv("CLAUDE_MODEL"); v != "" && cfg.LLM.Provider == ProviderAnthropic {
		cfg.LLM.Model = v
	}
	setInt(&cfg.LLM.MaxOutputTokens, "LLM_MAX_OUTPUT_TOKENS")
	if v := os.Getenv("LLM_TEMPERATURE"); v != "" {
		if parsed, err := strconv.ParseFloat(v, 32); err == nil {
			cfg.LLM.Temperature = float32(parsed)
		}
	}
	setDuration(&cfg.LLM.Timeout, "LLM_TIMEOUT")

	if v := os.Getenv("GEOCODING_BASE_URL"); v != "" {
		cfg.Geocoding.BaseURL = v
	}
	if v := os.Getenv("GEOCODING_USER_AGENT"); v != "" {
		cfg.Geocoding.UserAgent = v
	}
	setDuration(&cfg.Geocoding.Timeout, "GEOCODING_TIMEOUT")
	setDuration(&cfg.Geocoding.MinInterval, "GEOCODING_MIN_INTERVAL")
	if v := os.Getenv("GEOCODING_CACHE_BACKEND"); v != "" {
		cfg.Geocoding.Cache.Backend = strings.ToLower(v)
	}
	if v := os.Getenv("GEOCODING_CACHE_ADDR"); v != "" {
		cfg.Geocoding.Cache.Addr = v
	}

	if v := os.Getenv("REPORT_OUTPUT_DIR"); v != "" {
		cfg.Report.OutputDir = v
	}
	if v := os.Getenv("REPORT_PDF_FAILURE_POLICY"); v != "" {
		cfg.Report.PDFFailurePolicy = strings.ToLower(v)
	}
	if v := os.Getenv("REPORT_TEMPLATE_DIR"); v != "" {
		cfg.Report.TemplateDir = v
	}
	if v := os.Getenv("REPORT_STORAGE_BACKEND"); v != "" {
		cfg.Report.Storage.Backend = strings.ToLower(v)
	}
	if v := os.Getenv("R2_ENDPOINT"); v != "" {
		cfg.Report.Storage.Endpoint = v
	}
	if v := os.Getenv("R2_ACCESS_KEY_ID"); v != "" {
		cfg.Report.Storage.AccessKey = v
	}
	if v := os.Getenv("R2_SECRET_ACCESS_KEY"); v != "" {
		cfg.Report.Storage.SecretKey = v
	}
	if v := os.Getenv("R2_BUCKET"); v != "" {
		cfg.Report.Storage.Bucket = v
	}
	if v := os.Getenv("CHROME_PATH"); v != "" {
		cfg.Report.Chrome.ExecPath = v
	}
	setDuration(&cfg.Report.Chrome.Timeout, "CHROME_TIMEOUT")
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			*dst = parsed
		}
	}
}

func setDuration(dst *time.Duration, key string) {
	if v := os.Getenv(key); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			*dst = parsed
		}
	}
}

func parseBool(v string) bool {
	return v == "1" || strings.EqualFold(v, "true")
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func defaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Address:      ":8080",
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 6 * time.Minute,
			RateLimit: RateLimitConfig{
				Enabled:        true,
				ReportsPerHour: 10,
				ChartsPerHour:  30,
			},
		},
		Pipeline: PipelineConfig{
			Timeout: 5 * time.Minute,
		},
		Calculation: CalculationConfig{
			BaseURL: "http://localhost:3000",
			Timeout: 30 * time.Second,
		},
		LLM: LLMConfig{
			Provider:        ProviderOpenAI,
			Model:           "gpt-4o-mini",
			MaxOutputTokens: 16000,
			Temperature:     0.7,
			Timeout:         4 * time.Minute,
		},
		Geocoding: GeocodingConfig{
			BaseURL:     "https://nominatim.openstreetmap.org",
			UserAgent:   "bazi-report/1.0",
			Timeout:     10 * time.Second,
			MinInterval: time.Second,
			Cache: CacheConfig{
				Backend: "memory",
				Prefix:  "geocode",
			},
		},
		Report: ReportConfig{
			OutputDir:        "reports",
			PublicPrefix:     "/reports",
			PDFFailurePolicy: "strict",
			Storage: StorageConfig{
				Backend: "disk",
				Region:  "auto",
			},
			Chrome: ChromeConfig{
				Timeout:       60 * time.Second,
				MaxConcurrent: 2,
			},
		},
	}
}

// Validate ensures the configuration is safe to use and trims trailing slashes
// from report.publicPrefix so routes and generated links agree.
func (c *Config) Validate() error {
	if c.HTTP.Address == "" {
		return errors.New("http.address cannot be empty")
	}
	if c.HTTP.RateLimit.Enabled {
		if c.HTTP.RateLimit.ReportsPerHour <= 0 {
			return errors.New("http.rateLimit.reportsPerHour must be positive")
		}
		if c.HTTP.RateLimit.ChartsPerHour <= 0 {
			return errors.New("http.rateLimit.chartsPerHour must be positive")
		}
	}
	if c.Pipeline.Timeout <= 0 {
		return errors.New("pipeline.timeout must be positive")
	}
	if strings.TrimSpace(c.Calculation.BaseURL) == "" {
		return errors.New("calculation.baseUrl cannot be empty")
	}
	if c.Calculation.Timeout <= 0 {
		return errors.New("calculation.timeout must be positive")
	}
	switch c.LLM.Provider {
	case ProviderOpenAI, ProviderAnthropic, ProviderOffline:
	default:
		return fmt.Errorf("llm.provider must be one of openai, anthropic, offline; got %q", c.LLM.Provider)
	}
	if strings.TrimSpace(c.LLM.Model) == "" {
		return errors.New("llm.model cannot be empty")
	}
	if c.LLM.MaxOutputTokens <= 0 {
		return errors.New("llm.maxOutputTokens must be positive")
	}
	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		return errors.New("llm.temperature must be within [0, 2]")
	}
	if strings.TrimSpace(c.Geocoding.BaseURL) == "" {
		return errors.New("geocoding.baseUrl cannot be empty")
	}
	if strings.TrimSpace(c.Geocoding.UserAgent) == "" {
		return errors.New("geocoding.userAgent cannot be empty")
	}
	if c.Geocoding.MinInterval < 0 {
		return errors.New("geocoding.minInterval cannot be negative")
	}
	switch c.Geocoding.Cache.Backend {
	case "memory":
	case "valkey":
		if strings.TrimSpace(c.Geocoding.Cache.Addr) == "" {
			return errors.New("geocoding.cache.addr cannot be empty when the valkey backend is selected")
		}
	default:
		return fmt.Errorf("geocoding.cache.backend must be memory or valkey; got %q", c.Geocoding.Cache.Backend)
	}
	switch c.Report.PDFFailurePolicy {
	case "strict", "partial":
	default:
		return fmt.Errorf("report.pdfFailurePolicy must be strict or partial; got %q", c.Report.PDFFailurePolicy)
	}
	if !strings.HasPrefix(c.Report.PublicPrefix, "/") {
		return errors.New("report.publicPrefix must start with /")
	}
	c.Report.PublicPrefix = strings.TrimRight(c.Report.PublicPrefix, "/")
	if c.Report.PublicPrefix == "" {
		return errors.New("report.publicPrefix must name a path below /")
	}
	switch c.Report.Storage.Backend {
	case "disk":
		if strings.TrimSpace(c.Report.OutputDir) == "" {
			return errors.New("report.outputDir cannot be empty")
		}
	case "r2":
		if c.Report.Storage.Endpoint == "" || c.Report.Storage.Bucket == "" {
			return errors.New("report.storage.endpoint and bucket are required for the r2 backend")
		}
		if c.Report.Storage.AccessKey == "" || c.Report.Storage.SecretKey == "" {
			return errors.New("report.storage credentials are required for the r2 backend")
		}
	default:
		return fmt.Errorf("report.storage.backend must be disk or r2; got %q", c.Report.Storage.Backend)
	}
	if c.Report.Chrome.Timeout <= 0 {
		return errors.New("report.chrome.timeout must be positive")
	}
	return nil
}
