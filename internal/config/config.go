package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds application configuration. It is loaded once at startup and
// passed by value to the components that need it.
type Config struct {
	Server struct {
		Port              string   `yaml:"port"`
		MaxUploadMB       int64    `yaml:"max_upload_mb"`
		RequestsPerMinute int      `yaml:"requests_per_minute"`
		AllowOrigins      []string `yaml:"allow_origins"`
	} `yaml:"server"`

	Web struct {
		IndexPath string `yaml:"index_path"`
		StaticDir string `yaml:"static_dir"`
	} `yaml:"web"`

	OpenAI struct {
		APIKey  string `yaml:"api_key"`
		BaseURL string `yaml:"base_url"`
		Model   string `yaml:"model"`
	} `yaml:"openai"`

	HuggingFace struct {
		APIToken string `yaml:"api_token"`
		BaseURL  string `yaml:"base_url"`
		Model    string `yaml:"model"`
	} `yaml:"huggingface"`

	Gemini struct {
		APIKey    string `yaml:"api_key"`
		ModelName string `yaml:"model_name"`
	} `yaml:"gemini"`

	// RequestTimeout bounds every call to a remote backend.
	RequestTimeout time.Duration `yaml:"request_timeout"`

	Breaker struct {
		Enabled             bool          `yaml:"enabled"`
		ConsecutiveFailures uint32        `yaml:"consecutive_failures"`
		OpenTimeout         time.Duration `yaml:"open_timeout"`
	} `yaml:"breaker"`

	Log struct {
		Level       string `yaml:"level"`
		Development bool   `yaml:"development"`
	} `yaml:"log"`
}

// Default returns the configuration used when no file or environment
// overrides are present.
func Default() Config {
	var cfg Config
	cfg.Server.Port = "8000"
	cfg.Server.MaxUploadMB = 10
	cfg.Server.AllowOrigins = []string{"*"}
	cfg.Web.IndexPath = "web/templates/index.html"
	cfg.Web.StaticDir = "web/static"
	cfg.OpenAI.BaseURL = "https://api.openai.com/v1"
	cfg.OpenAI.Model = "gpt-4o-mini"
	cfg.HuggingFace.BaseURL = "https://api-inference.huggingface.co"
	cfg.HuggingFace.Model = "joeddav/xlm-roberta-large-xnli"
	cfg.Gemini.ModelName = "gemini-1.5-flash"
	cfg.RequestTimeout = 60 * time.Second
	cfg.Breaker.ConsecutiveFailures = 5
	cfg.Breaker.OpenTimeout = 30 * time.Second
	cfg.Log.Level = "info"
	cfg.Log.Development = true
	return cfg
}

// LoadConfig loads configuration from the YAML file at configPath, if it
// exists, then applies environment overrides.
func LoadConfig(configPath string) (Config, error) {
	cfg := Default()

	if configPath != "" {
		file, err := os.Open(configPath)
		switch {
		case err == nil:
			defer file.Close()
			decoder := yaml.NewDecoder(file)
			if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
				return cfg, fmt.Errorf("failed to decode config file: %w", err)
			}
		case !os.IsNotExist(err):
			return cfg, fmt.Errorf("failed to open config file: %w", err)
		}
	}

	// Expand environment variables in secrets
	cfg.OpenAI.APIKey = os.ExpandEnv(cfg.OpenAI.APIKey)
	cfg.HuggingFace.APIToken = os.ExpandEnv(cfg.HuggingFace.APIToken)
	cfg.Gemini.APIKey = os.ExpandEnv(cfg.Gemini.APIKey)

	applyEnv(&cfg)

	if cfg.RequestTimeout <= 0 {
		return cfg, fmt.Errorf("request_timeout must be positive, got %s", cfg.RequestTimeout)
	}
	cfg.OpenAI.BaseURL = strings.TrimRight(cfg.OpenAI.BaseURL, "/")
	cfg.HuggingFace.BaseURL = strings.TrimRight(cfg.HuggingFace.BaseURL, "/")

	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("PORT"); v != "" {
		cfg.Server.Port = v
	}
	if v := os.Getenv("MAX_UPLOAD_MB"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.Server.MaxUploadMB = n
		}
	}
	if v := os.Getenv("REQUESTS_PER_MINUTE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Server.RequestsPerMinute = n
		}
	}
	if v := os.Getenv("ALLOW_ORIGINS"); v != "" {
		cfg.Server.AllowOrigins = splitCSV(v)
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		cfg.OpenAI.APIKey = v
	}
	if v := os.Getenv("OPENAI_BASE_URL"); v != "" {
		cfg.OpenAI.BaseURL = v
	}
	if v := os.Getenv("OPENAI_MODEL"); v != "" {
		cfg.OpenAI.Model = v
	}
	if v := os.Getenv("HUGGINGFACE_API_TOKEN"); v != "" {
		cfg.HuggingFace.APIToken = v
	}
	if v := os.Getenv("HF_BASE_URL"); v != "" {
		cfg.HuggingFace.BaseURL = v
	}
	if v := os.Getenv("HF_ZERO_SHOT_MODEL"); v != "" {
		cfg.HuggingFace.Model = v
	}
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		cfg.Gemini.APIKey = v
	}
	if v := os.Getenv("GEMINI_MODEL"); v != "" {
		cfg.Gemini.ModelName = v
	}
	if v := os.Getenv("REQUEST_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.RequestTimeout = d
		}
	}
	if v := os.Getenv("BREAKER_ENABLED"); v != "" {
		cfg.Breaker.Enabled = parseBool(v, cfg.Breaker.Enabled)
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("LOG_DEVELOPMENT"); v != "" {
		cfg.Log.Development = parseBool(v, cfg.Log.Development)
	}
}

func parseBool(input string, fallback bool) bool {
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "1", "true", "yes", "y", "on":
		return true
	case "0", "false", "no", "n", "off":
		return false
	default:
		return fallback
	}
}

func splitCSV(input string) []string {
	parts := strings.Split(input, ",")
	var out []string
	for _, part := range parts {
		val := strings.TrimSpace(part)
		if val == "" {
			continue
		}
		out = append(out, val)
	}
	return out
}
