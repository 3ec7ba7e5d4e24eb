package config

import (
	"fmt"
	"os"
	"time"

	"github.com/gcastro-vish/llm-fake-news-detector/internal/llm"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultPath is used when CONFIG_PATH is not set
const DefaultPath = "configs/config.yml"

// Config holds application configuration
type Config struct {
	Server struct {
		Port      string `yaml:"port"`
		Mode      string `yaml:"mode"`       // gin mode: release, debug or test
		AuthToken string `yaml:"auth_token"` // optional bearer token for /v1 routes
	} `yaml:"server"`

	Log LogConfig `yaml:"log"`

	// Providers are tried in order, see llm.MultiProviderClient
	Providers []llm.ProviderConfig `yaml:"providers"`

	MaxFailuresBeforeSwitch int `yaml:"max_failures_before_switch"`

	Evaluate EvaluateConfig `yaml:"evaluate"`
}

// LogConfig holds logger settings
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // json or console
}

// EvaluateConfig holds settings for the batch evaluation run
type EvaluateConfig struct {
	ServiceURL     string        `yaml:"service_url"`
	APIKey         string        `yaml:"api_key"`
	TruePath       string        `yaml:"true_path"`
	FakePath       string        `yaml:"fake_path"`
	OutputPath     string        `yaml:"output_path"`
	ReportPath     string        `yaml:"report_path"` // optional JSON report
	Timeout        time.Duration `yaml:"timeout"`
	MaxConcurrency int           `yaml:"max_concurrency"` // 0 means unbounded
}

// Path returns the config file location from CONFIG_PATH or the default
func Path() string {
	if p := os.Getenv("CONFIG_PATH"); p != "" {
		return p
	}
	return DefaultPath
}

// LoadConfig loads configuration from YAML file.
// A .env file in the working directory is loaded first, if present, so that
// ${VAR} references in the YAML can resolve against it.
func LoadConfig(configPath string) (*Config, error) {
	_ = godotenv.Load()

	config := &Config{}

	file, err := os.Open(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	if err := decoder.Decode(config); err != nil {
		return nil, fmt.Errorf("failed to decode config file: %w", err)
	}

	config.expandEnv()
	config.setDefaults()

	return config, nil
}

func (c *Config) expandEnv() {
	for i := range c.Providers {
		c.Providers[i].APIKey = os.ExpandEnv(c.Providers[i].APIKey)
		c.Providers[i].BaseURL = os.ExpandEnv(c.Providers[i].BaseURL)
	}
	c.Server.AuthToken = os.ExpandEnv(c.Server.AuthToken)
	c.Evaluate.APIKey = os.ExpandEnv(c.Evaluate.APIKey)
	c.Evaluate.ServiceURL = os.ExpandEnv(c.Evaluate.ServiceURL)
}

func (c *Config) setDefaults() {
	if c.Server.Port == "" {
		c.Server.Port = "8000"
	}

	if c.Server.Mode == "" {
		c.Server.Mode = "release"
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}

	if c.Log.Format == "" {
		c.Log.Format = "json"
	}

	if c.MaxFailuresBeforeSwitch == 0 {
		c.MaxFailuresBeforeSwitch = 3
	}

	if c.Evaluate.ServiceURL == "" {
		c.Evaluate.ServiceURL = "http://localhost:" + c.Server.Port
	}

	// The facade and the driver share one key unless the driver overrides it
	if c.Evaluate.APIKey == "" {
		c.Evaluate.APIKey = os.Getenv("OPENAI_API_KEY")
	}

	if c.Evaluate.TruePath == "" {
		c.Evaluate.TruePath = "data/true.txt"
	}

	if c.Evaluate.FakePath == "" {
		c.Evaluate.FakePath = "data/fake.txt"
	}

	if c.Evaluate.OutputPath == "" {
		c.Evaluate.OutputPath = "output/output.csv"
	}

	if c.Evaluate.Timeout == 0 {
		c.Evaluate.Timeout = 30 * time.Second
	}

	if c.Evaluate.MaxConcurrency < 0 {
		c.Evaluate.MaxConcurrency = 0
	}
}
