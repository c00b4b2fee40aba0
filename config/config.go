package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/joho/godotenv"

	"llm_api/logger"
)

// Broker modes. Embedded runs an in-process, non-persistent redis and the
// worker pool inside the API process; queued tasks are lost on restart.
const (
	BrokerEmbedded = "embedded"
	BrokerRedis    = "redis"
)

// Cache backends.
const (
	CacheMemory = "memory"
	CacheRedis  = "redis"
)

// Config holds all application configuration.
type Config struct {
	// Addr is the HTTP bind address.
	Addr string `yaml:"addr"`
	// DevMode enables debug logging and the pprof endpoints.
	DevMode bool `yaml:"dev_mode"`

	// GeminiAPIKey is read from the environment only, never from the file.
	GeminiAPIKey string `yaml:"-"`
	// Model is the Gemini model name.
	Model string `yaml:"model"`
	// Endpoint is the Gemini API base URL, overridable for proxies/tests.
	Endpoint string `yaml:"endpoint"`
	// PromptTemplate is the fixed instructional template; {question} is
	// replaced with the user's question.
	PromptTemplate string `yaml:"prompt_template"`

	Cache  CacheConfig  `yaml:"cache"`
	Broker BrokerConfig `yaml:"broker"`
	Queue  QueueConfig  `yaml:"queue"`
	Store  StoreConfig  `yaml:"store"`
}

// CacheConfig selects and sizes the response cache.
type CacheConfig struct {
	Backend    string `yaml:"backend"`
	Capacity   int    `yaml:"capacity"`
	RedisAddr  string `yaml:"redis_addr"`
	TTLSeconds int    `yaml:"ttl_seconds"`
}

// TTL returns the redis entry lifetime; zero means no expiry.
func (c CacheConfig) TTL() time.Duration {
	return time.Duration(c.TTLSeconds) * time.Second
}

// BrokerConfig selects the task broker.
type BrokerConfig struct {
	Mode      string `yaml:"mode"`
	RedisAddr string `yaml:"redis_addr"`
}

// QueueConfig sizes the worker pool.
type QueueConfig struct {
	Concurrency int `yaml:"concurrency"`
}

// StoreConfig locates the task store database.
type StoreConfig struct {
	Path string `yaml:"path"`
}

// New returns a configuration with default values.
func New() *Config {
	return &Config{
		Addr:           ":8080",
		Model:          "gemini-2.0-flash-lite",
		Endpoint:       "https://generativelanguage.googleapis.com/v1beta",
		PromptTemplate: "Answer the following question: {question}",
		Cache: CacheConfig{
			Backend:  CacheMemory,
			Capacity: 128,
		},
		Broker: BrokerConfig{
			Mode:      BrokerEmbedded,
			RedisAddr: "localhost:6379",
		},
		Queue: QueueConfig{
			Concurrency: 10,
		},
		Store: StoreConfig{
			Path: "file:llm_api_tasks.db",
		},
	}
}

// Load builds the configuration from defaults, an optional YAML file, and
// environment variables, in that order.
func Load(path string) (*Config, error) {
	cfg := New()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	cfg.loadEnvironment()
	return cfg, nil
}

// LoadDotenv loads a .env file from the working directory if one exists.
func LoadDotenv() {
	if err := godotenv.Load(); err != nil {
		logger.Debug("No .env file loaded: %v", err)
	} else {
		logger.Info("Loaded .env file from current directory")
	}
}

// loadEnvironment applies environment overrides. HOST/PORT/DEV_MODE and
// GEMINI_API_KEY keep the names the service has always used.
func (c *Config) loadEnvironment() {
	c.GeminiAPIKey = os.Getenv("GEMINI_API_KEY")

	host := os.Getenv("HOST")
	if port := os.Getenv("PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			c.Addr = fmt.Sprintf("%s:%d", host, p)
		}
	} else if host != "" {
		c.Addr = host + c.Addr
	}

	if dev := os.Getenv("DEV_MODE"); dev != "" {
		c.DevMode = dev == "true" || dev == "1"
	}

	if model := os.Getenv("GEMINI_MODEL"); model != "" {
		c.Model = model
	}

	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		c.Broker.RedisAddr = addr
		c.Broker.Mode = BrokerRedis
	}
}

// Validate checks the configuration. A missing API credential is fatal
// before the process serves anything.
func (c *Config) Validate() error {
	if c.GeminiAPIKey == "" {
		return fmt.Errorf("GEMINI_API_KEY not found in environment, set it in the environment or a .env file")
	}

	if c.Addr == "" {
		return fmt.Errorf("bind address cannot be empty")
	}

	if c.Model == "" {
		return fmt.Errorf("model cannot be empty")
	}

	if c.PromptTemplate == "" {
		return fmt.Errorf("prompt template cannot be empty")
	}

	switch c.Cache.Backend {
	case CacheMemory, CacheRedis:
	default:
		return fmt.Errorf("unknown cache backend %q, want %q or %q", c.Cache.Backend, CacheMemory, CacheRedis)
	}

	if c.Cache.Capacity <= 0 {
		return fmt.Errorf("cache capacity must be positive, got: %d", c.Cache.Capacity)
	}

	if c.Cache.Backend == CacheRedis && c.Cache.RedisAddr == "" {
		return fmt.Errorf("cache redis_addr cannot be empty with the redis backend")
	}

	switch c.Broker.Mode {
	case BrokerEmbedded, BrokerRedis:
	default:
		return fmt.Errorf("unknown broker mode %q, want %q or %q", c.Broker.Mode, BrokerEmbedded, BrokerRedis)
	}

	if c.Broker.Mode == BrokerRedis && c.Broker.RedisAddr == "" {
		return fmt.Errorf("broker redis_addr cannot be empty with the redis broker")
	}

	if c.Queue.Concurrency <= 0 {
		return fmt.Errorf("queue concurrency must be positive, got: %d", c.Queue.Concurrency)
	}

	if c.Store.Path == "" {
		return fmt.Errorf("store path cannot be empty")
	}

	return nil
}
