// Package config loads the application configuration from YAML and
// provider credentials from the environment. A .env file in the
// working directory is honored so credentials never have to live in
// the YAML file.
package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	yaml "gopkg.in/yaml.v2"

	"github.com/bucketsweep/bucketsweep/errors"
	"github.com/bucketsweep/bucketsweep/provider/aliyun"
	"github.com/bucketsweep/bucketsweep/provider/tencent"
)

// Defaults applied when the YAML omits a value.
const (
	DefaultRateLimit = 100
	DefaultBatchSize = 100
	DefaultLogLevel  = "info"
)

// Rule is one configured sweep: which buckets and keys to clean and how
// old an object must be before it goes.
type Rule struct {
	// Name labels the rule in logs.
	Name string `yaml:"name"`

	// BucketPattern is the regex matched against bucket names.
	BucketPattern string `yaml:"bucketPattern"`

	// FilePattern is the glob matched against object keys.
	FilePattern string `yaml:"filePattern"`

	// MaxAgeDays deletes objects last modified more than this many days
	// ago.
	MaxAgeDays int `yaml:"maxAgeDays"`

	// DryRun reports matches without deleting them.
	DryRun bool `yaml:"dryRun"`

	// Schedule is an optional cron expression for the sweep daemon.
	Schedule string `yaml:"schedule"`
}

// Config is the application configuration.
type Config struct {
	// Provider selects the storage vendor: "aliyun" or "tencent".
	Provider string `yaml:"provider"`

	// RateLimit is the provider request budget in requests per second.
	RateLimit int `yaml:"rateLimit"`

	// BatchSize is the number of keys per delete request.
	BatchSize int `yaml:"batchSize"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"logLevel"`

	// Rules are the configured sweeps.
	Rules []Rule `yaml:"rules"`
}

// Load reads the YAML configuration at path and applies defaults. A
// .env file next to the working directory is loaded first when present
// so the credential loaders below see its values.
func Load(path string) (*Config, error) {
	// Missing .env is fine; explicit environment wins anyway.
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewError("loadConfig", fmt.Errorf("%w: %v", errors.ErrInvalidInput, err))
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.NewError("loadConfig", fmt.Errorf("%w: %v", errors.ErrInvalidInput, err))
	}

	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.RateLimit <= 0 {
		c.RateLimit = DefaultRateLimit
	}
	if c.BatchSize <= 0 {
		c.BatchSize = DefaultBatchSize
	}
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
}

func (c *Config) validate() error {
	switch c.Provider {
	case aliyun.Name, tencent.Name, "":
	default:
		return errors.NewError("loadConfig", errors.ErrInvalidInput).
			WithMessage(fmt.Sprintf("unknown provider %q", c.Provider))
	}
	for _, r := range c.Rules {
		if r.BucketPattern == "" || r.FilePattern == "" {
			return errors.NewError("loadConfig", errors.ErrInvalidInput).
				WithMessage(fmt.Sprintf("rule %q needs bucketPattern and filePattern", r.Name))
		}
		if r.MaxAgeDays <= 0 {
			return errors.NewError("loadConfig", errors.ErrInvalidInput).
				WithMessage(fmt.Sprintf("rule %q needs a positive maxAgeDays", r.Name))
		}
	}
	return nil
}

// AliyunFromEnv builds the Aliyun OSS credentials from the environment.
func AliyunFromEnv() (aliyun.Config, error) {
	cfg := aliyun.Config{
		AccessKeyID:     os.Getenv("ALIYUN_ACCESS_KEY_ID"),
		AccessKeySecret: os.Getenv("ALIYUN_ACCESS_KEY_SECRET"),
		Region:          os.Getenv("ALIYUN_REGION"),
		Scheme:          os.Getenv("ALIYUN_SCHEME"),
	}
	if cfg.AccessKeyID == "" || cfg.AccessKeySecret == "" {
		return aliyun.Config{}, errors.NewError("loadCredentials", errors.ErrAuthentication).
			WithMessage("ALIYUN_ACCESS_KEY_ID and ALIYUN_ACCESS_KEY_SECRET must be set")
	}
	return cfg, nil
}

// TencentFromEnv builds the Tencent COS credentials from the
// environment.
func TencentFromEnv() (tencent.Config, error) {
	cfg := tencent.Config{
		SecretID:  os.Getenv("TENCENT_SECRET_ID"),
		SecretKey: os.Getenv("TENCENT_SECRET_KEY"),
		Region:    os.Getenv("TENCENT_REGION"),
		Scheme:    os.Getenv("TENCENT_SCHEME"),
	}
	if cfg.SecretID == "" || cfg.SecretKey == "" {
		return tencent.Config{}, errors.NewError("loadCredentials", errors.ErrAuthentication).
			WithMessage("TENCENT_SECRET_ID and TENCENT_SECRET_KEY must be set")
	}
	return cfg, nil
}
