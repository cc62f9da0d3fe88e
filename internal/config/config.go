// Package config loads listran settings from an optional listran.yaml file
// and LISTRAN_* environment variables.
package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/spf13/viper"
)

// Backend names accepted by the backend setting.
const (
	BackendOpenRouter = "openrouter"
	BackendOllama     = "ollama"
	BackendGemini     = "gemini"
	BackendGoogle     = "google"
	BackendLambda     = "lambda"
)

// Backends lists every supported backend.
var Backends = []string{BackendOpenRouter, BackendOllama, BackendGemini, BackendGoogle, BackendLambda}

// Config is the resolved configuration of one process.
type Config struct {
	Backend           string   `mapstructure:"backend"`
	Model             string   `mapstructure:"model"`
	BaseURL           string   `mapstructure:"base_url"`
	APIKeys           []string `mapstructure:"api_keys"`
	GoogleCredentials string   `mapstructure:"google_credentials"`
	LambdaFunction    string   `mapstructure:"lambda_function"`
	RequestsPerMinute int      `mapstructure:"requests_per_minute"`

	MaxAttempts      int           `mapstructure:"max_attempts"`
	BaseDelay        time.Duration `mapstructure:"base_delay"`
	RotateDelay      time.Duration `mapstructure:"rotate_delay"`
	StageDelay       time.Duration `mapstructure:"stage_delay"`
	MarketplaceDelay time.Duration `mapstructure:"marketplace_delay"`
	Workers          int           `mapstructure:"workers"`

	// ProfilesFile replaces the built-in language and marketplace tables.
	ProfilesFile string `mapstructure:"profiles_file"`
	StorePath    string `mapstructure:"store_path"`
	Verbose      bool   `mapstructure:"verbose"`
}

// SetDefaults registers every key so environment variables reach Unmarshal.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("backend", BackendOpenRouter)
	v.SetDefault("model", "")
	v.SetDefault("base_url", "")
	v.SetDefault("api_keys", []string{})
	v.SetDefault("google_credentials", "")
	v.SetDefault("lambda_function", "")
	v.SetDefault("requests_per_minute", 0)

	// Zero selects the pipeline's own defaults, negative disables a delay.
	v.SetDefault("max_attempts", 0)
	v.SetDefault("base_delay", time.Duration(0))
	v.SetDefault("rotate_delay", time.Duration(0))
	v.SetDefault("stage_delay", time.Duration(0))
	v.SetDefault("marketplace_delay", time.Duration(0))
	v.SetDefault("workers", 1)

	v.SetDefault("profiles_file", "")
	v.SetDefault("store_path", defaultStorePath())
	v.SetDefault("verbose", false)
}

func defaultStorePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "listran.db"
	}
	return filepath.Join(home, ".listran", "listran.db")
}

// NewViper builds a viper instance with defaults, environment binding and,
// when present, a config file. An explicit configFile must exist; otherwise
// listran.yaml is looked up in the working directory and ~/.listran.
func NewViper(configFile string) (*viper.Viper, error) {
	v := viper.New()
	SetDefaults(v)

	v.SetEnvPrefix("LISTRAN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "failed to read config file %s", configFile)
		}
		return v, nil
	}

	v.SetConfigName("listran")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".listran"))
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, errors.Wrap(err, "failed to read config")
		}
	}
	return v, nil
}

// FromViper unmarshals and validates v.
func FromViper(v *viper.Viper) (*Config, error) {
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}
	c.APIKeys = splitKeys(c.APIKeys)
	c.Backend = strings.ToLower(strings.TrimSpace(c.Backend))
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Load is NewViper followed by FromViper.
func Load(configFile string) (*Config, error) {
	v, err := NewViper(configFile)
	if err != nil {
		return nil, err
	}
	return FromViper(v)
}

// splitKeys accepts both list entries and comma-separated strings, the
// latter being how LISTRAN_API_KEYS arrives.
func splitKeys(in []string) []string {
	var out []string
	for _, item := range in {
		for _, k := range strings.Split(item, ",") {
			if k = strings.TrimSpace(k); k != "" {
				out = append(out, k)
			}
		}
	}
	return out
}

func (c *Config) Validate() error {
	backends := make([]interface{}, len(Backends))
	for i, b := range Backends {
		backends[i] = b
	}

	err := validation.ValidateStruct(c,
		validation.Field(&c.Backend, validation.Required, validation.In(backends...)),
		validation.Field(&c.Workers, validation.Min(1)),
		validation.Field(&c.MaxAttempts, validation.Min(0)),
		validation.Field(&c.RequestsPerMinute, validation.Min(0)),
		validation.Field(&c.LambdaFunction, validation.When(c.Backend == BackendLambda, validation.Required)),
		validation.Field(&c.APIKeys, validation.When(c.Backend == BackendOpenRouter || c.Backend == BackendGemini,
			validation.Required.Error("at least one API key is required for this backend"))),
	)
	return errors.Wrap(err, "invalid configuration")
}
