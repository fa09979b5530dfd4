package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"axiapac.com/selfservice/infrastructure/devops"
	v1 "axiapac.com/selfservice/selfservice/v1"
	"axiapac.com/selfservice/storage"
	"axiapac.com/selfservice/utils"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type SlackConfig struct {
	Token        string `yaml:"token"`
	InfoChannel  string `yaml:"info_channel"`
	ErrorChannel string `yaml:"error_channel"`
}

type Config struct {
	APIBaseURL  string      `yaml:"api_base_url"`
	TimeoutMS   int         `yaml:"timeout_ms"`
	MaxAttempts int         `yaml:"max_attempts"`
	BaseDelayMS int         `yaml:"base_delay_ms"`
	StoreDriver string      `yaml:"store_driver"`
	StoreDSN    string      `yaml:"store_dsn"`
	LogLevel    string      `yaml:"log_level"`
	LogJSON     bool        `yaml:"log_json"`
	Timezone    string      `yaml:"timezone"`
	Slack       SlackConfig `yaml:"slack"`
}

func Default() Config {
	return Config{
		TimeoutMS:   15000,
		MaxAttempts: 3,
		BaseDelayMS: 1000,
		StoreDriver: storage.DriverSQLite,
		StoreDSN:    "ess.db",
		LogLevel:    "info",
		Timezone:    "Asia/Jakarta",
	}
}

// Options controls where Load looks. Zero values mean the process
// environment, ".env", and an SSM client built from the default AWS config.
type Options struct {
	EnvFile    string
	ConfigFile string
	Lookup     func(key string) (string, bool)
	Parameters devops.ParameterGetter
}

// Load resolves the configuration. Later sources win: defaults, the SSM
// parameter, the YAML file, then environment variables (a .env file fills
// in variables the process environment does not set).
func Load(ctx context.Context, opts Options) (Config, error) {
	lookup, err := environment(opts.EnvFile, opts.Lookup)
	if err != nil {
		return Config{}, err
	}

	cfg := Default()

	if name, ok := lookup("ESS_CONFIG_SSM_PARAM"); ok && name != "" {
		client := opts.Parameters
		if client == nil {
			ssmClient, err := devops.NewSSMClient(ctx)
			if err != nil {
				return Config{}, err
			}
			client = ssmClient
		}
		doc, err := devops.LoadParameter(ctx, client, name)
		if err != nil {
			return Config{}, err
		}
		if err := yaml.Unmarshal([]byte(doc), &cfg); err != nil {
			return Config{}, fmt.Errorf("unmarshal parameter %s: %w", name, err)
		}
	}

	path := opts.ConfigFile
	if path == "" {
		path, _ = lookup("ESS_CONFIG_FILE")
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("unmarshal config file %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(lookup); err != nil {
		return Config{}, err
	}
	return cfg, cfg.Validate()
}

func environment(envFile string, lookup func(string) (string, bool)) (func(string) (string, bool), error) {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	if envFile == "" {
		envFile = ".env"
	}

	fromFile, err := godotenv.Read(envFile)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", envFile, err)
		}
		// .env file not found, proceed with the environment only
		fromFile = map[string]string{}
	}

	return func(key string) (string, bool) {
		if v, ok := lookup(key); ok {
			return v, true
		}
		v, ok := fromFile[key]
		return v, ok
	}, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	num := func(key string, dst *int) error {
		v, ok := lookup(key)
		if !ok || v == "" {
			return nil
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%s: %q is not a number", key, v)
		}
		*dst = n
		return nil
	}

	str("ESS_API_BASE_URL", &c.APIBaseURL)
	str("ESS_STORE_DRIVER", &c.StoreDriver)
	str("ESS_STORE_DSN", &c.StoreDSN)
	str("ESS_LOG_LEVEL", &c.LogLevel)
	str("ESS_TIMEZONE", &c.Timezone)
	str("SLACK_BOT_TOKEN", &c.Slack.Token)
	str("SLACK_INFO_CHANNEL", &c.Slack.InfoChannel)
	str("SLACK_ERROR_CHANNEL", &c.Slack.ErrorChannel)

	if v, ok := lookup("ESS_LOG_JSON"); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("ESS_LOG_JSON: %q is not a boolean", v)
		}
		c.LogJSON = b
	}

	return errors.Join(
		num("ESS_TIMEOUT_MS", &c.TimeoutMS),
		num("ESS_MAX_ATTEMPTS", &c.MaxAttempts),
		num("ESS_BASE_DELAY_MS", &c.BaseDelayMS),
	)
}

func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.APIBaseURL) == "" {
		errs = append(errs, errors.New("ESS_API_BASE_URL is required"))
	}
	if c.MaxAttempts < 1 {
		errs = append(errs, fmt.Errorf("max attempts must be at least 1, got %d", c.MaxAttempts))
	}
	if c.TimeoutMS < 1 {
		errs = append(errs, fmt.Errorf("timeout must be at least 1ms, got %d", c.TimeoutMS))
	}
	if c.BaseDelayMS < 0 {
		errs = append(errs, errors.New("base delay must not be negative"))
	}
	switch c.StoreDriver {
	case storage.DriverMemory, storage.DriverSQLite, storage.DriverMySQL, storage.DriverPostgres:
	default:
		errs = append(errs, fmt.Errorf("unsupported store driver %q", c.StoreDriver))
	}
	return errors.Join(errs...)
}

func (c Config) RetryPolicy() v1.RetryPolicy {
	policy := v1.DefaultRetryPolicy()
	policy.MaxAttempts = c.MaxAttempts
	policy.BaseDelay = time.Duration(c.BaseDelayMS) * time.Millisecond
	policy.Timeout = time.Duration(c.TimeoutMS) * time.Millisecond
	return policy
}

func (c Config) Location() *time.Location {
	return utils.LoadZone(c.Timezone)
}

// SlackEnabled reports whether diagnostics can be posted.
func (c Config) SlackEnabled() bool {
	return c.Slack.Token != "" && c.Slack.ErrorChannel != ""
}
