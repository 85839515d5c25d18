package config

import (
	"fmt"
	"net/url"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/hashicorp/go-multierror"
	"github.com/ilyakaznacheev/cleanenv"
)

type BackendConfig struct {
	Url            string `toml:"url" env:"SHELFSCAN_URL"`
	Database       string `toml:"database" env:"SHELFSCAN_DATABASE"`
	Login          string `toml:"login" env:"SHELFSCAN_LOGIN"`
	Password       string `toml:"password" env:"SHELFSCAN_PASSWORD"`
	Model          string `toml:"model"`
	Method         string `toml:"method"`
	TimeoutSeconds uint   `toml:"timeout_seconds"`
}

type ScannerConfig struct {
	Prefix       string `toml:"prefix"`
	Suffix       string `toml:"suffix"`
	MemberPrefix string `toml:"member_prefix"`
}

type NotifyConfig struct {
	Color bool `toml:"color"`
	Bell  bool `toml:"bell"`
}

type JournalConfig struct {
	Path string `toml:"path"`
}

type advanced struct {
	HealthCheckIntervalSeconds uint `toml:"health_check_interval_seconds"`
}

type Config struct {
	Backend  BackendConfig `toml:"backend"`
	Scanner  ScannerConfig `toml:"scanner"`
	Notify   NotifyConfig  `toml:"notify"`
	Journal  JournalConfig `toml:"journal"`
	Advanced advanced      `toml:"advanced"`
}

var Defaults = map[string]any{
	"backend.model":  "library.barcode.scan",
	"backend.method": "create_and_process",

	"advanced.health_check_interval_seconds": 30,
}

func NewConfig(configPath string) (*Config, error) {
	configData, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	return Parse(string(configData))
}

// Parse decodes TOML, applies SHELFSCAN_* environment overrides, and validates.
func Parse(data string) (*Config, error) {
	config := Config{
		Notify: NotifyConfig{Color: true},
	}
	_, err := toml.Decode(data, &config)
	if err != nil {
		return nil, err
	}

	err = cleanenv.ReadEnv(&config)
	if err != nil {
		return nil, fmt.Errorf("could not read environment overrides: %w", err)
	}

	err = config.Validate()
	if err != nil {
		return nil, err
	}

	return &config, nil
}

func (c *Config) Validate() error {
	var errs *multierror.Error

	if len(c.Backend.Url) == 0 {
		errs = multierror.Append(errs, fmt.Errorf("backend.url must be configured"))
	} else if u, err := url.Parse(c.Backend.Url); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = multierror.Append(errs, fmt.Errorf("backend.url must be an http(s) url, got %q", c.Backend.Url))
	}

	if len(c.Backend.Login) != 0 {
		errorMsg := "%s must be configured if backend.login is set"

		if len(c.Backend.Database) == 0 {
			errs = multierror.Append(errs, fmt.Errorf(errorMsg, "backend.database"))
		}
		if len(c.Backend.Password) == 0 {
			errs = multierror.Append(errs, fmt.Errorf(errorMsg, "backend.password"))
		}
	}

	if len(c.Backend.Model) == 0 {
		c.Backend.Model = Defaults["backend.model"].(string)
	}
	if len(c.Backend.Method) == 0 {
		c.Backend.Method = Defaults["backend.method"].(string)
	}

	if c.Advanced.HealthCheckIntervalSeconds == 0 {
		c.Advanced.HealthCheckIntervalSeconds = uint(Defaults["advanced.health_check_interval_seconds"].(int))
	}

	return errs.ErrorOrNil()
}
