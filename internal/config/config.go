// Package config resolves chirp settings from defaults, the config file in
// the chirp home directory, CHIRP_* environment variables and flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Keys understood in config.yaml, as CHIRP_<KEY> and as flags.
const (
	KeyServer      = "server"
	KeySessionFile = "session_file"
	KeyKeyFile     = "key_file"
	KeyLogLevel    = "log_level"
	KeyLogFile     = "log_file"
	KeyFormat      = "format"
	KeyTimeout     = "timeout"
	KeyCADir       = "ca_dir"
	KeyPageSize    = "page_size"
)

// Keys lists every settable key.
var Keys = []string{KeyServer, KeySessionFile, KeyKeyFile, KeyLogLevel, KeyLogFile, KeyFormat, KeyTimeout, KeyCADir, KeyPageSize}

// EnvHome overrides the chirp home directory.
const EnvHome = "CHIRP_HOME"

// Formats lists the accepted output formats.
var Formats = []string{"text", "json", "yaml"}

type Config struct {
	viper *viper.Viper

	Home        string        `mapstructure:"-"`
	Server      string        `mapstructure:"server"`
	SessionFile string        `mapstructure:"session_file"`
	KeyFile     string        `mapstructure:"key_file"`
	LogLevel    string        `mapstructure:"log_level"`
	LogFile     string        `mapstructure:"log_file"`
	Format      string        `mapstructure:"format"`
	Timeout     time.Duration `mapstructure:"timeout"`
	CADir       string        `mapstructure:"ca_dir"`
	PageSize    int           `mapstructure:"page_size"`
}

// Home returns the chirp home directory.
func Home() (string, error) {
	if dir := os.Getenv(EnvHome); dir != "" {
		return dir, nil
	}
	userHome, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("locating home directory: %w", err)
	}
	return filepath.Join(userHome, ".chirp"), nil
}

// Load reads the configuration. Flags in fs whose names match a key (with
// '-' for '_') take precedence when set; fs may be nil.
func Load(fs *pflag.FlagSet) (*Config, error) {
	home, err := Home()
	if err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(home)
	v.SetEnvPrefix("CHIRP")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault(KeyServer, "http://localhost:8080")
	v.SetDefault(KeySessionFile, filepath.Join(home, "session.json"))
	v.SetDefault(KeyKeyFile, filepath.Join(home, "master.key"))
	v.SetDefault(KeyLogLevel, "warn")
	v.SetDefault(KeyLogFile, "")
	v.SetDefault(KeyFormat, "text")
	v.SetDefault(KeyTimeout, 15*time.Second)
	v.SetDefault(KeyCADir, "")
	v.SetDefault(KeyPageSize, 20)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file : %w", err)
		}
	}

	if fs != nil {
		for _, key := range Keys {
			if f := fs.Lookup(strings.ReplaceAll(key, "_", "-")); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("binding flag %s : %w", f.Name, err)
				}
			}
		}
	}

	cfg := &Config{viper: v, Home: home}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config to struct : %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	if c.Server == "" {
		return errors.New("config: server must not be empty")
	}
	if !validFormat(c.Format) {
		return fmt.Errorf("config: invalid format %q: must be one of %v", c.Format, Formats)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("config: timeout must not be negative, got %s", c.Timeout)
	}
	if c.PageSize <= 0 {
		return fmt.Errorf("config: page_size must be positive, got %d", c.PageSize)
	}
	return nil
}

// File returns the config file in use, or "" when none was found.
func (c *Config) File() string {
	if c.viper == nil {
		return ""
	}
	return c.viper.ConfigFileUsed()
}

// Path returns the config file Set writes to.
func (c *Config) Path() string {
	return filepath.Join(c.Home, "config.yaml")
}

// Set stores key in config.yaml in the home directory, creating the file
// when needed. Only the file is rewritten: values coming from flags or the
// environment are not persisted. The result still goes through Validate.
func (c *Config) Set(key, value string) error {
	if c.viper == nil {
		return errors.New("config: not loaded")
	}
	if !knownKey(key) {
		return fmt.Errorf("config: unknown key %q: must be one of %v", key, Keys)
	}

	next := *c
	one := viper.New()
	one.Set(key, value)
	if err := one.Unmarshal(&next); err != nil {
		return fmt.Errorf("config: invalid %s %q: %w", key, value, err)
	}
	if err := next.Validate(); err != nil {
		return err
	}

	file := viper.New()
	file.SetConfigFile(c.Path())
	if _, err := os.Stat(c.Path()); err == nil {
		if err := file.ReadInConfig(); err != nil {
			return fmt.Errorf("reading config file : %w", err)
		}
	}
	switch key {
	case KeyPageSize:
		file.Set(key, next.PageSize)
	case KeyTimeout:
		file.Set(key, next.Timeout.String())
	default:
		file.Set(key, value)
	}

	if err := os.MkdirAll(c.Home, 0o700); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}
	if err := file.WriteConfigAs(c.Path()); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}

	if err := c.viper.ReadInConfig(); err != nil {
		return fmt.Errorf("reading config file : %w", err)
	}
	if err := c.viper.Unmarshal(c); err != nil {
		return fmt.Errorf("unmarshalling config to struct : %w", err)
	}
	return nil
}

func knownKey(key string) bool {
	for _, k := range Keys {
		if k == key {
			return true
		}
	}
	return false
}

func validFormat(f string) bool {
	for _, ok := range Formats {
		if f == ok {
			return true
		}
	}
	return false
}
