package config

import (
	"fmt"
	"strings"
	"time"

	"gsweb/internal/partition"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config holds the fully processed application configuration.
type Config struct {
	Listen string       `mapstructure:"listen"`
	Log    LogConfig    `mapstructure:"log"`
	Axis   AxisConfig   `mapstructure:"axis"`
	Store  StoreConfig  `mapstructure:"store"`
	Client ClientConfig `mapstructure:"client"`

	// ConfigFile is the file the values were read from, empty if none.
	ConfigFile string `mapstructure:"-"`
}

// LogConfig defines logging configuration.
type LogConfig struct {
	Level string `mapstructure:"level"` // debug, info, warn, error
	File  string `mapstructure:"file"`  // empty or "-" for stdout
}

// AxisConfig defines the profile axis bounds and boundary granularity.
type AxisConfig struct {
	Min  int `mapstructure:"min"`
	Max  int `mapstructure:"max"`
	Step int `mapstructure:"step"`
}

// StoreConfig selects where the air unit keeps its profiles.
type StoreConfig struct {
	Type string `mapstructure:"type"` // conf, yaml, sqlite, memory
	Path string `mapstructure:"path"`
	// ApplyCommand runs after every successful save, e.g. to restart the
	// adaptive link daemon. Empty disables it.
	ApplyCommand string        `mapstructure:"apply_command"`
	ApplyTimeout time.Duration `mapstructure:"apply_timeout"`
}

// ClientConfig defines how front ends reach the profile API.
type ClientConfig struct {
	BaseURL           string        `mapstructure:"base_url"`
	Timeout           time.Duration `mapstructure:"timeout"`
	HeartbeatInterval time.Duration `mapstructure:"heartbeat_interval"`
}

// Partition returns the axis as used by the partition package.
func (a AxisConfig) Partition() partition.Axis {
	return partition.Axis{Min: a.Min, Max: a.Max, Step: a.Step}
}

func setDefaults(v *viper.Viper) {
	axis := partition.DefaultAxis()

	v.SetDefault("listen", ":8080")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")
	v.SetDefault("axis.min", axis.Min)
	v.SetDefault("axis.max", axis.Max)
	v.SetDefault("axis.step", axis.Step)
	v.SetDefault("store.type", "conf")
	v.SetDefault("store.path", "/etc/txprofiles.conf")
	v.SetDefault("store.apply_command", "")
	v.SetDefault("store.apply_timeout", 10*time.Second)
	v.SetDefault("client.base_url", "http://127.0.0.1:8080")
	v.SetDefault("client.timeout", 2*time.Second)
	v.SetDefault("client.heartbeat_interval", 3*time.Second)
}

// Flags returns the command line flags understood by LoadConfig. Callers may
// add their own flags to the set before parsing.
func Flags(name string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.StringP("config", "c", "", "Configuration file path.")
	fs.StringP("listen", "l", ":8080", "HTTP listen address.")
	fs.StringP("log.level", "L", "info", "Log level (error, warn, info, debug).")
	fs.String("log.file", "", "Log file ('-' or empty for stdout).")
	fs.String("store.type", "conf", "Profile store backend (conf, yaml, sqlite, memory).")
	fs.String("store.path", "/etc/txprofiles.conf", "Profile store path or DSN.")
	fs.String("client.base_url", "http://127.0.0.1:8080", "Base URL of the profile API.")
	fs.Duration("client.timeout", 2*time.Second, "Request timeout for profile API calls.")
	return fs
}

// LoadConfig builds the configuration from defaults, an optional config file,
// GSWEB_* environment variables and the flags that were explicitly set on fs.
// fs must already be parsed; nil means no flags.
func LoadConfig(fs *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("GSWEB")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	configFile := ""
	if fs != nil {
		// Only explicitly set flags override file values.
		fs.Visit(func(f *pflag.Flag) {
			if f.Name == "config" {
				configFile = f.Value.String()
				return
			}
			_ = v.BindPFlag(f.Name, f)
		})
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("gsweb")
		v.SetConfigType("yaml")
		v.AddConfigPath("/etc/gsweb/")
		v.AddConfigPath("$HOME/.gsweb")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || configFile != "" {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.ConfigFile = v.ConfigFileUsed()

	cfg.Store.Type = strings.ToLower(cfg.Store.Type)
	if cfg.Client.Timeout <= 0 {
		cfg.Client.Timeout = 2 * time.Second
	}
	if cfg.Client.HeartbeatInterval <= 0 {
		cfg.Client.HeartbeatInterval = 3 * time.Second
	}

	if err := cfg.Axis.Partition().Validate(); err != nil {
		return nil, fmt.Errorf("invalid axis: %w", err)
	}

	return &cfg, nil
}
