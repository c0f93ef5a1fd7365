package cli

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix scopes environment overrides, e.g. SERIALIZER_METADATA_FORMAT.
const EnvPrefix = "SERIALIZER_METADATA"

// ConfigName is the config file looked up in the working and home
// directories (".serializer-metadata.yaml").
const ConfigName = ".serializer-metadata"

// Config holds the resolved CLI settings.
type Config struct {
	Metadata       string      `mapstructure:"metadata"`
	Mapping        string      `mapstructure:"mapping"`
	Format         string      `mapstructure:"format"`
	Naming         string      `mapstructure:"naming"`
	CollectionType string      `mapstructure:"collection_type"`
	Verbose        bool        `mapstructure:"verbose"`
	Cache          CacheConfig `mapstructure:"cache"`
}

// CacheConfig selects the metadata cache backend.
type CacheConfig struct {
	Redis  string        `mapstructure:"redis"`
	Prefix string        `mapstructure:"prefix"`
	TTL    time.Duration `mapstructure:"ttl"`
}

// flagKeys maps config keys to flag names.
var flagKeys = map[string]string{
	"metadata":        "metadata",
	"mapping":         "mapping",
	"format":          "format",
	"naming":          "naming",
	"collection_type": "collection-type",
	"verbose":         "verbose",
	"cache.redis":     "redis",
}

func newViper() *viper.Viper {
	v := viper.New()

	v.SetDefault("format", FormatJSON)
	v.SetDefault("naming", "identical")
	v.SetDefault("cache.prefix", "serializer-metadata::")
	v.SetDefault("cache.ttl", "0s")

	v.SetConfigName(ConfigName)
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	return v
}

// loadConfig reads the config file (explicit path or discovered), binds the
// flags that were declared on the running command and decodes the result.
func loadConfig(v *viper.Viper, configFile string, flags *pflag.FlagSet) (*Config, error) {
	if configFile != "" {
		v.SetConfigFile(configFile)
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("cli: read config: %w", err)
		}
	}

	for key, name := range flagKeys {
		if flag := flags.Lookup(name); flag != nil {
			if err := v.BindPFlag(key, flag); err != nil {
				return nil, fmt.Errorf("cli: bind flag %s: %w", name, err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("cli: decode config: %w", err)
	}
	cfg.Format = strings.ToLower(strings.TrimSpace(cfg.Format))
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Format {
	case FormatJSON, FormatYAML, FormatOpenAPI:
	default:
		return fmt.Errorf("cli: unsupported format %q (want json, yaml or openapi)", c.Format)
	}
	if c.Cache.TTL < 0 {
		return fmt.Errorf("cli: cache ttl must not be negative")
	}
	return nil
}
