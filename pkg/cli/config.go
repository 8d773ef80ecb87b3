package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/aihub-tools/aihub-export/pkg/catalog"
	"github.com/aihub-tools/aihub-export/pkg/constants"
	"github.com/aihub-tools/aihub-export/pkg/logger"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

var configLog = logger.New("cli:config")

// Config is the resolved configuration of one command invocation.
// Flags override AIHUB_* environment variables, which override the
// .aihub-export.yaml file, which overrides the built-in defaults.
type Config struct {
	Server      string        `mapstructure:"server"`
	Locale      string        `mapstructure:"locale"`
	Timeout     time.Duration `mapstructure:"timeout"`
	CatalogFile string        `mapstructure:"catalog_file"`
	CatalogTTL  time.Duration `mapstructure:"catalog_ttl"`
}

// configFlags maps config keys to the flags bound over them.
var configFlags = map[string]string{
	"server":       "server",
	"locale":       "locale",
	"timeout":      "timeout",
	"catalog_file": "catalog-file",
	"catalog_ttl":  "catalog-ttl",
}

// AddConfigFlags registers the flags shared by every command on root.
func AddConfigFlags(root *cobra.Command) {
	flags := root.PersistentFlags()
	flags.String("config", "", "Config file (default: ./"+constants.ConfigFileName+".yaml or $HOME/"+constants.ConfigFileName+".yaml)")
	flags.String("server", constants.DefaultServerURL, "URL of the ComfyUI server hosting the AIHub endpoints")
	flags.Duration("timeout", constants.DefaultTimeout, "Timeout of each request to the server")
	flags.String("catalog-file", "", "Read the model and LoRA catalog from a JSON or YAML file instead of the server")
	flags.Duration("catalog-ttl", constants.DefaultCatalogTTL, "How long watch mode and the MCP server reuse a fetched catalog")
}

// LoadConfig resolves the configuration for cmd.
func LoadConfig(cmd *cobra.Command) (*Config, error) {
	v := viper.New()
	v.SetDefault("server", constants.DefaultServerURL)
	v.SetDefault("locale", constants.DefaultLocale)
	v.SetDefault("timeout", constants.DefaultTimeout)
	v.SetDefault("catalog_file", "")
	v.SetDefault("catalog_ttl", constants.DefaultCatalogTTL)

	v.SetEnvPrefix(constants.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	var configFile string
	if flag := lookupFlag(cmd, "config"); flag != nil {
		configFile = flag.Value.String()
	}
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName(constants.ConfigFileName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		configLog.Print("No config file found, using defaults and environment")
	} else {
		configLog.Printf("Loaded config file: %s", v.ConfigFileUsed())
	}

	for key, name := range configFlags {
		flag := lookupFlag(cmd, name)
		if flag == nil {
			continue
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return nil, fmt.Errorf("failed to bind flag --%s: %w", name, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if strings.TrimSpace(cfg.Locale) == "" {
		cfg.Locale = constants.DefaultLocale
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = constants.DefaultTimeout
	}
	cfg.Server = strings.TrimRight(strings.TrimSpace(cfg.Server), "/")
	if cfg.Server == "" && cfg.CatalogFile == "" {
		return nil, errors.New("no server configured, set --server or " + constants.EnvPrefix + "_SERVER")
	}

	configLog.Printf("Resolved config: server=%s, locale=%s, timeout=%s, catalog_file=%q, catalog_ttl=%s",
		cfg.Server, cfg.Locale, cfg.Timeout, cfg.CatalogFile, cfg.CatalogTTL)
	return &cfg, nil
}

// lookupFlag finds a flag declared on cmd or inherited from its parents,
// whether or not the flag sets have been merged by parsing yet.
func lookupFlag(cmd *cobra.Command, name string) *pflag.Flag {
	if flag := cmd.Flags().Lookup(name); flag != nil {
		return flag
	}
	if flag := cmd.PersistentFlags().Lookup(name); flag != nil {
		return flag
	}
	return cmd.InheritedFlags().Lookup(name)
}

// CatalogSource returns where the model catalog comes from: the offline file
// when one is configured, the server otherwise.
func (c *Config) CatalogSource() catalog.Source {
	if c.CatalogFile != "" {
		return catalog.FileSource{Path: c.CatalogFile}
	}
	return catalog.NewHTTPSource(c.Server, c.Timeout)
}

// CachedCatalogSource wraps CatalogSource in a TTL cache for long-running modes.
func (c *Config) CachedCatalogSource() *catalog.CachedSource {
	return catalog.NewCachedSource(c.CatalogSource(), c.CatalogTTL)
}
