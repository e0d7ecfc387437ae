// =================================
// File: internal/config/config.go
// =================================
package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/rovshanmuradov/hydra-snapshot/internal/blockchain/substrate"
)

// Asset is one of the two tokens the reports are built for
type Asset struct {
	Symbol string
	ID     uint32
}

// Slug is the lower-case symbol used in file names
func (a Asset) Slug() string {
	return strings.ToLower(a.Symbol)
}

// Config is read once at startup and shared read-only by every report builder.
type Config struct {
	Endpoint             string   `mapstructure:"endpoint"`
	OutputDir            string   `mapstructure:"output_dir"`
	Decimals             int32    `mapstructure:"decimals"`
	SS58Prefix           uint16   `mapstructure:"ss58_prefix"`
	DOTAssetID           uint32   `mapstructure:"dot_asset_id"`
	VDOTAssetID          uint32   `mapstructure:"vdot_asset_id"`
	OmnipoolCollectionID uint64   `mapstructure:"omnipool_collection_id"`
	OmnipoolAddress      string   `mapstructure:"omnipool_address"`
	TreasuryAddress      string   `mapstructure:"treasury_address"`
	PageSize             int      `mapstructure:"page_size"`
	Parallel             bool     `mapstructure:"parallel"`
	DebugLogging         bool     `mapstructure:"debug_logging"`
	LogFile              string   `mapstructure:"log_file"`
	MetricsFile          string   `mapstructure:"metrics_file"`
	Formats              []string `mapstructure:"formats"`
	ExtendedSchedules    bool     `mapstructure:"extended_schedules"`

	omnipoolAccount substrate.AccountID
}

const (
	DefaultEndpoint             = "wss://rpc.hydradx.cloud"
	DefaultOutputDir            = "data"
	DefaultDecimals             = 10
	DefaultSS58Prefix           = 63
	DefaultDOTAssetID           = 5
	DefaultVDOTAssetID          = 15
	DefaultOmnipoolCollectionID = 1337
	DefaultOmnipoolAddress      = "7L53bUTBbfuj14UpdCNPwmgzzHSsrsTWBHX5pys32mVWM3C1"
	DefaultTreasuryAddress      = "7L53bUTBopuwFt3mKUfmkzgGLayYa1Yvn1hAg9v5UMrQzTfh"
	DefaultPageSize             = 1000

	EnvPrefix = "HYDRA_SNAPSHOT"
)

// flag name -> config key
var flagKeys = map[string]string{
	"endpoint": "endpoint",
	"out":      "output_dir",
	"parallel": "parallel",
	"debug":    "debug_logging",
	"format":   "formats",
}

// Load reads the configuration. An empty path uses defaults and the environment only;
// flags, when given, take precedence over everything else.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	defaults := map[string]interface{}{
		"endpoint":               DefaultEndpoint,
		"output_dir":             DefaultOutputDir,
		"decimals":               DefaultDecimals,
		"ss58_prefix":            DefaultSS58Prefix,
		"dot_asset_id":           DefaultDOTAssetID,
		"vdot_asset_id":          DefaultVDOTAssetID,
		"omnipool_collection_id": DefaultOmnipoolCollectionID,
		"omnipool_address":       DefaultOmnipoolAddress,
		"treasury_address":       DefaultTreasuryAddress,
		"page_size":              DefaultPageSize,
		"parallel":               false,
		"debug_logging":          false,
		"log_file":               "",
		"metrics_file":           "",
		"formats":                []string{"json"},
		"extended_schedules":     true,
	}
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config error: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal error: %w", err)
	}
	cfg.Formats = normalizeFormats(v.GetStringSlice("formats"))

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns the built-in configuration
func Default() *Config {
	cfg, err := Load("", nil)
	if err != nil {
		panic(err)
	}
	return cfg
}

func (c *Config) validate() error {
	if err := validateURL(c.Endpoint); err != nil {
		return err
	}
	if c.OutputDir == "" {
		return errors.New("output_dir is required")
	}
	if c.Decimals < 0 || c.Decimals > 38 {
		return fmt.Errorf("invalid decimals %d", c.Decimals)
	}
	if c.DOTAssetID == c.VDOTAssetID {
		return errors.New("dot_asset_id and vdot_asset_id must differ")
	}
	if c.PageSize <= 0 {
		return errors.New("invalid page_size")
	}

	account, _, err := substrate.DecodeAddress(c.OmnipoolAddress)
	if err != nil {
		return fmt.Errorf("invalid omnipool_address: %w", err)
	}
	c.omnipoolAccount = account

	if _, _, err := substrate.DecodeAddress(c.TreasuryAddress); err != nil {
		return fmt.Errorf("invalid treasury_address: %w", err)
	}

	if len(c.Formats) == 0 {
		return errors.New("formats must not be empty")
	}
	for _, f := range c.Formats {
		if f != "json" && f != "csv" {
			return fmt.Errorf("unsupported format %q", f)
		}
	}
	return nil
}

func validateURL(rawURL string) error {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return errors.New("invalid endpoint URL format")
	}
	switch parsed.Scheme {
	case "ws", "wss", "http", "https":
		return nil
	default:
		return fmt.Errorf("invalid endpoint URL protocol %q", parsed.Scheme)
	}
}

// env and flag values arrive as one comma separated string
func normalizeFormats(raw []string) []string {
	var formats []string
	for _, item := range raw {
		for _, f := range strings.Split(item, ",") {
			if f = strings.ToLower(strings.TrimSpace(f)); f != "" {
				formats = append(formats, f)
			}
		}
	}
	return formats
}

// DOT returns the DOT asset
func (c *Config) DOT() Asset {
	return Asset{Symbol: "DOT", ID: c.DOTAssetID}
}

// VDOT returns the vDOT asset
func (c *Config) VDOT() Asset {
	return Asset{Symbol: "vDOT", ID: c.VDOTAssetID}
}

// Assets returns the assets holder and position reports are produced for, in output order
func (c *Config) Assets() []Asset {
	return []Asset{c.DOT(), c.VDOT()}
}

// YieldAsset is the asset DCA schedules must sell to be reported
func (c *Config) YieldAsset() Asset {
	return c.VDOT()
}

// OmnipoolAccount returns the decoded omnipool account id
func (c *Config) OmnipoolAccount() substrate.AccountID {
	return c.omnipoolAccount
}
