// Package config loads mkrom settings from flags, the environment and an
// optional mkrom.yaml.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bsm/romfs"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const (
	// AppName is the application name used for config files and directories
	AppName = "mkrom"

	// EnvPrefix is the prefix for environment variables
	EnvPrefix = "MKROM"
)

// Config holds the application configuration
type Config struct {
	Debug     bool   `mapstructure:"debug"`
	LogFormat string `mapstructure:"log_format"`

	Build Build `mapstructure:"build"`

	file string
}

// File returns the config file in use, if any.
func (c *Config) File() string { return c.file }

// Build holds the archive settings of the build command.
type Build struct {
	VarName           string `mapstructure:"var_name"` // implies format "c" unless a format is given
	Package           string `mapstructure:"package"`
	Format            string `mapstructure:"format"` // binary, c or go
	Static            bool   `mapstructure:"static"`
	IncludePassphrase bool   `mapstructure:"include_passphrase"`
	LineWidth         int    `mapstructure:"line_width"`

	Passphrase  string `mapstructure:"passphrase"`
	Hardened    bool   `mapstructure:"hardened"`
	WorkFactor  int    `mapstructure:"work_factor"`
	NoCompress  bool   `mapstructure:"no_compress"`
	Level       int    `mapstructure:"level"`
	StripPrefix string `mapstructure:"strip_prefix"`

	hasPassphrase bool
}

// New returns a viper instance with defaults and environment bindings.
func New() *viper.Viper {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	// the passphrase is the one setting worth keeping out of argv
	_ = v.BindEnv("build.passphrase", EnvPrefix+"_PASSPHRASE", EnvPrefix+"_BUILD_PASSPHRASE")
	return v
}

// Load reads the config file, if any, and decodes all settings. An empty
// cfgFile searches the standard locations and tolerates a missing file.
func Load(v *viper.Viper, cfgFile string) (*Config, error) {
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName(AppName)
		v.SetConfigType("yaml")
		addSearchPaths(v)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}
	c.file = v.ConfigFileUsed()
	c.Build.hasPassphrase = v.IsSet("build.passphrase")
	return &c, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("debug", false)
	v.SetDefault("log_format", "human")

	v.SetDefault("build.var_name", "")
	v.SetDefault("build.package", "main")
	v.SetDefault("build.format", "")
	v.SetDefault("build.static", false)
	v.SetDefault("build.include_passphrase", false)
	v.SetDefault("build.line_width", 0)
	v.SetDefault("build.hardened", false)
	v.SetDefault("build.work_factor", romfs.DefaultScryptWorkFactor)
	v.SetDefault("build.no_compress", false)
	v.SetDefault("build.level", 0)
	v.SetDefault("build.strip_prefix", "")
}

func addSearchPaths(v *viper.Viper) {
	v.AddConfigPath(".")
	if dir, err := os.UserConfigDir(); err == nil {
		v.AddConfigPath(filepath.Join(dir, AppName))
	}
}

// HasPassphrase reports whether a passphrase was configured. An explicitly
// empty passphrase still counts.
func (b *Build) HasPassphrase() bool { return b.hasPassphrase }

// Options converts the settings to builder options.
func (b *Build) Options(log *zap.Logger) (*romfs.Options, error) {
	name := b.Format
	if name == "" && b.VarName != "" {
		name = "c"
	}
	format, err := romfs.ParseFormat(name)
	if err != nil {
		return nil, err
	}
	if format == romfs.FormatBinary && (b.Static || b.IncludePassphrase) {
		return nil, fmt.Errorf("%w: static and include-passphrase require a literal format", romfs.ErrInvalidInput)
	}

	o := &romfs.Options{
		CompressionLevel:  b.Level,
		Hardened:          b.Hardened,
		ScryptWorkFactor:  b.WorkFactor,
		StripPrefix:       b.StripPrefix,
		Format:            format,
		VarName:           b.VarName,
		Package:           b.Package,
		Static:            b.Static,
		LineWidth:         b.LineWidth,
		IncludePassphrase: b.IncludePassphrase,
		Logger:            log,
	}
	if b.NoCompress {
		o.Compression = romfs.NoCompression
	}
	if b.hasPassphrase {
		o.Passphrase = romfs.NewPassphrase(b.Passphrase)
	}
	return o, nil
}
