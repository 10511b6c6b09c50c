// Package config defines recordstore's configuration structure and loads it
// from a YAML file, environment variables, and command-line flags using
// viper and pflag.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/turtacn/recordstore/common/constants"
	"github.com/turtacn/recordstore/common/errors"
	"github.com/turtacn/recordstore/common/log"
	"github.com/turtacn/recordstore/common/types/enum"

	"go.uber.org/zap"
)

// Config is the top-level configuration for a recordstore process.
type Config struct {
	Backend BackendConfig `mapstructure:"backend"`
	Log     LogConfig     `mapstructure:"log"`
}

// BackendConfig selects and configures the kvstore.Handle backend to open.
type BackendConfig struct {
	// Type names the backend: "memory", "bolt", or "badger".
	Type string `mapstructure:"type"`
	// Path is the on-disk location for bolt/badger; unused for memory.
	Path string `mapstructure:"path"`
}

// LogConfig configures the zap-backed logger.
type LogConfig struct {
	Level    string `mapstructure:"level"`
	FilePath string `mapstructure:"file_path"`
}

var (
	globalConfig *Config
	configOnce   sync.Once
)

// Loader loads Config from a file, environment variables, and flags, in
// that order of increasing precedence.
type Loader struct {
	v *viper.Viper
}

// NewLoader creates a Loader with recordstore's environment variable prefix
// and environment bindings pre-bound. Default config file search paths are
// added later, by Load, only when no config path is given.
func NewLoader() *Loader {
	v := viper.New()
	v.SetEnvPrefix("RECORDSTORE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	v.BindEnv("backend.type")
	v.BindEnv("backend.path")
	v.BindEnv("log.level")
	v.BindEnv("log.file_path")

	return &Loader{v: v}
}

// BindFlags binds command-line flags to viper keys, when present in flags.
func (l *Loader) BindFlags(flags *pflag.FlagSet) {
	if flags == nil {
		return
	}
	if f := flags.Lookup("backend"); f != nil {
		l.v.BindPFlag("backend.type", f)
	}
	if f := flags.Lookup("data-path"); f != nil {
		l.v.BindPFlag("backend.path", f)
	}
	if f := flags.Lookup("log-level"); f != nil {
		l.v.BindPFlag("log.level", f)
	}
}

// Load reads configPath (if non-empty) or recordstore's default search
// locations, applies defaults for anything unset, and validates the result.
func (l *Loader) Load(configPath string) (*Config, error) {
	if configPath != "" {
		l.v.SetConfigFile(configPath)
		if err := l.v.ReadInConfig(); err != nil {
			return nil, errors.ErrConfigLoadFailed.New(err)
		}
	} else {
		l.tryDefaultLocations()
	}

	cfg := &Config{}
	if err := l.v.Unmarshal(cfg); err != nil {
		return nil, errors.ErrConfigLoadFailed.New(err)
	}

	cfg.applyDefaults()
	cfg.sanitize()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (l *Loader) tryDefaultLocations() {
	l.v.SetConfigName(constants.ProjectName)
	l.v.SetConfigType("yaml")
	l.v.AddConfigPath(".")
	l.v.AddConfigPath("./configs")
	l.v.AddConfigPath("$HOME/." + constants.ProjectName)
	_ = l.v.ReadInConfig() // absence of a config file is not an error
}

// LoadWithFlags is a convenience wrapper around NewLoader + BindFlags + Load.
func LoadWithFlags(configPath string, flags *pflag.FlagSet) (*Config, error) {
	loader := NewLoader()
	loader.BindFlags(flags)
	return loader.Load(configPath)
}

// LoadConfig loads configPath into the package-level global, callable once.
// Subsequent calls are no-ops; use GetConfig to retrieve the result.
func LoadConfig(configPath string) error {
	var err error
	configOnce.Do(func() {
		var cfg *Config
		cfg, err = NewLoader().Load(configPath)
		if err != nil {
			return
		}
		globalConfig = cfg
	})
	return err
}

// GetConfig returns the global Config. Exits the process via Fatal logging
// if LoadConfig has not yet succeeded, since callers depend on it being sane.
func GetConfig() *Config {
	if globalConfig == nil {
		log.GetLogger().Fatal("configuration not initialized: call LoadConfig first")
	}
	return globalConfig
}

func (c *Config) applyDefaults() {
	if c.Backend.Type == "" {
		c.Backend.Type = constants.DefaultBackend
	}
	if c.Backend.Path == "" {
		switch c.Backend.Type {
		case "bolt":
			c.Backend.Path = constants.DefaultBoltPath
		case "badger":
			c.Backend.Path = constants.DefaultBadgerPath
		}
	}
	if c.Log.Level == "" {
		c.Log.Level = constants.DefaultLogLevel
	}
	if c.Log.FilePath == "" {
		c.Log.FilePath = constants.DefaultLogFilePath
	}
}

// sanitize expands "~" and makes backend paths absolute, logging (not
// failing) on directory-creation errors since memory backends never use a
// path at all.
func (c *Config) sanitize() {
	logger := log.GetLogger()
	if c.Backend.Path == "" {
		return
	}
	c.Backend.Path = expandPath(c.Backend.Path)
	dir := filepath.Dir(c.Backend.Path)
	if c.Backend.Type == "badger" {
		dir = c.Backend.Path
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		logger.Error("failed to create backend data directory", zap.String("path", dir), zap.Error(err))
	}
}

// Validate performs semantic checks that Unmarshal cannot.
func (c *Config) Validate() error {
	if _, err := enum.ParseBackendType(c.Backend.Type); err != nil {
		return errors.ErrSchemaInvalid.New(fmt.Sprintf("unsupported backend type %q", c.Backend.Type))
	}
	if _, err := enum.ParseLogLevel(c.Log.Level); err != nil {
		return errors.ErrConfigLoadFailed.New(fmt.Sprintf("invalid log level %q", c.Log.Level))
	}
	return nil
}

func expandPath(path string) string {
	if strings.HasPrefix(path, "~") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, path[1:])
		}
	}
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return path
}
