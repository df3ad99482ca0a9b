package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	EnvPrefix = "expander"
	fileName  = "text-expander"
)

// Config is the runtime configuration for the server and CLI.
type Config struct {
	Addr    string        `mapstructure:"addr"`
	Seed    string        `mapstructure:"seed"`
	Log     LogConfig     `mapstructure:"log"`
	Session SessionConfig `mapstructure:"session"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type SessionConfig struct {
	// Buffer is the number of bytes of typed text a live session keeps.
	Buffer int `mapstructure:"buffer"`
}

// Defaults returns the values used when nothing else is set.
func Defaults() map[string]any {
	return map[string]any{
		"addr":           ":8080",
		"seed":           "",
		"log.level":      "info",
		"log.format":     "text",
		"session.buffer": 256,
	}
}

// Load resolves configuration from, lowest precedence first: defaults, a
// text-expander.yaml file, EXPANDER_* environment variables and flags that
// were set on the command line. configFile, if non-empty, must exist.
func Load(flags *pflag.FlagSet, configFile string) (Config, error) {
	var c Config
	v := viper.New()

	for key, value := range Defaults() {
		v.SetDefault(key, value)
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName(fileName)
		v.SetConfigType("yaml")
		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(dir, fileName))
		}
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return c, fmt.Errorf("read config: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if flags != nil {
		if err := bindFlags(v, flags); err != nil {
			return c, err
		}
	}

	if err := v.Unmarshal(&c); err != nil {
		return c, fmt.Errorf("decode config: %w", err)
	}
	return c, c.Validate()
}

// bindFlags maps dashed flag names onto dotted config keys, e.g.
// --log-level onto log.level. Only flags present in the set are bound.
func bindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	var err error
	flags.VisitAll(func(f *pflag.Flag) {
		if err != nil {
			return
		}
		key := strings.ReplaceAll(f.Name, "-", ".")
		if _, known := Defaults()[key]; !known {
			return
		}
		err = v.BindPFlag(key, f)
	})
	return err
}

func (c Config) Validate() error {
	if c.Addr == "" {
		return errors.New("addr must not be empty")
	}
	if c.Session.Buffer <= 0 {
		return fmt.Errorf("session.buffer must be positive, got %d", c.Session.Buffer)
	}
	return nil
}
