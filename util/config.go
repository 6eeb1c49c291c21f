package util

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/wikimedia/mediawiki-services-parsoid-sub010/diag"
)

type Config struct {
	Environment    string `mapstructure:"ENVIRONMENT" validate:"required,oneof=development production test"`
	LogLevel       string `mapstructure:"LOG_LEVEL" validate:"required,oneof=trace debug info warn error disabled"`
	MaxWarnings    int    `mapstructure:"MAX_WARNINGS" validate:"min=0"`
	WarningsPolicy string `mapstructure:"WARNINGS_POLICY" validate:"oneof=nocap norec drop trunc"`
	Jobs           int    `mapstructure:"JOBS" validate:"min=1,max=256"`
	OutputFormat   string `mapstructure:"OUTPUT_FORMAT" validate:"oneof=json msgpack html"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// LoadConfig reads app.env from path, if present, and lets the environment
// override every key.
func LoadConfig(path string) (config Config, err error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("app")
	v.SetConfigType("env")
	v.AutomaticEnv()

	v.SetDefault("ENVIRONMENT", "production")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("MAX_WARNINGS", 100)
	v.SetDefault("WARNINGS_POLICY", "trunc")
	v.SetDefault("JOBS", 4)
	v.SetDefault("OUTPUT_FORMAT", "json")

	err = v.ReadInConfig()
	if err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			err = fmt.Errorf("cannot read config: %w", err)
			return
		}
		err = nil
	}

	err = v.Unmarshal(&config)
	if err != nil {
		err = fmt.Errorf("cannot decode config: %w", err)
		return
	}

	err = config.Validate()
	return
}

func (config *Config) Validate() error {
	if err := validate.Struct(config); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Level returns the zerolog level named by LogLevel.
func (config *Config) Level() zerolog.Level {
	lvl, err := zerolog.ParseLevel(config.LogLevel)
	if err != nil {
		return zerolog.InfoLevel
	}
	return lvl
}

// Policy returns the warnings overflow policy named by WarningsPolicy.
func (config *Config) Policy() diag.WarningOverflowPolicy {
	p, err := diag.ParsePolicy(config.WarningsPolicy)
	if err != nil {
		return diag.WarnOverflowTrunc
	}
	return p
}
