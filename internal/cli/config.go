package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/toyz/dtogen/internal/errors"
	"github.com/toyz/dtogen/internal/generator"
	"github.com/toyz/dtogen/internal/models"
	"github.com/toyz/dtogen/internal/utils"
)

const (
	// ConfigFileName is the optional project configuration file
	ConfigFileName = "dtogen.toml"
	// EnvFileName is the optional dotenv file read next to the configuration
	EnvFileName = ".env"

	EnvJobs   = "DTOGEN_JOBS"
	EnvNotNil = "DTOGEN_NOTNIL"
	EnvOutput = "DTOGEN_OUTPUT"
)

// Config holds the configuration for the CLI generator. Values come from
// dtogen.toml, then .env and the environment, then command-line flags.
type Config struct {
	// Dir is the directory patterns are resolved from
	Dir string `toml:"-"`

	// Patterns are the package patterns to process, e.g. ./...
	Patterns []string `toml:"patterns"`

	// Jobs bounds parallel work, zero means GOMAXPROCS
	Jobs int `toml:"jobs"`

	// OutputFile is the name of the generated file in each package
	OutputFile string `toml:"output_file"`

	// NotNilContracts enables //dto:notnil directives, nil means enabled
	NotNilContracts *bool `toml:"notnil_contracts"`

	// Verbose enables detailed logging and error reporting
	Verbose bool `toml:"verbose"`

	// FailOnWarnings makes warnings fail the run
	FailOnWarnings bool `toml:"fail_on_warnings"`

	// NoCache disables the generation manifest
	NoCache bool `toml:"no_cache"`
}

// DefaultConfig returns the configuration used when nothing is set
func DefaultConfig() Config {
	return Config{
		Dir:        ".",
		Patterns:   []string{"./..."},
		OutputFile: generator.DefaultOutputFile,
	}
}

// LoadConfig reads dtogen.toml and .env from dir. Both files are optional.
// Non-empty variables of the process environment win over .env.
func LoadConfig(dir string) (Config, error) {
	cfg := DefaultConfig()
	if dir != "" {
		cfg.Dir = dir
	}

	path := filepath.Join(cfg.Dir, ConfigFileName)
	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return cfg, errors.WrapConfigurationError(ConfigFileName, "decode", err)
		}
	}

	dotenv := map[string]string{}
	envPath := filepath.Join(cfg.Dir, EnvFileName)
	if _, err := os.Stat(envPath); err == nil {
		if dotenv, err = godotenv.Read(envPath); err != nil {
			return cfg, errors.WrapConfigurationError(EnvFileName, "read", err)
		}
	}

	lookup := func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
			return v, true
		}
		v, ok := dotenv[key]
		return v, ok
	}
	if err := cfg.applyEnv(lookup); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// applyEnv overrides the configuration with DTOGEN_* variables
func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	if raw, ok := lookup(EnvJobs); ok && strings.TrimSpace(raw) != "" {
		jobs, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			return errors.WrapConfigurationError(EnvJobs, "parse", err)
		}
		c.Jobs = jobs
	}
	if raw, ok := lookup(EnvNotNil); ok && strings.TrimSpace(raw) != "" {
		enabled, err := strconv.ParseBool(strings.TrimSpace(raw))
		if err != nil {
			return errors.WrapConfigurationError(EnvNotNil, "parse", err)
		}
		c.NotNilContracts = &enabled
	}
	if raw, ok := lookup(EnvOutput); ok && strings.TrimSpace(raw) != "" {
		c.OutputFile = strings.TrimSpace(raw)
	}
	return nil
}

// Validate checks the configuration values
func (c Config) Validate() error {
	if err := utils.ValidateGeneratedFileName("output_file")(c.OutputFile); err != nil {
		return errors.WrapConfigurationError(ConfigFileName, "validate", err)
	}
	if c.Jobs < 0 {
		return errors.ConfigurationError(ConfigFileName, fmt.Sprintf("jobs must not be negative, got %d", c.Jobs)).
			WithSuggestion("use 0 to run one worker per CPU")
	}
	if len(c.Patterns) == 0 {
		return errors.ConfigurationError(ConfigFileName, "at least one package pattern is required")
	}
	return nil
}

// Features returns the host features generated code may rely on
func (c Config) Features() models.HostFeatures {
	enabled := true
	if c.NotNilContracts != nil {
		enabled = *c.NotNilContracts
	}
	return models.HostFeatures{NotNilContracts: enabled}
}
