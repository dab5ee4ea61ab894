package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	oasgen "github.com/LukeHagar/openapi-definition-generator"
	"github.com/LukeHagar/openapi-definition-generator/internal/logging"
)

// EnvPrefix prefixes every environment variable read by the CLI.
const EnvPrefix = "OASGEN"

// Settings is the resolved configuration of one invocation.
type Settings struct {
	Config      oasgen.Config
	ParseOpt    oasgen.ParseOpt
	Output      string // json or yaml
	InputFormat string // json, yaml or "" to detect from the file name
	LogLevel    string
	JSONLogs    bool
	Listen      string
	CacheSize   int
}

// loadConfig layers the optional .env file, config file and environment on
// top of the bound flags.
func loadConfig(v *viper.Viper) error {
	if envFile := v.GetString("env_file"); envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to load env file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	if configFile := v.GetString("config"); configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config file: %w", err)
		}
	}
	return nil
}

// resolve reads Settings from v and validates them.
func resolve(v *viper.Viper) (Settings, error) {
	s := Settings{
		Config: oasgen.Config{
			AllowIntegers:   v.GetBool("allow_integers"),
			IncludeExamples: v.GetBool("include_examples"),
			AllowOneOf:      v.GetBool("allow_one_of"),
		},
		ParseOpt: oasgen.ParseOpt{
			MaxDepth: v.GetInt("max_depth"),
			MaxBytes: v.GetInt64("max_bytes"),
		},
		Output:      strings.ToLower(v.GetString("output")),
		InputFormat: strings.ToLower(v.GetString("input_format")),
		LogLevel:    v.GetString("log_level"),
		JSONLogs:    v.GetBool("json_logs"),
		Listen:      v.GetString("listen"),
		CacheSize:   v.GetInt("cache_size"),
	}

	nt, err := oasgen.ParseNullType(v.GetString("null_type"))
	if err != nil {
		return Settings{}, err
	}
	s.Config.NullType = nt

	switch strings.ToLower(v.GetString("duplicate_keys")) {
	case "ignore":
		s.ParseOpt.Strictness.OnDuplicateKey = oasgen.Ignore
	case "warn":
		s.ParseOpt.Strictness.OnDuplicateKey = oasgen.Warn
	case "error":
		s.ParseOpt.Strictness.OnDuplicateKey = oasgen.Error
	default:
		return Settings{}, fmt.Errorf("duplicate_keys must be ignore, warn or error, got %q", v.GetString("duplicate_keys"))
	}

	switch strings.ToLower(v.GetString("number_mode")) {
	case "literal":
		s.ParseOpt.NumberMode = oasgen.NumberJSONNumber
	case "float64":
		s.ParseOpt.NumberMode = oasgen.NumberFloat64
	default:
		return Settings{}, fmt.Errorf("number_mode must be literal or float64, got %q", v.GetString("number_mode"))
	}

	if s.Output != formatJSON && s.Output != formatYAML {
		return Settings{}, fmt.Errorf("output must be json or yaml, got %q", s.Output)
	}
	switch s.InputFormat {
	case "", formatJSON, formatYAML:
	default:
		return Settings{}, fmt.Errorf("input_format must be json or yaml, got %q", s.InputFormat)
	}
	return s, nil
}

// logger builds the logrus logger for s, writing to stderr.
func (s Settings) logger() (*logrus.Logger, error) {
	return logging.New(logging.Options{Level: s.LogLevel, JSON: s.JSONLogs})
}
