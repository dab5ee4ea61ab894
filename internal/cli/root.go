// Package cli implements the oasgen command line.
package cli

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	formatJSON = "json"
	formatYAML = "yaml"
)

// NewRootCommand builds the oasgen command tree. Each call uses its own viper
// instance.
func NewRootCommand() *cobra.Command {
	v := viper.New()

	rootCmd := &cobra.Command{
		Use:   "oasgen",
		Short: "Generate OpenAPI schema definitions from sample data",
		Long: `oasgen infers an OpenAPI 3 schema from a JSON or YAML sample: integer formats,
date and date-time strings, nullable stand-in types, and array item schemas
(merged or oneOf).`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return loadConfig(v)
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "Configuration file path (yaml, json or toml)")
	pf.String("env-file", ".env", "Dotenv file loaded before reading OASGEN_* variables")
	pf.String("log-level", "warn", "Logging level (debug, info, warn, error)")
	pf.Bool("json-logs", false, "Use JSON log format")

	pf.Bool("allow-integers", true, "Infer integer with int32/int64/unsafe format for whole numbers")
	pf.Bool("include-examples", true, "Embed sampled values as examples")
	pf.String("null-type", "string", "Type declared for null values (number, string, integer, boolean)")
	pf.Bool("allow-one-of", false, "Union distinct array element schemas with oneOf instead of merging")
	pf.StringP("output", "o", formatYAML, "Output format (yaml, json)")
	pf.String("input-format", "", "Input format (json, yaml); detected from the file name when empty")
	pf.Int("max-depth", 0, "Maximum nesting depth of the sample (0 = unlimited)")
	pf.Int64("max-bytes", 0, "Maximum sample size in bytes (0 = unlimited)")
	pf.String("duplicate-keys", "ignore", "Duplicate object keys: ignore (last wins), warn, error")
	pf.String("number-mode", "literal", "Example numbers: literal (as written) or float64")

	for key, flag := range map[string]string{
		"config":           "config",
		"env_file":         "env-file",
		"log_level":        "log-level",
		"json_logs":        "json-logs",
		"allow_integers":   "allow-integers",
		"include_examples": "include-examples",
		"null_type":        "null-type",
		"allow_one_of":     "allow-one-of",
		"output":           "output",
		"input_format":     "input-format",
		"max_depth":        "max-depth",
		"max_bytes":        "max-bytes",
		"duplicate_keys":   "duplicate-keys",
		"number_mode":      "number-mode",
	} {
		_ = v.BindPFlag(key, pf.Lookup(flag))
	}

	rootCmd.AddCommand(newInferCommand(v), newExampleCommand(v), newServeCommand(v))
	return rootCmd
}
