package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	oasgen "github.com/LukeHagar/openapi-definition-generator"
	"github.com/LukeHagar/openapi-definition-generator/httpapi"
)

func newInferCommand(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "infer [file|-]",
		Short: "Infer the schema of a sample file (stdin when omitted or -)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := resolve(v)
			if err != nil {
				return err
			}
			log, err := s.logger()
			if err != nil {
				return err
			}

			name := "-"
			if len(args) == 1 {
				name = args[0]
			}
			data, err := readInput(cmd.InOrStdin(), name)
			if err != nil {
				return err
			}
			input := s.InputFormat
			if input == "" {
				input = detectFormat(name)
			}
			log.WithFields(logrus.Fields{"file": name, "bytes": len(data), "input": input}).Debug("inferring schema")

			schema, err := inferSample(data, input, s, log)
			if err != nil {
				reportIssues(log, err)
				return err
			}
			return writeSchema(cmd.OutOrStdout(), schema, s.Output)
		},
	}
}

func newExampleCommand(v *viper.Viper) *cobra.Command {
	var showSample bool
	cmd := &cobra.Command{
		Use:   "example",
		Short: "Print the schema of the built-in example sample",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if showSample {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), oasgen.ExampleJSON)
				return err
			}
			s, err := resolve(v)
			if err != nil {
				return err
			}
			log, err := s.logger()
			if err != nil {
				return err
			}
			schema, err := inferSample([]byte(oasgen.ExampleJSON), formatJSON, s, log)
			if err != nil {
				return err
			}
			return writeSchema(cmd.OutOrStdout(), schema, s.Output)
		},
	}
	cmd.Flags().BoolVar(&showSample, "sample", false, "Print the example sample instead of its schema")
	return cmd
}

func newServeCommand(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve schema inference over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := resolve(v)
			if err != nil {
				return err
			}
			log, err := s.logger()
			if err != nil {
				return err
			}
			opt := httpapi.DefaultParseOpt()
			if s.ParseOpt.MaxDepth > 0 {
				opt.MaxDepth = s.ParseOpt.MaxDepth
			}
			if s.ParseOpt.MaxBytes > 0 {
				opt.MaxBytes = s.ParseOpt.MaxBytes
			}
			if v.IsSet("duplicate_keys") {
				opt.Strictness = s.ParseOpt.Strictness
			}
			opt.NumberMode = s.ParseOpt.NumberMode

			srv, err := httpapi.New(httpapi.Options{
				Config:    &s.Config,
				ParseOpt:  &opt,
				Format:    s.Output,
				CacheSize: s.CacheSize,
				Logger:    log,
			})
			if err != nil {
				return err
			}
			return srv.ListenAndServe(cmd.Context(), s.Listen)
		},
	}
	cmd.Flags().String("listen", ":8080", "HTTP listen address")
	cmd.Flags().Int("cache-size", 256, "Number of cached inference responses (0 disables the cache)")
	_ = v.BindPFlag("listen", cmd.Flags().Lookup("listen"))
	_ = v.BindPFlag("cache_size", cmd.Flags().Lookup("cache-size"))
	return cmd
}

func readInput(stdin io.Reader, name string) ([]byte, error) {
	if name == "-" {
		return io.ReadAll(stdin)
	}
	data, err := os.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("reading sample: %w", err)
	}
	return data, nil
}

func detectFormat(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml":
		return formatYAML
	}
	return formatJSON
}

func inferSample(data []byte, input string, s Settings, log logrus.FieldLogger) (oasgen.Schema, error) {
	opt := s.ParseOpt
	opt.IssueSink = func(is oasgen.Issue) {
		log.WithFields(logrus.Fields{"code": is.Code, "path": is.Path}).Warn(is.Message)
	}
	if input == formatYAML {
		return oasgen.InferFromYAML(data, s.Config, opt)
	}
	return oasgen.InferFromJSON(oasgen.JSONBytes(data), s.Config, opt)
}

func writeSchema(w io.Writer, schema oasgen.Schema, output string) error {
	var (
		b   []byte
		err error
	)
	if output == formatJSON {
		b, err = oasgen.MarshalIndent(schema, "", "  ")
		b = append(b, '\n')
	} else {
		b, err = oasgen.MarshalYAML(schema)
	}
	if err != nil {
		return err
	}
	_, err = w.Write(b)
	return err
}

func reportIssues(log logrus.FieldLogger, err error) {
	iss, ok := oasgen.AsIssues(err)
	if !ok {
		return
	}
	for _, is := range iss {
		log.WithFields(logrus.Fields{"code": is.Code, "path": is.Path, "offset": is.Offset}).Error(is.Message)
	}
}
