package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/mohammadpnp/crm-import/internal/logging"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

type rootOptions struct {
	logLevel  string
	logFormat string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:          "orgimport",
		Short:        "Preview and import organizations from CSV files",
		SilenceUsage: true,
	}
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	cmd.PersistentFlags().StringVar(&opts.logFormat, "log-format", "text", "Log format (text or json)")

	cmd.AddCommand(newFieldsCmd())
	cmd.AddCommand(newPreviewCmd())
	cmd.AddCommand(newRunCmd(opts))
	return cmd
}

func (o *rootOptions) logger(cmd *cobra.Command) *logrus.Logger {
	return logging.New(cmd.ErrOrStderr(), o.logLevel, o.logFormat)
}

// parseMappings turns repeated "Header=field" flags into overrides. An
// empty field reverts the header to automatic detection.
func parseMappings(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	out := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		header, field, ok := strings.Cut(pair, "=")
		if !ok || strings.TrimSpace(header) == "" {
			return nil, withCode(exitUsage, fmt.Errorf("invalid --map %q, expected Header=field", pair))
		}
		out[strings.TrimSpace(header)] = strings.TrimSpace(field)
	}
	return out, nil
}

func readFile(path string) ([]byte, error) {
	if path == "" {
		return nil, withCode(exitUsage, fmt.Errorf("--file is required"))
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, withCode(exitUsage, fmt.Errorf("read %s: %w", path, err))
	}
	return content, nil
}
