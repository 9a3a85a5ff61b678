package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/webmend/webmend/internal/config"
	"github.com/webmend/webmend/internal/errors"
)

// ConfigShowFlags holds flags specific to the config show command.
type ConfigShowFlags struct {
	// OutputFormat specifies the output format (yaml or json).
	OutputFormat string
}

// AddConfigCommand adds the config command and its subcommands to the root.
func AddConfigCommand(root *cobra.Command) {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage webmend configuration",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
		SilenceUsage: true,
	}

	flags := &ConfigShowFlags{}
	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Display effective configuration",
		Long: `Display the effective webmend configuration after merging all layers.

Precedence, highest first:
  - WEBMEND_* environment variables
  - project .webmend/config.yaml
  - global ~/.webmend/config.yaml
  - built-in defaults

Examples:
  webmend config show                # YAML
  webmend config show --format json # JSON`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runConfigShow(cmd.Context(), cmd.OutOrStdout(), flags)
		},
		SilenceUsage: true,
	}
	showCmd.Flags().StringVar(&flags.OutputFormat, "format", "yaml", "output format (yaml or json)")

	configCmd.AddCommand(showCmd)
	root.AddCommand(configCmd)
}

// runConfigShow executes the config show command.
func runConfigShow(ctx context.Context, w io.Writer, flags *ConfigShowFlags) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	cfg, err := config.Load(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to load configuration")
	}

	switch strings.ToLower(flags.OutputFormat) {
	case "json":
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		if encErr := encoder.Encode(cfg); encErr != nil {
			return encErr
		}
	case "yaml":
		encoder := yaml.NewEncoder(w)
		encoder.SetIndent(2)
		if encErr := encoder.Encode(cfg); encErr != nil {
			return encErr
		}
		if closeErr := encoder.Close(); closeErr != nil {
			return closeErr
		}
		printConfigLocations(w)
	default:
		return errors.Wrapf(errors.ErrInvalidOutputFormat, "%s (use yaml or json)", flags.OutputFormat)
	}

	return nil
}

// printConfigLocations appends the config file paths and whether each exists.
func printConfigLocations(w io.Writer) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, "# Configuration files:")

	if globalPath, err := config.GlobalConfigPath(); err == nil {
		fmt.Fprintf(w, "#   global:  %s%s\n", globalPath, existsSuffix(globalPath))
	}

	projectPath := config.ProjectConfigPath()
	if abs, err := filepath.Abs(projectPath); err == nil {
		projectPath = abs
	}
	fmt.Fprintf(w, "#   project: %s%s\n", projectPath, existsSuffix(projectPath))
}

func existsSuffix(path string) string {
	if _, err := os.Stat(path); err != nil {
		return " (not found)"
	}
	return ""
}
