package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/webmend/webmend/internal/config"
	"github.com/webmend/webmend/internal/constants"
	"github.com/webmend/webmend/internal/errors"
	"github.com/webmend/webmend/internal/probe"
)

// ProbeFlags holds flags specific to the probe command.
type ProbeFlags struct {
	// Endpoint overrides the CDP_URL environment variable.
	Endpoint string
	// JSON emits the probe result as JSON.
	JSON bool
}

// AddProbeCommand adds the probe command to the root command.
func AddProbeCommand(root *cobra.Command) {
	flags := &ProbeFlags{}

	cmd := &cobra.Command{
		Use:   "probe",
		Short: "Check browser endpoint connectivity",
		Long: `Check whether the remote browser endpoint answers a trivial no-op
command, using the same bounded-retry probe that gates every repair
session. Exits non-zero when the endpoint is unreachable.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runProbe(cmd.Context(), cmd.OutOrStdout(), flags)
		},
		SilenceUsage: true,
	}

	cmd.Flags().StringVar(&flags.Endpoint, "endpoint", "", "browser endpoint (defaults to $"+constants.EndpointEnvVar+")")
	cmd.Flags().BoolVar(&flags.JSON, "json", false, "emit the probe result as JSON")

	root.AddCommand(cmd)
}

// runProbe executes the probe command.
func runProbe(ctx context.Context, w io.Writer, flags *ProbeFlags) error {
	endpoint := resolveEndpoint(flags.Endpoint)
	if endpoint == "" {
		return errors.Wrapf(errors.ErrMissingEndpoint, "set %s or pass --endpoint", constants.EndpointEnvVar)
	}

	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}

	logger := GetLogger()
	prober := probe.New(cfg.Probe, probe.WithLogger(logger))

	result, err := prober.Probe(ctx, endpoint)
	if err != nil {
		return err
	}

	if flags.JSON {
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		if encErr := encoder.Encode(result); encErr != nil {
			return encErr
		}
	} else if result.Connected {
		fmt.Fprintf(w, "Endpoint reachable after %d attempt(s).\n", result.Attempts)
	} else {
		fmt.Fprintf(w, "Endpoint unreachable after %d attempt(s): %s\n", result.Attempts, result.Error)
	}

	if !result.Connected {
		return errors.Wrap(errors.ErrEndpointUnreachable, result.Error)
	}
	return nil
}
