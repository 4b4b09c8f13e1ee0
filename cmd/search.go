// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/telekom/horizon/internal/horizon"
	"github.com/telekom/horizon/internal/logger"
)

// Output formats of the search command
const (
	outputText = "text"
	outputJSON = "json"
)

type searchFlags struct {
	family string
	source string
	output string
	opts   horizon.Options
}

// searchOutput is the json document written by the search command: the result
// with the searched target and the duration in seconds next to its fields.
type searchOutput struct {
	Target horizon.Target
	Result horizon.Result
}

func (o searchOutput) MarshalJSON() ([]byte, error) {
	res, err := json.Marshal(o.Result)
	if err != nil {
		return nil, err
	}
	doc := map[string]json.RawMessage{}
	if err := json.Unmarshal(res, &doc); err != nil {
		return nil, err
	}

	if doc["target"], err = json.Marshal(o.Target); err != nil {
		return nil, err
	}
	if doc["durationSeconds"], err = json.Marshal(o.Result.Duration.Seconds()); err != nil {
		return nil, err
	}
	return json.Marshal(doc)
}

// newClient is replaced in tests.
var newClient = horizon.NewClient

// NewCmdSearch creates the command that runs a single search
func NewCmdSearch() *cobra.Command {
	f := &searchFlags{opts: horizon.DefaultOptions()}

	cmd := &cobra.Command{
		Use:   "search HOST [SERVICE]",
		Short: "Search the TTL horizon of a host once",
		Long: "Searches the smallest TTL at which a TCP connection to HOST succeeds or is\n" +
			"definitively rejected. SERVICE is a port number or service name and defaults to 80.",
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return f.search(cmd, args)
		},
	}

	cmd.Flags().StringVar(&f.family, "family", "auto", "address family: auto, 4 or 6")
	cmd.Flags().StringVar(&f.source, "source", "", "local address to probe from")
	cmd.Flags().DurationVar(&f.opts.Timeout, "wait", f.opts.Timeout, "wait budget of every probe")
	cmd.Flags().IntVar(&f.opts.MinTTL, "min-ttl", f.opts.MinTTL, "smallest TTL to probe")
	cmd.Flags().IntVar(&f.opts.MaxTTL, "max-ttl", f.opts.MaxTTL, "largest TTL to probe")
	cmd.Flags().StringVarP(&f.output, "output", "o", outputText, "output format: text or json")

	return cmd
}

func (f *searchFlags) search(cmd *cobra.Command, args []string) error {
	if f.output != outputText && f.output != outputJSON {
		return fmt.Errorf("invalid output format %q: must be %s or %s", f.output, outputText, outputJSON)
	}
	family, err := horizon.ParseFamily(f.family)
	if err != nil {
		return err
	}

	target := horizon.Target{Host: args[0], Service: "80", Family: family, Source: f.source}
	if len(args) == 2 {
		target.Service = args[1]
	}

	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	ctx = logger.IntoContext(ctx, logger.NewLogger())

	res, err := newClient().Search(ctx, target, &f.opts)
	if err != nil {
		return err
	}

	if f.output == outputJSON {
		return writeJSON(cmd.OutOrStdout(), target, res)
	}
	return writeText(cmd.OutOrStdout(), target, res)
}

func writeJSON(w io.Writer, target horizon.Target, res horizon.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(searchOutput{Target: target, Result: res})
}

func writeText(w io.Writer, target horizon.Target, res horizon.Result) error {
	if _, err := fmt.Fprintf(w, "searching %s via %s\n", target, res.Route); err != nil {
		return err
	}
	for _, s := range res.Steps {
		if _, err := fmt.Fprintln(w, s.Outcome.Message); err != nil {
			return err
		}
	}

	var err error
	switch {
	case !res.Reached:
		_, err = fmt.Fprintf(w, "no definitive answer up to the maximum TTL\n")
	case res.Unreachable:
		_, err = fmt.Fprintf(w, "horizon: %d (host unreachable)\n", res.Horizon)
	default:
		_, err = fmt.Fprintf(w, "horizon: %d\n", res.Horizon)
	}
	return err
}
