// Copyright (C) 2025 CardinalHQ, Inc
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, version 3.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <http://www.gnu.org/licenses/>.

package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/cardinalhq/logrank/config"
	"github.com/cardinalhq/logrank/internal/lineio"
	"github.com/cardinalhq/logrank/internal/logctx"
	"github.com/cardinalhq/logrank/internal/pipeline"
)

type rootFlags struct {
	configFile string
	logFile    string
	verbose    bool
}

func newRootCmd() *cobra.Command {
	var rf rootFlags

	cmd := &cobra.Command{
		Use:   "logrank [flags] PATTERN [FILE...]",
		Short: "Colour log lines by the percentile rank of a captured number",
		Long: `Read log lines from files or stdin, extract the number captured by the
first group of PATTERN from each line, and print every line with that number
coloured by where it falls in the distribution of all captured numbers:
red for the top 1%, magenta for the top 10%, yellow for the top 50%.`,
		Example: `  logrank 'took (\d+)ms' access.log
  kubectl logs api | logrank --sort desc -m 'latency=(\d+)'`,
		Args:         cobra.ArbitraryArgs,
		SilenceUsage: true,
		RunE: func(c *cobra.Command, args []string) error {
			return run(c, args, rf)
		},
	}

	fs := cmd.Flags()
	fs.Bool("highlight", false, "Colour every match the same instead of by rank")
	fs.BoolP("bold", "b", false, "Make matched values bold")
	fs.BoolP("matching-only", "m", false, "Only print lines whose value was extracted")
	fs.String("sort", "original", "Line order: original, asc or desc (sorting implies --matching-only)")
	fs.BoolP("debug", "d", false, "Print the sample count and p99/p90/p50 after the lines")
	fs.String("color", "auto", "Colour output: auto, always or never")
	fs.Int("workers", 0, "Parallel classification workers (0 = number of CPUs)")
	fs.StringVarP(&rf.configFile, "config", "c", "", "Path to a config file (default ./logrank.yaml)")
	fs.StringVar(&rf.logFile, "log-file", "", "Also write diagnostic logs to this file as JSON")
	fs.BoolVarP(&rf.verbose, "verbose", "v", false, "Enable debug logging on stderr")

	return cmd
}

func run(c *cobra.Command, args []string, rf rootFlags) error {
	logger, closeLog, err := newLogger(c.ErrOrStderr(), rf.verbose, rf.logFile)
	if err != nil {
		return err
	}
	defer func() {
		_ = closeLog()
	}()
	slog.SetDefault(logger)
	ctx := logctx.WithLogger(c.Context(), logger)

	cfg, err := config.Load(rf.configFile, c.Flags())
	if err != nil {
		return err
	}
	if len(args) > 0 {
		cfg.Pattern = args[0]
	}
	if len(args) > 1 {
		cfg.Inputs = args[1:]
	}
	resolved, err := cfg.Resolve()
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	matcher := resolved.Matcher

	if matcher.Groups() == 0 {
		logger.Warn("Pattern has no capturing group, no line will match", slog.String("pattern", cfg.Pattern))
	}

	start := time.Now()
	lines, err := lineio.ReadSources(ctx, cfg.Inputs, c.InOrStdin())
	if err != nil {
		return err
	}
	logger.Debug("Read input", slog.Int("lines", len(lines)), slog.Duration("elapsed", time.Since(start)))

	out := c.OutOrStdout()
	res, err := pipeline.Execute(ctx, lines, out, pipeline.Options{
		Matcher:      matcher,
		Highlight:    cfg.Highlight,
		Bold:         cfg.Bold,
		MatchingOnly: cfg.MatchingOnly,
		Order:        resolved.Order,
		Summary:      cfg.Summary,
		Workers:      cfg.Workers,
		Colors:       resolved.ColorMode.Enabled(out),
	})
	if err != nil {
		return err
	}
	logger.Debug("Run complete",
		slog.Int("written", len(res.Lines)),
		slog.Uint64("matched", res.Summary.Matched),
		slog.Duration("elapsed", time.Since(start)))
	return nil
}

// Execute runs the root command and exits non-zero on failure.
// This is called by main.main().
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
