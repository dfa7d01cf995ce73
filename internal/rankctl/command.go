// Package rankctl implements the rankctl command line: local ranking runs
// against a fixture or database, and probes of a running server.
package rankctl

import (
	"runtime"
	"time"

	"github.com/spf13/cobra"

	"github.com/okian/talentmatch/pkg/logger"
)

// Flag defaults.
const (
	defaultProbeURL      = "http://localhost:9080"
	defaultProbeRequests = 200
	defaultTimeout       = 10 * time.Second
	workersPerCPU        = 2
)

// NewRootCommand builds the rankctl command tree.
func NewRootCommand() *cobra.Command {
	var (
		verbose bool
		logJSON bool
	)
	root := &cobra.Command{
		Use:           "rankctl",
		Short:         "Rank talents for a campaign brief",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			var opts []logger.Option
			if logJSON {
				opts = append(opts, logger.WithJSON())
			}
			if err := logger.Init(opts...); err != nil {
				return err
			}
			level := "warn"
			if verbose {
				level = "debug"
			}
			return logger.SetLevelString(level)
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	root.PersistentFlags().BoolVar(&logJSON, "log-json", false, "emit logs as JSON lines")

	root.AddCommand(newRankCommand(), newProbeCommand())
	return root
}

func newRankCommand() *cobra.Command {
	var opts RankOptions
	cmd := &cobra.Command{
		Use:   "rank",
		Short: "Rank a brief locally against a fixture or database",
		Example: `  rankctl rank --segment F2 --industry beer --budget-band "up to 30M" --fixture talents.yaml
  rankctl rank --segment F2 --industry beer --budget-band "up to 30M" --dsn postgres://localhost/talentmatch --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return RunRank(cmd.Context(), opts, cmd.OutOrStdout())
		},
	}
	f := cmd.Flags()
	f.StringVar(&opts.Brief.Segment, "segment", "", "target segment key, label or id")
	f.StringVar(&opts.Brief.Industry, "industry", "", "advertiser industry")
	f.StringVar(&opts.Brief.BudgetBand, "budget-band", "", "budget band name")
	f.StringVar(&opts.FixturePath, "fixture", "", "YAML dataset path")
	f.StringVar(&opts.DSN, "dsn", "", "Postgres connection string")
	f.StringVar(&opts.RedisAddr, "redis", "", "Redis address for the reference-data cache")
	f.Int64Var(&opts.Seed, "seed", 0, "matching score seed; 0 seeds from the clock")
	f.StringVar(&opts.AsOf, "as-of", "", "evaluation date YYYY-MM-DD (default today)")
	f.IntVar(&opts.MinAge, "min-age", 0, "override the regulated-industry age gate")
	f.BoolVar(&opts.JSON, "json", false, "print a JSON report")
	f.DurationVar(&opts.Timeout, "timeout", defaultTimeout, "ranking deadline")
	return cmd
}

func newProbeCommand() *cobra.Command {
	var opts ProbeOptions
	cmd := &cobra.Command{
		Use:   "probe",
		Short: "Fire concurrent rank requests at a server and verify every response",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := Probe(cmd.Context(), opts, cmd.OutOrStdout())
			return err
		},
	}
	f := cmd.Flags()
	f.StringVar(&opts.BaseURL, "url", defaultProbeURL, "server base URL")
	f.StringVar(&opts.Brief.Segment, "segment", "F2", "target segment")
	f.StringVar(&opts.Brief.Industry, "industry", "", "advertiser industry")
	f.StringVar(&opts.Brief.BudgetBand, "budget-band", "", "budget band name")
	f.IntVar(&opts.Requests, "requests", defaultProbeRequests, "number of rank requests")
	f.IntVar(&opts.Workers, "workers", runtime.NumCPU()*workersPerCPU, "concurrent requests")
	f.DurationVar(&opts.Timeout, "timeout", defaultTimeout, "per-request HTTP timeout")
	_ = cmd.MarkFlagRequired("industry")
	_ = cmd.MarkFlagRequired("budget-band")
	return cmd
}
