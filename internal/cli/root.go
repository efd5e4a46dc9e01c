// Package cli implements the swarmquery command tree.
package cli

import (
	"context"
	"io"
	"log/slog"

	"github.com/google/gops/agent"
	"github.com/spf13/cobra"
	"github.com/viant/swarmdb/config"
	"github.com/viant/swarmdb/logdb"
)

type app struct {
	out        io.Writer
	errOut     io.Writer
	configPath string
	cfg        *config.Config
	logger     *slog.Logger
}

// NewRoot returns the swarmquery root command writing results to out and
// diagnostics to errOut.
func NewRoot(out, errOut io.Writer) *cobra.Command {
	a := &app{out: out, errOut: errOut}
	root := &cobra.Command{
		Use:           "swarmquery",
		Short:         "Query N-body simulation logs",
		Long:          "swarmquery extracts initial conditions, final conditions and time ranges of systems from a swarm log.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init()
		},
	}
	root.SetOut(out)
	root.SetErr(errOut)
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "config yaml (optional)")

	root.AddCommand(a.newConditionsCommand("initial", "Print the first logged record of each system"))
	root.AddCommand(a.newConditionsCommand("final", "Print the last logged record of each system"))
	root.AddCommand(a.newScanCommand())
	root.AddCommand(a.newSystemsCommand())
	root.AddCommand(a.newInfoCommand())
	root.AddCommand(a.newExportCommand())
	return root
}

func (a *app) init() error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = cfg.NewLogger(a.errOut).With("component", "swarmquery")
	if cfg.Gops {
		if err := agent.Listen(agent.Options{ShutdownCleanup: true}); err != nil {
			a.logger.Warn("gops", "error", err)
		}
	}
	return nil
}

func (a *app) open(ctx context.Context, path string) (*logdb.DB, error) {
	opts := []logdb.Option{logdb.WithLogger(a.logger), logdb.WithMmap(a.cfg.Mmap)}
	if a.cfg.IndexCache != "" {
		opts = append(opts, logdb.WithIndexCache(a.cfg.IndexCache))
	}
	return logdb.Open(ctx, path, opts...)
}
