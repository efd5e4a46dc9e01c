package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/viant/swarmdb/logdb"
	"github.com/viant/swarmdb/ranges"
	"github.com/viant/swarmdb/record"
)

const (
	whichInitial = "initial"
	whichFinal   = "final"
	whichScan    = "scan"
)

type queryFlags struct {
	systems string
	times   string
	events  []string
	limit   int
	format  string
}

func (f *queryFlags) register(cmd *cobra.Command, scan bool) {
	cmd.Flags().StringVar(&f.systems, "sys", "ALL", "system range: ALL, id, lo..hi, MIN..hi, lo..MAX")
	if scan {
		cmd.Flags().StringVar(&f.times, "time", "ALL", "time range, same syntax as --sys")
		cmd.Flags().StringSliceVar(&f.events, "event", nil, "event names or ids to keep (repeatable)")
		cmd.Flags().IntVar(&f.limit, "limit", 0, "stop after n records (0: no limit)")
	}
}

// result builds the query selected by which.
func (f *queryFlags) result(db *logdb.DB, which string) (*logdb.Result, error) {
	systems, err := ranges.ParseSystems(f.systems)
	if err != nil {
		return nil, err
	}
	switch which {
	case whichInitial:
		return db.InitialConditions(systems), nil
	case whichFinal:
		return db.FinalConditions(systems), nil
	case whichScan:
	default:
		return nil, fmt.Errorf("unknown query %q (want %s, %s or %s)", which, whichInitial, whichFinal, whichScan)
	}
	var opts []logdb.ScanOption
	if f.times != "" {
		times, err := ranges.ParseTimes(f.times)
		if err != nil {
			return nil, err
		}
		opts = append(opts, logdb.WithTimeRange(times))
	}
	if len(f.events) > 0 {
		ids := make([]record.EventID, 0, len(f.events))
		for _, name := range f.events {
			id, err := record.ParseEventID(strings.TrimSpace(name))
			if err != nil {
				return nil, err
			}
			ids = append(ids, id)
		}
		opts = append(opts, logdb.WithEvents(ids...))
	}
	if f.limit > 0 {
		opts = append(opts, logdb.WithLimit(f.limit))
	}
	return db.Scan(systems, opts...), nil
}

func (a *app) runQuery(cmd *cobra.Command, path, which string, f *queryFlags) error {
	db, err := a.open(cmd.Context(), path)
	if err != nil {
		return err
	}
	defer db.Close()
	result, err := f.result(db, which)
	if err != nil {
		return err
	}
	p, err := newPrinter(a.out, f.format)
	if err != nil {
		return err
	}
	for pair, err := range result.All() {
		if err != nil {
			_ = p.Flush()
			return err
		}
		if err := p.Print(pair); err != nil {
			return err
		}
	}
	return p.Flush()
}

func (a *app) newConditionsCommand(which, short string) *cobra.Command {
	f := &queryFlags{}
	cmd := &cobra.Command{
		Use:   which + " <log>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runQuery(cmd, args[0], which, f)
		},
	}
	f.register(cmd, false)
	cmd.Flags().StringVar(&f.format, "format", formatText, "output format: text or json")
	return cmd
}

func (a *app) newScanCommand() *cobra.Command {
	f := &queryFlags{}
	cmd := &cobra.Command{
		Use:   "scan <log>",
		Short: "Print every record of the selected systems, ordered by system and time",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runQuery(cmd, args[0], whichScan, f)
		},
	}
	f.register(cmd, true)
	cmd.Flags().StringVar(&f.format, "format", formatText, "output format: text or json")
	return cmd
}

func (a *app) newSystemsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "systems <log>",
		Short: "List logged system ids",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := a.open(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			defer db.Close()
			for _, id := range db.Systems() {
				if _, err := fmt.Fprintln(a.out, id); err != nil {
					return err
				}
			}
			return nil
		},
	}
}
