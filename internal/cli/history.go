package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/roach88/qprog/internal/ir"
	"github.com/roach88/qprog/internal/store"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	Database string
	Circuit  string
	Device   string
	RunID    string
	Limit    int
	Runs     bool
	Latest   bool
}

// historyEntry is one stored record in JSON output.
type historyEntry struct {
	Seq      int64     `json:"seq"`
	RecordID string    `json:"record_id"`
	RunID    string    `json:"run_id"`
	Circuit  string    `json:"circuit"`
	Device   string    `json:"device"`
	Status   ir.Status `json:"status"`
	Shots    int       `json:"shots"`
	Counts   ir.Counts `json:"counts,omitempty"`
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show stored execution records",
		Long: `List execution records written by 'qprog run --db', oldest first.

Example:
  qprog history --db ./history.db
  qprog history --db ./history.db --circuit bell --device ibmqx2 --limit 5
  qprog history --db ./history.db --runs
  qprog history --db ./history.db --latest --circuit bell --device ibmqx2`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	cmd.Flags().StringVar(&opts.Circuit, "circuit", "", "only records of this circuit")
	cmd.Flags().StringVar(&opts.Device, "device", "", "only records from this device")
	cmd.Flags().StringVar(&opts.RunID, "run", "", "only records of this run")
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "keep only the newest N records")
	cmd.Flags().BoolVar(&opts.Runs, "runs", false, "list run ids instead of records")
	cmd.Flags().BoolVar(&opts.Latest, "latest", false, "show only the newest record of --circuit on --device")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runHistory(opts *HistoryOptions, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	if opts.Latest && (opts.Circuit == "" || opts.Device == "") {
		_ = formatter.Error(ErrCodeSpec, "--latest requires --circuit and --device", nil)
		return NewExitError(ExitCommandError, "--latest requires --circuit and --device")
	}

	if _, err := os.Stat(opts.Database); os.IsNotExist(err) {
		_ = formatter.Error(ErrCodeStore, fmt.Sprintf("database not found: %s", opts.Database), nil)
		return NewExitError(ExitCommandError, "database not found")
	}

	st, err := store.Open(opts.Database)
	if err != nil {
		return reportError(formatter, ExitCommandError, "failed to open database", err)
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			slog.Error("error closing database", "error", closeErr)
		}
	}()

	ctx := cmd.Context()
	if opts.Runs {
		runs, err := st.Runs(ctx)
		if err != nil {
			return reportError(formatter, ExitCommandError, "failed to read runs", err)
		}
		if opts.Format == "json" {
			return formatter.Success(runs)
		}
		rows := make([][]string, len(runs))
		for i, id := range runs {
			rows[i] = []string{id}
		}
		formatter.Table([]string{"RUN"}, rows)
		return nil
	}

	var entries []store.HistoryEntry
	if opts.Latest {
		entry, err := st.LatestRecord(ctx, opts.Circuit, opts.Device)
		if errors.Is(err, store.ErrNoRecord) {
			return reportError(formatter, ExitFailure, "no matching record", err)
		}
		if err != nil {
			return reportError(formatter, ExitCommandError, "failed to read history", err)
		}
		entries = []store.HistoryEntry{entry}
	} else {
		entries, err = st.ReadHistory(ctx, store.HistoryFilter{
			Circuit: opts.Circuit,
			Device:  opts.Device,
			RunID:   opts.RunID,
			Limit:   opts.Limit,
		})
		if err != nil {
			return reportError(formatter, ExitCommandError, "failed to read history", err)
		}
	}

	out := make([]historyEntry, len(entries))
	for i, e := range entries {
		out[i] = historyEntry{
			Seq:      e.Seq,
			RecordID: e.RecordID,
			RunID:    e.RunID,
			Circuit:  e.Record.Circuit,
			Device:   e.Record.Device,
			Status:   e.Record.Status,
			Shots:    e.Record.Shots,
		}
		if e.Record.Result != nil {
			out[i].Counts = e.Record.Result.Data.Counts
		}
	}

	if opts.Format == "json" {
		return formatter.Success(out)
	}
	if len(out) == 0 {
		fmt.Fprintln(formatter.Writer, "No execution records.")
		return nil
	}
	rows := make([][]string, len(out))
	for i, e := range out {
		rows[i] = []string{
			strconv.FormatInt(e.Seq, 10),
			e.RunID,
			e.Circuit,
			e.Device,
			string(e.Status),
			strconv.Itoa(e.Shots),
		}
	}
	formatter.Table([]string{"SEQ", "RUN", "CIRCUIT", "DEVICE", "STATUS", "SHOTS"}, rows)
	return nil
}
