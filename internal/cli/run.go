package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"slices"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/roach88/qprog/internal/engine"
	"github.com/roach88/qprog/internal/ir"
	"github.com/roach88/qprog/internal/sim"
	"github.com/roach88/qprog/internal/store"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	ProgramOptions
	Database string
	Wait     int
	Timeout  int
}

// runOutput is one circuit's outcome in JSON output.
type runOutput struct {
	Circuit        string    `json:"circuit"`
	Device         string    `json:"device"`
	Status         ir.Status `json:"status"`
	Counts         ir.Counts `json:"counts,omitempty"`
	ClassicalState *uint64   `json:"classical_state,omitempty"`
	Unitary        ir.Matrix `json:"unitary,omitempty"`

	clbits int
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{ProgramOptions: ProgramOptions{RootOptions: rootOpts}}

	cmd := &cobra.Command{
		Use:   "run <spec>",
		Short: "Compile and run circuits from a program spec",
		Long: `Load a program spec, compile its circuits for a device and run them.

Remote devices are polled every --wait seconds until the job leaves RUNNING
or --timeout seconds pass. With --db every execution record is appended to
a SQLite history.

Example:
  qprog run ./bell.yaml --device local_qasm_simulator --shots 100 --seed 7
  qprog run ./program --device ibmqx2 --db ./history.db`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProgram(opts, args[0], cmd)
		},
	}

	opts.addFlags(cmd)
	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite history database")
	cmd.Flags().IntVar(&opts.Wait, "wait", 0, "seconds between remote status checks")
	cmd.Flags().IntVar(&opts.Timeout, "timeout", 0, "seconds before a remote job is abandoned")

	return cmd
}

func runProgram(opts *RunOptions, specPath string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	// Setup signal handling for graceful shutdown
	// Use command's context if available (for testing), otherwise create one
	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, cancel := context.WithCancel(parentCtx)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		select {
		case sig := <-sigChan:
			slog.Info("received signal, cancelling run", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	slog.Debug("loading spec", "path", specPath)
	spec, err := opts.loadSpec(specPath)
	if err != nil {
		return reportError(formatter, ExitCommandError, "failed to load spec", err)
	}

	var extra []engine.Option
	if opts.Database != "" {
		slog.Info("opening database", "path", opts.Database)
		st, err := store.Open(opts.Database)
		if err != nil {
			return reportError(formatter, ExitCommandError, "failed to open database", err)
		}
		defer func() {
			if closeErr := st.Close(); closeErr != nil {
				slog.Error("error closing database", "error", closeErr)
			}
		}()
		seq, err := st.MaxSeq(ctx)
		if err != nil {
			return reportError(formatter, ExitCommandError, "failed to read database", err)
		}
		extra = append(extra, engine.WithRecordSink(st), engine.WithClock(engine.NewClockAt(seq)))
	}

	p, err := opts.newProgram(spec, extra...)
	if err != nil {
		return reportError(formatter, ExitCommandError, "failed to initialise program", err)
	}

	names, device, compileOpts := opts.compileArgs(cmd, spec)
	wait, timeout, err := pollTimes(cmd, opts.Wait, opts.Timeout, spec.Run)
	if err != nil {
		return reportError(formatter, ExitCommandError, "invalid polling flags", err)
	}

	slog.Info("running program", "device", device, "circuits", len(names))
	if err := p.Execute(ctx, names, device, wait, timeout, compileOpts...); err != nil {
		if errors.Is(err, context.Canceled) {
			return reportError(formatter, ExitFailure, "run cancelled", err)
		}
		return reportError(formatter, ExitFailure, "run failed", err)
	}

	outputs := make([]runOutput, 0, len(names))
	for _, name := range names {
		rec, err := p.Execution(name, device)
		if err != nil {
			return reportError(formatter, ExitFailure, "run failed", err)
		}
		out := runOutput{Circuit: name, Device: device, Status: rec.Status}
		if rec.Local != nil {
			out.clbits = rec.Local.NumClbits
		}
		if rec.Result != nil {
			out.Counts = rec.Result.Data.Counts
			out.ClassicalState = rec.Result.Data.ClassicalState
			out.Unitary = rec.Result.Data.Unitary
		}
		outputs = append(outputs, out)
	}

	if opts.Format == "json" {
		return formatter.SuccessRun(p.LastRunID(), outputs)
	}
	formatter.Table([]string{"CIRCUIT", "STATUS", "OUTCOME", "COUNT"}, countRows(outputs))
	formatter.VerboseLog("run %s on %s", p.LastRunID(), device)
	return nil
}

// countRows flattens outputs into table rows, outcomes sorted per circuit.
// A single-shot run shows its one classical state; circuits without any
// outcome get a single row with the status only.
func countRows(outputs []runOutput) [][]string {
	var rows [][]string
	for _, out := range outputs {
		if out.ClassicalState != nil {
			rows = append(rows, []string{out.Circuit, string(out.Status), sim.Bitstring(*out.ClassicalState, out.clbits), "1"})
			continue
		}
		if len(out.Counts) == 0 {
			outcome := "-"
			if out.Unitary != nil {
				outcome = fmt.Sprintf("unitary %dx%d", len(out.Unitary), len(out.Unitary))
			}
			rows = append(rows, []string{out.Circuit, string(out.Status), outcome, "-"})
			continue
		}
		outcomes := make([]string, 0, len(out.Counts))
		for bits := range out.Counts {
			outcomes = append(outcomes, bits)
		}
		slices.Sort(outcomes)
		for _, bits := range outcomes {
			rows = append(rows, []string{out.Circuit, string(out.Status), bits, strconv.Itoa(out.Counts[bits])})
		}
	}
	return rows
}
