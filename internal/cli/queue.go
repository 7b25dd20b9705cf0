package cli

import (
	"github.com/spf13/cobra"

	"github.com/roach88/qprog/internal/ir"
)

// QueueOptions holds flags for the queue command.
type QueueOptions struct {
	ProgramOptions
	ShowQASM bool
}

// queuedJob is one pending job in JSON output.
type queuedJob struct {
	Device         string   `json:"device"`
	Circuit        string   `json:"circuit"`
	Class          string   `json:"class"`
	Shots          int      `json:"shots"`
	MaxCredits     int      `json:"max_credits"`
	Seed           *int64   `json:"seed,omitempty"`
	BasisGates     []string `json:"basis_gates"`
	CompiledSource string   `json:"qasm_compiled,omitempty"`
}

// NewQueueCommand creates the queue command.
func NewQueueCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &QueueOptions{ProgramOptions: ProgramOptions{RootOptions: rootOpts}}

	cmd := &cobra.Command{
		Use:   "queue <spec>",
		Short: "Compile circuits and print the execution queue",
		Long: `Compile circuits from a program spec without running them and print
what would be dispatched, device by device.

Example:
  qprog queue ./bell.yaml --device ibmqx2 --shots 512
  qprog queue ./bell.yaml --qasm`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQueue(opts, args[0], cmd)
		},
	}

	opts.addFlags(cmd)
	cmd.Flags().BoolVar(&opts.ShowQASM, "qasm", false, "include compiled source")

	return cmd
}

func runQueue(opts *QueueOptions, specPath string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	spec, err := opts.loadSpec(specPath)
	if err != nil {
		return reportError(formatter, ExitCommandError, "failed to load spec", err)
	}
	p, err := opts.newProgram(spec)
	if err != nil {
		return reportError(formatter, ExitCommandError, "failed to initialise program", err)
	}

	names, device, compileOpts := opts.compileArgs(cmd, spec)
	if err := p.Compile(names, device, compileOpts...); err != nil {
		return reportError(formatter, ExitFailure, "compilation failed", err)
	}

	if opts.Format != "json" {
		if err := p.ExecutionList(formatter.Writer, opts.ShowQASM); err != nil {
			return WrapExitError(ExitCommandError, "failed to write queue", err)
		}
		return nil
	}

	var jobs []queuedJob
	for _, d := range p.PendingDevices() {
		for _, job := range p.PendingJobs(d) {
			jobs = append(jobs, toQueuedJob(d, job, opts.ShowQASM))
		}
	}
	return formatter.Success(jobs)
}

func toQueuedJob(device string, job ir.CompiledJob, withSource bool) queuedJob {
	q := queuedJob{
		Device:     device,
		Circuit:    job.Circuit,
		Class:      job.Class.String(),
		Shots:      job.Shots,
		MaxCredits: job.MaxCredits,
		Seed:       job.Seed,
		BasisGates: job.BasisGates,
	}
	if withSource {
		q.CompiledSource = job.CompiledSource
	}
	return q
}
