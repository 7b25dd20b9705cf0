package engine

import (
	"fmt"
	"io"
	"strings"
)

const dumpRule = "// *******************************************"

// ExecutionList writes the pending queue, device by device. With verbose
// set, each job's compiled source is included.
func (p *Program) ExecutionList(w io.Writer, verbose bool) error {
	var sb strings.Builder
	for _, device := range p.queue.Devices() {
		fmt.Fprintf(&sb, "%s:\n", device)
		for _, job := range p.queue.Jobs(device) {
			fmt.Fprintf(&sb, "  %s:\n", job.Circuit)
			fmt.Fprintf(&sb, "    shots = %d\n", job.Shots)
			fmt.Fprintf(&sb, "    max_credits = %d\n", job.MaxCredits)
			if verbose {
				sb.WriteString("    qasm_compiled =\n")
				sb.WriteString(dumpRule + "\n")
				sb.WriteString(job.CompiledSource)
				sb.WriteString(dumpRule + "\n")
			}
		}
	}
	_, err := io.WriteString(w, sb.String())
	return err
}
