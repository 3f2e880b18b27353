package profiling

import (
	"fmt"
	"os"
	"runtime/pprof"

	"github.com/spf13/cobra"
)

// CobraProfiler adds --timing and --cpu-profile to a command tree.
type CobraProfiler struct {
	cpuProfileFile *os.File
	cpuProfilePath string
	timing         bool
}

// NewCobraProfiler creates a profiler with both features off.
func NewCobraProfiler() *CobraProfiler {
	return &CobraProfiler{}
}

// AddFlags registers the persistent flags on cmd.
func (p *CobraProfiler) AddFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().BoolVar(&p.timing, "timing", false, "Print how long each phase took")
	cmd.PersistentFlags().StringVar(&p.cpuProfilePath, "cpu-profile", "", "Write a CPU profile to file")
}

// Wrap chains the profiler's setup after cmd's existing PersistentPreRunE
// and installs the summary as PersistentPostRun.
func (p *CobraProfiler) Wrap(cmd *cobra.Command) {
	pre := cmd.PersistentPreRunE
	cmd.PersistentPreRunE = func(c *cobra.Command, args []string) error {
		if pre != nil {
			if err := pre(c, args); err != nil {
				return err
			}
		}
		return p.PreRun(c, args)
	}
	cmd.PersistentPostRun = p.PostRun
}

// PreRun starts recording.
func (p *CobraProfiler) PreRun(cmd *cobra.Command, args []string) error {
	if p.timing {
		Enable()
	}
	if p.cpuProfilePath != "" {
		f, err := os.Create(p.cpuProfilePath)
		if err != nil {
			return fmt.Errorf("could not create CPU profile: %w", err)
		}
		if err := pprof.StartCPUProfile(f); err != nil {
			f.Close()
			return fmt.Errorf("could not start CPU profile: %w", err)
		}
		p.cpuProfileFile = f
	}
	return nil
}

// PostRun stops the CPU profile and prints the timing summary to stderr.
// Cobra skips it when the command fails.
func (p *CobraProfiler) PostRun(cmd *cobra.Command, args []string) {
	p.Finish(cmd)
}

// Finish flushes everything PreRun started. It is safe to call twice.
func (p *CobraProfiler) Finish(cmd *cobra.Command) {
	if p.cpuProfileFile != nil {
		pprof.StopCPUProfile()
		p.cpuProfileFile.Close()
		p.cpuProfileFile = nil
		fmt.Fprintf(cmd.ErrOrStderr(), "CPU profile written to %s\n", p.cpuProfilePath)
	}
	if p.timing {
		Summarize(cmd.ErrOrStderr())
		p.timing = false
	}
}
