package monitoring

import (
	"os"

	"github.com/rs/zerolog/log"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/process"
)

// StatsReporter logs process and host resource usage so long-running
// deployments can be eyeballed without extra tooling.
type StatsReporter struct {
	proc *process.Process
}

// NewStatsReporter creates a StatsReporter for the current process.
func NewStatsReporter() *StatsReporter {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		log.Warn().Err(err).Msg("StatsReporter: Could not attach to own process")
		return &StatsReporter{}
	}
	return &StatsReporter{proc: proc}
}

// Report logs a single snapshot of current resource usage.
func (r *StatsReporter) Report() {
	evt := log.Info()

	if r.proc != nil {
		if memInfo, err := r.proc.MemoryInfo(); err == nil {
			evt = evt.Uint64("rss_bytes", memInfo.RSS)
		}
		if cpu, err := r.proc.CPUPercent(); err == nil {
			evt = evt.Float64("cpu_percent", cpu)
		}
	}

	if vm, err := mem.VirtualMemory(); err == nil {
		evt = evt.Float64("host_mem_used_percent", vm.UsedPercent)
	}

	evt.Msg("Runtime stats")
}
