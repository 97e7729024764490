// Package sysmon samples host and process resource usage for the dashboard.
package sysmon

import (
	"os"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/mem"
	"github.com/shirou/gopsutil/v4/process"
)

// Stats holds a single snapshot of resource usage.
type Stats struct {
	CPUPercent float64 // host-wide, 0.0 .. 100.0
	MemPercent float64 // host-wide, 0.0 .. 100.0
	// ProcessRSS is the resident set size of this process in bytes.
	ProcessRSS uint64
}

// Sampler reads Stats. It keeps a handle on the current process so that
// repeated samples do not look it up again.
type Sampler struct {
	proc *process.Process
}

// NewSampler creates a Sampler. Process figures stay zero when the
// platform does not expose them.
func NewSampler() *Sampler {
	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return &Sampler{}
	}
	return &Sampler{proc: p}
}

// Sample collects one snapshot. CPU uses interval=0, the delta since the
// previous call. Fields that cannot be read are left at zero.
func (s *Sampler) Sample() Stats {
	var st Stats
	if pcts, err := cpu.Percent(0, false); err == nil && len(pcts) > 0 {
		st.CPUPercent = pcts[0]
	}
	if vmem, err := mem.VirtualMemory(); err == nil && vmem != nil {
		st.MemPercent = vmem.UsedPercent
	}
	if s != nil && s.proc != nil {
		if info, err := s.proc.MemoryInfo(); err == nil && info != nil {
			st.ProcessRSS = info.RSS
		}
	}
	return st
}
