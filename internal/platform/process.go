package platform

import (
	"fmt"
	"time"

	"github.com/shirou/gopsutil/v3/process"
)

// ProcessInfo is what `status` reports about the running instance.
type ProcessInfo struct {
	PID        int
	Name       string
	StartedAt  time.Time
	RSSBytes   uint64
	CPUPercent float64
	Threads    int32
}

// Uptime returns how long the process has been running.
func (info ProcessInfo) Uptime(now time.Time) time.Duration {
	if info.StartedAt.IsZero() {
		return 0
	}
	return now.Sub(info.StartedAt).Round(time.Second)
}

// DescribeProcess inspects pid. Fields the OS refuses to report stay zero.
func DescribeProcess(pid int) (ProcessInfo, error) {
	proc, err := process.NewProcess(int32(pid))
	if err != nil {
		return ProcessInfo{}, fmt.Errorf("find process %d: %w", pid, err)
	}

	info := ProcessInfo{PID: pid}
	if name, err := proc.Name(); err == nil {
		info.Name = name
	}
	if created, err := proc.CreateTime(); err == nil {
		info.StartedAt = time.UnixMilli(created)
	}
	if memory, err := proc.MemoryInfo(); err == nil && memory != nil {
		info.RSSBytes = memory.RSS
	}
	if cpu, err := proc.CPUPercent(); err == nil {
		info.CPUPercent = cpu
	}
	if threads, err := proc.NumThreads(); err == nil {
		info.Threads = threads
	}
	return info, nil
}
