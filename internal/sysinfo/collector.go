package sysinfo

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strconv"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/process"
)

const (
	defaultSampleWindow = 200 * time.Millisecond
	maxCmdLen           = 200
	timestampLayout     = "2006-01-02 15:04:05"
)

// Report is one host status snapshot in the shape the poller consumes.
type Report struct {
	Timestamp string    `json:"timestamp"`
	CPU       float64   `json:"cpu"`
	Mem       float64   `json:"mem"`
	Disk      float64   `json:"disk"`
	Processes []Process `json:"processes"`
}

// Process is one row of the top-processes table.
type Process struct {
	PID  int32   `json:"pid"`
	User string  `json:"user"`
	PCPU float64 `json:"pcpu"`
	PMem float64 `json:"pmem"`
	Cmd  string  `json:"cmd"`
}

// Source produces reports. [Collector] reads the local host; tests and
// demos supply their own.
type Source interface {
	Collect(ctx context.Context) (Report, error)
}

// Collector reads CPU, memory, disk and process figures from the local host.
type Collector struct {
	diskPath     string
	maxProcesses int
	sampleWindow time.Duration
	now          func() time.Time
}

// CollectorOption configures a [Collector].
type CollectorOption func(*Collector)

// WithSampleWindow sets how long CPU usage is sampled per report.
func WithSampleWindow(d time.Duration) CollectorOption {
	return func(c *Collector) {
		if d > 0 {
			c.sampleWindow = d
		}
	}
}

// WithClock overrides the time source used for the report timestamp.
func WithClock(now func() time.Time) CollectorOption {
	return func(c *Collector) {
		if now != nil {
			c.now = now
		}
	}
}

// NewCollector creates a collector reporting usage of the filesystem at
// diskPath and at most maxProcesses processes, busiest first.
func NewCollector(diskPath string, maxProcesses int, opts ...CollectorOption) *Collector {
	c := &Collector{
		diskPath:     diskPath,
		maxProcesses: maxProcesses,
		sampleWindow: defaultSampleWindow,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Collect samples the host. CPU, memory or disk failures fail the whole
// report; processes that vanish or deny access mid-scan are skipped.
func (c *Collector) Collect(ctx context.Context) (Report, error) {
	percent, err := cpu.PercentWithContext(ctx, c.sampleWindow, false)
	if err != nil {
		return Report{}, fmt.Errorf("cpu: %w", err)
	}
	var cpuPct float64
	if len(percent) > 0 {
		cpuPct = percent[0]
	}

	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return Report{}, fmt.Errorf("memory: %w", err)
	}

	usage, err := disk.UsageWithContext(ctx, c.diskPath)
	if err != nil {
		return Report{}, fmt.Errorf("disk %s: %w", c.diskPath, err)
	}

	procs, err := c.topProcesses(ctx)
	if err != nil {
		return Report{}, fmt.Errorf("processes: %w", err)
	}

	return Report{
		Timestamp: c.now().Format(timestampLayout),
		CPU:       round1(cpuPct),
		Mem:       round1(vm.UsedPercent),
		// whole percent, as df reports it
		Disk:      math.Round(usage.UsedPercent),
		Processes: procs,
	}, nil
}

func (c *Collector) topProcesses(ctx context.Context) ([]Process, error) {
	if c.maxProcesses <= 0 {
		return []Process{}, nil
	}

	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return nil, err
	}

	list := make([]Process, 0, len(procs))
	for _, p := range procs {
		name, err := p.NameWithContext(ctx)
		if err != nil {
			continue
		}

		pcpu, err := p.CPUPercentWithContext(ctx)
		if err != nil {
			pcpu = 0
		}

		pmem, err := p.MemoryPercentWithContext(ctx)
		if err != nil {
			pmem = 0
		}

		cmdline, _ := p.CmdlineWithContext(ctx)
		if cmdline == "" {
			cmdline = name
		}
		if len(cmdline) > maxCmdLen {
			cmdline = cmdline[:maxCmdLen] + "..."
		}

		list = append(list, Process{
			PID:  p.Pid,
			User: processUser(ctx, p),
			PCPU: round1(pcpu),
			PMem: round1(float64(pmem)),
			Cmd:  cmdline,
		})
	}

	sort.SliceStable(list, func(i, j int) bool {
		if list[i].PCPU != list[j].PCPU {
			return list[i].PCPU > list[j].PCPU
		}
		return list[i].PID < list[j].PID
	})

	if len(list) > c.maxProcesses {
		list = list[:c.maxProcesses]
	}
	return list, nil
}

// processUser returns the owning user name, or the numeric uid when the
// name cannot be resolved (common in containers).
func processUser(ctx context.Context, p *process.Process) string {
	if user, err := p.UsernameWithContext(ctx); err == nil && user != "" {
		return user
	}
	if uids, err := p.UidsWithContext(ctx); err == nil && len(uids) > 0 {
		return strconv.Itoa(int(uids[0]))
	}
	return ""
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
