package main

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/jpalmerr/statuspoller/internal/sysinfo"
)

// mockSource reports figures that drift a little on every read, so the demo
// page visibly changes without touching the real host.
type mockSource struct {
	mu    sync.Mutex
	cpu   float64
	mem   float64
	disk  float64
	procs []sysinfo.Process
}

func newMockSource() *mockSource {
	return &mockSource{
		cpu:  18,
		mem:  42,
		disk: 61,
		procs: []sysinfo.Process{
			{PID: 1, User: "root", Cmd: "/sbin/init"},
			{PID: 412, User: "postgres", Cmd: "postgres: checkpointer"},
			{PID: 977, User: "www-data", Cmd: "nginx: worker process"},
			{PID: 1280, User: "app", Cmd: "/srv/app/bin/api --listen :9000"},
		},
	}
}

func drift(v, step, lo, hi float64) float64 {
	v += (rand.Float64()*2 - 1) * step
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func round1(v float64) float64 {
	return float64(int(v*10+0.5)) / 10
}

func (m *mockSource) Collect(context.Context) (sysinfo.Report, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.cpu = drift(m.cpu, 6, 1, 99)
	m.mem = drift(m.mem, 1.5, 10, 95)
	m.disk = drift(m.disk, 0.3, 0, 100)

	procs := make([]sysinfo.Process, len(m.procs))
	for i, p := range m.procs {
		p.PCPU = round1(rand.Float64() * m.cpu / 2)
		p.PMem = round1(rand.Float64() * 8)
		procs[i] = p
	}

	return sysinfo.Report{
		Timestamp: time.Now().Format("2006-01-02 15:04:05"),
		CPU:       round1(m.cpu),
		Mem:       round1(m.mem),
		Disk:      float64(int(m.disk + 0.5)),
		Processes: procs,
	}, nil
}
