package sysinfo

import (
	"context"
	"runtime"
	"testing"
	"time"
)

func TestCollector_Collect(t *testing.T) {
	if runtime.GOOS != "linux" && runtime.GOOS != "darwin" {
		t.Skip("host collection tested on linux and darwin only")
	}

	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.Local)
	c := NewCollector("/", 3,
		WithSampleWindow(10*time.Millisecond),
		WithClock(func() time.Time { return now }),
	)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	rep, err := c.Collect(ctx)
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}

	if rep.Timestamp != "2024-05-01 12:00:00" {
		t.Errorf("Timestamp = %q, want clock formatted", rep.Timestamp)
	}
	for name, v := range map[string]float64{"cpu": rep.CPU, "mem": rep.Mem, "disk": rep.Disk} {
		if v < 0 || v > 100 {
			t.Errorf("%s = %v, want within 0-100", name, v)
		}
	}
	if rep.Disk != float64(int(rep.Disk)) {
		t.Errorf("Disk = %v, want a whole percent", rep.Disk)
	}
	if len(rep.Processes) == 0 || len(rep.Processes) > 3 {
		t.Fatalf("len(Processes) = %d, want 1-3", len(rep.Processes))
	}
	for i := 1; i < len(rep.Processes); i++ {
		if rep.Processes[i-1].PCPU < rep.Processes[i].PCPU {
			t.Errorf("processes not sorted by cpu: %+v", rep.Processes)
		}
	}
}

func TestCollector_NoProcesses(t *testing.T) {
	c := NewCollector("/", 0)

	procs, err := c.topProcesses(context.Background())
	if err != nil {
		t.Fatalf("topProcesses() error = %v", err)
	}
	if procs == nil || len(procs) != 0 {
		t.Errorf("topProcesses() = %v, want empty non-nil slice", procs)
	}
}

func TestCollector_BadDiskPath(t *testing.T) {
	c := NewCollector("/definitely/not/a/mount", 1, WithSampleWindow(time.Millisecond))

	if _, err := c.Collect(context.Background()); err == nil {
		t.Error("Collect() expected error for missing disk path, got nil")
	}
}

func TestRound1(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{12.34, 12.3},
		{12.36, 12.4},
		{0, 0},
		{99.99, 100},
	}
	for _, tt := range tests {
		if got := round1(tt.in); got != tt.want {
			t.Errorf("round1(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
