// Package sysinfo implements the status endpoint a poller reads: a snapshot
// of local CPU, memory and disk usage plus the busiest processes, served as
// an HTML fragment or, with json=1, as JSON.
package sysinfo
