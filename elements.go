package statuspoller

// ElementIDs is the table of element ids the poller reads and writes.
// It is the poller's entire interface to the surrounding page.
//
// Any element may be missing from the page; missing elements are skipped.
// An empty id disables that target.
type ElementIDs struct {
	// Container receives the fragment markup.
	Container string

	// FallbackContainer receives the fragment when Container is absent.
	FallbackContainer string

	Timestamp string
	CPUText   string
	CPUFill   string
	MemText   string
	MemFill   string
	DiskText  string
	DiskFill  string

	// ProcessRows is the table body rebuilt from the process list.
	ProcessRows string

	// LastUpdated receives the completion time of the last ok cycle.
	LastUpdated string

	// StatusText shows "ok" or "error".
	StatusText string
}

// DefaultElementIDs returns the ids used by the stock status fragment.
func DefaultElementIDs() ElementIDs {
	return ElementIDs{
		Container:         "site-system",
		FallbackContainer: "system-fragment-root",
		Timestamp:         "sys-ts",
		CPUText:           "cpu-pct",
		CPUFill:           "cpu-fill",
		MemText:           "mem-pct",
		MemFill:           "mem-fill",
		DiskText:          "disk-pct",
		DiskFill:          "disk-fill",
		ProcessRows:       "proc-rows",
		LastUpdated:       "sys-last",
		StatusText:        "sys-status-text",
	}
}
