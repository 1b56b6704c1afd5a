package store

import "time"

// PollRecord is the storage representation of one poll cycle's outcome.
//
// PollRecord is optimised for JSON serialization (used by the REST API and
// SSE). It is decoupled from the statuspoller package's types so the two can
// evolve independently.
type PollRecord struct {
	// CycleID identifies the poll cycle in logs.
	CycleID string `json:"cycle_id"`

	// State is the cycle outcome: "ok" or "error".
	State string `json:"state"`

	// CheckedAt is when the cycle completed.
	CheckedAt time.Time `json:"checked_at"`

	// LatencyMs is the JSON request latency in milliseconds.
	LatencyMs int64 `json:"latency_ms"`

	// Error contains the failure message for an "error" cycle.
	Error *string `json:"error"`

	// Markup is the rendered inner HTML of the status container after the cycle.
	Markup string `json:"markup"`

	// Container is the id of the element Markup was taken from: the primary
	// container, or the fallback when the page has no primary. Empty when
	// the page has neither.
	Container string `json:"container"`
}

// Store defines the interface for storing and subscribing to poll records.
//
// Only the latest record is retained. Store implementations must be safe for
// concurrent access.
type Store interface {
	// Update replaces the latest record and notifies all subscribers.
	Update(record PollRecord)

	// Latest returns the most recent record, or false if none has been stored.
	Latest() (PollRecord, bool)

	// Subscribe returns a channel that receives records.
	// The returned channel has a buffer; slow consumers may miss updates.
	// Caller must call Unsubscribe when done to prevent resource leaks.
	Subscribe() <-chan PollRecord

	// Unsubscribe removes a subscription and closes the channel.
	// Safe to call with a channel that was already unsubscribed.
	Unsubscribe(ch <-chan PollRecord)
}
