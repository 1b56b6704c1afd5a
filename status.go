package statuspoller

import (
	"time"

	"github.com/jpalmerr/statuspoller/internal/poller"
)

// State is the outcome of a single JSON poll cycle.
//
// There is no transition logic between states: each cycle is evaluated
// independently and only the last outcome is shown on the page.
type State string

const (
	// StateOK indicates the status payload was fetched, decoded and applied.
	StateOK State = "ok"

	// StateError indicates the fetch failed, returned non-2xx, or did not decode.
	StateError State = "error"
)

// String returns the string representation of the state.
func (s State) String() string {
	return string(s)
}

// Status text colours written to the status element's inline style.
const (
	okColor    = "#7bd389"
	errorColor = "#ff6b6b"
)

// lastUpdatedLayout is ISO 8601 in UTC with millisecond precision.
const lastUpdatedLayout = "2006-01-02T15:04:05.000Z"

// Fetch error taxonomy. All three collapse into [StateError] on the page;
// use errors.Is on [Outcome.Err] to tell them apart.
var (
	// ErrTransport marks a request that failed before a response arrived.
	ErrTransport = poller.ErrTransport

	// ErrHTTPStatus marks a non-2xx response.
	ErrHTTPStatus = poller.ErrHTTPStatus

	// ErrParse marks a response body that is not valid JSON.
	ErrParse = poller.ErrParse
)

// Outcome holds the result of one JSON poll cycle.
type Outcome struct {
	// CycleID uniquely identifies the cycle in logs.
	CycleID string

	// State is ok or error.
	State State

	// CheckedAt is when the cycle completed.
	CheckedAt time.Time

	// Latency is the time taken by the JSON request.
	Latency time.Duration

	// Err is the underlying cause of an error outcome, nil for ok.
	Err error
}
