// Package poller provides the HTTP fetching and timing primitives behind
// the status poller.
//
// This package is internal and is driven by the root statuspoller package.
//
// The main components are:
//
//   - [Client]: uncached GET client with a body size limit
//   - [Scheduler]: fixed-interval task runner with serialised runs
//   - [ErrTransport], [ErrHTTPStatus], [ErrParse]: the fetch error taxonomy
//
// Users of the statuspoller library should not need to interact with this
// package directly.
package poller
