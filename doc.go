// Package statuspoller keeps the system-status indicators of an HTML page
// current by polling a JSON endpoint.
//
// A [StatusPoller] is bound to a [page.Document]. On start it fetches a
// server-rendered fragment once and injects it into a container element, then
// fetches a JSON status snapshot immediately and every two seconds. Each
// snapshot rewrites the CPU, memory and disk labels and gauge widths, the
// timestamp, and the process table, and sets a status element to "ok" or
// "error".
//
// # Quick Start
//
//	doc, _ := page.ParseString(`<html><body><div id="site-system"></div></body></html>`)
//	sp, _ := statuspoller.New(doc,
//	    statuspoller.WithFragmentURL("http://localhost:8081/cgi-bin/system"),
//	    statuspoller.WithJSONURL("http://localhost:8081/cgi-bin/system?json=1"),
//	    statuspoller.WithPort(8080),
//	)
//
//	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
//	defer stop()
//
//	sp.Start(ctx) // blocks until context is cancelled
//
// # Snapshot Format
//
// The JSON endpoint returns an object of the form:
//
//	{
//	  "timestamp": "2024-05-01 12:00:00",
//	  "cpu": 12.5, "mem": 40.1, "disk": 63,
//	  "processes": [{"pid": 1, "user": "root", "pcpu": 0.1, "pmem": 0.2, "cmd": "init"}]
//	}
//
// Numeric fields are coerced defensively: absent or non-numeric values
// render as 0. Strings from the network are HTML-escaped before they are
// placed in markup.
//
// # Failure Handling
//
// Transport errors, non-2xx responses and malformed bodies all produce the
// same visible result: the status element reads "error" and nothing else
// changes. No error escapes to the caller and there is no retry beyond the
// next scheduled poll. A failed fragment load changes nothing at all.
//
// # Architecture
//
//   - page: the id-addressed HTML document the poller mutates
//   - internal/poller: uncached HTTP client and fixed-interval scheduler
//   - internal/store: latest poll outcome with pub/sub
//   - internal/server: live page, status API and Server-Sent Events
//   - internal/sysinfo: host metrics source serving the fragment and JSON endpoints
//   - dashboard: embedded default host page
package statuspoller
