package statuspoller

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jpalmerr/statuspoller/internal/poller"
	"github.com/jpalmerr/statuspoller/internal/server"
	"github.com/jpalmerr/statuspoller/internal/store"
	"github.com/jpalmerr/statuspoller/page"
)

const defaultPollInterval = 2000 * time.Millisecond

// StatusPoller keeps a page's status indicators current.
//
// On [StatusPoller.Init] it injects a server-rendered fragment into the page
// once, then fetches a JSON status snapshot immediately and on every poll
// interval, rewriting the indicator elements each time. Fetch failures are never
// returned to the caller; they show up as "error" in the status element and
// in debug logs.
//
// The typical lifecycle is:
//
//	doc, _ := page.ParseString(hostPage)
//	sp, err := statuspoller.New(doc,
//	    statuspoller.WithFragmentURL("http://localhost:8081/cgi-bin/system"),
//	    statuspoller.WithJSONURL("http://localhost:8081/cgi-bin/system?json=1"),
//	)
//	if err != nil {
//	    slog.Error("failed to create status poller", "error", err)
//	    os.Exit(1)
//	}
//
//	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
//	defer cancel()
//
//	sp.Start(ctx) // blocks until ctx cancelled
type StatusPoller struct {
	doc              *page.Document
	fragmentURL      string
	jsonURL          string
	ids              ElementIDs
	requestTimeout   time.Duration
	port             int
	logger           *slog.Logger
	now              func() time.Time
	outcomeCallbacks []func(Outcome)

	client    *poller.Client
	scheduler *poller.Scheduler
	store     *store.MemoryStore

	initOnce sync.Once
	stopOnce sync.Once
}

// New creates a [StatusPoller] bound to doc.
//
// [WithFragmentURL] and [WithJSONURL] are required. Other options have defaults:
//   - Poll interval: 2 seconds
//   - Element ids: [DefaultElementIDs]
//   - Request timeout: none
//   - Logger: [slog.Default]
func New(doc *page.Document, opts ...Option) (*StatusPoller, error) {
	if doc == nil {
		return nil, errors.New("document cannot be nil")
	}

	cfg := &spConfig{
		ids:          DefaultElementIDs(),
		pollInterval: defaultPollInterval,
	}

	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	if cfg.fragmentURL == "" {
		return nil, errors.New("fragment URL is required")
	}
	if cfg.jsonURL == "" {
		return nil, errors.New("JSON URL is required")
	}

	logger := cfg.logger
	if logger == nil {
		logger = slog.Default()
	}
	now := cfg.now
	if now == nil {
		now = time.Now
	}

	sp := &StatusPoller{
		doc:              doc,
		fragmentURL:      cfg.fragmentURL,
		jsonURL:          cfg.jsonURL,
		ids:              cfg.ids,
		requestTimeout:   cfg.requestTimeout,
		port:             cfg.port,
		logger:           logger,
		now:              now,
		outcomeCallbacks: cfg.outcomeCallbacks,
		client:           poller.NewClient(),
		store:            store.NewMemoryStore(),
	}
	sp.scheduler = poller.NewScheduler(cfg.pollInterval, func(ctx context.Context) {
		sp.FetchJSONAndApply(ctx)
	}, logger)

	return sp, nil
}

// Start initialises the poller and blocks until ctx is cancelled.
//
// If [WithPort] was given, the live page and poll outcome API are served on
// that port for the same lifetime. Returns nil on graceful shutdown, or an
// error if the HTTP server fails to start.
func (sp *StatusPoller) Start(ctx context.Context) error {
	sp.logger.Info("status poller starting",
		"fragment_url", sp.fragmentURL,
		"json_url", sp.jsonURL,
		"interval", sp.scheduler.Interval().String(),
	)

	if ctx.Err() != nil {
		return nil
	}

	if sp.port != 0 {
		httpServer := server.NewServer(sp.store, sp.doc, sp.port, sp.logger)
		if err := httpServer.Start(ctx); err != nil {
			return fmt.Errorf("failed to start HTTP server: %w", err)
		}
		sp.logger.Info("page available", "url", fmt.Sprintf("http://localhost:%d", sp.port))
	}

	sp.Init(ctx)

	<-ctx.Done()
	sp.Stop()
	sp.logger.Info("status poller stopped")
	return nil
}

// Init waits for the document to be ready, loads the fragment once, applies
// the first snapshot, and starts the repeating poll.
//
// Init returns as soon as the repeating poll is scheduled. If the document is
// already ready it proceeds at once; if ctx is cancelled first it returns
// without doing anything. Only the first call has any effect.
func (sp *StatusPoller) Init(ctx context.Context) {
	sp.initOnce.Do(func() {
		select {
		case <-sp.doc.Ready():
		case <-ctx.Done():
			return
		}

		sp.LoadFragmentOnce(ctx)
		sp.FetchJSONAndApply(ctx)
		sp.scheduler.Start(ctx)
	})
}

// Stop halts the repeating poll and releases idle connections.
// Stop is idempotent.
func (sp *StatusPoller) Stop() {
	sp.stopOnce.Do(func() {
		sp.scheduler.Stop()
		sp.client.Close()
	})
}

// LoadFragmentOnce fetches the fragment and replaces the container's content
// with it, falling back to the secondary container when the primary is absent.
//
// Any failure leaves the page untouched and is logged at debug level only.
func (sp *StatusPoller) LoadFragmentOnce(ctx context.Context) {
	resp := sp.client.Fetch(ctx, sp.fragmentURL, sp.requestTimeout)
	if err := resp.Err(); err != nil {
		sp.logger.Debug("initial fragment load failed", "url", sp.fragmentURL, "error", err)
		return
	}

	target := sp.ids.Container
	if !sp.doc.Has(target) {
		target = sp.ids.FallbackContainer
	}

	if _, err := sp.doc.SetInnerHTML(target, string(resp.Body)); err != nil {
		sp.logger.Debug("initial fragment load failed", "url", sp.fragmentURL, "error", err)
	}
}

// FetchJSONAndApply fetches one status snapshot, applies it to the document
// and updates the status indicators.
//
// On success the last-updated element receives the current time and the
// status element reads "ok". On any failure the status element reads "error"
// and last-updated is left alone. The outcome is returned, recorded for the
// page server, and passed to registered callbacks; it is never returned as an error.
// A falsy body (null, false, 0 or "") applies nothing and still counts as ok.
func (sp *StatusPoller) FetchJSONAndApply(ctx context.Context) Outcome {
	out := Outcome{CycleID: uuid.NewString()}

	resp := sp.client.Fetch(ctx, sp.jsonURL, sp.requestTimeout)
	out.Latency = resp.Latency

	snap, err := sp.decode(resp)
	out.CheckedAt = sp.now()

	if err != nil {
		out.State = StateError
		out.Err = err
		sp.setStatus(StateError, errorColor)
		sp.logger.Debug("status poll error",
			"cycle_id", out.CycleID,
			"url", sp.jsonURL,
			"error", err,
		)
	} else {
		sp.ApplyJSON(snap)
		sp.doc.SetText(sp.ids.LastUpdated, out.CheckedAt.UTC().Format(lastUpdatedLayout))
		out.State = StateOK
		sp.setStatus(StateOK, okColor)
		sp.logger.Debug("status poll applied",
			"cycle_id", out.CycleID,
			"latency_ms", out.Latency.Milliseconds(),
		)
	}

	sp.publish(out)
	return out
}

func (sp *StatusPoller) decode(resp poller.Response) (*Snapshot, error) {
	if err := resp.Err(); err != nil {
		return nil, err
	}
	return DecodeSnapshot(resp.Body)
}

// ApplyJSON writes a snapshot into the document. Absent elements are skipped.
// A nil snapshot is a no-op.
//
// CPU and memory labels use one decimal place; the disk label and all gauge
// widths use the unrounded value. The process table is rebuilt only when the
// snapshot carried a process list.
func (sp *StatusPoller) ApplyJSON(snap *Snapshot) {
	if snap == nil {
		return
	}

	ids := sp.ids
	sp.doc.SetText(ids.Timestamp, snap.Timestamp)

	sp.doc.SetText(ids.CPUText, percentText(snap.CPU))
	sp.doc.SetStyle(ids.CPUFill, "width", rawPercent(snap.CPU))

	sp.doc.SetText(ids.MemText, percentText(snap.Mem))
	sp.doc.SetStyle(ids.MemFill, "width", rawPercent(snap.Mem))

	sp.doc.SetText(ids.DiskText, rawPercent(snap.Disk))
	sp.doc.SetStyle(ids.DiskFill, "width", rawPercent(snap.Disk))

	if snap.HasProcesses {
		if _, err := sp.doc.SetInnerHTML(ids.ProcessRows, renderProcessRows(snap.Processes)); err != nil {
			sp.logger.Debug("process table update failed", "error", err)
		}
	}
}

func (sp *StatusPoller) setStatus(state State, color string) {
	if sp.doc.SetText(sp.ids.StatusText, state.String()) {
		sp.doc.SetStyle(sp.ids.StatusText, "color", color)
	}
}

// publish records the outcome for the page server and runs callbacks.
func (sp *StatusPoller) publish(out Outcome) {
	record := store.PollRecord{
		CycleID:   out.CycleID,
		State:     out.State.String(),
		CheckedAt: out.CheckedAt,
		LatencyMs: out.Latency.Milliseconds(),
	}
	record.Container, record.Markup = sp.containerMarkup()
	if out.Err != nil {
		msg := out.Err.Error()
		record.Error = &msg
	}
	sp.store.Update(record)

	for _, cb := range sp.outcomeCallbacks {
		invokeCallbackSafe(cb, out, sp.logger)
	}
}

// containerMarkup returns the id and inner HTML of the container element,
// chosen the same way as the initial fragment target.
func (sp *StatusPoller) containerMarkup() (string, string) {
	for _, id := range []string{sp.ids.Container, sp.ids.FallbackContainer} {
		if markup, ok := sp.doc.InnerHTML(id); ok {
			return id, markup
		}
	}
	return "", ""
}

// invokeCallbackSafe calls an outcome callback with panic recovery.
// Panics are logged but do not propagate.
func invokeCallbackSafe(cb func(Outcome), out Outcome, logger *slog.Logger) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("outcome callback panicked",
				"panic", r,
				"cycle_id", out.CycleID,
			)
		}
	}()
	cb(out)
}
