package sysinfo

import (
	"bytes"
	"encoding/json"
	"html/template"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// DefaultPath is where the status endpoint is mounted unless configured.
const DefaultPath = "/cgi-bin/system"

var fragmentTmpl = template.Must(template.New("fragment").Parse(fragmentHTML))

const fragmentHTML = `<div class="sys">
  <div class="sys-head"><span class="sys-title">System</span> <span id="sys-ts" class="sys-ts">{{.Timestamp}}</span></div>
  {{range .Gauges}}<div class="sys-row">
    <span class="sys-label">{{.Label}}</span>
    <div class="bar"><div id="{{.FillID}}" class="fill" style="{{.Width}}"></div></div>
    <span id="{{.TextID}}" class="sys-pct">{{.Text}}</span>
  </div>
  {{end}}<table class="sys-procs">
    <thead><tr><th>PID</th><th>User</th><th style="text-align:right">%CPU</th><th style="text-align:right">%MEM</th><th>Command</th></tr></thead>
    <tbody id="proc-rows">{{range .Processes}}<tr><td>{{.PID}}</td><td>{{.User}}</td><td style="text-align:right">{{printf "%.1f" .PCPU}}</td><td style="text-align:right">{{printf "%.1f" .PMem}}</td><td>{{.Cmd}}</td></tr>{{end}}</tbody>
  </table>
  <div class="sys-foot">Last updated <span id="sys-last">{{.Timestamp}}</span> &middot; <span id="sys-status-text">ok</span></div>
</div>
`

type gaugeView struct {
	Label  string
	TextID string
	FillID string
	Text   string
	Width  template.CSS
}

type fragmentView struct {
	Timestamp string
	Gauges    []gaugeView
	Processes []Process
}

func newGauge(label, textID, fillID, text string, pct float64) gaugeView {
	return gaugeView{
		Label:  label,
		TextID: textID,
		FillID: fillID,
		Text:   text,
		// pct is a number so the style cannot carry markup
		Width: template.CSS("width: " + strconv.FormatFloat(pct, 'f', -1, 64) + "%;"),
	}
}

func viewOf(rep Report) fragmentView {
	return fragmentView{
		Timestamp: rep.Timestamp,
		Gauges: []gaugeView{
			newGauge("CPU", "cpu-pct", "cpu-fill", strconv.FormatFloat(rep.CPU, 'f', 1, 64)+"%", rep.CPU),
			newGauge("Memory", "mem-pct", "mem-fill", strconv.FormatFloat(rep.Mem, 'f', 1, 64)+"%", rep.Mem),
			newGauge("Disk", "disk-pct", "disk-fill", strconv.FormatFloat(rep.Disk, 'f', -1, 64)+"%", rep.Disk),
		},
		Processes: rep.Processes,
	}
}

// Handler serves host status as an HTML fragment, or as JSON when the
// request carries json=1.
type Handler struct {
	src    Source
	logger *slog.Logger
}

// NewHandler creates a handler reading from src.
func NewHandler(src Source, logger *slog.Logger) *Handler {
	return &Handler{src: src, logger: logger}
}

// NewRouter mounts a [Handler] for src at path.
func NewRouter(path string, src Source, logger *slog.Logger) http.Handler {
	if path == "" {
		path = DefaultPath
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Get(path, NewHandler(src, logger).ServeHTTP)
	return r
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rep, err := h.src.Collect(r.Context())
	if err != nil {
		h.logger.Error("failed to collect host status",
			"error", err,
			"request_id", middleware.GetReqID(r.Context()),
		)
		http.Error(w, "failed to collect host status", http.StatusInternalServerError)
		return
	}
	if rep.Processes == nil {
		rep.Processes = []Process{}
	}

	w.Header().Set("Cache-Control", "no-store")

	if r.URL.Query().Get("json") == "1" {
		h.writeJSON(w, rep)
		return
	}
	h.writeFragment(w, rep)
}

func (h *Handler) writeJSON(w http.ResponseWriter, rep Report) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(rep); err != nil {
		h.logger.Error("failed to encode status JSON", "error", err)
	}
}

func (h *Handler) writeFragment(w http.ResponseWriter, rep Report) {
	var buf bytes.Buffer
	if err := fragmentTmpl.Execute(&buf, viewOf(rep)); err != nil {
		h.logger.Error("failed to render status fragment", "error", err)
		http.Error(w, "failed to render status fragment", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err := buf.WriteTo(w); err != nil {
		h.logger.Debug("failed to write status fragment", "error", err)
	}
}
