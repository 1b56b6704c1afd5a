package config

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jpalmerr/statuspoller"
	"github.com/jpalmerr/statuspoller/dashboard"
)

func TestBuildElementIDs_Defaults(t *testing.T) {
	got := BuildElementIDs(ElementsConfig{})
	if got != statuspoller.DefaultElementIDs() {
		t.Errorf("BuildElementIDs({}) = %+v, want defaults", got)
	}
}

func TestBuildElementIDs_Overrides(t *testing.T) {
	got := BuildElementIDs(ElementsConfig{
		Container:   "status-box",
		ProcessRows: "top",
		StatusText:  "state",
	})

	want := statuspoller.DefaultElementIDs()
	want.Container = "status-box"
	want.ProcessRows = "top"
	want.StatusText = "state"

	if got != want {
		t.Errorf("BuildElementIDs() = %+v, want %+v", got, want)
	}
}

func TestBuildOptions_CreatesPoller(t *testing.T) {
	cfg, err := Parse([]byte(`
fragment_url: https://example.com/frag
request_timeout: 2s
port: 18080
`))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	doc, err := BuildDocument(cfg)
	if err != nil {
		t.Fatalf("BuildDocument() error = %v", err)
	}

	sp, err := statuspoller.New(doc, BuildOptions(cfg, nil)...)
	if err != nil {
		t.Fatalf("statuspoller.New() error = %v", err)
	}
	sp.Stop()
}

func TestBuildOptions_ReportsInvalidRuntimeValues(t *testing.T) {
	// bypass Parse validation to check the options still guard the poller
	cfg := &Config{
		FragmentURL:    "https://example.com/frag",
		JSONURL:        "https://example.com/json",
		Port:           8080,
		RequestTimeout: Duration(-time.Second),
	}

	doc, err := BuildDocument(cfg)
	if err != nil {
		t.Fatalf("BuildDocument() error = %v", err)
	}

	if _, err := statuspoller.New(doc, BuildOptions(cfg, nil)...); err == nil {
		t.Error("statuspoller.New() expected error for negative timeout, got nil")
	}
}

func TestBuildDocument_Embedded(t *testing.T) {
	doc, err := BuildDocument(&Config{Title: "Rack 7"})
	if err != nil {
		t.Fatalf("BuildDocument() error = %v", err)
	}

	select {
	case <-doc.Ready():
	default:
		t.Fatal("embedded document should be ready")
	}
	if !doc.Has("site-system") {
		t.Error("embedded document missing #site-system")
	}
	if !strings.Contains(doc.String(), "<title>Rack 7</title>") {
		t.Error("embedded document missing configured title")
	}
}

func TestBuildDocument_DefaultTitle(t *testing.T) {
	doc, err := BuildDocument(&Config{})
	if err != nil {
		t.Fatalf("BuildDocument() error = %v", err)
	}
	if !strings.Contains(doc.String(), dashboard.DefaultTitle) {
		t.Error("embedded document missing default title")
	}
}

func TestBuildDocument_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.html")
	html := `<html><body><section id="system-fragment-root"></section></body></html>`
	if err := os.WriteFile(path, []byte(html), 0o600); err != nil {
		t.Fatal(err)
	}

	doc, err := BuildDocument(&Config{Page: path})
	if err != nil {
		t.Fatalf("BuildDocument() error = %v", err)
	}
	if !doc.Has("system-fragment-root") {
		t.Error("document from file missing #system-fragment-root")
	}
	if doc.Has("site-system") {
		t.Error("document from file should not include the embedded page")
	}
}

func TestBuildDocument_MissingFile(t *testing.T) {
	_, err := BuildDocument(&Config{Page: filepath.Join(t.TempDir(), "missing.html")})
	if err == nil || !strings.Contains(err.Error(), "failed to open page") {
		t.Errorf("BuildDocument() error = %v, want open error", err)
	}
}

func TestBuildDocument_UsableByPoller(t *testing.T) {
	doc, err := BuildDocument(&Config{})
	if err != nil {
		t.Fatalf("BuildDocument() error = %v", err)
	}

	sp, err := statuspoller.New(doc,
		statuspoller.WithFragmentURL("http://127.0.0.1:1/frag"),
		statuspoller.WithJSONURL("http://127.0.0.1:1/json"),
	)
	if err != nil {
		t.Fatalf("statuspoller.New() error = %v", err)
	}
	defer sp.Stop()

	sp.LoadFragmentOnce(context.Background())
	if got, _ := doc.Text("site-system"); !strings.Contains(got, "Loading") {
		t.Errorf("container = %q, want placeholder kept on fetch failure", got)
	}
}
