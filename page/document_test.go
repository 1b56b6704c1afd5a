package page

import (
	"errors"
	"strings"
	"sync"
	"testing"
	"time"
)

const testPage = `<!DOCTYPE html>
<html><head><title>t</title></head>
<body>
<div id="site-system">initial</div>
<div id="fill" style="height: 4px"></div>
<table><tbody id="proc-rows"><tr><td>old</td></tr></tbody></table>
</body></html>`

func mustParse(t *testing.T, s string) *Document {
	t.Helper()
	doc, err := ParseString(s)
	if err != nil {
		t.Fatalf("ParseString() error = %v", err)
	}
	return doc
}

func TestParse_IsReady(t *testing.T) {
	doc := mustParse(t, testPage)

	if !doc.IsReady() {
		t.Error("IsReady() = false, want true after Parse")
	}
	select {
	case <-doc.Ready():
	default:
		t.Error("Ready() channel should be closed after Parse")
	}
}

func TestNew_NotReadyUntilLoad(t *testing.T) {
	doc := New()

	if doc.IsReady() {
		t.Fatal("IsReady() = true before Load")
	}
	if doc.Has("site-system") {
		t.Error("Has() = true on an unloaded document")
	}
	if err := doc.Render(&strings.Builder{}); !errors.Is(err, ErrNotLoaded) {
		t.Errorf("Render() error = %v, want ErrNotLoaded", err)
	}

	go func() {
		time.Sleep(10 * time.Millisecond)
		_ = doc.Load(strings.NewReader(testPage))
	}()

	select {
	case <-doc.Ready():
	case <-time.After(time.Second):
		t.Fatal("Ready() channel not closed after Load")
	}
	if !doc.Has("site-system") {
		t.Error("Has(site-system) = false after Load")
	}
}

func TestLoad_Twice(t *testing.T) {
	doc := New()
	if err := doc.Load(strings.NewReader(testPage)); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	// second load replaces content and must not panic on the ready channel
	if err := doc.Load(strings.NewReader(`<div id="other"></div>`)); err != nil {
		t.Fatalf("second Load() error = %v", err)
	}
	if doc.Has("site-system") {
		t.Error("old content should be replaced by second Load")
	}
	if !doc.Has("other") {
		t.Error("new content missing after second Load")
	}
}

func TestSetText(t *testing.T) {
	doc := mustParse(t, testPage)

	if !doc.SetText("site-system", "<b>hi</b>") {
		t.Fatal("SetText() = false, want true")
	}

	text, ok := doc.Text("site-system")
	if !ok || text != "<b>hi</b>" {
		t.Errorf("Text() = %q, %v; want %q, true", text, ok, "<b>hi</b>")
	}

	inner, _ := doc.InnerHTML("site-system")
	if inner != "&lt;b&gt;hi&lt;/b&gt;" {
		t.Errorf("InnerHTML() = %q, want escaped text", inner)
	}
}

func TestSetText_MissingElement(t *testing.T) {
	doc := mustParse(t, testPage)
	before := doc.String()

	if doc.SetText("nope", "x") {
		t.Error("SetText() on missing element = true, want false")
	}
	if doc.SetText("", "x") {
		t.Error("SetText() with empty id = true, want false")
	}
	if doc.String() != before {
		t.Error("document changed after SetText on missing element")
	}
}

func TestSetInnerHTML_TableBody(t *testing.T) {
	doc := mustParse(t, testPage)

	ok, err := doc.SetInnerHTML("proc-rows", `<tr><td>1</td></tr><tr><td>2</td></tr>`)
	if err != nil || !ok {
		t.Fatalf("SetInnerHTML() = %v, %v; want true, nil", ok, err)
	}

	inner, _ := doc.InnerHTML("proc-rows")
	want := `<tr><td>1</td></tr><tr><td>2</td></tr>`
	if inner != want {
		t.Errorf("InnerHTML() = %q, want %q", inner, want)
	}
}

func TestSetInnerHTML_ExposesNewIDs(t *testing.T) {
	doc := mustParse(t, testPage)

	if _, err := doc.SetInnerHTML("site-system", `<span id="cpu-pct">-</span>`); err != nil {
		t.Fatalf("SetInnerHTML() error = %v", err)
	}
	if !doc.SetText("cpu-pct", "12.0%") {
		t.Error("element injected via SetInnerHTML should be addressable")
	}
}

func TestSetInnerHTML_MissingElement(t *testing.T) {
	doc := mustParse(t, testPage)

	ok, err := doc.SetInnerHTML("missing", "<p>x</p>")
	if ok || err != nil {
		t.Errorf("SetInnerHTML() = %v, %v; want false, nil", ok, err)
	}
	if doc.Has("missing") {
		t.Error("SetInnerHTML must not create elements")
	}
}

func TestSetStyle(t *testing.T) {
	doc := mustParse(t, testPage)

	if !doc.SetStyle("fill", "width", "42%") {
		t.Fatal("SetStyle() = false, want true")
	}
	if v, _ := doc.Style("fill", "width"); v != "42%" {
		t.Errorf("Style(width) = %q, want %q", v, "42%")
	}
	if v, _ := doc.Style("fill", "height"); v != "4px" {
		t.Errorf("Style(height) = %q, want existing declaration kept", v)
	}

	// overwrite keeps a single declaration
	doc.SetStyle("fill", "width", "7%")
	if !strings.Contains(doc.String(), `style="height: 4px; width: 7%;"`) {
		t.Errorf("unexpected style serialisation in %s", doc.String())
	}
}

func TestSetStyle_MissingElement(t *testing.T) {
	doc := mustParse(t, testPage)
	if doc.SetStyle("nope", "width", "1%") {
		t.Error("SetStyle() on missing element = true, want false")
	}
	if _, ok := doc.Style("nope", "width"); ok {
		t.Error("Style() on missing element should report false")
	}
}

func TestParseStyle(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"single", "width:10%", "width: 10%;"},
		{"trailing semicolon", "width: 10%;", "width: 10%;"},
		{"uppercase property", "COLOR: red", "color: red;"},
		{"malformed dropped", "garbage; width: 1%", "width: 1%;"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := parseStyle(tt.in).String(); got != tt.want {
				t.Errorf("parseStyle(%q).String() = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestDocument_ConcurrentAccess(t *testing.T) {
	doc := mustParse(t, testPage)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			doc.SetText("site-system", "x")
			doc.SetStyle("fill", "width", "1%")
		}()
		go func() {
			defer wg.Done()
			_ = doc.String()
		}()
	}
	wg.Wait()
}
