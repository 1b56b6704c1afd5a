package statuspoller

import (
	"math"
	"testing"
)

func TestEscapeHTML(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"plain", "plain"},
		{"<img src=x>", "&lt;img src=x&gt;"},
		{`a "b" & c`, "a &quot;b&quot; &amp; c"},
		{"it's", "it's"},
		{"&amp;", "&amp;amp;"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := EscapeHTML(tt.in); got != tt.want {
			t.Errorf("EscapeHTML(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestPercentFormatting(t *testing.T) {
	tests := []struct {
		v        float64
		wantText string
		wantRaw  string
	}{
		{0, "0.0%", "0%"},
		{42, "42.0%", "42%"},
		{12.345, "12.3%", "12.345%"},
		{99.96, "100.0%", "99.96%"},
		{-1.5, "-1.5%", "-1.5%"},
		{150, "150.0%", "150%"},
		{12.25, "12.3%", "12.25%"},
		{0.25, "0.3%", "0.25%"},
		{-1.25, "-1.3%", "-1.25%"},
		{0.75, "0.8%", "0.75%"},
		{2.5, "2.5%", "2.5%"},
		{0.15, "0.1%", "0.15%"},
		{1e-7, "0.0%", "1e-7%"},
		{1.5e-10, "0.0%", "1.5e-10%"},
		{0.000001, "0.0%", "0.000001%"},
		{1e21, "1e+21%", "1e+21%"},
		{123456789012345680000, "123456789012345683968.0%", "123456789012345680000%"},
		{math.Inf(1), "Infinity%", "Infinity%"},
		{math.Inf(-1), "-Infinity%", "-Infinity%"},
	}

	for _, tt := range tests {
		if got := percentText(tt.v); got != tt.wantText {
			t.Errorf("percentText(%v) = %q, want %q", tt.v, got, tt.wantText)
		}
		if got := rawPercent(tt.v); got != tt.wantRaw {
			t.Errorf("rawPercent(%v) = %q, want %q", tt.v, got, tt.wantRaw)
		}
	}
}

func TestRenderProcessRows(t *testing.T) {
	rows := []ProcessRow{
		{PID: "1", User: "root", PCPU: 0, PMem: 0.04, Cmd: "init"},
		{PID: "2", User: "<u>", PCPU: 12.34, PMem: 5, Cmd: `a&b "c"`},
		{PID: "3", User: "u", PCPU: 1.25, PMem: 0.25, Cmd: "x"},
	}

	got := renderProcessRows(rows)
	want := `<tr><td>1</td><td>root</td><td style="text-align:right">0.0</td><td style="text-align:right">0.0</td><td>init</td></tr>` +
		`<tr><td>2</td><td>&lt;u&gt;</td><td style="text-align:right">12.3</td><td style="text-align:right">5.0</td><td>a&amp;b &quot;c&quot;</td></tr>` +
		`<tr><td>3</td><td>u</td><td style="text-align:right">1.3</td><td style="text-align:right">0.3</td><td>x</td></tr>`

	if got != want {
		t.Errorf("renderProcessRows() =\n%s\nwant\n%s", got, want)
	}
}

func TestRenderProcessRows_Empty(t *testing.T) {
	if got := renderProcessRows(nil); got != "" {
		t.Errorf("renderProcessRows(nil) = %q, want empty", got)
	}
}
