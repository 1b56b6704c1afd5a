package statuspoller

import (
	"math"
	"strconv"
	"strings"
)

var htmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
)

// EscapeHTML escapes &, <, > and " so network text can be embedded in markup.
func EscapeHTML(s string) string {
	return htmlEscaper.Replace(s)
}

// formatFixed1 formats v with exactly one decimal place, like JS toFixed(1).
// Infinities and magnitudes from 1e21 up fall back to [formatRaw], as toFixed does.
//
// strconv rounds exact ties to even; toFixed rounds them away from zero. The
// only float64 values exactly halfway between tenths are odd multiples of
// 0.25, so those are rounded by hand.
func formatFixed1(v float64) string {
	if math.IsInf(v, 0) || math.Abs(v) >= 1e21 {
		return formatRaw(v)
	}
	if q := math.Abs(v) * 4; q == math.Trunc(q) && math.Mod(q, 2) == 1 {
		return strconv.FormatFloat(math.Round(v*10)/10, 'f', 1, 64)
	}
	return strconv.FormatFloat(v, 'f', 1, 64)
}

// formatRaw formats v the way JS converts a number to a string: the shortest
// decimal form, e.g. 42 or 42.37, switching to exponent form below 1e-6 and
// from 1e21 up, e.g. 1e-7 or 1.5e+21.
func formatRaw(v float64) string {
	switch {
	case math.IsInf(v, 1):
		return "Infinity"
	case math.IsInf(v, -1):
		return "-Infinity"
	case v == 0:
		return "0"
	}

	if abs := math.Abs(v); abs >= 1e-6 && abs < 1e21 {
		return strconv.FormatFloat(v, 'f', -1, 64)
	}

	// Go pads the exponent to two digits: 1e-07
	mantissa, exp, _ := strings.Cut(strconv.FormatFloat(v, 'e', -1, 64), "e")
	sign, digits := exp[:1], strings.TrimLeft(exp[1:], "0")
	return mantissa + "e" + sign + digits
}

// percentText renders a percentage label with one decimal place, e.g. "12.5%".
func percentText(v float64) string {
	return formatFixed1(v) + "%"
}

// rawPercent renders a percentage without rounding, e.g. "42%" or "12.345%".
// Used for gauge widths and the disk label.
func rawPercent(v float64) string {
	return formatRaw(v) + "%"
}

// renderProcessRows builds table body markup with one row per process, in order.
func renderProcessRows(rows []ProcessRow) string {
	var b strings.Builder
	for _, p := range rows {
		b.WriteString("<tr><td>")
		b.WriteString(EscapeHTML(p.PID))
		b.WriteString("</td><td>")
		b.WriteString(EscapeHTML(p.User))
		b.WriteString(`</td><td style="text-align:right">`)
		b.WriteString(formatFixed1(p.PCPU))
		b.WriteString(`</td><td style="text-align:right">`)
		b.WriteString(formatFixed1(p.PMem))
		b.WriteString("</td><td>")
		b.WriteString(EscapeHTML(p.Cmd))
		b.WriteString("</td></tr>")
	}
	return b.String()
}
