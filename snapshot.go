package statuspoller

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"math/big"
	"strconv"
	"strings"
)

// Snapshot is one decoded status payload for a single poll cycle.
//
// A Snapshot is transient: it is applied to the document and discarded.
// Fields are already coerced, so a Snapshot decoded from hostile or sparse
// JSON is always safe to render.
type Snapshot struct {
	// Timestamp is the server-formatted time label. Empty if absent.
	Timestamp string

	// CPU, Mem and Disk are percentages. Absent or non-numeric values are 0;
	// out-of-range values are ±Inf.
	CPU  float64
	Mem  float64
	Disk float64

	// Processes holds the process table rows in server order.
	Processes []ProcessRow

	// HasProcesses reports whether the payload carried a processes array.
	// When false the process table is left untouched.
	HasProcesses bool
}

// ProcessRow is one row of the process table.
type ProcessRow struct {
	PID  string
	User string
	PCPU float64
	PMem float64
	Cmd  string
}

// DecodeSnapshot decodes a status payload.
//
// Invalid JSON returns an error wrapping [ErrParse]. A falsy body (null,
// false, 0 or "") returns a nil Snapshot and no error. Any other non-object
// value decodes as an empty Snapshot.
func DecodeSnapshot(body []byte) (*Snapshot, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParse, err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: unexpected data after JSON value", ErrParse)
	}

	if isFalsy(v) {
		return nil, nil
	}

	obj, _ := v.(map[string]any)
	snap := &Snapshot{
		Timestamp: truthyText(obj["timestamp"]),
		CPU:       toNumber(obj["cpu"]),
		Mem:       toNumber(obj["mem"]),
		Disk:      toNumber(obj["disk"]),
	}

	if list, ok := obj["processes"].([]any); ok {
		snap.HasProcesses = true
		snap.Processes = make([]ProcessRow, 0, len(list))
		for _, item := range list {
			snap.Processes = append(snap.Processes, decodeProcessRow(item))
		}
	}

	return snap, nil
}

func decodeProcessRow(v any) ProcessRow {
	obj, _ := v.(map[string]any)
	return ProcessRow{
		PID:  toText(obj["pid"]),
		User: toText(obj["user"]),
		PCPU: toNumber(obj["pcpu"]),
		PMem: toNumber(obj["pmem"]),
		Cmd:  toText(obj["cmd"]),
	}
}

// isFalsy reports whether a decoded JSON value is falsy in JS terms.
func isFalsy(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case bool:
		return !x
	case string:
		return x == ""
	case json.Number:
		f, err := x.Float64()
		return err == nil && f == 0
	}
	return false
}

// toNumber coerces a decoded JSON value to a float like JS Number(x) || 0.
// Numeric strings are accepted after trimming whitespace; booleans map to 1
// and 0. NaN and -0 become 0. Overflow and the strings "Infinity" and
// "-Infinity" give ±Inf.
func toNumber(v any) float64 {
	var f float64
	switch x := v.(type) {
	case json.Number:
		f = parseDecimal(x.String())
	case string:
		f = parseNumericText(strings.TrimSpace(x))
	case bool:
		if x {
			return 1
		}
		return 0
	default:
		return 0
	}

	// also folds -0 into 0
	if f == 0 || math.IsNaN(f) {
		return 0
	}
	return f
}

// parseNumericText parses trimmed text with the grammar JS accepts for
// decimal numbers. Go's extra spellings (inf, nan, hex floats) give 0.
func parseNumericText(s string) float64 {
	switch s {
	case "":
		return 0
	case "Infinity", "+Infinity":
		return math.Inf(1)
	case "-Infinity":
		return math.Inf(-1)
	}
	if len(s) > 2 && s[0] == '0' {
		if base := radixPrefix(s[1]); base != 0 {
			return parseRadixInt(s[2:], base)
		}
	}
	if strings.IndexFunc(s, func(r rune) bool {
		return !strings.ContainsRune("0123456789.eE+-", r)
	}) >= 0 {
		return 0
	}
	return parseDecimal(s)
}

// radixPrefix maps the letter of a 0x, 0o or 0b prefix to its base.
func radixPrefix(c byte) int {
	switch c {
	case 'x', 'X':
		return 16
	case 'o', 'O':
		return 8
	case 'b', 'B':
		return 2
	}
	return 0
}

// parseRadixInt parses unsigned integer digits in base, giving 0 for bad syntax.
func parseRadixInt(digits string, base int) float64 {
	if digits[0] == '+' || digits[0] == '-' {
		return 0
	}
	n, ok := new(big.Int).SetString(digits, base)
	if !ok {
		return 0
	}
	f, _ := new(big.Float).SetInt(n).Float64()
	return f
}

// parseDecimal parses s, keeping ±Inf on overflow and giving 0 for bad syntax.
func parseDecimal(s string) float64 {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return 0
	}
	return f
}

// toText coerces a decoded JSON value to display text. Null, absent,
// objects and arrays become "".
func toText(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case json.Number:
		return formatRaw(parseDecimal(x.String()))
	case bool:
		return strconv.FormatBool(x)
	default:
		return ""
	}
}

// truthyText is toText with falsy values (0, false) mapped to "".
func truthyText(v any) string {
	if isFalsy(v) {
		return ""
	}
	return toText(v)
}
