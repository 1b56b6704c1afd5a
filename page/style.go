package page

import "strings"

// declaration is one "property: value" pair of an inline style attribute.
type declaration struct {
	property string
	value    string
}

type declarations []declaration

// parseStyle splits an inline style attribute into ordered declarations.
// Malformed entries without a colon are dropped. Property names are lowercased.
func parseStyle(s string) declarations {
	var decls declarations
	for _, part := range strings.Split(s, ";") {
		prop, val, ok := strings.Cut(part, ":")
		if !ok {
			continue
		}
		prop = strings.ToLower(strings.TrimSpace(prop))
		if prop == "" {
			continue
		}
		decls = append(decls, declaration{property: prop, value: strings.TrimSpace(val)})
	}
	return decls
}

func (ds declarations) get(property string) (string, bool) {
	property = strings.ToLower(property)
	for _, d := range ds {
		if d.property == property {
			return d.value, true
		}
	}
	return "", false
}

// set replaces the value of an existing declaration or appends a new one.
func (ds declarations) set(property, value string) declarations {
	property = strings.ToLower(strings.TrimSpace(property))
	for i := range ds {
		if ds[i].property == property {
			ds[i].value = value
			return ds
		}
	}
	return append(ds, declaration{property: property, value: value})
}

// String serialises declarations the way browsers do for element.style,
// e.g. "width: 42%; color: #7bd389;".
func (ds declarations) String() string {
	parts := make([]string, len(ds))
	for i, d := range ds {
		parts[i] = d.property + ": " + d.value + ";"
	}
	return strings.Join(parts, " ")
}
