// Package dashboard provides the default host page for the status poller.
//
// The page is embedded at compile time so the binary needs no asset files.
// It carries the status container the poller fills and a small script that
// follows the poller's event stream, so an open browser tab updates without
// reloading.
package dashboard

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
)

// Assets is an embedded filesystem containing the host page.
//
// The filesystem structure is:
//
//	assets/
//	  index.html    - Host page template with inline CSS and JavaScript
//
//go:embed assets/*
var Assets embed.FS

// DefaultTitle is used when no title is configured.
const DefaultTitle = "System Status"

var pageTmpl = template.Must(template.ParseFS(Assets, "assets/index.html"))

// Page renders the host page with the given title.
func Page(title string) (string, error) {
	if title == "" {
		title = DefaultTitle
	}

	var buf bytes.Buffer
	if err := pageTmpl.Execute(&buf, struct{ Title string }{title}); err != nil {
		return "", fmt.Errorf("render host page: %w", err)
	}
	return buf.String(), nil
}
