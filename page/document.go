// Package page provides the in-memory HTML document that a status poller
// reads and writes.
//
// A [Document] stands in for a browser DOM: elements are addressed by their
// id attribute, and the poller mutates them by replacing text, replacing
// inner markup, or setting inline style declarations. The document parses and
// renders markup with golang.org/x/net/html.
//
// Mutators never create elements. Addressing an id that does not exist in the
// document is not an error; the call reports false and leaves the tree alone.
//
// All methods are safe for concurrent use.
package page

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"golang.org/x/net/html"
)

// ErrNotLoaded is returned by [Document.Render] before the document has been loaded.
var ErrNotLoaded = errors.New("page: document not loaded")

// Document is a parsed HTML page with id-addressed mutation.
//
// The zero value is not usable; create a Document with [New] or [Parse].
type Document struct {
	mu   sync.RWMutex
	root *html.Node

	ready     chan struct{}
	readyOnce sync.Once
}

// New returns an empty document that is not yet ready.
//
// The document becomes ready once [Document.Load] succeeds. Until then
// every lookup reports the element as absent.
func New() *Document {
	return &Document{ready: make(chan struct{})}
}

// Parse reads a full HTML page from r and returns a ready [Document].
func Parse(r io.Reader) (*Document, error) {
	d := New()
	if err := d.Load(r); err != nil {
		return nil, err
	}
	return d, nil
}

// ParseString is a convenience wrapper around [Parse].
func ParseString(s string) (*Document, error) {
	return Parse(strings.NewReader(s))
}

// Load parses a full HTML page from r, replaces the document's content with
// it, and marks the document ready.
//
// Load may be called more than once; readiness is signalled only the first time.
func (d *Document) Load(r io.Reader) error {
	root, err := html.Parse(r)
	if err != nil {
		return fmt.Errorf("failed to parse page: %w", err)
	}

	d.mu.Lock()
	d.root = root
	d.mu.Unlock()

	d.readyOnce.Do(func() { close(d.ready) })
	return nil
}

// Ready returns a channel that is closed once the document's structural
// content has been loaded.
func (d *Document) Ready() <-chan struct{} {
	return d.ready
}

// IsReady reports whether the document has been loaded.
func (d *Document) IsReady() bool {
	select {
	case <-d.ready:
		return true
	default:
		return false
	}
}

// Has reports whether an element with the given id exists.
func (d *Document) Has(id string) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.find(id) != nil
}

// SetText replaces the children of the element with a single text node,
// like assigning textContent. The text is escaped when the document is rendered.
//
// Returns false if the element does not exist.
func (d *Document) SetText(id, text string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	n := d.find(id)
	if n == nil {
		return false
	}
	removeChildren(n)
	n.AppendChild(&html.Node{Type: html.TextNode, Data: text})
	return true
}

// SetInnerHTML parses markup as a fragment in the context of the element
// and replaces the element's children with the result, like assigning innerHTML.
//
// Returns false with a nil error if the element does not exist. If the markup
// cannot be parsed the element is left unchanged.
func (d *Document) SetInnerHTML(id, markup string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	n := d.find(id)
	if n == nil {
		return false, nil
	}

	nodes, err := html.ParseFragment(strings.NewReader(markup), n)
	if err != nil {
		return false, fmt.Errorf("failed to parse markup for #%s: %w", id, err)
	}

	removeChildren(n)
	for _, c := range nodes {
		n.AppendChild(c)
	}
	return true, nil
}

// SetStyle sets one declaration in the element's inline style attribute.
// Other declarations are kept in their original order.
//
// Returns false if the element does not exist.
func (d *Document) SetStyle(id, property, value string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	n := d.find(id)
	if n == nil {
		return false
	}

	decls := parseStyle(getAttr(n, "style"))
	decls = decls.set(property, value)
	setAttr(n, "style", decls.String())
	return true
}

// Style returns the value of one inline style declaration on the element.
func (d *Document) Style(id, property string) (string, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	n := d.find(id)
	if n == nil {
		return "", false
	}
	return parseStyle(getAttr(n, "style")).get(property)
}

// Text returns the concatenated text content of the element.
func (d *Document) Text(id string) (string, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	n := d.find(id)
	if n == nil {
		return "", false
	}
	var b strings.Builder
	collectText(&b, n)
	return b.String(), true
}

// InnerHTML renders the children of the element.
func (d *Document) InnerHTML(id string) (string, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	n := d.find(id)
	if n == nil {
		return "", false
	}

	var buf bytes.Buffer
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&buf, c); err != nil {
			return "", false
		}
	}
	return buf.String(), true
}

// Render writes the whole document to w.
func (d *Document) Render(w io.Writer) error {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.root == nil {
		return ErrNotLoaded
	}
	return html.Render(w, d.root)
}

// String renders the whole document, or returns "" if it is not loaded.
func (d *Document) String() string {
	var buf bytes.Buffer
	if err := d.Render(&buf); err != nil {
		return ""
	}
	return buf.String()
}

// find returns the first element in document order whose id matches.
// Caller must hold d.mu.
func (d *Document) find(id string) *html.Node {
	if id == "" || d.root == nil {
		return nil
	}
	return findByID(d.root, id)
}

func findByID(n *html.Node, id string) *html.Node {
	if n.Type == html.ElementNode && getAttr(n, "id") == id {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findByID(c, id); found != nil {
			return found
		}
	}
	return nil
}

func removeChildren(n *html.Node) {
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		n.RemoveChild(c)
		c = next
	}
}

func collectText(b *strings.Builder, n *html.Node) {
	if n.Type == html.TextNode {
		b.WriteString(n.Data)
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(b, c)
	}
}

func getAttr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val
		}
	}
	return ""
}

func setAttr(n *html.Node, key, val string) {
	for i, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}
