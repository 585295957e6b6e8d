package dom

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

const (
	// ContentRegionID is the id of the element whose children are swapped per navigation.
	ContentRegionID = "main-content"
	// TabAttr marks navigation elements with the tab id they activate.
	TabAttr = "data-tab"
	// ActiveClass is the visual marker carried by exactly one navigation element.
	ActiveClass = "active"
)

var ErrNoContentRegion = errors.New("dom: page has no #" + ContentRegionID + " element")

// Document is a parsed dashboard page. All methods are safe for concurrent use.
type Document struct {
	mu       sync.RWMutex
	root     *html.Node
	region   *html.Node
	snapshot []*html.Node
}

// Parse builds a Document from a full page and captures the startup snapshot
// of the content region.
func Parse(page string) (*Document, error) {
	root, err := html.Parse(strings.NewReader(page))
	if err != nil {
		return nil, fmt.Errorf("dom: parse page: %w", err)
	}
	region := findByID(root, ContentRegionID)
	if region == nil {
		return nil, ErrNoContentRegion
	}

	d := &Document{root: root, region: region}
	for c := region.FirstChild; c != nil; c = c.NextSibling {
		d.snapshot = append(d.snapshot, cloneNode(c))
	}
	return d, nil
}

// Snapshot returns the content region markup captured at parse time.
func (d *Document) Snapshot() string {
	return renderNodes(d.snapshot)
}

// RestoreSnapshot replaces the content region with a copy of the startup markup.
func (d *Document) RestoreSnapshot() {
	d.mu.Lock()
	defer d.mu.Unlock()
	removeChildren(d.region)
	for _, n := range d.snapshot {
		d.region.AppendChild(cloneNode(n))
	}
}

// SetContent replaces the content region children with markup (innerHTML semantics).
func (d *Document) SetContent(markup string) error {
	nodes, err := html.ParseFragment(strings.NewReader(markup), &html.Node{
		Type:     html.ElementNode,
		Data:     "div",
		DataAtom: atom.Div,
	})
	if err != nil {
		return fmt.Errorf("dom: parse content: %w", err)
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	removeChildren(d.region)
	for _, n := range nodes {
		d.region.AppendChild(n)
	}
	return nil
}

// Content renders the inner markup of the content region.
func (d *Document) Content() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return renderChildren(d.region)
}

// SetActive clears the active marker from every navigation element and sets it
// on the element for tabID. It reports whether such an element exists.
func (d *Document) SetActive(tabID string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	found := false
	walk(d.root, func(n *html.Node) {
		id, ok := attr(n, TabAttr)
		if !ok {
			return
		}
		if id == tabID {
			addClass(n, ActiveClass)
			found = true
			return
		}
		removeClass(n, ActiveClass)
	})
	return found
}

// ActiveTabs lists the tab ids of navigation elements carrying the active marker.
func (d *Document) ActiveTabs() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()

	var out []string
	walk(d.root, func(n *html.Node) {
		if id, ok := attr(n, TabAttr); ok && hasClass(n, ActiveClass) {
			out = append(out, id)
		}
	})
	return out
}

// Tabs lists navigation tab ids in document order.
func (d *Document) Tabs() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()

	var out []string
	walk(d.root, func(n *html.Node) {
		if id, ok := attr(n, TabAttr); ok {
			out = append(out, id)
		}
	})
	return out
}

// HasCanvas reports whether the content region holds a <canvas> with the given id.
func (d *Document) HasCanvas(id string) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	n := findByID(d.region, id)
	return n != nil && n.DataAtom == atom.Canvas
}

// Render returns the whole page.
func (d *Document) Render() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	var buf bytes.Buffer
	if err := html.Render(&buf, d.root); err != nil {
		return ""
	}
	return buf.String()
}

// ExtractMain returns the inner markup of the first main landmark in a fetched
// document: a <main> element or any element with role="main".
func ExtractMain(markup string) (string, bool) {
	root, err := html.Parse(strings.NewReader(markup))
	if err != nil {
		return "", false
	}
	var main *html.Node
	walk(root, func(n *html.Node) {
		if main != nil || n.Type != html.ElementNode {
			return
		}
		if role, _ := attr(n, "role"); n.DataAtom == atom.Main || role == "main" {
			main = n
		}
	})
	if main == nil {
		return "", false
	}
	return renderChildren(main), true
}

func walk(n *html.Node, fn func(*html.Node)) {
	fn(n)
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, fn)
	}
}

func findByID(root *html.Node, id string) *html.Node {
	var found *html.Node
	walk(root, func(n *html.Node) {
		if found != nil || n.Type != html.ElementNode {
			return
		}
		if v, ok := attr(n, "id"); ok && v == id {
			found = n
		}
	})
	return found
}

func attr(n *html.Node, key string) (string, bool) {
	if n.Type != html.ElementNode {
		return "", false
	}
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val, true
		}
	}
	return "", false
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

func hasClass(n *html.Node, class string) bool {
	v, _ := attr(n, "class")
	for _, c := range strings.Fields(v) {
		if c == class {
			return true
		}
	}
	return false
}

func addClass(n *html.Node, class string) {
	if hasClass(n, class) {
		return
	}
	v, _ := attr(n, "class")
	setAttr(n, "class", strings.TrimSpace(v+" "+class))
}

func removeClass(n *html.Node, class string) {
	v, ok := attr(n, "class")
	if !ok {
		return
	}
	kept := make([]string, 0, 4)
	for _, c := range strings.Fields(v) {
		if c != class {
			kept = append(kept, c)
		}
	}
	setAttr(n, "class", strings.Join(kept, " "))
}

func removeChildren(n *html.Node) {
	for c := n.FirstChild; c != nil; c = n.FirstChild {
		n.RemoveChild(c)
	}
}

func cloneNode(n *html.Node) *html.Node {
	out := &html.Node{
		Type:      n.Type,
		DataAtom:  n.DataAtom,
		Data:      n.Data,
		Namespace: n.Namespace,
		Attr:      append([]html.Attribute(nil), n.Attr...),
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		out.AppendChild(cloneNode(c))
	}
	return out
}

func renderChildren(n *html.Node) string {
	var buf bytes.Buffer
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		_ = html.Render(&buf, c)
	}
	return buf.String()
}

func renderNodes(nodes []*html.Node) string {
	var buf bytes.Buffer
	for _, n := range nodes {
		_ = html.Render(&buf, n)
	}
	return buf.String()
}
