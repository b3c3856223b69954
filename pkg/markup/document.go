// Package markup wraps goquery behind a small, absent-safe query API.
//
// Every lookup on a missing node returns nil (or the zero value with ok=false)
// instead of failing, so callers can chain queries without checking each step.
package markup

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ErrUnparseable indicates the input could not be read as HTML at all.
var ErrUnparseable = errors.New("document unparseable")

// Document is a parsed HTML page.
type Document struct {
	root *Node
}

// Parse builds a Document from raw HTML. The parser is lenient: broken markup
// yields a document with fewer matches, not an error.
func Parse(raw string) (*Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnparseable, err)
	}
	return &Document{root: &Node{sel: doc.Selection}}, nil
}

// Root returns the document node.
func (d *Document) Root() *Node {
	if d == nil {
		return nil
	}
	return d.root
}

// FindFirst returns the first element named tag that matches f.
func (d *Document) FindFirst(tag string, f Filter) *Node {
	return d.Root().FindFirst(tag, f)
}

// FindAll returns every element named tag that matches f, in document order.
func (d *Document) FindAll(tag string, f Filter) []*Node {
	return d.Root().FindAll(tag, f)
}

// Filter narrows a tag lookup by attribute.
type Filter struct {
	attr  string
	value string
	word  bool
}

// Any matches every element of the requested tag.
var Any = Filter{}

// Attr matches elements whose attribute name equals value exactly.
func Attr(name, value string) Filter {
	return Filter{attr: name, value: value}
}

// Class matches elements carrying name in their class list.
func Class(name string) Filter {
	return Filter{attr: "class", value: name, word: true}
}

// ID matches the element with the given id.
func ID(id string) Filter {
	return Attr("id", id)
}

func (f Filter) selector(tag string) string {
	if f.attr == "" {
		return tag
	}
	op := "="
	if f.word {
		op = "~="
	}
	return tag + "[" + f.attr + op + strconv.Quote(f.value) + "]"
}

// Node is a single element in a Document. A nil *Node stands for "not found"
// and every method on it is safe to call.
type Node struct {
	sel *goquery.Selection
}

func wrap(sel *goquery.Selection) *Node {
	if sel == nil || sel.Length() == 0 {
		return nil
	}
	return &Node{sel: sel}
}

// FindFirst returns the first descendant named tag that matches f.
func (n *Node) FindFirst(tag string, f Filter) *Node {
	if n == nil {
		return nil
	}
	return wrap(n.sel.Find(f.selector(tag)).First())
}

// FindAll returns every descendant named tag that matches f.
func (n *Node) FindAll(tag string, f Filter) []*Node {
	if n == nil {
		return nil
	}
	var nodes []*Node
	n.sel.Find(f.selector(tag)).Each(func(_ int, s *goquery.Selection) {
		nodes = append(nodes, &Node{sel: s})
	})
	return nodes
}

// FindByText returns the first descendant named tag whose trimmed text equals text.
func (n *Node) FindByText(tag, text string) *Node {
	if n == nil {
		return nil
	}
	want := strings.TrimSpace(text)
	match := n.sel.Find(tag).FilterFunction(func(_ int, s *goquery.Selection) bool {
		return strings.TrimSpace(s.Text()) == want
	})
	return wrap(match.First())
}

// Text returns the concatenated text of the node and its descendants.
// With trimmed set, only leading and trailing whitespace is removed.
func (n *Node) Text(trimmed bool) string {
	if n == nil {
		return ""
	}
	text := n.sel.Text()
	if trimmed {
		text = strings.TrimSpace(text)
	}
	return text
}

// Attr reads an attribute of the node.
func (n *Node) Attr(name string) (string, bool) {
	if n == nil {
		return "", false
	}
	return n.sel.Attr(name)
}

// ChildImageSrc returns the src of the first descendant img element.
func (n *Node) ChildImageSrc() (string, bool) {
	return n.FindFirst("img", Any).Attr("src")
}

// SiblingAfter returns the next element sibling named tag. An empty tag
// accepts any element.
func (n *Node) SiblingAfter(tag string) *Node {
	if n == nil {
		return nil
	}
	if tag == "" {
		return wrap(n.sel.Next())
	}
	return wrap(n.sel.NextAllFiltered(tag).First())
}
