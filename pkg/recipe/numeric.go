package recipe

import (
	"math"
	"strconv"
	"strings"

	"github.com/jmylchreest/recipescrape/pkg/markup"
)

// Lookup locates a numeric value inside the nutrition container.
// Build one with ByAttribute or ByLabelText.
type Lookup struct {
	attr  string
	label string
}

// ByAttribute finds the span carrying itemprop=name and reads its own text.
func ByAttribute(name string) Lookup {
	return Lookup{attr: name}
}

// ByLabelText finds the span whose text is label and reads the span after it.
func ByLabelText(label string) Lookup {
	return Lookup{label: label}
}

func (l Lookup) locate(container *markup.Node) *markup.Node {
	if l.label != "" {
		return container.FindByText("span", l.label).SiblingAfter("span")
	}
	return container.FindFirst("span", markup.Attr("itemprop", l.attr))
}

// numericFact resolves l inside container and parses the value it points at.
func numericFact(container *markup.Node, l Lookup) *float64 {
	node := l.locate(container)
	if node == nil {
		return nil
	}
	v, ok := ParseQuantity(node.Text(false))
	if !ok {
		return nil
	}
	return &v
}

// ParseQuantity parses the leading token of s ("1,234.5 g") as a number.
// Thousands separators are dropped; units after the first space are ignored.
// NaN and infinities are rejected.
func ParseQuantity(s string) (float64, bool) {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return 0, false
	}
	token := strings.ReplaceAll(fields[0], ",", "")
	v, err := strconv.ParseFloat(token, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
