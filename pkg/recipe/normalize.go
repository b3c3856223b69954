package recipe

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// allergyCheckmark prefixes every allergy badge on the source site, sometimes
// followed by an emoji variation selector.
const (
	allergyCheckmark  = "\u2714"
	variationSelector = "\ufe0f"
)

// NormalizeAllergyTag strips the badge checkmark and joins the remaining
// words with their first letter upper-cased. The rest of each word is kept.
func NormalizeAllergyTag(text string) string {
	text = strings.TrimPrefix(strings.TrimSpace(text), allergyCheckmark)
	text = strings.TrimPrefix(text, variationSelector)
	caser := cases.Title(language.Und)

	var sb strings.Builder
	for _, word := range strings.Fields(text) {
		_, size := utf8.DecodeRuneInString(word)
		sb.WriteString(caser.String(word[:size]))
		sb.WriteString(word[size:])
	}
	return sb.String()
}

// Slug derives the output name from a title: spaces become hyphens, commas
// are dropped and the result is lower-cased. Distinct titles can map to the
// same slug ("Eggs, Fried" and "Eggs Fried").
func Slug(title string) string {
	s := strings.ReplaceAll(title, " ", "-")
	s = strings.ReplaceAll(s, ",", "")
	return strings.ToLower(s)
}

// Identifier returns the slug of the record title, or false when the record
// has no usable title.
func (r Recipe) Identifier() (string, bool) {
	if !r.HasTitle() {
		return "", false
	}
	return Slug(*r.Title), true
}
