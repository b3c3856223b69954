package recipe

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/jmylchreest/recipescrape/pkg/markup"
)

var yieldPattern = regexp.MustCompile(`\((.*?)\)`)

// Nutrition lookups, in output field order.
var (
	proteinLookup      = ByAttribute("proteinContent")
	fatLookup          = ByAttribute("fatContent")
	caloriesLookup     = ByAttribute("calories")
	carbsLookup        = ByLabelText("Total carbs")
	fiberLookup        = ByAttribute("fiberContent")
	sugarLookup        = ByLabelText("Sugars")
	saturatedFatLookup = ByAttribute("saturatedFatContent")
	sodiumLookup       = ByAttribute("sodiumContent")
	magnesiumLookup    = ByLabelText("Magnesium")
	potassiumLookup    = ByLabelText("Potassium")
)

// ExtractTitle reads the recipe name heading.
func ExtractTitle(doc *markup.Document) *string {
	n := doc.FindFirst("h1", markup.Attr("itemprop", "name"))
	if n == nil {
		return nil
	}
	return ptr(n.Text(true))
}

// ExtractServingUnit reads the emphasized text of the serving size box.
func ExtractServingUnit(doc *markup.Document) *string {
	strong := doc.FindFirst("div", markup.Class("kdServingSize")).FindFirst("strong", markup.Any)
	if strong == nil {
		return nil
	}
	return ptr(strong.Text(true))
}

// ExtractOverview returns the description meta content as-is.
func ExtractOverview(doc *markup.Document) *string {
	content, ok := doc.FindFirst("meta", markup.Attr("itemprop", "description")).Attr("content")
	if !ok {
		return nil
	}
	return &content
}

// ExtractPhoto returns the path of the primary photo behind the popup button.
func ExtractPhoto(doc *markup.Document) *string {
	src, ok := doc.FindFirst("a", markup.Class("kdPopupButton")).ChildImageSrc()
	if !ok {
		return nil
	}
	return urlPath(src)
}

// ExtractYield returns the text inside the first parentheses of the
// ingredients heading. A heading without parentheses yields nil.
func ExtractYield(doc *markup.Document) *string {
	heading := doc.FindFirst("h2", markup.ID("ingredients"))
	if heading == nil {
		return nil
	}
	m := yieldPattern.FindStringSubmatch(heading.Text(true))
	if m == nil {
		return nil
	}
	return ptr(m[1])
}

// ExtractNutrition reads every nutrition fact independently. The result is
// always a value; facts that cannot be found stay nil.
func ExtractNutrition(doc *markup.Document) NutritionFacts {
	c := doc.FindFirst("div", markup.Attr("itemprop", "nutrition"))
	if c == nil {
		return NutritionFacts{}
	}
	return NutritionFacts{
		ProteinG:      numericFact(c, proteinLookup),
		FatG:          numericFact(c, fatLookup),
		CaloriesKcal:  numericFact(c, caloriesLookup),
		CarbsG:        numericFact(c, carbsLookup),
		FiberG:        numericFact(c, fiberLookup),
		SugarG:        numericFact(c, sugarLookup),
		SaturatedFatG: numericFact(c, saturatedFatLookup),
		SodiumMg:      numericFact(c, sodiumLookup),
		MagnesiumMg:   numericFact(c, magnesiumLookup),
		PotassiumMg:   numericFact(c, potassiumLookup),
	}
}

// ExtractIngredients lists ingredient items in document order.
func ExtractIngredients(doc *markup.Document) []IngredientLine {
	nodes := doc.FindAll("li", markup.Attr("itemprop", "recipeIngredient"))
	lines := make([]IngredientLine, 0, len(nodes))
	for _, n := range nodes {
		lines = append(lines, IngredientLine{Text: n.Text(true)})
	}
	return lines
}

// ExtractSteps lists instruction items in document order.
func ExtractSteps(doc *markup.Document) []Step {
	nodes := doc.FindAll("li", markup.Attr("itemprop", "recipeInstructions"))
	steps := make([]Step, 0, len(nodes))
	for _, n := range nodes {
		step := Step{Text: n.Text(true)}
		if src, ok := n.ChildImageSrc(); ok {
			step.PhotoPath = urlPath(src)
		}
		steps = append(steps, step)
	}
	return steps
}

// ExtractFoodAllergies collects allergy badges in canonical form
// ("✔  tree nuts" becomes "TreeNuts"). Repeated badges are kept once.
func ExtractFoodAllergies(doc *markup.Document) []string {
	nodes := doc.FindAll("div", markup.Class("kdAllergyTag"))
	tags := make([]string, 0, len(nodes))
	seen := make(map[string]bool, len(nodes))
	for _, n := range nodes {
		tag := NormalizeAllergyTag(n.Text(true))
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		tags = append(tags, tag)
	}
	return tags
}

// ExtractTags returns article:tag values in document order, duplicates included.
func ExtractTags(doc *markup.Document) []string {
	nodes := doc.FindAll("meta", markup.Attr("property", "article:tag"))
	tags := make([]string, 0, len(nodes))
	for _, n := range nodes {
		if content, ok := n.Attr("content"); ok {
			tags = append(tags, content)
		}
	}
	return tags
}

// ExtractFoodCategories has no source markup yet and always returns an empty list.
func ExtractFoodCategories(*markup.Document) []string {
	return []string{}
}

// ExtractFoodAllergiesRules has no source markup yet and always returns an empty list.
func ExtractFoodAllergiesRules(*markup.Document) []string {
	return []string{}
}

// urlPath keeps only the path of raw, dropping scheme, host and query.
// Percent escapes are kept as written. Sources that net/url rejects (such as
// a stray "%") are cut by hand instead of being dropped.
func urlPath(raw string) *string {
	if u, err := url.Parse(raw); err == nil {
		return ptr(u.EscapedPath())
	}
	return ptr(cutPath(raw))
}

func cutPath(raw string) string {
	s, _, _ := strings.Cut(raw, "#")
	s, _, _ = strings.Cut(s, "?")
	rest, hasScheme := "", false
	if i := strings.Index(s, "://"); i > 0 && !strings.ContainsAny(s[:i], "/") {
		rest, hasScheme = s[i+3:], true
	} else if strings.HasPrefix(s, "//") {
		rest, hasScheme = s[2:], true
	}
	if !hasScheme {
		return s
	}
	if j := strings.IndexByte(rest, '/'); j >= 0 {
		return rest[j:]
	}
	return ""
}
