package recipe

import (
	"github.com/jmylchreest/recipescrape/internal/logger"
	"github.com/jmylchreest/recipescrape/pkg/markup"
)

// Assemble runs every field extractor once against doc and builds the record.
// It never fails; missing fields are left empty.
func Assemble(doc *markup.Document) Recipe {
	r := Recipe{
		Title:              ExtractTitle(doc),
		Overview:           ExtractOverview(doc),
		PhotoPath:          ExtractPhoto(doc),
		ServingUnit:        ExtractServingUnit(doc),
		Yield:              ExtractYield(doc),
		Nutrition:          ExtractNutrition(doc),
		Ingredients:        ExtractIngredients(doc),
		Steps:              ExtractSteps(doc),
		FoodAllergies:      ExtractFoodAllergies(doc),
		FoodCategories:     ExtractFoodCategories(doc),
		FoodAllergiesRules: ExtractFoodAllergiesRules(doc),
		Tags:               ExtractTags(doc),
	}

	if missing := r.MissingFields(); len(missing) > 0 {
		logger.Debug("recipe assembled with missing fields", "missing", missing)
	}
	if r.Title == nil {
		logger.Warn("recipe has no title")
	}
	return r
}

// FromHTML parses raw and assembles it. The only error is markup.ErrUnparseable.
func FromHTML(raw string) (Recipe, error) {
	doc, err := markup.Parse(raw)
	if err != nil {
		return Recipe{}, err
	}
	return Assemble(doc), nil
}

// MissingFields names the optional scalar fields that are absent.
func (r Recipe) MissingFields() []string {
	var missing []string
	check := func(name string, absent bool) {
		if absent {
			missing = append(missing, name)
		}
	}
	check("recipeTitle", r.Title == nil)
	check("recipeOverview", r.Overview == nil)
	check("recipePhotos", r.PhotoPath == nil)
	check("servingUnit", r.ServingUnit == nil)
	check("recipeYield", r.Yield == nil)

	n := r.Nutrition
	check("proteinG", n.ProteinG == nil)
	check("fatG", n.FatG == nil)
	check("caloriesKcal", n.CaloriesKcal == nil)
	check("carbsG", n.CarbsG == nil)
	check("fiberG", n.FiberG == nil)
	check("sugarG", n.SugarG == nil)
	check("saturatedFatG", n.SaturatedFatG == nil)
	check("sodiumMg", n.SodiumMg == nil)
	check("magnesiumMg", n.MagnesiumMg == nil)
	check("potassiumMg", n.PotassiumMg == nil)
	return missing
}
