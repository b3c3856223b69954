// Package recipe turns rendered recipe pages into normalized Recipe records.
//
// Each field has its own extractor. Extractors never fail: a missing node or
// an unexpected text shape leaves that one field empty and the rest of the
// record untouched.
package recipe

// Recipe is the normalized record produced for one page.
// Pointer fields are nil when the page did not provide them.
type Recipe struct {
	Title              *string          `json:"recipeTitle" yaml:"recipeTitle"`
	Overview           *string          `json:"recipeOverview" yaml:"recipeOverview"`
	PhotoPath          *string          `json:"recipePhotos" yaml:"recipePhotos"`
	ServingUnit        *string          `json:"servingUnit" yaml:"servingUnit"`
	Yield              *string          `json:"recipeYield" yaml:"recipeYield"`
	Nutrition          NutritionFacts   `json:"nutritionalInformationPerServing" yaml:"nutritionalInformationPerServing"`
	Ingredients        []IngredientLine `json:"ingredients" yaml:"ingredients"`
	Steps              []Step           `json:"recipeSteps" yaml:"recipeSteps"`
	FoodAllergies      []string         `json:"foodAllergies" yaml:"foodAllergies"`
	FoodCategories     []string         `json:"foodCategories" yaml:"foodCategories"`
	FoodAllergiesRules []string         `json:"foodAllergiesRules" yaml:"foodAllergiesRules"`
	Tags               []string         `json:"tags" yaml:"tags"`
}

// NutritionFacts holds per-serving values. Units are fixed by field name.
type NutritionFacts struct {
	ProteinG      *float64 `json:"proteinG" yaml:"proteinG"`
	FatG          *float64 `json:"fatG" yaml:"fatG"`
	CaloriesKcal  *float64 `json:"caloriesKcal" yaml:"caloriesKcal"`
	CarbsG        *float64 `json:"carbsG" yaml:"carbsG"`
	FiberG        *float64 `json:"fiberG" yaml:"fiberG"`
	SugarG        *float64 `json:"sugarG" yaml:"sugarG"`
	SaturatedFatG *float64 `json:"saturatedFatG" yaml:"saturatedFatG"`
	SodiumMg      *float64 `json:"sodiumMg" yaml:"sodiumMg"`
	MagnesiumMg   *float64 `json:"magnesiumMg" yaml:"magnesiumMg"`
	PotassiumMg   *float64 `json:"potassiumMg" yaml:"potassiumMg"`
}

// IngredientLine is one ingredient entry. Group is reserved; the source
// markup has no ingredient grouping.
type IngredientLine struct {
	Text  string  `json:"text" yaml:"text"`
	Group *string `json:"group" yaml:"group"`
}

// Step is one preparation step, in document order.
type Step struct {
	Text      string  `json:"recipeStepText" yaml:"recipeStepText"`
	PhotoPath *string `json:"recipeStepPhotos" yaml:"recipeStepPhotos"`
}

// HasTitle reports whether the record carries a non-empty title.
func (r Recipe) HasTitle() bool {
	return r.Title != nil && *r.Title != ""
}

func ptr[T any](v T) *T {
	return &v
}
