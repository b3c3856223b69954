package store

import (
	"archive/zip"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/jmylchreest/recipescrape/pkg/recipe"
)

func titled(title string) recipe.Recipe {
	return recipe.Recipe{
		Title:              &title,
		Ingredients:        []recipe.IngredientLine{},
		Steps:              []recipe.Step{},
		FoodAllergies:      []string{},
		FoodCategories:     []string{},
		FoodAllergiesRules: []string{},
		Tags:               []string{},
	}
}

func TestJSONStore_Save(t *testing.T) {
	s, err := New(filepath.Join(t.TempDir(), "out"))
	if err != nil {
		t.Fatal(err)
	}

	path, err := s.Save(titled("Keto Pancakes, Fluffy"))
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if filepath.Base(path) != "keto-pancakes-fluffy.json" {
		t.Errorf("path = %s", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), "{\n   \"recipeTitle\"") {
		t.Errorf("unexpected layout:\n%s", data)
	}
	var got recipe.Recipe
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatal(err)
	}
	if *got.Title != "Keto Pancakes, Fluffy" {
		t.Errorf("title = %q", *got.Title)
	}
}

func TestJSONStore_SlugCollisionOverwrites(t *testing.T) {
	s, _ := New(t.TempDir())
	first, _ := s.Save(titled("Eggs, Fried"))
	second, err := s.Save(titled("Eggs Fried"))
	if err != nil {
		t.Fatal(err)
	}
	if first != second {
		t.Fatalf("expected same path, got %s and %s", first, second)
	}

	data, _ := os.ReadFile(second)
	if !strings.Contains(string(data), `"Eggs Fried"`) {
		t.Error("later record should replace the earlier one")
	}
	entries, _ := os.ReadDir(s.Dir)
	if len(entries) != 1 {
		t.Errorf("expected one file, got %d", len(entries))
	}
}

func TestJSONStore_MissingTitle(t *testing.T) {
	s, _ := New(t.TempDir())
	empty := ""
	for _, r := range []recipe.Recipe{{}, {Title: &empty}} {
		if _, err := s.Save(r); !errors.Is(err, ErrMissingTitle) {
			t.Errorf("Save() error = %v, want ErrMissingTitle", err)
		}
	}
	entries, _ := os.ReadDir(s.Dir)
	if len(entries) != 0 {
		t.Errorf("nothing should be written, found %d files", len(entries))
	}
}

func TestJSONStore_UnsafeName(t *testing.T) {
	s, _ := New(t.TempDir())
	for _, title := range []string{"Half/Half Cake", ".", ".."} {
		if _, err := s.Save(titled(title)); !errors.Is(err, ErrUnsafeName) {
			t.Errorf("Save(%q) error = %v, want ErrUnsafeName", title, err)
		}
	}
}

func TestArchive(t *testing.T) {
	dir := t.TempDir()
	s, _ := New(dir)
	for _, title := range []string{"Keto Pancakes", "Egg Muffins"} {
		if _, err := s.Save(titled(title)); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.MkdirAll(filepath.Join(dir, "nested"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "nested", "notes.txt"), []byte("hi"), 0o644); err != nil {
		t.Fatal(err)
	}

	// Archive inside the archived directory must not include itself.
	dest := filepath.Join(dir, "recipes.zip")
	size, err := Archive(dir, dest)
	if err != nil {
		t.Fatalf("Archive() error = %v", err)
	}
	if size == 0 {
		t.Error("archive size should be reported")
	}

	zr, err := zip.OpenReader(dest)
	if err != nil {
		t.Fatal(err)
	}
	defer zr.Close()

	var names []string
	for _, f := range zr.File {
		names = append(names, f.Name)
	}
	sort.Strings(names)
	want := []string{"egg-muffins.json", "keto-pancakes.json", "nested/notes.txt"}
	if strings.Join(names, ",") != strings.Join(want, ",") {
		t.Errorf("archive entries = %v, want %v", names, want)
	}
}

func TestArchive_MissingDir(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "out.zip")
	if _, err := Archive(filepath.Join(t.TempDir(), "missing"), dest); err == nil {
		t.Fatal("expected error for missing directory")
	}
}
