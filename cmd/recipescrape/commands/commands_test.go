package commands

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jmylchreest/recipescrape/pkg/fetcher"
	"github.com/jmylchreest/recipescrape/pkg/recipe"
)

func TestParseSize(t *testing.T) {
	tests := map[string]int{
		"":      0,
		"0":     0,
		"512KB": 512000,
		"10MB":  10000000,
		"1MiB":  1 << 20,
	}
	for in, want := range tests {
		got, err := parseSize(in)
		if err != nil || got != want {
			t.Errorf("parseSize(%q) = %d, %v; want %d", in, got, err, want)
		}
	}
	if _, err := parseSize("lots"); err == nil {
		t.Error("expected error for invalid size")
	}
}

func TestNewFetcher(t *testing.T) {
	f, err := newFetcher(fetchSettings{Mode: "static"})
	if err != nil {
		t.Fatal(err)
	}
	if f.Type() != "static" {
		t.Errorf("Type() = %q", f.Type())
	}
	if _, err := newFetcher(fetchSettings{Mode: "carrier-pigeon"}); err == nil {
		t.Error("expected error for unknown mode")
	}
}

func TestNewFetcher_AutoRequireSelector(t *testing.T) {
	tests := map[string]string{
		"":               fetcher.DefaultRequireSelector,
		"article.recipe": "article.recipe",
	}
	for require, want := range tests {
		f, err := newFetcher(fetchSettings{Mode: "auto", Require: require, Timeout: time.Second})
		if err != nil {
			t.Fatalf("newFetcher(auto, %q) error = %v", require, err)
		}
		auto, ok := f.(*fetcher.AutoFetcher)
		if !ok {
			t.Fatalf("newFetcher(auto) returned %T", f)
		}
		if got := auto.RequireSelector(); got != want {
			t.Errorf("RequireSelector() = %q, want %q", got, want)
		}
		_ = f.Close()
	}
}

func TestExtractCommand(t *testing.T) {
	saveDir := t.TempDir()
	buf := &bytes.Buffer{}
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{
		"extract", filepath.Join("testdata", "egg-muffins.html"),
		"--format", "jsonl",
		"--save", saveDir,
		"--quiet",
	})
	defer rootCmd.SetArgs(nil)

	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	var rec recipe.Recipe
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &rec); err != nil {
		t.Fatalf("output is not a JSON line: %v\n%s", err, buf.String())
	}
	if rec.Title == nil || *rec.Title != "Egg Muffins" {
		t.Errorf("title = %v", rec.Title)
	}
	if len(rec.Ingredients) != 2 {
		t.Errorf("ingredients = %d", len(rec.Ingredients))
	}

	data, err := os.ReadFile(filepath.Join(saveDir, "egg-muffins.json"))
	if err != nil {
		t.Fatalf("record not saved: %v", err)
	}
	if !strings.Contains(string(data), `"recipeYield": "12 muffins"`) {
		t.Errorf("saved record:\n%s", data)
	}
}
