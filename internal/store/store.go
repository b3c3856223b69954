// Package store persists harvested recipe records as one JSON file each.
package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"

	"github.com/jmylchreest/recipescrape/internal/logger"
	"github.com/jmylchreest/recipescrape/internal/output"
	"github.com/jmylchreest/recipescrape/pkg/recipe"
)

var (
	// ErrMissingTitle is returned for records without a usable title.
	ErrMissingTitle = errors.New("recipe has no title")
	// ErrUnsafeName is returned when the title slug cannot be used as a file name.
	ErrUnsafeName = errors.New("recipe slug is not a safe file name")
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// entry is the validated precondition for writing a record.
type entry struct {
	Title string `validate:"required"`
	Slug  string `validate:"required,excludesall=/,ne=.,ne=.."`
}

// JSONStore writes records to <Dir>/<slug>.json with a three-space indent.
// A record whose slug matches an existing file replaces it.
type JSONStore struct {
	Dir string
}

// New creates the output directory if needed.
func New(dir string) (*JSONStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	return &JSONStore{Dir: dir}, nil
}

// PathFor returns the file a record would be written to.
func (s *JSONStore) PathFor(r recipe.Recipe) (string, error) {
	slug, ok := r.Identifier()
	e := entry{Slug: slug}
	if ok {
		e.Title = *r.Title
	}
	if err := validate.Struct(e); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && verrs[0].Field() == "Title" {
			return "", ErrMissingTitle
		}
		return "", fmt.Errorf("%w: %q", ErrUnsafeName, slug)
	}
	return filepath.Join(s.Dir, slug+".json"), nil
}

// Save writes r and returns the file path.
func (s *JSONStore) Save(r recipe.Recipe) (string, error) {
	path, err := s.PathFor(r)
	if err != nil {
		return "", err
	}

	tmp, err := os.CreateTemp(s.Dir, ".recipe-*.json")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := output.EncodeRecord(tmp, r, output.StoreIndent); err != nil {
		tmp.Close()
		return "", fmt.Errorf("encode %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}

	logger.Debug("record saved", "path", path)
	return path, nil
}
