package output

import (
	"bufio"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/jmylchreest/recipescrape/pkg/recipe"
)

// YAMLWriter writes YAML output.
type YAMLWriter struct {
	w       *bufio.Writer
	items   []recipe.Recipe
	flushed bool
}

// NewYAMLWriter creates a YAML writer.
func NewYAMLWriter(w io.Writer) *YAMLWriter {
	return &YAMLWriter{
		w:     bufio.NewWriter(w),
		items: make([]recipe.Recipe, 0),
	}
}

// Write buffers a single record.
func (w *YAMLWriter) Write(r recipe.Recipe) error {
	w.items = append(w.items, r)
	w.flushed = false
	return nil
}

// Flush writes the buffered records as YAML.
func (w *YAMLWriter) Flush() error {
	if w.flushed {
		return nil
	}

	encoder := yaml.NewEncoder(w.w)
	encoder.SetIndent(2)

	var data any = w.items
	if len(w.items) == 1 {
		data = w.items[0]
	}
	if err := encoder.Encode(data); err != nil {
		return err
	}
	if err := encoder.Close(); err != nil {
		return err
	}

	w.items = w.items[:0]
	w.flushed = true
	return w.w.Flush()
}

// Close flushes and closes the writer.
func (w *YAMLWriter) Close() error {
	return w.Flush()
}
