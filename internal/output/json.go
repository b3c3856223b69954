package output

import (
	"bufio"
	"encoding/json"
	"io"

	"github.com/jmylchreest/recipescrape/pkg/recipe"
)

// StoreIndent is the indentation of records persisted by the store.
const StoreIndent = "   "

// EncodeRecord writes r as one indented JSON document followed by a newline.
func EncodeRecord(w io.Writer, r recipe.Recipe, indent string) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", indent)
	enc.SetEscapeHTML(false)
	return enc.Encode(r)
}

// JSONWriter buffers records and writes them on Flush. A single record is
// written as an object, anything else as an array.
type JSONWriter struct {
	w       *bufio.Writer
	pretty  bool
	indent  string
	items   []recipe.Recipe
	flushed bool
}

// NewJSONWriter creates a JSON writer.
func NewJSONWriter(w io.Writer, pretty bool, indent string) *JSONWriter {
	return &JSONWriter{
		w:      bufio.NewWriter(w),
		pretty: pretty,
		indent: indent,
		items:  make([]recipe.Recipe, 0),
	}
}

// Write buffers a single record.
func (w *JSONWriter) Write(r recipe.Recipe) error {
	w.items = append(w.items, r)
	w.flushed = false
	return nil
}

// Flush writes the buffered records.
func (w *JSONWriter) Flush() error {
	if w.flushed {
		return nil
	}

	var data any = w.items
	if len(w.items) == 1 {
		data = w.items[0]
	}

	enc := json.NewEncoder(w.w)
	enc.SetEscapeHTML(false)
	if w.pretty {
		enc.SetIndent("", w.indent)
	}
	if err := enc.Encode(data); err != nil {
		return err
	}

	w.items = w.items[:0]
	w.flushed = true
	return w.w.Flush()
}

// Close flushes the writer.
func (w *JSONWriter) Close() error {
	return w.Flush()
}

// JSONLWriter writes newline-delimited JSON (JSONL), one record per line.
type JSONLWriter struct {
	w *bufio.Writer
}

// NewJSONLWriter creates a JSONL writer.
func NewJSONLWriter(w io.Writer) *JSONLWriter {
	return &JSONLWriter{
		w: bufio.NewWriter(w),
	}
}

// Write writes a single record as a JSON line.
func (w *JSONLWriter) Write(r recipe.Recipe) error {
	enc := json.NewEncoder(w.w)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(r); err != nil {
		return err
	}
	return w.w.Flush()
}

// Flush flushes the buffer.
func (w *JSONLWriter) Flush() error {
	return w.w.Flush()
}

// Close flushes the writer.
func (w *JSONLWriter) Close() error {
	return w.Flush()
}
