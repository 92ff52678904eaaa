package pivot

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Export formats.
const (
	FormatCSV  = "csv"
	FormatJSON = "json"
	FormatYAML = "yaml"
	FormatTOML = "toml"
)

// Formats lists the names accepted by Export.
var Formats = []string{FormatCSV, FormatJSON, FormatYAML, FormatTOML}

type exportRow struct {
	Key     string            `json:"key" yaml:"key" toml:"key"`
	Comment string            `json:"comment,omitempty" yaml:"comment,omitempty" toml:"comment,omitempty"`
	Values  map[string]string `json:"values" yaml:"values" toml:"values"`
}

type exportDoc struct {
	Locales []string    `json:"locales" yaml:"locales" toml:"locales"`
	Rows    []exportRow `json:"rows" yaml:"rows" toml:"rows"`
}

func (t *Table) document() exportDoc {
	doc := exportDoc{}
	for _, c := range t.Columns {
		doc.Locales = append(doc.Locales, c.Label())
	}
	for _, r := range t.rows {
		er := exportRow{Key: r.Key, Comment: r.Comment, Values: make(map[string]string)}
		for col, c := range r.Cells {
			if c.Present {
				er.Values[t.Columns[col].Label()] = c.Value
			}
		}
		doc.Rows = append(doc.Rows, er)
	}
	return doc
}

// Export writes the table to w in the given format.
func Export(w io.Writer, t *Table, format string) error {
	switch strings.ToLower(format) {
	case FormatCSV:
		return exportCSV(w, t)
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(t.document())
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(t.document()); err != nil {
			return fmt.Errorf("encoding YAML: %w", err)
		}
		return enc.Close()
	case FormatTOML:
		return toml.NewEncoder(w).Encode(t.document())
	default:
		return fmt.Errorf("unknown export format %q (valid: %s)", format, strings.Join(Formats, ", "))
	}
}

func exportCSV(w io.Writer, t *Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Headers()); err != nil {
		return err
	}
	for _, r := range t.rows {
		rec := make([]string, 0, len(r.Cells)+2)
		rec = append(rec, r.Key)
		for _, c := range r.Cells {
			rec = append(rec, c.Value)
		}
		rec = append(rec, r.Comment)
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ImportCSV applies a CSV laid out like the CSV export: Key first, one
// column per locale label, Comment last. Locale columns may appear in any
// order or be left out. Empty cells clear the translation. Keys not in the
// table are added. It returns the number of changed cells and comments.
func ImportCSV(r io.Reader, t *Table) (int, error) {
	cr := csv.NewReader(r)
	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return 0, fmt.Errorf("reading CSV header: empty input")
		}
		return 0, fmt.Errorf("reading CSV header: %w", err)
	}
	if len(header) < 2 || header[0] != KeyHeader || header[len(header)-1] != CommentHeader {
		return 0, fmt.Errorf("CSV header must start with %q and end with %q", KeyHeader, CommentHeader)
	}

	cols := make([]int, 0, len(header)-2)
	for _, label := range header[1 : len(header)-1] {
		col, err := t.ColumnByLocale(label)
		if err != nil {
			return 0, fmt.Errorf("CSV column %q: %w", label, err)
		}
		cols = append(cols, col)
	}

	changed := 0
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return changed, fmt.Errorf("reading CSV: %w", err)
		}
		key := rec[0]
		if key == "" {
			continue
		}
		for i, col := range cols {
			value := rec[i+1]
			if cur, err := t.Get(key, col); err == nil && cur.Value == value {
				continue
			}
			ok, err := t.Set(key, col, value)
			if err != nil {
				return changed, err
			}
			if ok {
				changed++
			}
		}
		if _, exists := t.index[key]; exists {
			ok, err := t.SetComment(key, rec[len(rec)-1])
			if err != nil {
				return changed, err
			}
			if ok {
				changed++
			}
		}
	}
	return changed, nil
}
