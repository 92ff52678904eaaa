// Package pivot merges a family of resource files into one table with a row
// per resource key and a column per file, and writes edits back.
//
// Invariants:
//   - a key appears in exactly one row;
//   - rows keep first-appearance order across the files (neutral file first);
//   - a row's comment is the first non-empty comment met while building;
//   - columns are fixed at build time, neutral first. The comment column is
//     not a file and is always reported last by Headers.
package pivot

import (
	"crypto/md5"
	"errors"
	"fmt"
	"strings"

	"github.com/minios-linux/resxkit/culture"
	"github.com/minios-linux/resxkit/resx"
)

// Header labels for the key and comment columns.
const (
	KeyHeader     = "Key"
	CommentHeader = "Comment"
	NeutralLabel  = "neutral"
)

var (
	ErrEmptyKey     = errors.New("empty resource key")
	ErrDuplicateKey = errors.New("duplicate resource key")
	ErrNoSuchKey    = errors.New("no such resource key")
	ErrNoSuchColumn = errors.New("no such locale column")
	// ErrFileRefKey is returned when a value is set on a key that the
	// column's file holds as a file reference.
	ErrFileRefKey = errors.New("key is a file reference in this file")
	// ErrInvalidText is returned for values XML cannot represent.
	ErrInvalidText = errors.New("text contains characters not allowed in XML")
)

// Cell is one value of one row in one column.
type Cell struct {
	// Value is the serialized value.
	Value string
	// Type and MimeType are carried over from the source entry.
	Type     string
	MimeType string
	// Present is false for a key the column's file does not contain.
	Present bool
}

// Empty reports whether the cell holds no translation. A present cell with
// an empty value counts as empty for display.
func (c Cell) Empty() bool { return !c.Present || c.Value == "" }

// Row is one resource key.
type Row struct {
	Key     string
	Comment string
	Cells   []Cell
}

// Column is one resource file of the family.
type Column struct {
	Locale culture.Locale
	Path   string

	// skeleton keeps the file's headers, assemblies and schema.
	skeleton *resx.File
	// refs are the file's file-reference nodes, written back verbatim.
	refs     []*resx.Node
	refNames map[string]bool
	// fingerprint is the column content at load or last successful sync.
	fingerprint string
}

// Label returns the locale name, or NeutralLabel for the neutral column.
func (c *Column) Label() string {
	if c.Locale.IsNone() {
		return NeutralLabel
	}
	return c.Locale.String()
}

// FileRefs returns the retained file-reference nodes of the column.
func (c *Column) FileRefs() []*resx.Node { return c.refs }

// HasFileRef reports whether the column's file holds key as a file
// reference. Such a cell cannot take a value.
func (c *Column) HasFileRef(key string) bool { return c.refNames[key] }

// Table is the merged view of a resource family.
type Table struct {
	Columns []*Column
	rows    []*Row
	index   map[string]int
}

func newTable() *Table {
	return &Table{index: make(map[string]int)}
}

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.rows) }

// Headers returns the column labels: key, one per file, comment last.
func (t *Table) Headers() []string {
	h := make([]string, 0, len(t.Columns)+2)
	h = append(h, KeyHeader)
	for _, c := range t.Columns {
		h = append(h, c.Label())
	}
	return append(h, CommentHeader)
}

// Rows returns copies of all rows in table order.
func (t *Table) Rows() []Row {
	out := make([]Row, len(t.rows))
	for i, r := range t.rows {
		out[i] = r.copy()
	}
	return out
}

// Row returns a copy of the row for key.
func (t *Table) Row(key string) (Row, bool) {
	r := t.row(key)
	if r == nil {
		return Row{}, false
	}
	return r.copy(), true
}

// Keys returns all keys in table order.
func (t *Table) Keys() []string {
	keys := make([]string, len(t.rows))
	for i, r := range t.rows {
		keys[i] = r.Key
	}
	return keys
}

func (r *Row) copy() Row {
	cp := *r
	cp.Cells = append([]Cell(nil), r.Cells...)
	return cp
}

func (t *Table) row(key string) *Row {
	if i, ok := t.index[key]; ok {
		return t.rows[i]
	}
	return nil
}

func (t *Table) checkColumn(col int) error {
	if col < 0 || col >= len(t.Columns) {
		return fmt.Errorf("%w: %d", ErrNoSuchColumn, col)
	}
	return nil
}

// ColumnByLocale finds the first column whose locale matches s. An empty s
// or NeutralLabel selects the neutral column.
func (t *Table) ColumnByLocale(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, NeutralLabel) {
		for i, c := range t.Columns {
			if c.Locale.IsNone() {
				return i, nil
			}
		}
		return -1, fmt.Errorf("%w: %s", ErrNoSuchColumn, NeutralLabel)
	}
	want := culture.Parse(s)
	for i, c := range t.Columns {
		if !want.IsNone() && c.Locale.Equal(want) {
			return i, nil
		}
		if strings.EqualFold(c.Label(), s) {
			return i, nil
		}
	}
	return -1, fmt.Errorf("%w: %s", ErrNoSuchColumn, s)
}

// ---------------------------------------------------------------------------
// Edits
// ---------------------------------------------------------------------------

// AddRow appends an empty row.
func (t *Table) AddRow(key string) error {
	if key == "" {
		return ErrEmptyKey
	}
	if _, ok := t.index[key]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateKey, key)
	}
	t.appendRow(key)
	return nil
}

func (t *Table) appendRow(key string) *Row {
	r := &Row{Key: key, Cells: make([]Cell, len(t.Columns))}
	t.index[key] = len(t.rows)
	t.rows = append(t.rows, r)
	return r
}

// Get returns the cell for key in column col.
func (t *Table) Get(key string, col int) (Cell, error) {
	if err := t.checkColumn(col); err != nil {
		return Cell{}, err
	}
	r := t.row(key)
	if r == nil {
		return Cell{}, fmt.Errorf("%w: %s", ErrNoSuchKey, key)
	}
	return r.Cells[col], nil
}

// Set stores value for key in column col, adding the row when the key is
// new. Setting an empty value clears the cell, so the key is omitted from
// that file on the next sync. It reports whether anything changed.
func (t *Table) Set(key string, col int, value string) (bool, error) {
	if err := t.checkColumn(col); err != nil {
		return false, err
	}
	if key == "" {
		return false, ErrEmptyKey
	}
	r := t.row(key)
	if value == "" {
		if r == nil {
			return false, nil
		}
		return t.unset(r, col), nil
	}
	if t.Columns[col].HasFileRef(key) {
		return false, fmt.Errorf("%w: %s in %s", ErrFileRefKey, key, t.Columns[col].Label())
	}
	if !resx.ValidText(value) || !resx.ValidText(key) {
		return false, fmt.Errorf("%w: %s", ErrInvalidText, key)
	}
	if r == nil {
		r = t.appendRow(key)
	}
	c := &r.Cells[col]
	if c.Present && c.Value == value {
		return false, nil
	}
	c.Value = value
	c.Present = true
	return true, nil
}

// Unset clears the cell for key in column col.
func (t *Table) Unset(key string, col int) (bool, error) {
	if err := t.checkColumn(col); err != nil {
		return false, err
	}
	r := t.row(key)
	if r == nil {
		return false, fmt.Errorf("%w: %s", ErrNoSuchKey, key)
	}
	return t.unset(r, col), nil
}

func (t *Table) unset(r *Row, col int) bool {
	if !r.Cells[col].Present {
		return false
	}
	r.Cells[col] = Cell{}
	return true
}

// SetComment replaces the row comment shared by all locales.
func (t *Table) SetComment(key, comment string) (bool, error) {
	r := t.row(key)
	if r == nil {
		return false, fmt.Errorf("%w: %s", ErrNoSuchKey, key)
	}
	if r.Comment == comment {
		return false, nil
	}
	if !resx.ValidText(comment) {
		return false, fmt.Errorf("%w: comment of %s", ErrInvalidText, key)
	}
	r.Comment = comment
	return true, nil
}

// DeleteRow removes key from every column.
func (t *Table) DeleteRow(key string) error {
	i, ok := t.index[key]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNoSuchKey, key)
	}
	t.rows = append(t.rows[:i], t.rows[i+1:]...)
	delete(t.index, key)
	for j := i; j < len(t.rows); j++ {
		t.index[t.rows[j].Key] = j
	}
	return nil
}

// ---------------------------------------------------------------------------
// Change tracking
// ---------------------------------------------------------------------------

// fingerprint hashes what a column would write: every present cell with its
// key and the row comment, in row order.
func (t *Table) fingerprint(col int) string {
	h := md5.New()
	for _, r := range t.rows {
		c := r.Cells[col]
		if !c.Present {
			continue
		}
		fmt.Fprintf(h, "%s\x00%s\x00%s\x00%s\x00%s\n", r.Key, c.Value, c.Type, c.MimeType, r.Comment)
	}
	return fmt.Sprintf("%x", h.Sum(nil))
}

// Changed returns the indexes of columns whose content differs from what was
// loaded or last synced.
func (t *Table) Changed() []int {
	var out []int
	for i, c := range t.Columns {
		if t.fingerprint(i) != c.fingerprint {
			out = append(out, i)
		}
	}
	return out
}

func (t *Table) markClean(col int) {
	t.Columns[col].fingerprint = t.fingerprint(col)
}
