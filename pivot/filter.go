package pivot

import "strings"

// Filter returns the rows where the key, the comment, or any cell contains
// text, ignoring case. An empty or blank text returns every row.
func (t *Table) Filter(text string) []Row {
	text = strings.TrimSpace(text)
	if text == "" {
		return t.Rows()
	}
	needle := strings.ToLower(text)
	contains := func(s string) bool { return strings.Contains(strings.ToLower(s), needle) }

	var out []Row
	for _, r := range t.rows {
		match := contains(r.Key) || contains(r.Comment)
		for _, c := range r.Cells {
			if match {
				break
			}
			match = c.Present && contains(c.Value)
		}
		if match {
			out = append(out, r.copy())
		}
	}
	return out
}

// Gap is an empty cell: a key with no translation in one column.
type Gap struct {
	Key    string
	Column int
}

// Missing returns every empty or whitespace-only cell, row by row. Cells
// whose file holds the key as a file reference are not gaps.
func (t *Table) Missing() []Gap {
	var out []Gap
	for _, r := range t.rows {
		for col, c := range r.Cells {
			if t.Columns[col].HasFileRef(r.Key) {
				continue
			}
			if !c.Present || strings.TrimSpace(c.Value) == "" {
				out = append(out, Gap{Key: r.Key, Column: col})
			}
		}
	}
	return out
}

// Stats returns (total, translated, percentTranslated) for column col.
// Keys the column holds as file references are not counted.
func (t *Table) Stats(col int) (int, int, float64) {
	if col < 0 || col >= len(t.Columns) {
		return 0, 0, 0
	}
	total, translated := 0, 0
	for _, r := range t.rows {
		if t.Columns[col].HasFileRef(r.Key) {
			continue
		}
		total++
		if strings.TrimSpace(r.Cells[col].Value) != "" {
			translated++
		}
	}
	pct := 0.0
	if total > 0 {
		pct = float64(translated) / float64(total) * 100
	}
	return total, translated, pct
}
