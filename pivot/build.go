package pivot

import (
	"github.com/minios-linux/resxkit/group"
	"github.com/minios-linux/resxkit/resx"
)

// Build merges members into a table.
//
// The neutral member is moved first; the others keep their order. For each
// member, file-reference nodes are kept aside for write-back and never
// enter the grid. Every other node fills the member's column in the row
// for its key, creating the row on first sight. A row takes the first
// non-empty comment it meets; later comments never replace it.
func Build(members []group.Member) *Table {
	t := newTable()

	ordered := make([]group.Member, 0, len(members))
	for _, m := range members {
		if m.Locale.IsNone() {
			ordered = append(ordered, m)
		}
	}
	for _, m := range members {
		if !m.Locale.IsNone() {
			ordered = append(ordered, m)
		}
	}

	for _, m := range ordered {
		file := m.File
		if file == nil {
			file = resx.NewFile()
		}
		t.Columns = append(t.Columns, &Column{
			Locale:   m.Locale,
			Path:     m.Path,
			skeleton: file.WithNodes(nil),
		})
	}

	for col, m := range ordered {
		if m.File == nil {
			continue
		}
		column := t.Columns[col]
		for _, n := range m.File.Nodes {
			if n.IsFileRef() {
				column.refs = append(column.refs, n)
				if column.refNames == nil {
					column.refNames = make(map[string]bool)
				}
				column.refNames[n.Name] = true
				continue
			}

			r := t.row(n.Name)
			if r == nil {
				r = t.appendRow(n.Name)
			}
			if r.Comment == "" {
				r.Comment = n.Comment
			}
			// A duplicate key within one file overwrites that file's cell.
			r.Cells[col] = Cell{
				Value:    n.Value,
				Type:     n.Type,
				MimeType: n.MimeType,
				Present:  true,
			}
		}
	}

	for col := range t.Columns {
		t.markClean(col)
	}
	return t
}
