package pivot

import (
	"fmt"
	"os"

	"github.com/rs/zerolog/log"

	"github.com/minios-linux/resxkit/resx"
)

// SyncError reports the file whose write failed. Files written before it
// stay written.
type SyncError struct {
	Path  string
	Label string
	Err   error
}

func (e *SyncError) Error() string {
	return fmt.Sprintf("saving %s column to %s: %v", e.Label, e.Path, e.Err)
}

func (e *SyncError) Unwrap() error { return e.Err }

// SyncReport lists what a sync did.
type SyncReport struct {
	Written   []string
	Unchanged []string
}

// Sync writes back every column whose content changed since it was loaded
// or last synced. Untouched files are left as they are.
func Sync(t *Table, codec resx.Codec) (*SyncReport, error) {
	return syncColumns(t, codec, false)
}

// SyncAll rewrites every column's file.
func SyncAll(t *Table, codec resx.Codec) (*SyncReport, error) {
	return syncColumns(t, codec, true)
}

func syncColumns(t *Table, codec resx.Codec, all bool) (*SyncReport, error) {
	report := &SyncReport{}
	changed := make(map[int]bool)
	for _, col := range t.Changed() {
		changed[col] = true
	}

	for col, c := range t.Columns {
		if c.Path == "" {
			continue
		}
		if !all && !changed[col] {
			report.Unchanged = append(report.Unchanged, c.Path)
			continue
		}

		unlock(c.Path)

		if err := codec.WriteFile(c.Path, t.Render(col)); err != nil {
			return report, &SyncError{Path: c.Path, Label: c.Label(), Err: err}
		}
		t.markClean(col)
		report.Written = append(report.Written, c.Path)
		log.Debug().Str("path", c.Path).Str("locale", c.Label()).Msg("Wrote resource file")
	}
	return report, nil
}

// Render builds the file contents for column col: retained file references
// first, then one node per row whose cell is present, in row order. A key
// held as a file reference is written once, as the reference.
func (t *Table) Render(col int) *resx.File {
	c := t.Columns[col]
	nodes := make([]*resx.Node, 0, len(c.refs)+len(t.rows))
	nodes = append(nodes, c.refs...)
	for _, r := range t.rows {
		cell := r.Cells[col]
		if !cell.Present || c.HasFileRef(r.Key) {
			continue
		}
		nodes = append(nodes, &resx.Node{
			Name:     r.Key,
			Comment:  r.Comment,
			Value:    cell.Value,
			Type:     cell.Type,
			MimeType: cell.MimeType,
		})
	}
	return c.skeleton.WithNodes(nodes)
}

// unlock clears read-only protection on path. Failures are ignored; the
// following write reports its own error.
func unlock(path string) {
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return
	}
	perm := info.Mode().Perm()
	if perm&0200 != 0 {
		return
	}
	if err := os.Chmod(path, perm|0200); err != nil {
		log.Debug().Err(err).Str("path", path).Msg("Cannot clear read-only flag")
	}
}
