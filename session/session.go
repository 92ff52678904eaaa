// Package session holds one open resource family: the merged table, the
// files that could not be read, and whether there are unsaved edits.
//
// A Session replaces the editor-wide state of a GUI. Opening a new family
// never disturbs an existing session; callers swap sessions only after
// Open succeeds.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"github.com/minios-linux/resxkit/group"
	"github.com/minios-linux/resxkit/pivot"
	"github.com/minios-linux/resxkit/resx"
	"github.com/minios-linux/resxkit/settings"
)

var (
	// ErrUnsaved is returned by Close when edits would be discarded.
	ErrUnsaved = errors.New("unsaved changes")
	// ErrClosed is returned by any operation on a closed session.
	ErrClosed = errors.New("session is closed")
)

// Options controls Open.
type Options struct {
	// Extension of the family's files (default ".resx").
	Extension string
	// Codec reads and writes files (default resx.FileCodec).
	Codec resx.Codec
	// Load is passed to group.Load.
	Load group.LoadOptions
	// RecentLimit caps the recent-files list (default settings.DefaultRecentLimit).
	RecentLimit int
	// NoRecent leaves the recent-files list alone.
	NoRecent bool
}

// Session is an open resource family.
type Session struct {
	// Anchor is the absolute path of the file the session was opened with.
	Anchor string
	// Base is the family's logical base name.
	Base string
	// Table is the merged view. Edit through the Session so that Dirty
	// stays accurate.
	Table *pivot.Table
	// Skipped lists files and directories that could not be read.
	Skipped []group.Skipped

	codec  resx.Codec
	dirty  bool
	closed bool
}

// Open discovers, reads and merges the family of anchor.
func Open(ctx context.Context, anchor string, opts Options) (*Session, error) {
	abs, err := filepath.Abs(anchor)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", anchor, err)
	}
	codec := opts.Codec
	if codec == nil {
		codec = resx.FileCodec{}
	}

	d := group.Discover(abs, opts.Extension)
	loaded, err := group.Load(ctx, codec, d.Paths, opts.Load)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", abs, err)
	}

	s := &Session{
		Anchor:  abs,
		Base:    d.Base,
		Table:   pivot.Build(loaded.Members),
		Skipped: append(d.Skipped, loaded.Skipped...),
		codec:   codec,
	}
	log.Info().
		Str("anchor", abs).
		Int("files", len(s.Table.Columns)).
		Int("keys", s.Table.Len()).
		Int("skipped", len(s.Skipped)).
		Msg("Opened resource group")

	if !opts.NoRecent {
		if _, err := settings.AddRecent(abs, opts.RecentLimit); err != nil {
			log.Warn().Err(err).Str("path", abs).Msg("Cannot update recent files list")
		}
	}
	return s, nil
}

// Dirty reports whether there are edits not yet saved.
func (s *Session) Dirty() bool { return s.dirty }

func (s *Session) track(changed bool, err error) error {
	if err != nil {
		return err
	}
	if changed {
		s.dirty = true
	}
	return nil
}

func (s *Session) column(locale string) (int, error) {
	if s.closed {
		return -1, ErrClosed
	}
	return s.Table.ColumnByLocale(locale)
}

// Set stores value for key in the column of locale ("" for neutral).
func (s *Session) Set(key, locale, value string) error {
	col, err := s.column(locale)
	if err != nil {
		return err
	}
	return s.track(s.Table.Set(key, col, value))
}

// Unset clears the cell for key in the column of locale.
func (s *Session) Unset(key, locale string) error {
	col, err := s.column(locale)
	if err != nil {
		return err
	}
	return s.track(s.Table.Unset(key, col))
}

// SetComment replaces the comment of key.
func (s *Session) SetComment(key, comment string) error {
	if s.closed {
		return ErrClosed
	}
	return s.track(s.Table.SetComment(key, comment))
}

// DeleteRow removes key from every file.
func (s *Session) DeleteRow(key string) error {
	if s.closed {
		return ErrClosed
	}
	return s.track(true, s.Table.DeleteRow(key))
}

// Import applies a CSV laid out like the CSV export and returns the number
// of changes.
func (s *Session) Import(r io.Reader) (int, error) {
	if s.closed {
		return 0, ErrClosed
	}
	n, err := pivot.ImportCSV(r, s.Table)
	if n > 0 {
		s.dirty = true
	}
	return n, err
}

// Save writes back every changed file. The session stays dirty when any
// write fails.
func (s *Session) Save() (*pivot.SyncReport, error) {
	if s.closed {
		return nil, ErrClosed
	}
	report, err := pivot.Sync(s.Table, s.codec)
	if err != nil {
		return report, err
	}
	s.dirty = false
	log.Info().Str("anchor", s.Anchor).Int("written", len(report.Written)).Msg("Saved resource group")
	return report, nil
}

// Close ends the session. With save set, pending edits are written first;
// without it, a dirty session refuses to close and returns ErrUnsaved.
func (s *Session) Close(save bool) error {
	if s.closed {
		return nil
	}
	if s.dirty {
		if !save {
			return ErrUnsaved
		}
		if _, err := s.Save(); err != nil {
			return err
		}
	}
	s.closed = true
	return nil
}
