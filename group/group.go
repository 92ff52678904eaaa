// Package group discovers the sibling files of a resource family and
// decodes them.
//
// Discovery and decoding are best effort: an unreadable directory or a
// malformed file does not abort the operation. Each such failure is
// recorded as a Skipped entry so callers can report it.
package group

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/minios-linux/resxkit/culture"
	"github.com/minios-linux/resxkit/resx"
)

// ErrNoReadableFiles is returned by Load when no file could be decoded.
var ErrNoReadableFiles = errors.New("no readable resource files")

// Member is one decoded file of the family.
type Member struct {
	Path   string
	Locale culture.Locale
	File   *resx.File
}

// Skipped records a path that was left out and why.
type Skipped struct {
	Path string
	Err  error
}

func (s Skipped) Error() string { return fmt.Sprintf("%s: %v", s.Path, s.Err) }

func (s Skipped) Unwrap() error { return s.Err }

// Discovery is the outcome of Discover.
type Discovery struct {
	// Base is the logical base name shared by the family ("Strings").
	Base string
	// Paths are the member files, neutral file first, then by file name.
	Paths []string
	// Skipped lists directories that could not be enumerated.
	Skipped []Skipped
}

// Discover finds every file in the anchor's directory whose extension is ext
// and whose base name matches the anchor's, both case-insensitively.
// If the directory cannot be listed, the anchor alone is returned (when it
// exists) and the failure is recorded in Skipped.
func Discover(anchor, ext string) *Discovery {
	if ext == "" {
		ext = resx.Ext
	}
	if abs, err := filepath.Abs(anchor); err == nil {
		anchor = abs
	}
	dir := filepath.Dir(anchor)
	base, _ := culture.ParseFileName(anchor)
	d := &Discovery{Base: base}

	entries, err := os.ReadDir(dir)
	if err != nil {
		log.Warn().Err(err).Str("dir", dir).Msg("Cannot list resource directory")
		d.Skipped = append(d.Skipped, Skipped{Path: dir, Err: err})
		if info, statErr := os.Stat(anchor); statErr == nil && info.Mode().IsRegular() {
			d.Paths = []string{anchor}
		}
		return d
	}

	var neutral, localized []string
	for _, entry := range entries {
		name := entry.Name()
		if !entry.Type().IsRegular() && entry.Type()&os.ModeSymlink == 0 {
			continue
		}
		if !strings.EqualFold(filepath.Ext(name), ext) {
			continue
		}
		p, loc := culture.ParseFileName(name)
		if !strings.EqualFold(p, base) {
			continue
		}
		path := filepath.Join(dir, name)
		if loc.IsNone() {
			neutral = append(neutral, path)
		} else {
			localized = append(localized, path)
		}
	}
	sort.Strings(neutral)
	sort.Strings(localized)
	d.Paths = append(neutral, localized...)

	log.Debug().Str("base", base).Int("count", len(d.Paths)).Msg("Discovered resource group")
	return d
}

// LoadOptions controls Load.
type LoadOptions struct {
	// Parallel decodes files concurrently. Results keep discovery order.
	Parallel bool
	// MaxReaders bounds concurrent reads when Parallel is set (default 4).
	MaxReaders int
}

// Loaded is the outcome of Load.
type Loaded struct {
	Members []Member
	Skipped []Skipped
}

// Load decodes each path with codec. Files that fail to decode are skipped
// and reported. It fails only when ctx is cancelled or when no file at all
// could be decoded.
func Load(ctx context.Context, codec resx.Codec, paths []string, opts LoadOptions) (*Loaded, error) {
	files := make([]*resx.File, len(paths))
	errs := make([]error, len(paths))

	read := func(i int) {
		files[i], errs[i] = codec.ReadFile(paths[i])
	}

	if opts.Parallel && len(paths) > 1 {
		limit := opts.MaxReaders
		if limit < 1 {
			limit = 4
		}
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(limit)
		for i := range paths {
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				read(i)
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	} else {
		for i := range paths {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			read(i)
		}
	}

	out := &Loaded{}
	for i, path := range paths {
		if errs[i] != nil {
			log.Warn().Err(errs[i]).Str("path", path).Msg("Skipping unreadable resource file")
			out.Skipped = append(out.Skipped, Skipped{Path: path, Err: errs[i]})
			continue
		}
		_, loc := culture.ParseFileName(path)
		out.Members = append(out.Members, Member{Path: path, Locale: loc, File: files[i]})
	}

	if len(out.Members) == 0 {
		if len(out.Skipped) > 0 {
			return out, fmt.Errorf("%w: %w", ErrNoReadableFiles, out.Skipped[0])
		}
		return out, ErrNoReadableFiles
	}
	return out, nil
}
