// resxkit: view and edit a family of localized .resx files as one table.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/minios-linux/resxkit/config"
	"github.com/minios-linux/resxkit/culture"
	"github.com/minios-linux/resxkit/group"
	"github.com/minios-linux/resxkit/i18n"
	"github.com/minios-linux/resxkit/pivot"
	"github.com/minios-linux/resxkit/session"
	"github.com/minios-linux/resxkit/settings"
)

// Version information (set via -ldflags during build)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// ANSI colors
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[0;31m"
	colorGreen  = "\033[0;32m"
	colorYellow = "\033[1;33m"
	colorBlue   = "\033[0;34m"
)

func logInfo(format string, args ...any) {
	fmt.Fprintf(os.Stderr, colorBlue+"[INFO]"+colorReset+" "+format+"\n", args...)
}

func logSuccess(format string, args ...any) {
	fmt.Fprintf(os.Stderr, colorGreen+"[OK]"+colorReset+" "+format+"\n", args...)
}

func logWarning(format string, args ...any) {
	fmt.Fprintf(os.Stderr, colorYellow+"[WARN]"+colorReset+" "+format+"\n", args...)
}

func logError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, colorRed+"[ERROR]"+colorReset+" "+format+"\n", args...)
}

// ---------------------------------------------------------------------------
// Global flags and configuration
// ---------------------------------------------------------------------------

var (
	rootDir string
	verbose bool
	uiLang  string

	cfg = config.Default()
)

// setup loads configuration and applies command-line overrides. It runs
// before every subcommand.
func setup(cmd *cobra.Command) error {
	loaded, err := config.Load(rootDir)
	if err != nil {
		return err
	}
	cfg = loaded
	if cmd.Flags().Changed("lang") {
		cfg.Language = uiLang
	}
	i18n.Init(cfg.Language)

	level := cfg.Level()
	if verbose {
		level = zerolog.DebugLevel
	}
	setupLogging(os.Stderr, level)

	if cfg.File != "" {
		log.Debug().Str("file", cfg.File).Msg("Loaded configuration")
	}
	return nil
}

func setupLogging(w io.Writer, level zerolog.Level) {
	zerolog.SetGlobalLevel(level)
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: time.TimeOnly}).
		With().Timestamp().Logger()
}

// ---------------------------------------------------------------------------
// Root command
// ---------------------------------------------------------------------------

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "resxkit",
		Short: "View and edit localized .resx resource families as one table",
		Long: `resxkit: view and edit localized .resx resource files side by side.

Given any member of a resource family (Strings.resx, Strings.fr.resx,
Strings.de-DE.resx, ...), resxkit finds the whole family, merges it into one
table with a row per key and a column per culture, and writes back only the
files whose content changed.

Commands:
  show     Print the merged table
  stats    Show translation progress per culture
  missing  List keys without a translation
  set      Set a value for one culture
  unset    Remove a value for one culture
  comment  Set the comment of a key
  delete   Remove a key from every file
  export   Export the table as CSV, JSON, YAML or TOML
  import   Apply a CSV export back to the files
  recent   List recently opened files

Configuration is read from .resxkit.yaml in the --root directory, then from
.env and RESXKIT_* environment variables.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setup(cmd)
		},
	}

	// Global persistent flags, inherited by all subcommands
	root.PersistentFlags().StringVar(&rootDir, "root", ".", "Directory holding .resxkit.yaml and .env")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	root.PersistentFlags().StringVar(&uiLang, "lang", "", "Language of resxkit's own messages (default: from locale)")

	root.AddCommand(
		newShowCmd(),
		newStatsCmd(),
		newMissingCmd(),
		newSetCmd(),
		newUnsetCmd(),
		newCommentCmd(),
		newDeleteCmd(),
		newExportCmd(),
		newImportCmd(),
		newRecentCmd(),
		newVersionCmd(),
	)

	return root
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		logError("%v", err)
		stop()
		os.Exit(1)
	}
}

// ---------------------------------------------------------------------------
// version (display version information)
// ---------------------------------------------------------------------------

func newVersionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  `Display version, commit hash, and build date.`,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("resxkit version %s\n", version)
			fmt.Printf("  commit:    %s\n", commit)
			fmt.Printf("  built:     %s\n", date)
		},
	}

	return cmd
}

// ---------------------------------------------------------------------------
// Opening a family
// ---------------------------------------------------------------------------

func openSession(ctx context.Context, path string) (*session.Session, error) {
	if !fileExists(path) {
		return nil, fmt.Errorf(i18n.T("file not found: %s"), path)
	}
	s, err := session.Open(ctx, path, session.Options{
		Extension: cfg.Extension,
		Load: group.LoadOptions{
			Parallel:   cfg.ParallelReads,
			MaxReaders: cfg.MaxReaders,
		},
		RecentLimit: cfg.RecentLimit,
	})
	if err != nil {
		return nil, err
	}
	for _, sk := range s.Skipped {
		logWarning(i18n.T("Skipped %s: %v"), sk.Path, sk.Err)
	}
	return s, nil
}

// save writes pending edits and reports what happened.
func save(s *session.Session) error {
	if !s.Dirty() {
		logInfo("%s", i18n.T("Nothing changed"))
		return s.Close(false)
	}
	report, err := s.Save()
	if err != nil {
		return err
	}
	for _, p := range report.Written {
		logSuccess(i18n.T("Wrote %s"), relPath(p))
	}
	return s.Close(false)
}

// addLocaleFlag registers --locale on fs.
func addLocaleFlag(fs *pflag.FlagSet, p *string) {
	fs.StringVarP(p, "locale", "l", "", `Culture column to edit (e.g. "fr", "de-DE"; empty or "neutral" for the neutral file)`)
}

// ---------------------------------------------------------------------------
// show / stats / missing (read-only)
// ---------------------------------------------------------------------------

func newShowCmd() *cobra.Command {
	var (
		filter string
		width  int
	)

	cmd := &cobra.Command{
		Use:   "show <file.resx>",
		Short: "Print the merged table",
		Long: `Print the merged table of the resource family containing <file.resx>.

One row per key, one column per culture (neutral first), comment last.
Cells with no translation are shown as "-". Does not modify any files.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			rows := s.Table.Filter(filter)
			printTable(cmd.OutOrStdout(), s.Table.Headers(), rows, width)
			if filter != "" {
				logInfo(i18n.N("%d row matches %q", "%d rows match %q", len(rows)), len(rows), filter)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&filter, "filter", "f", "", "Show only rows whose key, values or comment contain this text")
	cmd.Flags().IntVarP(&width, "width", "w", 40, "Truncate cells to this many characters (0 = no limit)")

	return cmd
}

func printTable(w io.Writer, headers []string, rows []pivot.Row, width int) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(headers, "\t"))
	for _, r := range rows {
		fields := make([]string, 0, len(r.Cells)+2)
		fields = append(fields, cellText(r.Key, width))
		for _, c := range r.Cells {
			if c.Empty() {
				fields = append(fields, "-")
				continue
			}
			fields = append(fields, cellText(c.Value, width))
		}
		fields = append(fields, cellText(r.Comment, width))
		fmt.Fprintln(tw, strings.Join(fields, "\t"))
	}
	tw.Flush()
}

// cellText flattens s to one line and truncates it to width runes.
func cellText(s string, width int) string {
	s = strings.NewReplacer("\r\n", `\n`, "\n", `\n`, "\t", `\t`).Replace(s)
	if width > 0 && utf8.RuneCountInString(s) > width {
		if width == 1 {
			return "…"
		}
		runes := []rune(s)
		return string(runes[:width-1]) + "…"
	}
	return s
}

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats <file.resx>",
		Short: "Show translation progress per culture",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			fmt.Fprintf(os.Stderr, "\n%s%s%s  %s\n", colorBlue, s.Base, colorReset, relPath(filepath.Dir(s.Anchor)))
			fmt.Fprintln(os.Stderr, strings.Repeat("─", 60))

			labelWidth := 0
			for _, c := range s.Table.Columns {
				labelWidth = max(labelWidth, len(c.Label()))
			}
			for i, c := range s.Table.Columns {
				total, translated, pct := s.Table.Stats(i)
				name := culture.DisplayName(c.Locale)
				fmt.Fprintf(os.Stderr, "  %-*s %s  %d/%d  %s\n",
					labelWidth, c.Label(), progressBar(int(pct), 20), translated, total, name)
			}
			fmt.Fprintln(os.Stderr)
			return nil
		},
	}

	return cmd
}

// progressBar renders a colored bar of width cells followed by the percent.
func progressBar(percent, width int) string {
	percent = min(max(percent, 0), 100)
	filled := percent * width / 100

	color := colorRed
	switch {
	case percent >= 100:
		color = colorGreen
	case percent >= 50:
		color = colorYellow
	}
	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	return fmt.Sprintf("%s%s%s %3d%%", color, bar, colorReset, percent)
}

func newMissingCmd() *cobra.Command {
	var fail bool

	cmd := &cobra.Command{
		Use:   "missing <file.resx>",
		Short: "List keys without a translation",
		Long: `List every key and culture whose value is missing, empty or blank.

With --fail the command exits with an error when anything is missing,
which is useful in CI.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			gaps := s.Table.Missing()
			out := cmd.OutOrStdout()
			for _, g := range gaps {
				fmt.Fprintf(out, "%s\t%s\n", s.Table.Columns[g.Column].Label(), g.Key)
			}
			if len(gaps) == 0 {
				logSuccess("%s", i18n.T("All keys are translated"))
				return nil
			}
			msg := fmt.Sprintf(i18n.N("%d missing translation", "%d missing translations", len(gaps)), len(gaps))
			if fail {
				return errors.New(msg)
			}
			logWarning("%s", msg)
			return nil
		},
	}

	cmd.Flags().BoolVar(&fail, "fail", false, "Exit with an error when translations are missing")

	return cmd
}

// ---------------------------------------------------------------------------
// set / unset / comment / delete (edit and save)
// ---------------------------------------------------------------------------

func newSetCmd() *cobra.Command {
	var locale string

	cmd := &cobra.Command{
		Use:   "set <file.resx> <key> <value>",
		Short: "Set a value for one culture",
		Long: `Set the value of <key> in the --locale column and write back the changed file.

The key is created when it does not exist yet. An empty value removes the
key from that culture's file.`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if err := s.Set(args[1], locale, args[2]); err != nil {
				return err
			}
			return save(s)
		},
	}

	addLocaleFlag(cmd.Flags(), &locale)

	return cmd
}

func newUnsetCmd() *cobra.Command {
	var locale string

	cmd := &cobra.Command{
		Use:   "unset <file.resx> <key>",
		Short: "Remove a value for one culture",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if err := s.Unset(args[1], locale); err != nil {
				return err
			}
			return save(s)
		},
	}

	addLocaleFlag(cmd.Flags(), &locale)

	return cmd
}

func newCommentCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "comment <file.resx> <key> <text>",
		Short: "Set the comment of a key",
		Long: `Set the comment of <key>. The comment is shared by all cultures and is
written into every file that contains the key.`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if err := s.SetComment(args[1], args[2]); err != nil {
				return err
			}
			return save(s)
		},
	}

	return cmd
}

func newDeleteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <file.resx> <key>...",
		Short: "Remove keys from every file",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			for _, key := range args[1:] {
				if err := s.DeleteRow(key); err != nil {
					return err
				}
			}
			return save(s)
		},
	}

	return cmd
}

// ---------------------------------------------------------------------------
// export / import
// ---------------------------------------------------------------------------

func newExportCmd() *cobra.Command {
	var (
		format string
		output string
	)

	cmd := &cobra.Command{
		Use:   "export <file.resx>",
		Short: "Export the table as CSV, JSON, YAML or TOML",
		Long: `Export the merged table. CSV output can be edited in a spreadsheet and
applied back with 'resxkit import'.

The format defaults to the extension of --output, or csv.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if format == "" {
				format = formatFromPath(output)
			}

			if output == "" || output == "-" {
				return pivot.Export(cmd.OutOrStdout(), s.Table, format)
			}
			f, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("creating %s: %w", output, err)
			}
			if err := pivot.Export(f, s.Table, format); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return fmt.Errorf("writing %s: %w", output, err)
			}
			logSuccess(i18n.T("Exported %d keys to %s"), s.Table.Len(), output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "F", "", "Output format: "+strings.Join(pivot.Formats, ", "))
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default: stdout)")

	return cmd
}

// formatFromPath picks an export format from a file extension.
func formatFromPath(path string) string {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	if ext == "yml" {
		ext = pivot.FormatYAML
	}
	for _, f := range pivot.Formats {
		if f == ext {
			return f
		}
	}
	return pivot.FormatCSV
}

func newImportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <file.resx> <table.csv>",
		Short: "Apply a CSV export back to the files",
		Long: `Apply a CSV laid out like 'resxkit export --format csv' to the family.

Columns are matched by culture; cultures may be left out. Empty cells remove
the value. Keys not in the family are added. Only changed files are written.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			f, err := os.Open(args[1])
			if err != nil {
				return fmt.Errorf("opening %s: %w", args[1], err)
			}
			defer f.Close()

			n, err := s.Import(f)
			if err != nil {
				return fmt.Errorf("importing %s: %w", args[1], err)
			}
			logInfo(i18n.N("%d change imported", "%d changes imported", n), n)
			return save(s)
		},
	}

	return cmd
}

// ---------------------------------------------------------------------------
// recent
// ---------------------------------------------------------------------------

func newRecentCmd() *cobra.Command {
	var clearList bool

	cmd := &cobra.Command{
		Use:   "recent",
		Short: "List recently opened files",
		Long: `List recently opened resource files, newest first.

The list is kept in ` + "`$XDG_DATA_HOME/resxkit/recent.txt`" + `.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if clearList {
				if err := settings.ClearRecent(); err != nil {
					return err
				}
				logSuccess("%s", i18n.T("Recent files list cleared"))
				return nil
			}
			list := settings.LoadRecent()
			if len(list) == 0 {
				logInfo("%s", i18n.T("No recent files"))
				return nil
			}
			out := cmd.OutOrStdout()
			for _, p := range list {
				if fileExists(p) {
					fmt.Fprintln(out, p)
				} else {
					fmt.Fprintf(out, "%s %s(%s)%s\n", p, colorYellow, i18n.T("missing"), colorReset)
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&clearList, "clear", false, "Clear the list")

	return cmd
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

// fileExists returns true if the file exists and is not a directory.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// relPath shortens path relative to the working directory when that is
// shorter.
func relPath(path string) string {
	wd, err := os.Getwd()
	if err != nil {
		return path
	}
	rel, err := filepath.Rel(wd, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return path
	}
	return rel
}
