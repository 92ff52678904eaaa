// Package culture resolves locale identifiers from resource file names.
//
// A resource family shares one logical base name and differs only by an
// optional ".{locale}" suffix before the extension:
//
//	Strings.resx        (neutral)
//	Strings.fr.resx     (fr)
//	Strings.de-DE.resx  (de-DE)
//
// Suffixes are resolved, without canonicalization, against the registry in
// golang.org/x/text, after the legacy .NET names zh-CHS and zh-CHT. A
// suffix the registry does not know is not an error:
// the whole name is then the base name and the file has no locale.
package culture

import (
	"path/filepath"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// Locale is either a resolved language tag or None (the neutral file).
type Locale struct {
	tag language.Tag
	// name is the identifier as written ("zh-CHT", "iw"); it labels the
	// locale so that distinct files never share a label.
	name string
	ok   bool
}

// None is the locale of a neutral (suffix-less) resource file.
var None = Locale{}

// legacy maps .NET culture names that are not BCP 47 to their tags.
var legacy = map[string]language.Tag{
	"zh-chs": language.Raw.MustParse("zh-Hans"),
	"zh-cht": language.Raw.MustParse("zh-Hant"),
}

// Of wraps a tag. language.Und maps to None.
func Of(tag language.Tag) Locale {
	if tag == language.Und {
		return None
	}
	return Locale{tag: tag, name: tag.String(), ok: true}
}

// Tag returns the underlying tag and whether the locale is set.
func (l Locale) Tag() (language.Tag, bool) { return l.tag, l.ok }

// IsNone reports whether l is the neutral locale.
func (l Locale) IsNone() bool { return !l.ok }

// String returns the identifier as it was written ("fr", "de-DE",
// "zh-CHT"), or "" for None.
func (l Locale) String() string {
	if !l.ok {
		return ""
	}
	return l.name
}

// Equal compares two locales by tag.
func (l Locale) Equal(o Locale) bool {
	return l.ok == o.ok && (!l.ok || l.tag == o.tag)
}

// Parse resolves a single locale identifier. Ill-formed and unknown
// identifiers yield None; "und" also yields None. Tags are not
// canonicalized, so deprecated codes such as "iw" stay distinct from "he".
func Parse(s string) Locale {
	s = strings.TrimSpace(s)
	if s == "" {
		return None
	}
	if tag, ok := legacy[strings.ToLower(s)]; ok {
		return Locale{tag: tag, name: s, ok: true}
	}
	tag, err := language.Raw.Parse(s)
	if err != nil || tag == language.Und {
		return None
	}
	return Locale{tag: tag, name: s, ok: true}
}

// ParseSuffix splits a file name without extension into its logical base
// name and locale. Only the last dot-separated segment is considered.
//
//	"Strings.fr"                → "Strings", fr
//	"Strings.xx-notareallocale" → "Strings.xx-notareallocale", None
//	"Strings"                   → "Strings", None
func ParseSuffix(name string) (base string, loc Locale) {
	idx := strings.LastIndexByte(name, '.')
	if idx < 0 {
		return name, None
	}
	loc = Parse(name[idx+1:])
	if loc.IsNone() {
		return name, None
	}
	return name[:idx], loc
}

// ParseFileName is ParseSuffix applied to a path: the directory and the
// extension are stripped first.
func ParseFileName(path string) (base string, loc Locale) {
	name := filepath.Base(path)
	name = strings.TrimSuffix(name, filepath.Ext(name))
	return ParseSuffix(name)
}

// DisplayName returns the locale's name in its own language
// ("français", "Deutsch (Deutschland)"). None yields "".
func DisplayName(l Locale) string {
	if !l.ok {
		return ""
	}
	if name := display.Self.Name(l.tag); name != "" {
		return name
	}
	return l.tag.String()
}
