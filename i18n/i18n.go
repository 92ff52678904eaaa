// Package i18n translates resxkit's own user-facing messages.
//
// It wraps gotext with T() and N(). Catalogs are embedded from
// locales/{lang}/LC_MESSAGES/resxkit.po and selected at startup by Init().
//
// Usage:
//
//	i18n.Init("")  // auto-detect from LANGUAGE/LC_ALL/LC_MESSAGES/LANG
//	fmt.Println(i18n.T("Nothing changed"))
//	fmt.Printf(i18n.N("%d change imported", "%d changes imported", n), n)
package i18n

import (
	"embed"
	"io/fs"
	"os"
	"sort"
	"strings"

	"github.com/leonelquinteros/gotext"
	"golang.org/x/text/language"
)

//go:embed all:locales
var locales embed.FS

// domain is the gettext domain name for resxkit.
const domain = "resxkit"

// sourceLang is the language the msgids are written in.
const sourceLang = "en"

var (
	po     *gotext.Locale
	active = sourceLang
)

// Init selects the catalog closest to lang. If lang is empty, it is
// detected from LANGUAGE, LC_ALL, LC_MESSAGES, LANG (in that order,
// matching GNU gettext). Without a usable catalog, T and N pass their
// input through.
//
// Init should be called once at program startup, before any T() or N() calls.
func Init(lang string) {
	if lang == "" {
		lang = detectLanguage()
	}
	active = match(lang, Available())
	if active == sourceLang {
		po = nil
		return
	}

	po = gotext.NewLocaleFSWithPath(active, locales, "locales")
	po.AddDomain(domain)
	po.SetDomain(domain)
}

// Active returns the catalog chosen by the last Init ("en" when none).
func Active() string { return active }

// Available lists the embedded catalogs.
func Available() []string {
	entries, err := fs.ReadDir(locales, "locales")
	if err != nil {
		return nil
	}
	var langs []string
	for _, e := range entries {
		if e.IsDir() {
			langs = append(langs, e.Name())
		}
	}
	sort.Strings(langs)
	return langs
}

// match picks the catalog in available that best fits lang, or sourceLang.
// POSIX names like "ru_RU" are accepted.
func match(lang string, available []string) string {
	want, err := language.Parse(strings.ReplaceAll(lang, "_", "-"))
	if err != nil || len(available) == 0 {
		return sourceLang
	}
	tags := []language.Tag{language.Make(sourceLang)}
	for _, a := range available {
		tags = append(tags, language.Make(a))
	}
	_, idx, conf := language.NewMatcher(tags).Match(want)
	if conf == language.No || idx == 0 {
		return sourceLang
	}
	return available[idx-1]
}

// T translates a string. If no translation is available, returns the
// original string unchanged (standard gettext passthrough behavior).
func T(msgid string) string {
	if po == nil {
		return msgid
	}
	return po.Get(msgid)
}

// N translates a string with plural forms. The singular form is used
// when n == 1, the plural form otherwise (exact rules depend on the
// target language's plural formula).
func N(singular, plural string, n int) string {
	if po == nil {
		if n == 1 {
			return singular
		}
		return plural
	}
	return po.GetN(singular, plural, n)
}

// detectLanguage reads environment variables to determine the user's
// preferred language, following GNU gettext conventions.
func detectLanguage() string {
	// GNU gettext priority: LANGUAGE > LC_ALL > LC_MESSAGES > LANG
	for _, env := range []string{"LANGUAGE", "LC_ALL", "LC_MESSAGES", "LANG"} {
		if val := os.Getenv(env); val != "" {
			// LANGUAGE can be a colon-separated list; take the first
			if env == "LANGUAGE" {
				val, _, _ = strings.Cut(val, ":")
			}
			// Strip encoding suffix (e.g. "ru_RU.UTF-8" -> "ru_RU")
			if idx := strings.IndexByte(val, '.'); idx >= 0 {
				val = val[:idx]
			}
			// Skip "C" and "POSIX", these mean no translation
			if val == "C" || val == "POSIX" || val == "" {
				continue
			}
			return val
		}
	}
	return sourceLang
}
