package i18n

import (
	"reflect"
	"testing"
)

func clearLocaleEnv(t *testing.T) {
	t.Helper()
	t.Setenv("LANGUAGE", "")
	t.Setenv("LC_ALL", "")
	t.Setenv("LC_MESSAGES", "")
	t.Setenv("LANG", "")
}

func restore(t *testing.T) {
	t.Helper()
	oldPo, oldActive := po, active
	t.Cleanup(func() { po, active = oldPo, oldActive })
}

func TestDetectLanguagePriorityAndNormalization(t *testing.T) {
	t.Run("LANGUAGE has highest priority", func(t *testing.T) {
		clearLocaleEnv(t)
		t.Setenv("LANGUAGE", "ru_RU.UTF-8:en_US")
		t.Setenv("LC_ALL", "de_DE.UTF-8")

		if got := detectLanguage(); got != "ru_RU" {
			t.Fatalf("detectLanguage() = %q, want %q", got, "ru_RU")
		}
	})

	t.Run("C and POSIX are skipped", func(t *testing.T) {
		clearLocaleEnv(t)
		t.Setenv("LANGUAGE", "C")
		t.Setenv("LC_ALL", "POSIX")
		t.Setenv("LC_MESSAGES", "fr_FR.UTF-8")

		if got := detectLanguage(); got != "fr_FR" {
			t.Fatalf("detectLanguage() = %q, want %q", got, "fr_FR")
		}
	})

	t.Run("falls back to en", func(t *testing.T) {
		clearLocaleEnv(t)
		if got := detectLanguage(); got != "en" {
			t.Fatalf("detectLanguage() = %q, want %q", got, "en")
		}
	})
}

func TestAvailable(t *testing.T) {
	if got, want := Available(), []string{"ru"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("Available() = %#v, want %#v", got, want)
	}
}

func TestMatch(t *testing.T) {
	available := []string{"de", "ru"}
	tests := map[string]string{
		"ru":    "ru",
		"ru_RU": "ru",
		"de-AT": "de",
		"en_US": "en",
		"ja":    "en",
		"!!":    "en",
	}
	for in, want := range tests {
		if got := match(in, available); got != want {
			t.Fatalf("match(%q) = %q, want %q", in, got, want)
		}
	}
	if got := match("ru", nil); got != "en" {
		t.Fatalf("match(ru, nil) = %q, want en", got)
	}
}

func TestInitRussian(t *testing.T) {
	restore(t)
	Init("ru_RU")

	if Active() != "ru" {
		t.Fatalf("Active() = %q, want ru", Active())
	}
	if got, want := T("Nothing changed"), "Изменений нет"; got != want {
		t.Fatalf("T() = %q, want %q", got, want)
	}
	if got, want := N("%d missing translation", "%d missing translations", 5), "%d отсутствующих переводов"; got != want {
		t.Fatalf("N(5) = %q, want %q", got, want)
	}
	if got, want := N("%d missing translation", "%d missing translations", 2), "%d отсутствующих перевода"; got != want {
		t.Fatalf("N(2) = %q, want %q", got, want)
	}
	if got := T("untranslated message"); got != "untranslated message" {
		t.Fatalf("T(untranslated) = %q", got)
	}
}

func TestInitEnglishPassthrough(t *testing.T) {
	restore(t)
	Init("en_GB")

	if Active() != "en" {
		t.Fatalf("Active() = %q, want en", Active())
	}
	if got := N("file", "files", 2); got != "files" {
		t.Fatalf("N plural = %q, want %q", got, "files")
	}
}

func TestTAndNFallbackWhenUninitialized(t *testing.T) {
	restore(t)
	po = nil

	if got := T("Hello"); got != "Hello" {
		t.Fatalf("T fallback = %q, want %q", got, "Hello")
	}

	if got := N("file", "files", 1); got != "file" {
		t.Fatalf("N singular fallback = %q, want %q", got, "file")
	}

	if got := N("file", "files", 2); got != "files" {
		t.Fatalf("N plural fallback = %q, want %q", got, "files")
	}
}
