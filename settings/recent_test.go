package settings

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestDataDirAndRecentPathUseXDGDataHome(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv("XDG_DATA_HOME", tmp)

	dir, err := DataDir()
	if err != nil {
		t.Fatalf("DataDir() error: %v", err)
	}
	wantDir := filepath.Join(tmp, "resxkit")
	if dir != wantDir {
		t.Fatalf("DataDir() = %q, want %q", dir, wantDir)
	}

	wantPath := filepath.Join(tmp, "resxkit", "recent.txt")
	if got := RecentPath(); got != wantPath {
		t.Fatalf("RecentPath() = %q, want %q", got, wantPath)
	}
}

func TestDataDirFallsBackToHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("XDG_DATA_HOME", "")
	t.Setenv("HOME", home)

	dir, err := DataDir()
	if err != nil {
		t.Fatalf("DataDir() error: %v", err)
	}
	want := filepath.Join(home, ".local", "share", "resxkit")
	if dir != want {
		t.Fatalf("DataDir() = %q, want %q", dir, want)
	}
}

func TestAddRecentOrderDedupeAndLimit(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv("XDG_DATA_HOME", tmp)

	if got := LoadRecent(); got != nil {
		t.Fatalf("LoadRecent() on empty store = %#v, want nil", got)
	}

	a := filepath.Join(tmp, "a", "Strings.resx")
	b := filepath.Join(tmp, "b", "Strings.resx")
	c := filepath.Join(tmp, "c", "Strings.resx")

	for _, p := range []string{a, b, c} {
		if _, err := AddRecent(p, 2); err != nil {
			t.Fatalf("AddRecent(%q) error: %v", p, err)
		}
	}
	if got, want := LoadRecent(), []string{c, b}; !reflect.DeepEqual(got, want) {
		t.Fatalf("LoadRecent() = %#v, want %#v", got, want)
	}

	got, err := AddRecent(b, 2)
	if err != nil {
		t.Fatalf("AddRecent(b) error: %v", err)
	}
	if want := []string{b, c}; !reflect.DeepEqual(got, want) {
		t.Fatalf("AddRecent(b) = %#v, want %#v", got, want)
	}

	info, err := os.Stat(RecentPath())
	if err != nil {
		t.Fatalf("stat recent.txt: %v", err)
	}
	if info.Mode().Perm() != 0600 {
		t.Fatalf("recent.txt mode = %o, want 600", info.Mode().Perm())
	}
}

func TestAddRecentMakesPathAbsolute(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv("XDG_DATA_HOME", tmp)
	t.Chdir(tmp)

	got, err := AddRecent("Strings.resx", 0)
	if err != nil {
		t.Fatalf("AddRecent() error: %v", err)
	}
	want, _ := filepath.Abs("Strings.resx")
	if len(got) != 1 || got[0] != want {
		t.Fatalf("AddRecent() = %#v, want [%q]", got, want)
	}
}

func TestLoadRecentSkipsBlankAndDuplicateLines(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv("XDG_DATA_HOME", tmp)

	path := RecentPath()
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("/x.resx\n\n  \n/y.resx\n/x.resx\n"), 0600); err != nil {
		t.Fatal(err)
	}
	if got, want := LoadRecent(), []string{"/x.resx", "/y.resx"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("LoadRecent() = %#v, want %#v", got, want)
	}
}

func TestClearRecent(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv("XDG_DATA_HOME", tmp)

	if err := ClearRecent(); err != nil {
		t.Fatalf("ClearRecent() on missing file should be no-op, got: %v", err)
	}
	if _, err := AddRecent(filepath.Join(tmp, "S.resx"), 5); err != nil {
		t.Fatal(err)
	}
	if err := ClearRecent(); err != nil {
		t.Fatalf("ClearRecent() error: %v", err)
	}
	if _, err := os.Stat(RecentPath()); !os.IsNotExist(err) {
		t.Fatalf("recent.txt should be removed, stat err=%v", err)
	}
	if got := LoadRecent(); len(got) != 0 {
		t.Fatalf("LoadRecent() after ClearRecent should be empty, got=%#v", got)
	}
}
