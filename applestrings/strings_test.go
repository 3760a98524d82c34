package applestrings

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/localeworks/lrm/codec"
	"github.com/localeworks/lrm/resource"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestRead(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "en.lproj", "Localizable.strings")
	writeFile(t, path, `/* Shown on the start page */
"greeting" = "Hello";

"farewell" = "Goodbye";
`)

	c := &Codec{DefaultFolder: "en"}
	f, err := c.Read(path)
	if err != nil {
		t.Fatal(err)
	}

	want := []resource.Entry{
		{Key: "greeting", Value: "Hello", Comment: "Shown on the start page"},
		{Key: "farewell", Value: "Goodbye"},
	}
	if diff := cmp.Diff(want, f.Entries()); diff != "" {
		t.Errorf("entries mismatch (-want +got):\n%s", diff)
	}
	if !f.Lang.IsDefault() {
		t.Error("en.lproj not recognized as default folder")
	}
}

func TestReadMultiLineComment(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "en.lproj", "Localizable.strings")
	writeFile(t, path, `/* Line one
   line two */
"key" = "value";
`)

	c := &Codec{DefaultFolder: "en"}
	f, err := c.Read(path)
	if err != nil {
		t.Fatal(err)
	}
	e, _ := f.Get("key")
	if !strings.Contains(e.Comment, "Line one") || !strings.Contains(e.Comment, "line two") {
		t.Errorf("comment = %q", e.Comment)
	}
}

func TestRoundTripEscaping(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "en.lproj", "Localizable.strings")

	c := &Codec{DefaultFolder: "en"}
	f := resource.NewFile(resource.Language{BaseName: "Localizable", Path: path})
	f.Add(resource.Entry{Key: "quote", Value: `say "hi"`})
	f.Add(resource.Entry{Key: "backslash", Value: `C:\path\file`})
	f.Add(resource.Entry{Key: "newline", Value: "line1\nline2"})
	f.Add(resource.Entry{Key: "tab", Value: "col1\tcol2"})
	f.Add(resource.Entry{Key: "key with spaces", Value: "x", Comment: "note"})

	if err := c.Write(f); err != nil {
		t.Fatal(err)
	}

	data, _ := os.ReadFile(path)
	if !strings.Contains(string(data), `"say \"hi\""`) {
		t.Errorf("quotes not escaped:\n%s", data)
	}
	if !strings.Contains(string(data), `C:\\path\\file`) {
		t.Errorf("backslashes not escaped:\n%s", data)
	}

	back, err := c.Read(path)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(f.Entries(), back.Entries()); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestRoundTripComments(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "fr.lproj", "Localizable.strings")

	c := &Codec{DefaultFolder: "en"}
	f := resource.NewFile(resource.Language{BaseName: "Localizable", Code: "fr", Path: path})
	f.Add(resource.Entry{Key: "a", Value: "1", Comment: "first"})
	f.Add(resource.Entry{Key: "b", Value: "2"})
	f.Add(resource.Entry{Key: "c", Value: "", Comment: "untranslated"})

	if err := c.Write(f); err != nil {
		t.Fatal(err)
	}
	back, err := c.Read(path)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(f.Entries(), back.Entries()); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestDuplicateKeysFirstWins(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "en.lproj", "Localizable.strings")
	writeFile(t, path, "\"a\" = \"first\";\n\"a\" = \"second\";\n")

	c := &Codec{DefaultFolder: "en"}
	f, err := c.Read(path)
	if err != nil {
		t.Fatal(err)
	}
	if f.Len() != 1 {
		t.Errorf("Len = %d, want 1", f.Len())
	}
	if e, _ := f.Get("a"); e.Value != "first" {
		t.Errorf("value = %q, want first", e.Value)
	}
}

func TestReadNotFound(t *testing.T) {
	c := &Codec{DefaultFolder: "en"}
	_, err := c.Read(filepath.Join(t.TempDir(), "en.lproj", "Localizable.strings"))
	if !errors.Is(err, codec.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestReadMalformedLine(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "en.lproj", "Localizable.strings")
	writeFile(t, path, "\"ok\" = \"fine\";\n\"broken\" = no quotes;\n")

	c := &Codec{DefaultFolder: "en"}
	_, err := c.Read(path)
	var pe *codec.ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("err = %v, want *codec.ParseError", err)
	}
	if pe.Line != 2 {
		t.Errorf("line = %d, want 2", pe.Line)
	}
}

func TestReadUnterminatedComment(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "en.lproj", "Localizable.strings")
	writeFile(t, path, "/* never closed\n\"a\" = \"1\";\n")

	c := &Codec{DefaultFolder: "en"}
	_, err := c.Read(path)
	var pe *codec.ParseError
	if !errors.As(err, &pe) {
		t.Errorf("err = %v, want *codec.ParseError", err)
	}
}

func TestDiscoverWithEnDefault(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "en.lproj", "Localizable.strings"), "")
	writeFile(t, filepath.Join(dir, "fr.lproj", "Localizable.strings"), "")
	writeFile(t, filepath.Join(dir, "de.lproj", "Localizable.strings"), "")
	writeFile(t, filepath.Join(dir, "junk.lproj", "Localizable.strings"), "")
	writeFile(t, filepath.Join(dir, "fr.lproj", "Other.strings"), "")

	c := &Codec{DefaultFolder: "en"}
	langs, err := c.Discover(dir, "Localizable")
	if err != nil {
		t.Fatal(err)
	}
	if len(langs) != 3 {
		t.Fatalf("discovered %d languages, want 3: %+v", len(langs), langs)
	}
	defaults := 0
	for _, l := range langs {
		if l.IsDefault() {
			defaults++
		}
	}
	if defaults != 1 {
		t.Errorf("defaults = %d, want 1", defaults)
	}
}

func TestDiscoverWithBaseDefault(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "Base.lproj", "Localizable.strings"), "")
	writeFile(t, filepath.Join(dir, "en.lproj", "Localizable.strings"), "")

	c := &Codec{DefaultFolder: "Base"}
	langs, err := c.Discover(dir, "Localizable")
	if err != nil {
		t.Fatal(err)
	}
	if len(langs) != 2 {
		t.Fatalf("discovered %d languages, want 2: %+v", len(langs), langs)
	}
	// Base.lproj is the default; en.lproj is an ordinary language.
	var sawDefault, sawEn bool
	for _, l := range langs {
		if l.IsDefault() {
			sawDefault = true
		}
		if l.Code == "en" {
			sawEn = true
		}
	}
	if !sawDefault || !sawEn {
		t.Errorf("langs = %+v", langs)
	}
}

func TestPathFor(t *testing.T) {
	c := &Codec{DefaultFolder: "Base"}
	if got := c.PathFor("res", "Localizable", ""); got != filepath.Join("res", "Base.lproj", "Localizable.strings") {
		t.Errorf("default path = %q", got)
	}
	if got := c.PathFor("res", "Localizable", "fr"); got != filepath.Join("res", "fr.lproj", "Localizable.strings") {
		t.Errorf("fr path = %q", got)
	}
}
