package jsonfile

import (
	"errors"
	"os"
	"path/filepath"
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

func TestReadFlat(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "strings.json")
	writeFile(t, path, `{
    "app.title": "My App",
    "app.exit": "Quit"
}`)

	c := &Codec{}
	f, err := c.Read(path)
	if err != nil {
		t.Fatal(err)
	}

	want := []resource.Entry{
		{Key: "app.title", Value: "My App"},
		{Key: "app.exit", Value: "Quit"},
	}
	if diff := cmp.Diff(want, f.Entries()); diff != "" {
		t.Errorf("entries mismatch (-want +got):\n%s", diff)
	}
}

func TestReadNestedFlattens(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "strings.json")
	writeFile(t, path, `{
    "app": {
        "title": "My App",
        "menu": {
            "exit": "Quit"
        }
    },
    "greeting": "Hello"
}`)

	c := &Codec{}
	f, err := c.Read(path)
	if err != nil {
		t.Fatal(err)
	}

	want := []resource.Entry{
		{Key: "app.title", Value: "My App"},
		{Key: "app.menu.exit", Value: "Quit"},
		{Key: "greeting", Value: "Hello"},
	}
	if diff := cmp.Diff(want, f.Entries()); diff != "" {
		t.Errorf("entries mismatch (-want +got):\n%s", diff)
	}
}

func TestRoundTripFlat(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "strings.json")

	c := &Codec{}
	f := resource.NewFile(resource.Language{BaseName: "strings", Path: path})
	f.Add(resource.Entry{Key: "zebra", Value: `quote " backslash \ done`})
	f.Add(resource.Entry{Key: "apple", Value: "line\nbreak\ttab"})
	f.Add(resource.Entry{Key: "empty", Value: ""})

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

func TestRoundTripNested(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "strings.json")

	c := &Codec{Nested: true}
	f := resource.NewFile(resource.Language{BaseName: "strings", Path: path})
	f.Add(resource.Entry{Key: "app.title", Value: "My App"})
	f.Add(resource.Entry{Key: "app.menu.exit", Value: "Quit"})
	f.Add(resource.Entry{Key: "app.menu.open", Value: "Open"})
	f.Add(resource.Entry{Key: "greeting", Value: "Hello"})

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

func TestRoundTripCommentsFlat(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "strings.json")

	c := &Codec{IncludeMeta: true, PreserveComments: true}
	f := resource.NewFile(resource.Language{BaseName: "strings", Path: path})
	f.Add(resource.Entry{Key: "greeting", Value: "Hello", Comment: "Shown on the start page"})
	f.Add(resource.Entry{Key: "farewell", Value: "Bye"})

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

func TestRoundTripCommentsNested(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "strings.json")

	c := &Codec{Nested: true, IncludeMeta: true, PreserveComments: true}
	f := resource.NewFile(resource.Language{BaseName: "strings", Path: path})
	f.Add(resource.Entry{Key: "app.title", Value: "My App", Comment: "Window header"})
	f.Add(resource.Entry{Key: "app.exit", Value: "Quit"})

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

func TestCommentsDroppedWithoutMeta(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "strings.json")

	c := &Codec{}
	f := resource.NewFile(resource.Language{BaseName: "strings", Path: path})
	f.Add(resource.Entry{Key: "greeting", Value: "Hello", Comment: "dropped"})

	if err := c.Write(f); err != nil {
		t.Fatal(err)
	}
	back, err := c.Read(path)
	if err != nil {
		t.Fatal(err)
	}
	e, _ := back.Get("greeting")
	if e.Comment != "" {
		t.Errorf("comment fabricated on lossy re-read: %q", e.Comment)
	}
}

func TestRoundTripAtPrefixedKey(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "strings.json")

	c := &Codec{}
	f := resource.NewFile(resource.Language{BaseName: "strings", Path: path})
	f.Add(resource.Entry{Key: "@handle", Value: "user mention"})
	f.Add(resource.Entry{Key: "greeting", Value: "Hello"})

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

func TestReadAtKeyEntryBesideMetadata(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "strings.json")
	writeFile(t, path, `{
    "greeting": "Hello",
    "@greeting": { "description": "Shown on the start page" },
    "@handle": "user mention"
}`)

	c := &Codec{PreserveComments: true}
	f, err := c.Read(path)
	if err != nil {
		t.Fatal(err)
	}

	want := []resource.Entry{
		{Key: "greeting", Value: "Hello", Comment: "Shown on the start page"},
		{Key: "@handle", Value: "user mention"},
	}
	if diff := cmp.Diff(want, f.Entries()); diff != "" {
		t.Errorf("entries mismatch (-want +got):\n%s", diff)
	}
}

func TestDuplicateKeysFirstWins(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "strings.json")
	writeFile(t, path, `{"a": "first", "a": "second"}`)

	c := &Codec{}
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
	c := &Codec{}
	_, err := c.Read(filepath.Join(t.TempDir(), "missing.json"))
	if !errors.Is(err, codec.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestReadMalformed(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "strings.json")
	writeFile(t, path, "{\n    \"a\": \"1\",\n    oops\n}")

	c := &Codec{}
	_, err := c.Read(path)
	var pe *codec.ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("err = %v, want *codec.ParseError", err)
	}
	if pe.Line < 2 {
		t.Errorf("line = %d, want location near line 3", pe.Line)
	}
}

func TestReadNonStringValue(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "strings.json")
	writeFile(t, path, `{"a": 42}`)

	c := &Codec{}
	_, err := c.Read(path)
	var pe *codec.ParseError
	if !errors.As(err, &pe) {
		t.Errorf("err = %v, want *codec.ParseError", err)
	}
}

func TestWriteNestedKeyConflict(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "strings.json")

	c := &Codec{Nested: true}
	f := resource.NewFile(resource.Language{BaseName: "strings", Path: path})
	f.Add(resource.Entry{Key: "a", Value: "leaf"})
	f.Add(resource.Entry{Key: "a.b", Value: "branch"})

	if err := c.Write(f); err == nil {
		t.Error("Write succeeded with conflicting flat and nested keys")
	}
}

func TestDiscover(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "strings.json"), "{}")
	writeFile(t, filepath.Join(dir, "strings.fr.json"), "{}")
	writeFile(t, filepath.Join(dir, "strings.de.json"), "{}")
	writeFile(t, filepath.Join(dir, "other.json"), "{}")
	writeFile(t, filepath.Join(dir, "strings.notacode.json"), "{}")
	writeFile(t, filepath.Join(dir, "README.md"), "")

	c := &Codec{}
	langs, err := c.Discover(dir, "strings")
	if err != nil {
		t.Fatal(err)
	}
	if len(langs) != 3 {
		t.Fatalf("discovered %d languages, want 3: %+v", len(langs), langs)
	}

	defaults := 0
	codes := map[string]bool{}
	for _, l := range langs {
		codes[l.Code] = true
		if l.IsDefault() {
			defaults++
		}
	}
	if defaults != 1 {
		t.Errorf("defaults = %d, want exactly 1", defaults)
	}
	for _, code := range []string{"", "fr", "de"} {
		if !codes[code] {
			t.Errorf("code %q not discovered", code)
		}
	}
}

func TestDiscoverEmptyRoot(t *testing.T) {
	c := &Codec{}
	langs, err := c.Discover(filepath.Join(t.TempDir(), "nope"), "strings")
	if err != nil {
		t.Fatal(err)
	}
	if len(langs) != 0 {
		t.Errorf("langs = %v, want empty", langs)
	}
}

func TestPathFor(t *testing.T) {
	c := &Codec{}
	if got := c.PathFor("res", "strings", ""); got != filepath.Join("res", "strings.json") {
		t.Errorf("default path = %q", got)
	}
	if got := c.PathFor("res", "strings", "fr"); got != filepath.Join("res", "strings.fr.json") {
		t.Errorf("fr path = %q", got)
	}
}
