package resource

import "testing"

func TestAddDuplicateFirstWins(t *testing.T) {
	f := NewFile(Language{BaseName: "strings"})
	if !f.Add(Entry{Key: "greeting", Value: "Hello"}) {
		t.Fatal("first Add returned false")
	}
	if f.Add(Entry{Key: "greeting", Value: "Hi"}) {
		t.Error("duplicate Add returned true")
	}
	e, _ := f.Get("greeting")
	if e.Value != "Hello" {
		t.Errorf("value = %q, want %q (first wins)", e.Value, "Hello")
	}
	if f.Len() != 1 {
		t.Errorf("Len = %d, want 1", f.Len())
	}
}

func TestKeysDocumentOrder(t *testing.T) {
	f := NewFile(Language{})
	f.Add(Entry{Key: "zebra"})
	f.Add(Entry{Key: "apple"})
	f.Add(Entry{Key: "mango"})

	keys := f.Keys()
	want := []string{"zebra", "apple", "mango"}
	for i, k := range want {
		if keys[i] != k {
			t.Fatalf("Keys = %v, want %v", keys, want)
		}
	}
}

func TestRemovePreservesOrder(t *testing.T) {
	f := NewFile(Language{})
	f.Add(Entry{Key: "a"})
	f.Add(Entry{Key: "b"})
	f.Add(Entry{Key: "c"})

	if !f.Remove("b") {
		t.Fatal("Remove returned false for existing key")
	}
	keys := f.Keys()
	if len(keys) != 2 || keys[0] != "a" || keys[1] != "c" {
		t.Errorf("Keys after Remove = %v, want [a c]", keys)
	}
	// Index must stay consistent after the shift.
	e, ok := f.Get("c")
	if !ok || e.Key != "c" {
		t.Errorf("Get(c) after Remove = %v, %v", e, ok)
	}
	if f.Remove("b") {
		t.Error("Remove returned true for missing key")
	}
}

func TestSetUpdatesAndAppends(t *testing.T) {
	f := NewFile(Language{})
	f.Add(Entry{Key: "a", Value: "1"})
	f.Set(Entry{Key: "a", Value: "2"})
	if e, _ := f.Get("a"); e.Value != "2" {
		t.Errorf("Set did not update: %q", e.Value)
	}
	f.Set(Entry{Key: "b", Value: "3"})
	if f.Len() != 2 {
		t.Errorf("Len = %d, want 2", f.Len())
	}
}

func TestStats(t *testing.T) {
	f := NewFile(Language{})
	f.Add(Entry{Key: "a", Value: "x"})
	f.Add(Entry{Key: "b"})
	f.Add(Entry{Key: "c", Value: "y"})

	total, translated, untranslated := f.Stats()
	if total != 3 || translated != 2 || untranslated != 1 {
		t.Errorf("Stats = (%d, %d, %d), want (3, 2, 1)", total, translated, untranslated)
	}
	if got := f.UntranslatedKeys(); len(got) != 1 || got[0] != "b" {
		t.Errorf("UntranslatedKeys = %v, want [b]", got)
	}
}

func TestIsDefault(t *testing.T) {
	if !(Language{Code: ""}).IsDefault() {
		t.Error("empty code not default")
	}
	if (Language{Code: "fr"}).IsDefault() {
		t.Error("fr reported as default")
	}
}

func TestClone(t *testing.T) {
	f := NewFile(Language{Code: ""})
	f.Add(Entry{Key: "a", Value: "1", Comment: "note"})

	c := f.Clone(Language{Code: "fr"})
	if c.Lang.Code != "fr" {
		t.Errorf("clone code = %q", c.Lang.Code)
	}
	e, ok := c.Get("a")
	if !ok || e.Value != "1" || e.Comment != "note" {
		t.Errorf("clone entry = %+v", e)
	}

	// Mutating the clone must not touch the original.
	c.Set(Entry{Key: "a", Value: "2"})
	if e, _ := f.Get("a"); e.Value != "1" {
		t.Error("clone mutation leaked into original")
	}
}
