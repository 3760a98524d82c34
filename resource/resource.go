// Package resource defines the format-agnostic data model shared by all
// codec packages: a language identity, a single translatable entry, and an
// ordered file of entries.
//
// The model carries no behavior beyond ordering and lookup. Validity (unique
// keys, exactly one default language per set) is enforced by the codecs that
// produce and consume these values.
package resource

// ---------------------------------------------------------------------------
// Language
// ---------------------------------------------------------------------------

// Language identifies one resource file within a resource set.
type Language struct {
	// BaseName is the filename stem shared across all languages of a set
	// (e.g. "strings" for strings.json / strings.fr.json).
	BaseName string
	// Code is the locale identifier ("fr", "pt-BR"). Empty for the
	// default/fallback language.
	Code string
	// Name is a human-readable display name for Code. Derived, best-effort.
	Name string
	// Path is the backing file on disk.
	Path string
}

// IsDefault reports whether this is the default (fallback) language.
// The default language carries no code in its filename and is protected
// from deletion.
func (l Language) IsDefault() bool { return l.Code == "" }

// ---------------------------------------------------------------------------
// Entry
// ---------------------------------------------------------------------------

// Entry is one translatable unit.
type Entry struct {
	// Key is unique within a File, case-sensitive.
	Key string
	// Value may be empty (untranslated placeholder); the key itself is
	// still written out so every language file carries the full key set.
	Value string
	// Comment is optional. Formats without comment syntax drop it on
	// write and must not fabricate one on re-read.
	Comment string
}

// ---------------------------------------------------------------------------
// File
// ---------------------------------------------------------------------------

// File is one language's resource file: a Language plus its entries in
// document order. Insertion order is preserved through read and write so
// that output stays diff-stable under version control.
type File struct {
	Lang    Language
	entries []Entry
	index   map[string]int
}

// NewFile returns an empty File for the given language.
func NewFile(lang Language) *File {
	return &File{Lang: lang, index: make(map[string]int)}
}

// Add appends an entry. On a duplicate key the first occurrence wins: the
// existing entry keeps its position and content and Add reports false.
func (f *File) Add(e Entry) bool {
	if f.index == nil {
		f.index = make(map[string]int)
	}
	if _, exists := f.index[e.Key]; exists {
		return false
	}
	f.index[e.Key] = len(f.entries)
	f.entries = append(f.entries, e)
	return true
}

// Get returns the entry for key.
func (f *File) Get(key string) (Entry, bool) {
	idx, ok := f.index[key]
	if !ok {
		return Entry{}, false
	}
	return f.entries[idx], true
}

// Set updates the value (and comment) of an existing key, or appends a new
// entry when the key is not present yet.
func (f *File) Set(e Entry) {
	if idx, ok := f.index[e.Key]; ok {
		f.entries[idx] = e
		return
	}
	f.Add(e)
}

// Remove deletes the entry for key, preserving the order of the remaining
// entries. Reports whether the key existed.
func (f *File) Remove(key string) bool {
	idx, ok := f.index[key]
	if !ok {
		return false
	}
	f.entries = append(f.entries[:idx], f.entries[idx+1:]...)
	delete(f.index, key)
	for k, i := range f.index {
		if i > idx {
			f.index[k] = i - 1
		}
	}
	return true
}

// Keys returns all keys in document order.
func (f *File) Keys() []string {
	keys := make([]string, len(f.entries))
	for i, e := range f.entries {
		keys[i] = e.Key
	}
	return keys
}

// Entries returns the entries in document order. The returned slice is the
// file's backing store; callers must not reorder it.
func (f *File) Entries() []Entry {
	return f.entries
}

// Len returns the number of entries.
func (f *File) Len() int { return len(f.entries) }

// Stats returns (total, translated, untranslated) counts, where an entry
// counts as translated when its value is non-empty.
func (f *File) Stats() (total, translated, untranslated int) {
	total = len(f.entries)
	for _, e := range f.entries {
		if e.Value != "" {
			translated++
		} else {
			untranslated++
		}
	}
	return
}

// UntranslatedKeys returns keys with empty values, in document order.
func (f *File) UntranslatedKeys() []string {
	var keys []string
	for _, e := range f.entries {
		if e.Value == "" {
			keys = append(keys, e.Key)
		}
	}
	return keys
}

// Clone returns a deep copy of the file with a different language identity.
// Used when scaffolding a new language from an existing one.
func (f *File) Clone(lang Language) *File {
	nf := NewFile(lang)
	for _, e := range f.entries {
		nf.Add(e)
	}
	return nf
}
