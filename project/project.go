// Package project implements the mutating operations on a resource
// project: scaffolding, language add/remove, and key add/remove.
//
// Every destructive operation snapshots the affected file through the
// backup store before touching it; a failed snapshot aborts the mutation.
// The default language's file is protected: removing it fails before any
// backup or filesystem change.
package project

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/localeworks/lrm/backup"
	"github.com/localeworks/lrm/codec"
	"github.com/localeworks/lrm/config"
	"github.com/localeworks/lrm/culture"
	"github.com/localeworks/lrm/resource"
)

// ErrDefaultLanguageProtected is returned when an operation would delete
// the default language's file.
var ErrDefaultLanguageProtected = errors.New("default language is protected")

// ErrLanguageExists is returned by AddLanguage for an already-present code.
var ErrLanguageExists = errors.New("language already exists")

// ErrLanguageNotFound is returned for a code with no backing file.
var ErrLanguageNotFound = errors.New("language not found")

// ErrKeyExists is returned by AddKey when the default file already has the key.
var ErrKeyExists = errors.New("key already exists")

// ErrKeyNotFound is returned by RemoveKey when no file has the key.
var ErrKeyNotFound = errors.New("key not found")

// ErrInvalidCulture is returned for a malformed language code.
var ErrInvalidCulture = errors.New("invalid culture code")

// Project is one opened resource project.
type Project struct {
	Root    string
	Config  *config.Config
	Codec   codec.Codec
	Backups *backup.Store
}

// Open loads lrm.json from root and wires up the configured codec and the
// backup store.
func Open(root string) (*Project, error) {
	cfg, err := config.Load(root)
	if err != nil {
		return nil, err
	}
	cdc, err := cfg.Codec()
	if err != nil {
		return nil, err
	}
	return &Project{
		Root:    root,
		Config:  cfg,
		Codec:   cdc,
		Backups: backup.Open(root, cfg.Retention()),
	}, nil
}

// Init scaffolds a new project in root: writes lrm.json and one resource
// file per language (the default plus codes), each containing the full
// (initially empty) key set. Fails when root already has an lrm.json.
func Init(root string, cfg *config.Config, codes []string) (*Project, error) {
	if _, err := config.Load(root); err == nil {
		return nil, fmt.Errorf("project already initialized in %s", root)
	} else if !errors.Is(err, config.ErrNotFound) {
		return nil, err
	}

	for _, code := range codes {
		if _, ok := culture.Valid(code); !ok {
			return nil, fmt.Errorf("%w: %q", ErrInvalidCulture, code)
		}
	}

	cdc, err := cfg.Codec()
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("creating %s: %w", root, err)
	}
	if err := cfg.Save(root); err != nil {
		return nil, err
	}

	base := cfg.BaseName()
	write := func(code string) error {
		lang := resource.Language{
			BaseName: base,
			Code:     code,
			Path:     cdc.PathFor(root, base, code),
		}
		if c, ok := culture.Valid(code); ok {
			lang.Name = c.Name
		}
		return cdc.Write(resource.NewFile(lang))
	}
	if err := write(""); err != nil {
		return nil, err
	}
	for _, code := range codes {
		if err := write(code); err != nil {
			return nil, err
		}
	}

	return &Project{
		Root:    root,
		Config:  cfg,
		Codec:   cdc,
		Backups: backup.Open(root, cfg.Retention()),
	}, nil
}

// ---------------------------------------------------------------------------
// Discovery
// ---------------------------------------------------------------------------

// Languages discovers the project's resource files, default language
// first, the rest sorted by code.
func (p *Project) Languages() ([]resource.Language, error) {
	langs, err := p.Codec.Discover(p.Root, p.Config.BaseName())
	if err != nil {
		return nil, err
	}
	sort.Slice(langs, func(i, j int) bool {
		if langs[i].IsDefault() != langs[j].IsDefault() {
			return langs[i].IsDefault()
		}
		return langs[i].Code < langs[j].Code
	})
	return langs, nil
}

// language returns the discovered language for code ("" for the default).
func (p *Project) language(code string) (resource.Language, error) {
	langs, err := p.Languages()
	if err != nil {
		return resource.Language{}, err
	}
	for _, l := range langs {
		if l.Code == code {
			return l, nil
		}
	}
	if code == "" {
		return resource.Language{}, fmt.Errorf("%w: default language file", ErrLanguageNotFound)
	}
	return resource.Language{}, fmt.Errorf("%w: %q", ErrLanguageNotFound, code)
}

// ---------------------------------------------------------------------------
// Language mutations
// ---------------------------------------------------------------------------

// AddLanguage creates the resource file for a new language code, seeded
// with the default file's key set (and comments) but empty values.
func (p *Project) AddLanguage(ctx context.Context, code string) (resource.Language, error) {
	cul, ok := culture.Valid(code)
	if !ok {
		return resource.Language{}, fmt.Errorf("%w: %q", ErrInvalidCulture, code)
	}
	code = cul.Code

	langs, err := p.Languages()
	if err != nil {
		return resource.Language{}, err
	}
	for _, l := range langs {
		if l.Code == code {
			return resource.Language{}, fmt.Errorf("%w: %q", ErrLanguageExists, code)
		}
	}

	base := p.Config.BaseName()
	lang := resource.Language{
		BaseName: base,
		Code:     code,
		Name:     cul.Name,
		Path:     p.Codec.PathFor(p.Root, base, code),
	}

	nf := resource.NewFile(lang)
	if def, err := p.language(""); err == nil {
		// The iOS default folder can be named after a language code, in
		// which case that code's path is the default file itself.
		if def.Path == lang.Path {
			return resource.Language{}, fmt.Errorf("%w: %q is the default language", ErrLanguageExists, code)
		}
		src, err := p.Codec.Read(def.Path)
		if err != nil {
			return resource.Language{}, err
		}
		for _, e := range src.Entries() {
			nf.Add(resource.Entry{Key: e.Key, Comment: e.Comment})
		}
	}

	if err := p.Codec.Write(nf); err != nil {
		return resource.Language{}, err
	}
	return lang, nil
}

// RemoveLanguage deletes a language's resource file after snapshotting it.
// The default language is protected: the check runs before any backup or
// deletion.
func (p *Project) RemoveLanguage(ctx context.Context, code string) error {
	if code == "" {
		return ErrDefaultLanguageProtected
	}
	code = culture.Canonical(code)
	lang, err := p.language(code)
	if err != nil {
		return err
	}
	if lang.IsDefault() {
		return ErrDefaultLanguageProtected
	}

	if _, err := p.Backups.Create(ctx, lang.Path, "remove-language"); err != nil {
		return err
	}
	if err := os.Remove(lang.Path); err != nil {
		return fmt.Errorf("removing %s: %w", lang.Path, err)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Key mutations
// ---------------------------------------------------------------------------

// AddKey adds a key to every language file: the value goes into the
// default file, translations receive an empty placeholder, and the comment
// is carried everywhere. Each file is snapshotted before it is rewritten.
func (p *Project) AddKey(ctx context.Context, key, value, comment string) error {
	langs, err := p.Languages()
	if err != nil {
		return err
	}
	if len(langs) == 0 {
		return fmt.Errorf("%w: default language file", ErrLanguageNotFound)
	}

	if def, err := p.language(""); err == nil {
		f, err := p.Codec.Read(def.Path)
		if err != nil {
			return err
		}
		if _, exists := f.Get(key); exists {
			return fmt.Errorf("%w: %q", ErrKeyExists, key)
		}
	}

	for _, lang := range langs {
		f, err := p.Codec.Read(lang.Path)
		if err != nil {
			return err
		}
		v := ""
		if lang.IsDefault() {
			v = value
		}
		if !f.Add(resource.Entry{Key: key, Value: v, Comment: comment}) {
			continue // key already present in this file
		}
		if _, err := p.Backups.Create(ctx, lang.Path, "add-key"); err != nil {
			return err
		}
		if err := p.Codec.Write(f); err != nil {
			return err
		}
	}
	return nil
}

// RemoveKey removes a key from every language file that has it, each file
// snapshotted before its rewrite. Fails when no file has the key.
func (p *Project) RemoveKey(ctx context.Context, key string) error {
	langs, err := p.Languages()
	if err != nil {
		return err
	}

	removed := false
	for _, lang := range langs {
		f, err := p.Codec.Read(lang.Path)
		if err != nil {
			return err
		}
		if _, ok := f.Get(key); !ok {
			continue
		}
		if _, err := p.Backups.Create(ctx, lang.Path, "remove-key"); err != nil {
			return err
		}
		f.Remove(key)
		if err := p.Codec.Write(f); err != nil {
			return err
		}
		removed = true
	}
	if !removed {
		return fmt.Errorf("%w: %q", ErrKeyNotFound, key)
	}
	return nil
}

// SetValue updates a key's value in one language's file ("" for the
// default), snapshotting first.
func (p *Project) SetValue(ctx context.Context, code, key, value string) error {
	lang, err := p.language(culture.Canonical(code))
	if err != nil {
		return err
	}
	f, err := p.Codec.Read(lang.Path)
	if err != nil {
		return err
	}
	e, ok := f.Get(key)
	if !ok {
		return fmt.Errorf("%w: %q", ErrKeyNotFound, key)
	}
	e.Value = value
	if _, err := p.Backups.Create(ctx, lang.Path, "set-value"); err != nil {
		return err
	}
	f.Set(e)
	return p.Codec.Write(f)
}
