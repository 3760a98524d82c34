// Package jsonfile implements reading and writing of JSON resource files.
//
// Two layouts are supported:
//
//   - flat:   { "app.title": "My App", "app.exit": "Quit" }
//   - nested: { "app": { "title": "My App", "exit": "Quit" } }
//
// Nested objects are flattened into dotted keys on read and rebuilt on
// write when the nested layout is enabled; the two layouts are fully
// interchangeable for the same key set.
//
// Comments are persisted as metadata entries keyed by "@" plus the entry
// key, written immediately after the entry they describe:
//
//	"app.title": "My App",
//	"@app.title": { "description": "Shown in the window header" }
//
// Metadata emission is optional; with it disabled the format carries no
// comments and drops them on write.
//
// File naming convention: {baseName}.json for the default language and
// {baseName}.{code}.json for translations, all in one directory.
package jsonfile

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/localeworks/lrm/codec"
	"github.com/localeworks/lrm/culture"
	"github.com/localeworks/lrm/resource"
)

func init() {
	codec.Register(codec.FormatJSON, func(opts codec.Options) codec.Codec {
		return &Codec{
			Nested:           opts.JSONNested,
			IncludeMeta:      opts.JSONIncludeMeta,
			PreserveComments: opts.JSONPreserveComments,
		}
	})
}

// Codec reads and writes JSON resource files.
type Codec struct {
	// Nested selects the nested object layout on write.
	Nested bool
	// IncludeMeta enables "@key" metadata objects on write.
	IncludeMeta bool
	// PreserveComments keeps comments read from metadata entries.
	PreserveComments bool
}

// Format returns the codec's format identifier.
func (c *Codec) Format() string { return codec.FormatJSON }

// ---------------------------------------------------------------------------
// Reading
// ---------------------------------------------------------------------------

// Read parses the JSON resource file at path. Both layouts are accepted
// regardless of the Nested setting; nested objects are flattened into
// dotted keys in document order.
func (c *Codec) Read(path string) (*resource.File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", codec.ErrNotFound, path)
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	f := resource.NewFile(languageFromPath(path))
	comments := make(map[string]string)

	dec := json.NewDecoder(strings.NewReader(string(data)))
	if err := expectDelim(dec, '{'); err != nil {
		return nil, parseErr(path, data, dec, err)
	}
	if err := c.readObject(dec, "", f, comments); err != nil {
		return nil, parseErr(path, data, dec, err)
	}

	if c.PreserveComments {
		for key, comment := range comments {
			if e, ok := f.Get(key); ok {
				e.Comment = comment
				f.Set(e)
			}
		}
	}
	return f, nil
}

// readObject consumes the members of an already-opened object, flattening
// nested objects under prefix. Duplicate keys are first-wins.
func (c *Codec) readObject(dec *json.Decoder, prefix string, f *resource.File, comments map[string]string) error {
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("expected string key, got %v", keyTok)
		}

		// Metadata entry: "@key": { "description": "..." }. Metadata
		// values are always objects; a string-valued "@" member is an
		// ordinary entry whose key happens to start with "@".
		if prefix == "" && strings.HasPrefix(key, "@") {
			var raw json.RawMessage
			if err := dec.Decode(&raw); err != nil {
				return fmt.Errorf("metadata %q: %w", key, err)
			}
			if len(raw) > 0 && raw[0] == '{' {
				var meta struct {
					Description string `json:"description"`
				}
				if err := json.Unmarshal(raw, &meta); err != nil {
					return fmt.Errorf("metadata %q: %w", key, err)
				}
				comments[strings.TrimPrefix(key, "@")] = meta.Description
				continue
			}
			var s string
			if err := json.Unmarshal(raw, &s); err != nil {
				return fmt.Errorf("key %q: expected string value: %w", key, err)
			}
			f.Add(resource.Entry{Key: key, Value: s})
			continue
		}

		full := key
		if prefix != "" {
			full = prefix + "." + key
		}

		tok, err := dec.Token()
		if err != nil {
			return err
		}
		switch v := tok.(type) {
		case string:
			f.Add(resource.Entry{Key: full, Value: v})
		case json.Delim:
			if v != '{' {
				return fmt.Errorf("key %q: unexpected %v", full, v)
			}
			if err := c.readObject(dec, full, f, comments); err != nil {
				return err
			}
		default:
			return fmt.Errorf("key %q: expected string value, got %v", full, tok)
		}
	}
	// Consume the closing '}'.
	_, err := dec.Token()
	return err
}

func expectDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != want {
		return fmt.Errorf("expected %q, got %v", want, tok)
	}
	return nil
}

// parseErr wraps a decoder error as *codec.ParseError with a line number
// computed from the decoder's byte offset.
func parseErr(path string, data []byte, dec *json.Decoder, err error) error {
	offset := dec.InputOffset()
	var syn *json.SyntaxError
	if errors.As(err, &syn) {
		offset = syn.Offset
	}
	line := 1
	for i := int64(0); i < offset && i < int64(len(data)); i++ {
		if data[i] == '\n' {
			line++
		}
	}
	return &codec.ParseError{Path: path, Line: line, Msg: err.Error()}
}

// ---------------------------------------------------------------------------
// Writing
// ---------------------------------------------------------------------------

// Write serializes f to f.Lang.Path with 4-space indentation, preserving
// entry order. In nested mode dotted keys are rebuilt into nested objects;
// a key that is both a leaf and a branch ("a" and "a.b") cannot be
// represented and fails the write.
func (c *Codec) Write(f *resource.File) error {
	var b strings.Builder

	if c.Nested {
		tree, err := buildTree(f.Entries())
		if err != nil {
			return fmt.Errorf("writing %s: %w", f.Lang.Path, err)
		}
		b.WriteString("{\n")
		meta := c.metaLines(f)
		if err := writeTree(&b, tree, 1, len(meta) > 0); err != nil {
			return fmt.Errorf("writing %s: %w", f.Lang.Path, err)
		}
		writeMeta(&b, meta)
		b.WriteString("}\n")
	} else {
		b.WriteString("{\n")
		entries := f.Entries()
		for i, e := range entries {
			last := i == len(entries)-1
			b.WriteString(fmt.Sprintf("    %s: %s", jsonString(e.Key), jsonString(e.Value)))
			if comment := c.commentFor(e); comment != "" {
				b.WriteString(",\n")
				b.WriteString(fmt.Sprintf("    %s: { \"description\": %s }", jsonString("@"+e.Key), jsonString(comment)))
			}
			if !last {
				b.WriteByte(',')
			}
			b.WriteByte('\n')
		}
		b.WriteString("}\n")
	}

	path := f.Lang.Path
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating directory: %w", err)
	}
	return os.WriteFile(path, []byte(b.String()), 0644)
}

func (c *Codec) commentFor(e resource.Entry) string {
	if !c.IncludeMeta || !c.PreserveComments || e.Comment == "" {
		return ""
	}
	return e.Comment
}

// metaLines collects "@key" metadata members for nested mode, where they
// are emitted flat after the nested tree.
func (c *Codec) metaLines(f *resource.File) []string {
	var lines []string
	for _, e := range f.Entries() {
		if comment := c.commentFor(e); comment != "" {
			lines = append(lines, fmt.Sprintf("    %s: { \"description\": %s }", jsonString("@"+e.Key), jsonString(comment)))
		}
	}
	return lines
}

func writeMeta(b *strings.Builder, lines []string) {
	for i, l := range lines {
		b.WriteString(l)
		if i < len(lines)-1 {
			b.WriteByte(',')
		}
		b.WriteByte('\n')
	}
}

// node is one branch of the rebuilt nested object. Children keep insertion
// order so the output stays diff-stable.
type node struct {
	value    string
	isLeaf   bool
	order    []string
	children map[string]*node
}

func newNode() *node {
	return &node{children: make(map[string]*node)}
}

// buildTree rebuilds a nested object from dotted keys.
func buildTree(entries []resource.Entry) (*node, error) {
	root := newNode()
	for _, e := range entries {
		cur := root
		parts := strings.Split(e.Key, ".")
		for i, part := range parts {
			child, ok := cur.children[part]
			if !ok {
				child = newNode()
				cur.children[part] = child
				cur.order = append(cur.order, part)
			}
			if i == len(parts)-1 {
				if len(child.children) > 0 {
					return nil, fmt.Errorf("key %q conflicts with nested keys under it", e.Key)
				}
				child.value = e.Value
				child.isLeaf = true
			} else {
				if child.isLeaf {
					return nil, fmt.Errorf("key %q conflicts with flat key %q", e.Key, strings.Join(parts[:i+1], "."))
				}
				cur = child
			}
		}
	}
	return root, nil
}

func writeTree(b *strings.Builder, n *node, depth int, trailingComma bool) error {
	indent := strings.Repeat("    ", depth)
	for i, key := range n.order {
		child := n.children[key]
		last := i == len(n.order)-1
		if child.isLeaf {
			b.WriteString(fmt.Sprintf("%s%s: %s", indent, jsonString(key), jsonString(child.value)))
		} else {
			b.WriteString(fmt.Sprintf("%s%s: {\n", indent, jsonString(key)))
			if err := writeTree(b, child, depth+1, false); err != nil {
				return err
			}
			b.WriteString(indent + "}")
		}
		if !last || trailingComma {
			b.WriteByte(',')
		}
		b.WriteByte('\n')
	}
	return nil
}

// jsonString returns the JSON encoding of s.
func jsonString(s string) string {
	data, _ := json.Marshal(s)
	return string(data)
}

// ---------------------------------------------------------------------------
// Discovery
// ---------------------------------------------------------------------------

// Discover scans root for {baseName}.json and {baseName}.{code}.json files.
func (c *Codec) Discover(root, baseName string) ([]resource.Language, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading %s: %w", root, err)
	}

	var langs []resource.Language
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		name := strings.TrimSuffix(entry.Name(), ".json")
		path := filepath.Join(root, entry.Name())
		switch {
		case name == baseName:
			langs = append(langs, resource.Language{
				BaseName: baseName,
				Path:     path,
			})
		case strings.HasPrefix(name, baseName+"."):
			code := strings.TrimPrefix(name, baseName+".")
			cul, ok := culture.Valid(code)
			if !ok {
				continue
			}
			langs = append(langs, resource.Language{
				BaseName: baseName,
				Code:     code,
				Name:     cul.Name,
				Path:     path,
			})
		}
	}
	return langs, nil
}

// PathFor returns the conventional file path for a language code.
func (c *Codec) PathFor(root, baseName, code string) string {
	if code == "" {
		return filepath.Join(root, baseName+".json")
	}
	return filepath.Join(root, baseName+"."+code+".json")
}

// languageFromPath infers the language identity from a file path, used when
// reading a file directly rather than through discovery.
func languageFromPath(path string) resource.Language {
	name := strings.TrimSuffix(filepath.Base(path), ".json")
	lang := resource.Language{BaseName: name, Path: path}
	if idx := strings.LastIndex(name, "."); idx >= 0 {
		code := name[idx+1:]
		if cul, ok := culture.Valid(code); ok {
			lang.BaseName = name[:idx]
			lang.Code = code
			lang.Name = cul.Name
		}
	}
	return lang
}
