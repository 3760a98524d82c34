// Package applestrings implements reading and writing of Apple .strings
// localization files.
//
// Entry syntax is one assignment per line:
//
//	/* Shown on the start page */
//	"greeting" = "Hello";
//
// A C-style block comment preceding an entry is that entry's comment; it
// is re-emitted before the entry on write. Keys and values are quoted
// strings with backslash escaping for ", \, newline, tab, and carriage
// return, reversed exactly on read.
//
// Folder convention: each language lives in {code}.lproj/{baseName}.strings.
// The default language's folder is configurable ("Base" or a language
// code); it defaults to en.lproj.
package applestrings

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/localeworks/lrm/codec"
	"github.com/localeworks/lrm/culture"
	"github.com/localeworks/lrm/resource"
)

func init() {
	codec.Register(codec.FormatIOS, func(opts codec.Options) codec.Codec {
		folder := opts.AppleDefaultFolder
		if folder == "" {
			folder = "en"
		}
		return &Codec{DefaultFolder: folder}
	})
}

// Codec reads and writes Apple .strings files.
type Codec struct {
	// DefaultFolder is the .lproj folder (without suffix) holding the
	// default language: "Base", "en", or another language code.
	DefaultFolder string
}

// Format returns the codec's format identifier.
func (c *Codec) Format() string { return codec.FormatIOS }

// ---------------------------------------------------------------------------
// Reading
// ---------------------------------------------------------------------------

// entryLine matches `"key" = "value";` with escaped characters allowed
// inside the quoted parts.
var entryLine = regexp.MustCompile(`^"((?:[^"\\]|\\.)*)"\s*=\s*"((?:[^"\\]|\\.)*)"\s*;$`)

// Read parses the .strings file at path. Duplicate keys are first-wins.
func (c *Codec) Read(path string) (*resource.File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", codec.ErrNotFound, path)
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	f := resource.NewFile(c.languageFromPath(path))

	text := strings.ReplaceAll(string(data), "\r\n", "\n")
	lines := strings.Split(text, "\n")

	pendingComment := ""
	inBlockComment := false
	var commentBuf strings.Builder

	for i, raw := range lines {
		line := strings.TrimSpace(raw)

		if inBlockComment {
			if idx := strings.Index(line, "*/"); idx >= 0 {
				commentBuf.WriteString(strings.TrimSpace(line[:idx]))
				pendingComment = strings.TrimSpace(commentBuf.String())
				commentBuf.Reset()
				inBlockComment = false
			} else {
				commentBuf.WriteString(line)
				commentBuf.WriteByte('\n')
			}
			continue
		}

		switch {
		case line == "":
			continue

		case strings.HasPrefix(line, "//"):
			pendingComment = strings.TrimSpace(strings.TrimPrefix(line, "//"))

		case strings.HasPrefix(line, "/*"):
			rest := strings.TrimPrefix(line, "/*")
			if idx := strings.Index(rest, "*/"); idx >= 0 {
				pendingComment = strings.TrimSpace(rest[:idx])
			} else {
				commentBuf.WriteString(strings.TrimSpace(rest))
				commentBuf.WriteByte('\n')
				inBlockComment = true
			}

		default:
			m := entryLine.FindStringSubmatch(line)
			if m == nil {
				return nil, &codec.ParseError{
					Path: path,
					Line: i + 1,
					Msg:  fmt.Sprintf("malformed entry: %s", line),
				}
			}
			f.Add(resource.Entry{
				Key:     unescape(m[1]),
				Value:   unescape(m[2]),
				Comment: pendingComment,
			})
			pendingComment = ""
		}
	}

	if inBlockComment {
		return nil, &codec.ParseError{
			Path: path,
			Line: len(lines),
			Msg:  "unterminated block comment",
		}
	}
	return f, nil
}

// ---------------------------------------------------------------------------
// Writing
// ---------------------------------------------------------------------------

// Write serializes f to f.Lang.Path, preserving entry order and emitting
// entry comments as block comments on the preceding line.
func (c *Codec) Write(f *resource.File) error {
	var out strings.Builder
	for i, e := range f.Entries() {
		if i > 0 {
			out.WriteByte('\n')
		}
		if e.Comment != "" {
			out.WriteString(fmt.Sprintf("/* %s */\n", e.Comment))
		}
		out.WriteString(fmt.Sprintf("\"%s\" = \"%s\";\n", escape(e.Key), escape(e.Value)))
	}

	path := f.Lang.Path
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating directory: %w", err)
	}
	return os.WriteFile(path, []byte(out.String()), 0644)
}

// escape applies .strings escaping: backslash, double quote, newline, tab,
// carriage return.
func escape(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case '"':
			b.WriteString(`\"`)
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		case '\r':
			b.WriteString(`\r`)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// unescape reverses escape. An unknown escape sequence keeps the escaped
// character literally.
func unescape(s string) string {
	var b strings.Builder
	escaped := false
	for _, r := range s {
		if !escaped {
			if r == '\\' {
				escaped = true
			} else {
				b.WriteRune(r)
			}
			continue
		}
		switch r {
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case 'r':
			b.WriteByte('\r')
		default:
			b.WriteRune(r)
		}
		escaped = false
	}
	return b.String()
}

// ---------------------------------------------------------------------------
// Discovery
// ---------------------------------------------------------------------------

// Discover scans root for {code}.lproj/{baseName}.strings files. The
// folder named after DefaultFolder holds the default language.
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
		if !entry.IsDir() || !strings.HasSuffix(entry.Name(), ".lproj") {
			continue
		}
		folder := strings.TrimSuffix(entry.Name(), ".lproj")
		path := filepath.Join(root, entry.Name(), baseName+".strings")
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if folder == c.DefaultFolder {
			langs = append(langs, resource.Language{BaseName: baseName, Path: path})
			continue
		}
		cul, ok := culture.Valid(folder)
		if !ok {
			continue
		}
		langs = append(langs, resource.Language{
			BaseName: baseName,
			Code:     folder,
			Name:     cul.Name,
			Path:     path,
		})
	}
	return langs, nil
}

// PathFor returns the conventional .strings path for a language code.
func (c *Codec) PathFor(root, baseName, code string) string {
	folder := code
	if code == "" {
		folder = c.DefaultFolder
	}
	return filepath.Join(root, folder+".lproj", baseName+".strings")
}

// languageFromPath infers the language from the .lproj folder name.
func (c *Codec) languageFromPath(path string) resource.Language {
	dir := filepath.Base(filepath.Dir(path))
	baseName := strings.TrimSuffix(filepath.Base(path), ".strings")
	lang := resource.Language{BaseName: baseName, Path: path}
	folder := strings.TrimSuffix(dir, ".lproj")
	if folder == c.DefaultFolder {
		return lang
	}
	if cul, ok := culture.Valid(folder); ok {
		lang.Code = folder
		lang.Name = cul.Name
	}
	return lang
}
