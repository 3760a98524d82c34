// Package android implements reading and writing of Android strings.xml
// resource files.
//
// Entry syntax is <string name="key">value</string> inside a <resources>
// element. An XML comment immediately preceding a <string> is treated as
// that entry's comment and is re-emitted in the same position on write.
//
// Values are escaped per AAPT rules: &, <, > use XML entities and
// apostrophes are backslash-escaped (\'). Readers reverse the escaping
// exactly.
//
// Folder convention: the default language lives in values/strings.xml and
// every other language in values-{code}/strings.xml, with BCP-47 region
// codes mapped to Android's -r form (pt-BR -> values-pt-rBR).
package android

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/localeworks/lrm/codec"
	"github.com/localeworks/lrm/culture"
	"github.com/localeworks/lrm/resource"
)

func init() {
	codec.Register(codec.FormatAndroid, func(codec.Options) codec.Codec {
		return &Codec{}
	})
}

// Codec reads and writes Android strings.xml files.
type Codec struct{}

// Format returns the codec's format identifier.
func (c *Codec) Format() string { return codec.FormatAndroid }

// ---------------------------------------------------------------------------
// Reading
// ---------------------------------------------------------------------------

// Read parses the strings.xml file at path. Elements other than <string>
// (string-array, plurals) are skipped. Duplicate names are first-wins.
func (c *Codec) Read(path string) (*resource.File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", codec.ErrNotFound, path)
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	f := resource.NewFile(languageFromPath(path))
	dec := xml.NewDecoder(strings.NewReader(string(data)))
	inResources := false
	pendingComment := ""

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &codec.ParseError{
				Path: path,
				Line: lineAt(data, dec.InputOffset()),
				Msg:  err.Error(),
			}
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "resources" {
				inResources = true
				continue
			}
			if !inResources {
				continue
			}
			if t.Name.Local != "string" {
				pendingComment = ""
				dec.Skip()
				continue
			}
			var name string
			for _, attr := range t.Attr {
				if attr.Name.Local == "name" {
					name = attr.Value
				}
			}
			value, err := readElementText(dec)
			if err != nil {
				return nil, &codec.ParseError{
					Path: path,
					Line: lineAt(data, dec.InputOffset()),
					Msg:  fmt.Sprintf("reading <string name=%q>: %v", name, err),
				}
			}
			if name == "" {
				return nil, &codec.ParseError{
					Path: path,
					Line: lineAt(data, dec.InputOffset()),
					Msg:  "<string> element without name attribute",
				}
			}
			f.Add(resource.Entry{
				Key:     name,
				Value:   unescapeApostrophe(value),
				Comment: pendingComment,
			})
			pendingComment = ""

		case xml.Comment:
			if inResources {
				pendingComment = strings.TrimSpace(string(t))
			}

		case xml.EndElement:
			if t.Name.Local == "resources" {
				inResources = false
			}
		}
	}
	return f, nil
}

// readElementText reads character data until the current element's close tag.
func readElementText(dec *xml.Decoder) (string, error) {
	var b strings.Builder
	depth := 1
	for depth > 0 {
		tok, err := dec.Token()
		if err != nil {
			return "", err
		}
		switch t := tok.(type) {
		case xml.CharData:
			b.Write(t)
		case xml.StartElement:
			depth++
		case xml.EndElement:
			depth--
		}
	}
	return b.String(), nil
}

func lineAt(data []byte, offset int64) int {
	if offset > int64(len(data)) {
		offset = int64(len(data))
	}
	return 1 + strings.Count(string(data[:offset]), "\n")
}

// ---------------------------------------------------------------------------
// Writing
// ---------------------------------------------------------------------------

// Write serializes f to f.Lang.Path in Android strings.xml format,
// preserving entry order and emitting entry comments as XML comments on
// the preceding line.
func (c *Codec) Write(f *resource.File) error {
	var b strings.Builder
	b.WriteString("<?xml version=\"1.0\" encoding=\"utf-8\"?>\n")
	b.WriteString("<resources>\n")
	for _, e := range f.Entries() {
		if e.Comment != "" {
			b.WriteString(fmt.Sprintf("    <!-- %s -->\n", e.Comment))
		}
		b.WriteString(fmt.Sprintf("    <string name=\"%s\">%s</string>\n", e.Key, xmlEscape(e.Value)))
	}
	b.WriteString("</resources>\n")

	path := f.Lang.Path
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating directory: %w", err)
	}
	return os.WriteFile(path, []byte(b.String()), 0644)
}

// xmlEscape escapes a string value for use inside an XML element, with
// Android apostrophe escaping on top.
func xmlEscape(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	return escapeApostrophe(s)
}

// escapeApostrophe escapes apostrophes per AAPT without double-escaping.
func escapeApostrophe(s string) string {
	s = strings.ReplaceAll(s, `\'`, `'`)
	return strings.ReplaceAll(s, `'`, `\'`)
}

// unescapeApostrophe reverses AAPT apostrophe escaping.
func unescapeApostrophe(s string) string {
	return strings.ReplaceAll(s, `\'`, `'`)
}

// ---------------------------------------------------------------------------
// Discovery
// ---------------------------------------------------------------------------

// Discover scans root for values/strings.xml and values-XX/strings.xml.
// The baseName is recorded on the returned languages but does not affect
// file naming (Android fixes the filename to strings.xml).
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
		if !entry.IsDir() {
			continue
		}
		name := entry.Name()
		if name != "values" && !strings.HasPrefix(name, "values-") {
			continue
		}
		path := filepath.Join(root, name, "strings.xml")
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if name == "values" {
			langs = append(langs, resource.Language{BaseName: baseName, Path: path})
			continue
		}
		code := localeToStandard(strings.TrimPrefix(name, "values-"))
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
	return langs, nil
}

// PathFor returns the conventional strings.xml path for a language code.
func (c *Codec) PathFor(root, baseName, code string) string {
	if code == "" {
		return filepath.Join(root, "values", "strings.xml")
	}
	return filepath.Join(root, "values-"+standardToLocale(code), "strings.xml")
}

// languageFromPath infers the language from the values directory name.
func languageFromPath(path string) resource.Language {
	dir := filepath.Base(filepath.Dir(path))
	lang := resource.Language{BaseName: "strings", Path: path}
	if strings.HasPrefix(dir, "values-") {
		code := localeToStandard(strings.TrimPrefix(dir, "values-"))
		if cul, ok := culture.Valid(code); ok {
			lang.Code = code
			lang.Name = cul.Name
		}
	}
	return lang
}

// localeToStandard converts the Android locale form to BCP-47:
// "pt-rBR" -> "pt-BR", "ru" -> "ru".
func localeToStandard(androidLocale string) string {
	if idx := strings.Index(androidLocale, "-r"); idx >= 0 {
		return androidLocale[:idx] + "-" + androidLocale[idx+2:]
	}
	return androidLocale
}

// standardToLocale converts BCP-47 to the Android locale form:
// "pt-BR" -> "pt-rBR", "ru" -> "ru".
func standardToLocale(lang string) string {
	parts := strings.SplitN(lang, "-", 2)
	if len(parts) == 2 && len(parts[1]) > 0 {
		return parts[0] + "-r" + parts[1]
	}
	return lang
}
