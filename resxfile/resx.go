// Package resxfile implements reading and writing of .resx resource files.
//
// The format is XML, one <data> element per entry:
//
//	<root>
//	    <data name="Greeting" xml:space="preserve">
//	        <value>Hello</value>
//	        <comment>Shown on the start page</comment>
//	    </data>
//	</root>
//
// The comment element is native to the format and survives round-trips.
// <resheader> elements and any other unknown children of <root> are
// skipped on read; Write emits a minimal fixed header block.
//
// File naming convention: {baseName}.resx for the default language and
// {baseName}.{code}.resx for translations, all in one directory.
package resxfile

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
	codec.Register(codec.FormatResx, func(codec.Options) codec.Codec {
		return &Codec{}
	})
}

// Codec reads and writes .resx resource files.
type Codec struct{}

// Format returns the codec's format identifier.
func (c *Codec) Format() string { return codec.FormatResx }

// ---------------------------------------------------------------------------
// Reading
// ---------------------------------------------------------------------------

// Read parses the .resx file at path. Duplicate names are first-wins.
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
	inRoot := false

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			line := 1 + strings.Count(string(data[:min(dec.InputOffset(), int64(len(data)))]), "\n")
			return nil, &codec.ParseError{Path: path, Line: line, Msg: err.Error()}
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "root" {
				inRoot = true
				continue
			}
			if !inRoot {
				continue
			}
			if t.Name.Local != "data" {
				dec.Skip()
				continue
			}
			entry, err := parseDataElement(dec, t)
			if err != nil {
				line := 1 + strings.Count(string(data[:min(dec.InputOffset(), int64(len(data)))]), "\n")
				return nil, &codec.ParseError{Path: path, Line: line, Msg: err.Error()}
			}
			f.Add(entry)

		case xml.EndElement:
			if t.Name.Local == "root" {
				inRoot = false
			}
		}
	}
	return f, nil
}

// parseDataElement reads one already-opened <data> element.
func parseDataElement(dec *xml.Decoder, elem xml.StartElement) (resource.Entry, error) {
	var e resource.Entry
	for _, attr := range elem.Attr {
		if attr.Name.Local == "name" {
			e.Key = attr.Value
		}
	}
	if e.Key == "" {
		return e, fmt.Errorf("<data> element without name attribute")
	}

	depth := 1
	for depth > 0 {
		tok, err := dec.Token()
		if err != nil {
			return e, fmt.Errorf("reading <data name=%q>: %w", e.Key, err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "value":
				text, err := readText(dec)
				if err != nil {
					return e, fmt.Errorf("reading <value> of %q: %w", e.Key, err)
				}
				e.Value = text
			case "comment":
				text, err := readText(dec)
				if err != nil {
					return e, fmt.Errorf("reading <comment> of %q: %w", e.Key, err)
				}
				e.Comment = text
			default:
				dec.Skip()
			}
		case xml.EndElement:
			depth--
		}
	}
	return e, nil
}

// readText reads character data until the current element's close tag.
func readText(dec *xml.Decoder) (string, error) {
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

// ---------------------------------------------------------------------------
// Writing
// ---------------------------------------------------------------------------

// Write serializes f to f.Lang.Path, preserving entry order.
func (c *Codec) Write(f *resource.File) error {
	var b strings.Builder
	b.WriteString("<?xml version=\"1.0\" encoding=\"utf-8\"?>\n")
	b.WriteString("<root>\n")
	b.WriteString("    <resheader name=\"resmimetype\">\n")
	b.WriteString("        <value>text/microsoft-resx</value>\n")
	b.WriteString("    </resheader>\n")
	b.WriteString("    <resheader name=\"version\">\n")
	b.WriteString("        <value>2.0</value>\n")
	b.WriteString("    </resheader>\n")

	for _, e := range f.Entries() {
		b.WriteString(fmt.Sprintf("    <data name=\"%s\" xml:space=\"preserve\">\n", escapeAttr(e.Key)))
		b.WriteString(fmt.Sprintf("        <value>%s</value>\n", escapeText(e.Value)))
		if e.Comment != "" {
			b.WriteString(fmt.Sprintf("        <comment>%s</comment>\n", escapeText(e.Comment)))
		}
		b.WriteString("    </data>\n")
	}
	b.WriteString("</root>\n")

	path := f.Lang.Path
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating directory: %w", err)
	}
	return os.WriteFile(path, []byte(b.String()), 0644)
}

// escapeText escapes element content.
func escapeText(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	return s
}

// escapeAttr escapes a double-quoted attribute value.
func escapeAttr(s string) string {
	s = escapeText(s)
	return strings.ReplaceAll(s, `"`, "&quot;")
}

// ---------------------------------------------------------------------------
// Discovery
// ---------------------------------------------------------------------------

// Discover scans root for {baseName}.resx and {baseName}.{code}.resx files.
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
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".resx") {
			continue
		}
		name := strings.TrimSuffix(entry.Name(), ".resx")
		path := filepath.Join(root, entry.Name())
		switch {
		case name == baseName:
			langs = append(langs, resource.Language{BaseName: baseName, Path: path})
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
		return filepath.Join(root, baseName+".resx")
	}
	return filepath.Join(root, baseName+"."+code+".resx")
}

func languageFromPath(path string) resource.Language {
	name := strings.TrimSuffix(filepath.Base(path), ".resx")
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
