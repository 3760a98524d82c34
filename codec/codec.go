// Package codec selects and configures the per-format resource codecs.
//
// Each supported on-disk format (JSON, .resx, Android strings.xml, iOS
// .strings) implements the same Codec contract in its own package; this
// package holds the shared interface, the factory keyed on the format
// identifier, and the error kinds common to all readers.
package codec

import (
	"errors"
	"fmt"
	"sort"

	"github.com/localeworks/lrm/resource"
)

// Format identifiers accepted by For.
const (
	FormatJSON    = "json"
	FormatResx    = "resx"
	FormatAndroid = "android"
	FormatIOS     = "ios"
)

// ErrUnsupportedFormat is returned by For for an unknown format identifier.
var ErrUnsupportedFormat = errors.New("unsupported resource format")

// ErrNotFound is returned by Read when the resource file does not exist.
var ErrNotFound = errors.New("resource file not found")

// ParseError describes malformed input with location context.
type ParseError struct {
	Path string
	Line int // 0 when the underlying parser reports no line
	Msg  string
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("parsing %s:%d: %s", e.Path, e.Line, e.Msg)
	}
	return fmt.Sprintf("parsing %s: %s", e.Path, e.Msg)
}

// Codec reads and writes one on-disk resource format.
//
// Read parses the file at path into the format-agnostic model; Write
// serializes a file back to resource.File.Lang.Path, creating parent
// directories as needed. write(read(p)) must reproduce the same ordered
// key/value sequence; comment fidelity is best-effort per format.
type Codec interface {
	// Format returns the identifier this codec was registered under.
	Format() string

	// Read parses the resource file at path.
	// Returns ErrNotFound when the path does not exist and *ParseError
	// on malformed input.
	Read(path string) (*resource.File, error)

	// Write serializes f to f.Lang.Path.
	Write(f *resource.File) error

	// Discover walks root according to the format's folder convention and
	// returns one Language per matching file. Non-matching files are
	// ignored; a root with no matches yields an empty list, not an error.
	Discover(root, baseName string) ([]resource.Language, error)

	// PathFor returns the conventional path of the file for code under
	// root. An empty code addresses the default language.
	PathFor(root, baseName, code string) string
}

// Options carries codec configuration from lrm.json.
type Options struct {
	// JSON sub-options.
	JSONNested           bool // flatten/unflatten dotted keys
	JSONIncludeMeta      bool // emit "@key" meta objects
	JSONPreserveComments bool // keep comments through read/write

	// AppleDefaultFolder names the .lproj folder of the default language
	// ("Base" or a language code). Empty means "en".
	AppleDefaultFolder string
}

// factory builds a configured codec.
type factory func(Options) Codec

var registry = map[string]factory{}

// Register installs a codec constructor for a format identifier. Called
// from the format packages' init functions.
func Register(format string, fn func(Options) Codec) {
	registry[format] = fn
}

// For returns the codec for the given format identifier.
func For(format string, opts Options) (Codec, error) {
	fn, ok := registry[format]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	return fn(opts), nil
}

// Formats returns the registered format identifiers.
func Formats() []string {
	out := make([]string, 0, len(registry))
	for f := range registry {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}
