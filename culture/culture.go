// Package culture validates locale identifiers and resolves display names.
//
// Accepted syntax is "language" or "language-REGION" ("fr", "pt-BR").
// Validation never returns an error; malformed input yields ok=false.
// Display names combine the BCP-47 registry via golang.org/x/text with a
// small native-name table for codes commonly seen in resource sets.
package culture

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// Culture describes a validated locale identifier.
type Culture struct {
	// Code is the canonical form ("pt-BR", never "pt_br").
	Code string
	// Name is the English display name ("Brazilian Portuguese").
	Name string
	// NativeName is the language's own name for itself, when known.
	NativeName string
}

// nativeNames lists self-names for languages commonly used in resource
// sets. Lookups fall back to the base language for regional variants.
var nativeNames = map[string]string{
	"ar":    "العربية",
	"cs":    "Čeština",
	"da":    "Dansk",
	"de":    "Deutsch",
	"el":    "Ελληνικά",
	"en":    "English",
	"es":    "Español",
	"fi":    "Suomi",
	"fr":    "Français",
	"he":    "עברית",
	"hi":    "हिन्दी",
	"hu":    "Magyar",
	"id":    "Bahasa Indonesia",
	"it":    "Italiano",
	"ja":    "日本語",
	"ko":    "한국어",
	"nb":    "Norsk bokmål",
	"nl":    "Nederlands",
	"pl":    "Polski",
	"pt":    "Português",
	"pt-BR": "Português (Brasil)",
	"ro":    "Română",
	"ru":    "Русский",
	"sk":    "Slovenčina",
	"sv":    "Svenska",
	"th":    "ไทย",
	"tr":    "Türkçe",
	"uk":    "Українська",
	"vi":    "Tiếng Việt",
	"zh":    "中文",
	"zh-CN": "简体中文",
	"zh-TW": "繁體中文",
}

// Canonical normalizes separator and casing: "pt_br" -> "pt-BR".
// It does not validate; pass the result to Valid for that.
func Canonical(code string) string {
	normalized := strings.ReplaceAll(strings.TrimSpace(code), "_", "-")
	if normalized == "" {
		return ""
	}
	parts := strings.Split(normalized, "-")
	parts[0] = strings.ToLower(parts[0])
	if len(parts) >= 2 {
		parts[1] = strings.ToUpper(parts[1])
	}
	return strings.Join(parts, "-")
}

// Valid reports whether code is a well-formed locale identifier and, when
// it is, returns its canonical form and display names. It never panics and
// never returns an error: malformed input yields (Culture{}, false).
func Valid(code string) (Culture, bool) {
	canonical := Canonical(code)
	if !wellFormed(canonical) {
		return Culture{}, false
	}
	tag, err := language.Parse(canonical)
	if err != nil {
		return Culture{}, false
	}
	c := Culture{
		Code: canonical,
		Name: display.English.Tags().Name(tag),
	}
	if n, ok := nativeNames[canonical]; ok {
		c.NativeName = n
	} else if base, _, found := strings.Cut(canonical, "-"); found {
		c.NativeName = nativeNames[base]
	}
	return c, true
}

// wellFormed restricts codes to "language" or "language-REGION":
// 2-3 lowercase letters, optionally followed by "-" and 2 uppercase
// letters or 3 digits. language.Parse alone is too permissive here (it
// accepts scripts, extensions, and does fuzzy correction).
func wellFormed(code string) bool {
	lang, region, hasRegion := strings.Cut(code, "-")
	if len(lang) < 2 || len(lang) > 3 {
		return false
	}
	for _, r := range lang {
		if r < 'a' || r > 'z' {
			return false
		}
	}
	if !hasRegion {
		return true
	}
	switch len(region) {
	case 2:
		for _, r := range region {
			if r < 'A' || r > 'Z' {
				return false
			}
		}
		return true
	case 3:
		for _, r := range region {
			if r < '0' || r > '9' {
				return false
			}
		}
		return true
	}
	return false
}

// DisplayName returns a best-effort display name for code, falling back to
// the code itself when it does not validate. Used for listings where an
// unknown code must still render.
func DisplayName(code string) string {
	if c, ok := Valid(code); ok {
		if c.NativeName != "" && c.NativeName != c.Name {
			return c.Name + " (" + c.NativeName + ")"
		}
		return c.Name
	}
	return code
}
