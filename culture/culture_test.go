package culture

import "testing"

func TestValidLanguageOnly(t *testing.T) {
	c, ok := Valid("fr")
	if !ok {
		t.Fatal("fr rejected")
	}
	if c.Code != "fr" {
		t.Errorf("code = %q", c.Code)
	}
	if c.Name != "French" {
		t.Errorf("name = %q, want French", c.Name)
	}
	if c.NativeName != "Français" {
		t.Errorf("native = %q", c.NativeName)
	}
}

func TestValidLanguageRegion(t *testing.T) {
	c, ok := Valid("fr-FR")
	if !ok {
		t.Fatal("fr-FR rejected")
	}
	if c.Code != "fr-FR" {
		t.Errorf("code = %q", c.Code)
	}
	if c.Name == "" {
		t.Error("display name empty")
	}
}

func TestValidNormalizes(t *testing.T) {
	c, ok := Valid("pt_br")
	if !ok {
		t.Fatal("pt_br rejected")
	}
	if c.Code != "pt-BR" {
		t.Errorf("code = %q, want pt-BR", c.Code)
	}
	if c.NativeName != "Português (Brasil)" {
		t.Errorf("native = %q", c.NativeName)
	}
}

func TestValidRejectsMalformed(t *testing.T) {
	bad := []string{
		"",
		"not a code!",
		"x",
		"toolong",
		"fr-France",
		"fr-",
		"-FR",
		"fr-FR-extra",
		"123",
		"fr_FR_x",
		"🇫🇷",
	}
	for _, code := range bad {
		if _, ok := Valid(code); ok {
			t.Errorf("Valid(%q) = true, want false", code)
		}
	}
}

func TestValidNumericRegion(t *testing.T) {
	// UN M.49 region codes ("es-419", Latin America) are valid syntax.
	if _, ok := Valid("es-419"); !ok {
		t.Error("es-419 rejected")
	}
}

func TestCanonical(t *testing.T) {
	cases := map[string]string{
		"pt_br": "pt-BR",
		"PT-BR": "pt-BR",
		" fr ":  "fr",
		"zh_cn": "zh-CN",
		"":      "",
		"de":    "de",
	}
	for in, want := range cases {
		if got := Canonical(in); got != want {
			t.Errorf("Canonical(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestRegionFallbackNativeName(t *testing.T) {
	c, ok := Valid("de-AT")
	if !ok {
		t.Fatal("de-AT rejected")
	}
	if c.NativeName != "Deutsch" {
		t.Errorf("native = %q, want base-language fallback", c.NativeName)
	}
}

func TestDisplayNameFallsBackToCode(t *testing.T) {
	if got := DisplayName("not a code!"); got != "not a code!" {
		t.Errorf("DisplayName = %q", got)
	}
}
