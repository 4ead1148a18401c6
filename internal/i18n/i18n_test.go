package i18n

import (
	"context"
	"testing"

	"golang.org/x/text/language"

	"github.com/dshills/blockedit/internal/config"
)

func newI18n(t *testing.T, settings config.I18nSettings) *I18n {
	t.Helper()
	cfg, err := config.Normalize(&config.Config{I18n: settings})
	if err != nil {
		t.Fatal(err)
	}
	return NewModule(cfg, nil)
}

func TestI18n_Translate(t *testing.T) {
	m := newI18n(t, config.I18nSettings{
		Locale: "fr-FR",
		Messages: map[string]string{
			"ui.toolbar.toolbox.Add":   "Ajouter",
			"tools.stub.Missing block": "Bloc manquant",
		},
	})
	if res := m.Prepare(context.Background()); !res.IsOK() {
		t.Fatalf("Prepare = %v", res)
	}

	tests := []struct {
		name string
		got  string
		want string
	}{
		{"user message", m.UI("toolbar.toolbox", "Add"), "Ajouter"},
		{"tool message", m.Tool("stub", "Missing block"), "Bloc manquant"},
		{"built-in", m.T("blockTunes.delete.Delete"), "Delete"},
		{"untranslated text", m.UI("popover", "Unknown thing."), "Unknown thing."},
		{"untranslated key", m.T("a.b.c"), "a.b.c"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %q, want %q", tt.got, tt.want)
			}
		})
	}

	if m.Tag() != language.MustParse("fr-FR") {
		t.Errorf("Tag = %v", m.Tag())
	}
	if m.Direction() != "ltr" {
		t.Errorf("Direction = %q", m.Direction())
	}
}

func TestI18n_InvalidLocale(t *testing.T) {
	m := newI18n(t, config.I18nSettings{Locale: "not a locale!", Direction: "rtl"})
	res := m.Prepare(context.Background())
	if res.IsOK() || res.IsFatal() {
		t.Errorf("Prepare = %v, want recoverable", res)
	}
	if m.Tag() != language.English {
		t.Errorf("Tag = %v, want English fallback", m.Tag())
	}
	if m.Direction() != "rtl" {
		t.Errorf("Direction = %q", m.Direction())
	}
	if got := m.UI("toolbar.toolbox", "Add"); got != "Add" {
		t.Errorf("UI = %q", got)
	}
}
