// Package i18n translates the editor's interface strings.
//
// Keys are namespaced with dots, for example "blockTunes.delete.Delete".
// User messages override the built-in dictionary. A key without a
// translation is returned as it is; UI and Tool return the unqualified
// text.
package i18n

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"golang.org/x/text/language"

	"github.com/dshills/blockedit/internal/config"
	"github.com/dshills/blockedit/internal/logging"
	"github.com/dshills/blockedit/internal/module"
)

// dictionaries holds the built-in translations by language.
var dictionaries = map[language.Tag]map[string]string{
	language.English: {
		"ui.blockTunes.toggler.Click to tune":                  "Click to tune",
		"ui.blockTunes.toggler.or drag to move":                "or drag to move",
		"ui.inlineToolbar.converter.Convert to":                "Convert to",
		"ui.toolbar.toolbox.Add":                               "Add",
		"ui.popover.Filter":                                    "Filter",
		"ui.popover.Nothing found":                             "Nothing found",
		"toolNames.Text":                                       "Text",
		"tools.stub.The block can not be displayed correctly.": "The block can not be displayed correctly.",
		"blockTunes.delete.Delete":                             "Delete",
		"blockTunes.moveUp.Move up":                            "Move up",
		"blockTunes.moveDown.Move down":                        "Move down",
	},
}

var supported = func() []language.Tag {
	tags := []language.Tag{language.English}
	for tag := range dictionaries {
		if tag != language.English {
			tags = append(tags, tag)
		}
	}
	return tags
}()

var matcher = language.NewMatcher(supported)

// I18n is the I18n module.
type I18n struct {
	settings config.I18nSettings
	log      *slog.Logger

	mu        sync.RWMutex
	tag       language.Tag
	direction string
	dict      map[string]string
}

// NewModule creates the module.
func NewModule(cfg *config.Config, log *slog.Logger) *I18n {
	return &I18n{
		settings:  cfg.I18n,
		log:       logging.ForModule(log, string(module.I18n)),
		tag:       language.English,
		direction: cfg.I18n.Direction,
		dict:      dictionaries[language.English],
	}
}

// Name implements module.Module.
func (m *I18n) Name() module.Name {
	return module.I18n
}

// Prepare selects the dictionary for the configured locale. An invalid
// locale falls back to English.
func (m *I18n) Prepare(context.Context) module.Result {
	tag, err := language.Parse(m.settings.Locale)
	if err != nil {
		return module.Recoverable(fmt.Errorf("locale %q: %w", m.settings.Locale, err))
	}
	_, index, conf := matcher.Match(tag)

	m.mu.Lock()
	m.tag = tag
	if conf != language.No {
		m.dict = dictionaries[supported[index]]
	}
	m.mu.Unlock()

	m.log.Debug("locale selected", "locale", tag.String(), "direction", m.direction)
	return module.OK()
}

// Tag returns the active locale.
func (m *I18n) Tag() language.Tag {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.tag
}

// Direction returns "ltr" or "rtl".
func (m *I18n) Direction() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.direction
}

// T translates key.
func (m *I18n) T(key string) string {
	if s, ok := m.lookup(key); ok {
		return s
	}
	return key
}

// UI translates text of an interface namespace.
func (m *I18n) UI(namespace, text string) string {
	if s, ok := m.lookup(join("ui", namespace, text)); ok {
		return s
	}
	return text
}

// Tool translates text of a tool namespace.
func (m *I18n) Tool(tool, text string) string {
	if s, ok := m.lookup(join("tools", tool, text)); ok {
		return s
	}
	return text
}

func (m *I18n) lookup(key string) (string, bool) {
	if s, ok := m.settings.Messages[key]; ok {
		return s, true
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.dict[key]
	return s, ok
}

func join(parts ...string) string {
	return strings.Join(parts, ".")
}
