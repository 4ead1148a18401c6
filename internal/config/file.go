package config

import "github.com/dshills/blockedit/internal/document"

// File is the on-disk form of a configuration. Callbacks and node
// references have no file representation.
type File struct {
	Holder        string              `mapstructure:"holder"`
	HolderID      string              `mapstructure:"holderId"`
	DefaultBlock  string              `mapstructure:"defaultBlock"`
	InitialBlock  string              `mapstructure:"initialBlock"`
	MinHeight     *int                `mapstructure:"minHeight"`
	Placeholder   string              `mapstructure:"placeholder"`
	Sanitizer     map[string]any      `mapstructure:"sanitizer"`
	Tools         map[string]ToolFile `mapstructure:"tools"`
	I18n          I18nFile            `mapstructure:"i18n"`
	Autofocus     bool                `mapstructure:"autofocus"`
	ReadOnly      bool                `mapstructure:"readOnly"`
	LogLevel      string              `mapstructure:"logLevel"`
	InvalidBlocks string              `mapstructure:"invalidBlocks"`
	Platform      string              `mapstructure:"platform"`
	Data          string              `mapstructure:"data"`
}

// ToolFile is the on-disk form of ToolSettings.
type ToolFile struct {
	Class    string         `mapstructure:"class"`
	Script   string         `mapstructure:"script"`
	Config   map[string]any `mapstructure:"config"`
	Shortcut string         `mapstructure:"shortcut"`
	Title    string         `mapstructure:"title"`
	Icon     string         `mapstructure:"icon"`
	Disabled bool           `mapstructure:"disabled"`
}

// I18nFile is the on-disk form of I18nSettings.
type I18nFile struct {
	Locale    string            `mapstructure:"locale"`
	Direction string            `mapstructure:"direction"`
	Messages  map[string]string `mapstructure:"messages"`
}

// Config converts the file into a configuration. data is the decoded
// document named by File.Data, or nil.
func (f *File) Config(data *document.Output) *Config {
	cfg := &Config{
		Holder:        f.Holder,
		HolderID:      f.HolderID,
		DefaultBlock:  f.DefaultBlock,
		InitialBlock:  f.InitialBlock,
		MinHeight:     f.MinHeight,
		Placeholder:   f.Placeholder,
		Sanitizer:     f.Sanitizer,
		Autofocus:     f.Autofocus,
		ReadOnly:      f.ReadOnly,
		LogLevel:      f.LogLevel,
		InvalidBlocks: InvalidBlockPolicy(f.InvalidBlocks),
		Platform:      Platform(f.Platform),
		Data:          data,
		I18n: I18nSettings{
			Locale:    f.I18n.Locale,
			Direction: f.I18n.Direction,
			Messages:  f.I18n.Messages,
		},
	}

	if len(f.Tools) > 0 {
		cfg.Tools = make(map[string]ToolSettings, len(f.Tools))
		for name, t := range f.Tools {
			ts := ToolSettings{
				Class:    t.Class,
				Script:   t.Script,
				Config:   t.Config,
				Shortcut: t.Shortcut,
				Disabled: t.Disabled,
			}
			if t.Title != "" || t.Icon != "" {
				ts.Toolbox = &Toolbox{Title: t.Title, Icon: t.Icon}
			}
			cfg.Tools[name] = ts
		}
	}
	return cfg
}
