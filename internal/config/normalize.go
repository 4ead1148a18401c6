package config

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/dshills/blockedit/internal/document"
	"github.com/dshills/blockedit/internal/errdefs"
	"github.com/dshills/blockedit/internal/logging"
)

// deprecations remembers which deprecated fields were already reported.
var deprecations sync.Map

// warnDeprecated logs msg the first time field is seen in this process.
func warnDeprecated(log *slog.Logger, field, msg string) {
	if _, seen := deprecations.LoadOrStore(field, struct{}{}); seen {
		return
	}
	log.Warn(msg, "field", field)
}

// Option configures Normalize.
type Option func(*normalizeOptions)

type normalizeOptions struct {
	logger *slog.Logger
}

// WithLogger sets the logger deprecation warnings go to.
func WithLogger(l *slog.Logger) Option {
	return func(o *normalizeOptions) {
		o.logger = l
	}
}

// DefaultSanitizer returns the whitelist used when none is configured.
func DefaultSanitizer() map[string]any {
	return map[string]any{
		"p": true,
		"b": true,
		"a": map[string]any{
			"href":   true,
			"target": "_blank",
			"rel":    "nofollow",
		},
	}
}

// Normalize turns host input into a fully defaulted configuration.
//
// input may be a holder id, a Config or a *Config; the caller's value is
// never modified. Any other type is a configuration error.
func Normalize(input any, opts ...Option) (*Config, error) {
	o := normalizeOptions{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = logging.NewNop()
	}

	var cfg *Config
	switch v := input.(type) {
	case nil:
		cfg = &Config{}
	case string:
		cfg = &Config{Holder: v}
	case Config:
		cfg = v.Clone()
	case *Config:
		if v == nil {
			cfg = &Config{}
		} else {
			cfg = v.Clone()
		}
	default:
		return nil, errdefs.NewConfigurationError("", "unsupported configuration type %T", input)
	}

	if cfg.HolderID != "" {
		warnDeprecated(o.logger, "holderId", "holderId is deprecated and will be removed; use holder instead")
		if cfg.Holder == "" && cfg.HolderNode == nil {
			cfg.Holder = cfg.HolderID
			cfg.HolderID = ""
		}
	}
	if cfg.Holder == "" && cfg.HolderNode == nil {
		cfg.Holder = DefaultHolder
	}

	if cfg.InitialBlock != "" {
		warnDeprecated(o.logger, "initialBlock", "initialBlock is deprecated and will be removed; use defaultBlock instead")
		if cfg.DefaultBlock == "" {
			cfg.DefaultBlock = cfg.InitialBlock
		} else if cfg.DefaultBlock != cfg.InitialBlock {
			o.logger.Warn("both initialBlock and defaultBlock are set; defaultBlock is used",
				"initialBlock", cfg.InitialBlock, "defaultBlock", cfg.DefaultBlock)
		}
		cfg.InitialBlock = ""
	}
	if cfg.DefaultBlock == "" {
		cfg.DefaultBlock = DefaultBlockType
	}

	switch {
	case cfg.MinHeight == nil:
		cfg.MinHeight = Pixels(DefaultMinHeight)
	case *cfg.MinHeight < 0:
		return nil, errdefs.NewConfigurationError("minHeight", "must not be negative, got %d", *cfg.MinHeight)
	}

	if cfg.Sanitizer == nil {
		cfg.Sanitizer = DefaultSanitizer()
	}
	if cfg.Tools == nil {
		cfg.Tools = map[string]ToolSettings{}
	}

	if cfg.I18n.Locale == "" {
		cfg.I18n.Locale = DefaultLocale
	}
	switch cfg.I18n.Direction {
	case "":
		cfg.I18n.Direction = DefaultDirection
	case "ltr", "rtl":
	default:
		return nil, errdefs.NewConfigurationError("i18n.direction", "must be ltr or rtl, got %q", cfg.I18n.Direction)
	}
	if cfg.I18n.Messages == nil {
		cfg.I18n.Messages = map[string]string{}
	}

	if cfg.Data == nil || len(cfg.Data.Blocks) == 0 {
		cfg.Data = &document.Output{
			Blocks: []document.Block{document.NewBlock(cfg.DefaultBlock, nil)},
		}
	}

	if cfg.LogLevel == "" {
		cfg.LogLevel = DefaultLogLevel
	}

	switch cfg.InvalidBlocks {
	case "":
		cfg.InvalidBlocks = DefaultInvalidBlock
	case InvalidBlocksDrop, InvalidBlocksFail:
	default:
		return nil, errdefs.NewConfigurationError("invalidBlocks", "unknown policy %q", cfg.InvalidBlocks)
	}

	if !cfg.Platform.Valid() {
		return nil, errdefs.NewConfigurationError("platform", "unknown platform %q", cfg.Platform)
	}

	return cfg, nil
}

// Validate checks that the holder of a normalized configuration can be
// resolved to an element.
func Validate(cfg *Config, r Resolver) error {
	_, err := ResolveHolder(cfg, r)
	return err
}

// ResolveHolder returns the container node of cfg.
func ResolveHolder(cfg *Config, r Resolver) (Node, error) {
	if cfg == nil {
		return nil, errdefs.NewConfigurationError("", "missing configuration")
	}
	if cfg.HolderID != "" && cfg.Holder != "" {
		return nil, errdefs.NewConfigurationError("holderId", "holderId and holder can not be set at the same time")
	}

	if cfg.HolderNode != nil {
		if cfg.Holder != "" {
			return nil, errdefs.NewConfigurationError("holder",
				"ambiguous holder: both id %q and a node reference are set", cfg.Holder)
		}
		if !cfg.HolderNode.IsElement() {
			return nil, errdefs.NewConfigurationError("holder", "holder node is not an element")
		}
		return cfg.HolderNode, nil
	}

	if cfg.Holder == "" {
		return nil, errdefs.NewConfigurationError("holder", "no holder set")
	}
	if r == nil {
		return nil, errdefs.NewConfigurationError("holder", "no document to find element %q in", cfg.Holder)
	}
	node, ok := r.Lookup(cfg.Holder)
	if !ok || node == nil {
		return nil, errdefs.NewConfigurationError("holder", "element with id %q is missing", cfg.Holder)
	}
	if !node.IsElement() {
		return nil, errdefs.NewConfigurationError("holder", "%q should be an element", cfg.Holder)
	}
	return node, nil
}

// String summarizes the configuration for logs.
func (c *Config) String() string {
	if c == nil {
		return "<nil>"
	}
	return fmt.Sprintf("holder=%q defaultBlock=%q tools=%d readOnly=%v", c.Holder, c.DefaultBlock, len(c.Tools), c.ReadOnly)
}
