package loader

import (
	"errors"

	"github.com/pelletier/go-toml/v2"
)

// TOMLParser parses TOML configuration files.
type TOMLParser struct{}

// Parse parses TOML data into a map.
func (TOMLParser) Parse(source string, data []byte) (map[string]any, error) {
	var cfg map[string]any
	if err := toml.Unmarshal(data, &cfg); err != nil {
		pe := &ParseError{
			Path:    source,
			Message: err.Error(),
			Err:     err,
		}
		var de *toml.DecodeError
		if errors.As(err, &de) {
			pe.Line, pe.Column = de.Position()
		}
		return nil, pe
	}
	if cfg == nil {
		cfg = map[string]any{}
	}
	return cfg, nil
}
