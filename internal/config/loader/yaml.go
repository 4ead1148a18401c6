package loader

import (
	"gopkg.in/yaml.v3"
)

// YAMLParser parses YAML configuration files. JSON is accepted as YAML.
type YAMLParser struct{}

// Parse parses YAML data into a map.
func (YAMLParser) Parse(source string, data []byte) (map[string]any, error) {
	var cfg map[string]any
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		pe := &ParseError{
			Path:    source,
			Message: err.Error(),
			Err:     err,
		}
		return nil, pe
	}
	if cfg == nil {
		cfg = map[string]any{}
	}
	return cfg, nil
}
