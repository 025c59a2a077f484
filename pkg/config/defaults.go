package config

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYaml []byte

// Defaults returns the built in configuration values keyed by path.
func Defaults() (map[string]string, error) {
	return ParseDefaults(defaultsYaml)
}

// ParseDefaults flattens a nested yaml document into slash separated paths.
func ParseDefaults(data []byte) (map[string]string, error) {
	tree := map[string]any{}
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return nil, fmt.Errorf("parse config defaults: %w", err)
	}
	result := map[string]string{}
	flatten("", tree, result)
	return result, nil
}

func flatten(prefix string, node map[string]any, result map[string]string) {
	for key, value := range node {
		path := key
		if prefix != "" {
			path = prefix + "/" + key
		}
		switch v := value.(type) {
		case map[string]any:
			flatten(path, v, result)
		case nil:
			result[path] = ""
		default:
			result[path] = strings.TrimSpace(fmt.Sprint(v))
		}
	}
}

type defaultSetter interface {
	SetDefault(path, value string)
}

// LoadDefaults seeds every path that is not already configured.
func LoadDefaults(s defaultSetter) error {
	defaults, err := Defaults()
	if err != nil {
		return err
	}
	for path, value := range defaults {
		s.SetDefault(path, value)
	}
	return nil
}
