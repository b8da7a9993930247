// Where: internal/config/yamlfile.go
// What: YAML config loader.
// Why: toxa.yml expresses the same model for projects that prefer YAML.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// yamlFile mirrors the ini layout: one global block plus named
// environments. Values that are multi-line in ini become lists here.
type yamlFile struct {
	EnvList       []string                        `yaml:"envlist"`
	SkipSDist     bool                            `yaml:"skipsdist"`
	IsolatedBuild bool                            `yaml:"isolated_build"`
	Requires      []string                        `yaml:"requires"`
	TestEnv       map[string]yaml.Node            `yaml:"testenv"`
	Envs          map[string]map[string]yaml.Node `yaml:"environments"`
}

// LoadYAML parses a yaml-format configuration file into the same File
// model the ini loader produces, so resolution downstream is shared.
func LoadYAML(path string) (*File, error) {
	payload, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return parseYAML(path, payload)
}

func parseYAML(path string, payload []byte) (*File, error) {
	if err := ValidateYAMLDocument(payload); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	var doc yamlFile
	if err := yaml.Unmarshal(payload, &doc); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	file := &File{
		Dir:           filepath.Dir(abs),
		Path:          abs,
		SkipSDist:     doc.SkipSDist,
		IsolatedBuild: doc.IsolatedBuild,
		Requires:      doc.Requires,
		Base:          map[string]string{},
		Sections:      map[string]map[string]string{},
		Extra:         map[string]map[string]string{},
	}
	for _, entry := range doc.EnvList {
		file.EnvList = append(file.EnvList, ExpandBraces(entry)...)
	}

	base, err := yamlSectionMap(file, "testenv", doc.TestEnv)
	if err != nil {
		return nil, err
	}
	file.Base = base

	for name, raw := range doc.Envs {
		section, err := yamlSectionMap(file, name, raw)
		if err != nil {
			return nil, err
		}
		file.Sections[name] = section
	}

	return file, nil
}

// yamlSectionMap flattens one environment block back into the raw string
// form resolution expects: scalar values verbatim, sequences joined by
// newlines, setenv-style maps as KEY=value lines.
func yamlSectionMap(file *File, envName string, raw map[string]yaml.Node) (map[string]string, error) {
	out := map[string]string{}
	for key, node := range raw {
		if !knownEnvKeys[key] {
			file.warnf("unknown key %q in environment %q", key, envName)
		}
		if key == legacyAllowlist {
			key = currentAllowlist
		}
		value, err := yamlNodeValue(node)
		if err != nil {
			return nil, fmt.Errorf("environment %q key %q: %w", envName, key, err)
		}
		out[key] = value
	}
	return out, nil
}

func yamlNodeValue(node yaml.Node) (string, error) {
	switch node.Kind {
	case yaml.ScalarNode:
		return node.Value, nil
	case yaml.SequenceNode:
		var lines []string
		for _, item := range node.Content {
			if item.Kind != yaml.ScalarNode {
				return "", fmt.Errorf("nested structures are not supported in list values")
			}
			lines = append(lines, item.Value)
		}
		return strings.Join(lines, "\n"), nil
	case yaml.MappingNode:
		var lines []string
		for i := 0; i+1 < len(node.Content); i += 2 {
			lines = append(lines, node.Content[i].Value+"="+node.Content[i+1].Value)
		}
		return strings.Join(lines, "\n"), nil
	}
	return "", fmt.Errorf("unsupported value kind")
}
