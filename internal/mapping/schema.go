package mapping

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// DefaultDuckImport is the import path of the runtime package generated
// adapters use.
const DefaultDuckImport = "duckproxy/duck"

// Config is the root of a duckgen configuration file.
type Config struct {
	Version    string         `yaml:"version"`
	Output     Output         `yaml:"output"`
	Interfaces []InterfaceSet `yaml:"interfaces"`
}

// Output describes the generated file.
type Output struct {
	// Dir is the directory the file is written to.
	Dir string `yaml:"dir"`
	// Package is the package clause of the generated file.
	Package string `yaml:"package"`
	// ImportPath is the import path of Dir. Types of that package are not
	// qualified. Optional.
	ImportPath string `yaml:"import_path,omitempty"`
	// Filename is the generated file name.
	Filename string `yaml:"filename"`
	// DuckImport overrides the import path of the runtime package.
	DuckImport string `yaml:"duck_import,omitempty"`
}

// InterfaceSet lists interfaces of one package.
type InterfaceSet struct {
	Package string        `yaml:"package"`
	Names   NameList `yaml:"names"`
}

// NameList holds interface names. A single name may be written without
// the list brackets.
type NameList []string

// UnmarshalYAML decodes a scalar name or a sequence of names.
func (n *NameList) UnmarshalYAML(node *yaml.Node) error {
	var names []string

	switch node.Kind {
	case yaml.ScalarNode:
		var name string
		if err := node.Decode(&name); err != nil {
			return err
		}

		if name != "" {
			names = []string{name}
		}
	case yaml.SequenceNode:
		if err := node.Decode(&names); err != nil {
			return err
		}
	default:
		return fmt.Errorf("line %d: names must be a name or a list of names", node.Line)
	}

	*n = names

	return nil
}

// MarshalYAML writes a one-name list as a plain scalar.
func (n NameList) MarshalYAML() (any, error) {
	if len(n) == 1 {
		return n[0], nil
	}

	return []string(n), nil
}

// Patterns returns the package patterns to load, in file order and without
// duplicates.
func (c *Config) Patterns() []string {
	seen := make(map[string]bool, len(c.Interfaces))
	out := make([]string, 0, len(c.Interfaces))

	for _, set := range c.Interfaces {
		if seen[set.Package] {
			continue
		}

		seen[set.Package] = true
		out = append(out, set.Package)
	}

	return out
}

// Default returns the configuration written by duckgen init.
func Default() *Config {
	cfg := &Config{
		Interfaces: []InterfaceSet{
			{Package: "io", Names: NameList{"Reader", "Writer", "Closer"}},
		},
	}
	applyDefaults(cfg)

	return cfg
}
