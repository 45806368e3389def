package mapping

import (
	"fmt"
	"go/token"
	"strings"
)

// ValidationError lists every problem found in a configuration.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "invalid duckgen config: " + strings.Join(e.Problems, "; ")
}

// Validate checks cfg. It returns a *ValidationError.
func Validate(cfg *Config) error {
	var problems []string

	add := func(format string, args ...any) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	if cfg.Version != "1" {
		add("unsupported version %q", cfg.Version)
	}

	if !token.IsIdentifier(cfg.Output.Package) {
		add("output package %q is not an identifier", cfg.Output.Package)
	}

	if !strings.HasSuffix(cfg.Output.Filename, ".go") || strings.ContainsAny(cfg.Output.Filename, `/\`) {
		add("output filename %q must be a .go file name", cfg.Output.Filename)
	}

	if len(cfg.Interfaces) == 0 {
		add("no interfaces listed")
	}

	seen := make(map[string]bool)

	for i, set := range cfg.Interfaces {
		if set.Package == "" {
			add("interfaces[%d]: package is required", i)
		}

		if len(set.Names) == 0 {
			add("interfaces[%d]: names is required", i)
		}

		for _, name := range set.Names {
			if !token.IsIdentifier(name) || !token.IsExported(name) {
				add("interfaces[%d]: %q is not an exported identifier", i, name)
				continue
			}

			key := set.Package + "." + name
			if seen[key] {
				add("interfaces[%d]: %s listed twice", i, key)
			}

			seen[key] = true
		}
	}

	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}

	return nil
}
