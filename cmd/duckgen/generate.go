package main

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"duckproxy/internal/analyze"
	"duckproxy/internal/gen"
	"duckproxy/internal/mapping"
)

const defaultConfigPath = "duckgen.yaml"

func newGenerateCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate adapters from a duckgen config",
		Long: `Loads the packages named in the config, reads the method sets of the
listed interfaces and writes their adapters to the output directory.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			file, err := runGenerate(configPath)
			if err != nil {
				return err
			}

			cmd.Printf("wrote %s\n", file)

			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to the duckgen config")

	return cmd
}

// runGenerate generates the adapters configured at configPath and returns
// the path of the written file.
func runGenerate(configPath string) (string, error) {
	cfg, err := mapping.LoadFile(configPath)
	if err != nil {
		var verr *mapping.ValidationError
		if errors.As(err, &verr) {
			return "", fmt.Errorf("invalid config %s:\n  %s", configPath, strings.Join(verr.Problems, "\n  "))
		}

		return "", err
	}

	analyzer := analyze.NewAnalyzer(filepath.Dir(configPath))
	if _, err := analyzer.LoadPackages(cfg.Patterns()...); err != nil {
		return "", err
	}

	var ifaces []*analyze.InterfaceInfo

	for _, set := range cfg.Interfaces {
		for _, name := range set.Names {
			info, err := analyzer.GetInterface(set.Package, name)
			if err != nil {
				return "", err
			}

			ifaces = append(ifaces, info)
		}
	}

	genCfg := gen.ConfigFromMapping(cfg)

	file, err := gen.NewGenerator(genCfg).Generate(ifaces)
	if err != nil {
		return "", err
	}

	if err := gen.WriteFiles([]gen.GeneratedFile{*file}, genCfg.OutputDir); err != nil {
		return "", err
	}

	return filepath.Join(genCfg.OutputDir, file.Filename), nil
}
