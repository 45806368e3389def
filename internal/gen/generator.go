package gen

import (
	"bytes"
	"fmt"
	"go/format"
	"go/token"
	"go/types"
	"sort"
	"strings"

	"duckproxy/internal/analyze"
	"duckproxy/internal/common"
	"duckproxy/internal/mapping"
)

// GeneratorConfig holds configuration for code generation.
type GeneratorConfig struct {
	// PackageName is the name of the generated package.
	PackageName string
	// ImportPath is the import path of the generated package; its own
	// types are not qualified. Optional.
	ImportPath string
	// OutputDir is the directory where generated files are written.
	OutputDir string
	// Filename is the name of the generated file.
	Filename string
	// DuckImport is the import path of the duck runtime package.
	DuckImport string
}

// DefaultGeneratorConfig returns the default generator configuration.
func DefaultGeneratorConfig() GeneratorConfig {
	return GeneratorConfig{
		PackageName: "adapters",
		OutputDir:   "./adapters",
		Filename:    "duck_adapters.go",
		DuckImport:  mapping.DefaultDuckImport,
	}
}

// ConfigFromMapping converts the output section of a duckgen config.
func ConfigFromMapping(cfg *mapping.Config) GeneratorConfig {
	return GeneratorConfig{
		PackageName: cfg.Output.Package,
		ImportPath:  cfg.Output.ImportPath,
		OutputDir:   cfg.Output.Dir,
		Filename:    cfg.Output.Filename,
		DuckImport:  cfg.Output.DuckImport,
	}
}

// Generator generates adapter source files.
type Generator struct {
	config GeneratorConfig
}

// NewGenerator creates a new Generator with the given configuration.
func NewGenerator(config GeneratorConfig) *Generator {
	return &Generator{config: config}
}

// GeneratedFile represents a generated Go source file.
type GeneratedFile struct {
	// Filename is the name of the file (e.g., "duck_adapters.go").
	Filename string
	// Content is the formatted Go source code.
	Content []byte
}

// receiver is the receiver name of generated methods.
const receiver = "a"

// templateData holds all data needed for the adapters template.
type templateData struct {
	PackageName string
	Imports     []importSpec
	Adapters    []adapterData
}

type adapterData struct {
	Name        string // adapter struct
	Constructor string
	Interface   string // qualified interface type
	Source      string // interface TypeID, for comments
	Methods     []methodData
}

type methodData struct {
	Name    string
	Field   string
	Tag     string
	Params  string // "key string, limit ...int"
	Args    string // "key, limit..."
	Results string // "", " int", " (string, bool)"
}

// FuncType is the func field type of the method.
func (m methodData) FuncType() string {
	return "func(" + m.Params + ")" + m.Results
}

// Returns reports whether the method has results.
func (m methodData) Returns() bool {
	return m.Results != ""
}

// Generate renders adapters for ifaces into one file.
func (g *Generator) Generate(ifaces []*analyze.InterfaceInfo) (*GeneratedFile, error) {
	if len(ifaces) == 0 {
		return nil, fmt.Errorf("no interfaces to generate")
	}

	sorted := append([]*analyze.InterfaceInfo(nil), ifaces...)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].ID.String() < sorted[j].ID.String()
	})

	imports := newImportSet(g.config.ImportPath)
	imports.add(g.config.DuckImport, "duck")

	data := &templateData{PackageName: g.config.PackageName}

	names := adapterNames(sorted)

	for _, info := range sorted {
		adapter, err := g.buildAdapter(info, names[info.ID], imports)
		if err != nil {
			return nil, fmt.Errorf("generating adapter for %s: %w", info.ID, err)
		}

		data.Adapters = append(data.Adapters, adapter)
	}

	data.Imports = imports.specs()

	var buf bytes.Buffer
	if err := adaptersTemplate.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("executing template: %w", err)
	}

	formatted, err := format.Source(buf.Bytes())
	if err != nil {
		if g.config.OutputDir != "" {
			_ = writeDebugUnformatted(g.config.OutputDir, g.config.Filename, buf.Bytes())
		}

		return &GeneratedFile{
			Filename: g.config.Filename,
			Content:  buf.Bytes(),
		}, fmt.Errorf("formatting code: %w (unformatted code returned)", err)
	}

	return &GeneratedFile{
		Filename: g.config.Filename,
		Content:  formatted,
	}, nil
}

// adapterNames names adapters after their interface, prefixed with the
// package name when two interfaces share a name.
func adapterNames(ifaces []*analyze.InterfaceInfo) map[analyze.TypeID]string {
	count := make(map[string]int)
	for _, info := range ifaces {
		count[info.ID.Name]++
	}

	names := make(map[analyze.TypeID]string, len(ifaces))

	for _, info := range ifaces {
		base := info.ID.Name
		if count[base] > 1 {
			base = capitalize(common.PkgAlias(info.ID.PkgPath)) + base
		}

		names[info.ID] = base
	}

	return names
}

func (g *Generator) buildAdapter(info *analyze.InterfaceInfo, base string, imports *importSet) (adapterData, error) {
	if len(info.Unexported) > 0 {
		return adapterData{}, fmt.Errorf("unexported methods %v cannot be implemented", info.Unexported)
	}

	adapter := adapterData{
		Name:        base + "Adapter",
		Constructor: "New" + base,
		Interface:   imports.typeString(info.Named),
		Source:      info.ID.String(),
	}

	taken := map[string]bool{"Proxy": true}
	for _, m := range info.Methods {
		if m.Name == "Proxy" {
			return adapterData{}, fmt.Errorf("method Proxy collides with the embedded duck.Proxy")
		}

		taken[m.Name] = true
	}

	for _, m := range info.Methods {
		if ref := unexportedRef(m.Signature, g.config.ImportPath); ref != "" {
			return adapterData{}, fmt.Errorf("method %s refers to unexported type %s", m.Name, ref)
		}

		field := m.Name + "Fn"
		for taken[field] {
			field += "Fn"
		}

		taken[field] = true

		adapter.Methods = append(adapter.Methods, g.buildMethod(m, field, imports))
	}

	return adapter, nil
}

func (g *Generator) buildMethod(m analyze.MethodInfo, field string, imports *importSet) methodData {
	sig := m.Signature
	params := sig.Params()

	ptypes := make([]string, params.Len())
	for i := range params.Len() {
		t := params.At(i).Type()
		if sig.Variadic() && i == params.Len()-1 {
			ptypes[i] = "..." + imports.typeString(t.(*types.Slice).Elem())
			continue
		}

		ptypes[i] = imports.typeString(t)
	}

	names := paramNames(params, imports)

	decl := make([]string, len(ptypes))
	args := make([]string, len(ptypes))

	for i := range ptypes {
		decl[i] = names[i] + " " + ptypes[i]
		args[i] = names[i]

		if sig.Variadic() && i == len(ptypes)-1 {
			args[i] += "..."
		}
	}

	results := sig.Results()
	out := make([]string, results.Len())

	for i := range results.Len() {
		out[i] = imports.typeString(results.At(i).Type())
	}

	md := methodData{
		Name:   m.Name,
		Field:  field,
		Tag:    m.Name,
		Params: strings.Join(decl, ", "),
		Args:   strings.Join(args, ", "),
	}

	switch len(out) {
	case 0:
	case 1:
		md.Results = " " + out[0]
	default:
		md.Results = " (" + strings.Join(out, ", ") + ")"
	}

	if (m.Name == "String" || m.Name == "GoString") && params.Len() == 0 && md.Results == " string" {
		md.Tag += ",include"
	}

	return md
}

// paramNames keeps the declared parameter names when they are usable as
// generated identifiers, and falls back to p0, p1... otherwise.
func paramNames(params *types.Tuple, imports *importSet) []string {
	names := make([]string, params.Len())
	seen := make(map[string]bool, params.Len())
	usable := true

	for i := range params.Len() {
		name := params.At(i).Name()
		names[i] = name

		if name == "" || name == "_" || name == receiver || seen[name] ||
			imports.used(name) || token.IsKeyword(name) || !token.IsIdentifier(name) {
			usable = false
		}

		seen[name] = true
	}

	if usable {
		return names
	}

	for i := range names {
		names[i] = fmt.Sprintf("p%d", i)
	}

	return names
}
