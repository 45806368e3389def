package gen

import (
	"go/token"
	"go/types"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"duckproxy/internal/analyze"
	"duckproxy/internal/mapping"
)

// newIface builds an interface without loading packages.
func newIface(pkg *types.Package, name string, methods ...*types.Func) *analyze.InterfaceInfo {
	iface := types.NewInterfaceType(methods, nil).Complete()
	named := types.NewNamed(types.NewTypeName(token.NoPos, pkg, name, nil), iface, nil)

	info := &analyze.InterfaceInfo{
		ID:    analyze.TypeID{PkgPath: pkg.Path(), Name: name},
		Named: named,
	}

	for _, m := range methods {
		info.Methods = append(info.Methods, analyze.MethodInfo{Name: m.Name(), Signature: m.Type().(*types.Signature)})
	}

	return info
}

func newMethod(pkg *types.Package, name string, params, results []*types.Var, variadic bool) *types.Func {
	sig := types.NewSignatureType(nil, nil, nil, types.NewTuple(params...), types.NewTuple(results...), variadic)
	return types.NewFunc(token.NoPos, pkg, name, sig)
}

func param(pkg *types.Package, name string, t types.Type) *types.Var {
	return types.NewParam(token.NoPos, pkg, name, t)
}

func testConfig() GeneratorConfig {
	cfg := DefaultGeneratorConfig()
	cfg.OutputDir = ""
	cfg.ImportPath = "example.com/out"

	return cfg
}

func TestGenerate_MatchesCommittedExample(t *testing.T) {
	cfg, err := mapping.LoadFile("../../examples/shapes/duckgen.yaml")
	require.NoError(t, err)

	analyzer := analyze.NewAnalyzer("")
	_, err = analyzer.LoadPackages(cfg.Patterns()...)
	require.NoError(t, err)

	var ifaces []*analyze.InterfaceInfo

	for _, set := range cfg.Interfaces {
		for _, name := range set.Names {
			info, err := analyzer.GetInterface(set.Package, name)
			require.NoError(t, err)

			ifaces = append(ifaces, info)
		}
	}

	file, err := NewGenerator(ConfigFromMapping(cfg)).Generate(ifaces)
	require.NoError(t, err)

	want, err := os.ReadFile(filepath.Join(cfg.Output.Dir, cfg.Output.Filename))
	require.NoError(t, err)

	assert.Equal(t, string(want), string(file.Content))
}

func TestGenerate_NamesAndImports(t *testing.T) {
	ioPkg := types.NewPackage("io", "io")
	legacy := types.NewPackage("example.com/legacy", "legacy")
	otherDuck := types.NewPackage("example.com/duck", "duck")
	errType := types.Universe.Lookup("error").Type()
	intType := types.Typ[types.Int]

	ioCloser := newIface(ioPkg, "Closer",
		newMethod(ioPkg, "Close", nil, []*types.Var{param(ioPkg, "", errType)}, false))
	legacyCloser := newIface(legacy, "Closer",
		newMethod(legacy, "Close", nil, nil, false))

	quacker := newIface(otherDuck, "Quacker",
		newMethod(otherDuck, "Len", nil, []*types.Var{param(otherDuck, "", intType)}, false),
		newMethod(otherDuck, "LenFn", nil, []*types.Var{param(otherDuck, "", intType)}, false),
		newMethod(otherDuck, "Copy", []*types.Var{
			param(otherDuck, "a", intType),
			param(otherDuck, "_", types.NewSlice(intType)),
		}, nil, true),
		newMethod(otherDuck, "String", nil, []*types.Var{param(otherDuck, "", types.Typ[types.String])}, false),
	)

	file, err := NewGenerator(testConfig()).Generate([]*analyze.InterfaceInfo{quacker, ioCloser, legacyCloser})
	require.NoError(t, err)

	src := string(file.Content)

	assert.Contains(t, src, "package adapters")
	assert.Contains(t, src, `duck2 "example.com/duck"`)
	assert.Contains(t, src, `"duckproxy/duck"`)

	assert.Contains(t, src, "type IoCloserAdapter struct")
	assert.Contains(t, src, "type LegacyCloserAdapter struct")
	assert.Contains(t, src, "func NewIoCloser(c *duck.Cache, instance any) (io.Closer, error)")
	assert.Contains(t, src, "func (a LegacyCloserAdapter) Close() {\n\ta.CloseFn()\n}")

	assert.Contains(t, src, "type QuackerAdapter struct")
	assert.Contains(t, src, "var _ duck2.Quacker = QuackerAdapter{}")
	assert.Contains(t, src, "LenFnFn ")
	assert.Contains(t, src, "LenFnFnFn ")
	assert.Contains(t, src, "func (a QuackerAdapter) Copy(p0 int, p1 ...int) {\n\ta.CopyFn(p0, p1...)\n}")
	assert.Contains(t, src, `duck:"String,include"`)
	assert.Contains(t, src, "duck.RegisterInterface[duck2.Quacker, QuackerAdapter](c)")
}

func TestGenerate_Errors(t *testing.T) {
	pkg := types.NewPackage("example.com/p", "p")
	hidden := types.NewNamed(types.NewTypeName(token.NoPos, pkg, "node", nil), types.NewStruct(nil, nil), nil)

	tests := []struct {
		name  string
		iface *analyze.InterfaceInfo
		want  string
	}{
		{
			name:  "proxy method",
			iface: newIface(pkg, "P", newMethod(pkg, "Proxy", nil, nil, false)),
			want:  "collides with the embedded duck.Proxy",
		},
		{
			name: "unexported type",
			iface: newIface(pkg, "N", newMethod(pkg, "Next", nil,
				[]*types.Var{param(pkg, "", types.NewPointer(hidden))}, false)),
			want: "refers to unexported type example.com/p.node",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewGenerator(testConfig()).Generate([]*analyze.InterfaceInfo{tt.iface})
			assert.ErrorContains(t, err, tt.want)
		})
	}

	unexported := newIface(pkg, "U", newMethod(pkg, "Get", nil, nil, false))
	unexported.Unexported = []string{"get"}

	_, err := NewGenerator(testConfig()).Generate([]*analyze.InterfaceInfo{unexported})
	assert.ErrorContains(t, err, "cannot be implemented")

	_, err = NewGenerator(testConfig()).Generate(nil)
	assert.Error(t, err)
}

func TestWriteFiles(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")

	require.NoError(t, WriteFiles([]GeneratedFile{{Filename: "a.go", Content: []byte("package out\n")}}, dir))

	data, err := os.ReadFile(filepath.Join(dir, "a.go"))
	require.NoError(t, err)
	assert.Equal(t, "package out\n", string(data))

	require.NoError(t, writeDebugUnformatted(dir, "a.go", []byte("package")))
	assert.FileExists(t, filepath.Join(dir, "a.unformatted.go"))
}
