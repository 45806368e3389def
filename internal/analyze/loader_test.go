package analyze

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const shapesPkg = "duckproxy/examples/shapes"

func methodNames(info *InterfaceInfo) []string {
	names := make([]string, 0, len(info.Methods))
	for _, m := range info.Methods {
		names = append(names, m.Name)
	}

	return names
}

func TestAnalyzer_LoadPackages(t *testing.T) {
	analyzer := NewAnalyzer("")
	graph, err := analyzer.LoadPackages(shapesPkg, "io")
	require.NoError(t, err)
	require.NotNil(t, graph)

	assert.Contains(t, graph.Packages, shapesPkg)
	assert.Contains(t, graph.Packages, "io")

	pkg := graph.Packages[shapesPkg]
	assert.Equal(t, "shapes", pkg.Name)
	assert.ElementsMatch(t, []TypeID{
		{PkgPath: shapesPkg, Name: "Labeled"},
		{PkgPath: shapesPkg, Name: "Sized"},
		{PkgPath: shapesPkg, Name: "Store"},
	}, pkg.Interfaces)
	assert.ElementsMatch(t, []string{"Getter", "Number"}, pkg.Skipped)

	assert.Contains(t, graph.Interfaces, TypeID{PkgPath: "io", Name: "ReadWriteCloser"})
	assert.Same(t, graph, analyzer.Graph())
}

func TestAnalyzer_EmbeddedMethods(t *testing.T) {
	analyzer := NewAnalyzer("")
	_, err := analyzer.LoadPackages(shapesPkg)
	require.NoError(t, err)

	store, err := analyzer.GetInterface(shapesPkg, "Store")
	require.NoError(t, err)

	assert.Equal(t, []string{"Close", "Get", "Keys", "Len", "Put", "String"}, methodNames(store))
	assert.Equal(t, "duckproxy/examples/shapes.Store", store.ID.String())

	for _, m := range store.Methods {
		switch m.Name {
		case "Close":
			require.NotNil(t, m.Embedded)
			assert.Equal(t, TypeID{PkgPath: "io", Name: "Closer"}, *m.Embedded)
		case "Len":
			require.NotNil(t, m.Embedded)
			assert.Equal(t, "Sized", m.Embedded.Name)
		case "Keys":
			assert.Nil(t, m.Embedded)
			assert.True(t, m.Variadic())
		default:
			assert.Nil(t, m.Embedded, m.Name)
			assert.False(t, m.Variadic(), m.Name)
		}
	}
}

func TestAnalyzer_GetInterfaceErrors(t *testing.T) {
	analyzer := NewAnalyzer("")
	_, err := analyzer.LoadPackages(shapesPkg)
	require.NoError(t, err)

	_, err = analyzer.GetInterface(shapesPkg, "Labeled")
	assert.ErrorContains(t, err, "unexported methods [label]")

	_, err = analyzer.GetInterface(shapesPkg, "Getter")
	assert.ErrorContains(t, err, "generic or a type constraint")

	_, err = analyzer.GetInterface(shapesPkg, "LegacyStore")
	assert.ErrorContains(t, err, "not found")

	_, err = analyzer.LoadPackages("duckproxy/does/not/exist")
	assert.Error(t, err)
}
