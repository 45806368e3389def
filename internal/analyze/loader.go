package analyze

import (
	"fmt"
	"go/types"

	"golang.org/x/tools/go/packages"
)

// LoadMode specifies what information to load from packages.
const LoadMode = packages.NeedName |
	packages.NeedTypes |
	packages.NeedImports

// Analyzer loads Go packages and collects their interfaces.
type Analyzer struct {
	graph *Graph
	dir   string
}

// NewAnalyzer creates a new Analyzer. Patterns are resolved relative to
// dir; an empty dir is the current directory.
func NewAnalyzer(dir string) *Analyzer {
	return &Analyzer{
		graph: NewGraph(),
		dir:   dir,
	}
}

// LoadPackages loads the specified packages and adds their exported
// interfaces to the graph. Patterns are standard Go package patterns
// (e.g., "./store", "io").
func (a *Analyzer) LoadPackages(patterns ...string) (*Graph, error) {
	cfg := &packages.Config{
		Mode: LoadMode,
		Dir:  a.dir,
	}

	pkgs, err := packages.Load(cfg, patterns...)
	if err != nil {
		return nil, fmt.Errorf("failed to load packages: %w", err)
	}

	var errs []error

	for _, pkg := range pkgs {
		for _, e := range pkg.Errors {
			errs = append(errs, e)
		}
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("package errors: %v", errs)
	}

	for _, pkg := range pkgs {
		a.processPackage(pkg)
	}

	return a.graph, nil
}

// Graph returns the current graph.
func (a *Analyzer) Graph() *Graph {
	return a.graph
}

func (a *Analyzer) processPackage(pkg *packages.Package) {
	pkgInfo := &PackageInfo{
		Path: pkg.PkgPath,
		Name: pkg.Name,
	}

	scope := pkg.Types.Scope()
	for _, name := range scope.Names() {
		typeName, ok := scope.Lookup(name).(*types.TypeName)
		if !ok || !typeName.Exported() || typeName.IsAlias() {
			continue
		}

		named, ok := typeName.Type().(*types.Named)
		if !ok {
			continue
		}

		iface, ok := named.Underlying().(*types.Interface)
		if !ok {
			continue
		}

		if named.TypeParams().Len() > 0 || !iface.IsMethodSet() {
			pkgInfo.Skipped = append(pkgInfo.Skipped, name)
			continue
		}

		id := TypeID{PkgPath: pkg.PkgPath, Name: name}
		a.graph.Interfaces[id] = analyzeInterface(id, named, iface)
		pkgInfo.Interfaces = append(pkgInfo.Interfaces, id)
	}

	a.graph.Packages[pkg.PkgPath] = pkgInfo
}

func analyzeInterface(id TypeID, named *types.Named, iface *types.Interface) *InterfaceInfo {
	info := &InterfaceInfo{ID: id, Named: named}

	explicit := make(map[string]bool, iface.NumExplicitMethods())
	for i := range iface.NumExplicitMethods() {
		explicit[iface.ExplicitMethod(i).Name()] = true
	}

	// NumMethods covers the complete method set, sorted by name.
	for i := range iface.NumMethods() {
		fn := iface.Method(i)

		if !fn.Exported() {
			info.Unexported = append(info.Unexported, fn.Name())
			continue
		}

		m := MethodInfo{
			Name:      fn.Name(),
			Signature: fn.Type().(*types.Signature),
		}

		if !explicit[fn.Name()] {
			m.Embedded = declaringInterface(fn)
		}

		info.Methods = append(info.Methods, m)
	}

	return info
}

// declaringInterface returns the named interface declaring fn, if any.
func declaringInterface(fn *types.Func) *TypeID {
	recv := fn.Type().(*types.Signature).Recv()
	if recv == nil {
		return nil
	}

	named, ok := recv.Type().(*types.Named)
	if !ok || named.Obj().Pkg() == nil {
		return nil
	}

	return &TypeID{PkgPath: named.Obj().Pkg().Path(), Name: named.Obj().Name()}
}

// GetInterface returns an interface that adapters can be generated for.
func (a *Analyzer) GetInterface(pkgPath, name string) (*InterfaceInfo, error) {
	id := TypeID{PkgPath: pkgPath, Name: name}

	info := a.graph.Interfaces[id]
	if info == nil {
		if pkg := a.graph.Packages[pkgPath]; pkg != nil {
			for _, skipped := range pkg.Skipped {
				if skipped == name {
					return nil, fmt.Errorf("interface %s is generic or a type constraint", id)
				}
			}
		}

		return nil, fmt.Errorf("interface %s not found", id)
	}

	if len(info.Unexported) > 0 {
		return nil, fmt.Errorf("interface %s has unexported methods %v", id, info.Unexported)
	}

	if len(info.Methods) == 0 {
		return nil, fmt.Errorf("interface %s has no methods", id)
	}

	return info, nil
}
