package analyze

import (
	"go/types"
)

// TypeID uniquely identifies a type by its package path and name.
type TypeID struct {
	PkgPath string // e.g., "io"
	Name    string // e.g., "Reader"
}

// String returns a human-readable representation of the TypeID.
func (t TypeID) String() string {
	if t.PkgPath == "" {
		return t.Name
	}

	return t.PkgPath + "." + t.Name
}

// InterfaceInfo describes an exported interface.
type InterfaceInfo struct {
	ID TypeID
	// Methods is the complete method set, sorted by name.
	Methods []MethodInfo
	// Named is the interface's go/types object.
	Named *types.Named
	// Unexported lists unexported methods. Such interfaces cannot be
	// implemented outside their package.
	Unexported []string
}

// MethodInfo describes one interface method.
type MethodInfo struct {
	Name      string
	Signature *types.Signature
	// Embedded is the interface the method was declared in, when it was
	// promoted from an embedded interface.
	Embedded *TypeID
}

// Variadic reports whether the method's last parameter is variadic.
func (m MethodInfo) Variadic() bool {
	return m.Signature.Variadic()
}

// Graph holds all interfaces found in loaded packages.
type Graph struct {
	// Interfaces maps TypeID to InterfaceInfo.
	Interfaces map[TypeID]*InterfaceInfo
	// Packages maps package paths to their package info.
	Packages map[string]*PackageInfo
}

// NewGraph creates a new empty Graph.
func NewGraph() *Graph {
	return &Graph{
		Interfaces: make(map[TypeID]*InterfaceInfo),
		Packages:   make(map[string]*PackageInfo),
	}
}

// PackageInfo holds information about a loaded package.
type PackageInfo struct {
	Path       string   // Import path
	Name       string   // Package name
	Interfaces []TypeID // Exported interfaces defined in this package
	// Skipped lists exported interfaces that are not plain method sets
	// (type constraints, generic interfaces).
	Skipped []string
}
