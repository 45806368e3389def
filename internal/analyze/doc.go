// Package analyze loads Go packages and extracts the method sets of their
// exported interfaces.
//
// It uses golang.org/x/tools/go/packages with go/types. Embedded interfaces
// are flattened into the method set of the embedding interface.
//
// Key types:
//   - TypeID: package import path + type name
//   - InterfaceInfo: the flattened method set of one interface
//   - MethodInfo: method name and go/types signature
package analyze
