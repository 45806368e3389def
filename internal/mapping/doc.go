// Package mapping defines the duckgen configuration file: which interfaces
// to load and where the generated adapters go.
//
// # Schema Overview
//
//	version: "1"
//	output:
//	  dir: ./adapters
//	  package: adapters
//	  filename: duck_adapters.go
//	interfaces:
//	  - package: example.com/project/store
//	    names: [Reader, Writer]
//	  - package: io
//	    names: Closer
//
// names accepts a single string or a list.
package mapping
