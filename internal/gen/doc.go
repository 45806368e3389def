// Package gen generates typed duck adapters for Go interfaces.
//
// Generation uses text/template + go/format. For every interface the output
// holds:
//   - an adapter struct embedding duck.Proxy with one func field per method,
//     tagged with the method name
//   - value-receiver methods implementing the interface through those fields
//   - a typed New<Name> constructor
//
// and the file ends with RegisterAdapters, which registers every adapter
// with a duck.Cache.
package gen
