package gen

import "text/template"

var adaptersTemplate = template.Must(template.New("adapters").Parse(`// Code generated by duckgen. DO NOT EDIT.

package {{.PackageName}}

import (
{{range .Imports}}	{{if .Alias}}{{.Alias}} {{end}}"{{.Path}}"
{{end}})
{{range .Adapters}}{{$adapter := .}}
// {{.Name}} adapts values to {{.Interface}} ({{.Source}}).
type {{.Name}} struct {
	duck.Proxy
{{range .Methods}}
	{{.Field}} {{.FuncType}} ` + "`" + `duck:"{{.Tag}}"` + "`" + `{{end}}
}

var _ {{.Interface}} = {{.Name}}{}
{{range .Methods}}
func (a {{$adapter.Name}}) {{.Name}}({{.Params}}){{.Results}} {
	{{if .Returns}}return {{end}}a.{{.Field}}({{.Args}})
}
{{end}}
// {{.Constructor}} wraps instance as a {{.Interface}}. The adapter must be
// registered with c, see RegisterAdapters.
func {{.Constructor}}(c *duck.Cache, instance any) ({{.Interface}}, error) {
	return duck.Create[{{.Interface}}](c, instance)
}
{{end}}
// RegisterAdapters registers every adapter of this file with c.
func RegisterAdapters(c *duck.Cache) error {
{{range .Adapters}}	if err := duck.RegisterInterface[{{.Interface}}, {{.Name}}](c); err != nil {
		return err
	}
{{end}}
	return nil
}
`))
