package run

import (
	"bytes"
	"fmt"
	"go/format"
	"text/template"
)

// mockTmpl renders one seam mock. Templates are constants, so parsing cannot fail at runtime.
var mockTmpl = template.Must(template.New("mock").Parse(`// Code generated by replaygen. DO NOT EDIT.

package {{.PkgName}}

import (
{{- range .Imports}}
	{{.Spec}}
{{- end}}
)

//nolint:gochecknoinits // cascaded {{.Interface}} outputs resolve to {{.MockName}}
func init() {
	replaymock.RegisterCascade(func(s *replaymock.Session) {{.Interface}} {
		return New{{.MockName}}(s, replaymock.Undeclared())
	})
}

// {{.MockName}} is a seam mock of {{.Interface}}.
type {{.MockName}} struct {
	*replaymock.Mock
}

// New{{.MockName}} declares a {{.MockName}} in the session.
func New{{.MockName}}(s *replaymock.Session, opts ...replaymock.MockOption) *{{.MockName}} {
	m := &{{.MockName}}{}
	m.Mock = replaymock.NewMock[{{.Interface}}](s, m, opts...)

	return m
}
{{range .Methods}}
func (m *{{$.MockName}}) {{.Name}}({{.ParamList}}) {{.ResultList}} {
{{- if .Results}}
	out := m.Call({{.CallArgs}})

	return {{range $i, $result := .Results}}{{if $i}}, {{end}}replaymock.Out[{{$result}}](out, {{$i}}){{end}}
{{- else}}
	m.Call({{.CallArgs}})
{{- end}}
}
{{end}}`))

// render executes the mock template and gofmts the result.
func render(model mockModel) (string, error) {
	imports := []importModel{{Path: replaymockPath}}
	for _, spec := range model.Imports {
		if spec.Path != replaymockPath {
			imports = append(imports, spec)
		}
	}

	model.Imports = imports

	var buf bytes.Buffer

	err := mockTmpl.Execute(&buf, model)
	if err != nil {
		return "", fmt.Errorf("failed to render %s: %w", model.MockName, err)
	}

	formatted, err := format.Source(buf.Bytes())
	if err != nil {
		return "", fmt.Errorf("failed to format %s: %w\n%s", model.MockName, err, buf.String())
	}

	return string(formatted), nil
}

const replaymockPath = "github.com/toejough/replaymock"
