package run

import (
	"errors"
	"fmt"
	"path"
	"sort"
	"strings"
	"unicode"

	"github.com/dave/dst"
)

// mockModel is everything the template needs to render one mock.
type mockModel struct {
	PkgName  string
	MockName string
	// Interface is the mocked interface as the generated package refers to it.
	Interface string
	Imports   []importModel
	Methods   []methodModel
}

type importModel struct {
	Name string
	Path string
}

// Spec renders the import as it appears in an import block.
func (i importModel) Spec() string {
	if i.Name == "" || i.Name == path.Base(i.Path) {
		return fmt.Sprintf("%q", i.Path)
	}

	return fmt.Sprintf("%s %q", i.Name, i.Path)
}

type methodModel struct {
	Name    string
	Params  []paramModel
	Results []string
}

// CallArgs renders the arguments of the Call forwarding the method.
func (m methodModel) CallArgs() string {
	parts := []string{fmt.Sprintf("%q", m.Name)}
	for _, param := range m.Params {
		parts = append(parts, param.Name)
	}

	return strings.Join(parts, ", ")
}

// ParamList renders the method's parameter list.
func (m methodModel) ParamList() string {
	parts := make([]string, len(m.Params))
	for i, param := range m.Params {
		parts[i] = param.Name + " " + param.Type
	}

	return strings.Join(parts, ", ")
}

// ResultList renders the method's results as they follow the parameter list.
func (m methodModel) ResultList() string {
	switch len(m.Results) {
	case 0:
		return ""
	case 1:
		return m.Results[0]
	}

	return "(" + strings.Join(m.Results, ", ") + ")"
}

type paramModel struct {
	Name string
	Type string
}

// unexported variables.
var (
	errForeignEmbed      = errors.New("embedded interfaces from other packages are not supported")
	errGenericInterface  = errors.New("generic interfaces are not supported")
	errInterfaceNotFound = errors.New("interface not found")
	errReservedMethod    = errors.New("method name collides with the embedded *replaymock.Mock")
	errUnsupportedType   = errors.New("unsupported type expression")
)

// declaredInterface is an interface type declaration and the file holding it.
type declaredInterface struct {
	spec  *dst.TypeSpec
	iface *dst.InterfaceType
	file  *dst.File
}

// typeRenderer renders type expressions as the generated package must spell them, collecting the
// imports they need.
type typeRenderer struct {
	file      *dst.File
	qualifier string
	imports   map[string]importModel
}

func (r *typeRenderer) expr(expr dst.Expr) (string, error) {
	switch typed := expr.(type) {
	case *dst.Ident:
		return r.ident(typed.Name)
	case *dst.SelectorExpr:
		return r.selector(typed)
	case *dst.StarExpr:
		return r.prefixed("*", typed.X)
	case *dst.Ellipsis:
		return r.prefixed("...", typed.Elt)
	case *dst.ParenExpr:
		inner, err := r.expr(typed.X)

		return "(" + inner + ")", err
	case *dst.ArrayType:
		return r.array(typed)
	case *dst.MapType:
		key, err := r.expr(typed.Key)
		if err != nil {
			return "", err
		}

		return r.prefixed("map["+key+"]", typed.Value)
	case *dst.ChanType:
		return r.prefixed(chanPrefix(typed.Dir), typed.Value)
	case *dst.FuncType:
		signature, err := r.signature(typed)

		return "func" + signature, err
	case *dst.InterfaceType:
		return r.interfaceLiteral(typed)
	case *dst.StructType:
		return r.structLiteral(typed)
	case *dst.IndexExpr:
		return r.instantiation(typed.X, []dst.Expr{typed.Index})
	case *dst.IndexListExpr:
		return r.instantiation(typed.X, typed.Indices)
	}

	return "", fmt.Errorf("%w: %T", errUnsupportedType, expr)
}

func (r *typeRenderer) array(array *dst.ArrayType) (string, error) {
	if array.Len == nil {
		return r.prefixed("[]", array.Elt)
	}

	length, ok := array.Len.(*dst.BasicLit)
	if !ok {
		return "", fmt.Errorf("%w: array length %T", errUnsupportedType, array.Len)
	}

	return r.prefixed("["+length.Value+"]", array.Elt)
}

// fields renders a field list as "name type" pairs, or bare types when unnamed.
func (r *typeRenderer) fields(list *dst.FieldList, sep string) (string, error) {
	if list == nil {
		return "", nil
	}

	parts := make([]string, 0, len(list.List))

	for _, field := range list.List {
		fieldType, err := r.expr(field.Type)
		if err != nil {
			return "", err
		}

		if len(field.Names) == 0 {
			parts = append(parts, fieldType)

			continue
		}

		names := make([]string, len(field.Names))
		for i, name := range field.Names {
			names[i] = name.Name
		}

		parts = append(parts, strings.Join(names, ", ")+" "+fieldType)
	}

	return strings.Join(parts, sep), nil
}

func (r *typeRenderer) ident(name string) (string, error) {
	if r.qualifier == "" || isBuiltinType(name) {
		return name, nil
	}

	if !isExported(name) {
		return "", fmt.Errorf("%w: unexported type %s of package %s", errUnsupportedType, name, r.qualifier)
	}

	return r.qualifier + "." + name, nil
}

func (r *typeRenderer) instantiation(generic dst.Expr, args []dst.Expr) (string, error) {
	base, err := r.expr(generic)
	if err != nil {
		return "", err
	}

	rendered := make([]string, len(args))
	for i, arg := range args {
		rendered[i], err = r.expr(arg)
		if err != nil {
			return "", err
		}
	}

	return base + "[" + strings.Join(rendered, ", ") + "]", nil
}

func (r *typeRenderer) interfaceLiteral(iface *dst.InterfaceType) (string, error) {
	if iface.Methods == nil || len(iface.Methods.List) == 0 {
		return "interface{}", nil
	}

	parts := make([]string, 0, len(iface.Methods.List))

	for _, field := range iface.Methods.List {
		funcType, ok := field.Type.(*dst.FuncType)
		if !ok || len(field.Names) == 0 {
			embedded, err := r.expr(field.Type)
			if err != nil {
				return "", err
			}

			parts = append(parts, embedded)

			continue
		}

		signature, err := r.signature(funcType)
		if err != nil {
			return "", err
		}

		parts = append(parts, field.Names[0].Name+signature)
	}

	return "interface{ " + strings.Join(parts, "; ") + " }", nil
}

func (r *typeRenderer) prefixed(prefix string, expr dst.Expr) (string, error) {
	inner, err := r.expr(expr)

	return prefix + inner, err
}

func (r *typeRenderer) selector(sel *dst.SelectorExpr) (string, error) {
	pkg, ok := sel.X.(*dst.Ident)
	if !ok {
		return "", fmt.Errorf("%w: selector on %T", errUnsupportedType, sel.X)
	}

	for _, spec := range r.file.Imports {
		name, importPath := importName(spec)
		if name != pkg.Name {
			continue
		}

		r.imports[importPath] = importModel{Name: name, Path: importPath}

		return pkg.Name + "." + sel.Sel.Name, nil
	}

	return "", fmt.Errorf("%w: no import for %s.%s", errUnsupportedType, pkg.Name, sel.Sel.Name)
}

func (r *typeRenderer) signature(funcType *dst.FuncType) (string, error) {
	params, err := r.fields(funcType.Params, ", ")
	if err != nil {
		return "", err
	}

	results, err := r.fields(funcType.Results, ", ")
	if err != nil {
		return "", err
	}

	switch {
	case results == "":
		return "(" + params + ")", nil
	case len(funcType.Results.List) == 1 && len(funcType.Results.List[0].Names) == 0:
		return "(" + params + ") " + results, nil
	}

	return "(" + params + ") (" + results + ")", nil
}

func (r *typeRenderer) structLiteral(structType *dst.StructType) (string, error) {
	fields, err := r.fields(structType.Fields, "; ")
	if err != nil {
		return "", err
	}

	if fields == "" {
		return "struct{}", nil
	}

	return "struct{ " + fields + " }", nil
}

// buildModel finds the interface in the source package and describes the mock to generate.
func buildModel(source sourcePackage, info generatorInfo) (mockModel, error) {
	declared, err := findInterface(source.files, info.interfaceName)
	if err != nil {
		return mockModel{}, err
	}

	if declared.spec.TypeParams != nil && len(declared.spec.TypeParams.List) > 0 {
		return mockModel{}, fmt.Errorf("%w: %s", errGenericInterface, info.interfaceName)
	}

	imports := make(map[string]importModel)

	methods, err := collectMethods(source, declared, imports, make(map[string]bool))
	if err != nil {
		return mockModel{}, err
	}

	interfaceName := info.interfaceName
	if source.qualifier != "" {
		interfaceName = source.qualifier + "." + interfaceName
		imports[source.importPath] = importModel{Name: source.qualifier, Path: source.importPath}
	}

	return mockModel{
		PkgName:   info.pkgName,
		MockName:  info.mockName,
		Interface: interfaceName,
		Imports:   sortedImports(imports),
		Methods:   methods,
	}, nil
}

func chanPrefix(dir dst.ChanDir) string {
	switch dir {
	case dst.SEND:
		return "chan<- "
	case dst.RECV:
		return "<-chan "
	}

	return "chan "
}

// collectMethods lists the interface's methods, expanding embedded interfaces of the same package.
func collectMethods(
	source sourcePackage, declared declaredInterface, imports map[string]importModel, seen map[string]bool,
) ([]methodModel, error) {
	renderer := &typeRenderer{file: declared.file, qualifier: source.qualifier, imports: imports}

	var methods []methodModel

	for _, field := range declared.iface.Methods.List {
		switch fieldType := field.Type.(type) {
		case *dst.FuncType:
			for _, name := range field.Names {
				if seen[name.Name] {
					continue
				}

				seen[name.Name] = true

				method, err := newMethod(renderer, name.Name, fieldType)
				if err != nil {
					return nil, fmt.Errorf("method %s: %w", name.Name, err)
				}

				methods = append(methods, method)
			}
		case *dst.Ident:
			embedded, err := embeddedMethods(source, fieldType.Name, imports, seen)
			if err != nil {
				return nil, err
			}

			methods = append(methods, embedded...)
		case *dst.SelectorExpr:
			return nil, fmt.Errorf("%w: %s embeds %v.%s", errForeignEmbed, declared.spec.Name.Name,
				fieldType.X, fieldType.Sel.Name)
		default:
			return nil, fmt.Errorf("%w: %T in interface %s", errUnsupportedType, field.Type, declared.spec.Name.Name)
		}
	}

	return methods, nil
}

func embeddedMethods(
	source sourcePackage, name string, imports map[string]importModel, seen map[string]bool,
) ([]methodModel, error) {
	if name == "error" {
		if seen["Error"] {
			return nil, nil
		}

		seen["Error"] = true

		return []methodModel{{Name: "Error", Results: []string{"string"}}}, nil
	}

	declared, err := findInterface(source.files, name)
	if err != nil {
		return nil, err
	}

	return collectMethods(source, declared, imports, seen)
}

func findInterface(files []*dst.File, name string) (declaredInterface, error) {
	for _, file := range files {
		for _, decl := range file.Decls {
			gen, ok := decl.(*dst.GenDecl)
			if !ok {
				continue
			}

			for _, spec := range gen.Specs {
				typeSpec, ok := spec.(*dst.TypeSpec)
				if !ok || typeSpec.Name.Name != name {
					continue
				}

				iface, ok := typeSpec.Type.(*dst.InterfaceType)
				if !ok {
					return declaredInterface{}, fmt.Errorf("%w: %s is not an interface", errInterfaceNotFound, name)
				}

				return declaredInterface{spec: typeSpec, iface: iface, file: file}, nil
			}
		}
	}

	return declaredInterface{}, fmt.Errorf("%w: %s", errInterfaceNotFound, name)
}

func isBuiltinType(name string) bool {
	switch name {
	case "bool", "byte", "complex64", "complex128",
		"error", "float32", "float64", "int",
		"int8", "int16", "int32", "int64",
		"rune", "string", "uint", "uint8",
		"uint16", "uint32", "uint64", "uintptr",
		"comparable", "any":
		return true
	}

	return false
}

func isExported(name string) bool {
	for _, r := range name {
		return unicode.IsUpper(r)
	}

	return false
}

// newMethod models one method. Call and Execution are taken by the embedded mock. Unnamed and blank parameters are named after their position, and
// names that would shadow the receiver, the outputs or an import are suffixed.
func newMethod(renderer *typeRenderer, name string, funcType *dst.FuncType) (methodModel, error) {
	if name == "Call" || name == "Execution" {
		return methodModel{}, fmt.Errorf("%w: %s", errReservedMethod, name)
	}

	method := methodModel{Name: name}
	reserved := map[string]bool{"m": true, "out": true, "replaymock": true}

	for _, field := range funcType.Params.List {
		fieldType, err := renderer.expr(field.Type)
		if err != nil {
			return methodModel{}, err
		}

		names := field.Names
		if len(names) == 0 {
			names = []*dst.Ident{dst.NewIdent("_")}
		}

		for _, ident := range names {
			paramName := ident.Name
			if paramName == "_" {
				paramName = fmt.Sprintf("arg%d", len(method.Params))
			}

			if reserved[paramName] {
				paramName += "Arg"
			}

			method.Params = append(method.Params, paramModel{Name: paramName, Type: fieldType})
		}
	}

	if funcType.Results == nil {
		return method, nil
	}

	for _, field := range funcType.Results.List {
		fieldType, err := renderer.expr(field.Type)
		if err != nil {
			return methodModel{}, err
		}

		for range max(1, len(field.Names)) {
			method.Results = append(method.Results, fieldType)
		}
	}

	return method, nil
}

func sortedImports(imports map[string]importModel) []importModel {
	sorted := make([]importModel, 0, len(imports))
	for _, spec := range imports {
		sorted = append(sorted, spec)
	}

	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Path < sorted[j].Path })

	return sorted
}
