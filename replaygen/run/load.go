package run

import (
	"errors"
	"fmt"
	"go/build"
	"go/token"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dave/dst"
	"github.com/dave/dst/decorator"
)

// PackageLoader loads the parsed files of a package by import path. The path "." is the package
// go generate runs in, the only one whose test files are loaded.
type PackageLoader interface {
	Load(importPath string) ([]*dst.File, error)
}

// DirLoader loads packages from disk, resolving import paths with go/build.
type DirLoader struct{}

// Load parses every .go file of the package. Files that fail to parse are skipped.
func (DirLoader) Load(importPath string) ([]*dst.File, error) {
	dir, err := packageDir(importPath)
	if err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	includeTests := importPath == "."
	dec := decorator.NewDecorator(token.NewFileSet())
	files := make([]*dst.File, 0, len(entries))

	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".go") {
			continue
		}

		if !includeTests && strings.HasSuffix(name, "_test.go") {
			continue
		}

		file, err := dec.ParseFile(filepath.Join(dir, name), nil, 0)
		if err != nil {
			continue
		}

		files = append(files, file)
	}

	if len(files) == 0 {
		return nil, fmt.Errorf("%w: no parsable .go files in %s", errNoPackageFiles, dir)
	}

	return files, nil
}

// sourcePackage is the package declaring the interface to mock.
type sourcePackage struct {
	files []*dst.File
	// qualifier and import path the generated code refers to the package by; empty when the mock
	// is generated into the package itself
	qualifier  string
	importPath string
}

// unexported variables.
var (
	errNoPackageFiles   = errors.New("no package files")
	errUnknownQualifier = errors.New("no import matches qualifier")
)

// importName returns the name an import spec binds: its alias, or the last element of its path.
func importName(spec *dst.ImportSpec) (string, string) {
	importPath, err := strconv.Unquote(spec.Path.Value)
	if err != nil {
		return "", ""
	}

	if spec.Name != nil {
		return spec.Name.Name, importPath
	}

	return path.Base(importPath), importPath
}

// loadSource loads the package declaring the interface: the current package, or the one its
// qualifier imports.
func loadSource(info generatorInfo, loader PackageLoader) (sourcePackage, error) {
	local, err := loader.Load(".")
	if err != nil {
		return sourcePackage{}, fmt.Errorf("failed to load the current package: %w", err)
	}

	local = filesOfPackage(local, info.pkgName)

	if info.qualifier == "" {
		return sourcePackage{files: local}, nil
	}

	importPath := info.importPath
	if importPath == "" {
		importPath, err = resolveQualifier(local, info.qualifier)
		if err != nil {
			return sourcePackage{}, err
		}
	}

	files, err := loader.Load(importPath)
	if err != nil {
		return sourcePackage{}, fmt.Errorf("failed to load package %q: %w", importPath, err)
	}

	return sourcePackage{files: files, qualifier: info.qualifier, importPath: importPath}, nil
}

// filesOfPackage keeps the files declaring package name. A directory holds both a package and its
// external test package.
func filesOfPackage(files []*dst.File, name string) []*dst.File {
	kept := make([]*dst.File, 0, len(files))

	for _, file := range files {
		if file.Name.Name == name {
			kept = append(kept, file)
		}
	}

	return kept
}

func packageDir(importPath string) (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get working directory: %w", err)
	}

	if importPath == "." {
		return cwd, nil
	}

	pkg, err := build.Import(importPath, cwd, build.FindOnly)
	if err != nil {
		return "", fmt.Errorf("failed to find package %q: %w", importPath, err)
	}

	return pkg.Dir, nil
}

// resolveQualifier finds the import path the current package binds to qualifier.
func resolveQualifier(files []*dst.File, qualifier string) (string, error) {
	for _, file := range files {
		for _, spec := range file.Imports {
			name, importPath := importName(spec)
			if name == qualifier {
				return importPath, nil
			}
		}
	}

	return "", fmt.Errorf("%w %q; pass --pkg", errUnknownQualifier, qualifier)
}
