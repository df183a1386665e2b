// Package run implements the main logic for the replaygen tool in a testable way.
package run

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/alexflint/go-arg"
)

// Interfaces - Public

// FileSystem interface for mocking.
type FileSystem interface {
	WriteFile(name string, data []byte, perm os.FileMode) error
}

// Functions - Public

// Run executes the replaygen tool logic. It takes command-line arguments, an environment variable
// getter, a FileSystem for writing, a PackageLoader for reading packages, and a writer for
// progress output. On success, it writes a seam mock for the requested interface into the
// package that invoked go generate.
func Run(args []string, getEnv func(string) string, fileSys FileSystem, loader PackageLoader, out io.Writer) error {
	info, err := getGeneratorCallInfo(args, getEnv)
	if err != nil {
		return err
	}

	source, err := loadSource(info, loader)
	if err != nil {
		return err
	}

	model, err := buildModel(source, info)
	if err != nil {
		return err
	}

	code, err := render(model)
	if err != nil {
		return err
	}

	return writeGeneratedCode(code, info, getEnv, fileSys, out)
}

// Structs - Private

// cliArgs defines the command-line arguments for the generator.
type cliArgs struct {
	Interface string `arg:"positional,required" help:"interface to mock (e.g. Store or pkg.Store)"`
	Name      string `arg:"--name"              help:"name for the generated mock (defaults to <Interface>Mock)"`
	Pkg       string `arg:"--pkg"               help:"import path of the interface's package, when its qualifier is ambiguous"`
}

// generatorInfo holds information gathered for generation.
type generatorInfo struct {
	pkgName       string
	qualifier     string
	interfaceName string
	importPath    string
	mockName      string
}

// unexported variables.
var (
	errNoPackage = errors.New("GOPACKAGE is not set; run replaygen through go generate")
)

// Functions - Private

// getGeneratorCallInfo returns basic information about the current call to the generator.
func getGeneratorCallInfo(args []string, getEnv func(string) string) (generatorInfo, error) {
	pkgName := getEnv("GOPACKAGE")
	if pkgName == "" {
		return generatorInfo{}, errNoPackage
	}

	parsed, err := parseArgs(args)
	if err != nil {
		return generatorInfo{}, err
	}

	qualifier, name := splitQualified(parsed.Interface)

	mockName := parsed.Name
	if mockName == "" {
		mockName = name + "Mock"
	}

	return generatorInfo{
		pkgName:       pkgName,
		qualifier:     qualifier,
		interfaceName: name,
		importPath:    parsed.Pkg,
		mockName:      mockName,
	}, nil
}

// parseArgs parses command-line arguments into cliArgs.
func parseArgs(args []string) (cliArgs, error) {
	var parsed cliArgs

	parser, err := arg.NewParser(arg.Config{Program: "replaygen"}, &parsed)
	if err != nil {
		return cliArgs{}, fmt.Errorf("failed to create argument parser: %w", err)
	}

	var cmdArgs []string
	if len(args) > 1 {
		cmdArgs = args[1:]
	}

	err = parser.Parse(cmdArgs)
	if err != nil {
		return cliArgs{}, fmt.Errorf("failed to parse arguments: %w", err)
	}

	return parsed, nil
}

// splitQualified splits "pkg.Name" into its qualifier and name.
func splitQualified(name string) (string, string) {
	qualifier, local, found := strings.Cut(name, ".")
	if !found {
		return "", name
	}

	return qualifier, local
}
