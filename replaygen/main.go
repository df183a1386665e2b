// replaygen generates replaymock seams for Go interfaces.
// Install it with `go install github.com/toejough/replaymock/replaygen@latest` and add a
// `//go:generate replaygen <Interface>` comment next to the code that needs the mock. The mock is
// named <Interface>Mock unless `--name` says otherwise, and is written to generated_<Name>.go in
// the package holding the comment (generated_<Name>_test.go when the comment is in a test file).
package main

import (
	"fmt"
	"os"

	"github.com/toejough/replaymock/replaygen/run"
)

// main is the entry point of the replaygen tool.
func main() {
	if os.Args == nil {
		return
	}

	err := run.Run(os.Args, os.Getenv, &realFileSystem{}, run.DirLoader{}, os.Stdout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// realFileSystem implements run.FileSystem using os package.
type realFileSystem struct{}

// WriteFile writes data to the file named by name.
func (fs *realFileSystem) WriteFile(name string, data []byte, perm os.FileMode) error {
	err := os.WriteFile(name, data, perm)
	if err != nil {
		return fmt.Errorf("failed to write file %s: %w", name, err)
	}

	return nil
}
