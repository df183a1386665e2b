package run

import (
	"fmt"
	"io"
	"strings"

	"github.com/toejough/go-reorder"
)

// writeGeneratedCode writes the mock to generated_<mockName>.go, or generated_<mockName>_test.go
// when go generate ran from a test package or test file.
func writeGeneratedCode(
	code string, info generatorInfo, getEnv func(string) string, fileSys FileSystem, out io.Writer,
) error {
	const generatedFilePermissions = 0o600

	filename := "generated_" + info.mockName + ".go"
	if strings.HasSuffix(info.pkgName, "_test") || strings.HasSuffix(getEnv("GOFILE"), "_test.go") {
		filename = "generated_" + info.mockName + "_test.go"
	}

	reordered, err := reorder.Source(code)
	if err != nil {
		_, _ = fmt.Fprintf(out, "Warning: failed to reorder %s: %v\n", filename, err)

		reordered = code
	}

	err = fileSys.WriteFile(filename, []byte(reordered), generatedFilePermissions)
	if err != nil {
		return fmt.Errorf("error writing %s: %w", filename, err)
	}

	_, _ = fmt.Fprintf(out, "%s written successfully.\n", filename)

	return nil
}
