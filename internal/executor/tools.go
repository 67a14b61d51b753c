package executor

import (
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// ResolveTool locates a tracer or workload binary. Names containing a path
// separator are taken as-is; bare names are looked up on PATH.
func ResolveTool(name string) (string, error) {
	if strings.ContainsRune(name, os.PathSeparator) {
		if err := VerifyExecutable(name); err != nil {
			return "", err
		}
		return name, nil
	}
	path, err := exec.LookPath(name)
	if err != nil {
		return "", fmt.Errorf("tool %q not found on PATH: %w", name, err)
	}
	return path, nil
}

// VerifyExecutable checks that path names a regular file with an execute bit.
func VerifyExecutable(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat %q: %w", path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("%q is a directory", path)
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("%q is not a regular file", path)
	}
	if info.Mode().Perm()&0111 == 0 {
		return fmt.Errorf("%q is not executable (mode=%s)", path, info.Mode())
	}
	return nil
}

// Available reports whether a tool resolves.
func Available(name string) bool {
	_, err := ResolveTool(name)
	return err == nil
}
