// Package filex contains local filesystem helpers: resolving the download
// directory and saving downloaded content without leaving partial files.
package filex

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// EnsureDir resolves dir against the working directory when it is relative,
// creates it if needed and returns the absolute path.
func EnsureDir(dir string) (string, error) {
	if !filepath.IsAbs(dir) {
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("getwd: %w", err)
		}
		dir = filepath.Join(cwd, dir)
	}

	if err := os.MkdirAll(dir, 0o770); err != nil {
		return "", fmt.Errorf("mkdir %s: %w", dir, err)
	}

	return dir, nil
}

// SaveAs streams r into dir/name. Content goes to a temporary file in the same
// directory first and is renamed into place only after a complete copy, so a
// failed download never leaves a truncated file under the target name.
// Only the base of name is used. It returns the final path.
func SaveAs(dir, name string, r io.Reader) (string, error) {
	base := filepath.Base(name)
	if base == "." || base == string(filepath.Separator) || base == "" {
		return "", fmt.Errorf("invalid file name %q", name)
	}

	dir, err := EnsureDir(dir)
	if err != nil {
		return "", err
	}

	tmp, err := os.CreateTemp(dir, "."+base+".*.part")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return "", fmt.Errorf("write %s: %w", base, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("close %s: %w", base, err)
	}

	target := filepath.Join(dir, base)
	if err := os.Rename(tmpName, target); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("rename to %s: %w", target, err)
	}
	return target, nil
}
