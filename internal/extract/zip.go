package extract

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

func extractZip(src, dst string) error {
	r, err := zip.OpenReader(src)
	if err != nil {
		return fmt.Errorf("zip: %w", err)
	}
	defer r.Close()

	for _, f := range r.File {
		if strings.Contains(f.Name, "..") {
			return fmt.Errorf("invalid path in archive: %s", f.Name)
		}

		target := filepath.Join(dst, f.Name)

		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0755); err != nil {
				return err
			}
			continue
		}

		if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
			return err
		}

		if err := writeZipEntry(f, target); err != nil {
			return err
		}
	}

	return nil
}

// Natives extracts the shared libraries from a native classifier jar into
// dst, flattened. Metadata entries are skipped.
func Natives(jarPath, dst string) ([]string, error) {
	r, err := zip.OpenReader(jarPath)
	if err != nil {
		return nil, fmt.Errorf("zip: %w", err)
	}
	defer r.Close()

	if err := os.MkdirAll(dst, 0755); err != nil {
		return nil, err
	}

	var extracted []string
	for _, f := range r.File {
		if f.FileInfo().IsDir() || !isNativeLibrary(f.Name) {
			continue
		}
		if strings.Contains(f.Name, "..") {
			return nil, fmt.Errorf("invalid path in archive: %s", f.Name)
		}

		target := filepath.Join(dst, filepath.Base(f.Name))
		if err := writeZipEntry(f, target); err != nil {
			return nil, err
		}
		extracted = append(extracted, target)
	}

	return extracted, nil
}

func isNativeLibrary(name string) bool {
	if strings.HasPrefix(name, "META-INF/") {
		return false
	}
	return strings.HasSuffix(name, ".so") ||
		strings.HasSuffix(name, ".dll") ||
		strings.HasSuffix(name, ".dylib") ||
		strings.HasSuffix(name, ".jnilib")
}

func writeZipEntry(f *zip.File, target string) error {
	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	outFile, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, f.Mode())
	if err != nil {
		return err
	}

	if _, err := io.Copy(outFile, rc); err != nil {
		outFile.Close()
		return err
	}

	return outFile.Close()
}
