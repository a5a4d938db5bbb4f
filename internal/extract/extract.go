// Package extract unpacks runtime archives (tar.*, zip) and native library
// jars.
package extract

import (
	"fmt"
	"strings"
)

// Archive extracts src into dst, picking the format from the file name.
func Archive(src, dst string) error {
	lower := strings.ToLower(src)

	switch {
	case strings.HasSuffix(lower, ".zip"), strings.HasSuffix(lower, ".jar"):
		return extractZip(src, dst)
	case isTarArchive(lower):
		return extractTar(src, dst)
	default:
		return fmt.Errorf("unsupported archive format: %s", src)
	}
}

func isTarArchive(name string) bool {
	tarExts := []string{".tar.gz", ".tar.zst", ".tar.xz", ".tar.bz2", ".tgz", ".txz", ".tzst", ".tbz2", ".tar"}
	for _, ext := range tarExts {
		if strings.HasSuffix(name, ext) {
			return true
		}
	}
	return false
}
