package platform

import (
	"fmt"
	"os"
	"path/filepath"
)

// rootMarkers identify a site root, in order of precedence.
var rootMarkers = []string{".folio.yaml", ".folio.yml", ".folio.toml", ".folio.json", ".folio", ".git"}

// FindRoot looks upwards from startDir for a site root: a directory holding
// a folio config file, the .folio system directory, or a .git directory.
func FindRoot(startDir string) (string, error) {
	abs, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	dir := abs
	for {
		for _, marker := range rootMarkers {
			if hasFile(dir, marker) {
				return dir, nil
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return "", fmt.Errorf("site root not found above %s", abs)
}

func hasFile(dir, name string) bool {
	_, err := os.Stat(filepath.Join(dir, name))
	return err == nil
}
