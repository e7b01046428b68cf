package source

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ScanDir walks a statements directory and discovers all CSV files. A path
// naming a single CSV file yields just that file. A missing path yields
// nothing.
func ScanDir(dir string) ([]DiscoveredFile, error) {
	info, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	if !info.IsDir() {
		if !isStatement(dir) {
			return nil, nil
		}
		return []DiscoveredFile{discovered(dir)}, nil
	}

	var files []DiscoveredFile

	err = filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil //nolint:nilerr // intentionally skip unreadable entries
		}
		if d.IsDir() {
			// Skip hidden directories such as .git
			if path != dir && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !isStatement(path) {
			return nil
		}
		files = append(files, discovered(path))
		return nil
	})

	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, err
}

func isStatement(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".csv")
}

func discovered(path string) DiscoveredFile {
	return DiscoveredFile{
		Path:    path,
		Account: filepath.Base(filepath.Dir(path)),
	}
}

// CountAccounts returns the number of unique accounts in a set of discovered files.
func CountAccounts(files []DiscoveredFile) int {
	seen := make(map[string]struct{})
	for _, f := range files {
		seen[f.Account] = struct{}{}
	}
	return len(seen)
}
