package pipeline

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/theirongolddev/runway/internal/source"
	"github.com/theirongolddev/runway/internal/store"
)

// CachedLoadResult extends LoadResult with import bookkeeping.
type CachedLoadResult struct {
	LoadResult
	CacheHits     int // files unchanged since the last import
	Reparsed      int
	Imported      int // transactions written to the store
	RejectedFiles []string
}

// LoadWithCache discovers statements under path, reparses only files whose
// mtime or size changed since they were last imported, and writes each
// cleanly parsed file to the store. A file with any bad row is rejected as a
// whole and nothing from it is written; so is a file reusing an id already
// stored from another source. Transactions holds the full store
// contents afterwards.
func LoadWithCache(path string, st *store.Store, progressFn ProgressFunc) (*CachedLoadResult, error) {
	files, err := source.ScanDir(path)
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", path, err)
	}

	result := &CachedLoadResult{
		LoadResult: LoadResult{
			TotalFiles:   len(files),
			AccountCount: source.CountAccounts(files),
		},
	}

	tracked, err := st.GetTrackedFiles()
	if err != nil {
		return nil, fmt.Errorf("reading file tracker: %w", err)
	}

	// Diff: partition into changed and unchanged
	var toReparse []source.DiscoveredFile
	infos := make(map[string]store.FileInfo)

	for _, f := range files {
		info, err := os.Stat(f.Path)
		if err != nil {
			continue
		}
		fi := store.FileInfo{MtimeNs: info.ModTime().UnixNano(), SizeBytes: info.Size()}
		if cached, ok := tracked[f.Path]; ok && cached == fi {
			result.CacheHits++
			result.ParsedFiles++
			continue
		}
		infos[f.Path] = fi
		toReparse = append(toReparse, f)
	}
	result.Reparsed = len(toReparse)

	if len(toReparse) > 0 {
		results := parseAll(toReparse, result.CacheHits, result.TotalFiles, progressFn)

		for i, pr := range results {
			f := toReparse[i]
			if pr.Err != nil {
				result.FileErrors++
				continue
			}
			result.ParsedFiles++
			if len(pr.RowErrors) > 0 {
				result.RowErrors = append(result.RowErrors, pr.RowErrors...)
				result.RejectedFiles = append(result.RejectedFiles, f.Path)
				continue
			}
			if err := st.SaveTransactions(f.Path, pr.Transactions, infos[f.Path]); err != nil {
				if errors.Is(err, store.ErrDuplicateID) {
					result.RowErrors = append(result.RowErrors, source.RowError{Path: f.Path, Err: err})
					result.RejectedFiles = append(result.RejectedFiles, f.Path)
					continue
				}
				return nil, fmt.Errorf("saving %s: %w", f.Path, err)
			}
			result.Imported += len(pr.Transactions)
		}
	}

	all, err := st.LoadTransactions()
	if err != nil {
		return nil, fmt.Errorf("loading transactions: %w", err)
	}
	result.Transactions = all

	return result, nil
}

// DataDir returns the platform-appropriate data directory.
func DataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "runway")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", "runway")
}

// DBPath returns the full path to the runway database.
func DBPath() string {
	return filepath.Join(DataDir(), "runway.db")
}
