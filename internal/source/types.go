package source

import (
	"fmt"

	"github.com/theirongolddev/runway/internal/model"
)

// DiscoveredFile is a statement file found during directory scanning.
type DiscoveredFile struct {
	Path    string
	Account string // parent directory name (e.g., "checking")
}

// RowError reports a statement row that could not be turned into a transaction.
type RowError struct {
	Path string
	Line int
	Err  error
}

func (e RowError) Error() string {
	return fmt.Sprintf("%s:%d: %v", e.Path, e.Line, e.Err)
}

func (e RowError) Unwrap() error { return e.Err }

// ParseResult holds the output of parsing a single statement file.
type ParseResult struct {
	Transactions []model.Transaction
	RowErrors    []RowError
	Err          error // file-level failure; no transactions are returned
}
