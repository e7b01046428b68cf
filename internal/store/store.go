// Package store provides SQLite-backed persistence for transactions, the
// starting balance, and statement file tracking.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/runway/internal/date"
	"github.com/theirongolddev/runway/internal/model"

	_ "modernc.org/sqlite" // register sqlite driver
)

var (
	// ErrNoBalance is returned by Balance before a balance has been set.
	ErrNoBalance = errors.New("no starting balance set")
	// ErrNotFound is returned when deleting an unknown transaction.
	ErrNotFound = errors.New("transaction not found")
	// ErrDuplicateID is returned when a statement row reuses an id already
	// stored from another source.
	ErrDuplicateID = errors.New("duplicate transaction id")
)

// Store is the runway database.
type Store struct {
	db *sql.DB
}

// Open opens or creates the database at the given path.
func Open(dbPath string) (*Store, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating data dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=synchronous(normal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening db: %w", err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// FileInfo holds the tracked mtime and size for a file.
type FileInfo struct {
	MtimeNs   int64
	SizeBytes int64
}

// GetTrackedFiles returns a map of file_path -> FileInfo for all tracked files.
func (s *Store) GetTrackedFiles() (map[string]FileInfo, error) {
	rows, err := s.db.Query("SELECT file_path, mtime_ns, size_bytes FROM file_tracker")
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	result := make(map[string]FileInfo)
	for rows.Next() {
		var path string
		var fi FileInfo
		if err := rows.Scan(&path, &fi.MtimeNs, &fi.SizeBytes); err != nil {
			return nil, err
		}
		result[path] = fi
	}
	return result, rows.Err()
}

// SaveTransactions replaces every transaction imported from sourceFile with
// txns and records the file's tracking info, in one database transaction.
func (s *Store) SaveTransactions(sourceFile string, txns []model.Transaction, fi FileInfo) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec("DELETE FROM transactions WHERE source_file = ?", sourceFile); err != nil {
		return err
	}

	now := time.Now().UTC().Format(time.RFC3339)
	for _, t := range txns {
		var owner string
		err := tx.QueryRow("SELECT source_file FROM transactions WHERE id = ?", t.ID).Scan(&owner)
		if err == nil {
			if owner == "" {
				owner = "manual entry"
			}
			return fmt.Errorf("%w: %s already stored from %s", ErrDuplicateID, t.ID, owner)
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return err
		}
		if err := insert(tx, "INSERT", t, sourceFile, now); err != nil {
			return fmt.Errorf("saving %s: %w", t.ID, err)
		}
	}

	_, err = tx.Exec(`INSERT OR REPLACE INTO file_tracker (file_path, mtime_ns, size_bytes)
		VALUES (?, ?, ?)`, sourceFile, fi.MtimeNs, fi.SizeBytes)
	if err != nil {
		return err
	}

	return tx.Commit()
}

// AddTransaction stores a manually entered transaction, replacing any with
// the same id.
func (s *Store) AddTransaction(t model.Transaction) error {
	return insert(s.db, "INSERT OR REPLACE", t, "", time.Now().UTC().Format(time.RFC3339))
}

type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

// insert writes t with verb, either "INSERT" or "INSERT OR REPLACE".
func insert(db execer, verb string, t model.Transaction, sourceFile, now string) error {
	recurring := 0
	if t.Recurring {
		recurring = 1
	}
	var freq sql.NullString
	var interval sql.NullInt64
	if t.Schedule != nil {
		freq = sql.NullString{String: string(t.Schedule.Frequency), Valid: true}
		interval = sql.NullInt64{Int64: int64(t.Schedule.Interval), Valid: true}
	}

	_, err := db.Exec(verb+` INTO transactions
		(id, name, amount, date, type, recurring, frequency, interval, source_file, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.Name, t.Amount.String(), t.Date.String(), string(t.Type),
		recurring, freq, interval, sourceFile, now,
	)
	return err
}

// DeleteTransaction removes one transaction by id.
func (s *Store) DeleteTransaction(id string) error {
	res, err := s.db.Exec("DELETE FROM transactions WHERE id = ?", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

// DeleteSource removes a statement file's transactions and its tracking entry.
func (s *Store) DeleteSource(sourceFile string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec("DELETE FROM transactions WHERE source_file = ?", sourceFile); err != nil {
		return err
	}
	if _, err := tx.Exec("DELETE FROM file_tracker WHERE file_path = ?", sourceFile); err != nil {
		return err
	}
	return tx.Commit()
}

// LoadTransactions reads every stored transaction ordered by date, then id.
func (s *Store) LoadTransactions() ([]model.Transaction, error) {
	rows, err := s.db.Query(`SELECT
		id, name, amount, date, type, recurring, frequency, interval
		FROM transactions ORDER BY date, id`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var txns []model.Transaction
	for rows.Next() {
		var t model.Transaction
		var amount, day, typ string
		var recurring int
		var freq sql.NullString
		var interval sql.NullInt64

		if err := rows.Scan(&t.ID, &t.Name, &amount, &day, &typ, &recurring, &freq, &interval); err != nil {
			return nil, err
		}
		if t.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("transaction %s: amount: %w", t.ID, err)
		}
		if t.Date, err = date.Parse(day); err != nil {
			return nil, fmt.Errorf("transaction %s: date: %w", t.ID, err)
		}
		t.Type = model.Type(typ)
		t.Recurring = recurring != 0
		if freq.Valid {
			t.Schedule = &model.Schedule{Frequency: model.Frequency(freq.String), Interval: int(interval.Int64)}
		}
		txns = append(txns, t)
	}
	return txns, rows.Err()
}

// TransactionCount returns the number of stored transactions.
func (s *Store) TransactionCount() (int, error) {
	var count int
	err := s.db.QueryRow("SELECT COUNT(*) FROM transactions").Scan(&count)
	return count, err
}

// SetBalance records the live balance and the day it was observed.
func (s *Store) SetBalance(amount decimal.Decimal, asOf date.Date) error {
	_, err := s.db.Exec(`INSERT OR REPLACE INTO balance (id, amount, as_of, updated_at)
		VALUES (1, ?, ?, ?)`, amount.String(), asOf.String(), time.Now().UTC().Format(time.RFC3339))
	return err
}

// Balance returns the recorded balance and its as-of day, or ErrNoBalance.
func (s *Store) Balance() (decimal.Decimal, date.Date, error) {
	var amount, asOf string
	err := s.db.QueryRow("SELECT amount, as_of FROM balance WHERE id = 1").Scan(&amount, &asOf)
	if errors.Is(err, sql.ErrNoRows) {
		return decimal.Zero, date.Date{}, ErrNoBalance
	}
	if err != nil {
		return decimal.Zero, date.Date{}, err
	}
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return decimal.Zero, date.Date{}, fmt.Errorf("balance amount: %w", err)
	}
	on, err := date.Parse(asOf)
	if err != nil {
		return decimal.Zero, date.Date{}, fmt.Errorf("balance date: %w", err)
	}
	return d, on, nil
}
