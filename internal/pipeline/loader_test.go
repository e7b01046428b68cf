package pipeline

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/theirongolddev/runway/internal/store"
)

func writeCSV(t *testing.T, path string, lines ...string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o600); err != nil {
		t.Fatal(err)
	}
}

func statementsDir(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	writeCSV(t, filepath.Join(root, "checking", "march.csv"),
		"date,name,amount,type,recurring,frequency",
		"2025-03-01,Rent,-1500,bill,true,monthly",
		"2025-03-07,Salary,2100,paycheck,true,biweekly",
	)
	writeCSV(t, filepath.Join(root, "card", "march.csv"),
		"date,description,amount",
		"2025-03-02,Groceries,-82.15",
		"2025-03-05,Fuel,-40",
	)
	return root
}

func TestLoad(t *testing.T) {
	root := statementsDir(t)
	writeCSV(t, filepath.Join(root, "card", "broken.csv"), "date,name", "2025-03-01,x")

	var calls atomic.Int64
	res, err := Load(root, func(current, total int) {
		calls.Add(1)
		if total != 3 {
			t.Errorf("progress total = %d, want 3", total)
		}
	})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if res.TotalFiles != 3 || res.ParsedFiles != 2 || res.FileErrors != 1 {
		t.Errorf("files total/parsed/errors = %d/%d/%d, want 3/2/1", res.TotalFiles, res.ParsedFiles, res.FileErrors)
	}
	if len(res.Transactions) != 4 {
		t.Errorf("transactions = %d, want 4", len(res.Transactions))
	}
	if res.AccountCount != 2 {
		t.Errorf("AccountCount = %d, want 2", res.AccountCount)
	}
	if calls.Load() != 3 {
		t.Errorf("progress calls = %d, want 3", calls.Load())
	}
}

func TestLoad_EmptyDir(t *testing.T) {
	res, err := Load(filepath.Join(t.TempDir(), "none"), nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if res.TotalFiles != 0 || len(res.Transactions) != 0 {
		t.Errorf("res = %+v, want empty", res)
	}
}

func openStore(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "runway.db"))
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func TestLoadWithCache(t *testing.T) {
	root := statementsDir(t)
	st := openStore(t)

	first, err := LoadWithCache(root, st, nil)
	if err != nil {
		t.Fatalf("LoadWithCache: %v", err)
	}
	if first.Reparsed != 2 || first.CacheHits != 0 || first.Imported != 4 {
		t.Errorf("first run reparsed/hits/imported = %d/%d/%d, want 2/0/4", first.Reparsed, first.CacheHits, first.Imported)
	}
	if len(first.Transactions) != 4 {
		t.Errorf("stored transactions = %d, want 4", len(first.Transactions))
	}

	second, err := LoadWithCache(root, st, nil)
	if err != nil {
		t.Fatalf("LoadWithCache: %v", err)
	}
	if second.Reparsed != 0 || second.CacheHits != 2 || second.Imported != 0 {
		t.Errorf("second run reparsed/hits/imported = %d/%d/%d, want 0/2/0", second.Reparsed, second.CacheHits, second.Imported)
	}
	if len(second.Transactions) != 4 {
		t.Errorf("stored transactions after reimport = %d, want 4", len(second.Transactions))
	}
}

func TestLoadWithCache_RejectsFileWithBadRow(t *testing.T) {
	root := statementsDir(t)
	st := openStore(t)

	if _, err := LoadWithCache(root, st, nil); err != nil {
		t.Fatal(err)
	}

	card := filepath.Join(root, "card", "march.csv")
	writeCSV(t, card,
		"date,description,amount",
		"2025-03-02,Groceries,-82.15",
		"2025-03-05,Fuel,-40",
		"2025-03-06,Parking,lots",
	)

	res, err := LoadWithCache(root, st, nil)
	if err != nil {
		t.Fatalf("LoadWithCache: %v", err)
	}
	if len(res.RejectedFiles) != 1 || res.RejectedFiles[0] != card {
		t.Errorf("RejectedFiles = %v, want [%s]", res.RejectedFiles, card)
	}
	if len(res.RowErrors) != 1 || res.RowErrors[0].Line != 4 {
		t.Errorf("RowErrors = %v, want one on line 4", res.RowErrors)
	}
	if res.Imported != 0 {
		t.Errorf("Imported = %d, want 0", res.Imported)
	}
	if len(res.Transactions) != 4 {
		t.Errorf("stored transactions = %d, want the previous 4", len(res.Transactions))
	}
}

func TestLoadWithCache_RejectsDuplicateIDs(t *testing.T) {
	root := t.TempDir()
	st := openStore(t)

	dup := filepath.Join(root, "checking", "march.csv")
	writeCSV(t, dup,
		"id,date,name,amount,type",
		"1,2025-03-01,Coffee,5,expense",
		"1,2025-03-02,Lunch,12,expense",
	)

	res, err := LoadWithCache(root, st, nil)
	if err != nil {
		t.Fatalf("LoadWithCache: %v", err)
	}
	if len(res.RejectedFiles) != 1 || res.RejectedFiles[0] != dup {
		t.Errorf("RejectedFiles = %v, want [%s]", res.RejectedFiles, dup)
	}
	if len(res.RowErrors) != 1 || !strings.Contains(res.RowErrors[0].Error(), "duplicate id") {
		t.Errorf("RowErrors = %v, want one duplicate id", res.RowErrors)
	}
	if res.Imported != 0 || len(res.Transactions) != 0 {
		t.Errorf("imported/stored = %d/%d, want 0/0", res.Imported, len(res.Transactions))
	}

	// an id reused across files rejects the later file
	writeCSV(t, dup, "id,date,name,amount,type", "1,2025-03-01,Coffee,5,expense")
	other := filepath.Join(root, "savings", "march.csv")
	writeCSV(t, other, "id,date,name,amount,type", "1,2025-03-04,Interest,2,income")

	res, err = LoadWithCache(root, st, nil)
	if err != nil {
		t.Fatalf("LoadWithCache: %v", err)
	}
	if len(res.RejectedFiles) != 1 || res.RejectedFiles[0] != other {
		t.Errorf("RejectedFiles = %v, want [%s]", res.RejectedFiles, other)
	}
	if len(res.RowErrors) != 1 || !errors.Is(res.RowErrors[0], store.ErrDuplicateID) {
		t.Errorf("RowErrors = %v, want ErrDuplicateID", res.RowErrors)
	}
	if len(res.Transactions) != 1 || res.Transactions[0].Name != "Coffee" {
		t.Errorf("stored = %+v, want only Coffee", res.Transactions)
	}
}

func TestDBPath(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "/tmp/xdg-data")
	if got := DBPath(); got != filepath.Join("/tmp/xdg-data", "runway", "runway.db") {
		t.Errorf("DBPath() = %s", got)
	}
}
