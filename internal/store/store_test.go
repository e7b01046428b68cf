package store

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/runway/internal/date"
	"github.com/theirongolddev/runway/internal/model"
)

func openTest(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "nested", "runway.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func txn(id, name, amount, day string, typ model.Type) model.Transaction {
	return model.Transaction{
		ID:     id,
		Name:   name,
		Amount: decimal.RequireFromString(amount),
		Date:   date.MustParse(day),
		Type:   typ,
	}
}

func TestSaveAndLoadTransactions(t *testing.T) {
	s := openTest(t)

	rent := txn("rent", "Rent", "1500.00", "2025-03-01", model.TypeBill)
	rent.Recurring = true
	rent.Schedule = &model.Schedule{Frequency: model.FrequencyMonthly, Interval: 1}
	xfer := txn("xfer", "To savings", "-300", "2025-02-20", model.TypeInternalTransfer)

	if err := s.SaveTransactions("/s/march.csv", []model.Transaction{rent, xfer}, FileInfo{MtimeNs: 1, SizeBytes: 10}); err != nil {
		t.Fatalf("SaveTransactions: %v", err)
	}

	got, err := s.LoadTransactions()
	if err != nil {
		t.Fatalf("LoadTransactions: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("loaded %d, want 2", len(got))
	}
	if got[0].ID != "xfer" || got[1].ID != "rent" {
		t.Errorf("order = %s, %s; want xfer, rent", got[0].ID, got[1].ID)
	}
	if !got[0].Amount.Equal(decimal.NewFromInt(-300)) || got[0].Schedule != nil {
		t.Errorf("xfer = %+v", got[0])
	}
	r := got[1]
	if !r.Recurring || r.Schedule == nil || r.Schedule.Frequency != model.FrequencyMonthly || r.Schedule.Interval != 1 {
		t.Errorf("rent schedule = %v %+v", r.Recurring, r.Schedule)
	}
	if !r.Amount.Equal(decimal.NewFromInt(1500)) || r.Date != date.MustParse("2025-03-01") || r.Type != model.TypeBill {
		t.Errorf("rent = %+v", r)
	}

	tracked, err := s.GetTrackedFiles()
	if err != nil {
		t.Fatalf("GetTrackedFiles: %v", err)
	}
	if fi := tracked["/s/march.csv"]; fi.MtimeNs != 1 || fi.SizeBytes != 10 {
		t.Errorf("tracked = %+v", tracked)
	}
}

func TestSaveTransactions_ReplacesSourceFile(t *testing.T) {
	s := openTest(t)

	first := []model.Transaction{
		txn("a", "A", "1", "2025-03-01", model.TypeExpense),
		txn("b", "B", "2", "2025-03-02", model.TypeExpense),
	}
	if err := s.SaveTransactions("/s/x.csv", first, FileInfo{MtimeNs: 1}); err != nil {
		t.Fatal(err)
	}
	if err := s.AddTransaction(txn("m", "Manual", "5", "2025-03-03", model.TypeExpense)); err != nil {
		t.Fatal(err)
	}
	second := []model.Transaction{txn("c", "C", "3", "2025-03-04", model.TypeExpense)}
	if err := s.SaveTransactions("/s/x.csv", second, FileInfo{MtimeNs: 2}); err != nil {
		t.Fatal(err)
	}

	n, err := s.TransactionCount()
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Errorf("TransactionCount = %d, want 2 (c + manual)", n)
	}
}

func TestSaveTransactions_RejectsIDFromOtherSource(t *testing.T) {
	s := openTest(t)

	if err := s.SaveTransactions("/s/a.csv", []model.Transaction{txn("1", "Coffee", "5", "2025-03-01", model.TypeExpense)}, FileInfo{}); err != nil {
		t.Fatal(err)
	}
	if err := s.AddTransaction(txn("m", "Manual", "5", "2025-03-03", model.TypeExpense)); err != nil {
		t.Fatal(err)
	}

	for _, id := range []string{"1", "m"} {
		batch := []model.Transaction{
			txn("2", "Fuel", "40", "2025-03-02", model.TypeExpense),
			txn(id, "Lunch", "12", "2025-03-02", model.TypeExpense),
		}
		err := s.SaveTransactions("/s/b.csv", batch, FileInfo{})
		if !errors.Is(err, ErrDuplicateID) {
			t.Errorf("id %q: err = %v, want ErrDuplicateID", id, err)
		}
	}

	got, err := s.LoadTransactions()
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0].Name != "Coffee" || got[1].Name != "Manual" {
		t.Errorf("stored = %+v, want Coffee and Manual untouched", got)
	}
	tracked, _ := s.GetTrackedFiles()
	if _, ok := tracked["/s/b.csv"]; ok {
		t.Error("rejected file was tracked")
	}
}

func TestDeleteTransaction(t *testing.T) {
	s := openTest(t)
	if err := s.AddTransaction(txn("m", "Manual", "5", "2025-03-03", model.TypeExpense)); err != nil {
		t.Fatal(err)
	}
	if err := s.DeleteTransaction("m"); err != nil {
		t.Fatalf("DeleteTransaction: %v", err)
	}
	if err := s.DeleteTransaction("m"); !errors.Is(err, ErrNotFound) {
		t.Errorf("second delete err = %v, want ErrNotFound", err)
	}
}

func TestDeleteSource(t *testing.T) {
	s := openTest(t)
	if err := s.SaveTransactions("/s/x.csv", []model.Transaction{txn("a", "A", "1", "2025-03-01", model.TypeExpense)}, FileInfo{}); err != nil {
		t.Fatal(err)
	}
	if err := s.DeleteSource("/s/x.csv"); err != nil {
		t.Fatalf("DeleteSource: %v", err)
	}
	n, _ := s.TransactionCount()
	tracked, _ := s.GetTrackedFiles()
	if n != 0 || len(tracked) != 0 {
		t.Errorf("after DeleteSource: %d transactions, %d tracked", n, len(tracked))
	}
}

func TestBalance(t *testing.T) {
	s := openTest(t)

	if _, _, err := s.Balance(); !errors.Is(err, ErrNoBalance) {
		t.Fatalf("Balance before set err = %v, want ErrNoBalance", err)
	}

	if err := s.SetBalance(decimal.RequireFromString("1234.56"), date.MustParse("2025-03-10")); err != nil {
		t.Fatal(err)
	}
	if err := s.SetBalance(decimal.RequireFromString("1000"), date.MustParse("2025-03-11")); err != nil {
		t.Fatal(err)
	}

	amount, asOf, err := s.Balance()
	if err != nil {
		t.Fatalf("Balance: %v", err)
	}
	if !amount.Equal(decimal.NewFromInt(1000)) {
		t.Errorf("amount = %s, want 1000", amount)
	}
	if asOf != date.MustParse("2025-03-11") {
		t.Errorf("asOf = %s, want 2025-03-11", asOf)
	}
}

func TestOpen_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runway.db")
	s, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.AddTransaction(txn("m", "Manual", "5", "2025-03-03", model.TypeExpense)); err != nil {
		t.Fatal(err)
	}
	_ = s.Close()

	s, err = Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer func() { _ = s.Close() }()
	n, err := s.TransactionCount()
	if err != nil || n != 1 {
		t.Errorf("TransactionCount after reopen = %d, %v; want 1", n, err)
	}
}
