package source

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/runway/internal/date"
	"github.com/theirongolddev/runway/internal/model"
)

// writeStatement creates a temp CSV file and returns a DiscoveredFile for it.
func writeStatement(t *testing.T, lines ...string) DiscoveredFile {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "checking")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, "march.csv")
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	return DiscoveredFile{Path: path, Account: "checking"}
}

func TestParseFile_SignedAmounts(t *testing.T) {
	df := writeStatement(t,
		"Date,Description,Amount",
		"2025-03-01,Rent,-1500.00",
		"03/07/2025,Salary,\"2,100.00\"",
		"2025-03-08,Coffee,($4.50)",
	)

	res := ParseFile(df)
	if res.Err != nil {
		t.Fatalf("unexpected error: %v", res.Err)
	}
	if len(res.RowErrors) != 0 {
		t.Fatalf("RowErrors = %v", res.RowErrors)
	}
	if len(res.Transactions) != 3 {
		t.Fatalf("transactions = %d, want 3", len(res.Transactions))
	}

	tests := []struct {
		name   string
		typ    model.Type
		amount string
		day    string
	}{
		{"Rent", model.TypeExpense, "1500", "2025-03-01"},
		{"Salary", model.TypeIncome, "2100", "2025-03-07"},
		{"Coffee", model.TypeExpense, "4.5", "2025-03-08"},
	}
	for i, tt := range tests {
		tx := res.Transactions[i]
		if tx.Name != tt.name || tx.Type != tt.typ {
			t.Errorf("row %d = %s/%s, want %s/%s", i, tx.Name, tx.Type, tt.name, tt.typ)
		}
		if !tx.Amount.Equal(decimal.RequireFromString(tt.amount)) {
			t.Errorf("row %d amount = %s, want %s", i, tx.Amount, tt.amount)
		}
		if tx.Date != date.MustParse(tt.day) {
			t.Errorf("row %d date = %s, want %s", i, tx.Date, tt.day)
		}
		if tx.ID == "" {
			t.Errorf("row %d has no id", i)
		}
	}
}

func TestParseFile_TypedColumns(t *testing.T) {
	df := writeStatement(t,
		"id,date,name,amount,type,recurring,frequency,interval",
		"rent-1,2025-03-01,Rent,-1500,bill,yes,monthly,",
		"pay-1,2025-03-07,Salary,2100,paycheck,true,biweekly,1",
		"xfer-1,2025-03-09,To savings,-300,transfer,no,,",
	)

	res := ParseFile(df)
	if res.Err != nil || len(res.RowErrors) != 0 {
		t.Fatalf("err = %v, row errors = %v", res.Err, res.RowErrors)
	}
	rent, pay, xfer := res.Transactions[0], res.Transactions[1], res.Transactions[2]

	if rent.ID != "rent-1" || rent.Type != model.TypeBill || !rent.Amount.Equal(decimal.NewFromInt(1500)) {
		t.Errorf("rent = %+v", rent)
	}
	if !rent.Recurring || rent.Schedule == nil || rent.Schedule.Frequency != model.FrequencyMonthly || rent.Schedule.Interval != 1 {
		t.Errorf("rent schedule = %v %+v", rent.Recurring, rent.Schedule)
	}
	if pay.Schedule == nil || pay.Schedule.Frequency != model.FrequencyBiweekly {
		t.Errorf("salary schedule = %+v", pay.Schedule)
	}
	if xfer.Type != model.TypeInternalTransfer || !xfer.Amount.Equal(decimal.NewFromInt(-300)) {
		t.Errorf("transfer = %s %s, want internal_transfer -300", xfer.Type, xfer.Amount)
	}
	if xfer.Recurring || xfer.Schedule != nil {
		t.Errorf("transfer should not recur: %v %+v", xfer.Recurring, xfer.Schedule)
	}
}

func TestParseFile_FrequencyImpliesRecurring(t *testing.T) {
	df := writeStatement(t,
		"date,name,amount,frequency",
		"2025-03-01,Gym,-40,monthly",
	)
	res := ParseFile(df)
	if len(res.Transactions) != 1 || !res.Transactions[0].Recurring {
		t.Fatalf("transactions = %+v, want one recurring", res.Transactions)
	}
}

func TestParseFile_RowErrors(t *testing.T) {
	df := writeStatement(t,
		"date,name,amount,type",
		"2025-03-01,Rent,-1500,bill",
		"2025-02-30,Bad date,-10,bill",
		"2025-03-02,,5,income",
		"2025-03-03,Lunch,twelve,expense",
		",,,",
		"2025-03-04,Mystery,1,gift",
	)

	res := ParseFile(df)
	if res.Err != nil {
		t.Fatalf("unexpected error: %v", res.Err)
	}
	if len(res.Transactions) != 1 {
		t.Errorf("transactions = %d, want 1", len(res.Transactions))
	}
	if len(res.RowErrors) != 4 {
		t.Fatalf("RowErrors = %d, want 4: %v", len(res.RowErrors), res.RowErrors)
	}
	wantLines := []int{3, 4, 5, 7}
	for i, re := range res.RowErrors {
		if re.Line != wantLines[i] {
			t.Errorf("RowErrors[%d].Line = %d, want %d", i, re.Line, wantLines[i])
		}
		if !errors.Is(re, ErrInvalidTransaction) {
			t.Errorf("RowErrors[%d] = %v, want ErrInvalidTransaction", i, re)
		}
		if !strings.Contains(re.Error(), "march.csv:") {
			t.Errorf("RowErrors[%d] = %q, want file position", i, re.Error())
		}
	}
}

func TestParseFile_DuplicateIDs(t *testing.T) {
	df := writeStatement(t,
		"id,date,name,amount,type",
		"1,2025-03-01,Coffee,5,expense",
		"1,2025-03-02,Lunch,12,expense",
		"2,2025-03-03,Fuel,40,expense",
	)

	res := ParseFile(df)
	if res.Err != nil {
		t.Fatalf("unexpected error: %v", res.Err)
	}
	if len(res.Transactions) != 2 {
		t.Errorf("transactions = %d, want 2", len(res.Transactions))
	}
	if len(res.RowErrors) != 1 {
		t.Fatalf("RowErrors = %v, want one", res.RowErrors)
	}
	re := res.RowErrors[0]
	if re.Line != 3 || !errors.Is(re, ErrInvalidTransaction) || !strings.Contains(re.Error(), "duplicate id") {
		t.Errorf("RowErrors[0] = %v (line %d), want duplicate id on line 3", re, re.Line)
	}
}

func TestParseFile_MissingColumn(t *testing.T) {
	df := writeStatement(t, "date,name", "2025-03-01,Rent")
	res := ParseFile(df)
	if res.Err == nil || !strings.Contains(res.Err.Error(), `"amount"`) {
		t.Errorf("Err = %v, want missing amount column", res.Err)
	}
}

func TestParseFile_Missing(t *testing.T) {
	res := ParseFile(DiscoveredFile{Path: filepath.Join(t.TempDir(), "nope.csv")})
	if res.Err == nil {
		t.Error("expected error for missing file")
	}
}

func TestParseFile_DeterministicIDs(t *testing.T) {
	df := writeStatement(t,
		"date,name,amount",
		"2025-03-08,Coffee,-4.50",
		"2025-03-08,Coffee,-4.50",
	)
	a, b := ParseFile(df), ParseFile(df)
	if a.Transactions[0].ID != b.Transactions[0].ID {
		t.Error("ids differ between parses of the same file")
	}
	if a.Transactions[0].ID == a.Transactions[1].ID {
		t.Error("identical rows on different lines share an id")
	}
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"12", "12", false},
		{"-1,234.50", "-1234.5", false},
		{"$99.99", "99.99", false},
		{"(40.00)", "-40", false},
		{"+5", "5", false},
		{"", "0", true},
		{"abc", "0", true},
	}
	for _, tt := range tests {
		got, err := ParseAmount(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseAmount(%q) err = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if !got.Equal(decimal.RequireFromString(tt.want)) {
			t.Errorf("ParseAmount(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"2025-03-01", "2025-03-01"},
		{"2025-3-1", "2025-03-01"},
		{"03/01/2025", "2025-03-01"},
		{"3/1/2025", "2025-03-01"},
		{"2025/03/01", "2025-03-01"},
		{"Mar 1, 2025", "2025-03-01"},
	}
	for _, tt := range tests {
		got, err := ParseDate(tt.in)
		if err != nil {
			t.Errorf("ParseDate(%q) error: %v", tt.in, err)
			continue
		}
		if got.String() != tt.want {
			t.Errorf("ParseDate(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
	if _, err := ParseDate("yesterday"); !errors.Is(err, ErrInvalidTransaction) {
		t.Errorf("ParseDate(yesterday) err = %v", err)
	}
}
