package ledger

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/runway/internal/date"
	"github.com/theirongolddev/runway/internal/model"
)

func entry(on date.Date, typ model.Type, amount string) model.Transaction {
	return model.Transaction{
		ID:     on.String() + string(typ) + amount,
		Name:   string(typ),
		Amount: dec(amount),
		Date:   on,
		Type:   typ,
	}
}

func TestEstimateSafeSpend_StopsAtNextIncome(t *testing.T) {
	d := date.MustParse("2025-03-10")
	idx := NewIndex([]model.Transaction{
		entry(d, model.TypeBill, "10000"), // same day: already in ending balance
		entry(d.Add(2), model.TypeBill, "200"),
		entry(d.Add(5), model.TypeExpense, "100"),
		entry(d.Add(7), model.TypePaycheck, "2100"),
		entry(d.Add(7), model.TypeBill, "50"),
		entry(d.Add(9), model.TypeBill, "999"),
	})

	est := EstimateSafeSpend(d, dec("1000"), idx, DefaultParams())

	if est.DaysUntilNextIncome != 7 {
		t.Errorf("DaysUntilNextIncome = %d, want 7", est.DaysUntilNextIncome)
	}
	if !est.UpcomingExpenses.Equal(dec("300")) {
		t.Errorf("UpcomingExpenses = %s, want 300", est.UpcomingExpenses)
	}
	if !est.SafeToSpend.Equal(dec("560")) {
		t.Errorf("SafeToSpend = %s, want 560", est.SafeToSpend)
	}
	if !est.SafeToSave.Equal(dec("140")) {
		t.Errorf("SafeToSave = %s, want 140", est.SafeToSave)
	}
}

func TestEstimateSafeSpend_NoIncomeCapsLookahead(t *testing.T) {
	d := date.MustParse("2025-03-10")
	idx := NewIndex([]model.Transaction{
		entry(d.Add(3), model.TypeBill, "100"),
		entry(d.Add(30), model.TypeBill, "50"),
		entry(d.Add(31), model.TypeBill, "70"),
	})

	est := EstimateSafeSpend(d, dec("500"), idx, DefaultParams())

	if est.DaysUntilNextIncome != 30 {
		t.Errorf("DaysUntilNextIncome = %d, want 30", est.DaysUntilNextIncome)
	}
	if !est.UpcomingExpenses.Equal(dec("150")) {
		t.Errorf("UpcomingExpenses = %s, want 150", est.UpcomingExpenses)
	}
	if !est.SafeToSpend.Equal(dec("280")) || !est.SafeToSave.Equal(dec("70")) {
		t.Errorf("spend/save = %s/%s, want 280/70", est.SafeToSpend, est.SafeToSave)
	}
}

func TestEstimateSafeSpend_FloorsAtZero(t *testing.T) {
	d := date.MustParse("2025-03-10")
	idx := NewIndex([]model.Transaction{entry(d.Add(1), model.TypeBill, "500")})

	for _, ending := range []string{"100", "-250"} {
		est := EstimateSafeSpend(d, dec(ending), idx, DefaultParams())
		if !est.SafeToSpend.IsZero() || !est.SafeToSave.IsZero() {
			t.Errorf("ending %s: spend/save = %s/%s, want 0/0", ending, est.SafeToSpend, est.SafeToSave)
		}
	}
}

func TestEstimateSafeSpend_TransferIncomeEndsLookahead(t *testing.T) {
	d := date.MustParse("2025-03-10")
	idx := NewIndex([]model.Transaction{
		entry(d.Add(1), model.TypeInternalTransfer, "-40"),
		entry(d.Add(2), model.TypeInternalTransfer, "300"),
		entry(d.Add(3), model.TypeBill, "60"),
	})

	est := EstimateSafeSpend(d, dec("100"), idx, DefaultParams())
	if est.DaysUntilNextIncome != 2 {
		t.Errorf("DaysUntilNextIncome = %d, want 2", est.DaysUntilNextIncome)
	}
	if !est.UpcomingExpenses.Equal(dec("40")) {
		t.Errorf("UpcomingExpenses = %s, want 40", est.UpcomingExpenses)
	}
}

func TestEstimateSafeSpend_CustomParams(t *testing.T) {
	d := date.MustParse("2025-03-10")
	idx := NewIndex([]model.Transaction{
		entry(d.Add(5), model.TypeBill, "100"),
		entry(d.Add(12), model.TypeIncome, "900"),
	})
	p := Params{SpendRatio: decimal.NewFromFloat(0.5), LookaheadDays: 10}

	est := EstimateSafeSpend(d, dec("300"), idx, p)
	if est.DaysUntilNextIncome != 10 {
		t.Errorf("DaysUntilNextIncome = %d, want 10", est.DaysUntilNextIncome)
	}
	if !est.SafeToSpend.Equal(dec("100")) || !est.SafeToSave.Equal(dec("100")) {
		t.Errorf("spend/save = %s/%s, want 100/100", est.SafeToSpend, est.SafeToSave)
	}
}

func TestEstimateSafeSpend_ZeroRatioSavesEverything(t *testing.T) {
	d := date.MustParse("2025-03-10")
	idx := NewIndex([]model.Transaction{entry(d.Add(2), model.TypeBill, "100")})

	est := EstimateSafeSpend(d, dec("500"), idx, Params{SpendRatio: decimal.Zero})
	if !est.SafeToSpend.IsZero() || !est.SafeToSave.Equal(dec("400")) {
		t.Errorf("spend/save = %s/%s, want 0/400", est.SafeToSpend, est.SafeToSave)
	}
	if est.DaysUntilNextIncome != 30 {
		t.Errorf("DaysUntilNextIncome = %d, want the default 30", est.DaysUntilNextIncome)
	}
}
