package daemon

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/theirongolddev/runway/internal/date"
	"github.com/theirongolddev/runway/internal/ledger"
	"github.com/theirongolddev/runway/internal/model"
	"github.com/theirongolddev/runway/internal/recurrence"
	"github.com/theirongolddev/runway/internal/store"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// testService seeds a store with rent and salary and returns a service whose
// clock is settable.
func testService(t *testing.T) (*Service, *time.Time) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "runway.db")
	st, err := store.Open(dbPath)
	if err != nil {
		t.Fatal(err)
	}
	txns := []model.Transaction{
		{
			ID: "rent", Name: "Rent", Amount: dec("1500"), Date: date.MustParse("2025-03-01"),
			Type: model.TypeBill, Recurring: true,
			Schedule: &model.Schedule{Frequency: model.FrequencyMonthly, Interval: 1},
		},
		{
			ID: "salary", Name: "Salary", Amount: dec("2100"), Date: date.MustParse("2025-03-07"),
			Type: model.TypePaycheck, Recurring: true,
			Schedule: &model.Schedule{Frequency: model.FrequencyBiweekly, Interval: 1},
		},
	}
	for _, tx := range txns {
		if err := st.AddTransaction(tx); err != nil {
			t.Fatal(err)
		}
	}
	if err := st.SetBalance(dec("1000"), date.MustParse("2025-03-10")); err != nil {
		t.Fatal(err)
	}
	_ = st.Close()

	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	sc := model.DefaultScheduleConfig()
	sc.MonthsToProject = 1
	s := New(Config{
		DBPath:       dbPath,
		Schedule:     sc,
		Mode:         recurrence.ModeScheduled,
		Params:       ledger.DefaultParams(),
		Interval:     10 * time.Second,
		EventsBuffer: 10,
		Now:          func() time.Time { return now },
	}, zerolog.Nop())
	return s, &now
}

func get(t *testing.T, h http.Handler, path string) (int, string) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	body, _ := io.ReadAll(rec.Body)
	return rec.Code, string(body)
}

func TestDiffSnapshots(t *testing.T) {
	prev := Snapshot{
		Transactions: 10,
		Summary: model.Summary{
			Today:        date.MustParse("2025-03-10"),
			Balance:      dec("1000"),
			SafeToSpend:  dec("800"),
			FinalBalance: dec("3700"),
		},
	}
	curr := Snapshot{
		Transactions: 12,
		Summary: model.Summary{
			Today:        date.MustParse("2025-03-11"),
			Balance:      dec("950"),
			SafeToSpend:  dec("760"),
			FinalBalance: dec("3650"),
		},
	}

	delta := diffSnapshots(prev, curr)
	if !delta.Balance.Equal(dec("-50")) {
		t.Fatalf("Balance delta = %s, want -50", delta.Balance)
	}
	if !delta.SafeToSpend.Equal(dec("-40")) {
		t.Fatalf("SafeToSpend delta = %s, want -40", delta.SafeToSpend)
	}
	if !delta.FinalBalance.Equal(dec("-50")) {
		t.Fatalf("FinalBalance delta = %s, want -50", delta.FinalBalance)
	}
	if delta.Transactions != 2 || !delta.DayRolled {
		t.Fatalf("delta = %+v", delta)
	}
	if delta.isZero() {
		t.Fatal("delta unexpectedly reported as zero")
	}
	if !diffSnapshots(prev, prev).isZero() {
		t.Fatal("identical snapshots should produce a zero delta")
	}
}

func TestPublishEventRingBuffer(t *testing.T) {
	s := New(Config{
		Interval:     10 * time.Second,
		EventsBuffer: 2,
	}, zerolog.Nop())

	s.publishEvent(Event{ID: 1})
	s.publishEvent(Event{ID: 2})
	s.publishEvent(Event{ID: 3})

	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.events) != 2 {
		t.Fatalf("events len = %d, want 2", len(s.events))
	}
	if s.events[0].ID != 2 || s.events[1].ID != 3 {
		t.Fatalf("events ring contains IDs [%d, %d], want [2, 3]", s.events[0].ID, s.events[1].ID)
	}
}

func TestPollAndServe(t *testing.T) {
	s, _ := testService(t)
	h := s.Router()

	if code, _ := get(t, h, "/v1/summary"); code != http.StatusServiceUnavailable {
		t.Errorf("summary before poll = %d, want 503", code)
	}

	s.pollOnce(context.Background())

	code, body := get(t, h, "/healthz")
	if code != http.StatusOK || body != "ok\n" {
		t.Errorf("healthz = %d %q", code, body)
	}

	code, body = get(t, h, "/v1/summary")
	if code != http.StatusOK {
		t.Fatalf("summary = %d %s", code, body)
	}
	var sum model.Summary
	if err := json.Unmarshal([]byte(body), &sum); err != nil {
		t.Fatalf("decoding summary: %v", err)
	}
	if !sum.Balance.Equal(dec("1000")) || !sum.SafeToSpend.Equal(dec("800")) || !sum.FinalBalance.Equal(dec("3700")) {
		t.Errorf("summary = balance %s, spend %s, final %s", sum.Balance, sum.SafeToSpend, sum.FinalBalance)
	}

	code, body = get(t, h, "/v1/forecast?limit=3")
	if code != http.StatusOK {
		t.Fatalf("forecast = %d %s", code, body)
	}
	var res model.Result
	if err := json.Unmarshal([]byte(body), &res); err != nil {
		t.Fatalf("decoding forecast: %v", err)
	}
	if len(res.Periods) != 3 || res.Periods[0].Date != date.MustParse("2025-03-10") {
		t.Errorf("forecast periods = %d starting %v", len(res.Periods), res.Periods)
	}
	if !strings.Contains(body, `"starting_balance":"1000"`) {
		t.Errorf("forecast body missing decimal string: %s", body)
	}

	code, body = get(t, h, "/v1/forecast/2025-03-21")
	if code != http.StatusOK || !strings.Contains(body, `"ending_balance":"3100"`) {
		t.Errorf("day = %d %s", code, body)
	}
	if code, _ := get(t, h, "/v1/forecast/2030-01-01"); code != http.StatusNotFound {
		t.Errorf("day outside window = %d, want 404", code)
	}
	if code, _ := get(t, h, "/v1/forecast?limit=x"); code != http.StatusBadRequest {
		t.Errorf("bad limit = %d, want 400", code)
	}

	code, body = get(t, h, "/v1/upcoming?n=2")
	if code != http.StatusOK || !strings.Contains(body, "2025-03-21") || !strings.Contains(body, "2025-04-01") {
		t.Errorf("upcoming = %d %s", code, body)
	}
}

func TestPollEmitsDeltaOnDayRollover(t *testing.T) {
	s, now := testService(t)

	s.pollOnce(context.Background())
	s.pollOnce(context.Background())
	if got := s.snapshotStatus().EventCount; got != 1 {
		t.Fatalf("events after unchanged poll = %d, want 1", got)
	}
	if got := s.snapshotStatus().MemoHits; got != 1 {
		t.Errorf("memo hits = %d, want 1", got)
	}

	*now = now.Add(24 * time.Hour)
	s.pollOnce(context.Background())

	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.events) != 2 {
		t.Fatalf("events = %d, want 2", len(s.events))
	}
	last := s.events[1]
	if last.Type != "forecast_delta" || !last.Delta.DayRolled {
		t.Errorf("last event = %s %+v", last.Type, last.Delta)
	}
	if last.Snapshot.Summary.Today != date.MustParse("2025-03-11") {
		t.Errorf("rolled today = %s", last.Snapshot.Summary.Today)
	}
}

func TestPollRecordsError(t *testing.T) {
	s := New(Config{
		DBPath: filepath.Join(t.TempDir(), "empty.db"),
		Now:    func() time.Time { return time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC) },
	}, zerolog.Nop())

	s.pollOnce(context.Background())

	st := s.snapshotStatus()
	if !strings.Contains(st.LastError, "no starting balance") {
		t.Errorf("LastError = %q", st.LastError)
	}
	code, body := get(t, s.Router(), "/v1/summary")
	if code != http.StatusServiceUnavailable || !strings.Contains(body, "no starting balance") {
		t.Errorf("summary = %d %s", code, body)
	}
}
