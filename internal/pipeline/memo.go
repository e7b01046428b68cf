package pipeline

import (
	"sync"

	"github.com/mitchellh/hashstructure/v2"

	"github.com/theirongolddev/runway/internal/forecast"
	"github.com/theirongolddev/runway/internal/model"
)

// Memo caches projections by a hash of their input. It holds at most max
// results and evicts the oldest first. Cached results are shared, so callers
// must not modify them.
type Memo struct {
	mu      sync.Mutex
	max     int
	entries map[uint64]model.Result
	order   []uint64
	hits    int
}

// NewMemo returns a memo holding up to max results (16 when max < 1).
func NewMemo(max int) *Memo {
	if max < 1 {
		max = 16
	}
	return &Memo{max: max, entries: make(map[uint64]model.Result)}
}

// Do returns the cached result for in, or computes it with fn and caches it.
func (m *Memo) Do(in forecast.Input, fn func(forecast.Input) model.Result) (model.Result, bool, error) {
	key, err := InputKey(in)
	if err != nil {
		return model.Result{}, false, err
	}

	m.mu.Lock()
	if res, ok := m.entries[key]; ok {
		m.hits++
		m.mu.Unlock()
		return res, true, nil
	}
	m.mu.Unlock()

	res := fn(in)

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.entries[key]; !ok {
		m.entries[key] = res
		m.order = append(m.order, key)
		for len(m.order) > m.max {
			delete(m.entries, m.order[0])
			m.order = m.order[1:]
		}
	}
	return res, false, nil
}

// Len returns the number of cached results.
func (m *Memo) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// Hits returns how many lookups were served from the cache.
func (m *Memo) Hits() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.hits
}

// Decimals and dates have unexported fields, so the key spells them out as
// strings before hashing.
type memoKey struct {
	Transactions    []memoTxn
	StartingBalance string
	Months          int
	PayPeriodDays   int
	Today           string
	Mode            int
	SpendRatio      string
	LookaheadDays   int
}

type memoTxn struct {
	ID        string
	Name      string
	Amount    string
	Date      string
	Type      string
	Recurring bool
	Frequency string
	Interval  int
}

// InputKey hashes everything a projection depends on. Transaction order is
// part of the key.
func InputKey(in forecast.Input) (uint64, error) {
	k := memoKey{
		Transactions:    make([]memoTxn, len(in.Transactions)),
		StartingBalance: in.StartingBalance.String(),
		Months:          in.Config.MonthsToProject,
		PayPeriodDays:   in.Config.PayPeriodDays,
		Today:           in.Today.String(),
		Mode:            int(in.Mode),
		SpendRatio:      in.Params.SpendRatio.String(),
		LookaheadDays:   in.Params.LookaheadDays,
	}
	for i, tx := range in.Transactions {
		mt := memoTxn{
			ID:        tx.ID,
			Name:      tx.Name,
			Amount:    tx.Amount.String(),
			Date:      tx.Date.String(),
			Type:      string(tx.Type),
			Recurring: tx.Recurring,
		}
		if tx.Schedule != nil {
			mt.Frequency = string(tx.Schedule.Frequency)
			mt.Interval = tx.Schedule.Interval
		}
		k.Transactions[i] = mt
	}
	return hashstructure.Hash(k, hashstructure.FormatV2, nil)
}
