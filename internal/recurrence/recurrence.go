// Package recurrence detects repeating transactions and synthesizes their
// future occurrences.
package recurrence

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/theirongolddev/runway/internal/date"
	"github.com/theirongolddev/runway/internal/model"
)

// MaxInstances caps the synthetic occurrences emitted per group.
const MaxInstances = 50

// maxDeltaDays drops gaps longer than this from interval inference.
const maxDeltaDays = 90

// Mode selects how groups are recognized as recurring. The two modes are
// never mixed within one expansion.
type Mode int

const (
	// ModeScheduled follows the Recurring flag and the Schedule hint of the
	// latest flagged occurrence. A single flagged transaction is enough.
	ModeScheduled Mode = iota
	// ModeInferred estimates the cadence from the gaps between past
	// occurrences of the same name and type. It needs two or more points.
	ModeInferred
)

func (m Mode) String() string {
	switch m {
	case ModeScheduled:
		return "scheduled"
	case ModeInferred:
		return "inferred"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// ParseMode parses "scheduled" or "inferred".
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "scheduled", "flag", "flagged":
		return ModeScheduled, nil
	case "inferred", "infer", "auto":
		return ModeInferred, nil
	default:
		return ModeScheduled, fmt.Errorf("unknown recurrence mode %q (want scheduled or inferred)", s)
	}
}

// Window bounds the synthesized dates, both ends included.
type Window struct {
	From date.Date // usually today
	To   date.Date // horizon end
}

// Options configures an expansion.
type Options struct {
	Mode          Mode
	PayPeriodDays int // step for model.FrequencyPayPeriod; 14 when zero
}

// Pattern is a recognized repeating group.
type Pattern struct {
	Name   string
	Type   model.Type
	Anchor model.Transaction // latest occurrence; synthetic copies inherit from it
	Points int               // group members that took part in detection

	EveryDays   int // day cadence step, 0 for month cadences
	EveryMonths int // month cadence step, 0 for day cadences
	DayOfMonth  int // anchor day for month cadences, before clamping
	Inferred    bool
}

// Describe returns a short human readable cadence.
func (p Pattern) Describe() string {
	if p.EveryMonths != 0 {
		if p.EveryMonths == 1 {
			return fmt.Sprintf("monthly on day %d", p.DayOfMonth)
		}
		return fmt.Sprintf("every %d months on day %d", p.EveryMonths, p.DayOfMonth)
	}
	return fmt.Sprintf("every %d days", p.EveryDays)
}

// nth returns the n-th occurrence after the anchor (n >= 1).
func (p Pattern) nth(n int) date.Date {
	a := p.Anchor.Date
	if p.EveryMonths != 0 {
		return date.Clamp(a.Year(), a.Month()+time.Month(p.EveryMonths*n), p.DayOfMonth).NextWeekday()
	}
	return a.Add(p.EveryDays * n)
}

// firstStep returns a step index whose date is not after w.From, so walking
// forward from it never misses an occurrence inside the window.
func (p Pattern) firstStep(from date.Date) int {
	a := p.Anchor.Date
	if !a.Before(from) {
		return 1
	}
	n := 1
	switch {
	case p.EveryMonths > 0:
		months := (from.Year()-a.Year())*12 + int(from.Month()-a.Month())
		n = months/p.EveryMonths - 1
	case p.EveryDays > 0:
		n = from.Sub(a) / p.EveryDays
	}
	if n < 1 {
		n = 1
	}
	return n
}

// Occurrences synthesizes the pattern's instances inside w, at most MaxInstances.
// A cadence that does not move forward produces nothing further.
func (p Pattern) Occurrences(w Window) []model.Transaction {
	var out []model.Transaction
	prev := p.Anchor.Date
	for n := p.firstStep(w.From); len(out) < MaxInstances; n++ {
		on := p.nth(n)
		if on.After(w.To) || !on.After(prev) {
			break
		}
		prev = on
		if on.Before(w.From) {
			continue
		}
		out = append(out, p.synthesize(n, on))
	}
	return out
}

func (p Pattern) synthesize(n int, on date.Date) model.Transaction {
	tx := model.Transaction{
		ID:        fmt.Sprintf("%s-r%d", p.Anchor.ID, n),
		Name:      p.Anchor.Name,
		Amount:    p.Anchor.Amount,
		Date:      on,
		Type:      p.Anchor.Type,
		Recurring: true,
	}
	if p.Anchor.Schedule != nil {
		s := *p.Anchor.Schedule
		tx.Schedule = &s
	}
	return tx
}

// Expand returns synthetic future occurrences for every recurring group in
// history. The input slice is not modified.
func Expand(history []model.Transaction, w Window, opts Options) []model.Transaction {
	var out []model.Transaction
	for _, p := range Detect(history, opts) {
		out = append(out, p.Occurrences(w)...)
	}
	return out
}

// Detect groups history by lower-cased name and type and returns the groups
// that repeat under opts.Mode, ordered by name then type. Groups without
// enough history are skipped.
func Detect(history []model.Transaction, opts Options) []Pattern {
	groups := group(history, opts.Mode)

	keys := make([]groupKey, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].name != keys[j].name {
			return keys[i].name < keys[j].name
		}
		return keys[i].typ < keys[j].typ
	})

	var patterns []Pattern
	for _, k := range keys {
		txns := groups[k]
		var (
			p  Pattern
			ok bool
		)
		switch opts.Mode {
		case ModeInferred:
			p, ok = infer(txns)
		default:
			p, ok = scheduled(txns, opts.PayPeriodDays)
		}
		if ok {
			patterns = append(patterns, p)
		}
	}
	return patterns
}

type groupKey struct {
	name string
	typ  model.Type
}

// group buckets transactions and sorts each bucket by date. In scheduled mode
// only flagged transactions take part.
func group(history []model.Transaction, mode Mode) map[groupKey][]model.Transaction {
	groups := make(map[groupKey][]model.Transaction)
	for _, tx := range history {
		if mode == ModeScheduled && !tx.Recurring {
			continue
		}
		k := groupKey{name: strings.ToLower(strings.TrimSpace(tx.Name)), typ: tx.Type}
		groups[k] = append(groups[k], tx)
	}
	for _, txns := range groups {
		sort.SliceStable(txns, func(i, j int) bool { return txns[i].Date.Before(txns[j].Date) })
	}
	return groups
}

func scheduled(txns []model.Transaction, payPeriodDays int) (Pattern, bool) {
	if len(txns) < 1 {
		return Pattern{}, false
	}
	anchor := txns[len(txns)-1]
	p := Pattern{
		Name:   anchor.Name,
		Type:   anchor.Type,
		Anchor: anchor,
		Points: len(txns),
	}

	freq, interval := model.FrequencyMonthly, 1
	if s := anchor.Schedule; s != nil {
		if s.Frequency != "" {
			freq = s.Frequency
		}
		if s.Interval != 0 {
			interval = s.Interval
		}
	}
	if payPeriodDays == 0 {
		payPeriodDays = 14
	}

	switch freq {
	case model.FrequencyWeekly:
		p.EveryDays = 7 * interval
	case model.FrequencyBiweekly:
		p.EveryDays = 14 * interval
	case model.FrequencyPayPeriod:
		p.EveryDays = payPeriodDays * interval
	case model.FrequencyYearly:
		p.EveryMonths = 12 * interval
		p.DayOfMonth = anchor.Date.Day()
	case model.FrequencyMonthly:
		p.EveryMonths = interval
		p.DayOfMonth = anchor.Date.Day()
	default:
		return Pattern{}, false
	}
	return p, true
}

func infer(txns []model.Transaction) (Pattern, bool) {
	if len(txns) < 2 {
		return Pattern{}, false
	}
	var sum, count int
	for i := 1; i < len(txns); i++ {
		delta := txns[i].Date.Sub(txns[i-1].Date)
		if delta <= 0 || delta > maxDeltaDays {
			continue
		}
		sum += delta
		count++
	}
	if count == 0 {
		return Pattern{}, false
	}
	avg := float64(sum) / float64(count)

	anchor := txns[len(txns)-1]
	p := Pattern{
		Name:     anchor.Name,
		Type:     anchor.Type,
		Anchor:   anchor,
		Points:   len(txns),
		Inferred: true,
	}
	switch {
	case avg >= 10 && avg <= 18:
		p.EveryDays = int(math.Round(avg))
	case avg >= 25 && avg <= 35:
		p.EveryMonths = 1
		p.DayOfMonth = anchor.Date.Day()
	default:
		return Pattern{}, false
	}
	return p, true
}
