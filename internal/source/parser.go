// Package source discovers and parses CSV bank statements into transactions.
package source

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/runway/internal/date"
	"github.com/theirongolddev/runway/internal/model"
)

// Header aliases, matched case-insensitively.
var columnAliases = map[string]string{
	"date":             "date",
	"posted":           "date",
	"transaction date": "date",
	"name":             "name",
	"description":      "name",
	"payee":            "name",
	"amount":           "amount",
	"type":             "type",
	"id":               "id",
	"recurring":        "recurring",
	"frequency":        "frequency",
	"interval":         "interval",
}

var requiredColumns = []string{"date", "name", "amount"}

// Date layouts tried after ISO dates.
var dateLayouts = []string{"01/02/2006", "1/2/2006", "2006/01/02", "Jan 2, 2006"}

// ParseFile reads a CSV statement with a header row and produces its
// transactions. Bad rows are collected in RowErrors and skipped; blank rows
// are ignored.
//
// Without a type column, negative amounts become expenses and positive ones
// income, storing the magnitude. With one, the amount's sign is kept only for
// internal transfers.
func ParseFile(df DiscoveredFile) ParseResult {
	f, err := os.Open(df.Path)
	if err != nil {
		return ParseResult{Err: err}
	}
	defer func() { _ = f.Close() }()

	return parse(df.Path, f)
}

func parse(path string, r io.Reader) ParseResult {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return ParseResult{Err: fmt.Errorf("%s: empty statement", path)}
		}
		return ParseResult{Err: fmt.Errorf("%s: reading header: %w", path, err)}
	}
	cols := make(map[string]int)
	for i, h := range header {
		key := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		if canon, ok := columnAliases[key]; ok {
			if _, dup := cols[canon]; !dup {
				cols[canon] = i
			}
		}
	}
	for _, c := range requiredColumns {
		if _, ok := cols[c]; !ok {
			return ParseResult{Err: fmt.Errorf("%s: missing column %q", path, c)}
		}
	}

	var res ParseResult
	seen := make(map[string]int) // id -> line
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var pe *csv.ParseError
			if errors.As(err, &pe) {
				res.RowErrors = append(res.RowErrors, RowError{Path: path, Line: pe.Line, Err: pe.Err})
				continue
			}
			return ParseResult{Err: fmt.Errorf("%s: %w", path, err)}
		}
		if blank(record) {
			continue
		}
		line, _ := cr.FieldPos(0)

		tx, err := parseRow(path, line, record, cols)
		if err == nil {
			err = Validate(tx)
		}
		if err == nil {
			if first, dup := seen[tx.ID]; dup {
				err = fmt.Errorf("%w: duplicate id %q (first on line %d)", ErrInvalidTransaction, tx.ID, first)
			} else {
				seen[tx.ID] = line
			}
		}
		if err != nil {
			res.RowErrors = append(res.RowErrors, RowError{Path: path, Line: line, Err: err})
			continue
		}
		res.Transactions = append(res.Transactions, tx)
	}
	return res
}

func parseRow(path string, line int, record []string, cols map[string]int) (model.Transaction, error) {
	field := func(name string) string {
		i, ok := cols[name]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	var tx model.Transaction

	d, err := ParseDate(field("date"))
	if err != nil {
		return tx, err
	}
	amount, err := ParseAmount(field("amount"))
	if err != nil {
		return tx, err
	}

	tx.Date = d
	tx.Name = field("name")
	tx.ID = field("id")
	if tx.ID == "" {
		tx.ID = NewID(path, line, record)
	}

	if raw := field("type"); raw != "" {
		if tx.Type, err = ParseType(raw); err != nil {
			return tx, err
		}
		tx.Amount = amount
		if tx.Type != model.TypeInternalTransfer {
			tx.Amount = amount.Abs()
		}
	} else {
		tx.Type = model.TypeIncome
		if amount.IsNegative() {
			tx.Type = model.TypeExpense
		}
		tx.Amount = amount.Abs()
	}

	if raw := field("recurring"); raw != "" {
		if tx.Recurring, err = parseBool(raw); err != nil {
			return tx, err
		}
	}
	if raw := field("frequency"); raw != "" {
		freq, err := ParseFrequency(raw)
		if err != nil {
			return tx, err
		}
		interval := 1
		if raw := field("interval"); raw != "" {
			if interval, err = strconv.Atoi(raw); err != nil {
				return tx, fmt.Errorf("%w: interval %q", ErrInvalidTransaction, raw)
			}
		}
		tx.Schedule = &model.Schedule{Frequency: freq, Interval: interval}
		if _, ok := cols["recurring"]; !ok {
			tx.Recurring = true
		}
	}
	return tx, nil
}

// ParseDate accepts ISO dates and the common US statement layouts.
func ParseDate(s string) (date.Date, error) {
	if d, err := date.Parse(s); err == nil {
		return d, nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return date.FromTime(t), nil
		}
	}
	return date.Date{}, fmt.Errorf("%w: bad date %q", ErrInvalidTransaction, s)
}

// ParseAmount parses a statement amount such as "-1,234.50", "$12" or
// "(40.00)", where parentheses mean negative.
func ParseAmount(s string) (decimal.Decimal, error) {
	raw := s
	s = strings.TrimSpace(s)
	neg := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		neg = true
		s = s[1 : len(s)-1]
	}
	s = strings.NewReplacer("$", "", ",", "", " ", "").Replace(s)
	if s == "" {
		return decimal.Zero, fmt.Errorf("%w: empty amount", ErrInvalidTransaction)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: bad amount %q", ErrInvalidTransaction, raw)
	}
	if neg {
		d = d.Neg()
	}
	return d, nil
}

func parseBool(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "y", "yes":
		return true, nil
	case "n", "no":
		return false, nil
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("%w: recurring %q", ErrInvalidTransaction, s)
	}
	return b, nil
}

func blank(record []string) bool {
	for _, f := range record {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
