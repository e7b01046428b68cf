package source

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/theirongolddev/runway/internal/model"
)

// ErrInvalidTransaction is wrapped by every validation failure.
var ErrInvalidTransaction = errors.New("invalid transaction")

// idNamespace scopes deterministic statement ids.
var idNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/theirongolddev/runway/transactions"))

// Validate reports every problem with tx, joined. Each problem wraps
// ErrInvalidTransaction.
func Validate(tx model.Transaction) error {
	var errs []error
	bad := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalidTransaction}, args...)...))
	}

	if strings.TrimSpace(tx.ID) == "" {
		bad("empty id")
	}
	if strings.TrimSpace(tx.Name) == "" {
		bad("id %q: empty name", tx.ID)
	}
	if !tx.Type.Valid() {
		bad("id %q: unknown type %q", tx.ID, tx.Type)
	}
	if tx.Date.IsZero() {
		bad("id %q: missing date", tx.ID)
	}
	if s := tx.Schedule; s != nil && s.Frequency != "" && !s.Frequency.Valid() {
		bad("id %q: unknown frequency %q", tx.ID, s.Frequency)
	}
	return errors.Join(errs...)
}

// ParseType maps a type name to a model.Type. Dashes and spaces are read as
// underscores and "transfer" is accepted for internal transfers.
func ParseType(s string) (model.Type, error) {
	norm := normalizeName(s)
	if norm == "transfer" {
		return model.TypeInternalTransfer, nil
	}
	t := model.Type(norm)
	if !t.Valid() {
		return "", fmt.Errorf("%w: unknown type %q", ErrInvalidTransaction, s)
	}
	return t, nil
}

// ParseFrequency maps a frequency name to a model.Frequency.
func ParseFrequency(s string) (model.Frequency, error) {
	norm := normalizeName(s)
	switch norm {
	case "bi_weekly", "fortnightly":
		return model.FrequencyBiweekly, nil
	case "annual", "annually":
		return model.FrequencyYearly, nil
	case "payperiod":
		return model.FrequencyPayPeriod, nil
	}
	f := model.Frequency(norm)
	if !f.Valid() {
		return "", fmt.Errorf("%w: unknown frequency %q", ErrInvalidTransaction, s)
	}
	return f, nil
}

func normalizeName(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.NewReplacer("-", "_", " ", "_").Replace(s)
}

// NewID derives a stable id for a statement row, so importing the same file
// twice yields the same transactions.
func NewID(path string, line int, fields []string) string {
	key := path + "\x00" + strconv.Itoa(line) + "\x00" + strings.Join(fields, "\x1f")
	return uuid.NewSHA1(idNamespace, []byte(key)).String()
}
