package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/theirongolddev/runway/internal/forecast"
	"github.com/theirongolddev/runway/internal/logger"
	"github.com/theirongolddev/runway/internal/model"
	"github.com/theirongolddev/runway/internal/source"
)

// Validate checks every transaction in in and that ids are unique. All
// problems are returned joined.
func Validate(in forecast.Input) error {
	var errs []error
	seen := make(map[string]struct{}, len(in.Transactions))
	for _, tx := range in.Transactions {
		if err := source.Validate(tx); err != nil {
			errs = append(errs, err)
		}
		if tx.ID == "" {
			continue
		}
		if _, dup := seen[tx.ID]; dup {
			errs = append(errs, fmt.Errorf("%w: duplicate id %q", source.ErrInvalidTransaction, tx.ID))
		}
		seen[tx.ID] = struct{}{}
	}
	return errors.Join(errs...)
}

// Forecast validates in and projects it, going through memo when one is
// given. It never returns a partial result.
func Forecast(ctx context.Context, in forecast.Input, memo *Memo) (model.Result, error) {
	log := logger.FromContext(ctx)

	if err := Validate(in); err != nil {
		return model.Result{}, fmt.Errorf("validating transactions: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return model.Result{}, err
	}

	log.Debug().
		Int("transactions", len(in.Transactions)).
		Str("today", in.Today.String()).
		Int("months", in.Config.MonthsToProject).
		Str("mode", in.Mode.String()).
		Msg("projecting")

	if log.GetLevel() <= zerolog.DebugLevel {
		for _, p := range forecast.Patterns(in) {
			log.Debug().
				Str("name", p.Name).
				Str("type", string(p.Type)).
				Int("points", p.Points).
				Str("cadence", p.Describe()).
				Msg("recurring group")
		}
	}

	var (
		res model.Result
		hit bool
	)
	if memo != nil {
		var err error
		res, hit, err = memo.Do(in, forecast.Project)
		if err != nil {
			return model.Result{}, fmt.Errorf("hashing forecast input: %w", err)
		}
	} else {
		res = forecast.Project(in)
	}

	log.Debug().
		Int("days", len(res.Periods)).
		Str("final_balance", res.FinalBalance.String()).
		Bool("memo_hit", hit).
		Msg("projected")

	return res, nil
}
