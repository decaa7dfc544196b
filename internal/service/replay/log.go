// Package replay implements the replay core: parsing and validating
// recorded game logs, reconstructing hands and tricks at an arbitrary
// turn index, and assembling display snapshots. Everything here is a
// pure function of (log, index); the log is never mutated.
package replay

import (
	"encoding/json"
	"fmt"

	"github.com/haneimo/harts-viewer/internal/model"
	appErr "github.com/haneimo/harts-viewer/pkg/errors"
)

// ParseGameLog decodes raw JSON into a validated GameLog. Structural
// failures (bad JSON, wrong seat count, no turns) are reported as
// ErrMalformedLog so the caller can keep its current session intact.
func ParseGameLog(raw []byte) (*model.GameLog, error) {
	var lg model.GameLog
	if err := json.Unmarshal(raw, &lg); err != nil {
		return nil, fmt.Errorf("%w: %v", appErr.ErrMalformedLog, err)
	}
	if err := ValidateGameLog(&lg); err != nil {
		return nil, err
	}
	return &lg, nil
}

// ValidateGameLog enforces the load-time invariants: exactly four
// seats and a non-empty turn list. A log that violates them must fail
// to load rather than render partially.
func ValidateGameLog(lg *model.GameLog) error {
	if lg == nil {
		return appErr.ErrMalformedLog
	}
	if len(lg.Players) != model.SeatCount {
		return fmt.Errorf("%w: expected %d players, got %d", appErr.ErrMalformedLog, model.SeatCount, len(lg.Players))
	}
	if len(lg.Turns) == 0 {
		return fmt.Errorf("%w: no turns", appErr.ErrMalformedLog)
	}
	return nil
}

// MaxRounds counts distinct round numbers across all turns, minimum 1.
func MaxRounds(lg *model.GameLog) int {
	rounds := make(map[int]struct{})
	for _, t := range lg.Turns {
		if t.RoundNumber > 0 {
			rounds[t.RoundNumber] = struct{}{}
		}
	}
	if len(rounds) == 0 {
		return 1
	}
	return len(rounds)
}

// FinalRoundNumber is the highest round number present in the log,
// minimum 1. Used for the end-of-match winner banner.
func FinalRoundNumber(lg *model.GameLog) int {
	final := 1
	for _, t := range lg.Turns {
		if t.RoundNumber > final {
			final = t.RoundNumber
		}
	}
	return final
}

// FirstTurnOfRound returns the index of the first turn belonging to
// the given round, or -1 when no turn matches.
func FirstTurnOfRound(lg *model.GameLog, round int) int {
	for i, t := range lg.Turns {
		if t.RoundNumber == round {
			return i
		}
	}
	return -1
}

// ClampIndex forces an index into the valid [0, len(turns)-1] range.
func ClampIndex(lg *model.GameLog, index int) int {
	if index < 0 {
		return 0
	}
	if max := len(lg.Turns) - 1; index > max {
		return max
	}
	return index
}
