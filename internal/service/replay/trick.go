package replay

import (
	"github.com/haneimo/harts-viewer/internal/model"
)

// PlayedCard is one card lying on the table for the active trick.
type PlayedCard struct {
	Player    int        `json:"player"`
	Card      model.Card `json:"card"`
	TurnIndex int        `json:"turnIndex"`
}

// ActiveTrickCards recovers the cards on the table at the given turn
// index by scanning the log backward, earliest play first.
//
// Three cases:
//   - trick_start (or index 0): nothing has been played yet, empty.
//   - trick_won: the just-completed trick, recovered by scanning from
//     one turn before the announcement.
//   - anything else: the trick in progress, scanning from index itself.
//
// The scan stops at a trick boundary (trick_start or a previous
// trick_won) or once four cards are collected. A truncated trick with
// fewer than four cards is returned as-is.
func ActiveTrickCards(lg *model.GameLog, index int) []PlayedCard {
	index = ClampIndex(lg, index)
	current := lg.Turns[index]

	if current.Action == model.ActionTrickStart || index == 0 {
		return nil
	}

	start := index
	if current.Action == model.ActionTrickWon {
		start = index - 1
	}

	var trick []PlayedCard
	for i := start; i >= 0; i-- {
		turn := lg.Turns[i]
		if turn.Action == model.ActionTrickStart || turn.Action == model.ActionTrickWon {
			break
		}
		if turn.Action != model.ActionPlayCard {
			continue
		}
		card := model.Unknown
		if turn.Card != nil {
			card = *turn.Card
		}
		trick = append([]PlayedCard{{
			Player:    turn.Player(),
			Card:      card,
			TurnIndex: i,
		}}, trick...)
		if len(trick) >= model.SeatCount {
			break
		}
	}
	return trick
}

// WinningPlayerIfAny returns the declared winner when the turn at
// index is a trick_won announcement, nil otherwise. It never
// recomputes the winner from card strengths; see
// ResolveWinnerByStrength for that.
func WinningPlayerIfAny(lg *model.GameLog, index int) *int {
	index = ClampIndex(lg, index)
	turn := lg.Turns[index]
	if turn.Action != model.ActionTrickWon || turn.WinningPlayer == nil {
		return nil
	}
	winner := *turn.WinningPlayer
	return &winner
}

// ResolveWinnerByStrength recomputes a trick's winner from card
// strengths: the suit of the first card led determines eligibility,
// and the eligible card with the highest face value wins. Returns -1
// for an empty trick. Used to cross-check a log's declared winners.
func ResolveWinnerByStrength(trick []PlayedCard) int {
	if len(trick) == 0 {
		return -1
	}
	leadSuit := trick[0].Card.Suit
	winner := trick[0].Player
	best := -1
	for _, pc := range trick {
		if pc.Card.Suit != leadSuit {
			continue
		}
		if r := pc.Card.ValueRank(); r > best {
			best = r
			winner = pc.Player
		}
	}
	return winner
}
