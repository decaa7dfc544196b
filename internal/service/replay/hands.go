package replay

import (
	"github.com/haneimo/harts-viewer/internal/model"
	"github.com/haneimo/harts-viewer/pkg/logger"

	"go.uber.org/zap"
)

// HandsAtIndex reconstructs every player's remaining hand as of the
// turn at index. When the turn carries precomputed playerHands that
// field is authoritative and returned directly; otherwise the hands
// are derived by replaying every play_card from the start of the log
// through index inclusive. The returned slices are defensive copies.
func HandsAtIndex(lg *model.GameLog, index int) [][]model.Card {
	index = ClampIndex(lg, index)

	if precomputed := lg.Turns[index].PlayerHands; len(precomputed) == model.SeatCount {
		return copyHands(precomputed)
	}

	hands := make([][]model.Card, model.SeatCount)
	for p := 0; p < model.SeatCount; p++ {
		if p >= len(lg.Players) || lg.Players[p].Hand == nil {
			logger.Log.Warn("player has no initial hand, skipping",
				zap.Int("player", p),
			)
			hands[p] = []model.Card{}
			continue
		}
		hands[p] = append([]model.Card(nil), lg.Players[p].Hand...)
	}

	for i := 0; i <= index; i++ {
		turn := lg.Turns[i]
		if turn.Action != model.ActionPlayCard || turn.Card == nil {
			continue
		}
		player := turn.Player()
		if player < 0 || player >= model.SeatCount {
			logger.Log.Warn("play_card with invalid player index",
				zap.Int("turnIndex", i),
				zap.Int("player", player),
			)
			continue
		}
		hands[player] = removeCard(hands[player], *turn.Card, i, player)
	}
	return hands
}

// removeCard drops the first structural match of card from hand. A
// missing match is a log inconsistency: it is logged and the hand is
// left unchanged so playback continues.
func removeCard(hand []model.Card, card model.Card, turnIndex, player int) []model.Card {
	for i, c := range hand {
		if c == card {
			return append(hand[:i:i], hand[i+1:]...)
		}
	}
	logger.Log.Warn("played card not found in working hand",
		zap.Int("turnIndex", turnIndex),
		zap.Int("player", player),
		zap.String("card", card.String()),
	)
	return hand
}

func copyHands(hands [][]model.Card) [][]model.Card {
	out := make([][]model.Card, len(hands))
	for i, h := range hands {
		out[i] = append([]model.Card(nil), h...)
	}
	return out
}
