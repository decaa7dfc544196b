package replay_test

import (
	"os"
	"testing"

	"github.com/haneimo/harts-viewer/internal/model"
	"github.com/haneimo/harts-viewer/pkg/logger"

	"go.uber.org/zap"
)

func TestMain(m *testing.M) {
	logger.Log = zap.NewNop()
	os.Exit(m.Run())
}

func card(s string) model.Card {
	return model.ParseCardString(s)
}

func cardPtr(s string) *model.Card {
	c := card(s)
	return &c
}

func intPtr(i int) *int {
	return &i
}

func playCard(player int, c string, round int) model.TurnRecord {
	return model.TurnRecord{
		Action:        model.ActionPlayCard,
		RoundNumber:   round,
		CurrentPlayer: intPtr(player),
		Card:          cardPtr(c),
	}
}

func trickStart(round int) model.TurnRecord {
	return model.TurnRecord{Action: model.ActionTrickStart, RoundNumber: round}
}

func trickWon(winner, round int) model.TurnRecord {
	return model.TurnRecord{
		Action:        model.ActionTrickWon,
		RoundNumber:   round,
		WinningPlayer: intPtr(winner),
	}
}

// oneTrickLog is the canonical single-trick scenario: four players
// dealt one card each, one complete trick won by player 0.
func oneTrickLog() *model.GameLog {
	return &model.GameLog{
		GameType:  "Harts",
		StartTime: "2025-01-15T19:00:00Z",
		Players: []model.Player{
			{Name: "A", Hand: []model.Card{card("S_A")}},
			{Name: "B", Hand: []model.Card{card("H_K")}},
			{Name: "C", Hand: []model.Card{card("D_Q")}},
			{Name: "D", Hand: []model.Card{card("C_J")}},
		},
		Turns: []model.TurnRecord{
			trickStart(1),
			playCard(0, "S_A", 1),
			playCard(1, "H_K", 1),
			playCard(2, "D_Q", 1),
			playCard(3, "C_J", 1),
			trickWon(0, 1),
		},
	}
}
