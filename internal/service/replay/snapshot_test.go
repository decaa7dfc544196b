package replay_test

import (
	"testing"

	"github.com/haneimo/harts-viewer/internal/model"
	"github.com/haneimo/harts-viewer/internal/service/replay"
)

func TestBuildSnapshotOrdinaryTurn(t *testing.T) {
	lg := oneTrickLog()

	snap := replay.BuildSnapshot(lg, 2)
	if snap.TurnIndex != 2 || snap.TurnCount != 6 {
		t.Fatalf("index/count = %d/%d", snap.TurnIndex, snap.TurnCount)
	}
	if snap.Action != model.ActionPlayCard || snap.CurrentPlayer != 1 {
		t.Fatalf("action/player = %s/%d", snap.Action, snap.CurrentPlayer)
	}
	if snap.SwapPanel != nil || snap.ResultPanel != nil {
		t.Fatalf("panels must clear on ordinary turns: %+v %+v", snap.SwapPanel, snap.ResultPanel)
	}
	if len(snap.ActiveTrick) != 2 {
		t.Fatalf("active trick = %v", snap.ActiveTrick)
	}
	if snap.WinningPlayer != nil {
		t.Fatalf("no winner mid-trick, got %d", *snap.WinningPlayer)
	}
}

func TestBuildSnapshotSortsHands(t *testing.T) {
	lg := &model.GameLog{
		Players: []model.Player{
			{Name: "A", Hand: []model.Card{card("C_2"), card("S_A"), card("H_5"), card("D_9")}},
			{Name: "B"}, {Name: "C"}, {Name: "D"},
		},
		Turns: []model.TurnRecord{trickStart(1)},
	}

	snap := replay.BuildSnapshot(lg, 0)
	want := []model.Card{card("S_A"), card("H_5"), card("D_9"), card("C_2")}
	for i, c := range want {
		if snap.Hands[0][i] != c {
			t.Fatalf("hands[0] = %v, want %v", snap.Hands[0], want)
		}
	}
}

func TestBuildSnapshotDefaultsRoundNumber(t *testing.T) {
	lg := oneTrickLog()
	lg.Turns[0].RoundNumber = 0

	if snap := replay.BuildSnapshot(lg, 0); snap.RoundNumber != 1 {
		t.Fatalf("roundNumber = %d, want 1", snap.RoundNumber)
	}
}

func TestBuildSnapshotSwapChoice(t *testing.T) {
	lg := oneTrickLog()
	choices := [][]model.Card{
		{card("S_A")}, {card("H_K")}, {card("D_Q")}, {card("C_J")},
	}
	lg.Turns[0] = model.TurnRecord{
		Action:      model.ActionSwapChoice,
		RoundNumber: 1,
		SwapChoices: choices,
		SwapPattern: []int{1, 2, 3, 0},
	}

	snap := replay.BuildSnapshot(lg, 0)
	if snap.SwapPanel == nil || snap.SwapPanel.Action != model.ActionSwapChoice {
		t.Fatalf("swap panel = %+v", snap.SwapPanel)
	}
	if len(snap.SwapPanel.Choices) != 4 || snap.SwapPanel.Choices[2][0] != card("D_Q") {
		t.Fatalf("choices = %v", snap.SwapPanel.Choices)
	}
	if len(snap.SwapPanel.Receipts) != 0 {
		t.Fatalf("no receipts on the choice turn, got %v", snap.SwapPanel.Receipts)
	}
}

func TestBuildSnapshotSwapReceive(t *testing.T) {
	choices := [][]model.Card{
		{card("S_A")}, {card("H_K")}, {card("D_Q")}, {card("C_J")},
	}
	lg := oneTrickLog()
	lg.Turns[0] = model.TurnRecord{
		Action:      model.ActionSwapReceive,
		RoundNumber: 1,
		SwapChoices: choices,
		SwapPattern: []int{1, 2, 3, 0}, // each seat passes to its left
	}

	snap := replay.BuildSnapshot(lg, 0)
	if snap.SwapPanel == nil || len(snap.SwapPanel.Receipts) != 4 {
		t.Fatalf("swap panel = %+v", snap.SwapPanel)
	}
	// Receiver 0 gets seat 3's choice through the pattern.
	r := snap.SwapPanel.Receipts[0]
	if r.Receiver != 0 || r.Sender != 3 || r.Cards[0] != card("C_J") {
		t.Fatalf("receipt[0] = %+v", r)
	}
	r = snap.SwapPanel.Receipts[2]
	if r.Receiver != 2 || r.Sender != 1 || r.Cards[0] != card("H_K") {
		t.Fatalf("receipt[2] = %+v", r)
	}
}

func TestBuildSnapshotSwapReceiveFallsBackToChoiceTurn(t *testing.T) {
	choices := [][]model.Card{
		{card("S_A")}, {card("H_K")}, {card("D_Q")}, {card("C_J")},
	}
	lg := oneTrickLog()
	lg.Turns[0] = model.TurnRecord{
		Action:      model.ActionSwapChoice,
		RoundNumber: 1,
		SwapChoices: choices,
		SwapPattern: []int{1, 2, 3, 0},
	}
	lg.Turns[1] = model.TurnRecord{
		Action:      model.ActionSwapReceive,
		RoundNumber: 1,
		SwapPattern: []int{1, 2, 3, 0},
	}

	snap := replay.BuildSnapshot(lg, 1)
	if snap.SwapPanel == nil || len(snap.SwapPanel.Receipts) != 4 {
		t.Fatalf("swap panel = %+v", snap.SwapPanel)
	}
	if snap.SwapPanel.Receipts[1].Cards[0] != card("S_A") {
		t.Fatalf("receipt[1] = %+v", snap.SwapPanel.Receipts[1])
	}
}

func TestBuildSnapshotResultPanel(t *testing.T) {
	lg := oneTrickLog()
	lg.Turns = append(lg.Turns, model.TurnRecord{
		Action:           model.ActionShowResult,
		RoundNumber:      1,
		RoundPoints:      []int{0, 13, 1, 0},
		CumulativeScores: []int{0, 13, 1, 0},
	})
	// A later round makes round one non-final.
	lg.Turns = append(lg.Turns, trickStart(2))

	snap := replay.BuildSnapshot(lg, 6)
	panel := snap.ResultPanel
	if panel == nil || panel.RoundNumber != 1 {
		t.Fatalf("result panel = %+v", panel)
	}
	if panel.FinalRound || panel.Winners != nil {
		t.Fatalf("round one is not final here: %+v", panel)
	}
}

func TestBuildSnapshotFinalRoundWinnersWithTie(t *testing.T) {
	lg := oneTrickLog()
	lg.Turns = append(lg.Turns, model.TurnRecord{
		Action:           model.ActionShowResult,
		RoundNumber:      1,
		RoundPoints:      []int{4, 13, 5, 4},
		CumulativeScores: []int{4, 13, 5, 4},
	})

	snap := replay.BuildSnapshot(lg, 6)
	panel := snap.ResultPanel
	if panel == nil || !panel.FinalRound {
		t.Fatalf("final round expected: %+v", panel)
	}
	if len(panel.Winners) != 2 || panel.Winners[0] != 0 || panel.Winners[1] != 3 {
		t.Fatalf("winners = %v, want [0 3]", panel.Winners)
	}
}

func TestBuildSnapshotProgress(t *testing.T) {
	lg := oneTrickLog() // 6 turns

	if got := replay.BuildSnapshot(lg, 0).Progress; got != 0 {
		t.Fatalf("progress at start = %v", got)
	}
	if got := replay.BuildSnapshot(lg, 5).Progress; got != 100 {
		t.Fatalf("progress at end = %v", got)
	}
	if got := replay.BuildSnapshot(lg, 2).Progress; got != 40 {
		t.Fatalf("progress at 2/5 = %v", got)
	}
}

func TestFormatTime(t *testing.T) {
	tests := []struct {
		index int
		want  string
	}{
		{0, "00:00"},
		{1, "00:06"},
		{9, "00:54"},
		{10, "01:00"},
		{37, "03:42"},
		{125, "12:30"},
	}
	for _, tt := range tests {
		if got := replay.FormatTime(tt.index); got != tt.want {
			t.Fatalf("FormatTime(%d) = %q, want %q", tt.index, got, tt.want)
		}
	}
}
