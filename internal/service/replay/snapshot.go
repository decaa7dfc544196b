package replay

import (
	"fmt"

	"github.com/haneimo/harts-viewer/internal/model"
)

// SwapReceipt describes what one receiver got and from whom during the
// swap delivery sub-step.
type SwapReceipt struct {
	Receiver int          `json:"receiver"`
	Sender   int          `json:"sender"`
	Cards    []model.Card `json:"cards"`
}

// SwapPanel is the side-panel payload for the card-passing phase.
// Choices is populated for swap_choice turns, Receipts for
// swap_receive turns.
type SwapPanel struct {
	Action   model.Action   `json:"action"`
	Choices  [][]model.Card `json:"choices,omitempty"`
	Receipts []SwapReceipt  `json:"receipts,omitempty"`
}

// ResultPanel is the end-of-round scoring summary. Winners is only
// populated on the final round of the match; ties produce multiple
// entries.
type ResultPanel struct {
	RoundNumber      int   `json:"roundNumber"`
	RoundPoints      []int `json:"roundPoints"`
	CumulativeScores []int `json:"cumulativeScores"`
	FinalRound       bool  `json:"finalRound"`
	Winners          []int `json:"winners,omitempty"`
}

// Snapshot is the complete, side-effect-free description of what the
// rendering layer should show for one turn index. A nil SwapPanel or
// ResultPanel is meaningful: it tells the renderer to clear any panel
// it is still showing.
type Snapshot struct {
	TurnIndex     int            `json:"turnIndex"`
	TurnCount     int            `json:"turnCount"`
	Action        model.Action   `json:"action"`
	RoundNumber   int            `json:"roundNumber"`
	CurrentPlayer int            `json:"currentPlayer"`
	Hands         [][]model.Card `json:"hands"`
	ActiveTrick   []PlayedCard   `json:"activeTrick"`
	WinningPlayer *int           `json:"winningPlayer"`
	SwapPanel     *SwapPanel     `json:"swapPanel"`
	ResultPanel   *ResultPanel   `json:"resultPanel"`
	Progress      float64        `json:"progress"`
	CurrentTime   string         `json:"currentTime"`
	TotalTime     string         `json:"totalTime"`
}

// BuildSnapshot assembles the display state for the given turn index.
// Hands come back sorted in display order.
func BuildSnapshot(lg *model.GameLog, index int) *Snapshot {
	index = ClampIndex(lg, index)
	turn := lg.Turns[index]

	hands := HandsAtIndex(lg, index)
	for p := range hands {
		hands[p] = model.SortHand(hands[p])
	}

	round := turn.RoundNumber
	if round == 0 {
		round = 1
	}

	snap := &Snapshot{
		TurnIndex:     index,
		TurnCount:     len(lg.Turns),
		Action:        turn.Action,
		RoundNumber:   round,
		CurrentPlayer: turn.Player(),
		Hands:         hands,
		ActiveTrick:   ActiveTrickCards(lg, index),
		WinningPlayer: WinningPlayerIfAny(lg, index),
		Progress:      progress(index, len(lg.Turns)),
		CurrentTime:   FormatTime(index),
		TotalTime:     FormatTime(len(lg.Turns)),
	}

	switch turn.Action {
	case model.ActionSwapChoice, model.ActionSwapReceive:
		snap.SwapPanel = buildSwapPanel(lg, index, turn)
	case model.ActionShowResult:
		snap.ResultPanel = buildResultPanel(lg, turn)
	}
	return snap
}

func buildSwapPanel(lg *model.GameLog, index int, turn model.TurnRecord) *SwapPanel {
	panel := &SwapPanel{Action: turn.Action}

	if turn.Action == model.ActionSwapChoice {
		panel.Choices = copyHands(turn.SwapChoices)
		return panel
	}

	// swap_receive: resolve each receiver's sender through swapPattern
	// and read that sender's chosen cards. The log usually duplicates
	// swapChoices onto the receive turn; when it does not, fall back
	// to the nearest preceding swap_choice turn.
	choices := turn.SwapChoices
	if len(choices) == 0 {
		for i := index - 1; i >= 0; i-- {
			if lg.Turns[i].Action == model.ActionSwapChoice {
				choices = lg.Turns[i].SwapChoices
				break
			}
		}
	}
	for receiver := 0; receiver < model.SeatCount; receiver++ {
		for sender, target := range turn.SwapPattern {
			if target != receiver || sender >= len(choices) {
				continue
			}
			panel.Receipts = append(panel.Receipts, SwapReceipt{
				Receiver: receiver,
				Sender:   sender,
				Cards:    append([]model.Card(nil), choices[sender]...),
			})
			break
		}
	}
	return panel
}

func buildResultPanel(lg *model.GameLog, turn model.TurnRecord) *ResultPanel {
	panel := &ResultPanel{
		RoundNumber:      turn.RoundNumber,
		RoundPoints:      append([]int(nil), turn.RoundPoints...),
		CumulativeScores: append([]int(nil), turn.CumulativeScores...),
	}
	if turn.RoundNumber == FinalRoundNumber(lg) && len(panel.CumulativeScores) > 0 {
		panel.FinalRound = true
		min := panel.CumulativeScores[0]
		for _, s := range panel.CumulativeScores[1:] {
			if s < min {
				min = s
			}
		}
		for p, s := range panel.CumulativeScores {
			if s == min {
				panel.Winners = append(panel.Winners, p)
			}
		}
	}
	return panel
}

func progress(index, turnCount int) float64 {
	max := turnCount - 1
	if max < 1 {
		max = 1
	}
	return float64(index) / float64(max) * 100
}

// FormatTime renders a turn index as a fake MM:SS clock label, ten
// turns to the minute.
func FormatTime(index int) string {
	return fmt.Sprintf("%02d:%02d", index/10, (index%10)*6)
}
