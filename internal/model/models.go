package model

import (
	"time"

	"gorm.io/datatypes"
)

// Action discriminates the typed payload of a TurnRecord.
type Action string

const (
	ActionTrickStart  Action = "trick_start"
	ActionPlayCard    Action = "play_card"
	ActionTrickWon    Action = "trick_won"
	ActionSwapChoice  Action = "swap_choice"
	ActionSwapReceive Action = "swap_receive"
	ActionShowResult  Action = "show_result"
)

// SeatCount is fixed: the game is always four-handed.
const SeatCount = 4

// TurnRecord is one immutable entry of the recorded game log. Only the
// fields required by its Action are populated; the rest stay zero.
type TurnRecord struct {
	Action      Action `json:"action"`
	RoundNumber int    `json:"roundNumber,omitempty"`

	// play_card
	CurrentPlayer *int  `json:"currentPlayer,omitempty"`
	Card          *Card `json:"card,omitempty"`

	// trick_won
	WinningPlayer *int `json:"winningPlayer,omitempty"`

	// swap_choice / swap_receive
	SwapChoices [][]Card `json:"swapChoices,omitempty"`
	SwapPattern []int    `json:"swapPattern,omitempty"` // sender index -> receiver index

	// show_result
	RoundPoints      []int `json:"roundPoints,omitempty"`
	CumulativeScores []int `json:"cumulativeScores,omitempty"`

	// Optional precomputed hands as of this turn. When present it is
	// authoritative over forward derivation from the initial deal.
	PlayerHands [][]Card `json:"playerHands,omitempty"`
}

// Player returns the acting seat for this turn, or -1 when the turn
// has no acting player (trick_start, show_result, ...).
func (t TurnRecord) Player() int {
	if t.CurrentPlayer == nil {
		return -1
	}
	return *t.CurrentPlayer
}

type Player struct {
	Name  string `json:"name"`
	Score int    `json:"score"`
	Hand  []Card `json:"hand"`
}

// GameLog is the full recorded game, immutable once loaded. Turns is
// the single source of truth; nothing mutates it after load.
type GameLog struct {
	GameType  string       `json:"gameType"`
	StartTime string       `json:"startTime"`
	Players   []Player     `json:"players"`
	Turns     []TurnRecord `json:"turns"`
}

// ReplayLog is a stored replay in the library: the raw uploaded JSON
// plus enough metadata to list without re-parsing the payload.
type ReplayLog struct {
	ID          int64  `gorm:"primaryKey;autoIncrement"`
	Name        string `gorm:"size:128"`
	GameType    string `gorm:"size:64"`
	StartTime   string `gorm:"size:64"`
	TurnCount   int
	RoundCount  int
	PayloadJSON datatypes.JSON `gorm:"type:jsonb"`
	CreatedAt   time.Time
}
