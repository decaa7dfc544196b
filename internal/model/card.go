package model

import (
	"encoding/json"
	"sort"
	"strings"
)

// Card is an immutable card value. Suit is a single canonical letter
// (S/H/D/C); unrecognized letters are carried through unchanged so new
// suit codes stay renderable. Value is "2".."10", "J", "Q", "K" or "A".
// The zero Card is the unknown-card sentinel.
type Card struct {
	Suit  string `json:"suit"`
	Value string `json:"value"`
}

// Unknown is the sentinel returned for unparseable input. Display code
// renders it as a blank card instead of failing.
var Unknown = Card{}

func (c Card) IsUnknown() bool {
	return c.Suit == "" && c.Value == ""
}

// String returns the canonical serialized form, e.g. "C_2".
func (c Card) String() string {
	if c.IsUnknown() {
		return ""
	}
	return c.Suit + "_" + c.Value
}

var legacySuitNames = map[string]string{
	"spades":   "S",
	"hearts":   "H",
	"diamonds": "D",
	"clubs":    "C",
}

func normalizeSuit(suit string) string {
	if canonical, ok := legacySuitNames[strings.ToLower(suit)]; ok {
		return canonical
	}
	return suit
}

// ParseCardString parses the compact "Suit_Value" form. Anything that
// does not split into two non-empty parts yields the unknown sentinel.
func ParseCardString(raw string) Card {
	suit, value, ok := strings.Cut(raw, "_")
	if !ok || suit == "" || value == "" {
		return Unknown
	}
	return Card{Suit: normalizeSuit(suit), Value: value}
}

// UnmarshalJSON accepts both the canonical string form ("C_2") and the
// legacy object form ({"suit":"clubs","value":"2"}). Malformed input
// decodes to the unknown sentinel rather than failing the whole log.
func (c *Card) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*c = ParseCardString(s)
		return nil
	}
	var legacy struct {
		Suit  string `json:"suit"`
		Value string `json:"value"`
	}
	if err := json.Unmarshal(data, &legacy); err == nil && legacy.Suit != "" && legacy.Value != "" {
		*c = Card{Suit: normalizeSuit(legacy.Suit), Value: legacy.Value}
		return nil
	}
	*c = Unknown
	return nil
}

func (c Card) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

var suitSymbols = map[string]string{
	"S":        "♠",
	"H":        "♥",
	"D":        "♦",
	"C":        "♣",
	"spades":   "♠",
	"hearts":   "♥",
	"diamonds": "♦",
	"clubs":    "♣",
}

// SuitSymbol maps a suit encoding to its glyph. Unrecognized input is
// returned unchanged so callers always get something renderable.
func SuitSymbol(suit string) string {
	if sym, ok := suitSymbols[suit]; ok {
		return sym
	}
	return suit
}

// Display priority: Spade < Heart < Diamond < Club, unknown suits last.
var suitPriority = map[string]int{
	"S": 0, "H": 1, "D": 2, "C": 3,
	"spades": 0, "hearts": 1, "diamonds": 2, "clubs": 3,
}

var valuePriority = map[string]int{
	"2": 2, "3": 3, "4": 4, "5": 5, "6": 6, "7": 7, "8": 8, "9": 9,
	"10": 10, "J": 11, "Q": 12, "K": 13, "A": 14,
}

func (c Card) suitRank() int {
	if p, ok := suitPriority[c.Suit]; ok {
		return p
	}
	return 4
}

// ValueRank is the strength of the card's face value, ascending 2..14
// (J=11, Q=12, K=13, A=14). Unknown values rank 0. This is also the
// order used for trick resolution within the leading suit.
func (c Card) ValueRank() int {
	return valuePriority[c.Value]
}

// CompareForDisplay totally orders two cards for hand display:
// first by suit priority, then by ascending face value. It is not the
// trick-resolution order across suits.
func CompareForDisplay(a, b Card) int {
	if d := a.suitRank() - b.suitRank(); d != 0 {
		return sign(d)
	}
	return sign(a.ValueRank() - b.ValueRank())
}

func sign(d int) int {
	switch {
	case d < 0:
		return -1
	case d > 0:
		return 1
	}
	return 0
}

// SortHand returns a sorted copy of a hand in display order. The input
// slice is never mutated. The sort is stable so equal cards keep their
// relative order.
func SortHand(cards []Card) []Card {
	sorted := make([]Card, len(cards))
	copy(sorted, cards)
	sort.SliceStable(sorted, func(i, j int) bool {
		return CompareForDisplay(sorted[i], sorted[j]) < 0
	})
	return sorted
}
