package fetch

import (
	"github.com/haneimo/harts-viewer/internal/model"
	"github.com/haneimo/harts-viewer/internal/service/replay"
)

var demoNames = [model.SeatCount]string{"Alice", "Bob", "Carol", "Dave"}

const (
	demoRounds   = 3
	demoHandSize = 4
)

// buildDemoLog constructs the bundled demo replay used when no log
// has been loaded: three short rounds of four tricks each, with a
// swap phase and scoring per round. The construction is fully
// deterministic and every turn carries precomputed playerHands,
// matching the data shape real logs use.
func buildDemoLog() *model.GameLog {
	deck := demoDeck()
	players := make([]model.Player, model.SeatCount)
	var turns []model.TurnRecord

	cumulative := make([]int, model.SeatCount)
	leader := 0

	for round := 1; round <= demoRounds; round++ {
		hands := make([][]model.Card, model.SeatCount)
		for p := range hands {
			base := (round-1)*demoHandSize*model.SeatCount + p*demoHandSize
			hands[p] = append([]model.Card(nil), deck[base:base+demoHandSize]...)
		}
		if round == 1 {
			for p := range players {
				players[p] = model.Player{
					Name: demoNames[p],
					Hand: append([]model.Card(nil), hands[p]...),
				}
			}
		}

		// Swap phase: everyone passes their first card one seat left.
		pattern := []int{1, 2, 3, 0}
		choices := make([][]model.Card, model.SeatCount)
		for p := range hands {
			choices[p] = []model.Card{hands[p][0]}
		}
		turns = append(turns, model.TurnRecord{
			Action:      model.ActionSwapChoice,
			RoundNumber: round,
			SwapChoices: copyDemoHands(choices),
			PlayerHands: copyDemoHands(hands),
		})
		for sender, receiver := range pattern {
			card := choices[sender][0]
			hands[sender] = removeDemoCard(hands[sender], card)
			hands[receiver] = append(hands[receiver], card)
		}
		turns = append(turns, model.TurnRecord{
			Action:      model.ActionSwapReceive,
			RoundNumber: round,
			SwapChoices: copyDemoHands(choices),
			SwapPattern: append([]int(nil), pattern...),
			PlayerHands: copyDemoHands(hands),
		})

		// Tricks.
		taken := make([][]model.Card, model.SeatCount)
		for t := 0; t < demoHandSize; t++ {
			turns = append(turns, model.TurnRecord{
				Action:      model.ActionTrickStart,
				RoundNumber: round,
				PlayerHands: copyDemoHands(hands),
			})

			var trick []replay.PlayedCard
			leadSuit := ""
			for seat := 0; seat < model.SeatCount; seat++ {
				p := (leader + seat) % model.SeatCount
				ci := pickDemoCard(hands[p], leadSuit)
				card := hands[p][ci]
				if seat == 0 {
					leadSuit = card.Suit
				}
				hands[p] = append(hands[p][:ci:ci], hands[p][ci+1:]...)

				player := p
				played := card
				turns = append(turns, model.TurnRecord{
					Action:        model.ActionPlayCard,
					RoundNumber:   round,
					CurrentPlayer: &player,
					Card:          &played,
					PlayerHands:   copyDemoHands(hands),
				})
				trick = append(trick, replay.PlayedCard{Player: p, Card: card})
			}

			winner := replay.ResolveWinnerByStrength(trick)
			for _, pc := range trick {
				taken[winner] = append(taken[winner], pc.Card)
			}
			won := winner
			turns = append(turns, model.TurnRecord{
				Action:        model.ActionTrickWon,
				RoundNumber:   round,
				WinningPlayer: &won,
				PlayerHands:   copyDemoHands(hands),
			})
			leader = winner
		}

		// Scoring: one point per heart, thirteen for the spade queen.
		points := make([]int, model.SeatCount)
		for p, cards := range taken {
			for _, c := range cards {
				if c.Suit == "H" {
					points[p]++
				}
				if c.Suit == "S" && c.Value == "Q" {
					points[p] += 13
				}
			}
		}
		for p := range cumulative {
			cumulative[p] += points[p]
		}
		turns = append(turns, model.TurnRecord{
			Action:           model.ActionShowResult,
			RoundNumber:      round,
			RoundPoints:      append([]int(nil), points...),
			CumulativeScores: append([]int(nil), cumulative...),
			PlayerHands:      copyDemoHands(hands),
		})
	}

	return &model.GameLog{
		GameType:  "Harts",
		StartTime: "2025-01-15T19:00:00Z",
		Players:   players,
		Turns:     turns,
	}
}

func demoDeck() []model.Card {
	suits := []string{"S", "H", "D", "C"}
	values := []string{"2", "3", "4", "5", "6", "7", "8", "9", "10", "J", "Q", "K", "A"}
	deck := make([]model.Card, 0, len(suits)*len(values))
	for _, s := range suits {
		for _, v := range values {
			deck = append(deck, model.Card{Suit: s, Value: v})
		}
	}
	return deck
}

// pickDemoCard follows the lead suit when possible, otherwise sloughs
// the first card.
func pickDemoCard(hand []model.Card, leadSuit string) int {
	if leadSuit != "" {
		for i, c := range hand {
			if c.Suit == leadSuit {
				return i
			}
		}
	}
	return 0
}

func removeDemoCard(hand []model.Card, card model.Card) []model.Card {
	for i, c := range hand {
		if c == card {
			return append(hand[:i:i], hand[i+1:]...)
		}
	}
	return hand
}

func copyDemoHands(hands [][]model.Card) [][]model.Card {
	out := make([][]model.Card, len(hands))
	for i, h := range hands {
		out[i] = append([]model.Card(nil), h...)
	}
	return out
}
