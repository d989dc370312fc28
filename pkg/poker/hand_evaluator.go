package poker

import (
	"fmt"
	"math"
	"sort"

	chpoker "github.com/chehsunliu/poker"
)

// HandRank represents the tier of a poker hand
type HandRank int

const (
	HighCard HandRank = iota
	Pair
	TwoPair
	ThreeOfAKind
	Straight
	Flush
	FullHouse
	FourOfAKind
	StraightFlush
	RoyalFlush
)

func (r HandRank) String() string {
	switch r {
	case HighCard:
		return "High Card"
	case Pair:
		return "Pair"
	case TwoPair:
		return "Two Pair"
	case ThreeOfAKind:
		return "Three of a Kind"
	case Straight:
		return "Straight"
	case Flush:
		return "Flush"
	case FullHouse:
		return "Full House"
	case FourOfAKind:
		return "Four of a Kind"
	case StraightFlush:
		return "Straight Flush"
	case RoyalFlush:
		return "Royal Flush"
	default:
		return fmt.Sprintf("HandRank(%d)", int(r))
	}
}

// HandValue represents a complete evaluation of a hand, including rank and kickers
type HandValue struct {
	Rank HandRank `json:"rank"`
	// Score is the lookup table strength, 1 (royal flush) to 7462. Lower is
	// better; zero means the hand was never evaluated.
	Score int32 `json:"score"`
	// BestHand holds the five cards that make the hand, most significant first.
	BestHand []Card `json:"bestHand"`
	// Kickers is the tie-break sequence read off BestHand after Rank.
	Kickers     []Rank `json:"kickers"`
	Description string `json:"description"`
}

// CompareHands compares two hand values and returns:
// -1 if handA < handB (handA is worse)
// 0 if handA == handB (tie)
// 1 if handA > handB (handA is better)
// An unevaluated hand loses to any evaluated one.
func CompareHands(handA, handB HandValue) int {
	a, b := handA.strength(), handB.strength()
	switch {
	case a < b:
		return 1
	case a > b:
		return -1
	}
	return 0
}

func (hv HandValue) strength() int32 {
	if hv.Score <= 0 {
		return math.MaxInt32
	}
	return hv.Score
}

// EvaluateHand evaluates a player's best 5-card hand from their hole cards
// and the community cards.
func EvaluateHand(holeCards []Card, communityCards []Card) HandValue {
	all := make([]Card, 0, len(holeCards)+len(communityCards))
	all = append(all, holeCards...)
	all = append(all, communityCards...)
	return Evaluate(all)
}

// Evaluate returns the best five card hand contained in 5 to 7 cards.
func Evaluate(cards []Card) HandValue {
	if len(cards) < 5 || len(cards) > 7 {
		panic(fmt.Sprintf("poker: evaluate needs 5 to 7 cards, got %d", len(cards)))
	}

	score := chpoker.Evaluate(toLookupCards(cards))
	best := cards
	if len(cards) > 5 {
		// The first subset scoring the same as the whole set is a best hand.
		for _, combo := range generateCombinations(cards, 5) {
			if chpoker.Evaluate(toLookupCards(combo)) == score {
				best = combo
				break
			}
		}
	}

	rank := rankFromScore(score)
	ordered, kickers := arrangeBestHand(rank, best)
	hv := HandValue{Rank: rank, Score: score, BestHand: ordered, Kickers: kickers}
	hv.Description = describeHand(hv)
	return hv
}

// lookupClasses maps the lookup table's rank classes to HandRank.
var lookupClasses = [...]HandRank{
	1: StraightFlush,
	2: FourOfAKind,
	3: FullHouse,
	4: Flush,
	5: Straight,
	6: ThreeOfAKind,
	7: TwoPair,
	8: Pair,
	9: HighCard,
}

func rankFromScore(score int32) HandRank {
	if score == 1 {
		return RoyalFlush
	}
	return lookupClasses[chpoker.RankClass(score)]
}

const (
	lookupRanks = "23456789TJQKA"
	lookupSuits = "hdcs"
)

func toLookupCards(cards []Card) []chpoker.Card {
	out := make([]chpoker.Card, len(cards))
	for i, c := range cards {
		out[i] = chpoker.NewCard(string([]byte{lookupRanks[c.Rank-Two], lookupSuits[c.Suit]}))
	}
	return out
}

// arrangeBestHand orders five cards the way the hand reads (sets before
// kickers, wheel ace last) and returns the tie-break ranks.
func arrangeBestHand(rank HandRank, five []Card) ([]Card, []Rank) {
	ordered := make([]Card, len(five))
	copy(ordered, five)
	sortCardsByRank(ordered)

	switch rank {
	case RoyalFlush, StraightFlush, Straight:
		if ordered[0].Rank == Ace && ordered[1].Rank == Five {
			ordered = append(ordered[1:], ordered[0])
		}
		return ordered, []Rank{ordered[0].Rank}
	case Flush, HighCard:
		return ordered, ranksOf(ordered)
	}

	var count [Ace + 1]int
	for _, c := range ordered {
		count[c.Rank]++
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		return count[ordered[i].Rank] > count[ordered[j].Rank]
	})
	var kickers []Rank
	for i, c := range ordered {
		if i == 0 || ordered[i-1].Rank != c.Rank {
			kickers = append(kickers, c.Rank)
		}
	}
	return ordered, kickers
}

func ranksOf(cards []Card) []Rank {
	ranks := make([]Rank, len(cards))
	for i, c := range cards {
		ranks[i] = c.Rank
	}
	return ranks
}

func describeHand(hv HandValue) string {
	k := hv.Kickers
	switch hv.Rank {
	case RoyalFlush:
		return "Royal Flush"
	case StraightFlush:
		return fmt.Sprintf("Straight Flush, %s high", singular(k[0]))
	case FourOfAKind:
		return fmt.Sprintf("Four of a Kind, %s", k[0].Name())
	case FullHouse:
		return fmt.Sprintf("Full House, %s over %s", k[0].Name(), k[1].Name())
	case Flush:
		return fmt.Sprintf("Flush, %s high", singular(k[0]))
	case Straight:
		return fmt.Sprintf("Straight, %s high", singular(k[0]))
	case ThreeOfAKind:
		return fmt.Sprintf("Three of a Kind, %s", k[0].Name())
	case TwoPair:
		return fmt.Sprintf("Two Pair, %s and %s", k[0].Name(), k[1].Name())
	case Pair:
		return fmt.Sprintf("Pair of %s", k[0].Name())
	default:
		return fmt.Sprintf("High Card, %s", singular(k[0]))
	}
}

func singular(r Rank) string {
	names := [...]string{
		Two: "Two", Three: "Three", Four: "Four", Five: "Five", Six: "Six",
		Seven: "Seven", Eight: "Eight", Nine: "Nine", Ten: "Ten",
		Jack: "Jack", Queen: "Queen", King: "King", Ace: "Ace",
	}
	if r < Two || r > Ace {
		return r.String()
	}
	return names[r]
}

// generateCombinations generates all possible k-combinations from a slice of cards
func generateCombinations(cards []Card, k int) [][]Card {
	var combinations [][]Card

	if k > len(cards) || k <= 0 {
		return combinations
	}

	var generate func(start int, current []Card)
	generate = func(start int, current []Card) {
		if len(current) == k {
			combination := make([]Card, k)
			copy(combination, current)
			combinations = append(combinations, combination)
			return
		}

		for i := start; i <= len(cards)-(k-len(current)); i++ {
			generate(i+1, append(current, cards[i]))
		}
	}

	generate(0, make([]Card, 0, k))
	return combinations
}

// sortCardsByRank sorts cards by rank, highest first; suits break ties so
// the result is deterministic.
func sortCardsByRank(cards []Card) {
	sort.Slice(cards, func(i, j int) bool {
		if cards[i].Rank != cards[j].Rank {
			return cards[i].Rank > cards[j].Rank
		}
		return cards[i].Suit < cards[j].Suit
	})
}
