package poker

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Suit represents a card suit
type Suit uint8

const (
	Hearts Suit = iota
	Diamonds
	Clubs
	Spades
)

// Suits lists every suit in canonical deck order.
var Suits = [4]Suit{Hearts, Diamonds, Clubs, Spades}

// Symbol returns the unicode symbol of the suit.
func (s Suit) Symbol() string {
	switch s {
	case Hearts:
		return "♥"
	case Diamonds:
		return "♦"
	case Clubs:
		return "♣"
	case Spades:
		return "♠"
	default:
		return "?"
	}
}

// String returns the lowercase name of the suit.
func (s Suit) String() string {
	switch s {
	case Hearts:
		return "hearts"
	case Diamonds:
		return "diamonds"
	case Clubs:
		return "clubs"
	case Spades:
		return "spades"
	default:
		return fmt.Sprintf("suit(%d)", uint8(s))
	}
}

// Rank represents a card rank. Aces are high (14); the evaluator treats them
// as low only when forming the wheel.
type Rank int8

const (
	Two Rank = iota + 2
	Three
	Four
	Five
	Six
	Seven
	Eight
	Nine
	Ten
	Jack
	Queen
	King
	Ace
)

// String returns the short name of the rank ("2".."10", "J", "Q", "K", "A").
func (r Rank) String() string {
	switch r {
	case Jack:
		return "J"
	case Queen:
		return "Q"
	case King:
		return "K"
	case Ace:
		return "A"
	}
	if r >= Two && r <= Ten {
		return fmt.Sprintf("%d", int(r))
	}
	return fmt.Sprintf("rank(%d)", int(r))
}

// Name returns the plural word used in hand descriptions ("Kings", "Sixes").
func (r Rank) Name() string {
	switch r {
	case Two:
		return "Twos"
	case Three:
		return "Threes"
	case Four:
		return "Fours"
	case Five:
		return "Fives"
	case Six:
		return "Sixes"
	case Seven:
		return "Sevens"
	case Eight:
		return "Eights"
	case Nine:
		return "Nines"
	case Ten:
		return "Tens"
	case Jack:
		return "Jacks"
	case Queen:
		return "Queens"
	case King:
		return "Kings"
	case Ace:
		return "Aces"
	default:
		return r.String()
	}
}

// Card represents a playing card
type Card struct {
	Suit Suit
	Rank Rank
}

// NewCard creates a card from a suit and rank.
func NewCard(suit Suit, rank Rank) Card {
	return Card{Suit: suit, Rank: rank}
}

// Valid reports whether the card is one of the 52 standard cards.
func (c Card) Valid() bool {
	return c.Suit <= Spades && c.Rank >= Two && c.Rank <= Ace
}

// String returns a string representation of the card
func (c Card) String() string {
	return c.Rank.String() + c.Suit.Symbol()
}

// CardJSON represents a card for JSON serialization
type CardJSON struct {
	Suit string `json:"suit"`
	Rank string `json:"rank"`
}

// MarshalJSON implements json.Marshaler interface for Card
func (c Card) MarshalJSON() ([]byte, error) {
	return json.Marshal(CardJSON{
		Suit: c.Suit.String(),
		Rank: c.Rank.String(),
	})
}

// UnmarshalJSON implements json.Unmarshaler interface for Card
func (c *Card) UnmarshalJSON(data []byte) error {
	var cardJSON CardJSON
	if err := json.Unmarshal(data, &cardJSON); err != nil {
		return err
	}

	suit, err := ParseSuit(cardJSON.Suit)
	if err != nil {
		return err
	}
	rank, err := ParseRank(cardJSON.Rank)
	if err != nil {
		return err
	}
	c.Suit = suit
	c.Rank = rank
	return nil
}

// ParseSuit accepts a symbol, a letter or a word.
func ParseSuit(s string) (Suit, error) {
	switch strings.ToLower(s) {
	case "♥", "h", "hearts", "heart":
		return Hearts, nil
	case "♦", "d", "diamonds", "diamond":
		return Diamonds, nil
	case "♣", "c", "clubs", "club":
		return Clubs, nil
	case "♠", "s", "spades", "spade":
		return Spades, nil
	default:
		return 0, fmt.Errorf("invalid suit: %q", s)
	}
}

// ParseRank accepts "2".."10", "T", face letters and words.
func ParseRank(s string) (Rank, error) {
	switch strings.ToLower(s) {
	case "a", "ace":
		return Ace, nil
	case "k", "king":
		return King, nil
	case "q", "queen":
		return Queen, nil
	case "j", "jack":
		return Jack, nil
	case "10", "t", "ten":
		return Ten, nil
	case "9", "nine":
		return Nine, nil
	case "8", "eight":
		return Eight, nil
	case "7", "seven":
		return Seven, nil
	case "6", "six":
		return Six, nil
	case "5", "five":
		return Five, nil
	case "4", "four":
		return Four, nil
	case "3", "three":
		return Three, nil
	case "2", "two":
		return Two, nil
	default:
		return 0, fmt.Errorf("invalid rank: %q", s)
	}
}

// ParseCard parses compact notation such as "As", "Td", "10h" or "7♣".
func ParseCard(s string) (Card, error) {
	r := []rune(strings.TrimSpace(s))
	if len(r) < 2 {
		return Card{}, fmt.Errorf("invalid card: %q", s)
	}
	rank, err := ParseRank(string(r[:len(r)-1]))
	if err != nil {
		return Card{}, err
	}
	suit, err := ParseSuit(string(r[len(r)-1]))
	if err != nil {
		return Card{}, err
	}
	return Card{Suit: suit, Rank: rank}, nil
}

// MustParseCards parses a space separated list of cards and panics on error.
// It is meant for fixtures and tests.
func MustParseCards(s string) []Card {
	fields := strings.Fields(s)
	cards := make([]Card, 0, len(fields))
	for _, f := range fields {
		c, err := ParseCard(f)
		if err != nil {
			panic(err)
		}
		cards = append(cards, c)
	}
	return cards
}
