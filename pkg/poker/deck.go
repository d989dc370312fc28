package poker

import (
	"fmt"
	"math/rand"
)

// DeckSize is the number of cards in a standard deck.
const DeckSize = 52

// Deck represents a deck of cards. Cards are dealt from the front.
type Deck struct {
	cards []Card
}

// NewDeck creates a full deck in canonical order: suits hearts, diamonds,
// clubs, spades and, within each suit, ranks two through ace.
func NewDeck() *Deck {
	deck := &Deck{cards: make([]Card, 0, DeckSize)}
	for _, suit := range Suits {
		for rank := Two; rank <= Ace; rank++ {
			deck.cards = append(deck.cards, Card{Suit: suit, Rank: rank})
		}
	}
	return deck
}

// NewDeckFromCards creates a deck that deals the given cards in order.
func NewDeckFromCards(cards []Card) *Deck {
	deck := &Deck{cards: make([]Card, len(cards))}
	copy(deck.cards, cards)
	return deck
}

// Shuffle randomizes the order of the remaining cards with a Fisher-Yates
// pass driven by rng.
func (d *Deck) Shuffle(rng *rand.Rand) {
	for i := len(d.cards) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		d.cards[i], d.cards[j] = d.cards[j], d.cards[i]
	}
}

// Deal removes and returns the top n cards.
//
// A table never needs more than 6*2+5 cards, so running out is a programming
// error and panics.
func (d *Deck) Deal(n int) []Card {
	if n < 0 || n > len(d.cards) {
		panic(fmt.Sprintf("poker: cannot deal %d cards from a deck of %d", n, len(d.cards)))
	}
	drawn := make([]Card, n)
	copy(drawn, d.cards[:n])
	d.cards = d.cards[n:]
	return drawn
}

// Size returns the number of cards remaining in the deck
func (d *Deck) Size() int {
	return len(d.cards)
}

// Cards returns a copy of the remaining cards.
func (d *Deck) Cards() []Card {
	cards := make([]Card, len(d.cards))
	copy(cards, d.cards)
	return cards
}
