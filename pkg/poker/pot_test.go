package poker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildPots(t *testing.T) {
	tests := []struct {
		name     string
		contribs []Contribution
		want     []Pot
	}{{
		name: "single pot",
		contribs: []Contribution{
			{PlayerID: "a", Amount: 100, Contesting: true},
			{PlayerID: "b", Amount: 100, Contesting: true},
		},
		want: []Pot{{Amount: 200, Eligible: []string{"a", "b"}}},
	}, {
		name: "three levels",
		contribs: []Contribution{
			{PlayerID: "a", Amount: 50, Contesting: true},
			{PlayerID: "b", Amount: 200, Contesting: true},
			{PlayerID: "c", Amount: 200, Contesting: true},
			{PlayerID: "d", Amount: 120, Contesting: true},
		},
		want: []Pot{
			{Amount: 200, Eligible: []string{"a", "b", "c", "d"}},
			{Amount: 210, Eligible: []string{"b", "c", "d"}},
			{Amount: 160, Eligible: []string{"b", "c"}},
		},
	}, {
		name: "folded chips pay into every level",
		contribs: []Contribution{
			{PlayerID: "a", Amount: 100, Contesting: true},
			{PlayerID: "b", Amount: 300, Contesting: false},
			{PlayerID: "c", Amount: 200, Contesting: true},
		},
		want: []Pot{
			{Amount: 300, Eligible: []string{"a", "c"}},
			// Folded excess above the top level lands in the last pot.
			{Amount: 300, Eligible: []string{"c"}},
		},
	}, {
		name: "dead money from a departed player",
		contribs: []Contribution{
			{PlayerID: "a", Amount: 100, Contesting: true},
			{PlayerID: "b", Amount: 100, Contesting: true},
			{Amount: 10},
		},
		want: []Pot{{Amount: 210, Eligible: []string{"a", "b"}}},
	}, {
		name: "nobody contesting",
		contribs: []Contribution{
			{PlayerID: "a", Amount: 100},
		},
		want: nil,
	}}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pots := BuildPots(tt.contribs)
			assert.Equal(t, tt.want, pots)

			var in, out int64
			for _, c := range tt.contribs {
				in += c.Amount
			}
			for _, p := range pots {
				out += p.Amount
			}
			if tt.want != nil {
				assert.Equal(t, in, out, "pots must hold every contributed chip")
			}
		})
	}
}

func handOf(t *testing.T, cards string) *HandValue {
	t.Helper()
	cs := MustParseCards(cards)
	require.Len(t, cs, 7)
	hv := EvaluateHand(cs[:2], cs[2:])
	return &hv
}

func TestDistributePots(t *testing.T) {
	const board = " 2c 7d 9h Jc 3d"
	hands := map[string]*HandValue{
		"aces":   handOf(t, "As Ah"+board),
		"kings":  handOf(t, "Ks Kh"+board),
		"kings2": handOf(t, "Kd Kc"+board),
	}

	t.Run("best hand takes the pot", func(t *testing.T) {
		awards := DistributePots([]Pot{{Amount: 300, Eligible: []string{"kings", "aces"}}}, hands)
		assert.Equal(t, []Award{{PlayerID: "aces", Amount: 300}}, awards)
	})

	t.Run("tie splits with odd chip to first in line", func(t *testing.T) {
		awards := DistributePots([]Pot{{Amount: 101, Eligible: []string{"kings2", "kings"}}}, hands)
		assert.Equal(t, []Award{
			{PlayerID: "kings2", Amount: 51},
			{PlayerID: "kings", Amount: 50},
		}, awards)
	})

	t.Run("side pot goes to best eligible hand", func(t *testing.T) {
		pots := []Pot{
			{Amount: 300, Eligible: []string{"kings", "kings2", "aces"}},
			{Amount: 400, Eligible: []string{"kings", "kings2"}},
			{Amount: 50, Eligible: []string{"kings2"}},
		}
		totals := TotalAwarded(DistributePots(pots, hands))
		assert.Equal(t, map[string]int64{"aces": 300, "kings": 200, "kings2": 250}, totals)
	})

	t.Run("empty pots are skipped", func(t *testing.T) {
		assert.Empty(t, DistributePots([]Pot{{Amount: 0, Eligible: []string{"aces"}}}, hands))
	})
}
