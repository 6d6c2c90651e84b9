package snapshot

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	s, err := Load("testdata/caius.json")
	require.NoError(t, err)
	require.NoError(t, s.Validate())

	assert.Equal(t, "Balmora, Caius Cosades' House", s.Location)
	assert.Equal(t, "Caius Cosades", s.Actor.Name)
	assert.Equal(t, 8, s.Actor.FactionRank)
	assert.Equal(t, 60, s.Actor.Disposition)
	assert.Equal(t, 300.0, s.Actor.MaxHealth)
	assert.Equal(t, 1450, s.Actor.Inventory.Gold)
	assert.True(t, s.Player.IsFemale)
	assert.Len(t, s.History, 2)
	assert.Equal(t, SpeakerActor, s.History[1].Speaker)
	assert.Equal(t, "What do you need from me?", s.Prompt)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("testdata/does-not-exist.json")
	assert.Error(t, err)
}

func TestParse_PreservesDocumentOrder(t *testing.T) {
	s, err := Load("testdata/caius.json")
	require.NoError(t, err)

	assert.Equal(t, FactionRanks{
		{Name: "Blades", Rank: 1},
		{Name: "Mages Guild", Rank: 3},
		{Name: "Fighters Guild", Rank: 3},
	}, s.Player.Factions)

	names := make([]string, 0, len(s.Actor.Inventory.Items))
	for _, it := range s.Actor.Inventory.Items {
		names = append(names, it.Name)
	}
	assert.Equal(t, []string{"Common Shirt", "Common Pants", "Moon Sugar", "Potion of Restore Health"}, names)
}

func TestParse_Defaults(t *testing.T) {
	s, err := Parse([]byte(`{"actor": {"name": "Fargoth"}, "player": {"name": "Nerevar"}}`))
	require.NoError(t, err)

	assert.Equal(t, UnrankedFaction, s.Actor.FactionRank)
	assert.Equal(t, 50, s.Actor.Disposition)
	assert.Empty(t, s.Player.Factions)
	assert.Empty(t, s.Actor.Inventory.Items)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"not json", `{actor`},
		{"factions not an object", `{"player": {"factions": ["Blades"]}}`},
		{"faction rank not a number", `{"player": {"factions": {"Blades": "high"}}}`},
		{"item count not a number", `{"actor": {"inventory": {"items": {"Iron Dagger": true}}}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data))
			assert.Error(t, err)
		})
	}
}

func TestValidate(t *testing.T) {
	s, err := Load("testdata/caius.json")
	require.NoError(t, err)

	t.Run("missing names", func(t *testing.T) {
		bad := *s
		bad.Actor.Name = ""
		bad.Player.Name = ""
		err := bad.Validate()
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrInvalidSnapshot))
		assert.Contains(t, err.Error(), "actor.name")
		assert.Contains(t, err.Error(), "player.name")
	})

	t.Run("zero maximum", func(t *testing.T) {
		bad := *s
		bad.Player.MaxMagicka = 0
		err := bad.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "player.max_magicka")
	})

	t.Run("unknown speaker", func(t *testing.T) {
		bad := s.WithTurn("narrator", "The wind howls.")
		err := bad.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "history[2].speaker")
	})
}

func TestRatios(t *testing.T) {
	v := Vitals{Health: 30, MaxHealth: 120, Magicka: 0, MaxMagicka: 50, Fatigue: 10, MaxFatigue: 0}

	h, err := v.HealthRatio()
	require.NoError(t, err)
	assert.Equal(t, 0.25, h)

	m, err := v.MagickaRatio()
	require.NoError(t, err)
	assert.Equal(t, 0.0, m)

	_, err = v.FatigueRatio()
	assert.ErrorIs(t, err, ErrInvalidSnapshot)
}

func TestWithTurn_DoesNotMutate(t *testing.T) {
	s, err := Load("testdata/caius.json")
	require.NoError(t, err)

	next := s.WithTurn(SpeakerPlayer, "Tell me about the Nerevarine.")
	assert.Len(t, s.History, 2)
	assert.Len(t, next.History, 3)
	assert.Equal(t, "Tell me about the Nerevarine.", next.History[2].Text)
}

func TestOrderedMaps_MarshalRoundTrip(t *testing.T) {
	in := FactionRanks{{Name: "Telvanni", Rank: 2}, {Name: "Ashlanders", Rank: 5}}
	b, err := json.Marshal(in)
	require.NoError(t, err)
	assert.JSONEq(t, `{"Telvanni":2,"Ashlanders":5}`, string(b))

	var out FactionRanks
	require.NoError(t, json.Unmarshal(b, &out))
	assert.Equal(t, in, out)
}

func TestCombatant(t *testing.T) {
	c := Character{Name: "Nerevar", Vitals: Vitals{MaxHealth: 59.5, MaxMagicka: 120, MaxFatigue: 200}}
	a, err := c.Combatant()
	require.NoError(t, err)

	assert.Equal(t, 60, a.MaxHP())
	magicka, ok := a.Attribute(AttrMagicka)
	require.True(t, ok)
	assert.Equal(t, 120, magicka)

	_, err = (&Character{Name: "Ghost"}).Combatant()
	assert.ErrorIs(t, err, ErrInvalidSnapshot)
}

func TestPronouns(t *testing.T) {
	f := Character{IsFemale: true}
	m := Character{}
	assert.Equal(t, "she", f.Pronoun())
	assert.Equal(t, "her", f.Possessive())
	assert.Equal(t, "female", f.Sex())
	assert.Equal(t, "he", m.Pronoun())
	assert.Equal(t, "his", m.Possessive())
	assert.Equal(t, "male", m.Sex())
}
