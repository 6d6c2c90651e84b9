package prompts

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jwebster45206/ml-interface/pkg/snapshot"
)

func TestActorFaction(t *testing.T) {
	tests := []struct {
		name     string
		faction  string
		rank     int
		expected string
	}{
		{"no faction", "", 5, ""},
		{"unranked", "Temple", -1, "You are a member of the Temple."},
		{"low", "Temple", 0, "You are a low-ranking member of the Temple."},
		{"low edge", "Temple", 3, "You are a low-ranking member of the Temple."},
		{"mid", "Temple", 4, "You are a mid-ranking member of the Temple, and expect respect from its lower members."},
		{"mid edge", "Temple", 6, "You are a mid-ranking member of the Temple, and expect respect from its lower members."},
		{"high", "Temple", 7, "You are a high-ranking member of the Temple, a leader and role model to its members."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := &snapshot.Actor{Faction: tt.faction, FactionRank: tt.rank}
			assert.Equal(t, tt.expected, ActorFaction(a))
		})
	}
}

func TestTopFaction(t *testing.T) {
	top, ok := TopFaction(snapshot.FactionRanks{{Name: "Fighters Guild", Rank: 5}, {Name: "Mages Guild", Rank: 8}})
	assert.True(t, ok)
	assert.Equal(t, "Mages Guild", top.Name)

	top, ok = TopFaction(snapshot.FactionRanks{{Name: "Thieves Guild", Rank: 3}, {Name: "Fighters Guild", Rank: 3}})
	assert.True(t, ok)
	assert.Equal(t, "Thieves Guild", top.Name, "ties go to the first listed")

	_, ok = TopFaction(nil)
	assert.False(t, ok)
}

func TestPlayerFaction(t *testing.T) {
	s := testSnapshot()
	assert.Equal(t,
		"Arin is a high-ranking member of the Mages Guild, a leader and role model to its members.",
		PlayerFaction(&s.Actor, &s.Player))

	t.Run("outranks the actor", func(t *testing.T) {
		s := testSnapshot()
		s.Player.Factions = snapshot.FactionRanks{{Name: "Blades", Rank: 4}}
		assert.Equal(t,
			"Arin is a mid-ranking member of the Blades, and expects respect from its lower members. Arin outranks you in the Blades.",
			PlayerFaction(&s.Actor, &s.Player))
	})

	t.Run("shares a faction without outranking", func(t *testing.T) {
		s := testSnapshot()
		s.Player.Factions = snapshot.FactionRanks{{Name: "Blades", Rank: 3}}
		assert.Equal(t, "Arin is a low-ranking member of the Blades.", PlayerFaction(&s.Actor, &s.Player))
	})

	t.Run("no factions", func(t *testing.T) {
		s := testSnapshot()
		s.Player.Factions = nil
		assert.Empty(t, PlayerFaction(&s.Actor, &s.Player))
	})
}

func TestActorReputation(t *testing.T) {
	tests := []struct {
		reputation int
		expected   string
	}{
		{0, "You have no reputation to speak of. Improvise a backstory for yourself that fits your race and class."},
		{4, "You are known to a handful of people in your hometown."},
		{9, "You are known around your hometown."},
		{19, "You are known across your home region."},
		{49, "You are well known across Vvardenfell."},
		{99, "You are famous across Vvardenfell."},
		{100, "You are a legend across Tamriel."},
		{150, "You are a legend across Tamriel."},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, ActorReputation(tt.reputation), "reputation %d", tt.reputation)
	}
}

func TestRecognition(t *testing.T) {
	player := func(reputation, bounty int) *snapshot.Player {
		return &snapshot.Player{
			Character: snapshot.Character{Name: "Arin", IsFemale: true, Reputation: reputation},
			Bounty:    bounty,
		}
	}

	tests := []struct {
		name     string
		player   *snapshot.Player
		rng      constRand
		expected string
	}{
		{"rumor", player(5, 0), 0, "You have heard a rumor or two about Arin."},
		{"recognized", player(30, 0), 0, "You recognize Arin; word of her deeds has reached you."},
		{"immediately", player(60, 0), 59, "You immediately recognize Arin; her deeds are well known to you."},
		{"legend", player(150, 0), 149, "You recognize Arin as a living legend; everyone knows of her deeds."},
		{"draw equals reputation", player(30, 0), 30, ""},
		{"unknown, no bounty", player(0, 0), 0, ""},
		{"petty criminal", player(0, 40), 0, "You know that Arin is wanted for petty crimes."},
		{"wanted", player(0, 200), 0, "You know that Arin is wanted by the guards."},
		{"dangerous", player(0, 1500), 999, "You know that Arin is a dangerous criminal with a sizeable bounty on her head."},
		{"notorious", player(0, 5000), 1000, "You know that Arin is a notorious criminal, wanted across the land."},
		{"bounty draw misses", player(0, 200), 500, ""},
		{"fame checked before bounty", player(30, 5000), 0, "You recognize Arin; word of her deeds has reached you."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Recognition(tt.player, tt.rng))
		})
	}
}
