package prompts

import "github.com/jwebster45206/ml-interface/pkg/snapshot"

// constRand always draws the same value, capped to the range asked for.
type constRand int

func (c constRand) IntN(n int) int {
	if int(c) >= n {
		return n - 1
	}
	return int(c)
}

// noJitter centers the disposition jitter and never recognizes anyone with
// a reputation at or below 5.
const noJitter = constRand(5)

func vitals(health, maxHealth, magicka, maxMagicka, fatigue, maxFatigue float64) snapshot.Vitals {
	return snapshot.Vitals{
		Health: health, MaxHealth: maxHealth,
		Magicka: magicka, MaxMagicka: maxMagicka,
		Fatigue: fatigue, MaxFatigue: maxFatigue,
	}
}

func testSnapshot() *snapshot.Snapshot {
	return &snapshot.Snapshot{
		Location: "Balmora, Council Club",
		Actor: snapshot.Actor{
			Character: snapshot.Character{
				Name:       "Nine-Toes",
				Race:       "Argonian",
				Class:      "Hunter",
				Level:      9,
				Reputation: 12,
				Vitals:     vitals(100, 100, 40, 40, 120, 120),
			},
			Faction:     "Blades",
			FactionRank: 3,
			Inventory: snapshot.Inventory{
				Gold:  120,
				Items: snapshot.Items{{Name: "Iron Dagger", Count: 1}},
			},
			Disposition: 50,
		},
		Player: snapshot.Player{
			Character: snapshot.Character{
				Name:       "Arin",
				Race:       "Dunmer",
				Class:      "Battlemage",
				IsFemale:   true,
				Level:      12,
				Reputation: 0,
				Vitals:     vitals(120, 120, 150, 150, 260, 260),
			},
			Factions: snapshot.FactionRanks{
				{Name: "Fighters Guild", Rank: 5},
				{Name: "Mages Guild", Rank: 8},
			},
		},
		History: []snapshot.Turn{
			{Speaker: snapshot.SpeakerPlayer, Text: "Hello."},
			{Speaker: snapshot.SpeakerActor, Text: "Yes?"},
		},
		Prompt: "What news from Vivec?",
	}
}
