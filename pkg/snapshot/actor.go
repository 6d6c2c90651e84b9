package snapshot

import "fmt"

// Vitals holds the current and maximum values of the three resource pools.
type Vitals struct {
	Health     float64 `json:"health"`
	MaxHealth  float64 `json:"max_health"`
	Magicka    float64 `json:"magicka"`
	MaxMagicka float64 `json:"max_magicka"`
	Fatigue    float64 `json:"fatigue"`
	MaxFatigue float64 `json:"max_fatigue"`
}

// Character is the part of the actor and player descriptions they share.
type Character struct {
	Name       string `json:"name"`
	Race       string `json:"race,omitempty"`
	Class      string `json:"class,omitempty"`
	IsFemale   bool   `json:"is_female"`
	Level      int    `json:"level"`
	Reputation int    `json:"reputation"` // 0-150
	Vitals
}

// Actor is the non-player character being spoken to.
type Actor struct {
	Character
	Faction     string    `json:"faction,omitempty"`
	FactionRank int       `json:"faction_rank"` // -1 when unranked
	Inventory   Inventory `json:"inventory"`
	Disposition int       `json:"disposition"` // 0-100, attitude toward the player
}

// Player is the player character.
type Player struct {
	Character
	Factions FactionRanks `json:"factions,omitempty"` // ranks 1-10, document order kept
	Bounty   int          `json:"bounty"`
}

// Inventory is what the actor carries.
type Inventory struct {
	Gold      int   `json:"gold"`
	StoreGold int   `json:"store_gold"`
	Items     Items `json:"items,omitempty"`
}

// HealthRatio returns current health as a fraction of maximum health.
func (v Vitals) HealthRatio() (float64, error) {
	return ratio("health", v.Health, v.MaxHealth)
}

// MagickaRatio returns current magicka as a fraction of maximum magicka.
func (v Vitals) MagickaRatio() (float64, error) {
	return ratio("magicka", v.Magicka, v.MaxMagicka)
}

// FatigueRatio returns current fatigue as a fraction of maximum fatigue.
func (v Vitals) FatigueRatio() (float64, error) {
	return ratio("fatigue", v.Fatigue, v.MaxFatigue)
}

func ratio(stat string, current, maximum float64) (float64, error) {
	if maximum <= 0 {
		return 0, fmt.Errorf("%w: max_%s must be positive, got %g", ErrInvalidSnapshot, stat, maximum)
	}
	return current / maximum, nil
}

func (v Vitals) validate(prefix string) []error {
	var errs []error
	for _, f := range []struct {
		name  string
		value float64
	}{
		{"max_health", v.MaxHealth},
		{"max_magicka", v.MaxMagicka},
		{"max_fatigue", v.MaxFatigue},
	} {
		if f.value <= 0 {
			errs = append(errs, fmt.Errorf("%s.%s must be positive, got %g", prefix, f.name, f.value))
		}
	}
	return errs
}

// Sex returns "female" or "male".
func (c *Character) Sex() string {
	if c.IsFemale {
		return "female"
	}
	return "male"
}

// Pronoun returns the subject pronoun for the character.
func (c *Character) Pronoun() string {
	if c.IsFemale {
		return "she"
	}
	return "he"
}

// Possessive returns the possessive pronoun for the character.
func (c *Character) Possessive() string {
	if c.IsFemale {
		return "her"
	}
	return "his"
}

// Rank returns the player's rank in faction and whether the player belongs to it.
func (p *Player) Rank(faction string) (int, bool) {
	for _, f := range p.Factions {
		if f.Name == faction {
			return f.Rank, true
		}
	}
	return 0, false
}
