package snapshot

import (
	"fmt"
	"math"

	"github.com/jwebster45206/d20"
)

const (
	AttrMagicka = "magicka"
	AttrFatigue = "fatigue"

	baseArmorClass = 10
)

// Combatant builds a d20 stat block from the character's maximum pools,
// rounded up. Current values are ignored.
func (c *Character) Combatant() (*d20.Actor, error) {
	if c.MaxHealth <= 0 {
		return nil, fmt.Errorf("%w: %s has no max_health", ErrInvalidSnapshot, c.Name)
	}
	actor, err := d20.NewActor(c.Name).
		WithHP(roundUp(c.MaxHealth)).
		WithAC(baseArmorClass).
		WithAttributes(map[string]int{
			AttrMagicka: roundUp(c.MaxMagicka),
			AttrFatigue: roundUp(c.MaxFatigue),
		}).
		Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build combatant %s: %w", c.Name, err)
	}
	return actor, nil
}

func roundUp(v float64) int {
	return int(math.Ceil(v))
}
