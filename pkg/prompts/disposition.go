package prompts

import "fmt"

const dispositionJitter = 5

// DispositionNote turns the actor's 0-100 disposition into a feeling toward
// the player. Each call draws a fresh jitter, so values near a band edge
// can land on either side of it. Neutral dispositions produce "".
func DispositionNote(disposition int, playerName string, r Rand) string {
	j := between(r, -dispositionJitter, dispositionJitter)
	switch {
	case disposition >= 90+j:
		return fmt.Sprintf("You adore %s.", playerName)
	case disposition >= 70+j:
		return fmt.Sprintf("You feel positively toward %s.", playerName)
	case disposition <= 10+j:
		return fmt.Sprintf("You loathe %s.", playerName)
	case disposition <= 30+j:
		return fmt.Sprintf("You feel negatively toward %s.", playerName)
	}
	return ""
}
