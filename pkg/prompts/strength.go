package prompts

import (
	"fmt"
	"strings"

	"github.com/jwebster45206/ml-interface/pkg/snapshot"
)

// weakMaximum is the pool size below which neither side is considered strong.
const weakMaximum = 100

const deflatingRemark = " Then again, neither of you look very strong."

// Phrase tables are indexed by score+2.
var physicalPhrases = [5]string{
	"You are far stronger than %s physically.",
	"You are somewhat stronger than %s physically.",
	"You and %s are evenly matched physically.",
	"%s is somewhat stronger than you physically.",
	"%s is far stronger than you physically.",
}

var magicalPhrases = [5]string{
	"You are far more powerful than %s in magical ability.",
	"You are somewhat more powerful than %s in magical ability.",
	"You and %s are evenly matched in magical ability.",
	"%s is somewhat more powerful than you in magical ability.",
	"%s is far more powerful than you in magical ability.",
}

// AdvantageScore rates the player against the actor on one axis, given the
// ratio player maximum / actor maximum.
func AdvantageScore(ratio float64) int {
	switch {
	case ratio > 1.5:
		return 2
	case ratio > 1.25:
		return 1
	case ratio >= 0.75:
		return 0
	case ratio >= 0.5:
		return -1
	default:
		return -2
	}
}

// Verdict picks the overall fight prediction for the sum of both axis scores.
func Verdict(total int, playerName string) string {
	switch {
	case total > 3:
		return fmt.Sprintf("Overall, %s would easily defeat you in a fight.", playerName)
	case total > 1:
		return fmt.Sprintf("Overall, %s would likely win a fight against you.", playerName)
	case total > -2:
		return fmt.Sprintf("Overall, a fight between you and %s could go either way.", playerName)
	case total > -4:
		return fmt.Sprintf("Overall, you would likely win a fight against %s.", playerName)
	default:
		return fmt.Sprintf("Overall, you would easily defeat %s in a fight.", playerName)
	}
}

// Strength compares the player's physical and magical potential with the
// actor's, from the actor's point of view.
func Strength(actor, player *snapshot.Character) (string, error) {
	if actor.MaxMagicka <= 0 {
		return "", fmt.Errorf("%w: %s has no max_magicka", snapshot.ErrInvalidSnapshot, actor.Name)
	}
	// The stat blocks reject characters without health; the comparison itself
	// uses the unrounded maxima.
	if _, err := actor.Combatant(); err != nil {
		return "", err
	}
	if _, err := player.Combatant(); err != nil {
		return "", err
	}

	physical := AdvantageScore(player.MaxHealth / actor.MaxHealth)
	magical := AdvantageScore(player.MaxMagicka / actor.MaxMagicka)

	var sb strings.Builder
	fmt.Fprintf(&sb, physicalPhrases[physical+2], player.Name)
	physicalDeflated := physical != 0 && actor.MaxHealth < weakMaximum && player.MaxHealth < weakMaximum
	if physicalDeflated {
		sb.WriteString(deflatingRemark)
	}

	sb.WriteByte(' ')
	fmt.Fprintf(&sb, magicalPhrases[magical+2], player.Name)
	magicalDeflated := magical != 0 && actor.MaxMagicka < weakMaximum && player.MaxMagicka < weakMaximum
	if magicalDeflated && !physicalDeflated {
		sb.WriteString(deflatingRemark)
	}

	sb.WriteByte(' ')
	sb.WriteString(Verdict(physical+magical, player.Name))
	return sb.String(), nil
}
