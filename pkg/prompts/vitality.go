package prompts

import (
	"fmt"
	"strings"

	"github.com/jwebster45206/ml-interface/pkg/snapshot"
)

const (
	lowThreshold          = 0.5
	severeHealthThreshold = 0.2
	exhaustedThreshold    = 0.25

	inexperiencedBelow = 5
	veteranAbove       = 20
)

// Perspective is who a description is written about: the actor is
// addressed as "You are", the player by name as "<name> is".
type Perspective struct {
	Subject string
	Be      string
}

// SecondPerson addresses the actor.
var SecondPerson = Perspective{Subject: "You", Be: "are"}

// ThirdPerson describes someone else by name.
func ThirdPerson(name string) Perspective {
	return Perspective{Subject: name, Be: "is"}
}

// Vitality describes the condition of a character's three resource pools
// and how experienced a fighter they are.
func Vitality(v snapshot.Vitals, level int, p Perspective) (string, error) {
	health, err := v.HealthRatio()
	if err != nil {
		return "", err
	}
	magicka, err := v.MagickaRatio()
	if err != nil {
		return "", err
	}
	fatigue, err := v.FatigueRatio()
	if err != nil {
		return "", err
	}

	var clauses []string
	switch {
	case health < severeHealthThreshold:
		clauses = append(clauses, "severely injured")
	case health < lowThreshold:
		clauses = append(clauses, "injured")
	}
	if magicka < lowThreshold {
		clauses = append(clauses, "low on magicka")
	}
	switch {
	case fatigue < exhaustedThreshold:
		clauses = append(clauses, "exhausted")
	case fatigue < lowThreshold:
		clauses = append(clauses, "tired")
	}

	var sb strings.Builder
	if len(clauses) == 0 {
		fmt.Fprintf(&sb, "%s %s in good health.", p.Subject, p.Be)
	} else {
		fmt.Fprintf(&sb, "%s %s %s.", p.Subject, p.Be, joinClauses(clauses))
	}

	switch {
	case level < inexperiencedBelow:
		fmt.Fprintf(&sb, " %s %s inexperienced when it comes to combat.", p.Subject, p.Be)
	case level > veteranAbove:
		fmt.Fprintf(&sb, " %s %s a veteran when it comes to combat.", p.Subject, p.Be)
	}
	return sb.String(), nil
}

// joinClauses lists condition clauses with a comma before the final "and",
// even when there are only two.
func joinClauses(clauses []string) string {
	switch len(clauses) {
	case 0:
		return ""
	case 1:
		return clauses[0]
	}
	last := len(clauses) - 1
	return strings.Join(clauses[:last], ", ") + ", and " + clauses[last]
}
