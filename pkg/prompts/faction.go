package prompts

import (
	"fmt"

	"github.com/jwebster45206/ml-interface/pkg/snapshot"
)

const (
	midRank  = 4
	highRank = 7
)

// ActorFaction describes the actor's standing in their faction. Returns ""
// when the actor belongs to none.
func ActorFaction(a *snapshot.Actor) string {
	if a.Faction == "" {
		return ""
	}
	switch {
	case a.FactionRank < 0:
		return fmt.Sprintf("You are a member of the %s.", a.Faction)
	case a.FactionRank < midRank:
		return fmt.Sprintf("You are a low-ranking member of the %s.", a.Faction)
	case a.FactionRank < highRank:
		return fmt.Sprintf("You are a mid-ranking member of the %s, and expect respect from its lower members.", a.Faction)
	default:
		return fmt.Sprintf("You are a high-ranking member of the %s, a leader and role model to its members.", a.Faction)
	}
}

// TopFaction returns the faction the player holds the highest rank in.
// Ties go to the faction listed first.
func TopFaction(ranks snapshot.FactionRanks) (snapshot.FactionRank, bool) {
	if len(ranks) == 0 {
		return snapshot.FactionRank{}, false
	}
	top := ranks[0]
	for _, r := range ranks[1:] {
		if r.Rank > top.Rank {
			top = r
		}
	}
	return top, true
}

// PlayerFaction describes the player's most senior faction membership and
// whether the player outranks the actor in the actor's own faction.
func PlayerFaction(actor *snapshot.Actor, player *snapshot.Player) string {
	top, ok := TopFaction(player.Factions)
	if !ok {
		return ""
	}

	var s string
	switch {
	case top.Rank < midRank:
		s = fmt.Sprintf("%s is a low-ranking member of the %s.", player.Name, top.Name)
	case top.Rank < highRank:
		s = fmt.Sprintf("%s is a mid-ranking member of the %s, and expects respect from its lower members.", player.Name, top.Name)
	default:
		s = fmt.Sprintf("%s is a high-ranking member of the %s, a leader and role model to its members.", player.Name, top.Name)
	}

	if actor.Faction != "" {
		if rank, shared := player.Rank(actor.Faction); shared && rank > actor.FactionRank {
			s += fmt.Sprintf(" %s outranks you in the %s.", player.Name, actor.Faction)
		}
	}
	return s
}

// ActorReputation is the actor's own renown.
func ActorReputation(reputation int) string {
	switch {
	case reputation <= 0:
		return "You have no reputation to speak of. Improvise a backstory for yourself that fits your race and class."
	case reputation < 5:
		return "You are known to a handful of people in your hometown."
	case reputation < 10:
		return "You are known around your hometown."
	case reputation < 20:
		return "You are known across your home region."
	case reputation < 50:
		return "You are well known across Vvardenfell."
	case reputation < 100:
		return "You are famous across Vvardenfell."
	default:
		return "You are a legend across Tamriel."
	}
}

// Recognition decides whether the actor has heard of the player, first by
// reputation and then, failing that, by bounty. Both checks are random
// draws, so the same snapshot may or may not produce a sentence.
func Recognition(p *snapshot.Player, r Rand) string {
	if r.IntN(151) < p.Reputation {
		switch {
		case p.Reputation < 10:
			return fmt.Sprintf("You have heard a rumor or two about %s.", p.Name)
		case p.Reputation < 50:
			return fmt.Sprintf("You recognize %s; word of %s deeds has reached you.", p.Name, p.Possessive())
		case p.Reputation < 100:
			return fmt.Sprintf("You immediately recognize %s; %s deeds are well known to you.", p.Name, p.Possessive())
		default:
			return fmt.Sprintf("You recognize %s as a living legend; everyone knows of %s deeds.", p.Name, p.Possessive())
		}
	}

	if p.Bounty > 0 && r.IntN(1001) < p.Bounty {
		switch {
		case p.Bounty < 50:
			return fmt.Sprintf("You know that %s is wanted for petty crimes.", p.Name)
		case p.Bounty < 1000:
			return fmt.Sprintf("You know that %s is wanted by the guards.", p.Name)
		case p.Bounty < 5000:
			return fmt.Sprintf("You know that %s is a dangerous criminal with a sizeable bounty on %s head.", p.Name, p.Possessive())
		default:
			return fmt.Sprintf("You know that %s is a notorious criminal, wanted across the land.", p.Name)
		}
	}
	return ""
}
