// Package snapshot decodes the world-state description the game engine writes
// for one conversational turn.
package snapshot

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// ErrInvalidSnapshot is returned when a snapshot is missing a required field
// or carries a maximum stat that cannot be used as a divisor.
var ErrInvalidSnapshot = errors.New("snapshot: invalid")

const (
	SpeakerActor  = "actor"
	SpeakerPlayer = "player"

	// UnrankedFaction marks an actor that belongs to a faction without a rank.
	UnrankedFaction = -1

	defaultDisposition = 50
)

// Snapshot is one turn of game-world context. It is never mutated by the
// prompt synthesizer.
type Snapshot struct {
	Location string `json:"location"`
	Actor    Actor  `json:"actor"`
	Player   Player `json:"player"`
	History  []Turn `json:"history,omitempty"`
	Prompt   string `json:"prompt"`
}

// Turn is one prior line of dialogue.
type Turn struct {
	Speaker string `json:"speaker"` // "actor" or "player"
	Text    string `json:"text"`
}

// Load reads and decodes the snapshot file at path.
func Load(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot file: %w", err)
	}
	return Parse(data)
}

// Parse decodes a snapshot from JSON. Absent faction ranks default to
// unranked and absent dispositions to 50.
func Parse(data []byte) (*Snapshot, error) {
	s := &Snapshot{
		Actor: Actor{
			FactionRank: UnrankedFaction,
			Disposition: defaultDisposition,
		},
	}
	if err := json.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("failed to unmarshal snapshot: %w", err)
	}
	return s, nil
}

// Validate checks the fields the chat backends depend on. All failures are
// reported together.
func (s *Snapshot) Validate() error {
	var errs []error

	if s.Actor.Name == "" {
		errs = append(errs, fmt.Errorf("actor.name is required"))
	}
	if s.Player.Name == "" {
		errs = append(errs, fmt.Errorf("player.name is required"))
	}
	errs = append(errs, s.Actor.Vitals.validate("actor")...)
	errs = append(errs, s.Player.Vitals.validate("player")...)

	if s.Actor.Disposition < 0 || s.Actor.Disposition > 100 {
		errs = append(errs, fmt.Errorf("actor.disposition %d is out of range [0, 100]", s.Actor.Disposition))
	}
	for i, t := range s.History {
		if t.Speaker != SpeakerActor && t.Speaker != SpeakerPlayer {
			errs = append(errs, fmt.Errorf("history[%d].speaker %q must be %q or %q", i, t.Speaker, SpeakerActor, SpeakerPlayer))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidSnapshot, errors.Join(errs...))
	}
	return nil
}

// WithTurn returns a copy of the snapshot with one more history entry.
func (s *Snapshot) WithTurn(speaker, text string) *Snapshot {
	cp := *s
	cp.History = make([]Turn, len(s.History), len(s.History)+1)
	copy(cp.History, s.History)
	cp.History = append(cp.History, Turn{Speaker: speaker, Text: text})
	return &cp
}
