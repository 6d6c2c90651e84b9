package prompts

import (
	"fmt"
	"strings"

	"github.com/jwebster45206/ml-interface/pkg/chat"
	"github.com/jwebster45206/ml-interface/pkg/snapshot"
)

// DefaultHistoryLimit is the number of history messages kept when no limit is set.
const DefaultHistoryLimit = 20

// Builder constructs chat messages for a snapshot using a fluent interface.
type Builder struct {
	snap             *snapshot.Snapshot
	rng              Rand
	historyLimit     int
	filterPersuasion bool
	messages         []chat.ChatMessage
}

// New creates a new prompt builder with default settings.
func New() *Builder {
	return &Builder{
		historyLimit: DefaultHistoryLimit,
		messages:     make([]chat.ChatMessage, 0),
	}
}

// WithSnapshot sets the world state to describe.
func (b *Builder) WithSnapshot(s *snapshot.Snapshot) *Builder {
	b.snap = s
	return b
}

// WithRand sets the random source for recognition and disposition jitter.
func (b *Builder) WithRand(r Rand) *Builder {
	b.rng = r
	return b
}

// WithHistoryLimit sets the chat history window size.
func (b *Builder) WithHistoryLimit(limit int) *Builder {
	b.historyLimit = limit
	return b
}

// WithPersuasionFilter drops persuasion attempts and their canned replies
// from the history.
func (b *Builder) WithPersuasionFilter(enabled bool) *Builder {
	b.filterPersuasion = enabled
	return b
}

// Build constructs and returns the final message array for LLM consumption.
func (b *Builder) Build() ([]chat.ChatMessage, error) {
	if b.snap == nil {
		return nil, fmt.Errorf("snapshot is required")
	}
	if b.rng == nil {
		return nil, fmt.Errorf("random source is required")
	}

	b.messages = make([]chat.ChatMessage, 0, len(b.snap.History)+5)

	// 1. Preamble
	b.addSystem(Preamble)

	// 2. Who the actor is
	actor, err := b.actorDescription()
	if err != nil {
		return nil, fmt.Errorf("error building actor description: %w", err)
	}
	b.addSystem(actor)

	// 3. Who they are talking to
	player, err := b.playerDescription()
	if err != nil {
		return nil, fmt.Errorf("error building player description: %w", err)
	}
	b.addSystem(player)

	// 4. Windowed chat history
	b.addHistory()

	// 5. How the actor feels right now
	if note := DispositionNote(b.snap.Actor.Disposition, b.snap.Player.Name, b.rng); note != "" {
		b.addSystem(note)
	}

	// 6. The player's new line
	b.messages = append(b.messages, chat.ChatMessage{
		Role:    chat.ChatRoleUser,
		Content: b.snap.Prompt,
	})

	return b.messages, nil
}

func (b *Builder) addSystem(content string) {
	b.messages = append(b.messages, chat.ChatMessage{
		Role:    chat.ChatRoleSystem,
		Content: content,
	})
}

func (b *Builder) actorDescription() (string, error) {
	a := &b.snap.Actor

	vitality, err := Vitality(a.Vitals, a.Level, SecondPerson)
	if err != nil {
		return "", err
	}

	intro := fmt.Sprintf("You are %s, %s.", a.Name, describe(&a.Character))
	if b.snap.Location != "" {
		intro += fmt.Sprintf(" You are currently in %s.", b.snap.Location)
	}

	return joinSentences(
		intro,
		ActorFaction(a),
		ActorReputation(a.Reputation),
		vitality,
		Inventory(a.Inventory),
		ReplyInstructions,
	), nil
}

func (b *Builder) playerDescription() (string, error) {
	a := &b.snap.Actor
	p := &b.snap.Player

	vitality, err := Vitality(p.Vitals, p.Level, ThirdPerson(p.Name))
	if err != nil {
		return "", err
	}
	strength, err := Strength(&a.Character, &p.Character)
	if err != nil {
		return "", err
	}

	return joinSentences(
		fmt.Sprintf("You are speaking with %s, %s.", p.Name, describe(&p.Character)),
		PlayerFaction(a, p),
		Recognition(p, b.rng),
		vitality,
		strength,
	), nil
}

// addHistory adds windowed chat history to the message array.
func (b *Builder) addHistory() {
	turns := b.snap.History
	if b.filterPersuasion {
		turns = FilterPersuasion(turns)
	}
	if len(turns) == 0 {
		return
	}

	if b.historyLimit > 0 && len(turns) > b.historyLimit {
		turns = turns[len(turns)-b.historyLimit:]
	}
	b.messages = append(b.messages, HistoryMessages(turns)...)
}

// describe renders "a female Dunmer Battlemage", skipping unknown parts.
func describe(c *snapshot.Character) string {
	words := []string{c.Sex()}
	if c.Race != "" {
		words = append(words, c.Race)
	}
	if c.Class != "" {
		words = append(words, c.Class)
	}
	return "a " + strings.Join(words, " ")
}

func joinSentences(parts ...string) string {
	kept := parts[:0]
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, " ")
}

// BuildMessages is a convenience function for the common case.
func BuildMessages(s *snapshot.Snapshot, r Rand, historyLimit int, filterPersuasion bool) ([]chat.ChatMessage, error) {
	return New().
		WithSnapshot(s).
		WithRand(r).
		WithHistoryLimit(historyLimit).
		WithPersuasionFilter(filterPersuasion).
		Build()
}
