package prompts

import (
	"slices"

	"github.com/jwebster45206/ml-interface/pkg/chat"
	"github.com/jwebster45206/ml-interface/pkg/snapshot"
)

// PersuasionSentinels are the labels the game writes into the history when
// the player attempts a persuasion action. The line after each is the
// game's canned reply, not something the actor said of their own accord.
var PersuasionSentinels = []string{
	"Admire Fail",
	"Admire Success",
	"Intimidate Fail",
	"Intimidate Success",
	"Taunt Fail",
	"Taunt Success",
	"Bribe Fail",
	"Bribe Success",
}

// FilterPersuasion removes every sentinel line together with the reply
// that follows it. The scan starts over after each removal. A sentinel
// with nothing after it is kept. The input is not modified.
func FilterPersuasion(turns []snapshot.Turn) []snapshot.Turn {
	out := slices.Clone(turns)
	for {
		i := slices.IndexFunc(out, func(t snapshot.Turn) bool {
			return slices.Contains(PersuasionSentinels, t.Text)
		})
		if i < 0 || i+1 >= len(out) {
			return out
		}
		out = slices.Delete(out, i, i+2)
	}
}

// HistoryMessages maps dialogue turns to chat messages: the actor's lines
// become assistant messages and everything else user messages.
func HistoryMessages(turns []snapshot.Turn) []chat.ChatMessage {
	msgs := make([]chat.ChatMessage, 0, len(turns))
	for _, t := range turns {
		role := chat.ChatRoleUser
		if t.Speaker == snapshot.SpeakerActor {
			role = chat.ChatRoleAgent
		}
		msgs = append(msgs, chat.ChatMessage{Role: role, Content: t.Text})
	}
	return msgs
}
