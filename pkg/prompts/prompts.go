package prompts

import (
	"fmt"

	"github.com/jwebster45206/ml-interface/pkg/chat"
)

// Preamble opens every conversation.
const Preamble = "You are a role-playing game character in the world of The Elder Scrolls III: Morrowind."

// ReplyInstructions tells the model how to phrase its reply.
const ReplyInstructions = `Respond in-character using descriptive language. Reply with only your dialogue, no description of your actions should be mentioned. Keep your reply to a few sentences, as if spoken aloud. Never acknowledge that you are an AI or that this is a game.`

// basicSetupPrompt is the single user block of the minimal chat variant.
const basicSetupPrompt = `
You are a role-playing game character in the world of The Elder Scrolls III: Morrowind.

Respond in-character using descriptive language. Reply with only your dialogue, no description of your actions should be mentioned.

You are %s, a non-player character in Morrowind.

The player approaches your character and says, "%s"
`

// BasicMessages builds the two-block conversation of the minimal chat
// variant, which knows only the actor's name and the player's line.
func BasicMessages(actorName, prompt string) []chat.ChatMessage {
	return []chat.ChatMessage{
		{Role: chat.ChatRoleSystem, Content: Preamble},
		{Role: chat.ChatRoleUser, Content: fmt.Sprintf(basicSetupPrompt, actorName, prompt)},
	}
}
