// Package textfilter cleans up model output before it is shown to the player.
package textfilter

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ErrNoDisposition is returned when a rating response contains no
// bracketed integer.
var ErrNoDisposition = errors.New("no disposition rating found in response")

const (
	MinDispositionChange = -100
	MaxDispositionChange = 100
)

// DispositionInstruction asks the model to rate how the exchange changed
// its attitude toward the player.
const DispositionInstruction = `Stepping out of character for a moment: how did that exchange change your attitude toward the player? Rate the change from -100 (now hostile) to 100 (now devoted), where 0 means no change. Explain briefly, then end your answer with the number in square brackets, for example [5] or [-12].`

var bracketedInt = regexp.MustCompile(`\[([+-]?\d+)\]`)

// StripQuotes trims whitespace and then the quote characters wrapping a
// reply. Quotes inside the text are left alone.
func StripQuotes(s string) string {
	return strings.Trim(strings.TrimSpace(s), `"`)
}

// ExtractDisposition returns the last bracketed signed integer in text,
// clamped to [-100, 100].
func ExtractDisposition(text string) (int, error) {
	matches := bracketedInt.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return 0, ErrNoDisposition
	}
	raw := matches[len(matches)-1][1]
	n, err := strconv.Atoi(raw)
	if err != nil {
		// Only reachable for values that overflow int.
		if strings.HasPrefix(raw, "-") {
			return MinDispositionChange, nil
		}
		return MaxDispositionChange, nil
	}
	return clamp(n), nil
}

// ApplyDisposition adds a change to a 0-100 disposition, saturating at the ends.
func ApplyDisposition(disposition, change int) int {
	return min(max(disposition+change, 0), 100)
}

func clamp(n int) int {
	return min(max(n, MinDispositionChange), MaxDispositionChange)
}

// FormatDisposition renders a change the way it is appended to a reply.
func FormatDisposition(change int) string {
	return fmt.Sprintf("[%d]", change)
}
