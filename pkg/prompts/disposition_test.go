package prompts

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDispositionNote(t *testing.T) {
	tests := []struct {
		name        string
		disposition int
		rng         constRand
		expected    string
	}{
		{"adore", 90, noJitter, "You adore Arin."},
		{"positive", 89, noJitter, "You feel positively toward Arin."},
		{"positive edge", 70, noJitter, "You feel positively toward Arin."},
		{"neutral high", 69, noJitter, ""},
		{"neutral low", 31, noJitter, ""},
		{"negative edge", 30, noJitter, "You feel negatively toward Arin."},
		{"negative", 11, noJitter, "You feel negatively toward Arin."},
		{"loathe", 10, noJitter, "You loathe Arin."},
		{"jitter raises the bar", 94, constRand(10), "You feel positively toward Arin."},
		{"jitter lowers the bar", 85, constRand(0), "You adore Arin."},
		{"jitter widens loathing", 15, constRand(10), "You loathe Arin."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DispositionNote(tt.disposition, "Arin", tt.rng))
		})
	}
}
