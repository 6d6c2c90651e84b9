package main

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const validSnapshot = `{
  "location": "Seyda Neen",
  "actor": {
    "name": "Fargoth", "race": "Wood Elf", "class": "Commoner", "faction_rank": -1,
    "reputation": 0, "level": 2,
    "health": 30, "max_health": 30, "magicka": 10, "max_magicka": 10,
    "fatigue": 80, "max_fatigue": 80,
    "inventory": {"gold": 20, "store_gold": 0, "items": {"Fargoth's Ring": 1}},
    "disposition": 70
  },
  "player": {
    "name": "Nerevar", "factions": {"Blades": 1}, "reputation": 0, "bounty": 0, "level": 1,
    "health": 50, "max_health": 50, "magicka": 60, "max_magicka": 60,
    "fatigue": 150, "max_fatigue": 150
  },
  "prompt": "Is this your ring?"
}`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

func TestValidateFile(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
		wantErr string
	}{
		{name: "valid", file: "fargoth.json", content: validSnapshot},
		{name: "wrong extension", file: "fargoth.txt", content: validSnapshot, wantErr: ".json extension"},
		{name: "invalid json", file: "broken.json", content: "{", wantErr: "invalid JSON"},
		{
			name:    "unknown field",
			file:    "typo.json",
			content: strings.Replace(validSnapshot, `"prompt"`, `"promt"`, 1),
			wantErr: "strict JSON",
		},
		{
			name:    "zero maximum",
			file:    "zero.json",
			content: strings.Replace(validSnapshot, `"max_magicka": 10`, `"max_magicka": 0`, 1),
			wantErr: "max_magicka",
		},
		{
			name:    "faction rank out of range",
			file:    "rank.json",
			content: strings.Replace(validSnapshot, `{"Blades": 1}`, `{"Blades": 11}`, 1),
			wantErr: `player.factions["Blades"] 11 is out of range`,
		},
		{
			name:    "empty prompt",
			file:    "noprompt.json",
			content: strings.Replace(validSnapshot, `"Is this your ring?"`, `""`, 1),
			wantErr: "prompt is empty",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := &SnapshotValidator{}
			err := v.validateFile(writeFile(t, tt.file, tt.content), io.Discard)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("expected no error, got %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("expected error containing %q, got nil", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}
