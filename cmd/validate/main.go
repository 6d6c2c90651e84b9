package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/jwebster45206/ml-interface/pkg/snapshot"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "Usage: %s <snapshot.json>...\n", os.Args[0])
		os.Exit(1)
	}

	failed := false
	for _, filename := range os.Args[1:] {
		validator := &SnapshotValidator{}
		if err := validator.validateFile(filename, os.Stdout); err != nil {
			fmt.Fprintf(os.Stderr, "Validation failed: %v\n", err)
			failed = true
			continue
		}
		fmt.Printf("%s is valid!\n", filename)
	}
	if failed {
		os.Exit(1)
	}
}

// SnapshotValidator checks a snapshot file against what the chat backends need.
type SnapshotValidator struct {
	errors   []string
	warnings []string
}

func (v *SnapshotValidator) validateFile(filename string, out io.Writer) error {
	fmt.Fprintf(out, "Validating %s...\n", filename)

	if !strings.HasSuffix(filepath.Base(filename), ".json") {
		return fmt.Errorf("snapshot file must have .json extension: %s", filepath.Base(filename))
	}

	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read file %s: %w", filename, err)
	}

	v.errors = nil
	v.warnings = nil

	if err := v.validateData(data); err != nil {
		return fmt.Errorf("file %s: %w", filename, err)
	}

	for _, w := range v.warnings {
		fmt.Fprintf(out, "  warning: %s\n", w)
	}
	if len(v.errors) > 0 {
		return fmt.Errorf("validation errors in %s:\n%s", filename, strings.Join(v.errors, "\n"))
	}
	return nil
}

func (v *SnapshotValidator) validateData(data []byte) error {
	if !json.Valid(data) {
		return fmt.Errorf("contains invalid JSON")
	}

	// Strict pass: unknown fields are usually typos the game side made.
	var strict snapshot.Snapshot
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&strict); err != nil {
		return fmt.Errorf("failed strict JSON unmarshaling: %w", err)
	}

	s, err := snapshot.Parse(data)
	if err != nil {
		return err
	}
	if err := s.Validate(); err != nil {
		v.addError("%v", err)
	}
	v.validateSnapshot(s)
	return nil
}

func (v *SnapshotValidator) validateSnapshot(s *snapshot.Snapshot) {
	if strings.TrimSpace(s.Prompt) == "" {
		v.addError("prompt is empty")
	}
	if s.Location == "" {
		v.addWarning("location is empty; the actor will not know where they are")
	}

	v.validateRange("actor.reputation", s.Actor.Reputation, 0, 150)
	v.validateRange("player.reputation", s.Player.Reputation, 0, 150)
	if s.Actor.Faction == "" && s.Actor.FactionRank != snapshot.UnrankedFaction {
		v.addWarning("actor.faction_rank %d is set without a faction", s.Actor.FactionRank)
	}
	for _, f := range s.Player.Factions {
		v.validateRange(fmt.Sprintf("player.factions[%q]", f.Name), f.Rank, 1, 10)
	}
	if s.Player.Bounty < 0 {
		v.addError("player.bounty must not be negative, got %d", s.Player.Bounty)
	}
	if s.Actor.Inventory.Gold < 0 || s.Actor.Inventory.StoreGold < 0 {
		v.addError("actor.inventory gold amounts must not be negative")
	}
	for _, it := range s.Actor.Inventory.Items {
		if it.Count < 0 {
			v.addError("actor.inventory.items[%q] has negative count %d", it.Name, it.Count)
		}
	}
	for i, t := range s.History {
		if strings.TrimSpace(t.Text) == "" {
			v.addWarning("history[%d] has empty text", i)
		}
	}
}

func (v *SnapshotValidator) validateRange(field string, value, lo, hi int) {
	if value < lo || value > hi {
		v.addError("%s %d is out of range [%d, %d]", field, value, lo, hi)
	}
}

func (v *SnapshotValidator) addError(format string, args ...any) {
	v.errors = append(v.errors, "  - "+fmt.Sprintf(format, args...))
}

func (v *SnapshotValidator) addWarning(format string, args ...any) {
	v.warnings = append(v.warnings, fmt.Sprintf(format, args...))
}
