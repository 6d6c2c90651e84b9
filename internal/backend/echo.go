package backend

import (
	"context"
	"fmt"
	"os"
)

// Echo returns the snapshot file verbatim. It is a debugging aid for the
// game-side integration and never parses its input.
type Echo struct{}

func (Echo) Predict(_ context.Context, path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read input file: %w", err)
	}
	return string(data), nil
}
