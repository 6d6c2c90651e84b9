// Package dataset turns stored telemetry into disposition training rows and
// writes them to SQLite.
package dataset

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/jwebster45206/ml-interface/internal/telemetry"
	"github.com/jwebster45206/ml-interface/pkg/chat"
)

// ErrIncomplete marks a conversation missing one of its documents.
var ErrIncomplete = errors.New("incomplete conversation")

// Row is one training example: the dialogue as input, the disposition
// change as the expected output.
type Row struct {
	ID     string `db:"id"`
	Input  string `db:"input"`
	Output string `db:"output"`
}

// BuildRow flattens a conversation. The last sent message is swapped for the
// player's original prompt, the reply is appended, and the contents are
// joined with newlines.
func BuildRow(c telemetry.Conversation) (Row, error) {
	if len(c.Missing) > 0 {
		return Row{}, fmt.Errorf("%w %s: missing %s", ErrIncomplete, c.ID, strings.Join(c.Missing, ", "))
	}
	if len(c.Messages) == 0 {
		return Row{}, fmt.Errorf("%w %s: no messages", ErrIncomplete, c.ID)
	}

	messages := make([]chat.ChatMessage, len(c.Messages), len(c.Messages)+1)
	copy(messages, c.Messages)
	messages[len(messages)-1].Content = c.Prompt
	messages = append(messages, chat.ChatMessage{Role: chat.ChatRoleAgent, Content: c.Reply})

	parts := make([]string, len(messages))
	for i, m := range messages {
		parts[i] = m.Content
	}

	return Row{
		ID:     c.ID,
		Input:  strings.Join(parts, "\n"),
		Output: strconv.Itoa(c.DispositionChange),
	}, nil
}

// BuildRows converts every complete conversation and logs the rest.
func BuildRows(convs []telemetry.Conversation, logger *slog.Logger) []Row {
	rows := make([]Row, 0, len(convs))
	for _, c := range convs {
		row, err := BuildRow(c)
		if err != nil {
			logger.Warn("Skipping conversation", "id", c.ID, "error", err)
			continue
		}
		rows = append(rows, row)
	}
	return rows
}

// Writer stores rows in a SQLite database.
type Writer struct {
	conn *sqlx.DB
}

// Open opens or creates the SQLite database at path.
func Open(path string) (*Writer, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	w := &Writer{conn: conn}
	if err := w.migrate(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return w, nil
}

// Close closes the database connection.
func (w *Writer) Close() error {
	return w.conn.Close()
}

func (w *Writer) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS examples (
		id TEXT PRIMARY KEY,
		input TEXT NOT NULL,
		output TEXT NOT NULL
	);
	`
	_, err := w.conn.Exec(schema)
	return err
}

// Write inserts rows in one transaction, replacing rows with the same ID.
func (w *Writer) Write(rows []Row) error {
	tx, err := w.conn.Beginx()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for _, r := range rows {
		if _, err := tx.NamedExec(`INSERT OR REPLACE INTO examples (id, input, output) VALUES (:id, :input, :output)`, r); err != nil {
			return fmt.Errorf("insert %s: %w", r.ID, err)
		}
	}
	return tx.Commit()
}

// Rows returns every stored row ordered by ID.
func (w *Writer) Rows() ([]Row, error) {
	var rows []Row
	if err := w.conn.Select(&rows, `SELECT id, input, output FROM examples ORDER BY id`); err != nil {
		return nil, err
	}
	return rows, nil
}
