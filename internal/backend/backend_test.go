package backend

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/ml-interface/internal/config"
	"github.com/jwebster45206/ml-interface/internal/services"
	"github.com/jwebster45206/ml-interface/internal/telemetry"
	"github.com/jwebster45206/ml-interface/pkg/chat"
	"github.com/jwebster45206/ml-interface/pkg/prompts"
	"github.com/jwebster45206/ml-interface/pkg/snapshot"
	"github.com/jwebster45206/ml-interface/pkg/textfilter"
)

const snapshotJSON = `{
  "location": "Balmora, Caius Cosades' House",
  "actor": {
    "name": "Caius Cosades", "race": "Imperial", "class": "Spymaster", "is_female": false,
    "faction": "Blades", "faction_rank": 8, "reputation": 30, "level": 25,
    "health": 150, "max_health": 300, "magicka": 40, "max_magicka": 180,
    "fatigue": 300, "max_fatigue": 300,
    "inventory": {"gold": 1450, "store_gold": 0, "items": {"Moon Sugar": 4}},
    "disposition": 60
  },
  "player": {
    "name": "Nerevar", "race": "Dunmer", "class": "Battlemage", "is_female": true,
    "factions": {"Blades": 1}, "reputation": 4, "bounty": 0, "level": 3,
    "health": 60, "max_health": 60, "magicka": 100, "max_magicka": 120,
    "fatigue": 200, "max_fatigue": 200
  },
  "history": [
    {"speaker": "player", "text": "I was told to report to you."},
    {"speaker": "actor", "text": "Sit down, and keep your voice low."}
  ],
  "prompt": "What do you need from me?"
}`

// fixedRand always draws the top of the range: nobody is recognized and
// disposition jitter is at its maximum.
type fixedRand struct{}

func (fixedRand) IntN(n int) int { return n - 1 }

var _ prompts.Rand = fixedRand{}

type recordingSink struct {
	records []*telemetry.Record
}

func (s *recordingSink) Send(_ context.Context, r *telemetry.Record) error {
	s.records = append(s.records, r)
	return nil
}

func (s *recordingSink) Close() error { return nil }

func writeSnapshot(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "input.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func testDeps(cfg *config.Config) (Deps, *bytes.Buffer, *recordingSink) {
	stderr := &bytes.Buffer{}
	sink := &recordingSink{}
	return Deps{
		Config:    cfg,
		Logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		Telemetry: sink,
		Rand:      fixedRand{},
		Stderr:    stderr,
	}, stderr, sink
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	r.Register("echo", func(context.Context, Deps) (Backend, error) { return Echo{}, nil })

	b, err := r.Create(context.Background(), "echo", Deps{})
	require.NoError(t, err)
	assert.IsType(t, Echo{}, b)

	_, err = r.Create(context.Background(), "t5_test", Deps{})
	assert.ErrorIs(t, err, ErrBackendNotRegistered)
	assert.Contains(t, err.Error(), `"t5_test"`)

	assert.Equal(t, []string{"echo"}, r.Names())
}

func TestDefaultRegistry_Names(t *testing.T) {
	assert.Equal(t, []string{
		NameAnthropic, NameEcho, NameGemini, NameOllama, NameOpenAI, NameOpenAIBase, NameVenice,
	}, DefaultRegistry().Names())
}

func TestDefaultRegistry_MissingCredentials(t *testing.T) {
	deps, _, _ := testDeps(config.Default())
	_, err := DefaultRegistry().Create(context.Background(), NameOpenAI, deps)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrBackendNotRegistered)
}

func TestEcho(t *testing.T) {
	content := `{"actor": {"name": "Fargoth"}}`
	out, err := Echo{}.Predict(context.Background(), writeSnapshot(t, content))
	require.NoError(t, err)
	assert.Equal(t, content, out)

	_, err = Echo{}.Predict(context.Background(), filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestChat_Predict(t *testing.T) {
	deps, stderr, sink := testDeps(config.Default())
	llm := services.NewMockLLMAPI()
	llm.SetResponses(`"Hasphat Antabolis has something for you."`)

	out, err := NewChat(NameOpenAI, llm, deps).Predict(context.Background(), writeSnapshot(t, snapshotJSON))
	require.NoError(t, err)
	assert.Equal(t, "Hasphat Antabolis has something for you.", out)
	assert.Empty(t, stderr.String())

	calls := llm.GetCalls()
	require.Len(t, calls, 1)
	assert.Equal(t, 0.7, calls[0].Temperature)

	msgs := calls[0].Messages
	assert.Equal(t, chat.ChatMessage{Role: chat.ChatRoleSystem, Content: prompts.Preamble}, msgs[0])
	assert.Equal(t, chat.ChatMessage{Role: chat.ChatRoleUser, Content: "What do you need from me?"}, msgs[len(msgs)-1])
	assert.Contains(t, msgs[1].Content, "You are Caius Cosades")

	require.Len(t, sink.records, 1)
	rec := sink.records[0]
	assert.Equal(t, NameOpenAI, rec.Backend)
	assert.Equal(t, "What do you need from me?", rec.Prompt)
	assert.Equal(t, "Hasphat Antabolis has something for you.", rec.Reply)
	assert.Nil(t, rec.DispositionChange)
	assert.JSONEq(t, snapshotJSON, string(rec.Input))
}

func TestChat_PredictWithDisposition(t *testing.T) {
	cfg := config.Default()
	cfg.Disposition.Enabled = true
	deps, stderr, sink := testDeps(cfg)

	llm := services.NewMockLLMAPI()
	llm.SetResponses("Speak quietly.", "They were polite enough. [7]")

	out, err := NewChat(NameOpenAI, llm, deps).Predict(context.Background(), writeSnapshot(t, snapshotJSON))
	require.NoError(t, err)
	assert.Equal(t, "Speak quietly. [7]", out)
	assert.Equal(t, "They were polite enough. [7]\n", stderr.String())

	calls := llm.GetCalls()
	require.Len(t, calls, 2)
	first, second := calls[0].Messages, calls[1].Messages
	require.Len(t, second, len(first)+2)
	assert.Equal(t, first, second[:len(first)])
	assert.Equal(t, chat.ChatMessage{Role: chat.ChatRoleAgent, Content: "Speak quietly."}, second[len(first)])
	assert.Equal(t, chat.ChatMessage{Role: chat.ChatRoleUser, Content: textfilter.DispositionInstruction}, second[len(first)+1])

	require.Len(t, sink.records, 1)
	require.NotNil(t, sink.records[0].DispositionChange)
	assert.Equal(t, 7, *sink.records[0].DispositionChange)
}

func TestChat_DispositionMissingStrict(t *testing.T) {
	cfg := config.Default()
	cfg.Disposition.Enabled = true
	deps, _, sink := testDeps(cfg)

	llm := services.NewMockLLMAPI()
	llm.SetResponses("Speak quietly.", "No number here.")

	_, err := NewChat(NameOpenAI, llm, deps).Predict(context.Background(), writeSnapshot(t, snapshotJSON))
	assert.ErrorIs(t, err, textfilter.ErrNoDisposition)
	assert.Empty(t, sink.records)
}

func TestChat_DispositionMissingLenient(t *testing.T) {
	cfg := config.Default()
	cfg.Disposition = config.DispositionConfig{Enabled: true, Strict: false}
	deps, _, _ := testDeps(cfg)

	llm := services.NewMockLLMAPI()
	llm.SetResponses("Speak quietly.", "No number here.")

	out, err := NewChat(NameOpenAI, llm, deps).Predict(context.Background(), writeSnapshot(t, snapshotJSON))
	require.NoError(t, err)
	assert.Equal(t, "Speak quietly.", out)
}

func TestChat_GenerationError(t *testing.T) {
	deps, _, sink := testDeps(config.Default())
	llm := services.NewMockLLMAPI()
	boom := errors.New("rate limited")
	llm.SetChatError(boom)

	_, err := NewChat(NameOpenAI, llm, deps).Predict(context.Background(), writeSnapshot(t, snapshotJSON))
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, sink.records)
}

func TestChat_InputErrors(t *testing.T) {
	deps, _, _ := testDeps(config.Default())
	llm := services.NewMockLLMAPI()
	c := NewChat(NameOpenAI, llm, deps)

	_, err := c.Predict(context.Background(), filepath.Join(t.TempDir(), "missing.json"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = c.Predict(context.Background(), writeSnapshot(t, "{not json"))
	assert.Error(t, err)

	zeroMax := strings.Replace(snapshotJSON, `"max_health": 300`, `"max_health": 0`, 1)
	_, err = c.Predict(context.Background(), writeSnapshot(t, zeroMax))
	assert.ErrorIs(t, err, snapshot.ErrInvalidSnapshot)

	assert.Empty(t, llm.GetCalls())
}

func TestChat_Respond(t *testing.T) {
	deps, _, _ := testDeps(config.Default())
	llm := services.NewMockLLMAPI()
	llm.SetResponses("Go.")

	s, err := snapshot.Parse([]byte(snapshotJSON))
	require.NoError(t, err)

	resp, err := NewChat(NameOpenAI, llm, deps).Respond(context.Background(), s)
	require.NoError(t, err)
	assert.Equal(t, "Go.", resp.Result.Reply)
	assert.Equal(t, llm.GetCalls()[0].Messages, resp.Messages)
	assert.Empty(t, resp.Rating)
}

func TestBasic_Predict(t *testing.T) {
	deps, _, sink := testDeps(config.Default())
	llm := services.NewMockLLMAPI()
	llm.SetResponses(`"Who are you?"`)

	out, err := NewBasic(NameOpenAIBase, llm, deps).Predict(context.Background(), writeSnapshot(t, `{"actor": {"name": "Fargoth"}, "prompt": "Hello"}`))
	require.NoError(t, err)
	assert.Equal(t, "Who are you?", out)

	calls := llm.GetCalls()
	require.Len(t, calls, 1)
	assert.Equal(t, prompts.BasicMessages("Fargoth", "Hello"), calls[0].Messages)
	require.Len(t, sink.records, 1)
	assert.Equal(t, NameOpenAIBase, sink.records[0].Backend)
}

func TestBasic_RequiresActorName(t *testing.T) {
	deps, _, _ := testDeps(config.Default())
	_, err := NewBasic(NameOpenAIBase, services.NewMockLLMAPI(), deps).Predict(context.Background(), writeSnapshot(t, `{"prompt": "Hello"}`))
	assert.ErrorIs(t, err, snapshot.ErrInvalidSnapshot)
}

func TestBasic_PredictFlatActor(t *testing.T) {
	deps, _, sink := testDeps(config.Default())
	llm := services.NewMockLLMAPI()
	llm.SetResponses("Leave me be.")

	out, err := NewBasic(NameOpenAIBase, llm, deps).Predict(context.Background(), writeSnapshot(t, `{"actor": "Fargoth", "prompt": "Hello"}`))
	require.NoError(t, err)
	assert.Equal(t, "Leave me be.", out)

	calls := llm.GetCalls()
	require.Len(t, calls, 1)
	assert.Equal(t, prompts.BasicMessages("Fargoth", "Hello"), calls[0].Messages)
	require.Len(t, sink.records, 1)
	assert.JSONEq(t, `{"actor": "Fargoth", "prompt": "Hello"}`, string(sink.records[0].Input))
}

func TestBasic_PredictFlatActorEmptyName(t *testing.T) {
	deps, _, _ := testDeps(config.Default())
	_, err := NewBasic(NameOpenAIBase, services.NewMockLLMAPI(), deps).Predict(context.Background(), writeSnapshot(t, `{"actor": "", "prompt": "Hello"}`))
	assert.ErrorIs(t, err, snapshot.ErrInvalidSnapshot)
}
