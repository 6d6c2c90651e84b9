package telemetry

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/sync/errgroup"

	"github.com/jwebster45206/ml-interface/pkg/chat"
)

// Collection names. Every document is keyed by the record ID.
const (
	CollectionAPIOutput   = "api_output"
	CollectionInput       = "js_input"
	CollectionOutput      = "js_output"
	CollectionDisposition = "disposition"
)

// Collections lists every collection a record is written to.
var Collections = []string{CollectionAPIOutput, CollectionInput, CollectionOutput, CollectionDisposition}

// MongoStore writes each record as one document per collection.
type MongoStore struct {
	client *mongo.Client
	db     *mongo.Database
	logger *slog.Logger
}

var _ Sink = (*MongoStore)(nil)

// NewMongoStore connects to uri and pings before returning.
func NewMongoStore(ctx context.Context, uri, database string, logger *slog.Logger) (*MongoStore, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	logger.Debug("Connected to MongoDB for telemetry", "database", database)
	return &MongoStore{client: client, db: client.Database(database), logger: logger}, nil
}

// Close disconnects from MongoDB.
func (m *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return m.client.Disconnect(ctx)
}

// Send upserts the record's documents, so resending a record is harmless.
// The disposition document is only written when a change was extracted.
func (m *MongoStore) Send(ctx context.Context, r *Record) error {
	id := r.ID.String()

	apiOutput := bson.M{
		"_id":        id,
		"backend":    r.Backend,
		"model":      r.Model,
		"reply":      r.Reply,
		"created_at": r.CreatedAt,
	}
	if len(r.Raw) > 0 {
		var response bson.M
		if err := bson.UnmarshalExtJSON(r.Raw, false, &response); err != nil {
			m.logger.Debug("Provider response is not a JSON object", "id", id, "error", err)
		} else {
			apiOutput["response"] = response
		}
	}

	input := bson.M{}
	if len(r.Input) > 0 {
		if err := bson.UnmarshalExtJSON(r.Input, false, &input); err != nil {
			return fmt.Errorf("failed to convert input for %s: %w", id, err)
		}
	}
	input["_id"] = id
	input["prompt"] = r.Prompt

	docs := map[string]bson.M{
		CollectionAPIOutput: apiOutput,
		CollectionInput:     input,
		CollectionOutput:    {"_id": id, "messages": r.Messages},
	}
	if r.DispositionChange != nil {
		docs[CollectionDisposition] = bson.M{"_id": id, "disposition_change": *r.DispositionChange}
	}

	for name, doc := range docs {
		_, err := m.db.Collection(name).ReplaceOne(ctx, bson.M{"_id": id}, doc, options.Replace().SetUpsert(true))
		if err != nil {
			return fmt.Errorf("failed to write %s document %s: %w", name, id, err)
		}
	}

	m.logger.Debug("Stored telemetry record", "id", id, "collections", len(docs))
	return nil
}

// Each calls fn with every document of collection, encoded as relaxed
// extended JSON.
func (m *MongoStore) Each(ctx context.Context, collection string, fn func(id string, doc []byte) error) error {
	cur, err := m.db.Collection(collection).Find(ctx, bson.M{})
	if err != nil {
		return fmt.Errorf("failed to query %s: %w", collection, err)
	}
	defer func() { _ = cur.Close(ctx) }()

	for cur.Next(ctx) {
		var doc bson.M
		if err := cur.Decode(&doc); err != nil {
			return fmt.Errorf("failed to decode %s document: %w", collection, err)
		}
		id := fmt.Sprint(doc["_id"])
		data, err := bson.MarshalExtJSONIndent(doc, false, false, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode %s document %s: %w", collection, id, err)
		}
		if err := fn(id, data); err != nil {
			return err
		}
	}
	return cur.Err()
}

// Conversation gathers the documents stored for one record.
// Missing names the collections that had no document for it.
type Conversation struct {
	ID                string
	Prompt            string
	Messages          []chat.ChatMessage
	Reply             string
	DispositionChange int
	Missing           []string
}

type apiOutputDoc struct {
	ID    string `bson:"_id"`
	Reply string `bson:"reply"`
}

type inputDoc struct {
	ID     string `bson:"_id"`
	Prompt string `bson:"prompt"`
}

type outputDoc struct {
	ID       string             `bson:"_id"`
	Messages []chat.ChatMessage `bson:"messages"`
}

type dispositionDoc struct {
	ID     string `bson:"_id"`
	Change int    `bson:"disposition_change"`
}

// Conversations loads the four collections concurrently and joins them by ID.
// Records are keyed by the api_output collection.
func (m *MongoStore) Conversations(ctx context.Context) ([]Conversation, error) {
	var (
		outputs      map[string]apiOutputDoc
		inputs       map[string]inputDoc
		messages     map[string]outputDoc
		dispositions map[string]dispositionDoc
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		outputs, err = loadAll(gctx, m.db.Collection(CollectionAPIOutput), func(d apiOutputDoc) string { return d.ID })
		return err
	})
	g.Go(func() (err error) {
		inputs, err = loadAll(gctx, m.db.Collection(CollectionInput), func(d inputDoc) string { return d.ID })
		return err
	})
	g.Go(func() (err error) {
		messages, err = loadAll(gctx, m.db.Collection(CollectionOutput), func(d outputDoc) string { return d.ID })
		return err
	})
	g.Go(func() (err error) {
		dispositions, err = loadAll(gctx, m.db.Collection(CollectionDisposition), func(d dispositionDoc) string { return d.ID })
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	m.logger.Info("Loaded telemetry collections",
		CollectionAPIOutput, len(outputs),
		CollectionInput, len(inputs),
		CollectionOutput, len(messages),
		CollectionDisposition, len(dispositions))

	convs := make([]Conversation, 0, len(outputs))
	for id, out := range outputs {
		c := Conversation{ID: id, Reply: out.Reply}
		if in, ok := inputs[id]; ok {
			c.Prompt = in.Prompt
		} else {
			c.Missing = append(c.Missing, CollectionInput)
		}
		if msg, ok := messages[id]; ok {
			c.Messages = msg.Messages
		} else {
			c.Missing = append(c.Missing, CollectionOutput)
		}
		if d, ok := dispositions[id]; ok {
			c.DispositionChange = d.Change
		} else {
			c.Missing = append(c.Missing, CollectionDisposition)
		}
		convs = append(convs, c)
	}
	slices.SortFunc(convs, func(a, b Conversation) int { return strings.Compare(a.ID, b.ID) })
	return convs, nil
}

func loadAll[T any](ctx context.Context, coll *mongo.Collection, idOf func(T) string) (map[string]T, error) {
	cur, err := coll.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", coll.Name(), err)
	}
	defer func() { _ = cur.Close(ctx) }()

	docs := make(map[string]T)
	for cur.Next(ctx) {
		var d T
		if err := cur.Decode(&d); err != nil {
			return nil, fmt.Errorf("failed to decode %s document: %w", coll.Name(), err)
		}
		docs[idOf(d)] = d
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", coll.Name(), err)
	}
	return docs, nil
}
