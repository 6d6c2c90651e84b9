package telemetry

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/redis/go-redis/v9"
)

// QueueKey is the Redis list telemetry records are pushed to.
const QueueKey = "openmw-messages"

// RedisQueue pushes gzip-compressed JSON records onto a Redis list.
type RedisQueue struct {
	rdb    *redis.Client
	key    string
	logger *slog.Logger
}

var _ Sink = (*RedisQueue)(nil)

// NewRedisQueue parses redisURL, connects and pings.
func NewRedisQueue(ctx context.Context, redisURL string, logger *slog.Logger) (*RedisQueue, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	rdb := redis.NewClient(opt)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	logger.Debug("Connected to Redis for telemetry", "addr", opt.Addr)
	return &RedisQueue{rdb: rdb, key: QueueKey, logger: logger}, nil
}

// Close closes the Redis connection
func (q *RedisQueue) Close() error {
	return q.rdb.Close()
}

// Send appends r to the queue.
func (q *RedisQueue) Send(ctx context.Context, r *Record) error {
	payload, err := compress(r)
	if err != nil {
		return err
	}
	if err := q.rdb.RPush(ctx, q.key, payload).Err(); err != nil {
		return fmt.Errorf("redis rpush failed: %w", err)
	}
	q.logger.Debug("Queued telemetry record", "id", r.ID, "bytes", len(payload))
	return nil
}

// Depth returns the number of queued records.
func (q *RedisQueue) Depth(ctx context.Context) (int64, error) {
	n, err := q.rdb.LLen(ctx, q.key).Result()
	if err != nil {
		return 0, fmt.Errorf("redis llen failed: %w", err)
	}
	return n, nil
}

// Drain pops records oldest first and hands each to fn until the queue is
// empty. A record fn rejects is pushed back to the head of the queue and
// draining stops with that error.
func (q *RedisQueue) Drain(ctx context.Context, fn func(context.Context, *Record) error) (int, error) {
	drained := 0
	for {
		if err := ctx.Err(); err != nil {
			return drained, err
		}

		payload, err := q.rdb.LPop(ctx, q.key).Bytes()
		if errors.Is(err, redis.Nil) {
			return drained, nil
		}
		if err != nil {
			return drained, fmt.Errorf("redis lpop failed: %w", err)
		}

		r, err := decompress(payload)
		if err != nil {
			// Undecodable payloads would block the queue forever.
			q.logger.Warn("Dropping malformed telemetry record", "error", err)
			continue
		}

		if err := fn(ctx, r); err != nil {
			if perr := q.rdb.LPush(ctx, q.key, payload).Err(); perr != nil {
				return drained, errors.Join(err, fmt.Errorf("redis lpush failed: %w", perr))
			}
			return drained, err
		}
		drained++
	}
}

func compress(r *Record) ([]byte, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal record: %w", err)
	}

	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write(data); err != nil {
		return nil, fmt.Errorf("failed to compress record: %w", err)
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("failed to compress record: %w", err)
	}
	return buf.Bytes(), nil
}

func decompress(payload []byte) (*Record, error) {
	zr, err := gzip.NewReader(bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to open gzip payload: %w", err)
	}
	defer func() { _ = zr.Close() }()

	data, err := io.ReadAll(zr)
	if err != nil {
		return nil, fmt.Errorf("failed to decompress payload: %w", err)
	}

	var r Record
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("failed to unmarshal record: %w", err)
	}
	return &r, nil
}
