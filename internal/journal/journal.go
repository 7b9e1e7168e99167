// Package journal pushes committed score mutations onto a redis queue for
// an external history consumer. It is optional: a nil Journal is a no-op,
// and publish failures are logged, never surfaced to the caller.
package journal

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// DefaultQueueName is the redis list the records land on.
const DefaultQueueName = "anotador_mutations"

// Record is one committed mutation.
type Record struct {
	GameID    uuid.UUID      `json:"game_id"`
	Op        string         `json:"op"`
	Payload   map[string]any `json:"payload,omitempty"`
	Timestamp int64          `json:"timestamp"`
}

// Journal wraps the redis client and queue name.
type Journal struct {
	rdb   *redis.Client
	queue string
	log   *logrus.Logger
}

// Connect dials redis at addr and verifies the connection.
func Connect(addr string, db int, log *logrus.Logger) (*Journal, error) {
	rdb := redis.NewClient(&redis.Options{Addr: addr, DB: db})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect redis at %s: %w", addr, err)
	}
	return &Journal{rdb: rdb, queue: DefaultQueueName, log: log}, nil
}

// Publish RPushes the record. Fire and forget: errors are logged only.
func (j *Journal) Publish(ctx context.Context, rec Record) {
	if j == nil {
		return
	}
	rec.Timestamp = time.Now().UnixMilli()
	data, err := json.Marshal(rec)
	if err != nil {
		j.log.WithError(err).Warn("journal: marshal record")
		return
	}
	if err := j.rdb.RPush(ctx, j.queue, data).Err(); err != nil {
		j.log.WithError(err).WithField("op", rec.Op).Warn("journal: rpush failed")
	}
}

// Close releases the redis client.
func (j *Journal) Close() error {
	if j == nil {
		return nil
	}
	return j.rdb.Close()
}
