package worker

// Audit entries that exhaust their write retries are parked in a Redis
// dead-letter list (dlq:<source queue>) so the trail can be replayed by hand
// instead of silently losing entries.

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const DLQPrefix = "dlq:"

// DeadLetter wraps a failed payload with enough context to replay it.
type DeadLetter struct {
	Queue    string          `json:"queue"`
	Payload  json.RawMessage `json:"payload"`
	Reason   string          `json:"reason"`
	FailedAt string          `json:"failed_at"`
	Attempts int             `json:"attempts"`
}

// SendToDLQ parks a payload that could not be persisted. Best effort: a dead
// Redis at this point means the entry is logged and lost.
func SendToDLQ(ctx context.Context, rdb *redis.Client, queue string, payload json.RawMessage, reason string, attempts int) {
	letter := DeadLetter{
		Queue:    queue,
		Payload:  payload,
		Reason:   reason,
		FailedAt: time.Now().UTC().Format(time.RFC3339),
		Attempts: attempts,
	}

	data, err := json.Marshal(letter)
	if err != nil {
		log.Error().Err(err).Str("queue", queue).Msg("dlq: marshal failed")
		return
	}

	key := DLQPrefix + queue
	if err := rdb.LPush(ctx, key, data).Err(); err != nil {
		log.Error().Err(err).Str("key", key).RawJSON("payload", payload).Msg("dlq: push failed, entry lost")
		return
	}

	log.Warn().
		Str("queue", queue).
		Str("reason", reason).
		Int("attempts", attempts).
		Msg("dlq: entry parked")
}

// DLQLength reports the backlog of a queue's dead-letter list. Surfaced on
// the health endpoint so a growing backlog is visible.
func DLQLength(ctx context.Context, rdb *redis.Client, queue string) (int64, error) {
	return rdb.LLen(ctx, DLQPrefix+queue).Result()
}
