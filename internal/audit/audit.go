// Package audit provides the fire-and-forget audit trail. Callers enqueue
// entries into a Redis list; the worker pool drains it and persists rows to
// audit_logs. An audit outage never fails the triggering operation.
package audit

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const Queue = "jobs:audit"

// Entry is the wire format pushed onto the audit queue.
type Entry struct {
	ActorID       string          `json:"actor_id"`
	Action        string          `json:"action"`
	EntityType    string          `json:"entity_type"`
	EntityID      string          `json:"entity_id"`
	Details       json.RawMessage `json:"details,omitempty"`
	OriginAddress string          `json:"origin_address,omitempty"`
	RecordedAt    time.Time       `json:"recorded_at"`
}

// Recorder is the contract services depend on. Tests substitute an in-memory
// implementation.
type Recorder interface {
	Record(ctx context.Context, actorID, action, entityType, entityID string, details interface{}, origin string)
}

type redisRecorder struct{ rdb *redis.Client }

// NewRecorder returns a Recorder backed by a Redis list.
func NewRecorder(rdb *redis.Client) Recorder { return &redisRecorder{rdb: rdb} }

// Record enqueues one audit entry. Failures are logged and swallowed — the
// business operation that triggered the entry must not roll back.
func (r *redisRecorder) Record(ctx context.Context, actorID, action, entityType, entityID string, details interface{}, origin string) {
	var raw json.RawMessage
	if details != nil {
		data, err := json.Marshal(details)
		if err != nil {
			log.Error().Err(err).Str("action", action).Msg("audit: failed to marshal details")
			return
		}
		raw = data
	}

	entry := Entry{
		ActorID:       actorID,
		Action:        action,
		EntityType:    entityType,
		EntityID:      entityID,
		Details:       raw,
		OriginAddress: origin,
		RecordedAt:    time.Now().UTC(),
	}

	encoded, err := json.Marshal(entry)
	if err != nil {
		log.Error().Err(err).Str("action", action).Msg("audit: failed to marshal entry")
		return
	}
	if err := r.rdb.LPush(ctx, Queue, encoded).Err(); err != nil {
		log.Error().Err(err).Str("action", action).Msg("audit: failed to enqueue entry")
	}
}

// Noop discards every entry. Used where no Redis is wired (seed commands, tests).
type Noop struct{}

func (Noop) Record(context.Context, string, string, string, string, interface{}, string) {}
