package worker

// audit_writer.go — drains the audit queue and persists entries.
// Writers block on BRPOP so an idle pool costs no CPU. Entries that cannot
// be persisted after maxAttempts land in the DLQ for manual inspection.

import (
	"context"
	"encoding/json"
	"time"

	"github.com/tkamphefner/Inventory/internal/audit"
	"github.com/tkamphefner/Inventory/internal/ident"
	"github.com/tkamphefner/Inventory/internal/model"
	"github.com/tkamphefner/Inventory/internal/repository"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const maxAttempts = 3

// StartWorkerPool launches numWorkers goroutines consuming the audit queue.
func StartWorkerPool(ctx context.Context, rdb *redis.Client, repo repository.AuditRepository, numWorkers int) {
	for i := 0; i < numWorkers; i++ {
		go runWriter(ctx, rdb, repo, i)
	}
	log.Info().Msgf("audit writer pool started with %d workers", numWorkers)
}

func runWriter(ctx context.Context, rdb *redis.Client, repo repository.AuditRepository, id int) {
	for {
		select {
		case <-ctx.Done():
			log.Info().Msgf("audit writer %d shutting down", id)
			return
		default:
			// Blocking pop — waits up to 5s then loops to check ctx
			result, err := rdb.BRPop(ctx, 5*time.Second, audit.Queue).Result()
			if err != nil {
				continue // timeout or context cancelled
			}
			if len(result) < 2 {
				continue
			}
			persistEntry(ctx, rdb, repo, result[1])
		}
	}
}

func persistEntry(ctx context.Context, rdb *redis.Client, repo repository.AuditRepository, raw string) {
	var entry audit.Entry
	if err := json.Unmarshal([]byte(raw), &entry); err != nil {
		log.Error().Err(err).Msg("audit writer: failed to unmarshal entry")
		SendToDLQ(ctx, rdb, audit.Queue, json.RawMessage(raw), "unmarshal: "+err.Error(), 1)
		return
	}

	row := &model.AuditLog{
		ID:            ident.New(ident.PrefixAuditLog),
		ActorID:       entry.ActorID,
		Action:        entry.Action,
		EntityType:    entry.EntityType,
		EntityID:      entry.EntityID,
		Details:       entry.Details,
		OriginAddress: entry.OriginAddress,
		CreatedAt:     entry.RecordedAt,
	}

	var err error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err = repo.Create(ctx, row); err == nil {
			return
		}
		time.Sleep(time.Duration(attempt) * 200 * time.Millisecond)
	}

	log.Error().Err(err).Str("action", entry.Action).Msg("audit writer: giving up on entry")
	SendToDLQ(ctx, rdb, audit.Queue, json.RawMessage(raw), err.Error(), maxAttempts)
}
