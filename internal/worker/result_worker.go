package worker

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/eduin/eduin-backend/internal/config"
	"github.com/eduin/eduin-backend/internal/model"
)

const (
	ResultBatchSize    = 50
	ResultBatchTimeout = 2 * time.Second
	ResultPollTimeout  = 1 * time.Second
)

// ResultStore persists completed practice attempts.
type ResultStore interface {
	BulkInsert(ctx context.Context, results []model.PracticeResultRecord) error
	Insert(ctx context.Context, result model.PracticeResultRecord) error
}

// ResultWorker drains the practice results queue into Postgres in batches.
type ResultWorker struct {
	store   ResultStore
	rdb     redis.Cmdable
	log     zerolog.Logger
	requeue func(ctx context.Context, raw []byte) error
}

func NewResultWorker(store ResultStore, rdb redis.Cmdable, log zerolog.Logger) *ResultWorker {
	w := &ResultWorker{
		store: store,
		rdb:   rdb,
		log:   log.With().Str("component", "result_worker").Logger(),
	}
	w.requeue = func(ctx context.Context, raw []byte) error {
		return w.rdb.RPush(ctx, config.WorkerKey.PersistResultsQueue, raw).Err()
	}
	return w
}

// ----------------------------------------------------------------
// Worker loop with batching
// ----------------------------------------------------------------

func (w *ResultWorker) Start(ctx context.Context) {
	w.log.Info().Msg("ResultWorker started")

	batch := make([]model.PracticeResultRecord, 0, ResultBatchSize)
	lastFlush := time.Now()

	for {
		// Should flush?
		if len(batch) > 0 &&
			(len(batch) >= ResultBatchSize || time.Since(lastFlush) >= ResultBatchTimeout) {

			w.flushSafe(ctx, batch)
			batch = batch[:0]
			lastFlush = time.Now()
		}

		select {
		case <-ctx.Done():
			w.log.Info().Int("pending", len(batch)).Msg("Shutdown requested. Flushing remaining batch...")
			w.flushSafe(context.Background(), batch)
			return

		default:
			item, err := w.rdb.BLPop(ctx, ResultPollTimeout, config.WorkerKey.PersistResultsQueue).Result()
			if err != nil {
				if !errors.Is(err, redis.Nil) && ctx.Err() == nil {
					w.log.Error().Err(err).Msg("BLPop error")
				}
				continue
			}

			rec, ok := w.decode(item)
			if !ok {
				continue
			}
			batch = append(batch, rec)
		}
	}
}

// decode parses a BLPop reply ([queue, payload]).
func (w *ResultWorker) decode(item []string) (model.PracticeResultRecord, bool) {
	var rec model.PracticeResultRecord
	if len(item) < 2 {
		return rec, false
	}
	if err := json.Unmarshal([]byte(item[1]), &rec); err != nil {
		w.log.Error().Err(err).Msg("Invalid JSON payload")
		return rec, false
	}
	if rec.AttemptID == "" {
		w.log.Error().Str("session_id", rec.SessionID).Msg("Result without attempt id dropped")
		return rec, false
	}
	return rec, true
}

// ----------------------------------------------------------------
// Batch insert with per-row fallback
// ----------------------------------------------------------------

func (w *ResultWorker) flushSafe(ctx context.Context, batch []model.PracticeResultRecord) {
	if len(batch) == 0 {
		return
	}

	err := w.store.BulkInsert(ctx, batch)
	if err == nil {
		w.log.Debug().Int("count", len(batch)).Msg("Practice results persisted")
		return
	}

	// COPY is all-or-nothing; a single duplicate attempt fails the whole batch.
	w.log.Warn().Err(err).Msg("bulk result insert failed, using fallback")

	for _, rec := range batch {
		if err := w.store.Insert(ctx, rec); err != nil {
			w.log.Error().Err(err).Str("attempt_id", rec.AttemptID).Msg("Insert failed, requeueing")
			raw, _ := json.Marshal(rec)
			if err := w.requeue(ctx, raw); err != nil {
				w.log.Error().Err(err).Str("attempt_id", rec.AttemptID).Msg("Requeue failed, result lost")
			}
		}
	}
}
