package worker

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/eduin/eduin-backend/internal/config"
	"github.com/eduin/eduin-backend/internal/model"
)

type fakeStore struct {
	bulkErr   error
	failRows  map[string]bool
	bulkCalls int
	inserted  []string
}

func (f *fakeStore) BulkInsert(_ context.Context, results []model.PracticeResultRecord) error {
	f.bulkCalls++
	if f.bulkErr != nil {
		return f.bulkErr
	}
	for _, r := range results {
		f.inserted = append(f.inserted, r.AttemptID)
	}
	return nil
}

func (f *fakeStore) Insert(_ context.Context, r model.PracticeResultRecord) error {
	if f.failRows[r.AttemptID] {
		return errors.New("insert failed")
	}
	f.inserted = append(f.inserted, r.AttemptID)
	return nil
}

func newTestWorker(store ResultStore) (*ResultWorker, *[][]byte) {
	w := NewResultWorker(store, nil, zerolog.Nop())
	var requeued [][]byte
	w.requeue = func(_ context.Context, raw []byte) error {
		requeued = append(requeued, raw)
		return nil
	}
	return w, &requeued
}

func records(ids ...string) []model.PracticeResultRecord {
	out := make([]model.PracticeResultRecord, len(ids))
	for i, id := range ids {
		out[i] = model.PracticeResultRecord{AttemptID: id, SessionID: "s-" + id, Total: 10}
	}
	return out
}

func TestFlushBulk(t *testing.T) {
	store := &fakeStore{}
	w, requeued := newTestWorker(store)

	w.flushSafe(context.Background(), records("a", "b"))

	if store.bulkCalls != 1 || len(store.inserted) != 2 || len(*requeued) != 0 {
		t.Fatalf("bulk=%d inserted=%v requeued=%d", store.bulkCalls, store.inserted, len(*requeued))
	}
}

func TestFlushFallsBackAndRequeues(t *testing.T) {
	store := &fakeStore{bulkErr: errors.New("duplicate key"), failRows: map[string]bool{"b": true}}
	w, requeued := newTestWorker(store)

	w.flushSafe(context.Background(), records("a", "b", "c"))

	if len(store.inserted) != 2 || store.inserted[0] != "a" || store.inserted[1] != "c" {
		t.Fatalf("inserted = %v", store.inserted)
	}
	if len(*requeued) != 1 {
		t.Fatalf("requeued %d, want 1", len(*requeued))
	}
	var rec model.PracticeResultRecord
	if err := json.Unmarshal((*requeued)[0], &rec); err != nil || rec.AttemptID != "b" {
		t.Fatalf("requeued payload = %s (%v)", (*requeued)[0], err)
	}
}

func TestFlushEmptyBatch(t *testing.T) {
	store := &fakeStore{}
	w, _ := newTestWorker(store)
	w.flushSafe(context.Background(), nil)
	if store.bulkCalls != 0 {
		t.Fatal("empty batch should not hit the store")
	}
}

func TestDecode(t *testing.T) {
	w, _ := newTestWorker(&fakeStore{})
	queue := config.WorkerKey.PersistResultsQueue

	raw, _ := json.Marshal(model.PracticeResultRecord{AttemptID: "x", SessionID: "s", Accuracy: 75})
	if rec, ok := w.decode([]string{queue, string(raw)}); !ok || rec.Accuracy != 75 {
		t.Fatalf("decode valid = %+v, %v", rec, ok)
	}

	noID, _ := json.Marshal(model.PracticeResultRecord{SessionID: "s"})
	for name, item := range map[string][]string{
		"short reply":   {queue},
		"bad json":      {queue, "{"},
		"no attempt id": {queue, string(noID)},
	} {
		if _, ok := w.decode(item); ok {
			t.Errorf("%s: decode should fail", name)
		}
	}
}
