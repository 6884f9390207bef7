package syncx

import (
	"context"

	"github.com/dkazakov/fieldsale/internal/client/models"
	"github.com/dkazakov/fieldsale/internal/logging"
)

// Pusher resolves a single pending id against the backend: create, update,
// or delete depending on the record's state. A nil return means the id is
// fully settled and may leave the pending set; that includes the vacuous case
// where the record no longer exists locally.
type Pusher interface {
	Push(ctx context.Context, id models.ID) error
}

// Worker walks one batch of pending ids sequentially. Each id is pushed and,
// on success, removed from the tracker immediately, so progress made before a
// mid-batch failure is never repeated. Any failed id downgrades the batch
// outcome to OutcomeRetry while the rest of the batch still runs.
type Worker struct {
	name    string
	pusher  Pusher
	tracker *Tracker
	log     logging.Logger
}

// NewWorker builds the worker and binds it to the tracker as its runner.
func NewWorker(name string, pusher Pusher, tracker *Tracker, log logging.Logger) *Worker {
	w := &Worker{name: name, pusher: pusher, tracker: tracker, log: log}
	tracker.Bind(w)
	return w
}

// Run implements Runner.
func (w *Worker) Run(ctx context.Context, ids []models.ID) Outcome {
	failed := 0
	for _, id := range ids {
		if ctx.Err() != nil {
			w.log.Info(ctx, "sync batch cancelled", "worker", w.name)
			return OutcomeRetry
		}
		if err := w.pusher.Push(ctx, id); err != nil {
			failed++
			w.log.Warn(ctx, "push failed", "worker", w.name, "id", id, "err", err)
			continue
		}
		if err := w.tracker.Remove(ctx, id); err != nil {
			w.log.Warn(ctx, "clearing pending flag failed", "worker", w.name, "id", id, "err", err)
		}
	}
	if failed > 0 {
		w.log.Info(ctx, "sync batch incomplete", "worker", w.name, "failed", failed, "total", len(ids))
		return OutcomeRetry
	}
	return OutcomeSuccess
}
