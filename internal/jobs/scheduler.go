package jobs

import (
	"log/slog"

	"github.com/hibiken/asynq"
	"github.com/robfig/cron/v3"
)

// Library is the minimal shape the scheduler needs from a configured scan
// root (SPEC_FULL.md §3's ambient Library entity).
type Library struct {
	ID   string
	Path string
}

// LibraryLister supplies the set of enabled libraries to schedule.
type LibraryLister interface {
	EnabledLibraries() ([]Library, error)
}

// Scheduler enqueues one TaskSyncLibrary job per enabled Library on a cron
// schedule. Grounded on robfig/cron's standard AddFunc usage; the host
// application uses the same library for its own periodic jobs.
type Scheduler struct {
	queue *Queue
	cron  *cron.Cron
}

func NewScheduler(queue *Queue) *Scheduler {
	return &Scheduler{queue: queue, cron: cron.New()}
}

// Start registers expr (a standard 5-field cron expression) to enqueue a
// sync job for every enabled library each time it fires, then starts the
// cron runner. An empty expr disables scheduling entirely.
func (s *Scheduler) Start(expr string, lister LibraryLister) error {
	if expr == "" {
		return nil
	}
	_, err := s.cron.AddFunc(expr, func() {
		libraries, err := lister.EnabledLibraries()
		if err != nil {
			slog.Error("scheduler failed to list libraries", "error", err)
			return
		}
		for _, lib := range libraries {
			uniqueID := "sync:" + lib.ID
			if _, err := s.queue.EnqueueUnique(TaskSyncLibrary, SyncLibraryPayload{LibraryID: lib.ID, Path: lib.Path}, uniqueID,
				asynq.MaxRetry(1)); err != nil {
				slog.Error("scheduler failed to enqueue sync", "library_id", lib.ID, "error", err)
			}
		}
	})
	if err != nil {
		return err
	}
	s.cron.Start()
	return nil
}

func (s *Scheduler) Stop() {
	s.cron.Stop()
}
