package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/JustinTDCT/cinevaultindex/internal/control"
)

// EventNotifier broadcasts job lifecycle and progress events to connected
// clients. Satisfied by internal/notifications.Hub.
type EventNotifier interface {
	Broadcast(event string, data interface{})
}

// SyncHandler runs Controller.sync for one Library and reports progress and
// lifecycle events through notifier, grounded on the host application's
// ScanHandler.ProcessTask shape (start/progress/complete/failed broadcasts
// around the underlying scan call).
type SyncHandler struct {
	controller *control.Controller
	notifier   EventNotifier
}

func NewSyncHandler(c *control.Controller, notifier EventNotifier) *SyncHandler {
	return &SyncHandler{controller: c, notifier: notifier}
}

func (h *SyncHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var p SyncLibraryPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return fmt.Errorf("unmarshal sync payload: %w", err)
	}

	slog.Info("syncing library", "library_id", p.LibraryID, "path", p.Path)
	if h.notifier != nil {
		h.notifier.Broadcast("job:start", map[string]string{"library_id": p.LibraryID})
	}

	var lastBroadcast time.Time
	onProgress := func(pr control.Progress) {
		if h.notifier == nil {
			return
		}
		now := time.Now()
		if now.Sub(lastBroadcast) < 500*time.Millisecond && pr.Inserted != pr.Total {
			return
		}
		lastBroadcast = now
		h.notifier.Broadcast("job:progress", map[string]interface{}{
			"library_id": p.LibraryID,
			"inserted":   pr.Inserted,
			"total":      pr.Total,
		})
	}

	inserted, err := h.controller.Sync(ctx, p.Path, onProgress)
	if err != nil {
		if h.notifier != nil {
			h.notifier.Broadcast("job:error", map[string]interface{}{
				"library_id": p.LibraryID,
				"error":      err.Error(),
			})
		}
		return fmt.Errorf("sync library %s: %w", p.LibraryID, err)
	}

	slog.Info("sync complete", "library_id", p.LibraryID, "inserted", inserted)
	if h.notifier != nil {
		h.notifier.Broadcast("job:complete", map[string]interface{}{
			"library_id": p.LibraryID,
			"inserted":   inserted,
		})
	}
	return nil
}
