// Package jobs runs background maintenance. The audit event log is
// append-only and grows with every edit; the worker prunes old rows while
// keeping each paragraph's most recent edit_paragraph event, which the undo
// flow consumes.
package jobs

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type Worker struct {
	ID        string
	DB        *gorm.DB
	Log       *logrus.Logger
	Retention time.Duration // zero means 90 days
	Interval  time.Duration // zero means hourly
}

func (w *Worker) retention() time.Duration {
	if w.Retention > 0 {
		return w.Retention
	}
	return 90 * 24 * time.Hour
}

func (w *Worker) interval() time.Duration {
	if w.Interval > 0 {
		return w.Interval
	}
	return time.Hour
}

func (w *Worker) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := w.PruneEvents(ctx); err != nil {
				w.Log.WithError(err).WithField("worker", w.ID).Warn("event prune failed")
			}
		}
	}
}

// PruneEvents deletes audit events older than the retention window, except
// the newest edit_paragraph event per paragraph — deleting that would break
// undo for paragraphs that have not been touched recently.
func (w *Worker) PruneEvents(ctx context.Context) error {
	cutoff := time.Now().Add(-w.retention())
	res := w.DB.WithContext(ctx).Exec(`
delete from events
where created_at < ?
  and id not in (
    select max(id)
    from events
    where action = 'edit_paragraph' and entity_type = 'paragraph'
    group by entity_id
  )
`, cutoff)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		w.Log.WithFields(logrus.Fields{
			"worker":  w.ID,
			"deleted": res.RowsAffected,
		}).Info("pruned audit events")
	}
	return nil
}
