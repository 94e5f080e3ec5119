// Package reconcile keeps stored responses in step with change
// notifications about the external records they mirror.
//
// Notifications are delivered at most once and in no particular order, so
// every transition is idempotent and a missing response is not an error:
// the record may belong to an untracked table, or its response may not be
// committed yet.
package reconcile

import (
	"context"
	"time"

	"github.com/mbolis/quick-form/log"
	"github.com/mbolis/quick-form/model"
)

type Store interface {
	FormsByTable(ctx context.Context, baseID, tableID string) ([]model.Form, error)
	FindResponseByRecord(ctx context.Context, formID, recordID string) (r model.Response, found bool, err error)
	UpdateResponseSync(ctx context.Context, r model.Response) error
}

type Outcome int

const (
	// Applied means the stored response changed.
	Applied Outcome = iota
	// Unchanged means the response already reflected the notification.
	Unchanged
	// NotFound means no response mirrors the record.
	NotFound
)

func (o Outcome) String() string {
	switch o {
	case Applied:
		return "applied"
	case Unchanged:
		return "unchanged"
	case NotFound:
		return "not_found"
	}
	return "unknown"
}

type Reconciler struct {
	store Store
	locks keyedMutex
	now   func() time.Time
}

func New(store Store) *Reconciler {
	return &Reconciler{
		store: store,
		locks: keyedMutex{locks: map[string]*refLock{}},
		now:   time.Now,
	}
}

// Touch moves the response's UpdatedAt forward to ts. Older or repeated
// timestamps leave it as is.
func (rc *Reconciler) Touch(ctx context.Context, formID, recordID string, ts time.Time) (Outcome, error) {
	unlock := rc.locks.Lock(formID + "/" + recordID)
	defer unlock()

	r, found, err := rc.store.FindResponseByRecord(ctx, formID, recordID)
	if err != nil {
		return 0, err
	}
	if !found {
		return NotFound, nil
	}

	if !ts.After(r.UpdatedAt) {
		return Unchanged, nil
	}
	r.UpdatedAt = ts
	if err := rc.store.UpdateResponseSync(ctx, r); err != nil {
		return 0, err
	}
	return Applied, nil
}

// MarkDeleted flags the response as deleted in the external system.
func (rc *Reconciler) MarkDeleted(ctx context.Context, formID, recordID string) (Outcome, error) {
	unlock := rc.locks.Lock(formID + "/" + recordID)
	defer unlock()

	r, found, err := rc.store.FindResponseByRecord(ctx, formID, recordID)
	if err != nil {
		return 0, err
	}
	if !found {
		return NotFound, nil
	}

	if r.DeletedInExternal {
		return Unchanged, nil
	}
	r.DeletedInExternal = true
	if err := rc.store.UpdateResponseSync(ctx, r); err != nil {
		return 0, err
	}
	return Applied, nil
}

type Summary struct {
	UnmatchedTables int `json:"unmatchedTables"`
	Touched         int `json:"touched"`
	Deleted         int `json:"deleted"`
	Unchanged       int `json:"unchanged"`
	NotFound        int `json:"notFound"`
	Failed          int `json:"failed"`
}

// Apply reconciles a batch notification. Changes are applied only to
// responses of the forms bound to each changed table. Failing entries are
// logged and counted; they never stop the rest of the batch.
func (rc *Reconciler) Apply(ctx context.Context, n model.ChangeNotification) (s Summary) {
	ts := n.Timestamp
	if ts.IsZero() {
		ts = rc.now()
	}

	for _, table := range n.Tables {
		logger := log.WithFields(log.Fields{"base": n.BaseID, "table": table.TableID})

		forms, err := rc.store.FormsByTable(ctx, n.BaseID, table.TableID)
		if err != nil {
			logger.Errorf("reconcile.forms_by_table: %s", err)
			s.Failed += len(table.ChangedRecordIDs) + len(table.DestroyedRecordIDs)
			continue
		}
		if len(forms) == 0 {
			logger.Debug("reconcile: no form bound to table")
			s.UnmatchedTables++
			continue
		}

		for _, form := range forms {
			for _, id := range table.ChangedRecordIDs {
				outcome, err := rc.Touch(ctx, form.ID, id, ts)
				s.count(opTouch, form.ID, id, outcome, err)
			}
			for _, id := range table.DestroyedRecordIDs {
				outcome, err := rc.MarkDeleted(ctx, form.ID, id)
				s.count(opMarkDeleted, form.ID, id, outcome, err)
			}
		}
	}

	return
}

const (
	opTouch       = "touch"
	opMarkDeleted = "mark_deleted"
)

func (s *Summary) count(op, formID, recordID string, outcome Outcome, err error) {
	logger := log.WithFields(log.Fields{"op": op, "form": formID, "record": recordID})
	if err != nil {
		logger.Errorf("reconcile.%s: %s", op, err)
		s.Failed++
		operations.WithLabelValues(op, "failed").Inc()
		return
	}

	switch outcome {
	case Applied:
		if op == opTouch {
			s.Touched++
		} else {
			s.Deleted++
		}
	case Unchanged:
		s.Unchanged++
	case NotFound:
		logger.Debug("reconcile: target not found")
		s.NotFound++
	}
	operations.WithLabelValues(op, outcome.String()).Inc()
}
