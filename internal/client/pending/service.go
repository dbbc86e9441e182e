package pending

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/vitalog/vitalog/internal/client/storage"
	"github.com/vitalog/vitalog/internal/models"
)

// DefaultGraceWindow is how long a deleted record stays recoverable before
// the deletion is confirmed against the server.
const DefaultGraceWindow = 3 * time.Second

// confirmTimeout bounds the remote call made after the grace window; the
// timer goroutine has no caller context to inherit.
const confirmTimeout = 10 * time.Second

// ErrNothingToUndo is returned when no deletion is inside its grace window.
var ErrNothingToUndo = errors.New("no pending deletion to undo")

// RemoteDeleter is the slice of the request executor the service needs.
type RemoteDeleter interface {
	DeleteRecord(ctx context.Context, record *models.Record) error
}

// deleteState tracks the lifecycle of one soft deletion. Transitions are
// one-way: active is the only state a deletion can leave.
type deleteState int

const (
	stateActive deleteState = iota
	stateUndone
	stateConfirmed
	stateSuperseded
)

type pendingDelete struct {
	record *models.Record
	timer  *time.Timer
	state  deleteState
}

// Service implements optimistic deletion. A record is hidden immediately,
// kept recoverable for the grace window, and only then deleted remotely and
// removed from local storage. At most one deletion is undoable at a time;
// a newer deletion supersedes the previous one, whose record simply stays
// hidden until a later confirmation or sync pass resolves it.
type Service struct {
	records storage.RecordStorage
	remote  RemoteDeleter
	logger  *slog.Logger
	grace   time.Duration

	mu      sync.Mutex
	current *pendingDelete
}

func NewService(records storage.RecordStorage, remote RemoteDeleter, logger *slog.Logger) *Service {
	return &Service{
		records: records,
		remote:  remote,
		logger:  logger,
		grace:   DefaultGraceWindow,
	}
}

// SoftDelete hides the record and starts its grace window. If another
// deletion is still inside its window, that one is superseded: its timer is
// cancelled, no remote call is made for it, and its record stays hidden.
func (s *Service) SoftDelete(ctx context.Context, record *models.Record) error {
	record.PendingDeletion = true
	if err := s.records.SaveRecord(ctx, record); err != nil {
		return fmt.Errorf("failed to hide record: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current != nil && s.current.state == stateActive {
		s.current.timer.Stop()
		s.current.state = stateSuperseded
		s.logger.Debug("superseded pending deletion", "record_id", s.current.record.ID)
	}

	pd := &pendingDelete{record: record, state: stateActive}
	pd.timer = time.AfterFunc(s.grace, func() { s.confirm(pd) })
	s.current = pd

	s.logger.Info("record hidden, deletion pending",
		"record_id", record.ID,
		"grace", s.grace)
	return nil
}

// Undo cancels the deletion currently inside its grace window and makes the
// record visible again. Superseded deletions cannot be undone.
func (s *Service) Undo(ctx context.Context) (*models.Record, error) {
	s.mu.Lock()
	pd := s.current
	if pd == nil || pd.state != stateActive {
		s.mu.Unlock()
		return nil, ErrNothingToUndo
	}
	pd.timer.Stop()
	pd.state = stateUndone
	s.mu.Unlock()

	pd.record.PendingDeletion = false
	if err := s.records.SaveRecord(ctx, pd.record); err != nil {
		return nil, fmt.Errorf("failed to restore record: %w", err)
	}

	s.logger.Info("deletion undone", "record_id", pd.record.ID)
	return pd.record, nil
}

// confirm runs when the grace window elapses. The record is deleted on the
// server first (when the server knows it at all), then removed locally. A
// failed remote delete is logged and the record is still removed locally;
// it is never resurrected into the visible list.
func (s *Service) confirm(pd *pendingDelete) {
	s.mu.Lock()
	if pd.state != stateActive {
		s.mu.Unlock()
		return
	}
	pd.state = stateConfirmed
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), confirmTimeout)
	defer cancel()

	if pd.record.Synced {
		if err := s.remote.DeleteRecord(ctx, pd.record); err != nil {
			s.logger.Warn("remote delete failed, removing locally anyway",
				"record_id", pd.record.ID,
				"error", err)
		}
	}

	if err := s.records.DeleteRecord(ctx, pd.record.ID); err != nil {
		s.logger.Error("failed to remove record locally",
			"record_id", pd.record.ID,
			"error", err)
		return
	}

	s.logger.Info("deletion confirmed", "record_id", pd.record.ID)
}
