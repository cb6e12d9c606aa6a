package mailbox

import (
	"context"
	"time"

	imap "github.com/emersion/go-imap"

	"github.com/sageimap/goimap/connection"
	"github.com/sageimap/goimap/internal/ierr"
	"github.com/sageimap/goimap/messageset"
	"github.com/sageimap/goimap/model"
)

// AddFlag issues +FLAGS for set against the currently selected mailbox.
func (s *Service) AddFlag(ctx context.Context, set messageset.MessageSet, flags ...model.Flag) (model.OperationResult, error) {
	return s.store(ctx, set, model.FlagCommandAdd, flags)
}

// RemoveFlag issues -FLAGS.
func (s *Service) RemoveFlag(ctx context.Context, set messageset.MessageSet, flags ...model.Flag) (model.OperationResult, error) {
	return s.store(ctx, set, model.FlagCommandRemove, flags)
}

// SetFlags issues FLAGS, replacing the message's whole flag set.
func (s *Service) SetFlags(ctx context.Context, set messageset.MessageSet, flags ...model.Flag) (model.OperationResult, error) {
	return s.store(ctx, set, model.FlagCommandSet, flags)
}

// BulkAddFlags issues one +FLAGS STORE per flag in flags, continuing past
// individual failures, matching the original's bulk_add_flags: one
// FlagOperationResult per flag rather than a single aggregated STORE.
func (s *Service) BulkAddFlags(ctx context.Context, set messageset.MessageSet, flags ...model.Flag) []model.OperationResult {
	return s.bulkStore(ctx, set, model.FlagCommandAdd, flags)
}

// BulkRemoveFlags is BulkAddFlags' -FLAGS counterpart.
func (s *Service) BulkRemoveFlags(ctx context.Context, set messageset.MessageSet, flags ...model.Flag) []model.OperationResult {
	return s.bulkStore(ctx, set, model.FlagCommandRemove, flags)
}

func (s *Service) bulkStore(ctx context.Context, set messageset.MessageSet, cmd model.FlagCommand, flags []model.Flag) []model.OperationResult {
	results := make([]model.OperationResult, len(flags))
	for i, flag := range flags {
		result, _ := s.store(ctx, set, cmd, []model.Flag{flag})
		results[i] = result
	}
	return results
}

func (s *Service) store(ctx context.Context, set messageset.MessageSet, cmd model.FlagCommand, flags []model.Flag) (model.OperationResult, error) {
	start := time.Now()
	result := model.OperationResult{ID: newResultID(), OperationName: "Store", MessageCount: set.EstimatedCount()}

	if err := s.requireSelected(); err != nil {
		result.ErrorMessage = err.Error()
		result.ExecutionTime = time.Since(start)
		return result, err
	}
	seqSet, err := toSeqSet(set)
	if err != nil {
		result.ErrorMessage = err.Error()
		result.ExecutionTime = time.Since(start)
		return result, err
	}
	value := make([]interface{}, len(flags))
	for i, f := range flags {
		value[i] = string(f)
	}

	opName := "Store"
	err = s.track(ctx, opName, func() error {
		return s.conn.Do(ctx, opName, func(sess connection.Session) error {
			if set.IsUID() {
				return sess.UidStore(seqSet, imap.StoreItem(cmd), value, nil)
			}
			return sess.Store(seqSet, imap.StoreItem(cmd), value, nil)
		})
	})
	result.ExecutionTime = time.Since(start)
	if err != nil {
		wrapped := ierr.Operation("STORE failed", "", err)
		result.ErrorMessage = wrapped.Error()
		return result, wrapped
	}
	result.Success = true
	return result, nil
}
