package mailbox

import (
	"context"
	"time"

	"github.com/sageimap/goimap/connection"
	"github.com/sageimap/goimap/internal/ierr"
	"github.com/sageimap/goimap/messageset"
	"github.com/sageimap/goimap/model"
)

// Copy duplicates set into dest, leaving the originals untouched.
func (s *Service) Copy(ctx context.Context, set messageset.MessageSet, dest string) (model.OperationResult, error) {
	return s.copy(ctx, set, dest, false)
}

// UidCopy is Copy's UID-addressed counterpart.
func (s *Service) UidCopy(ctx context.Context, set messageset.MessageSet, dest string) (model.OperationResult, error) {
	return s.copy(ctx, set, dest, true)
}

func (s *Service) copy(ctx context.Context, set messageset.MessageSet, dest string, uid bool) (model.OperationResult, error) {
	start := time.Now()
	if err := s.requireSelected(); err != nil {
		return model.OperationResult{}, err
	}
	if err := validateMailboxName(dest); err != nil {
		return model.OperationResult{}, err
	}
	seqSet, err := toSeqSet(set)
	if err != nil {
		return model.OperationResult{}, err
	}

	opName := "Copy"
	err = s.track(ctx, opName, func() error {
		return s.conn.Do(ctx, opName, func(sess connection.Session) error {
			if uid {
				return sess.UidCopy(seqSet, dest)
			}
			return sess.Copy(seqSet, dest)
		})
	})
	result := model.OperationResult{
		ID:            newResultID(),
		Success:       err == nil,
		OperationName: opName,
		MessageCount:  set.EstimatedCount(),
		ExecutionTime: time.Since(start),
	}
	if err != nil {
		// COPY against a non-existent destination fails with NO [TRYCREATE];
		// spec.md §7 leaves creating the destination to the caller rather
		// than having Copy silently CREATE it, so the server's error is
		// surfaced as-is.
		result.ErrorMessage = err.Error()
		return result, ierr.Operation("COPY failed", "", err)
	}
	return result, nil
}

// Move copies set to dest, marks the originals \Deleted, expunges them, and
// checkpoints the mailbox, per spec.md §4.5's composite-operation
// definition. A failure after the copy but before the checkpoint leaves a
// Warning on the result rather than rolling the copy back — IMAP has no
// multi-command transactions to roll back with.
func (s *Service) Move(ctx context.Context, set messageset.MessageSet, dest string) (model.OperationResult, error) {
	return s.move(ctx, set, dest, false)
}

// UidMove is Move's UID-addressed counterpart.
func (s *Service) UidMove(ctx context.Context, set messageset.MessageSet, dest string) (model.OperationResult, error) {
	return s.move(ctx, set, dest, true)
}

func (s *Service) move(ctx context.Context, set messageset.MessageSet, dest string, uid bool) (model.OperationResult, error) {
	start := time.Now()
	if set.IsUID() != uid {
		return model.OperationResult{}, ierr.Configuration("move addressing does not match the message set's UID/sequence-number type")
	}
	result, err := s.copy(ctx, set, dest, uid)
	if err != nil {
		return result, err
	}

	if _, markErr := s.AddFlag(ctx, set, model.FlagDeleted); markErr != nil {
		result.Success = false
		result.Warnings = append(result.Warnings, "copy succeeded but marking originals \\Deleted failed: "+markErr.Error())
		result.ExecutionTime = time.Since(start)
		return result, ierr.Operation("MOVE failed while marking originals deleted", "", markErr)
	}

	if err := s.Expunge(ctx); err != nil {
		result.Warnings = append(result.Warnings, "originals marked deleted but EXPUNGE failed: "+err.Error())
	}
	if err := s.Check(ctx); err != nil {
		result.Warnings = append(result.Warnings, "CHECK after move failed: "+err.Error())
	}
	result.OperationName = "Move"
	result.ExecutionTime = time.Since(start)
	return result, nil
}

// Trash marks set \Deleted and moves it to trashMailbox via the move
// composite, per spec.md §4.5. The message survives in trashMailbox; it is
// only the source copy that is marked \Deleted and expunged.
func (s *Service) Trash(ctx context.Context, set messageset.MessageSet, trashMailbox string) (model.OperationResult, error) {
	result, err := s.Move(ctx, set, trashMailbox)
	result.OperationName = "Trash"
	return result, err
}

// Delete trashes set into trashMailbox, then issues an additional EXPUNGE
// and CHECK, matching the original's delete(): trash() then expunge() then
// check(), rather than marking \Deleted in the current mailbox directly —
// messages are recoverable from trashMailbox, not permanently destroyed.
// Idempotent with respect to already-\Deleted messages.
func (s *Service) Delete(ctx context.Context, set messageset.MessageSet, trashMailbox string) (model.OperationResult, error) {
	start := time.Now()
	result, err := s.Trash(ctx, set, trashMailbox)
	result.OperationName = "Delete"
	if err != nil {
		result.ExecutionTime = time.Since(start)
		return result, err
	}
	if err := s.Expunge(ctx); err != nil {
		result.Warnings = append(result.Warnings, "trashed but EXPUNGE failed: "+err.Error())
	}
	if err := s.Check(ctx); err != nil {
		result.Warnings = append(result.Warnings, "CHECK after delete failed: "+err.Error())
	}
	result.ExecutionTime = time.Since(start)
	return result, nil
}

// Restore selects trashMailbox, moves set back into safeMailbox, re-selects
// safeMailbox, and checkpoints. There is no separate \Deleted-clearing step:
// move's COPY runs before it marks the trash-side originals \Deleted, so the
// copies landed in safeMailbox never carry that flag to begin with.
func (s *Service) Restore(ctx context.Context, set messageset.MessageSet, trashMailbox, safeMailbox string) (model.OperationResult, error) {
	start := time.Now()
	if _, err := s.Select(ctx, trashMailbox, false); err != nil {
		return model.OperationResult{}, ierr.Operation("RESTORE failed to select trash mailbox", "", err)
	}

	result, err := s.move(ctx, set, safeMailbox, set.IsUID())
	result.OperationName = "Restore"
	if err != nil {
		result.ExecutionTime = time.Since(start)
		return result, err
	}

	// move's COPY step runs before it marks the trash-side originals
	// \Deleted, so the copies landed in safeMailbox without that flag —
	// there is nothing left to clear here. Re-selecting safeMailbox just
	// leaves the Service's current-selection state where the caller expects
	// it after a restore.
	if _, err := s.Select(ctx, safeMailbox, false); err != nil {
		result.Warnings = append(result.Warnings, "moved but failed to select the restored mailbox: "+err.Error())
		result.ExecutionTime = time.Since(start)
		return result, nil
	}

	if err := s.Check(ctx); err != nil {
		result.Warnings = append(result.Warnings, "CHECK after restore failed: "+err.Error())
	}
	result.ExecutionTime = time.Since(start)
	return result, nil
}
