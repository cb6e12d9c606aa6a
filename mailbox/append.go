package mailbox

import (
	"context"
	"time"

	imap "github.com/emersion/go-imap"

	"github.com/sageimap/goimap/connection"
	"github.com/sageimap/goimap/internal/ierr"
	"github.com/sageimap/goimap/model"
)

// defaultUploadBatchSize bounds how many .eml payloads UploadEml appends
// per mailbox Service before yielding, matching spec.md §4.5's bulk-driver
// default batch size.
const defaultUploadBatchSize = 100

// Append uploads a single raw RFC 5322 message into mailboxName with the
// given flags and internal date.
func (s *Service) Append(ctx context.Context, mailboxName string, flags []model.Flag, when time.Time, raw []byte) (model.OperationResult, error) {
	start := time.Now()
	if err := validateMailboxName(mailboxName); err != nil {
		return model.OperationResult{}, err
	}
	if len(raw) == 0 {
		return model.OperationResult{}, ierr.Configuration("append requires a non-empty message")
	}
	if when.IsZero() {
		when = time.Now()
	}

	flagStrs := make([]string, len(flags))
	for i, f := range flags {
		flagStrs[i] = string(f)
	}

	opName := "Append"
	err := s.track(ctx, opName, func() error {
		return s.conn.Do(ctx, opName, func(sess connection.Session) error {
			return sess.Append(mailboxName, flagStrs, when, imap.NewLiteral(raw))
		})
	})
	result := model.OperationResult{
		ID:            newResultID(),
		Success:       err == nil,
		OperationName: opName,
		MessageCount:  1,
		ExecutionTime: time.Since(start),
	}
	if err != nil {
		result.ErrorMessage = err.Error()
		return result, ierr.Operation("APPEND failed", "", err)
	}
	return result, nil
}

// UploadEml appends a batch of raw .eml payloads into mailboxName, flags
// applied uniformly, batchSize-many at a time (<=0 uses the default). A
// per-message failure is recorded and skipped rather than aborting the
// whole batch, matching the bulk drivers' partial-success contract.
func (s *Service) UploadEml(ctx context.Context, mailboxName string, flags []model.Flag, raws [][]byte, batchSize int) (model.BulkResult, error) {
	start := time.Now()
	if batchSize <= 0 {
		batchSize = defaultUploadBatchSize
	}

	result := model.BulkResult{ID: newResultID(), TotalMessages: len(raws), BatchSize: batchSize}
	for i := 0; i < len(raws); i += batchSize {
		select {
		case <-ctx.Done():
			result.Errors = append(result.Errors, "cancelled: "+ctx.Err().Error())
			result.ExecutionTime = time.Since(start)
			return result, ctx.Err()
		default:
		}

		end := i + batchSize
		if end > len(raws) {
			end = len(raws)
		}
		result.BatchesProcessed++
		for _, raw := range raws[i:end] {
			select {
			case <-ctx.Done():
				result.Errors = append(result.Errors, "cancelled: "+ctx.Err().Error())
				result.ExecutionTime = time.Since(start)
				return result, ctx.Err()
			default:
			}

			if _, err := s.Append(ctx, mailboxName, flags, time.Time{}, raw); err != nil {
				result.FailedMessages++
				result.Errors = append(result.Errors, err.Error())
				continue
			}
			result.SuccessfulMessages++
		}
	}
	result.ExecutionTime = time.Since(start)
	return result, nil
}
