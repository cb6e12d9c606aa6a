package mailbox

import (
	"context"
	"time"

	"github.com/sageimap/goimap/messageset"
	"github.com/sageimap/goimap/model"
	"github.com/sageimap/goimap/searchcriteria"
)

// MovePair is one (set, destination) job for BulkMove.
type MovePair struct {
	Set  messageset.MessageSet
	Dest string
}

// BulkMove runs Move for every pair, continuing past individual failures;
// the aggregate BulkResult reports how many of the pairs (not messages)
// succeeded.
func (s *Service) BulkMove(ctx context.Context, pairs []MovePair) (model.BulkResult, error) {
	start := time.Now()
	result := model.BulkResult{ID: newResultID(), TotalMessages: len(pairs), BatchSize: len(pairs), BatchesProcessed: 1}
	for _, p := range pairs {
		if _, err := s.Move(ctx, p.Set, p.Dest); err != nil {
			result.FailedMessages++
			result.Errors = append(result.Errors, err.Error())
			continue
		}
		result.SuccessfulMessages++
	}
	result.ExecutionTime = time.Since(start)
	return result, nil
}

// DeletePair is one (set, trashMailbox) job for BulkDelete.
type DeletePair struct {
	Set          messageset.MessageSet
	TrashMailbox string
}

// BulkDelete runs Delete for every pair, continuing past individual
// failures; the aggregate BulkResult reports how many of the pairs (not
// messages) succeeded.
func (s *Service) BulkDelete(ctx context.Context, pairs []DeletePair) (model.BulkResult, error) {
	start := time.Now()
	result := model.BulkResult{ID: newResultID(), TotalMessages: len(pairs), BatchSize: len(pairs), BatchesProcessed: 1}
	for _, p := range pairs {
		if _, err := s.Delete(ctx, p.Set, p.TrashMailbox); err != nil {
			result.FailedMessages++
			result.Errors = append(result.Errors, err.Error())
			continue
		}
		result.SuccessfulMessages++
	}
	result.ExecutionTime = time.Since(start)
	return result, nil
}

// Processor is called once per batch SearchAndProcess fetches.
type Processor func(ctx context.Context, batch []model.EmailMessage) error

// SearchAndProcess runs criteria against the current mailbox, then walks the
// matches batchSize-at-a-time (via messageset.IterBatches), fetching and
// handing each batch to processor. A processor error for one batch is
// recorded and does not stop the remaining batches.
func (s *Service) SearchAndProcess(ctx context.Context, criteria searchcriteria.Criteria, batchSize int, processor Processor) (model.BulkResult, error) {
	start := time.Now()
	set, err := s.search(ctx, criteria, false)
	if err != nil {
		return model.BulkResult{}, err
	}
	if set.IsEmpty() {
		return model.BulkResult{ID: newResultID(), ExecutionTime: time.Since(start)}, nil
	}

	it, err := set.IterBatches(batchSize)
	if err != nil {
		return model.BulkResult{}, err
	}
	result := model.BulkResult{ID: newResultID(), TotalMessages: set.EstimatedCount(), BatchSize: batchSize}
	if w := it.Warning(); w != "" {
		result.Errors = append(result.Errors, w)
	}

	for {
		select {
		case <-ctx.Done():
			result.Errors = append(result.Errors, "cancelled: "+ctx.Err().Error())
			result.ExecutionTime = time.Since(start)
			return result, ctx.Err()
		default:
		}

		batch, ok := it.Next()
		if !ok {
			break
		}
		result.BatchesProcessed++
		msgs, err := s.Fetch(ctx, batch, nil)
		if err != nil {
			result.FailedMessages += batch.EstimatedCount()
			result.Errors = append(result.Errors, err.Error())
			continue
		}
		if err := processor(ctx, msgs); err != nil {
			result.FailedMessages += len(msgs)
			result.Errors = append(result.Errors, err.Error())
			continue
		}
		result.SuccessfulMessages += len(msgs)
	}

	result.ExecutionTime = time.Since(start)
	return result, nil
}

// MailboxStatistics aggregates the five STATUS data items with this
// Service's running operation Statistics, for a single at-a-glance report.
type MailboxStatistics struct {
	Mailbox    string
	Messages   uint32
	Recent     uint32
	UIDNext    uint32
	UIDValidity uint32
	Unseen     uint32
	Operations Statistics
}

// Stats gathers MailboxStatistics for mailboxName without disturbing the
// current selection (STATUS does not require SELECT).
func (s *Service) Stats(ctx context.Context, mailboxName string) (MailboxStatistics, error) {
	status, err := s.Status(ctx, mailboxName, StatusMessages, StatusRecent, StatusUIDNext, StatusUIDValidity, StatusUnseen)
	if err != nil {
		return MailboxStatistics{}, err
	}
	return MailboxStatistics{
		Mailbox:     mailboxName,
		Messages:    status.Messages,
		Recent:      status.Recent,
		UIDNext:     status.UidNext,
		UIDValidity: status.UidValidity,
		Unseen:      status.Unseen,
		Operations:  s.Statistics(),
	}, nil
}
