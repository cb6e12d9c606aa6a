package model

import "time"

// OperationResult is returned by every single mailbox operation.
type OperationResult struct {
	ID               string // correlation id, uuid-generated
	Success          bool
	OperationName    string
	MessageCount     int
	AffectedMessages []string
	ExecutionTime    time.Duration
	ErrorMessage     string
	Warnings         []string
	Metadata         map[string]any
}

// BulkResult is returned by batched drivers; SuccessRate is derived, not
// stored, so it can never drift from the counters it's computed from.
type BulkResult struct {
	ID                string
	TotalMessages     int
	SuccessfulMessages int
	FailedMessages    int
	BatchSize         int
	BatchesProcessed  int
	Errors            []string
	ExecutionTime     time.Duration
}

// SuccessRate is successful/total, or 0 when total is 0.
func (b BulkResult) SuccessRate() float64 {
	if b.TotalMessages == 0 {
		return 0
	}
	return float64(b.SuccessfulMessages) / float64(b.TotalMessages)
}
