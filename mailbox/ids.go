package mailbox

import "github.com/google/uuid"

// newResultID mints the correlation id OperationResult/BulkResult carry.
// Pool handles use a short nanoid (generated in pool.Pool.Return); results
// use a uuid since they're the identifiers most
// likely to be logged, compared, and correlated across process boundaries.
func newResultID() string {
	return uuid.NewString()
}
