package repository

import "context"

// ReceiptDedupRepository is the set of processed submission ids. Ids are
// never removed.
type ReceiptDedupRepository interface {
	// MarkSeen inserts id and reports whether this call inserted it. The
	// check and the insert are one atomic step.
	MarkSeen(ctx context.Context, submissionID string) (first bool, err error)
	Seen(ctx context.Context, submissionID string) (bool, error)
	Count(ctx context.Context) (int, error)
}
