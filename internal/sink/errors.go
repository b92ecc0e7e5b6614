package sink

import "github.com/cockroachdb/errors"

// Sentinel errors classifying write failures for the consumer's retry logic.
var (
	// ErrRejected marks a malformed document. Retrying can never succeed;
	// the message must be acknowledged, counted as an error and dropped.
	ErrRejected = errors.New("sink: document rejected")

	// ErrUnavailable marks a transient transport or storage failure. The
	// message must not be acknowledged so the broker redelivers it.
	ErrUnavailable = errors.New("sink: storage unavailable")

	// ErrNotFound is returned by GetByID when no document has the id.
	ErrNotFound = errors.New("sink: claim not found")
)
