package ledger

import "time"

// Commit retry policy for transient storage conflicts.
const (
	maxCommitRetries = 3
	retryBackoff     = 10 * time.Millisecond
)

// History pagination bounds.
const (
	DefaultHistoryLimit = 50
	MaxHistoryLimit     = 100
)
