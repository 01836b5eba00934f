package usecase

import "time"

const (
	// DefaultRebuildAccountTimeout bounds a single account's rebuild so one
	// slow account cannot stall the whole-fleet batch.
	DefaultRebuildAccountTimeout = 30 * time.Second

	// DefaultRebuildWorkers is the batch rebuild parallelism. Accounts are
	// independent once per-account serialization is enforced.
	DefaultRebuildWorkers = 4

	// DefaultBalanceCacheTTL is how long computed balance reports are cached.
	DefaultBalanceCacheTTL = 5 * time.Minute

	// accountPageSize is the page size used when iterating every account.
	accountPageSize = 500
)
