package ingestion

import "errors"

var (
	// Connection errors - terminal for a sync attempt, no writes occur
	ErrShopUnreachable    = errors.New("ingestion: shop API unreachable")
	ErrShopAuthFailed     = errors.New("ingestion: shop credential rejected")
	ErrShopInvalidDomain  = errors.New("ingestion: shop domain invalid")
	ErrShopRateLimited    = errors.New("ingestion: shop API rate limited")
	ErrInvalidResponse    = errors.New("ingestion: invalid shop API response")
	ErrRequestFailed      = errors.New("ingestion: shop API request failed")

	// Per-record errors - contained within a batch
	ErrRecordMapping = errors.New("ingestion: record failed mapping")
	ErrStoreWrite    = errors.New("ingestion: store write failed")

	// Per-tenant errors
	ErrTenantNotFound = errors.New("ingestion: tenant not found")
	ErrSyncInProgress = errors.New("ingestion: sync already in progress for tenant")
)

// IsConnectionError reports whether err belongs to the connection error
// class: the vendor API was unreachable, rejected the credential, or the
// domain was invalid. Connection errors abort a sync before any write.
func IsConnectionError(err error) bool {
	return errors.Is(err, ErrShopUnreachable) ||
		errors.Is(err, ErrShopAuthFailed) ||
		errors.Is(err, ErrShopInvalidDomain) ||
		errors.Is(err, ErrShopRateLimited) ||
		errors.Is(err, ErrRequestFailed)
}
