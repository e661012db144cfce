// Package errs contains sentinel errors used across layers for stable error mapping.
package errs

import "errors"

// Common sentinels across client/service layers.
var (
	// ErrNotFound indicates the asset is unknown to both the local cache and the ledger.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates an asset id is already present in the cache.
	ErrAlreadyExists = errors.New("already exists")

	// ErrMalformedTag indicates an asset id could not be extracted from a tag payload.
	ErrMalformedTag = errors.New("malformed tag payload")

	// ErrLedgerTimeout indicates a ledger call exceeded its deadline.
	ErrLedgerTimeout = errors.New("ledger timeout")

	// ErrLedgerRejected indicates the ledger answered with success=false.
	ErrLedgerRejected = errors.New("ledger rejected request")

	// ErrNotOwner indicates the transfer precondition failed: the claimed
	// sender does not own the asset according to the ledger.
	ErrNotOwner = errors.New("sender is not the owner")

	// ErrNotAuthorized indicates the transfer authorization window is not
	// currently open (missing or expired tap/code verification).
	ErrNotAuthorized = errors.New("transfer not authorized")

	// ErrCodeMismatch indicates a confirmation code did not match the issued one.
	ErrCodeMismatch = errors.New("confirmation code mismatch")

	// ErrSyncFailed indicates a best-effort local cache write failed. Non-fatal.
	ErrSyncFailed = errors.New("cache sync failed")

	// ErrIntegrity indicates the ledger reported integrity_ok=false. Treated as
	// an error rather than a negative result because it is alarm-worthy.
	ErrIntegrity = errors.New("ledger integrity check failed")
)
