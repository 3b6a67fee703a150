package registration

import "errors"

var (
	// ErrDuplicateRegistrant means a member with the same phone (or email)
	// is already registered. Registration never creates a second record.
	ErrDuplicateRegistrant = errors.New("registrant already exists")

	// ErrAllocationExhausted means the retry budget ran out while trying to
	// claim a membership id. Only possible under a misconfigured counter
	// racing historical imports.
	ErrAllocationExhausted = errors.New("membership id allocation retries exhausted")

	// ErrAccountProvisioningFailed means the member record was written but
	// the login account could not be created. The member stays in the
	// pending_account state and operators complete provisioning later.
	ErrAccountProvisioningFailed = errors.New("account provisioning failed")

	// ErrAtomicUnsupported is returned by an Atomic runner whose backing
	// deployment cannot do multi-document transactions. The orchestrator
	// falls back to the compensating write order.
	ErrAtomicUnsupported = errors.New("atomic execution not supported")
)
