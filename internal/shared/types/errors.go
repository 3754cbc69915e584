package types

import "errors"

var (
	// ErrTenantNotFound indicates the tenant record does not exist.
	ErrTenantNotFound = errors.New("tenant not found")

	// ErrAccessDenied indicates the credential grant for the tenant's account
	// was refused, expired, or could not be requested. Callers wrap it with
	// the underlying provider error so the refusal stays auditable.
	ErrAccessDenied = errors.New("access to tenant account denied")

	// ErrPersistenceFailure indicates the execution record could not be
	// written after the idempotent retries were exhausted.
	ErrPersistenceFailure = errors.New("failed to persist execution record")

	// ErrPartialCategoryFailure indicates a category validator failed as a
	// whole instead of returning results; the orchestrator degrades it into
	// low-confidence indicator results rather than failing the tenant run.
	ErrPartialCategoryFailure = errors.New("category validator failed")

	// ErrRunIncomplete indicates the run was cancelled before aggregation
	// finished; no execution record is written for an incomplete run.
	ErrRunIncomplete = errors.New("validation run cancelled before completion")

	// ErrNoTenantSelected indicates the CLI was invoked without a tenant id
	// and without the fleet-wide flag.
	ErrNoTenantSelected = errors.New("either --tenant-id or --all-tenants is required")
)
