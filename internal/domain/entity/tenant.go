package entity

import "fmt"

// TenantKind identifies whether a tenant is the provider's own account or a
// customer account reached through cross-account delegation.
type TenantKind string

const (
	TenantKindInternal TenantKind = "internal"
	TenantKindExternal TenantKind = "external_customer"
)

// AccessMode defines how a session for the tenant's account is obtained.
type AccessMode string

const (
	AccessModeNative       AccessMode = "native"
	AccessModeCrossAccount AccessMode = "cross_account"
)

// TenantStatus is the onboarding lifecycle state of a tenant.
type TenantStatus string

const (
	TenantStatusPending   TenantStatus = "pending"
	TenantStatusActive    TenantStatus = "active"
	TenantStatusSuspended TenantStatus = "suspended"
)

// Tenant represents one account under posture validation. The record is owned
// by the onboarding flow; the validation engine only reads it.
type Tenant struct {
	TenantID         string       `json:"tenant_id" dynamodbav:"tenant_id"`
	Kind             TenantKind   `json:"kind" dynamodbav:"kind"`
	AccountID        string       `json:"account_id" dynamodbav:"account_id"`
	AccessMode       AccessMode   `json:"access_mode" dynamodbav:"access_mode"`
	RoleARN          string       `json:"role_arn,omitempty" dynamodbav:"role_arn,omitempty"`
	ExternalID       string       `json:"-" dynamodbav:"external_id,omitempty"`
	Status           TenantStatus `json:"status" dynamodbav:"status"`
	OrganizationName string       `json:"organization_name,omitempty" dynamodbav:"organization_name,omitempty"`
}

// Validate confere o invariante de acesso do tenant: cross_account exige
// role e external ID; um tenant native não exige nenhum dos dois.
func (t Tenant) Validate() error {
	if t.TenantID == "" {
		return fmt.Errorf("tenant has no tenant_id")
	}
	switch t.AccessMode {
	case AccessModeNative:
		return nil
	case AccessModeCrossAccount:
		if t.RoleARN == "" {
			return fmt.Errorf("tenant %s: cross_account mode without a role reference", t.TenantID)
		}
		if t.ExternalID == "" {
			return fmt.Errorf("tenant %s: cross_account mode without an external token", t.TenantID)
		}
		return nil
	default:
		return fmt.Errorf("tenant %s: unknown access mode %q", t.TenantID, t.AccessMode)
	}
}

// IsActive reports whether the tenant should be included in fleet-wide runs.
func (t Tenant) IsActive() bool {
	return t.Status == TenantStatusActive
}
