package entity

// Category groups indicators by the security concern they inspect. Each
// category is owned by exactly one validator.
type Category string

const (
	CategoryNetwork        Category = "network"
	CategoryIdentity       Category = "identity"
	CategoryKeyManagement  Category = "key_management"
	CategoryMonitoring     Category = "monitoring"
	CategoryChangeTracking Category = "change_tracking"
)

// Categories lists every known category in dispatch order.
func Categories() []Category {
	return []Category{
		CategoryNetwork,
		CategoryIdentity,
		CategoryKeyManagement,
		CategoryMonitoring,
		CategoryChangeTracking,
	}
}

// Probe describes one idempotent, read-only query against the target account.
// Service and Operation select an entry in the probe executor's fixed call
// table; Note records the intent of the check for the evidence trail.
type Probe struct {
	Service   string `json:"service" yaml:"service" toml:"service"`
	Operation string `json:"operation" yaml:"operation" toml:"operation"`
	Note      string `json:"note" yaml:"note" toml:"note"`
}

// Command devolve a forma canônica "service:Operation" usada em logs e
// evidências.
func (p Probe) Command() string {
	return p.Service + ":" + p.Operation
}

// IndicatorDefinition is a named, versioned security check backed by one or
// more probes. Definitions are immutable once loaded; changes append a new
// version instead of mutating an existing one.
type IndicatorDefinition struct {
	IndicatorID string             `json:"indicator_id" yaml:"indicator_id" toml:"indicator_id"`
	Version     int                `json:"version" yaml:"version" toml:"version"`
	Category    Category           `json:"category" yaml:"category" toml:"category"`
	Description string             `json:"description,omitempty" yaml:"description" toml:"description"`
	Probes      []Probe            `json:"probes" yaml:"probes" toml:"probes"`
	Criteria    string             `json:"criteria" yaml:"criteria" toml:"criteria"`
	Trigger     *TriggerExpression `json:"trigger,omitempty" yaml:"trigger" toml:"trigger"`
}

// TenantIndicatorConfig is the per-tenant override deciding which indicators
// run, with what priority, and on what schedule. Keyed by
// (tenant_id, indicator_id); created at onboarding, edited by admins.
type TenantIndicatorConfig struct {
	TenantID    string `json:"tenant_id" dynamodbav:"tenant_id"`
	IndicatorID string `json:"indicator_id" dynamodbav:"indicator_id"`
	Enabled     bool   `json:"enabled" dynamodbav:"enabled"`
	Priority    int    `json:"priority,omitempty" dynamodbav:"priority,omitempty"`
	Schedule    string `json:"schedule,omitempty" dynamodbav:"schedule,omitempty"`
}
