package types

import "os"

// TableConfig names the DynamoDB tables the engine reads and writes. The
// environment variables follow the deployment convention of the hosting
// stack; the defaults cover local development.
type TableConfig struct {
	TenantMetadata   string
	IndicatorConfigs string
	ExecutionHistory string
}

// TableConfigFromEnv monta a configuração das tabelas a partir do ambiente.
func TableConfigFromEnv() TableConfig {
	return TableConfig{
		TenantMetadata:   envOr("TENANT_METADATA_TABLE", "posture-tenant-metadata"),
		IndicatorConfigs: envOr("TENANT_INDICATOR_CONFIGURATIONS_TABLE", "posture-tenant-indicator-configurations"),
		ExecutionHistory: envOr("EXECUTION_HISTORY_TABLE", "posture-execution-history"),
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
