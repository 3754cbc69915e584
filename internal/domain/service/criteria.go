package service

import "fmt"

// Criteria identifiers referenced by indicator definitions. Each heuristic is
// documented next to its implementation; all of them read only the merged
// probe measures.
const (
	CriteriaMultiAZSegmentation = "multi_az_segmentation"
	CriteriaNoOpenIngress       = "no_open_ingress"
	CriteriaFederationPreferred = "federation_preferred"
	CriteriaMFAEnforced         = "mfa_enforced"
	CriteriaManagedKeysPresent  = "managed_keys_present"
	CriteriaStorageEncrypted    = "storage_encrypted"
	CriteriaAuditTrailPresent   = "audit_trail_present"
	CriteriaAlertingPresent     = "alerting_present"
	CriteriaChangeIntegrity     = "change_integrity"
	CriteriaAnyProbeSucceeded   = "any_probe_succeeded"
)

// applyCriteria resolves a documented heuristic against the merged measures.
// Unknown criteria fall back to "any probe succeeded", the weakest check,
// so a definition typo degrades loudly in the reason text instead of
// silently passing.
func applyCriteria(criteria string, m map[string]float64, succeeded int) (bool, string) {
	switch criteria {
	case CriteriaMultiAZSegmentation:
		// Segmentação de rede precisa abranger mais de uma zona de isolamento.
		zones := m["availability_zones"]
		return zones > 1, fmt.Sprintf("segmentation across %.0f isolation zones (need >1)", zones)

	case CriteriaNoOpenIngress:
		open := m["open_ingress_rules"]
		return open == 0, fmt.Sprintf("%.0f security group rules open to 0.0.0.0/0 (need 0)", open)

	case CriteriaFederationPreferred:
		// Preferência por identidade federada: papéis assumíveis devem, no
		// mínimo, igualar os usuários gerenciados diretamente.
		users := m["user_count"]
		roles := m["role_count"]
		return roles >= users, fmt.Sprintf("%.0f managed users against %.0f roles", users, roles)

	case CriteriaMFAEnforced:
		if m["account_mfa_enabled"] > 0 {
			return true, "account-level MFA enabled"
		}
		users := m["user_count"]
		devices := m["mfa_devices_in_use"]
		return users > 0 && devices >= users,
			fmt.Sprintf("%.0f MFA devices in use for %.0f users", devices, users)

	case CriteriaManagedKeysPresent:
		keys := m["key_count"]
		aliases := m["alias_count"]
		return keys >= 1 && aliases >= 1,
			fmt.Sprintf("%.0f managed keys and %.0f aliases (need at least one of each)", keys, aliases)

	case CriteriaStorageEncrypted:
		unencrypted := m["unencrypted_db_instances"]
		return unencrypted == 0,
			fmt.Sprintf("%.0f database instances without storage encryption (need 0)", unencrypted)

	case CriteriaAuditTrailPresent:
		trails := m["trail_count"]
		groups := m["log_group_count"]
		return trails >= 1 && groups >= 1,
			fmt.Sprintf("%.0f trails and %.0f log groups (need at least one of each)", trails, groups)

	case CriteriaAlertingPresent:
		alarms := m["alarm_count"]
		channels := m["topic_count"] + m["budget_count"]
		return alarms >= 1 && channels >= 1,
			fmt.Sprintf("%.0f alarms with %.0f notification channels", alarms, channels)

	case CriteriaChangeIntegrity:
		// Pelo menos um mecanismo de trilha de auditoria e pelo menos um
		// mecanismo de infraestrutura como código precisam existir.
		auditMechanisms := m["validated_trails"] + m["recorder_count"]
		iac := m["stack_count"]
		return auditMechanisms >= 1 && iac >= 1,
			fmt.Sprintf("%.0f tamper-evident audit mechanisms and %.0f IaC stacks", auditMechanisms, iac)

	case CriteriaAnyProbeSucceeded:
		return succeeded > 0, fmt.Sprintf("%d probes returned evidence", succeeded)

	default:
		return succeeded > 0, fmt.Sprintf("unknown criteria %q, fell back to probe reachability", criteria)
	}
}
