package config

import "github.com/cloudposture/aws-posture-validator-go/internal/domain/entity"

// DefaultDefinitions é o conjunto built-in de indicadores. Tenants sem
// override de configuração rodam exatamente este conjunto.
func DefaultDefinitions() []entity.IndicatorDefinition {
	return []entity.IndicatorDefinition{
		{
			IndicatorID: "net-segmentation",
			Version:     1,
			Category:    entity.CategoryNetwork,
			Description: "Workloads are segmented across more than one isolation zone",
			Probes: []entity.Probe{
				{Service: "ec2", Operation: "DescribeSubnets", Note: "subnet spread across availability zones"},
				{Service: "ec2", Operation: "DescribeVpcs", Note: "VPC inventory and default VPC usage"},
				{Service: "ec2", Operation: "DescribeAvailabilityZones", Note: "zones available to the account"},
			},
			Criteria: "multi_az_segmentation",
		},
		{
			IndicatorID: "net-exposure",
			Version:     1,
			Category:    entity.CategoryNetwork,
			Description: "No security group rule admits traffic from the whole internet",
			Probes: []entity.Probe{
				{Service: "ec2", Operation: "DescribeSecurityGroups", Note: "ingress rules open to 0.0.0.0/0"},
				{Service: "elasticloadbalancingv2", Operation: "DescribeLoadBalancers", Note: "internet-facing load balancers"},
				{Service: "route53", Operation: "ListHostedZones", Note: "public DNS surface"},
			},
			Criteria: "no_open_ingress",
		},
		{
			IndicatorID: "iam-federation",
			Version:     1,
			Category:    entity.CategoryIdentity,
			Description: "Federated roles are preferred over directly managed users",
			Probes: []entity.Probe{
				{Service: "iam", Operation: "ListUsers", Note: "directly managed users"},
				{Service: "iam", Operation: "ListRoles", Note: "assumable roles"},
			},
			Criteria: "federation_preferred",
		},
		{
			IndicatorID: "iam-mfa",
			Version:     1,
			Category:    entity.CategoryIdentity,
			Description: "Multi-factor authentication is enforced for account access",
			Probes: []entity.Probe{
				{Service: "iam", Operation: "GetAccountSummary", Note: "account MFA posture"},
			},
			Criteria: "mfa_enforced",
		},
		{
			IndicatorID: "kms-key-inventory",
			Version:     1,
			Category:    entity.CategoryKeyManagement,
			Description: "Managed encryption keys exist and are addressable by alias",
			Probes: []entity.Probe{
				{Service: "kms", Operation: "ListKeys", Note: "managed key inventory"},
				{Service: "kms", Operation: "ListAliases", Note: "key aliases"},
				{Service: "secretsmanager", Operation: "ListSecrets", Note: "managed secret inventory"},
			},
			Criteria: "managed_keys_present",
		},
		{
			IndicatorID: "storage-encryption",
			Version:     1,
			Category:    entity.CategoryKeyManagement,
			Description: "Database storage is encrypted at rest",
			Probes: []entity.Probe{
				{Service: "rds", Operation: "DescribeDBInstances", Note: "storage encryption on database instances"},
				{Service: "s3", Operation: "ListBuckets", Note: "object storage inventory"},
			},
			Criteria: "storage_encrypted",
		},
		{
			IndicatorID: "audit-trail",
			Version:     1,
			Category:    entity.CategoryMonitoring,
			Description: "API activity is recorded to a durable audit trail",
			Probes: []entity.Probe{
				{Service: "cloudtrail", Operation: "DescribeTrails", Note: "audit trail coverage"},
				{Service: "logs", Operation: "DescribeLogGroups", Note: "log delivery targets"},
			},
			Criteria: "audit_trail_present",
		},
		{
			IndicatorID: "alerting",
			Version:     1,
			Category:    entity.CategoryMonitoring,
			Description: "Operational alarms exist and have a notification channel",
			Probes: []entity.Probe{
				{Service: "cloudwatch", Operation: "DescribeAlarms", Note: "alarm inventory"},
				{Service: "sns", Operation: "ListTopics", Note: "notification topics"},
				{Service: "budgets", Operation: "DescribeBudgets", Note: "spend alerting"},
			},
			Criteria: "alerting_present",
		},
		{
			IndicatorID: "change-integrity",
			Version:     1,
			Category:    entity.CategoryChangeTracking,
			Description: "Changes are tamper-evident and provisioned as code",
			Probes: []entity.Probe{
				{Service: "config", Operation: "DescribeConfigurationRecorders", Note: "configuration change recording"},
				{Service: "cloudformation", Operation: "ListStacks", Note: "infrastructure-as-code footprint"},
				{Service: "lambda", Operation: "ListFunctions", Note: "deployed function inventory"},
			},
			Criteria: "change_integrity",
		},
	}
}
