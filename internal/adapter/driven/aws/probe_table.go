package aws

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/budgets"
	"github.com/aws/aws-sdk-go-v2/service/cloudformation"
	cfnTypes "github.com/aws/aws-sdk-go-v2/service/cloudformation/types"
	"github.com/aws/aws-sdk-go-v2/service/cloudtrail"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwTypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs"
	"github.com/aws/aws-sdk-go-v2/service/configservice"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/elasticloadbalancingv2"
	elbv2Types "github.com/aws/aws-sdk-go-v2/service/elasticloadbalancingv2/types"
	"github.com/aws/aws-sdk-go-v2/service/iam"
	"github.com/aws/aws-sdk-go-v2/service/kms"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/aws/aws-sdk-go-v2/service/rds"
	"github.com/aws/aws-sdk-go-v2/service/route53"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/cloudposture/aws-posture-validator-go/internal/domain/entity"
	"github.com/cloudposture/aws-posture-validator-go/internal/domain/repository"
)

// probeFunc issues one read-only call and parses its response into the
// structured payload. The measure keys each operation produces are the
// analyzer's contract; changing a key is a breaking change to the criteria
// that read it.
type probeFunc func(ctx context.Context, c *clientSet, session *repository.TenantSession) (entity.ProbeData, error)

// probeCalls is the fixed, read-only call table keyed by "service:Operation".
// Everything here must be an idempotent describe/list call; the executor's
// no-mutation guarantee rests on this table.
var probeCalls = map[string]probeFunc{
	"ec2:DescribeSubnets":           probeSubnets,
	"ec2:DescribeAvailabilityZones": probeAvailabilityZones,
	"ec2:DescribeVpcs":              probeVpcs,
	"ec2:DescribeSecurityGroups":    probeSecurityGroups,
	"ec2:DescribeRegions":           probeRegions,
	"route53:ListHostedZones":       probeHostedZones,
	"elasticloadbalancingv2:DescribeLoadBalancers": probeLoadBalancers,
	"iam:ListUsers":                      probeIAMUsers,
	"iam:ListRoles":                      probeIAMRoles,
	"iam:GetAccountSummary":              probeAccountSummary,
	"kms:ListKeys":                       probeKMSKeys,
	"kms:ListAliases":                    probeKMSAliases,
	"secretsmanager:ListSecrets":         probeSecrets,
	"rds:DescribeDBInstances":            probeDBInstances,
	"s3:ListBuckets":                     probeBuckets,
	"cloudtrail:DescribeTrails":          probeTrails,
	"cloudwatch:DescribeAlarms":          probeAlarms,
	"logs:DescribeLogGroups":             probeLogGroups,
	"sns:ListTopics":                     probeTopics,
	"budgets:DescribeBudgets":            probeBudgets,
	"config:DescribeConfigurationRecorders": probeConfigRecorders,
	"cloudformation:ListStacks":             probeStacks,
	"lambda:ListFunctions":                  probeFunctions,
}

func probeSubnets(ctx context.Context, c *clientSet, _ *repository.TenantSession) (entity.ProbeData, error) {
	out, err := c.ec2.DescribeSubnets(ctx, &ec2.DescribeSubnetsInput{})
	if err != nil {
		return entity.ProbeData{}, err
	}
	zones := make(map[string]bool)
	details := []string{}
	for _, subnet := range out.Subnets {
		zones[aws.ToString(subnet.AvailabilityZone)] = true
		details = appendDetail(details, aws.ToString(subnet.SubnetId))
	}
	multiAZ := 0.0
	if len(zones) > 1 {
		multiAZ = 1
	}
	return entity.ProbeData{
		Measures: map[string]float64{
			"subnet_count":       float64(len(out.Subnets)),
			"availability_zones": float64(len(zones)),
			"multi_az":           multiAZ,
		},
		Details: details,
	}, nil
}

func probeAvailabilityZones(ctx context.Context, c *clientSet, _ *repository.TenantSession) (entity.ProbeData, error) {
	out, err := c.ec2.DescribeAvailabilityZones(ctx, &ec2.DescribeAvailabilityZonesInput{})
	if err != nil {
		return entity.ProbeData{}, err
	}
	details := []string{}
	for _, az := range out.AvailabilityZones {
		details = appendDetail(details, aws.ToString(az.ZoneName))
	}
	return entity.ProbeData{
		Measures: map[string]float64{"available_zones": float64(len(out.AvailabilityZones))},
		Details:  details,
	}, nil
}

func probeVpcs(ctx context.Context, c *clientSet, _ *repository.TenantSession) (entity.ProbeData, error) {
	out, err := c.ec2.DescribeVpcs(ctx, &ec2.DescribeVpcsInput{})
	if err != nil {
		return entity.ProbeData{}, err
	}
	defaults := 0.0
	details := []string{}
	for _, vpc := range out.Vpcs {
		if aws.ToBool(vpc.IsDefault) {
			defaults++
		}
		details = appendDetail(details, aws.ToString(vpc.VpcId))
	}
	return entity.ProbeData{
		Measures: map[string]float64{
			"vpc_count":    float64(len(out.Vpcs)),
			"default_vpcs": defaults,
		},
		Details: details,
	}, nil
}

func probeSecurityGroups(ctx context.Context, c *clientSet, _ *repository.TenantSession) (entity.ProbeData, error) {
	out, err := c.ec2.DescribeSecurityGroups(ctx, &ec2.DescribeSecurityGroupsInput{})
	if err != nil {
		return entity.ProbeData{}, err
	}
	openRules := 0.0
	details := []string{}
	for _, sg := range out.SecurityGroups {
		for _, perm := range sg.IpPermissions {
			for _, ipRange := range perm.IpRanges {
				if aws.ToString(ipRange.CidrIp) == "0.0.0.0/0" {
					openRules++
					details = appendDetail(details, aws.ToString(sg.GroupId))
				}
			}
		}
	}
	return entity.ProbeData{
		Measures: map[string]float64{
			"security_group_count": float64(len(out.SecurityGroups)),
			"open_ingress_rules":   openRules,
		},
		Details: details,
	}, nil
}

func probeRegions(ctx context.Context, c *clientSet, _ *repository.TenantSession) (entity.ProbeData, error) {
	out, err := c.ec2.DescribeRegions(ctx, &ec2.DescribeRegionsInput{AllRegions: aws.Bool(false)})
	if err != nil {
		return entity.ProbeData{}, err
	}
	return entity.ProbeData{
		Measures: map[string]float64{"region_count": float64(len(out.Regions))},
	}, nil
}

func probeHostedZones(ctx context.Context, c *clientSet, _ *repository.TenantSession) (entity.ProbeData, error) {
	out, err := c.route53.ListHostedZones(ctx, &route53.ListHostedZonesInput{})
	if err != nil {
		return entity.ProbeData{}, err
	}
	details := []string{}
	for _, zone := range out.HostedZones {
		details = appendDetail(details, aws.ToString(zone.Name))
	}
	return entity.ProbeData{
		Measures: map[string]float64{"hosted_zones": float64(len(out.HostedZones))},
		Details:  details,
	}, nil
}

func probeLoadBalancers(ctx context.Context, c *clientSet, _ *repository.TenantSession) (entity.ProbeData, error) {
	out, err := c.elbv2.DescribeLoadBalancers(ctx, &elasticloadbalancingv2.DescribeLoadBalancersInput{})
	if err != nil {
		return entity.ProbeData{}, err
	}
	internetFacing := 0.0
	details := []string{}
	for _, lb := range out.LoadBalancers {
		if lb.Scheme == elbv2Types.LoadBalancerSchemeEnumInternetFacing {
			internetFacing++
		}
		details = appendDetail(details, aws.ToString(lb.LoadBalancerName))
	}
	return entity.ProbeData{
		Measures: map[string]float64{
			"load_balancer_count": float64(len(out.LoadBalancers)),
			"internet_facing_lbs": internetFacing,
		},
		Details: details,
	}, nil
}

func probeIAMUsers(ctx context.Context, c *clientSet, _ *repository.TenantSession) (entity.ProbeData, error) {
	out, err := c.iam.ListUsers(ctx, &iam.ListUsersInput{})
	if err != nil {
		return entity.ProbeData{}, err
	}
	details := []string{}
	for _, user := range out.Users {
		details = appendDetail(details, aws.ToString(user.UserName))
	}
	return entity.ProbeData{
		Measures: map[string]float64{"user_count": float64(len(out.Users))},
		Details:  details,
	}, nil
}

func probeIAMRoles(ctx context.Context, c *clientSet, _ *repository.TenantSession) (entity.ProbeData, error) {
	out, err := c.iam.ListRoles(ctx, &iam.ListRolesInput{})
	if err != nil {
		return entity.ProbeData{}, err
	}
	return entity.ProbeData{
		Measures: map[string]float64{"role_count": float64(len(out.Roles))},
	}, nil
}

func probeAccountSummary(ctx context.Context, c *clientSet, _ *repository.TenantSession) (entity.ProbeData, error) {
	out, err := c.iam.GetAccountSummary(ctx, &iam.GetAccountSummaryInput{})
	if err != nil {
		return entity.ProbeData{}, err
	}
	summary := out.SummaryMap
	return entity.ProbeData{
		Measures: map[string]float64{
			"user_count":          float64(summary["Users"]),
			"role_count":          float64(summary["Roles"]),
			"policy_count":        float64(summary["Policies"]),
			"mfa_devices":         float64(summary["MFADevices"]),
			"mfa_devices_in_use":  float64(summary["MFADevicesInUse"]),
			"account_mfa_enabled": float64(summary["AccountMFAEnabled"]),
		},
	}, nil
}

func probeKMSKeys(ctx context.Context, c *clientSet, _ *repository.TenantSession) (entity.ProbeData, error) {
	out, err := c.kms.ListKeys(ctx, &kms.ListKeysInput{})
	if err != nil {
		return entity.ProbeData{}, err
	}
	return entity.ProbeData{
		Measures: map[string]float64{"key_count": float64(len(out.Keys))},
	}, nil
}

func probeKMSAliases(ctx context.Context, c *clientSet, _ *repository.TenantSession) (entity.ProbeData, error) {
	out, err := c.kms.ListAliases(ctx, &kms.ListAliasesInput{})
	if err != nil {
		return entity.ProbeData{}, err
	}
	details := []string{}
	for _, alias := range out.Aliases {
		details = appendDetail(details, aws.ToString(alias.AliasName))
	}
	return entity.ProbeData{
		Measures: map[string]float64{"alias_count": float64(len(out.Aliases))},
		Details:  details,
	}, nil
}

func probeSecrets(ctx context.Context, c *clientSet, _ *repository.TenantSession) (entity.ProbeData, error) {
	out, err := c.secrets.ListSecrets(ctx, &secretsmanager.ListSecretsInput{})
	if err != nil {
		return entity.ProbeData{}, err
	}
	// apenas a contagem: nomes de segredos não entram na evidência
	return entity.ProbeData{
		Measures: map[string]float64{"secret_count": float64(len(out.SecretList))},
	}, nil
}

func probeDBInstances(ctx context.Context, c *clientSet, _ *repository.TenantSession) (entity.ProbeData, error) {
	out, err := c.rds.DescribeDBInstances(ctx, &rds.DescribeDBInstancesInput{})
	if err != nil {
		return entity.ProbeData{}, err
	}
	unencrypted := 0.0
	details := []string{}
	for _, db := range out.DBInstances {
		if !aws.ToBool(db.StorageEncrypted) {
			unencrypted++
			details = appendDetail(details, aws.ToString(db.DBInstanceIdentifier))
		}
	}
	return entity.ProbeData{
		Measures: map[string]float64{
			"db_instance_count":        float64(len(out.DBInstances)),
			"unencrypted_db_instances": unencrypted,
		},
		Details: details,
	}, nil
}

func probeBuckets(ctx context.Context, c *clientSet, _ *repository.TenantSession) (entity.ProbeData, error) {
	out, err := c.s3.ListBuckets(ctx, &s3.ListBucketsInput{})
	if err != nil {
		return entity.ProbeData{}, err
	}
	return entity.ProbeData{
		Measures: map[string]float64{"bucket_count": float64(len(out.Buckets))},
	}, nil
}

func probeTrails(ctx context.Context, c *clientSet, _ *repository.TenantSession) (entity.ProbeData, error) {
	out, err := c.trail.DescribeTrails(ctx, &cloudtrail.DescribeTrailsInput{})
	if err != nil {
		return entity.ProbeData{}, err
	}
	multiRegion, validated := 0.0, 0.0
	details := []string{}
	for _, trail := range out.TrailList {
		if aws.ToBool(trail.IsMultiRegionTrail) {
			multiRegion++
		}
		if aws.ToBool(trail.LogFileValidationEnabled) {
			validated++
		}
		details = appendDetail(details, aws.ToString(trail.Name))
	}
	return entity.ProbeData{
		Measures: map[string]float64{
			"trail_count":         float64(len(out.TrailList)),
			"multi_region_trails": multiRegion,
			"validated_trails":    validated,
		},
		Details: details,
	}, nil
}

func probeAlarms(ctx context.Context, c *clientSet, _ *repository.TenantSession) (entity.ProbeData, error) {
	out, err := c.watch.DescribeAlarms(ctx, &cloudwatch.DescribeAlarmsInput{
		MaxRecords: aws.Int32(100),
	})
	if err != nil {
		return entity.ProbeData{}, err
	}
	okAlarms := 0.0
	for _, alarm := range out.MetricAlarms {
		if alarm.StateValue == cwTypes.StateValueOk {
			okAlarms++
		}
	}
	return entity.ProbeData{
		Measures: map[string]float64{
			"alarm_count": float64(len(out.MetricAlarms)),
			"ok_alarms":   okAlarms,
		},
	}, nil
}

func probeLogGroups(ctx context.Context, c *clientSet, _ *repository.TenantSession) (entity.ProbeData, error) {
	out, err := c.logs.DescribeLogGroups(ctx, &cloudwatchlogs.DescribeLogGroupsInput{
		Limit: aws.Int32(50),
	})
	if err != nil {
		return entity.ProbeData{}, err
	}
	retained := 0.0
	details := []string{}
	for _, group := range out.LogGroups {
		if group.RetentionInDays != nil {
			retained++
		}
		details = appendDetail(details, aws.ToString(group.LogGroupName))
	}
	return entity.ProbeData{
		Measures: map[string]float64{
			"log_group_count":     float64(len(out.LogGroups)),
			"retained_log_groups": retained,
		},
		Details: details,
	}, nil
}

func probeTopics(ctx context.Context, c *clientSet, _ *repository.TenantSession) (entity.ProbeData, error) {
	out, err := c.sns.ListTopics(ctx, &sns.ListTopicsInput{})
	if err != nil {
		return entity.ProbeData{}, err
	}
	return entity.ProbeData{
		Measures: map[string]float64{"topic_count": float64(len(out.Topics))},
	}, nil
}

func probeBudgets(ctx context.Context, c *clientSet, session *repository.TenantSession) (entity.ProbeData, error) {
	out, err := c.budgets.DescribeBudgets(ctx, &budgets.DescribeBudgetsInput{
		AccountId: aws.String(session.AccountID),
	})
	if err != nil {
		return entity.ProbeData{}, err
	}
	return entity.ProbeData{
		Measures: map[string]float64{"budget_count": float64(len(out.Budgets))},
	}, nil
}

func probeConfigRecorders(ctx context.Context, c *clientSet, _ *repository.TenantSession) (entity.ProbeData, error) {
	out, err := c.configsvc.DescribeConfigurationRecorders(ctx, &configservice.DescribeConfigurationRecordersInput{})
	if err != nil {
		return entity.ProbeData{}, err
	}
	return entity.ProbeData{
		Measures: map[string]float64{"recorder_count": float64(len(out.ConfigurationRecorders))},
	}, nil
}

func probeStacks(ctx context.Context, c *clientSet, _ *repository.TenantSession) (entity.ProbeData, error) {
	out, err := c.cfn.ListStacks(ctx, &cloudformation.ListStacksInput{
		StackStatusFilter: []cfnTypes.StackStatus{
			cfnTypes.StackStatusCreateComplete,
			cfnTypes.StackStatusUpdateComplete,
			cfnTypes.StackStatusUpdateRollbackComplete,
		},
	})
	if err != nil {
		return entity.ProbeData{}, err
	}
	details := []string{}
	for _, stack := range out.StackSummaries {
		details = appendDetail(details, aws.ToString(stack.StackName))
	}
	return entity.ProbeData{
		Measures: map[string]float64{"stack_count": float64(len(out.StackSummaries))},
		Details:  details,
	}, nil
}

func probeFunctions(ctx context.Context, c *clientSet, _ *repository.TenantSession) (entity.ProbeData, error) {
	out, err := c.lambda.ListFunctions(ctx, &lambda.ListFunctionsInput{})
	if err != nil {
		return entity.ProbeData{}, err
	}
	return entity.ProbeData{
		Measures: map[string]float64{"function_count": float64(len(out.Functions))},
	}, nil
}

func appendDetail(details []string, value string) []string {
	if len(details) >= detailLimit || value == "" {
		return details
	}
	return append(details, value)
}
