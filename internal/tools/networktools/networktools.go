// Package networktools implements the network tool family (EC2/VPC):
// security-group/subnet configuration and network-interface metrics.
package networktools

import (
	"context"
	"encoding/json"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	"github.com/aws/aws-sdk-go-v2/service/ec2"

	"github.com/arclight-labs/rca-engine/internal/cloudclient"
	"github.com/arclight-labs/rca-engine/internal/tools/toolkit"
)

type securityGroupArgs struct {
	GroupID string `json:"groupId"`
}

func GetSecurityGroupConfig(ctx context.Context, client *cloudclient.Client, raw json.RawMessage) string {
	var args securityGroupArgs
	if errEnv, ok := toolkit.Decode(raw, &args); !ok {
		return errEnv
	}
	if args.GroupID == "" {
		return toolkit.Error("groupId is required", args)
	}

	e, err := client.EC2()
	if err != nil {
		return toolkit.Errorf(args, "ec2 client: %v", err)
	}

	out, err := e.DescribeSecurityGroups(ctx, &ec2.DescribeSecurityGroupsInput{GroupIds: []string{args.GroupID}})
	if err != nil {
		return toolkit.Errorf(args, "DescribeSecurityGroups: %v", err)
	}
	if len(out.SecurityGroups) == 0 {
		return toolkit.Error("security group not found", args)
	}

	sg := out.SecurityGroups[0]
	ingress := make([]map[string]interface{}, 0, len(sg.IpPermissions))
	for _, p := range sg.IpPermissions {
		ingress = append(ingress, map[string]interface{}{
			"protocol": aws.ToString(p.IpProtocol),
			"fromPort": aws.ToInt32(p.FromPort),
			"toPort":   aws.ToInt32(p.ToPort),
		})
	}

	return toolkit.Success(args, map[string]interface{}{
		"vpcId":         aws.ToString(sg.VpcId),
		"ingressRules":  ingress,
		"ingressCount":  len(sg.IpPermissions),
	})
}

type subnetArgs struct {
	SubnetID string `json:"subnetId"`
}

func GetSubnetConfig(ctx context.Context, client *cloudclient.Client, raw json.RawMessage) string {
	var args subnetArgs
	if errEnv, ok := toolkit.Decode(raw, &args); !ok {
		return errEnv
	}
	if args.SubnetID == "" {
		return toolkit.Error("subnetId is required", args)
	}

	e, err := client.EC2()
	if err != nil {
		return toolkit.Errorf(args, "ec2 client: %v", err)
	}

	out, err := e.DescribeSubnets(ctx, &ec2.DescribeSubnetsInput{SubnetIds: []string{args.SubnetID}})
	if err != nil {
		return toolkit.Errorf(args, "DescribeSubnets: %v", err)
	}
	if len(out.Subnets) == 0 {
		return toolkit.Error("subnet not found", args)
	}

	sn := out.Subnets[0]
	return toolkit.Success(args, map[string]interface{}{
		"vpcId":               aws.ToString(sn.VpcId),
		"availabilityZone":    aws.ToString(sn.AvailabilityZone),
		"availableIpCount":    aws.ToInt32(sn.AvailableIpAddressCount),
		"cidrBlock":           aws.ToString(sn.CidrBlock),
		"mapPublicIpOnLaunch": aws.ToBool(sn.MapPublicIpOnLaunch),
	})
}

type eniWindowArgs struct {
	NetworkInterfaceID string `json:"networkInterfaceId"`
	Window              string `json:"window"`
}

func parseWindow(w string) time.Duration {
	if w == "" {
		return time.Hour
	}
	d, err := time.ParseDuration(w)
	if err != nil {
		return time.Hour
	}
	return d
}

func GetNetworkMetrics(ctx context.Context, client *cloudclient.Client, raw json.RawMessage) string {
	var args eniWindowArgs
	if errEnv, ok := toolkit.Decode(raw, &args); !ok {
		return errEnv
	}
	if args.NetworkInterfaceID == "" {
		return toolkit.Error("networkInterfaceId is required", args)
	}

	cw, err := client.CloudWatch()
	if err != nil {
		return toolkit.Errorf(args, "cloudwatch client: %v", err)
	}

	end := time.Now()
	start := end.Add(-parseWindow(args.Window))
	dims := []cwtypes.Dimension{{Name: aws.String("NetworkInterfaceId"), Value: aws.String(args.NetworkInterfaceID)}}

	metrics := map[string]interface{}{}
	for _, m := range []string{"PacketsDropped", "BytesIn", "BytesOut"} {
		out, err := cw.GetMetricStatistics(ctx, &cloudwatch.GetMetricStatisticsInput{
			Namespace:  aws.String("AWS/EC2"),
			MetricName: aws.String(m),
			Dimensions: dims,
			StartTime:  aws.Time(start),
			EndTime:    aws.Time(end),
			Period:     aws.Int32(300),
			Statistics: []cwtypes.Statistic{cwtypes.StatisticSum},
		})
		if err != nil {
			continue
		}
		points := make([]map[string]interface{}, 0, len(out.Datapoints))
		for _, dp := range out.Datapoints {
			points = append(points, map[string]interface{}{
				"timestamp": dp.Timestamp,
				"sum":       aws.ToFloat64(dp.Sum),
			})
		}
		metrics[m] = points
	}

	return toolkit.Success(args, map[string]interface{}{"metrics": metrics})
}
