// Package databasetools implements the database tool family, covering
// both relational (RDS) and key-value (DynamoDB) resources.
package databasetools

import (
	"context"
	"encoding/json"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/rds"

	"github.com/arclight-labs/rca-engine/internal/cloudclient"
	"github.com/arclight-labs/rca-engine/internal/tools/toolkit"
)

type dbInstanceArgs struct {
	InstanceID string `json:"instanceId"`
}

func GetRelationalConfig(ctx context.Context, client *cloudclient.Client, raw json.RawMessage) string {
	var args dbInstanceArgs
	if errEnv, ok := toolkit.Decode(raw, &args); !ok {
		return errEnv
	}
	if args.InstanceID == "" {
		return toolkit.Error("instanceId is required", args)
	}

	r, err := client.RDS()
	if err != nil {
		return toolkit.Errorf(args, "rds client: %v", err)
	}

	out, err := r.DescribeDBInstances(ctx, &rds.DescribeDBInstancesInput{DBInstanceIdentifier: aws.String(args.InstanceID)})
	if err != nil {
		return toolkit.Errorf(args, "DescribeDBInstances: %v", err)
	}
	if len(out.DBInstances) == 0 {
		return toolkit.Error("instance not found", args)
	}

	inst := out.DBInstances[0]
	return toolkit.Success(args, map[string]interface{}{
		"engine":             aws.ToString(inst.Engine),
		"engineVersion":      aws.ToString(inst.EngineVersion),
		"status":             aws.ToString(inst.DBInstanceStatus),
		"multiAZ":            aws.ToBool(inst.MultiAZ),
		"allocatedStorageGb": aws.ToInt32(inst.AllocatedStorage),
		"instanceClass":      aws.ToString(inst.DBInstanceClass),
	})
}

type tableArgs struct {
	TableName string `json:"tableName"`
}

func GetKeyValueConfig(ctx context.Context, client *cloudclient.Client, raw json.RawMessage) string {
	var args tableArgs
	if errEnv, ok := toolkit.Decode(raw, &args); !ok {
		return errEnv
	}
	if args.TableName == "" {
		return toolkit.Error("tableName is required", args)
	}

	dd, err := client.DynamoDB()
	if err != nil {
		return toolkit.Errorf(args, "dynamodb client: %v", err)
	}

	out, err := dd.DescribeTable(ctx, &dynamodb.DescribeTableInput{TableName: aws.String(args.TableName)})
	if err != nil {
		return toolkit.Errorf(args, "DescribeTable: %v", err)
	}

	t := out.Table
	billingMode := "PROVISIONED"
	if t.BillingModeSummary != nil {
		billingMode = string(t.BillingModeSummary.BillingMode)
	}

	return toolkit.Success(args, map[string]interface{}{
		"status":       string(t.TableStatus),
		"itemCount":    aws.ToInt64(t.ItemCount),
		"billingMode":  billingMode,
		"sizeBytes":    aws.ToInt64(t.TableSizeBytes),
	})
}

type dbWindowArgs struct {
	Identifier string `json:"identifier"`
	Namespace  string `json:"namespace"` // "AWS/RDS" or "AWS/DynamoDB"
	Window     string `json:"window"`
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

func GetDatabaseMetrics(ctx context.Context, client *cloudclient.Client, raw json.RawMessage) string {
	var args dbWindowArgs
	if errEnv, ok := toolkit.Decode(raw, &args); !ok {
		return errEnv
	}
	if args.Identifier == "" || args.Namespace == "" {
		return toolkit.Error("identifier and namespace are required", args)
	}

	cw, err := client.CloudWatch()
	if err != nil {
		return toolkit.Errorf(args, "cloudwatch client: %v", err)
	}

	end := time.Now()
	start := end.Add(-parseWindow(args.Window))

	dimName := "DBInstanceIdentifier"
	metricNames := []string{"CPUUtilization", "DatabaseConnections", "FreeableMemory", "ReadLatency"}
	if args.Namespace == "AWS/DynamoDB" {
		dimName = "TableName"
		metricNames = []string{"ConsumedReadCapacityUnits", "ConsumedWriteCapacityUnits", "ThrottledRequests", "SystemErrors"}
	}
	dims := []cwtypes.Dimension{{Name: aws.String(dimName), Value: aws.String(args.Identifier)}}

	metrics := map[string]interface{}{}
	for _, m := range metricNames {
		out, err := cw.GetMetricStatistics(ctx, &cloudwatch.GetMetricStatisticsInput{
			Namespace:  aws.String(args.Namespace),
			MetricName: aws.String(m),
			Dimensions: dims,
			StartTime:  aws.Time(start),
			EndTime:    aws.Time(end),
			Period:     aws.Int32(300),
			Statistics: []cwtypes.Statistic{cwtypes.StatisticAverage, cwtypes.StatisticSum},
		})
		if err != nil {
			continue
		}
		points := make([]map[string]interface{}, 0, len(out.Datapoints))
		for _, dp := range out.Datapoints {
			points = append(points, map[string]interface{}{
				"timestamp": dp.Timestamp,
				"average":   aws.ToFloat64(dp.Average),
				"sum":       aws.ToFloat64(dp.Sum),
			})
		}
		metrics[m] = points
	}

	return toolkit.Success(args, map[string]interface{}{"metrics": metrics})
}
