// Package computetools implements the compute-function tool family
// (AWS Lambda): configuration, logs, metrics, failed invocations, and
// version history.
package computetools

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs"
	"github.com/aws/aws-sdk-go-v2/service/lambda"

	"github.com/arclight-labs/rca-engine/internal/cloudclient"
	"github.com/arclight-labs/rca-engine/internal/tools/toolkit"
)

type nameArgs struct {
	Name string `json:"name"`
}

func GetFunctionConfig(ctx context.Context, client *cloudclient.Client, raw json.RawMessage) string {
	var args nameArgs
	if errEnv, ok := toolkit.Decode(raw, &args); !ok {
		return errEnv
	}
	if args.Name == "" {
		return toolkit.Error("name is required", args)
	}

	lam, err := client.Lambda()
	if err != nil {
		return toolkit.Errorf(args, "lambda client: %v", err)
	}

	out, err := lam.GetFunctionConfiguration(ctx, &lambda.GetFunctionConfigurationInput{FunctionName: aws.String(args.Name)})
	if err != nil {
		return toolkit.Errorf(args, "GetFunctionConfiguration: %v", err)
	}

	return toolkit.Success(args, map[string]interface{}{
		"runtime":      string(out.Runtime),
		"memorySizeMb": aws.ToInt32(out.MemorySize),
		"timeoutSec":   aws.ToInt32(out.Timeout),
		"handler":      aws.ToString(out.Handler),
		"lastModified": aws.ToString(out.LastModified),
		"state":        string(out.State),
		"environment":  envVars(out),
	})
}

func envVars(out *lambda.GetFunctionConfigurationOutput) map[string]string {
	if out.Environment == nil {
		return nil
	}
	return out.Environment.Variables
}

type windowArgs struct {
	Name   string `json:"name"`
	Window string `json:"window"`
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

func GetFunctionLogs(ctx context.Context, client *cloudclient.Client, raw json.RawMessage) string {
	var args windowArgs
	if errEnv, ok := toolkit.Decode(raw, &args); !ok {
		return errEnv
	}
	if args.Name == "" {
		return toolkit.Error("name is required", args)
	}

	logs, err := client.CloudWatchLogs()
	if err != nil {
		return toolkit.Errorf(args, "cloudwatch logs client: %v", err)
	}

	end := time.Now()
	start := end.Add(-parseWindow(args.Window))
	group := fmt.Sprintf("/aws/lambda/%s", args.Name)

	out, err := logs.FilterLogEvents(ctx, &cloudwatchlogs.FilterLogEventsInput{
		LogGroupName: aws.String(group),
		StartTime:    aws.Int64(start.UnixMilli()),
		EndTime:      aws.Int64(end.UnixMilli()),
	})
	if err != nil {
		return toolkit.Errorf(args, "FilterLogEvents: %v", err)
	}

	events := make([]map[string]interface{}, 0, len(out.Events))
	for _, e := range out.Events {
		events = append(events, map[string]interface{}{
			"timestamp": aws.ToInt64(e.Timestamp),
			"message":   aws.ToString(e.Message),
		})
	}

	return toolkit.Success(args, map[string]interface{}{"events": events})
}

func GetFunctionMetrics(ctx context.Context, client *cloudclient.Client, raw json.RawMessage) string {
	var args windowArgs
	if errEnv, ok := toolkit.Decode(raw, &args); !ok {
		return errEnv
	}
	if args.Name == "" {
		return toolkit.Error("name is required", args)
	}

	cw, err := client.CloudWatch()
	if err != nil {
		return toolkit.Errorf(args, "cloudwatch client: %v", err)
	}

	end := time.Now()
	start := end.Add(-parseWindow(args.Window))
	dims := []cwtypes.Dimension{{Name: aws.String("FunctionName"), Value: aws.String(args.Name)}}

	metrics := map[string]interface{}{}
	for _, m := range []string{"Invocations", "Errors", "Duration", "Throttles"} {
		out, err := cw.GetMetricStatistics(ctx, &cloudwatch.GetMetricStatisticsInput{
			Namespace:  aws.String("AWS/Lambda"),
			MetricName: aws.String(m),
			Dimensions: dims,
			StartTime:  aws.Time(start),
			EndTime:    aws.Time(end),
			Period:     aws.Int32(300),
			Statistics: []cwtypes.Statistic{cwtypes.StatisticSum, cwtypes.StatisticAverage},
		})
		if err != nil {
			continue
		}
		points := make([]map[string]interface{}, 0, len(out.Datapoints))
		for _, dp := range out.Datapoints {
			points = append(points, map[string]interface{}{
				"timestamp": dp.Timestamp,
				"sum":       aws.ToFloat64(dp.Sum),
				"average":   aws.ToFloat64(dp.Average),
			})
		}
		metrics[m] = points
	}

	return toolkit.Success(args, map[string]interface{}{"metrics": metrics})
}

type limitArgs struct {
	Name   string `json:"name"`
	Window string `json:"window"`
	Limit  int    `json:"limit"`
}

func GetFunctionFailedInvocations(ctx context.Context, client *cloudclient.Client, raw json.RawMessage) string {
	var args limitArgs
	if errEnv, ok := toolkit.Decode(raw, &args); !ok {
		return errEnv
	}
	if args.Name == "" {
		return toolkit.Error("name is required", args)
	}
	limit := args.Limit
	if limit <= 0 {
		limit = 20
	}

	logs, err := client.CloudWatchLogs()
	if err != nil {
		return toolkit.Errorf(args, "cloudwatch logs client: %v", err)
	}

	end := time.Now()
	start := end.Add(-parseWindow(args.Window))
	group := fmt.Sprintf("/aws/lambda/%s", args.Name)

	out, err := logs.FilterLogEvents(ctx, &cloudwatchlogs.FilterLogEventsInput{
		LogGroupName:  aws.String(group),
		FilterPattern: aws.String("?ERROR ?Exception ?\"Task timed out\""),
		StartTime:     aws.Int64(start.UnixMilli()),
		EndTime:       aws.Int64(end.UnixMilli()),
		Limit:         aws.Int32(int32(limit)),
	})
	if err != nil {
		return toolkit.Errorf(args, "FilterLogEvents: %v", err)
	}

	events := make([]map[string]interface{}, 0, len(out.Events))
	for _, e := range out.Events {
		events = append(events, map[string]interface{}{
			"timestamp": aws.ToInt64(e.Timestamp),
			"message":   aws.ToString(e.Message),
		})
	}

	return toolkit.Success(args, map[string]interface{}{"failedInvocations": events})
}

func GetFunctionVersionHistory(ctx context.Context, client *cloudclient.Client, raw json.RawMessage) string {
	var args limitArgs
	if errEnv, ok := toolkit.Decode(raw, &args); !ok {
		return errEnv
	}
	if args.Name == "" {
		return toolkit.Error("name is required", args)
	}
	limit := args.Limit
	if limit <= 0 {
		limit = 10
	}

	lam, err := client.Lambda()
	if err != nil {
		return toolkit.Errorf(args, "lambda client: %v", err)
	}

	out, err := lam.ListVersionsByFunction(ctx, &lambda.ListVersionsByFunctionInput{
		FunctionName: aws.String(args.Name),
		MaxItems:     aws.Int32(int32(limit)),
	})
	if err != nil {
		return toolkit.Errorf(args, "ListVersionsByFunction: %v", err)
	}

	versions := make([]map[string]interface{}, 0, len(out.Versions))
	for _, v := range out.Versions {
		versions = append(versions, map[string]interface{}{
			"version":      aws.ToString(v.Version),
			"lastModified": aws.ToString(v.LastModified),
			"description":  aws.ToString(v.Description),
		})
	}

	return toolkit.Success(args, map[string]interface{}{"versions": versions})
}
