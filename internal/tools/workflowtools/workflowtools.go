// Package workflowtools implements the workflow-engine tool family (AWS
// Step Functions): state machine definitions, execution details, recent
// executions, metrics, and logs.
package workflowtools

import (
	"context"
	"encoding/json"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs"
	"github.com/aws/aws-sdk-go-v2/service/sfn"
	sfntypes "github.com/aws/aws-sdk-go-v2/service/sfn/types"

	"github.com/arclight-labs/rca-engine/internal/cloudclient"
	"github.com/arclight-labs/rca-engine/internal/tools/toolkit"
)

type arnArgs struct {
	ARN string `json:"arn"`
}

func GetDefinition(ctx context.Context, client *cloudclient.Client, raw json.RawMessage) string {
	var args arnArgs
	if errEnv, ok := toolkit.Decode(raw, &args); !ok {
		return errEnv
	}
	if args.ARN == "" {
		return toolkit.Error("arn is required", args)
	}

	wf, err := client.StepFunctions()
	if err != nil {
		return toolkit.Errorf(args, "stepfunctions client: %v", err)
	}

	out, err := wf.DescribeStateMachine(ctx, &sfn.DescribeStateMachineInput{StateMachineArn: aws.String(args.ARN)})
	if err != nil {
		return toolkit.Errorf(args, "DescribeStateMachine: %v", err)
	}

	return toolkit.Success(args, map[string]interface{}{
		"name":       aws.ToString(out.Name),
		"status":     string(out.Status),
		"type":       string(out.Type),
		"definition": aws.ToString(out.Definition),
	})
}

type executionArgs struct {
	ExecutionARN string `json:"executionArn"`
}

func GetExecutionDetails(ctx context.Context, client *cloudclient.Client, raw json.RawMessage) string {
	var args executionArgs
	if errEnv, ok := toolkit.Decode(raw, &args); !ok {
		return errEnv
	}
	if args.ExecutionARN == "" {
		return toolkit.Error("executionArn is required", args)
	}

	wf, err := client.StepFunctions()
	if err != nil {
		return toolkit.Errorf(args, "stepfunctions client: %v", err)
	}

	out, err := wf.DescribeExecution(ctx, &sfn.DescribeExecutionInput{ExecutionArn: aws.String(args.ExecutionARN)})
	if err != nil {
		return toolkit.Errorf(args, "DescribeExecution: %v", err)
	}

	return toolkit.Success(args, map[string]interface{}{
		"status": string(out.Status),
		"input":  aws.ToString(out.Input),
		"output": aws.ToString(out.Output),
		"error":  aws.ToString(out.Error),
		"cause":  aws.ToString(out.Cause),
	})
}

type listArgs struct {
	ARN          string `json:"arn"`
	StatusFilter string `json:"statusFilter"`
	Limit        int    `json:"limit"`
}

func ListRecentExecutions(ctx context.Context, client *cloudclient.Client, raw json.RawMessage) string {
	var args listArgs
	if errEnv, ok := toolkit.Decode(raw, &args); !ok {
		return errEnv
	}
	if args.ARN == "" {
		return toolkit.Error("arn is required", args)
	}
	limit := args.Limit
	if limit <= 0 {
		limit = 20
	}

	wf, err := client.StepFunctions()
	if err != nil {
		return toolkit.Errorf(args, "stepfunctions client: %v", err)
	}

	in := &sfn.ListExecutionsInput{StateMachineArn: aws.String(args.ARN), MaxResults: int32(limit)}
	if args.StatusFilter != "" {
		in.StatusFilter = sfntypes.ExecutionStatus(args.StatusFilter)
	}

	out, err := wf.ListExecutions(ctx, in)
	if err != nil {
		return toolkit.Errorf(args, "ListExecutions: %v", err)
	}

	executions := make([]map[string]interface{}, 0, len(out.Executions))
	for _, e := range out.Executions {
		executions = append(executions, map[string]interface{}{
			"executionArn": aws.ToString(e.ExecutionArn),
			"status":       string(e.Status),
			"startDate":    e.StartDate,
			"stopDate":     e.StopDate,
		})
	}

	return toolkit.Success(args, map[string]interface{}{"executions": executions})
}

type windowArgs struct {
	ARN    string `json:"arn"`
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

func GetMetrics(ctx context.Context, client *cloudclient.Client, raw json.RawMessage) string {
	var args windowArgs
	if errEnv, ok := toolkit.Decode(raw, &args); !ok {
		return errEnv
	}
	if args.ARN == "" {
		return toolkit.Error("arn is required", args)
	}

	cw, err := client.CloudWatch()
	if err != nil {
		return toolkit.Errorf(args, "cloudwatch client: %v", err)
	}

	end := time.Now()
	start := end.Add(-parseWindow(args.Window))
	dims := []cwtypes.Dimension{{Name: aws.String("StateMachineArn"), Value: aws.String(args.ARN)}}

	metrics := map[string]interface{}{}
	for _, m := range []string{"ExecutionsFailed", "ExecutionsSucceeded", "ExecutionsTimedOut", "ExecutionTime"} {
		out, err := cw.GetMetricStatistics(ctx, &cloudwatch.GetMetricStatisticsInput{
			Namespace:  aws.String("AWS/States"),
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

func GetLogs(ctx context.Context, client *cloudclient.Client, raw json.RawMessage) string {
	var args windowArgs
	if errEnv, ok := toolkit.Decode(raw, &args); !ok {
		return errEnv
	}
	if args.ARN == "" {
		return toolkit.Error("arn is required", args)
	}

	logs, err := client.CloudWatchLogs()
	if err != nil {
		return toolkit.Errorf(args, "cloudwatch logs client: %v", err)
	}

	end := time.Now()
	start := end.Add(-parseWindow(args.Window))

	out, err := logs.FilterLogEvents(ctx, &cloudwatchlogs.FilterLogEventsInput{
		LogGroupName: aws.String("/aws/states/" + arnSuffix(args.ARN)),
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

func arnSuffix(arn string) string {
	for i := len(arn) - 1; i >= 0; i-- {
		if arn[i] == ':' {
			return arn[i+1:]
		}
	}
	return arn
}
