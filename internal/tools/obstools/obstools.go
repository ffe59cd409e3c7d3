// Package obstools implements generic observability tools not tied to a
// single resource type: arbitrary log-group queries and arbitrary
// CloudWatch metric statistics lookups.
package obstools

import (
	"context"
	"encoding/json"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs"

	"github.com/arclight-labs/rca-engine/internal/cloudclient"
	"github.com/arclight-labs/rca-engine/internal/tools/toolkit"
)

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

type logEventsArgs struct {
	LogGroup      string `json:"logGroup"`
	FilterPattern string `json:"filterPattern"`
	Window        string `json:"window"`
	Limit         int32  `json:"limit"`
}

func GetLogEvents(ctx context.Context, client *cloudclient.Client, raw json.RawMessage) string {
	var args logEventsArgs
	if errEnv, ok := toolkit.Decode(raw, &args); !ok {
		return errEnv
	}
	if args.LogGroup == "" {
		return toolkit.Error("logGroup is required", args)
	}
	if args.Limit <= 0 {
		args.Limit = 50
	}

	cwl, err := client.CloudWatchLogs()
	if err != nil {
		return toolkit.Errorf(args, "cloudwatchlogs client: %v", err)
	}

	end := time.Now()
	start := end.Add(-parseWindow(args.Window))

	in := &cloudwatchlogs.FilterLogEventsInput{
		LogGroupName: aws.String(args.LogGroup),
		StartTime:    aws.Int64(start.UnixMilli()),
		EndTime:      aws.Int64(end.UnixMilli()),
		Limit:        aws.Int32(args.Limit),
	}
	if args.FilterPattern != "" {
		in.FilterPattern = aws.String(args.FilterPattern)
	}

	out, err := cwl.FilterLogEvents(ctx, in)
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

	return toolkit.Success(args, map[string]interface{}{
		"events":     events,
		"eventCount": len(events),
	})
}

type dimensionArg struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type metricStatsArgs struct {
	Namespace  string         `json:"namespace"`
	MetricName string         `json:"metricName"`
	Dimensions []dimensionArg `json:"dimensions"`
	Window     string         `json:"window"`
	Statistic  string         `json:"statistic"`
}

func GetMetricStatistics(ctx context.Context, client *cloudclient.Client, raw json.RawMessage) string {
	var args metricStatsArgs
	if errEnv, ok := toolkit.Decode(raw, &args); !ok {
		return errEnv
	}
	if args.Namespace == "" || args.MetricName == "" {
		return toolkit.Error("namespace and metricName are required", args)
	}

	cw, err := client.CloudWatch()
	if err != nil {
		return toolkit.Errorf(args, "cloudwatch client: %v", err)
	}

	end := time.Now()
	start := end.Add(-parseWindow(args.Window))

	dims := make([]cwtypes.Dimension, 0, len(args.Dimensions))
	for _, d := range args.Dimensions {
		dims = append(dims, cwtypes.Dimension{Name: aws.String(d.Name), Value: aws.String(d.Value)})
	}

	stat := cwtypes.StatisticAverage
	switch args.Statistic {
	case "Sum":
		stat = cwtypes.StatisticSum
	case "Maximum":
		stat = cwtypes.StatisticMaximum
	case "Minimum":
		stat = cwtypes.StatisticMinimum
	}

	out, err := cw.GetMetricStatistics(ctx, &cloudwatch.GetMetricStatisticsInput{
		Namespace:  aws.String(args.Namespace),
		MetricName: aws.String(args.MetricName),
		Dimensions: dims,
		StartTime:  aws.Time(start),
		EndTime:    aws.Time(end),
		Period:     aws.Int32(300),
		Statistics: []cwtypes.Statistic{stat},
	})
	if err != nil {
		return toolkit.Errorf(args, "GetMetricStatistics: %v", err)
	}

	points := make([]map[string]interface{}, 0, len(out.Datapoints))
	for _, dp := range out.Datapoints {
		points = append(points, map[string]interface{}{
			"timestamp": dp.Timestamp,
			"average":   aws.ToFloat64(dp.Average),
			"sum":       aws.ToFloat64(dp.Sum),
			"maximum":   aws.ToFloat64(dp.Maximum),
			"minimum":   aws.ToFloat64(dp.Minimum),
		})
	}

	return toolkit.Success(args, map[string]interface{}{"datapoints": points})
}
