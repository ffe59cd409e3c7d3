// Package eventbustools implements the event bus tool family
// (EventBridge): rule configuration and delivery/failure metrics.
package eventbustools

import (
	"context"
	"encoding/json"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge"

	"github.com/arclight-labs/rca-engine/internal/cloudclient"
	"github.com/arclight-labs/rca-engine/internal/tools/toolkit"
)

type ruleArgs struct {
	BusName string `json:"busName"`
	Rule    string `json:"rule"`
}

func GetRuleConfig(ctx context.Context, client *cloudclient.Client, raw json.RawMessage) string {
	var args ruleArgs
	if errEnv, ok := toolkit.Decode(raw, &args); !ok {
		return errEnv
	}
	if args.Rule == "" {
		return toolkit.Error("rule is required", args)
	}

	eb, err := client.EventBridge()
	if err != nil {
		return toolkit.Errorf(args, "eventbridge client: %v", err)
	}

	in := &eventbridge.DescribeRuleInput{Name: aws.String(args.Rule)}
	if args.BusName != "" {
		in.EventBusName = aws.String(args.BusName)
	}

	out, err := eb.DescribeRule(ctx, in)
	if err != nil {
		return toolkit.Errorf(args, "DescribeRule: %v", err)
	}

	return toolkit.Success(args, map[string]interface{}{
		"state":        string(out.State),
		"eventPattern": aws.ToString(out.EventPattern),
		"scheduleExpression": aws.ToString(out.ScheduleExpression),
	})
}

type ruleWindowArgs struct {
	Rule   string `json:"rule"`
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

func GetBusMetrics(ctx context.Context, client *cloudclient.Client, raw json.RawMessage) string {
	var args ruleWindowArgs
	if errEnv, ok := toolkit.Decode(raw, &args); !ok {
		return errEnv
	}
	if args.Rule == "" {
		return toolkit.Error("rule is required", args)
	}

	cw, err := client.CloudWatch()
	if err != nil {
		return toolkit.Errorf(args, "cloudwatch client: %v", err)
	}

	end := time.Now()
	start := end.Add(-parseWindow(args.Window))
	dims := []cwtypes.Dimension{{Name: aws.String("RuleName"), Value: aws.String(args.Rule)}}

	metrics := map[string]interface{}{}
	for _, m := range []string{"FailedInvocations", "Invocations", "ThrottledRules"} {
		out, err := cw.GetMetricStatistics(ctx, &cloudwatch.GetMetricStatisticsInput{
			Namespace:  aws.String("AWS/Events"),
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
