// Package queuetools implements the queue tool family (SQS): queue
// attributes/configuration and depth/age metrics.
package queuetools

import (
	"context"
	"encoding/json"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	sqstypes "github.com/aws/aws-sdk-go-v2/service/sqs/types"

	"github.com/arclight-labs/rca-engine/internal/cloudclient"
	"github.com/arclight-labs/rca-engine/internal/tools/toolkit"
)

type queueArgs struct {
	QueueURL string `json:"queueUrl"`
}

func GetQueueConfig(ctx context.Context, client *cloudclient.Client, raw json.RawMessage) string {
	var args queueArgs
	if errEnv, ok := toolkit.Decode(raw, &args); !ok {
		return errEnv
	}
	if args.QueueURL == "" {
		return toolkit.Error("queueUrl is required", args)
	}

	q, err := client.SQS()
	if err != nil {
		return toolkit.Errorf(args, "sqs client: %v", err)
	}

	out, err := q.GetQueueAttributes(ctx, &sqs.GetQueueAttributesInput{
		QueueUrl:       aws.String(args.QueueURL),
		AttributeNames: []sqstypes.QueueAttributeName{sqstypes.QueueAttributeNameAll},
	})
	if err != nil {
		return toolkit.Errorf(args, "GetQueueAttributes: %v", err)
	}

	return toolkit.Success(args, map[string]interface{}{"attributes": out.Attributes})
}

type queueWindowArgs struct {
	QueueName string `json:"queueName"`
	Window    string `json:"window"`
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

func GetQueueMetrics(ctx context.Context, client *cloudclient.Client, raw json.RawMessage) string {
	var args queueWindowArgs
	if errEnv, ok := toolkit.Decode(raw, &args); !ok {
		return errEnv
	}
	if args.QueueName == "" {
		return toolkit.Error("queueName is required", args)
	}

	cw, err := client.CloudWatch()
	if err != nil {
		return toolkit.Errorf(args, "cloudwatch client: %v", err)
	}

	end := time.Now()
	start := end.Add(-parseWindow(args.Window))
	dims := []cwtypes.Dimension{{Name: aws.String("QueueName"), Value: aws.String(args.QueueName)}}

	metrics := map[string]interface{}{}
	for _, m := range []string{"ApproximateNumberOfMessagesVisible", "ApproximateAgeOfOldestMessage", "NumberOfMessagesSent", "NumberOfMessagesDeleted"} {
		out, err := cw.GetMetricStatistics(ctx, &cloudwatch.GetMetricStatisticsInput{
			Namespace:  aws.String("AWS/SQS"),
			MetricName: aws.String(m),
			Dimensions: dims,
			StartTime:  aws.Time(start),
			EndTime:    aws.Time(end),
			Period:     aws.Int32(300),
			Statistics: []cwtypes.Statistic{cwtypes.StatisticMaximum, cwtypes.StatisticAverage},
		})
		if err != nil {
			continue
		}
		points := make([]map[string]interface{}, 0, len(out.Datapoints))
		for _, dp := range out.Datapoints {
			points = append(points, map[string]interface{}{
				"timestamp": dp.Timestamp,
				"maximum":   aws.ToFloat64(dp.Maximum),
				"average":   aws.ToFloat64(dp.Average),
			})
		}
		metrics[m] = points
	}

	return toolkit.Success(args, map[string]interface{}{"metrics": metrics})
}
