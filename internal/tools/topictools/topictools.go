// Package topictools implements the topic tool family (SNS): topic
// attributes/configuration and delivery metrics.
package topictools

import (
	"context"
	"encoding/json"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	"github.com/aws/aws-sdk-go-v2/service/sns"

	"github.com/arclight-labs/rca-engine/internal/cloudclient"
	"github.com/arclight-labs/rca-engine/internal/tools/toolkit"
)

type topicArgs struct {
	TopicARN string `json:"topicArn"`
}

func GetTopicConfig(ctx context.Context, client *cloudclient.Client, raw json.RawMessage) string {
	var args topicArgs
	if errEnv, ok := toolkit.Decode(raw, &args); !ok {
		return errEnv
	}
	if args.TopicARN == "" {
		return toolkit.Error("topicArn is required", args)
	}

	sn, err := client.SNS()
	if err != nil {
		return toolkit.Errorf(args, "sns client: %v", err)
	}

	out, err := sn.GetTopicAttributes(ctx, &sns.GetTopicAttributesInput{TopicArn: aws.String(args.TopicARN)})
	if err != nil {
		return toolkit.Errorf(args, "GetTopicAttributes: %v", err)
	}

	return toolkit.Success(args, map[string]interface{}{"attributes": out.Attributes})
}

type topicWindowArgs struct {
	TopicName string `json:"topicName"`
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

func GetTopicMetrics(ctx context.Context, client *cloudclient.Client, raw json.RawMessage) string {
	var args topicWindowArgs
	if errEnv, ok := toolkit.Decode(raw, &args); !ok {
		return errEnv
	}
	if args.TopicName == "" {
		return toolkit.Error("topicName is required", args)
	}

	cw, err := client.CloudWatch()
	if err != nil {
		return toolkit.Errorf(args, "cloudwatch client: %v", err)
	}

	end := time.Now()
	start := end.Add(-parseWindow(args.Window))
	dims := []cwtypes.Dimension{{Name: aws.String("TopicName"), Value: aws.String(args.TopicName)}}

	metrics := map[string]interface{}{}
	for _, m := range []string{"NumberOfNotificationsFailed", "NumberOfMessagesPublished", "NumberOfNotificationsDelivered"} {
		out, err := cw.GetMetricStatistics(ctx, &cloudwatch.GetMetricStatisticsInput{
			Namespace:  aws.String("AWS/SNS"),
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
