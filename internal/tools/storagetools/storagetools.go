// Package storagetools implements the object-store tool family (S3):
// bucket configuration and request/error metrics.
package storagetools

import (
	"context"
	"encoding/json"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/arclight-labs/rca-engine/internal/cloudclient"
	"github.com/arclight-labs/rca-engine/internal/tools/toolkit"
)

type bucketArgs struct {
	Bucket string `json:"bucket"`
}

func GetBucketConfig(ctx context.Context, client *cloudclient.Client, raw json.RawMessage) string {
	var args bucketArgs
	if errEnv, ok := toolkit.Decode(raw, &args); !ok {
		return errEnv
	}
	if args.Bucket == "" {
		return toolkit.Error("bucket is required", args)
	}

	s3c, err := client.S3()
	if err != nil {
		return toolkit.Errorf(args, "s3 client: %v", err)
	}

	versioning, err := s3c.GetBucketVersioning(ctx, &s3.GetBucketVersioningInput{Bucket: aws.String(args.Bucket)})
	if err != nil {
		return toolkit.Errorf(args, "GetBucketVersioning: %v", err)
	}

	encryption, err := s3c.GetBucketEncryption(ctx, &s3.GetBucketEncryptionInput{Bucket: aws.String(args.Bucket)})
	encryptionEnabled := err == nil && encryption.ServerSideEncryptionConfiguration != nil

	return toolkit.Success(args, map[string]interface{}{
		"versioningStatus":  string(versioning.Status),
		"encryptionEnabled": encryptionEnabled,
	})
}

type bucketWindowArgs struct {
	Bucket string `json:"bucket"`
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

func GetBucketMetrics(ctx context.Context, client *cloudclient.Client, raw json.RawMessage) string {
	var args bucketWindowArgs
	if errEnv, ok := toolkit.Decode(raw, &args); !ok {
		return errEnv
	}
	if args.Bucket == "" {
		return toolkit.Error("bucket is required", args)
	}

	cw, err := client.CloudWatch()
	if err != nil {
		return toolkit.Errorf(args, "cloudwatch client: %v", err)
	}

	end := time.Now()
	start := end.Add(-parseWindow(args.Window))
	dims := []cwtypes.Dimension{
		{Name: aws.String("BucketName"), Value: aws.String(args.Bucket)},
		{Name: aws.String("FilterId"), Value: aws.String("EntireBucket")},
	}

	metrics := map[string]interface{}{}
	for _, m := range []string{"4xxErrors", "5xxErrors", "AllRequests", "FirstByteLatency"} {
		out, err := cw.GetMetricStatistics(ctx, &cloudwatch.GetMetricStatisticsInput{
			Namespace:  aws.String("AWS/S3"),
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
