// Package gatewaytools implements the API gateway tool family: stage
// configuration, parsed access logs, metrics, name-to-id resolution
// (cached), and deployment history.
package gatewaytools

import (
	"context"
	"encoding/json"
	"regexp"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/apigateway"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/arclight-labs/rca-engine/internal/cloudclient"
	"github.com/arclight-labs/rca-engine/internal/tools/toolkit"
)

// apiIDPattern matches the 10-character lowercase alphanumeric API Gateway
// REST API id; anything else is treated as a human-assigned name that
// needs resolving.
var apiIDPattern = regexp.MustCompile(`^[a-z0-9]{10}$`)

// idCache memoizes name -> id resolutions for the process lifetime. It
// never holds investigation facts, only this pure lookup, per §4.5.
var idCache, _ = lru.New[string, string](256)

type stageArgs struct {
	APIID string `json:"apiId"`
	Stage string `json:"stage"`
}

func GetStageConfig(ctx context.Context, client *cloudclient.Client, raw json.RawMessage) string {
	var args stageArgs
	if errEnv, ok := toolkit.Decode(raw, &args); !ok {
		return errEnv
	}
	if args.APIID == "" || args.Stage == "" {
		return toolkit.Error("apiId and stage are required", args)
	}

	gw, err := client.APIGateway()
	if err != nil {
		return toolkit.Errorf(args, "apigateway client: %v", err)
	}

	out, err := gw.GetStage(ctx, &apigateway.GetStageInput{RestApiId: aws.String(args.APIID), StageName: aws.String(args.Stage)})
	if err != nil {
		return toolkit.Errorf(args, "GetStage: %v", err)
	}

	return toolkit.Success(args, map[string]interface{}{
		"deploymentId": aws.ToString(out.DeploymentId),
		"cacheEnabled": aws.ToBool(out.CacheClusterEnabled),
		"tracingEnabled": out.TracingEnabled,
		"variables":    out.Variables,
	})
}

type windowLimitArgs struct {
	APIID  string `json:"apiId"`
	Stage  string `json:"stage"`
	Window string `json:"window"`
	Limit  int    `json:"limit"`
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

func GetAccessLogsParsed(ctx context.Context, client *cloudclient.Client, raw json.RawMessage) string {
	var args windowLimitArgs
	if errEnv, ok := toolkit.Decode(raw, &args); !ok {
		return errEnv
	}
	if args.APIID == "" || args.Stage == "" {
		return toolkit.Error("apiId and stage are required", args)
	}
	limit := args.Limit
	if limit <= 0 {
		limit = 50
	}

	logs, err := client.CloudWatchLogs()
	if err != nil {
		return toolkit.Errorf(args, "cloudwatch logs client: %v", err)
	}

	end := time.Now()
	start := end.Add(-parseWindow(args.Window))
	group := "API-Gateway-Execution-Logs_" + args.APIID + "/" + args.Stage

	out, err := logs.FilterLogEvents(ctx, &cloudwatchlogs.FilterLogEventsInput{
		LogGroupName: aws.String(group),
		StartTime:    aws.Int64(start.UnixMilli()),
		EndTime:      aws.Int64(end.UnixMilli()),
		Limit:        aws.Int32(int32(limit)),
	})
	if err != nil {
		return toolkit.Errorf(args, "FilterLogEvents: %v", err)
	}

	entries := make([]map[string]interface{}, 0, len(out.Events))
	for _, e := range out.Events {
		entries = append(entries, map[string]interface{}{
			"timestamp": aws.ToInt64(e.Timestamp),
			"message":   aws.ToString(e.Message),
		})
	}

	return toolkit.Success(args, map[string]interface{}{"accessLogs": entries})
}

func GetMetrics(ctx context.Context, client *cloudclient.Client, raw json.RawMessage) string {
	var args windowLimitArgs
	if errEnv, ok := toolkit.Decode(raw, &args); !ok {
		return errEnv
	}
	if args.APIID == "" || args.Stage == "" {
		return toolkit.Error("apiId and stage are required", args)
	}

	cw, err := client.CloudWatch()
	if err != nil {
		return toolkit.Errorf(args, "cloudwatch client: %v", err)
	}

	end := time.Now()
	start := end.Add(-parseWindow(args.Window))
	dims := []cwtypes.Dimension{
		{Name: aws.String("ApiName"), Value: aws.String(args.APIID)},
		{Name: aws.String("Stage"), Value: aws.String(args.Stage)},
	}

	metrics := map[string]interface{}{}
	for _, m := range []string{"4XXError", "5XXError", "Latency", "Count"} {
		out, err := cw.GetMetricStatistics(ctx, &cloudwatch.GetMetricStatisticsInput{
			Namespace:  aws.String("AWS/ApiGateway"),
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

type nameOrIDArgs struct {
	NameOrID string `json:"nameOrId"`
}

// ResolveAPIID resolves a human-readable API name to its REST API id,
// memoizing successful lookups in a process-lifetime LRU cache.
func ResolveAPIID(ctx context.Context, client *cloudclient.Client, raw json.RawMessage) string {
	var args nameOrIDArgs
	if errEnv, ok := toolkit.Decode(raw, &args); !ok {
		return errEnv
	}
	if args.NameOrID == "" {
		return toolkit.Error("nameOrId is required", args)
	}

	if apiIDPattern.MatchString(args.NameOrID) {
		return toolkit.Success(args, map[string]interface{}{"apiId": args.NameOrID})
	}

	if cached, ok := idCache.Get(args.NameOrID); ok {
		return toolkit.Success(args, map[string]interface{}{"apiId": cached, "cached": true})
	}

	gw, err := client.APIGateway()
	if err != nil {
		return toolkit.Errorf(args, "apigateway client: %v", err)
	}

	var position *string
	for {
		out, err := gw.GetRestApis(ctx, &apigateway.GetRestApisInput{Position: position, Limit: aws.Int32(500)})
		if err != nil {
			return toolkit.Errorf(args, "GetRestApis: %v", err)
		}
		for _, api := range out.Items {
			if aws.ToString(api.Name) == args.NameOrID {
				idCache.Add(args.NameOrID, aws.ToString(api.Id))
				return toolkit.Success(args, map[string]interface{}{"apiId": aws.ToString(api.Id)})
			}
		}
		if out.Position == nil || *out.Position == "" {
			break
		}
		position = out.Position
	}

	return toolkit.Error("no API found matching name "+args.NameOrID, args)
}

type deploymentArgs struct {
	APIID string `json:"apiId"`
	Limit int    `json:"limit"`
}

func GetDeploymentHistory(ctx context.Context, client *cloudclient.Client, raw json.RawMessage) string {
	var args deploymentArgs
	if errEnv, ok := toolkit.Decode(raw, &args); !ok {
		return errEnv
	}
	if args.APIID == "" {
		return toolkit.Error("apiId is required", args)
	}
	limit := args.Limit
	if limit <= 0 {
		limit = 20
	}

	gw, err := client.APIGateway()
	if err != nil {
		return toolkit.Errorf(args, "apigateway client: %v", err)
	}

	out, err := gw.GetDeployments(ctx, &apigateway.GetDeploymentsInput{RestApiId: aws.String(args.APIID), Limit: aws.Int32(int32(limit))})
	if err != nil {
		return toolkit.Errorf(args, "GetDeployments: %v", err)
	}

	deployments := make([]map[string]interface{}, 0, len(out.Items))
	for _, d := range out.Items {
		deployments = append(deployments, map[string]interface{}{
			"id":        aws.ToString(d.Id),
			"createdAt": d.CreatedDate,
			"description": aws.ToString(d.Description),
		})
	}

	return toolkit.Success(args, map[string]interface{}{"deployments": deployments})
}
