// Package tracetools implements the trace tool family: fetching a single
// distributed trace, resolving the resources it touched, the service
// graph for a time window, and trace-scoped log search.
package tracetools

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs"
	"github.com/aws/aws-sdk-go-v2/service/xray"
	xraytypes "github.com/aws/aws-sdk-go-v2/service/xray/types"

	"github.com/arclight-labs/rca-engine/internal/cloudclient"
	"github.com/arclight-labs/rca-engine/internal/tools/toolkit"
)

type traceArgs struct {
	TraceID string `json:"traceId"`
}

// GetTrace fetches a single X-Ray trace by id and returns its duration,
// segment count, and the raw segment documents for deep analysis.
func GetTrace(ctx context.Context, client *cloudclient.Client, raw json.RawMessage) string {
	var args traceArgs
	if errEnv, ok := toolkit.Decode(raw, &args); !ok {
		return errEnv
	}
	if args.TraceID == "" {
		return toolkit.Error("traceId is required", args)
	}

	xr, err := client.XRay()
	if err != nil {
		return toolkit.Errorf(args, "xray client: %v", err)
	}

	out, err := xr.BatchGetTraces(ctx, &xray.BatchGetTracesInput{TraceIds: []string{args.TraceID}})
	if err != nil {
		return toolkit.Errorf(args, "BatchGetTraces: %v", err)
	}
	if len(out.Traces) == 0 {
		return toolkit.Error("trace not found", args)
	}

	t := out.Traces[0]
	segments := make([]map[string]interface{}, 0, len(t.Segments))
	for _, seg := range t.Segments {
		if seg.Document == nil {
			continue
		}
		segments = append(segments, map[string]interface{}{
			"id":       aws.ToString(seg.Id),
			"document": aws.ToString(seg.Document),
		})
	}

	return toolkit.Success(args, map[string]interface{}{
		"durationSeconds": t.Duration,
		"segmentCount":    len(t.Segments),
		"segments":        segments,
	})
}

// GetAllResourcesFromTrace reads a trace's top-level segment documents and
// returns every distinct resource name/type pair among them, for resource
// discovery (C5). Subsegments are not walked.
func GetAllResourcesFromTrace(ctx context.Context, client *cloudclient.Client, raw json.RawMessage) string {
	var args traceArgs
	if errEnv, ok := toolkit.Decode(raw, &args); !ok {
		return errEnv
	}
	if args.TraceID == "" {
		return toolkit.Error("traceId is required", args)
	}

	xr, err := client.XRay()
	if err != nil {
		return toolkit.Errorf(args, "xray client: %v", err)
	}

	out, err := xr.BatchGetTraces(ctx, &xray.BatchGetTracesInput{TraceIds: []string{args.TraceID}})
	if err != nil {
		return toolkit.Errorf(args, "BatchGetTraces: %v", err)
	}
	if len(out.Traces) == 0 {
		return toolkit.Error("trace not found", args)
	}

	seen := map[string]bool{}
	resources := make([]map[string]interface{}, 0)
	for _, seg := range t0Segments(out.Traces[0]) {
		name, typ := classifySegment(seg)
		if name == "" {
			continue
		}
		key := typ + ":" + name
		if seen[key] {
			continue
		}
		seen[key] = true
		resources = append(resources, map[string]interface{}{"type": typ, "name": name})
	}

	return toolkit.Success(args, map[string]interface{}{"resources": resources})
}

type segmentDoc struct {
	Name    string `json:"name"`
	Origin  string `json:"origin"`
	AWS     map[string]interface{} `json:"aws"`
	HTTP    *struct {
		Response *struct {
			Status int `json:"status"`
		} `json:"response"`
	} `json:"http"`
	Fault        bool   `json:"fault"`
	Error        bool   `json:"error"`
	Cause        *struct {
		Exceptions []struct {
			Message string `json:"message"`
		} `json:"exceptions"`
	} `json:"cause"`
	Subsegments []json.RawMessage `json:"subsegments"`
}

func t0Segments(t xraytypes.Trace) []segmentDoc {
	docs := make([]segmentDoc, 0, len(t.Segments))
	for _, seg := range t.Segments {
		if seg.Document == nil {
			continue
		}
		var doc segmentDoc
		if err := json.Unmarshal([]byte(aws.ToString(seg.Document)), &doc); err != nil {
			continue
		}
		docs = append(docs, doc)
	}
	return docs
}

func classifySegment(seg segmentDoc) (name, typ string) {
	if seg.Name == "" {
		return "", ""
	}
	switch {
	case seg.Origin != "":
		return seg.Name, awsOriginToType(seg.Origin)
	default:
		return seg.Name, "unknown"
	}
}

func awsOriginToType(origin string) string {
	switch origin {
	case "AWS::Lambda::Function":
		return "compute"
	case "AWS::ApiGateway::Stage":
		return "gateway"
	case "AWS::States::StateMachine":
		return "workflow"
	case "AWS::DynamoDB::Table":
		return "keyvalue"
	case "AWS::S3::Bucket":
		return "storage"
	case "AWS::SQS::Queue":
		return "queue"
	case "AWS::SNS::Topic":
		return "topic"
	case "AWS::RDS::DBInstance":
		return "relational"
	default:
		return "unknown"
	}
}

type windowArgs struct {
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

// GetServiceGraph returns the X-Ray service graph for a time window,
// summarized as node name, type, and error/fault/ok request counts.
func GetServiceGraph(ctx context.Context, client *cloudclient.Client, raw json.RawMessage) string {
	var args windowArgs
	if errEnv, ok := toolkit.Decode(raw, &args); !ok {
		return errEnv
	}

	xr, err := client.XRay()
	if err != nil {
		return toolkit.Errorf(args, "xray client: %v", err)
	}

	end := time.Now()
	start := end.Add(-parseWindow(args.Window))

	out, err := xr.GetServiceGraph(ctx, &xray.GetServiceGraphInput{StartTime: aws.Time(start), EndTime: aws.Time(end)})
	if err != nil {
		return toolkit.Errorf(args, "GetServiceGraph: %v", err)
	}

	services := make([]map[string]interface{}, 0, len(out.Services))
	for _, s := range out.Services {
		services = append(services, map[string]interface{}{
			"name":   aws.ToString(s.Name),
			"type":   aws.ToString(s.Type),
			"state":  string(s.State),
			"edges":  len(s.Edges),
		})
	}

	return toolkit.Success(args, map[string]interface{}{"services": services})
}

type traceLogArgs struct {
	TraceID string `json:"traceId"`
	LogGroup string `json:"logGroup"`
	Window   string `json:"window"`
}

// QueryLogsByTraceID searches a CloudWatch Logs group for entries
// referencing the given trace id within a window.
func QueryLogsByTraceID(ctx context.Context, client *cloudclient.Client, raw json.RawMessage) string {
	var args traceLogArgs
	if errEnv, ok := toolkit.Decode(raw, &args); !ok {
		return errEnv
	}
	if args.TraceID == "" || args.LogGroup == "" {
		return toolkit.Error("traceId and logGroup are required", args)
	}

	logs, err := client.CloudWatchLogs()
	if err != nil {
		return toolkit.Errorf(args, "cloudwatch logs client: %v", err)
	}

	end := time.Now()
	start := end.Add(-parseWindow(args.Window))

	out, err := logs.FilterLogEvents(ctx, &cloudwatchlogs.FilterLogEventsInput{
		LogGroupName:  aws.String(args.LogGroup),
		FilterPattern: aws.String(fmt.Sprintf("%q", args.TraceID)),
		StartTime:     aws.Int64(start.UnixMilli()),
		EndTime:       aws.Int64(end.UnixMilli()),
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
