// Package healthtools implements the optional service-health tool:
// check_service_health. Failures here must never fail an investigation
// step; they simply yield no fact.
package healthtools

import (
	"context"
	"encoding/json"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/health"
	"github.com/aws/aws-sdk-go-v2/service/health/types"

	"github.com/arclight-labs/rca-engine/internal/cloudclient"
	"github.com/arclight-labs/rca-engine/internal/tools/toolkit"
)

type serviceHealthArgs struct {
	ServiceKey string `json:"serviceKey"`
	Region     string `json:"region"`
}

func CheckServiceHealth(ctx context.Context, client *cloudclient.Client, raw json.RawMessage) string {
	var args serviceHealthArgs
	if errEnv, ok := toolkit.Decode(raw, &args); !ok {
		return errEnv
	}
	if args.ServiceKey == "" {
		return toolkit.Error("serviceKey is required", args)
	}

	h, err := client.Health()
	if err != nil {
		return toolkit.Errorf(args, "health client: %v", err)
	}

	filter := &types.EventFilter{
		Services: []string{args.ServiceKey},
	}
	if args.Region != "" {
		filter.Regions = []string{args.Region}
	}

	out, err := h.DescribeEvents(ctx, &health.DescribeEventsInput{Filter: filter})
	if err != nil {
		return toolkit.Errorf(args, "DescribeEvents: %v", err)
	}

	events := make([]map[string]interface{}, 0, len(out.Events))
	for _, e := range out.Events {
		events = append(events, map[string]interface{}{
			"eventTypeCode": aws.ToString(e.EventTypeCode),
			"statusCode":    string(e.StatusCode),
			"region":        aws.ToString(e.Region),
		})
	}

	return toolkit.Success(args, map[string]interface{}{
		"events":     events,
		"eventCount": len(events),
	})
}
