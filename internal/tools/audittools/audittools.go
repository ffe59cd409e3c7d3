// Package audittools implements the optional audit-trail tool:
// get_recent_audit_events. Failures here must never fail an
// investigation step; they simply yield no fact.
package audittools

import (
	"context"
	"encoding/json"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudtrail"
	"github.com/aws/aws-sdk-go-v2/service/cloudtrail/types"

	"github.com/arclight-labs/rca-engine/internal/cloudclient"
	"github.com/arclight-labs/rca-engine/internal/tools/toolkit"
)

type auditArgs struct {
	ResourceName string `json:"resourceName"`
	Window       string `json:"window"`
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

func GetRecentAuditEvents(ctx context.Context, client *cloudclient.Client, raw json.RawMessage) string {
	var args auditArgs
	if errEnv, ok := toolkit.Decode(raw, &args); !ok {
		return errEnv
	}
	if args.ResourceName == "" {
		return toolkit.Error("resourceName is required", args)
	}

	ct, err := client.CloudTrail()
	if err != nil {
		return toolkit.Errorf(args, "cloudtrail client: %v", err)
	}

	end := time.Now()
	start := end.Add(-parseWindow(args.Window))

	out, err := ct.LookupEvents(ctx, &cloudtrail.LookupEventsInput{
		StartTime: aws.Time(start),
		EndTime:   aws.Time(end),
		LookupAttributes: []types.LookupAttribute{
			{AttributeKey: types.LookupAttributeKeyResourceName, AttributeValue: aws.String(args.ResourceName)},
		},
	})
	if err != nil {
		return toolkit.Errorf(args, "LookupEvents: %v", err)
	}

	events := make([]map[string]interface{}, 0, len(out.Events))
	for _, e := range out.Events {
		events = append(events, map[string]interface{}{
			"eventName": aws.ToString(e.EventName),
			"eventTime": e.EventTime,
			"username":  aws.ToString(e.Username),
		})
	}

	return toolkit.Success(args, map[string]interface{}{
		"events":     events,
		"eventCount": len(events),
	})
}
