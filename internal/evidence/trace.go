package evidence

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/arclight-labs/rca-engine/internal/cloudclient"
	"github.com/arclight-labs/rca-engine/internal/investigation"
	"github.com/arclight-labs/rca-engine/internal/tools"
)

// segmentDoc mirrors the X-Ray segment document shape: the fields the
// trace-deep-analysis routine inspects, nothing more.
type segmentDoc struct {
	Name      string `json:"name"`
	Namespace string `json:"namespace"`
	HTTP      *struct {
		Response *struct {
			Status int `json:"status"`
		} `json:"response"`
	} `json:"http"`
	Fault bool `json:"fault"`
	Error bool `json:"error"`
	Cause *struct {
		Exceptions []struct {
			Message string `json:"message"`
		} `json:"exceptions"`
	} `json:"cause"`
	Subsegments []json.RawMessage `json:"subsegments"`
}

// analyzeTrace fetches a full trace and emits facts per §4.6's trace deep
// analysis: a duration/segment-count summary, one confidence=0.95 fact per
// HTTP error or exception, a fault/error segment-name summary, and one
// confidence=0.8 fact per service-to-service call. A tool failure yields a
// single confidence=0.8 fact rather than aborting collection.
func analyzeTrace(ctx context.Context, registry *tools.Registry, client *cloudclient.Client, traceID string, s *sink) {
	args, err := json.Marshal(map[string]string{"traceId": traceID})
	if err != nil {
		return
	}
	raw := registry.Execute(ctx, client, "get_trace", args)

	var result struct {
		Error           string  `json:"error"`
		DurationSeconds float64 `json:"durationSeconds"`
		SegmentCount    int     `json:"segmentCount"`
		Segments        []struct {
			ID       string `json:"id"`
			Document string `json:"document"`
		} `json:"segments"`
	}
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		s.add("", investigation.Fact{
			Source:     "trace_analysis_error",
			Content:    fmt.Sprintf("trace %s: could not decode get_trace result", traceID),
			Confidence: 0.8,
		})
		return
	}
	if result.Error != "" {
		s.add("", investigation.Fact{
			Source:     "trace_analysis_error",
			Content:    fmt.Sprintf("trace %s: %s", traceID, result.Error),
			Confidence: 0.8,
		})
		return
	}

	s.add("", investigation.Fact{
		Source:     "trace_summary",
		Content:    fmt.Sprintf("trace %s: duration=%.3fs segments=%d", traceID, result.DurationSeconds, result.SegmentCount),
		Confidence: 0.6,
	})

	var faultSegments []string
	for _, seg := range result.Segments {
		var doc segmentDoc
		if err := json.Unmarshal([]byte(seg.Document), &doc); err != nil {
			continue
		}
		analyzeSegment(traceID, doc, s, &faultSegments)
	}

	if len(faultSegments) > 0 {
		s.add("", investigation.Fact{
			Source:     "trace_fault_summary",
			Content:    fmt.Sprintf("trace %s: fault/error segments: %v", traceID, faultSegments),
			Confidence: 0.9,
		})
	}
}

func analyzeSegment(traceID string, doc segmentDoc, s *sink, faultSegments *[]string) {
	if doc.HTTP != nil && doc.HTTP.Response != nil && doc.HTTP.Response.Status >= 400 {
		s.add("", investigation.Fact{
			Source:     "trace_http_error",
			Content:    fmt.Sprintf("trace %s: segment %q returned HTTP %d", traceID, doc.Name, doc.HTTP.Response.Status),
			Confidence: 0.95,
		})
	}

	if doc.Fault || doc.Error {
		*faultSegments = append(*faultSegments, doc.Name)
	}

	if doc.Cause != nil {
		for _, exc := range doc.Cause.Exceptions {
			if exc.Message == "" {
				continue
			}
			s.add("", investigation.Fact{
				Source:     "trace_exception",
				Content:    fmt.Sprintf("trace %s: segment %q raised %q", traceID, doc.Name, exc.Message),
				Confidence: 0.95,
			})
		}
	}

	for _, rawSub := range doc.Subsegments {
		var sub segmentDoc
		if err := json.Unmarshal(rawSub, &sub); err != nil {
			continue
		}
		if sub.Namespace == "remote" {
			status := 0
			if sub.HTTP != nil && sub.HTTP.Response != nil {
				status = sub.HTTP.Response.Status
			}
			s.add("", investigation.Fact{
				Source:     "trace_downstream_call",
				Content:    fmt.Sprintf("trace %s: %q invoked %q (status %d)", traceID, doc.Name, sub.Name, status),
				Confidence: 0.8,
			})
		}
		analyzeSegment(traceID, sub, s, faultSegments)
	}
}
