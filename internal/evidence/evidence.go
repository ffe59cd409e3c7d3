// Package evidence implements the evidence collector (C6): a deterministic,
// bounded, parallel fan-out over discovered resources and trace ids. Each
// resource kind has a specialist that calls a handful of tools and maps
// their JSON responses to Facts; a separate routine performs trace deep
// analysis. Output is capped globally and per resource.
package evidence

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/arclight-labs/rca-engine/internal/cloudclient"
	"github.com/arclight-labs/rca-engine/internal/config"
	"github.com/arclight-labs/rca-engine/internal/investigation"
	"github.com/arclight-labs/rca-engine/internal/logging"
	"github.com/arclight-labs/rca-engine/internal/tools"
)

var log = logging.Get("evidence")

// MaxPerResource bounds the facts a single resource's specialist may
// contribute, before trace-derived facts are added.
const MaxPerResource = 10

// MaxGlobal bounds the total fact count returned by Collect.
const MaxGlobal = 50

// optionalAuditTopN bounds how many resources get an audit-trail lookup.
const optionalAuditTopN = 5

// sink is the single append-safe facts aggregator shared by every
// specialist and the trace analyzer. No fact is ever read back by a
// specialist; writes are serialized by mu.
type sink struct {
	mu          sync.Mutex
	facts       []investigation.Fact
	perResource map[string]int
}

func newSink() *sink {
	return &sink{perResource: map[string]int{}}
}

// add appends f if the global and per-resource caps allow it. resourceKey
// empty means a trace-derived or collector-level fact, not subject to the
// per-resource cap.
func (s *sink) add(resourceKey string, f investigation.Fact) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.facts) >= MaxGlobal {
		return
	}
	if resourceKey != "" && s.perResource[resourceKey] >= MaxPerResource {
		return
	}

	f.ResourceKey = resourceKey
	s.facts = append(s.facts, f)
	if resourceKey != "" {
		s.perResource[resourceKey]++
	}
}

func (s *sink) drain() []investigation.Fact {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]investigation.Fact, len(s.facts))
	copy(out, s.facts)
	return out
}

// Collect runs every resource specialist and trace analyzer concurrently,
// bounded by cfg.MaxConcurrentTools and cfg.CollectorDeadlineSeconds.
// Specialist and trace failures are non-fatal: a failing tool call yields
// an explanatory Fact rather than aborting collection.
func Collect(ctx context.Context, registry *tools.Registry, client *cloudclient.Client, resources []investigation.Resource, in *investigation.ParsedInputs, cfg *config.Config) []investigation.Fact {
	ctx, cancel := context.WithTimeout(ctx, time.Duration(cfg.CollectorDeadlineSeconds)*time.Second)
	defer cancel()

	s := newSink()

	runOptionalChecks(ctx, registry, client, resources, s)

	g, gctx := errgroup.WithContext(ctx)
	if cfg.MaxConcurrentTools > 0 {
		g.SetLimit(cfg.MaxConcurrentTools)
	}

	for _, r := range resources {
		r := r
		g.Go(func() error {
			runSpecialist(gctx, registry, client, r, s)
			return nil
		})
	}

	for _, traceID := range in.TraceIDs {
		traceID := traceID
		g.Go(func() error {
			analyzeTrace(gctx, registry, client, traceID, s)
			return nil
		})
	}

	// Every goroutine above swallows its own errors into Facts, so g.Wait
	// only ever reports context cancellation/deadline.
	_ = g.Wait()

	facts := s.drain()
	if ctx.Err() != nil {
		facts = appendDeadlineExceededFact(facts)
		log.Warn("evidence collection deadline exceeded", logging.F("factCount", len(facts)))
	}
	return facts
}

// appendDeadlineExceededFact appends the synthetic deadline-exceeded fact,
// unless facts is already at MaxGlobal: the 0<=len(facts)<=MaxGlobal
// invariant holds regardless of whether collection finished or timed out.
func appendDeadlineExceededFact(facts []investigation.Fact) []investigation.Fact {
	if len(facts) >= MaxGlobal {
		return facts
	}
	return append(facts, investigation.Fact{
		Source:     "collector",
		Content:    "evidence collection deadline exceeded; returning partial results",
		Confidence: 1.0,
	})
}

func summarize(decoded map[string]interface{}) string {
	const maxLen = 600
	b, err := json.Marshal(decoded)
	if err != nil {
		return fmt.Sprintf("%v", decoded)
	}
	s := string(b)
	if len(s) > maxLen {
		s = s[:maxLen]
	}
	return s
}
