// Package tools implements the fixed tool registry (C2) available to
// evidence-collection specialists. Every tool is a pure function of the
// shared cloudclient.Client and its JSON arguments; it always returns one
// JSON object, even on failure — callers never see a Go panic.
package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/arclight-labs/rca-engine/internal/cloudclient"
	"github.com/arclight-labs/rca-engine/internal/logging"
)

// MaxResultBytes bounds a single tool's JSON response. Oversize responses
// are truncated so a single noisy tool cannot blow the evidence budget for
// the whole investigation.
const MaxResultBytes = 50 * 1024

// Func is the shape every registered tool implements.
type Func func(ctx context.Context, client *cloudclient.Client, args json.RawMessage) string

// Definition describes one registered tool, including the metadata needed
// to expose it over the optional MCP frontend (internal/tools/mcpfront).
type Definition struct {
	Name        string
	Description string
	InputSchema map[string]interface{}
	Fn          Func
}

// Registry is the fixed set of tools available to the evidence collector
// and, optionally, the MCP debugging frontend. Built once at startup and
// read-only thereafter.
type Registry struct {
	defs map[string]Definition
	log  *logging.Logger
}

// NewRegistry builds an empty registry. Call Register for each tool
// family, or use NewDefaultRegistry to wire every built-in family.
func NewRegistry() *Registry {
	return &Registry{
		defs: make(map[string]Definition),
		log:  logging.Get("tools"),
	}
}

// Register adds one tool definition. Panics on duplicate names — a
// programming error caught at startup, never at investigation time.
func (r *Registry) Register(def Definition) {
	if _, exists := r.defs[def.Name]; exists {
		panic(fmt.Sprintf("tools: duplicate registration for %q", def.Name))
	}
	r.defs[def.Name] = def
	r.log.Debug("registered tool", logging.F("name", def.Name))
}

// Get returns a tool's definition by name.
func (r *Registry) Get(name string) (Definition, bool) {
	def, ok := r.defs[name]
	return def, ok
}

// List returns every registered tool definition, for the MCP frontend and
// for documentation purposes.
func (r *Registry) List() []Definition {
	defs := make([]Definition, 0, len(r.defs))
	for _, d := range r.defs {
		defs = append(defs, d)
	}
	return defs
}

// errorEnvelope is returned (as JSON) when a tool cannot be executed at
// all, or recovers from an unexpected panic inside its body.
type errorEnvelope struct {
	Error string `json:"error"`
}

func errJSON(format string, args ...interface{}) string {
	b, _ := json.Marshal(errorEnvelope{Error: fmt.Sprintf(format, args...)})
	return string(b)
}

// Execute runs the named tool, enforcing the oversize-response truncation
// and converting any unexpected panic into the same error envelope a tool
// would return for an ordinary failure.
func (r *Registry) Execute(ctx context.Context, client *cloudclient.Client, name string, args json.RawMessage) (result string) {
	def, ok := r.Get(name)
	if !ok {
		return errJSON("tool %q not found", name)
	}

	start := time.Now()
	defer func() {
		if rec := recover(); rec != nil {
			r.log.Error("tool panicked", logging.F("tool", name), logging.F("panic", rec))
			result = errJSON("tool %q panicked: %v", name, rec)
		}
		result = truncate(result)
		r.log.Debug("tool executed",
			logging.F("tool", name),
			logging.F("durationMs", time.Since(start).Milliseconds()))
	}()

	return def.Fn(ctx, client, args)
}

// truncate bounds an oversize tool response to MaxResultBytes, preserving
// a usable JSON object so callers never have to special-case truncation.
func truncate(raw string) string {
	if len(raw) <= MaxResultBytes {
		return raw
	}
	partial := raw[:MaxResultBytes*8/10]
	b, _ := json.Marshal(map[string]interface{}{
		"truncated":      true,
		"originalBytes":  len(raw),
		"truncatedBytes": MaxResultBytes,
		"partialData":    partial,
	})
	return string(b)
}
