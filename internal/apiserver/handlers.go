package apiserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/arclight-labs/rca-engine/internal/investigation"
	"github.com/arclight-labs/rca-engine/internal/logging"
	"github.com/arclight-labs/rca-engine/internal/parser"
	"github.com/arclight-labs/rca-engine/internal/pipeline"
	"github.com/arclight-labs/rca-engine/internal/rcaerrors"
)

// invocationRequest mirrors the §6 wire payload exactly.
type invocationRequest struct {
	Investigation struct {
		Input       string `json:"input"`
		XRayTraceID string `json:"xray_trace_id"`
		Region      string `json:"region"`
	} `json:"investigation"`
	ServiceConfig struct {
		RoleARN    string `json:"role_arn"`
		ExternalID string `json:"external_id"`
		Region     string `json:"region"`
	} `json:"service_config"`
}

// investigationEnvelope is the "investigation" section of the response:
// identity and timing, as distinct from the report's analytical sections.
type investigationEnvelope struct {
	RunID           string    `json:"runId"`
	Status          string    `json:"status"`
	StartedAt       time.Time `json:"startedAt"`
	CompletedAt     time.Time `json:"completedAt"`
	DurationSeconds float64   `json:"durationSeconds"`
}

type invocationResponse struct {
	Success           bool                              `json:"success"`
	Error             string                            `json:"error,omitempty"`
	Investigation     *investigationEnvelope            `json:"investigation,omitempty"`
	Severity          *investigation.SeverityAssessment `json:"severity,omitempty"`
	AffectedResources []investigation.AffectedResource  `json:"affected_resources,omitempty"`
	RootCause         *investigation.RootCauseAnalysis  `json:"root_cause,omitempty"`
	Timeline          []investigation.EventTimeline     `json:"timeline,omitempty"`
	Facts             []investigation.Fact              `json:"facts,omitempty"`
	Hypotheses        []investigation.Hypothesis        `json:"hypotheses,omitempty"`
	Remediation       []investigation.Advice            `json:"remediation,omitempty"`
	Summary           map[string]interface{}            `json:"summary,omitempty"`
}

// handleInvocations runs one investigation end to end. Errors are always
// reported as {"success":false,"error":"..."} per §6, with the status
// code carried by the underlying rcaerrors.Kind when available.
func (s *Server) handleInvocations(w http.ResponseWriter, r *http.Request) {
	var req invocationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeInvocationError(w, http.StatusBadRequest, "malformed request body: "+err.Error())
		return
	}
	if strings.TrimSpace(req.Investigation.Input) == "" {
		s.writeInvocationError(w, http.StatusBadRequest, "investigation.input is required")
		return
	}

	select {
	case s.sem <- struct{}{}:
		defer func() { <-s.sem }()
	default:
		s.writeInvocationError(w, http.StatusServiceUnavailable, "too many concurrent investigations")
		return
	}

	region := req.Investigation.Region
	if region == "" {
		region = req.ServiceConfig.Region
	}

	in := parser.Input{FreeText: req.Investigation.Input}
	overrides := pipeline.Overrides{
		RoleARN:     req.ServiceConfig.RoleARN,
		ExternalID:  req.ServiceConfig.ExternalID,
		Region:      region,
		XRayTraceID: req.Investigation.XRayTraceID,
	}

	requestID := requestIDFromContext(r.Context())

	rep, err := s.pipeline.Run(r.Context(), in, overrides)
	if err != nil {
		status := http.StatusInternalServerError
		var rcaErr *rcaerrors.Error
		if errors.As(err, &rcaErr) {
			status = rcaErr.HTTPStatus()
		}
		s.logger.Error("investigation failed", logging.F("error", err.Error()), logging.F("requestId", requestID))
		s.writeInvocationError(w, status, err.Error())
		return
	}

	resp := invocationResponse{
		Success: true,
		Investigation: &investigationEnvelope{
			RunID:           rep.RunID,
			Status:          rep.Status,
			StartedAt:       rep.StartedAt,
			CompletedAt:     rep.CompletedAt,
			DurationSeconds: rep.DurationSeconds,
		},
		Severity:          rep.SeverityAssessment,
		AffectedResources: rep.AffectedResources,
		RootCause:         rep.RootCauseAnalysis,
		Timeline:          rep.Timeline,
		Facts:             rep.Facts,
		Hypotheses:        rep.Hypotheses,
		Remediation:       rep.Advice,
		Summary:           rep.Summary,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = writeJSON(w, resp)
}

func (s *Server) writeInvocationError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = writeJSON(w, invocationResponse{Success: false, Error: message})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = writeJSON(w, map[string]interface{}{
		"status":  "healthy",
		"service": serviceName,
		"version": version,
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = writeJSON(w, map[string]interface{}{
		"status":  "healthy",
		"service": serviceName,
		"version": version,
		"environment": map[string]interface{}{
			"region":                      s.cfg.AWSRegion,
			"llmProvider":                 s.cfg.LLMProvider,
			"tracingEnabled":              s.cfg.TracingEnabled,
			"maxConcurrentInvestigations": s.cfg.MaxConcurrentInvestigations,
		},
		"endpoints": map[string]string{
			"invocations": "POST /invocations",
			"health":      "GET /health",
			"status":      "GET /status",
			"ping":        "GET /ping",
		},
	})
}

func (s *Server) handlePing(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = writeJSON(w, map[string]string{"status": "ok"})
}
