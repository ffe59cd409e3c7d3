package commands

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/arclight-labs/rca-engine/internal/config"
	"github.com/arclight-labs/rca-engine/internal/logging"
	"github.com/arclight-labs/rca-engine/internal/parser"
	"github.com/arclight-labs/rca-engine/internal/pipeline"
	"github.com/arclight-labs/rca-engine/internal/telemetry"
	"github.com/arclight-labs/rca-engine/internal/tools"
)

var (
	investigateInput      string
	investigateTraceID    string
	investigateRegion     string
	investigateRoleARN    string
	investigateExternalID string
)

var investigateCmd = &cobra.Command{
	Use:   "investigate",
	Short: "Run a single investigation and print the resulting report as JSON",
	Run:   runInvestigate,
}

func init() {
	investigateCmd.Flags().StringVar(&investigateInput, "input", "", "Free-text description of the incident (required)")
	investigateCmd.Flags().StringVar(&investigateTraceID, "xray-trace-id", "", "Optional X-Ray trace id to seed discovery")
	investigateCmd.Flags().StringVar(&investigateRegion, "region", "", "Region override for this investigation")
	investigateCmd.Flags().StringVar(&investigateRoleARN, "role-arn", "", "Optional IAM role to assume for this investigation")
	investigateCmd.Flags().StringVar(&investigateExternalID, "external-id", "", "External ID for --role-arn, if required by the trust policy")
}

func runInvestigate(cmd *cobra.Command, args []string) {
	if strings.TrimSpace(investigateInput) == "" {
		HandleError(errors.New("--input is required"), "Configuration error")
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		HandleError(err, "Configuration error")
	}

	if err := setupLog(logLevelFlags); err != nil {
		HandleError(err, "Failed to setup logging")
	}
	logger := logging.Get("investigate")

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.InvestigationDeadlineSeconds)*time.Second)
	defer cancel()

	llm, err := buildLLMProvider(ctx, cfg)
	if err != nil {
		HandleError(err, "LLM provider error")
	}

	registry := tools.NewDefaultRegistry()
	p := pipeline.New(cfg, registry, llm, telemetry.NewMetrics(prometheus.NewRegistry()))

	in := parser.Input{FreeText: investigateInput}
	overrides := pipeline.Overrides{
		RoleARN:     investigateRoleARN,
		ExternalID:  investigateExternalID,
		Region:      investigateRegion,
		XRayTraceID: investigateTraceID,
	}

	report, err := p.Run(ctx, in, overrides)
	if err != nil {
		logger.Error("investigation failed", logging.F("error", err.Error()))
		HandleError(err, "Investigation failed")
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		HandleError(err, "Failed to encode report")
	}
}
