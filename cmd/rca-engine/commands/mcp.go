package commands

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/arclight-labs/rca-engine/internal/cloudclient"
	"github.com/arclight-labs/rca-engine/internal/config"
	"github.com/arclight-labs/rca-engine/internal/logging"
	"github.com/arclight-labs/rca-engine/internal/tools"
	"github.com/arclight-labs/rca-engine/internal/tools/mcpfront"
)

var (
	mcpRoleARN    string
	mcpExternalID string
	mcpRegion     string
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Expose the tool registry over MCP (stdio) for manual debugging",
	Run:   runMCP,
}

func init() {
	mcpCmd.Flags().StringVar(&mcpRoleARN, "role-arn", "", "IAM role to assume for the tool frontend's CloudClient")
	mcpCmd.Flags().StringVar(&mcpExternalID, "external-id", "", "External ID for --role-arn, if required by the trust policy")
	mcpCmd.Flags().StringVar(&mcpRegion, "region", "", "Region override; falls back to config/environment")
}

func runMCP(cmd *cobra.Command, args []string) {
	cfg, err := config.Load(configPath)
	if err != nil {
		HandleError(err, "Configuration error")
	}
	if err := setupLog(logLevelFlags); err != nil {
		HandleError(err, "Failed to setup logging")
	}
	logger := logging.Get("mcp")

	region := mcpRegion
	if region == "" {
		region = cfg.AWSRegion
	}
	roleARN := mcpRoleARN
	if roleARN == "" {
		roleARN = cfg.AWSAssumeRoleARN
	}
	externalID := mcpExternalID
	if externalID == "" {
		externalID = cfg.AWSExternalID
	}

	ctx := context.Background()
	client, err := cloudclient.New(ctx, cloudclient.Config{
		Region:     region,
		RoleARN:    roleARN,
		ExternalID: externalID,
	})
	if err != nil {
		HandleError(err, "Failed to build cloud client")
	}
	defer client.Close()

	registry := tools.NewDefaultRegistry()
	frontend := mcpfront.New(registry, client, Version)

	logger.Info("serving tool registry over MCP stdio", logging.F("region", region))
	if err := frontend.ServeStdio(); err != nil {
		HandleError(err, "MCP server error")
	}
}
