package commands

import (
	"context"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"

	"github.com/arclight-labs/rca-engine/internal/config"
	"github.com/arclight-labs/rca-engine/internal/llmprovider"
)

// buildLLMProvider selects and constructs the LLM backend named by
// cfg.LLMProvider. config.Validate already rejects an unknown provider
// name or a provider missing its required credentials, so this only
// needs to handle construction.
func buildLLMProvider(ctx context.Context, cfg *config.Config) (llmprovider.Provider, error) {
	switch cfg.LLMProvider {
	case "anthropic":
		return llmprovider.NewAnthropicProvider(cfg.AnthropicAPIKey, cfg.AnthropicModel), nil
	case "bedrock":
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWSRegion))
		if err != nil {
			return nil, fmt.Errorf("loading AWS config for bedrock provider: %w", err)
		}
		return llmprovider.NewBedrockProvider(bedrockruntime.NewFromConfig(awsCfg), cfg.BedrockModelID), nil
	case "mock":
		return llmprovider.NewMockProvider(), nil
	default:
		return nil, fmt.Errorf("unknown LLM provider %q", cfg.LLMProvider)
	}
}
