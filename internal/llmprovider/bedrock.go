package llmprovider

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
)

// BedrockProvider implements Provider over Bedrock's model-agnostic
// Converse API, used when the configured model id is a Bedrock model
// (e.g. an Anthropic Claude model hosted in Bedrock).
type BedrockProvider struct {
	client  *bedrockruntime.Client
	modelID string
}

func NewBedrockProvider(client *bedrockruntime.Client, modelID string) *BedrockProvider {
	return &BedrockProvider{client: client, modelID: modelID}
}

func (p *BedrockProvider) Complete(ctx context.Context, prompt string, temperature float64, maxTokens int) (string, error) {
	temp := float32(temperature)
	tokens := int32(maxTokens)

	out, err := p.client.Converse(ctx, &bedrockruntime.ConverseInput{
		ModelId: aws.String(p.modelID),
		Messages: []types.Message{
			{
				Role:    types.ConversationRoleUser,
				Content: []types.ContentBlock{&types.ContentBlockMemberText{Value: prompt}},
			},
		},
		InferenceConfig: &types.InferenceConfiguration{
			Temperature: aws.Float32(temp),
			MaxTokens:   aws.Int32(tokens),
		},
	})
	if err != nil {
		return "", fmt.Errorf("bedrock completion: %w", err)
	}

	msg, ok := out.Output.(*types.ConverseOutputMemberMessage)
	if !ok {
		return "", fmt.Errorf("bedrock completion: unexpected output shape")
	}

	var text string
	for _, block := range msg.Value.Content {
		if tb, ok := block.(*types.ContentBlockMemberText); ok {
			text += tb.Value
		}
	}
	return text, nil
}

func (p *BedrockProvider) Name() string  { return "bedrock" }
func (p *BedrockProvider) Model() string { return p.modelID }
