package invoker

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/bedrock"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/aws/aws-sdk-go-v2/config"
)

// AnthropicConfig contains configuration for the production invoker.
type AnthropicConfig struct {
	// APIKey is the Anthropic API key. If empty, uses ANTHROPIC_API_KEY.
	APIKey string
	// UseAWSBedrock routes invocations through AWS Bedrock instead of the
	// direct API.
	UseAWSBedrock bool
	// AWSRegion is the AWS region for Bedrock (e.g., "us-west-2").
	AWSRegion string
	// AWSProfile is the optional AWS profile name to use.
	AWSProfile string
	// MaxTokens caps the response size per invocation. Defaults to 4096.
	MaxTokens int
}

// AnthropicInvoker invokes capabilities against the Anthropic API.
// Each capability invocation is a single structured-JSON exchange: the
// input payload goes out as JSON, the model's JSON response comes back as
// the result output.
type AnthropicInvoker struct {
	client    anthropic.Client
	maxTokens int
}

// NewAnthropicInvoker creates a production invoker.
func NewAnthropicInvoker(cfg AnthropicConfig) (*AnthropicInvoker, error) {
	var opts []option.RequestOption

	if cfg.UseAWSBedrock {
		ctx := context.Background()

		var loadOpts []func(*config.LoadOptions) error
		if cfg.AWSRegion != "" {
			loadOpts = append(loadOpts, config.WithRegion(cfg.AWSRegion))
		}
		if cfg.AWSProfile != "" {
			loadOpts = append(loadOpts, config.WithSharedConfigProfile(cfg.AWSProfile))
		}

		opts = append(opts, bedrock.WithLoadDefaultConfig(ctx, loadOpts...))
	} else {
		apiKey := cfg.APIKey
		if apiKey == "" {
			apiKey = os.Getenv("ANTHROPIC_API_KEY")
		}
		if apiKey == "" {
			return nil, fmt.Errorf("ANTHROPIC_API_KEY environment variable is not set")
		}
		opts = append(opts, option.WithAPIKey(apiKey))
	}

	maxTokens := cfg.MaxTokens
	if maxTokens == 0 {
		maxTokens = 4096
	}

	return &AnthropicInvoker{
		client:    anthropic.NewClient(opts...),
		maxTokens: maxTokens,
	}, nil
}

const invokeSystemPrompt = `You are a %s capability inside a business operations platform.
Given a JSON input payload, perform the operation and respond with a single JSON
object containing the result fields plus a "confidence" field between 0 and 1
reflecting how reliable the result is. Respond with JSON only.`

// Invoke performs one capability invocation via the Messages API.
func (a *AnthropicInvoker) Invoke(ctx context.Context, req Request) (*Result, error) {
	payload, err := json.Marshal(req.Input)
	if err != nil {
		return nil, fmt.Errorf("encode input: %w", err)
	}

	resp, err := a.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(req.AgentModel),
		MaxTokens: int64(a.maxTokens),
		System: []anthropic.TextBlockParam{
			{Text: fmt.Sprintf(invokeSystemPrompt, req.Capability)},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(string(payload))),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("API call failed: %w", err)
	}

	var text strings.Builder
	for _, block := range resp.Content {
		if variant, ok := block.AsAny().(anthropic.TextBlock); ok {
			text.WriteString(variant.Text)
		}
	}

	output, err := extractJSON(text.String())
	if err != nil {
		return nil, err
	}

	result := &Result{Output: output, Confidence: 1.0}
	if c, ok := output["confidence"].(float64); ok {
		result.Confidence = c
	}
	return result, nil
}

// extractJSON finds and parses the first JSON object in a model response.
func extractJSON(response string) (map[string]any, error) {
	jsonStart := strings.Index(response, "{")
	jsonEnd := strings.LastIndex(response, "}")
	if jsonStart == -1 || jsonEnd <= jsonStart {
		return nil, fmt.Errorf("no valid JSON found in response: %s", truncate(response, 200))
	}

	var output map[string]any
	if err := json.Unmarshal([]byte(response[jsonStart:jsonEnd+1]), &output); err != nil {
		return nil, fmt.Errorf("parse JSON: %w (response: %s)", err, truncate(response, 200))
	}
	return output, nil
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
