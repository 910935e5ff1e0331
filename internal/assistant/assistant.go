// Package assistant answers free-form questions about the current selection
// by proxying a single Anthropic Messages call with the region's data
// rendered into the system prompt.
package assistant

import (
	"context"
	"fmt"
	"strings"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/terralens/terralens/internal/model"
	"github.com/terralens/terralens/internal/risk"
)

const (
	DefaultModel     = "claude-haiku-4-5-20251001"
	DefaultMaxTokens = 1024
)

// Assistant answers one question about a region.
type Assistant interface {
	Ask(ctx context.Context, question string, region *model.RegionData) (string, error)
}

type sdkAssistant struct {
	client    sdk.Client
	model     string
	maxTokens int64
}

// Option configures the assistant.
type Option func(*sdkAssistant)

// WithModel overrides the model ID.
func WithModel(m string) Option {
	return func(a *sdkAssistant) {
		if m != "" {
			a.model = m
		}
	}
}

// WithMaxTokens overrides the response token cap.
func WithMaxTokens(n int64) Option {
	return func(a *sdkAssistant) {
		if n > 0 {
			a.maxTokens = n
		}
	}
}

// New creates an Assistant backed by the official SDK.
func New(apiKey string, opts ...Option) Assistant {
	a := &sdkAssistant{
		client:    sdk.NewClient(option.WithAPIKey(apiKey)),
		model:     DefaultModel,
		maxTokens: DefaultMaxTokens,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *sdkAssistant) Ask(ctx context.Context, question string, region *model.RegionData) (string, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return "", eris.New("assistant: empty question")
	}

	msg, err := a.client.Messages.New(ctx, sdk.MessageNewParams{
		Model:     sdk.Model(a.model),
		MaxTokens: a.maxTokens,
		System: []sdk.TextBlockParam{
			{Text: systemPrompt(region)},
		},
		Messages: []sdk.MessageParam{
			sdk.NewUserMessage(sdk.NewTextBlock(question)),
		},
	})
	if err != nil {
		return "", eris.Wrap(err, "assistant: create message")
	}

	zap.L().Debug("assistant: answered",
		zap.String("model", string(msg.Model)),
		zap.Int64("input_tokens", msg.Usage.InputTokens),
		zap.Int64("output_tokens", msg.Usage.OutputTokens),
	)

	var sb strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	answer := strings.TrimSpace(sb.String())
	if answer == "" {
		return "", eris.New("assistant: empty response")
	}
	return answer, nil
}

// systemPrompt renders the region's readings for the model. Unknown metrics
// are stated as unavailable rather than zeroed, so the model does not invent
// a reading.
func systemPrompt(region *model.RegionData) string {
	var sb strings.Builder
	sb.WriteString("You are an environmental analyst for a climate-risk dashboard. " +
		"Answer questions about the selected region using only the data below. " +
		"Keep answers short and factual.\n\n")

	if region == nil {
		sb.WriteString("No region is currently selected.")
		return sb.String()
	}

	fmt.Fprintf(&sb, "Region: %s (%.4f, %.4f)\n", region.Name, region.Lat, region.Lng)
	writeMetric(&sb, "Temperature", region.Temperature, "°C", func(v float64) string {
		return string(risk.ClassifyTemperature(v))
	})
	writeMetric(&sb, "Air quality index", region.AirQuality, "", func(v float64) string {
		return string(risk.ClassifyAQI(v))
	})
	writeMetric(&sb, "Flood risk", region.FloodRisk, "%", func(v float64) string {
		return string(risk.ClassifyFlood(v))
	})

	if region.Temperature != nil && region.AirQuality != nil && region.FloodRisk != nil {
		score := risk.CombinedRiskScore(*region.Temperature, *region.AirQuality, *region.FloodRisk)
		fmt.Fprintf(&sb, "Combined risk: %.0f/100 (%s)\n", score, risk.ClassifyCombined(score))
	}
	return sb.String()
}

func writeMetric(sb *strings.Builder, label string, v *float64, unit string, tier func(float64) string) {
	if v == nil {
		fmt.Fprintf(sb, "%s: unavailable\n", label)
		return
	}
	fmt.Fprintf(sb, "%s: %.1f%s (%s)\n", label, *v, unit, tier(*v))
}
