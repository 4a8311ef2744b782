// Package ai wraps the Anthropic client behind a small facade: send one
// message, stream a message as incremental text fragments, and list models.
//
// Multi-tenancy works by client construction, not mutation: one process-wide
// default client is configured from ambient credentials at startup, and every
// call accepts an optional explicit key. When a key is present a request-scoped
// client is built for that single call; the shared default is never swapped or
// mutated, so it stays safe for concurrent use.
package ai

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
)

var (
	// providerReqs counts upstream Anthropic calls by operation and outcome.
	providerReqs = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "anthropic_requests_total",
			Help: "Total number of Anthropic API calls.",
		},
		[]string{"op", "outcome"},
	)

	// providerLat records upstream call duration in seconds by operation.
	providerLat = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "anthropic_request_duration_seconds",
			Help:    "Duration of Anthropic API calls in seconds.",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"op"},
	)
)

func init() {
	prometheus.MustRegister(providerReqs, providerLat)
}

// ModelInfo describes one model reported by the provider.
type ModelInfo struct {
	ID          string
	DisplayName string
	CreatedAt   time.Time
}

// Gateway is the facade over the Anthropic client. Immutable after
// construction; safe for concurrent use.
type Gateway struct {
	defaultClient anthropic.Client
	defaultModel  string
	maxTokens     int64
}

// Config carries the gateway's startup settings.
type Config struct {
	// APIKey is the ambient credential. When empty, the SDK's own
	// ANTHROPIC_API_KEY environment lookup applies.
	APIKey    string
	Model     string
	MaxTokens int
}

// NewGateway builds the process-wide default client from ambient credentials.
func NewGateway(cfg Config) *Gateway {
	var opts []option.RequestOption
	if cfg.APIKey != "" {
		opts = append(opts, option.WithAPIKey(cfg.APIKey))
	}
	return &Gateway{
		defaultClient: anthropic.NewClient(opts...),
		defaultModel:  cfg.Model,
		maxTokens:     int64(cfg.MaxTokens),
	}
}

// client returns the default client, or a request-scoped one when an explicit
// key is supplied. An empty key means "use the ambient default" — callers that
// have no usable credential at all must not reach this package.
func (g *Gateway) client(apiKey string) anthropic.Client {
	if apiKey == "" {
		return g.defaultClient
	}
	return anthropic.NewClient(option.WithAPIKey(apiKey))
}

func (g *Gateway) params(prompt, model string) anthropic.MessageNewParams {
	if model == "" {
		model = g.defaultModel
	}
	return anthropic.MessageNewParams{
		Model:     anthropic.Model(model),
		MaxTokens: g.maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	}
}

// SendMessage performs a single-shot completion and returns the full reply
// text. Failures propagate unchanged; there are no retries.
func (g *Gateway) SendMessage(ctx context.Context, prompt, apiKey, model string) (string, error) {
	start := time.Now()
	params := g.params(prompt, model)
	log.Debug().Str("model", string(params.Model)).Msg("sending message to Claude")

	client := g.client(apiKey)
	msg, err := client.Messages.New(ctx, params)
	providerLat.WithLabelValues("send").Observe(time.Since(start).Seconds())
	if err != nil {
		providerReqs.WithLabelValues("send", "error").Inc()
		return "", err
	}
	providerReqs.WithLabelValues("send", "ok").Inc()

	var b strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	return b.String(), nil
}

// StreamMessage streams a completion, invoking onDelta once per text fragment
// as it arrives. Delivery is a cooperative pull: the next fragment is not
// consumed until onDelta returns, so the caller controls backpressure by
// blocking in the callback. A non-nil error from onDelta (or context
// cancellation) aborts the stream and is returned.
func (g *Gateway) StreamMessage(ctx context.Context, prompt, apiKey, model string, onDelta func(string) error) error {
	start := time.Now()
	params := g.params(prompt, model)
	log.Debug().Str("model", string(params.Model)).Msg("starting streaming message to Claude")

	client := g.client(apiKey)
	stream := client.Messages.NewStreaming(ctx, params)
	defer func() {
		providerLat.WithLabelValues("stream").Observe(time.Since(start).Seconds())
	}()

	for stream.Next() {
		event := stream.Current()
		switch ev := event.AsAny().(type) {
		case anthropic.ContentBlockDeltaEvent:
			switch delta := ev.Delta.AsAny().(type) {
			case anthropic.TextDelta:
				if delta.Text == "" {
					continue
				}
				if err := onDelta(delta.Text); err != nil {
					providerReqs.WithLabelValues("stream", "aborted").Inc()
					return err
				}
			}
		}
	}
	if err := stream.Err(); err != nil {
		providerReqs.WithLabelValues("stream", "error").Inc()
		return err
	}
	providerReqs.WithLabelValues("stream", "ok").Inc()
	return nil
}

// ListModels returns the provider's models ordered by creation time
// descending (newest first). Failures propagate; swallowing them is a
// transport-layer decision.
func (g *Gateway) ListModels(ctx context.Context, apiKey string) ([]ModelInfo, error) {
	start := time.Now()
	client := g.client(apiKey)
	page, err := client.Models.List(ctx, anthropic.ModelListParams{
		Limit: anthropic.Int(100),
	})
	providerLat.WithLabelValues("list_models").Observe(time.Since(start).Seconds())
	if err != nil {
		providerReqs.WithLabelValues("list_models", "error").Inc()
		return nil, err
	}
	providerReqs.WithLabelValues("list_models", "ok").Inc()

	out := make([]ModelInfo, 0, len(page.Data))
	for _, m := range page.Data {
		out = append(out, ModelInfo{
			ID:          string(m.ID),
			DisplayName: m.DisplayName,
			CreatedAt:   m.CreatedAt,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}
