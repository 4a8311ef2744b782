// Package services – ChatService
//
// This file implements the ChatService, the orchestration layer of the chat
// feature. It validates requests, builds the outgoing prompt, resolves which
// credential to use (stored per-device key, ambient default, or none), invokes
// the AI gateway, and persists the resulting exchange.
//
// Credential resolution is a strict three-way outcome (see ResolvedCredential):
// a stored key wins outright, an ambient key is signalled without ever
// returning its value, and "no key" short-circuits the request. Conflating
// "use the default" with "absent" is the bug class this shape exists to avoid.
//
// Observability: public methods are OpenTelemetry-instrumented; spans carry
// device identifiers and model names, never prompts or key material.
package services

import (
	"context"
	"errors"
	"os"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/tbourn/go-apptemplate-backend/internal/ai"
	"github.com/tbourn/go-apptemplate-backend/internal/domain"
	"github.com/tbourn/go-apptemplate-backend/internal/repo"
	"github.com/tbourn/go-apptemplate-backend/internal/secrets"
	"github.com/tbourn/go-apptemplate-backend/internal/sysutil"
)

// envKeyName is the ambient credential's environment variable. It is consulted
// live on every resolution, with the startup config value as fallback.
const envKeyName = "ANTHROPIC_API_KEY"

// AIGateway defines the provider operations consumed by ChatService.
// Implementations must be safe for concurrent use and honor the provided
// context for cancellation.
type AIGateway interface {
	// SendMessage performs a single-shot completion. An empty apiKey means
	// "use the gateway's default client".
	SendMessage(ctx context.Context, prompt, apiKey, model string) (string, error)

	// StreamMessage delivers the reply as incremental fragments via onDelta.
	// Returning an error from onDelta aborts the stream.
	StreamMessage(ctx context.Context, prompt, apiKey, model string, onDelta func(string) error) error

	// ListModels returns available models, newest first.
	ListModels(ctx context.Context, apiKey string) ([]ai.ModelInfo, error)
}

// CredentialSource discriminates the outcome of credential resolution.
type CredentialSource int

const (
	// CredentialNone means no key is usable anywhere; requests must fail.
	CredentialNone CredentialSource = iota
	// CredentialStored means a per-device key was found and decrypted.
	CredentialStored
	// CredentialDefault means the ambient credential applies. The key value
	// is deliberately withheld: the gateway's default client already holds it.
	CredentialDefault
)

// ResolvedCredential is the transient, three-way result of key resolution.
// APIKey is populated only for CredentialStored.
type ResolvedCredential struct {
	Source CredentialSource
	APIKey string
}

// Usable reports whether a request may proceed with this credential.
func (r ResolvedCredential) Usable() bool { return r.Source != CredentialNone }

// ChatRequest carries one chat invocation. DeviceID, SystemPrompt, and Model
// are optional; empty means absent.
type ChatRequest struct {
	Message      string
	DeviceID     string
	SystemPrompt string
	Model        string
}

// ChatReply is the buffered (non-streaming) result of SendMessage.
type ChatReply struct {
	Response  string
	Timestamp time.Time
}

// ChatService orchestrates prompt building, credential resolution, gateway
// calls, and persistence of exchanges.
type ChatService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// Gateway is the AI provider facade.
	Gateway AIGateway
	// Protector decrypts stored per-device keys.
	Protector *secrets.Protector

	// DefaultAPIKey is the startup config fallback for the ambient
	// credential, consulted after the live environment variable.
	DefaultAPIKey string
	// DefaultModel is reported to clients alongside model listings.
	DefaultModel string
}

// SendMessage validates the request, resolves a credential, performs a
// single-shot completion, and persists the exchange when a device id is
// present. Persistence happens before returning, so a storage failure
// surfaces to the caller even though the provider already replied.
func (s *ChatService) SendMessage(ctx context.Context, req ChatRequest) (*ChatReply, error) {
	tr := otel.Tracer("services/ChatService")
	ctx, span := tr.Start(ctx, "SendMessage",
		trace.WithAttributes(
			attribute.String("device.id", req.DeviceID),
			attribute.String("model", req.Model),
		),
	)
	defer span.End()

	if strings.TrimSpace(req.Message) == "" {
		return nil, ErrEmptyMessage
	}

	prompt := buildPrompt(req.SystemPrompt, req.Message)
	cred, err := s.resolveCredential(ctx, req.DeviceID)
	if err != nil {
		return nil, err
	}
	if !cred.Usable() {
		return nil, ErrNoAPIKey
	}

	response, err := s.Gateway.SendMessage(ctx, prompt, cred.APIKey, req.Model)
	if err != nil {
		return nil, err
	}

	if req.DeviceID != "" {
		if err := s.saveExchange(ctx, req.DeviceID, req.Message, response); err != nil {
			// The provider already produced (and billed for) the reply; the
			// caller still sees a failure. Log so the mismatch is diagnosable.
			log.Error().Err(err).Str("device_id", req.DeviceID).Msg("failed to persist chat exchange")
			return nil, err
		}
	}

	return &ChatReply{Response: response, Timestamp: time.Now().UTC()}, nil
}

// StreamMessage behaves like SendMessage but delivers the reply as fragments
// via onFragment. The exchange is persisted only after the stream fully
// drains; cancellation or any mid-stream error skips persistence entirely, so
// partial exchanges never reach history. Persistence here is best-effort: the
// fragments are already with the client, so a storage failure is logged, not
// returned.
func (s *ChatService) StreamMessage(ctx context.Context, req ChatRequest, onFragment func(string) error) error {
	tr := otel.Tracer("services/ChatService")
	ctx, span := tr.Start(ctx, "StreamMessage",
		trace.WithAttributes(
			attribute.String("device.id", req.DeviceID),
			attribute.String("model", req.Model),
		),
	)
	defer span.End()

	if strings.TrimSpace(req.Message) == "" {
		return ErrEmptyMessage
	}

	prompt := buildPrompt(req.SystemPrompt, req.Message)
	cred, err := s.resolveCredential(ctx, req.DeviceID)
	if err != nil {
		return err
	}
	if !cred.Usable() {
		return ErrNoAPIKey
	}

	var full strings.Builder
	err = s.Gateway.StreamMessage(ctx, prompt, cred.APIKey, req.Model, func(fragment string) error {
		full.WriteString(fragment)
		return onFragment(fragment)
	})
	if err != nil {
		return err
	}

	if req.DeviceID != "" {
		if perr := s.saveExchange(ctx, req.DeviceID, req.Message, full.String()); perr != nil {
			log.Error().Err(perr).Str("device_id", req.DeviceID).Msg("failed to persist streamed exchange")
		}
	}
	return nil
}

// GetHistory returns all messages for a device ordered by timestamp ascending.
func (s *ChatService) GetHistory(ctx context.Context, deviceID string) ([]domain.ChatMessage, error) {
	tr := otel.Tracer("services/ChatService")
	ctx, span := tr.Start(ctx, "GetHistory",
		trace.WithAttributes(attribute.String("device.id", deviceID)),
	)
	defer span.End()

	return repo.ListChatMessages(ctx, s.DB, deviceID)
}

// ClearHistory deletes every message for a device. Idempotent.
func (s *ChatService) ClearHistory(ctx context.Context, deviceID string) error {
	tr := otel.Tracer("services/ChatService")
	ctx, span := tr.Start(ctx, "ClearHistory",
		trace.WithAttributes(attribute.String("device.id", deviceID)),
	)
	defer span.End()

	return repo.DeleteChatMessages(ctx, s.DB, deviceID)
}

// ListModels resolves a credential like any chat call and returns the
// provider's models, newest first. An unusable credential is not fatal here:
// the gateway call proceeds with the default client and the transport layer
// decides how to present a failure.
func (s *ChatService) ListModels(ctx context.Context, deviceID string) ([]ai.ModelInfo, error) {
	tr := otel.Tracer("services/ChatService")
	ctx, span := tr.Start(ctx, "ListModels",
		trace.WithAttributes(attribute.String("device.id", deviceID)),
	)
	defer span.End()

	cred, err := s.resolveCredential(ctx, deviceID)
	if err != nil {
		return nil, err
	}
	return s.Gateway.ListModels(ctx, cred.APIKey)
}

// HasAmbientKey reports whether an ambient credential is configured, checking
// the live environment first and the startup config second.
func (s *ChatService) HasAmbientKey() bool {
	return sysutil.FirstNonEmpty(os.Getenv(envKeyName), s.DefaultAPIKey) != ""
}

// resolveCredential produces the three-way credential outcome in strict
// priority order: stored per-device key, then ambient default, then none.
// A stored key wins outright — fallback sources are not consulted even if the
// key later turns out to be invalid; that failure surfaces at call time.
func (s *ChatService) resolveCredential(ctx context.Context, deviceID string) (ResolvedCredential, error) {
	if deviceID != "" {
		rec, err := repo.GetAPIKey(ctx, s.DB, deviceID)
		switch {
		case err == nil:
			plaintext, derr := s.Protector.Unprotect(rec.EncryptedKey)
			if derr != nil {
				return ResolvedCredential{}, derr
			}
			log.Debug().Str("device_id", deviceID).Msg("using per-device API key")
			return ResolvedCredential{Source: CredentialStored, APIKey: plaintext}, nil
		case errors.Is(err, repo.ErrNotFound):
			// fall through to the ambient credential
		default:
			return ResolvedCredential{}, err
		}
	}

	if sysutil.FirstNonEmpty(os.Getenv(envKeyName), s.DefaultAPIKey) != "" {
		// The gateway's default client is already configured with this key;
		// the value is withheld so only one code path carries credentials.
		log.Debug().Msg("using ambient API key")
		return ResolvedCredential{Source: CredentialDefault}, nil
	}

	log.Warn().Str("device_id", deviceID).Msg("no API key available")
	return ResolvedCredential{Source: CredentialNone}, nil
}

// saveExchange appends the user message then the assistant reply, in that
// order, each timestamped at write time.
func (s *ChatService) saveExchange(ctx context.Context, deviceID, userMessage, reply string) error {
	if _, err := repo.CreateChatMessage(ctx, s.DB, deviceID, userMessage, true); err != nil {
		return err
	}
	_, err := repo.CreateChatMessage(ctx, s.DB, deviceID, reply, false)
	return err
}

// buildPrompt prefixes a non-blank system prompt; otherwise the message is
// forwarded verbatim.
func buildPrompt(systemPrompt, message string) string {
	if strings.TrimSpace(systemPrompt) == "" {
		return message
	}
	return "System: " + systemPrompt + "\n\nUser: " + message
}
