// Package handlers – chat endpoints
//
// This file implements the chat surface: buffered completion, SSE streaming,
// history retrieval and clearing, model listing, and the ambient-key probe.
// Handlers stay transport-thin: they bind and validate input, delegate to the
// service layer, and translate service errors into the standard envelope.
package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-apptemplate-backend/internal/ai"
	"github.com/tbourn/go-apptemplate-backend/internal/domain"
	"github.com/tbourn/go-apptemplate-backend/internal/http/middleware"
	"github.com/tbourn/go-apptemplate-backend/internal/services"
)

// ChatService is the orchestration surface consumed by the chat handlers.
type ChatService interface {
	SendMessage(ctx context.Context, req services.ChatRequest) (*services.ChatReply, error)
	StreamMessage(ctx context.Context, req services.ChatRequest, onFragment func(string) error) error
	GetHistory(ctx context.Context, deviceID string) ([]domain.ChatMessage, error)
	ClearHistory(ctx context.Context, deviceID string) error
	ListModels(ctx context.Context, deviceID string) ([]ai.ModelInfo, error)
	HasAmbientKey() bool
}

// APIKeyService is the key-store surface consumed by the apikey handlers.
type APIKeyService interface {
	Save(ctx context.Context, deviceID, plaintextKey string) (string, error)
	Status(ctx context.Context, deviceID string) (bool, string, error)
	Delete(ctx context.Context, deviceID string) error
}

// WeatherService is the forecast surface consumed by the weather handlers.
type WeatherService interface {
	ListForecasts(ctx context.Context) ([]services.Forecast, error)
	ForecastForCity(ctx context.Context, city string) (*services.Forecast, error)
}

// Handlers bundles the API's service dependencies. One instance serves all
// routes; it holds no per-request state.
type Handlers struct {
	Chat    ChatService
	Keys    APIKeyService
	Weather WeatherService

	// defaultModel is reported alongside model listings even when the
	// provider call fails.
	defaultModel string
}

// New constructs the handler set.
func New(chat ChatService, keys APIKeyService, weather WeatherService, defaultModel string) *Handlers {
	return &Handlers{Chat: chat, Keys: keys, Weather: weather, defaultModel: defaultModel}
}

// ChatRequest is the inbound payload for POST /chat and /chat/stream.
type ChatRequest struct {
	Message      string `json:"message" example:"Hello, who are you?"`
	DeviceID     string `json:"deviceId,omitempty" example:"device-123"`
	SystemPrompt string `json:"systemPrompt,omitempty" example:"You are a terse assistant."`
	Model        string `json:"model,omitempty" example:"claude-sonnet-4-20250514"`
}

// ChatResponse is the buffered completion result.
type ChatResponse struct {
	Response  string `json:"response" example:"I'm an AI assistant."`
	Timestamp string `json:"timestamp" example:"2025-01-02T15:04:05Z"`
}

// HistoryMessage is one persisted chat message as returned to clients.
type HistoryMessage struct {
	Content   string `json:"content" example:"Hello"`
	IsUser    bool   `json:"isUser" example:"true"`
	Timestamp string `json:"timestamp" example:"2025-01-02T15:04:05Z"`
}

// ModelInfo is one available model in the listing response.
type ModelInfo struct {
	ID          string `json:"id" example:"claude-sonnet-4-20250514"`
	DisplayName string `json:"displayName" example:"Claude Sonnet 4"`
}

// ModelsResponse lists available models plus the configured default.
type ModelsResponse struct {
	Models       []ModelInfo `json:"models"`
	DefaultModel string      `json:"defaultModel" example:"claude-sonnet-4-20250514"`
}

// EnvKeyResponse reports whether an ambient provider key is configured.
type EnvKeyResponse struct {
	Available bool `json:"available" example:"true"`
}

// SendMessage handles POST /chat.
//
// @Summary      Send a chat message
// @Description  Sends a message to the AI provider and returns the full reply.
// @Tags         chat
// @Accept       json
// @Produce      json
// @Param        payload  body      ChatRequest  true  "Chat request"
// @Success      200      {object}  ChatResponse
// @Failure      400      {object}  ErrorResponse
// @Failure      500      {object}  ErrorResponse
// @Router       /chat [post]
func (h *Handlers) SendMessage(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON payload")
		return
	}

	reply, err := h.Chat.SendMessage(c.Request.Context(), services.ChatRequest{
		Message:      req.Message,
		DeviceID:     req.DeviceID,
		SystemPrompt: req.SystemPrompt,
		Model:        req.Model,
	})
	if err != nil {
		h.failChat(c, err)
		return
	}

	ok(c, http.StatusOK, ChatResponse{
		Response:  reply.Response,
		Timestamp: reply.Timestamp.Format("2006-01-02T15:04:05Z07:00"),
	})
}

// StreamMessage handles POST /chat/stream.
//
// Fragments are written as Server-Sent Events, one `data:` line per fragment,
// terminated by a `data: [DONE]` sentinel. Headers are committed lazily on the
// first fragment so pre-stream failures can still return a JSON error.
//
// @Summary      Stream a chat reply
// @Description  Streams the AI reply as Server-Sent Events.
// @Tags         chat
// @Accept       json
// @Produce      text/event-stream
// @Param        payload  body  ChatRequest  true  "Chat request"
// @Success      200  {string}  string  "SSE stream"
// @Failure      400  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /chat/stream [post]
func (h *Handlers) StreamMessage(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON payload")
		return
	}

	committed := false
	commit := func() {
		c.Writer.Header().Set("Content-Type", "text/event-stream")
		c.Writer.Header().Set("Cache-Control", "no-cache")
		c.Writer.Header().Set("Connection", "keep-alive")
		c.Writer.WriteHeader(http.StatusOK)
		committed = true
	}

	err := h.Chat.StreamMessage(c.Request.Context(), services.ChatRequest{
		Message:      req.Message,
		DeviceID:     req.DeviceID,
		SystemPrompt: req.SystemPrompt,
		Model:        req.Model,
	}, func(fragment string) error {
		if !committed {
			commit()
		}
		if _, werr := fmt.Fprintf(c.Writer, "data: %s\n\n", fragment); werr != nil {
			return werr
		}
		c.Writer.Flush()
		return nil
	})
	if err != nil {
		if committed {
			// The response is already on the wire; all we can do is stop.
			middleware.LoggerFrom(c).Error().Err(err).Msg("stream aborted mid-flight")
			return
		}
		h.failChat(c, err)
		return
	}

	if !committed {
		commit()
	}
	fmt.Fprint(c.Writer, "data: [DONE]\n\n")
	c.Writer.Flush()
}

// GetHistory handles GET /chat/history/:deviceId.
//
// @Summary      Get chat history
// @Description  Returns every persisted message for the device, oldest first.
// @Tags         chat
// @Produce      json
// @Param        deviceId  path      string  true  "Device identifier"
// @Success      200       {array}   HistoryMessage
// @Failure      500       {object}  ErrorResponse
// @Router       /chat/history/{deviceId} [get]
func (h *Handlers) GetHistory(c *gin.Context) {
	deviceID := c.Param("deviceId")

	msgs, err := h.Chat.GetHistory(c.Request.Context(), deviceID)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "failed to load history")
		return
	}

	out := make([]HistoryMessage, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, HistoryMessage{
			Content:   m.Content,
			IsUser:    m.IsUser,
			Timestamp: m.Timestamp.Format("2006-01-02T15:04:05Z07:00"),
		})
	}
	ok(c, http.StatusOK, out)
}

// ClearHistory handles DELETE /chat/history/:deviceId.
//
// @Summary      Clear chat history
// @Description  Deletes every persisted message for the device.
// @Tags         chat
// @Param        deviceId  path  string  true  "Device identifier"
// @Success      200
// @Failure      500  {object}  ErrorResponse
// @Router       /chat/history/{deviceId} [delete]
func (h *Handlers) ClearHistory(c *gin.Context) {
	deviceID := c.Param("deviceId")

	if err := h.Chat.ClearHistory(c.Request.Context(), deviceID); err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "failed to clear history")
		return
	}
	c.Status(http.StatusOK)
}

// ListModels handles GET /chat/models.
//
// A provider failure is deliberately not surfaced: clients always get a 200
// with the configured default model, falling back to an empty listing.
//
// @Summary      List available models
// @Description  Returns the provider's models plus the configured default.
// @Tags         chat
// @Produce      json
// @Param        deviceId  query     string  false  "Device identifier"
// @Success      200       {object}  ModelsResponse
// @Router       /chat/models [get]
func (h *Handlers) ListModels(c *gin.Context) {
	deviceID := c.Query("deviceId")

	out := ModelsResponse{Models: []ModelInfo{}, DefaultModel: h.defaultModel}

	models, err := h.Chat.ListModels(c.Request.Context(), deviceID)
	if err != nil {
		middleware.LoggerFrom(c).Warn().Err(err).Msg("model listing unavailable")
		ok(c, http.StatusOK, out)
		return
	}
	for _, m := range models {
		out.Models = append(out.Models, ModelInfo{ID: m.ID, DisplayName: m.DisplayName})
	}
	ok(c, http.StatusOK, out)
}

// EnvKeyAvailable handles GET /chat/env-key-available.
//
// @Summary      Check ambient key availability
// @Description  Reports whether a server-side provider key is configured.
// @Tags         chat
// @Produce      json
// @Success      200  {object}  EnvKeyResponse
// @Router       /chat/env-key-available [get]
func (h *Handlers) EnvKeyAvailable(c *gin.Context) {
	ok(c, http.StatusOK, EnvKeyResponse{Available: h.Chat.HasAmbientKey()})
}

// failChat maps chat service errors to the error envelope.
func (h *Handlers) failChat(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrEmptyMessage):
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, services.ErrEmptyMessage.Error())
	case errors.Is(err, services.ErrNoAPIKey):
		fail(c, http.StatusInternalServerError, ErrCodeNoAPIKey,
			"no API key available; save a key for this device or configure a server key")
	default:
		fail(c, http.StatusInternalServerError, ErrCodeAnswerFailed, "failed to generate a reply")
	}
}
