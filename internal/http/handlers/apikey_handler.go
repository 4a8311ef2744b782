// Package handlers – API key endpoints
//
// Key material never leaves the server in full: responses carry only the
// masked display form, and the stored ciphertext is never serialized.
package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// SaveAPIKeyRequest is the inbound payload for POST /apikeys.
type SaveAPIKeyRequest struct {
	DeviceID string `json:"deviceId" example:"device-123"`
	APIKey   string `json:"apiKey" example:"sk-ant-api03-..."`
}

// APIKeyStatusResponse reports whether a device has a stored key and, if so,
// its masked display form. MaskedKey is null when no key is stored.
type APIKeyStatusResponse struct {
	HasKey    bool    `json:"hasKey" example:"true"`
	MaskedKey *string `json:"maskedKey" example:"sk-ant-****1234"`
}

// SaveAPIKey handles POST /apikeys.
//
// @Summary      Save an API key
// @Description  Encrypts and stores the key for the device, replacing any prior key.
// @Tags         apikeys
// @Accept       json
// @Produce      json
// @Param        payload  body      SaveAPIKeyRequest  true  "Key to store"
// @Success      200      {object}  APIKeyStatusResponse
// @Failure      400      {object}  ErrorResponse
// @Failure      500      {object}  ErrorResponse
// @Router       /apikeys [post]
func (h *Handlers) SaveAPIKey(c *gin.Context) {
	var req SaveAPIKeyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON payload")
		return
	}
	if strings.TrimSpace(req.DeviceID) == "" || strings.TrimSpace(req.APIKey) == "" {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "deviceId and apiKey are required")
		return
	}

	masked, err := h.Keys.Save(c.Request.Context(), req.DeviceID, req.APIKey)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeSaveFailed, "failed to save API key")
		return
	}
	ok(c, http.StatusOK, APIKeyStatusResponse{HasKey: true, MaskedKey: &masked})
}

// GetAPIKeyStatus handles GET /apikeys/:deviceId.
//
// @Summary      Get API key status
// @Description  Reports whether a key is stored for the device, with its masked form.
// @Tags         apikeys
// @Produce      json
// @Param        deviceId  path      string  true  "Device identifier"
// @Success      200       {object}  APIKeyStatusResponse
// @Failure      500       {object}  ErrorResponse
// @Router       /apikeys/{deviceId} [get]
func (h *Handlers) GetAPIKeyStatus(c *gin.Context) {
	deviceID := c.Param("deviceId")

	hasKey, masked, err := h.Keys.Status(c.Request.Context(), deviceID)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "failed to read API key status")
		return
	}
	resp := APIKeyStatusResponse{HasKey: hasKey}
	if hasKey {
		resp.MaskedKey = &masked
	}
	ok(c, http.StatusOK, resp)
}

// DeleteAPIKey handles DELETE /apikeys/:deviceId.
//
// @Summary      Delete an API key
// @Description  Removes the stored key for the device. Idempotent.
// @Tags         apikeys
// @Produce      json
// @Param        deviceId  path      string  true  "Device identifier"
// @Success      200       {object}  APIKeyStatusResponse
// @Failure      500       {object}  ErrorResponse
// @Router       /apikeys/{deviceId} [delete]
func (h *Handlers) DeleteAPIKey(c *gin.Context) {
	deviceID := c.Param("deviceId")

	if err := h.Keys.Delete(c.Request.Context(), deviceID); err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "failed to delete API key")
		return
	}
	ok(c, http.StatusOK, APIKeyStatusResponse{HasKey: false})
}
