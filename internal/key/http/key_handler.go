// Package http provides the administration API of rotating keys. Responses carry
// key metadata only; secrets never leave the process through this API.
package http

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/allisson/appconfig/internal/httputil"
	keyDomain "github.com/allisson/appconfig/internal/key/domain"
	"github.com/allisson/appconfig/internal/key/http/dto"
	keyUseCase "github.com/allisson/appconfig/internal/key/usecase"
	customValidation "github.com/allisson/appconfig/internal/validation"
)

// KeyHandler handles HTTP requests for key administration.
type KeyHandler struct {
	keyUseCase keyUseCase.KeyUseCase
	logger     *slog.Logger
}

// NewKeyHandler creates a new key handler.
func NewKeyHandler(keyUseCase keyUseCase.KeyUseCase, logger *slog.Logger) *KeyHandler {
	return &KeyHandler{
		keyUseCase: keyUseCase,
		logger:     logger,
	}
}

// GenerateHandler creates the next version of a key type.
// POST /v1/keys - Returns 201 Created with the key metadata.
func (h *KeyHandler) GenerateHandler(c *gin.Context) {
	var req dto.GenerateKeyRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	keyType, err := keyDomain.NormalizeType(req.Type)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	duration, err := req.RotateDuration()
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	rotateKey, err := h.keyUseCase.Generate(c.Request.Context(), keyDomain.GenerateInput{
		Type:      keyType,
		Bytes:     req.Bytes,
		UseRotate: req.Rotate,
		Duration:  duration,
	})
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.MapRotateKeyToResponse(keyType, rotateKey))
}

// ListHandler lists the versions of a key type, newest first.
// GET /v1/keys/:type?offset=0&limit=50 - Returns 200 OK.
func (h *KeyHandler) ListHandler(c *gin.Context) {
	offset, limit, err := httputil.ParsePagination(c)
	if err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	keys, err := h.keyUseCase.List(c.Request.Context(), c.Param("type"))
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapKeysToListResponse(httputil.Page(keys, offset, limit)))
}

// VerifyHandler checks a candidate secret against a key's stored hash.
// POST /v1/keys/:id/verify - Returns 200 OK with {"valid": bool}.
func (h *KeyHandler) VerifyHandler(c *gin.Context) {
	keyID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.HandleBadRequestGin(c, fmt.Errorf("invalid key id: %w", err), h.logger)
		return
	}

	var req dto.VerifyKeyRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	valid, err := h.keyUseCase.Verify(c.Request.Context(), keyID, req.Secret)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.VerifyKeyResponse{Valid: valid})
}

// RegisterRoutes mounts the key routes on a router group.
func (h *KeyHandler) RegisterRoutes(group gin.IRoutes) {
	group.POST("/keys", h.GenerateHandler)
	group.GET("/keys/:type", h.ListHandler)
	group.POST("/keys/:id/verify", h.VerifyHandler)
}
