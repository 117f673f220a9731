package http

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/allisson/appconfig/internal/httputil"
	keyDomain "github.com/allisson/appconfig/internal/key/domain"
	"github.com/allisson/appconfig/internal/key/http/dto"
	"github.com/allisson/appconfig/internal/key/usecase/mocks"
)

func setupTestHandler(t *testing.T) (*KeyHandler, *mocks.MockKeyUseCase) {
	t.Helper()

	gin.SetMode(gin.TestMode)

	mockKeyUseCase := &mocks.MockKeyUseCase{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	return NewKeyHandler(mockKeyUseCase, logger), mockKeyUseCase
}

func createTestContext(method, path string, body interface{}) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	var bodyReader io.Reader
	if body != nil {
		bodyBytes, _ := json.Marshal(body)
		bodyReader = bytes.NewReader(bodyBytes)
	}

	req := httptest.NewRequest(method, path, bodyReader)
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	return c, w
}

func TestKeyHandler_GenerateHandler(t *testing.T) {
	t.Run("Success_RotatingKey", func(t *testing.T) {
		handler, mockUseCase := setupTestHandler(t)
		keyID := uuid.Must(uuid.NewV7())

		mockUseCase.On("Generate", mock.Anything, keyDomain.GenerateInput{
			Type:      "config-shop-prod",
			Bytes:     24,
			UseRotate: true,
			Duration:  &keyDomain.Duration{Amount: 30, Unit: keyDomain.UnitDay},
		}).Return(&keyDomain.RotateKey{Secret: "s3cr3t", Version: 2, KeyID: keyID, HashBytes: 24}, nil).Once()

		c, w := createTestContext(http.MethodPost, "/v1/keys", dto.GenerateKeyRequest{
			Type: "Config Shop prod", Bytes: 24, Rotate: true, Duration: "30d",
		})

		handler.GenerateHandler(c)

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.NotContains(t, w.Body.String(), "s3cr3t")

		var response dto.KeyResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, keyID.String(), response.ID)
		assert.Equal(t, "config-shop-prod", response.Type)
		assert.Equal(t, uint(2), response.Version)
		assert.Equal(t, 24, response.HashBytes)
		mockUseCase.AssertExpectations(t)
	})

	t.Run("Error_RotateWithoutDuration", func(t *testing.T) {
		handler, mockUseCase := setupTestHandler(t)

		c, w := createTestContext(http.MethodPost, "/v1/keys", dto.GenerateKeyRequest{Type: "billing", Rotate: true})

		handler.GenerateHandler(c)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		mockUseCase.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything)
	})

	t.Run("Error_InvalidDuration", func(t *testing.T) {
		handler, _ := setupTestHandler(t)

		c, w := createTestContext(http.MethodPost, "/v1/keys", dto.GenerateKeyRequest{
			Type: "billing", Rotate: true, Duration: "30x",
		})

		handler.GenerateHandler(c)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})

	t.Run("Error_BytesOutOfRange", func(t *testing.T) {
		handler, _ := setupTestHandler(t)

		c, w := createTestContext(http.MethodPost, "/v1/keys", dto.GenerateKeyRequest{Type: "billing", Bytes: 8})

		handler.GenerateHandler(c)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})

	t.Run("Error_UseCaseFailure", func(t *testing.T) {
		handler, mockUseCase := setupTestHandler(t)

		mockUseCase.On("Generate", mock.Anything, mock.Anything).
			Return(nil, keyDomain.ErrKeyGenerate).Once()

		c, w := createTestContext(http.MethodPost, "/v1/keys", dto.GenerateKeyRequest{Type: "billing"})

		handler.GenerateHandler(c)

		assert.Equal(t, http.StatusInternalServerError, w.Code)

		var response httputil.ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, keyDomain.CodeKeyGenerateError, response.Code)
	})
}

func TestKeyHandler_ListHandler(t *testing.T) {
	now := time.Now().UTC()
	amount := 30
	unit := keyDomain.UnitDay
	keys := []*keyDomain.Key{
		{
			ID: uuid.Must(uuid.NewV7()), Type: "billing", Version: 2, HashBytes: 32, Status: keyDomain.StatusActive,
			DurationAmount: &amount, DurationUnit: &unit, HashedSecret: "salt:hash", CreatedAt: now,
		},
		{
			ID: uuid.Must(uuid.NewV7()), Type: "billing", Version: 1, HashBytes: 32, Status: keyDomain.StatusInactive,
			HashedSecret: "salt:hash", CreatedAt: now,
		},
	}

	t.Run("Success", func(t *testing.T) {
		handler, mockUseCase := setupTestHandler(t)

		mockUseCase.On("List", mock.Anything, "billing").Return(keys, nil).Once()

		c, w := createTestContext(http.MethodGet, "/v1/keys/billing", nil)
		c.Params = gin.Params{{Key: "type", Value: "billing"}}

		handler.ListHandler(c)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.NotContains(t, w.Body.String(), "salt:hash")

		var response dto.ListKeysResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		require.Len(t, response.Data, 2)
		assert.Equal(t, "ACTIVE", response.Data[0].Status)
		require.NotNil(t, response.Data[0].Duration)
		assert.Equal(t, "30d", *response.Data[0].Duration)
		assert.Nil(t, response.Data[1].Duration)
	})

	t.Run("Success_OffsetPastEnd", func(t *testing.T) {
		handler, mockUseCase := setupTestHandler(t)

		mockUseCase.On("List", mock.Anything, "billing").Return(keys, nil).Once()

		c, w := createTestContext(http.MethodGet, "/v1/keys/billing?offset=5&limit=10", nil)
		c.Params = gin.Params{{Key: "type", Value: "billing"}}

		handler.ListHandler(c)

		assert.Equal(t, http.StatusOK, w.Code)

		var response dto.ListKeysResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Empty(t, response.Data)
	})

	t.Run("Error_InvalidLimit", func(t *testing.T) {
		handler, mockUseCase := setupTestHandler(t)

		c, w := createTestContext(http.MethodGet, "/v1/keys/billing?limit=0", nil)
		c.Params = gin.Params{{Key: "type", Value: "billing"}}

		handler.ListHandler(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		mockUseCase.AssertNotCalled(t, "List", mock.Anything, mock.Anything)
	})
}

func TestKeyHandler_VerifyHandler(t *testing.T) {
	t.Run("Success_Valid", func(t *testing.T) {
		handler, mockUseCase := setupTestHandler(t)
		keyID := uuid.Must(uuid.NewV7())

		mockUseCase.On("Verify", mock.Anything, keyID, "candidate").Return(true, nil).Once()

		c, w := createTestContext(http.MethodPost, "/v1/keys/"+keyID.String()+"/verify",
			dto.VerifyKeyRequest{Secret: "candidate"})
		c.Params = gin.Params{{Key: "id", Value: keyID.String()}}

		handler.VerifyHandler(c)

		assert.Equal(t, http.StatusOK, w.Code)

		var response dto.VerifyKeyResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.True(t, response.Valid)
	})

	t.Run("Error_KeyNotExist", func(t *testing.T) {
		handler, mockUseCase := setupTestHandler(t)
		keyID := uuid.Must(uuid.NewV7())

		mockUseCase.On("Verify", mock.Anything, keyID, "candidate").Return(false, keyDomain.ErrKeyNotExist).Once()

		c, w := createTestContext(http.MethodPost, "/v1/keys/"+keyID.String()+"/verify",
			dto.VerifyKeyRequest{Secret: "candidate"})
		c.Params = gin.Params{{Key: "id", Value: keyID.String()}}

		handler.VerifyHandler(c)

		assert.Equal(t, http.StatusNotFound, w.Code)

		var response httputil.ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, keyDomain.CodeKeyNotExist, response.Code)
	})

	t.Run("Error_InvalidID", func(t *testing.T) {
		handler, _ := setupTestHandler(t)

		c, w := createTestContext(http.MethodPost, "/v1/keys/nope/verify", dto.VerifyKeyRequest{Secret: "x"})
		c.Params = gin.Params{{Key: "id", Value: "nope"}}

		handler.VerifyHandler(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Error_MissingSecret", func(t *testing.T) {
		handler, _ := setupTestHandler(t)
		keyID := uuid.Must(uuid.NewV7())

		c, w := createTestContext(http.MethodPost, "/v1/keys/"+keyID.String()+"/verify", dto.VerifyKeyRequest{})
		c.Params = gin.Params{{Key: "id", Value: keyID.String()}}

		handler.VerifyHandler(c)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})
}
