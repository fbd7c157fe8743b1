package serverutils_test

import (
	"errors"
	"net/http/httptest"
	"testing"

	"knowledgebase-engine/internal/pkg/serverutils"
	"knowledgebase-engine/internal/service"
	"knowledgebase-engine/pkg/embedding"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type silentLogger struct{}

func (silentLogger) Debug(module, message string, details map[string]interface{}) {}
func (silentLogger) Info(module, message string, details map[string]interface{})  {}
func (silentLogger) Warn(module, message string, details map[string]interface{})  {}
func (silentLogger) Error(module, message string, details map[string]interface{}) {}
func (silentLogger) Sync() error                                                  { return nil }

func TestErrorHandlerStatusMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{
			name:       "validation answers 400",
			err:        serverutils.NewValidationError("bad input"),
			wantStatus: fiber.StatusBadRequest,
		},
		{
			name:       "not found answers 404",
			err:        serverutils.NewNotFoundError("note not found"),
			wantStatus: fiber.StatusNotFound,
		},
		{
			name:       "missing embedding answers 404",
			err:        service.ErrEmbeddingNotFound,
			wantStatus: fiber.StatusNotFound,
		},
		{
			name:       "provider error answers 503",
			err:        serverutils.NewProviderError("provider failed", errors.New("backend down")),
			wantStatus: fiber.StatusServiceUnavailable,
		},
		{
			name:       "provider unavailable answers 503",
			err:        embedding.ErrProviderUnavailable,
			wantStatus: fiber.StatusServiceUnavailable,
		},
		{
			name:       "persistence answers 500",
			err:        serverutils.NewPersistenceError("query failed", errors.New("connection reset")),
			wantStatus: fiber.StatusInternalServerError,
		},
		{
			name:       "unknown answers 500",
			err:        errors.New("boom"),
			wantStatus: fiber.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New(fiber.Config{ErrorHandler: serverutils.NewErrorHandler(silentLogger{})})
			app.Get("/x", func(ctx *fiber.Ctx) error {
				return tt.err
			})

			res, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/x", nil))
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, res.StatusCode)
		})
	}
}
