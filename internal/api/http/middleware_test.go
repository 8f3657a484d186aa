package http

import (
	"encoding/json"
	nethttp "net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	apperrors "github.com/continu8/backoffice/pkg/util"
)

func newMiddlewareApp(t *testing.T) *fiber.App {
	t.Helper()
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler(zap.NewNop(), nil)})
	RegisterMiddlewares(app, zap.NewNop(), nil, time.Second)
	app.Get("/panic", func(c *fiber.Ctx) error { panic("kaboom") })
	app.Get("/conflict", func(c *fiber.Ctx) error {
		return apperrors.NewConflict("lead already converted", map[string]any{"id": "42"})
	})
	app.Get("/deadline", func(c *fiber.Ctx) error {
		_, ok := c.UserContext().Deadline()
		return c.JSON(fiber.Map{"has_deadline": ok})
	})
	return app
}

func call(t *testing.T, app *fiber.App, path string) (int, map[string]any) {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest(nethttp.MethodGet, path, nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return resp.StatusCode, body
}

func TestErrorMiddleware_RecoversPanics(t *testing.T) {
	status, body := call(t, newMiddlewareApp(t), "/panic")

	assert.Equal(t, nethttp.StatusInternalServerError, status)
	assert.Equal(t, "INTERNAL_ERROR", errorCode(body))
}

func TestErrorMiddleware_WritesDomainErrors(t *testing.T) {
	status, body := call(t, newMiddlewareApp(t), "/conflict")

	assert.Equal(t, nethttp.StatusConflict, status)
	assert.Equal(t, "CONFLICT", errorCode(body))
	details := body["error"].(map[string]any)["details"].(map[string]any)
	assert.Equal(t, "42", details["id"])
}

func TestTimeoutMiddleware_SetsDeadline(t *testing.T) {
	status, body := call(t, newMiddlewareApp(t), "/deadline")

	assert.Equal(t, nethttp.StatusOK, status)
	assert.Equal(t, true, body["has_deadline"])
}

func TestFiberError_MapsFrameworkErrors(t *testing.T) {
	assert.Equal(t, apperrors.CodeNotFound, fiberError(fiber.ErrNotFound).Code)
	assert.Equal(t, apperrors.CodeTooLarge, fiberError(fiber.ErrRequestEntityTooLarge).Code)
	assert.Equal(t, nethttp.StatusMethodNotAllowed, fiberError(fiber.ErrMethodNotAllowed).HTTPStatus)
	assert.Equal(t, apperrors.CodeValidation, fiberError(fiber.ErrBadRequest).Code)
}
